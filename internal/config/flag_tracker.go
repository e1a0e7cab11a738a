package config

import (
	"sync"
	"time"

	"github.com/spf13/pflag"
)

// FlagTracker records which command-line flags the user set explicitly, so
// config merging can tell a deliberate `--min-lines 5` apart from the flag's
// default value. Safe for concurrent use.
type FlagTracker struct {
	mu    sync.RWMutex
	flags map[string]bool
}

// NewFlagTracker creates an empty flag tracker.
func NewFlagTracker() *FlagTracker {
	return &FlagTracker{
		flags: make(map[string]bool),
	}
}

// NewFlagTrackerFromFlags creates a tracker pre-populated with every flag
// the user changed on the given flag set.
func NewFlagTrackerFromFlags(flags *pflag.FlagSet) *FlagTracker {
	ft := NewFlagTracker()
	if flags != nil {
		flags.Visit(func(f *pflag.Flag) {
			ft.Set(f.Name)
		})
	}
	return ft
}

// Set marks a flag as explicitly set.
func (ft *FlagTracker) Set(flagName string) {
	ft.mu.Lock()
	defer ft.mu.Unlock()
	ft.flags[flagName] = true
}

// WasSet reports whether a flag was explicitly set.
func (ft *FlagTracker) WasSet(flagName string) bool {
	ft.mu.RLock()
	defer ft.mu.RUnlock()
	return ft.flags[flagName]
}

// GetAll returns a copy of the tracked flags.
func (ft *FlagTracker) GetAll() map[string]bool {
	ft.mu.RLock()
	defer ft.mu.RUnlock()

	result := make(map[string]bool, len(ft.flags))
	for k, v := range ft.flags {
		result[k] = v
	}
	return result
}

// Clear removes all flag tracking.
func (ft *FlagTracker) Clear() {
	ft.mu.Lock()
	defer ft.mu.Unlock()
	ft.flags = make(map[string]bool)
}

// Count returns the number of explicitly set flags.
func (ft *FlagTracker) Count() int {
	ft.mu.RLock()
	defer ft.mu.RUnlock()
	return len(ft.flags)
}

// MergeString returns override when its flag was set, base otherwise.
func (ft *FlagTracker) MergeString(base, override, flagName string) string {
	if ft.WasSet(flagName) {
		return override
	}
	return base
}

// MergeInt returns override when its flag was set, base otherwise.
func (ft *FlagTracker) MergeInt(base, override int, flagName string) int {
	if ft.WasSet(flagName) {
		return override
	}
	return base
}

// MergeBool returns override when its flag was set, base otherwise.
func (ft *FlagTracker) MergeBool(base, override bool, flagName string) bool {
	if ft.WasSet(flagName) {
		return override
	}
	return base
}

// MergeFloat64 returns override when its flag was set, base otherwise.
func (ft *FlagTracker) MergeFloat64(base, override float64, flagName string) float64 {
	if ft.WasSet(flagName) {
		return override
	}
	return base
}

// MergeDuration returns override when its flag was set, base otherwise.
func (ft *FlagTracker) MergeDuration(base, override time.Duration, flagName string) time.Duration {
	if ft.WasSet(flagName) {
		return override
	}
	return base
}

// MergeStringSlice returns override when its flag was set and non-empty,
// base otherwise.
func (ft *FlagTracker) MergeStringSlice(base, override []string, flagName string) []string {
	if ft.WasSet(flagName) && len(override) > 0 {
		return override
	}
	return base
}
