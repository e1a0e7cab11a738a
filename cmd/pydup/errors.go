package main

import "fmt"

// usageError marks command-line mistakes so main can exit with the usage code.
type usageError struct {
	err error
}

func newUsageError(err error) *usageError { return &usageError{err: err} }

func (e *usageError) Error() string { return e.err.Error() }

func (e *usageError) Unwrap() error { return e.err }

// cloneGateError is returned by `scan --fail-on-clones` when duplicates were
// found, so CI runs fail without treating findings as an operational error.
type cloneGateError struct {
	groups int
}

func (e *cloneGateError) Error() string {
	return fmt.Sprintf("found %d clone group(s); failing because --fail-on-clones is set", e.groups)
}
