package service

import (
	"encoding/json"
	"io"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"github.com/pydup/pydup/domain"
)

// EncodeJSON returns an indented JSON string for the given value.
func EncodeJSON(v interface{}) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", domain.NewOutputError("failed to marshal JSON", err)
	}
	return string(data), nil
}

// WriteJSON writes indented JSON for the given value to the writer.
func WriteJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return domain.NewOutputError("failed to encode JSON", err)
	}
	return nil
}

// EncodeYAML returns a YAML string for the given value.
func EncodeYAML(v interface{}) (string, error) {
	data, err := yaml.Marshal(v)
	if err != nil {
		return "", domain.NewOutputError("failed to marshal YAML", err)
	}
	return string(data), nil
}

// WriteYAML writes YAML for the given value to the writer.
func WriteYAML(w io.Writer, v interface{}) error {
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return domain.NewOutputError("failed to encode YAML", err)
	}
	return nil
}

// Severity colors for text reports. fatih/color disables itself on
// non-TTY output and when NO_COLOR is set.
var (
	criticalColor = color.New(color.FgRed, color.Bold)
	highColor     = color.New(color.FgRed)
	mediumColor   = color.New(color.FgYellow)
	lowColor      = color.New(color.FgCyan)
	infoColor     = color.New(color.Faint)
)

// SeverityColor returns the color used to render a severity label.
func SeverityColor(s domain.Severity) *color.Color {
	switch s {
	case domain.SeverityCritical:
		return criticalColor
	case domain.SeverityHigh:
		return highColor
	case domain.SeverityMedium:
		return mediumColor
	case domain.SeverityLow:
		return lowColor
	default:
		return infoColor
	}
}

// ColorizeSeverity renders the severity label in its color.
func ColorizeSeverity(s domain.Severity) string {
	return SeverityColor(s).Sprint(string(s))
}
