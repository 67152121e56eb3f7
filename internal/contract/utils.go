package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
)

// Match label constants.
const (
	TopMatchValue = "Top match" // Top match value
	StrongValue   = "Strong"    // Strong value
	FairValue     = "Fair"      // Fair value
	WeakValue     = "Weak"      // Weak value
)

// Color variables for console output.
var (
	TopMatchColor = color.New(color.FgGreen, color.Bold) // TopMatchColor highlights the closest trails.
	StrongColor   = color.New(color.FgCyan, color.Bold)  // StrongColor marks a clearly good fit.
	FairColor     = color.New(color.FgYellow)            // FairColor marks a partial fit, not bold.
	WeakColor     = color.New(color.FgHiBlack)           // WeakColor marks a poor fit.
)

// GetPlainLabel returns a plain text label describing how well a result
// matches the preference, based on its final score in [0,1].
// This is the core logic used for CSV, JSON, and table printing.
func GetPlainLabel(score float64) string {
	switch {
	case score >= 0.9:
		return TopMatchValue
	case score >= 0.75:
		return StrongValue
	case score >= 0.5:
		return FairValue
	default:
		return WeakValue
	}
}

// GetColorLabel returns a colored text label for console output (table).
// It uses GetPlainLabel to determine the string, and then applies the appropriate color.
func GetColorLabel(score float64) string {
	text := GetPlainLabel(score)

	switch text {
	case TopMatchValue:
		return TopMatchColor.Sprint(text)
	case StrongValue:
		return StrongColor.Sprint(text)
	case FairValue:
		return FairColor.Sprint(text)
	default: // "Weak"
		return WeakColor.Sprint(text)
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. An empty path means os.Stdout.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// GetHistoryDBFilePath returns the path to the SQLite DB file for run history.
func GetHistoryDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".peakfinder_history.db"
	}
	return filepath.Join(homeDir, ".peakfinder_history.db")
}

// TruncateText truncates text to a maximum width with an ellipsis suffix.
// Requires maxWidth > 3 so there is room for the "..." and at least one rune.
func TruncateText(text string, maxWidth int) string {
	runes := []rune(text)
	if len(runes) > maxWidth && maxWidth > 3 {
		return string(runes[:maxWidth-3]) + "..."
	}
	return text
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
