// Package detector selects the log format from the terminal environment.
package detector

import (
	"os"

	"go.trai.ch/kiln/internal/core/domain"
	"golang.org/x/term"
)

// Format is the resolved output format.
type Format int

const (
	// FormatPretty renders colored lines and task progress.
	FormatPretty Format = iota
	// FormatJSON renders one JSON object per log record and no progress.
	FormatJSON
)

// DetectEnvironment inspects stderr and the CI variable.
func DetectEnvironment() Format {
	return Detect(term.IsTerminal(int(os.Stderr.Fd())), os.Getenv("CI"))
}

// Detect returns pretty output for terminals and CI logs, JSON otherwise.
func Detect(isTTY bool, ci string) Format {
	if isTTY || ci == "true" || ci == "1" {
		return FormatPretty
	}
	return FormatJSON
}

// ResolveFormat applies the configured log format to the detected one.
func ResolveFormat(detected Format, configured string) Format {
	switch configured {
	case domain.LogFormatPretty:
		return FormatPretty
	case domain.LogFormatJSON:
		return FormatJSON
	default:
		return detected
	}
}
