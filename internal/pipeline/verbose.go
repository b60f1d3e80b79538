package pipeline

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// verboseStyle selects how verbose output is styled.
type verboseStyle int

const (
	styleRun verboseStyle = iota
	styleQuery
	styleError
)

const verbosePrefix = "[drill]"

const (
	ansiReset = "\x1b[0m"
	ansiBold  = "\x1b[1m"
	ansiCyan  = "\x1b[36m"
	ansiBlue  = "\x1b[34m"
	ansiRed   = "\x1b[31m"
)

var isTerminal = term.IsTerminal

// logVerbose writes a styled status line when verbose output is on.
func (d Deps) logVerbose(style verboseStyle, text string) {
	if !d.Verbose || d.VerboseWriter == nil {
		return
	}
	palette := paletteFor(d.VerboseWriter, d.NoColor)
	fmt.Fprintln(d.VerboseWriter, palette.apply(style, verbosePrefix+" "+text))
}

// verbosePalette controls ANSI styling for verbose output.
type verbosePalette struct {
	enabled bool
}

// paletteFor selects a palette based on the writer and color settings.
func paletteFor(writer io.Writer, noColor bool) verbosePalette {
	if noColor {
		return verbosePalette{enabled: false}
	}
	return verbosePalette{enabled: shouldUseStyling(writer)}
}

// shouldUseStyling reports whether ANSI styling should be enabled.
func shouldUseStyling(writer io.Writer) bool {
	if writer == nil {
		return false
	}
	if os.Getenv("NO_COLOR") != "" || os.Getenv("TERM") == "dumb" {
		return false
	}
	if strings.EqualFold(os.Getenv("CLICOLOR"), "0") {
		return false
	}
	if file, ok := writer.(*os.File); ok {
		return isTerminal(int(file.Fd()))
	}
	if fder, ok := writer.(interface{ Fd() uintptr }); ok {
		return isTerminal(int(fder.Fd()))
	}
	return false
}

// apply wraps text with ANSI codes for the requested style.
func (p verbosePalette) apply(style verboseStyle, text string) string {
	if !p.enabled {
		return text
	}
	switch style {
	case styleRun:
		return ansiBold + ansiCyan + text + ansiReset
	case styleQuery:
		return ansiBlue + text + ansiReset
	case styleError:
		return ansiBold + ansiRed + text + ansiReset
	default:
		return text
	}
}
