package errors

import (
	"fmt"
	"io"
	"strings"
)

// ANSI color codes for terminal output.
const (
	colorReset = "\033[0m"
	colorRed   = "\033[31m"
	colorCyan  = "\033[36m"
	colorWhite = "\033[37m"
	colorGray  = "\033[90m"
	colorBold  = "\033[1m"
)

// colorEnabled controls whether ANSI colors are used.
var colorEnabled = true

// DisableColors disables ANSI color output.
func DisableColors() {
	colorEnabled = false
}

// EnableColors enables ANSI color output.
func EnableColors() {
	colorEnabled = true
}

func color(code, text string) string {
	if !colorEnabled {
		return text
	}
	return code + text + colorReset
}

func red(text string) string   { return color(colorRed, text) }
func cyan(text string) string  { return color(colorCyan, text) }
func white(text string) string { return color(colorWhite, text) }
func gray(text string) string  { return color(colorGray, text) }
func bold(text string) string  { return color(colorBold, text) }

// Format returns the violation formatted for terminal display.
func (v *Violation) Format() string {
	var b strings.Builder

	b.WriteString("\n")
	if v.Code != "" {
		b.WriteString(red(bold("VIOLATION ")))
		b.WriteString(white(bold(v.Code + ": ")))
	} else {
		b.WriteString(red(bold("VIOLATION: ")))
	}
	b.WriteString(white(v.Message))
	b.WriteString("\n\n")

	if v.Op != "" {
		b.WriteString("  ")
		b.WriteString(gray("at "))
		b.WriteString(v.Op)
		b.WriteString("\n\n")
	}

	if v.Detail != "" {
		for _, line := range wrapText(v.Detail, 70) {
			b.WriteString("  ")
			b.WriteString(line)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if v.Hint != "" {
		b.WriteString("  ")
		b.WriteString(cyan("Hint: "))
		b.WriteString(v.Hint)
		b.WriteString("\n")
	}

	return b.String()
}

// FormatCompact returns a compact single-line format.
func (v *Violation) FormatCompact() string {
	var b strings.Builder
	if v.Code != "" {
		b.WriteString(v.Code)
		b.WriteString(": ")
	}
	b.WriteString(v.Message)
	if v.Op != "" {
		b.WriteString(" (")
		b.WriteString(v.Op)
		b.WriteString(")")
	}
	return b.String()
}

// wrapText wraps text to the specified width.
func wrapText(text string, width int) []string {
	if text == "" {
		return nil
	}
	if len(text) <= width {
		return []string{text}
	}

	var lines []string
	words := strings.Fields(text)
	var current strings.Builder

	for _, word := range words {
		if current.Len()+len(word)+1 > width {
			if current.Len() > 0 {
				lines = append(lines, current.String())
				current.Reset()
			}
		}
		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(word)
	}

	if current.Len() > 0 {
		lines = append(lines, current.String())
	}

	return lines
}

// Fprint writes err to w, using the violation format when possible.
func Fprint(w io.Writer, err error) {
	if v, ok := AsViolation(err); ok {
		fmt.Fprint(w, v.Format())
		return
	}
	fmt.Fprintf(w, "\n%s %s\n\n", red(bold("ERROR:")), err.Error())
}
