// Package console prints the coloured progress lines of the command-line tools.
package console

import (
	"fmt"
	"io"
	"os"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
)

// Printer writes progress lines to an output stream.
type Printer struct {
	out   io.Writer
	err   io.Writer
	color bool
}

// New returns a Printer writing to stdout and stderr.
func New() *Printer {
	_, noColor := os.LookupEnv("NO_COLOR")
	return &Printer{out: os.Stdout, err: os.Stderr, color: !noColor}
}

// NewWriter returns an uncoloured Printer writing everything to w.
func NewWriter(w io.Writer) *Printer {
	return &Printer{out: w, err: w}
}

func (p *Printer) paint(color, s string) string {
	if !p.color {
		return s
	}
	return color + s + colorReset
}

// Plain prints an uncoloured line.
func (p *Printer) Plain(format string, args ...any) {
	fmt.Fprintf(p.out, format+"\n", args...)
}

// Info prints a cyan line.
func (p *Printer) Info(format string, args ...any) {
	fmt.Fprintln(p.out, p.paint(colorCyan, fmt.Sprintf(format, args...)))
}

// Success prints a green ✓ line.
func (p *Printer) Success(format string, args ...any) {
	fmt.Fprintln(p.out, p.paint(colorGreen, "✓ "+fmt.Sprintf(format, args...)))
}

// Skip prints a yellow ⊙ line.
func (p *Printer) Skip(format string, args ...any) {
	fmt.Fprintln(p.out, p.paint(colorYellow, "⊙ "+fmt.Sprintf(format, args...)))
}

// Fail prints a red ✗ line to the error stream.
func (p *Printer) Fail(format string, args ...any) {
	fmt.Fprintln(p.err, p.paint(colorRed, "✗ "+fmt.Sprintf(format, args...)))
}
