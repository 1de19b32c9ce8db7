package utils

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

// Printer writes emoji-prefixed status lines. Colors are only emitted when
// writing to the process stdout or stderr.
type Printer struct {
	w      io.Writer
	green  *color.Color
	red    *color.Color
	yellow *color.Color
	blue   *color.Color
}

func NewPrinter(w io.Writer) *Printer {
	if w == nil {
		w = os.Stdout
	}
	p := &Printer{
		w:      w,
		green:  color.New(color.FgGreen, color.Bold),
		red:    color.New(color.FgRed, color.Bold),
		yellow: color.New(color.FgYellow, color.Bold),
		blue:   color.New(color.FgBlue),
	}
	if w != os.Stdout && w != os.Stderr {
		for _, c := range []*color.Color{p.green, p.red, p.yellow, p.blue} {
			c.DisableColor()
		}
	}
	return p
}

// Writer returns the underlying writer.
func (p *Printer) Writer() io.Writer { return p.w }

func (p *Printer) Success(format string, args ...any) {
	p.green.Fprintln(p.w, "✅ "+fmt.Sprintf(format, args...))
}

func (p *Printer) Failure(format string, args ...any) {
	p.red.Fprintln(p.w, "❌ "+fmt.Sprintf(format, args...))
}

func (p *Printer) Warn(format string, args ...any) {
	p.yellow.Fprintln(p.w, "⚠️  "+fmt.Sprintf(format, args...))
}

func (p *Printer) Info(format string, args ...any) {
	p.blue.Fprintln(p.w, "ℹ️  "+fmt.Sprintf(format, args...))
}

// Plain writes an uncolored line.
func (p *Printer) Plain(format string, args ...any) {
	fmt.Fprintf(p.w, format+"\n", args...)
}
