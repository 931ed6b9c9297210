package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/muesli/termenv"
)

type Options struct {
	Stdout io.Writer
	Stderr io.Writer
	// Color is auto, always or never.
	Color string
}

type ParseError struct{ msg string }

func (e *ParseError) Error() string { return e.msg }

type UI struct {
	out *Printer
	err *Printer
}

// Printer writes line-oriented messages to one stream.
type Printer struct {
	o *termenv.Output
}

func New(opts Options) (*UI, error) {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}

	mode := strings.ToLower(strings.TrimSpace(opts.Color))
	if mode == "" {
		mode = "auto"
	}
	switch mode {
	case "auto", "always", "never":
	default:
		return nil, &ParseError{msg: fmt.Sprintf("invalid --color %q (expected auto|always|never)", opts.Color)}
	}

	return &UI{
		out: newPrinter(opts.Stdout, mode),
		err: newPrinter(opts.Stderr, mode),
	}, nil
}

func newPrinter(w io.Writer, mode string) *Printer {
	var profile termenv.Profile
	switch mode {
	case "never":
		profile = termenv.Ascii
	case "always":
		profile = termenv.ANSI256
	default:
		profile = termenv.NewOutput(w).EnvColorProfile()
	}
	return &Printer{o: termenv.NewOutput(w, termenv.WithProfile(profile))}
}

func (u *UI) Out() *Printer { return u.out }
func (u *UI) Err() *Printer { return u.err }

func (p *Printer) Print(s string) {
	_, _ = io.WriteString(p.o, s)
}

func (p *Printer) Println(s string) {
	_, _ = io.WriteString(p.o, s+"\n")
}

// Printf formats a single line; a trailing newline is added.
func (p *Printer) Printf(format string, args ...any) {
	p.Println(fmt.Sprintf(format, args...))
}

func (p *Printer) Successf(format string, args ...any) {
	p.Println(p.o.String(fmt.Sprintf(format, args...)).Foreground(p.o.Color("2")).String())
}

func (p *Printer) Error(msg string) {
	p.Println(p.o.String(msg).Foreground(p.o.Color("1")).Bold().String())
}

type ctxKey struct{}

func WithUI(ctx context.Context, u *UI) context.Context {
	return context.WithValue(ctx, ctxKey{}, u)
}

func FromContext(ctx context.Context) *UI {
	if ctx == nil {
		return nil
	}
	u, _ := ctx.Value(ctxKey{}).(*UI)
	return u
}
