// Package rtfmt wraps fmt writers so that write failures are reported
// instead of silently dropped.
package rtfmt

import (
	"fmt"
	"io"
)

// Handler receives a write error. A nil Handler ignores it.
type Handler func(error)

// LogHandler adapts a printf-style logger. format must contain one verb
// for the error.
func LogHandler(logf func(string, ...any), format string) Handler {
	if logf == nil {
		return nil
	}
	return func(err error) {
		logf(format, err)
	}
}

func Fprintf(w io.Writer, format string, h Handler, args ...any) error {
	_, err := fmt.Fprintf(w, format, args...)
	return report(h, err)
}

func Fprintln(w io.Writer, h Handler, args ...any) error {
	_, err := fmt.Fprintln(w, args...)
	return report(h, err)
}

func Fprint(w io.Writer, h Handler, args ...any) error {
	_, err := fmt.Fprint(w, args...)
	return report(h, err)
}

func report(h Handler, err error) error {
	if err != nil && h != nil {
		h(err)
	}
	return err
}
