package errdef

import (
	"errors"
	"fmt"
)

// Pos is a 1-based source location.
type Pos struct {
	Path string
	Line int
	Col  int
}

func (p Pos) String() string {
	if p.Path == "" {
		return fmt.Sprintf("%d:%d", p.Line, p.Col)
	}
	return fmt.Sprintf("%s:%d:%d", p.Path, p.Line, p.Col)
}

func (p Pos) IsValid() bool { return p.Line > 0 }

type SyntaxError struct {
	Pos   Pos
	Token string
	Msg   string
	// Incomplete is set when the error was caused by input ending early.
	Incomplete bool
}

func (e *SyntaxError) Error() string {
	if !e.Pos.IsValid() {
		return e.Msg
	}
	return fmt.Sprintf("%s: %s", e.Pos, e.Msg)
}

func (e *SyntaxError) ErrCode() Code { return CodeSyntax }

// NameError reports a variable or routine that is not bound in any
// reachable scope nor in the helper registry.
type NameError struct {
	Pos  Pos
	Kind string
	Name string
}

func (e *NameError) Error() string {
	msg := fmt.Sprintf("%s %q does not exist", e.Kind, e.Name)
	if !e.Pos.IsValid() {
		return msg
	}
	return fmt.Sprintf("%s: %s", e.Pos, msg)
}

func (e *NameError) ErrCode() Code { return CodeName }

type RuntimeError struct {
	Pos  Pos
	Code Code
	Msg  string
}

func (e *RuntimeError) Error() string {
	if !e.Pos.IsValid() {
		return e.Msg
	}
	return fmt.Sprintf("%s: %s", e.Pos, e.Msg)
}

func (e *RuntimeError) ErrCode() Code {
	if e.Code == "" {
		return CodeRuntime
	}
	return e.Code
}

// PosOf extracts the source position carried by a language error, if any.
func PosOf(err error) (Pos, bool) {
	var se *SyntaxError
	if errors.As(err, &se) {
		return se.Pos, se.Pos.IsValid()
	}
	var ne *NameError
	if errors.As(err, &ne) {
		return ne.Pos, ne.Pos.IsValid()
	}
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Pos, re.Pos.IsValid()
	}
	return Pos{}, false
}
