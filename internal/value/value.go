package value

import (
	"strconv"
	"strings"

	"github.com/yorlang/yorlang/internal/token"
)

type Kind int

const (
	KAbsent Kind = iota
	KBool
	KNum
	KStr
	KList
)

func (k Kind) String() string {
	switch k {
	case KAbsent:
		return "aisi"
	case KBool:
		return "boolean"
	case KNum:
		return "nomba"
	case KStr:
		return "oro"
	case KList:
		return "akojo"
	default:
		return "?"
	}
}

// Value is the runtime representation of every Yorlang value. L is shared
// between copies so that element assignment is visible through each alias.
type Value struct {
	K Kind

	B bool
	N float64
	S string
	L *[]Value
}

func Absent() Value        { return Value{K: KAbsent} }
func Bool(v bool) Value    { return Value{K: KBool, B: v} }
func Num(v float64) Value  { return Value{K: KNum, N: v} }
func Str(v string) Value   { return Value{K: KStr, S: v} }
func List(v []Value) Value { return Value{K: KList, L: &v} }

func (v Value) IsAbsent() bool { return v.K == KAbsent }

// Items returns the backing elements of a list, or nil for other kinds.
func (v Value) Items() []Value {
	if v.K != KList || v.L == nil {
		return nil
	}
	return *v.L
}

func (v Value) Truthy() bool {
	switch v.K {
	case KAbsent:
		return false
	case KBool:
		return v.B
	case KNum:
		return v.N != 0
	case KStr:
		return v.S != ""
	case KList:
		return len(v.Items()) != 0
	default:
		return false
	}
}

// Equal compares scalars by value and lists element-wise.
func Equal(a, b Value) bool {
	if a.K != b.K {
		return false
	}
	switch a.K {
	case KAbsent:
		return true
	case KBool:
		return a.B == b.B
	case KNum:
		return a.N == b.N
	case KStr:
		return a.S == b.S
	case KList:
		x, y := a.Items(), b.Items()
		if len(x) != len(y) {
			return false
		}
		for i := range x {
			if !Equal(x[i], y[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// String returns the form written by sope.
func (v Value) String() string {
	switch v.K {
	case KAbsent:
		return "aisi"
	case KBool:
		if v.B {
			return token.BoolTrue
		}
		return token.BoolFalse
	case KNum:
		return FormatNum(v.N)
	case KStr:
		return v.S
	case KList:
		var sb strings.Builder
		sb.WriteByte('[')
		for i, it := range v.Items() {
			if i > 0 {
				sb.WriteString(", ")
			}
			if it.K == KStr {
				sb.WriteString(strconv.Quote(it.S))
				continue
			}
			sb.WriteString(it.String())
		}
		sb.WriteByte(']')
		return sb.String()
	default:
		return "?"
	}
}

// FormatNum prints integral numbers without a fractional part.
func FormatNum(n float64) string {
	if n == float64(int64(n)) && n > -1e15 && n < 1e15 {
		return strconv.FormatInt(int64(n), 10)
	}
	return strconv.FormatFloat(n, 'g', -1, 64)
}
