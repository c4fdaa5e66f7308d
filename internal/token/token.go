package token

import "github.com/yorlang/yorlang/internal/errdef"

type Pos = errdef.Pos

type Kind int

const (
	EOF Kind = iota
	Illegal

	Keyword
	Variable
	Operator
	Punctuation
	Number
	String
	Boolean
)

func (k Kind) String() string {
	switch k {
	case EOF:
		return "EOF"
	case Illegal:
		return "ILLEGAL"
	case Keyword:
		return "KEYWORD"
	case Variable:
		return "VARIABLE"
	case Operator:
		return "OPERATOR"
	case Punctuation:
		return "PUNCTUATION"
	case Number:
		return "NUMBER"
	case String:
		return "STRING"
	case Boolean:
		return "BOOLEAN"
	default:
		return "?"
	}
}

type Token struct {
	Kind  Kind
	Value string
	Pos   Pos
}

func (t Token) Is(kind Kind, value string) bool {
	return t.Kind == kind && t.Value == value
}

// Describe renders the token the way diagnostics name it.
func (t Token) Describe() string {
	if t.Kind == EOF {
		return "end of input"
	}
	return t.Value
}

const (
	KwTi      = "ti"
	KwSe      = "se"
	KwTabi    = "tabi"
	KwNigbati = "nigbati"
	KwFun     = "fun"
	KwIse     = "ise"
	KwPada    = "pada"
	KwKuro    = "kuro"
	KwSope    = "sope"
	KwYi      = "yi"
	KwIru     = "iru"
	KwPadasi  = "padasi"

	BoolTrue  = "ooto"
	BoolFalse = "iro"
)

const (
	SymAssign    = "="
	SymPlus      = "+"
	SymMinus     = "-"
	SymMultiply  = "*"
	SymDivide    = "/"
	SymRemainder = "%"
	SymEq        = "=="
	SymNotEq     = "!="
	SymLThan     = "<"
	SymGThan     = ">"
	SymLThanOrEq = "<="
	SymGThanOrEq = ">="
	SymAnd       = "&&"
	SymOr        = "||"
	SymNot       = "!"

	SymLParen     = "("
	SymRParen     = ")"
	SymLBrace     = "{"
	SymRBrace     = "}"
	SymLBracket   = "["
	SymRBracket   = "]"
	SymComma      = ","
	SymColon      = ":"
	SymTerminator = ";"
)

var keywords = map[string]Kind{
	KwTi:      Keyword,
	KwSe:      Keyword,
	KwTabi:    Keyword,
	KwNigbati: Keyword,
	KwFun:     Keyword,
	KwIse:     Keyword,
	KwPada:    Keyword,
	KwKuro:    Keyword,
	KwSope:    Keyword,
	KwYi:      Keyword,
	KwIru:     Keyword,
	KwPadasi:  Keyword,
	BoolTrue:  Boolean,
	BoolFalse: Boolean,
}

// Lookup classifies an identifier-shaped word.
func Lookup(word string) Kind {
	if k, ok := keywords[word]; ok {
		return k
	}
	return Variable
}

// IsKeyword reports whether name is reserved.
func IsKeyword(name string) bool {
	_, ok := keywords[name]
	return ok
}

// Keywords returns the reserved words, statement keywords first.
func Keywords() []string {
	return []string{
		KwTi, KwSe, KwTabi, KwNigbati, KwFun, KwIse, KwPada,
		KwKuro, KwSope, KwYi, KwIru, KwPadasi, BoolTrue, BoolFalse,
	}
}
