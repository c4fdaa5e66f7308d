package diag

import (
	"strings"

	"github.com/alecthomas/chroma"
	"github.com/alecthomas/chroma/formatters"
	"github.com/alecthomas/chroma/styles"

	"github.com/yorlang/yorlang/internal/token"
)

// Lexer is the chroma lexer for Yorlang source.
var Lexer = chroma.MustNewLexer(
	&chroma.Config{
		Name:      "Yorlang",
		Aliases:   []string{"yorlang", "yl"},
		Filenames: []string{"*.yl"},
	},
	chroma.Rules{
		"root": {
			{Pattern: `\s+`, Type: chroma.Whitespace},
			{Pattern: `#[^\n\r]*`, Type: chroma.CommentSingle},
			{Pattern: `"(\\.|[^"\\])*"`, Type: chroma.LiteralStringDouble},
			{Pattern: `'(\\.|[^'\\])*'`, Type: chroma.LiteralStringSingle},
			{Pattern: `[0-9]+(\.[0-9]+)?`, Type: chroma.LiteralNumber},
			{Pattern: chroma.Words(`\b`, `\b`, token.BoolTrue, token.BoolFalse), Type: chroma.KeywordConstant},
			{Pattern: chroma.Words(`\b`, `\b`, statementKeywords()...), Type: chroma.Keyword},
			{Pattern: `[\p{L}_][\p{L}\p{Mn}0-9_]*(?=\s*\()`, Type: chroma.NameFunction},
			{Pattern: `[\p{L}_][\p{L}\p{Mn}0-9_]*`, Type: chroma.NameVariable},
			{Pattern: `==|!=|<=|>=|&&|\|\||[-+*/%<>=!]`, Type: chroma.Operator},
			{Pattern: `[()\[\]{};:,]`, Type: chroma.Punctuation},
			{Pattern: `.`, Type: chroma.Error},
		},
	},
)

func statementKeywords() []string {
	var out []string
	for _, kw := range token.Keywords() {
		if kw == token.BoolTrue || kw == token.BoolFalse {
			continue
		}
		out = append(out, kw)
	}
	return out
}

// Highlight renders src with terminal colours. With colour disabled, or
// if tokenising fails, src is returned unchanged.
func Highlight(src string, st Styles) string {
	if !st.Colorful {
		return src
	}
	it, err := Lexer.Tokenise(nil, src)
	if err != nil {
		return src
	}
	var b strings.Builder
	if err := formatters.TTY256.Format(&b, styles.Get("monokai"), it); err != nil {
		return src
	}
	return b.String()
}
