package command

import (
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
)

var lineLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Quoted", Pattern: `"(\\.|[^"\\])*"`},
	{Name: "Word", Pattern: `[^\s"]+`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var (
	quotedToken = lineLexer.Symbols()["Quoted"]
	wordToken   = lineLexer.Symbols()["Word"]
)

// Tokenize splits a line into whitespace separated parts. Double quoted
// groups are kept together with the quotes removed, so
//
//	select "Mono Red" now
//
// yields ["select", "Mono Red", "now"]. Lines with an unbalanced quote fall
// back to plain whitespace splitting.
func Tokenize(line string) []string {
	lex, err := lineLexer.LexString("", line)
	if err != nil {
		return strings.Fields(line)
	}

	tokens, err := lexer.ConsumeAll(lex)
	if err != nil {
		return strings.Fields(line)
	}

	parts := []string{}
	for _, tok := range tokens {
		switch tok.Type {
		case wordToken:
			parts = append(parts, tok.Value)
		case quotedToken:
			parts = append(parts, unquote(tok.Value))
		}
	}

	return parts
}

func unquote(s string) string {
	s = s[1 : len(s)-1]
	if !strings.Contains(s, `\`) {
		return s
	}

	var b strings.Builder
	escaped := false
	for _, r := range s {
		if r == '\\' && !escaped {
			escaped = true
			continue
		}
		escaped = false
		b.WriteRune(r)
	}
	return b.String()
}
