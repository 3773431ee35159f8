package lyrics

import (
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// textLine is one non-empty line of the text form: "# Measure 3" or "2 [4]: la la-la _".
//
//nolint:govet // participle grammar tags are not standard struct tags
type textLine struct {
	Header *measureHeader `  @@`
	Staff  *staffLine     `| @@`
}

//nolint:govet // participle grammar tags are not standard struct tags
type measureHeader struct {
	Measure int `"#" Measure @Int`
}

//nolint:govet // participle grammar tags are not standard struct tags
type staffLine struct {
	Staff  int      `@Int`
	Count  *int     `( "[" @Int "]" )?`
	Tokens []string `":" @Word*`
}

// After the colon everything up to whitespace is a word, so lyrics may contain any punctuation.
var lineLexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		{Name: "Hash", Pattern: `#`},
		{Name: "Measure", Pattern: `(?i)measure\b`},
		{Name: "Int", Pattern: `[0-9]+`},
		{Name: "Punct", Pattern: `[\[\]]`},
		{Name: "Colon", Pattern: `:`, Action: lexer.Push("Words")},
		{Name: "Whitespace", Pattern: `[ \t]+`},
	},
	"Words": {
		{Name: "Word", Pattern: `[^ \t]+`},
		{Name: "Space", Pattern: `[ \t]+`},
	},
})

var lineParser = participle.MustBuild[textLine](
	participle.Lexer(lineLexer),
	participle.Elide("Whitespace", "Space"),
)

func parseLine(line string) (*textLine, error) {
	return lineParser.ParseString("", line)
}
