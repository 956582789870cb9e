package textir

import (
	"fmt"

	"github.com/alecthomas/participle/v2"

	"kansomid/internal/ir"
)

var irParser = participle.MustBuild[Program](
	participle.Lexer(Lexer),
	participle.Elide("Whitespace", "Comment"),
	participle.UseLookahead(4),
)

// ParseError wraps a participle parse failure with the source position the
// teacher's caret-style reporter expects.
type ParseError struct {
	Filename string
	Line     int
	Column   int
	Message  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s", e.Filename, e.Line, e.Column, e.Message)
}

// Parse lexes and parses source as the textual IR grammar of §6 and lowers
// it directly into an *ir.Module via Build.
func Parse(filename, source, moduleName string) (*ir.Module, error) {
	prog, err := irParser.ParseString(filename, source)
	if err != nil {
		if pe, ok := err.(participle.Error); ok {
			pos := pe.Position()
			return nil, &ParseError{Filename: pos.Filename, Line: pos.Line, Column: pos.Column, Message: pe.Message()}
		}
		return nil, err
	}
	return Build(moduleName, prog)
}
