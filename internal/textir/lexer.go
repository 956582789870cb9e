// Package textir implements the textual IR form described by §6 of the
// governing specification: a lexer and a participle grammar that parse the
// grammar sketch directly into an *ir.Module, for testing and standalone
// use of the core without a surface-syntax frontend. Modeled on the
// teacher's grammar/lexer.go stateful-lexer approach.
package textir

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// Lexer tokenizes the textual IR grammar: '@' function headers, '$' block
// labels, ':=' / ':' type-annotated bindings, the keyword-led instruction
// and terminator forms, and '#'-prefixed line comments.
var Lexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		{"Comment", `#[^\n]*`, nil},
		{"Newline", `\r?\n`, nil},
		{"Ident", `[a-zA-Z_][a-zA-Z0-9_']*`, nil},
		{"Int", `-?[0-9]+`, nil},
		{"String", `"(\\.|[^"])*"`, nil},
		{"Arrow", `->`, nil},
		{"Walrus", `:=`, nil},
		{"Op", `(==|!=|<=|>=|&&|\|\||[-+*/%<>])`, nil},
		{"Punct", `[@$(),:=]`, nil},
		{"Whitespace", `[ \t]+`, nil},
	},
})
