package doctype

import (
	"fmt"
	"strings"

	"golang.org/x/exp/ebnf"
)

// Grammar is the textual grammar accepted by Parse, written in the EBNF
// dialect of golang.org/x/exp/ebnf. Whitespace between tokens is ignored.
const Grammar = `
Type      = [ "?" ] Union .
Union     = Member { "|" Member } .
Member    = [ "?" ] Postfix .
Postfix   = Atom { "[" "]" } .
Atom      = Group | Generic | Shape | Name .
Group     = "(" Type ")" .
Generic   = Name "<" Type [ "," Type ] ">" .
Shape     = Name "{" [ Field { Separator Field } [ Separator ] ] "}" .
Separator = "," | ";" .
Field     = FieldName [ "?" ] [ ":" Type ] .
FieldName = ident | int | string .
Name      = [ "\\" ] ident { "\\" ident } | "$this" .

ident  = letter { letter | digit | "-" } .
int    = [ "-" ] digit { digit } .
string = "'" { letter | digit | " " } "'" | "\"" { letter | digit | " " } "\"" .
letter = "a" … "z" | "A" … "Z" | "_" .
digit  = "0" … "9" .
`

// StartProduction is the production Grammar is verified from.
const StartProduction = "Type"

// LoadGrammar parses Grammar.
func LoadGrammar() (ebnf.Grammar, error) {
	g, err := ebnf.Parse("doctype.ebnf", strings.NewReader(Grammar))
	if err != nil {
		return nil, fmt.Errorf("parse grammar: %w", err)
	}
	return g, nil
}

// VerifyGrammar checks that Grammar is well formed: every production is
// defined and reachable from StartProduction.
func VerifyGrammar() error {
	g, err := LoadGrammar()
	if err != nil {
		return err
	}
	if err := ebnf.Verify(g, StartProduction); err != nil {
		return fmt.Errorf("verify grammar: %w", err)
	}
	return nil
}
