// Textual grid layouts.
// Rows are separated by newlines or '/', cells are A, B or '.', and '#' starts a comment:
//
//	A A .
//	. B .   # centre
//	A . B
package world

import (
	"fmt"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

type layoutFile struct {
	Rows []*layoutRow `parser:"( @@ | Sep )*"`
}

type layoutRow struct {
	Pos   lexer.Position
	Cells []string `parser:"@Cell+"`
}

var layoutLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `#[^\n]*`},
	{Name: "Sep", Pattern: `[\n/]`},
	{Name: "Whitespace", Pattern: `[ \t\r]+`},
	{Name: "Cell", Pattern: `[AB.]`},
})

var layoutParser = participle.MustBuild[layoutFile](
	participle.Lexer(layoutLexer),
	participle.Elide("Whitespace", "Comment"),
)

// ParseGrid builds a grid from the A / B / . notation produced by Grid.String.
// Every row must have the same length as the number of rows.
func ParseGrid(text string) (*Grid, error) {
	ast, err := layoutParser.ParseString("", text)
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}

	var kinds []Kind
	for i, row := range ast.Rows {
		if len(row.Cells) != len(ast.Rows[0].Cells) {
			return nil, fmt.Errorf("parse layout: row %d at %s has %d cells, want %d",
				i, row.Pos, len(row.Cells), len(ast.Rows[0].Cells))
		}
		for _, sym := range row.Cells {
			kinds = append(kinds, kindFromSymbol(sym))
		}
	}

	if len(ast.Rows) == 0 || len(ast.Rows) != len(ast.Rows[0].Cells) {
		return nil, &InvalidSizeError{Locations: len(kinds)}
	}
	return BuildGrid(kinds)
}

func kindFromSymbol(sym string) Kind {
	switch sym {
	case "A":
		return TypeA
	case "B":
		return TypeB
	default:
		return Empty
	}
}
