// Package token holds the lightweight source-position type the reader uses
// for its diagnostics. Positions are carried by reader errors only; the data
// values the reader produces carry no position.
package token

import "fmt"

// Pos is a 1-based line/column position in a named source file.
type Pos struct {
	Filename string
	Line     int
	Col      int
}

// Unknown reports whether p carries no usable position information.
func (p Pos) Unknown() bool { return p.Line <= 0 || p.Col <= 0 }

func (p Pos) String() string {
	if p.Unknown() {
		return "<unknown>"
	}
	if p.Filename == "" {
		return fmt.Sprintf("%d:%d", p.Line, p.Col)
	}
	return fmt.Sprintf("%s:%d:%d", p.Filename, p.Line, p.Col)
}
