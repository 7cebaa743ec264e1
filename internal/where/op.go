package where

import "fmt"

// Op is a comparison operator.
type Op int

const (
	Eq Op = iota // =
	Ne           // <>
	Lt           // <
	Le           // <=
	Gt           // >
	Ge           // >=
)

var opNames = [...]string{"Eq", "Ne", "Lt", "Le", "Gt", "Ge"}
var opSymbols = [...]string{"=", "<>", "<", "<=", ">", ">="}

// Valid reports whether o is one of the six comparison operators.
func (o Op) Valid() bool {
	return o >= Eq && o <= Ge
}

// String returns the operator name (e.g. "Le").
func (o Op) String() string {
	if !o.Valid() {
		return fmt.Sprintf("Op(%d)", int(o))
	}
	return opNames[o]
}

// Symbol returns the SQL comparison symbol (e.g. "<=").
func (o Op) Symbol() string {
	if !o.Valid() {
		return ""
	}
	return opSymbols[o]
}

// ParseOp parses an operator from its name or SQL symbol.
func ParseOp(s string) (Op, error) {
	for i := range opNames {
		if s == opNames[i] || s == opSymbols[i] {
			return Op(i), nil
		}
	}
	if s == "!=" {
		return Ne, nil
	}
	return 0, fmt.Errorf("unknown comparison operator %q", s)
}
