package decl

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

const schemaSource = `
#Column: {
	member:  string
	name?:   string
	insert?: bool
	update?: bool
	pk?:     bool
}

#Entity: {
	table:    string
	columns?: [...#Column]
}

#File: {
	entities: [string]: #Entity
}
`

// SourceError is a CUE error with its source position.
type SourceError struct {
	Message string
	Pos     token.Pos
}

func (e *SourceError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Message)
	}
	return e.Message
}

// LoadCUE reads and parses a CUE declaration file.
func LoadCUE(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read declaration file: %w", err)
	}
	return ParseCUE(path, data)
}

// ParseCUE compiles a CUE declaration, unifies it with the closed
// declaration schema and decodes it. filename is used in error positions.
func ParseCUE(filename string, data []byte) (*File, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}

	v := ctx.CompileBytes(data, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, positioned(err)
	}

	v = schema.LookupPath(cue.ParsePath("#File")).Unify(v)
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, positioned(err)
	}

	var f File
	if err := v.Decode(&f); err != nil {
		return nil, positioned(err)
	}

	if err := f.validate(); err != nil {
		return nil, fmt.Errorf("invalid declaration: %w", err)
	}
	return &f, nil
}

// positioned returns the first CUE error with its position when available.
func positioned(err error) error {
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}
	first := errs[0]
	if positions := errors.Positions(first); len(positions) > 0 {
		return &SourceError{Message: first.Error(), Pos: positions[0]}
	}
	return err
}
