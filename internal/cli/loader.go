package cli

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/roach88/entmap/internal/decl"
	"github.com/roach88/entmap/internal/meta"
)

// loadTables loads a declaration file and builds its table descriptors.
// Failures are reported through the formatter and returned as ExitErrors.
func loadTables(f *OutputFormatter, path string) ([]*meta.TableDescriptor, error) {
	file, err := decl.Load(path)
	if err != nil {
		var srcErr *decl.SourceError
		switch {
		case errors.Is(err, fs.ErrNotExist):
			return nil, f.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("declaration file not found: %s", path), nil)
		case meta.IsConfigError(err):
			return nil, f.Fail(ExitFailure, ErrCodeInvalid, "invalid declaration", configDetails(err))
		case errors.As(err, &srcErr):
			return nil, f.Fail(ExitFailure, ErrCodeParseFailed, srcErr.Message, map[string]interface{}{
				"file":   srcErr.Pos.Filename(),
				"line":   srcErr.Pos.Line(),
				"column": srcErr.Pos.Column(),
			})
		default:
			return nil, f.Fail(ExitFailure, ErrCodeParseFailed, err.Error(), nil)
		}
	}
	f.VerboseLog("Loaded %d entity declaration(s) from %s", len(file.Entities), path)

	tables, err := file.Tables()
	if err != nil {
		return nil, f.Fail(ExitFailure, ErrCodeInvalid, "invalid declaration", configDetails(err))
	}
	return tables, nil
}

// configDetails flattens every ConfigError in err into one line each.
func configDetails(err error) []string {
	var out []string
	var walk func(error)
	walk = func(err error) {
		if ce, ok := err.(*meta.ConfigError); ok {
			out = append(out, ce.Error())
			return
		}
		switch u := err.(type) {
		case interface{ Unwrap() []error }:
			for _, e := range u.Unwrap() {
				walk(e)
			}
		case interface{ Unwrap() error }:
			walk(u.Unwrap())
		}
	}
	walk(err)
	return out
}
