package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/entmap/internal/compose"
	"github.com/roach88/entmap/internal/meta"
	"github.com/roach88/entmap/internal/translate"
	"github.com/roach88/entmap/internal/where"
)

// RenderOptions holds flags for the render command.
type RenderOptions struct {
	Entity string
	Where  []string
}

// StatementInfo is one rendered statement in JSON output.
type StatementInfo struct {
	Kind   string      `json:"kind"`
	SQL    string      `json:"sql"`
	Params []ParamInfo `json:"params,omitempty"`
}

// ParamInfo is one named parameter of a rendered statement.
type ParamInfo struct {
	Name  string      `json:"name"`
	Value interface{} `json:"value"`
}

// operators in match order: two-character symbols first.
var operators = []string{"<=", ">=", "<>", "!=", "=", "<", ">"}

// NewRenderCommand creates the render command.
func NewRenderCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RenderOptions{}

	cmd := &cobra.Command{
		Use:   "render <declaration-file>",
		Short: "Print the SQL generated for a declared entity",
		Long: `Render the SELECT, COUNT, INSERT and UPDATE statements the repository
issues for one entity. Column values are shown as nil.

Predicates are given as Member<op>value, e.g. --where 'Age>=18'.
Supported operators: = <> != < <= > >=`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(newFormatter(rootOpts, cmd), opts, args[0])
		},
	}

	cmd.Flags().StringVarP(&opts.Entity, "entity", "e", "", "entity to render (required)")
	cmd.Flags().StringArrayVarP(&opts.Where, "where", "w", nil, "predicate Member<op>value (repeatable, joined with AND)")
	_ = cmd.MarkFlagRequired("entity")

	return cmd
}

func runRender(f *OutputFormatter, opts *RenderOptions, path string) error {
	tables, err := loadTables(f, path)
	if err != nil {
		return err
	}

	var td *meta.TableDescriptor
	for _, t := range tables {
		if t.Entity() == opts.Entity {
			td = t
			break
		}
	}
	if td == nil {
		return f.Fail(ExitCommandError, ErrCodeUnknownEntity,
			fmt.Sprintf("entity %q is not declared in %s", opts.Entity, path), nil)
	}

	var preds []translate.Predicate
	for _, raw := range opts.Where {
		p, err := parsePredicate(td, raw)
		if err != nil {
			return f.Fail(ExitCommandError, ErrCodeBadPredicate, err.Error(), raw)
		}
		preds = append(preds, p)
	}
	f.VerboseLog("Rendering %s with %d predicate(s)", td.Name(), len(preds))

	stmts, err := renderStatements(td, preds)
	if err != nil {
		return f.Fail(ExitFailure, ErrCodeGeneric, err.Error(), nil)
	}

	var sb strings.Builder
	for i, st := range stmts {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "-- %s\n%s\n", st.kind, st.String())
	}

	infos := make([]StatementInfo, len(stmts))
	for i, st := range stmts {
		infos[i] = StatementInfo{Kind: st.kind, SQL: st.SQL}
		for _, p := range st.Params {
			infos[i].Params = append(infos[i].Params, ParamInfo{Name: p.Name, Value: p.Value})
		}
	}
	return f.Success(infos, sb.String())
}

type renderedStatement struct {
	kind string
	compose.Statement
}

func renderStatements(td *meta.TableDescriptor, preds []translate.Predicate) ([]renderedStatement, error) {
	var w *translate.ComputedWhere
	if len(preds) > 0 {
		rendered := translate.Render(preds)
		w = &rendered
	}

	var out []renderedStatement
	add := func(kind string, st compose.Statement) {
		out = append(out, renderedStatement{kind: kind, Statement: st})
	}

	sel, err := compose.Select(td, compose.SelectOptions{Where: w})
	if err != nil {
		return nil, err
	}
	add("select", sel)
	add("count", compose.Count(td, w))

	if _, ok := td.PrimaryKey(); ok {
		byKey, err := compose.ByKey(td, nil)
		if err != nil {
			return nil, err
		}
		add("by_key", byKey)
	}
	if st, ok := compose.Insert(td, compose.NoValues); ok {
		add("insert", st)
	}
	if st, ok := compose.UpdateAll(td, compose.NoValues); ok {
		add("update_all", st)
	}
	if w != nil {
		if st, ok := compose.UpdateWhere(td, compose.NoValues, *w); ok {
			add("update_where", st)
		}
	}
	return out, nil
}

// parsePredicate parses "Member<op>value" against td's members.
func parsePredicate(td *meta.TableDescriptor, raw string) (translate.Predicate, error) {
	member, symbol, value, ok := splitPredicate(raw)
	if !ok {
		return translate.Predicate{}, fmt.Errorf("predicate %q: want Member<op>value", raw)
	}
	op, err := where.ParseOp(symbol)
	if err != nil {
		return translate.Predicate{}, fmt.Errorf("predicate %q: %w", raw, err)
	}
	col, found := td.Column(member)
	if !found {
		return translate.Predicate{}, fmt.Errorf("predicate %q: %s has no member %q", raw, td.Entity(), member)
	}
	return translate.Predicate{Table: td.Name(), Column: col.Name, Op: op, Value: literal(value)}, nil
}

func splitPredicate(raw string) (member, op, value string, ok bool) {
	for i := range len(raw) {
		for _, sym := range operators {
			if strings.HasPrefix(raw[i:], sym) {
				member = strings.TrimSpace(raw[:i])
				value = strings.TrimSpace(raw[i+len(sym):])
				return member, sym, value, member != ""
			}
		}
	}
	return "", "", "", false
}

// literal converts integer and boolean text; everything else stays a string.
func literal(s string) interface{} {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	switch s {
	case "true":
		return true
	case "false":
		return false
	}
	return s
}
