package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/entmap/internal/meta"
)

// TableInfo describes one declared table in check output.
type TableInfo struct {
	Entity     string       `json:"entity"`
	Table      string       `json:"table"`
	PrimaryKey string       `json:"primary_key,omitempty"`
	Columns    []ColumnInfo `json:"columns"`
}

// ColumnInfo describes one column in check output.
type ColumnInfo struct {
	Name       string `json:"name"`
	Member     string `json:"member"`
	Insert     bool   `json:"insert"`
	Update     bool   `json:"update"`
	PrimaryKey bool   `json:"pk,omitempty"`
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check <declaration-file>",
		Short: "Validate a declaration file and list its tables",
		Long: `Load a YAML or CUE declaration file, apply the table metadata rules
(unique table, column and member names, at most one primary key) and
print the resulting tables.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(newFormatter(rootOpts, cmd), args[0])
		},
	}
}

func runCheck(f *OutputFormatter, path string) error {
	tables, err := loadTables(f, path)
	if err != nil {
		return err
	}

	infos := make([]TableInfo, len(tables))
	for i, td := range tables {
		infos[i] = describeTable(td)
	}
	return f.Success(infos, formatTables(infos))
}

func describeTable(td *meta.TableDescriptor) TableInfo {
	info := TableInfo{Entity: td.Entity(), Table: td.Name()}
	if pk, ok := td.PrimaryKey(); ok {
		info.PrimaryKey = pk.Name
	}
	for _, c := range td.Columns() {
		info.Columns = append(info.Columns, ColumnInfo{
			Name:       c.Name,
			Member:     c.Member,
			Insert:     c.IncludeOnInsert,
			Update:     c.IncludeOnUpdate,
			PrimaryKey: c.PrimaryKey,
		})
	}
	return info
}

func formatTables(infos []TableInfo) string {
	var sb strings.Builder
	for _, info := range infos {
		fmt.Fprintf(&sb, "%s (%s)\n", info.Table, info.Entity)
		tw := tabwriter.NewWriter(&sb, 0, 4, 2, ' ', 0)
		for _, c := range info.Columns {
			fmt.Fprintf(tw, "  %s\t%s\t%s\n", c.Name, c.Member, columnFlags(c))
		}
		tw.Flush()
	}
	fmt.Fprintf(&sb, "✓ %d table(s) valid\n", len(infos))
	return sb.String()
}

func columnFlags(c ColumnInfo) string {
	var flags []string
	if c.PrimaryKey {
		flags = append(flags, "pk")
	}
	if c.Insert {
		flags = append(flags, "insert")
	}
	if c.Update {
		flags = append(flags, "update")
	}
	if len(flags) == 0 {
		return "-"
	}
	return strings.Join(flags, " ")
}
