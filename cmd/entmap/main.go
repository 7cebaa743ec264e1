// Command entmap inspects entity declaration files and renders the SQL the
// repository layer generates for them.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/roach88/entmap/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		// ExitErrors were already reported by the command's formatter.
		var exitErr *cli.ExitError
		if !errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(cli.GetExitCode(err))
	}
}
