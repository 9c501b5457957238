package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/talgya/apery/internal/constants"
	"github.com/talgya/apery/internal/numerr"
	"github.com/talgya/apery/internal/report"
)

var zetaMax int

// constantCmd prints one constant at full precision, or a table of all of them
var constantCmd = &cobra.Command{
	Use:   "constant [pi|phi|zeta] [n]",
	Short: "Print π, φ or ζ(n) at the configured precision",
	Long: `With a kind, prints that constant to every configured digit.
Without arguments, prints a table of π, φ, ζ(2)…ζ(max) and the powers of φ.

Examples:
  apery constant pi --digits 1000
  apery constant zeta 3
  apery constant --zeta-max 8`,
	Args: cobra.MaximumNArgs(2),
	RunE: runConstant,
}

func init() {
	constantCmd.Flags().IntVar(&zetaMax, "zeta-max", 5, "Largest ζ argument in the table")
}

func runConstant(cmd *cobra.Command, args []string) error {
	eval, err := newEvaluator()
	if err != nil {
		return err
	}
	p := eval.Provider()
	out := cmd.OutOrStdout()

	if len(args) == 0 {
		table, err := report.Constants(p, zetaMax, report.DefaultDisplay)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, table)
		return nil
	}

	kind, err := constants.ParseKind(args[0])
	if err != nil {
		return err
	}
	param := 0
	if len(args) == 2 {
		param, err = strconv.Atoi(args[1])
		if err != nil {
			return numerr.InvalidArgument("constant", "argument is not an integer: %q", args[1])
		}
	} else if kind == constants.ZETA {
		return numerr.InvalidArgument("constant", "zeta needs an argument")
	}

	v, err := p.Get(kind, param)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, eval.Context().Text(v, 0))
	return nil
}
