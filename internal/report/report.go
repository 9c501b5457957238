// Package report renders outcomes, constants and run history as text tables.
// Values are computed at full precision elsewhere and only rounded here.
package report

import (
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"

	"github.com/talgya/apery/internal/catalog"
	"github.com/talgya/apery/internal/compare"
	"github.com/talgya/apery/internal/constants"
	"github.com/talgya/apery/internal/persistence"
)

// DefaultDisplay is the number of significant digits shown when the caller
// does not ask for a specific width.
const DefaultDisplay = 12

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	missStyle   = cellStyle.Foreground(lipgloss.Color("9"))
	hitStyle    = cellStyle.Foreground(lipgloss.Color("10"))
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

// Outcomes renders one row per catalog entry.
func Outcomes(outs []catalog.Outcome, display int) string {
	if display <= 0 {
		display = DefaultDisplay
	}
	verdicts := make([]string, len(outs))
	t := newTable("NAME", "FORMULA", "PREDICTED", "REFERENCE", "REL ERROR", "ACCURACY %", "σ", "VERDICT")
	for i, o := range outs {
		row := []string{o.Entry.Name, o.Entry.Formula.String(), "", o.Entry.Reference, "", "", "", ""}
		switch {
		case o.Err != nil:
			row[2] = o.Err.Error()
			row[7] = "error"
		case o.Result != nil:
			row[2] = o.Value.Text('g', display)
			row[4] = o.Result.RelativeError.Text('e', 3)
			row[5] = o.Result.PercentAccuracy.Text('f', 6)
			row[7] = string(o.Result.Verdict)
		default:
			row[2] = o.Value.Text('g', display)
		}
		if o.Sigmas != nil {
			row[6] = o.Sigmas.Text('f', 2)
		}
		verdicts[i] = row[7]
		t.Row(row...)
	}
	t.StyleFunc(func(row, col int) lipgloss.Style {
		if row == table.HeaderRow {
			return headerStyle
		}
		if col != 7 || row < 0 || row >= len(verdicts) {
			return cellStyle
		}
		switch verdicts[row] {
		case string(compare.VerdictExact), string(compare.VerdictHit):
			return hitStyle
		case string(compare.VerdictMiss), "error":
			return missStyle
		}
		return cellStyle
	})
	return t.Render()
}

// Tally counts outcomes per verdict; failed entries count as "error" and
// uncompared ones as "value".
func Tally(outs []catalog.Outcome) map[string]int {
	m := map[string]int{}
	for _, o := range outs {
		switch {
		case o.Err != nil:
			m["error"]++
		case o.Result != nil:
			m[string(o.Result.Verdict)]++
		default:
			m["value"]++
		}
	}
	return m
}

// Summary is a one-line account of a run.
func Summary(outs []catalog.Outcome, digits int, elapsed time.Duration) string {
	m := Tally(outs)
	var parts []string
	for _, k := range []string{"exact", "hit", "near", "miss", "value", "error"} {
		if m[k] > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", m[k], k))
		}
	}
	return fmt.Sprintf("%d entries at %s digits in %s: %s",
		len(outs), humanize.Comma(int64(digits)), elapsed.Round(time.Millisecond), strings.Join(parts, ", "))
}

// Constants renders π, φ, ζ(2)…ζ(zetaMax) and the golden ladder at the
// provider's precision, shown to display digits.
func Constants(p *constants.Provider, zetaMax, display int) (string, error) {
	if display <= 0 {
		display = DefaultDisplay
	}
	t := newTable("SYMBOL", "VALUE")
	t.Row(constants.PI.Symbol(0), p.Pi().Text('g', display))
	t.Row(constants.PHI.Symbol(0), p.Phi().Text('g', display))
	for n := constants.MinZetaArg; n <= zetaMax; n++ {
		z, err := p.Zeta(n)
		if err != nil {
			return "", err
		}
		t.Row(constants.ZETA.Symbol(n), z.Text('g', display))
	}
	for _, g := range constants.GoldenLadder {
		t.Row(g.Name, p.PhiPow(g.Exponent).Text('g', display))
	}
	return t.Render(), nil
}

// Runs renders stored run summaries with ages relative to now.
func Runs(runs []persistence.Run, now time.Time) string {
	t := newTable("RUN", "STARTED", "DIGITS", "ENTRIES", "FAILED", "SOURCE")
	for _, r := range runs {
		t.Row(
			r.ID.String()[:8],
			humanize.RelTime(r.StartedAt, now, "ago", "from now"),
			humanize.Comma(int64(r.Digits)),
			fmt.Sprint(r.Entries),
			fmt.Sprint(r.Failed),
			r.Source,
		)
	}
	return t.Render()
}

// RunDetail renders stored outcome rows, rounding their decimal text to
// display digits.
func RunDetail(rows []persistence.OutcomeRow, display int) string {
	if display <= 0 {
		display = DefaultDisplay
	}
	t := newTable("NAME", "FORMULA", "PREDICTED", "REFERENCE", "REL ERROR", "VERDICT")
	for _, r := range rows {
		verdict := r.Verdict
		predicted := round(r.Predicted, 'g', display)
		if r.Error != "" {
			verdict = "error"
			predicted = r.Error
		}
		t.Row(r.Name, r.Formula, predicted, r.Reference, round(r.RelativeError, 'e', 3), verdict)
	}
	return t.Render()
}

func round(s string, format byte, n int) string {
	if s == "" {
		return ""
	}
	x, _, err := big.ParseFloat(s, 10, uint(4*len(s)+64), big.ToNearestEven)
	if err != nil {
		return s
	}
	return x.Text(format, n)
}
