package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/talgya/apery/internal/compare"
	"github.com/talgya/apery/internal/formula"
	"github.com/talgya/apery/internal/numerr"
)

// Outcome is the evaluation of one entry. Exactly one of Value and Err is set.
type Outcome struct {
	Entry  Entry
	Value  *big.Float
	Result *compare.Result // nil when the entry has no reference
	Sigmas *big.Float      // nil without an uncertainty
	Err    error
}

// Runner evaluates catalogs with one evaluator. Independent entries are
// evaluated concurrently.
type Runner struct {
	eval    *formula.Evaluator
	workers int
}

// NewRunner returns a runner using at most workers goroutines; workers <= 0
// means one per CPU.
func NewRunner(eval *formula.Evaluator, workers int) *Runner {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Runner{eval: eval, workers: workers}
}

// Evaluator returns the evaluator the runner uses.
func (r *Runner) Evaluator() *formula.Evaluator { return r.eval }

// Run evaluates every entry of c. A failing entry records its error in its
// outcome and does not stop the others; entries referencing a failed entry
// fail too. The returned error is non-nil only for an invalid catalog or a
// cancelled context.
func (r *Runner) Run(ctx context.Context, c Catalog) ([]Outcome, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	start := time.Now()
	outcomes := make([]Outcome, len(c))
	env := formula.Env{}
	failed := map[string]error{}

	for _, level := range c.levels() {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(r.workers)
		for _, i := range level {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				outcomes[i] = r.evaluate(c[i], env, failed)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, fmt.Errorf("run catalog: %w", err)
		}
		// env and failed are only written between levels.
		for _, i := range level {
			o := outcomes[i]
			if o.Err != nil {
				failed[o.Entry.Name] = o.Err
				continue
			}
			env[o.Entry.Name] = o.Value
		}
	}

	errs := len(failed)
	slog.Info("catalog evaluated",
		"entries", len(c),
		"failed", errs,
		"digits", r.eval.Context().Digits(),
		"elapsed", time.Since(start).Round(time.Millisecond),
	)
	return outcomes, nil
}

func (r *Runner) evaluate(e Entry, env formula.Env, failed map[string]error) (out Outcome) {
	out.Entry = e
	// A NaN from big.Float arithmetic fails this entry, not the process.
	defer func() {
		if p := recover(); p != nil {
			nan, ok := p.(big.ErrNaN)
			if !ok {
				panic(p)
			}
			out = Outcome{Entry: e, Err: numerr.Computation("evaluate", "%s", nan.Error())}
		}
	}()
	for _, ref := range Refs(e.Formula) {
		if err, ok := failed[ref]; ok {
			out.Err = fmt.Errorf("depends on %s: %w", ref, err)
			return out
		}
	}

	v, err := r.eval.EvalEnv(e.Formula, env)
	if err != nil {
		slog.Debug("entry failed", "name", e.Name, "error", err)
		out.Err = err
		return out
	}

	if e.Compared() {
		res, sig, err := r.compare(e, v)
		if err != nil {
			out.Err = err
			return out
		}
		out.Result = res
		out.Sigmas = sig
	}
	out.Value = v
	return out
}

func (r *Runner) compare(e Entry, v *big.Float) (*compare.Result, *big.Float, error) {
	pc := r.eval.Context()
	ref, err := pc.Parse(e.Reference)
	if err != nil {
		return nil, nil, err
	}
	tol, err := pc.Parse(e.Tolerance)
	if err != nil {
		return nil, nil, err
	}
	res, err := compare.Compare(pc, v, ref, tol)
	if err != nil {
		return nil, nil, err
	}
	if e.Uncertainty == "" {
		return &res, nil, nil
	}
	unc, err := pc.Parse(e.Uncertainty)
	if err != nil {
		return nil, nil, err
	}
	sig, err := compare.Sigmas(pc, v, ref, unc)
	if err != nil {
		return nil, nil, err
	}
	return &res, sig, nil
}
