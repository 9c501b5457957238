package formula

import (
	"math/big"

	"github.com/talgya/apery/internal/bigmath"
	"github.com/talgya/apery/internal/constants"
	"github.com/talgya/apery/internal/numerr"
	"github.com/talgya/apery/internal/precision"
	"github.com/talgya/apery/internal/solver"
)

// Env binds names to values for Ref nodes.
type Env map[string]*big.Float

// Evaluator interprets formula trees at the precision of its provider's
// context. It holds no mutable state of its own: identical trees and
// environments always evaluate to identical values.
type Evaluator struct {
	ctx    *precision.Context
	consts *constants.Provider
}

// NewEvaluator returns an evaluator drawing constants from p.
func NewEvaluator(p *constants.Provider) *Evaluator {
	return &Evaluator{ctx: p.Context(), consts: p}
}

// Context returns the precision context evaluations run at.
func (e *Evaluator) Context() *precision.Context { return e.ctx }

// Provider returns the constant provider backing the evaluator.
func (e *Evaluator) Provider() *constants.Provider { return e.consts }

// Eval evaluates n with an empty environment.
func (e *Evaluator) Eval(n Node) (*big.Float, error) {
	return e.EvalEnv(n, nil)
}

// EvalEnv evaluates n, resolving Ref nodes from env. Values in env are
// read, never modified.
func (e *Evaluator) EvalEnv(n Node, env Env) (*big.Float, error) {
	switch v := n.(type) {
	case nil:
		return nil, numerr.InvalidArgument("evaluate", "nil formula node")
	case Const:
		return e.consts.Get(v.Kind, v.Param)
	case Literal:
		x, err := e.ctx.Parse(v.Text)
		return e.finite("literal", x, err)
	case Ref:
		x, ok := env[v.Name]
		if !ok {
			return nil, numerr.InvalidArgument("ref", "unbound name %q", v.Name)
		}
		return e.ctx.Copy(x), nil
	case Unary:
		x, err := e.EvalEnv(v.X, env)
		if err != nil {
			return nil, err
		}
		z, err := e.unary(v.Op, x)
		return e.finite(v.Op.String(), z, err)
	case Binary:
		x, err := e.EvalEnv(v.X, env)
		if err != nil {
			return nil, err
		}
		y, err := e.EvalEnv(v.Y, env)
		if err != nil {
			return nil, err
		}
		z, err := e.binary(v.Op, x, y)
		return e.finite(v.Op.String(), z, err)
	case Root:
		a, err := e.EvalEnv(v.A, env)
		if err != nil {
			return nil, err
		}
		b, err := e.EvalEnv(v.B, env)
		if err != nil {
			return nil, err
		}
		x, err := solver.Solve(e.ctx, a, b)
		return e.finite("solve_self_consistent", x, err)
	default:
		return nil, numerr.InvalidArgument("evaluate", "unsupported node %T", n)
	}
}

// finite rejects results beyond the big.Float exponent range, so an
// infinity never reaches a later operator.
func (e *Evaluator) finite(op string, x *big.Float, err error) (*big.Float, error) {
	if err != nil {
		return nil, err
	}
	if x.IsInf() {
		return nil, numerr.Computation(op, "result overflows at %d digits", e.ctx.Digits())
	}
	return x, nil
}

func (e *Evaluator) binary(op BinaryOp, x, y *big.Float) (*big.Float, error) {
	ctx := e.ctx
	switch op {
	case OpAdd, OpSub:
		z := ctx.NewFloat()
		if op == OpAdd {
			z.Add(x, y)
		} else {
			z.Sub(x, y)
		}
		return ctx.Snap(z, larger(ctx, x, y)), nil
	case OpMul:
		return ctx.NewFloat().Mul(x, y), nil
	case OpDiv:
		if y.Sign() == 0 {
			return nil, numerr.Computation("div", "division by a value that is zero at %d digits", ctx.Digits())
		}
		return ctx.NewFloat().Quo(x, y), nil
	case OpPow:
		return e.pow(x, y)
	default:
		return nil, numerr.InvalidArgument("evaluate", "unknown binary operator %d", uint8(op))
	}
}

func larger(ctx *precision.Context, x, y *big.Float) *big.Float {
	ax := ctx.NewFloat().Abs(x)
	ay := ctx.NewFloat().Abs(y)
	if ay.Cmp(ax) > 0 {
		return ay
	}
	return ax
}

// pow computes x^y. Integer exponents use exact repeated squaring and accept
// negative bases; other exponents need x > 0.
func (e *Evaluator) pow(x, y *big.Float) (*big.Float, error) {
	ctx := e.ctx
	prec := ctx.Prec()

	if y.IsInt() {
		if n, acc := y.Int64(); acc == big.Exact {
			return e.powInt(x, n)
		}
	}

	switch x.Sign() {
	case 0:
		if y.Sign() > 0 {
			return ctx.NewFloat(), nil
		}
		return nil, numerr.Computation("pow", "zero raised to a negative power")
	case -1:
		if !y.IsInt() {
			return nil, numerr.Domain("pow", "negative base %s with non-integer exponent %s",
				x.Text('g', 10), y.Text('g', 10))
		}
		// integer exponent outside int64: |x|^y with the sign from y's parity
		abs := ctx.NewFloat().Abs(x)
		r := bigmath.Pow(abs, y, prec)
		yi, _ := y.Int(nil)
		if yi.Bit(0) == 1 {
			r.Neg(r)
		}
		return r, nil
	}
	return bigmath.Pow(x, y, prec), nil
}

func (e *Evaluator) powInt(x *big.Float, n int64) (*big.Float, error) {
	ctx := e.ctx
	if n == 0 {
		return ctx.Int(1), nil
	}
	if x.Sign() == 0 {
		if n > 0 {
			return ctx.NewFloat(), nil
		}
		return nil, numerr.Computation("pow", "zero raised to a negative power")
	}
	m := uint64(n)
	if n < 0 {
		m = uint64(-n)
	}
	r := bigmath.PowInt(x, m, ctx.Prec())
	if n < 0 {
		r.Quo(ctx.Int(1), r)
	}
	return r, nil
}

func (e *Evaluator) unary(op UnaryOp, x *big.Float) (*big.Float, error) {
	ctx := e.ctx
	prec := ctx.Prec()
	switch op {
	case OpNeg:
		return ctx.NewFloat().Neg(x), nil
	case OpSqrt:
		if x.Sign() < 0 {
			return nil, numerr.Domain("sqrt", "argument %s is negative", x.Text('g', 10))
		}
		return bigmath.Sqrt(x, prec), nil
	case OpLog:
		if x.Sign() <= 0 {
			return nil, numerr.Domain("log", "argument %s must be > 0", x.Text('g', 10))
		}
		return bigmath.Log(x, prec), nil
	case OpExp:
		return bigmath.Exp(x, prec), nil
	case OpSin:
		return bigmath.Sin(x, prec), nil
	case OpCos:
		return bigmath.Cos(x, prec), nil
	case OpArccos:
		if ctx.NewFloat().Abs(x).Cmp(ctx.Int(1)) > 0 {
			return nil, numerr.Domain("arccos", "argument %s outside [-1, 1]", x.Text('g', 10))
		}
		return bigmath.Acos(x, prec), nil
	case OpDegrees:
		return bigmath.Degrees(x, e.consts.Pi(), prec), nil
	default:
		return nil, numerr.InvalidArgument("evaluate", "unknown unary operator %d", uint8(op))
	}
}
