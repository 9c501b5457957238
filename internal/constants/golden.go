package constants

import (
	"math/big"

	"github.com/talgya/apery/internal/bigmath"
)

// GoldenPower names one integer power of φ.
type GoldenPower struct {
	Name     string
	Exponent int
}

// GoldenLadder lists the powers φ⁻³ … φ³ that the quasicrystal formulas
// use as projection factors.
var GoldenLadder = []GoldenPower{
	{"phi^-3", -3},
	{"phi^-2", -2},
	{"phi^-1", -1},
	{"unity", 0},
	{"phi", 1},
	{"phi^2", 2},
	{"phi^3", 3},
}

// PhiPow returns φ^k for any integer k.
func (p *Provider) PhiPow(k int) *big.Float {
	phi := p.Phi()
	if k == 0 {
		return p.ctx.Int(1)
	}
	n := k
	if n < 0 {
		n = -n
	}
	v := bigmath.PowInt(phi, uint64(n), p.ctx.Prec())
	if k < 0 {
		v.Quo(p.ctx.Int(1), v)
	}
	return v
}
