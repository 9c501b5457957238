package constants

import (
	"math/big"
	"sync"

	"github.com/talgya/apery/internal/bigmath"
	"github.com/talgya/apery/internal/precision"
)

type key struct {
	kind  Kind
	param int
}

// Provider supplies constants at the precision of one context. Computed
// values are cached and never mutated; every accessor returns a copy.
// A Provider is safe for concurrent use.
type Provider struct {
	ctx *precision.Context

	mu    sync.Mutex
	cache map[key]*big.Float
}

// NewProvider creates a provider bound to ctx.
func NewProvider(ctx *precision.Context) *Provider {
	return &Provider{
		ctx:   ctx,
		cache: make(map[key]*big.Float),
	}
}

// Context returns the precision context the provider computes at.
func (p *Provider) Context() *precision.Context { return p.ctx }

// Get returns the value of the constant (k, param). param is only read for ZETA.
func (p *Provider) Get(k Kind, param int) (*big.Float, error) {
	if err := Validate(k, param); err != nil {
		return nil, err
	}
	if k != ZETA {
		param = 0
	}
	return p.ctx.Copy(p.lookup(key{kind: k, param: param})), nil
}

// Pi returns π.
func (p *Provider) Pi() *big.Float {
	return p.ctx.Copy(p.lookup(key{kind: PI}))
}

// Phi returns the golden ratio.
func (p *Provider) Phi() *big.Float {
	return p.ctx.Copy(p.lookup(key{kind: PHI}))
}

// Zeta returns ζ(n) for n >= 2.
func (p *Provider) Zeta(n int) (*big.Float, error) {
	return p.Get(ZETA, n)
}

func (p *Provider) lookup(k key) *big.Float {
	p.mu.Lock()
	defer p.mu.Unlock()

	if v, ok := p.cache[k]; ok {
		return v
	}
	v := p.compute(k)
	p.cache[k] = v
	return v
}

func (p *Provider) compute(k key) *big.Float {
	switch k.kind {
	case PI:
		return bigmath.Pi(p.ctx.Prec())
	case PHI:
		return goldenRatio(p.ctx)
	default:
		return Zeta(p.ctx, k.param)
	}
}

func goldenRatio(ctx *precision.Context) *big.Float {
	phi := bigmath.Sqrt(ctx.Int(5), ctx.Prec())
	phi.Add(phi, ctx.Int(1))
	return phi.SetMantExp(phi, -1)
}
