// Package constants supplies the fundamental constants π, φ and ζ(n) at the
// precision of a context. Values are pure functions of (kind, parameter,
// digits); a Provider caches them per context and hands out copies.
package constants

import (
	"fmt"
	"strings"

	"github.com/talgya/apery/internal/numerr"
)

// Kind identifies a fundamental constant.
type Kind uint8

const (
	// PI is the circle constant.
	PI Kind = iota + 1
	// PHI is the golden ratio (1 + √5) / 2.
	PHI
	// ZETA is the Riemann zeta function at an integer argument n >= 2.
	ZETA
)

// MinZetaArg is the smallest argument for which ζ(n) is supplied.
// ζ(1) diverges and ζ(0) is only defined by continuation.
const MinZetaArg = 2

var kindNames = map[Kind]string{
	PI:   "pi",
	PHI:  "phi",
	ZETA: "zeta",
}

// String returns the lower-case name of the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Symbol returns the mathematical symbol used in rendered formulas.
func (k Kind) Symbol(param int) string {
	switch k {
	case PI:
		return "π"
	case PHI:
		return "φ"
	case ZETA:
		return fmt.Sprintf("ζ(%d)", param)
	default:
		return k.String()
	}
}

// ParseKind resolves a name such as "pi", "PHI" or "zeta".
func ParseKind(s string) (Kind, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for k, n := range kindNames {
		if n == name {
			return k, nil
		}
	}
	return 0, numerr.InvalidArgument("constant", "unknown constant kind %q", s)
}

// Validate checks that (k, param) names a supplied constant.
func Validate(k Kind, param int) error {
	switch k {
	case PI, PHI:
		return nil
	case ZETA:
		if param < MinZetaArg {
			return numerr.Domain("zeta", "argument must be an integer >= %d, got %d", MinZetaArg, param)
		}
		return nil
	default:
		return numerr.InvalidArgument("constant", "unknown constant kind %d", uint8(k))
	}
}
