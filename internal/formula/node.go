// Package formula represents closed-form expressions as data and evaluates
// them at the precision of a context.
//
// A formula is a tree of Const, Literal, Ref, Unary, Binary and Root nodes.
// Formulas are built with the helpers in this file or decoded from YAML and
// are interpreted by a single Evaluator, so every formula shares one
// precision and error-handling path.
package formula

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/talgya/apery/internal/constants"
)

// Node is an expression tree node. The set of node types is closed.
type Node interface {
	fmt.Stringer
	node()
}

// Const references a fundamental constant.
type Const struct {
	Kind  constants.Kind
	Param int // zeta argument, ignored for other kinds
}

// Literal is an exact decimal or rational number such as "0.25", "1e-7" or "1/6".
// It is rounded once, to the evaluation precision.
type Literal struct {
	Text string
}

// Ref names a value supplied by the evaluation environment.
type Ref struct {
	Name string
}

// UnaryOp is a single-argument operator.
type UnaryOp uint8

const (
	OpNeg UnaryOp = iota + 1
	OpSqrt
	OpLog
	OpExp
	OpSin
	OpCos
	OpArccos
	OpDegrees
)

var unaryNames = map[UnaryOp]string{
	OpNeg:     "neg",
	OpSqrt:    "sqrt",
	OpLog:     "log",
	OpExp:     "exp",
	OpSin:     "sin",
	OpCos:     "cos",
	OpArccos:  "arccos",
	OpDegrees: "degrees",
}

func (op UnaryOp) String() string {
	if s, ok := unaryNames[op]; ok {
		return s
	}
	return "unary(" + strconv.Itoa(int(op)) + ")"
}

// Unary applies Op to X.
type Unary struct {
	Op UnaryOp
	X  Node
}

// BinaryOp is a two-argument operator.
type BinaryOp uint8

const (
	OpAdd BinaryOp = iota + 1
	OpSub
	OpMul
	OpDiv
	OpPow
)

var binaryNames = map[BinaryOp]string{
	OpAdd: "add",
	OpSub: "sub",
	OpMul: "mul",
	OpDiv: "div",
	OpPow: "pow",
}

func (op BinaryOp) String() string {
	if s, ok := binaryNames[op]; ok {
		return s
	}
	return "binary(" + strconv.Itoa(int(op)) + ")"
}

// Binary applies Op to X and Y.
type Binary struct {
	Op   BinaryOp
	X, Y Node
}

// Root is the larger solution of the self-consistency relation x = A − B/x.
type Root struct {
	A, B Node
}

func (Const) node()   {}
func (Literal) node() {}
func (Ref) node()     {}
func (Unary) node()   {}
func (Binary) node()  {}
func (Root) node()    {}

// Builders.

func Pi() Node          { return Const{Kind: constants.PI} }
func Phi() Node         { return Const{Kind: constants.PHI} }
func Zeta(n int) Node   { return Const{Kind: constants.ZETA, Param: n} }
func Lit(s string) Node { return Literal{Text: s} }
func Int(v int64) Node  { return Literal{Text: strconv.FormatInt(v, 10)} }
func Var(name string) Node {
	return Ref{Name: name}
}

func Add(x, y Node) Node { return Binary{Op: OpAdd, X: x, Y: y} }
func Sub(x, y Node) Node { return Binary{Op: OpSub, X: x, Y: y} }
func Mul(x, y Node) Node { return Binary{Op: OpMul, X: x, Y: y} }
func Div(x, y Node) Node { return Binary{Op: OpDiv, X: x, Y: y} }
func Pow(x, y Node) Node { return Binary{Op: OpPow, X: x, Y: y} }

func Neg(x Node) Node     { return Unary{Op: OpNeg, X: x} }
func Sqrt(x Node) Node    { return Unary{Op: OpSqrt, X: x} }
func Log(x Node) Node     { return Unary{Op: OpLog, X: x} }
func Exp(x Node) Node     { return Unary{Op: OpExp, X: x} }
func Sin(x Node) Node     { return Unary{Op: OpSin, X: x} }
func Cos(x Node) Node     { return Unary{Op: OpCos, X: x} }
func Arccos(x Node) Node  { return Unary{Op: OpArccos, X: x} }
func Degrees(x Node) Node { return Unary{Op: OpDegrees, X: x} }

// SelfConsistent returns the node solving x = a − b/x.
func SelfConsistent(a, b Node) Node { return Root{A: a, B: b} }

// Product folds factors left to right with Mul.
func Product(first Node, rest ...Node) Node {
	n := first
	for _, f := range rest {
		n = Mul(n, f)
	}
	return n
}

// Sum folds terms left to right with Add.
func Sum(first Node, rest ...Node) Node {
	n := first
	for _, t := range rest {
		n = Add(n, t)
	}
	return n
}

// Rendering. Binding strength: sums 1, products 2, unary minus 3, powers 4,
// atoms and function calls 5.

const (
	precSum = iota + 1
	precProduct
	precNeg
	precPow
	precAtom
)

func (c Const) String() string   { return c.Kind.Symbol(c.Param) }
func (l Literal) String() string { return l.Text }
func (r Ref) String() string     { return r.Name }

func (u Unary) String() string  { return render(u, 0) }
func (b Binary) String() string { return render(b, 0) }

func (r Root) String() string {
	return fmt.Sprintf("root[x = %s - %s/x]", render(r.A, precSum+1), render(r.B, precAtom))
}

func strength(n Node) int {
	switch v := n.(type) {
	case Literal:
		if strings.Contains(v.Text, "/") {
			return precProduct
		}
		if strings.HasPrefix(v.Text, "-") {
			return precNeg
		}
		return precAtom
	case Unary:
		if v.Op == OpNeg {
			return precNeg
		}
		return precAtom
	case Binary:
		switch v.Op {
		case OpAdd, OpSub:
			return precSum
		case OpMul, OpDiv:
			return precProduct
		default:
			return precPow
		}
	default:
		return precAtom
	}
}

// render prints n, parenthesised when it binds less tightly than min.
func render(n Node, min int) string {
	var s string
	switch v := n.(type) {
	case nil:
		return "<nil>"
	case Unary:
		if v.Op == OpNeg {
			s = "-" + render(v.X, precNeg+1)
		} else {
			s = v.Op.String() + "(" + render(v.X, 0) + ")"
		}
	case Binary:
		p := strength(v)
		switch v.Op {
		case OpAdd:
			s = render(v.X, p) + " + " + render(v.Y, p)
		case OpSub:
			s = render(v.X, p) + " - " + render(v.Y, p+1)
		case OpMul:
			s = render(v.X, p) + "·" + render(v.Y, p+1)
		case OpDiv:
			s = render(v.X, p) + "/" + render(v.Y, p+1)
		default:
			s = render(v.X, p+1) + "^" + render(v.Y, p)
		}
	default:
		s = n.String()
	}
	if strength(n) < min {
		return "(" + s + ")"
	}
	return s
}
