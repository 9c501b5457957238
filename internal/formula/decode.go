package formula

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/talgya/apery/internal/constants"
)

// Tree wraps a Node so formulas can be embedded in YAML documents.
//
// A node is either a scalar or a single-key mapping:
//
//	pi | phi | 6 | "1/6"            constant or literal shorthand
//	{const: pi}  {zeta: 3}          constants
//	{lit: "0.25"}  {ref: alpha}     literal, named value
//	{sqrt: <node>}                  neg sqrt log exp sin cos arccos degrees
//	{add: [<node>, <node>, ...]}    add and mul fold any number of operands
//	{div: [<node>, <node>]}         sub div pow take exactly two
//	{root: {a: <node>, b: <node>}}  larger root of x = a − b/x
type Tree struct {
	Node
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (t *Tree) UnmarshalYAML(value *yaml.Node) error {
	n, err := Decode(value)
	if err != nil {
		return err
	}
	t.Node = n
	return nil
}

var unaryByName = invertUnary()
var binaryByName = invertBinary()

func invertUnary() map[string]UnaryOp {
	m := make(map[string]UnaryOp, len(unaryNames))
	for op, name := range unaryNames {
		m[name] = op
	}
	return m
}

func invertBinary() map[string]BinaryOp {
	m := make(map[string]BinaryOp, len(binaryNames))
	for op, name := range binaryNames {
		m[name] = op
	}
	return m
}

// Decode builds a Node from a parsed YAML node.
func Decode(value *yaml.Node) (Node, error) {
	if value.Kind == yaml.DocumentNode && len(value.Content) == 1 {
		value = value.Content[0]
	}
	switch value.Kind {
	case yaml.ScalarNode:
		return decodeScalar(value)
	case yaml.MappingNode:
		if len(value.Content) != 2 {
			return nil, decodeErr(value, "formula node must have exactly one key, got %d", len(value.Content)/2)
		}
		return decodeOp(value.Content[0].Value, value.Content[1])
	default:
		return nil, decodeErr(value, "formula node must be a scalar or a mapping")
	}
}

func decodeScalar(value *yaml.Node) (Node, error) {
	text := strings.TrimSpace(value.Value)
	if k, err := constants.ParseKind(text); err == nil && k != constants.ZETA {
		return Const{Kind: k}, nil
	}
	if !isNumber(text) {
		return nil, decodeErr(value, "%q is neither a constant nor a number", text)
	}
	return Literal{Text: text}, nil
}

// isNumber reports whether s is an exact rational literal ("6", "-0.25",
// "1e-7", "1/6"), the same forms the evaluator accepts.
func isNumber(s string) bool {
	_, ok := new(big.Rat).SetString(s)
	return ok
}

func decodeOp(key string, arg *yaml.Node) (Node, error) {
	switch key {
	case "const":
		k, err := constants.ParseKind(arg.Value)
		if err != nil {
			return nil, decodeErr(arg, "%v", err)
		}
		if k == constants.ZETA {
			return nil, decodeErr(arg, "zeta needs an argument: use {zeta: n}")
		}
		return Const{Kind: k}, nil
	case "zeta":
		n, err := strconv.Atoi(arg.Value)
		if err != nil {
			return nil, decodeErr(arg, "zeta argument %q is not an integer", arg.Value)
		}
		return Zeta(n), nil
	case "lit":
		if !isNumber(strings.TrimSpace(arg.Value)) {
			return nil, decodeErr(arg, "literal %q is not a number", arg.Value)
		}
		return Lit(strings.TrimSpace(arg.Value)), nil
	case "ref":
		if arg.Value == "" {
			return nil, decodeErr(arg, "ref needs a name")
		}
		return Var(arg.Value), nil
	case "root":
		return decodeRoot(arg)
	}

	if op, ok := unaryByName[key]; ok {
		x, err := Decode(arg)
		if err != nil {
			return nil, err
		}
		return Unary{Op: op, X: x}, nil
	}
	if op, ok := binaryByName[key]; ok {
		return decodeBinary(op, arg)
	}
	return nil, decodeErr(arg, "unknown formula operator %q", key)
}

func decodeBinary(op BinaryOp, arg *yaml.Node) (Node, error) {
	if arg.Kind != yaml.SequenceNode {
		return nil, decodeErr(arg, "%s expects a list of operands", op)
	}
	variadic := op == OpAdd || op == OpMul
	if len(arg.Content) < 2 || (!variadic && len(arg.Content) != 2) {
		return nil, decodeErr(arg, "%s expects two operands, got %d", op, len(arg.Content))
	}
	operands := make([]Node, 0, len(arg.Content))
	for _, c := range arg.Content {
		n, err := Decode(c)
		if err != nil {
			return nil, err
		}
		operands = append(operands, n)
	}
	n := operands[0]
	for _, y := range operands[1:] {
		n = Binary{Op: op, X: n, Y: y}
	}
	return n, nil
}

func decodeRoot(arg *yaml.Node) (Node, error) {
	var raw struct {
		A *Tree `yaml:"a"`
		B *Tree `yaml:"b"`
	}
	if err := arg.Decode(&raw); err != nil {
		return nil, err
	}
	if raw.A == nil || raw.B == nil {
		return nil, decodeErr(arg, "root needs both a and b")
	}
	return Root{A: raw.A.Node, B: raw.B.Node}, nil
}

func decodeErr(n *yaml.Node, format string, args ...any) error {
	return fmt.Errorf("formula line %d: %s", n.Line, fmt.Sprintf(format, args...))
}
