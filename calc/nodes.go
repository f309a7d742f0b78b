package calc

import (
	"strconv"
	"strings"
)

// node is a node in the abstract syntax tree of an expression.
type node struct {
	kind nodeKind

	name string
	unit string
	fn   Func

	left  *node
	right *node
}

type nodeKind int8

const (
	nodeNone nodeKind = iota

	nodeNum  // push num, scaled by unit
	nodeName // push lookup(name)

	nodeCall  // name is Func to call, right is link to nodeArg unless niladic
	nodeArg   // eval left, right is link to next arg
	nodeList  // right is link to nodeArg; only valid as the left of nodeIndex
	nodeIndex // left is the vector, eval right, then eval the selected element

	nodeNeg // evaluate left, then negate
	nodeAdd // evaluate left, add right
	nodeSub // evaluate left, sub right
	nodeMul // evaluate left, mul right
	nodeDiv // evaluate left, div by right
	nodePow // evaluate left, exp by right
	nodeNop // evaluate left
)

var nodeNames = [...]string{"None", "Num", "Name", "Call", "Arg", "List", "Index", "Neg", "Add", "Sub", "Mul", "Div", "Pow", "Nop"}

func (k nodeKind) String() string {
	if k < 0 || int(k) >= len(nodeNames) {
		return "nodeKind(" + strconv.Itoa(int(k)) + ")"
	}
	return nodeNames[k]
}

func (n *node) String() string {
	var b strings.Builder
	n.fmt(&b)
	return b.String()
}

func (n *node) fmt(b *strings.Builder) {
	b.WriteByte('(')
	defer b.WriteByte(')')
	switch n.kind {
	case nodeNone:
		// Invalid nodes use invalid characters.
		b.WriteByte('!')
		if n.left != nil {
			n.left.fmt(b)
		}
		b.WriteByte('#')
		if n.right != nil {
			n.right.fmt(b)
		}
		b.WriteByte('!')
	case nodeNum:
		b.WriteString(n.name)
		b.WriteString(n.unit)
	case nodeName:
		b.WriteString(n.name)
	case nodeCall:
		b.WriteString(n.name)
		n.fmtargs(b, '(', ')')
	case nodeArg:
		// Args usually only appear inside calls, which are handled by fmtargs.
		b.WriteByte(':')
		n.left.fmt(b)
		if n.right != nil {
			n.right.fmt(b)
		}
	case nodeList:
		n.fmtargs(b, '[', ']')
	case nodeIndex:
		n.left.fmt(b)
		b.WriteByte('[')
		n.right.fmt(b)
		b.WriteByte(']')
	case nodeNeg:
		b.WriteByte('-')
		n.left.fmt(b)
	case nodeAdd:
		n.left.fmt(b)
		b.WriteString(" + ")
		n.right.fmt(b)
	case nodeSub:
		n.left.fmt(b)
		b.WriteString(" - ")
		n.right.fmt(b)
	case nodeMul:
		n.left.fmt(b)
		b.WriteString(" * ")
		n.right.fmt(b)
	case nodeDiv:
		n.left.fmt(b)
		b.WriteString(" / ")
		n.right.fmt(b)
	case nodePow:
		n.left.fmt(b)
		b.WriteString(" ^ ")
		n.right.fmt(b)
	case nodeNop:
		b.WriteByte('+')
		n.left.fmt(b)
	default:
		panic("calc: invalid node kind " + n.kind.String() + " after writing " + b.String())
	}
}

// fmtargs writes the nodeArg chain hanging from n.right between l and r.
func (n *node) fmtargs(b *strings.Builder, l, r byte) {
	b.WriteByte(l)
	defer b.WriteByte(r)
	if n.right == nil {
		// Niladic call.
		return
	}
	n = n.right
	if n.kind != nodeArg {
		b.WriteString("***")
		n.fmt(b)
		return
	}
	n.left.fmt(b)
	for n.right != nil {
		n = n.right
		if n.kind != nodeArg {
			b.WriteString("***")
			n.fmt(b)
			return
		}
		b.WriteString(", ")
		n.left.fmt(b)
	}
}

// args counts the nodeArg chain hanging from n.right.
func (n *node) args() int {
	k := 0
	for l := n.right; l != nil; l = l.right {
		k++
	}
	return k
}
