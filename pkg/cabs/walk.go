package cabs

// Action tells Walk whether to keep going.
type Action int

const (
	Continue Action = iota
	Stop
)

// Visitor is called for every node in depth-first pre-order.
type Visitor func(n Node) Action

// Walk traverses the tree rooted at n, calling v on each node before its
// children. Children are visited in source order. It returns Stop if the
// visitor stopped the traversal.
func Walk(n Node, v Visitor) Action {
	if n == nil {
		return Continue
	}
	if v(n) == Stop {
		return Stop
	}

	switch n := n.(type) {
	case Ident, Literal, Keyword, Bad:
		// leaves
	case Unary:
		return Walk(n.Operand, v)
	case Postfix:
		return Walk(n.Operand, v)
	case Binary:
		return walkAll(v, n.Left, n.Right)
	case Conditional:
		return walkAll(v, n.Cond, n.Then, n.Else)
	case Cast:
		return walkAll(v, n.Type, n.Operand)
	case Call:
		return walkAll(v, n.Func, n.Args)
	case Index:
		return walkAll(v, n.Array, n.Index)
	case Member:
		return walkAll(v, n.Object, n.Name)
	case Template:
		return walkAll(v, n.Name, n.Args)
	case Lambda:
		if n.Params != nil {
			return walkAll(v, n.Captures, *n.Params, n.Body)
		}
		return walkAll(v, n.Captures, n.Body)
	case Group:
		return walkAll(v, n.Items...)
	case Block:
		return walkAll(v, n.Items...)
	case TranslationUnit:
		return walkAll(v, n.Items...)
	}
	return Continue
}

func walkAll(v Visitor, nodes ...Node) Action {
	for _, n := range nodes {
		if Walk(n, v) == Stop {
			return Stop
		}
	}
	return Continue
}
