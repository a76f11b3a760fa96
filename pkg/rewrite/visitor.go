package rewrite

import (
	"github.com/raymyers/cmess/pkg/cabs"
	"github.com/raymyers/cmess/pkg/edit"
)

// Stats counts what a traversal saw.
type Stats struct {
	Binary    int // binary operator nodes visited
	Logical   int // && and || nodes among them
	Rewritten int // logical nodes that produced edits
	Skipped   int // logical nodes with a missing operand
}

// Visitor walks a tree depth-first and hands every logical AND/OR node to
// OnLogical. Traversal continues into the operands of every node, logical or
// not, until OnLogical returns Stop.
type Visitor struct {
	OnLogical func(b cabs.Binary) cabs.Action
	Stats     Stats
}

// Visit walks root. It returns Stop if the callback ended the traversal.
func (v *Visitor) Visit(root cabs.Node) cabs.Action {
	return cabs.Walk(root, func(n cabs.Node) cabs.Action {
		b, ok := n.(cabs.Binary)
		if !ok {
			return cabs.Continue
		}
		v.Stats.Binary++
		if !b.Op.IsLogical() {
			return cabs.Continue
		}
		v.Stats.Logical++
		if v.OnLogical == nil {
			return cabs.Continue
		}
		return v.OnLogical(b)
	})
}

// complete reports whether both operands of b were parsed.
func complete(b cabs.Binary) bool {
	for _, n := range []cabs.Node{b.Left, b.Right} {
		if n == nil {
			return false
		}
		if _, bad := n.(cabs.Bad); bad {
			return false
		}
	}
	return true
}

// Rewrite plans the edits for every logical operator under root.
func Rewrite(root cabs.Node, names Names) (*edit.Set, Stats) {
	set := edit.NewSet()
	v := &Visitor{}
	v.OnLogical = func(b cabs.Binary) cabs.Action {
		if !complete(b) {
			v.Stats.Skipped++
			return cabs.Continue
		}
		set.Add(Plan(b.Op, b.Left.Extent().Start, b.OpLoc, b.Right.Extent().End, names)...)
		v.Stats.Rewritten++
		return cabs.Continue
	}
	v.Visit(root)
	return set, v.Stats
}
