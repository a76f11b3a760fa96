// Package rewrite turns the logical operators of a parsed translation unit
// into prefix macro calls. It only plans edits; pkg/edit applies them.
package rewrite

import (
	"github.com/raymyers/cmess/pkg/cabs"
	"github.com/raymyers/cmess/pkg/edit"
)

// Names are the macro names used for the two logical operators.
type Names struct {
	And string
	Or  string
}

// DefaultNames returns AND and OR.
func DefaultNames() Names {
	return Names{And: "AND", Or: "OR"}
}

// For returns the macro name for op, or "" if op is not logical.
func (n Names) For(op cabs.BinaryOp) string {
	switch op {
	case cabs.OpLogAnd:
		return n.And
	case cabs.OpLogOr:
		return n.Or
	}
	return ""
}

// Plan returns the three edits that turn `left op right` into
// `NAME(left , right)`: the macro name and '(' go before the left operand,
// the operator token becomes ',' and ')' follows the right operand. opSpan
// is the operator token as spelled, so C++ `and` is three bytes wide.
// Plan returns nil for operators other than && and ||.
func Plan(op cabs.BinaryOp, leftStart int, opSpan cabs.Span, rightEnd int, names Names) []edit.Op {
	name := names.For(op)
	if name == "" {
		return nil
	}
	return []edit.Op{
		{Kind: edit.InsertBefore, Start: leftStart, End: leftStart, Text: name + "(",
			OwnerStart: leftStart, OwnerEnd: rightEnd},
		{Kind: edit.ReplaceSpan, Start: opSpan.Start, End: opSpan.End, Text: ",",
			OwnerStart: leftStart, OwnerEnd: rightEnd},
		{Kind: edit.InsertAfter, Start: rightEnd, End: rightEnd, Text: ")",
			OwnerStart: leftStart, OwnerEnd: rightEnd},
	}
}
