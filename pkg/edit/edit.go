// Package edit applies text edits anchored to byte offsets of an original
// buffer. Edits never see each other's output: every offset refers to the
// untouched input, and the set is applied in one left-to-right pass.
package edit

import (
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrOverlap is returned when two edits claim the same input bytes.
	ErrOverlap = errors.New("overlapping edits")
	// ErrOutOfRange is returned when an edit lies outside the input.
	ErrOutOfRange = errors.New("edit out of range")
)

// Kind says what an Op does at its offset.
type Kind int

const (
	// InsertBefore inserts text before the node that starts at Start.
	InsertBefore Kind = iota
	// ReplaceSpan replaces input bytes [Start, End) with text.
	ReplaceSpan
	// InsertAfter inserts text after the node that ends at Start.
	InsertAfter
)

func (k Kind) String() string {
	switch k {
	case InsertBefore:
		return "insert-before"
	case ReplaceSpan:
		return "replace"
	case InsertAfter:
		return "insert-after"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Op is a single edit. Insertions have Start == End. Owner is the extent of
// the node that requested the edit; it orders insertions at the same offset
// so that enclosing nodes wrap enclosed ones.
type Op struct {
	Kind       Kind
	Start, End int
	Text       string
	OwnerStart int
	OwnerEnd   int
}

func (o Op) String() string {
	if o.Kind == ReplaceSpan {
		return fmt.Sprintf("%s [%d,%d) %q", o.Kind, o.Start, o.End, o.Text)
	}
	return fmt.Sprintf("%s @%d %q", o.Kind, o.Start, o.Text)
}

func (o Op) ownerLen() int {
	return o.OwnerEnd - o.OwnerStart
}

// OverlapError reports the two edits that conflict.
type OverlapError struct {
	A, B Op
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf("%v: %v and %v", ErrOverlap, e.A, e.B)
}

func (e *OverlapError) Unwrap() error {
	return ErrOverlap
}

// Set collects edits against one input.
type Set struct {
	ops []Op
}

// NewSet returns an empty edit set.
func NewSet() *Set {
	return &Set{}
}

// Add appends ops to the set.
func (s *Set) Add(ops ...Op) {
	s.ops = append(s.ops, ops...)
}

// Len returns the number of edits in the set.
func (s *Set) Len() int {
	return len(s.ops)
}

// Ops returns the edits in application order.
func (s *Set) Ops() []Op {
	ops := append([]Op(nil), s.ops...)
	sortOps(ops)
	return ops
}

// sortOps orders edits by offset. At the same offset an InsertAfter comes
// first, innermost owner first, so closing text of a node that ends here is
// emitted before anything that starts here. InsertBefore ops follow with the
// outermost owner first, and a ReplaceSpan comes last.
func sortOps(ops []Op) {
	sort.SliceStable(ops, func(i, j int) bool {
		a, b := ops[i], ops[j]
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		if rank(a.Kind) != rank(b.Kind) {
			return rank(a.Kind) < rank(b.Kind)
		}
		switch a.Kind {
		case InsertAfter:
			return a.ownerLen() < b.ownerLen()
		case InsertBefore:
			return a.ownerLen() > b.ownerLen()
		}
		return false
	})
}

func rank(k Kind) int {
	switch k {
	case InsertAfter:
		return 0
	case InsertBefore:
		return 1
	}
	return 2
}

// Apply applies the set to src and returns the edited buffer. src is not
// modified.
func (s *Set) Apply(src []byte) (*Buffer, error) {
	ops := s.Ops()
	for _, op := range ops {
		if op.Start < 0 || op.End < op.Start || op.End > len(src) {
			return nil, fmt.Errorf("%w: %v in %d bytes", ErrOutOfRange, op, len(src))
		}
		if op.Kind != ReplaceSpan && op.End != op.Start {
			return nil, fmt.Errorf("%w: insertion %v has a width", ErrOutOfRange, op)
		}
	}
	if err := checkOverlap(ops); err != nil {
		return nil, err
	}

	size := len(src)
	for _, op := range ops {
		size += len(op.Text) - (op.End - op.Start)
	}
	out := make([]byte, 0, size)
	marks := make([]mark, 0, len(ops))
	pos := 0
	for _, op := range ops {
		out = append(out, src[pos:op.Start]...)
		marks = append(marks, mark{in: op.Start, out: len(out)})
		out = append(out, op.Text...)
		pos = op.End
		marks = append(marks, mark{in: pos, out: len(out)})
	}
	out = append(out, src[pos:]...)
	return &Buffer{data: out, marks: marks}, nil
}

// checkOverlap rejects two replacements sharing bytes and insertions that
// fall strictly inside a replaced span. ops must be sorted.
func checkOverlap(ops []Op) error {
	var last *Op
	for i := range ops {
		op := &ops[i]
		if last != nil && op.Start < last.End {
			return &OverlapError{A: *last, B: *op}
		}
		if op.Kind == ReplaceSpan {
			last = op
		}
	}
	return nil
}

type mark struct {
	in, out int
}

// Buffer is the result of applying a Set.
type Buffer struct {
	data  []byte
	marks []mark
}

// Bytes returns the edited content.
func (b *Buffer) Bytes() []byte {
	return b.data
}

// Len returns the length of the edited content.
func (b *Buffer) Len() int {
	return len(b.data)
}

// MapOffset maps an offset of the original input to the edited buffer. An
// offset where text was inserted maps to the position after the insertion;
// an offset inside a replaced span maps to the start of its replacement.
func (b *Buffer) MapOffset(off int) int {
	delta := 0
	for i := 0; i < len(b.marks); i += 2 {
		start, end := b.marks[i], b.marks[i+1]
		if off < start.in {
			break
		}
		if off < end.in {
			return start.out
		}
		delta = end.out - end.in
	}
	return off + delta
}

// Apply applies set to src. A nil set copies src unchanged.
func Apply(src []byte, set *Set) (*Buffer, error) {
	if set == nil {
		set = NewSet()
	}
	return set.Apply(src)
}
