// Package block implements the block graph data model: a Target-scoped,
// index-addressable table of Block nodes linked by next/parent indices, the
// tagged BlockInput slot value, and the Trigger a hat block carries.
package block

import (
	"stagevm/lang/blockspec"
	"stagevm/lang/value"
)

// TriggerKind identifies the variant of a Trigger.
type TriggerKind uint8

const (
	WhenFlagClicked TriggerKind = iota
	WhenSpriteClicked
	WhenKeyPressed
	WhenBackdropSwitches
	WhenIReceive
	WhenIStartAsAClone
)

// Trigger is the event that activates a script. Equality is structural:
// two Triggers of the same Kind and same Param are considered the same
// trigger by the scheduler's dispatch (§3).
type Trigger struct {
	Kind  TriggerKind
	Param string // key char, backdrop name, or broadcast name; unused otherwise
}

// Equal reports structural equality, as required for trigger dispatch.
func (t Trigger) Equal(o Trigger) bool {
	return t.Kind == o.Kind && t.Param == o.Param
}

// InputKind identifies the variant of a BlockInput.
type InputKind uint8

const (
	// InputLiteral holds a literal ScalarValue.
	InputLiteral InputKind = iota
	// InputReporter holds a nested reporter subtree, owned in place (not
	// indexed in the Target's block Table).
	InputReporter
	// InputSubstack holds a back-reference by index into the Target-scoped
	// block Table: the start of a C-shaped command stack, or a command-chain
	// successor reached via an input slot.
	InputSubstack
)

// Input is one value held in a Block's field_values slot.
type Input struct {
	Kind      InputKind
	Literal   value.Value
	Reporter  *Block // owned in place when Kind == InputReporter
	Substack  int    // index into the owning Table when Kind == InputSubstack
	HasValue  bool   // distinguishes an explicitly-empty slot from zero value.Value
}

// LiteralInput constructs a literal Input.
func LiteralInput(v value.Value) Input {
	return Input{Kind: InputLiteral, Literal: v, HasValue: true}
}

// ReporterInput constructs a reporter-subtree Input.
func ReporterInput(b *Block) Input {
	return Input{Kind: InputReporter, Reporter: b, HasValue: true}
}

// SubstackInput constructs a substack-reference Input.
func SubstackInput(index int) Input {
	return Input{Kind: InputSubstack, Substack: index, HasValue: true}
}

// EmptyInput constructs an explicitly-empty Input slot: a loaded project may
// leave an optional input disconnected (no shadow, no reporter). HasValue is
// false, distinguishing this from a literal zero value.
func EmptyInput() Input {
	return Input{}
}

// Block is one node of the block graph. Next and Parent are indices into the
// owning Table, or -1 when absent. FieldValues must have the same length as
// Spec.FieldNames (§3 invariant); this is checked by compiler.CheckArity
// (§8 item 1).
type Block struct {
	Spec        *blockspec.BlockSpec
	FieldValues []Input
	Next        int // -1 if none
	Parent      int // -1 if none
}

// Table is the index-addressable set of Blocks belonging to one Target.
// Reporter subtrees embedded inside FieldValues are not indexed here (they
// are owned in place by their parent slot); Next/Parent/Substack indices
// refer to live entries of this same Table.
type Table struct {
	Blocks []*Block
}

// Root reports whether the block at index i is a hat root: its Parent is
// absent and its Shape is Hat (§4.1).
func (t *Table) Root(i int) bool {
	b := t.Blocks[i]
	return b.Parent == -1 && b.Spec.Shape == blockspec.Hat
}

// Roots returns the indices of all hat-root blocks in the table, in table
// order.
func (t *Table) Roots() []int {
	var roots []int
	for i, b := range t.Blocks {
		if b.Parent == -1 && b.Spec.Shape == blockspec.Hat {
			roots = append(roots, i)
		}
	}
	return roots
}
