// Package blockspec holds the immutable metadata describing each opcode a
// block graph may reference: its display name, field arity, field kinds and
// shape. Lookup by opcode name is amortized once at load time (a hash map);
// per-block field lookup by name is a linear scan, since a block's field
// count is small (0-4 typically), per §3.
package blockspec

import "github.com/mna/swiss"

// FieldKind distinguishes a literal-only slot from one that may hold a
// reporter subtree or a substack reference.
type FieldKind uint8

const (
	// Field is a literal-only slot.
	Field FieldKind = iota
	// Input may hold a reporter subtree or a substack block index.
	Input
)

// Shape is the block's visual/semantic category.
type Shape uint8

const (
	Command Shape = iota
	Reporter
	Boolean
	Hat
)

func (s Shape) String() string {
	switch s {
	case Command:
		return "command"
	case Reporter:
		return "reporter"
	case Boolean:
		return "boolean"
	case Hat:
		return "hat"
	default:
		return "invalid"
	}
}

// BlockSpec is the immutable metadata for one opcode.
type BlockSpec struct {
	Opcode      string
	DisplayName string
	FieldNames  []string
	FieldKinds  []FieldKind
	Shape       Shape
}

// FieldIndex returns the index of the named field, or -1 if the spec has no
// such field. The scan is linear by design: field counts are tiny.
func (b *BlockSpec) FieldIndex(name string) int {
	for i, n := range b.FieldNames {
		if n == name {
			return i
		}
	}
	return -1
}

// Registry is the process-lifetime map from opcode name to BlockSpec.
// Backed by a Swiss-table map for amortized O(1) lookup, consistent with
// the rest of this codebase's choice of map implementation.
type Registry struct {
	specs *swiss.Map[string, *BlockSpec]
}

// NewRegistry returns an empty Registry with initial capacity for size
// entries.
func NewRegistry(size int) *Registry {
	return &Registry{specs: swiss.NewMap[string, *BlockSpec](uint32(size))}
}

// Register adds (or replaces) the BlockSpec for its Opcode.
func (r *Registry) Register(spec *BlockSpec) {
	r.specs.Put(spec.Opcode, spec)
}

// Lookup returns the BlockSpec registered for opcode, or nil, false if none
// was registered.
func (r *Registry) Lookup(opcode string) (*BlockSpec, bool) {
	return r.specs.Get(opcode)
}

// Standard returns a Registry pre-populated with the opcodes named in §4.1:
// math_number, motion_movesteps, control_repeat, plus the minimal set of
// hats named in §4.1's Hat -> Trigger mapping and a handful of companion
// reporters/commands exercised by the scheduler (motion_gotoxy, and the
// comparison/arithmetic blocks used to build control_repeat's own bytecode
// are opcode-free since they are compiler-internal instructions, not
// blocks).
func Standard() *Registry {
	r := NewRegistry(16)
	r.Register(&BlockSpec{
		Opcode: "math_number", DisplayName: "number",
		FieldNames: []string{"NUM"}, FieldKinds: []FieldKind{Field},
		Shape: Reporter,
	})
	r.Register(&BlockSpec{
		Opcode: "motion_movesteps", DisplayName: "move __ steps",
		FieldNames: []string{"STEPS"}, FieldKinds: []FieldKind{Input},
		Shape: Command,
	})
	r.Register(&BlockSpec{
		Opcode: "motion_gotoxy", DisplayName: "go to x: __ y: __",
		FieldNames: []string{"X", "Y"}, FieldKinds: []FieldKind{Input, Input},
		Shape: Command,
	})
	r.Register(&BlockSpec{
		Opcode: "control_repeat", DisplayName: "repeat __",
		FieldNames: []string{"TIMES", "SUBSTACK"},
		FieldKinds: []FieldKind{Input, Input},
		Shape:      Command,
	})
	r.Register(&BlockSpec{
		Opcode: "event_whenflagclicked", DisplayName: "when green flag clicked",
		Shape: Hat,
	})
	r.Register(&BlockSpec{
		Opcode: "event_whenthisspriteclicked", DisplayName: "when this sprite clicked",
		Shape: Hat,
	})
	r.Register(&BlockSpec{
		Opcode: "event_whenkeypressed", DisplayName: "when __ key pressed",
		FieldNames: []string{"KEY_OPTION"}, FieldKinds: []FieldKind{Field},
		Shape: Hat,
	})
	r.Register(&BlockSpec{
		Opcode: "event_whenbackdropswitchesto", DisplayName: "when backdrop switches to __",
		FieldNames: []string{"BACKDROP"}, FieldKinds: []FieldKind{Field},
		Shape: Hat,
	})
	r.Register(&BlockSpec{
		Opcode: "event_whenbroadcastreceived", DisplayName: "when I receive __",
		FieldNames: []string{"BROADCAST_OPTION"}, FieldKinds: []FieldKind{Field},
		Shape: Hat,
	})
	r.Register(&BlockSpec{
		Opcode: "control_start_as_clone", DisplayName: "when I start as a clone",
		Shape: Hat,
	})
	return r
}
