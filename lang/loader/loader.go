// Package loader implements the external collaborator boundary of §1/§6: it
// decodes a project archive (a zip file containing a JSON manifest plus
// costume asset bytes) into an *actor.Project the compiler and runtime can
// consume. Archive parsing uses the standard library (no third-party zip
// reader appears anywhere in the retrieved reference pack); the JSON
// manifest is decoded with jsoniter, a drop-in for encoding/json found in
// the pack's own dependency graph. Image bytes are never decoded here —
// they are handed to the renderer façade's CreateSVGSkin as opaque bytes,
// preserving the external-collaborator boundary §1 draws around image
// decoding.
package loader

import (
	"archive/zip"
	"fmt"
	"io"
	"sort"

	jsoniter "github.com/json-iterator/go"

	"stagevm/lang/actor"
	"stagevm/lang/block"
	"stagevm/lang/blockspec"
	"stagevm/lang/compiler"
	"stagevm/lang/renderer"
	"stagevm/lang/value"
)

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// manifestName is the project.json entry's fixed name inside the archive.
const manifestName = "project.json"

// LoadProject reads the project archive at path, decodes its manifest
// against registry, creates a renderer skin for every costume via r, and
// compiles every target's block graph into Scripts. It returns the loaded
// Project plus any non-fatal compiler diagnostics; schema errors are fatal
// and returned as a single *LoadError (§7).
func LoadProject(path string, registry *blockspec.Registry, r renderer.Renderer) (*actor.Project, []compiler.Diagnostic, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, nil, fmt.Errorf("loader: open archive: %w", err)
	}
	defer zr.Close()
	return loadFromZip(&zr.Reader, registry, r)
}

func loadFromZip(zr *zip.Reader, registry *blockspec.Registry, r renderer.Renderer) (*actor.Project, []compiler.Diagnostic, error) {
	assets := make(map[string]*zip.File, len(zr.File))
	var manifestFile *zip.File
	for _, f := range zr.File {
		if f.Name == manifestName {
			manifestFile = f
			continue
		}
		assets[f.Name] = f
	}
	if manifestFile == nil {
		return nil, nil, &LoadError{Issues: []string{fmt.Sprintf("archive is missing %q", manifestName)}}
	}

	manifestBytes, err := readZipFile(manifestFile)
	if err != nil {
		return nil, nil, fmt.Errorf("loader: read manifest: %w", err)
	}

	var raw rawProject
	if err := jsonAPI.Unmarshal(manifestBytes, &raw); err != nil {
		return nil, nil, &LoadError{Issues: []string{fmt.Sprintf("project.json: invalid JSON: %s", err)}}
	}

	loadErr := &LoadError{}
	var diags []compiler.Diagnostic
	project := &actor.Project{}

	for _, rt := range raw.Targets {
		target := &actor.Target{Name: rt.Name, IsStage: rt.IsStage, LayerOrder: rt.LayerOrder}

		for _, rc := range rt.Costumes {
			costume, ok := decodeCostume(rc, assets, r, loadErr)
			if ok {
				target.Costumes = append(target.Costumes, costume)
			}
		}

		dec := newTargetDecoder(rt, registry, loadErr)
		table := dec.decodeTable()
		scripts, cdiags, errs := compiler.CompileTarget(table)
		diags = append(diags, cdiags...)
		// An unknown hat opcode is fatal only for that one script (§7): the
		// compiler has already omitted its Script. Surface it as a
		// diagnostic, not as a project-aborting schema error.
		for _, e := range errs {
			diags = append(diags, compiler.Diagnostic{Message: fmt.Sprintf("target %q: %s", rt.Name, e)})
		}
		target.Scripts = scripts

		project.Targets = append(project.Targets, target)
	}

	if err := loadErr.errOrNil(); err != nil {
		return nil, nil, err
	}
	return project, diags, nil
}

func readZipFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func decodeCostume(rc rawCostume, assets map[string]*zip.File, r renderer.Renderer, loadErr *LoadError) (actor.Costume, bool) {
	f, ok := assets[rc.Md5Ext]
	if !ok {
		loadErr.add("costume %q: asset %q not found in archive", rc.Name, rc.Md5Ext)
		return actor.Costume{}, false
	}
	imageBytes, err := readZipFile(f)
	if err != nil {
		loadErr.add("costume %q: read asset %q: %s", rc.Name, rc.Md5Ext, err)
		return actor.Costume{}, false
	}
	center := renderer.Point{X: rc.RotationCenterX, Y: rc.RotationCenterY}
	skin := r.CreateSVGSkin(imageBytes, center)
	return actor.Costume{Name: rc.Name, Skin: skin, RotationCenter: center}, true
}

// targetDecoder holds the per-target state needed to flatten a rawTarget's
// block map into an indexed block.Table (§6: "the deserializer flattens
// this into the indexed Block table; next, parent, and Substack inputs
// become indices").
type targetDecoder struct {
	blocks   map[string]rawBlock
	registry *blockspec.Registry
	loadErr  *LoadError
	indexOf  map[string]int
	ids      []string
}

func newTargetDecoder(rt rawTarget, registry *blockspec.Registry, loadErr *LoadError) *targetDecoder {
	// Blocks referenced as reporters from a non-substack input slot are owned
	// in place by that slot, so they get no slot in the table.
	owned := make(map[string]bool)
	for _, rb := range rt.Blocks {
		for name, entry := range rb.Inputs {
			if len(entry) < 2 || isSubstackField(name) {
				continue
			}
			if id, ok := entry[1].(string); ok {
				owned[id] = true
			}
		}
	}
	ids := make([]string, 0, len(rt.Blocks))
	for id := range rt.Blocks {
		if !owned[id] {
			ids = append(ids, id)
		}
	}
	// Sorted so that loading the same manifest twice produces an identical
	// table: map iteration order is not stable in Go.
	sort.Strings(ids)

	indexOf := make(map[string]int, len(ids))
	for i, id := range ids {
		indexOf[id] = i
	}

	return &targetDecoder{blocks: rt.Blocks, registry: registry, loadErr: loadErr, indexOf: indexOf, ids: ids}
}

// decodeTable builds the flat, index-addressable table of command/hat
// blocks. Reporter subtrees referenced from an input slot are decoded
// separately by decodeReporterBlock and owned in place by their parent's
// Input (§3: "Reporter(Block) — a nested reporter subtree owned by its
// parent slot"), not given a slot in this table.
func (d *targetDecoder) decodeTable() *block.Table {
	table := &block.Table{Blocks: make([]*block.Block, len(d.ids))}
	for i, id := range d.ids {
		table.Blocks[i] = d.decodeTableBlock(d.blocks[id])
	}
	return table
}

func (d *targetDecoder) specFor(rb rawBlock) *blockspec.BlockSpec {
	if spec, ok := d.registry.Lookup(rb.Opcode); ok {
		return spec
	}
	return synthesizeSpec(rb)
}

func (d *targetDecoder) decodeTableBlock(rb rawBlock) *block.Block {
	spec := d.specFor(rb)
	b := &block.Block{
		Spec:   spec,
		Next:   d.resolveIndex(rb.Next),
		Parent: d.resolveIndex(rb.Parent),
	}
	b.FieldValues = d.decodeFields(rb, spec)
	return b
}

// decodeReporterBlock decodes the reporter subtree rooted at id as a
// standalone *block.Block, not entered into the flat table.
func (d *targetDecoder) decodeReporterBlock(id string) *block.Block {
	rb, ok := d.blocks[id]
	if !ok {
		d.loadErr.add("dangling reporter reference %q", id)
		return &block.Block{Spec: &blockspec.BlockSpec{Opcode: id}}
	}
	spec := d.specFor(rb)
	return &block.Block{
		Spec:        spec,
		Next:        -1,
		Parent:      -1,
		FieldValues: d.decodeFields(rb, spec),
	}
}

func (d *targetDecoder) decodeFields(rb rawBlock, spec *blockspec.BlockSpec) []block.Input {
	values := make([]block.Input, len(spec.FieldNames))
	for i, name := range spec.FieldNames {
		switch spec.FieldKinds[i] {
		case blockspec.Field:
			values[i] = d.decodeFieldLiteral(rb, name)
		case blockspec.Input:
			values[i] = d.decodeInputSlot(rb, name)
		}
	}
	return values
}

// synthesizeSpec builds a BlockSpec for an opcode absent from registry: its
// field arity is read back from the raw JSON itself (every block in this
// format carries its own inputs/fields maps regardless of opcode), so the
// compiler's arity invariant (§8 item 1) holds by construction. TopLevel
// blocks are treated as Hat shape so an unrecognized hat still reaches the
// compiler's ErrUnknownHat path (§7) instead of being silently dropped by
// Table.Roots.
func synthesizeSpec(rb rawBlock) *blockspec.BlockSpec {
	var names []string
	var kinds []blockspec.FieldKind
	for _, name := range sortedKeys(rb.Inputs) {
		names = append(names, name)
		kinds = append(kinds, blockspec.Input)
	}
	for _, name := range sortedKeys(rb.Fields) {
		names = append(names, name)
		kinds = append(kinds, blockspec.Field)
	}

	shape := blockspec.Command
	if rb.TopLevel {
		shape = blockspec.Hat
	}
	return &blockspec.BlockSpec{
		Opcode:      rb.Opcode,
		DisplayName: rb.Opcode,
		FieldNames:  names,
		FieldKinds:  kinds,
		Shape:       shape,
	}
}

func sortedKeys(m map[string][]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (d *targetDecoder) resolveIndex(id *string) int {
	if id == nil {
		return -1
	}
	idx, ok := d.indexOf[*id]
	if !ok {
		d.loadErr.add("dangling block reference %q", *id)
		return -1
	}
	return idx
}

// decodeFieldLiteral reads a Field-kind slot (literal-only) from rb.Fields,
// per §3: its first array element is the field's text value.
func (d *targetDecoder) decodeFieldLiteral(rb rawBlock, name string) block.Input {
	entry, ok := rb.Fields[name]
	if !ok || len(entry) == 0 {
		d.loadErr.add("block %q: missing field %q", rb.Opcode, name)
		return block.EmptyInput()
	}
	return block.LiteralInput(value.Text(fmt.Sprint(entry[0])))
}

// isSubstackField reports whether name follows the SUBSTACK/SUBSTACK2
// naming convention for a C-shaped command-chain input, per §3 and §4.1.
func isSubstackField(name string) bool {
	return name == "SUBSTACK" || name == "SUBSTACK2"
}

// decodeInputSlot reads an Input-kind slot from rb.Inputs, resolving the
// tagged shape of §6: [shadow_status, [primitive_id, literal_value, ...]]
// for a literal leaf, or [shadow_status, block_id] for a reporter subtree
// or substack reference.
func (d *targetDecoder) decodeInputSlot(rb rawBlock, name string) block.Input {
	entry, ok := rb.Inputs[name]
	if !ok || len(entry) < 2 {
		if isSubstackField(name) {
			return block.SubstackInput(-1)
		}
		d.loadErr.add("block %q: missing input %q", rb.Opcode, name)
		return block.EmptyInput()
	}

	switch leaf := entry[1].(type) {
	case nil:
		if isSubstackField(name) {
			return block.SubstackInput(-1)
		}
		return block.EmptyInput()

	case string:
		if isSubstackField(name) {
			idx, found := d.indexOf[leaf]
			if !found {
				d.loadErr.add("block %q: input %q references unknown block id %q", rb.Opcode, name, leaf)
				return block.SubstackInput(-1)
			}
			return block.SubstackInput(idx)
		}
		return block.ReporterInput(d.decodeReporterBlock(leaf))

	case []interface{}:
		if len(leaf) < 2 {
			d.loadErr.add("block %q: input %q: malformed primitive leaf", rb.Opcode, name)
			return block.EmptyInput()
		}
		v, err := primitiveValue(leaf)
		if err != nil {
			d.loadErr.add("block %q: input %q: %s", rb.Opcode, name, err)
			return block.EmptyInput()
		}
		return block.LiteralInput(v)

	default:
		d.loadErr.add("block %q: input %q: unrecognized shape", rb.Opcode, name)
		return block.EmptyInput()
	}
}

// primitiveValue maps a [primitive_id, literal_value, ...] leaf to a
// ScalarValue, per the primitive id table of §6.
func primitiveValue(leaf []interface{}) (value.Value, error) {
	idF, ok := leaf[0].(float64)
	if !ok {
		return value.Value{}, fmt.Errorf("primitive id is not a number")
	}
	id := int(idF)
	text := fmt.Sprint(leaf[1])

	switch id {
	case primMathNumber, primMathPositiveNumber, primMathWholeNumber, primMathInteger, primMathAngle:
		return value.Num(value.Text(text).ToNum()), nil
	case primColourPicker, primText, primEventBroadcastMenu, primDataVariable, primDataListContents:
		return value.Text(text), nil
	default:
		return value.Value{}, fmt.Errorf("unknown primitive id %d", id)
	}
}
