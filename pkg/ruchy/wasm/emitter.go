package wasm

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/ruchy-lang/ruchy/pkg/ruchy/ast"
)

// The host interface. Interpolated output is staged piece by piece and
// flushed with a trailing newline by println.
var hostImports = []struct {
	name   string
	params []byte
}{
	{"print_str", []byte{typeI32}},
	{"print_int", []byte{typeI32}},
	{"print_float", []byte{typeF64}},
	{"println", nil},
}

const numImports = 4

// dataBase is the address of the first string constant. Address 0 is kept
// unused so it can stand for "no value".
const dataBase = 8

type funcType struct {
	params  []byte
	results []byte
}

type structField struct {
	name  string
	vtype byte
}

type wasmFunc struct {
	name    string
	fl      *ast.FunctionLiteral
	typeIdx uint32
	body    []byte
}

// Emitter lowers a parsed program to a WebAssembly binary module.
type Emitter struct {
	types    []funcType
	typeKeys map[string]uint32

	funcs   []*wasmFunc
	indexOf map[string]uint32 // absolute indices, imports first
	results map[string]byte   // 0 when the function returns nothing

	structs      map[string][]structField
	tupleArities map[int]bool

	strings map[string]uint32
	data    bytes.Buffer
}

func NewEmitter() *Emitter {
	return &Emitter{
		typeKeys:     make(map[string]uint32),
		indexOf:      make(map[string]uint32),
		results:      make(map[string]byte),
		structs:      make(map[string][]structField),
		tupleArities: make(map[int]bool),
		strings:      make(map[string]uint32),
	}
}

// Emit compiles a program. Top-level functions become wasm functions; any
// remaining top-level expressions are gathered into a synthesized main.
// Every function is exported by name.
func (em *Emitter) Emit(program *ast.Program) ([]byte, error) {
	var loose []ast.Expression
	for _, expr := range program.Expressions {
		switch e := expr.(type) {
		case *ast.FunctionLiteral:
			em.funcs = append(em.funcs, &wasmFunc{name: e.Name, fl: e})
		case *ast.StructDefinition:
			fields := make([]structField, len(e.Fields))
			for i, f := range e.Fields {
				fields[i] = structField{name: f.Name, vtype: typeFromAnnotation(f.Type)}
			}
			em.structs[e.Name] = fields
		case *ast.EnumDefinition, *ast.TraitDefinition, *ast.ImplBlock,
			*ast.ExtensionBlock, *ast.ActorDefinition, *ast.ImportExpression,
			*ast.ExportExpression, *ast.ModuleExpression, *ast.TypeAliasExpression:
			// Not representable in the wasm core.
		default:
			loose = append(loose, expr)
		}
	}
	if len(loose) > 0 {
		em.funcs = append(em.funcs, &wasmFunc{
			name: "main",
			fl:   &ast.FunctionLiteral{Name: "main", Body: &ast.BlockExpression{Expressions: loose}},
		})
	}
	if len(em.funcs) == 0 {
		return nil, fmt.Errorf("nothing to compile: no functions or expressions")
	}

	collectTupleTypes(program, em.tupleArities)

	// Import signatures claim the first type and function indices.
	for i, imp := range hostImports {
		em.typeIndex(funcType{params: imp.params})
		em.indexOf["$"+imp.name] = uint32(i)
	}

	// Signatures before bodies so calls can be typed in any order.
	for i, wf := range em.funcs {
		if _, dup := em.indexOf[wf.name]; dup {
			return nil, fmt.Errorf("duplicate function %q", wf.name)
		}
		em.indexOf[wf.name] = uint32(numImports + i)
		ft := em.signatureOf(wf.fl)
		wf.typeIdx = em.typeIndex(ft)
		if len(ft.results) > 0 {
			em.results[wf.name] = ft.results[0]
		}
	}

	for _, wf := range em.funcs {
		body, err := em.lowerFunction(wf)
		if err != nil {
			return nil, err
		}
		wf.body = body
	}

	return em.assemble(), nil
}

// signatureOf derives a wasm signature from annotations, falling back to a
// static scan of the body for the result type.
func (em *Emitter) signatureOf(fl *ast.FunctionLiteral) funcType {
	var ft funcType
	env := make(map[string]byte)
	for _, p := range fl.Params {
		if p.IsSelf || p.IsMutSelf {
			continue
		}
		vt := typeFromAnnotation(p.Type)
		ft.params = append(ft.params, vt)
		env[p.Name] = vt
	}
	if fl.ReturnType != nil {
		if name, ok := fl.ReturnType.(*ast.NamedType); ok && (name.Name == "Unit" || name.Name == "Nil") {
			return ft
		}
		ft.results = []byte{typeFromAnnotation(fl.ReturnType)}
		return ft
	}
	if vt, has := em.staticType(fl.Body, env, nil); has {
		ft.results = []byte{vt}
	}
	return ft
}

func (em *Emitter) typeIndex(ft funcType) uint32 {
	key := string(ft.params) + "|" + string(ft.results)
	if idx, ok := em.typeKeys[key]; ok {
		return idx
	}
	idx := uint32(len(em.types))
	em.types = append(em.types, ft)
	em.typeKeys[key] = idx
	return idx
}

// internString stores a [len:u32][bytes] record in the data segment and
// returns its address.
func (em *Emitter) internString(s string) uint32 {
	if addr, ok := em.strings[s]; ok {
		return addr
	}
	addr := dataBase + uint32(em.data.Len())
	var lenBytes [4]byte
	binary.LittleEndian.PutUint32(lenBytes[:], uint32(len(s)))
	em.data.Write(lenBytes[:])
	em.data.WriteString(s)
	em.strings[s] = addr
	return addr
}

func typeFromAnnotation(te ast.TypeExpr) byte {
	named, ok := te.(*ast.NamedType)
	if !ok {
		return typeI32
	}
	switch named.Name {
	case "Float", "f32", "f64":
		return typeF64
	}
	return typeI32
}

func (em *Emitter) assemble() []byte {
	var out bytes.Buffer
	out.Write([]byte{0x00, 0x61, 0x73, 0x6D}) // \0asm
	out.Write([]byte{0x01, 0x00, 0x00, 0x00}) // version 1

	var sec bytes.Buffer

	// Type section.
	writeULEB(&sec, uint32(len(em.types)))
	for _, ft := range em.types {
		sec.WriteByte(0x60)
		writeULEB(&sec, uint32(len(ft.params)))
		sec.Write(ft.params)
		writeULEB(&sec, uint32(len(ft.results)))
		sec.Write(ft.results)
	}
	writeSection(&out, sectionType, sec.Bytes())
	sec.Reset()

	// Import section.
	writeULEB(&sec, numImports)
	for _, imp := range hostImports {
		writeName(&sec, "env")
		writeName(&sec, imp.name)
		sec.WriteByte(0x00) // func import
		writeULEB(&sec, em.typeKeys[string(imp.params)+"|"])
	}
	writeSection(&out, sectionImport, sec.Bytes())
	sec.Reset()

	// Function section.
	writeULEB(&sec, uint32(len(em.funcs)))
	for _, wf := range em.funcs {
		writeULEB(&sec, wf.typeIdx)
	}
	writeSection(&out, sectionFunction, sec.Bytes())
	sec.Reset()

	// Memory section: one memory, two pages minimum.
	writeULEB(&sec, 1)
	sec.WriteByte(0x00)
	writeULEB(&sec, 2)
	writeSection(&out, sectionMemory, sec.Bytes())
	sec.Reset()

	// Global section: the bump allocator pointer, starting past the data.
	heapStart := dataBase + uint32(em.data.Len())
	heapStart = (heapStart + 7) &^ 7
	writeULEB(&sec, 1)
	sec.WriteByte(typeI32)
	sec.WriteByte(0x01) // mutable
	sec.WriteByte(opI32Const)
	writeSLEB(&sec, int64(heapStart))
	sec.WriteByte(opEnd)
	writeSection(&out, sectionGlobal, sec.Bytes())
	sec.Reset()

	// Export section: memory plus every function.
	writeULEB(&sec, uint32(len(em.funcs)+1))
	writeName(&sec, "memory")
	sec.WriteByte(0x02)
	writeULEB(&sec, 0)
	for _, wf := range em.funcs {
		writeName(&sec, wf.name)
		sec.WriteByte(0x00)
		writeULEB(&sec, em.indexOf[wf.name])
	}
	writeSection(&out, sectionExport, sec.Bytes())
	sec.Reset()

	// Code section.
	writeULEB(&sec, uint32(len(em.funcs)))
	for _, wf := range em.funcs {
		writeULEB(&sec, uint32(len(wf.body)))
		sec.Write(wf.body)
	}
	writeSection(&out, sectionCode, sec.Bytes())
	sec.Reset()

	// Data section, only when string constants exist.
	if em.data.Len() > 0 {
		writeULEB(&sec, 1)
		sec.WriteByte(0x00) // active, memory 0
		sec.WriteByte(opI32Const)
		writeSLEB(&sec, dataBase)
		sec.WriteByte(opEnd)
		writeULEB(&sec, uint32(em.data.Len()))
		sec.Write(em.data.Bytes())
		writeSection(&out, sectionData, sec.Bytes())
	}

	return out.Bytes()
}

// collectTupleTypes registers every tuple arity appearing in the program so
// layouts exist before lowering begins.
func collectTupleTypes(node ast.Node, arities map[int]bool) {
	switch n := node.(type) {
	case *ast.Program:
		for _, e := range n.Expressions {
			collectTupleTypes(e, arities)
		}
	case *ast.TupleLiteral:
		arities[len(n.Elements)] = true
		for _, e := range n.Elements {
			collectTupleTypes(e, arities)
		}
	case *ast.FunctionLiteral:
		collectTupleTypes(n.Body, arities)
	case *ast.BlockExpression:
		for _, e := range n.Expressions {
			collectTupleTypes(e, arities)
		}
	case *ast.LetExpression:
		collectTupleTypes(n.Value, arities)
		if n.Body != nil {
			collectTupleTypes(n.Body, arities)
		}
	case *ast.IfExpression:
		collectTupleTypes(n.Condition, arities)
		collectTupleTypes(n.Consequence, arities)
		if n.Alternative != nil {
			collectTupleTypes(n.Alternative, arities)
		}
	case *ast.WhileExpression:
		collectTupleTypes(n.Condition, arities)
		collectTupleTypes(n.Body, arities)
	case *ast.ForExpression:
		collectTupleTypes(n.Iterable, arities)
		collectTupleTypes(n.Body, arities)
	case *ast.MatchExpression:
		collectTupleTypes(n.Scrutinee, arities)
		for _, arm := range n.Arms {
			collectTupleTypes(arm.Body, arities)
		}
	case *ast.InfixExpression:
		collectTupleTypes(n.Left, arities)
		collectTupleTypes(n.Right, arities)
	case *ast.PrefixExpression:
		collectTupleTypes(n.Right, arities)
	case *ast.CallExpression:
		collectTupleTypes(n.Function, arities)
		for _, a := range n.Arguments {
			collectTupleTypes(a, arities)
		}
	case *ast.ReturnExpression:
		if n.Value != nil {
			collectTupleTypes(n.Value, arities)
		}
	case *ast.AssignExpression:
		collectTupleTypes(n.Value, arities)
	case *ast.ListLiteral:
		for _, e := range n.Elements {
			collectTupleTypes(e, arities)
		}
	}
}
