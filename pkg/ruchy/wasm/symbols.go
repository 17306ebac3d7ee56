package wasm

// SymbolTable assigns local slots to named bindings inside one function.
// Parameters occupy slots [0..n); lets and synthesized temporaries follow.
type SymbolTable struct {
	slots map[string]local
	order []byte // value types of declared locals beyond the parameters
	base  uint32 // number of parameters
}

type local struct {
	index uint32
	vtype byte
}

func newSymbolTable() *SymbolTable {
	return &SymbolTable{slots: make(map[string]local)}
}

// DefineParam registers a parameter in the next slot.
func (st *SymbolTable) DefineParam(name string, vtype byte) uint32 {
	idx := st.base
	st.slots[name] = local{index: idx, vtype: vtype}
	st.base++
	return idx
}

// Define allocates a fresh local for name, shadowing any previous binding.
func (st *SymbolTable) Define(name string, vtype byte) uint32 {
	idx := st.base + uint32(len(st.order))
	st.order = append(st.order, vtype)
	st.slots[name] = local{index: idx, vtype: vtype}
	return idx
}

// Temp allocates an anonymous local slot.
func (st *SymbolTable) Temp(vtype byte) uint32 {
	idx := st.base + uint32(len(st.order))
	st.order = append(st.order, vtype)
	return idx
}

// Resolve returns the slot and type for name.
func (st *SymbolTable) Resolve(name string) (uint32, byte, bool) {
	l, ok := st.slots[name]
	return l.index, l.vtype, ok
}

// Locals returns the value types of the non-parameter locals in slot order.
func (st *SymbolTable) Locals() []byte { return st.order }
