package wasm

import (
	"bytes"
	"encoding/binary"
	"math"
)

// Value types.
const (
	typeI32 byte = 0x7F
	typeI64 byte = 0x7E
	typeF32 byte = 0x7D
	typeF64 byte = 0x7C
)

// Section ids in the order they must appear in a module.
const (
	sectionType     byte = 1
	sectionImport   byte = 2
	sectionFunction byte = 3
	sectionMemory   byte = 5
	sectionGlobal   byte = 6
	sectionExport   byte = 7
	sectionCode     byte = 10
	sectionData     byte = 11
)

// Opcodes used by the emitter.
const (
	opUnreachable byte = 0x00
	opBlock       byte = 0x02
	opLoop        byte = 0x03
	opIf          byte = 0x04
	opElse        byte = 0x05
	opEnd         byte = 0x0B
	opBr          byte = 0x0C
	opBrIf        byte = 0x0D
	opReturn      byte = 0x0F
	opCall        byte = 0x10
	opDrop        byte = 0x1A

	opLocalGet  byte = 0x20
	opLocalSet  byte = 0x21
	opLocalTee  byte = 0x22
	opGlobalGet byte = 0x23
	opGlobalSet byte = 0x24

	opI32Load  byte = 0x28
	opF64Load  byte = 0x2B
	opI32Store byte = 0x36
	opF64Store byte = 0x39

	opI32Const byte = 0x41
	opI64Const byte = 0x42
	opF32Const byte = 0x43
	opF64Const byte = 0x44

	opI32Eqz byte = 0x45
	opI32Eq  byte = 0x46
	opI32Ne  byte = 0x47
	opI32LtS byte = 0x48
	opI32GtS byte = 0x4A
	opI32LeS byte = 0x4C
	opI32GeS byte = 0x4E

	opF64Eq byte = 0x61
	opF64Ne byte = 0x62
	opF64Lt byte = 0x63
	opF64Gt byte = 0x64
	opF64Le byte = 0x65
	opF64Ge byte = 0x66

	opI32Add  byte = 0x6A
	opI32Sub  byte = 0x6B
	opI32Mul  byte = 0x6C
	opI32DivS byte = 0x6D
	opI32RemS byte = 0x6F
	opI32And  byte = 0x71
	opI32Or   byte = 0x72
	opI32Xor  byte = 0x73
	opI32Shl  byte = 0x74
	opI32ShrS byte = 0x75

	opF64Neg  byte = 0x9A
	opF64Sqrt byte = 0x9F
	opF64Add  byte = 0xA0
	opF64Sub  byte = 0xA1
	opF64Mul  byte = 0xA2
	opF64Div  byte = 0xA3

	opI32TruncF64S   byte = 0xAA
	opF64ConvertI32S byte = 0xB7
)

// blockEmpty is the block type for blocks that leave nothing on the stack.
const blockEmpty byte = 0x40

// writeULEB encodes an unsigned LEB128 integer.
func writeULEB(buf *bytes.Buffer, v uint32) {
	for {
		b := byte(v & 0x7F)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		buf.WriteByte(b)
		if v == 0 {
			return
		}
	}
}

// writeSLEB encodes a signed LEB128 integer.
func writeSLEB(buf *bytes.Buffer, v int64) {
	for {
		b := byte(v & 0x7F)
		v >>= 7
		signBit := b & 0x40
		if (v == 0 && signBit == 0) || (v == -1 && signBit != 0) {
			buf.WriteByte(b)
			return
		}
		buf.WriteByte(b | 0x80)
	}
}

func writeF64(buf *bytes.Buffer, f float64) {
	var raw [8]byte
	binary.LittleEndian.PutUint64(raw[:], math.Float64bits(f))
	buf.Write(raw[:])
}

func writeName(buf *bytes.Buffer, name string) {
	writeULEB(buf, uint32(len(name)))
	buf.WriteString(name)
}

// writeSection frames a section: id, byte length, payload.
func writeSection(out *bytes.Buffer, id byte, payload []byte) {
	out.WriteByte(id)
	writeULEB(out, uint32(len(payload)))
	out.Write(payload)
}
