package ir

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/dfinlay/gcodelib/pos"
	"github.com/dfinlay/gcodelib/runtime"
)

// FormatVersion is bumped whenever the on-disk section layout changes.
// Decode rejects any other version outright, per spec.md §6's "consumers
// must reject unknown opcodes" (extended here to unknown versions).
const FormatVersion uint32 = 1

const magic = "GCIR"

// Encode writes m as a versioned header followed by (constants, labels,
// procedures, instructions, source-map) sections, each instruction as an
// opcode byte plus a little-endian i64 immediate, per spec.md §6.
func Encode(w io.Writer, m *Module) error {
	bw := bufio.NewWriter(w)

	if _, err := bw.WriteString(magic); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, FormatVersion); err != nil {
		return err
	}

	if err := writeUint32(bw, uint32(len(m.Constants))); err != nil {
		return err
	}
	for _, c := range m.Constants {
		if err := encodeValue(bw, c); err != nil {
			return err
		}
	}

	if err := writeUint32(bw, uint32(len(m.Labels))); err != nil {
		return err
	}
	for _, idx := range m.Labels {
		if err := binary.Write(bw, binary.LittleEndian, int64(idx)); err != nil {
			return err
		}
	}

	if err := writeUint32(bw, uint32(len(m.Procedures))); err != nil {
		return err
	}
	for _, p := range m.Procedures {
		if err := writeString(bw, p.Label); err != nil {
			return err
		}
		if err := binary.Write(bw, binary.LittleEndian, int64(p.EntryLabel)); err != nil {
			return err
		}
	}

	if err := writeUint32(bw, uint32(len(m.Instructions))); err != nil {
		return err
	}
	for _, instr := range m.Instructions {
		if err := bw.WriteByte(byte(instr.Op)); err != nil {
			return err
		}
		if err := binary.Write(bw, binary.LittleEndian, instr.Imm); err != nil {
			return err
		}
	}

	if err := writeUint32(bw, uint32(len(m.SourceMap))); err != nil {
		return err
	}
	for _, e := range m.SourceMap {
		if err := binary.Write(bw, binary.LittleEndian, int64(e.InstructionIndex)); err != nil {
			return err
		}
		if err := writeString(bw, e.Pos.Tag); err != nil {
			return err
		}
		if err := binary.Write(bw, binary.LittleEndian, int64(e.Pos.Line)); err != nil {
			return err
		}
		if err := binary.Write(bw, binary.LittleEndian, int64(e.Pos.Column)); err != nil {
			return err
		}
		if err := bw.WriteByte(e.Pos.Checksum); err != nil {
			return err
		}
	}

	return bw.Flush()
}

// Decode reads a Module previously written by Encode. An unrecognised
// format version or opcode byte is rejected.
func Decode(r io.Reader) (*Module, error) {
	br := bufio.NewReader(r)

	buf := make([]byte, len(magic))
	if _, err := io.ReadFull(br, buf); err != nil {
		return nil, fmt.Errorf("ir: reading magic: %w", err)
	}
	if string(buf) != magic {
		return nil, fmt.Errorf("ir: not a gcodelib IR module")
	}
	var version uint32
	if err := binary.Read(br, binary.LittleEndian, &version); err != nil {
		return nil, err
	}
	if version != FormatVersion {
		return nil, fmt.Errorf("ir: unsupported format version %d", version)
	}

	var m Module

	nConst, err := readUint32(br)
	if err != nil {
		return nil, err
	}
	m.Constants = make([]runtime.Value, nConst)
	for i := range m.Constants {
		v, err := decodeValue(br)
		if err != nil {
			return nil, err
		}
		m.Constants[i] = v
	}

	nLabels, err := readUint32(br)
	if err != nil {
		return nil, err
	}
	m.Labels = make([]int, nLabels)
	for i := range m.Labels {
		var idx int64
		if err := binary.Read(br, binary.LittleEndian, &idx); err != nil {
			return nil, err
		}
		m.Labels[i] = int(idx)
	}

	nProcs, err := readUint32(br)
	if err != nil {
		return nil, err
	}
	m.Procedures = make([]Procedure, nProcs)
	for i := range m.Procedures {
		label, err := readString(br)
		if err != nil {
			return nil, err
		}
		var entry int64
		if err := binary.Read(br, binary.LittleEndian, &entry); err != nil {
			return nil, err
		}
		m.Procedures[i] = Procedure{Label: label, EntryLabel: int(entry)}
	}

	nInstr, err := readUint32(br)
	if err != nil {
		return nil, err
	}
	m.Instructions = make([]Instruction, nInstr)
	for i := range m.Instructions {
		opByte, err := br.ReadByte()
		if err != nil {
			return nil, err
		}
		op := Opcode(opByte)
		if !op.Valid() {
			return nil, fmt.Errorf("ir: unknown opcode %d at instruction %d", opByte, i)
		}
		var imm int64
		if err := binary.Read(br, binary.LittleEndian, &imm); err != nil {
			return nil, err
		}
		m.Instructions[i] = Instruction{Op: op, Imm: imm}
	}

	nSM, err := readUint32(br)
	if err != nil {
		return nil, err
	}
	m.SourceMap = make([]SourceMapEntry, nSM)
	for i := range m.SourceMap {
		var idx int64
		if err := binary.Read(br, binary.LittleEndian, &idx); err != nil {
			return nil, err
		}
		tag, err := readString(br)
		if err != nil {
			return nil, err
		}
		var line, col int64
		if err := binary.Read(br, binary.LittleEndian, &line); err != nil {
			return nil, err
		}
		if err := binary.Read(br, binary.LittleEndian, &col); err != nil {
			return nil, err
		}
		checksum, err := br.ReadByte()
		if err != nil {
			return nil, err
		}
		m.SourceMap[i] = SourceMapEntry{
			InstructionIndex: int(idx),
			Pos:              pos.Position{Tag: tag, Line: int(line), Column: int(col), Checksum: checksum},
		}
	}

	m.frozen = true
	return &m, nil
}

func encodeValue(w io.Writer, v runtime.Value) error {
	if err := binary.Write(w, binary.LittleEndian, byte(v.Kind)); err != nil {
		return err
	}
	switch v.Kind {
	case runtime.KindInteger:
		return binary.Write(w, binary.LittleEndian, v.Integer)
	case runtime.KindFloat:
		return binary.Write(w, binary.LittleEndian, v.Float)
	case runtime.KindString:
		return writeString(w, v.String)
	case runtime.KindLogical:
		var b byte
		if v.Logical {
			b = 1
		}
		return binary.Write(w, binary.LittleEndian, b)
	default:
		return nil
	}
}

func decodeValue(r io.Reader) (runtime.Value, error) {
	var kindByte byte
	if err := binary.Read(r, binary.LittleEndian, &kindByte); err != nil {
		return runtime.Value{}, err
	}
	switch runtime.Kind(kindByte) {
	case runtime.KindInteger:
		var i int64
		if err := binary.Read(r, binary.LittleEndian, &i); err != nil {
			return runtime.Value{}, err
		}
		return runtime.Integer(i), nil
	case runtime.KindFloat:
		var f float64
		if err := binary.Read(r, binary.LittleEndian, &f); err != nil {
			return runtime.Value{}, err
		}
		return runtime.Float(f), nil
	case runtime.KindString:
		s, err := readString(r)
		if err != nil {
			return runtime.Value{}, err
		}
		return runtime.Str(s), nil
	case runtime.KindLogical:
		var b byte
		if err := binary.Read(r, binary.LittleEndian, &b); err != nil {
			return runtime.Value{}, err
		}
		return runtime.Logical(b != 0), nil
	default:
		return runtime.None(), nil
	}
}

func writeUint32(w io.Writer, n uint32) error {
	return binary.Write(w, binary.LittleEndian, n)
}

func readUint32(r io.Reader) (uint32, error) {
	var n uint32
	err := binary.Read(r, binary.LittleEndian, &n)
	return n, err
}

func writeString(w io.Writer, s string) error {
	if err := writeUint32(w, uint32(len(s))); err != nil {
		return err
	}
	_, err := io.WriteString(w, s)
	return err
}

func readString(r io.Reader) (string, error) {
	n, err := readUint32(r)
	if err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}
