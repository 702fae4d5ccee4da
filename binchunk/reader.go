package binchunk

import (
	"encoding/binary"
	"errors"
	"math"
)

var (
	ErrBadSignature = errors.New("binchunk: not a binary chunk")
	ErrBadVersion   = errors.New("binchunk: version mismatch")
	ErrTruncated    = errors.New("binchunk: truncated chunk")
)

type reader struct {
	data []byte
	pos  int
}

// Undump parses a binary chunk produced by Dump. Nested Protos that
// share the outer Proto's source name (it was never duplicated on
// disk) come back with an empty Source; Proto.SourceName resolves it.
func Undump(data []byte) (*Proto, error) {
	if len(data) < len(Signature)+1 || string(data[:len(Signature)]) != Signature {
		return nil, ErrBadSignature
	}
	r := &reader{data: data, pos: len(Signature)}
	version, ok := r.byte()
	if !ok {
		return nil, ErrTruncated
	}
	if version != Version {
		return nil, ErrBadVersion
	}
	return r.readProto("")
}

func (r *reader) byte() (byte, bool) {
	if r.pos >= len(r.data) {
		return 0, false
	}
	b := r.data[r.pos]
	r.pos++
	return b, true
}

func (r *reader) bytes(n int) ([]byte, bool) {
	if r.pos+n > len(r.data) {
		return nil, false
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, true
}

func (r *reader) uint32() (uint32, bool) {
	b, ok := r.bytes(4)
	if !ok {
		return 0, false
	}
	return binary.LittleEndian.Uint32(b), true
}

func (r *reader) uint64() (uint64, bool) {
	b, ok := r.bytes(8)
	if !ok {
		return 0, false
	}
	return binary.LittleEndian.Uint64(b), true
}

func (r *reader) string() (string, bool) {
	n, ok := r.uint32()
	if !ok {
		return "", false
	}
	b, ok := r.bytes(int(n))
	if !ok {
		return "", false
	}
	return string(b), true
}

func (r *reader) readProto(outerSource string) (*Proto, error) {
	p := &Proto{}

	ownSource, ok := r.byte()
	if !ok {
		return nil, ErrTruncated
	}
	if ownSource == 1 {
		s, ok := r.string()
		if !ok {
			return nil, ErrTruncated
		}
		p.Source = s
	}
	source := p.Source
	if source == "" {
		source = outerSource
	}

	var ok2 bool
	if p.LineDefined, ok2 = r.uint32(); !ok2 {
		return nil, ErrTruncated
	}
	if p.LastLineDefined, ok2 = r.uint32(); !ok2 {
		return nil, ErrTruncated
	}
	var b byte
	if b, ok2 = r.byte(); !ok2 {
		return nil, ErrTruncated
	}
	p.NumParams = b
	if b, ok2 = r.byte(); !ok2 {
		return nil, ErrTruncated
	}
	p.IsVararg = b
	if b, ok2 = r.byte(); !ok2 {
		return nil, ErrTruncated
	}
	p.MaxStackSize = b

	nCode, ok2 := r.uint32()
	if !ok2 {
		return nil, ErrTruncated
	}
	p.Code = make([]uint32, nCode)
	for i := range p.Code {
		if p.Code[i], ok2 = r.uint32(); !ok2 {
			return nil, ErrTruncated
		}
	}

	nConst, ok2 := r.uint32()
	if !ok2 {
		return nil, ErrTruncated
	}
	p.Constants = make([]any, nConst)
	for i := range p.Constants {
		c, err := r.readConstant()
		if err != nil {
			return nil, err
		}
		p.Constants[i] = c
	}

	nUv, ok2 := r.uint32()
	if !ok2 {
		return nil, ErrTruncated
	}
	p.Upvalues = make([]UpvalueDesc, nUv)
	for i := range p.Upvalues {
		instack, ok3 := r.byte()
		idx, ok4 := r.byte()
		name, ok5 := r.string()
		if !ok3 || !ok4 || !ok5 {
			return nil, ErrTruncated
		}
		p.Upvalues[i] = UpvalueDesc{Instack: instack, Idx: idx, Name: name}
	}

	nLine, ok2 := r.uint32()
	if !ok2 {
		return nil, ErrTruncated
	}
	p.LineInfo = make([]uint32, nLine)
	for i := range p.LineInfo {
		if p.LineInfo[i], ok2 = r.uint32(); !ok2 {
			return nil, ErrTruncated
		}
	}

	nLoc, ok2 := r.uint32()
	if !ok2 {
		return nil, ErrTruncated
	}
	p.LocVars = make([]LocVar, nLoc)
	for i := range p.LocVars {
		name, ok3 := r.string()
		start, ok4 := r.uint32()
		end, ok5 := r.uint32()
		reg, ok6 := r.byte()
		if !ok3 || !ok4 || !ok5 || !ok6 {
			return nil, ErrTruncated
		}
		p.LocVars[i] = LocVar{Name: name, StartPC: start, EndPC: end, Reg: reg}
	}

	nSub, ok2 := r.uint32()
	if !ok2 {
		return nil, ErrTruncated
	}
	p.Protos = make([]*Proto, nSub)
	for i := range p.Protos {
		sub, err := r.readProto(source)
		if err != nil {
			return nil, err
		}
		p.Protos[i] = sub
	}

	return p, nil
}

func (r *reader) readConstant() (any, error) {
	tag, ok := r.byte()
	if !ok {
		return nil, ErrTruncated
	}
	switch tag {
	case tagNil:
		return nil, nil
	case tagFalse:
		return false, nil
	case tagTrue:
		return true, nil
	case tagInteger:
		u, ok := r.uint64()
		if !ok {
			return nil, ErrTruncated
		}
		return int64(u), nil
	case tagFloat:
		u, ok := r.uint64()
		if !ok {
			return nil, ErrTruncated
		}
		return math.Float64frombits(u), nil
	case tagString:
		s, ok := r.string()
		if !ok {
			return nil, ErrTruncated
		}
		return s, nil
	default:
		return nil, errors.New("binchunk: unknown constant tag")
	}
}
