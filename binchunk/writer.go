package binchunk

import (
	"bytes"
	"encoding/binary"
	"math"
)

const (
	Signature = "\x1bLuaC"
	Version   = 0x01

	tagNil     = 0x00
	tagFalse   = 0x01
	tagTrue    = 0x02
	tagInteger = 0x03
	tagFloat   = 0x04
	tagString  = 0x05
)

// Dump serializes proto and every nested Proto into the module's
// binary chunk format. Nested Protos never repeat the outer source
// name, so dump size grows linearly with the number of nested
// functions rather than with nestedCount*len(sourceName), per spec §4.9.
func Dump(proto *Proto) []byte {
	var buf bytes.Buffer
	buf.WriteString(Signature)
	buf.WriteByte(Version)
	writeProto(&buf, proto, "")
	return buf.Bytes()
}

func writeProto(buf *bytes.Buffer, p *Proto, outerSource string) {
	ownSource := p.Source != "" && p.Source != outerSource
	writeBool(buf, ownSource)
	if ownSource {
		writeString(buf, p.Source)
	}
	writeUint32(buf, p.LineDefined)
	writeUint32(buf, p.LastLineDefined)
	buf.WriteByte(p.NumParams)
	buf.WriteByte(p.IsVararg)
	buf.WriteByte(p.MaxStackSize)

	writeUint32(buf, uint32(len(p.Code)))
	for _, c := range p.Code {
		writeUint32(buf, c)
	}

	writeUint32(buf, uint32(len(p.Constants)))
	for _, c := range p.Constants {
		writeConstant(buf, c)
	}

	writeUint32(buf, uint32(len(p.Upvalues)))
	for _, uv := range p.Upvalues {
		buf.WriteByte(uv.Instack)
		buf.WriteByte(uv.Idx)
		writeString(buf, uv.Name)
	}

	writeUint32(buf, uint32(len(p.LineInfo)))
	for _, l := range p.LineInfo {
		writeUint32(buf, l)
	}

	writeUint32(buf, uint32(len(p.LocVars)))
	for _, lv := range p.LocVars {
		writeString(buf, lv.Name)
		writeUint32(buf, lv.StartPC)
		writeUint32(buf, lv.EndPC)
		buf.WriteByte(lv.Reg)
	}

	source := p.Source
	if source == "" {
		source = outerSource
	}
	writeUint32(buf, uint32(len(p.Protos)))
	for _, sub := range p.Protos {
		writeProto(buf, sub, source)
	}
}

func writeConstant(buf *bytes.Buffer, c any) {
	switch v := c.(type) {
	case nil:
		buf.WriteByte(tagNil)
	case bool:
		if v {
			buf.WriteByte(tagTrue)
		} else {
			buf.WriteByte(tagFalse)
		}
	case int64:
		buf.WriteByte(tagInteger)
		writeUint64(buf, uint64(v))
	case float64:
		buf.WriteByte(tagFloat)
		writeUint64(buf, math.Float64bits(v))
	case string:
		buf.WriteByte(tagString)
		writeString(buf, v)
	default:
		panic("binchunk: unsupported constant type")
	}
}

func writeBool(buf *bytes.Buffer, b bool) {
	if b {
		buf.WriteByte(1)
	} else {
		buf.WriteByte(0)
	}
}

func writeUint32(buf *bytes.Buffer, n uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], n)
	buf.Write(b[:])
}

func writeUint64(buf *bytes.Buffer, n uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], n)
	buf.Write(b[:])
}

func writeString(buf *bytes.Buffer, s string) {
	writeUint32(buf, uint32(len(s)))
	buf.WriteString(s)
}
