package catalog

import "github.com/relcore/relcore/pkg/bx"

// Wire format: every variable-length field (a name) is prefixed with its
// own uint32 LE length, giving a tagged self-describing encoding (spec
// §4.5) — the decoder never needs to know field widths in advance beyond
// what it has already read.
//
//	relationCount   uint32
//	for each relation:
//	  nameLen       uint32
//	  name          []byte
//	  columnCount   uint32
//	  for each column:
//	    nameLen     uint32
//	    name        []byte
//	    type        uint8
//	    width       uint32
//	    attr        uint8

func encodeSchema(s Schema) []byte {
	var buf []byte
	buf = appendU32(buf, uint32(len(s.Relations)))
	for _, rel := range s.Relations {
		buf = appendString(buf, rel.Name)
		buf = appendU32(buf, uint32(len(rel.Columns)))
		for _, col := range rel.Columns {
			buf = appendString(buf, col.Name)
			buf = append(buf, byte(col.Type))
			buf = appendU32(buf, col.Width)
			buf = append(buf, byte(col.Attr))
		}
	}
	return buf
}

func decodeSchema(b []byte) Schema {
	r := &reader{buf: b}
	relCount := r.u32()
	relations := make([]Relation, 0, relCount)
	for i := uint32(0); i < relCount; i++ {
		name := r.string()
		colCount := r.u32()
		cols := make([]Column, 0, colCount)
		for j := uint32(0); j < colCount; j++ {
			colName := r.string()
			typ := SQLType(r.u8())
			width := r.u32()
			attr := Attr(r.u8())
			cols = append(cols, Column{Name: colName, Type: typ, Width: width, Attr: attr})
		}
		relations = append(relations, Relation{Name: name, Columns: cols})
	}
	return Schema{Relations: relations}
}

func appendU32(buf []byte, v uint32) []byte {
	var tmp [4]byte
	bx.PutU32(tmp[:], v)
	return append(buf, tmp[:]...)
}

func appendString(buf []byte, s string) []byte {
	buf = appendU32(buf, uint32(len(s)))
	return append(buf, s...)
}

// reader walks a decoded blob sequentially; it panics on malformed input
// because a corrupt catalog blob is an invariant violation this kernel has
// no recovery path for (spec §7 "arithmetic and layout errors ... are
// fatal").
type reader struct {
	buf []byte
	pos int
}

func (r *reader) u8() uint8 {
	v := r.buf[r.pos]
	r.pos++
	return v
}

func (r *reader) u32() uint32 {
	v := bx.U32(r.buf[r.pos : r.pos+4])
	r.pos += 4
	return v
}

func (r *reader) string() string {
	n := r.u32()
	s := string(r.buf[r.pos : r.pos+int(n)])
	r.pos += int(n)
	return s
}
