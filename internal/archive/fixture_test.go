package archive

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"

	"github.com/rgaskell/rayvault/internal/riff"
)

// The helpers in this file assemble minimal but wire-faithful "MV93" (and,
// for the afterburner tests, "FGDM") archives byte-by-byte, the same way a
// hand-rolled fuzzer corpus would. They exist only to exercise Open and
// ChunkByID against the exact framing each format dialect requires.

func putU16(buf *bytes.Buffer, v uint16, e riff.Endianness) {
	if e == riff.LittleEndian {
		binary.Write(buf, binary.LittleEndian, v)
	} else {
		binary.Write(buf, binary.BigEndian, v)
	}
}

func putU32(buf *bytes.Buffer, v uint32, e riff.Endianness) {
	if e == riff.LittleEndian {
		binary.Write(buf, binary.LittleEndian, v)
	} else {
		binary.Write(buf, binary.BigEndian, v)
	}
}

func putI32(buf *bytes.Buffer, v int32, e riff.Endianness) { putU32(buf, uint32(v), e) }

func putTag(buf *bytes.Buffer, tag riff.FourCC, e riff.Endianness) { putU32(buf, uint32(tag), e) }

func putVarint(buf *bytes.Buffer, v uint32) {
	// Matches riff.ByteStream.ReadVarint's least-significant-byte-first
	// continuation encoding.
	for {
		b := byte(v & 0x7F)
		v >>= 7
		if v == 0 {
			buf.WriteByte(b)
			return
		}
		buf.WriteByte(b | 0x80)
	}
}

func framedChunk(tag riff.FourCC, payload []byte, e riff.Endianness) []byte {
	var buf bytes.Buffer
	putTag(&buf, tag, e)
	putU32(&buf, uint32(len(payload)), e)
	buf.Write(payload)
	return buf.Bytes()
}

// mmapEntrySpec is one resource's intended id (its mmap array index), tag,
// and payload; buildMV93 turns it into both an mmap MapEntry and the
// framed chunk bytes placed after the map.
type mmapEntrySpec struct {
	tag     riff.FourCC
	payload []byte
	filler  bool // true for a "junk" filler entry with no backing chunk
}

// keyRow is one row to embed in the KEY* table.
type keyRow struct {
	castID    int32
	sectionID int32
	tag       riff.FourCC
}

func buildKeyTablePayloadBytes(rows []keyRow, e riff.Endianness) []byte {
	var buf bytes.Buffer
	const headerLen = 16
	putU32(&buf, headerLen, e)
	putU32(&buf, 12, e)
	putU32(&buf, uint32(len(rows)), e)
	putU32(&buf, uint32(len(rows)), e)
	for _, r := range rows {
		putI32(&buf, r.sectionID, e)
		putI32(&buf, r.castID, e)
		putTag(&buf, r.tag, e)
	}
	return buf.Bytes()
}

func buildConfigPayloadBytes(rawVersion uint16, minMember, maxMember int16, e riff.Endianness) []byte {
	var buf bytes.Buffer
	putU16(&buf, 18, e)
	putU16(&buf, 0, e)
	for i := 0; i < 4; i++ {
		putU16(&buf, 0, e)
	}
	putU16(&buf, uint16(minMember), e)
	putU16(&buf, uint16(maxMember), e)
	putU16(&buf, rawVersion, e)
	return buf.Bytes()
}

func buildCastPayloadBytes(memberIDs []int32, e riff.Endianness) []byte {
	var buf bytes.Buffer
	for _, id := range memberIDs {
		putI32(&buf, id, e)
	}
	return buf.Bytes()
}

func buildCastListPayloadBytes(entries []CastListFixtureEntry, e riff.Endianness) []byte {
	var buf bytes.Buffer
	putVarint(&buf, uint32(len(entries)))
	for _, ent := range entries {
		putU16(&buf, uint16(len(ent.Name)), e)
		buf.WriteString(ent.Name)
		putI32(&buf, ent.ID, e)
		putI32(&buf, ent.MinMember, e)
	}
	return buf.Bytes()
}

// CastListFixtureEntry mirrors chunk.CastListEntry for fixture construction
// without importing the chunk package's test-only helpers.
type CastListFixtureEntry struct {
	Name      string
	ID        int32
	MinMember int32
}

// buildMV93 assembles a complete uncompressed-dialect archive. entries are
// placed into the mmap array in order, so their position is their id;
// callers that need a specific id (e.g. to match a KEY* section id) must pad
// with filler entries.
func buildMV93(e riff.Endianness, entries []mmapEntrySpec) ([]byte, []int64) {
	var resourceBytes [][]byte
	for _, spec := range entries {
		if spec.filler {
			resourceBytes = append(resourceBytes, nil)
			continue
		}
		resourceBytes = append(resourceBytes, framedChunk(spec.tag, spec.payload, e))
	}

	const headerPrefixLen = 12 // magic + metaLen + codec
	const imapChunkLen = 12    // tag(4) + len(4) + payload(4)
	const mmapHeaderLen = 20
	mmapBodyLen := int64(len(entries) * 12)
	mmapChunkLen := int64(8 + mmapHeaderLen + mmapBodyLen)
	memoryMapOffset := int64(headerPrefixLen + imapChunkLen)
	resourceBase := memoryMapOffset + mmapChunkLen

	var mmapEntriesBuf bytes.Buffer
	offsets := make([]int64, len(entries))
	offset := resourceBase
	for i, spec := range entries {
		if spec.filler {
			putTag(&mmapEntriesBuf, riff.TagJunk, e)
			putU32(&mmapEntriesBuf, 0, e)
			putI32(&mmapEntriesBuf, 0, e)
			offsets[i] = -1
			continue
		}
		putTag(&mmapEntriesBuf, spec.tag, e)
		putU32(&mmapEntriesBuf, uint32(len(spec.payload)), e)
		putI32(&mmapEntriesBuf, int32(offset), e)
		offsets[i] = offset
		offset += int64(len(resourceBytes[i]))
	}

	var mmapPayload bytes.Buffer
	putU32(&mmapPayload, mmapHeaderLen, e)
	putU32(&mmapPayload, 12, e)
	putU32(&mmapPayload, 12, e)
	putU32(&mmapPayload, uint32(len(entries)), e)
	putU32(&mmapPayload, uint32(len(entries)), e)
	mmapPayload.Write(mmapEntriesBuf.Bytes())

	var imapPayload bytes.Buffer
	putU32(&imapPayload, uint32(memoryMapOffset), e)

	var out bytes.Buffer
	if e == riff.LittleEndian {
		out.Write([]byte{'X', 'F', 'I', 'R'})
	} else {
		out.Write([]byte{'R', 'I', 'F', 'X'})
	}
	putU32(&out, 0, e) // meta length, unused
	putTag(&out, riff.TagMV93, e)
	out.Write(framedChunk(riff.TagImap, imapPayload.Bytes(), e))
	out.Write(framedChunk(riff.TagMmap, mmapPayload.Bytes(), e))
	for _, rb := range resourceBytes {
		out.Write(rb)
	}

	return out.Bytes(), offsets
}

func zlibCompressFixture(data []byte) []byte {
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	w.Write(data)
	w.Close()
	return buf.Bytes()
}

// abmpResourceSpec is one row of the ABMP resource table: resID ties a
// logical resource to a tag, and either bundled (inside the ILS, resolved
// through rawCache with no further inflate) or external (its own
// independently zlib-compressed blob placed after the ILS, inflated
// on demand by Archive.loadPayload's afterburned branch).
type abmpResourceSpec struct {
	resID          uint32
	tag            riff.FourCC
	payload        []byte // uncompressed bytes
	bundled        bool
	uncompLenDelta int // added to this resource's declared ABMP uncompressed length
}

// fgdmOpts parameterizes buildFGDM's fixture for a handful of scenarios:
// a normal compressed archive, one with a deliberately mismatched ABMP
// uncompressed-length declaration, and one missing the id=2 initial load
// segment entry.
type fgdmOpts struct {
	resources          []abmpResourceSpec
	abmpUncompLenDelta int  // added to the declared (truthful) ABMP uncompressed length
	omitILSEntry       bool // if true, never emit the id=2 directory row
}

func buildFGDM(opts fgdmOpts) []byte {
	const e = riff.BigEndian

	type abmpEntry struct {
		resID                               uint32
		tag                                 riff.FourCC
		offset, compSize, uncompSize, ctype uint32
	}

	// First pass: build the ILS body from bundled resources so its
	// compressed length is known before external offsets are assigned.
	var ilsBody bytes.Buffer
	var abmpEntries []abmpEntry
	for _, r := range opts.resources {
		if !r.bundled {
			continue
		}
		putVarint(&ilsBody, r.resID)
		ilsBody.Write(r.payload)
		abmpEntries = append(abmpEntries, abmpEntry{
			resID: r.resID, tag: r.tag,
			compSize: uint32(len(r.payload)), uncompSize: uint32(len(r.payload)),
		})
	}
	ilsBodyBytes := ilsBody.Bytes()
	ilsCompressed := zlibCompressFixture(ilsBodyBytes)

	// Second pass: external resources sit right after the ILS's own
	// compressed blob; their ABMP offset is relative to ilsBodyOffset (the
	// start of that blob), per Archive.loadPayload's afterburned branch.
	var externalBlob bytes.Buffer
	for _, r := range opts.resources {
		if r.bundled {
			continue
		}
		compressed := zlibCompressFixture(r.payload)
		offset := uint32(len(ilsCompressed)) + uint32(externalBlob.Len())
		externalBlob.Write(compressed)
		abmpEntries = append(abmpEntries, abmpEntry{
			resID: r.resID, tag: r.tag, offset: offset,
			compSize: uint32(len(compressed)), uncompSize: uint32(int(len(r.payload)) + r.uncompLenDelta),
		})
	}

	const ilsID = 2
	if !opts.omitILSEntry {
		abmpEntries = append([]abmpEntry{
			{resID: ilsID, tag: riff.TagFGEI, compSize: uint32(len(ilsCompressed)), uncompSize: uint32(len(ilsBodyBytes))},
		}, abmpEntries...)
	}

	var abmpInner bytes.Buffer
	putVarint(&abmpInner, 0) // abmpUnk1
	putVarint(&abmpInner, 0) // abmpUnk2
	putVarint(&abmpInner, uint32(len(abmpEntries)))
	for _, e2 := range abmpEntries {
		putVarint(&abmpInner, e2.resID)
		putVarint(&abmpInner, e2.offset)
		putVarint(&abmpInner, e2.compSize)
		putVarint(&abmpInner, e2.uncompSize)
		putVarint(&abmpInner, e2.ctype)
		putTag(&abmpInner, e2.tag, e)
	}
	abmpCompressed := zlibCompressFixture(abmpInner.Bytes())
	declaredUncompLen := len(abmpInner.Bytes()) + opts.abmpUncompLenDelta
	if declaredUncompLen < 0 {
		declaredUncompLen = 0
	}

	var abmpPayload bytes.Buffer
	putVarint(&abmpPayload, 0) // compression type
	putVarint(&abmpPayload, uint32(declaredUncompLen))
	abmpPayload.Write(abmpCompressed)

	var fverPayload bytes.Buffer
	putVarint(&fverPayload, 1) // file version

	var fcdrPayload bytes.Buffer // empty

	var out bytes.Buffer
	out.Write([]byte{'R', 'I', 'F', 'X'})
	putU32(&out, 0, e)
	putTag(&out, riff.TagFGDM, e)

	putTag(&out, riff.TagFver, e)
	putVarint(&out, uint32(fverPayload.Len()))
	out.Write(fverPayload.Bytes())

	putTag(&out, riff.TagFcdr, e)
	putVarint(&out, uint32(fcdrPayload.Len()))
	out.Write(fcdrPayload.Bytes())

	putTag(&out, riff.TagABMP, e)
	putVarint(&out, uint32(abmpPayload.Len()))
	out.Write(abmpPayload.Bytes())

	putTag(&out, riff.TagFGEI, e)
	putVarint(&out, 0) // ilsUnk1
	out.Write(ilsCompressed)
	out.Write(externalBlob.Bytes())

	return out.Bytes()
}
