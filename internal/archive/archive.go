// Package archive implements the orchestrator that opens a movie archive,
// resolves its directory, key table, config, and casts, and exposes
// pull-based lazy chunk materialization: a single driver type wired to
// the lower-level primitives in internal/riff and the chunk variants in
// internal/chunk.
package archive

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"

	"github.com/rgaskell/rayvault/internal/chunk"
	"github.com/rgaskell/rayvault/internal/riff"
)

// Archive is the opened, directory-resolved view of a movie file. It owns
// the underlying byte stream, the chunk directory, and both cache tiers;
// chunks it materializes hold only a non-owning handle back to it (see
// chunk.ArchiveHandle). Once Open returns successfully, Archive is
// immutable except for the monotonically growing chunk cache and the
// CapitalX flag, which ChunkByID sets when it materializes an "LctX" chunk.
type Archive struct {
	stream      *riff.ByteStream
	codec       riff.FourCC
	afterburned bool
	version     int
	capitalX    bool

	directory *riff.ChunkDirectory
	keyTable  *chunk.KeyTable
	config    *chunk.Config
	casts     []*chunk.CastDirectory

	chunkCache map[uint32]chunk.Chunk
	rawCache   map[uint32][]byte

	ilsBodyOffset int64

	logger *slog.Logger
}

// Open reads and fully resolves a movie archive from r: endianness
// detection, map parsing (either dialect), key table, config, and cast
// enumeration. It returns on the first fatal error and never returns a
// partially populated archive. logger may be nil, in which case
// slog.Default() is used.
func Open(r io.Reader, logger *slog.Logger) (*Archive, error) {
	if logger == nil {
		logger = slog.Default()
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("archive: reading input: %w", err)
	}

	s := riff.NewByteStream(data, riff.BigEndian)

	metaFourCC, err := s.ReadU32()
	if err != nil {
		return nil, fmt.Errorf("archive: reading magic: %w", err)
	}
	if riff.FourCC(metaFourCC) == riff.TagXFIR {
		s.SetEndianness(riff.LittleEndian)
	}

	if _, err := s.ReadU32(); err != nil { // meta length, unused
		return nil, fmt.Errorf("archive: reading meta length: %w", err)
	}

	codecVal, err := s.ReadU32()
	if err != nil {
		return nil, fmt.Errorf("archive: reading codec: %w", err)
	}
	codec := riff.FourCC(codecVal)

	a := &Archive{
		stream:     s,
		codec:      codec,
		directory:  riff.NewChunkDirectory(),
		chunkCache: make(map[uint32]chunk.Chunk),
		rawCache:   make(map[uint32][]byte),
		logger:     logger,
	}

	switch codec {
	case riff.TagMV93:
		if err := a.readMemoryMap(s); err != nil {
			return nil, err
		}
	case riff.TagFGDM:
		a.afterburned = true
		if err := a.readAfterburnerMap(s); err != nil {
			return nil, err
		}
	default:
		return nil, &riff.UnsupportedCodecError{Tag: codec}
	}

	if err := a.readKeyTable(); err != nil {
		return nil, err
	}
	if err := a.readConfig(); err != nil {
		return nil, err
	}
	if err := a.readCasts(); err != nil {
		return nil, err
	}

	return a, nil
}

// Stream exposes the archive's underlying byte stream for collaborators
// parsing chunk payloads beyond this reader's scope (script bytecode,
// media payloads). Any call to ChunkByID may reposition it; callers must
// not interleave raw stream use with chunk materialization.
func (a *Archive) Stream() *riff.ByteStream { return a.stream }

// Version returns the human-facing Director version derived from the
// config chunk's raw version field.
func (a *Archive) Version() int { return a.version }

// CapitalX reports whether a script context chunk tagged "LctX" (as
// opposed to "Lctx") has been materialized through ChunkByID. Open does
// not read script contexts, so it is false until such a chunk is requested.
func (a *Archive) CapitalX() bool { return a.capitalX }

// Codec returns the archive's codec FourCC (MV93 or FGDM).
func (a *Archive) Codec() riff.FourCC { return a.codec }

// Afterburned reports whether the archive was read under the compressed
// afterburner dialect.
func (a *Archive) Afterburned() bool { return a.afterburned }

// KeyTable returns the resolved key table. Non-nil after a successful Open.
func (a *Archive) KeyTable() *chunk.KeyTable { return a.keyTable }

// Config returns the resolved config chunk. Non-nil after a successful Open.
func (a *Archive) Config() *chunk.Config { return a.config }

// Casts returns every enumerated cast, in cast-list (or single-cast)
// order.
func (a *Archive) Casts() []*chunk.CastDirectory { return a.casts }

// DirectoryFirst returns the lowest-indexed id recorded under tag, and
// true, or (0, false) if no id has that tag.
func (a *Archive) DirectoryFirst(tag riff.FourCC) (uint32, bool) {
	return a.directory.First(tag)
}

// ChunkByID returns the materialized chunk for id, verifying it carries
// expected as its tag. Repeated calls for the same id return the same
// object for every tag except imap/mmap, which are never cached.
func (a *Archive) ChunkByID(expected riff.FourCC, id uint32) (chunk.Chunk, error) {
	info, ok := a.directory.Get(id)
	if !ok {
		return nil, &riff.UnknownChunkError{ID: id}
	}
	if info.Tag != expected {
		return nil, &riff.TagMismatchError{ID: id, Expected: expected, Found: info.Tag}
	}

	if c, ok := a.chunkCache[id]; ok {
		return c, nil
	}

	payload, err := a.loadPayload(info, expected)
	if err != nil {
		return nil, err
	}

	c := chunk.New(expected)
	if expected == riff.TagLctX {
		a.capitalX = true
	}
	if err := c.Read(payload, a); err != nil {
		return nil, fmt.Errorf("archive: chunk %d (%s): %w", id, expected, err)
	}

	if chunk.Cacheable(expected) {
		a.chunkCache[id] = c
	}
	return c, nil
}

// loadPayload selects and returns the payload sub-stream for info: already
// pre-decompressed raw bytes, an afterburned on-demand inflate, or a
// re-validated uncompressed-dialect chunk.
func (a *Archive) loadPayload(info riff.ChunkInfo, expected riff.FourCC) (*riff.ByteStream, error) {
	if raw, ok := a.rawCache[info.ID]; ok {
		return riff.NewByteStream(raw, a.stream.Endianness()), nil
	}

	if a.afterburned {
		if err := a.stream.Seek(int64(info.Offset) + a.ilsBodyOffset); err != nil {
			return nil, err
		}
		payload, err := a.stream.ReadZlib(int(info.StoredLen), int(info.UncompressedLen), a.logger)
		if err != nil {
			var inflateErr *riff.InflateFailedError
			if errors.As(err, &inflateErr) {
				inflateErr.ID = info.ID
				inflateErr.HasID = true
			}
			return nil, err
		}
		// Unlike the during-open ILS/ABMP inflates, which tolerate a
		// slightly inaccurate declared length (ReadZlib logs and
		// continues), an on-demand chunk's inflated length must match
		// info.UncompressedLen exactly: this is the only way to tell a
		// corrupt chunk from a short one, so a mismatch is fatal here.
		if payload.Len() != int(info.UncompressedLen) {
			return nil, &riff.InflateFailedError{
				ID:    info.ID,
				HasID: true,
				Err:   fmt.Errorf("inflated to %d bytes, expected %d", payload.Len(), info.UncompressedLen),
			}
		}
		return payload, nil
	}

	if err := a.stream.Seek(int64(info.Offset)); err != nil {
		return nil, err
	}
	return readFramedPayload(a.stream, expected, info.StoredLen, info.ID)
}

// readFramedPayload validates the 8-byte (tag, len) framing that precedes
// every chunk's payload in the uncompressed dialect. lenHint of
// math.MaxUint32 trusts the framing's own length instead of requiring a
// match (used only during map bootstrap, before the directory exists,
// where id is meaningless and passed as 0).
//
// A tag disagreement is reported as TagMismatchError, whether it comes
// from the directory or from this on-disk framing; a length disagreement
// with an agreeing tag is reported separately as ChunkFramingError.
func readFramedPayload(s *riff.ByteStream, expectedTag riff.FourCC, lenHint uint32, id uint32) (*riff.ByteStream, error) {
	offset := s.Pos()

	foundTag, err := s.ReadFourCC()
	if err != nil {
		return nil, err
	}
	foundLen, err := s.ReadU32()
	if err != nil {
		return nil, err
	}

	wantLen := lenHint
	if lenHint == math.MaxUint32 {
		wantLen = foundLen
	}

	if expectedTag != foundTag {
		return nil, &riff.TagMismatchError{ID: id, Expected: expectedTag, Found: foundTag}
	}
	if wantLen != foundLen {
		return nil, &riff.ChunkFramingError{
			Offset:      offset,
			ExpectedTag: expectedTag,
			FoundTag:    foundTag,
			ExpectedLen: wantLen,
			FoundLen:    foundLen,
		}
	}

	return s.ReadBytes(int(wantLen))
}
