// Package chunk implements the tagged-sum-type chunk variants the archive
// dispatches to by FourCC, and the factory that selects among them: each
// chunk variant is its own type implementing Chunk, and the factory
// function in this package picks the concrete type by tag rather than
// relying on a shared base type or virtual dispatch.
package chunk

import "github.com/rgaskell/rayvault/internal/riff"

// Chunk is implemented by every concrete chunk variant. Read parses the
// chunk's payload from s; h is a non-owning handle back to the owning
// archive, used only to resolve cross-chunk references (for example a
// CastDirectory resolving its CastMember chunks). Variants never retain h
// or s past the call.
type Chunk interface {
	Read(s *riff.ByteStream, h ArchiveHandle) error
}

// ArchiveHandle is the narrow view of the archive a chunk needs while
// parsing its own payload. It exists so chunk variants can resolve
// cross-references without owning (or being owned by) the archive;
// internal/archive.Archive implements it.
type ArchiveHandle interface {
	ChunkByID(tag riff.FourCC, id uint32) (Chunk, error)
}

// New constructs the zero-value chunk variant for tag. Tags with no
// dedicated variant produce a generic Opaque chunk.
func New(tag riff.FourCC) Chunk {
	switch tag {
	case riff.TagImap:
		return &InitialMap{}
	case riff.TagMmap:
		return &MemoryMap{}
	case riff.TagCASStar:
		return &CastDirectory{}
	case riff.TagCASt:
		return &CastMember{}
	case riff.TagKEYStar:
		return &KeyTable{}
	case riff.TagLctX, riff.TagLctx:
		return &ScriptContext{}
	case riff.TagLnam:
		return &ScriptNames{}
	case riff.TagLscr:
		return &Script{}
	case riff.TagVWCF, riff.TagDRCF:
		return &Config{}
	case riff.TagMCsL:
		return &CastList{}
	default:
		return &Opaque{Tag: tag}
	}
}

// Cacheable reports whether a materialized chunk for tag should be stored
// in the archive's chunk cache. imap/mmap are map-bootstrap chunks the
// archive only ever needs once during Open, so they are excluded.
func Cacheable(tag riff.FourCC) bool {
	return tag != riff.TagImap && tag != riff.TagMmap
}
