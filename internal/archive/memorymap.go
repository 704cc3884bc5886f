package archive

import (
	"math"

	"github.com/rgaskell/rayvault/internal/chunk"
	"github.com/rgaskell/rayvault/internal/riff"
)

// readMemoryMap builds the directory from the uncompressed "MV93" dialect:
// an "imap" chunk pointing at an "mmap" chunk, whose entry array becomes
// the directory. Entries tagged "free" or "junk" are filtered at
// ingestion and never reach the directory, though they still consume an
// id (the array index).
func (a *Archive) readMemoryMap(s *riff.ByteStream) error {
	imapPayload, err := readFramedPayload(s, riff.TagImap, math.MaxUint32, 0)
	if err != nil {
		return err
	}
	imap := &chunk.InitialMap{}
	if err := imap.Read(imapPayload, a); err != nil {
		return err
	}

	if err := s.Seek(int64(imap.MemoryMapOffset)); err != nil {
		return err
	}

	mmapPayload, err := readFramedPayload(s, riff.TagMmap, math.MaxUint32, 0)
	if err != nil {
		return err
	}
	mmap := &chunk.MemoryMap{}
	if err := mmap.Read(mmapPayload, a); err != nil {
		return err
	}

	for i, entry := range mmap.Entries {
		if entry.Tag == riff.TagFree || entry.Tag == riff.TagJunk {
			continue
		}
		a.directory.Add(riff.ChunkInfo{
			ID:              uint32(i),
			Tag:             entry.Tag,
			StoredLen:       entry.Len,
			UncompressedLen: entry.Len,
			Offset:          entry.Offset,
			Compression:     0,
		})
	}

	return nil
}
