package chunk

import "github.com/rgaskell/rayvault/internal/riff"

// InitialMap is the "imap" chunk: it exists solely to point the archive at
// the "mmap" chunk's offset during the uncompressed dialect's bootstrap.
// It is never cached (see Cacheable).
type InitialMap struct {
	MemoryMapOffset uint32
}

func (c *InitialMap) Read(s *riff.ByteStream, h ArchiveHandle) error {
	v, err := s.ReadU32()
	if err != nil {
		return err
	}
	c.MemoryMapOffset = v
	return nil
}

// MapEntry is one row of a MemoryMap's resource array.
type MapEntry struct {
	Tag    riff.FourCC
	Len    uint32
	Offset int32
}

// MemoryMap is the "mmap" chunk of the uncompressed dialect: a header
// naming the entry size and count, followed by that many fixed-size
// entries. Only the leading (tag, len, offset) of each entry is
// meaningful to the archive; any trailing per-entry bytes (flags, free
// list links) are skipped. Never cached.
type MemoryMap struct {
	Entries []MapEntry
}

func (c *MemoryMap) Read(s *riff.ByteStream, h ArchiveHandle) error {
	headerLen, err := s.ReadU32()
	if err != nil {
		return err
	}
	entrySize, err := s.ReadU32()
	if err != nil {
		return err
	}
	if _, err := s.ReadU32(); err != nil { // entrySize2, unused duplicate
		return err
	}
	if _, err := s.ReadU32(); err != nil { // maxEntryCount, unused
		return err
	}
	usedEntryCount, err := s.ReadU32()
	if err != nil {
		return err
	}

	// Header may carry fields beyond the five above; skip to its declared
	// end rather than assuming a fixed size.
	if err := s.Seek(int64(headerLen)); err != nil {
		return err
	}

	const minEntryFields = 12 // tag(4) + len(4) + offset(4)
	entries := make([]MapEntry, 0, usedEntryCount)
	for i := uint32(0); i < usedEntryCount; i++ {
		entryStart := s.Pos()

		tag, err := s.ReadFourCC()
		if err != nil {
			return err
		}
		length, err := s.ReadU32()
		if err != nil {
			return err
		}
		offset, err := s.ReadI32()
		if err != nil {
			return err
		}

		entries = append(entries, MapEntry{Tag: tag, Len: length, Offset: offset})

		if entrySize > minEntryFields {
			if err := s.Seek(entryStart + int64(entrySize)); err != nil {
				return err
			}
		}
	}

	c.Entries = entries
	return nil
}
