package chunk

import "github.com/rgaskell/rayvault/internal/riff"

// KeyEntry is one row of a KeyTable: it joins a cast directory entry's id
// to the section id of the chunk carrying a given tag for that cast.
type KeyEntry struct {
	CastID    int32
	SectionID int32
	Tag       riff.FourCC
}

// KeyTable is the "KEY*" chunk: the join table used to resolve a cast
// entry's id into the section id of its "CAS*" chunk (see CastDirectory
// and Archive.readCasts). Invariant: at most one CAS* row per CastID.
type KeyTable struct {
	Entries []KeyEntry
}

func (c *KeyTable) Read(s *riff.ByteStream, h ArchiveHandle) error {
	headerLen, err := s.ReadU32()
	if err != nil {
		return err
	}
	entrySize, err := s.ReadU32()
	if err != nil {
		return err
	}
	if _, err := s.ReadU32(); err != nil { // maxEntryCount, unused
		return err
	}
	usedEntryCount, err := s.ReadU32()
	if err != nil {
		return err
	}

	if err := s.Seek(int64(headerLen)); err != nil {
		return err
	}

	const minEntryFields = 12 // sectionID(4) + castID(4) + tag(4)
	entries := make([]KeyEntry, 0, usedEntryCount)
	for i := uint32(0); i < usedEntryCount; i++ {
		entryStart := s.Pos()

		sectionID, err := s.ReadI32()
		if err != nil {
			return err
		}
		castID, err := s.ReadI32()
		if err != nil {
			return err
		}
		tag, err := s.ReadFourCC()
		if err != nil {
			return err
		}

		entries = append(entries, KeyEntry{CastID: castID, SectionID: sectionID, Tag: tag})

		if entrySize > minEntryFields {
			if err := s.Seek(entryStart + int64(entrySize)); err != nil {
				return err
			}
		}
	}

	c.Entries = entries
	return nil
}

// Find returns the section id of the row matching castID and tag, and
// true, or (0, false) if no such row exists.
func (c *KeyTable) Find(castID int32, tag riff.FourCC) (int32, bool) {
	for _, e := range c.Entries {
		if e.CastID == castID && e.Tag == tag {
			return e.SectionID, true
		}
	}
	return 0, false
}
