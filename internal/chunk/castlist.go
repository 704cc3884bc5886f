package chunk

import "github.com/rgaskell/rayvault/internal/riff"

// CastListEntry is one named cast slot from a CastList.
type CastListEntry struct {
	Name      string
	ID        int32
	MinMember int32
}

// CastList is the "MCsL" chunk: present from human version 500 onward, it
// enumerates every cast by name and id; the id is joined against the key
// table to find the cast's "CAS*" chunk (Archive.readCasts).
type CastList struct {
	Entries []CastListEntry
}

func (c *CastList) Read(s *riff.ByteStream, h ArchiveHandle) error {
	count, err := s.ReadVarint()
	if err != nil {
		return err
	}

	entries := make([]CastListEntry, 0, count)
	for i := uint32(0); i < count; i++ {
		nameLen, err := s.ReadU16()
		if err != nil {
			return err
		}
		nameBytes, err := s.CopyBytes(int(nameLen))
		if err != nil {
			return err
		}
		id, err := s.ReadI32()
		if err != nil {
			return err
		}
		minMember, err := s.ReadI32()
		if err != nil {
			return err
		}

		entries = append(entries, CastListEntry{
			Name:      string(nameBytes),
			ID:        id,
			MinMember: minMember,
		})
	}

	c.Entries = entries
	return nil
}
