package chunk

import "github.com/rgaskell/rayvault/internal/riff"

// CastDirectory is a "CAS*" chunk: a flat array of member chunk ids, one
// per cast slot (0 meaning the slot is empty). It starts out unnamed; the
// archive calls Populate once it has matched the chunk to a cast-list
// entry (or, pre-500, to the single implicit "Internal" cast).
type CastDirectory struct {
	MemberIDs []int32

	Name      string
	ID        int32
	MinMember int32
}

func (c *CastDirectory) Read(s *riff.ByteStream, h ArchiveHandle) error {
	n := s.Len() / 4
	ids := make([]int32, 0, n)
	for !s.Eof() {
		id, err := s.ReadI32()
		if err != nil {
			return err
		}
		ids = append(ids, id)
	}
	c.MemberIDs = ids
	return nil
}

// Populate annotates the cast with the name, id, and min-member offset
// from the cast-list entry (or synthesized "Internal"/1024 identity) that
// resolved to this chunk.
func (c *CastDirectory) Populate(name string, id int32, minMember int32) {
	c.Name = name
	c.ID = id
	c.MinMember = minMember
}

// Members resolves every non-empty slot to its CastMember chunk via h, a
// non-owning handle back to the archive. A slot's absolute member id is
// its array index offset by MinMember.
func (c *CastDirectory) Members(h ArchiveHandle) ([]*CastMember, error) {
	members := make([]*CastMember, 0, len(c.MemberIDs))
	for i, slot := range c.MemberIDs {
		if slot == 0 {
			continue
		}
		memberID := uint32(int32(i) + c.MinMember)
		ch, err := h.ChunkByID(riff.TagCASt, memberID)
		if err != nil {
			return nil, err
		}
		member, ok := ch.(*CastMember)
		if !ok {
			continue
		}
		members = append(members, member)
	}
	return members, nil
}
