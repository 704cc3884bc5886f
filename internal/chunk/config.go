package chunk

import "github.com/rgaskell/rayvault/internal/riff"

// Config is the "VWCF" (or legacy "DRCF") chunk: it carries the raw
// Director version and a fallback MinMember used when no cast-list entry
// supplies one (pre-500 human versions, see Archive.readCasts).
type Config struct {
	Len             int16
	FileVersion     int16
	Rect            [4]int16 // top, left, bottom, right stage rect
	MinMember       int16
	MaxMember       int16
	DirectorVersion uint16
}

func (c *Config) Read(s *riff.ByteStream, h ArchiveHandle) error {
	var err error
	if c.Len, err = readI16(s); err != nil {
		return err
	}
	if c.FileVersion, err = readI16(s); err != nil {
		return err
	}
	for i := range c.Rect {
		if c.Rect[i], err = readI16(s); err != nil {
			return err
		}
	}
	if c.MinMember, err = readI16(s); err != nil {
		return err
	}
	if c.MaxMember, err = readI16(s); err != nil {
		return err
	}
	v, err := s.ReadU16()
	if err != nil {
		return err
	}
	c.DirectorVersion = v
	return nil
}

func readI16(s *riff.ByteStream) (int16, error) {
	v, err := s.ReadU16()
	return int16(v), err
}

// humanVersionTable maps known raw Director version values to their
// human-facing version number. Entries are anchor points on a monotonic
// staircase: HumanVersion returns the value for the highest anchor not
// exceeding raw. 0x45C -> 500 is the boundary the archive uses to decide
// between cast-list and single-cast discovery.
var humanVersionTable = []struct {
	raw   uint16
	human int
}{
	{0x401, 400},
	{0x45C, 500},
	{0x45D, 501},
	{0x4B1, 600},
	{0x582, 700},
	{0x69F, 800},
	{0x73C, 850},
	{0x745, 1000},
	{0x783, 1100},
	{0x79D, 1150},
	{0x7A5, 1200},
	{0x8DC, 1201},
}

// HumanVersion computes the canonical human-readable Director version from
// a raw version value. Used only for dispatch thresholds (notably the 500
// boundary).
func HumanVersion(raw uint16) int {
	human := 0
	for _, e := range humanVersionTable {
		if raw < e.raw {
			break
		}
		human = e.human
	}
	return human
}
