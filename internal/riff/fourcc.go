package riff

import "encoding/binary"

// FourCC is a 32-bit identifier formed from four ASCII bytes, used
// throughout the archive as a chunk tag. Two FourCCs are equal iff their
// underlying integers are equal.
type FourCC uint32

// NewFourCC packs four characters into a FourCC in the on-disk byte order
// (a, b, c, d read left to right), independent of the stream's endianness.
func NewFourCC(a, b, c, d byte) FourCC {
	return FourCC(binary.BigEndian.Uint32([]byte{a, b, c, d}))
}

// String renders the FourCC as its four characters, for diagnostics.
func (f FourCC) String() string {
	b := [4]byte{
		byte(f >> 24),
		byte(f >> 16),
		byte(f >> 8),
		byte(f),
	}
	return string(b[:])
}

// Known tags. Names follow the four characters they represent.
var (
	TagRIFX = NewFourCC('R', 'I', 'F', 'X')
	TagXFIR = NewFourCC('X', 'F', 'I', 'R')

	TagMV93 = NewFourCC('M', 'V', '9', '3')
	TagFGDM = NewFourCC('F', 'G', 'D', 'M')

	TagImap = NewFourCC('i', 'm', 'a', 'p')
	TagMmap = NewFourCC('m', 'm', 'a', 'p')
	TagFree = NewFourCC('f', 'r', 'e', 'e')
	TagJunk = NewFourCC('j', 'u', 'n', 'k')

	TagFver = NewFourCC('F', 'v', 'e', 'r')
	TagFcdr = NewFourCC('F', 'c', 'd', 'r')
	TagABMP = NewFourCC('A', 'B', 'M', 'P')
	TagFGEI = NewFourCC('F', 'G', 'E', 'I')

	TagCASStar = NewFourCC('C', 'A', 'S', '*')
	TagCASt    = NewFourCC('C', 'A', 'S', 't')
	TagKEYStar = NewFourCC('K', 'E', 'Y', '*')
	TagLctX    = NewFourCC('L', 'c', 't', 'X')
	TagLctx    = NewFourCC('L', 'c', 't', 'x')
	TagLnam    = NewFourCC('L', 'n', 'a', 'm')
	TagLscr    = NewFourCC('L', 's', 'c', 'r')
	TagVWCF    = NewFourCC('V', 'W', 'C', 'F')
	TagDRCF    = NewFourCC('D', 'R', 'C', 'F')
	TagMCsL    = NewFourCC('M', 'C', 's', 'L')
)
