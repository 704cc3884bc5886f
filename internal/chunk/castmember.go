package chunk

import "github.com/rgaskell/rayvault/internal/riff"

// MemberType enumerates the cast member kinds a "CASt" chunk's leading
// type byte can carry. Full payload parsing per member type (bitmap
// pixels, sound samples, script bytecode, ...) is out of scope for this
// reader; only the classification is decoded.
type MemberType byte

const (
	NullMember MemberType = iota
	BitmapMember
	FilmLoopMember
	TextMember
	PaletteMember
	PictureMember
	SoundMember
	ButtonMember
	ShapeMember
	MovieMember
	DigitalVideoMember
	ScriptMember
	RTEMember
)

func (t MemberType) String() string {
	switch t {
	case NullMember:
		return "null"
	case BitmapMember:
		return "bitmap"
	case FilmLoopMember:
		return "filmLoop"
	case TextMember:
		return "text"
	case PaletteMember:
		return "palette"
	case PictureMember:
		return "picture"
	case SoundMember:
		return "sound"
	case ButtonMember:
		return "button"
	case ShapeMember:
		return "shape"
	case MovieMember:
		return "movie"
	case DigitalVideoMember:
		return "digitalVideo"
	case ScriptMember:
		return "script"
	case RTEMember:
		return "rte"
	default:
		return "unknown"
	}
}

// ScriptType further classifies a ScriptMember.
type ScriptType byte

const (
	UnknownScript ScriptType = iota
	ScoreScript
	MovieScript
	ParentScript
)

func (t ScriptType) String() string {
	switch t {
	case ScoreScript:
		return "score"
	case MovieScript:
		return "movie"
	case ParentScript:
		return "parent"
	default:
		return "unknown"
	}
}

// CastMember is a "CASt" chunk. It decodes the member's type (and, for
// script members, its script subtype) and otherwise keeps the payload
// opaque: type-specific media and bytecode parsing is out of scope.
type CastMember struct {
	Type       MemberType
	ScriptType ScriptType
	Raw        []byte
}

func (c *CastMember) Read(s *riff.ByteStream, h ArchiveHandle) error {
	typeByte, err := s.ReadU8()
	if err != nil {
		return err
	}
	c.Type = MemberType(typeByte)

	if c.Type == ScriptMember && !s.Eof() {
		scriptTypeByte, err := s.ReadU8()
		if err != nil {
			return err
		}
		c.ScriptType = ScriptType(scriptTypeByte)
	}

	remaining := s.Len() - int(s.Pos())
	raw, err := s.CopyBytes(remaining)
	if err != nil {
		return err
	}
	c.Raw = raw
	return nil
}
