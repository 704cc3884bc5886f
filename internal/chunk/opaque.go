package chunk

import "github.com/rgaskell/rayvault/internal/riff"

// ScriptContext is the "Lctx"/"LctX" chunk: the table of script entries
// for a movie or cast. Script bytecode and the context's internal table
// layout are out of scope; the chunk keeps its payload opaque. Whether
// the archive saw "LctX" (as opposed to "Lctx") is recorded by the
// archive as CapitalX, not by this type.
type ScriptContext struct {
	Raw []byte
}

func (c *ScriptContext) Read(s *riff.ByteStream, h ArchiveHandle) error {
	raw, err := s.CopyBytes(s.Len() - int(s.Pos()))
	if err != nil {
		return err
	}
	c.Raw = raw
	return nil
}

// ScriptNames is the "Lnam" chunk: the name table script bytecode
// references by index. Out of scope beyond existing as a dispatch target.
type ScriptNames struct {
	Raw []byte
}

func (c *ScriptNames) Read(s *riff.ByteStream, h ArchiveHandle) error {
	raw, err := s.CopyBytes(s.Len() - int(s.Pos()))
	if err != nil {
		return err
	}
	c.Raw = raw
	return nil
}

// Script is the "Lscr" chunk: compiled Lingo bytecode for one script
// member. Decompilation is out of scope; the chunk keeps its payload
// opaque for an external collaborator to parse.
type Script struct {
	Raw []byte
}

func (c *Script) Read(s *riff.ByteStream, h ArchiveHandle) error {
	raw, err := s.CopyBytes(s.Len() - int(s.Pos()))
	if err != nil {
		return err
	}
	c.Raw = raw
	return nil
}

// Opaque is the generic chunk variant used for any tag with no dedicated
// type. It keeps the full payload available to a collaborator that knows
// how to interpret it.
type Opaque struct {
	Tag riff.FourCC
	Raw []byte
}

func (c *Opaque) Read(s *riff.ByteStream, h ArchiveHandle) error {
	raw, err := s.CopyBytes(s.Len() - int(s.Pos()))
	if err != nil {
		return err
	}
	c.Raw = raw
	return nil
}
