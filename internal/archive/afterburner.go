package archive

import (
	"github.com/rgaskell/rayvault/internal/riff"
)

// readAfterburnerMap builds the directory from the compressed "FGDM"
// dialect: the Fver/Fcdr/ABMP/FGEI preamble sequence. Any missing marker
// or inflate failure aborts with a diagnostic, leaving the archive
// unopened.
func (a *Archive) readAfterburnerMap(s *riff.ByteStream) error {
	if err := expectTag(s, riff.TagFver); err != nil {
		return err
	}
	fverLen, err := s.ReadVarint()
	if err != nil {
		return err
	}
	fverStart := s.Pos()
	if _, err := s.ReadVarint(); err != nil { // file version, unused beyond this preamble
		return err
	}
	if consumed := s.Pos() - fverStart; consumed != int64(fverLen) {
		// Tolerant recovery: the declared length wins over what was parsed.
		if err := s.Seek(fverStart + int64(fverLen)); err != nil {
			return err
		}
	}

	if err := expectTag(s, riff.TagFcdr); err != nil {
		return err
	}
	fcdrLen, err := s.ReadVarint()
	if err != nil {
		return err
	}
	if err := s.Skip(int64(fcdrLen)); err != nil {
		return err
	}

	if err := expectTag(s, riff.TagABMP); err != nil {
		return err
	}
	abmpLen, err := s.ReadVarint()
	if err != nil {
		return err
	}
	abmpEnd := s.Pos() + int64(abmpLen)
	if _, err := s.ReadVarint(); err != nil { // compression type, unused: only zlib is supported
		return err
	}
	abmpUncompLen, err := s.ReadVarint()
	if err != nil {
		return err
	}

	abmpStream, err := s.ReadZlib(int(abmpEnd-s.Pos()), int(abmpUncompLen), a.logger)
	if err != nil {
		return err
	}

	if _, err := abmpStream.ReadVarint(); err != nil { // abmpUnk1, unexplained, skipped
		return err
	}
	if _, err := abmpStream.ReadVarint(); err != nil { // abmpUnk2, unexplained, skipped
		return err
	}
	resCount, err := abmpStream.ReadVarint()
	if err != nil {
		return err
	}

	for i := uint32(0); i < resCount; i++ {
		resID, err := abmpStream.ReadVarint()
		if err != nil {
			return err
		}
		offset, err := abmpStream.ReadVarint()
		if err != nil {
			return err
		}
		compSize, err := abmpStream.ReadVarint()
		if err != nil {
			return err
		}
		uncompSize, err := abmpStream.ReadVarint()
		if err != nil {
			return err
		}
		compressionType, err := abmpStream.ReadVarint()
		if err != nil {
			return err
		}
		tag, err := abmpStream.ReadFourCC()
		if err != nil {
			return err
		}

		a.directory.Add(riff.ChunkInfo{
			ID:              resID,
			Tag:             tag,
			StoredLen:       compSize,
			UncompressedLen: uncompSize,
			Offset:          int32(offset),
			Compression:     compressionType,
		})
	}

	const ilsID = 2
	ilsInfo, ok := a.directory.Get(ilsID)
	if !ok {
		return &riff.MissingRequiredError{What: "initial load segment (id=2)", Tag: riff.TagFGEI}
	}

	if err := expectTag(s, riff.TagFGEI); err != nil {
		return err
	}
	if _, err := s.ReadVarint(); err != nil { // ilsUnk1, unexplained, skipped
		return err
	}
	a.ilsBodyOffset = s.Pos()

	ilsStream, err := s.ReadZlib(int(ilsInfo.StoredLen), int(ilsInfo.UncompressedLen), a.logger)
	if err != nil {
		return err
	}

	for !ilsStream.Eof() {
		resID, err := ilsStream.ReadVarint()
		if err != nil {
			return err
		}
		info, ok := a.directory.Get(resID)
		if !ok {
			return &riff.UnknownChunkError{ID: resID}
		}
		data, err := ilsStream.CopyBytes(int(info.StoredLen))
		if err != nil {
			return err
		}
		a.rawCache[resID] = data
	}

	return nil
}

// expectTag reads a FourCC from s and returns MalformedEnvelopeError if it
// does not match want.
func expectTag(s *riff.ByteStream, want riff.FourCC) error {
	found, err := s.ReadFourCC()
	if err != nil {
		return err
	}
	if found != want {
		return &riff.MalformedEnvelopeError{Expected: want, Found: found}
	}
	return nil
}
