package archive

import (
	"fmt"

	"github.com/rgaskell/rayvault/internal/chunk"
	"github.com/rgaskell/rayvault/internal/riff"
)

// internalCastID and internalCastName are the synthesized identity given
// to the single cast of a pre-500 movie, which has no cast-list entry of
// its own.
const (
	internalCastID   = 1024
	internalCastName = "Internal"
)

// readKeyTable locates and materializes the "KEY*" chunk. Absence aborts
// the open.
func (a *Archive) readKeyTable() error {
	id, ok := a.directory.First(riff.TagKEYStar)
	if !ok {
		return &riff.MissingRequiredError{What: "key table", Tag: riff.TagKEYStar}
	}

	c, err := a.ChunkByID(riff.TagKEYStar, id)
	if err != nil {
		return err
	}
	keyTable, ok := c.(*chunk.KeyTable)
	if !ok {
		return fmt.Errorf("archive: chunk %d: unexpected type for key table tag", id)
	}

	a.keyTable = keyTable
	return nil
}

// readConfig locates and materializes the config chunk ("VWCF", falling
// back to legacy "DRCF"), and derives the human-facing version from its
// raw Director version field. Absence aborts the open.
func (a *Archive) readConfig() error {
	tag := riff.TagVWCF
	id, ok := a.directory.First(tag)
	if !ok {
		tag = riff.TagDRCF
		id, ok = a.directory.First(tag)
	}
	if !ok {
		return &riff.MissingRequiredError{What: "config", Tag: riff.TagVWCF}
	}

	c, err := a.ChunkByID(tag, id)
	if err != nil {
		return err
	}
	cfg, ok := c.(*chunk.Config)
	if !ok {
		return fmt.Errorf("archive: chunk %d: unexpected type for config tag", id)
	}

	a.config = cfg
	a.version = chunk.HumanVersion(cfg.DirectorVersion)
	a.logger.Info("config resolved", "director_version_raw", cfg.DirectorVersion, "human_version", a.version)
	return nil
}

// readCasts enumerates casts: via the cast list ("MCsL") joined through
// the key table from human version 500 onward, or the single implicit
// "Internal" cast below that.
func (a *Archive) readCasts() error {
	if a.version >= 500 {
		return a.readCastsFromList()
	}
	return a.readSingleCast()
}

func (a *Archive) readCastsFromList() error {
	id, ok := a.directory.First(riff.TagMCsL)
	if !ok {
		return &riff.MissingRequiredError{What: "cast list", Tag: riff.TagMCsL}
	}

	c, err := a.ChunkByID(riff.TagMCsL, id)
	if err != nil {
		return err
	}
	castList, ok := c.(*chunk.CastList)
	if !ok {
		return fmt.Errorf("archive: chunk %d: unexpected type for cast list tag", id)
	}

	for _, entry := range castList.Entries {
		sectionID, found := a.keyTable.Find(entry.ID, riff.TagCASStar)
		if !found || sectionID <= 0 {
			continue
		}

		cc, err := a.ChunkByID(riff.TagCASStar, uint32(sectionID))
		if err != nil {
			return err
		}
		cast, ok := cc.(*chunk.CastDirectory)
		if !ok {
			return fmt.Errorf("archive: chunk %d: unexpected type for cast tag", sectionID)
		}

		cast.Populate(entry.Name, entry.ID, entry.MinMember)
		a.casts = append(a.casts, cast)
	}

	return nil
}

func (a *Archive) readSingleCast() error {
	id, ok := a.directory.First(riff.TagCASStar)
	if !ok {
		return &riff.MissingRequiredError{What: "cast", Tag: riff.TagCASStar}
	}

	c, err := a.ChunkByID(riff.TagCASStar, id)
	if err != nil {
		return err
	}
	cast, ok := c.(*chunk.CastDirectory)
	if !ok {
		return fmt.Errorf("archive: chunk %d: unexpected type for cast tag", id)
	}

	cast.Populate(internalCastName, internalCastID, int32(a.config.MinMember))
	a.casts = append(a.casts, cast)
	return nil
}
