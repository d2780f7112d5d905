package pack

// Stage marks how far a room's page block has progressed through the
// build. Stages advance strictly forward; a block never re-enters an
// earlier stage.
type Stage int

const (
	// StageLoaded means the room's source documents are open and its
	// track page indices verified.
	StageLoaded Stage = iota
	// StageCropped means every plan page has been trimmed to its region.
	StageCropped
	// StageShuffled means the room's tracks have been interleaved.
	StageShuffled
	// StageAssembled means the room's block has been appended to the
	// output document.
	StageAssembled
	// StageSerialized means the finished pack has been written out.
	StageSerialized
)

func (s Stage) String() string {
	switch s {
	case StageLoaded:
		return "loaded"
	case StageCropped:
		return "cropped"
	case StageShuffled:
		return "shuffled"
	case StageAssembled:
		return "assembled"
	case StageSerialized:
		return "serialized"
	}
	return "unknown"
}
