package snapshot

import "github.com/zfstm/zfstm/internal/mount"

// Kind and Error are shared with internal/mount: both packages report the same
// error taxonomy (spec §7), so snapshot aliases mount's types instead of
// duplicating them.
type Kind = mount.Kind

const (
	KindNoQualifyingDataset   = mount.KindNoQualifyingDataset
	KindNoImmediateDataset    = mount.KindNoImmediateDataset
	KindNoAltReplicatedMount  = mount.KindNoAltReplicatedMount
	KindWrongWorkingDirectory = mount.KindWrongWorkingDirectory
	KindNothingEverExisted    = mount.KindNothingEverExisted
	KindIOError               = mount.KindIOError
)

// Error is an alias of mount.Error so callers can errors.As against a single
// type regardless of which package raised it.
type Error = mount.Error

// NewError builds a snapshot-flavored Error of the given kind.
func NewError(kind Kind, msg string, err error) *Error {
	return mount.NewError(kind, msg, err)
}
