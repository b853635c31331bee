package mount

import "golang.org/x/xerrors"

// Kind classifies the error taxonomy shared between the mount and snapshot
// packages (spec §7). It is a kind, not a type: every Error carries one of these
// plus a human-readable message.
type Kind int

const (
	// KindNoQualifyingDataset means no mount is a prefix of the path's parent (C2).
	KindNoQualifyingDataset Kind = iota
	// KindNoImmediateDataset means the reverse index lacks the immediate mount (C3).
	KindNoImmediateDataset
	// KindNoAltReplicatedMount means no replica filesystem was found (C3).
	KindNoAltReplicatedMount
	// KindWrongWorkingDirectory means relative-path computation failed (C4).
	KindWrongWorkingDirectory
	// KindNothingEverExisted means both historical and live sets came back empty (C7).
	KindNothingEverExisted
	// KindIOError wraps an underlying filesystem error.
	KindIOError
)

// Error is the opaque error carrier the core returns: a kind plus a message, per
// spec §7 ("all errors are returned as a single opaque carrier with a
// human-readable message").
type Error struct {
	Kind Kind
	msg  string
	err  error
}

func (e *Error) Error() string {
	if e.err != nil {
		return xerrors.Errorf("%s: %w", e.msg, e.err).Error()
	}
	return e.msg
}

// Unwrap lets errors.Is/errors.As see through to the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.err
}

// NewError builds an Error of the given kind. err may be nil.
func NewError(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, msg: msg, err: err}
}
