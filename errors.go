package memkit

import "golang.org/x/xerrors"

var (
	// ErrNotFound is returned for handles that are out of range or whose
	// generation has been superseded by a Free.
	ErrNotFound = xerrors.New("memkit: handle not found")

	// ErrWrongType is returned for handles issued by a different
	// ResourceSlab.
	ErrWrongType = xerrors.New("memkit: handle type mismatch")
)
