package editionstore

import "errors"

var (
	ErrNotFound      = errors.New("edition does not exist")
	ErrCorruptRecord = errors.New("edition record is corrupt")
	ErrMissingID     = errors.New("edition has no id")
)
