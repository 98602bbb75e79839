package elf

import (
	"errors"
	"fmt"
)

var (
	// Ingest errors.
	ErrOpen         = fmt.Errorf("failed to open input")
	ErrRead         = fmt.Errorf("failed to read input")
	ErrAllocation   = fmt.Errorf("failed to allocate buffer")
	ErrEndOfBuffer  = fmt.Errorf("end of buffer")
	ErrNotElfFormat = fmt.Errorf("not elf format")

	// Decode errors.
	ErrSize     = fmt.Errorf("invalid size")
	ErrMagic    = fmt.Errorf("invalid elf magic number")
	ErrClass    = fmt.Errorf("unsupported elf class")
	ErrEncoding = fmt.Errorf("unsupported data encoding")
	ErrVersion  = fmt.Errorf("unsupported identifier version")
	ErrType     = fmt.Errorf("unsupported type")
	ErrOffset   = fmt.Errorf("out of bound offset")

	errorKinds = []error{
		ErrOpen,
		ErrRead,
		ErrAllocation,
		ErrEndOfBuffer,
		ErrNotElfFormat,
		ErrSize,
		ErrMagic,
		ErrClass,
		ErrEncoding,
		ErrVersion,
		ErrType,
		ErrOffset,
	}
)

// Kind returns the sentinel error wrapped by err, or nil if err does not
// originate from this package.
func Kind(err error) error {
	if err == nil {
		return nil
	}

	for _, kind := range errorKinds {
		if errors.Is(err, kind) {
			return kind
		}
	}

	return nil
}
