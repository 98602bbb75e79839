//go:build unix

package elf

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// FillFromPath appends the content of the file at path.  The file is always
// closed before returning.
func (buffer *Buffer) FillFromPath(path string) error {
	fd, err := unix.Open(path, unix.O_RDONLY|unix.O_CLOEXEC, 0)
	if err != nil {
		return fmt.Errorf("%w %s: %w", ErrOpen, path, err)
	}
	defer unix.Close(fd)

	err = buffer.FillFromDescriptor(fd)
	if err != nil {
		return fmt.Errorf("failed to fill from %s: %w", path, err)
	}

	return nil
}

// FillFromDescriptor appends everything read from fd until end of file.  The
// descriptor is not closed.
func (buffer *Buffer) FillFromDescriptor(fd int) error {
	chunk := make([]byte, buffer.chunkSize)
	for {
		n, err := unix.Read(fd, chunk)
		if err == unix.EINTR {
			continue
		} else if err != nil {
			return fmt.Errorf("%w from fd %d: %w", ErrRead, fd, err)
		}

		if n < 0 || n > len(chunk) {
			return fmt.Errorf("%w from fd %d: invalid read count (%d)", ErrRead, fd, n)
		}

		if n == 0 {
			return nil
		}

		err = buffer.append(chunk[:n])
		if err != nil {
			return err
		}
	}
}
