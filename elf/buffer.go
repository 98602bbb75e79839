package elf

import (
	"bytes"
	"fmt"
	"io"
)

const (
	DefaultBufferCapacity    = 64 * 1024
	DefaultMaxBufferCapacity = 1024 * 1024 * 1024
	DefaultReadChunkSize     = 4096

	// Same limit as bufio.
	maxConsecutiveEmptyReads = 100
)

type BufferOption func(*Buffer)

// WithMaxCapacity bounds buffer growth.  Fills that would need more than
// maxCapacity bytes fail with ErrAllocation.
func WithMaxCapacity(maxCapacity int) BufferOption {
	return func(buffer *Buffer) {
		buffer.maxCapacity = maxCapacity
	}
}

// WithReadChunkSize sets the number of bytes requested per read during fill.
func WithReadChunkSize(chunkSize int) BufferOption {
	return func(buffer *Buffer) {
		buffer.chunkSize = chunkSize
	}
}

// Buffer is an append-only byte region with a read cursor.  Fills append at
// the logical end independent of the cursor.
//
// Invariant: 0 <= pos <= size <= len(data)
//
// Buffer is not safe for concurrent use.
type Buffer struct {
	data []byte
	size int
	pos  int

	maxCapacity int
	chunkSize   int
}

// NewBuffer allocates a buffer with the given initial capacity.  A zero
// capacity selects DefaultBufferCapacity (bounded by the max capacity).
func NewBuffer(capacity int, options ...BufferOption) (*Buffer, error) {
	buffer := &Buffer{
		maxCapacity: DefaultMaxBufferCapacity,
		chunkSize:   DefaultReadChunkSize,
	}

	for _, option := range options {
		option(buffer)
	}

	if buffer.maxCapacity <= 0 {
		return nil, fmt.Errorf(
			"%w: invalid max capacity (%d)",
			ErrAllocation,
			buffer.maxCapacity)
	}

	if buffer.chunkSize <= 0 {
		return nil, fmt.Errorf(
			"%w: invalid read chunk size (%d)",
			ErrAllocation,
			buffer.chunkSize)
	}

	if capacity == 0 {
		capacity = min(DefaultBufferCapacity, buffer.maxCapacity)
	}

	if capacity < 0 || capacity > buffer.maxCapacity {
		return nil, fmt.Errorf(
			"%w: invalid initial capacity (%d, max %d)",
			ErrAllocation,
			capacity,
			buffer.maxCapacity)
	}

	buffer.data = make([]byte, capacity)
	return buffer, nil
}

func (buffer *Buffer) Size() int {
	return buffer.size
}

func (buffer *Buffer) Capacity() int {
	return len(buffer.data)
}

// Bytes returns a read-only view of the filled region.  The view is only
// valid until the next fill or release.
func (buffer *Buffer) Bytes() []byte {
	return buffer.data[:buffer.size:buffer.size]
}

// reserve ensures at least needed bytes are available past size.  On failure
// the buffer is left unchanged.
func (buffer *Buffer) reserve(needed int) error {
	if needed <= len(buffer.data)-buffer.size {
		return nil
	}

	if needed > buffer.maxCapacity-buffer.size {
		return fmt.Errorf(
			"%w: %d bytes exceeds max capacity (%d + %d > %d)",
			ErrAllocation,
			needed,
			buffer.size,
			needed,
			buffer.maxCapacity)
	}

	newCapacity := len(buffer.data)
	if newCapacity == 0 {
		newCapacity = min(DefaultBufferCapacity, buffer.maxCapacity)
	}

	for newCapacity-buffer.size < needed {
		if newCapacity > buffer.maxCapacity/2 {
			newCapacity = buffer.maxCapacity
			break
		}
		newCapacity *= 2
	}

	data := make([]byte, newCapacity)
	copy(data, buffer.data[:buffer.size])
	buffer.data = data
	return nil
}

func (buffer *Buffer) append(chunk []byte) error {
	err := buffer.reserve(len(chunk))
	if err != nil {
		return err
	}

	copy(buffer.data[buffer.size:], chunk)
	buffer.size += len(chunk)
	return nil
}

// FillFromStream appends everything read from reader until io.EOF.
func (buffer *Buffer) FillFromStream(reader io.Reader) error {
	chunk := make([]byte, buffer.chunkSize)
	emptyReads := 0
	for {
		n, err := reader.Read(chunk)
		if n < 0 || n > len(chunk) {
			return fmt.Errorf("%w: invalid read count (%d)", ErrRead, n)
		}

		if n > 0 {
			emptyReads = 0
			appendErr := buffer.append(chunk[:n])
			if appendErr != nil {
				return appendErr
			}
		}

		if err == io.EOF {
			return nil
		} else if err != nil {
			return fmt.Errorf("%w: %w", ErrRead, err)
		}

		if n == 0 {
			emptyReads += 1
			if emptyReads >= maxConsecutiveEmptyReads {
				return fmt.Errorf("%w: %w", ErrRead, io.ErrNoProgress)
			}
		}
	}
}

func (buffer *Buffer) ReadByte() (byte, error) {
	b, err := buffer.PeekByte()
	if err != nil {
		return 0, err
	}

	buffer.pos += 1
	return b, nil
}

func (buffer *Buffer) PeekByte() (byte, error) {
	if buffer.pos >= buffer.size {
		return 0, fmt.Errorf("%w (position %d)", ErrEndOfBuffer, buffer.pos)
	}

	return buffer.data[buffer.pos], nil
}

// ReadBytes fills out from the cursor position.  Nothing is copied when
// fewer than len(out) bytes remain.
func (buffer *Buffer) ReadBytes(out []byte) error {
	// pos <= size, so size - pos never underflows.
	if len(out) > buffer.size-buffer.pos {
		return fmt.Errorf(
			"%w (%d + %d > %d)",
			ErrEndOfBuffer,
			buffer.pos,
			len(out),
			buffer.size)
	}

	copy(out, buffer.data[buffer.pos:buffer.pos+len(out)])
	buffer.pos += len(out)
	return nil
}

func (buffer *Buffer) Reset() {
	buffer.pos = 0
}

// Seek moves the cursor to offset.  Offsets past the filled region are
// ignored without error; use Tell to confirm the new position.
func (buffer *Buffer) Seek(offset int) {
	if 0 <= offset && offset <= buffer.size {
		buffer.pos = offset
	}
}

func (buffer *Buffer) Tell() int {
	return buffer.pos
}

func (buffer *Buffer) Remaining() int {
	if buffer.pos >= buffer.size {
		return 0
	}
	return buffer.size - buffer.pos
}

// ValidateSignature checks the buffer starts with the elf magic number.
func (buffer *Buffer) ValidateSignature() error {
	if buffer.size < len(IdentifierMagic) {
		return fmt.Errorf(
			"%w: too few bytes (%d)",
			ErrNotElfFormat,
			buffer.size)
	}

	signature := buffer.data[:len(IdentifierMagic)]
	if !bytes.Equal(signature, IdentifierMagic) {
		return fmt.Errorf("%w: signature % x", ErrNotElfFormat, signature)
	}

	return nil
}

func (buffer *Buffer) IsElf() bool {
	return buffer.ValidateSignature() == nil
}

// Release drops the backing storage.  Calling Release more than once is
// harmless.  A released buffer behaves as an empty buffer.
func (buffer *Buffer) Release() {
	buffer.data = nil
	buffer.size = 0
	buffer.pos = 0
}
