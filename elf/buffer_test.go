package elf

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/pattyshack/gt/testing/expect"
	"github.com/pattyshack/gt/testing/suite"
)

type BufferSuite struct{}

func TestBuffer(t *testing.T) {
	suite.RunTests(t, &BufferSuite{})
}

type failingReader struct {
	content []byte
}

func (reader *failingReader) Read(p []byte) (int, error) {
	if len(reader.content) == 0 {
		return 0, fmt.Errorf("disk on fire")
	}

	n := copy(p, reader.content)
	reader.content = reader.content[n:]
	return n, nil
}

type emptyReader struct{}

func (emptyReader) Read(p []byte) (int, error) {
	return 0, nil
}

func newFilledBuffer(t *testing.T, content []byte) *Buffer {
	buffer, err := NewBuffer(0)
	expect.Nil(t, err)

	err = buffer.FillFromStream(bytes.NewReader(content))
	expect.Nil(t, err)

	return buffer
}

func (BufferSuite) TestNewBuffer(t *testing.T) {
	buffer, err := NewBuffer(0)
	expect.Nil(t, err)
	expect.Equal(t, DefaultBufferCapacity, buffer.Capacity())
	expect.Equal(t, 0, buffer.Size())
	expect.Equal(t, 0, buffer.Tell())
	expect.Equal(t, 0, buffer.Remaining())

	buffer, err = NewBuffer(10)
	expect.Nil(t, err)
	expect.Equal(t, 10, buffer.Capacity())

	buffer, err = NewBuffer(0, WithMaxCapacity(100))
	expect.Nil(t, err)
	expect.Equal(t, 100, buffer.Capacity())
}

func (BufferSuite) TestNewBufferInvalidCapacity(t *testing.T) {
	_, err := NewBuffer(-1)
	expect.Error(t, err, "invalid initial capacity")
	expect.True(t, errors.Is(err, ErrAllocation))

	_, err = NewBuffer(101, WithMaxCapacity(100))
	expect.True(t, errors.Is(err, ErrAllocation))

	_, err = NewBuffer(0, WithMaxCapacity(0))
	expect.Error(t, err, "invalid max capacity")

	_, err = NewBuffer(0, WithReadChunkSize(0))
	expect.Error(t, err, "invalid read chunk size")
}

func (BufferSuite) TestFillFromStreamGrows(t *testing.T) {
	content := make([]byte, 10000)
	for idx := range content {
		content[idx] = byte(idx * 7)
	}

	buffer, err := NewBuffer(16, WithReadChunkSize(100))
	expect.Nil(t, err)

	err = buffer.FillFromStream(bytes.NewReader(content))
	expect.Nil(t, err)
	expect.Equal(t, len(content), buffer.Size())
	expect.Equal(t, 16384, buffer.Capacity())
	expect.Equal(t, content, buffer.Bytes())
}

func (BufferSuite) TestFillAppendsIndependentOfCursor(t *testing.T) {
	buffer := newFilledBuffer(t, []byte("abcd"))

	b, err := buffer.ReadByte()
	expect.Nil(t, err)
	expect.Equal(t, 'a', b)

	err = buffer.FillFromStream(bytes.NewReader([]byte("efg")))
	expect.Nil(t, err)
	expect.Equal(t, 7, buffer.Size())
	expect.Equal(t, 1, buffer.Tell())
	expect.Equal(t, 6, buffer.Remaining())
	expect.Equal(t, []byte("abcdefg"), buffer.Bytes())
}

func (BufferSuite) TestFillExceedsMaxCapacity(t *testing.T) {
	buffer, err := NewBuffer(8, WithMaxCapacity(32), WithReadChunkSize(16))
	expect.Nil(t, err)

	err = buffer.FillFromStream(bytes.NewReader(make([]byte, 20)))
	expect.Nil(t, err)
	expect.Equal(t, 20, buffer.Size())
	expect.Equal(t, 32, buffer.Capacity())

	before := append([]byte{}, buffer.Bytes()...)

	// A 16 byte chunk does not fit in the remaining 12 bytes.
	err = buffer.FillFromStream(bytes.NewReader(bytes.Repeat([]byte{1}, 30)))
	expect.True(t, errors.Is(err, ErrAllocation))
	expect.Error(t, err, "exceeds max capacity")
	expect.Equal(t, 20, buffer.Size())
	expect.Equal(t, 32, buffer.Capacity())
	expect.Equal(t, before, buffer.Bytes())
}

func (BufferSuite) TestFillFromStreamReadError(t *testing.T) {
	buffer, err := NewBuffer(0)
	expect.Nil(t, err)

	err = buffer.FillFromStream(&failingReader{content: []byte("partial")})
	expect.True(t, errors.Is(err, ErrRead))
	expect.Error(t, err, "disk on fire")
	expect.Equal(t, []byte("partial"), buffer.Bytes())
}

func (BufferSuite) TestFillFromStreamNoProgress(t *testing.T) {
	buffer, err := NewBuffer(0)
	expect.Nil(t, err)

	err = buffer.FillFromStream(emptyReader{})
	expect.True(t, errors.Is(err, ErrRead))
	expect.True(t, errors.Is(err, io.ErrNoProgress))
}

func (BufferSuite) TestFillFromPath(t *testing.T) {
	content := bytes.Repeat([]byte("\x7fELF"), 3000)

	path := filepath.Join(t.TempDir(), "input")
	err := os.WriteFile(path, content, 0o600)
	expect.Nil(t, err)

	buffer, err := NewBuffer(0)
	expect.Nil(t, err)

	err = buffer.FillFromPath(path)
	expect.Nil(t, err)
	expect.Equal(t, content, buffer.Bytes())
	expect.Nil(t, buffer.ValidateSignature())
}

func (BufferSuite) TestFillFromMissingPath(t *testing.T) {
	buffer, err := NewBuffer(0)
	expect.Nil(t, err)

	err = buffer.FillFromPath(filepath.Join(t.TempDir(), "does-not-exist"))
	expect.True(t, errors.Is(err, ErrOpen))
	expect.Equal(t, 0, buffer.Size())
}

func (BufferSuite) TestFillFromDescriptor(t *testing.T) {
	path := filepath.Join(t.TempDir(), "input")
	err := os.WriteFile(path, []byte("hello world"), 0o600)
	expect.Nil(t, err)

	file, err := os.Open(path)
	expect.Nil(t, err)
	defer file.Close()

	buffer, err := NewBuffer(0, WithReadChunkSize(3))
	expect.Nil(t, err)

	err = buffer.FillFromDescriptor(int(file.Fd()))
	expect.Nil(t, err)
	expect.Equal(t, []byte("hello world"), buffer.Bytes())
}

func (BufferSuite) TestFillFromPipeDescriptor(t *testing.T) {
	reader, writer, err := os.Pipe()
	expect.Nil(t, err)
	defer reader.Close()

	content := bytes.Repeat([]byte("0123456789abcdef"), 1000)
	go func() {
		writer.Write(content)
		writer.Close()
	}()

	buffer, err := NewBuffer(16)
	expect.Nil(t, err)

	err = buffer.FillFromDescriptor(int(reader.Fd()))
	expect.Nil(t, err)
	expect.Equal(t, content, buffer.Bytes())
}

func (BufferSuite) TestFillFromBadDescriptor(t *testing.T) {
	buffer, err := NewBuffer(0)
	expect.Nil(t, err)

	err = buffer.FillFromDescriptor(-1)
	expect.True(t, errors.Is(err, ErrRead))
}

func (BufferSuite) TestReadAndPeekByte(t *testing.T) {
	buffer := newFilledBuffer(t, []byte{1, 2})

	b, err := buffer.PeekByte()
	expect.Nil(t, err)
	expect.Equal(t, 1, b)
	expect.Equal(t, 0, buffer.Tell())

	b, err = buffer.ReadByte()
	expect.Nil(t, err)
	expect.Equal(t, 1, b)

	b, err = buffer.ReadByte()
	expect.Nil(t, err)
	expect.Equal(t, 2, b)
	expect.Equal(t, 2, buffer.Tell())

	_, err = buffer.ReadByte()
	expect.True(t, errors.Is(err, ErrEndOfBuffer))
	expect.Equal(t, 2, buffer.Tell())

	_, err = buffer.PeekByte()
	expect.True(t, errors.Is(err, ErrEndOfBuffer))
}

func (BufferSuite) TestReadBytes(t *testing.T) {
	buffer := newFilledBuffer(t, []byte("0123456789"))

	out := make([]byte, 4)
	err := buffer.ReadBytes(out)
	expect.Nil(t, err)
	expect.Equal(t, []byte("0123"), out)
	expect.Equal(t, 4, buffer.Tell())

	// Exactly the remaining bytes.
	out = make([]byte, 6)
	err = buffer.ReadBytes(out)
	expect.Nil(t, err)
	expect.Equal(t, []byte("456789"), out)
	expect.Equal(t, 10, buffer.Tell())

	err = buffer.ReadBytes(nil)
	expect.Nil(t, err)
}

func (BufferSuite) TestReadBytesPastEndDoesNotCopy(t *testing.T) {
	buffer := newFilledBuffer(t, []byte("0123456789"))
	buffer.Seek(7)

	out := []byte("xxxx")
	err := buffer.ReadBytes(out)
	expect.True(t, errors.Is(err, ErrEndOfBuffer))
	expect.Error(t, err, "end of buffer")
	expect.Equal(t, []byte("xxxx"), out)
	expect.Equal(t, 7, buffer.Tell())
}

func (BufferSuite) TestSeekAndReset(t *testing.T) {
	buffer := newFilledBuffer(t, []byte("0123456789"))

	buffer.Seek(10)
	expect.Equal(t, 10, buffer.Tell())
	expect.Equal(t, 0, buffer.Remaining())

	buffer.Seek(3)
	expect.Equal(t, 3, buffer.Tell())

	// Out of range seeks are ignored.
	buffer.Seek(11)
	expect.Equal(t, 3, buffer.Tell())
	buffer.Seek(-1)
	expect.Equal(t, 3, buffer.Tell())

	buffer.Reset()
	expect.Equal(t, 0, buffer.Tell())
	expect.Equal(t, 10, buffer.Remaining())
}

func (BufferSuite) TestQueriesAreIdempotent(t *testing.T) {
	buffer := newFilledBuffer(t, []byte("0123456789"))
	buffer.Seek(4)

	for i := 0; i < 3; i++ {
		expect.Equal(t, 4, buffer.Tell())
		expect.Equal(t, 6, buffer.Remaining())
	}

	expect.Equal(t, []byte("0123456789"), buffer.Bytes())
}

func (BufferSuite) TestValidateSignature(t *testing.T) {
	buffer := newFilledBuffer(t, []byte{0x7f, 'E', 'L'})
	err := buffer.ValidateSignature()
	expect.True(t, errors.Is(err, ErrNotElfFormat))
	expect.Error(t, err, "too few bytes")
	expect.False(t, buffer.IsElf())

	buffer = newFilledBuffer(t, []byte{0x7f, 'E', 'L', 'G', 0})
	err = buffer.ValidateSignature()
	expect.True(t, errors.Is(err, ErrNotElfFormat))
	expect.Error(t, err, "7f 45 4c 47")

	buffer = newFilledBuffer(t, []byte{0x7f, 'E', 'L', 'F'})
	expect.Nil(t, buffer.ValidateSignature())
	expect.True(t, buffer.IsElf())
}

func (BufferSuite) TestRelease(t *testing.T) {
	buffer := newFilledBuffer(t, []byte("0123"))
	buffer.Seek(2)

	buffer.Release()
	expect.Equal(t, 0, buffer.Size())
	expect.Equal(t, 0, buffer.Capacity())
	expect.Equal(t, 0, buffer.Tell())
	expect.Equal(t, 0, buffer.Remaining())

	buffer.Release()
	expect.Equal(t, 0, buffer.Size())

	_, err := buffer.ReadByte()
	expect.True(t, errors.Is(err, ErrEndOfBuffer))

	// A released buffer can be refilled.
	err = buffer.FillFromStream(bytes.NewReader([]byte("ab")))
	expect.Nil(t, err)
	expect.Equal(t, []byte("ab"), buffer.Bytes())
}
