package elf

import (
	"fmt"
	"io"
)

// Resources:
// https://refspecs.linuxfoundation.org/

type File struct {
	ElfHeader
	ProgramHeaders []ProgramHeaderEntry

	// Borrowed from the buffer the file was parsed from.
	content []byte
}

// Parse reads all of reader into a fresh buffer and decodes it.
func Parse(reader io.Reader) (*File, error) {
	buffer, err := NewBuffer(0)
	if err != nil {
		return nil, err
	}

	err = buffer.FillFromStream(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read elf file: %w", err)
	}

	return defaultDecoder.Parse(buffer)
}

func ParseBytes(content []byte) (*File, error) {
	return defaultDecoder.parse(content)
}

func ParseBuffer(buffer *Buffer) (*File, error) {
	return defaultDecoder.Parse(buffer)
}

// Parse decodes the elf header and program header table held by buffer.  The
// buffer's cursor is not used or modified.
func (decoder *Decoder) Parse(buffer *Buffer) (*File, error) {
	return decoder.parse(buffer.Bytes())
}

func (decoder *Decoder) parse(content []byte) (*File, error) {
	header, err := decoder.DecodeHeader(content)
	if err != nil {
		return nil, fmt.Errorf("failed to parse header: %w", err)
	}

	programHeaders, err := decoder.DecodeProgramHeaders(content, header)
	if err != nil {
		return nil, fmt.Errorf("failed to parse program headers: %w", err)
	}

	return &File{
		ElfHeader:      header,
		ProgramHeaders: programHeaders,
		content:        content,
	}, nil
}

// SegmentContaining returns the first loadable segment whose memory image
// contains addr.
func (file *File) SegmentContaining(addr uint64) (ProgramHeaderEntry, bool) {
	for _, entry := range file.ProgramHeaders {
		if entry.IsLoadable() && entry.ContainsVirtualAddress(addr) {
			return entry, true
		}
	}

	return ProgramHeaderEntry{}, false
}

// FileOffset maps a virtual address to its file offset.  Addresses in a
// segment's zero-filled tail (beyond p_filesz) have no file offset.
func (file *File) FileOffset(addr uint64) (uint64, bool) {
	entry, ok := file.SegmentContaining(addr)
	if !ok {
		return 0, false
	}

	delta := addr - entry.VirtualAddress
	if delta >= entry.FileImageSize {
		return 0, false
	}

	return entry.ContentOffset + delta, true
}

// SegmentContent returns the file image of entry.
func (file *File) SegmentContent(entry ProgramHeaderEntry) ([]byte, error) {
	start := entry.ContentOffset
	end := start + entry.FileImageSize
	if end < start || end > uint64(len(file.content)) {
		return nil, fmt.Errorf(
			"%w: segment content [%d, %d+%d) (file size %d)",
			ErrOffset,
			start,
			start,
			entry.FileImageSize,
			len(file.content))
	}

	return file.content[start:end], nil
}

// ContentAt returns up to size file bytes starting at virtual address addr,
// truncated at the end of the containing segment's file image.
func (file *File) ContentAt(addr uint64, size int) ([]byte, error) {
	entry, ok := file.SegmentContaining(addr)
	if !ok {
		return nil, fmt.Errorf("%w: address %#x not in a loadable segment", ErrOffset, addr)
	}

	content, err := file.SegmentContent(entry)
	if err != nil {
		return nil, err
	}

	delta := addr - entry.VirtualAddress
	if delta >= uint64(len(content)) {
		return nil, fmt.Errorf(
			"%w: address %#x beyond segment file image",
			ErrOffset,
			addr)
	}

	content = content[delta:]
	if size >= 0 && size < len(content) {
		content = content[:size]
	}

	return content, nil
}
