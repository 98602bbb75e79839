package elf

import (
	"fmt"
)

// Elf64_Phdr field offsets.
const (
	programTypeOffset            = 0
	programFlagsOffset           = 4
	programContentOffsetOffset   = 8
	programVirtualAddressOffset  = 16
	programPhysicalAddressOffset = 24
	programFileImageSizeOffset   = 32
	programMemoryImageSizeOffset = 40
	programAlignmentOffset       = 48
)

func (entry ProgramHeaderEntry) validate() error {
	if entry.FileImageSize > entry.MemoryImageSize {
		return fmt.Errorf(
			"%w: file image larger than memory image (%d > %d)",
			ErrSize,
			entry.FileImageSize,
			entry.MemoryImageSize)
	}

	if entry.ProgramType > ProgramProcessorHigh {
		return fmt.Errorf(
			"%w: program type %#x",
			ErrType,
			uint32(entry.ProgramType))
	}

	return nil
}

func (decoder *Decoder) programHeaderOrder(header ElfHeader) ByteOrder {
	if decoder.followEncoding {
		return header.DataEncoding.ByteOrder()
	}

	// NOTE: entries are little endian regardless of e_ident[EI_DATA] unless
	// WithProgramHeaderEncoding is set.
	return LittleEndian
}

// DecodeProgramHeaders decodes the program header table described by header.
// The whole table must lie within content.  Entries are returned in table
// order.  Any invalid entry fails the entire decode.
func (decoder *Decoder) DecodeProgramHeaders(
	content []byte,
	header ElfHeader,
) (
	[]ProgramHeaderEntry,
	error,
) {
	size := uint64(len(content))
	tableOffset := header.ProgramHeaderOffset
	entrySize := uint64(header.ProgramHeaderEntrySize)
	numEntries := uint64(header.NumProgramHeaderEntries)

	if tableOffset > size {
		return nil, fmt.Errorf(
			"%w: program header offset (%d > %d)",
			ErrOffset,
			tableOffset,
			size)
	}

	if numEntries == 0 {
		return []ProgramHeaderEntry{}, nil
	}

	// Dividing instead of multiplying keeps numEntries * entrySize from
	// overflowing.
	if entrySize == 0 || numEntries > size/entrySize {
		return nil, fmt.Errorf(
			"%w: program header table too large (%d entries of %d bytes, "+
				"buffer size %d)",
			ErrOffset,
			numEntries,
			entrySize,
			size)
	}

	tableEnd := tableOffset + numEntries*entrySize
	if tableEnd > size {
		return nil, fmt.Errorf(
			"%w: program header table end (%d > %d)",
			ErrOffset,
			tableEnd,
			size)
	}

	if entrySize != Elf64ProgramHeaderEntrySize {
		return nil, fmt.Errorf(
			"%w: unexpected elf64 program header entry size (%d)",
			ErrSize,
			entrySize)
	}

	order := decoder.programHeaderOrder(header)

	entries := make([]ProgramHeaderEntry, 0, numEntries)
	for idx := uint64(0); idx < numEntries; idx++ {
		entryOffset := tableOffset + idx*entrySize
		if entryOffset+Elf64ProgramHeaderEntrySize > size {
			return nil, fmt.Errorf(
				"%w: program header %d (%d + %d > %d)",
				ErrOffset,
				idx,
				entryOffset,
				Elf64ProgramHeaderEntrySize,
				size)
		}

		reader := fieldReader{
			Primitives: decoder.primitives,
			ByteOrder:  order,
			record: content[entryOffset : entryOffset+
				Elf64ProgramHeaderEntrySize],
		}

		entry := ProgramHeaderEntry{
			ProgramType:     ProgramType(reader.u32(programTypeOffset)),
			ProgramFlags:    ProgramFlags(reader.u32(programFlagsOffset)),
			ContentOffset:   reader.u64(programContentOffsetOffset),
			VirtualAddress:  reader.u64(programVirtualAddressOffset),
			PhysicalAddress: reader.u64(programPhysicalAddressOffset),
			FileImageSize:   reader.u64(programFileImageSizeOffset),
			MemoryImageSize: reader.u64(programMemoryImageSizeOffset),
			Alignment:       reader.u64(programAlignmentOffset),
		}

		err := entry.validate()
		if err != nil {
			return nil, fmt.Errorf("invalid program header %d: %w", idx, err)
		}

		entries = append(entries, entry)
	}

	return entries, nil
}
