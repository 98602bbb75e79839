package elf

import (
	"bytes"
	"fmt"
)

// Elf64_Ehdr field offsets.
const (
	headerTypeOffset                    = 16
	headerMachineOffset                 = 18
	headerVersionOffset                 = 20
	headerEntryOffset                   = 24
	headerProgramHeaderOffsetOffset     = 32
	headerSectionHeaderOffsetOffset     = 40
	headerFlagsOffset                   = 48
	headerSizeOffset                    = 52
	headerProgramHeaderEntrySizeOffset  = 54
	headerNumProgramHeaderEntriesOffset = 56
	headerSectionHeaderEntrySizeOffset  = 58
	headerNumSectionHeaderEntriesOffset = 60
	headerSectionStringTableIndexOffset = 62
)

// IdentifierClass returns the raw EI_CLASS byte, or false if content is too
// short.
func IdentifierClass(content []byte) (Class, bool) {
	if len(content) <= identifierClassOffset {
		return 0, false
	}
	return Class(content[identifierClassOffset]), true
}

// IdentifierEncoding returns the raw EI_DATA byte, or false if content is too
// short.
func IdentifierEncoding(content []byte) (DataEncoding, bool) {
	if len(content) <= identifierDataOffset {
		return 0, false
	}
	return DataEncoding(content[identifierDataOffset]), true
}

// IdentifierVersionByte returns the raw EI_VERSION byte, or false if content
// is too short.
func IdentifierVersionByte(content []byte) (byte, bool) {
	if len(content) <= identifierVersionOffset {
		return 0, false
	}
	return content[identifierVersionOffset], true
}

func parseIdentifier(content []byte) Identifier {
	id := Identifier{
		Class:              Class(content[identifierClassOffset]),
		DataEncoding:       DataEncoding(content[identifierDataOffset]),
		IdentifierVersion:  content[identifierVersionOffset],
		OperatingSystemABI: OperatingSystemABI(content[identifierOSABIOffset]),
		ABIVersion:         content[identifierABIVersionOffs],
	}
	copy(id.Magic[:], content[:len(id.Magic)])
	copy(id.Padding[:], content[identifierPaddingOffset:ElfIdentifierSize])
	return id
}

// DecodeHeader validates and decodes the elf64 header at the start of
// content.
//
// Checks happen in this order: size, magic, class, identifier version, file
// type, data encoding.  All fields are decoded before file type and data
// encoding are checked; an unrecognized encoding is decoded as little endian.
func (decoder *Decoder) DecodeHeader(content []byte) (ElfHeader, error) {
	if len(content) < Elf64HeaderSize {
		return ElfHeader{}, fmt.Errorf(
			"%w: elf header requires %d bytes (%d)",
			ErrSize,
			Elf64HeaderSize,
			len(content))
	}

	magic := content[:len(IdentifierMagic)]
	if !bytes.Equal(magic, IdentifierMagic) {
		return ElfHeader{}, fmt.Errorf("%w (% x)", ErrMagic, magic)
	}

	id := parseIdentifier(content)

	if id.Class != Class64 {
		return ElfHeader{}, fmt.Errorf(
			"%w: %s (0x%02x)",
			ErrClass,
			id.Class,
			byte(id.Class))
	}

	if id.IdentifierVersion != IdentifierVersion {
		return ElfHeader{}, fmt.Errorf(
			"%w: %d (0x%02x)",
			ErrVersion,
			id.IdentifierVersion,
			id.IdentifierVersion)
	}

	reader := fieldReader{
		Primitives: decoder.primitives,
		ByteOrder:  id.DataEncoding.ByteOrder(),
		record:     content[:Elf64HeaderSize],
	}

	header := ElfHeader{
		Identifier:          id,
		FileType:            FileType(reader.u16(headerTypeOffset)),
		MachineArchitecture: MachineArchitecture(reader.u16(headerMachineOffset)),
		FormatVersion:       reader.u32(headerVersionOffset),
		EntryPointAddress:   reader.u64(headerEntryOffset),
		ProgramHeaderOffset: reader.u64(headerProgramHeaderOffsetOffset),
		SectionHeaderOffset: reader.u64(headerSectionHeaderOffsetOffset),
		ArchitectureFlags:   reader.u32(headerFlagsOffset),
		ElfHeaderSize:       reader.u16(headerSizeOffset),
		ProgramHeaderEntrySize: reader.u16(
			headerProgramHeaderEntrySizeOffset),
		NumProgramHeaderEntries: reader.u16(
			headerNumProgramHeaderEntriesOffset),
		SectionHeaderEntrySize: reader.u16(
			headerSectionHeaderEntrySizeOffset),
		NumSectionHeaderEntries: reader.u16(
			headerNumSectionHeaderEntriesOffset),
		SectionStringTableIndex: SectionIndex(
			reader.u16(headerSectionStringTableIndexOffset)),
	}

	if !header.FileType.isRecognized() {
		return ElfHeader{}, fmt.Errorf(
			"%w: %s (raw % x)",
			ErrType,
			header.FileType,
			content[headerTypeOffset:headerTypeOffset+2])
	}

	if !id.DataEncoding.isValid() {
		return ElfHeader{}, fmt.Errorf(
			"%w: %s (0x%02x)",
			ErrEncoding,
			id.DataEncoding,
			byte(id.DataEncoding))
	}

	return header, nil
}
