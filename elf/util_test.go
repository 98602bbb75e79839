package elf

import (
	"encoding/binary"
)

func testByteOrder(encoding DataEncoding) binary.ByteOrder {
	if encoding == DataEncodingTwosComplementBigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

// The handcrafted x86-64 executable header: everything zero except the
// identifier, e_type and e_machine.
func newTestHeader() ElfHeader {
	return ElfHeader{
		Identifier: Identifier{
			Magic:             [4]byte{0x7f, 'E', 'L', 'F'},
			Class:             Class64,
			DataEncoding:      DataEncodingTwosComplementLittleEndian,
			IdentifierVersion: IdentifierVersion,
		},
		FileType:            FileTypeExecutable,
		MachineArchitecture: MachineArchitectureX86_64,
	}
}

func encodeTestHeader(header ElfHeader) []byte {
	order := testByteOrder(header.DataEncoding)

	content := make([]byte, Elf64HeaderSize)
	id := header.Identifier.Bytes()
	copy(content, id[:])

	order.PutUint16(content[16:], uint16(header.FileType))
	order.PutUint16(content[18:], uint16(header.MachineArchitecture))
	order.PutUint32(content[20:], header.FormatVersion)
	order.PutUint64(content[24:], header.EntryPointAddress)
	order.PutUint64(content[32:], header.ProgramHeaderOffset)
	order.PutUint64(content[40:], header.SectionHeaderOffset)
	order.PutUint32(content[48:], header.ArchitectureFlags)
	order.PutUint16(content[52:], header.ElfHeaderSize)
	order.PutUint16(content[54:], header.ProgramHeaderEntrySize)
	order.PutUint16(content[56:], header.NumProgramHeaderEntries)
	order.PutUint16(content[58:], header.SectionHeaderEntrySize)
	order.PutUint16(content[60:], header.NumSectionHeaderEntries)
	order.PutUint16(content[62:], uint16(header.SectionStringTableIndex))

	return content
}

func encodeTestProgramHeader(
	order binary.ByteOrder,
	entry ProgramHeaderEntry,
) []byte {
	content := make([]byte, Elf64ProgramHeaderEntrySize)
	order.PutUint32(content[0:], uint32(entry.ProgramType))
	order.PutUint32(content[4:], uint32(entry.ProgramFlags))
	order.PutUint64(content[8:], entry.ContentOffset)
	order.PutUint64(content[16:], entry.VirtualAddress)
	order.PutUint64(content[24:], entry.PhysicalAddress)
	order.PutUint64(content[32:], entry.FileImageSize)
	order.PutUint64(content[40:], entry.MemoryImageSize)
	order.PutUint64(content[48:], entry.Alignment)
	return content
}

// newTestFile lays out a header immediately followed by its program header
// table, then pads the content with trailing bytes.
func newTestFile(
	header ElfHeader,
	entries []ProgramHeaderEntry,
	trailing int,
) (
	ElfHeader,
	[]byte,
) {
	header.ProgramHeaderOffset = Elf64HeaderSize
	header.ProgramHeaderEntrySize = Elf64ProgramHeaderEntrySize
	header.NumProgramHeaderEntries = uint16(len(entries))
	header.ElfHeaderSize = Elf64HeaderSize
	header.FormatVersion = FormatVersion

	content := encodeTestHeader(header)
	for _, entry := range entries {
		content = append(
			content,
			encodeTestProgramHeader(testByteOrder(header.DataEncoding), entry)...)
	}

	content = append(content, make([]byte, trailing)...)
	return header, content
}
