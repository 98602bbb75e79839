// Based on linux's man page, elf.h, golang's debug/elf package,
// and the elf 1.2 spec.
package elf

import (
	"fmt"
)

var (
	// EI_MAG0 - EI_MAG3
	IdentifierMagic = []byte{
		0x7f, // ELFMAG0
		'E',  // ELFMAG1
		'L',  // ELFMAG2
		'F',  // ELFMAG3
	}
)

const (
	IdentifierVersion = 1 // EI_CURRENT
	FormatVersion     = 1 // EV_CURRENT

	ElfIdentifierSize           = 16
	Elf64HeaderSize             = 64
	Elf64ProgramHeaderEntrySize = 56

	// Offsets into e_ident.
	identifierClassOffset    = 4 // EI_CLASS
	identifierDataOffset     = 5 // EI_DATA
	identifierVersionOffset  = 6 // EI_VERSION
	identifierOSABIOffset    = 7 // EI_OSABI
	identifierABIVersionOffs = 8 // EI_ABIVERSION
	identifierPaddingOffset  = 9 // EI_PAD
)

// EI_CLASS
type Class byte

const (
	ClassNone = Class(0) // ELFCLASSNONE
	Class32   = Class(1) // ELFCLASS32
	Class64   = Class(2) // ELFCLASS64
)

func (class Class) String() string {
	switch class {
	case ClassNone:
		return "ClassNone"
	case Class32:
		return "Class32"
	case Class64:
		return "Class64"
	default:
		return fmt.Sprintf("ClassUnknown(%d)", class)
	}
}

// EI_DATA
type DataEncoding byte

const (
	DataEncodingNone                       = DataEncoding(0) // ELFDATANONE
	DataEncodingTwosComplementLittleEndian = DataEncoding(1) // ELFDATA2LSB
	DataEncodingTwosComplementBigEndian    = DataEncoding(2) // ELFDATA2MSB
)

func (encoding DataEncoding) String() string {
	switch encoding {
	case DataEncodingNone:
		return "DataEncodingNone"
	case DataEncodingTwosComplementLittleEndian:
		return "TwosComplementLittleEndian"
	case DataEncodingTwosComplementBigEndian:
		return "TwosComplementBigEndian"
	default:
		return fmt.Sprintf("DataEncodingUnknown(%d)", encoding)
	}
}

// ByteOrder returns the order multi-byte fields are encoded in.  Unknown
// encodings map to little endian.
func (encoding DataEncoding) ByteOrder() ByteOrder {
	if encoding == DataEncodingTwosComplementBigEndian {
		return BigEndian
	}
	return LittleEndian
}

func (encoding DataEncoding) isValid() bool {
	return encoding == DataEncodingTwosComplementLittleEndian ||
		encoding == DataEncodingTwosComplementBigEndian
}

// EI_OSABI
// NOTE: golang's debug/elf.OSABI defines a more complete list
type OperatingSystemABI byte

const (
	OperatingSystemABIUnixSystemV = OperatingSystemABI(0) // ELFOSABI_NONE
	OperatingSystemABILinux       = OperatingSystemABI(3) // ELFOSABI_LINUX
)

func (osAbi OperatingSystemABI) String() string {
	switch osAbi {
	case OperatingSystemABIUnixSystemV:
		return "UnixSystemV"
	case OperatingSystemABILinux:
		return "Linux"
	default:
		return fmt.Sprintf("OperatingSystemABIUnknown(%d)", osAbi)
	}
}

// e_type
type FileType uint16

const (
	FileTypeNone         = FileType(0) // ET_NONE
	FileTypeRelocatable  = FileType(1) // ET_REL
	FileTypeExecutable   = FileType(2) // ET_EXEC
	FileTypeSharedObject = FileType(3) // ET_DYN
	FileTypeCore         = FileType(4) // ET_CORE
)

func (ft FileType) String() string {
	switch ft {
	case FileTypeNone:
		return "FileTypeNone"
	case FileTypeRelocatable:
		return "Relocatable"
	case FileTypeExecutable:
		return "Executable"
	case FileTypeSharedObject:
		return "SharedObject"
	case FileTypeCore:
		return "Core"
	default:
		return fmt.Sprintf("FileTypeUnknown(%d)", ft)
	}
}

func (ft FileType) isRecognized() bool {
	switch ft {
	case FileTypeRelocatable,
		FileTypeExecutable,
		FileTypeSharedObject,
		FileTypeCore:
		return true
	}
	return false
}

// e_machine
// NOTE: golang's debug/elf.Machine defines a more complete list of machine
// types.
type MachineArchitecture uint16

const (
	MachineArchitectureNone    = MachineArchitecture(0)   // EM_NONE
	MachineArchitecture386     = MachineArchitecture(3)   // EM_386
	MachineArchitecturePPC     = MachineArchitecture(20)  // EM_PPC
	MachineArchitecturePPC64   = MachineArchitecture(21)  // EM_PPC64
	MachineArchitectureS390    = MachineArchitecture(22)  // EM_S390
	MachineArchitectureARM     = MachineArchitecture(40)  // EM_ARM
	MachineArchitectureX86_64  = MachineArchitecture(62)  // EM_X86_64
	MachineArchitectureAArch64 = MachineArchitecture(183) // EM_AARCH64
)

func (arch MachineArchitecture) String() string {
	switch arch {
	case MachineArchitectureNone:
		return "MachineArchitectureNone"
	case MachineArchitecture386:
		return "i386"
	case MachineArchitecturePPC:
		return "ppc"
	case MachineArchitecturePPC64:
		return "ppc64"
	case MachineArchitectureS390:
		return "s390"
	case MachineArchitectureARM:
		return "arm"
	case MachineArchitectureX86_64:
		return "x86-64"
	case MachineArchitectureAArch64:
		return "aarch64"
	default:
		return fmt.Sprintf("MachineArchitectureUnknown(%d)", arch)
	}
}

type ProgramType uint32

// see debug/elf for a more complete list
const (
	ProgramNull            = ProgramType(0)          // PT_NULL
	ProgramLoadable        = ProgramType(1)          // PT_LOAD
	ProgramDynamicLinking  = ProgramType(2)          // PT_DYNAMIC
	ProgramInterpreterPath = ProgramType(3)          // PT_INTERP
	ProgramNote            = ProgramType(4)          // PT_NOTE
	ProgramSharedLibrary   = ProgramType(5)          // PT_SHLIB
	ProgramHeaderInfo      = ProgramType(6)          // PT_PHDR
	ProgramThreadLocal     = ProgramType(7)          // PT_TLS
	ProgramOSLow           = ProgramType(0x60000000) // PT_LOOS
	ProgramGNUEHFrame      = ProgramType(0x6474e550) // PT_GNU_EH_FRAME
	ProgramGNUStack        = ProgramType(0x6474e551) // PT_GNU_STACK
	ProgramGNURelro        = ProgramType(0x6474e552) // PT_GNU_RELRO
	ProgramOSHigh          = ProgramType(0x6fffffff) // PT_HIOS
	ProgramProcessorLow    = ProgramType(0x70000000) // PT_LOPROC
	ProgramProcessorHigh   = ProgramType(0x7fffffff) // PT_HIPROC
)

func (segType ProgramType) String() string {
	switch segType {
	case ProgramNull:
		return "ProgramNull"
	case ProgramLoadable:
		return "Loadable"
	case ProgramDynamicLinking:
		return "DynamicLinking"
	case ProgramInterpreterPath:
		return "InterpreterPath"
	case ProgramNote:
		return "Note"
	case ProgramSharedLibrary:
		return "SharedLibrary"
	case ProgramHeaderInfo:
		return "HeaderInfo"
	case ProgramThreadLocal:
		return "ThreadLocal"
	case ProgramGNUEHFrame:
		return "GNUEHFrame"
	case ProgramGNUStack:
		return "GNUStack"
	case ProgramGNURelro:
		return "GNURelro"
	}

	switch {
	case ProgramOSLow <= segType && segType <= ProgramOSHigh:
		return fmt.Sprintf("ProgramOSSpecific(%#x)", uint32(segType))
	case ProgramProcessorLow <= segType && segType <= ProgramProcessorHigh:
		return fmt.Sprintf("ProgramProcessorSpecific(%#x)", uint32(segType))
	default:
		return fmt.Sprintf("ProgramUnknown(%d)", segType)
	}
}

type ProgramFlags uint32

const (
	ProgramFlagExecutableBit = ProgramFlags(0x1)        // PF_X
	ProgramFlagWritableBit   = ProgramFlags(0x2)        // PF_W
	ProgramFlagReadableBit   = ProgramFlags(0x4)        // PF_R
	ProgramFlagOSMask        = ProgramFlags(0x0ff00000) // PF_MASKOS
	ProgramFlagProcessorMask = ProgramFlags(0xf0000000) // PF_MASKPROC
)

func (bits ProgramFlags) String() string {
	if bits > 7 {
		return fmt.Sprintf("%#x", uint32(bits))
	}

	rwx := []byte{'-', '-', '-'}
	if bits&ProgramFlagReadableBit != 0 {
		rwx[0] = 'r'
	}

	if bits&ProgramFlagWritableBit != 0 {
		rwx[1] = 'w'
	}

	if bits&ProgramFlagExecutableBit != 0 {
		rwx[2] = 'x'
	}

	return string(rwx)
}

type SectionIndex uint16

const (
	SectionIndexUndefined = SectionIndex(0) // SHN_UNDEF
)

// Header structs matching c's elf64 header definitions.

// e_ident
type Identifier struct {
	Magic              [4]byte // EI_MAG0 ... EI_MAG3
	Class                      // EI_CLASS
	DataEncoding               // EI_DATA
	IdentifierVersion  byte    // EI_VERSION
	OperatingSystemABI         // EI_OSABI
	ABIVersion         byte    // EI_ABIVERSION
	Padding            [7]byte // EI_PAD
}

// Bytes returns the identifier in its on-disk layout.
func (id Identifier) Bytes() [ElfIdentifierSize]byte {
	var raw [ElfIdentifierSize]byte
	copy(raw[:4], id.Magic[:])
	raw[identifierClassOffset] = byte(id.Class)
	raw[identifierDataOffset] = byte(id.DataEncoding)
	raw[identifierVersionOffset] = id.IdentifierVersion
	raw[identifierOSABIOffset] = byte(id.OperatingSystemABI)
	raw[identifierABIVersionOffs] = id.ABIVersion
	copy(raw[identifierPaddingOffset:], id.Padding[:])
	return raw
}

// Elf64_Ehdr
type ElfHeader struct {
	Identifier                           // e_ident[EI_NIDENT]
	FileType                             // e_type
	MachineArchitecture                  // e_machine
	FormatVersion           uint32       // e_version
	EntryPointAddress       uint64       // e_entry
	ProgramHeaderOffset     uint64       // e_phoff
	SectionHeaderOffset     uint64       // e_shoff
	ArchitectureFlags       uint32       // e_flags
	ElfHeaderSize           uint16       // e_ehsize
	ProgramHeaderEntrySize  uint16       // e_phentsize
	NumProgramHeaderEntries uint16       // e_phnum
	SectionHeaderEntrySize  uint16       // e_shentsize
	NumSectionHeaderEntries uint16       // e_shnum
	SectionStringTableIndex SectionIndex // e_shstrndx
}

// Elf64_Phdr
type ProgramHeaderEntry struct {
	ProgramType            // p_type
	ProgramFlags           // p_flags
	ContentOffset   uint64 // p_offset
	VirtualAddress  uint64 // p_vaddr
	PhysicalAddress uint64 // p_paddr
	FileImageSize   uint64 // p_filesz
	MemoryImageSize uint64 // p_memsz
	Alignment       uint64 // p_align
}

func (entry ProgramHeaderEntry) IsLoadable() bool {
	return entry.ProgramType == ProgramLoadable
}

func (entry ProgramHeaderEntry) IsDynamic() bool {
	return entry.ProgramType == ProgramDynamicLinking
}

func (entry ProgramHeaderEntry) IsReadable() bool {
	return entry.ProgramFlags&ProgramFlagReadableBit != 0
}

func (entry ProgramHeaderEntry) IsWritable() bool {
	return entry.ProgramFlags&ProgramFlagWritableBit != 0
}

func (entry ProgramHeaderEntry) IsExecutable() bool {
	return entry.ProgramFlags&ProgramFlagExecutableBit != 0
}

// ContainsVirtualAddress reports whether addr falls within the segment's
// memory image.
func (entry ProgramHeaderEntry) ContainsVirtualAddress(addr uint64) bool {
	return entry.VirtualAddress <= addr &&
		addr-entry.VirtualAddress < entry.MemoryImageSize
}
