package report

import (
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/pattyshack/elfhdr/config"
	"github.com/pattyshack/elfhdr/disasm"
	"github.com/pattyshack/elfhdr/elf"
)

type Header struct {
	Class                   string `yaml:"class"`
	DataEncoding            string `yaml:"data_encoding"`
	OperatingSystemABI      string `yaml:"os_abi"`
	ABIVersion              byte   `yaml:"abi_version"`
	FileType                string `yaml:"type"`
	MachineArchitecture     string `yaml:"machine"`
	FormatVersion           uint32 `yaml:"version"`
	EntryPointAddress       string `yaml:"entry"`
	ProgramHeaderOffset     uint64 `yaml:"phoff"`
	SectionHeaderOffset     uint64 `yaml:"shoff"`
	ArchitectureFlags       string `yaml:"flags"`
	ElfHeaderSize           uint16 `yaml:"ehsize"`
	ProgramHeaderEntrySize  uint16 `yaml:"phentsize"`
	NumProgramHeaderEntries uint16 `yaml:"phnum"`
	SectionHeaderEntrySize  uint16 `yaml:"shentsize"`
	NumSectionHeaderEntries uint16 `yaml:"shnum"`
	SectionStringTableIndex uint16 `yaml:"shstrndx"`
}

type Segment struct {
	Type            string `yaml:"type"`
	Flags           string `yaml:"flags"`
	Offset          string `yaml:"offset"`
	VirtualAddress  string `yaml:"vaddr"`
	PhysicalAddress string `yaml:"paddr"`
	FileSize        uint64 `yaml:"filesz"`
	MemorySize      uint64 `yaml:"memsz"`
	Alignment       uint64 `yaml:"align"`
}

type Failure struct {
	Kind    string `yaml:"kind"`
	Message string `yaml:"message"`

	// Raw identifier bytes, when the input is long enough to have them.
	Identifier string `yaml:"identifier,omitempty"`
}

// Report is a printable summary of a decoded file, or of why decoding
// failed.
type Report struct {
	Source       string    `yaml:"source"`
	Size         int       `yaml:"size"`
	Header       *Header   `yaml:"header,omitempty"`
	Segments     []Segment `yaml:"segments,omitempty"`
	Instructions []string  `yaml:"entry_point_instructions,omitempty"`
	Failure      *Failure  `yaml:"failure,omitempty"`
}

func hex(value uint64) string {
	return fmt.Sprintf("%#x", value)
}

func NewHeader(header elf.ElfHeader) *Header {
	return &Header{
		Class:                   header.Class.String(),
		DataEncoding:            header.DataEncoding.String(),
		OperatingSystemABI:      header.OperatingSystemABI.String(),
		ABIVersion:              header.ABIVersion,
		FileType:                header.FileType.String(),
		MachineArchitecture:     header.MachineArchitecture.String(),
		FormatVersion:           header.FormatVersion,
		EntryPointAddress:       hex(header.EntryPointAddress),
		ProgramHeaderOffset:     header.ProgramHeaderOffset,
		SectionHeaderOffset:     header.SectionHeaderOffset,
		ArchitectureFlags:       hex(uint64(header.ArchitectureFlags)),
		ElfHeaderSize:           header.ElfHeaderSize,
		ProgramHeaderEntrySize:  header.ProgramHeaderEntrySize,
		NumProgramHeaderEntries: header.NumProgramHeaderEntries,
		SectionHeaderEntrySize:  header.SectionHeaderEntrySize,
		NumSectionHeaderEntries: header.NumSectionHeaderEntries,
		SectionStringTableIndex: uint16(header.SectionStringTableIndex),
	}
}

func NewSegment(entry elf.ProgramHeaderEntry) Segment {
	return Segment{
		Type:            entry.ProgramType.String(),
		Flags:           entry.ProgramFlags.String(),
		Offset:          hex(entry.ContentOffset),
		VirtualAddress:  hex(entry.VirtualAddress),
		PhysicalAddress: hex(entry.PhysicalAddress),
		FileSize:        entry.FileImageSize,
		MemorySize:      entry.MemoryImageSize,
		Alignment:       entry.Alignment,
	}
}

func kindName(err error) string {
	switch elf.Kind(err) {
	case elf.ErrOpen:
		return "open"
	case elf.ErrRead:
		return "read"
	case elf.ErrAllocation:
		return "allocation"
	case elf.ErrEndOfBuffer:
		return "end_of_buffer"
	case elf.ErrNotElfFormat:
		return "not_elf_format"
	case elf.ErrSize:
		return "size"
	case elf.ErrMagic:
		return "magic"
	case elf.ErrClass:
		return "class"
	case elf.ErrEncoding:
		return "encoding"
	case elf.ErrVersion:
		return "version"
	case elf.ErrType:
		return "type"
	case elf.ErrOffset:
		return "offset"
	default:
		return "unknown"
	}
}

// New summarizes the outcome of decoding content.  On failure, file may be
// nil.
func New(source string, content []byte, file *elf.File, err error) *Report {
	report := &Report{
		Source: source,
		Size:   len(content),
	}

	if err != nil {
		report.Failure = &Failure{
			Kind:    kindName(err),
			Message: err.Error(),
		}

		if len(content) >= elf.ElfIdentifierSize {
			report.Failure.Identifier = fmt.Sprintf(
				"% x",
				content[:elf.ElfIdentifierSize])
		}

		return report
	}

	report.Header = NewHeader(file.ElfHeader)
	for _, entry := range file.ProgramHeaders {
		report.Segments = append(report.Segments, NewSegment(entry))
	}

	return report
}

func (report *Report) AddInstructions(
	instructions []disasm.DisassembledInstruction,
) {
	for _, inst := range instructions {
		report.Instructions = append(report.Instructions, inst.String())
	}
}

func (report *Report) WriteYaml(writer io.Writer) error {
	encoder := yaml.NewEncoder(writer)
	encoder.SetIndent(2)

	err := encoder.Encode(report)
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}

	return encoder.Close()
}

func (report *Report) WriteText(writer io.Writer) error {
	builder := &strings.Builder{}

	fmt.Fprintf(builder, "File: %s (%d bytes)\n", report.Source, report.Size)

	if report.Failure != nil {
		fmt.Fprintf(
			builder,
			"Error (%s): %s\n",
			report.Failure.Kind,
			report.Failure.Message)
		if report.Failure.Identifier != "" {
			fmt.Fprintf(builder, "Identifier: %s\n", report.Failure.Identifier)
		}

		_, err := io.WriteString(writer, builder.String())
		return err
	}

	header := report.Header
	fmt.Fprintln(builder, "Header:")
	fmt.Fprintf(builder, "  Class:               %s\n", header.Class)
	fmt.Fprintf(builder, "  Data encoding:       %s\n", header.DataEncoding)
	fmt.Fprintf(
		builder,
		"  OS/ABI:              %s (version %d)\n",
		header.OperatingSystemABI,
		header.ABIVersion)
	fmt.Fprintf(builder, "  Type:                %s\n", header.FileType)
	fmt.Fprintf(builder, "  Machine:             %s\n", header.MachineArchitecture)
	fmt.Fprintf(builder, "  Version:             %d\n", header.FormatVersion)
	fmt.Fprintf(builder, "  Entry point:         %s\n", header.EntryPointAddress)
	fmt.Fprintf(
		builder,
		"  Program headers:     %d entries of %d bytes at offset %d\n",
		header.NumProgramHeaderEntries,
		header.ProgramHeaderEntrySize,
		header.ProgramHeaderOffset)
	fmt.Fprintf(
		builder,
		"  Section headers:     %d entries of %d bytes at offset %d\n",
		header.NumSectionHeaderEntries,
		header.SectionHeaderEntrySize,
		header.SectionHeaderOffset)
	fmt.Fprintf(builder, "  Flags:               %s\n", header.ArchitectureFlags)
	fmt.Fprintf(builder, "  Header size:         %d\n", header.ElfHeaderSize)
	fmt.Fprintf(builder, "  String table index:  %d\n", header.SectionStringTableIndex)

	fmt.Fprintln(builder, "Program headers:", len(report.Segments))
	for idx, segment := range report.Segments {
		fmt.Fprintf(
			builder,
			"  [%d] %s %s offset=%s vaddr=%s paddr=%s filesz=%d memsz=%d align=%d\n",
			idx,
			segment.Type,
			segment.Flags,
			segment.Offset,
			segment.VirtualAddress,
			segment.PhysicalAddress,
			segment.FileSize,
			segment.MemorySize,
			segment.Alignment)
	}

	if len(report.Instructions) > 0 {
		fmt.Fprintln(builder, "Entry point:")
		for _, inst := range report.Instructions {
			fmt.Fprintf(builder, "  %s\n", inst)
		}
	}

	_, err := io.WriteString(writer, builder.String())
	return err
}

// Write renders the report in the named format (text or yaml).
func (report *Report) Write(writer io.Writer, format string) error {
	switch format {
	case config.FormatText:
		return report.WriteText(writer)
	case config.FormatYaml:
		return report.WriteYaml(writer)
	default:
		return fmt.Errorf("unknown report format (%s)", format)
	}
}
