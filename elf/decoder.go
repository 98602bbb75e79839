package elf

var (
	defaultDecoder = NewDecoder(PortablePrimitives{})
)

type DecoderOption func(*Decoder)

// WithProgramHeaderEncoding decodes program header entries using the file
// header's data encoding.  By default entries are always decoded as little
// endian, which is wrong for big endian files.
func WithProgramHeaderEncoding() DecoderOption {
	return func(decoder *Decoder) {
		decoder.followEncoding = true
	}
}

// Decoder decodes elf64 headers using the injected read primitives.  The
// zero value is not usable; use NewDecoder.
type Decoder struct {
	primitives Primitives

	followEncoding bool
}

func NewDecoder(primitives Primitives, options ...DecoderOption) *Decoder {
	if primitives == nil {
		primitives = PortablePrimitives{}
	}

	decoder := &Decoder{
		primitives: primitives,
	}

	for _, option := range options {
		option(decoder)
	}

	return decoder
}

// DecodeHeader decodes the elf header using the portable primitives.
func DecodeHeader(content []byte) (ElfHeader, error) {
	return defaultDecoder.DecodeHeader(content)
}

// DecodeProgramHeaders decodes the program header table using the portable
// primitives.
func DecodeProgramHeaders(
	content []byte,
	header ElfHeader,
) (
	[]ProgramHeaderEntry,
	error,
) {
	return defaultDecoder.DecodeProgramHeaders(content, header)
}

// fieldReader reads fixed offset fields out of a single record.
type fieldReader struct {
	Primitives
	ByteOrder

	record []byte
}

func (reader fieldReader) u16(offset int) uint16 {
	return reader.Uint16(reader.ByteOrder, reader.record, offset)
}

func (reader fieldReader) u32(offset int) uint32 {
	return reader.Uint32(reader.ByteOrder, reader.record, offset)
}

func (reader fieldReader) u64(offset int) uint64 {
	return reader.Uint64(reader.ByteOrder, reader.record, offset)
}
