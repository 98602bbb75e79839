package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pattyshack/elfhdr/elf"
)

const (
	ProgramHeaderEncodingLittle = "little"
	ProgramHeaderEncodingHeader = "header"

	FormatText = "text"
	FormatYaml = "yaml"

	DefaultDisassembleCount = 8
)

type BufferConfig struct {
	InitialCapacity int `yaml:"initial_capacity"`
	MaxCapacity     int `yaml:"max_capacity"`
	ChunkSize       int `yaml:"chunk_size"`
}

type DecodeConfig struct {
	// Accelerated selects the native (encoding/binary) read primitives.
	Accelerated bool `yaml:"accelerated"`

	ProgramHeaderEncoding string `yaml:"program_header_encoding"`
}

type OutputConfig struct {
	Format string `yaml:"format"`

	// Number of instructions to disassemble at the entry point.  0 disables
	// disassembly.
	Disassemble int `yaml:"disassemble"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type Config struct {
	Buffer BufferConfig `yaml:"buffer"`
	Decode DecodeConfig `yaml:"decode"`
	Output OutputConfig `yaml:"output"`
	Log    LogConfig    `yaml:"log"`
}

func Default() Config {
	return Config{
		Buffer: BufferConfig{
			InitialCapacity: elf.DefaultBufferCapacity,
			MaxCapacity:     elf.DefaultMaxBufferCapacity,
			ChunkSize:       elf.DefaultReadChunkSize,
		},
		Decode: DecodeConfig{
			ProgramHeaderEncoding: ProgramHeaderEncodingLittle,
		},
		Output: OutputConfig{
			Format:      FormatText,
			Disassemble: DefaultDisassembleCount,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Parse decodes a yaml config on top of the defaults.  Unknown keys are
// rejected.
func Parse(reader io.Reader) (Config, error) {
	config := Default()

	decoder := yaml.NewDecoder(reader)
	decoder.KnownFields(true)

	err := decoder.Decode(&config)
	if err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	err = config.Validate()
	if err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return config, nil
}

func ParseBytes(content []byte) (Config, error) {
	return Parse(bytes.NewReader(content))
}

// Load reads the config file at path.  An empty path returns the defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}

	file, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to open config: %w", err)
	}
	defer file.Close()

	return Parse(file)
}

func (config Config) Validate() error {
	if config.Buffer.MaxCapacity <= 0 {
		return fmt.Errorf(
			"buffer.max_capacity must be positive (%d)",
			config.Buffer.MaxCapacity)
	}

	if config.Buffer.InitialCapacity < 0 ||
		config.Buffer.InitialCapacity > config.Buffer.MaxCapacity {

		return fmt.Errorf(
			"buffer.initial_capacity must be in [0, %d] (%d)",
			config.Buffer.MaxCapacity,
			config.Buffer.InitialCapacity)
	}

	if config.Buffer.ChunkSize <= 0 {
		return fmt.Errorf(
			"buffer.chunk_size must be positive (%d)",
			config.Buffer.ChunkSize)
	}

	switch config.Decode.ProgramHeaderEncoding {
	case ProgramHeaderEncodingLittle, ProgramHeaderEncodingHeader:
	default:
		return fmt.Errorf(
			"unknown decode.program_header_encoding (%s)",
			config.Decode.ProgramHeaderEncoding)
	}

	switch config.Output.Format {
	case FormatText, FormatYaml:
	default:
		return fmt.Errorf("unknown output.format (%s)", config.Output.Format)
	}

	if config.Output.Disassemble < 0 {
		return fmt.Errorf(
			"output.disassemble must not be negative (%d)",
			config.Output.Disassemble)
	}

	switch config.Log.Level {
	case "debug", "info", "warn", "error", "none":
	default:
		return fmt.Errorf("unknown log.level (%s)", config.Log.Level)
	}

	return nil
}

func (config Config) BufferOptions() []elf.BufferOption {
	return []elf.BufferOption{
		elf.WithMaxCapacity(config.Buffer.MaxCapacity),
		elf.WithReadChunkSize(config.Buffer.ChunkSize),
	}
}

// NewBuffer allocates an ingest buffer sized by the config.
func (config Config) NewBuffer() (*elf.Buffer, error) {
	return elf.NewBuffer(config.Buffer.InitialCapacity, config.BufferOptions()...)
}

// NewDecoder returns the decoder selected by the config.
func (config Config) NewDecoder() *elf.Decoder {
	var primitives elf.Primitives = elf.PortablePrimitives{}
	if config.Decode.Accelerated {
		primitives = elf.NativePrimitives{}
	}

	options := []elf.DecoderOption{}
	if config.Decode.ProgramHeaderEncoding == ProgramHeaderEncodingHeader {
		options = append(options, elf.WithProgramHeaderEncoding())
	}

	return elf.NewDecoder(primitives, options...)
}
