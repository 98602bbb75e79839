package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/pattyshack/elfhdr/config"
	"github.com/pattyshack/elfhdr/disasm"
	"github.com/pattyshack/elfhdr/elf"
	"github.com/pattyshack/elfhdr/report"
)

func usage() {
	fmt.Fprintln(
		os.Stderr,
		"USAGE: print-elf [flags] <file | ->\n       print-elf [flags] -fd <n>")
	flag.PrintDefaults()
}

func fill(
	logger log.Logger,
	buffer *elf.Buffer,
	fd int,
	args []string,
) (
	string,
	error,
) {
	if fd >= 0 {
		if len(args) != 0 {
			return "", fmt.Errorf("unexpected arguments with -fd: %v", args)
		}

		source := fmt.Sprintf("fd:%d", fd)
		level.Debug(logger).Log("msg", "reading descriptor", "fd", fd)
		return source, buffer.FillFromDescriptor(fd)
	}

	if len(args) != 1 {
		return "", fmt.Errorf("expected exactly one input, got %d", len(args))
	}

	if args[0] == "-" {
		level.Debug(logger).Log("msg", "reading stdin")
		return "stdin", buffer.FillFromStream(os.Stdin)
	}

	level.Debug(logger).Log("msg", "reading file", "path", args[0])
	return args[0], buffer.FillFromPath(args[0])
}

func main() {
	configPath := ""
	flag.StringVar(&configPath, "config", "", "yaml config file")

	fd := -1
	flag.IntVar(&fd, "fd", -1, "read from an already open file descriptor")

	format := ""
	flag.StringVar(&format, "format", "", "output format (text or yaml)")

	logLevel := ""
	flag.StringVar(&logLevel, "log.level", "", "debug, info, warn, error or none")

	accelerated := false
	flag.BoolVar(
		&accelerated,
		"accelerated",
		false,
		"decode with the native read primitives")

	followEncoding := false
	flag.BoolVar(
		&followEncoding,
		"follow-encoding",
		false,
		"decode program headers with the file header's data encoding")

	numInstructions := 0
	flag.IntVar(
		&numInstructions,
		"disassemble",
		0,
		"number of entry point instructions to disassemble")

	flag.Usage = usage
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	// Explicitly set flags override the config file.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "format":
			cfg.Output.Format = format
		case "log.level":
			cfg.Log.Level = logLevel
		case "accelerated":
			cfg.Decode.Accelerated = accelerated
		case "follow-encoding":
			cfg.Decode.ProgramHeaderEncoding = config.ProgramHeaderEncodingLittle
			if followEncoding {
				cfg.Decode.ProgramHeaderEncoding = config.ProgramHeaderEncodingHeader
			}
		case "disassemble":
			cfg.Output.Disassemble = numInstructions
		}
	})

	err = cfg.Validate()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	os.Exit(run(cfg, fd, flag.Args(), os.Stdout, os.Stderr))
}

// run dumps the input named by fd or args to stdout and returns the process
// exit code.
func run(
	cfg config.Config,
	fd int,
	args []string,
	stdout io.Writer,
	stderr io.Writer,
) int {
	logger := cfg.NewLogger(stderr)

	buffer, err := cfg.NewBuffer()
	if err != nil {
		level.Error(logger).Log("msg", "failed to allocate buffer", "err", err)
		return 1
	}
	defer buffer.Release()

	source, err := fill(logger, buffer, fd, args)
	if err != nil {
		level.Error(logger).Log("msg", "failed to read input", "err", err)
		return 1
	}

	level.Debug(logger).Log(
		"msg", "read input",
		"source", source,
		"size", buffer.Size(),
		"capacity", buffer.Capacity())

	var file *elf.File
	err = buffer.ValidateSignature()
	if err == nil {
		file, err = cfg.NewDecoder().Parse(buffer)
	}

	summary := report.New(source, buffer.Bytes(), file, err)
	if err != nil {
		level.Warn(logger).Log(
			"msg", "failed to decode elf file",
			"source", source,
			"kind", summary.Failure.Kind,
			"err", err)
	} else if cfg.Output.Disassemble > 0 {
		instructions, disasmErr := disasm.DisassembleEntryPoint(
			file,
			cfg.Output.Disassemble)
		if disasmErr != nil {
			level.Info(logger).Log(
				"msg", "skipping entry point disassembly",
				"err", disasmErr)
		} else {
			summary.AddInstructions(instructions)
		}
	}

	writeErr := summary.Write(stdout, cfg.Output.Format)
	if writeErr != nil {
		level.Error(logger).Log("msg", "failed to write report", "err", writeErr)
		return 1
	}

	if err != nil {
		return 1
	}

	return 0
}
