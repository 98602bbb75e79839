package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/go-kit/log/level"

	"github.com/pattyshack/elfhdr/config"
	"github.com/pattyshack/elfhdr/disasm"
	"github.com/pattyshack/elfhdr/elf"
	"github.com/pattyshack/elfhdr/report"
)

func printHeader(s *session, args []string) error {
	header, err := s.decoder.DecodeHeader(s.buffer.Bytes())
	if err != nil {
		return err
	}

	fmt.Printf("%+v\n", *report.NewHeader(header))
	return nil
}

func printSegments(s *session, args []string) error {
	file, err := s.decoder.Parse(s.buffer)
	if err != nil {
		return err
	}

	fmt.Println("Program headers:", len(file.ProgramHeaders))
	for idx, entry := range file.ProgramHeaders {
		fmt.Printf("  [%d] %+v\n", idx, report.NewSegment(entry))
	}

	return nil
}

func printReport(s *session, args []string) error {
	format := s.config.Output.Format
	if len(args) > 0 {
		format = args[0]
	}

	file, err := s.decoder.Parse(s.buffer)
	summary := report.New(s.source, s.buffer.Bytes(), file, err)
	return summary.Write(os.Stdout, format)
}

func disassemble(s *session, args []string) error {
	file, err := s.decoder.Parse(s.buffer)
	if err != nil {
		return err
	}

	if file.MachineArchitecture != elf.MachineArchitectureX86_64 {
		return fmt.Errorf(
			"%w: %s",
			disasm.ErrUnsupportedArchitecture,
			file.MachineArchitecture)
	}

	addr := file.EntryPointAddress
	if len(args) > 0 {
		addr, err = strconv.ParseUint(args[0], 0, 64)
		if err != nil {
			fmt.Println("failed to parse address:", err)
			return nil
		}
	}

	count := s.config.Output.Disassemble
	if count == 0 {
		count = config.DefaultDisassembleCount
	}

	if len(args) > 1 {
		val, err := strconv.ParseInt(args[1], 0, 32)
		if err != nil {
			fmt.Println("failed to parse instruction count:", err)
			return nil
		}
		count = int(val)
	}

	level.Debug(s.logger).Log(
		"msg", "disassembling",
		"address", fmt.Sprintf("%#x", addr),
		"count", count)

	instructions, err := disasm.NewDisassembler(file).Disassemble(addr, count)
	if err != nil {
		return err
	}

	for _, inst := range instructions {
		fmt.Println(inst)
	}

	return nil
}
