package disasm

import (
	"fmt"

	"golang.org/x/arch/x86/x86asm"

	"github.com/pattyshack/elfhdr/elf"
)

const (
	maxX64InstructionLength = 15
)

var (
	ErrUnsupportedArchitecture = fmt.Errorf("unsupported architecture")
)

type DisassembledInstruction struct {
	Address uint64
	x86asm.Inst
}

func (inst DisassembledInstruction) String() string {
	return fmt.Sprintf(
		"0x%016x: %s",
		inst.Address,
		x86asm.GNUSyntax(inst.Inst, inst.Address, nil))
}

// Image maps virtual addresses to file bytes.  *elf.File implements Image.
type Image interface {
	// ContentAt returns up to size bytes of the file image starting at addr.
	ContentAt(addr uint64, size int) ([]byte, error)
}

type Disassembler struct {
	image Image
}

func NewDisassembler(image Image) *Disassembler {
	return &Disassembler{
		image: image,
	}
}

// Disassemble decodes up to numInstructions x86-64 instructions starting at
// startAddress.  Decoding stops early at the end of the segment's file image
// or at the first undecodable instruction.
func (disassembler *Disassembler) Disassemble(
	startAddress uint64,
	numInstructions int,
) (
	[]DisassembledInstruction,
	error,
) {
	if numInstructions < 0 {
		return nil, fmt.Errorf(
			"invalid number of instructions to disassemble: %d",
			numInstructions)
	} else if numInstructions == 0 {
		return nil, nil
	}

	data, err := disassembler.image.ContentAt(
		startAddress,
		numInstructions*maxX64InstructionLength)
	if err != nil {
		return nil, err
	}

	return Decode(startAddress, data, numInstructions), nil
}

// Decode decodes up to numInstructions instructions from data, which is
// located at startAddress.
func Decode(
	startAddress uint64,
	data []byte,
	numInstructions int,
) []DisassembledInstruction {
	address := startAddress
	result := make([]DisassembledInstruction, 0, numInstructions)
	for len(data) > 0 && len(result) < numInstructions {
		inst, err := x86asm.Decode(data, 64)
		// Truncated instructions decode as prefix-only entries without an
		// opcode.
		if err != nil || inst.Op == 0 {
			break
		}

		result = append(
			result,
			DisassembledInstruction{
				Address: address,
				Inst:    inst,
			})

		data = data[inst.Len:]
		address += uint64(inst.Len)
	}

	return result
}

// DisassembleEntryPoint disassembles the instructions at the file's entry
// point.
func DisassembleEntryPoint(
	file *elf.File,
	numInstructions int,
) (
	[]DisassembledInstruction,
	error,
) {
	if file.MachineArchitecture != elf.MachineArchitectureX86_64 {
		return nil, fmt.Errorf(
			"%w: %s",
			ErrUnsupportedArchitecture,
			file.MachineArchitecture)
	}

	return NewDisassembler(file).Disassemble(
		file.EntryPointAddress,
		numInstructions)
}
