package main

import (
	"fmt"
	"strconv"
)

func tell(s *session, args []string) error {
	fmt.Println(s.buffer.Tell())
	return nil
}

func remaining(s *session, args []string) error {
	fmt.Println(s.buffer.Remaining())
	return nil
}

func seek(s *session, args []string) error {
	if len(args) == 0 {
		fmt.Println("failed to seek. offset not specified")
		return nil
	}

	offset, err := strconv.ParseInt(args[0], 0, 64)
	if err != nil {
		fmt.Println("failed to parse offset:", err)
		return nil
	}

	before := s.buffer.Tell()
	s.buffer.Seek(int(offset))
	if s.buffer.Tell() == before && int(offset) != before {
		fmt.Printf(
			"WARNING: offset %d out of range [0, %d]. cursor unchanged.\n",
			offset,
			s.buffer.Size())
	}

	return nil
}

func reset(s *session, args []string) error {
	s.buffer.Reset()
	return nil
}

func peek(s *session, args []string) error {
	b, err := s.buffer.PeekByte()
	if err != nil {
		return err
	}

	fmt.Printf("0x%08x: %02x\n", s.buffer.Tell(), b)
	return nil
}

func read(s *session, args []string) error {
	size := 16
	if len(args) > 0 {
		val, err := strconv.ParseInt(args[0], 0, 32)
		if err != nil {
			fmt.Println("failed to parse read size:", err)
			return nil
		}
		size = int(val)

		if size < 1 {
			fmt.Println("invalid read size:", size)
			return nil
		}
	}

	if size > s.buffer.Remaining() {
		fmt.Printf(
			"WARNING: requested %d bytes but only %d bytes remain.\n",
			size,
			s.buffer.Remaining())
		size = s.buffer.Remaining()
	}

	addr := s.buffer.Tell()
	out := make([]byte, size)
	err := s.buffer.ReadBytes(out)
	if err != nil {
		return err
	}

	dump(uint64(addr), out)
	return nil
}

func dump(addr uint64, out []byte) {
	for len(out) > 0 {
		line := fmt.Sprintf("0x%08x:", addr)

		size := min(16, len(out))
		for _, b := range out[:size] {
			line += fmt.Sprintf(" %02x", b)
		}
		fmt.Println(line)

		out = out[size:]
		addr += uint64(size)
	}
}
