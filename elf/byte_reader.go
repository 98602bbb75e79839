package elf

import (
	"encoding/binary"
	"fmt"
)

// The caller must ensure data holds at least width/8 bytes at offset.

func Uint16LE(data []byte, offset int) uint16 {
	b := data[offset : offset+2]
	return uint16(b[0]) | uint16(b[1])<<8
}

func Uint16BE(data []byte, offset int) uint16 {
	b := data[offset : offset+2]
	return uint16(b[0])<<8 | uint16(b[1])
}

func Uint32LE(data []byte, offset int) uint32 {
	b := data[offset : offset+4]
	return uint32(b[0]) |
		uint32(b[1])<<8 |
		uint32(b[2])<<16 |
		uint32(b[3])<<24
}

func Uint32BE(data []byte, offset int) uint32 {
	b := data[offset : offset+4]
	return uint32(b[0])<<24 |
		uint32(b[1])<<16 |
		uint32(b[2])<<8 |
		uint32(b[3])
}

func Uint64LE(data []byte, offset int) uint64 {
	b := data[offset : offset+8]
	return uint64(b[0]) |
		uint64(b[1])<<8 |
		uint64(b[2])<<16 |
		uint64(b[3])<<24 |
		uint64(b[4])<<32 |
		uint64(b[5])<<40 |
		uint64(b[6])<<48 |
		uint64(b[7])<<56
}

func Uint64BE(data []byte, offset int) uint64 {
	b := data[offset : offset+8]
	return uint64(b[0])<<56 |
		uint64(b[1])<<48 |
		uint64(b[2])<<40 |
		uint64(b[3])<<32 |
		uint64(b[4])<<24 |
		uint64(b[5])<<16 |
		uint64(b[6])<<8 |
		uint64(b[7])
}

type ByteOrder int

const (
	LittleEndian = ByteOrder(0)
	BigEndian    = ByteOrder(1)
)

func (order ByteOrder) String() string {
	switch order {
	case LittleEndian:
		return "little"
	case BigEndian:
		return "big"
	default:
		return fmt.Sprintf("ByteOrderUnknown(%d)", int(order))
	}
}

// Primitives reads fixed width unsigned integers.  Every implementation must
// return bit-identical results to PortablePrimitives.
type Primitives interface {
	Uint16(order ByteOrder, data []byte, offset int) uint16
	Uint32(order ByteOrder, data []byte, offset int) uint32
	Uint64(order ByteOrder, data []byte, offset int) uint64
}

// PortablePrimitives composes integers byte by byte.
type PortablePrimitives struct{}

func (PortablePrimitives) Uint16(order ByteOrder, data []byte, offset int) uint16 {
	if order == BigEndian {
		return Uint16BE(data, offset)
	}
	return Uint16LE(data, offset)
}

func (PortablePrimitives) Uint32(order ByteOrder, data []byte, offset int) uint32 {
	if order == BigEndian {
		return Uint32BE(data, offset)
	}
	return Uint32LE(data, offset)
}

func (PortablePrimitives) Uint64(order ByteOrder, data []byte, offset int) uint64 {
	if order == BigEndian {
		return Uint64BE(data, offset)
	}
	return Uint64LE(data, offset)
}

// NativePrimitives delegates to encoding/binary, which the compiler lowers
// to single (byte swapped) loads.
type NativePrimitives struct{}

func nativeOrder(order ByteOrder) binary.ByteOrder {
	if order == BigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

func (NativePrimitives) Uint16(order ByteOrder, data []byte, offset int) uint16 {
	return nativeOrder(order).Uint16(data[offset:])
}

func (NativePrimitives) Uint32(order ByteOrder, data []byte, offset int) uint32 {
	return nativeOrder(order).Uint32(data[offset:])
}

func (NativePrimitives) Uint64(order ByteOrder, data []byte, offset int) uint64 {
	return nativeOrder(order).Uint64(data[offset:])
}
