package elf

import (
	"math/rand"
	"testing"

	"github.com/pattyshack/gt/testing/expect"
	"github.com/pattyshack/gt/testing/suite"
)

type ByteReaderSuite struct{}

func TestByteReader(t *testing.T) {
	suite.RunTests(t, &ByteReaderSuite{})
}

func (ByteReaderSuite) TestLittleEndian(t *testing.T) {
	data := []byte{0xff, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x88}

	expect.Equal(t, 0x0201, Uint16LE(data, 1))
	expect.Equal(t, 0x04030201, Uint32LE(data, 1))
	expect.Equal(t, 0x8807060504030201, Uint64LE(data, 1))
}

func (ByteReaderSuite) TestBigEndian(t *testing.T) {
	data := []byte{0xff, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x88}

	expect.Equal(t, 0x0102, Uint16BE(data, 1))
	expect.Equal(t, 0x01020304, Uint32BE(data, 1))
	expect.Equal(t, 0x0102030405060788, Uint64BE(data, 1))
}

func (ByteReaderSuite) TestNoSignExtension(t *testing.T) {
	data := []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}

	expect.Equal(t, 0xffff, Uint16LE(data, 0))
	expect.Equal(t, 0xffffffff, Uint32BE(data, 0))
	expect.Equal(t, 0xffffffffffffffff, Uint64LE(data, 0))

	data = []byte{0x80, 0x00}
	expect.Equal(t, 0x0080, Uint16LE(data, 0))
	expect.Equal(t, 0x8000, Uint16BE(data, 0))
}

func (ByteReaderSuite) TestPortableSelectsOrder(t *testing.T) {
	data := []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08}
	portable := PortablePrimitives{}

	expect.Equal(t, Uint16LE(data, 0), portable.Uint16(LittleEndian, data, 0))
	expect.Equal(t, Uint16BE(data, 0), portable.Uint16(BigEndian, data, 0))
	expect.Equal(t, Uint32LE(data, 4), portable.Uint32(LittleEndian, data, 4))
	expect.Equal(t, Uint32BE(data, 4), portable.Uint32(BigEndian, data, 4))
	expect.Equal(t, Uint64LE(data, 0), portable.Uint64(LittleEndian, data, 0))
	expect.Equal(t, Uint64BE(data, 0), portable.Uint64(BigEndian, data, 0))
}

func (ByteReaderSuite) TestNativeMatchesPortable(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	data := make([]byte, 256)
	portable := PortablePrimitives{}
	native := NativePrimitives{}

	for iteration := 0; iteration < 64; iteration++ {
		rng.Read(data)

		for _, order := range []ByteOrder{LittleEndian, BigEndian} {
			for offset := 0; offset+8 <= len(data); offset++ {
				expect.Equal(
					t,
					portable.Uint16(order, data, offset),
					native.Uint16(order, data, offset))
				expect.Equal(
					t,
					portable.Uint32(order, data, offset),
					native.Uint32(order, data, offset))
				expect.Equal(
					t,
					portable.Uint64(order, data, offset),
					native.Uint64(order, data, offset))
			}
		}
	}
}

func (ByteReaderSuite) TestByteOrderString(t *testing.T) {
	expect.Equal(t, "little", LittleEndian.String())
	expect.Equal(t, "big", BigEndian.String())
	expect.Equal(t, "ByteOrderUnknown(7)", ByteOrder(7).String())
}
