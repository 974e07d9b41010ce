package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildHeaderROM(romSizeCode, ramSizeCode, cartType byte, title string) []byte {
	romSize := 32 * 1024 << romSizeCode
	data := make([]byte, romSize)
	copy(data[titleAddress:], []byte(title))
	data[cartridgeTypeAddress] = cartType
	data[romSizeAddress] = romSizeCode
	data[ramSizeAddress] = ramSizeCode
	return data
}

func TestDecodeHeader_NoMBC(t *testing.T) {
	data := buildHeaderROM(0, 0, 0x00, "TESTROM")

	h, err := DecodeHeader(data)
	require.NoError(t, err)
	assert.Equal(t, "TESTROM", h.Title)
	assert.Equal(t, NoMBCType, h.MBC)
	assert.Equal(t, 32*1024, h.ROMSize)
	assert.False(t, h.HasRAM)
}

func TestDecodeHeader_MBC1WithRAMAndBattery(t *testing.T) {
	data := buildHeaderROM(1, 0x02, 0x03, "MBC1GAME")

	h, err := DecodeHeader(data)
	require.NoError(t, err)
	assert.Equal(t, MBC1Type, h.MBC)
	assert.True(t, h.HasRAM)
	assert.True(t, h.HasBattery)
	assert.Equal(t, 8*1024, h.RAMSize)
}

func TestDecodeHeader_RejectsSizeMismatch(t *testing.T) {
	data := buildHeaderROM(1, 0, 0x00, "SHORT")
	data = data[:len(data)-1]

	_, err := DecodeHeader(data)
	assert.Error(t, err)
}

func TestDecodeHeader_RejectsUnsupportedMBC(t *testing.T) {
	data := buildHeaderROM(0, 0, 0x05, "MBC2GAME")

	_, err := DecodeHeader(data)
	assert.Error(t, err)
}

func TestDecodeHeader_TitleStopsAtNonPrintable(t *testing.T) {
	data := buildHeaderROM(0, 0, 0x00, "")
	copy(data[titleAddress:], []byte{'A', 'B', 0x00, 'C'})

	h, err := DecodeHeader(data)
	require.NoError(t, err)
	assert.Equal(t, "AB", h.Title)
}

func TestDecodeHeader_CGBFlag(t *testing.T) {
	data := buildHeaderROM(0, 0, 0x00, "CGB")
	data[cgbFlagAddress] = 0xC0

	h, err := DecodeHeader(data)
	require.NoError(t, err)
	assert.Equal(t, CGBOnly, h.CGBFlag)
}
