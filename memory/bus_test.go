package memory

import (
	"testing"

	"github.com/halfcarry/dmg-core/addr"
	"github.com/stretchr/testify/assert"
)

func TestBus_WRAMRoundTrip(t *testing.T) {
	b := NewBus()
	b.Write(0xC012, 0x42)
	assert.Equal(t, byte(0x42), b.Read(0xC012))
	assert.Equal(t, byte(0x42), b.Read(0xE012), "echo region mirrors WRAM")

	b.Write(0xE013, 0x99)
	assert.Equal(t, byte(0x99), b.Read(0xC013), "echo writes also mirror back")
}

func TestBus_VRAMAndOAM(t *testing.T) {
	b := NewBus()
	b.Write(0x8123, 0x55)
	assert.Equal(t, byte(0x55), b.Read(0x8123))

	b.Write(0xFE10, 0xAB)
	assert.Equal(t, byte(0xAB), b.Read(0xFE10))
}

func TestBus_UnusedRegionReadsFF(t *testing.T) {
	b := NewBus()
	assert.Equal(t, byte(0xFF), b.Read(0xFEA0))
	assert.Equal(t, byte(0xFF), b.Read(0xFEFF))
}

func TestBus_HRAMAndIE(t *testing.T) {
	b := NewBus()
	b.Write(0xFF90, 0x7A)
	assert.Equal(t, byte(0x7A), b.Read(0xFF90))

	b.Write(0xFFFF, byte(addr.TimerInterrupt))
	assert.Equal(t, byte(addr.TimerInterrupt), b.Read(0xFFFF))
}

func TestBus_NoCartridgeReadsFF(t *testing.T) {
	b := NewBus()
	assert.Equal(t, byte(0xFF), b.Read(0x0100))
	assert.Equal(t, byte(0xFF), b.Read(0xA000))
}

func TestBus_BootROMOverlayAndLatch(t *testing.T) {
	b := NewBus()
	rom := make([]byte, 0x8000)
	rom[0x00] = 0x11
	mbc := NewNoMBC(rom, 0)
	b.SetCartridge(mbc)

	boot := make([]byte, 0x100)
	boot[0x00] = 0xEE
	b.SetBootROM(boot)

	assert.Equal(t, byte(0xEE), b.Read(0x0000), "boot ROM overlays cartridge while active")

	b.Write(addr.BootOff, 0x01)
	assert.Equal(t, byte(0x11), b.Read(0x0000), "any write to 0xFF50 latches boot overlay off")
}

func TestBus_OAMDMA(t *testing.T) {
	b := NewBus()
	for i := uint16(0); i < 160; i++ {
		b.Write(0xC000+i, byte(i))
	}

	b.Write(addr.DMA, 0xC0)

	for i := uint16(0); i < 160; i++ {
		assert.Equal(t, byte(i), b.Read(0xFE00+i), "OAM byte %d after DMA", i)
	}
}

func TestBus_LYWritesAreDropped(t *testing.T) {
	b := NewBus()
	b.SetLY(42)
	b.Write(addr.LY, 0x99)
	assert.Equal(t, byte(42), b.Read(addr.LY))
}

func TestBus_STATWritePreservesLow3Bits(t *testing.T) {
	b := NewBus()
	b.SetSTATMode(2)
	b.SetSTATLYCFlag(true)

	b.Write(addr.STAT, 0xF8)

	assert.Equal(t, byte(0x02), b.STAT()&0x03, "mode bits preserved across a CPU write")
	assert.True(t, b.STAT()&0x04 != 0, "LYC flag bit preserved across a CPU write")
	assert.Equal(t, byte(0xF8), b.STAT()&0xF8, "upper bits take the written value")
}

func TestBus_IFUpperBitsReadAsOne(t *testing.T) {
	b := NewBus()
	b.RequestInterrupt(addr.VBlankInterrupt)
	assert.Equal(t, byte(0xE0|byte(addr.VBlankInterrupt)), b.Read(addr.IF))
}

func TestBus_DIVWriteResetsRegardlessOfValue(t *testing.T) {
	b := NewBus()
	for i := 0; i < 1000; i++ {
		b.Tick()
	}
	assert.NotEqual(t, byte(0), b.Read(addr.DIV))

	b.Write(addr.DIV, 0xFF)
	assert.Equal(t, byte(0), b.Read(addr.DIV))
}

func TestBus_JoypadFallingEdgeInterrupt(t *testing.T) {
	b := NewBus()
	b.Write(addr.P1, 0x10) // select action buttons

	b.SetButton(ButtonA, true)

	assert.NotEqual(t, byte(0), b.Read(addr.IF)&byte(addr.JoypadInterrupt))
}

func TestBus_JoypadSelectsCorrectNibble(t *testing.T) {
	b := NewBus()
	b.SetButton(ButtonStart, true)
	b.SetButton(ButtonUp, true)

	b.Write(addr.P1, 0x10) // select buttons: bit 3 (Start) should read low
	assert.Equal(t, byte(0xC0|0x10|0x07), b.Read(addr.P1))

	b.Write(addr.P1, 0x20) // select d-pad: bit 2 (Up) should read low
	assert.Equal(t, byte(0xC0|0x20|0x0B), b.Read(addr.P1))
}

func TestBus_SerialAccumulatesLog(t *testing.T) {
	b := NewBus()
	b.Write(addr.SB, 'O')
	b.Write(addr.SC, 0x81)
	b.Write(addr.SB, 'K')
	b.Write(addr.SC, 0x81)

	assert.Equal(t, "OK", b.SerialLog())
	assert.NotEqual(t, byte(0), b.Read(addr.IF)&byte(addr.SerialInterrupt))
}

func TestBus_ReadBit(t *testing.T) {
	b := NewBus()
	b.Write(0xFF90, 0b0000_0100)
	assert.True(t, b.ReadBit(2, 0xFF90))
	assert.False(t, b.ReadBit(0, 0xFF90))
}
