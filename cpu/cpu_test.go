package cpu

import (
	"testing"

	"github.com/halfcarry/dmg-core/addr"
	"github.com/halfcarry/dmg-core/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCPU(t *testing.T) (*CPU, *memory.Bus) {
	t.Helper()
	bus := memory.NewBus()
	rom := make([]byte, 0x8000)
	mbc := memory.NewMBCFromHeader(memory.CartridgeHeader{MBC: memory.NoMBCType, ROMSize: len(rom)}, rom)
	bus.SetCartridge(mbc)
	return New(bus), bus
}

func loadProgram(bus *memory.Bus, at uint16, bytes ...byte) {
	for i, b := range bytes {
		bus.Write(at+uint16(i), b)
	}
}

func TestStep_NOPAdvancesPCByOneAndTicksOnce(t *testing.T) {
	c, bus := newTestCPU(t)
	loadProgram(bus, 0x100, 0x00)
	c.Reg.PC = 0x100

	cycles := c.Step()

	assert.Equal(t, uint8(1), cycles)
	assert.Equal(t, uint16(0x101), c.Reg.PC)
}

func TestStep_JPAdvancesPCToTargetIn4Cycles(t *testing.T) {
	c, bus := newTestCPU(t)
	loadProgram(bus, 0xC000, 0xC3, 0x50, 0x02) // JP 0x0250 (in WRAM: ROM writes are dropped)
	c.Reg.PC = 0xC000

	cycles := c.Step()

	assert.Equal(t, uint8(4), cycles)
	assert.Equal(t, uint16(0x0250), c.Reg.PC)
}

func TestADD_FlagsMatchSpec(t *testing.T) {
	for a := 0; a < 256; a += 17 {
		for b := 0; b < 256; b += 23 {
			c, _ := newTestCPU(t)
			c.Reg.A = uint8(a)
			c.add(uint8(b))

			sum := a + b
			assert.Equal(t, (sum&0xFF) == 0, c.Reg.Zero(), "Z a=%d b=%d", a, b)
			assert.False(t, c.Reg.Subtract())
			assert.Equal(t, (a&0xF)+(b&0xF) > 0xF, c.Reg.HalfCarry(), "H a=%d b=%d", a, b)
			assert.Equal(t, sum > 0xFF, c.Reg.Carry(), "C a=%d b=%d", a, b)
		}
	}
}

func TestSUB_FlagsMatchSpec(t *testing.T) {
	for a := 0; a < 256; a += 17 {
		for b := 0; b < 256; b += 23 {
			c, _ := newTestCPU(t)
			c.Reg.A = uint8(a)
			c.sub(uint8(b))

			diff := a - b
			assert.Equal(t, (uint8(diff)) == 0, c.Reg.Zero(), "Z a=%d b=%d", a, b)
			assert.True(t, c.Reg.Subtract())
			assert.Equal(t, diff < 0, c.Reg.Carry(), "C a=%d b=%d", a, b)
		}
	}
}

func TestPushPop_RoundTripsAllPairs(t *testing.T) {
	c, _ := newTestCPU(t)
	c.Reg.SP = 0xFFFE

	c.Reg.SetBC(0x1234)
	c.push16(c.Reg.BC())
	assert.Equal(t, uint16(0x1234), c.pop16())

	c.Reg.SetDE(0xABCD)
	c.push16(c.Reg.DE())
	assert.Equal(t, uint16(0xABCD), c.pop16())
}

func TestPushPopAF_OnlyHighNibbleOfFSurvives(t *testing.T) {
	c, _ := newTestCPU(t)
	c.Reg.SP = 0xFFFE
	c.Reg.SetAF(0x1257) // low nibble 0x07 should be masked off on POP

	c.push16(c.Reg.AF())
	c.Reg.SetAF(c.pop16())

	assert.Equal(t, uint8(0x12), c.Reg.A)
	assert.Equal(t, uint8(0x50), c.Reg.F)
}

func TestEIDelay_IMEBecomesOnAfterOneExtraNOP(t *testing.T) {
	c, bus := newTestCPU(t)
	loadProgram(bus, 0xC000, 0xF3, 0xFB, 0x00, 0x00) // DI; EI; NOP; NOP
	c.Reg.PC = 0xC000

	c.Step() // DI
	require.Equal(t, IMEOff, c.IME)

	c.Step() // EI
	assert.Equal(t, IMETurningOn, c.IME)

	c.Step() // first NOP: EI delay means IME only now promotes to On
	assert.Equal(t, IMEOn, c.IME)
}

func TestDAA_BCDAdditionAndSubtraction(t *testing.T) {
	c, _ := newTestCPU(t)
	c.Reg.A = 0x45
	c.add(0x38) // 0x45 + 0x38 = 0x7D (not valid BCD)
	c.daa()
	assert.Equal(t, uint8(0x83), c.Reg.A)
	assert.False(t, c.Reg.Carry())

	c2, _ := newTestCPU(t)
	c2.Reg.A = 0x83
	c2.sub(0x38)
	c2.daa()
	assert.Equal(t, uint8(0x45), c2.Reg.A)
}

func TestInterruptServicing_HighestPriorityFirst(t *testing.T) {
	c, bus := newTestCPU(t)
	loadProgram(bus, 0x100, 0x00) // NOP to resume into
	c.Reg.PC = 0x100
	c.Reg.SP = 0xFFFE
	c.IME = IMEOn

	bus.Write(addr.IE, byte(addr.TimerInterrupt)|byte(addr.VBlankInterrupt))
	bus.RequestInterrupt(addr.TimerInterrupt)
	bus.RequestInterrupt(addr.VBlankInterrupt)

	cycles := c.Step()

	assert.Equal(t, addr.VBlankInterrupt.Vector(), c.Reg.PC)
	assert.Equal(t, IMEOff, c.IME)
	assert.Equal(t, uint8(0), bus.Read(addr.IF)&byte(addr.VBlankInterrupt))
	assert.NotEqual(t, uint8(0), bus.Read(addr.IF)&byte(addr.TimerInterrupt), "lower-priority interrupt stays pending")
	assert.Equal(t, uint8(5), cycles)
}

func TestHalt_ResumesWhenInterruptBecomesPending(t *testing.T) {
	c, bus := newTestCPU(t)
	loadProgram(bus, 0xC000, 0x76, 0x00) // HALT; NOP
	c.Reg.PC = 0xC000
	c.IME = IMEOff

	c.Step() // HALT
	assert.True(t, c.Halted)

	c.Step() // no interrupt pending, stays halted
	assert.True(t, c.Halted)

	bus.Write(addr.IE, byte(addr.VBlankInterrupt))
	bus.RequestInterrupt(addr.VBlankInterrupt)

	c.Step() // IME off: execution continues without servicing, HALT bug not emulated
	assert.False(t, c.Halted)
}
