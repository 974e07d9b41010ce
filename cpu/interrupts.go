package cpu

import "github.com/halfcarry/dmg-core/addr"

// IMEState is the three-state interrupt master enable flip-flop: EI arms the
// enable for one instruction boundary before it actually takes effect.
type IMEState uint8

const (
	IMEOff IMEState = iota
	IMETurningOn
	IMEOn
)

var interruptOrder = []addr.Interrupt{
	addr.VBlankInterrupt,
	addr.LCDSTATInterrupt,
	addr.TimerInterrupt,
	addr.SerialInterrupt,
	addr.JoypadInterrupt,
}

// pendingInterrupt returns the highest-priority interrupt present in both IE
// and IF, or 0 if none is pending.
func pendingInterrupt(ie, iflag uint8) addr.Interrupt {
	masked := ie & iflag & 0x1F
	for _, i := range interruptOrder {
		if masked&byte(i) != 0 {
			return i
		}
	}
	return 0
}

// serviceInterrupt runs the interrupt dispatch sequence: decrement PC, push
// it high-then-low, jump to the vector, clear the IF bit and turn IME off.
// Combined with the unconditional opcode-fetch tick stepOnce always charges
// first, this totals the 5 M-cycles spec.md §4.3 specifies (2 ticks here,
// plus 2 more inside push16's two writes).
func (c *CPU) serviceInterrupt(i addr.Interrupt) {
	c.tick()
	c.tick()

	c.Reg.PC--
	c.push16(c.Reg.PC)

	ifReg := c.Bus.Read(addr.IF)
	c.Bus.Write(addr.IF, ifReg&^byte(i))

	c.Reg.PC = i.Vector()
	c.IME = IMEOff
}
