package cpu

// buildCBTable constructs the CB-prefixed opcode table: 8 shift/rotate
// operations and BIT/RES/SET over the 3-bit bit index, each parameterized by
// the same 3-bit register field used in the primary table.
func buildCBTable() [256]func(*CPU) {
	var t [256]func(*CPU)

	shiftOps := []func(*CPU, uint8) uint8{
		(*CPU).rlc,
		(*CPU).rrc,
		(*CPU).rl,
		(*CPU).rr,
		(*CPU).sla,
		(*CPU).sra,
		(*CPU).swap,
		(*CPU).srl,
	}

	for op := 0; op < 8; op++ {
		f := shiftOps[op]
		for r := uint8(0); r < 8; r++ {
			reg := r
			t[op*8+int(reg)] = func(c *CPU) { c.setR8(reg, f(c, c.getR8(reg))) }
		}
	}

	for b := uint8(0); b < 8; b++ {
		bitIdx := b
		for r := uint8(0); r < 8; r++ {
			reg := r
			t[0x40+int(bitIdx)*8+int(reg)] = func(c *CPU) { c.bitTest(bitIdx, c.getR8(reg)) }
			t[0x80+int(bitIdx)*8+int(reg)] = func(c *CPU) { c.setR8(reg, resBit(bitIdx, c.getR8(reg))) }
			t[0xC0+int(bitIdx)*8+int(reg)] = func(c *CPU) { c.setR8(reg, setBit(bitIdx, c.getR8(reg))) }
		}
	}

	return t
}
