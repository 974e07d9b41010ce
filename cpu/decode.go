package cpu

// buildPrimaryTable constructs the unprefixed opcode table. Regular families
// (8-bit register loads, the ALU block, INC/DEC, RST, conditional control
// flow) are generated by looping over the register/condition encodings the
// SM83 opcode byte embeds; the handful of irregular opcodes are assigned
// individually afterwards. This mirrors the "tagged set of operation
// variants parameterized by register/condition" decomposition rather than
// 256 hand-written cases.
func buildPrimaryTable() [256]func(*CPU) {
	var t [256]func(*CPU)

	for i := range t {
		t[i] = illegalOpcode
	}

	// 0x40-0x7F: LD r,r' (0x76 is HALT, overridden below).
	for opcode := 0x40; opcode <= 0x7F; opcode++ {
		dst := uint8((opcode - 0x40) / 8)
		src := uint8((opcode - 0x40) % 8)
		t[opcode] = func(c *CPU) { c.setR8(dst, c.getR8(src)) }
	}
	t[0x76] = opHalt

	// 0x80-0xBF: ALU A,r'.
	for opcode := 0x80; opcode <= 0xBF; opcode++ {
		op := uint8((opcode - 0x80) / 8)
		src := uint8((opcode - 0x80) % 8)
		t[opcode] = func(c *CPU) { c.aluOp(op, c.getR8(src)) }
	}

	// 0x04,0x0C,...,0x3C: INC r. 0x05,0x0D,...,0x3D: DEC r.
	for r := uint8(0); r < 8; r++ {
		base := int(r) * 8
		reg := r
		t[0x04+base] = func(c *CPU) { c.setR8(reg, c.inc8(c.getR8(reg))) }
		t[0x05+base] = func(c *CPU) { c.setR8(reg, c.dec8(c.getR8(reg))) }
		t[0x06+base] = func(c *CPU) { c.setR8(reg, c.fetch()) }
	}

	// 0x01,0x11,0x21,0x31: LD rp,nn. 0x03../0x33: INC rp. 0x0B../0x3B: DEC rp.
	// 0x09../0x39: ADD HL,rp. 0xC1../0xF1: POP rp2. 0xC5../0xF5: PUSH rp2.
	for p := uint8(0); p < 4; p++ {
		pp := p
		t[0x01+int(p)*0x10] = func(c *CPU) { c.setRP(pp, c.fetch16()) }
		t[0x03+int(p)*0x10] = func(c *CPU) { c.setRP(pp, c.getRP(pp)+1); c.tick() }
		t[0x0B+int(p)*0x10] = func(c *CPU) { c.setRP(pp, c.getRP(pp)-1); c.tick() }
		t[0x09+int(p)*0x10] = func(c *CPU) { c.addHL(c.getRP(pp)); c.tick() }
		t[0xC1+int(p)*0x10] = func(c *CPU) { c.setRP2(pp, c.pop16()) }
		t[0xC5+int(p)*0x10] = func(c *CPU) { c.tick(); c.push16(c.getRP2(pp)) }

		// conditional control flow (NZ,Z,NC,C)
		t[0x20+int(p)*0x08] = func(c *CPU) { opJRcc(c, pp) }
		t[0xC0+int(p)*0x08] = func(c *CPU) { opRETcc(c, pp) }
		t[0xC2+int(p)*0x08] = func(c *CPU) { opJPcc(c, pp) }
		t[0xC4+int(p)*0x08] = func(c *CPU) { opCALLcc(c, pp) }
	}

	// 0xC6,0xCE,...,0xFE: ALU A,n.
	for op := uint8(0); op < 8; op++ {
		opc := op
		t[0xC6+int(op)*8] = func(c *CPU) { c.aluOp(opc, c.fetch()) }
	}

	// 0xC7,0xCF,...,0xFF: RST.
	for t8 := uint8(0); t8 < 8; t8++ {
		vector := uint16(t8) * 8
		t[0xC7+int(t8)*8] = func(c *CPU) { c.tick(); c.push16(c.Reg.PC); c.Reg.PC = vector }
	}

	assignIrregularOpcodes(&t)
	return t
}

func assignIrregularOpcodes(t *[256]func(*CPU)) {
	t[0x00] = func(c *CPU) {}
	t[0x02] = func(c *CPU) { c.writeByte(c.Reg.BC(), c.Reg.A) }
	t[0x12] = func(c *CPU) { c.writeByte(c.Reg.DE(), c.Reg.A) }
	t[0x22] = func(c *CPU) { hl := c.Reg.HL(); c.writeByte(hl, c.Reg.A); c.Reg.SetHL(hl + 1) }
	t[0x32] = func(c *CPU) { hl := c.Reg.HL(); c.writeByte(hl, c.Reg.A); c.Reg.SetHL(hl - 1) }
	t[0x0A] = func(c *CPU) { c.Reg.A = c.readByte(c.Reg.BC()) }
	t[0x1A] = func(c *CPU) { c.Reg.A = c.readByte(c.Reg.DE()) }
	t[0x2A] = func(c *CPU) { hl := c.Reg.HL(); c.Reg.A = c.readByte(hl); c.Reg.SetHL(hl + 1) }
	t[0x3A] = func(c *CPU) { hl := c.Reg.HL(); c.Reg.A = c.readByte(hl); c.Reg.SetHL(hl - 1) }

	t[0x07] = func(c *CPU) { c.rlca() }
	t[0x0F] = func(c *CPU) { c.rrca() }
	t[0x17] = func(c *CPU) { c.rla() }
	t[0x1F] = func(c *CPU) { c.rra() }
	t[0x27] = func(c *CPU) { c.daa() }
	t[0x2F] = func(c *CPU) { c.cpl() }
	t[0x37] = func(c *CPU) { c.scf() }
	t[0x3F] = func(c *CPU) { c.ccf() }

	t[0x08] = func(c *CPU) {
		addr := c.fetch16()
		c.writeByte(addr, uint8(c.Reg.SP))
		c.writeByte(addr+1, uint8(c.Reg.SP>>8))
	}

	t[0x10] = func(c *CPU) { c.fetch() } // STOP, second byte conventionally 0x00

	t[0x18] = func(c *CPU) { opJR(c) }

	t[0xC3] = func(c *CPU) { target := c.fetch16(); c.tick(); c.Reg.PC = target }
	t[0xCD] = func(c *CPU) { target := c.fetch16(); c.tick(); c.push16(c.Reg.PC); c.Reg.PC = target }
	t[0xC9] = func(c *CPU) { c.Reg.PC = c.pop16(); c.tick() }
	t[0xD9] = func(c *CPU) { c.Reg.PC = c.pop16(); c.tick(); c.IME = IMEOn }
	t[0xE9] = func(c *CPU) { c.Reg.PC = c.Reg.HL() }
	t[0xF9] = func(c *CPU) { c.Reg.SP = c.Reg.HL(); c.tick() }

	t[0xE0] = func(c *CPU) { offset := c.fetch(); c.writeByte(0xFF00+uint16(offset), c.Reg.A) }
	t[0xF0] = func(c *CPU) { offset := c.fetch(); c.Reg.A = c.readByte(0xFF00 + uint16(offset)) }
	t[0xE2] = func(c *CPU) { c.writeByte(0xFF00+uint16(c.Reg.C), c.Reg.A) }
	t[0xF2] = func(c *CPU) { c.Reg.A = c.readByte(0xFF00 + uint16(c.Reg.C)) }
	t[0xEA] = func(c *CPU) { addr := c.fetch16(); c.writeByte(addr, c.Reg.A) }
	t[0xFA] = func(c *CPU) { addr := c.fetch16(); c.Reg.A = c.readByte(addr) }

	t[0xE8] = func(c *CPU) {
		imm := int8(c.fetch())
		c.Reg.SP = c.addSPSigned(c.Reg.SP, imm)
		c.tick()
		c.tick()
	}
	t[0xF8] = func(c *CPU) {
		imm := int8(c.fetch())
		c.Reg.SetHL(c.addSPSigned(c.Reg.SP, imm))
		c.tick()
	}

	t[0xF3] = func(c *CPU) { c.IME = IMEOff }
	t[0xFB] = func(c *CPU) { c.IME = IMETurningOn }

	t[0xCB] = func(c *CPU) { cbOpcode := c.fetch(); c.cb[cbOpcode](c) }
}

func opHalt(c *CPU) { c.Halted = true }

func illegalOpcode(c *CPU) {}

// aluOp dispatches the 8 ALU operations selected by the 3-bit field shared
// by the 0x80-0xBF register block and the 0xC6-0xFE immediate block.
func (c *CPU) aluOp(op uint8, operand uint8) {
	switch op {
	case 0:
		c.add(operand)
	case 1:
		c.adc(operand)
	case 2:
		c.sub(operand)
	case 3:
		c.sbc(operand)
	case 4:
		c.and(operand)
	case 5:
		c.xor(operand)
	case 6:
		c.or(operand)
	case 7:
		c.cp(operand)
	}
}

func opJR(c *CPU) {
	offset := int8(c.fetch())
	c.tick()
	c.Reg.PC = uint16(int32(c.Reg.PC) + int32(offset))
}

func opJRcc(c *CPU, cc uint8) {
	offset := int8(c.fetch())
	if !c.evalCond(cc) {
		return
	}
	c.tick()
	c.Reg.PC = uint16(int32(c.Reg.PC) + int32(offset))
}

func opJPcc(c *CPU, cc uint8) {
	target := c.fetch16()
	if !c.evalCond(cc) {
		return
	}
	c.tick()
	c.Reg.PC = target
}

func opCALLcc(c *CPU, cc uint8) {
	target := c.fetch16()
	if !c.evalCond(cc) {
		return
	}
	c.tick()
	c.push16(c.Reg.PC)
	c.Reg.PC = target
}

func opRETcc(c *CPU, cc uint8) {
	c.tick()
	if !c.evalCond(cc) {
		return
	}
	c.Reg.PC = c.pop16()
	c.tick()
}

func (c *CPU) evalCond(cc uint8) bool {
	switch cc {
	case 0:
		return !c.Reg.Zero()
	case 1:
		return c.Reg.Zero()
	case 2:
		return !c.Reg.Carry()
	case 3:
		return c.Reg.Carry()
	}
	return false
}

// --- 8-bit register field (r: 0=B,1=C,2=D,3=E,4=H,5=L,6=(HL),7=A) ---

func (c *CPU) getR8(r uint8) uint8 {
	switch r {
	case 0:
		return c.Reg.B
	case 1:
		return c.Reg.C
	case 2:
		return c.Reg.D
	case 3:
		return c.Reg.E
	case 4:
		return c.Reg.H
	case 5:
		return c.Reg.L
	case 6:
		return c.readByte(c.Reg.HL())
	default:
		return c.Reg.A
	}
}

func (c *CPU) setR8(r uint8, v uint8) {
	switch r {
	case 0:
		c.Reg.B = v
	case 1:
		c.Reg.C = v
	case 2:
		c.Reg.D = v
	case 3:
		c.Reg.E = v
	case 4:
		c.Reg.H = v
	case 5:
		c.Reg.L = v
	case 6:
		c.writeByte(c.Reg.HL(), v)
	default:
		c.Reg.A = v
	}
}

// --- 16-bit register pair field (p: 0=BC,1=DE,2=HL,3=SP) ---

func (c *CPU) getRP(p uint8) uint16 {
	switch p {
	case 0:
		return c.Reg.BC()
	case 1:
		return c.Reg.DE()
	case 2:
		return c.Reg.HL()
	default:
		return c.Reg.SP
	}
}

func (c *CPU) setRP(p uint8, v uint16) {
	switch p {
	case 0:
		c.Reg.SetBC(v)
	case 1:
		c.Reg.SetDE(v)
	case 2:
		c.Reg.SetHL(v)
	default:
		c.Reg.SP = v
	}
}

// --- 16-bit register pair field for PUSH/POP (p: 0=BC,1=DE,2=HL,3=AF) ---

func (c *CPU) getRP2(p uint8) uint16 {
	if p == 3 {
		return c.Reg.AF()
	}
	return c.getRP(p)
}

func (c *CPU) setRP2(p uint8, v uint16) {
	if p == 3 {
		c.Reg.SetAF(v)
		return
	}
	c.setRP(p, v)
}
