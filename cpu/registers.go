package cpu

import "github.com/halfcarry/dmg-core/bit"

// Flag bit positions within F (the low byte of AF).
const (
	flagZ uint8 = 0x80
	flagN uint8 = 0x40
	flagH uint8 = 0x20
	flagC uint8 = 0x10
)

// Registers holds the SM83 register file as plain uint8/uint16 fields, per
// the reference design's preference for direct fields over per-register
// wrapper types.
type Registers struct {
	A, F    uint8
	B, C    uint8
	D, E    uint8
	H, L    uint8
	SP      uint16
	PC      uint16
}

func (r *Registers) BC() uint16 { return bit.Combine(r.B, r.C) }
func (r *Registers) DE() uint16 { return bit.Combine(r.D, r.E) }
func (r *Registers) HL() uint16 { return bit.Combine(r.H, r.L) }
func (r *Registers) AF() uint16 { return bit.Combine(r.A, r.F&0xF0) }

func (r *Registers) SetBC(v uint16) { r.B, r.C = bit.High(v), bit.Low(v) }
func (r *Registers) SetDE(v uint16) { r.D, r.E = bit.High(v), bit.Low(v) }
func (r *Registers) SetHL(v uint16) { r.H, r.L = bit.High(v), bit.Low(v) }

// SetAF masks the popped low byte's low nibble to zero, matching POP AF.
func (r *Registers) SetAF(v uint16) { r.A, r.F = bit.High(v), bit.Low(v)&0xF0 }

func (r *Registers) flag(mask uint8) bool { return r.F&mask != 0 }
func (r *Registers) setFlag(mask uint8, set bool) {
	if set {
		r.F |= mask
	} else {
		r.F &^= mask
	}
}

func (r *Registers) Zero() bool      { return r.flag(flagZ) }
func (r *Registers) Subtract() bool  { return r.flag(flagN) }
func (r *Registers) HalfCarry() bool { return r.flag(flagH) }
func (r *Registers) Carry() bool     { return r.flag(flagC) }
