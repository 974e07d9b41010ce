// Package memory implements the DMG memory map: region dispatch across
// ROM/MBC, VRAM, WRAM, OAM, I/O registers and HRAM, plus the cartridge
// header decoder, MBC variants, timer and joypad register logic that live
// behind that map.
package memory

import "github.com/halfcarry/dmg-core/addr"

const (
	vramSize = 0x2000
	wramSize = 0x2000
	oamSize  = 0xA0
	ioSize   = 0x80
	hramSize = 0x7F
)

// Bus is the DMG's single 16-bit address space, dispatching reads and
// writes by region exactly as described by the hardware memory map.
type Bus struct {
	mbc  MBC
	vram [vramSize]byte
	wram [wramSize]byte
	oam  [oamSize]byte
	io   [ioSize]byte
	hram [hramSize]byte
	ie   byte

	Timer  Timer
	serial Serial
	apu    *APU

	bootROM    []byte
	bootActive bool

	joypadButtons byte // active-low nibble: bit=0 means pressed
	joypadDpad    byte
}

// NewBus creates a bus with no cartridge loaded (ROM/RAM reads return 0xFF).
func NewBus() *Bus {
	b := &Bus{
		apu:           NewAPU(),
		joypadButtons: 0x0F,
		joypadDpad:    0x0F,
	}
	b.Timer.RequestInterrupt = func() { b.RequestInterrupt(addr.TimerInterrupt) }
	b.serial.RequestInterrupt = func() { b.RequestInterrupt(addr.SerialInterrupt) }
	return b
}

// SetCartridge installs the given MBC as the active cartridge controller.
func (b *Bus) SetCartridge(mbc MBC) {
	b.mbc = mbc
}

// SetBootROM installs a boot ROM image and latches boot-overlay mode on.
// Passing nil leaves boot mode off.
func (b *Bus) SetBootROM(data []byte) {
	b.bootROM = data
	b.bootActive = data != nil
}

// RequestInterrupt sets the corresponding bit in the IF register (0xFF0F).
func (b *Bus) RequestInterrupt(i addr.Interrupt) {
	idx := addr.IF - 0xFF00
	b.io[idx] |= byte(i)
}

func (b *Bus) ioIndex(address uint16) int {
	return int(address - 0xFF00)
}

// Read dispatches a CPU (or PPU) read by region.
func (b *Bus) Read(address uint16) byte {
	switch address >> 13 {
	case 0, 1: // 0x0000-0x7FFF: ROM via MBC, with boot overlay
		if b.bootActive && address <= 0x00FF {
			return b.bootROM[address]
		}
		if b.mbc == nil {
			return 0xFF
		}
		return b.mbc.ReadROM(address)
	case 2: // 0x8000-0x9FFF: VRAM
		return b.vram[address-0x8000]
	case 3: // 0xA000-0xBFFF: external RAM
		if b.mbc == nil {
			return 0xFF
		}
		return b.mbc.ReadRAM(address)
	case 4, 5: // 0xC000-0xDFFF: WRAM
		return b.wram[address-0xC000]
	default: // 0xE000-0xFFFF
		return b.readHighRegion(address)
	}
}

func (b *Bus) readHighRegion(address uint16) byte {
	switch {
	case address <= 0xFDFF: // echo of 0xC000-0xDDFF
		return b.wram[address-0xE000]
	case address <= 0xFE9F: // OAM
		return b.oam[address-0xFE00]
	case address <= 0xFEFF: // unused
		return 0xFF
	case address <= 0xFF7F: // I/O
		return b.readIO(address)
	case address <= 0xFFFE: // HRAM
		return b.hram[address-0xFF80]
	default: // 0xFFFF: IE
		return b.ie
	}
}

func (b *Bus) readIO(address uint16) byte {
	switch address {
	case addr.P1:
		return b.readJoypad()
	case addr.DIV:
		return b.Timer.DIV()
	case addr.TIMA:
		return b.Timer.ReadTIMA()
	case addr.TMA:
		return b.Timer.ReadTMA()
	case addr.TAC:
		return b.Timer.ReadTAC()
	case addr.IF:
		return b.io[b.ioIndex(address)] | 0xE0
	case addr.SB:
		return b.serial.ReadSB()
	case addr.SC:
		return b.serial.ReadSC()
	}
	if address >= addr.AudioStart && address <= addr.AudioEnd {
		return b.apu.ReadRegister(address)
	}
	return b.io[b.ioIndex(address)]
}

// Write dispatches a CPU write by region, applying the PPU/timer/boot
// ownership rules documented in the memory map.
func (b *Bus) Write(address uint16, value byte) {
	switch address >> 13 {
	case 0, 1: // ROM/MBC control registers
		if b.mbc != nil {
			b.mbc.WriteROM(address, value)
		}
	case 2:
		b.vram[address-0x8000] = value
	case 3:
		if b.mbc != nil {
			b.mbc.WriteRAM(address, value)
		}
	case 4, 5:
		b.wram[address-0xC000] = value
	default:
		b.writeHighRegion(address, value)
	}
}

func (b *Bus) writeHighRegion(address uint16, value byte) {
	switch {
	case address <= 0xFDFF:
		b.wram[address-0xE000] = value
	case address <= 0xFE9F:
		b.oam[address-0xFE00] = value
	case address <= 0xFEFF:
		// unused region; writes dropped
	case address <= 0xFF7F:
		b.writeIO(address, value)
	case address <= 0xFFFE:
		b.hram[address-0xFF80] = value
	default:
		b.ie = value
	}
}

func (b *Bus) writeIO(address uint16, value byte) {
	switch address {
	case addr.P1:
		b.io[b.ioIndex(address)] = value & 0x30
		return
	case addr.DIV:
		b.Timer.ResetDIV()
		return
	case addr.TIMA:
		b.Timer.WriteTIMA(value)
		return
	case addr.TMA:
		b.Timer.WriteTMA(value)
		return
	case addr.TAC:
		b.Timer.WriteTAC(value)
		return
	case addr.LY:
		// LY is PPU-owned; CPU writes are dropped.
		return
	case addr.STAT:
		idx := b.ioIndex(address)
		b.io[idx] = (b.io[idx] & 0x07) | (value &^ 0x07)
		return
	case addr.DMA:
		b.runOAMDMA(value)
		b.io[b.ioIndex(address)] = value
		return
	case addr.BootOff:
		b.bootActive = false
		return
	case addr.SB:
		b.serial.WriteSB(value)
		return
	case addr.SC:
		b.serial.WriteSC(value)
		return
	}
	if address >= addr.AudioStart && address <= addr.AudioEnd {
		b.apu.WriteRegister(address, value)
		return
	}
	b.io[b.ioIndex(address)] = value
}

// runOAMDMA performs the 0xFF46 OAM DMA transfer as an immediate block
// copy; the 160-M-cycle real-hardware timing is left to the caller.
func (b *Bus) runOAMDMA(high byte) {
	src := uint16(high) << 8
	for i := uint16(0); i < 160; i++ {
		b.oam[i] = b.Read(src + i)
	}
}

// --- PPU-facing helpers: bypass the CPU write-path restrictions above ---

// LY returns the current scanline register value.
func (b *Bus) LY() byte {
	return b.io[b.ioIndex(addr.LY)]
}

// SetLY is used by the PPU to update the scanline register directly.
func (b *Bus) SetLY(line byte) {
	b.io[b.ioIndex(addr.LY)] = line
}

// STAT returns the raw STAT register value.
func (b *Bus) STAT() byte {
	return b.io[b.ioIndex(addr.STAT)]
}

// SetSTATMode overwrites STAT bits 1:0 (the current PPU mode).
func (b *Bus) SetSTATMode(mode byte) {
	idx := b.ioIndex(addr.STAT)
	b.io[idx] = (b.io[idx] &^ 0x03) | (mode & 0x03)
}

// SetSTATLYCFlag overwrites STAT bit 2 (the LY=LYC coincidence flag).
func (b *Bus) SetSTATLYCFlag(set bool) {
	idx := b.ioIndex(addr.STAT)
	if set {
		b.io[idx] |= 0x04
	} else {
		b.io[idx] &^= 0x04
	}
}

// ReadBit reports whether the given bit of the byte at address is set.
func (b *Bus) ReadBit(index uint8, address uint16) bool {
	return (b.Read(address)>>index)&1 == 1
}

// SerialLog returns everything transmitted over the serial port so far.
func (b *Bus) SerialLog() string {
	return b.serial.Log()
}

// --- Joypad ---

func (b *Bus) readJoypad() byte {
	idx := b.ioIndex(addr.P1)
	p1 := b.io[idx]
	result := byte(0xC0) | (p1 & 0x30)

	selectDpad := p1&0x10 == 0
	selectButtons := p1&0x20 == 0

	switch {
	case selectButtons && selectDpad:
		result |= b.joypadButtons & b.joypadDpad & 0x0F
	case selectButtons:
		result |= b.joypadButtons & 0x0F
	case selectDpad:
		result |= b.joypadDpad & 0x0F
	default:
		result |= 0x0F
	}

	return result
}

// TickJoypad recomputes the P1 low nibble against current button state;
// called once per machine cycle by the CPU's tick callback.
func (b *Bus) TickJoypad() {
	b.io[b.ioIndex(addr.P1)] = b.readJoypad()
}

// SetButton updates the shadow button register consulted on the next tick,
// requesting the Joypad interrupt on a press (high-to-low) transition of a
// currently-selected button.
func (b *Bus) SetButton(button Button, pressed bool) {
	bitPos := buttonBit(button)
	p1 := b.io[b.ioIndex(addr.P1)]
	if isDirection(button) {
		before := b.joypadDpad
		if pressed {
			b.joypadDpad &^= 1 << bitPos
		} else {
			b.joypadDpad |= 1 << bitPos
		}
		if p1&0x10 == 0 {
			b.maybeRequestJoypadIRQ(before, b.joypadDpad)
		}
	} else {
		before := b.joypadButtons
		if pressed {
			b.joypadButtons &^= 1 << bitPos
		} else {
			b.joypadButtons |= 1 << bitPos
		}
		if p1&0x20 == 0 {
			b.maybeRequestJoypadIRQ(before, b.joypadButtons)
		}
	}
	b.TickJoypad()
}

func (b *Bus) maybeRequestJoypadIRQ(before, after byte) {
	fallingEdge := before &^ after
	if fallingEdge != 0 {
		b.RequestInterrupt(addr.JoypadInterrupt)
	}
}

// Tick advances timer, serial and joypad state by one machine cycle (4
// dots). The PPU is ticked separately by its own Tick call from the CPU's
// per-M-cycle callback.
func (b *Bus) Tick() {
	for i := 0; i < 4; i++ {
		b.Timer.TickDot()
	}
	b.TickJoypad()
}
