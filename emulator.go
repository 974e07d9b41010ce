// Package dmgcore is a headless Game Boy (DMG) core: the SM83 CPU, memory
// bus, cartridge/MBC logic, PPU and timer, wired together behind a single
// Emulator type that owns all emulation state exclusively and advances it
// synchronously one CPU instruction at a time.
package dmgcore

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/halfcarry/dmg-core/cpu"
	"github.com/halfcarry/dmg-core/memory"
	"github.com/halfcarry/dmg-core/video"
)

// DebuggerState mirrors a debug front-end's run mode; the core itself always
// just executes when asked, a front-end decides when to ask.
type DebuggerState int

const (
	DebuggerRunning DebuggerState = iota
	DebuggerPaused
	DebuggerStep
	DebuggerStepFrame
)

const dotsPerFrame = 70224

// Emulator is the public entry point: it owns the CPU, bus and PPU
// exclusively and exposes the synchronous step/screen/button API. No
// reference into its internals escapes except through Screen, which hands
// out the completed front buffer.
type Emulator struct {
	cpu *cpu.CPU
	bus *memory.Bus
	ppu *video.PPU

	debuggerMutex    sync.RWMutex
	debuggerState    DebuggerState
	stepRequested    bool
	frameRequested   bool
	instructionCount uint64
	frameCount       uint64
}

// New validates the ROM header, builds the matching MBC, and optionally
// installs a boot ROM image. Construction is the only fallible surface.
func New(romBytes []byte, bootBytes []byte) (*Emulator, error) {
	header, err := memory.DecodeHeader(romBytes)
	if err != nil {
		return nil, err
	}

	mbc := memory.NewMBCFromHeader(header, romBytes)

	bus := memory.NewBus()
	bus.SetCartridge(mbc)

	e := &Emulator{
		bus: bus,
		ppu: video.NewPPU(bus),
	}
	e.cpu = cpu.New(bus)
	e.cpu.TickFunc = func() {
		bus.Tick()
		e.ppu.Tick(4)
	}
	e.cpu.Reg.SP = 0xFFFE

	if bootBytes != nil {
		bus.SetBootROM(bootBytes)
		// PC stays at 0x0000: the boot ROM itself sets up registers and
		// jumps to 0x0100, latching itself off via a write to 0xFF50.
	} else {
		// No boot ROM supplied: skip straight to the documented post-boot
		// DMG register state instead of executing cartridge bytes as if
		// they were the boot ROM.
		e.cpu.Reg.SetAF(0x01B0)
		e.cpu.Reg.SetBC(0x0013)
		e.cpu.Reg.SetDE(0x00D8)
		e.cpu.Reg.SetHL(0x014D)
		e.cpu.Reg.PC = 0x0100
	}

	slog.Debug("emulator constructed", "title", header.Title, "mbc", header.MBC, "rom_size", header.ROMSize)

	return e, nil
}

// Step executes exactly one CPU instruction and returns the number of
// M-cycles it consumed (1..6).
func (e *Emulator) Step() uint8 {
	cycles := e.cpu.Step()
	e.instructionCount++
	return cycles
}

// RunFrame executes instructions until at least one full frame (70224 dots)
// worth of M-cycles has elapsed.
func (e *Emulator) RunFrame() {
	dots := 0
	for dots < dotsPerFrame {
		dots += int(e.Step()) * 4
	}
	e.frameCount++
}

// Screen returns the front framebuffer: 160x144 DMG color indices (0-3).
func (e *Emulator) Screen() *[video.Size]byte {
	return e.ppu.FrameBuffer().Front()
}

// SetButton updates the shadow joypad register consulted on the bus's next tick.
func (e *Emulator) SetButton(button memory.Button, pressed bool) {
	e.bus.SetButton(button, pressed)
}

// SerialLog returns everything transmitted over the serial port so far,
// useful for test-ROM harnesses (e.g. Blargg's cpu_instrs) that report
// pass/fail over the link cable instead of the screen.
func (e *Emulator) SerialLog() string {
	return e.bus.SerialLog()
}

// PC returns the current program counter, for debugger front-ends.
func (e *Emulator) PC() uint16 { return e.cpu.Reg.PC }

// Registers returns a copy of the CPU register file, for debugger front-ends.
func (e *Emulator) Registers() cpu.Registers { return e.cpu.Reg }

func (e *Emulator) SetDebuggerState(state DebuggerState) {
	e.debuggerMutex.Lock()
	defer e.debuggerMutex.Unlock()
	e.debuggerState = state
}

func (e *Emulator) GetDebuggerState() DebuggerState {
	e.debuggerMutex.RLock()
	defer e.debuggerMutex.RUnlock()
	return e.debuggerState
}

func (e *Emulator) DebuggerPause()  { e.SetDebuggerState(DebuggerPaused) }
func (e *Emulator) DebuggerResume() { e.SetDebuggerState(DebuggerRunning) }

func (e *Emulator) DebuggerStepInstruction() {
	e.debuggerMutex.Lock()
	defer e.debuggerMutex.Unlock()
	e.stepRequested = true
	e.debuggerState = DebuggerStep
}

func (e *Emulator) DebuggerStepFrame() {
	e.debuggerMutex.Lock()
	defer e.debuggerMutex.Unlock()
	e.frameRequested = true
	e.debuggerState = DebuggerStepFrame
}

// RunUntilFrame advances the emulator according to the current debugger
// state: paused does nothing, step/step-frame consume one pending request
// and then pause, running advances a full frame.
func (e *Emulator) RunUntilFrame() {
	e.debuggerMutex.RLock()
	state := e.debuggerState
	e.debuggerMutex.RUnlock()

	switch state {
	case DebuggerPaused:
		return
	case DebuggerStep:
		e.debuggerMutex.Lock()
		requested := e.stepRequested
		e.stepRequested = false
		e.debuggerMutex.Unlock()
		if requested {
			e.Step()
			e.SetDebuggerState(DebuggerPaused)
		}
	case DebuggerStepFrame:
		e.debuggerMutex.Lock()
		requested := e.frameRequested
		e.frameRequested = false
		e.debuggerMutex.Unlock()
		if requested {
			e.RunFrame()
			e.SetDebuggerState(DebuggerPaused)
		}
	default:
		e.RunFrame()
	}
}

func (e *Emulator) String() string {
	return fmt.Sprintf("Emulator{pc=0x%04X, instructions=%d, frames=%d}", e.cpu.Reg.PC, e.instructionCount, e.frameCount)
}
