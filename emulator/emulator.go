// Package emulator runs a machine code program inside a modeled ZX81:
// CPU plus RAM, the system variable area, a captured display, and a
// scripted keyboard. The ROM is not emulated; the handful of ROM entry
// points the program calls are intercepted by address.
package emulator

import (
	"log"

	"github.com/Cronan/zx81-chess/z80"
	"github.com/Cronan/zx81-chess/zx81"
)

// ROM addresses intercepted by the run loop.
const (
	AddrSentinel = 0x0000 // return address marking the end of the run
	AddrPrint    = 0x0010 // RST $10, print the character in A
	AddrCls      = 0x0A2A // ROM CLS routine
)

// DefaultMaxCycles bounds a run. The chess program thinks for a few
// hundred thousand instructions per move, so this is generous.
const DefaultMaxCycles = 50_000_000

// Emulator state: CPU + display + keyboard.
type Emulator struct {
	Verbose  bool // If set, enables verbose logging.
	*z80.Cpu      // Reference to the CPU simulation.

	Display Display  // Captured RST $10 output.
	Keys    []uint16 // Pending key codes, delivered one per frame.

	// IdleStop makes Run finish with Idle when a HALT finds the key
	// queue empty, instead of spinning until the cycle budget runs
	// out. Interactive callers set it so they can prompt for input.
	IdleStop bool

	MaxCycles int // Instruction budget for Run.
	Cycles    int // Instructions executed so far.
}

// NewEmulator creates an emulator with ZX81 memory already set up, as
// if the program had just been started with RAND USR.
func NewEmulator() (emu *Emulator) {
	emu = &Emulator{
		Cpu:       z80.NewCpu(),
		MaxCycles: DefaultMaxCycles,
	}

	zx81.InitMemory(emu.Cpu)

	return
}

// Load places a program image into memory at the standard machine
// code origin inside the BASIC REM statement.
func (emu *Emulator) Load(code []byte) {
	emu.Cpu.Load(code, zx81.ProgramBase)
}

// Type queues the key codes for a string of typed characters.
func (emu *Emulator) Type(text string) {
	emu.Keys = append(emu.Keys, zx81.EncodeKeys(text)...)
}

// frameTick models the display interrupt at a HALT: the keyboard scan
// delivers the next queued key, or the no-key value, into LAST_K.
func (emu *Emulator) frameTick() {
	if len(emu.Keys) > 0 {
		emu.PokeWord(zx81.LastK, emu.Keys[0])
		emu.Keys = emu.Keys[1:]
	} else {
		emu.PokeWord(zx81.LastK, zx81.NoKey)
	}
}

// Run executes from start until the program returns to the sentinel
// address, runs out of keys at a HALT with IdleStop set, hits an
// instruction outside the supported subset, or exhausts the cycle
// budget. The error is non-nil only for the Faulted outcome and wraps
// a *z80.ErrOpcode.
func (emu *Emulator) Run(start uint16) (outcome Outcome, err error) {
	emu.PC = start

	for emu.Cycles < emu.MaxCycles {
		emu.Cycles++

		if emu.PC == AddrSentinel {
			outcome = Returned
			return
		}

		switch emu.PC {
		case AddrPrint:
			if emu.Verbose {
				log.Printf("print %q", zx81.DecodeChar(emu.A))
			}
			emu.Display.Print(emu.A)
			emu.PC = emu.Pop()
			continue
		case AddrCls:
			if emu.Verbose {
				log.Printf("cls")
			}
			emu.Display.Clear()
			emu.PokeWord(zx81.DFile, 0x4800)
			emu.PokeWord(zx81.DFCC, 0x4801)
			emu.PC = emu.Pop()
			continue
		}

		err = emu.Step()
		if err != nil {
			err = &ErrRuntime{Cycles: emu.Cycles, Err: err}
			outcome = Faulted
			return
		}

		if emu.Halted {
			emu.Halted = false
			emu.frameTick()
			if emu.IdleStop && len(emu.Keys) == 0 && emu.Peek(zx81.LastK) == 0xFF {
				outcome = Idle
				return
			}
		}
	}

	outcome = CycleLimit
	return
}
