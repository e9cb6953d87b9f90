package zx81

import (
	"github.com/Cronan/zx81-chess/z80"
)

// System variable addresses at the bottom of RAM.
const (
	ErrNr  = 0x4000 // Error code minus one; 0xFF means no error
	Flags  = 0x4001 // BASIC interpreter flags
	RamTop = 0x4004 // First byte above usable RAM
	DFile  = 0x400C // Display file address
	DFCC   = 0x400E // Print position within the display file
	LastK  = 0x4025 // Last key pressed, NoKey when none
	CdFlag = 0x403B // Bit 6 set in slow mode
)

// Memory layout of a running 1K machine.
const (
	SysVarsBase = 0x4009 // First byte saved to tape
	BasicBase   = 0x407D // First BASIC line
	ProgramBase = 0x4082 // Machine code inside the line 1 REM statement
	StackTop    = 0x43FF // Initial SP, top of the 1 KiB RAM
)

// InitMemory writes the system variable values the ROM would have left
// behind and points SP at the top of RAM, as if the program had just
// been started with RAND USR.
func InitMemory(cpu *z80.Cpu) {
	cpu.Poke(ErrNr, 0xFF)
	cpu.Poke(Flags, 0x40)
	cpu.PokeWord(RamTop, StackTop)
	// The display file pointers are parked above RAMTOP so stray
	// writes through them cannot corrupt the program.
	cpu.PokeWord(DFile, 0x4800)
	cpu.PokeWord(DFCC, 0x4801)
	cpu.PokeWord(LastK, NoKey)
	cpu.Poke(CdFlag, 0x40)
	cpu.SP = StackTop
}
