package chess

import (
	"github.com/Cronan/zx81-chess/z80"
)

// The program begins with a fixed prologue of CALLs into its major
// routines, so a routine address can be read straight out of a CALL
// operand at a known offset from the entry point.

// CallTarget returns the operand of the CALL instruction at addr.
func CallTarget(cpu *z80.Cpu, addr uint16) uint16 {
	return cpu.PeekWord(addr + 1)
}

// FindThink scans [from, from+window) for the think-routine dispatch
// sequence LD A,8 / LD (SIDE),A / CALL nn and returns the CALL target.
// This locates the engine even when no manifest gives its address.
func FindThink(cpu *z80.Cpu, from uint16, window uint16) (addr uint16, ok bool) {
	for scan := from; scan < from+window; scan++ {
		if cpu.Peek(scan) == 0x3E && cpu.Peek(scan+1) == 0x08 &&
			cpu.Peek(scan+2) == 0x32 && cpu.Peek(scan+5) == 0xCD {
			return cpu.PeekWord(scan + 6), true
		}
	}
	return 0, false
}
