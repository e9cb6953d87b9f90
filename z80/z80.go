package z80

import (
	"fmt"
)

// MemorySize is the full addressable space; every address wraps
// modulo this size.
const MemorySize = 0x10000

// Cpu is the register file plus its exclusively owned memory. One Cpu
// is created per test scenario; nothing is shared between instances.
type Cpu struct {
	A, F, B, C, D, E, H, L uint8

	SP uint16
	PC uint16
	IX uint16
	IY uint16

	// Halted is set by the HALT instruction and cleared by the host
	// layer once it has performed its frame tick.
	Halted bool

	Mem []byte
}

// NewCpu creates a CPU with zeroed registers and a fresh 64 KiB memory.
func NewCpu() (cpu *Cpu) {
	cpu = &Cpu{
		Mem: make([]byte, MemorySize),
	}

	return
}

// String returns the current register state as a string.
func (cpu *Cpu) String() string {
	return fmt.Sprintf("A=%02X F=%02X BC=%04X DE=%04X HL=%04X SP=%04X PC=%04X IX=%04X IY=%04X",
		cpu.A, cpu.F, cpu.BC(), cpu.DE(), cpu.HL(), cpu.SP, cpu.PC, cpu.IX, cpu.IY)
}

// Peek reads the byte at addr, wrapping modulo the memory size.
func (cpu *Cpu) Peek(addr uint16) uint8 {
	return cpu.Mem[addr]
}

// Poke writes val at addr, wrapping modulo the memory size.
func (cpu *Cpu) Poke(addr uint16, val uint8) {
	cpu.Mem[addr] = val
}

// PeekWord reads a little-endian word: low byte at addr, high at addr+1.
func (cpu *Cpu) PeekWord(addr uint16) uint16 {
	return uint16(cpu.Peek(addr)) | uint16(cpu.Peek(addr+1))<<8
}

// PokeWord writes a little-endian word at addr.
func (cpu *Cpu) PokeWord(addr uint16, val uint16) {
	cpu.Poke(addr, uint8(val))
	cpu.Poke(addr+1, uint8(val>>8))
}

// Load copies data into memory starting at addr. Addresses wrap; there
// is no overflow error.
func (cpu *Cpu) Load(data []byte, addr uint16) {
	for i, b := range data {
		cpu.Poke(addr+uint16(i), b)
	}
}

// Push places a word on the stack, growing downward.
func (cpu *Cpu) Push(val uint16) {
	cpu.SP -= 2
	cpu.PokeWord(cpu.SP, val)
}

// Pop removes and returns the word at the top of the stack.
func (cpu *Cpu) Pop() (val uint16) {
	val = cpu.PeekWord(cpu.SP)
	cpu.SP += 2
	return
}

// BC returns the composite 16-bit view over B and C.
func (cpu *Cpu) BC() uint16 { return uint16(cpu.B)<<8 | uint16(cpu.C) }

// DE returns the composite 16-bit view over D and E.
func (cpu *Cpu) DE() uint16 { return uint16(cpu.D)<<8 | uint16(cpu.E) }

// HL returns the composite 16-bit view over H and L.
func (cpu *Cpu) HL() uint16 { return uint16(cpu.H)<<8 | uint16(cpu.L) }

// SetBC decomposes a 16-bit value into B (high) and C (low).
func (cpu *Cpu) SetBC(val uint16) { cpu.B, cpu.C = uint8(val>>8), uint8(val) }

// SetDE decomposes a 16-bit value into D (high) and E (low).
func (cpu *Cpu) SetDE(val uint16) { cpu.D, cpu.E = uint8(val>>8), uint8(val) }

// SetHL decomposes a 16-bit value into H (high) and L (low).
func (cpu *Cpu) SetHL(val uint16) { cpu.H, cpu.L = uint8(val>>8), uint8(val) }

// GetFlag reports whether a single flag bit is set.
func (cpu *Cpu) GetFlag(flag uint8) bool {
	return cpu.F&flag != 0
}

// SetFlag sets or clears a single flag bit.
func (cpu *Cpu) SetFlag(flag uint8, on bool) {
	if on {
		cpu.F |= flag
	} else {
		cpu.F &^= flag
	}
}

// fetch reads the byte at PC and advances PC.
func (cpu *Cpu) fetch() (b uint8) {
	b = cpu.Peek(cpu.PC)
	cpu.PC++
	return
}

// fetchWord reads a little-endian word at PC and advances PC by two.
func (cpu *Cpu) fetchWord() uint16 {
	lo := cpu.fetch()
	hi := cpu.fetch()
	return uint16(hi)<<8 | uint16(lo)
}

// relative applies a signed 8-bit displacement to a 16-bit base.
func relative(base uint16, disp uint8) uint16 {
	return base + uint16(int16(int8(disp)))
}
