package z80

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPairRoundTrip(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu()

	for hi := 0; hi < 256; hi++ {
		for lo := 0; lo < 256; lo++ {
			word := uint16(hi)<<8 | uint16(lo)

			cpu.SetBC(word)
			if !assert.Equal(uint8(hi), cpu.B, "BC hi of %04X", word) {
				return
			}
			if !assert.Equal(uint8(lo), cpu.C, "BC lo of %04X", word) {
				return
			}
			if !assert.Equal(word, cpu.BC(), "BC recompose of %04X", word) {
				return
			}
		}
	}

	cpu.D, cpu.E = 0x12, 0x34
	assert.Equal(uint16(0x1234), cpu.DE())
	cpu.H, cpu.L = 0xAB, 0xCD
	assert.Equal(uint16(0xABCD), cpu.HL())
}

func TestWordWraparound(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu()

	// A word at the top of memory wraps to address zero.
	cpu.PokeWord(0xFFFF, 0x1234)
	assert.Equal(uint8(0x34), cpu.Peek(0xFFFF))
	assert.Equal(uint8(0x12), cpu.Peek(0x0000))
	assert.Equal(uint16(0x1234), cpu.PeekWord(0xFFFF))

	// Load wraps the same way.
	cpu.Load([]byte{0xAA, 0xBB, 0xCC}, 0xFFFE)
	assert.Equal(uint8(0xAA), cpu.Peek(0xFFFE))
	assert.Equal(uint8(0xBB), cpu.Peek(0xFFFF))
	assert.Equal(uint8(0xCC), cpu.Peek(0x0000))
}

func TestStack(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu()
	cpu.SP = 0x43FF

	cpu.Push(0x1234)
	assert.Equal(uint16(0x43FD), cpu.SP)
	assert.Equal(uint16(0x1234), cpu.PeekWord(0x43FD))

	cpu.Push(0x5678)
	assert.Equal(uint16(0x5678), cpu.Pop())
	assert.Equal(uint16(0x1234), cpu.Pop())
	assert.Equal(uint16(0x43FF), cpu.SP)
}

func TestStackWraparound(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu()
	cpu.SP = 0x0001

	// Pushing below the bottom of memory wraps to the top.
	cpu.Push(0xBEEF)
	assert.Equal(uint16(0xFFFF), cpu.SP)
	assert.Equal(uint16(0xBEEF), cpu.Pop())
	assert.Equal(uint16(0x0001), cpu.SP)
}

func TestRelativeDisplacement(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name   string
		base   uint16
		disp   uint8
		result uint16
	}){
		{"forward", 0x4000, 0x10, 0x4010},
		{"backward", 0x4000, 0xFE, 0x3FFE},
		{"max_back", 0x4000, 0x80, 0x3F80},
		{"wrap_low", 0x0001, 0xFD, 0xFFFE},
		{"wrap_high", 0xFFF0, 0x20, 0x0010},
	}

	for _, entry := range table {
		assert.Equal(entry.result, relative(entry.base, entry.disp), entry.name)
	}
}

func TestFlagAccessors(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu()

	cpu.SetFlag(FlagZ, true)
	cpu.SetFlag(FlagC, true)
	assert.True(cpu.GetFlag(FlagZ))
	assert.True(cpu.GetFlag(FlagC))
	assert.False(cpu.GetFlag(FlagS))

	cpu.SetFlag(FlagZ, false)
	assert.False(cpu.GetFlag(FlagZ))
	assert.Equal(FlagC, cpu.F)
}
