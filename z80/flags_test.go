package z80

import (
	"math/bits"
	"testing"

	"github.com/stretchr/testify/assert"
)

// expectSZ derives Sign and Zero straight from the value.
func expectSZ(val uint8) (f uint8) {
	if val == 0 {
		f |= FlagZ
	}
	if val&0x80 != 0 {
		f |= FlagS
	}
	return
}

func TestFlagsAddExhaustive(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu()

	for a := 0; a < 256; a++ {
		for b := 0; b < 256; b++ {
			for carry := 0; carry < 2; carry++ {
				sum := a + b + carry
				val := uint8(sum)

				want := expectSZ(val)
				if sum > 0xFF {
					want |= FlagC
				}
				// Overflow: both operands share a sign and the
				// result does not.
				if (uint8(a)^uint8(b))&0x80 == 0 && (uint8(a)^val)&0x80 != 0 {
					want |= FlagP
				}
				if a&0x0F+b&0x0F+carry > 0x0F {
					want |= FlagH
				}

				got := cpu.flagsAdd(uint8(a), uint8(b), uint8(carry))
				if !assert.Equal(val, got, "add %02X+%02X+%v value", a, b, carry) {
					return
				}
				if !assert.Equal(want, cpu.F, "add %02X+%02X+%v flags", a, b, carry) {
					return
				}
			}
		}
	}
}

func TestFlagsSubExhaustive(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu()

	for a := 0; a < 256; a++ {
		for b := 0; b < 256; b++ {
			for carry := 0; carry < 2; carry++ {
				diff := a - b - carry
				val := uint8(diff)

				want := expectSZ(val) | FlagN
				if diff < 0 {
					want |= FlagC
				}
				// Overflow: operand signs differ and the result's
				// sign follows the subtrahend.
				if (uint8(a)^uint8(b))&0x80 != 0 && (uint8(a)^val)&0x80 != 0 {
					want |= FlagP
				}
				if a&0x0F < b&0x0F+carry {
					want |= FlagH
				}

				got := cpu.flagsSub(uint8(a), uint8(b), uint8(carry))
				if !assert.Equal(val, got, "sub %02X-%02X-%v value", a, b, carry) {
					return
				}
				if !assert.Equal(want, cpu.F, "sub %02X-%02X-%v flags", a, b, carry) {
					return
				}
			}
		}
	}
}

func TestFlagsLogic(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu()

	for v := 0; v < 256; v++ {
		cpu.F = 0xFF // any prior state must be wiped
		cpu.flagsLogic(uint8(v))

		want := expectSZ(uint8(v))
		if bits.OnesCount8(uint8(v))%2 == 0 {
			want |= FlagP
		}
		if !assert.Equal(want, cpu.F, "logic flags of %02X", v) {
			return
		}
	}
}

func TestFlagsSZKeepsCarry(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu()
	cpu.F = FlagC | FlagH | FlagN

	cpu.flagsSZ(0x00)
	assert.Equal(FlagC|FlagH|FlagN|FlagZ, cpu.F)

	cpu.flagsSZ(0x80)
	assert.Equal(FlagC|FlagH|FlagN|FlagS, cpu.F)
}

func TestAdd16(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name    string
		a, b    uint16
		f       uint8
		result  uint16
		expectF uint8
	}){
		{"no_carry", 0x1000, 0x0234, 0, 0x1234, 0},
		{"carry_out", 0xFFFF, 0x0001, 0, 0x0000, FlagC},
		{"keeps_szp", 0x8000, 0x8000, FlagS | FlagZ | FlagP, 0x0000, FlagS | FlagZ | FlagP | FlagC},
		{"clears_nh", 0x0001, 0x0001, FlagN | FlagH, 0x0002, 0},
	}

	for _, entry := range table {
		cpu := NewCpu()
		cpu.F = entry.f

		result := cpu.add16(entry.a, entry.b)
		assert.Equal(entry.result, result, entry.name)
		assert.Equal(entry.expectF, cpu.F, entry.name)
	}
}
