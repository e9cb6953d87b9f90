package z80

// Z80 flag bit positions in the F register.
const (
	FlagC uint8 = 0x01 // Carry
	FlagN uint8 = 0x02 // Subtract
	FlagP uint8 = 0x04 // Parity/Overflow
	FlagH uint8 = 0x10 // Half-carry
	FlagZ uint8 = 0x40 // Zero
	FlagS uint8 = 0x80 // Sign
)

// parityTable holds FlagP for every byte value with an even bit count.
var parityTable [256]uint8

func init() {
	for i := range parityTable {
		j := uint8(i)
		parity := uint8(0)
		for range 8 {
			parity ^= j & 1
			j >>= 1
		}
		if parity == 0 {
			parityTable[i] = FlagP
		}
	}
}

// flagsSZ updates only the Sign and Zero bits from an 8-bit value,
// leaving the rest of F intact.
func (cpu *Cpu) flagsSZ(val uint8) {
	cpu.F &^= FlagS | FlagZ
	if val == 0 {
		cpu.F |= FlagZ
	}
	if val&0x80 != 0 {
		cpu.F |= FlagS
	}
}

// flagsLogic replaces F after AND/OR/XOR: Zero, Sign, and even parity.
// AND call sites additionally force FlagH, a hardware quirk the chess
// code relies on.
func (cpu *Cpu) flagsLogic(val uint8) {
	cpu.F = parityTable[val]
	if val == 0 {
		cpu.F |= FlagZ
	}
	if val&0x80 != 0 {
		cpu.F |= FlagS
	}
}

// flagsAdd computes a+b+carry, replaces F wholesale, and returns the
// masked 8-bit result.
func (cpu *Cpu) flagsAdd(a, b, carry uint8) uint8 {
	result := uint16(a) + uint16(b) + uint16(carry)
	val := uint8(result)
	cpu.F = 0
	if val == 0 {
		cpu.F |= FlagZ
	}
	if val&0x80 != 0 {
		cpu.F |= FlagS
	}
	if result > 0xFF {
		cpu.F |= FlagC
	}
	if ((a^b^0x80)&(a^uint8(result)))&0x80 != 0 {
		cpu.F |= FlagP
	}
	if (a&0x0F)+(b&0x0F)+carry > 0x0F {
		cpu.F |= FlagH
	}
	return val
}

// flagsSub computes a-b-carry with FlagN always set, replaces F
// wholesale, and returns the masked 8-bit result. Compares use this
// and discard the result.
func (cpu *Cpu) flagsSub(a, b, carry uint8) uint8 {
	result := int16(a) - int16(b) - int16(carry)
	val := uint8(result)
	cpu.F = FlagN
	if val == 0 {
		cpu.F |= FlagZ
	}
	if val&0x80 != 0 {
		cpu.F |= FlagS
	}
	if result < 0 {
		cpu.F |= FlagC
	}
	if ((a^b)&(a^uint8(result)))&0x80 != 0 {
		cpu.F |= FlagP
	}
	if a&0x0F < (b&0x0F)+carry {
		cpu.F |= FlagH
	}
	return val
}

// add16 implements the 16-bit register-pair add: Carry from bit 15,
// N and H cleared, Sign/Zero/Parity untouched.
func (cpu *Cpu) add16(a, b uint16) uint16 {
	result := uint32(a) + uint32(b)
	cpu.F &^= FlagC | FlagN | FlagH
	if result > 0xFFFF {
		cpu.F |= FlagC
	}
	return uint16(result)
}
