package z80

// The 3-bit operand selector used by the LD, ALU, and CB-prefix opcode
// blocks: B, C, D, E, H, L, (HL), A in that fixed order.
const selIndirectHL = 6

// get8 reads the operand named by a 3-bit selector. Selector 6 reads
// the byte addressed by HL.
func (cpu *Cpu) get8(sel uint8) uint8 {
	switch sel {
	case 0:
		return cpu.B
	case 1:
		return cpu.C
	case 2:
		return cpu.D
	case 3:
		return cpu.E
	case 4:
		return cpu.H
	case 5:
		return cpu.L
	case selIndirectHL:
		return cpu.Peek(cpu.HL())
	default:
		return cpu.A
	}
}

// set8 writes the operand named by a 3-bit selector. The caller must
// have read any (HL)-relative source first: the effective address is
// computed before the destination half of HL can change.
func (cpu *Cpu) set8(sel uint8, val uint8) {
	switch sel {
	case 0:
		cpu.B = val
	case 1:
		cpu.C = val
	case 2:
		cpu.D = val
	case 3:
		cpu.E = val
	case 4:
		cpu.H = val
	case 5:
		cpu.L = val
	case selIndirectHL:
		cpu.Poke(cpu.HL(), val)
	default:
		cpu.A = val
	}
}

// cond evaluates a 2-bit condition selector: NZ, Z, NC, C.
func (cpu *Cpu) cond(sel uint8) bool {
	switch sel {
	case 0:
		return !cpu.GetFlag(FlagZ)
	case 1:
		return cpu.GetFlag(FlagZ)
	case 2:
		return !cpu.GetFlag(FlagC)
	default:
		return cpu.GetFlag(FlagC)
	}
}

// Step fetches and executes a single instruction. It returns an
// *ErrOpcode for any instruction outside the supported subset; the
// helpers below never fail on their own.
func (cpu *Cpu) Step() error {
	at := cpu.PC
	op := cpu.fetch()

	switch {
	case op == 0x00: // NOP

	case op == 0x76: // HALT: host layer performs the frame tick
		cpu.Halted = true

	case op&0xC0 == 0x40: // LD r, r'
		// Source read first: LD H,(HL) must use the address HL held
		// before H is overwritten.
		v := cpu.get8(op & 7)
		cpu.set8((op>>3)&7, v)

	case op&0xC0 == 0x80: // ALU A, r
		v := cpu.get8(op & 7)
		switch (op >> 3) & 7 {
		case 0: // ADD
			cpu.A = cpu.flagsAdd(cpu.A, v, 0)
		case 2: // SUB
			cpu.A = cpu.flagsSub(cpu.A, v, 0)
		case 4: // AND
			cpu.A &= v
			cpu.flagsLogic(cpu.A)
			cpu.F |= FlagH
		case 5: // XOR
			cpu.A ^= v
			cpu.flagsLogic(cpu.A)
		case 6: // OR
			cpu.A |= v
			cpu.flagsLogic(cpu.A)
		case 7: // CP
			cpu.flagsSub(cpu.A, v, 0)
		default: // ADC/SBC are not used by the chess program
			return &ErrOpcode{Addr: at, Bytes: []byte{op}}
		}

	case op&0xC7 == 0x06: // LD r, n  (including LD (HL), n)
		cpu.set8((op>>3)&7, cpu.fetch())

	case op&0xC7 == 0x04: // INC r: Sign/Zero only, Carry untouched
		sel := (op >> 3) & 7
		v := cpu.get8(sel) + 1
		cpu.set8(sel, v)
		cpu.flagsSZ(v)

	case op&0xC7 == 0x05: // DEC r: Sign/Zero plus forced Negate
		sel := (op >> 3) & 7
		v := cpu.get8(sel) - 1
		cpu.set8(sel, v)
		cpu.flagsSZ(v)
		cpu.F |= FlagN

	case op&0xC7 == 0xC6: // ALU A, n
		v := cpu.fetch()
		switch (op >> 3) & 7 {
		case 0: // ADD
			cpu.A = cpu.flagsAdd(cpu.A, v, 0)
		case 2: // SUB
			cpu.A = cpu.flagsSub(cpu.A, v, 0)
		case 4: // AND
			cpu.A &= v
			cpu.flagsLogic(cpu.A)
			cpu.F |= FlagH
		case 5: // XOR
			cpu.A ^= v
			cpu.flagsLogic(cpu.A)
		case 6: // OR
			cpu.A |= v
			cpu.flagsLogic(cpu.A)
		case 7: // CP
			cpu.flagsSub(cpu.A, v, 0)
		default: // ADC/SBC are not used by the chess program
			return &ErrOpcode{Addr: at, Bytes: []byte{op}}
		}

	case op&0xC7 == 0xC7: // RST: single-byte call to a fixed vector
		cpu.Push(cpu.PC)
		cpu.PC = uint16(op & 0x38)

	case op&0xE7 == 0xC2: // JP cc, nn
		dest := cpu.fetchWord()
		if cpu.cond((op >> 3) & 3) {
			cpu.PC = dest
		}

	case op&0xE7 == 0x20: // JR cc, e
		disp := cpu.fetch()
		if cpu.cond((op >> 3) & 3) {
			cpu.PC = relative(cpu.PC, disp)
		}

	case op&0xE7 == 0xC4: // CALL cc, nn
		dest := cpu.fetchWord()
		if cpu.cond((op >> 3) & 3) {
			cpu.Push(cpu.PC)
			cpu.PC = dest
		}

	case op&0xE7 == 0xC0: // RET cc
		if cpu.cond((op >> 3) & 3) {
			cpu.PC = cpu.Pop()
		}

	default:
		return cpu.stepMisc(at, op)
	}

	return nil
}

// stepMisc handles the opcodes outside the regular selector blocks.
func (cpu *Cpu) stepMisc(at uint16, op uint8) error {
	switch op {
	// Accumulator loads through register pairs and direct addresses.
	case 0x0A: // LD A, (BC)
		cpu.A = cpu.Peek(cpu.BC())
	case 0x1A: // LD A, (DE)
		cpu.A = cpu.Peek(cpu.DE())
	case 0x12: // LD (DE), A
		cpu.Poke(cpu.DE(), cpu.A)
	case 0x3A: // LD A, (nn)
		cpu.A = cpu.Peek(cpu.fetchWord())
	case 0x32: // LD (nn), A
		cpu.Poke(cpu.fetchWord(), cpu.A)

	// 16-bit immediate loads.
	case 0x01: // LD BC, nn
		cpu.SetBC(cpu.fetchWord())
	case 0x11: // LD DE, nn
		cpu.SetDE(cpu.fetchWord())
	case 0x21: // LD HL, nn
		cpu.SetHL(cpu.fetchWord())
	case 0x31: // LD SP, nn
		cpu.SP = cpu.fetchWord()

	// HL loads/stores via direct address, and LD SP, HL.
	case 0x2A: // LD HL, (nn)
		cpu.SetHL(cpu.PeekWord(cpu.fetchWord()))
	case 0x22: // LD (nn), HL
		cpu.PokeWord(cpu.fetchWord(), cpu.HL())
	case 0xF9: // LD SP, HL
		cpu.SP = cpu.HL()

	// Stack.
	case 0xC5: // PUSH BC
		cpu.Push(cpu.BC())
	case 0xD5: // PUSH DE
		cpu.Push(cpu.DE())
	case 0xE5: // PUSH HL
		cpu.Push(cpu.HL())
	case 0xF5: // PUSH AF
		cpu.Push(uint16(cpu.A)<<8 | uint16(cpu.F))
	case 0xC1: // POP BC
		cpu.SetBC(cpu.Pop())
	case 0xD1: // POP DE
		cpu.SetDE(cpu.Pop())
	case 0xE1: // POP HL
		cpu.SetHL(cpu.Pop())
	case 0xF1: // POP AF
		v := cpu.Pop()
		cpu.A, cpu.F = uint8(v>>8), uint8(v)

	case 0xEB: // EX DE, HL
		cpu.D, cpu.H = cpu.H, cpu.D
		cpu.E, cpu.L = cpu.L, cpu.E

	// 16-bit adds into HL.
	case 0x09: // ADD HL, BC
		cpu.SetHL(cpu.add16(cpu.HL(), cpu.BC()))
	case 0x19: // ADD HL, DE
		cpu.SetHL(cpu.add16(cpu.HL(), cpu.DE()))
	case 0x29: // ADD HL, HL
		cpu.SetHL(cpu.add16(cpu.HL(), cpu.HL()))
	case 0x39: // ADD HL, SP
		cpu.SetHL(cpu.add16(cpu.HL(), cpu.SP))

	// 16-bit increments/decrements. No flag effect.
	case 0x03:
		cpu.SetBC(cpu.BC() + 1)
	case 0x13:
		cpu.SetDE(cpu.DE() + 1)
	case 0x23:
		cpu.SetHL(cpu.HL() + 1)
	case 0x33:
		cpu.SP++
	case 0x0B:
		cpu.SetBC(cpu.BC() - 1)
	case 0x1B:
		cpu.SetDE(cpu.DE() - 1)
	case 0x2B:
		cpu.SetHL(cpu.HL() - 1)
	case 0x3B:
		cpu.SP--

	// Accumulator rotates: only Carry changes beyond the rotation.
	case 0x07: // RLCA
		carry := cpu.A >> 7
		cpu.A = cpu.A<<1 | carry
		cpu.F = cpu.F&^(FlagC|FlagN|FlagH) | carry
	case 0x0F: // RRCA
		carry := cpu.A & 1
		cpu.A = cpu.A>>1 | carry<<7
		cpu.F = cpu.F&^(FlagC|FlagN|FlagH) | carry

	case 0xC3: // JP nn
		cpu.PC = cpu.fetchWord()
	case 0x18: // JR e
		cpu.PC = relative(cpu.PC, cpu.fetch())

	case 0x10: // DJNZ e
		disp := cpu.fetch()
		cpu.B--
		if cpu.B != 0 {
			cpu.PC = relative(cpu.PC, disp)
		}

	case 0xCD: // CALL nn
		dest := cpu.fetchWord()
		cpu.Push(cpu.PC)
		cpu.PC = dest
	case 0xC9: // RET
		cpu.PC = cpu.Pop()

	case 0x37: // SCF
		cpu.F = cpu.F&(FlagS|FlagZ|FlagP) | FlagC
	case 0x3F: // CCF
		cpu.F ^= FlagC
		cpu.F &^= FlagN
	case 0x2F: // CPL
		cpu.A = ^cpu.A
		cpu.F |= FlagN | FlagH

	case 0xCB:
		return cpu.stepCB(at)
	case 0xED:
		return cpu.stepED(at)
	case 0xDD:
		return cpu.stepDD(at)

	default:
		return &ErrOpcode{Addr: at, Bytes: []byte{op}}
	}

	return nil
}

// stepCB executes the bit-operations prefix family.
func (cpu *Cpu) stepCB(at uint16) error {
	op := cpu.fetch()
	sel := op & 7
	bit := uint8(1) << ((op >> 3) & 7)

	switch {
	case op&0xC0 == 0x40: // BIT b, r: Zero and forced H, Carry kept
		cpu.F = cpu.F&FlagC | FlagH
		if cpu.get8(sel)&bit == 0 {
			cpu.F |= FlagZ
		}

	case op&0xC0 == 0xC0: // SET b, r
		cpu.set8(sel, cpu.get8(sel)|bit)

	case op&0xC0 == 0x80: // RES b, r
		cpu.set8(sel, cpu.get8(sel)&^bit)

	case op&0xF8 == 0x38: // SRL r
		v := cpu.get8(sel)
		cpu.F = v & FlagC
		v >>= 1
		if v == 0 {
			cpu.F |= FlagZ
		}
		cpu.set8(sel, v)

	default:
		return &ErrOpcode{Addr: at, Bytes: []byte{0xCB, op}}
	}

	return nil
}

// stepED executes the extended prefix family.
func (cpu *Cpu) stepED(at uint16) error {
	op := cpu.fetch()

	switch op {
	case 0x44: // NEG
		cpu.A = cpu.flagsSub(0, cpu.A, 0)
	case 0x4B: // LD BC, (nn)
		cpu.SetBC(cpu.PeekWord(cpu.fetchWord()))
	case 0x5B: // LD DE, (nn)
		cpu.SetDE(cpu.PeekWord(cpu.fetchWord()))
	case 0x73: // LD (nn), SP
		cpu.PokeWord(cpu.fetchWord(), cpu.SP)
	case 0x7B: // LD SP, (nn)
		cpu.SP = cpu.PeekWord(cpu.fetchWord())
	default:
		return &ErrOpcode{Addr: at, Bytes: []byte{0xED, op}}
	}

	return nil
}

// stepDD executes the indexed (IX) prefix family.
func (cpu *Cpu) stepDD(at uint16) error {
	op := cpu.fetch()

	switch op {
	case 0x21: // LD IX, nn
		cpu.IX = cpu.fetchWord()
	case 0xE5: // PUSH IX
		cpu.Push(cpu.IX)
	case 0xE1: // POP IX
		cpu.IX = cpu.Pop()
	case 0x7E: // LD A, (IX+d)
		cpu.A = cpu.Peek(relative(cpu.IX, cpu.fetch()))
	case 0x46: // LD B, (IX+d)
		cpu.B = cpu.Peek(relative(cpu.IX, cpu.fetch()))
	case 0x4E: // LD C, (IX+d)
		cpu.C = cpu.Peek(relative(cpu.IX, cpu.fetch()))
	case 0x56: // LD D, (IX+d)
		cpu.D = cpu.Peek(relative(cpu.IX, cpu.fetch()))
	case 0x5E: // LD E, (IX+d)
		cpu.E = cpu.Peek(relative(cpu.IX, cpu.fetch()))
	case 0x19: // ADD IX, DE
		cpu.IX = cpu.add16(cpu.IX, cpu.DE())
	default:
		return &ErrOpcode{Addr: at, Bytes: []byte{0xDD, op}}
	}

	return nil
}
