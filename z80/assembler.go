package z80

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"regexp"
	"strconv"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Program is the output of the assembler: machine code plus the origin
// to load it at and every resolved label address.
type Program struct {
	Origin uint16
	Code   []byte
	Label  map[string]uint16
}

// LoadInto copies the program into CPU memory at its origin.
func (prog *Program) LoadInto(cpu *Cpu) {
	cpu.Load(prog.Code, prog.Origin)
}

// Assembler translates the Z80 subset from mnemonic source text into
// machine code. Forward references are emitted as fixups and resolved
// once the whole input has been read.
type Assembler struct {
	Verbose bool   // If set, verbosely logs the assembler actions.
	Code    []byte // Generated machine code.

	org       uint16
	orgFixed  bool // org may not change once code has been emitted
	predefine map[string]string
	Label     map[string]uint16 // Map of labels to addresses.
	Equate    map[string]string // Map of equates.

	fixups []fixup
}

// fixup records an unresolved label operand: either a little-endian
// word, or a signed byte displacement from the following address.
type fixup struct {
	Offset   int
	Label    string
	Relative bool
	LineNo   int
	Line     string
}

// Predefine defines an equate before parsing begins.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

// reg8Map is the 3-bit operand selector for the 8-bit registers.
var reg8Map = map[string]uint8{
	"b": 0, "c": 1, "d": 2, "e": 3, "h": 4, "l": 5, "(hl)": 6, "a": 7,
}

// pairMap selects register pairs for 16-bit loads, inc/dec, and ADD HL.
var pairMap = map[string]uint8{
	"bc": 0, "de": 1, "hl": 2, "sp": 3,
}

// stackMap selects register pairs for PUSH and POP.
var stackMap = map[string]uint8{
	"bc": 0, "de": 1, "hl": 2, "af": 3,
}

// condMap selects the flag condition for jumps, calls, and returns.
var condMap = map[string]uint8{
	"nz": 0, "z": 1, "nc": 2, "c": 3,
}

// aluMap gives the register-form base opcode for each single-operand
// accumulator instruction; the immediate form is base|0x46.
var aluMap = map[string]uint8{
	"add": 0x80, "sub": 0x90, "and": 0xA0, "xor": 0xA8, "or": 0xB0, "cp": 0xB8,
}

// valueOf resolves a word to an integer: equates first, then numeric
// literals in any base strconv accepts.
func (asm *Assembler) valueOf(word string) (value uint16, err error) {
	if equ, ok := asm.Equate[word]; ok {
		word = equ
	}
	v64, err := strconv.ParseInt(word, 0, 32)
	if err != nil {
		err = ErrParseNumber(word)
		return
	}
	if v64 < -0x8000 || v64 > 0xFFFF {
		err = ErrParseNumber(word)
		return
	}
	value = uint16(v64)
	return
}

// byteOf resolves a word to a single byte, accepting -128..255.
func (asm *Assembler) byteOf(word string) (value uint8, err error) {
	v, err := asm.valueOf(word)
	if err != nil {
		return
	}
	if v > 0xFF && v < 0xFF80 {
		err = ErrRangeByte
		return
	}
	value = uint8(v)
	return
}

// parenEval does compile-time $(...) evaluations.
func (asm *Assembler) parenEval(expr string) (value uint16, err error) {
	thread := starlark.Thread{}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, str := range asm.Equate {
		var value16 uint16
		value16, err = asm.valueOf(str)
		if err != nil {
			// Ignore non-integer equates.
			err = nil
			continue
		}
		pred[key] = starlark.MakeInt(int(value16))
	}
	for key, addr := range asm.Label {
		pred[key] = starlark.MakeInt(int(addr))
	}
	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		return
	}
	st_rc, ok := dict["rc"]
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int, ok := st_rc.(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int64, ok := st_int.Int64()
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	value = uint16(st_int64)
	return
}

// here is the address the next emitted byte will occupy.
func (asm *Assembler) here() uint16 {
	return asm.org + uint16(len(asm.Code))
}

func (asm *Assembler) emit(bytes ...uint8) {
	asm.orgFixed = true
	asm.Code = append(asm.Code, bytes...)
}

func (asm *Assembler) emitWord(val uint16) {
	asm.emit(uint8(val), uint8(val>>8))
}

// emitAddr emits a 16-bit operand that may be a label reference.
func (asm *Assembler) emitAddr(word string, lineno int, line string) (err error) {
	value, verr := asm.valueOf(word)
	if verr == nil {
		asm.emitWord(value)
		return
	}
	asm.fixups = append(asm.fixups, fixup{
		Offset: len(asm.Code), Label: word, LineNo: lineno, Line: line,
	})
	asm.emitWord(0)
	return
}

// emitDisp emits an 8-bit jump displacement toward a label or address.
func (asm *Assembler) emitDisp(word string, lineno int, line string) (err error) {
	target, verr := asm.valueOf(word)
	if verr == nil {
		return asm.patchDisp(len(asm.Code), target, func() { asm.emit(0) })
	}
	asm.fixups = append(asm.fixups, fixup{
		Offset: len(asm.Code), Label: word, Relative: true, LineNo: lineno, Line: line,
	})
	asm.emit(0)
	return
}

// patchDisp computes the signed displacement from the byte after the
// operand to target, checks its range, and writes it via put.
func (asm *Assembler) patchDisp(offset int, target uint16, put func()) (err error) {
	next := asm.org + uint16(offset) + 1
	disp := int32(target) - int32(next)
	if disp < -128 || disp > 127 {
		err = ErrRangeDisp
		return
	}
	if put != nil {
		put()
	}
	asm.Code[offset] = uint8(disp)
	return
}

// Parse assembles an input stream into a Program.
func (asm *Assembler) Parse(input io.Reader) (prog *Program, err error) {
	scanner := bufio.NewScanner(input)

	var line string
	var lineno int

	defer func() {
		if err != nil {
			err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	asm.Code = asm.Code[:0]
	asm.fixups = asm.fixups[:0]
	asm.org = 0
	asm.orgFixed = false
	asm.Label = make(map[string]uint16, 16)
	asm.Equate = make(map[string]string, 16)
	// Source lines are lowercased before parsing, so equate keys
	// live in lowercase too.
	for attr, val := range asm.predefine {
		asm.Equate[strings.ToLower(attr)] = val
	}

	charRe := regexp.MustCompile(`'\\?[^']'`)
	parenRe := regexp.MustCompile(`\$\([^\$]*\)`)

	for scanner.Scan() {
		text := scanner.Text()
		lineno += 1

		if asm.Verbose {
			log.Printf("%v: %v\n", lineno, text)
		}

		line = strings.TrimSpace(strings.Split(text, ";")[0])
		if len(line) == 0 {
			continue
		}

		// Do 'x' evaluations before the line is lowercased, so
		// 'A' and 'a' keep their distinct codes.
		line = charRe.ReplaceAllStringFunc(line, func(word string) string {
			str := word[1 : len(word)-1]
			if str[0] == '\\' {
				str = str[1:]
				switch str {
				case "\\":
					str = "\\"
				case "n":
					str = "\n"
				case "r":
					str = "\r"
				case "e":
					str = "\033"
				default:
					return word
				}
			} else if len(str) != 1 {
				return word
			}
			return fmt.Sprintf("%v", str[0])
		})

		// Do $() evaluations
		line = parenRe.ReplaceAllStringFunc(line, func(str string) string {
			value, _err := asm.parenEval(str[2 : len(str)-1])
			if _err != nil {
				err = _err
			}
			return fmt.Sprintf("%#v", value)
		})
		if err != nil {
			return
		}

		err = asm.parseLine(strings.Fields(strings.ToLower(line)), lineno, line)
		if err != nil {
			return
		}
	}

	// Final linking of label references.
	for _, fix := range asm.fixups {
		addr, ok := asm.Label[fix.Label]
		if !ok {
			lineno, line = fix.LineNo, fix.Line
			err = ErrLabelMissing(fix.Label)
			return
		}
		if fix.Relative {
			err = asm.patchDisp(fix.Offset, addr, nil)
			if err != nil {
				lineno, line = fix.LineNo, fix.Line
				return
			}
			continue
		}
		asm.Code[fix.Offset] = uint8(addr)
		asm.Code[fix.Offset+1] = uint8(addr >> 8)
	}

	prog = &Program{
		Origin: asm.org,
		Code:   append([]byte{}, asm.Code...),
		Label:  asm.Label,
	}

	return
}

// parseLine handles labels and directives, then hands the mnemonic and
// its comma-separated operands to parseInstruction.
func (asm *Assembler) parseLine(words []string, lineno int, line string) (err error) {
	for len(words) > 0 && strings.HasSuffix(words[0], ":") {
		label := words[0][:len(words[0])-1]
		if _, ok := asm.Label[label]; ok {
			err = ErrLabelDuplicate
			return
		}
		asm.Label[label] = asm.here()
		words = words[1:]
	}

	if len(words) == 0 {
		return
	}

	switch words[0] {
	case ".equ":
		if len(words) != 3 {
			err = ErrEquateSyntax
			return
		}
		if _, ok := asm.Equate[words[1]]; ok {
			err = ErrEquateDuplicate
			return
		}
		asm.Equate[words[1]] = words[2]
		return
	case "org":
		if len(words) != 2 || asm.orgFixed {
			err = ErrOrgSyntax
			return
		}
		asm.org, err = asm.valueOf(words[1])
		return
	}

	// Operands may contain spaces, as in "(ix + 4)". Rejoin and
	// resplit on commas.
	var args []string
	if len(words) > 1 {
		joined := strings.ReplaceAll(strings.Join(words[1:], ""), " ", "")
		args = strings.Split(joined, ",")
	}

	return asm.parseInstruction(words[0], args, lineno, line)
}

// parseInstruction encodes one mnemonic.
func (asm *Assembler) parseInstruction(mnem string, args []string, lineno int, line string) (err error) {
	want := func(n int) bool {
		if len(args) != n {
			err = ErrOperandCount
			return false
		}
		return true
	}

	switch mnem {
	case "nop":
		if want(0) {
			asm.emit(0x00)
		}
	case "halt":
		if want(0) {
			asm.emit(0x76)
		}

	case "ld":
		if want(2) {
			err = asm.encodeLoad(args[0], args[1], lineno, line)
		}

	case "add":
		if !want(2) {
			return
		}
		switch {
		case args[0] == "a":
			err = asm.encodeAlu(0x80, args[1])
		case args[0] == "hl":
			p, ok := pairMap[args[1]]
			if !ok {
				err = ErrOperand(args[1])
				return
			}
			asm.emit(0x09 | p<<4)
		case args[0] == "ix" && args[1] == "de":
			asm.emit(0xDD, 0x19)
		default:
			err = ErrOperand(args[0])
		}

	case "sub", "and", "xor", "or", "cp":
		// Accept both "cp b" and the redundant "cp a, b" spelling.
		if len(args) == 2 && args[0] == "a" {
			args = args[1:]
		}
		if want(1) {
			err = asm.encodeAlu(aluMap[mnem], args[0])
		}

	case "inc", "dec":
		if !want(1) {
			return
		}
		base, base16 := uint8(0x04), uint8(0x03)
		if mnem == "dec" {
			base, base16 = 0x05, 0x0B
		}
		if r, ok := reg8Map[args[0]]; ok {
			asm.emit(base | r<<3)
		} else if p, ok := pairMap[args[0]]; ok {
			asm.emit(base16 | p<<4)
		} else {
			err = ErrOperand(args[0])
		}

	case "push", "pop":
		if !want(1) {
			return
		}
		base := uint8(0xC5)
		if mnem == "pop" {
			base = 0xC1
		}
		if args[0] == "ix" {
			asm.emit(0xDD, base|0x20)
		} else if p, ok := stackMap[args[0]]; ok {
			asm.emit(base | p<<4)
		} else {
			err = ErrOperand(args[0])
		}

	case "ex":
		if want(2) {
			if args[0] != "de" || args[1] != "hl" {
				err = ErrOperand(strings.Join(args, ","))
				return
			}
			asm.emit(0xEB)
		}

	case "rlca":
		if want(0) {
			asm.emit(0x07)
		}
	case "rrca":
		if want(0) {
			asm.emit(0x0F)
		}
	case "cpl":
		if want(0) {
			asm.emit(0x2F)
		}
	case "scf":
		if want(0) {
			asm.emit(0x37)
		}
	case "ccf":
		if want(0) {
			asm.emit(0x3F)
		}
	case "neg":
		if want(0) {
			asm.emit(0xED, 0x44)
		}

	case "jp":
		switch len(args) {
		case 1:
			asm.emit(0xC3)
			err = asm.emitAddr(args[0], lineno, line)
		case 2:
			cc, ok := condMap[args[0]]
			if !ok {
				err = ErrOperand(args[0])
				return
			}
			asm.emit(0xC2 | cc<<3)
			err = asm.emitAddr(args[1], lineno, line)
		default:
			err = ErrOperandCount
		}

	case "jr":
		switch len(args) {
		case 1:
			asm.emit(0x18)
			err = asm.emitDisp(args[0], lineno, line)
		case 2:
			cc, ok := condMap[args[0]]
			if !ok {
				err = ErrOperand(args[0])
				return
			}
			asm.emit(0x20 | cc<<3)
			err = asm.emitDisp(args[1], lineno, line)
		default:
			err = ErrOperandCount
		}

	case "djnz":
		if want(1) {
			asm.emit(0x10)
			err = asm.emitDisp(args[0], lineno, line)
		}

	case "call":
		switch len(args) {
		case 1:
			asm.emit(0xCD)
			err = asm.emitAddr(args[0], lineno, line)
		case 2:
			cc, ok := condMap[args[0]]
			if !ok {
				err = ErrOperand(args[0])
				return
			}
			asm.emit(0xC4 | cc<<3)
			err = asm.emitAddr(args[1], lineno, line)
		default:
			err = ErrOperandCount
		}

	case "ret":
		switch len(args) {
		case 0:
			asm.emit(0xC9)
		case 1:
			cc, ok := condMap[args[0]]
			if !ok {
				err = ErrOperand(args[0])
				return
			}
			asm.emit(0xC0 | cc<<3)
		default:
			err = ErrOperandCount
		}

	case "rst":
		if !want(1) {
			return
		}
		var vector uint16
		vector, err = asm.valueOf(args[0])
		if err != nil {
			return
		}
		if vector&^0x38 != 0 {
			err = ErrOperand(args[0])
			return
		}
		asm.emit(0xC7 | uint8(vector))

	case "bit", "res", "set":
		if !want(2) {
			return
		}
		base := map[string]uint8{"bit": 0x40, "res": 0x80, "set": 0xC0}[mnem]
		var b uint8
		b, err = asm.byteOf(args[0])
		if err != nil {
			return
		}
		r, ok := reg8Map[args[1]]
		if b > 7 || !ok {
			err = ErrOperand(strings.Join(args, ","))
			return
		}
		asm.emit(0xCB, base|b<<3|r)

	case "srl":
		if !want(1) {
			return
		}
		r, ok := reg8Map[args[0]]
		if !ok {
			err = ErrOperand(args[0])
			return
		}
		asm.emit(0xCB, 0x38|r)

	case "db":
		if len(args) == 0 {
			err = ErrOperandCount
			return
		}
		for _, arg := range args {
			var b uint8
			b, err = asm.byteOf(arg)
			if err != nil {
				return
			}
			asm.emit(b)
		}

	case "dw":
		if len(args) == 0 {
			err = ErrOperandCount
			return
		}
		for _, arg := range args {
			err = asm.emitAddr(arg, lineno, line)
			if err != nil {
				return
			}
		}

	case "ds":
		var count uint16
		var fill uint8
		switch len(args) {
		case 2:
			fill, err = asm.byteOf(args[1])
			if err != nil {
				return
			}
			fallthrough
		case 1:
			count, err = asm.valueOf(args[0])
			if err != nil {
				return
			}
		default:
			err = ErrOperandCount
			return
		}
		for range count {
			asm.emit(fill)
		}

	default:
		err = ErrMnemonic(mnem)
	}

	return
}

// encodeAlu encodes an accumulator operation with a register, (HL),
// or immediate source. The immediate form is the register base |0x46.
func (asm *Assembler) encodeAlu(base uint8, src string) (err error) {
	if r, ok := reg8Map[src]; ok {
		asm.emit(base | r)
		return
	}
	var b uint8
	b, err = asm.byteOf(src)
	if err != nil {
		return
	}
	asm.emit(base|0x46, b)
	return
}

// encodeLoad encodes the LD forms in the subset.
func (asm *Assembler) encodeLoad(dst, src string, lineno int, line string) (err error) {
	ixRe := regexp.MustCompile(`^\(ix\+([^)]+)\)$`)

	if d, ok := reg8Map[dst]; ok {
		if s, ok := reg8Map[src]; ok {
			if d == selIndirectHL && s == selIndirectHL {
				return ErrOperand(src)
			}
			asm.emit(0x40 | d<<3 | s)
			return
		}
		if m := ixRe.FindStringSubmatch(src); m != nil {
			// Only A, B, C, D, E have indexed load forms here.
			if d >= 4 && d != 7 {
				return ErrOperand(dst)
			}
			var disp uint8
			disp, err = asm.byteOf(m[1])
			if err != nil {
				return
			}
			asm.emit(0xDD, 0x46|d<<3, disp)
			return
		}
		switch {
		case src == "(bc)" && dst == "a":
			asm.emit(0x0A)
			return
		case src == "(de)" && dst == "a":
			asm.emit(0x1A)
			return
		case strings.HasPrefix(src, "(") && dst == "a":
			asm.emit(0x3A)
			return asm.emitAddr(src[1:len(src)-1], lineno, line)
		}
		asm.emit(0x06 | d<<3)
		var b uint8
		b, err = asm.byteOf(src)
		if err != nil {
			return
		}
		asm.emit(b)
		return
	}

	if p, ok := pairMap[dst]; ok {
		if strings.HasPrefix(src, "(") {
			inner := src[1 : len(src)-1]
			switch dst {
			case "hl":
				asm.emit(0x2A)
			case "bc":
				asm.emit(0xED, 0x4B)
			case "de":
				asm.emit(0xED, 0x5B)
			case "sp":
				asm.emit(0xED, 0x7B)
			}
			return asm.emitAddr(inner, lineno, line)
		}
		if dst == "sp" && src == "hl" {
			asm.emit(0xF9)
			return
		}
		asm.emit(0x01 | p<<4)
		return asm.emitAddr(src, lineno, line)
	}

	if dst == "ix" {
		asm.emit(0xDD, 0x21)
		return asm.emitAddr(src, lineno, line)
	}

	if dst == "(de)" && src == "a" {
		asm.emit(0x12)
		return
	}

	if strings.HasPrefix(dst, "(") && strings.HasSuffix(dst, ")") {
		inner := dst[1 : len(dst)-1]
		switch src {
		case "a":
			asm.emit(0x32)
		case "hl":
			asm.emit(0x22)
		case "sp":
			asm.emit(0xED, 0x73)
		default:
			return ErrOperand(src)
		}
		return asm.emitAddr(inner, lineno, line)
	}

	return ErrOperand(dst)
}

// Assemble is a convenience wrapper that parses source text with a
// fresh Assembler.
func Assemble(source string) (prog *Program, err error) {
	asm := &Assembler{}
	return asm.Parse(strings.NewReader(source))
}
