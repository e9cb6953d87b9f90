package zx81

import (
	"bytes"
	"encoding/binary"
	"io"
)

// Tape is a .P tape image: a dump of memory from SysVarsBase to the
// end of the BASIC variables area. The machine code rides inside a
// two-line BASIC program, line 1 a REM statement holding the code and
// line 2 RAND USR 16514 to start it.
type Tape struct {
	Code []byte
}

// BASIC tokens used by the loader program.
const (
	tokenRem  = 0xEA
	tokenRand = 0xF9
	tokenUsr  = 0xD4
)

// sysVarsLen is the saved system variable block, 0x4009 to 0x407C.
const sysVarsLen = 116

// basicLine frames line content with the number (big-endian), the
// length including the trailing Newline (little-endian), and the
// Newline itself.
func basicLine(num uint16, content []byte) []byte {
	out := make([]byte, 0, len(content)+5)
	out = binary.BigEndian.AppendUint16(out, num)
	out = binary.LittleEndian.AppendUint16(out, uint16(len(content)+1))
	out = append(out, content...)
	return append(out, Newline)
}

// image builds the full tape byte stream.
func (tape *Tape) image() []byte {
	line1 := basicLine(1, append([]byte{tokenRem}, tape.Code...))

	// RAND USR 16514: the digits in display codes, then the number
	// marker and the 5-byte float encoding of 16514.
	line2 := basicLine(2, []byte{
		tokenRand, tokenUsr,
		0x1D, 0x22, 0x21, 0x1D, 0x20,
		0x7E, 0x00, 0x00, 0x00, 0x40, 0x82,
	})

	basicLen := len(line1) + len(line2)
	dFileAddr := uint16(BasicBase + basicLen)
	// Collapsed display file: one Newline per row plus a leading one.
	dFileLen := 25
	varsAddr := dFileAddr + uint16(dFileLen)
	eLineAddr := varsAddr + 1

	sys := make([]byte, sysVarsLen)
	put := func(addr uint16, val uint16) {
		binary.LittleEndian.PutUint16(sys[addr-SysVarsBase:], val)
	}
	put(DFile, dFileAddr)
	put(DFCC, dFileAddr+1)
	put(0x4010, varsAddr) // VARS
	put(0x4014, eLineAddr) // E_LINE
	put(0x4016, BasicBase) // CH_ADD
	put(0x401A, eLineAddr+1) // STKBOT
	put(0x401C, eLineAddr+1) // STKEND
	put(0x401F, 0x405D) // MEM, the calculator scratch area
	sys[0x4022-SysVarsBase] = 2 // DF_SZ, rows reserved for input
	put(LastK, NoKey)
	sys[0x4027-SysVarsBase] = 0xFF // DEBOUNCE
	sys[0x4028-SysVarsBase] = 55   // MARGIN, PAL timing
	put(0x4029, BasicBase) // NXTLIN
	put(0x4030, 0x0C8D)    // T_ADDR into the ROM syntax tables
	put(0x4034, 0xFFFF)    // FRAMES
	sys[0x4038-SysVarsBase] = 0xBC // PR_CC
	sys[0x4039-SysVarsBase] = 33   // S_POSN column
	sys[0x403A-SysVarsBase] = 24   // S_POSN line
	sys[CdFlag-SysVarsBase] = 0x40

	var img bytes.Buffer
	img.Write(sys)
	img.Write(line1)
	img.Write(line2)
	for range dFileLen {
		img.WriteByte(Newline)
	}
	img.WriteByte(0x80) // empty variables area terminator
	return img.Bytes()
}

// WriteTo writes the tape image to w.
func (tape *Tape) WriteTo(w io.Writer) (n int64, err error) {
	count, err := w.Write(tape.image())
	return int64(count), err
}

// ReadTape extracts the machine code from a .P image: the content of
// the line 1 REM statement, minus the REM token itself.
func ReadTape(r io.Reader) (tape *Tape, err error) {
	img, err := io.ReadAll(r)
	if err != nil {
		return
	}
	if len(img) < sysVarsLen+5 {
		err = ErrTapeShort
		return
	}
	lineLen := int(binary.LittleEndian.Uint16(img[sysVarsLen+2:]))
	if img[sysVarsLen+4] != tokenRem {
		err = ErrTapeRem
		return
	}
	// Content is the line length minus the REM token and Newline.
	end := sysVarsLen + 5 + lineLen - 2
	if lineLen < 2 || end > len(img) {
		err = ErrTapeShort
		return
	}
	tape = &Tape{
		Code: append([]byte{}, img[sysVarsLen+5:end]...),
	}
	return
}
