package chess

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Cronan/zx81-chess/emulator"
	"github.com/Cronan/zx81-chess/z80"
)

// Scenario routines exercise the harness end to end the way the chess
// program's own routines are driven: assembled into RAM above the data
// area, called with a pushed sentinel, and inspected through the
// engine's memory cells.

// newScenario assembles a routine with the program's equates
// predefined and loads it into a fresh emulator.
func newScenario(t *testing.T, source string) (emu *emulator.Emulator, prog *z80.Program) {
	t.Helper()

	asm := &z80.Assembler{}
	asm.Predefine("BOARD", "0x4082")
	asm.Predefine("MOVEFROM", "0x40C3")
	asm.Predefine("BESTFROM", "0x40C5")
	asm.Predefine("BESTTO", "0x40C6")
	asm.Predefine("BESTSCORE", "0x40C7")
	asm.Predefine("LASTK", "0x4025")

	prog, err := asm.Parse(strings.NewReader(source))
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}

	emu = emulator.NewEmulator()
	prog.LoadInto(emu.Cpu)
	return
}

// callRoutine runs one routine to completion against the sentinel.
func callRoutine(t *testing.T, emu *emulator.Emulator, addr uint16) {
	t.Helper()

	emu.Push(emulator.AddrSentinel)
	outcome, err := emu.Run(addr)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if outcome != emulator.Returned {
		t.Fatalf("routine did not return: %v", outcome)
	}
}

const initRoutine = `
	org 0x4100
init:	ld hl, BOARD
	ld de, back
	ld b, 8
wback:	ld a, (de)
	ld (hl), a
	inc hl
	inc de
	djnz wback
	ld b, 8
wpawn:	ld (hl), 1
	inc hl
	djnz wpawn
	ld b, 32
mid:	ld (hl), 0
	inc hl
	djnz mid
	ld b, 8
bpawn:	ld (hl), 9
	inc hl
	djnz bpawn
	ld de, back
	ld b, 8
bback:	ld a, (de)
	or 8
	ld (hl), a
	inc hl
	inc de
	djnz bback
	ret
back:	db 4, 2, 3, 5, 6, 3, 2, 4
`

func TestScenarioBoardInit(t *testing.T) {
	assert := assert.New(t)

	emu, prog := newScenario(t, initRoutine)

	// Start from a scribbled board to prove every cell is written.
	for sq := uint8(0); sq < 64; sq++ {
		SetPiece(emu.Cpu, sq, 0x5A)
	}

	callRoutine(t, emu, prog.Label["init"])

	board := ReadBoard(emu.Cpu)

	backRank := []uint8{WRook, WKnight, WBishop, WQueen, WKing, WBishop, WKnight, WRook}
	for file, want := range backRank {
		assert.Equal(want, board[file], "white back rank file %d", file)
		assert.Equal(want|BlackBit, board[56+file], "black back rank file %d", file)
	}
	for sq := 8; sq < 16; sq++ {
		assert.Equal(WPawn, board[sq], "white pawn on %d", sq)
	}
	for sq := 16; sq < 48; sq++ {
		assert.Equal(Empty, board[sq], "empty square %d", sq)
	}
	for sq := 48; sq < 56; sq++ {
		assert.Equal(BPawn, board[sq], "black pawn on %d", sq)
	}
}

// captureRoutine scans the whole board for white pieces on the moving
// piece's rank or file and records the most valuable one, the way the
// engine's rook rays resolve a capture choice.
const captureRoutine = `
	org 0x4100
think:	ld a, (MOVEFROM)
	ld d, a
	ld e, 0
	xor a
	ld (BESTSCORE), a
scan:	ld hl, BOARD
	ld a, e
	ld c, a
	ld b, 0
	add hl, bc
	ld a, (hl)
	or a
	jr z, next
	bit 3, a
	jr nz, next
	ld a, e
	and 7
	ld b, a
	ld a, d
	and 7
	cp b
	jr z, cand
	ld a, e
	srl a
	srl a
	srl a
	ld b, a
	ld a, d
	srl a
	srl a
	srl a
	cp b
	jr nz, next
cand:	ld a, (hl)
	and 7
	ld c, a
	ld b, 0
	ld hl, vals
	add hl, bc
	ld a, (hl)
	ld hl, BESTSCORE
	cp (hl)
	jr c, next
	jr z, next
	ld (hl), a
	ld a, d
	ld (BESTFROM), a
	ld a, e
	ld (BESTTO), a
next:	ld a, e
	inc a
	ld e, a
	cp 64
	jr nz, scan
	ret
vals:	db 0, 1, 3, 3, 5, 9, 50
`

func TestScenarioCaptureSelection(t *testing.T) {
	assert := assert.New(t)

	emu, prog := newScenario(t, captureRoutine)

	// Black rook on d4, white queen on d1 and white rook on h4: two
	// captures on the rook's lines, different values.
	from := Square('d', 4)
	SetPiece(emu.Cpu, from, BRook)
	SetPiece(emu.Cpu, Square('d', 1), WQueen)
	SetPiece(emu.Cpu, Square('h', 4), WRook)
	emu.Poke(MoveFrom, from)

	callRoutine(t, emu, prog.Label["think"])

	assert.Equal(from, emu.Peek(BestFrom))
	assert.Equal(Square('d', 1), emu.Peek(BestTo), "queen outvalues rook")
	assert.Equal(uint8(9), emu.Peek(BestScore))
}

func TestScenarioCaptureSingleTarget(t *testing.T) {
	assert := assert.New(t)

	emu, prog := newScenario(t, captureRoutine)

	from := Square('d', 4)
	SetPiece(emu.Cpu, from, BRook)
	SetPiece(emu.Cpu, Square('h', 4), WRook)
	emu.Poke(MoveFrom, from)

	callRoutine(t, emu, prog.Label["think"])

	assert.Equal(Square('h', 4), emu.Peek(BestTo))
	assert.Equal(uint8(5), emu.Peek(BestScore))
}

// decodeRoutine reads a file letter and a rank digit from the
// keyboard, one key per frame, and stores file + rank*8.
const decodeRoutine = `
	org 0x4100
decode:	halt
	ld a, (LASTK)
	sub 0x26
	ld b, a
	halt
	ld a, (LASTK)
	sub 0x1D
	rlca
	rlca
	rlca
	add a, b
	ld (MOVEFROM), a
	ret
`

func TestScenarioKeyToSquare(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name string
		keys string
		sq   uint8
	}){
		{"e2", "E2", Square('e', 2)},
		{"a1", "A1", Square('a', 1)},
		{"h8", "H8", Square('h', 8)},
		{"d4", "D4", Square('d', 4)},
	}

	for _, entry := range table {
		emu, prog := newScenario(t, decodeRoutine)
		emu.Type(entry.keys)

		callRoutine(t, emu, prog.Label["decode"])

		assert.Equal(entry.sq, emu.Peek(MoveFrom), entry.name)
	}
}

func TestScenarioHaltTermination(t *testing.T) {
	assert := assert.New(t)

	// The input loop drains its queue and then parks on HALT. With
	// the drain policy the run ends long before the cycle budget.
	emu, prog := newScenario(t, `
		org 0x4100
loop:	halt
	ld a, (LASTK)
	cp 0xFF
	jr z, loop
	jr loop
	`)
	emu.Type("E2")
	emu.IdleStop = true
	emu.MaxCycles = 100000

	outcome, err := emu.Run(prog.Origin)
	assert.NoError(err)
	assert.Equal(emulator.Idle, outcome)
	assert.Less(emu.Cycles, 100)

	// Without the policy the same program runs to the limit.
	emu, prog = newScenario(t, `
		org 0x4100
loop:	halt
	jr loop
	`)
	emu.MaxCycles = 5000
	outcome, err = emu.Run(prog.Origin)
	assert.NoError(err)
	assert.Equal(emulator.CycleLimit, outcome)
}
