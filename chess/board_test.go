package chess

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Cronan/zx81-chess/z80"
)

func TestSquare(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name string
		file rune
		rank int
		sq   uint8
	}){
		{"a1", 'a', 1, 0},
		{"h1", 'h', 1, 7},
		{"a2", 'a', 2, 8},
		{"d4", 'd', 4, 27},
		{"e2", 'e', 2, 12},
		{"h8", 'h', 8, 63},
	}

	for _, entry := range table {
		assert.Equal(entry.sq, Square(entry.file, entry.rank), entry.name)
	}
}

func TestPieceRune(t *testing.T) {
	assert := assert.New(t)

	assert.Equal('.', PieceRune(Empty))
	assert.Equal('P', PieceRune(WPawn))
	assert.Equal('K', PieceRune(WKing))
	assert.Equal('p', PieceRune(BPawn))
	assert.Equal('q', PieceRune(BQueen))
	assert.Equal('?', PieceRune(0x07))
}

func TestBoardMemoryHelpers(t *testing.T) {
	assert := assert.New(t)

	cpu := z80.NewCpu()
	SetPiece(cpu, Square('e', 4), WPawn)
	SetPiece(cpu, Square('d', 5), BQueen)

	assert.Equal(WPawn, Piece(cpu, Square('e', 4)))
	assert.Equal(uint8(WPawn), cpu.Peek(BoardBase+28))

	board := ReadBoard(cpu)
	assert.Equal(BQueen, board[Square('d', 5)])

	ClearBoard(cpu)
	board = ReadBoard(cpu)
	assert.Equal(Board{}, board)
}

func TestBoardString(t *testing.T) {
	assert := assert.New(t)

	var board Board
	board[Square('e', 2)] = WPawn
	board[Square('d', 8)] = BQueen

	text := board.String()
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")

	// 8 ranks with rules above and below, plus the file footer.
	assert.Len(lines, 18)
	assert.Equal(" 8|.|.|.|q|.|.|.|.|", lines[1])
	assert.Equal(" 2|.|.|.|.|P|.|.|.|", lines[13])
	assert.Equal("   A B C D E F G H", lines[17])
}
