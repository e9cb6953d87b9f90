package chess

import (
	"strings"

	"github.com/Cronan/zx81-chess/z80"
	"github.com/Cronan/zx81-chess/zx81"
)

// Addresses of the program's data cells inside the REM statement.
const (
	BoardBase = zx81.ProgramBase // 64-byte board, a1 first, rank by rank
	Cursor    = 0x40C2
	MoveFrom  = 0x40C3
	MoveTo    = 0x40C4
	BestFrom  = 0x40C5 // engine's chosen source square
	BestTo    = 0x40C6 // engine's chosen target square
	BestScore = 0x40C7 // value of the chosen move
	Side      = 0x40C8 // 0 white to move, BlackBit black
)

// Piece codes: type in the low 3 bits, BlackBit marks black.
const (
	Empty    uint8 = 0
	WPawn    uint8 = 1
	WKnight  uint8 = 2
	WBishop  uint8 = 3
	WRook    uint8 = 4
	WQueen   uint8 = 5
	WKing    uint8 = 6
	BlackBit uint8 = 8
	BPawn    uint8 = BlackBit | WPawn
	BKnight  uint8 = BlackBit | WKnight
	BBishop  uint8 = BlackBit | WBishop
	BRook    uint8 = BlackBit | WRook
	BQueen   uint8 = BlackBit | WQueen
	BKing    uint8 = BlackBit | WKing
)

// Square converts algebraic coordinates to a board index, a1 = 0,
// h8 = 63.
func Square(file rune, rank int) uint8 {
	return uint8(rank-1)*8 + uint8(file-'a')
}

// pieceRunes indexes piece type; black pieces render lowercase.
var pieceRunes = []rune(".PNBRQK")

// PieceRune returns the single-character rendering of a piece code,
// '?' for values outside the encoding.
func PieceRune(piece uint8) rune {
	ptype := piece & 0x07
	if int(ptype) >= len(pieceRunes) {
		return '?'
	}
	ch := pieceRunes[ptype]
	if piece&BlackBit != 0 && ch != '.' {
		ch += 'a' - 'A'
	}
	return ch
}

// Board is a snapshot of the 64 board bytes, a1 first.
type Board [64]uint8

// ReadBoard snapshots the board from CPU memory.
func ReadBoard(cpu *z80.Cpu) (board Board) {
	for sq := range board {
		board[sq] = cpu.Peek(BoardBase + uint16(sq))
	}
	return
}

// SetPiece places a piece directly into the board memory.
func SetPiece(cpu *z80.Cpu, square uint8, piece uint8) {
	cpu.Poke(BoardBase+uint16(square), piece)
}

// Piece reads the piece on a square from board memory.
func Piece(cpu *z80.Cpu, square uint8) uint8 {
	return cpu.Peek(BoardBase + uint16(square))
}

// ClearBoard empties every square in board memory.
func ClearBoard(cpu *z80.Cpu) {
	for sq := range uint16(64) {
		cpu.Poke(BoardBase+sq, Empty)
	}
}

// String renders the board as a bordered grid, rank 8 at the top.
func (board Board) String() string {
	var sb strings.Builder
	rule := "  +-+-+-+-+-+-+-+-+\n"
	sb.WriteString(rule)
	for rank := 7; rank >= 0; rank-- {
		sb.WriteByte(' ')
		sb.WriteByte(byte('1' + rank))
		sb.WriteByte('|')
		for file := 0; file < 8; file++ {
			sb.WriteRune(PieceRune(board[rank*8+file]))
			sb.WriteByte('|')
		}
		sb.WriteByte('\n')
		sb.WriteString(rule)
	}
	sb.WriteString("   A B C D E F G H\n")
	return sb.String()
}
