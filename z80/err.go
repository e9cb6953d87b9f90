package z80

import (
	"errors"

	"github.com/Cronan/zx81-chess/translate"
)

var f = translate.From

var (
	// Assembler errors
	ErrEquateSyntax    = errors.New(f(".equ syntax"))
	ErrEquateDuplicate = errors.New(f(".equ duplicated"))
	ErrLabelDuplicate  = errors.New(f("label duplicated"))
	ErrOperandCount    = errors.New(f("operand count"))
	ErrOrgSyntax       = errors.New(f("org syntax"))
	ErrRangeByte       = errors.New(f("value exceeds a byte"))
	ErrRangeDisp       = errors.New(f("displacement out of range"))
)

// ErrOpcode reports an instruction the decoder does not implement. The
// address is that of the first byte of the instruction.
type ErrOpcode struct {
	Addr  uint16
	Bytes []byte
}

func (eo *ErrOpcode) Error() string {
	if len(eo.Bytes) > 1 {
		return f("unimplemented instruction %02X %02X at %04X", eo.Bytes[0], eo.Bytes[1], eo.Addr)
	}
	return f("unimplemented instruction %02X at %04X", eo.Bytes[0], eo.Addr)
}

func (eo *ErrOpcode) Is(err error) (ok bool) {
	_, ok = err.(*ErrOpcode)
	return
}

type ErrLabelMissing string

func (el ErrLabelMissing) Error() string {
	return f("label %v missing", string(el))
}

type ErrParseNumber string

func (err ErrParseNumber) Error() string {
	return f("'%v' is not a number", string(err))
}

type ErrParseExpression string

func (err ErrParseExpression) Error() string {
	return f("$(%v) is not a valid expression", string(err))
}

type ErrMnemonic string

func (err ErrMnemonic) Error() string {
	return f("'%v' is not an instruction", string(err))
}

type ErrOperand string

func (err ErrOperand) Error() string {
	return f("'%v' is not a valid operand", string(err))
}

// ErrSyntax wraps an assembler error with its source location.
type ErrSyntax struct {
	LineNo int
	Line   string
	Err    error
}

func (err ErrSyntax) Error() string {
	return f("line %d '%v' %v", err.LineNo, err.Line, err.Err)
}

func (err ErrSyntax) Unwrap() error {
	return err.Err
}
