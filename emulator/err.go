package emulator

import (
	"github.com/Cronan/zx81-chess/translate"
)

var f = translate.From

// ErrRuntime wraps an execution error with the cycle count it
// happened at.
type ErrRuntime struct {
	Cycles int
	Err    error
}

func (err *ErrRuntime) Error() string {
	return f("cycle %d %v", err.Cycles, err.Err)
}

func (err *ErrRuntime) Unwrap() error {
	return err.Err
}
