package zx81

import (
	"errors"

	"github.com/Cronan/zx81-chess/translate"
)

var f = translate.From

var (
	ErrTapeShort = errors.New(f("tape image truncated"))
	ErrTapeRem   = errors.New(f("tape image line 1 is not a REM statement"))
)
