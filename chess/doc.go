// Package chess knows the memory layout of the 1K chess program: the
// board array and engine cells inside the REM statement, the piece
// encoding, and how to locate the program's routines in a loaded
// binary, either from a manifest or by scanning for known byte
// patterns.
package chess
