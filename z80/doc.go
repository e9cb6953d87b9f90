// Package z80 implements the Z80 processor model used to run the chess
// program under test.
//
// The CPU owns its full 64 KiB address space and the register file
// (AF, BC, DE, HL, SP, PC, IX, IY). Step executes exactly one
// instruction; only the instruction subset the chess program uses is
// decoded, and anything outside it is reported as an opcode error with
// the failing address and bytes. All address and register arithmetic
// wraps modulo the register width, matching the hardware.
//
// The package also provides a two-pass assembler for the same subset,
// used by the test suites to express scenario routines as source text
// rather than byte blobs.
package z80
