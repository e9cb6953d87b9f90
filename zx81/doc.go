// Package zx81 models the ZX81 hardware environment around the CPU:
// the non-ASCII character set, the system variable area at the bottom
// of RAM, and the .P tape image format used to distribute programs as
// a BASIC REM statement.
package zx81
