package chess

import (
	"github.com/BurntSushi/toml"
)

// Manifest describes a program binary under test: where to find it,
// where it loads, and the addresses of its named routines. It saves
// the CLI from pattern-scanning when the build's addresses are known.
type Manifest struct {
	Binary    string            `toml:"binary"`     // machine code image path
	Origin    uint16            `toml:"origin"`     // load address
	Entry     uint16            `toml:"entry"`      // start address
	MaxCycles int               `toml:"max_cycles"` // 0 keeps the default
	Routines  map[string]uint16 `toml:"routines"`   // named routine addresses
}

// LoadManifest reads a TOML manifest. Origin defaults to the standard
// REM statement address when the file leaves it unset.
func LoadManifest(path string) (man *Manifest, err error) {
	man = &Manifest{}
	_, err = toml.DecodeFile(path, man)
	if err != nil {
		man = nil
		return
	}
	if man.Origin == 0 {
		man.Origin = BoardBase
	}
	return
}

// Routine looks up a named routine address.
func (man *Manifest) Routine(name string) (addr uint16, ok bool) {
	addr, ok = man.Routines[name]
	return
}
