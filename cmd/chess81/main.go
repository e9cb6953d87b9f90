package main

import (
	"bufio"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/Cronan/zx81-chess/chess"
	"github.com/Cronan/zx81-chess/emulator"
	"github.com/Cronan/zx81-chess/zx81"
)

// defaultEntry is where code begins after the program's data tables
// when no manifest says otherwise.
const defaultEntry = zx81.ProgramBase + 109

// loaded bundles an emulator with the addresses needed to drive the
// program in it.
type loaded struct {
	emu    *emulator.Emulator
	entry  uint16
	lookup func(name string) (uint16, bool)
}

// load builds an emulator from either a manifest or a raw binary.
func load(manifestPath, binPath string, entry uint16, cycles int, verbose bool) (ld *loaded, err error) {
	ld = &loaded{
		emu:    emulator.NewEmulator(),
		entry:  entry,
		lookup: func(string) (uint16, bool) { return 0, false },
	}
	ld.emu.Verbose = verbose

	origin := uint16(zx81.ProgramBase)

	if len(manifestPath) != 0 {
		var man *chess.Manifest
		man, err = chess.LoadManifest(manifestPath)
		if err != nil {
			return
		}
		binPath = man.Binary
		origin = man.Origin
		if man.Entry != 0 {
			ld.entry = man.Entry
		}
		if man.MaxCycles != 0 {
			ld.emu.MaxCycles = man.MaxCycles
		}
		ld.lookup = man.Routine
	}

	code, err := os.ReadFile(binPath)
	if err != nil {
		return
	}
	ld.emu.Cpu.Load(code, origin)

	if cycles != 0 {
		ld.emu.MaxCycles = cycles
	}

	return
}

// callRoutine runs one routine to completion: push the sentinel
// return address, then run until control comes back.
func (ld *loaded) callRoutine(addr uint16) error {
	ld.emu.Push(emulator.AddrSentinel)
	outcome, err := ld.emu.Run(addr)
	if err != nil {
		return err
	}
	if outcome != emulator.Returned {
		return fmt.Errorf("routine at %04X: %v", addr, outcome)
	}
	return nil
}

// routine resolves a named routine: the manifest first, then the
// CALL-prologue and pattern scans.
func (ld *loaded) routine(name string) (addr uint16, err error) {
	addr, ok := ld.lookup(name)
	if ok {
		return
	}
	switch name {
	case "init":
		addr = chess.CallTarget(ld.emu.Cpu, ld.entry)
		ok = true
	case "think":
		addr, ok = chess.FindThink(ld.emu.Cpu, ld.entry, 200)
	}
	if !ok {
		err = fmt.Errorf("routine %q not found", name)
	}
	return
}

// squareName renders a board index in algebraic form.
func squareName(sq uint8) string {
	return fmt.Sprintf("%c%c", 'A'+sq%8, '1'+sq/8)
}

func main() {
	var manifestPath string
	var cycles int
	var verbose bool
	var entry uint16

	rootCmd := &cobra.Command{
		Use:   "chess81",
		Short: "Run the ZX81 1K chess program under emulation",
	}
	rootCmd.PersistentFlags().StringVarP(&manifestPath, "manifest", "m", "", "TOML manifest describing the binary")
	rootCmd.PersistentFlags().IntVar(&cycles, "cycles", 0, "Instruction budget (0 = default)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().Uint16Var(&entry, "entry", defaultEntry, "Entry point address")

	runCmd := &cobra.Command{
		Use:   "run [chess.bin]",
		Short: "Verify the program: set up the board, then let the engine choose a move",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var binPath string
			if len(args) > 0 {
				binPath = args[0]
			}
			ld, err := load(manifestPath, binPath, entry, cycles, verbose)
			if err != nil {
				return err
			}

			initAddr, err := ld.routine("init")
			if err != nil {
				return err
			}
			if err = ld.callRoutine(initAddr); err != nil {
				return err
			}
			fmt.Println(chess.ReadBoard(ld.emu.Cpu))

			thinkAddr, err := ld.routine("think")
			if err != nil {
				return err
			}
			ld.emu.Poke(chess.Side, chess.BlackBit)
			if err = ld.callRoutine(thinkAddr); err != nil {
				return err
			}

			from := ld.emu.Peek(chess.BestFrom)
			to := ld.emu.Peek(chess.BestTo)
			score := ld.emu.Peek(chess.BestScore)
			fmt.Printf("engine move %v-%v score %d after %d cycles\n",
				squareName(from), squareName(to), score, ld.emu.Cycles)
			return nil
		},
	}

	playCmd := &cobra.Command{
		Use:   "play [chess.bin]",
		Short: "Play interactively, typing moves like E2E4",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var binPath string
			if len(args) > 0 {
				binPath = args[0]
			}
			ld, err := load(manifestPath, binPath, entry, cycles, verbose)
			if err != nil {
				return err
			}
			ld.emu.IdleStop = true

			scanner := bufio.NewScanner(os.Stdin)
			pc := ld.entry
			for {
				outcome, err := ld.emu.Run(pc)
				if err != nil {
					return err
				}
				fmt.Print(ld.emu.Display.String())
				if outcome != emulator.Idle {
					fmt.Printf("program finished: %v\n", outcome)
					return nil
				}

				fmt.Print("move? ")
				if !scanner.Scan() {
					return scanner.Err()
				}
				ld.emu.Type(scanner.Text())
				// Resume where the HALT left off.
				pc = ld.emu.PC
				ld.emu.Cycles = 0
			}
		},
	}

	tapeCmd := &cobra.Command{
		Use:   "tape chess.bin chess.p",
		Short: "Package a binary as a ZX81 .P tape image",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			out, err := os.Create(args[1])
			if err != nil {
				return err
			}
			defer out.Close()

			tape := &zx81.Tape{Code: code}
			n, err := tape.WriteTo(out)
			if err != nil {
				return err
			}
			fmt.Printf("%v: %d bytes, entry RAND USR %d\n", args[1], n, zx81.ProgramBase)
			return nil
		},
	}

	rootCmd.AddCommand(runCmd, playCmd, tapeCmd)

	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
