// Package shims provides example host functions reachable through the
// function trampoline (C8): fatal run-time trap handling, and a console
// getc/putc pair standing in for an XEX's OS-service imports, the same
// role main.go's TRAP_GETC/TRAP_IN handling plays for the LC-3 teacher.
package shims

import (
	"bufio"
	"fmt"
	"os"

	"github.com/eiannone/keyboard"
	"golang.org/x/term"

	"ppcrecomp/internal/logging"
	"ppcrecomp/internal/ppc"
)

var stdinReader = bufio.NewReader(os.Stdin)

// Trap is the fatal run-time handler emitted code calls when a branch or
// indirect call cannot be resolved to a translated function. It logs the
// guest program counter, a register snapshot, and the triggering error,
// then exits non-zero: there is no recovery path, since static
// recompilation has no guest code to fall back to at addr.
func Trap(ctx *ppc.Context, addr uint32, err error) {
	log := logging.Default()
	log.Error("unresolved guest control transfer",
		"addr", fmt.Sprintf("0x%08X", addr),
		"lr", fmt.Sprintf("0x%016X", ctx.LR),
		"r3", ctx.GPR[3].U32(),
		"err", err,
	)
	os.Exit(1)
}

// ConsoleIn reads one guest-visible input byte, matching a getc-style OS
// service import. It reads a raw keystroke via github.com/eiannone/keyboard
// when stdin is an interactive terminal, falling back to a buffered byte
// read otherwise (piped input, CI, redirected files).
func ConsoleIn() (byte, error) {
	if term.IsTerminal(int(os.Stdin.Fd())) {
		if err := keyboard.Open(); err != nil {
			return readStdinByte()
		}
		defer keyboard.Close()
		ch, key, err := keyboard.GetSingleKey()
		if err != nil {
			return 0, err
		}
		if key == keyboard.KeyCtrlC {
			return 0, fmt.Errorf("shims: console input interrupted")
		}
		return byte(ch), nil
	}
	return readStdinByte()
}

func readStdinByte() (byte, error) {
	b, err := stdinReader.ReadByte()
	if err != nil {
		return 0, err
	}
	return b, nil
}

// ConsoleOut writes one guest-visible output byte, matching a putc-style OS
// service import.
func ConsoleOut(b byte) error {
	_, err := os.Stdout.Write([]byte{b})
	return err
}
