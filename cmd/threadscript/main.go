// Command threadscript is the driver: argument parsing, script
// loading, single/two-phase orchestration and exit-status mapping
// (§6). It sits outside the core per §1's scope note, the way the
// teacher's own `cmd/` binaries sit outside `interp/`.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/threadscript/ts/internal/vm"
)

// Version is the driver's reported version string, validated as a
// semantic version by the -C config dump.
const Version = "v0.1.0"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(os.Stdout)
	cmd.SetErr(os.Stderr)

	exitCode := vm.ExitSuccess
	ran := false
	cmd.RunE = func(c *rootCommand, cmdArgs []string) error {
		ran = true
		code, err := execute(c, cmdArgs)
		exitCode = code
		return err
	}

	if err := cmd.Execute(); err != nil {
		if exitCode == vm.ExitSuccess {
			exitCode = vm.ExitUsage
		}
		// execute() already reported script/parse errors via printErr
		// (which honors -q); only cobra's own pre-RunE failures (bad
		// flags, unknown subcommands) reach here unprinted.
		if !ran {
			fmt.Fprintln(os.Stderr, err)
		}
	}
	return exitCode
}

// readScript reads the script source named by args[0], or stdin if
// args is empty or args[0] is "-" (§6 "`-` for stdin script").
func readScript(args []string) (file string, src []byte, err error) {
	if len(args) == 0 || args[0] == "-" {
		data, rerr := io.ReadAll(os.Stdin)
		return "<stdin>", data, rerr
	}
	data, rerr := os.ReadFile(args[0])
	return args[0], data, rerr
}
