package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/mod/semver"

	"github.com/threadscript/ts/internal/alloc"
	"github.com/threadscript/ts/internal/code"
	"github.com/threadscript/ts/internal/parser"
	"github.com/threadscript/ts/internal/texc"
	"github.com/threadscript/ts/internal/value"
	"github.com/threadscript/ts/internal/vm"
)

// rootCommand is the cobra command type main.go's RunE closure binds
// against; kept as an alias so the driver reads like the rest of the
// pack's cobra-based commands.
type rootCommand = cobra.Command

// flags holds the CLI surface of §6, bound by newRootCmd via pflag.
type flags struct {
	syntax       string
	parseOnly    bool
	threads      int
	quota        int64
	stackCap     int
	quiet        bool
	resolve      bool
	reResolve    bool
	dumpConfig   bool
	printVersion bool
}

var f flags

func newRootCmd() *rootCommand {
	cmd := &cobra.Command{
		Use:           "threadscript [script]",
		Short:         "Run a ThreadScript program",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.Flags().StringVarP(&f.syntax, "syntax", "s", "canon", "syntax factory to parse with")
	cmd.Flags().BoolVarP(&f.parseOnly, "parse-only", "n", false, "parse and dump the code tree, don't evaluate")
	cmd.Flags().IntVarP(&f.threads, "threads", "t", 0, "number of worker threads for two-phase scripts (0 = single-phase)")
	cmd.Flags().Int64VarP(&f.quota, "quota", "M", 0, "memory cap in bytes (0 = unlimited)")
	cmd.Flags().IntVarP(&f.stackCap, "stack-cap", "S", 0, "stack-depth cap (0 = use the default)")
	cmd.Flags().BoolVarP(&f.quiet, "quiet", "q", false, "suppress error trace dumps on stderr")
	cmd.Flags().BoolVarP(&f.resolve, "resolve", "R", false, "resolve built-ins before phase 2")
	cmd.Flags().BoolVarP(&f.reResolve, "re-resolve", "r", false, "also re-resolve before phase 2 in script scope")
	cmd.Flags().BoolVarP(&f.dumpConfig, "show-config", "C", false, "print effective configuration and exit")
	cmd.Flags().BoolVarP(&f.printVersion, "version", "v", false, "print the driver version and exit")
	return cmd
}

// effectiveConfig builds the viper-backed configuration snapshot
// printed by -C (§6): flags override environment, which overrides
// defaults. Separate from the cobra/pflag bindings above so -C can
// report values independent of how newRootCmd wired the flag set.
func effectiveConfig(cmd *rootCommand) *viper.Viper {
	v := viper.New()
	v.SetDefault("syntax", "canon")
	v.SetDefault("threads", 0)
	v.SetDefault("quota", 0)
	v.SetEnvPrefix("THREADSCRIPT")
	v.AutomaticEnv()
	_ = v.BindPFlag("syntax", cmd.Flags().Lookup("syntax"))
	_ = v.BindPFlag("threads", cmd.Flags().Lookup("threads"))
	_ = v.BindPFlag("quota", cmd.Flags().Lookup("quota"))
	return v
}

func execute(cmd *rootCommand, args []string) (int, error) {
	if f.printVersion {
		fmt.Fprintln(cmd.OutOrStdout(), Version)
		return vm.ExitSuccess, nil
	}
	if f.dumpConfig {
		cfg := effectiveConfig(cmd)
		if !semver.IsValid(Version) {
			return vm.ExitConfiguration, fmt.Errorf("invalid driver version %q", Version)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "version: %s\nsyntax: %s\nthreads: %d\nquota: %d\n",
			Version, cfg.GetString("syntax"), cfg.GetInt("threads"), cfg.GetInt64("quota"))
		return vm.ExitSuccess, nil
	}

	file, src, rerr := readScript(args)
	if rerr != nil {
		return vm.ExitParseOrIO, rerr
	}

	factory, ok := parser.Create(f.syntax)
	if !ok {
		return vm.ExitUsage, fmt.Errorf("unknown syntax factory %q (have: %v)", f.syntax, parser.Names())
	}
	script, err := factory(file, src)
	if err != nil {
		printErr(cmd, err)
		return vm.ExitParseOrIO, err
	}

	allocator := alloc.New(f.quota)
	machine := vm.New(allocator, cmd.OutOrStdout())
	if f.stackCap > 0 {
		machine.MaxDepth = f.stackCap
	}

	// -R resolves names against the built-ins before any phase runs;
	// -r additionally re-resolves (overwriting existing bindings) once
	// more, modeling "also re-resolve ... in script scope" ahead of
	// phase 2 (§6).
	if f.resolve || f.reResolve {
		code.Resolve(script.Root, machine.SharedGlobals(), false, false)
	}
	if f.reResolve {
		code.Resolve(script.Root, machine.SharedGlobals(), true, false)
	}

	if f.parseOnly {
		fmt.Fprintln(cmd.OutOrStdout(), code.Dump(script))
		return vm.ExitSuccess, nil
	}

	scriptVal := value.NewScript(script.Root, script.File)
	scriptVal.SetMtSafe()
	payload := scriptVal.Script()

	var result *value.Value
	var status int
	if f.threads > 0 {
		result, status, err = vm.RunTwoPhase(machine, payload, f.threads)
	} else {
		result, status, err = vm.RunSinglePhase(machine, payload)
	}
	_ = result
	if err != nil {
		printErr(cmd, err)
	}
	return status, err
}

func printErr(cmd *rootCommand, err error) {
	if f.quiet {
		return
	}
	if te, ok := err.(*texc.Error); ok {
		fmt.Fprintln(cmd.ErrOrStderr(), te.Dump(true))
		return
	}
	fmt.Fprintln(cmd.ErrOrStderr(), err)
}
