// svm - command-line driver for the stackvm bytecode interpreter
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/chazu/stackvm/config"
)

// verbosity is a repeatable -v flag.
type verbosity int

func (v *verbosity) String() string   { return strconv.Itoa(int(*v)) }
func (v *verbosity) IsBoolFlag() bool { return true }

func (v *verbosity) Set(s string) error {
	if s == "true" {
		*v++
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("invalid verbosity %q", s)
	}
	*v = verbosity(n)
	return nil
}

// globals holds the options shared by every subcommand.
type globals struct {
	cfg    *config.Config
	stdout io.Writer
	stderr io.Writer
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("svm", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var verbose verbosity
	configPath := fs.String("config", "", "Path to stackvm.toml (default: search upward from the working directory)")
	fs.Var(&verbose, "v", "Increase log verbosity (repeatable)")
	maxSteps := fs.Int("max-steps", 0, "Step ceiling (overrides config)")
	trace := fs.Bool("trace", false, "Log every executed instruction at debug level")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: svm [options] <command> [arguments]\n\n")
		fmt.Fprintf(stderr, "Runs and inspects stackvm bytecode.\n\n")
		fmt.Fprintf(stderr, "Commands:\n")
		fmt.Fprintf(stderr, "  run [-example NAME | [-raw] FILE]       Run a program\n")
		fmt.Fprintf(stderr, "  disasm [-example NAME | [-raw] FILE]    Print a disassembly listing\n")
		fmt.Fprintf(stderr, "  build (-example NAME | FILE) -o OUT [-z] Write a program image\n")
		fmt.Fprintf(stderr, "  examples [-check]                       List or verify the sample programs\n")
		fmt.Fprintf(stderr, "\nOptions:\n")
		fs.PrintDefaults()
		fmt.Fprintf(stderr, "\nExamples:\n")
		fmt.Fprintf(stderr, "  svm run -example factorial\n")
		fmt.Fprintf(stderr, "  svm build -example fibonacci -o fib.svmi -z\n")
		fmt.Fprintf(stderr, "  svm -v -v -trace run fib.svmi\n")
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return 2
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	if *maxSteps > 0 {
		cfg.VM.MaxSteps = *maxSteps
	}
	if *trace {
		cfg.VM.Trace = true
	}

	level := cfg.Log.Verbosity
	if int(verbose) > level {
		level = int(verbose)
	}
	commonlog.Configure(level, cfg.LogPath())

	g := &globals{cfg: cfg, stdout: stdout, stderr: stderr}
	cmd, rest := fs.Arg(0), fs.Args()[1:]
	switch cmd {
	case "run":
		return g.handleRun(rest)
	case "disasm":
		return g.handleDisasm(rest)
	case "build":
		return g.handleBuild(rest)
	case "examples":
		return g.handleExamples(rest)
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n", cmd)
		fs.Usage()
		return 2
	}
}

// loadConfig reads path, or searches upward from the working directory
// when path is empty. A missing search result yields the defaults.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	wd, err := os.Getwd()
	if err != nil {
		return config.Default(), nil
	}
	cfg, err := config.FindAndLoad(wd)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return config.Default(), nil
	}
	return cfg, nil
}

func (g *globals) fail(err error) int {
	fmt.Fprintf(g.stderr, "Error: %v\n", err)
	return 1
}
