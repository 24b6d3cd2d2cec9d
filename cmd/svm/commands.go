package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chazu/stackvm/image"
	"github.com/chazu/stackvm/pkg/bytecode"
	"github.com/chazu/stackvm/programs"
	"github.com/chazu/stackvm/vm"
)

// source is a program picked from the command line.
type source struct {
	name string
	code []byte
	img  *image.Image // nil unless read from an image file
}

// addSourceFlags registers the flags shared by run, disasm and build.
func addSourceFlags(fs *flag.FlagSet) (example *string, raw *bool) {
	example = fs.String("example", "", "Use a built-in sample program")
	raw = fs.Bool("raw", false, "Treat FILE as plain bytecode instead of an image")
	return example, raw
}

// loadSource resolves -example or a FILE argument into program bytes.
func loadSource(example string, raw bool, args []string) (*source, error) {
	switch {
	case example != "" && len(args) > 0:
		return nil, errors.New("give either -example or a file, not both")
	case example != "":
		p, ok := programs.Get(example)
		if !ok {
			return nil, fmt.Errorf("unknown example %q (see 'svm examples')", example)
		}
		return &source{name: p.Name, code: p.Code}, nil
	case len(args) == 1:
		return loadFile(args[0], raw)
	case len(args) == 0:
		return nil, errors.New("no program given")
	default:
		return nil, fmt.Errorf("expected one file, got %d", len(args))
	}
}

func loadFile(path string, raw bool) (*source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	if raw {
		return &source{name: path, code: data}, nil
	}
	if !image.IsImage(data) {
		return nil, fmt.Errorf("%s is not a stackvm image (use -raw for plain bytecode)", path)
	}
	img, err := image.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	name := img.Name
	if name == "" {
		name = path
	}
	return &source{name: name, code: img.Code, img: img}, nil
}

// ---------------------------------------------------------------------------
// svm run
// ---------------------------------------------------------------------------

func (g *globals) handleRun(args []string) int {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(g.stderr)
	example, raw := addSourceFlags(fs)
	if err := fs.Parse(args); err != nil {
		return 2
	}

	src, err := loadSource(*example, *raw, fs.Args())
	if err != nil {
		return g.fail(err)
	}

	m := vm.New(g.cfg.VMOptions(g.stdout))
	m.Load(src.code)
	runErr := m.Run()

	snap := m.Snapshot()
	fmt.Fprintf(g.stdout, "\n--- %s: %s at %04d after %d steps\n", src.name, snap.State, snap.IP, snap.Steps)
	if g.cfg.Output.ShowStack {
		fmt.Fprintf(g.stdout, "stack: %s\n", snap.StackString())
	}
	if g.cfg.Output.ShowGlobals && len(snap.Names) > 0 {
		fmt.Fprintf(g.stdout, "globals:\n")
		for _, line := range strings.Split(strings.TrimSuffix(snap.GlobalsString(), "\n"), "\n") {
			fmt.Fprintf(g.stdout, "  %s\n", line)
		}
	}

	if runErr != nil {
		fmt.Fprintf(g.stderr, "Error: %v\n", runErr)
		var e *vm.Error
		if errors.As(runErr, &e) && e.Trace != nil {
			io.WriteString(g.stderr, e.Trace.String())
		}
		return 1
	}
	return 0
}

// ---------------------------------------------------------------------------
// svm disasm
// ---------------------------------------------------------------------------

func (g *globals) handleDisasm(args []string) int {
	fs := flag.NewFlagSet("disasm", flag.ContinueOnError)
	fs.SetOutput(g.stderr)
	example, raw := addSourceFlags(fs)
	if err := fs.Parse(args); err != nil {
		return 2
	}

	src, err := loadSource(*example, *raw, fs.Args())
	if err != nil {
		return g.fail(err)
	}

	if src.img != nil {
		fmt.Fprintf(g.stdout, "; name: %s\n", src.img.Name)
		fmt.Fprintf(g.stdout, "; digest: %s\n", src.img.DigestString())
		if src.img.Compressed {
			fmt.Fprintf(g.stdout, "; compressed\n")
		}
	}
	io.WriteString(g.stdout, bytecode.Disassemble(src.code))
	return 0
}

// ---------------------------------------------------------------------------
// svm build
// ---------------------------------------------------------------------------

func (g *globals) handleBuild(args []string) int {
	fs := flag.NewFlagSet("build", flag.ContinueOnError)
	fs.SetOutput(g.stderr)
	example := fs.String("example", "", "Use a built-in sample program")
	output := fs.String("o", "", "Output image path")
	compress := fs.Bool("z", false, "Compress the code with zstd")
	name := fs.String("name", "", "Program name stored in the image (default: example or file name)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *output == "" {
		return g.fail(errors.New("build requires -o"))
	}

	// Plain bytecode in, image out.
	src, err := loadSource(*example, true, fs.Args())
	if err != nil {
		return g.fail(err)
	}
	if _, err := bytecode.Decode(src.code); err != nil {
		return g.fail(fmt.Errorf("%s: %w", src.name, err))
	}

	imgName := src.name
	if *name != "" {
		imgName = *name
	}
	img := image.New(imgName, src.code)
	img.Compressed = *compress
	if err := image.WriteFile(*output, img); err != nil {
		return g.fail(err)
	}

	fmt.Fprintf(g.stdout, "Wrote %s (%d bytes of code, digest %s)\n", *output, len(src.code), img.DigestString())
	return 0
}

// ---------------------------------------------------------------------------
// svm examples
// ---------------------------------------------------------------------------

func (g *globals) handleExamples(args []string) int {
	fs := flag.NewFlagSet("examples", flag.ContinueOnError)
	fs.SetOutput(g.stderr)
	check := fs.Bool("check", false, "Run every example and compare with its expected outcome")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if !*check {
		for _, p := range programs.All() {
			fmt.Fprintf(g.stdout, "%-20s %s\n", p.Name, p.Description)
		}
		return 0
	}

	failed := 0
	for _, p := range programs.All() {
		if err := p.Verify(g.cfg.VMOptions(io.Discard)); err != nil {
			fmt.Fprintf(g.stdout, "FAIL %s\n", err)
			failed++
			continue
		}
		fmt.Fprintf(g.stdout, "ok   %s\n", p.Name)
	}
	if failed > 0 {
		fmt.Fprintf(g.stderr, "Error: %d example(s) failed\n", failed)
		return 1
	}
	return 0
}
