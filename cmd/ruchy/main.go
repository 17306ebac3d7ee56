package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ruchy-lang/ruchy/config"
	"github.com/ruchy-lang/ruchy/pkg/ruchy/ast"
	rerrors "github.com/ruchy-lang/ruchy/pkg/ruchy/errors"
	"github.com/ruchy-lang/ruchy/pkg/ruchy/evaluator"
	"github.com/ruchy-lang/ruchy/pkg/ruchy/infer"
	"github.com/ruchy-lang/ruchy/pkg/ruchy/lexer"
	"github.com/ruchy-lang/ruchy/pkg/ruchy/modules"
	"github.com/ruchy-lang/ruchy/pkg/ruchy/parser"
	"github.com/ruchy-lang/ruchy/pkg/ruchy/repl"
	"github.com/ruchy-lang/ruchy/pkg/ruchy/wasm"
)

// Version is set at compile time via -ldflags
var Version = "0.1.0"

var (
	helpFlag        = flag.Bool("h", false, "Show help message")
	helpLongFlag    = flag.Bool("help", false, "Show help message")
	versionFlag     = flag.Bool("V", false, "Show version information")
	versionLongFlag = flag.Bool("version", false, "Show version information")
	configFlag      = flag.String("config", "", "Path to ruchy.yaml")

	evalFlag     = flag.String("e", "", "Evaluate code string")
	evalLongFlag = flag.String("eval", "", "Evaluate code string")
)

func main() {
	// Subcommands dispatch before flag parsing
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "run":
			os.Exit(runCommand(os.Args[2:]))
		case "check":
			os.Exit(checkCommand(os.Args[2:]))
		case "ast":
			os.Exit(astCommand(os.Args[2:]))
		case "wasm":
			os.Exit(wasmCommand(os.Args[2:]))
		case "repl":
			replCommand(os.Args[2:])
			return
		case "fmt":
			fmt.Fprintln(os.Stderr, "ruchy fmt is not implemented")
			os.Exit(2)
		}
	}

	flag.Usage = printHelp
	flag.Parse()

	if *helpFlag || *helpLongFlag {
		printHelp()
		os.Exit(0)
	}
	if *versionFlag || *versionLongFlag {
		fmt.Printf("ruchy version %s\n", Version)
		os.Exit(0)
	}

	evalCode := *evalFlag
	if evalCode == "" {
		evalCode = *evalLongFlag
	}

	switch {
	case evalCode != "":
		os.Exit(executeInline(evalCode))
	case len(flag.Args()) > 0:
		os.Exit(executeFile(flag.Args()[0]))
	default:
		replCommand(nil)
	}
}

func printHelp() {
	fmt.Printf(`ruchy - Ruchy language interpreter version %s

Usage:
  ruchy [options] [file]
  ruchy -e "code"
  ruchy run <file>
  ruchy check <file>...
  ruchy ast [--json] <file>
  ruchy wasm <file> -o <out.wasm>
  ruchy repl

Commands:
  run <file>            Execute a Ruchy script
  check <file>...       Parse and type-check without executing
  ast <file>            Print the parsed syntax tree
  wasm <file>           Compile to a WebAssembly module
  repl                  Start the interactive shell

Options:
  -h, --help            Show this help message
  -V, --version         Show version information
  -e, --eval <code>     Evaluate code string and print the result
  --config <path>       Use an explicit ruchy.yaml

Configuration is discovered from ruchy.yaml (or RUCHY_CONFIG, or
~/.config/ruchy/ruchy.yaml). Exit codes: 0 success, 1 error, 2 usage.

Examples:
  ruchy                        Start interactive REPL
  ruchy script.ruchy           Execute a script
  ruchy -e "1 + 2"             Evaluate inline code (outputs: 3)
  ruchy check src/*.ruchy      Type-check without running
  ruchy ast --json main.ruchy  Dump the syntax tree as JSON
  ruchy wasm main.ruchy -o main.wasm
`, Version)
}

// loadConfig resolves the effective configuration for this invocation.
func loadConfig() *config.Config {
	if *configFlag != "" {
		cfg, err := config.Load(*configFlag, os.Getenv)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(2)
		}
		return cfg
	}
	return config.Discover(os.Getenv)
}

// newInterp builds an interpreter with a module loader over the configured
// search paths. scriptDir, when non-empty, is searched first so scripts can
// import their siblings.
func newInterp(cfg *config.Config, scriptDir string) *evaluator.Interp {
	paths := append([]string{}, cfg.Modules.SearchPaths...)
	if scriptDir != "" {
		paths = append([]string{scriptDir}, paths...)
	}
	in := evaluator.New()
	in.SetLoader(modules.NewLoader(paths...))
	return in
}

// runCommand implements 'ruchy run <file>'.
func runCommand(args []string) int {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "Usage: ruchy run <file>")
		return 2
	}
	return executeFile(args[0])
}

// executeFile reads and executes a Ruchy source file.
func executeFile(filename string) int {
	cfg := loadConfig()

	content, err := os.ReadFile(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading file '%s': %v\n", filename, err)
		return 1
	}
	source := string(content)

	program, ok := parseSource(source, filename)
	if !ok {
		return 1
	}

	in := newInterp(cfg, filepath.Dir(filename))
	env := evaluator.NewEnvironment()
	result := in.Eval(program, env)

	if in.HasStdout() {
		fmt.Println(in.GetStdout())
	}

	if errObj, isErr := result.(*evaluator.Error); isErr {
		printRuntimeError(filename, source, errObj)
		return 1
	}
	return 0
}

// executeInline evaluates code from the -e flag and prints the result value.
func executeInline(code string) int {
	cfg := loadConfig()

	program, ok := parseSource(code, "<eval>")
	if !ok {
		return 1
	}

	in := newInterp(cfg, "")
	result := in.Eval(program, evaluator.NewEnvironment())

	if in.HasStdout() {
		fmt.Println(in.GetStdout())
	}

	if result == nil {
		return 0
	}
	if errObj, isErr := result.(*evaluator.Error); isErr {
		printRuntimeError("<eval>", code, errObj)
		return 1
	}
	if result.Type() != evaluator.NULL_OBJ {
		fmt.Println(result.Inspect())
	}
	return 0
}

// checkCommand parses and type-checks files without executing them.
func checkCommand(args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: ruchy check <file>...")
		return 2
	}

	hasErrors := false
	for _, filename := range args {
		content, err := os.ReadFile(filename)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading %s: %v\n", filename, err)
			return 1
		}
		source := string(content)

		program, ok := parseSource(source, filename)
		if !ok {
			hasErrors = true
			continue
		}

		if _, err := infer.New().Infer(program); err != nil {
			if rerr, isRuchy := err.(*rerrors.RuchyError); isRuchy {
				printError(source, rerr.WithFile(filename))
			} else {
				fmt.Fprintf(os.Stderr, "%s: %v\n", filename, err)
			}
			hasErrors = true
		}
	}

	if hasErrors {
		return 1
	}
	return 0
}

// astCommand prints the parsed syntax tree, as text or JSON.
func astCommand(args []string) int {
	jsonOutput := false
	var filename string
	for _, arg := range args {
		if arg == "--json" {
			jsonOutput = true
		} else if !strings.HasPrefix(arg, "-") {
			filename = arg
		}
	}
	if filename == "" {
		fmt.Fprintln(os.Stderr, "Usage: ruchy ast [--json] <file>")
		return 2
	}

	content, err := os.ReadFile(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading %s: %v\n", filename, err)
		return 1
	}

	program, ok := parseSource(string(content), filename)
	if !ok {
		return 1
	}

	if jsonOutput {
		data, err := json.MarshalIndent(program, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error encoding AST: %v\n", err)
			return 1
		}
		fmt.Println(string(data))
	} else {
		fmt.Println(program.String())
	}
	return 0
}

// wasmCommand compiles a source file to a WebAssembly module.
func wasmCommand(args []string) int {
	// Accept -o before or after the filename.
	var filename, outPath string
	for i := 0; i < len(args); i++ {
		switch {
		case args[i] == "-o" || args[i] == "--o":
			if i+1 >= len(args) {
				fmt.Fprintln(os.Stderr, "Usage: ruchy wasm <file> -o <out.wasm>")
				return 2
			}
			i++
			outPath = args[i]
		case strings.HasPrefix(args[i], "-"):
			fmt.Fprintf(os.Stderr, "Unknown flag: %s\n", args[i])
			return 2
		case filename == "":
			filename = args[i]
		default:
			fmt.Fprintln(os.Stderr, "Usage: ruchy wasm <file> -o <out.wasm>")
			return 2
		}
	}
	if filename == "" {
		fmt.Fprintln(os.Stderr, "Usage: ruchy wasm <file> -o <out.wasm>")
		return 2
	}

	content, err := os.ReadFile(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading %s: %v\n", filename, err)
		return 1
	}

	program, ok := parseSource(string(content), filename)
	if !ok {
		return 1
	}

	bin, err := wasm.NewEmitter().Emit(program)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error compiling %s: %v\n", filename, err)
		return 1
	}

	if outPath == "" {
		outPath = strings.TrimSuffix(filename, filepath.Ext(filename)) + ".wasm"
	}
	if err := os.WriteFile(outPath, bin, 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", outPath, err)
		return 1
	}
	return 0
}

// replCommand starts the interactive shell, honoring the module watcher
// setting so edited modules are reloaded mid-session.
func replCommand(args []string) {
	_ = args
	cfg := loadConfig()

	loader := modules.NewLoader(cfg.Modules.SearchPaths...)
	if cfg.Modules.Watch {
		if watcher, err := modules.NewWatcher(loader); err == nil {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			if err := watcher.Start(ctx); err == nil {
				defer watcher.Close()
			}
		}
	}

	repl.Start(os.Stdout, repl.Options{
		HistoryFile: cfg.Repl.History,
		Version:     Version,
		Loader:      loader,
	})
}

// parseSource parses a source string, printing structured errors on failure.
func parseSource(source, filename string) (program *ast.Program, ok bool) {
	l := lexer.NewWithFilename(source, filename)
	p := parser.New(l)
	prog := p.ParseProgram()
	if errs := p.StructuredErrors(); len(errs) != 0 {
		for _, err := range errs {
			printError(source, err)
		}
		return nil, false
	}
	return prog, true
}

// printError prints a structured error with source context.
func printError(source string, err *rerrors.RuchyError) {
	fmt.Fprintln(os.Stderr, err.PrettyString())
	printSourceContext(strings.Split(source, "\n"), err.Line, err.Column)
}

// printRuntimeError prints a runtime error, or an uncaught thrown value.
func printRuntimeError(filename, source string, errObj *evaluator.Error) {
	if errObj.Err == nil {
		fmt.Fprintf(os.Stderr, "uncaught throw: %s\n", errObj.Payload.Inspect())
		return
	}

	err := errObj.Err
	displaySource := source
	if err.File != "" && err.File != filename {
		// Errors from imported modules point at their own source.
		if content, readErr := os.ReadFile(err.File); readErr == nil {
			displaySource = string(content)
		}
	}

	fmt.Fprintln(os.Stderr, err.PrettyString())
	printSourceContext(strings.Split(displaySource, "\n"), err.Line, err.Column)
}

// printSourceContext prints the offending source line with a caret.
func printSourceContext(lines []string, lineNum, colNum int) {
	if lineNum <= 0 || lineNum > len(lines) {
		return
	}

	sourceLine := lines[lineNum-1]

	// Tabs count as 8 columns for pointer alignment.
	trimCount := 0
	for i := 0; i < len(sourceLine); i++ {
		if sourceLine[i] == ' ' {
			trimCount++
		} else if sourceLine[i] == '\t' {
			trimCount += 8
		} else {
			break
		}
	}

	trimmedLine := strings.TrimLeft(sourceLine, " \t")
	fmt.Fprintf(os.Stderr, "    %s\n", trimmedLine)

	if colNum > 0 {
		visualCol := 0
		for i := 0; i < colNum-1 && i < len(sourceLine); i++ {
			if sourceLine[i] == '\t' {
				visualCol += 8
			} else {
				visualCol++
			}
		}
		adjustedCol := max(visualCol-trimCount, 0)
		fmt.Fprintf(os.Stderr, "    %s^\n", strings.Repeat(" ", adjustedCol))
	}
}
