package repl

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/peterh/liner"

	rerrors "github.com/ruchy-lang/ruchy/pkg/ruchy/errors"
	"github.com/ruchy-lang/ruchy/pkg/ruchy/evaluator"
	"github.com/ruchy-lang/ruchy/pkg/ruchy/infer"
	"github.com/ruchy-lang/ruchy/pkg/ruchy/lexer"
	"github.com/ruchy-lang/ruchy/pkg/ruchy/parser"
)

const PROMPT = ">> "
const CONTINUATION_PROMPT = ".. "

// Ruchy keywords and builtins for tab completion
var completionWords = []string{
	// Keywords
	"fun", "let", "mut", "if", "else", "match", "for", "while", "loop", "in",
	"return", "break", "continue", "struct", "enum", "trait", "impl", "extend",
	"actor", "receive", "spawn", "import", "export", "module", "pub", "as",
	"try", "catch", "finally", "throw", "async", "await", "type",
	// Builtins - core
	"println", "print", "len", "range", "type_of", "to_string", "int", "float", "str",
	// Builtins - math
	"abs", "min", "max", "sum", "round", "sqrt", "floor", "ceil",
	// Builtins - files and paths
	"fs_read", "fs_write", "fs_append", "fs_exists", "fs_remove", "fs_list",
	"fs_read_gzip", "fs_write_gzip",
	"path_join", "path_base", "path_dir", "path_ext", "path_abs", "path_clean",
	// Builtins - environment
	"env_get", "env_set", "env_unset", "env_has", "env_all",
	// Builtins - text
	"regex_match", "regex_find", "regex_find_all", "regex_captures",
	"regex_replace", "regex_split",
	// Builtins - logging
	"log_open", "log_debug", "log_info", "log_warn", "log_error", "log_recent",
	// Builtins - net and time
	"http_get", "http_post", "time_now", "time_parse", "time_format",
	// Constructors and values
	"Ok", "Err", "Some", "None", "true", "false", "nil",
}

// Options configures a REPL session.
type Options struct {
	HistoryFile string // empty picks ~/.ruchy_history
	Version     string
	Loader      evaluator.ModuleLoader
}

// Start runs the REPL with line editing, history, and tab completion.
func Start(out io.Writer, opts Options) {
	line := liner.NewLiner()
	defer line.Close()

	line.SetCtrlCAborts(true)
	line.SetCompleter(filterCompletions)

	historyFile := opts.HistoryFile
	if historyFile == "" {
		if home, err := os.UserHomeDir(); err == nil {
			historyFile = filepath.Join(home, ".ruchy_history")
		} else {
			historyFile = filepath.Join(os.TempDir(), ".ruchy_history")
		}
	}
	if f, err := os.Open(historyFile); err == nil {
		line.ReadHistory(f)
		f.Close()
	}
	defer func() {
		if f, err := os.Create(historyFile); err == nil {
			line.WriteHistory(f)
			f.Close()
		}
	}()

	in := evaluator.New()
	if opts.Loader != nil {
		in.SetLoader(opts.Loader)
	}
	env := evaluator.NewEnvironment()

	fmt.Fprintf(out, "ruchy %s\n", opts.Version)
	fmt.Fprintln(out, "Type 'exit' or Ctrl+D to quit, ':help' for commands")
	fmt.Fprintln(out, "")

	var inputBuffer strings.Builder

	for {
		prompt := PROMPT
		if inputBuffer.Len() > 0 {
			prompt = CONTINUATION_PROMPT
		}
		input, err := line.Prompt(prompt)
		if err != nil {
			if err == liner.ErrPromptAborted {
				fmt.Fprintln(out, "^C")
				inputBuffer.Reset()
				continue
			}
			if err == io.EOF {
				fmt.Fprintln(out, "")
				return
			}
			fmt.Fprintf(out, "Error reading input: %v\n", err)
			continue
		}

		trimmed := strings.TrimSpace(input)
		if inputBuffer.Len() == 0 && (trimmed == "exit" || trimmed == "quit") {
			return
		}

		if inputBuffer.Len() == 0 && strings.HasPrefix(trimmed, ":") {
			handleCommand(trimmed, env, out)
			continue
		}

		if inputBuffer.Len() == 0 && trimmed == "" {
			continue
		}

		if inputBuffer.Len() > 0 {
			inputBuffer.WriteString("\n")
		}
		inputBuffer.WriteString(input)

		fullInput := inputBuffer.String()
		if needsMoreInput(fullInput) {
			continue
		}

		line.AppendHistory(fullInput)
		evalLine(in, env, fullInput, out)
		inputBuffer.Reset()
	}
}

// evalLine parses and evaluates one complete input, printing captured
// output first and the result value after.
func evalLine(in *evaluator.Interp, env *evaluator.Environment, input string, out io.Writer) {
	p := parser.New(lexer.New(input))
	program := p.ParseProgram()
	if errs := p.StructuredErrors(); len(errs) > 0 {
		printStructuredErrors(out, errs)
		return
	}

	result := in.Eval(program, env)

	if in.HasStdout() {
		io.WriteString(out, in.GetStdout())
		io.WriteString(out, "\n")
		in.ClearStdout()
	}

	if result == nil {
		return
	}
	if errObj, ok := result.(*evaluator.Error); ok {
		printRuntimeError(out, errObj)
		return
	}
	if result.Type() == evaluator.NULL_OBJ {
		return
	}
	io.WriteString(out, result.Inspect())
	io.WriteString(out, "\n")
}

// handleCommand dispatches REPL meta-commands that start with ':'.
func handleCommand(cmd string, env *evaluator.Environment, out io.Writer) {
	switch {
	case cmd == ":help" || cmd == ":h" || cmd == ":?":
		fmt.Fprintln(out, "REPL Commands:")
		fmt.Fprintln(out, "  :help, :h, :?   Show this help")
		fmt.Fprintln(out, "  :type <expr>    Show the inferred type of an expression")
		fmt.Fprintln(out, "  :env            Show variables in scope")
		fmt.Fprintln(out, "  :clear          Clear all user variables")
		fmt.Fprintln(out, "  exit, quit      Exit the REPL")

	case strings.HasPrefix(cmd, ":type "):
		showType(strings.TrimPrefix(cmd, ":type "), out)

	case cmd == ":env":
		printEnvironment(env, out)

	case cmd == ":clear":
		*env = *evaluator.NewEnvironment()
		fmt.Fprintln(out, "Environment cleared")

	default:
		fmt.Fprintf(out, "Unknown command: %s (type :help for commands)\n", cmd)
	}
}

// showType runs inference on a standalone expression and prints its type.
func showType(src string, out io.Writer) {
	p := parser.New(lexer.New(src))
	program := p.ParseProgram()
	if errs := p.StructuredErrors(); len(errs) > 0 {
		printStructuredErrors(out, errs)
		return
	}
	typ, err := infer.New().Infer(program)
	if err != nil {
		if rerr, ok := err.(*rerrors.RuchyError); ok {
			io.WriteString(out, rerr.PrettyString())
			io.WriteString(out, "\n")
		} else {
			fmt.Fprintf(out, "type error: %v\n", err)
		}
		return
	}
	fmt.Fprintf(out, "%s : %s\n", strings.TrimSpace(src), typ.String())
}

// printEnvironment displays all user-defined variables in scope.
func printEnvironment(env *evaluator.Environment, out io.Writer) {
	vars := env.Bindings()
	if len(vars) == 0 {
		fmt.Fprintln(out, "(no user variables)")
		return
	}

	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		value := vars[name].Inspect()
		if strings.Contains(value, "\n") {
			lines := strings.Split(value, "\n")
			for i := 1; i < len(lines); i++ {
				lines[i] = "  " + lines[i]
			}
			value = strings.Join(lines, "\n")
		} else if len(value) > 60 {
			value = value[:57] + "..."
		}
		fmt.Fprintf(out, "  %s = %s\n", name, value)
	}
}

// filterCompletions returns completion suggestions for the word being typed.
func filterCompletions(line string) []string {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return nil
	}
	if line[len(line)-1] == ' ' || line[len(line)-1] == '\t' {
		return nil
	}

	words := strings.Fields(line)
	if len(words) == 0 {
		return nil
	}
	lastWord := words[len(words)-1]
	prefix := line[:len(line)-len(lastWord)]

	var matches []string
	for _, word := range completionWords {
		if strings.HasPrefix(word, lastWord) {
			matches = append(matches, prefix+word)
		}
	}
	return matches
}

// needsMoreInput reports whether input has unclosed braces, brackets, or
// parentheses outside string literals.
func needsMoreInput(input string) bool {
	input = strings.TrimSpace(input)
	if input == "" {
		return false
	}

	braceCount := 0
	bracketCount := 0
	parenCount := 0
	inString := false
	escapeNext := false

	for i := 0; i < len(input); i++ {
		ch := input[i]

		if escapeNext {
			escapeNext = false
			continue
		}
		if ch == '\\' {
			escapeNext = true
			continue
		}
		if ch == '"' {
			inString = !inString
			continue
		}
		if inString {
			continue
		}

		switch ch {
		case '{':
			braceCount++
		case '}':
			braceCount--
		case '[':
			bracketCount++
		case ']':
			bracketCount--
		case '(':
			parenCount++
		case ')':
			parenCount--
		}
	}

	return braceCount > 0 || bracketCount > 0 || parenCount > 0
}

// printStructuredErrors prints parser errors with position and hints.
func printStructuredErrors(out io.Writer, errs []*rerrors.RuchyError) {
	for _, err := range errs {
		io.WriteString(out, err.PrettyString())
		io.WriteString(out, "\n")
	}
}

// printRuntimeError prints a runtime error or a thrown value.
func printRuntimeError(out io.Writer, errObj *evaluator.Error) {
	if errObj.Err == nil {
		fmt.Fprintf(out, "uncaught throw: %s\n", errObj.Payload.Inspect())
		return
	}
	io.WriteString(out, errObj.Err.PrettyString())
	io.WriteString(out, "\n")
}
