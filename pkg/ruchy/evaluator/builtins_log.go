package evaluator

import (
	"fmt"
	"os"
	"strings"
)

// logWrite formats the arguments, mirrors the line to stderr, and persists
// it when a session log is open.
func logWrite(in *Interp, level string, args []Object) Object {
	parts := make([]string, len(args))
	for i, arg := range args {
		parts[i] = displayString(arg)
	}
	message := strings.Join(parts, " ")

	fmt.Fprintf(os.Stderr, "[%s] %s\n", level, message)
	if in.selog != nil {
		if err := in.selog.Write(level, message); err != nil {
			return newError("IO-0002", map[string]any{
				"Path": in.selog.Path(), "Cause": err.Error(),
			})
		}
	}
	return NULL
}

func init() {
	registerBuiltin("log_open", func(in *Interp, args ...Object) Object {
		if ctl := builtinArity("log_open", 1, args); ctl != nil {
			return ctl
		}
		path, ok := args[0].(*String)
		if !ok {
			return pathArgError(args[0])
		}
		if in.selog != nil {
			in.selog.Close()
		}
		sl, err := OpenSessionLog(path.Value)
		if err != nil {
			return newError("IO-0002", map[string]any{"Path": path.Value, "Cause": err.Error()})
		}
		in.selog = sl
		return NULL
	})

	registerBuiltin("log_debug", func(in *Interp, args ...Object) Object {
		return logWrite(in, "DEBUG", args)
	})
	registerBuiltin("log_info", func(in *Interp, args ...Object) Object {
		return logWrite(in, "INFO", args)
	})
	registerBuiltin("log_warn", func(in *Interp, args ...Object) Object {
		return logWrite(in, "WARN", args)
	})
	registerBuiltin("log_error", func(in *Interp, args ...Object) Object {
		return logWrite(in, "ERROR", args)
	})

	registerBuiltin("log_recent", func(in *Interp, args ...Object) Object {
		if ctl := builtinArity("log_recent", 1, args); ctl != nil {
			return ctl
		}
		n, ok := args[0].(*Integer)
		if !ok {
			return newError("TYPE-0001", map[string]any{
				"Left": "Int", "Right": typeDisplayName(args[0]),
			})
		}
		if in.selog == nil {
			return newError("IO-0001", map[string]any{
				"Path": "(session log)", "Cause": "no log file open; call log_open first",
			})
		}
		entries, err := in.selog.Recent(int(n.Value))
		if err != nil {
			return newError("IO-0001", map[string]any{
				"Path": in.selog.Path(), "Cause": err.Error(),
			})
		}
		out := make([]Object, len(entries))
		for i, e := range entries {
			out[i] = &String{Value: fmt.Sprintf("[%s] %s", e.Level, e.Message)}
		}
		return &Array{Elements: out}
	})
}
