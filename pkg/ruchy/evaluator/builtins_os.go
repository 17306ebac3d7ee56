package evaluator

import (
	"os"
	"path/filepath"
	"strings"
)

func init() {
	registerBuiltin("env_get", func(in *Interp, args ...Object) Object {
		if len(args) < 1 || len(args) > 2 {
			return newError("ARITY-0001", map[string]any{"Expected": 1, "Got": len(args)})
		}
		name, ok := args[0].(*String)
		if !ok {
			return envNameError(args[0])
		}
		value, found := os.LookupEnv(name.Value)
		if !found {
			if len(args) == 2 {
				return args[1]
			}
			return NULL
		}
		return &String{Value: value}
	})

	registerBuiltin("env_set", func(in *Interp, args ...Object) Object {
		if ctl := builtinArity("env_set", 2, args); ctl != nil {
			return ctl
		}
		name, ok := args[0].(*String)
		if !ok {
			return envNameError(args[0])
		}
		if err := os.Setenv(name.Value, displayString(args[1])); err != nil {
			return newError("IO-0002", map[string]any{"Path": name.Value, "Cause": err.Error()})
		}
		return NULL
	})

	registerBuiltin("env_unset", func(in *Interp, args ...Object) Object {
		if ctl := builtinArity("env_unset", 1, args); ctl != nil {
			return ctl
		}
		name, ok := args[0].(*String)
		if !ok {
			return envNameError(args[0])
		}
		os.Unsetenv(name.Value)
		return NULL
	})

	registerBuiltin("env_has", func(in *Interp, args ...Object) Object {
		if ctl := builtinArity("env_has", 1, args); ctl != nil {
			return ctl
		}
		name, ok := args[0].(*String)
		if !ok {
			return envNameError(args[0])
		}
		_, found := os.LookupEnv(name.Value)
		return nativeBool(found)
	})

	registerBuiltin("env_all", func(in *Interp, args ...Object) Object {
		if ctl := builtinArity("env_all", 0, args); ctl != nil {
			return ctl
		}
		rec := &Record{Fields: make(map[string]Object)}
		for _, kv := range os.Environ() {
			key, value, found := strings.Cut(kv, "=")
			if !found {
				continue
			}
			rec.Fields[key] = &String{Value: value}
			rec.Order = append(rec.Order, key)
		}
		return rec
	})

	registerBuiltin("path_join", func(in *Interp, args ...Object) Object {
		parts := make([]string, 0, len(args))
		for _, arg := range args {
			s, ok := arg.(*String)
			if !ok {
				return pathArgError(arg)
			}
			parts = append(parts, s.Value)
		}
		return &String{Value: filepath.Join(parts...)}
	})

	registerBuiltin("path_base", pathBuiltin("path_base", filepath.Base))
	registerBuiltin("path_dir", pathBuiltin("path_dir", filepath.Dir))
	registerBuiltin("path_ext", pathBuiltin("path_ext", filepath.Ext))
	registerBuiltin("path_clean", pathBuiltin("path_clean", filepath.Clean))

	registerBuiltin("path_abs", func(in *Interp, args ...Object) Object {
		if ctl := builtinArity("path_abs", 1, args); ctl != nil {
			return ctl
		}
		path, ok := args[0].(*String)
		if !ok {
			return pathArgError(args[0])
		}
		abs, err := filepath.Abs(path.Value)
		if err != nil {
			return newError("IO-0001", map[string]any{"Path": path.Value, "Cause": err.Error()})
		}
		return &String{Value: abs}
	})

	registerBuiltin("path_is_abs", func(in *Interp, args ...Object) Object {
		if ctl := builtinArity("path_is_abs", 1, args); ctl != nil {
			return ctl
		}
		path, ok := args[0].(*String)
		if !ok {
			return pathArgError(args[0])
		}
		return nativeBool(filepath.IsAbs(path.Value))
	})
}

// pathBuiltin wraps a string-to-string path function as a one-argument builtin.
func pathBuiltin(name string, fn func(string) string) BuiltinFunction {
	return func(in *Interp, args ...Object) Object {
		if ctl := builtinArity(name, 1, args); ctl != nil {
			return ctl
		}
		path, ok := args[0].(*String)
		if !ok {
			return pathArgError(args[0])
		}
		return &String{Value: fn(path.Value)}
	}
}

func envNameError(got Object) Object {
	return newError("IO-0001", map[string]any{
		"Path": got.Inspect(), "Cause": "environment variable name must be a string",
	})
}
