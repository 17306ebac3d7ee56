package evaluator

import (
	"bytes"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/gzip"
)

func init() {
	registerBuiltin("fs_read", func(in *Interp, args ...Object) Object {
		if ctl := builtinArity("fs_read", 1, args); ctl != nil {
			return ctl
		}
		path, ok := args[0].(*String)
		if !ok {
			return pathArgError(args[0])
		}
		data, err := os.ReadFile(path.Value)
		if err != nil {
			return newError("IO-0001", map[string]any{"Path": path.Value, "Cause": err.Error()})
		}
		return &String{Value: string(data)}
	})

	registerBuiltin("fs_write", func(in *Interp, args ...Object) Object {
		if ctl := builtinArity("fs_write", 2, args); ctl != nil {
			return ctl
		}
		path, ok := args[0].(*String)
		if !ok {
			return pathArgError(args[0])
		}
		if err := os.WriteFile(path.Value, []byte(displayString(args[1])), 0o644); err != nil {
			return newError("IO-0002", map[string]any{"Path": path.Value, "Cause": err.Error()})
		}
		return NULL
	})

	registerBuiltin("fs_append", func(in *Interp, args ...Object) Object {
		if ctl := builtinArity("fs_append", 2, args); ctl != nil {
			return ctl
		}
		path, ok := args[0].(*String)
		if !ok {
			return pathArgError(args[0])
		}
		f, err := os.OpenFile(path.Value, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return newError("IO-0002", map[string]any{"Path": path.Value, "Cause": err.Error()})
		}
		defer f.Close()
		if _, err := f.WriteString(displayString(args[1])); err != nil {
			return newError("IO-0002", map[string]any{"Path": path.Value, "Cause": err.Error()})
		}
		return NULL
	})

	registerBuiltin("fs_exists", func(in *Interp, args ...Object) Object {
		if ctl := builtinArity("fs_exists", 1, args); ctl != nil {
			return ctl
		}
		path, ok := args[0].(*String)
		if !ok {
			return pathArgError(args[0])
		}
		_, err := os.Stat(path.Value)
		return nativeBool(err == nil)
	})

	registerBuiltin("fs_remove", func(in *Interp, args ...Object) Object {
		if ctl := builtinArity("fs_remove", 1, args); ctl != nil {
			return ctl
		}
		path, ok := args[0].(*String)
		if !ok {
			return pathArgError(args[0])
		}
		if err := os.Remove(path.Value); err != nil {
			return newError("IO-0002", map[string]any{"Path": path.Value, "Cause": err.Error()})
		}
		return NULL
	})

	registerBuiltin("fs_list", func(in *Interp, args ...Object) Object {
		if ctl := builtinArity("fs_list", 1, args); ctl != nil {
			return ctl
		}
		path, ok := args[0].(*String)
		if !ok {
			return pathArgError(args[0])
		}
		entries, err := os.ReadDir(path.Value)
		if err != nil {
			return newError("IO-0001", map[string]any{"Path": path.Value, "Cause": err.Error()})
		}
		out := make([]Object, len(entries))
		for i, e := range entries {
			out[i] = &String{Value: filepath.Join(path.Value, e.Name())}
		}
		return &Array{Elements: out}
	})

	// Gzip-compressed text files round-trip through fs_read_gzip and
	// fs_write_gzip.
	registerBuiltin("fs_read_gzip", func(in *Interp, args ...Object) Object {
		if ctl := builtinArity("fs_read_gzip", 1, args); ctl != nil {
			return ctl
		}
		path, ok := args[0].(*String)
		if !ok {
			return pathArgError(args[0])
		}
		f, err := os.Open(path.Value)
		if err != nil {
			return newError("IO-0001", map[string]any{"Path": path.Value, "Cause": err.Error()})
		}
		defer f.Close()
		zr, err := gzip.NewReader(f)
		if err != nil {
			return newError("IO-0001", map[string]any{"Path": path.Value, "Cause": err.Error()})
		}
		defer zr.Close()
		data, err := io.ReadAll(zr)
		if err != nil {
			return newError("IO-0001", map[string]any{"Path": path.Value, "Cause": err.Error()})
		}
		return &String{Value: string(data)}
	})

	registerBuiltin("fs_write_gzip", func(in *Interp, args ...Object) Object {
		if ctl := builtinArity("fs_write_gzip", 2, args); ctl != nil {
			return ctl
		}
		path, ok := args[0].(*String)
		if !ok {
			return pathArgError(args[0])
		}
		var buf bytes.Buffer
		zw := gzip.NewWriter(&buf)
		if _, err := zw.Write([]byte(displayString(args[1]))); err != nil {
			return newError("IO-0002", map[string]any{"Path": path.Value, "Cause": err.Error()})
		}
		if err := zw.Close(); err != nil {
			return newError("IO-0002", map[string]any{"Path": path.Value, "Cause": err.Error()})
		}
		if err := os.WriteFile(path.Value, buf.Bytes(), 0o644); err != nil {
			return newError("IO-0002", map[string]any{"Path": path.Value, "Cause": err.Error()})
		}
		return NULL
	})
}

func pathArgError(got Object) Object {
	return newError("IO-0001", map[string]any{
		"Path": got.Inspect(), "Cause": "path must be a string",
	})
}
