package evaluator

import (
	"regexp"
	"sync"
)

// regexCache reuses compiled patterns across calls; scripts tend to apply
// the same handful of patterns in loops.
var regexCache sync.Map // pattern string -> *regexp.Regexp

func compilePattern(pattern Object) (*regexp.Regexp, Object) {
	s, ok := pattern.(*String)
	if !ok {
		return nil, newError("FORMAT-0001", map[string]any{
			"Pattern": pattern.Inspect(), "Cause": "pattern must be a string",
		})
	}
	if cached, ok := regexCache.Load(s.Value); ok {
		return cached.(*regexp.Regexp), nil
	}
	re, err := regexp.Compile(s.Value)
	if err != nil {
		return nil, newError("FORMAT-0001", map[string]any{
			"Pattern": s.Value, "Cause": err.Error(),
		})
	}
	regexCache.Store(s.Value, re)
	return re, nil
}

func regexStringArg(got Object) (*String, Object) {
	s, ok := got.(*String)
	if !ok {
		return nil, newError("TYPE-0001", map[string]any{
			"Left": "String", "Right": typeDisplayName(got),
		})
	}
	return s, nil
}

func init() {
	registerBuiltin("regex_match", func(in *Interp, args ...Object) Object {
		if ctl := builtinArity("regex_match", 2, args); ctl != nil {
			return ctl
		}
		re, errObj := compilePattern(args[0])
		if errObj != nil {
			return errObj
		}
		s, errObj := regexStringArg(args[1])
		if errObj != nil {
			return errObj
		}
		return nativeBool(re.MatchString(s.Value))
	})

	registerBuiltin("regex_find", func(in *Interp, args ...Object) Object {
		if ctl := builtinArity("regex_find", 2, args); ctl != nil {
			return ctl
		}
		re, errObj := compilePattern(args[0])
		if errObj != nil {
			return errObj
		}
		s, errObj := regexStringArg(args[1])
		if errObj != nil {
			return errObj
		}
		loc := re.FindStringIndex(s.Value)
		if loc == nil {
			return NULL
		}
		return &String{Value: s.Value[loc[0]:loc[1]]}
	})

	registerBuiltin("regex_find_all", func(in *Interp, args ...Object) Object {
		if ctl := builtinArity("regex_find_all", 2, args); ctl != nil {
			return ctl
		}
		re, errObj := compilePattern(args[0])
		if errObj != nil {
			return errObj
		}
		s, errObj := regexStringArg(args[1])
		if errObj != nil {
			return errObj
		}
		matches := re.FindAllString(s.Value, -1)
		out := make([]Object, len(matches))
		for i, m := range matches {
			out[i] = &String{Value: m}
		}
		return &Array{Elements: out}
	})

	registerBuiltin("regex_captures", func(in *Interp, args ...Object) Object {
		if ctl := builtinArity("regex_captures", 2, args); ctl != nil {
			return ctl
		}
		re, errObj := compilePattern(args[0])
		if errObj != nil {
			return errObj
		}
		s, errObj := regexStringArg(args[1])
		if errObj != nil {
			return errObj
		}
		groups := re.FindStringSubmatch(s.Value)
		if groups == nil {
			return NULL
		}
		out := make([]Object, len(groups))
		for i, g := range groups {
			out[i] = &String{Value: g}
		}
		return &Array{Elements: out}
	})

	registerBuiltin("regex_replace", func(in *Interp, args ...Object) Object {
		if ctl := builtinArity("regex_replace", 3, args); ctl != nil {
			return ctl
		}
		re, errObj := compilePattern(args[0])
		if errObj != nil {
			return errObj
		}
		s, errObj := regexStringArg(args[1])
		if errObj != nil {
			return errObj
		}
		repl, errObj := regexStringArg(args[2])
		if errObj != nil {
			return errObj
		}
		return &String{Value: re.ReplaceAllString(s.Value, repl.Value)}
	})

	registerBuiltin("regex_split", func(in *Interp, args ...Object) Object {
		if ctl := builtinArity("regex_split", 2, args); ctl != nil {
			return ctl
		}
		re, errObj := compilePattern(args[0])
		if errObj != nil {
			return errObj
		}
		s, errObj := regexStringArg(args[1])
		if errObj != nil {
			return errObj
		}
		parts := re.Split(s.Value, -1)
		out := make([]Object, len(parts))
		for i, p := range parts {
			out[i] = &String{Value: p}
		}
		return &Array{Elements: out}
	})
}
