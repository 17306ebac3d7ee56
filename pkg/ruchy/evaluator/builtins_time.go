package evaluator

import (
	"time"

	"github.com/araddon/dateparse"
	"github.com/goodsign/monday"
)

func init() {
	registerBuiltin("time_now", func(in *Interp, args ...Object) Object {
		return &Integer{Value: time.Now().UnixMilli()}
	})

	// time_parse accepts most common date formats without a layout
	// argument and yields epoch milliseconds.
	registerBuiltin("time_parse", func(in *Interp, args ...Object) Object {
		if ctl := builtinArity("time_parse", 1, args); ctl != nil {
			return ctl
		}
		text, ok := args[0].(*String)
		if !ok {
			return newError("OP-0004", map[string]any{
				"From": string(args[0].Type()), "To": "String",
			})
		}
		t, err := dateparse.ParseAny(text.Value)
		if err != nil {
			return &EnumVariant{Enum: "Result", Variant: "Err",
				Values: []Object{&String{Value: err.Error()}}}
		}
		return &EnumVariant{Enum: "Result", Variant: "Ok",
			Values: []Object{&Integer{Value: t.UnixMilli()}}}
	})

	// time_format renders epoch milliseconds with a Go layout; a third
	// argument selects the locale for month and weekday names.
	registerBuiltin("time_format", func(in *Interp, args ...Object) Object {
		if len(args) < 2 || len(args) > 3 {
			return newError("ARITY-0001", map[string]any{"Expected": 2, "Got": len(args)})
		}
		millis, ok1 := args[0].(*Integer)
		layout, ok2 := args[1].(*String)
		if !ok1 || !ok2 {
			return newError("OP-0004", map[string]any{
				"From": string(args[0].Type()), "To": "Int",
			})
		}
		t := time.UnixMilli(millis.Value).UTC()
		locale := monday.Locale(monday.LocaleEnUS)
		if len(args) == 3 {
			if loc, ok := args[2].(*String); ok {
				locale = monday.Locale(loc.Value)
			}
		}
		return &String{Value: monday.Format(t, layout.Value, locale)}
	})

	registerBuiltin("sleep", func(in *Interp, args ...Object) Object {
		if ctl := builtinArity("sleep", 1, args); ctl != nil {
			return ctl
		}
		millis, ok := args[0].(*Integer)
		if !ok || millis.Value < 0 {
			return newError("OP-0004", map[string]any{
				"From": string(args[0].Type()), "To": "Int",
			})
		}
		time.Sleep(time.Duration(millis.Value) * time.Millisecond)
		return NULL
	})
}
