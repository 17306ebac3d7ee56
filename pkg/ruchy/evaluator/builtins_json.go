package evaluator

import (
	"encoding/json"
	"sort"
)

func init() {
	registerBuiltin("json_parse", func(in *Interp, args ...Object) Object {
		if ctl := builtinArity("json_parse", 1, args); ctl != nil {
			return ctl
		}
		text, ok := args[0].(*String)
		if !ok {
			return newError("OP-0004", map[string]any{
				"From": string(args[0].Type()), "To": "String",
			})
		}
		var data any
		if err := json.Unmarshal([]byte(text.Value), &data); err != nil {
			return &EnumVariant{Enum: "Result", Variant: "Err",
				Values: []Object{&String{Value: err.Error()}}}
		}
		return &EnumVariant{Enum: "Result", Variant: "Ok",
			Values: []Object{jsonToObject(data)}}
	})

	registerBuiltin("json_stringify", func(in *Interp, args ...Object) Object {
		if ctl := builtinArity("json_stringify", 1, args); ctl != nil {
			return ctl
		}
		data, err := json.Marshal(objectToJSON(args[0]))
		if err != nil {
			return &EnumVariant{Enum: "Result", Variant: "Err",
				Values: []Object{&String{Value: err.Error()}}}
		}
		return &EnumVariant{Enum: "Result", Variant: "Ok",
			Values: []Object{&String{Value: string(data)}}}
	})
}

// jsonToObject maps decoded JSON onto runtime values. Whole-number floats
// become integers.
func jsonToObject(data any) Object {
	switch v := data.(type) {
	case nil:
		return NULL
	case bool:
		return nativeBool(v)
	case float64:
		if v == float64(int64(v)) {
			return &Integer{Value: int64(v)}
		}
		return &Float{Value: v}
	case string:
		return &String{Value: v}
	case []any:
		elems := make([]Object, len(v))
		for i, e := range v {
			elems[i] = jsonToObject(e)
		}
		return &Array{Elements: elems}
	case map[string]any:
		rec := &Record{Fields: make(map[string]Object, len(v))}
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			rec.Set(k, jsonToObject(v[k]))
		}
		return rec
	}
	return NULL
}

func objectToJSON(obj Object) any {
	switch v := obj.(type) {
	case *Null:
		return nil
	case *Boolean:
		return v.Value
	case *Integer:
		return v.Value
	case *Float:
		return v.Value
	case *String:
		return v.Value
	case *Char:
		return string(v.Value)
	case *Atom:
		return v.Value
	case *Array:
		out := make([]any, len(v.Elements))
		for i, e := range v.Elements {
			out[i] = objectToJSON(e)
		}
		return out
	case *Tuple:
		out := make([]any, len(v.Elements))
		for i, e := range v.Elements {
			out[i] = objectToJSON(e)
		}
		return out
	case *Record:
		out := make(map[string]any, len(v.Fields))
		for name, value := range v.Fields {
			out[name] = objectToJSON(value)
		}
		return out
	case *EnumVariant:
		if v.Enum == "Option" && v.Variant == "None" {
			return nil
		}
		if len(v.Values) == 1 {
			return objectToJSON(v.Values[0])
		}
		return v.Inspect()
	}
	return obj.Inspect()
}
