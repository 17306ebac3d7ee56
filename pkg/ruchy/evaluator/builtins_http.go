package evaluator

import (
	"io"
	"net/http"
	"strings"
	"time"
)

// httpClient bounds outbound requests so a hung server cannot stall a
// script forever.
var httpClient = &http.Client{Timeout: 30 * time.Second}

func init() {
	registerBuiltin("http_get", func(in *Interp, args ...Object) Object {
		if ctl := builtinArity("http_get", 1, args); ctl != nil {
			return ctl
		}
		url, ok := args[0].(*String)
		if !ok {
			return newError("OP-0004", map[string]any{
				"From": string(args[0].Type()), "To": "String",
			})
		}
		resp, err := httpClient.Get(url.Value)
		if err != nil {
			return &EnumVariant{Enum: "Result", Variant: "Err",
				Values: []Object{&String{Value: err.Error()}}}
		}
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return &EnumVariant{Enum: "Result", Variant: "Err",
				Values: []Object{&String{Value: err.Error()}}}
		}
		return &EnumVariant{Enum: "Result", Variant: "Ok",
			Values: []Object{&String{Value: string(body)}}}
	})

	registerBuiltin("http_post", func(in *Interp, args ...Object) Object {
		if ctl := builtinArity("http_post", 2, args); ctl != nil {
			return ctl
		}
		url, ok := args[0].(*String)
		if !ok {
			return newError("OP-0004", map[string]any{
				"From": string(args[0].Type()), "To": "String",
			})
		}
		body := displayString(args[1])
		contentType := "application/json"
		if !strings.HasPrefix(strings.TrimSpace(body), "{") &&
			!strings.HasPrefix(strings.TrimSpace(body), "[") {
			contentType = "text/plain"
		}
		resp, err := httpClient.Post(url.Value, contentType, strings.NewReader(body))
		if err != nil {
			return &EnumVariant{Enum: "Result", Variant: "Err",
				Values: []Object{&String{Value: err.Error()}}}
		}
		defer resp.Body.Close()
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return &EnumVariant{Enum: "Result", Variant: "Err",
				Values: []Object{&String{Value: err.Error()}}}
		}
		return &EnumVariant{Enum: "Result", Variant: "Ok",
			Values: []Object{&String{Value: string(data)}}}
	})
}
