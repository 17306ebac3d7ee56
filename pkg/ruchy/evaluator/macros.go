package evaluator

import (
	"os/exec"
	"strings"

	"github.com/ruchy-lang/ruchy/pkg/ruchy/ast"
)

func (in *Interp) evalInterpolation(n *ast.StringInterpolation, env *Environment) Object {
	var out strings.Builder
	for _, part := range n.Parts {
		if part.Expr == nil {
			out.WriteString(part.Text)
			continue
		}
		value := in.evalExpr(part.Expr, env)
		if isControl(value) {
			return value
		}
		out.WriteString(formatValue(value, part.FormatSpec))
	}
	return &String{Value: out.String()}
}

func (in *Interp) evalMacro(n *ast.MacroInvocation, env *Environment) Object {
	switch n.Name {
	case "println":
		text, ctl := in.macroText(n.Arguments, env)
		if ctl != nil {
			return ctl
		}
		in.pushStdout(text)
		return NULL

	case "print":
		text, ctl := in.macroText(n.Arguments, env)
		if ctl != nil {
			return ctl
		}
		in.pushPartial(text)
		return NULL

	case "eprintln":
		// Diagnostics share the capture buffer so scripts stay testable.
		text, ctl := in.macroText(n.Arguments, env)
		if ctl != nil {
			return ctl
		}
		in.pushStdout(text)
		return NULL

	case "format":
		text, ctl := in.macroText(n.Arguments, env)
		if ctl != nil {
			return ctl
		}
		return &String{Value: text}

	case "vec":
		elems, errObj := in.evalExpressions(n.Arguments, env)
		if errObj != nil {
			return errObj
		}
		return &Array{Elements: elems}

	case "assert":
		if len(n.Arguments) == 0 {
			return NULL
		}
		cond := in.evalExpr(n.Arguments[0], env)
		if isControl(cond) {
			return cond
		}
		if !truthy(cond) {
			return &Error{Payload: &String{
				Value: "assertion failed: " + n.Arguments[0].String(),
			}}
		}
		return NULL

	case "assert_eq":
		if len(n.Arguments) < 2 {
			return newErrorAt("ARITY-0001", n.Token.Line, n.Token.Column, map[string]any{
				"Expected": 2, "Got": len(n.Arguments),
			})
		}
		left := in.evalExpr(n.Arguments[0], env)
		if isControl(left) {
			return left
		}
		right := in.evalExpr(n.Arguments[1], env)
		if isControl(right) {
			return right
		}
		if !objectsEqual(left, right) {
			return &Error{Payload: &String{
				Value: "assertion failed: " + left.Inspect() + " != " + right.Inspect(),
			}}
		}
		return NULL

	case "panic":
		text, ctl := in.macroText(n.Arguments, env)
		if ctl != nil {
			return ctl
		}
		return &Error{Payload: &String{Value: text}}

	case "dbg":
		if len(n.Arguments) == 0 {
			return NULL
		}
		value := in.evalExpr(n.Arguments[0], env)
		if isControl(value) {
			return value
		}
		in.pushStdout(n.Arguments[0].String() + " = " + value.Inspect())
		return value
	}

	return newErrorAt("UNDEF-0001", n.Token.Line, n.Token.Column, map[string]any{
		"Name": n.Name + "!",
	})
}

// macroText evaluates print-style macro arguments and joins them with
// spaces. Strings render raw, everything else via display form.
func (in *Interp) macroText(args []ast.Expression, env *Environment) (string, Object) {
	parts := make([]string, 0, len(args))
	for _, arg := range args {
		value := in.evalExpr(arg, env)
		if isControl(value) {
			return "", value
		}
		parts = append(parts, displayString(value))
	}
	return strings.Join(parts, " "), nil
}

// evalCommand runs an external program and returns its stdout as a string.
func (in *Interp) evalCommand(n *ast.CommandExpression, env *Environment) Object {
	program := in.evalExpr(n.Program, env)
	if isControl(program) {
		return program
	}
	name, ok := program.(*String)
	if !ok {
		return newErrorAt("OP-0005", n.Token.Line, n.Token.Column, map[string]any{
			"Value": program.Inspect(),
		})
	}

	cmdArgs := make([]string, 0, len(n.Args))
	for _, argExpr := range n.Args {
		value := in.evalExpr(argExpr, env)
		if isControl(value) {
			return value
		}
		cmdArgs = append(cmdArgs, displayString(value))
	}

	out, err := exec.Command(name.Value, cmdArgs...).Output()
	if err != nil {
		return newErrorAt("IO-0001", n.Token.Line, n.Token.Column, map[string]any{
			"Path": name.Value, "Cause": err.Error(),
		})
	}
	return &String{Value: strings.TrimRight(string(out), "\n")}
}
