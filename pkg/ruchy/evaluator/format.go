package evaluator

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// groupedPrinter renders grouped numbers for the ',' format flag.
var groupedPrinter = message.NewPrinter(language.English)

// formatSpec is a parsed f-string format spec: [fill][align][width][,][.prec][type]
type formatSpec struct {
	fill      rune
	align     rune // '<', '>', '^', or 0 for default
	width     int
	grouped   bool
	precision int  // -1 when unset
	verb      rune // 'b', 'o', 'x', 'X', 'e', or 0
}

func parseFormatSpec(spec string) formatSpec {
	fs := formatSpec{fill: ' ', precision: -1}
	runes := []rune(spec)
	i := 0

	if len(runes) >= 2 && (runes[1] == '<' || runes[1] == '>' || runes[1] == '^') {
		fs.fill = runes[0]
		fs.align = runes[1]
		i = 2
	} else if len(runes) >= 1 && (runes[0] == '<' || runes[0] == '>' || runes[0] == '^') {
		fs.align = runes[0]
		i = 1
	}

	if fs.align == 0 && i < len(runes) && runes[i] == '0' &&
		i+1 < len(runes) && runes[i+1] >= '0' && runes[i+1] <= '9' {
		fs.fill = '0'
		i++
	}

	start := i
	for i < len(runes) && runes[i] >= '0' && runes[i] <= '9' {
		i++
	}
	if i > start {
		fs.width, _ = strconv.Atoi(string(runes[start:i]))
	}

	if i < len(runes) && runes[i] == ',' {
		fs.grouped = true
		i++
	}

	if i < len(runes) && runes[i] == '.' {
		i++
		start = i
		for i < len(runes) && runes[i] >= '0' && runes[i] <= '9' {
			i++
		}
		if i > start {
			fs.precision, _ = strconv.Atoi(string(runes[start:i]))
		} else {
			fs.precision = 0
		}
	}

	if i < len(runes) {
		fs.verb = runes[i]
	}
	return fs
}

// formatValue renders an interpolated value according to its format spec.
// Strings interpolate raw; other values use their display form.
func formatValue(value Object, spec string) string {
	if spec == "" {
		return displayString(value)
	}
	fs := parseFormatSpec(spec)

	var text string
	switch v := value.(type) {
	case *Integer:
		text = formatInteger(v.Value, fs)
	case *Float:
		text = formatFloat(v.Value, fs)
	case *String:
		text = v.Value
	default:
		text = displayString(value)
	}

	return pad(text, fs)
}

func formatInteger(n int64, fs formatSpec) string {
	switch fs.verb {
	case 'b':
		return strconv.FormatInt(n, 2)
	case 'o':
		return strconv.FormatInt(n, 8)
	case 'x':
		return strconv.FormatInt(n, 16)
	case 'X':
		return strings.ToUpper(strconv.FormatInt(n, 16))
	}
	if fs.precision >= 0 {
		return formatFloat(float64(n), fs)
	}
	if fs.grouped {
		return groupedPrinter.Sprintf("%d", n)
	}
	return strconv.FormatInt(n, 10)
}

func formatFloat(f float64, fs formatSpec) string {
	prec := fs.precision
	if fs.verb == 'e' {
		if prec < 0 {
			prec = -1
		}
		return strconv.FormatFloat(f, 'e', prec, 64)
	}
	if prec < 0 {
		prec = -1
	}
	if fs.grouped && prec >= 0 {
		return groupedPrinter.Sprintf(fmt.Sprintf("%%.%df", prec), f)
	}
	if fs.grouped {
		return groupedPrinter.Sprintf("%v", f)
	}
	return strconv.FormatFloat(f, 'f', prec, 64)
}

func pad(text string, fs formatSpec) string {
	gap := fs.width - len([]rune(text))
	if gap <= 0 {
		return text
	}
	fill := strings.Repeat(string(fs.fill), gap)
	switch fs.align {
	case '<':
		return text + fill
	case '^':
		left := gap / 2
		return strings.Repeat(string(fs.fill), left) + text +
			strings.Repeat(string(fs.fill), gap-left)
	default:
		return fill + text
	}
}

// displayString is the user-facing rendering: strings print raw, other
// values use Inspect.
func displayString(obj Object) string {
	if s, ok := obj.(*String); ok {
		return s.Value
	}
	return obj.Inspect()
}
