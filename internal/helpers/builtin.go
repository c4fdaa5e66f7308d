package helpers

import (
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/yorlang/yorlang/internal/errdef"
)

var builtins = map[string]Func{
	"ka":           helperLen,
	"siLetaNla":    helperUpper,
	"siLetaKekere": helperLower,
	"fiAye":        helperPad,
	"idamo":        helperID,
	"aago":         helperNow,
	"iruRe":        helperType,
	"fiKun":        helperAppend,
	"yiPada":       helperReverse,
}

// maxPadWidth bounds fiAye so a script cannot exhaust memory.
const maxPadWidth = 1 << 16

// Now is the clock used by aago.
var Now = time.Now

func helperLen(args []any) (any, error) {
	if err := argCount(args, 1, "ka(x)"); err != nil {
		return nil, err
	}
	switch t := args[0].(type) {
	case string:
		return float64(uniseg.GraphemeClusterCount(t)), nil
	case []any:
		return float64(len(t)), nil
	default:
		return nil, errdef.New(errdef.CodeRuntime, "ka(x): unsupported %s", typeName(t))
	}
}

func helperUpper(args []any) (any, error) {
	if err := argCount(args, 1, "siLetaNla(s)"); err != nil {
		return nil, err
	}
	s, err := strArg(args, 0, "siLetaNla(s)")
	if err != nil {
		return nil, err
	}
	return cases.Upper(language.Und).String(s), nil
}

func helperLower(args []any) (any, error) {
	if err := argCount(args, 1, "siLetaKekere(s)"); err != nil {
		return nil, err
	}
	s, err := strArg(args, 0, "siLetaKekere(s)")
	if err != nil {
		return nil, err
	}
	return cases.Lower(language.Und).String(s), nil
}

// helperPad right-pads s with spaces to the given display width.
func helperPad(args []any) (any, error) {
	if err := argCount(args, 2, "fiAye(s, width)"); err != nil {
		return nil, err
	}
	s, err := strArg(args, 0, "fiAye(s, width)")
	if err != nil {
		return nil, err
	}
	w, err := numArg(args, 1, "fiAye(s, width)")
	if err != nil {
		return nil, err
	}
	if math.IsNaN(w) || w < 0 || w != math.Trunc(w) {
		return nil, errdef.New(errdef.CodeRuntime, "fiAye(s, width): width must be a non-negative whole number, got %v", w)
	}
	if w > maxPadWidth {
		return nil, errdef.New(errdef.CodeRuntime, "fiAye(s, width): width %v exceeds %d", w, maxPadWidth)
	}
	gap := int(w) - runewidth.StringWidth(s)
	if gap <= 0 {
		return s, nil
	}
	return s + strings.Repeat(" ", gap), nil
}

func helperID(args []any) (any, error) {
	if err := argCount(args, 0, "idamo()"); err != nil {
		return nil, err
	}
	id, err := uuid.NewRandom()
	if err != nil {
		return nil, errdef.Wrap(errdef.CodeRuntime, err, "idamo()")
	}
	return id.String(), nil
}

func helperNow(args []any) (any, error) {
	if err := argCount(args, 0, "aago()"); err != nil {
		return nil, err
	}
	return Now().Format(time.RFC3339), nil
}

func helperType(args []any) (any, error) {
	if err := argCount(args, 1, "iruRe(x)"); err != nil {
		return nil, err
	}
	return typeName(args[0]), nil
}

func helperAppend(args []any) (any, error) {
	if len(args) < 1 {
		return nil, errdef.New(errdef.CodeArity, "fiKun(list, ...items) expects at least 1 arg")
	}
	l, err := listArg(args, 0, "fiKun(list, ...items)")
	if err != nil {
		return nil, err
	}
	out := make([]any, 0, len(l)+len(args)-1)
	out = append(out, l...)
	out = append(out, args[1:]...)
	return out, nil
}

func helperReverse(args []any) (any, error) {
	if err := argCount(args, 1, "yiPada(x)"); err != nil {
		return nil, err
	}
	switch t := args[0].(type) {
	case string:
		var clusters []string
		g := uniseg.NewGraphemes(t)
		for g.Next() {
			clusters = append(clusters, g.Str())
		}
		var sb strings.Builder
		for i := len(clusters) - 1; i >= 0; i-- {
			sb.WriteString(clusters[i])
		}
		return sb.String(), nil
	case []any:
		out := make([]any, len(t))
		for i, it := range t {
			out[len(t)-1-i] = it
		}
		return out, nil
	default:
		return nil, errdef.New(errdef.CodeRuntime, "yiPada(x): unsupported %s", typeName(t))
	}
}
