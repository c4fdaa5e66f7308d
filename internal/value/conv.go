package value

import (
	"fmt"
)

// ToNative converts v into plain Go values for helper routines.
// Lists become []any, absent becomes nil.
func ToNative(v Value) any {
	switch v.K {
	case KBool:
		return v.B
	case KNum:
		return v.N
	case KStr:
		return v.S
	case KList:
		items := v.Items()
		out := make([]any, 0, len(items))
		for _, it := range items {
			out = append(out, ToNative(it))
		}
		return out
	default:
		return nil
	}
}

// FromNative adapts a helper result back into a Value.
func FromNative(v any) (Value, error) {
	switch t := v.(type) {
	case nil:
		return Absent(), nil
	case Value:
		return t, nil
	case bool:
		return Bool(t), nil
	case float64:
		return Num(t), nil
	case float32:
		return Num(float64(t)), nil
	case int:
		return Num(float64(t)), nil
	case int64:
		return Num(float64(t)), nil
	case int32:
		return Num(float64(t)), nil
	case uint:
		return Num(float64(t)), nil
	case uint64:
		return Num(float64(t)), nil
	case string:
		return Str(t), nil
	case []string:
		out := make([]Value, 0, len(t))
		for _, s := range t {
			out = append(out, Str(s))
		}
		return List(out), nil
	case []any:
		out := make([]Value, 0, len(t))
		for _, it := range t {
			v2, err := FromNative(it)
			if err != nil {
				return Absent(), err
			}
			out = append(out, v2)
		}
		return List(out), nil
	default:
		return Absent(), fmt.Errorf("unsupported helper result %T", v)
	}
}
