package tool

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"

	contractx "github.com/tanpawarit/Chative-Airline-Assistant/agent/contract"
)

// Args is the typed record produced by Extract. Values are string, int,
// time.Time, []Args or Args depending on the field kind. Optional fields that
// resolved to nothing are absent.
type Args map[string]any

func (a Args) Has(name string) bool {
	_, ok := a[name]
	return ok
}

func (a Args) String(name string) string {
	v, _ := a[name].(string)
	return v
}

func (a Args) Int(name string) int {
	v, _ := a[name].(int)
	return v
}

func (a Args) Date(name string) time.Time {
	v, _ := a[name].(time.Time)
	return v
}

func (a Args) Object(name string) Args {
	v, _ := a[name].(Args)
	return v
}

func (a Args) Objects(name string) []Args {
	v, _ := a[name].([]Args)
	return v
}

// ParseArguments decodes the raw planner payload. Anything that is not a JSON
// object yields an empty bag so extraction fails field by field instead.
func ParseArguments(raw json.RawMessage) map[string]any {
	bag := map[string]any{}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return bag
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var decoded map[string]any
	if err := dec.Decode(&decoded); err != nil || decoded == nil {
		return bag
	}
	return decoded
}

// Extract resolves every field of spec against bag. Per field the order is:
// explicit value of the right kind, then the context field, then the declared
// default, then missing_required_field. The first failing field aborts.
func Extract(spec ArgumentSpec, bag map[string]any, env Env) (Args, error) {
	out := make(Args, len(spec))
	for _, f := range spec {
		v, ok, err := resolveField(f, bag[f.Name], env)
		if err != nil {
			return nil, err
		}
		if ok {
			out[f.Name] = v
		}
	}
	return out, nil
}

func resolveField(f FieldSpec, raw any, env Env) (any, bool, error) {
	if raw != nil {
		v, ok, err := coerce(f, raw, env)
		if err != nil || ok {
			return v, ok, err
		}
	}

	if f.Context != "" {
		if cv := strings.TrimSpace(env.Context.Field(f.Context)); cv != "" {
			v, ok, err := coerce(f, cv, env)
			if err != nil || ok {
				return v, ok, err
			}
		}
	}

	switch f.Default.Source {
	case DefaultLiteral:
		return f.Default.Literal, true, nil
	case DefaultComputed:
		return f.Default.Compute(env), true, nil
	}

	if f.Kind == KindEnum && f.Fallback != "" && !f.Strict && !f.IsRequired {
		return f.Fallback, true, nil
	}
	if f.IsRequired {
		return nil, false, contractx.MissingField(f.Name)
	}
	return nil, false, nil
}

// coerce converts raw into f's kind. ok=false means the value is absent or of
// the wrong shape and resolution should continue with the next source.
func coerce(f FieldSpec, raw any, env Env) (any, bool, error) {
	switch f.Kind {
	case KindString:
		s, ok := scalarString(raw)
		if !ok {
			return nil, false, nil
		}
		if f.Normalize != nil {
			s = f.Normalize(s)
		}
		return s, s != "", nil

	case KindEnum:
		s, ok := scalarString(raw)
		if !ok || strings.TrimSpace(s) == "" {
			return nil, false, nil
		}
		s = strings.TrimSpace(s)
		for _, variant := range f.Variants {
			if strings.EqualFold(variant, s) {
				return variant, true, nil
			}
		}
		if f.Strict {
			return nil, false, contractx.InvalidField(f.Name, "must be one of "+strings.Join(f.Variants, ", "))
		}
		return f.Fallback, f.Fallback != "", nil

	case KindInt:
		n, ok := scalarInt(raw)
		if !ok {
			return nil, false, nil
		}
		return checkInt(f, n)

	case KindDate:
		s, ok := scalarString(raw)
		if !ok || strings.TrimSpace(s) == "" {
			return nil, false, nil
		}
		return ResolveDate(s, env.Now), true, nil

	case KindObject:
		m, ok := raw.(map[string]any)
		if !ok {
			return nil, false, nil
		}
		obj, err := Extract(f.Elem, m, env)
		if err != nil {
			return nil, false, nest(err, f.Name)
		}
		return obj, true, nil

	case KindArray:
		items, ok := raw.([]any)
		if !ok || len(items) == 0 {
			return nil, false, nil
		}
		if f.MaxItems > 0 && len(items) > f.MaxItems {
			return nil, false, contractx.InvalidField(f.Name, fmt.Sprintf("at most %d entries are allowed", f.MaxItems))
		}
		out := make([]Args, 0, len(items))
		for i, item := range items {
			path := fmt.Sprintf("%s[%d]", f.Name, i)
			m, ok := item.(map[string]any)
			if !ok {
				return nil, false, contractx.InvalidField(path, "must be an object")
			}
			elem, err := Extract(f.Elem, m, env)
			if err != nil {
				return nil, false, nest(err, path)
			}
			out = append(out, elem)
		}
		return out, true, nil
	}
	return nil, false, nil
}

func checkInt(f FieldSpec, n int) (any, bool, error) {
	if len(f.Allowed) > 0 {
		if slices.Contains(f.Allowed, n) {
			return n, true, nil
		}
		return f.IntFallback, true, nil
	}
	if !f.hasRange() {
		return n, true, nil
	}
	if n >= f.Min && n <= f.Max {
		return n, true, nil
	}
	if f.Clamp {
		return min(max(n, f.Min), f.Max), true, nil
	}
	return nil, false, contractx.InvalidField(f.Name, fmt.Sprintf("must be between %d and %d", f.Min, f.Max))
}

func nest(err error, prefix string) error {
	if fe, ok := err.(*contractx.FieldError); ok {
		return fe.Nest(prefix)
	}
	return err
}

func scalarString(raw any) (string, bool) {
	switch v := raw.(type) {
	case string:
		return v, true
	case json.Number:
		return v.String(), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case int:
		return strconv.Itoa(v), true
	case bool:
		return strconv.FormatBool(v), true
	default:
		return "", false
	}
}

func scalarInt(raw any) (int, bool) {
	switch v := raw.(type) {
	case int:
		return v, true
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, false
		}
		return int(v), true
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return int(n), true
		}
		if fv, err := v.Float64(); err == nil {
			return int(fv), true
		}
		return 0, false
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}
