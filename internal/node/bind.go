package node

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"math"
	"reflect"
	"slices"
	"strings"
)

// taggedFields maps `pipe` tag values to exported field index paths. Untagged
// embedded structs are searched too, so their tagged fields are promoted.
func taggedFields(st reflect.Type) map[string][]int {
	fields := make(map[string][]int)
	for i := 0; i < st.NumField(); i++ {
		f := st.Field(i)
		tag := strings.Split(f.Tag.Get(TagKey), ",")[0]
		if f.Anonymous && tag == "" && f.Type.Kind() == reflect.Struct {
			for name, sub := range taggedFields(f.Type) {
				if _, shadowed := fields[name]; !shadowed {
					fields[name] = append([]int{i}, sub...)
				}
			}
			continue
		}
		if !f.IsExported() || tag == "" || tag == "-" {
			continue
		}
		fields[tag] = []int{i}
	}
	return fields
}

func destructurableSeq(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Slice, reflect.Array, reflect.Interface:
		return true
	}
	return false
}

func destructurableMap(t reflect.Type) bool {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Map:
		return t.Key().Kind() == reflect.String
	case reflect.Struct, reflect.Interface:
		return true
	}
	return false
}

func (n *Node) buildArgs(ctx context.Context, inputs map[string]any) ([]reflect.Value, error) {
	args := make([]reflect.Value, 0, len(n.params)+1)
	if n.takesCtx {
		args = append(args, reflect.ValueOf(&ctx).Elem())
	}

	if n.inputs.Kind() != KeywordSpec {
		for i, name := range n.inputs.Names() {
			v, err := bindValue(inputs[name], n.params[i])
			if err != nil {
				return nil, fmt.Errorf("input %q: %w", name, err)
			}
			args = append(args, v)
		}
		return args, nil
	}

	pt := n.params[0]
	st := pt
	if pt.Kind() == reflect.Pointer {
		st = pt.Elem()
	}
	sv := reflect.New(st)
	for _, param := range n.inputs.Params() {
		name, _ := n.inputs.Dataset(param)
		field := sv.Elem().FieldByIndex(n.kwFields[param])
		v, err := bindValue(inputs[name], field.Type())
		if err != nil {
			return nil, fmt.Errorf("input %q bound to %q: %w", name, param, err)
		}
		field.Set(v)
	}
	if pt.Kind() == reflect.Pointer {
		return append(args, sv), nil
	}
	return append(args, sv.Elem()), nil
}

// bindValue adapts a stored value to a parameter type. Assignable values pass
// through; numeric values convert between numeric kinds so parameters decoded
// as float64 can feed int parameters and vice versa. Conversions that would
// lose the value are rejected.
func bindValue(v any, t reflect.Type) (reflect.Value, error) {
	if v == nil {
		switch t.Kind() {
		case reflect.Interface, reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
			return reflect.Zero(t), nil
		}
		return reflect.Value{}, fmt.Errorf("cannot use nil as %s", t)
	}
	rv := reflect.ValueOf(v)
	if rv.Type().AssignableTo(t) {
		return rv, nil
	}
	if isNumeric(rv.Kind()) && isNumeric(t.Kind()) {
		out, err := convertNumeric(rv, t)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("cannot use %v as %s: %w", v, t, err)
		}
		return out, nil
	}
	return reflect.Value{}, fmt.Errorf("cannot use %T as %s", v, t)
}

var (
	errOverflow = errors.New("value out of range")
	errFraction = errors.New("not a whole number")
	errNegative = errors.New("negative value for an unsigned type")
)

func convertNumeric(rv reflect.Value, t reflect.Type) (reflect.Value, error) {
	out := reflect.New(t).Elem()

	switch {
	case rv.CanFloat():
		f := rv.Float()
		switch {
		case out.CanFloat():
			if out.OverflowFloat(f) {
				return out, errOverflow
			}
			out.SetFloat(f)
		case math.IsNaN(f) || math.IsInf(f, 0) || math.Trunc(f) != f:
			return out, errFraction
		case out.CanInt():
			if f < math.MinInt64 || f >= math.MaxInt64 || out.OverflowInt(int64(f)) {
				return out, errOverflow
			}
			out.SetInt(int64(f))
		default:
			if f < 0 {
				return out, errNegative
			}
			if f >= math.MaxUint64 || out.OverflowUint(uint64(f)) {
				return out, errOverflow
			}
			out.SetUint(uint64(f))
		}

	case rv.CanInt():
		i := rv.Int()
		switch {
		case out.CanFloat():
			out.SetFloat(float64(i))
		case out.CanInt():
			if out.OverflowInt(i) {
				return out, errOverflow
			}
			out.SetInt(i)
		default:
			if i < 0 {
				return out, errNegative
			}
			if out.OverflowUint(uint64(i)) {
				return out, errOverflow
			}
			out.SetUint(uint64(i))
		}

	default:
		u := rv.Uint()
		switch {
		case out.CanFloat():
			out.SetFloat(float64(u))
		case out.CanInt():
			if u > math.MaxInt64 || out.OverflowInt(int64(u)) {
				return out, errOverflow
			}
			out.SetInt(int64(u))
		default:
			if out.OverflowUint(u) {
				return out, errOverflow
			}
			out.SetUint(u)
		}
	}
	return out, nil
}

func isNumeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func (n *Node) destructure(results []reflect.Value) (map[string]any, error) {
	out := make(map[string]any, n.outputs.Len())
	names := n.outputs.Names()

	switch n.outputs.Kind() {
	case SingleSpec:
		out[names[0]] = results[0].Interface()
		return out, nil

	case PositionalSpec:
		if len(results) == len(names) {
			for i, name := range names {
				out[name] = results[i].Interface()
			}
			return out, nil
		}
		seq := indirect(results[0])
		if !seq.IsValid() || (seq.Kind() != reflect.Slice && seq.Kind() != reflect.Array) {
			return nil, n.shapeError(fmt.Sprintf("%d positional outputs %s", len(names), quoteAll(names)), describe(seq))
		}
		if seq.Len() != len(names) {
			return nil, n.shapeError(fmt.Sprintf("%d positional outputs %s", len(names), quoteAll(names)), fmt.Sprintf("a sequence of length %d", seq.Len()))
		}
		for i, name := range names {
			out[name] = seq.Index(i).Interface()
		}
		return out, nil

	case KeywordSpec:
		params := n.outputs.Params()
		expected := fmt.Sprintf("keys %s", quoteAll(params))
		values, ok := keyedValues(indirect(results[0]))
		if !ok {
			return nil, n.shapeError(expected, describe(indirect(results[0])))
		}
		got := slices.Sorted(maps.Keys(values))
		if !slices.Equal(got, params) {
			return nil, n.shapeError(expected, fmt.Sprintf("keys %s", quoteAll(got)))
		}
		for _, p := range params {
			name, _ := n.outputs.Dataset(p)
			out[name] = values[p]
		}
		return out, nil
	}
	return nil, fmt.Errorf("unknown output spec kind %s", n.outputs.Kind())
}

func (n *Node) shapeError(expected, got string) error {
	return &OutputShapeError{Node: n.name, Expected: expected, Got: got}
}

// indirect unwraps interfaces and pointers down to the concrete value.
func indirect(v reflect.Value) reflect.Value {
	for v.IsValid() && (v.Kind() == reflect.Interface || v.Kind() == reflect.Pointer) {
		if v.IsNil() {
			return reflect.Value{}
		}
		v = v.Elem()
	}
	return v
}

// keyedValues extracts key/value pairs from a string-keyed map or a struct
// with `pipe` tags.
func keyedValues(v reflect.Value) (map[string]any, bool) {
	if !v.IsValid() {
		return nil, false
	}
	switch v.Kind() {
	case reflect.Map:
		if v.Type().Key().Kind() != reflect.String {
			return nil, false
		}
		out := make(map[string]any, v.Len())
		iter := v.MapRange()
		for iter.Next() {
			out[iter.Key().String()] = iter.Value().Interface()
		}
		return out, true
	case reflect.Struct:
		fields := taggedFields(v.Type())
		out := make(map[string]any, len(fields))
		for tag, idx := range fields {
			out[tag] = v.FieldByIndex(idx).Interface()
		}
		return out, true
	}
	return nil, false
}

func describe(v reflect.Value) string {
	if !v.IsValid() {
		return "nil"
	}
	switch v.Kind() {
	case reflect.Map:
		return "a mapping"
	case reflect.Slice, reflect.Array:
		return fmt.Sprintf("a sequence of length %d", v.Len())
	}
	return fmt.Sprintf("a single %s", v.Type())
}
