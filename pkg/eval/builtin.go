package eval

import (
	"fmt"
	"reflect"
	"sort"

	"src.rook.sh/pkg/eval/errs"
	"src.rook.sh/pkg/eval/vals"
)

// Builtin is a function implemented in Go.
type Builtin struct {
	name string
	impl any

	// Type information of impl.

	// If true, pass the frame as a *Frame argument.
	frame bool
	// Type of "normal" (non-frame, non-variadic) arguments.
	normalArgs []reflect.Type
	// If not nil, type of variadic arguments.
	variadicArg reflect.Type
}

var (
	frameType = reflect.TypeOf((*Frame)(nil))
	// error(nil) is treated as nil by reflect.TypeOf, so we first get the type
	// of *error and use Elem to obtain type of error.
	errorType = reflect.TypeOf((*error)(nil)).Elem()
)

// NewBuiltin wraps a Go function into a Rook function using reflection.
//
// If the first parameter of the function has type *Frame, it gets the
// calling frame. Other parameters are converted from Rook values: float64
// parameters accept integers too, and parameters of type any accept every
// value. A variadic function accepts any number of trailing arguments.
//
// If the last return value has type error and is not nil, the call fails
// with it. A function without other return values returns Unit. Return
// values of Go types int and []string are converted to int64 and arrays.
func NewBuiltin(name string, impl any) *Builtin {
	implType := reflect.TypeOf(impl)
	b := &Builtin{name: name, impl: impl}

	i := 0
	if i < implType.NumIn() && implType.In(i) == frameType {
		b.frame = true
		i++
	}
	for ; i < implType.NumIn(); i++ {
		paramType := implType.In(i)
		if i == implType.NumIn()-1 && implType.IsVariadic() {
			b.variadicArg = paramType.Elem()
			break
		}
		b.normalArgs = append(b.normalArgs, paramType)
	}
	return b
}

// Name returns the name of the builtin.
func (b *Builtin) Name() string { return b.name }

// Kind returns "builtin".
func (*Builtin) Kind() string { return "builtin" }

// TypeName returns "BuiltinFunction".
func (*Builtin) TypeName() string { return "BuiltinFunction" }

// Repr returns "<builtin function: name>".
func (b *Builtin) Repr() string { return "<builtin function: " + b.name + ">" }

// Equal compares identity.
func (b *Builtin) Equal(rhs any) bool { return b == rhs }

// Call calls the implementation using reflection.
func (b *Builtin) Call(fm *Frame, args []any) (ret any, err error) {
	if b.variadicArg != nil {
		if len(args) < len(b.normalArgs) {
			return nil, errs.ArityMismatch{What: "arguments of " + b.name,
				ValidLow: len(b.normalArgs), ValidHigh: -1, Actual: len(args)}
		}
	} else if len(args) != len(b.normalArgs) {
		return nil, errs.ArityMismatch{What: "arguments of " + b.name,
			ValidLow: len(b.normalArgs), ValidHigh: len(b.normalArgs), Actual: len(args)}
	}

	var in []reflect.Value
	if b.frame {
		in = append(in, reflect.ValueOf(fm))
	}
	for i, arg := range args {
		typ := b.variadicArg
		if i < len(b.normalArgs) {
			typ = b.normalArgs[i]
		}
		v, err := scanArg(arg, typ)
		if err != nil {
			return nil, errs.Newf(errs.TypeError, "argument %d of %s: %v", i+1, b.name, err)
		}
		in = append(in, v)
	}

	defer func() {
		if r := recover(); r != nil {
			ret, err = nil, errs.Newf(errs.RuntimeError, "%s: %v", b.name, r)
		}
	}()
	outs := reflect.ValueOf(b.impl).Call(in)

	if len(outs) > 0 && outs[len(outs)-1].Type() == errorType {
		if err := outs[len(outs)-1].Interface(); err != nil {
			return nil, err.(error)
		}
		outs = outs[:len(outs)-1]
	}
	if len(outs) == 0 {
		return unit, nil
	}
	return fromGo(outs[0].Interface()), nil
}

// scanArg converts a Rook value to a Go value of type typ.
func scanArg(arg any, typ reflect.Type) (reflect.Value, error) {
	if arg == nil {
		if typ.Kind() == reflect.Interface {
			return reflect.Zero(typ), nil
		}
	} else {
		v := reflect.ValueOf(arg)
		if v.Type().AssignableTo(typ) {
			return v, nil
		}
		if i, ok := arg.(int64); ok && typ.Kind() == reflect.Float64 {
			return reflect.ValueOf(float64(i)), nil
		}
	}
	return reflect.Value{}, fmt.Errorf("must be %s, but is %s", kindOfType(typ), vals.Kind(arg))
}

var (
	callableType = reflect.TypeOf((*Callable)(nil)).Elem()
	arrayType    = reflect.TypeOf((*vals.Array)(nil)).Elem()
)

// kindOfType returns the Rook kind corresponding to a Go parameter type, for
// error messages.
func kindOfType(t reflect.Type) string {
	switch {
	case t == callableType:
		return "function"
	case t == arrayType:
		return "array"
	}
	switch t.Kind() {
	case reflect.Int64:
		return "integer"
	case reflect.Float64:
		return "number"
	case reflect.String:
		return "string"
	case reflect.Bool:
		return "boolean"
	case reflect.Int32:
		return "char"
	}
	if t.Kind() == reflect.Pointer {
		if k, ok := reflect.Zero(t).Interface().(vals.Kinder); ok {
			return k.Kind()
		}
	}
	return t.String()
}

// fromGo converts the return value of a Go function to a Rook value.
func fromGo(v any) any {
	switch v := v.(type) {
	case int:
		return int64(v)
	case []string:
		return vals.MakeArraySlice(v)
	case []any:
		return vals.MakeArraySlice(v)
	}
	return v
}

// builtinNs maps the names of builtin functions and values to their
// values. It is populated by init functions and never modified after.
var builtinNs = map[string]any{}

func addBuiltinFns(fns map[string]any) {
	for name, impl := range fns {
		builtinNs[name] = NewBuiltin(name, impl)
	}
}

func addBuiltinValues(vs map[string]any) {
	for name, v := range vs {
		builtinNs[name] = v
	}
}

// BuiltinNames returns the names of all builtins, sorted.
func BuiltinNames() []string {
	names := make([]string, 0, len(builtinNs))
	for name := range builtinNs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsBuiltin reports whether a name refers to a builtin.
func IsBuiltin(name string) bool {
	_, ok := builtinNs[name]
	return ok
}
