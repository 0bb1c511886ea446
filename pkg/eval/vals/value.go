// Package vals contains the runtime values of Rook and the basic operations on
// them.
//
// Scalar values use Go types directly:
//
//   - nil is Nil
//   - Unit is ()
//   - bool, int64, float64 and string
//   - Char is a character
//
// Containers are persistent. Array is a vector.Vector and the fields of an
// Object are a hashmap.Map, so copying a value is cheap and updating one never
// affects other holders of the same value.
//
// Callable values and opaque handles are defined by the evaluator. They
// implement Kinder, Reprer and Equaler.
package vals

import (
	"github.com/xiaq/persistent/hashmap"
	"github.com/xiaq/persistent/vector"
)

// Unit is the type of the unit value ().
type Unit struct{}

// Char is a character value.
type Char rune

// Array is the type of arrays.
type Array = vector.Vector

// Tuple is a fixed-size sequence of values.
type Tuple []any

// Range is an integer range value.
type Range struct {
	Start     int64
	End       int64
	Inclusive bool
}

// Len returns the number of integers in the range.
func (r Range) Len() int64 {
	n := r.End - r.Start
	if r.Inclusive {
		n++
	}
	if n < 0 {
		return 0
	}
	return n
}

// Object is a mapping from field names to values. Objects built from a struct
// literal carry the struct's name.
type Object struct {
	TypeName string
	Fields   hashmap.Map
}

// Variant is a value of an enum. Data is nil for variants without a payload.
type Variant struct {
	Enum string
	Name string
	Data []any
}

// Names of builtin enums.
const (
	OptionEnum = "Option"
	ResultEnum = "Result"
)

// EmptyArray is an empty array.
var EmptyArray = vector.Empty

// EmptyFields is an empty field map.
var EmptyFields = hashmap.New(Equal, Hash)

// MakeArray creates a new Array from values.
func MakeArray(vs ...any) Array {
	return MakeArraySlice(vs)
}

// MakeArraySlice creates a new Array from a slice.
func MakeArraySlice[T any](vs []T) Array {
	vec := vector.Empty
	for _, v := range vs {
		vec = vec.Cons(v)
	}
	return vec
}

// ArrayElems returns the elements of an array as a slice.
func ArrayElems(a Array) []any {
	elems := make([]any, 0, a.Len())
	for it := a.Iterator(); it.HasElem(); it.Next() {
		elems = append(elems, it.Elem())
	}
	return elems
}

// MakeObject creates an anonymous object from arguments that are alternately
// field names and values. It panics if the number of arguments is odd.
func MakeObject(kvs ...any) Object {
	if len(kvs)%2 == 1 {
		panic("odd number of arguments to MakeObject")
	}
	m := EmptyFields
	for i := 0; i < len(kvs); i += 2 {
		m = m.Assoc(kvs[i], kvs[i+1])
	}
	return Object{Fields: m}
}

// Field returns the value of a field of an object.
func (o Object) Field(name string) (any, bool) {
	if o.Fields == nil {
		return nil, false
	}
	return o.Fields.Index(name)
}

// With returns a copy of the object with a field set.
func (o Object) With(name string, v any) Object {
	fields := o.Fields
	if fields == nil {
		fields = EmptyFields
	}
	return Object{TypeName: o.TypeName, Fields: fields.Assoc(name, v)}
}

// Len returns the number of fields.
func (o Object) Len() int {
	if o.Fields == nil {
		return 0
	}
	return o.Fields.Len()
}

// Some returns Option::Some(v).
func Some(v any) Variant { return Variant{Enum: OptionEnum, Name: "Some", Data: []any{v}} }

// None is Option::None.
var None = Variant{Enum: OptionEnum, Name: "None"}

// Ok returns Result::Ok(v).
func Ok(v any) Variant { return Variant{Enum: ResultEnum, Name: "Ok", Data: []any{v}} }

// Err returns Result::Err(v).
func Err(v any) Variant { return Variant{Enum: ResultEnum, Name: "Err", Data: []any{v}} }

// Kinder wraps the Kind method.
type Kinder interface {
	Kind() string
}

// Kind returns the kind of a value, as reported by the type builtin.
func Kind(v any) string {
	switch v := v.(type) {
	case nil:
		return "nil"
	case Unit:
		return "unit"
	case bool:
		return "boolean"
	case int64:
		return "integer"
	case float64:
		return "float"
	case Char:
		return "char"
	case string:
		return "string"
	case Array:
		return "array"
	case Tuple:
		return "tuple"
	case Object:
		return "object"
	case Range:
		return "range"
	case Variant:
		return "enum"
	case Kinder:
		return v.Kind()
	default:
		return "unknown"
	}
}

// TypeNamer wraps the TypeName method.
type TypeNamer interface {
	TypeName() string
}

// TypeName returns the capitalized type name of a value, as shown by the
// :type command and recorded in checkpoints.
func TypeName(v any) string {
	switch v := v.(type) {
	case nil:
		return "Nil"
	case Unit:
		return "Unit"
	case bool:
		return "Bool"
	case int64:
		return "Integer"
	case float64:
		return "Float"
	case Char:
		return "Char"
	case string:
		return "String"
	case Array:
		return "Array"
	case Tuple:
		return "Tuple"
	case Object:
		if v.TypeName != "" {
			return "Struct"
		}
		return "Object"
	case Range:
		return "Range"
	case Variant:
		return "Enum"
	case TypeNamer:
		return v.TypeName()
	default:
		return "Unknown"
	}
}

// TypeID is a coarse tag of a value's variant, used by inline caches.
type TypeID uint8

// Type tags.
const (
	NilType TypeID = iota
	UnitType
	BoolType
	IntType
	FloatType
	CharType
	StringType
	ArrayType
	TupleType
	ObjectType
	RangeType
	EnumType
	FuncType
	OpaqueType
)

var typeIDNames = [...]string{
	"nil", "unit", "bool", "int", "float", "char", "string", "array",
	"tuple", "object", "range", "enum", "func", "opaque",
}

func (t TypeID) String() string {
	if int(t) < len(typeIDNames) {
		return typeIDNames[t]
	}
	return "?"
}

// IDOf returns the type tag of a value.
func IDOf(v any) TypeID {
	switch v.(type) {
	case nil:
		return NilType
	case Unit:
		return UnitType
	case bool:
		return BoolType
	case int64:
		return IntType
	case float64:
		return FloatType
	case Char:
		return CharType
	case string:
		return StringType
	case Array:
		return ArrayType
	case Tuple:
		return TupleType
	case Object:
		return ObjectType
	case Range:
		return RangeType
	case Variant:
		return EnumType
	}
	if k, ok := v.(Kinder); ok {
		switch k.Kind() {
		case "function", "builtin":
			return FuncType
		}
	}
	return OpaqueType
}
