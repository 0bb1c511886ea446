package eval

import (
	"sort"
	"strings"

	"src.rook.sh/pkg/ast"
	"src.rook.sh/pkg/eval/errs"
	"src.rook.sh/pkg/eval/vals"
)

// structInfo describes a declared struct.
type structInfo struct {
	name   string
	fields []string
	// tuple is true for tuple structs, whose fields are named 0, 1, ...
	tuple bool
}

// enumInfo describes a declared enum. The arity of each variant is the number
// of values it carries.
type enumInfo struct {
	name     string
	variants map[string]int
	order    []string
}

// typeRegistry holds the declared types of a session and the methods
// implemented for them.
type typeRegistry struct {
	structs map[string]*structInfo
	enums   map[string]*enumInfo
	traits  map[string]*ast.TraitDecl
	// impls maps a type name to its methods and associated functions.
	impls map[string]map[string]*Closure
}

func newTypeRegistry() *typeRegistry {
	return &typeRegistry{
		structs: map[string]*structInfo{},
		enums:   map[string]*enumInfo{},
		traits:  map[string]*ast.TraitDecl{},
		impls:   map[string]map[string]*Closure{},
	}
}

// clone returns a copy of the registry that can be modified independently.
// Entries are never modified in place, so they are shared.
func (r *typeRegistry) clone() *typeRegistry {
	c := newTypeRegistry()
	for k, v := range r.structs {
		c.structs[k] = v
	}
	for k, v := range r.enums {
		c.enums[k] = v
	}
	for k, v := range r.traits {
		c.traits[k] = v
	}
	for k, methods := range r.impls {
		m := make(map[string]*Closure, len(methods))
		for name, fn := range methods {
			m[name] = fn
		}
		c.impls[k] = m
	}
	return c
}

func (r *typeRegistry) names() []string {
	var names []string
	for k := range r.structs {
		names = append(names, k)
	}
	for k := range r.enums {
		names = append(names, k)
	}
	for k := range r.traits {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func (r *typeRegistry) method(typeName, name string) (*Closure, bool) {
	fn, ok := r.impls[typeName][name]
	return fn, ok
}

func (r *typeRegistry) addMethod(typeName string, fn *Closure) {
	methods, ok := r.impls[typeName]
	if !ok {
		methods = map[string]*Closure{}
		r.impls[typeName] = methods
	}
	methods[fn.Name] = fn
}

// variantCtor constructs a variant that carries values, such as
// Shape::Circle.
type variantCtor struct {
	enum  string
	name  string
	arity int
}

func (c *variantCtor) Kind() string     { return "function" }
func (c *variantCtor) TypeName() string { return "Function" }
func (c *variantCtor) Repr() string     { return "<constructor " + c.enum + "::" + c.name + ">" }
func (c *variantCtor) Equal(other any) bool {
	o, ok := other.(*variantCtor)
	return ok && *o == *c
}

// Call builds the variant.
func (c *variantCtor) Call(fm *Frame, args []any) (any, error) {
	if len(args) != c.arity {
		return nil, errs.ArityMismatch{What: "arguments of " + c.enum + "::" + c.name,
			ValidLow: c.arity, ValidHigh: c.arity, Actual: len(args)}
	}
	return vals.Variant{Enum: c.enum, Name: c.name, Data: append([]any(nil), args...)}, nil
}

// structCtor constructs a tuple struct, such as Point(1, 2).
type structCtor struct {
	info *structInfo
}

func (c *structCtor) Kind() string     { return "function" }
func (c *structCtor) TypeName() string { return "Function" }
func (c *structCtor) Repr() string     { return "<constructor " + c.info.name + ">" }
func (c *structCtor) Equal(other any) bool {
	o, ok := other.(*structCtor)
	return ok && o.info == c.info
}

// Call builds the struct.
func (c *structCtor) Call(fm *Frame, args []any) (any, error) {
	n := len(c.info.fields)
	if len(args) != n {
		return nil, errs.ArityMismatch{What: "arguments of " + c.info.name,
			ValidLow: n, ValidHigh: n, Actual: len(args)}
	}
	obj := vals.Object{TypeName: c.info.name, Fields: vals.EmptyFields}
	for i, f := range c.info.fields {
		obj = obj.With(f, args[i])
	}
	return obj, nil
}

// lookupPath resolves a qualified name such as Color::Red or Point::new
// against the declared types.
func (r *typeRegistry) lookupPath(name string) (any, bool) {
	i := strings.LastIndex(name, "::")
	if i < 0 {
		return nil, false
	}
	typeName, member := name[:i], name[i+2:]
	if info, ok := r.enums[typeName]; ok {
		if arity, ok := info.variants[member]; ok {
			if arity == 0 {
				return vals.Variant{Enum: typeName, Name: member}, true
			}
			return &variantCtor{typeName, member, arity}, true
		}
	}
	if fn, ok := r.method(typeName, member); ok {
		return fn, true
	}
	return nil, false
}

func (fm *Frame) declareStruct(d *ast.StructDecl) {
	info := &structInfo{name: d.Name}
	for _, f := range d.Fields {
		info.fields = append(info.fields, f.Name)
	}
	info.tuple = len(d.Fields) > 0 && d.Fields[0].Name == "0"
	fm.ev.types.structs[d.Name] = info
	if info.tuple {
		fm.env.Bind(d.Name, &structCtor{info}, false)
	}
}

func (fm *Frame) declareEnum(d *ast.EnumDecl) {
	info := &enumInfo{name: d.Name, variants: map[string]int{}}
	for _, v := range d.Variants {
		info.variants[v.Name] = len(v.Fields)
		info.order = append(info.order, v.Name)
	}
	fm.ev.types.enums[d.Name] = info
}

func (fm *Frame) declareImpl(d *ast.ImplDecl) error {
	typeName := d.For
	if i := strings.IndexByte(typeName, '<'); i >= 0 {
		typeName = typeName[:i]
	}
	defined := map[string]bool{}
	for _, m := range d.Methods {
		if m.Body == nil {
			continue
		}
		fm.ev.types.addMethod(typeName, fm.newClosure(m))
		defined[m.Name] = true
	}
	if d.Trait != "" {
		trait, ok := fm.ev.types.traits[d.Trait]
		if !ok {
			return errs.Newf(errs.TypeError, "undefined trait: %s", d.Trait)
		}
		for _, m := range trait.Methods {
			if defined[m.Name] {
				continue
			}
			if m.Body == nil {
				return errs.Newf(errs.TypeError, "missing method %s in impl of %s for %s",
					m.Name, d.Trait, typeName)
			}
			fm.ev.types.addMethod(typeName, fm.newClosure(m))
		}
	}
	return nil
}

func (fm *Frame) structLit(e *ast.StructLit) (any, error) {
	info, ok := fm.ev.types.structs[e.Name]
	if !ok {
		return nil, errs.Newf(errs.TypeError, "undefined struct: %s", e.Name)
	}
	known := map[string]bool{}
	for _, f := range info.fields {
		known[f] = true
	}
	obj := vals.Object{TypeName: e.Name, Fields: vals.EmptyFields}
	for _, f := range e.Fields {
		if !known[f.Key] {
			return nil, errs.Newf(errs.TypeError, "struct %s has no field named %s", e.Name, f.Key)
		}
		v, err := fm.eval(f.Value)
		if err != nil {
			return nil, err
		}
		obj = obj.With(f.Key, v)
	}
	for _, f := range info.fields {
		if _, ok := obj.Field(f); !ok {
			return nil, errs.Newf(errs.TypeError, "missing field %s in initializer of %s", f, e.Name)
		}
	}
	return obj, fm.ev.alloc(vals.Size(obj))
}
