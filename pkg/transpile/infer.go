package transpile

import (
	"strings"

	"src.rook.sh/pkg/ast"
	"src.rook.sh/pkg/eval/feedback"
	"src.rook.sh/pkg/eval/vals"
)

// Return types of builtin functions and Rust macros, by name.
var builtinReturnTypes = map[string]string{
	"format":             "String",
	"println":            "",
	"print":              "",
	"eprintln":           "",
	"read_file":          "String",
	"fs::read_to_string": "String",
	"fs_read":            "String",
	"file_exists":        "bool",
	"fs_exists":          "bool",
	"len":                "usize",
	"str":                "String",
	"repr":               "String",
	"type":               "String",
	"type_of":            "String",
	"sqrt":               "f64",
	"rand":               "f64",
	"now":                "f64",
	"rand_int":           "i64",
	"int":                "i64",
	"float":              "f64",
	"bool":               "bool",
	"env::args":          "Vec<String>",
	"env_args":           "Vec<String>",
	"os_name":            "String",
	"String::from":       "String",
	"String::new":        "String",
}

// Methods whose result is a bool.
var boolMethods = map[string]bool{
	"contains": true, "starts_with": true, "ends_with": true, "is_empty": true,
	"any": true, "all": true, "contains_key": true,
}

// Methods whose result is a String.
var stringMethods = map[string]bool{
	"to_string": true, "to_uppercase": true, "to_lowercase": true, "trim": true,
	"repeat": true, "replace": true, "join": true, "to_owned": true,
}

// Methods that return nothing.
var unitMethods = map[string]bool{
	"push": true, "insert": true, "clear": true, "push_str": true, "extend": true,
	"sort": true, "truncate": true, "reverse": true, "for_each": true,
}

// Function names that conventionally compute a number.
var numericNames = []string{"sum", "add", "count", "total", "max", "min", "avg", "factorial", "fib"}

// ReturnType infers the Rust return type of a function; an empty string means
// the function returns unit and the arrow is left out. A declared return type
// is used as written, except that a bare &str with nothing to borrow from
// becomes &'static str. When fb is not nil, the argument types observed by the
// interpreter refine the guess.
func ReturnType(f *ast.Function, fb *feedback.Table) string {
	if f.ReturnType != nil {
		rt := f.ReturnType
		if rt.Kind == ast.RefType && rt.Lifetime == "" && !rt.Mutable &&
			rt.Args[0].Kind == ast.NamedType && rt.Args[0].Name == "str" && !hasRefParam(f) {
			return "&'static str"
		}
		return rt.String()
	}
	if f.Name == "main" || f.Body == nil {
		return ""
	}
	body := tail(f.Body)
	if body == nil || isUnit(body) {
		return ""
	}
	if l, ok := body.(*ast.Lambda); ok {
		return closureType(l)
	}
	if name, ok := calleeName(body); ok {
		if typ, ok := builtinReturnTypes[name]; ok {
			return typ
		}
	}
	switch {
	case all(body, isBool):
		return "bool"
	case all(body, isVec):
		return vecType(body)
	case all(body, isString):
		return "String"
	}
	if fb != nil && !hasSelf(f) && allCallsFloat(fb.CallShapes(f.Name)) {
		return "f64"
	}
	if isNumericName(f.Name) {
		if hasFloatLit(body) {
			return "f64"
		}
		return "i32"
	}
	switch {
	case all(body, isStrLit):
		return "&'static str"
	case all(body, isObject):
		return "std::collections::HashMap<String, String>"
	}
	if id, ok := body.(*ast.Ident); ok {
		for i, p := range f.Params {
			if p.Name != id.Name {
				continue
			}
			if p.Type != nil {
				return p.Type.String()
			}
			if typ := observedParamType(fb, f.Name, f.Params, i); typ != "" {
				return typ
			}
		}
	}
	if all(body, isFloatArith) {
		return "f64"
	}
	return "i32"
}

// tail returns the expression whose value a body evaluates to.
func tail(e ast.Expr) ast.Expr {
	for {
		switch x := e.(type) {
		case *ast.Block:
			if len(x.Exprs) == 0 {
				return nil
			}
			e = x.Exprs[len(x.Exprs)-1]
		case *ast.Let:
			if x.Body == nil {
				return e
			}
			e = x.Body
		case *ast.Return:
			if x.Value == nil {
				return nil
			}
			e = x.Value
		default:
			return e
		}
	}
}

// all reports whether pred holds for every value e can produce, looking into
// the branches of if and match.
func all(e ast.Expr, pred func(ast.Expr) bool) bool {
	e = tail(e)
	switch x := e.(type) {
	case nil:
		return false
	case *ast.If:
		return x.Else != nil && all(x.Then, pred) && all(x.Else, pred)
	case *ast.IfLet:
		return x.Else != nil && all(x.Then, pred) && all(x.Else, pred)
	case *ast.Match:
		if len(x.Arms) == 0 {
			return false
		}
		for _, arm := range x.Arms {
			if !all(arm.Body, pred) {
				return false
			}
		}
		return true
	}
	return pred(e)
}

func isUnit(e ast.Expr) bool {
	switch x := e.(type) {
	case *ast.Assign, *ast.For, *ast.While:
		return true
	case *ast.Let:
		return x.Body == nil
	case *ast.Literal:
		return x.Kind == ast.UnitLit
	case *ast.Macro:
		switch x.Name {
		case "println", "print", "eprintln", "assert", "assert_eq":
			return true
		}
	case *ast.Call:
		if id, ok := x.Callee.(*ast.Ident); ok {
			_, ok := printMacros[id.Name]
			return ok
		}
	case *ast.MethodCall:
		return unitMethods[x.Method]
	case *ast.If:
		return x.Else == nil
	case *ast.IfLet:
		return x.Else == nil
	}
	return ast.IsDecl(e)
}

func calleeName(e ast.Expr) (string, bool) {
	switch x := e.(type) {
	case *ast.Call:
		if id, ok := x.Callee.(*ast.Ident); ok {
			return id.Name, true
		}
	case *ast.Macro:
		return x.Name, true
	}
	return "", false
}

func isBool(e ast.Expr) bool {
	switch x := e.(type) {
	case *ast.Binary:
		return x.Op.IsComparison() || x.Op.IsLogical()
	case *ast.Unary:
		return x.Op == ast.Not
	case *ast.Literal:
		return x.Kind == ast.BoolLit
	case *ast.MethodCall:
		return strings.HasPrefix(x.Method, "is_") || boolMethods[x.Method]
	}
	return false
}

func isVec(e ast.Expr) bool {
	switch x := e.(type) {
	case *ast.List:
		return true
	case *ast.Macro:
		return x.Name == "vec"
	case *ast.MethodCall:
		return x.Method == "collect"
	}
	return false
}

// vecType guesses the element type of a vector from its literal elements.
func vecType(e ast.Expr) string {
	var elems []ast.Expr
	switch x := tail(e).(type) {
	case *ast.List:
		elems = x.Elems
	case *ast.Macro:
		elems = x.Args
	}
	if len(elems) > 0 {
		switch {
		case allExprs(elems, isFloatLit):
			return "Vec<f64>"
		case allExprs(elems, isStrLit):
			return "Vec<&'static str>"
		case allExprs(elems, isBoolLit):
			return "Vec<bool>"
		}
	}
	return "Vec<i32>"
}

func allExprs(es []ast.Expr, pred func(ast.Expr) bool) bool {
	for _, e := range es {
		if !pred(e) {
			return false
		}
	}
	return true
}

func isString(e ast.Expr) bool {
	switch x := e.(type) {
	case *ast.StringInterp:
		return true
	case *ast.Binary:
		return x.Op == ast.Add && (isStringy(x.Left) || isStringy(x.Right))
	case *ast.MethodCall:
		return stringMethods[x.Method]
	}
	if name, ok := calleeName(e); ok {
		return builtinReturnTypes[name] == "String"
	}
	return false
}

// isStringy reports whether e is a string operand of a concatenation.
func isStringy(e ast.Expr) bool {
	return isStrLit(e) || isString(e)
}

func isStrLit(e ast.Expr) bool {
	l, ok := e.(*ast.Literal)
	return ok && l.Kind == ast.StringLit
}

func isBoolLit(e ast.Expr) bool {
	l, ok := e.(*ast.Literal)
	return ok && l.Kind == ast.BoolLit
}

func isObject(e ast.Expr) bool {
	_, ok := e.(*ast.Object)
	return ok
}

// isFloatArith reports whether e is arithmetic involving a float literal.
func isFloatArith(e ast.Expr) bool {
	switch x := e.(type) {
	case *ast.Literal:
		return x.Kind == ast.FloatLit
	case *ast.Binary:
		if x.Op.IsComparison() || x.Op.IsLogical() {
			return false
		}
		return isFloatArith(x.Left) || isFloatArith(x.Right)
	case *ast.Unary:
		return x.Op == ast.Neg && isFloatArith(x.Operand)
	}
	return false
}

func hasFloatLit(e ast.Expr) bool {
	found := false
	ast.Inspect(e, func(e ast.Expr) bool {
		if isFloatLit(e) {
			found = true
		}
		return !found
	})
	return found
}

func isNumericName(name string) bool {
	name = strings.ToLower(name)
	for _, n := range numericNames {
		if strings.Contains(name, n) {
			return true
		}
	}
	return false
}

func allCallsFloat(shapes []feedback.Shape) bool {
	if len(shapes) == 0 {
		return false
	}
	for _, s := range shapes {
		types := s.Types()
		if len(types) == 0 {
			return false
		}
		for _, typ := range types {
			if typ != vals.FloatType {
				return false
			}
		}
	}
	return true
}

func hasSelf(f *ast.Function) bool {
	return len(f.Params) > 0 && f.Params[0].Name == "self"
}

// hasRefParam reports whether a returned reference could borrow from a
// parameter.
func hasRefParam(f *ast.Function) bool {
	for _, p := range f.Params {
		if p.Name == "self" || (p.Type != nil && p.Type.Kind == ast.RefType) {
			return true
		}
	}
	return false
}

func closureType(l *ast.Lambda) string {
	params := make([]string, len(l.Params))
	for i, p := range l.Params {
		if p.Type != nil {
			params[i] = p.Type.String()
		} else {
			params[i] = "i32"
		}
	}
	return "impl Fn(" + strings.Join(params, ", ") + ") -> i32"
}

// observedParamType maps the type the interpreter saw for a parameter to a
// Rust type. Methods are skipped since their calls are not recorded by name.
func observedParamType(fb *feedback.Table, fn string, params []*ast.Param, i int) string {
	if fb == nil || (len(params) > 0 && params[0].Name == "self") {
		return ""
	}
	typ, ok := fb.ParamType(fn, i)
	if !ok {
		return ""
	}
	return rustType(typ)
}

func rustType(typ vals.TypeID) string {
	switch typ {
	case vals.IntType:
		return "i32"
	case vals.FloatType:
		return "f64"
	case vals.BoolType:
		return "bool"
	case vals.StringType:
		return "&str"
	case vals.CharType:
		return "char"
	case vals.ArrayType:
		return "Vec<i32>"
	}
	return ""
}
