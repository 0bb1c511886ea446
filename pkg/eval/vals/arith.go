package vals

import (
	"math"

	"src.rook.sh/pkg/ast"
	"src.rook.sh/pkg/eval/errs"
)

// FloatEpsilon is the smallest divisor magnitude accepted by float division.
// Dividing by anything closer to zero is a DivisionByZero error rather than
// an infinity.
const FloatEpsilon = 2.220446049250313e-16

var errDivisionByZero = errs.New(errs.DivisionByZero, "division by zero")

// Truthy returns the truthiness of a value. Only nil and false are falsy;
// 0, 0.0, "" and empty containers are all truthy.
func Truthy(v any) bool {
	switch v := v.(type) {
	case nil:
		return false
	case bool:
		return v
	}
	return true
}

// BinaryOp applies a non-short-circuiting binary operator.
func BinaryOp(op ast.BinaryOp, a, b any) (any, error) {
	switch op {
	case ast.Add:
		return Add(a, b)
	case ast.Sub, ast.Mul, ast.Div, ast.Rem:
		return arith(op, a, b)
	case ast.Pow:
		return Pow(a, b)
	case ast.Eq:
		return Eq(a, b), nil
	case ast.Ne:
		return !Eq(a, b), nil
	case ast.Lt, ast.Le, ast.Gt, ast.Ge:
		return compareOp(op, a, b)
	case ast.BitAnd, ast.BitOr, ast.BitXor, ast.Shl, ast.Shr:
		return bitOp(op, a, b)
	case ast.And:
		return Truthy(a) && Truthy(b), nil
	case ast.Or:
		return Truthy(a) || Truthy(b), nil
	}
	return nil, errs.Newf(errs.RuntimeError, "unsupported operator %s", op.Symbol())
}

func opError(op ast.BinaryOp, a, b any) error {
	return errs.Newf(errs.TypeError, "cannot apply %s to %s and %s", op.Symbol(), Kind(a), Kind(b))
}

// Eq is the == operator. It is Equal, except that integers and floats are
// compared numerically.
func Eq(a, b any) bool {
	if isNumber(a) && isNumber(b) {
		return Compare(a, b) == Same
	}
	return Equal(a, b)
}

func isNumber(v any) bool {
	switch v.(type) {
	case int64, float64:
		return true
	}
	return false
}

// Add is the + operator. It adds numbers, concatenates strings and
// concatenates arrays.
func Add(a, b any) (any, error) {
	switch a := a.(type) {
	case string:
		switch b := b.(type) {
		case string:
			return a + b, nil
		case Char:
			return a + string(rune(b)), nil
		}
	case Array:
		if b, ok := b.(Array); ok {
			for it := b.Iterator(); it.HasElem(); it.Next() {
				a = a.Cons(it.Elem())
			}
			return a, nil
		}
	}
	return arith(ast.Add, a, b)
}

func arith(op ast.BinaryOp, a, b any) (any, error) {
	switch a := a.(type) {
	case int64:
		switch b := b.(type) {
		case int64:
			return intArith(op, a, b)
		case float64:
			return floatArith(op, float64(a), b)
		}
	case float64:
		switch b := b.(type) {
		case int64:
			return floatArith(op, a, float64(b))
		case float64:
			return floatArith(op, a, b)
		}
	}
	return nil, opError(op, a, b)
}

// Integer arithmetic wraps on overflow.
func intArith(op ast.BinaryOp, a, b int64) (any, error) {
	switch op {
	case ast.Add:
		return a + b, nil
	case ast.Sub:
		return a - b, nil
	case ast.Mul:
		return a * b, nil
	case ast.Div:
		if b == 0 {
			return nil, errDivisionByZero
		}
		return a / b, nil
	case ast.Rem:
		if b == 0 {
			return nil, errDivisionByZero
		}
		return a % b, nil
	}
	return nil, opError(op, a, b)
}

func floatArith(op ast.BinaryOp, a, b float64) (any, error) {
	switch op {
	case ast.Add:
		return a + b, nil
	case ast.Sub:
		return a - b, nil
	case ast.Mul:
		return a * b, nil
	case ast.Div:
		if math.Abs(b) < FloatEpsilon {
			return nil, errDivisionByZero
		}
		return a / b, nil
	case ast.Rem:
		if math.Abs(b) < FloatEpsilon {
			return nil, errDivisionByZero
		}
		return math.Mod(a, b), nil
	}
	return nil, opError(op, a, b)
}

// Pow is the ** operator. An integer raised to a negative integer power is a
// float.
func Pow(a, b any) (any, error) {
	switch a := a.(type) {
	case int64:
		switch b := b.(type) {
		case int64:
			if b < 0 {
				return math.Pow(float64(a), float64(b)), nil
			}
			return intPow(a, b), nil
		case float64:
			return math.Pow(float64(a), b), nil
		}
	case float64:
		switch b := b.(type) {
		case int64:
			return math.Pow(a, float64(b)), nil
		case float64:
			return math.Pow(a, b), nil
		}
	}
	return nil, opError(ast.Pow, a, b)
}

func intPow(base, exp int64) int64 {
	result := int64(1)
	for exp > 0 {
		if exp&1 == 1 {
			result *= base
		}
		base *= base
		exp >>= 1
	}
	return result
}

func compareOp(op ast.BinaryOp, a, b any) (any, error) {
	o := Compare(a, b)
	if o == Incomparable {
		if isFloatNaN(a) || isFloatNaN(b) {
			return false, nil
		}
		return nil, errs.Newf(errs.TypeError, "cannot compare %s and %s", Kind(a), Kind(b))
	}
	switch op {
	case ast.Lt:
		return o == Less, nil
	case ast.Le:
		return o != Greater, nil
	case ast.Gt:
		return o == Greater, nil
	default:
		return o != Less, nil
	}
}

func isFloatNaN(v any) bool {
	f, ok := v.(float64)
	return ok && math.IsNaN(f)
}

func bitOp(op ast.BinaryOp, a, b any) (any, error) {
	if x, ok := a.(bool); ok {
		if y, ok := b.(bool); ok {
			switch op {
			case ast.BitAnd:
				return x && y, nil
			case ast.BitOr:
				return x || y, nil
			case ast.BitXor:
				return x != y, nil
			}
		}
		return nil, opError(op, a, b)
	}
	x, ok1 := a.(int64)
	y, ok2 := b.(int64)
	if !ok1 || !ok2 {
		return nil, opError(op, a, b)
	}
	switch op {
	case ast.BitAnd:
		return x & y, nil
	case ast.BitOr:
		return x | y, nil
	case ast.BitXor:
		return x ^ y, nil
	}
	if y < 0 || y > 63 {
		return nil, errs.Newf(errs.RuntimeError, "shift amount %d out of range", y)
	}
	if op == ast.Shl {
		return x << uint(y), nil
	}
	return x >> uint(y), nil
}

// UnaryOp applies a unary operator. References and dereferences are the
// identity.
func UnaryOp(op ast.UnaryOp, v any) (any, error) {
	switch op {
	case ast.Neg:
		switch v := v.(type) {
		case int64:
			return -v, nil
		case float64:
			return -v, nil
		}
	case ast.Not:
		return !Truthy(v), nil
	case ast.BitNot:
		if i, ok := v.(int64); ok {
			return ^i, nil
		}
	case ast.Ref, ast.Deref:
		return v, nil
	}
	return nil, errs.Newf(errs.TypeError, "cannot apply unary %s to %s", op.Symbol(), Kind(v))
}
