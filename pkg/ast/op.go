package ast

// BinaryOp is a binary operator.
type BinaryOp int

// Binary operators. NoOp marks a plain assignment in Assign.
const (
	NoOp BinaryOp = iota
	Add
	Sub
	Mul
	Div
	Rem
	Pow
	Eq
	Ne
	Lt
	Le
	Gt
	Ge
	And
	Or
	BitAnd
	BitOr
	BitXor
	Shl
	Shr
)

var binaryOpSymbols = [...]string{
	NoOp: "", Add: "+", Sub: "-", Mul: "*", Div: "/", Rem: "%", Pow: "**",
	Eq: "==", Ne: "!=", Lt: "<", Le: "<=", Gt: ">", Ge: ">=",
	And: "&&", Or: "||", BitAnd: "&", BitOr: "|", BitXor: "^", Shl: "<<", Shr: ">>",
}

var binaryOpNames = [...]string{
	NoOp: "NoOp", Add: "Add", Sub: "Sub", Mul: "Mul", Div: "Div", Rem: "Rem", Pow: "Pow",
	Eq: "Eq", Ne: "Ne", Lt: "Lt", Le: "Le", Gt: "Gt", Ge: "Ge",
	And: "And", Or: "Or", BitAnd: "BitAnd", BitOr: "BitOr", BitXor: "BitXor", Shl: "Shl", Shr: "Shr",
}

// Symbol returns the source form of the operator.
func (op BinaryOp) Symbol() string { return binaryOpSymbols[op] }

func (op BinaryOp) String() string { return binaryOpNames[op] }

// IsComparison reports whether op produces a bool from two operands.
func (op BinaryOp) IsComparison() bool {
	return op >= Eq && op <= Ge
}

// IsLogical reports whether op is && or ||.
func (op BinaryOp) IsLogical() bool { return op == And || op == Or }

// UnaryOp is a unary operator.
type UnaryOp int

// Unary operators.
const (
	Neg UnaryOp = iota
	Not
	BitNot
	// Ref and Deref are accepted for the transpiler and are no-ops in the
	// interpreter.
	Ref
	Deref
)

// Symbol returns the source form of the operator.
func (op UnaryOp) Symbol() string {
	switch op {
	case Neg:
		return "-"
	case Not:
		return "!"
	case BitNot:
		return "~"
	case Ref:
		return "&"
	case Deref:
		return "*"
	}
	return "?"
}

func (op UnaryOp) String() string {
	switch op {
	case Neg:
		return "Neg"
	case Not:
		return "Not"
	case BitNot:
		return "BitNot"
	case Ref:
		return "Ref"
	case Deref:
		return "Deref"
	}
	return "?"
}
