package vm

import "strconv"

// ---------------------------------------------------------------------------
// Value: the runtime datum
// ---------------------------------------------------------------------------

// Kind identifies which variant a Value holds.
type Kind uint8

const (
	KindInteger Kind = iota
	KindBoolean
)

func (k Kind) String() string {
	switch k {
	case KindInteger:
		return "Integer"
	case KindBoolean:
		return "Boolean"
	default:
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Value is either a signed 64-bit Integer or a Boolean. The zero Value is
// Integer 0. Values are small and always copied.
type Value struct {
	kind Kind
	bits int64 // integer payload, or 0/1 for booleans
}

// Int returns an Integer value.
func Int(n int64) Value {
	return Value{kind: KindInteger, bits: n}
}

// Bool returns a Boolean value.
func Bool(b bool) Value {
	if b {
		return Value{kind: KindBoolean, bits: 1}
	}
	return Value{kind: KindBoolean}
}

// Well-known values.
var (
	True  = Bool(true)
	False = Bool(false)
)

// Kind returns the variant held by v.
func (v Value) Kind() Kind { return v.kind }

// IsInteger reports whether v holds an Integer.
func (v Value) IsInteger() bool { return v.kind == KindInteger }

// IsBoolean reports whether v holds a Boolean.
func (v Value) IsBoolean() bool { return v.kind == KindBoolean }

// AsInt returns the integer payload and true, or 0 and false for a Boolean.
func (v Value) AsInt() (int64, bool) {
	if v.kind != KindInteger {
		return 0, false
	}
	return v.bits, true
}

// AsBool returns the boolean payload and true, or false and false for an
// Integer.
func (v Value) AsBool() (bool, bool) {
	if v.kind != KindBoolean {
		return false, false
	}
	return v.bits != 0, true
}

// Truthy reports the truth of v as used by JUMP_IF_FALSE. An Integer is
// truthy iff it is nonzero.
func (v Value) Truthy() bool {
	return v.bits != 0
}

// String renders v as PRINT_VAL writes it.
func (v Value) String() string {
	if v.kind == KindBoolean {
		if v.bits != 0 {
			return "true"
		}
		return "false"
	}
	return strconv.FormatInt(v.bits, 10)
}

// ---------------------------------------------------------------------------
// Arithmetic
// ---------------------------------------------------------------------------

// Integer arithmetic wraps on overflow. MinInt64 / -1 yields MinInt64.

func (v Value) Add(w Value) (Value, error) {
	if v.kind != KindInteger || w.kind != KindInteger {
		return Value{}, errInvalidOperand("ADD", v, w)
	}
	return Int(v.bits + w.bits), nil
}

func (v Value) Sub(w Value) (Value, error) {
	if v.kind != KindInteger || w.kind != KindInteger {
		return Value{}, errInvalidOperand("SUB", v, w)
	}
	return Int(v.bits - w.bits), nil
}

func (v Value) Mul(w Value) (Value, error) {
	if v.kind != KindInteger || w.kind != KindInteger {
		return Value{}, errInvalidOperand("MUL", v, w)
	}
	return Int(v.bits * w.bits), nil
}

// Div truncates toward zero. The kind check runs before the zero check, so
// dividing a Boolean by zero is an invalid operand.
func (v Value) Div(w Value) (Value, error) {
	if v.kind != KindInteger || w.kind != KindInteger {
		return Value{}, errInvalidOperand("DIV", v, w)
	}
	if w.bits == 0 {
		return Value{}, &Error{Kind: DivisionByZero}
	}
	return Int(v.bits / w.bits), nil
}

// ---------------------------------------------------------------------------
// Comparison
// ---------------------------------------------------------------------------

func (v Value) Gt(w Value) (Value, error) {
	if v.kind != KindInteger || w.kind != KindInteger {
		return Value{}, errInvalidOperand("GT", v, w)
	}
	return Bool(v.bits > w.bits), nil
}

func (v Value) Lt(w Value) (Value, error) {
	if v.kind != KindInteger || w.kind != KindInteger {
		return Value{}, errInvalidOperand("LT", v, w)
	}
	return Bool(v.bits < w.bits), nil
}

func (v Value) Gte(w Value) (Value, error) {
	if v.kind != KindInteger || w.kind != KindInteger {
		return Value{}, errInvalidOperand("GTE", v, w)
	}
	return Bool(v.bits >= w.bits), nil
}

func (v Value) Lte(w Value) (Value, error) {
	if v.kind != KindInteger || w.kind != KindInteger {
		return Value{}, errInvalidOperand("LTE", v, w)
	}
	return Bool(v.bits <= w.bits), nil
}

// Eq compares two values of the same kind. Mixed kinds are an invalid
// operand rather than unequal.
func (v Value) Eq(w Value) (Value, error) {
	if v.kind != w.kind {
		return Value{}, errInvalidOperand("EQ", v, w)
	}
	return Bool(v.bits == w.bits), nil
}

func (v Value) Neq(w Value) (Value, error) {
	if v.kind != w.kind {
		return Value{}, errInvalidOperand("NEQ", v, w)
	}
	return Bool(v.bits != w.bits), nil
}
