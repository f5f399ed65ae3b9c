package factor

import "math"

// Op is the closed set of elementwise combination operators forming the
// semirings of the algebra: sum-product, max-product, min-sum, and the
// boolean pair. Dispatch is a plain switch to concrete functions; there
// is no per-operator code duplication elsewhere in the package.
type Op int

const (
	// OpSum is elementwise addition; collapse identity 0.
	OpSum Op = iota
	// OpDifference is elementwise subtraction; collapse identity 0.
	// (Not associative; collapsing with it is permitted but rarely
	// meaningful.)
	OpDifference
	// OpProduct is elementwise multiplication; collapse identity 1.
	OpProduct
	// OpDivide is SAFE elementwise division: x/0 = 0 rather than
	// NaN/Inf, keeping belief-propagation quotients finite;
	// collapse identity 1.
	OpDivide
	// OpMax is elementwise maximum; collapse identity -Inf.
	OpMax
	// OpMin is elementwise minimum; collapse identity +Inf.
	OpMin
	// OpAnd treats nonzero as true: and(x,y) ∈ {0,1}; identity 1.
	OpAnd
	// OpOr treats nonzero as true: or(x,y) ∈ {0,1}; identity 0.
	OpOr
)

// Valid reports whether op is inside the closed set.
func (op Op) Valid() bool { return op >= OpSum && op <= OpOr }

// Apply evaluates the operator on a pair of cell values.
func (op Op) Apply(a, b float64) float64 {
	switch op {
	case OpSum:
		return a + b
	case OpDifference:
		return a - b
	case OpProduct:
		return a * b
	case OpDivide:
		if b == 0 {
			return 0 // safe divide
		}
		return a / b
	case OpMax:
		return math.Max(a, b)
	case OpMin:
		return math.Min(a, b)
	case OpAnd:
		if a != 0 && b != 0 {
			return 1
		}
		return 0
	case OpOr:
		if a != 0 || b != 0 {
			return 1
		}
		return 0
	default:
		return math.NaN()
	}
}

// Identity returns the neutral starting value for collapsing with op.
func (op Op) Identity() float64 {
	switch op {
	case OpSum, OpDifference, OpOr:
		return 0
	case OpProduct, OpDivide, OpAnd:
		return 1
	case OpMax:
		return math.Inf(-1)
	case OpMin:
		return math.Inf(1)
	default:
		return math.NaN()
	}
}

// fn returns the operator as a closure for the table kernels.
func (op Op) fn() func(float64, float64) float64 {
	return op.Apply
}

// String names the operator for diagnostics.
func (op Op) String() string {
	switch op {
	case OpSum:
		return "sum"
	case OpDifference:
		return "difference"
	case OpProduct:
		return "product"
	case OpDivide:
		return "divide"
	case OpMax:
		return "max"
	case OpMin:
		return "min"
	case OpAnd:
		return "and"
	case OpOr:
		return "or"
	default:
		return "invalid"
	}
}
