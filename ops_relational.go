// ops_relational.go — the relational engine.
//
// Every comparison writes a BOOL into the return address, which must already
// exist and carry tag BOOL. Numeric equality uses an absolute tolerance of
// 1e-12; the isChars* pair compares resolved strings and refuses operands
// that look numeric, pointing the author at the numeric comparators.
package verlight

import (
	"math"
	"strconv"
)

const floatEqualsEps = 1e-12

func registerRelationalOps(vm *VM) {
	vm.register("isEqual", opCompare(func(a, b float64) bool { return floatEquals(a, b) }))
	vm.register("isNotEqual", opCompare(func(a, b float64) bool { return !floatEquals(a, b) }))
	vm.register("isGreater", opCompare(func(a, b float64) bool { return a > b }))
	vm.register("isLess", opCompare(func(a, b float64) bool { return a < b }))
	vm.register("isGreaterEqual", opCompare(func(a, b float64) bool { return a >= b }))
	vm.register("isLessEqual", opCompare(func(a, b float64) bool { return a <= b }))

	vm.register("isCharsEqual", opCompareChars(false))
	vm.register("isCharsNotEqual", opCompareChars(true))
	vm.register("isNotCharsEqual", opCompareChars(true)) // historical dispatch key
}

func floatEquals(a, b float64) bool {
	return math.Abs(a-b) < floatEqualsEps
}

// relationalOperands resolves and validates the two-operand shape shared by
// every comparison, and checks the BOOL return contract.
func relationalOperands(mem *SectionMemory, params []string, ret string) (left, right string, err error) {
	if !mem.Contains(ret) {
		return "", "", errf(ErrUnknownReturnAddress, "return address %q was not found in the memory", ret)
	}
	if len(params) != 2 {
		return "", "", errf(ErrBadCall, "comparisons take exactly two parameters")
	}
	if left, err = resolveToken(mem, params[0]); err != nil {
		return
	}
	right, err = resolveToken(mem, params[1])
	return
}

func requireBoolRet(mem *SectionMemory, ret string) error {
	ra, err := mem.Get(ret)
	if err != nil {
		return err
	}
	if ra.Tag != TagBool {
		return errf(ErrTypeMismatch, "comparisons require a boolean return address")
	}
	return nil
}

func opCompare(cmp func(a, b float64) bool) opFunc {
	return func(vm *VM, params []string, ret string, mem *SectionMemory) error {
		left, right, err := relationalOperands(mem, params, ret)
		if err != nil {
			return err
		}
		if !isNumeric(left) || !isNumeric(right) {
			return errf(ErrBadLiteral, "operands must be numbers; use isCharsEqual() for text")
		}
		a, _ := strconv.ParseFloat(left, 64)
		b, _ := strconv.ParseFloat(right, 64)
		if err := requireBoolRet(mem, ret); err != nil {
			return err
		}
		return mem.Reinsert(ret, Bool(cmp(a, b)))
	}
}

func opCompareChars(negate bool) opFunc {
	return func(vm *VM, params []string, ret string, mem *SectionMemory) error {
		left, right, err := relationalOperands(mem, params, ret)
		if err != nil {
			return err
		}
		if isNumeric(left) || isNumeric(right) {
			return errf(ErrBadLiteral, "operands look numeric; use isEqual() instead")
		}
		if err := requireBoolRet(mem, ret); err != nil {
			return err
		}
		return mem.Reinsert(ret, Bool((left == right) != negate))
	}
}
