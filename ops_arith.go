// ops_arith.go — the arithmetic engine.
//
// All arithmetic runs through a float64 accumulator and is then narrowed
// into the return variable according to its declared tag, with range checks
// for every tag below FMAX. The return address is required (never
// "nullptr") because every operation here writes a result.
//
// divide and mod are deliberately unguarded against zero denominators:
// float division inherits IEEE semantics, and integer modulus by zero
// faults, matching the reference behavior.
package verlight

import (
	"math"
	"strconv"
)

func registerArithmeticOps(vm *VM) {
	vm.register("sum", opAccumulate(0, func(acc, x float64) float64 { return acc + x }, "sum"))
	vm.register("add", opAccumulate(0, func(acc, x float64) float64 { return acc + x }, "sum"))
	vm.register("product", opAccumulate(1, func(acc, x float64) float64 { return acc * x }, "product"))
	vm.register("multiply", opAccumulate(1, func(acc, x float64) float64 { return acc * x }, "product"))

	vm.register("subtract", opBinary(func(a, b float64) float64 { return a - b }, "subtract"))
	vm.register("divide", opBinary(func(a, b float64) float64 { return a / b }, "divide"))
	vm.register("mod", opMod)

	vm.register("floor", opUnary(math.Floor, "floor"))
	vm.register("ceiling", opUnary(math.Ceil, "ceiling"))
	vm.register("abs", opUnary(math.Abs, "abs"))
	vm.register("pow", opBinary(math.Pow, "pow"))

	vm.register("isNum", opIsNum)
}

/* ---------- operand handling ---------- */

// numericOperand resolves a `$` reference and validates the numeric form.
func numericOperand(mem *SectionMemory, tok, opName string) (float64, error) {
	s, err := resolveToken(mem, tok)
	if err != nil {
		return 0, err
	}
	if !isNumeric(s) {
		return 0, errf(ErrBadLiteral, "bad value for %s(): %s", opName, s)
	}
	f, perr := strconv.ParseFloat(s, 64)
	if perr != nil {
		return 0, errf(ErrOverflow, "value %q is out of range for %s()", s, opName)
	}
	return f, nil
}

// requireRet fetches the return variable; arithmetic results always need a
// real destination.
func requireRet(mem *SectionMemory, ret string) (Value, error) {
	ra, err := mem.Get(ret)
	if err != nil {
		return Value{}, errf(ErrUnknownReturnAddress, "can't find the return address %q", ret)
	}
	return ra, nil
}

// storeNumeric narrows the accumulator into the return variable's tag.
// Every integer tag and F32/F64 are range-checked; FMAX stores the
// accumulator unchanged.
func storeNumeric(mem *SectionMemory, ret string, ra Value, acc float64, opName string) error {
	tooSmall := func() error {
		return errf(ErrOverflow, "return address too small for %s", opName)
	}
	switch ra.Tag {
	case TagI8:
		if acc < math.MinInt8 || acc > math.MaxInt8 {
			return tooSmall()
		}
		return mem.Reinsert(ret, I8(int8(acc)))
	case TagI16:
		if acc < math.MinInt16 || acc > math.MaxInt16 {
			return tooSmall()
		}
		return mem.Reinsert(ret, I16(int16(acc)))
	case TagI32:
		if acc < math.MinInt32 || acc > math.MaxInt32 {
			return tooSmall()
		}
		return mem.Reinsert(ret, I32(int32(acc)))
	case TagI64:
		if acc < math.MinInt64 || acc >= math.MaxInt64+1 {
			return tooSmall()
		}
		return mem.Reinsert(ret, I64(int64(acc)))
	case TagF32:
		if acc < -math.MaxFloat32 || acc > math.MaxFloat32 {
			return tooSmall()
		}
		return mem.Reinsert(ret, F32(float32(acc)))
	case TagF64:
		if acc < -math.MaxFloat64 || acc > math.MaxFloat64 {
			return tooSmall()
		}
		return mem.Reinsert(ret, F64(acc))
	case TagFMax:
		return mem.Reinsert(ret, FMax(acc))
	}
	return errf(ErrTypeMismatch, "invalid type for %s(): only numeric types allowed", opName)
}

/* ---------- operation shapes ---------- */

func opAccumulate(identity float64, combine func(acc, x float64) float64, name string) opFunc {
	return func(vm *VM, params []string, ret string, mem *SectionMemory) error {
		ra, err := requireRet(mem, ret)
		if err != nil {
			return err
		}
		acc := identity
		for _, tok := range params {
			x, err := numericOperand(mem, tok, name)
			if err != nil {
				return err
			}
			acc = combine(acc, x)
		}
		return storeNumeric(mem, ret, ra, acc, name)
	}
}

func opBinary(compute func(a, b float64) float64, name string) opFunc {
	return func(vm *VM, params []string, ret string, mem *SectionMemory) error {
		ra, err := requireRet(mem, ret)
		if err != nil {
			return err
		}
		if len(params) != 2 {
			return errf(ErrBadCall, "%s() only takes two parameters", name)
		}
		a, err := numericOperand(mem, params[0], name)
		if err != nil {
			return err
		}
		b, err := numericOperand(mem, params[1], name)
		if err != nil {
			return err
		}
		return storeNumeric(mem, ret, ra, compute(a, b), name)
	}
}

func opUnary(compute func(x float64) float64, name string) opFunc {
	return func(vm *VM, params []string, ret string, mem *SectionMemory) error {
		ra, err := requireRet(mem, ret)
		if err != nil {
			return err
		}
		if len(params) != 1 {
			return errf(ErrBadCall, "%s() only takes a single parameter", name)
		}
		x, err := numericOperand(mem, params[0], name)
		if err != nil {
			return err
		}
		return storeNumeric(mem, ret, ra, compute(x), name)
	}
}

// opMod casts both operands to int64 (truncating toward zero, as the float
// pipeline demands) before taking the remainder. A zero divisor faults.
func opMod(vm *VM, params []string, ret string, mem *SectionMemory) error {
	ra, err := requireRet(mem, ret)
	if err != nil {
		return err
	}
	if len(params) != 2 {
		return errf(ErrBadCall, "mod() only takes two parameters")
	}
	a, err := numericOperand(mem, params[0], "mod")
	if err != nil {
		return err
	}
	b, err := numericOperand(mem, params[1], "mod")
	if err != nil {
		return err
	}
	result := int64(a) % int64(b)
	return storeNumeric(mem, ret, ra, float64(result), "mod")
}

// opIsNum stores whether the raw first parameter is a numeric literal. The
// token is inspected as-is: references are not resolved and the return tag
// is not checked.
func opIsNum(vm *VM, params []string, ret string, mem *SectionMemory) error {
	if len(params) != 1 {
		return errf(ErrBadCall, "isNum() can only take 1 parameter")
	}
	if !mem.Contains(ret) {
		return errf(ErrUnknownReturnAddress, "can't find the return address %q", ret)
	}
	return mem.Reinsert(ret, Bool(isNumeric(params[0])))
}
