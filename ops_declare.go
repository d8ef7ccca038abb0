// ops_declare.go — variable declarators, reassigners and deletion.
//
// new_<T> creates a variable, reAssign_<T> replaces one; both share the same
// token handling (resolve `$` references, validate, range-check) and differ
// only in the existence requirement and the memory call used. delete_i8 is
// kept as the historical dispatch alias of delete_var.
package verlight

import (
	"math"
	"strconv"
	"strings"
)

func registerDeclaratorOps(vm *VM) {
	vm.register("new_i8", opInt(TagI8, math.MinInt8, math.MaxInt8, false))
	vm.register("new_i16", opInt(TagI16, math.MinInt16, math.MaxInt16, false))
	vm.register("new_i32", opInt(TagI32, math.MinInt32, math.MaxInt32, false))
	vm.register("new_i64", opInt(TagI64, math.MinInt64, math.MaxInt64, false))
	vm.register("new_f32", opFloat(TagF32, false))
	vm.register("new_f64", opFloat(TagF64, false))
	vm.register("new_fmax", opFloat(TagFMax, false))
	vm.register("new_str", opStr(false))
	vm.register("new_char", opChar(false))
	vm.register("new_bool", opBool(false))

	vm.register("reAssign_i8", opInt(TagI8, math.MinInt8, math.MaxInt8, true))
	vm.register("reAssign_i16", opInt(TagI16, math.MinInt16, math.MaxInt16, true))
	vm.register("reAssign_i32", opInt(TagI32, math.MinInt32, math.MaxInt32, true))
	vm.register("reAssign_i64", opInt(TagI64, math.MinInt64, math.MaxInt64, true))
	vm.register("reAssign_f32", opFloat(TagF32, true))
	vm.register("reAssign_f64", opFloat(TagF64, true))
	vm.register("reAssign_fmax", opFloat(TagFMax, true))
	vm.register("reAssign_str", opStr(true))
	vm.register("reAssign_char", opChar(true))
	vm.register("reAssign_bool", opBool(true))

	vm.register("delete_var", opDeleteVar)
	vm.register("delete_i8", opDeleteVar) // legacy dispatch key
}

/* ---------- shared preamble ---------- */

// checkRet verifies the return-address contract shared by every operation:
// "nullptr" is always fine, anything else must exist in memory.
func checkRet(mem *SectionMemory, ret string) error {
	if ret != "nullptr" && !mem.Contains(ret) {
		return errf(ErrUnknownReturnAddress,
			"can't find the return address %q in the memory", ret)
	}
	return nil
}

// resolveToken replaces a `$name` token with the stringified variable value.
func resolveToken(mem *SectionMemory, tok string) (string, error) {
	if strings.HasPrefix(tok, "$") {
		return mem.ResolveRef(tok)
	}
	return tok, nil
}

// checkName enforces the existence side of the declarator contract; it runs
// before value validation so a clashing name wins over a bad literal.
func checkName(mem *SectionMemory, name string, reassign bool) error {
	if reassign {
		if !mem.Contains(name) {
			return errf(ErrUnknownVariable, "variable %q doesn't exist", name)
		}
		return nil
	}
	if mem.Contains(name) {
		return errf(ErrDuplicateVariable, "variable %q already exists", name)
	}
	return nil
}

// store dispatches to Insert or Reinsert after checkName has passed.
func store(mem *SectionMemory, name string, v Value, reassign bool) error {
	if reassign {
		return mem.Reinsert(name, v)
	}
	return mem.Insert(name, v)
}

/* ---------- typed declarators ---------- */

func opInt(tag Tag, min, max int64, reassign bool) opFunc {
	return func(vm *VM, params []string, ret string, mem *SectionMemory) error {
		if len(params) != 2 {
			return errf(ErrBadCall, "integer declarators take exactly 2 parameters")
		}
		if err := checkRet(mem, ret); err != nil {
			return err
		}
		name := params[0]
		value, err := resolveToken(mem, params[1])
		if err != nil {
			return err
		}
		if err := checkName(mem, name, reassign); err != nil {
			return err
		}
		if !isNumeric(value) {
			return errf(ErrBadLiteral, "value %q must be a valid number", value)
		}
		raw, err := intPrefix(value)
		if err != nil {
			return errf(ErrOverflow, "value %q does not fit in a 64-bit integer", value)
		}
		if raw < min || raw > max {
			return errf(ErrOverflow, "value for %q cannot fit in %s", name, strings.ToLower(tag.String()))
		}
		var v Value
		switch tag {
		case TagI8:
			v = I8(int8(raw))
		case TagI16:
			v = I16(int16(raw))
		case TagI32:
			v = I32(int32(raw))
		default:
			v = I64(raw)
		}
		return store(mem, name, v, reassign)
	}
}

func opFloat(tag Tag, reassign bool) opFunc {
	return func(vm *VM, params []string, ret string, mem *SectionMemory) error {
		if len(params) != 2 {
			return errf(ErrBadCall, "float declarators take exactly 2 parameters")
		}
		if err := checkRet(mem, ret); err != nil {
			return err
		}
		name := params[0]
		value, err := resolveToken(mem, params[1])
		if err != nil {
			return err
		}
		if err := checkName(mem, name, reassign); err != nil {
			return err
		}
		if !isNumeric(value) {
			return errf(ErrBadLiteral, "value %q must be a valid number", value)
		}
		f, perr := strconv.ParseFloat(value, 64)
		if perr != nil {
			return errf(ErrOverflow, "value %q is out of float range", value)
		}
		var v Value
		switch tag {
		case TagF32:
			if math.Abs(f) > math.MaxFloat32 {
				return errf(ErrOverflow, "value for %q cannot fit in f32", name)
			}
			v = F32(float32(f))
		case TagF64:
			v = F64(f)
		default:
			v = FMax(f)
		}
		return store(mem, name, v, reassign)
	}
}

func opStr(reassign bool) opFunc {
	return func(vm *VM, params []string, ret string, mem *SectionMemory) error {
		if len(params) != 2 {
			return errf(ErrBadCall, "string declarators take exactly 2 parameters")
		}
		if err := checkRet(mem, ret); err != nil {
			return err
		}
		name := params[0]
		value := params[1]
		if strings.HasPrefix(value, "$") {
			resolved, err := mem.ResolveRef(value)
			if err != nil {
				return err
			}
			value = resolved
		} else {
			// Literal wrapper stripped blindly, quote kind not inspected.
			value = stripEnds(value)
		}
		if err := checkName(mem, name, reassign); err != nil {
			return err
		}
		return store(mem, name, Str(value), reassign)
	}
}

// newCharValue decodes a char operand: a reference resolves to a string whose
// first byte is taken, any other token has its wrapper stripped and its body
// parsed by the character-literal grammar.
func newCharValue(mem *SectionMemory, name, value string) (Value, error) {
	if strings.HasPrefix(value, "$") {
		resolved, err := mem.ResolveRef(value)
		if err != nil {
			return Value{}, err
		}
		if resolved == "" {
			return Value{}, errf(ErrBadLiteral, "reference resolved to empty string for %q", name)
		}
		return Char(resolved[0]), nil
	}
	if len(value) < 2 {
		return Value{}, errf(ErrBadLiteral, "invalid literal for char: %q", value)
	}
	c, err := parseCharBody(stripEnds(value))
	if err != nil {
		return Value{}, err
	}
	return Char(c), nil
}

func opChar(reassign bool) opFunc {
	return func(vm *VM, params []string, ret string, mem *SectionMemory) error {
		if len(params) != 2 {
			return errf(ErrBadCall, "char declarators take exactly 2 parameters")
		}
		if err := checkRet(mem, ret); err != nil {
			return err
		}
		name := params[0]
		if err := checkName(mem, name, reassign); err != nil {
			return err
		}
		v, err := newCharValue(mem, name, params[1])
		if err != nil {
			return err
		}
		return store(mem, name, v, reassign)
	}
}

func opBool(reassign bool) opFunc {
	return func(vm *VM, params []string, ret string, mem *SectionMemory) error {
		if len(params) != 2 {
			return errf(ErrBadCall, "bool declarators take exactly 2 parameters")
		}
		if err := checkRet(mem, ret); err != nil {
			return err
		}
		name := params[0]
		value, err := resolveToken(mem, params[1])
		if err != nil {
			return err
		}
		if err := checkName(mem, name, reassign); err != nil {
			return err
		}
		if value != "true" && value != "false" {
			return errf(ErrBadLiteral, "boolean value must be true or false, got %q", value)
		}
		return store(mem, name, Bool(value == "true"), reassign)
	}
}

/* ---------- deletion ---------- */

func opDeleteVar(vm *VM, params []string, ret string, mem *SectionMemory) error {
	if len(params) != 1 {
		return errf(ErrBadCall, "@delete_var requires exactly 1 parameter")
	}
	if err := checkRet(mem, ret); err != nil {
		return err
	}
	name := params[0]
	if name == "" {
		return errf(ErrBadCall, "variable name for @delete_var is empty")
	}
	if !mem.Contains(name) {
		return errf(ErrUnknownVariable, "can't find the variable %q in the memory", name)
	}
	return mem.Remove(name)
}
