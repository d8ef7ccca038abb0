// ops_list.go — the list engine.
//
// A user-level list is a thin facade over the flat section memory: the size
// lives at ___LIST___ENGINE___<name>___SIZE___ (I64) and element i at
// ___LIST___ENGINE___<name>___<i>___. Element types are inferred from the
// lexical form (bool, narrowest integer, narrowest float, char literal,
// double-quoted string). Only the "dynamic" element mode populates slots;
// other mode strings reserve the name and record the size.
//
// reAssign_list never removes slots beyond the new size; a shrinking
// reassignment leaves the stale slots in memory for the caller to manage.
package verlight

import (
	"io"
	"math"
	"strconv"
	"strings"
)

func registerListOps(vm *VM) {
	vm.register("new_list", opList(false))
	vm.register("reAssign_list", opList(true))
	vm.register("delete_list", opDeleteList)
	vm.register("get", opListGet)
	vm.register("push", opListPush)
	vm.register("pop", opListPop)
	vm.register("print_list", opPrintList)
}

func listSizeName(list string) string {
	return "___LIST___ENGINE___" + list + "___SIZE___"
}

func listSlotName(list string, i int64) string {
	return "___LIST___ENGINE___" + list + "___" + strconv.FormatInt(i, 10) + "___"
}

/* ---------- element splitting ---------- */

// splitListBody cuts a bracketed literal into its elements. Brackets outside
// quotes are consumed at every depth and do not protect commas, so a nested
// list's items become items of the outer list; commas inside quotes are
// literal; a backslash escapes the following quote. Elements are trimmed.
func splitListBody(body string) []string {
	var out []string
	var cur strings.Builder
	inDouble, inSingle := false, false
	depth := 0

	push := func() {
		out = append(out, strings.TrimSpace(cur.String()))
		cur.Reset()
	}

	for i := 0; i < len(body); i++ {
		c := body[i]

		if c == '[' && !inDouble && !inSingle {
			depth++
			continue
		}
		if c == ']' && !inDouble && !inSingle {
			if depth > 0 {
				depth--
			}
			continue
		}

		if c == '"' && !inSingle {
			if !(i > 0 && body[i-1] == '\\') {
				inDouble = !inDouble
				cur.WriteByte(c)
				continue
			}
		}
		if c == '\'' && !inDouble {
			if !(i > 0 && body[i-1] == '\\') {
				inSingle = !inSingle
				cur.WriteByte(c)
				continue
			}
		}

		if c == ',' && !inDouble && !inSingle && depth >= 0 {
			push()
			continue
		}
		cur.WriteByte(c)
	}
	if cur.Len() > 0 {
		push()
	}
	return out
}

// inferElement builds the typed value for one list element token; char
// literals are decoded with the declarator's character grammar.
func inferElement(item string) (Value, error) {
	if item == "true" || item == "false" {
		return Bool(item == "true"), nil
	}
	if ok, hasDot := isNumericDot(item); ok {
		if !hasDot {
			n, err := intPrefix(item)
			if err != nil {
				return Value{}, errf(ErrOverflow, "number %q is too big", item)
			}
			return narrowestInt(n), nil
		}
		f, err := strconv.ParseFloat(item, 64)
		if err != nil || math.IsInf(f, 0) {
			return Value{}, errf(ErrOverflow, "number %q is too big", item)
		}
		return narrowestFloat(f), nil
	}
	if isCharLiteral(item) {
		c, err := parseCharBody(stripEnds(item))
		if err != nil {
			return Value{}, err
		}
		return Char(c), nil
	}
	if isQuoted(item) {
		return Str(stripEnds(item)), nil
	}
	return Value{}, errf(ErrBadLiteral, "bad list element %q", item)
}

/* ---------- create / reassign ---------- */

// normalizeListParam drops an enclosing double-quote wrapper, which the
// compiler leaves on tokens written as string literals in source.
func normalizeListParam(tok string) string {
	if isQuoted(tok) {
		return stripEnds(tok)
	}
	return tok
}

func opList(reassign bool) opFunc {
	return func(vm *VM, params []string, ret string, mem *SectionMemory) error {
		if len(params) != 3 {
			return errf(ErrBadCall,
				"list declarators take three parameters: (name, type, values)")
		}
		listName := params[0]
		mode := normalizeListParam(params[1])
		contents := splitListBody(normalizeListParam(params[2]))

		sizeName := listSizeName(listName)
		size := I64(int64(len(contents)))
		if reassign {
			if !mem.Contains(sizeName) {
				return errf(ErrUnknownVariable, "couldn't find the list %q", listName)
			}
			if err := mem.Reinsert(sizeName, size); err != nil {
				return err
			}
		} else {
			if mem.Contains(sizeName) {
				return errf(ErrListExists, "list %q already exists", listName)
			}
			if err := mem.Insert(sizeName, size); err != nil {
				return err
			}
		}

		if mode != "dynamic" {
			return nil
		}
		for i, item := range contents {
			v, err := inferElement(item)
			if err != nil {
				return err
			}
			slot := listSlotName(listName, int64(i))
			if reassign {
				err = mem.Reinsert(slot, v)
			} else {
				err = mem.Insert(slot, v)
			}
			if err != nil {
				return err
			}
		}
		return nil
	}
}

/* ---------- delete ---------- */

func opDeleteList(vm *VM, params []string, ret string, mem *SectionMemory) error {
	for _, listName := range params {
		sizeName := listSizeName(listName)
		sizeVal, err := mem.Get(sizeName)
		if err != nil {
			return errf(ErrUnknownVariable, "couldn't find the list %q", listName)
		}
		for i := int64(0); i < sizeVal.I; i++ {
			if err := mem.Remove(listSlotName(listName, i)); err != nil {
				return err
			}
		}
		if err := mem.Remove(sizeName); err != nil {
			return err
		}
	}
	return nil
}

/* ---------- access ---------- */

func listSize(mem *SectionMemory, listName string) (int64, error) {
	v, err := mem.Get(listSizeName(listName))
	if err != nil {
		return 0, errf(ErrUnknownVariable, "couldn't find the list %q", listName)
	}
	return v.I, nil
}

// opListGet copies element [index] into the return address. The index token
// may be a literal, or prefixed with $, ' or " — prefixed forms resolve
// through memory after the marker byte is stripped.
func opListGet(vm *VM, params []string, ret string, mem *SectionMemory) error {
	if len(params) != 2 {
		return errf(ErrBadCall, "get() requires two parameters: (list, index)")
	}
	if !mem.Contains(ret) {
		return errf(ErrUnknownReturnAddress, "couldn't find the return address %q in get()", ret)
	}
	listName := params[0]
	indexTok := params[1]
	if indexTok != "" && (indexTok[0] == '$' || indexTok[0] == '\'' || indexTok[0] == '"') {
		resolved, err := mem.ResolveRef(indexTok)
		if err != nil {
			return err
		}
		indexTok = resolved
	}
	idx, err := intPrefix(indexTok)
	if err != nil {
		return errf(ErrBadCall, "index %q for get() is not a valid integer", indexTok)
	}
	size, serr := listSize(mem, listName)
	if serr != nil {
		return serr
	}
	if idx < 0 || idx >= size {
		return errf(ErrBadCall, "index %d out of range in get(); list %q has %d elements", idx, listName, size)
	}
	v, err := mem.Get(listSlotName(listName, idx))
	if err != nil {
		return err
	}
	return mem.Reinsert(ret, v)
}

/* ---------- push / pop ---------- */

func opListPush(vm *VM, params []string, ret string, mem *SectionMemory) error {
	if len(params) != 2 {
		return errf(ErrBadCall, "push() requires exactly two parameters")
	}
	listName := params[0]
	size, err := listSize(mem, listName)
	if err != nil {
		return err
	}
	item, err := resolveToken(mem, params[1])
	if err != nil {
		return err
	}
	v, err := inferElement(item)
	if err != nil {
		return err
	}
	if err := mem.Insert(listSlotName(listName, size), v); err != nil {
		return err
	}
	return mem.Reinsert(listSizeName(listName), I64(size+1))
}

func opListPop(vm *VM, params []string, ret string, mem *SectionMemory) error {
	if len(params) != 1 {
		return errf(ErrBadCall, "pop() requires exactly one parameter")
	}
	listName := params[0]
	size, err := listSize(mem, listName)
	if err != nil {
		return err
	}
	if size <= 0 {
		return errf(ErrBadCall, "cannot pop from the empty list %q", listName)
	}
	if err := mem.Remove(listSlotName(listName, size-1)); err != nil {
		return err
	}
	return mem.Reinsert(listSizeName(listName), I64(size-1))
}

/* ---------- printing ---------- */

// opPrintList emits head, the bracketed elements separated by ", " (strings
// and chars double-quoted, everything else stringified), then tail.
func opPrintList(vm *VM, params []string, ret string, mem *SectionMemory) error {
	if len(params) != 3 {
		return errf(ErrBadCall, "print_list() requires 3 parameters: (list, head, tail)")
	}
	listName := params[0]
	head, err := renderToken(mem, params[1])
	if err != nil {
		return err
	}
	tail, err := renderToken(mem, params[2])
	if err != nil {
		return err
	}
	size, err := listSize(mem, listName)
	if err != nil {
		return err
	}

	var b strings.Builder
	b.WriteString(head)
	b.WriteByte('[')
	for i := int64(0); i < size; i++ {
		v, err := mem.Get(listSlotName(listName, i))
		if err != nil {
			return err
		}
		if i > 0 {
			b.WriteString(", ")
		}
		if v.Tag == TagString || v.Tag == TagChar {
			b.WriteByte('"')
			b.WriteString(v.Stringify())
			b.WriteByte('"')
		} else {
			b.WriteString(v.Stringify())
		}
	}
	b.WriteByte(']')
	b.WriteString(tail)

	if _, werr := io.WriteString(vm.Out, b.String()); werr != nil {
		return errf(ErrIO, "write failed: %v", werr)
	}
	return nil
}
