// vm.go — dispatcher and control-flow engine.
//
// A VM owns one SectionMemory per compiled section and executes instruction
// ranges against them. Per instruction the dispatcher evaluates the guard,
// verifies the return address, then routes to either a control-flow handler
// (start/end, import/export, execute, goto/destination) or the operation
// table built by the register* functions in the ops_*.go files.
//
// Execution is single-threaded and synchronous; the only shared resources
// are the byte sink and the line source, borrowed exclusively by the IO ops.
// Errors abort the whole Execute call, unwinding through nested loop bodies
// and section calls; partial output and memory mutations are retained.
package verlight

import (
	"strings"

	"github.com/rs/zerolog"
)

// opFunc is the uniform call signature of every library operation.
type opFunc func(vm *VM, params []string, ret string, mem *SectionMemory) error

// VM executes a compiled program.
type VM struct {
	prog Program
	mems map[string]*SectionMemory
	ops  map[string]opFunc

	// Out receives all print/println bytes; In serves input reads. Both
	// default to buffered stdio and may be rebound before Execute.
	Out Sink
	In  InputSource

	// Log traces executed instructions and transfers. Disabled by default;
	// the CLI turns it on with -trace.
	Log zerolog.Logger
}

// NewVM wires a VM with the full operation library and stdio defaults.
func NewVM(prog Program) *VM {
	vm := &VM{
		prog: prog,
		mems: make(map[string]*SectionMemory),
		ops:  make(map[string]opFunc),
		Out:  StdoutSink(),
		In:   StdinSource(),
		Log:  zerolog.Nop(),
	}
	registerDeclaratorOps(vm)
	registerArithmeticOps(vm)
	registerRelationalOps(vm)
	registerIOOps(vm)
	registerListOps(vm)
	registerLoopOps(vm)
	return vm
}

func (vm *VM) register(name string, fn opFunc) {
	vm.ops[name] = fn
}

// BuildMemory creates one empty SectionMemory per compiled section. Must run
// before Execute; calling it again resets all memories.
func (vm *VM) BuildMemory() {
	vm.mems = make(map[string]*SectionMemory, len(vm.prog))
	for name := range vm.prog {
		vm.mems[name] = NewSectionMemory()
	}
}

// Memory returns the section's memory, or nil if the section is unknown.
func (vm *VM) Memory(section string) *SectionMemory {
	return vm.mems[section]
}

// Program returns the compiled program the VM was built with.
func (vm *VM) Program() Program {
	return vm.prog
}

// Execute runs a whole section, by default "main" at the embedding layer.
func (vm *VM) Execute(section string) error {
	return vm.run(section, 0, -1)
}

// run executes instructions [start, end] of a section; end == -1 means the
// last instruction. Loop bodies and section calls re-enter here.
func (vm *VM) run(section string, start, end int) error {
	ins, ok := vm.prog[section]
	if !ok {
		return &RuntimeError{Kind: ErrUnknownSection, Section: section,
			Msg: "can't find the section " + section}
	}
	mem, ok := vm.mems[section]
	if !ok {
		return &RuntimeError{Kind: ErrUnknownSection, Section: section,
			Msg: "no memory for section " + section + "; call BuildMemory first"}
	}
	if end == -1 {
		end = len(ins) - 1
	}

	for idx := start; idx <= end; idx++ {
		cur := ins[idx]

		pass, err := evalGuard(cur.Guard, mem)
		if err != nil {
			return vm.wrap(section, idx, cur, err)
		}
		if !pass {
			vm.Log.Debug().Str("section", section).Int("index", idx).
				Str("op", cur.Op).Str("guard", cur.Guard).Msg("guard skipped")
			continue
		}

		if cur.Ret != "nullptr" && !mem.Contains(cur.Ret) {
			return vm.wrap(section, idx, cur,
				errf(ErrUnknownReturnAddress, "can't find the return address %q", cur.Ret))
		}

		vm.Log.Debug().Str("section", section).Int("index", idx).
			Str("op", cur.Op).Strs("params", cur.Params).Str("ret", cur.Ret).Msg("exec")

		switch cur.Op {
		case "start":
			next, err := vm.runLoop(section, ins, idx, mem)
			if err != nil {
				return vm.wrap(section, idx, cur, err)
			}
			idx = next
			continue

		case "end":
			// Inert at top level; paired bodies are selected by "start".
			continue

		case "import":
			if err := vm.transfer(cur.Params, vm.mems[cur.paramOr("")], mem, true); err != nil {
				return vm.wrap(section, idx, cur, err)
			}

		case "export":
			if err := vm.transfer(cur.Params, vm.mems[cur.paramOr("")], mem, false); err != nil {
				return vm.wrap(section, idx, cur, err)
			}

		case "execute":
			for _, name := range cur.Params {
				if _, ok := vm.prog[name]; !ok {
					return vm.wrap(section, idx, cur,
						errf(ErrUnknownSection, "can't find the section %q", name))
				}
				if _, ok := vm.mems[name]; !ok {
					return vm.wrap(section, idx, cur,
						errf(ErrUnknownSection, "no memory for section %q; call BuildMemory first", name))
				}
				if err := vm.run(name, 0, -1); err != nil {
					return err
				}
			}

		case "goto":
			next, err := findDestination(ins, idx, cur.Params)
			if err != nil {
				return vm.wrap(section, idx, cur, err)
			}
			idx = next
			continue

		case "destination":
			// Label target only.
			continue

		default:
			fn, ok := vm.ops[cur.Op]
			if !ok {
				return vm.wrap(section, idx, cur,
					errf(ErrUnknownOp, "the operation %q is not provided by the library", cur.Op))
			}
			if err := fn(vm, cur.Params, cur.Ret, mem); err != nil {
				return vm.wrap(section, idx, cur, err)
			}
		}
	}
	return nil
}

// wrap attaches section/index context once; nested RuntimeErrors pass through.
func (vm *VM) wrap(section string, idx int, ins Instruction, err error) error {
	if re, ok := err.(*RuntimeError); ok {
		return re
	}
	kind := ErrKindOf(err)
	if kind == 0 {
		kind = ErrIO
	}
	msg := err.Error()
	if ve, ok := err.(*VMError); ok {
		msg = ve.Msg
	}
	return &RuntimeError{Kind: kind, Section: section, Index: idx, Msg: msg, Ins: ins}
}

func (ins Instruction) paramOr(def string) string {
	if len(ins.Params) > 0 {
		return ins.Params[0]
	}
	return def
}

/* ---------- guards ---------- */

// evalGuard decides whether an instruction executes. The '!' prefix binds
// tighter than '$': "!$x" negates the boolean value of x. After resolution
// the expression must be exactly "true" or "false".
func evalGuard(g string, mem *SectionMemory) (bool, error) {
	target := true
	if strings.HasPrefix(g, "!") {
		target = false
		g = g[1:]
	}
	if strings.HasPrefix(g, "$") {
		resolved, err := mem.ResolveRef(g)
		if err != nil {
			return false, err
		}
		g = resolved
	}
	if g != "true" && g != "false" {
		return false, errf(ErrBadGuard, "unknown boolean %q in guard", g)
	}
	return (g == "true") == target, nil
}

/* ---------- loops ---------- */

// selectLoopEnd scans forward from the "start" at startIdx for the matching
// "end" whose first parameter names the same iterator.
func selectLoopEnd(ins []Instruction, startIdx int, iterator string) (int, error) {
	for i := startIdx + 1; i < len(ins); i++ {
		if ins[i].Op == "end" && len(ins[i].Params) > 0 && ins[i].Params[0] == iterator {
			return i, nil
		}
	}
	return 0, errf(ErrMissingLoopEnd, "missing matching 'end' for @start %s", iterator)
}

// runLoop executes a start/end block and returns the index of the matching
// "end" (the outer loop increments past it).
func (vm *VM) runLoop(section string, ins []Instruction, idx int, mem *SectionMemory) (int, error) {
	cur := ins[idx]
	if len(cur.Params) != 1 {
		return 0, errf(ErrBadCall, "@start requires a single parameter (the iterator name)")
	}
	iterator := cur.Params[0]

	endIdx, err := selectLoopEnd(ins, idx, iterator)
	if err != nil {
		return 0, err
	}
	bodyStart, bodyEnd := idx+1, endIdx-1

	readBound := func(suffix string) (int64, error) {
		key := loopVarName(iterator, suffix)
		v, err := mem.Get(key)
		if err != nil {
			return 0, errf(ErrUnknownVariable,
				"can't find the %s bound of loop %q; run @loop first", suffix, iterator)
		}
		n, perr := intPrefix(v.Stringify())
		if perr != nil {
			return 0, errf(ErrBadLiteral, "loop %s bound of %q is not an integer", suffix, iterator)
		}
		return n, nil
	}
	lo, err := readBound("start")
	if err != nil {
		return 0, err
	}
	hi, err := readBound("stop")
	if err != nil {
		return 0, err
	}
	step, err := readBound("step")
	if err != nil {
		return 0, err
	}
	if step == 0 {
		return 0, errf(ErrBadLoopBounds, "loop step cannot be zero")
	}

	// The upper-bound form is used regardless of step sign; @loop's
	// validation guarantees a terminating direction.
	for it := lo; it <= hi; it += step {
		if err := mem.Reinsert(iterator, I64(it)); err != nil {
			return 0, err
		}
		if err := vm.run(section, bodyStart, bodyEnd); err != nil {
			return 0, err
		}
	}
	return endIdx, nil
}

/* ---------- goto ---------- */

// findDestination searches outward from idx, alternating left and right, for
// a "destination" instruction whose first parameter matches.
func findDestination(ins []Instruction, idx int, params []string) (int, error) {
	if len(params) != 1 {
		return 0, errf(ErrBadCall, "@goto requires a single parameter (the destination name)")
	}
	name := params[0]
	isTarget := func(i int) bool {
		return ins[i].Op == "destination" &&
			len(ins[i].Params) > 0 && ins[i].Params[0] == name
	}

	left, right := idx-1, idx+1
	for left >= 0 || right < len(ins) {
		if left >= 0 {
			if isTarget(left) {
				return left, nil
			}
			left--
		}
		if right < len(ins) {
			if isTarget(right) {
				return right, nil
			}
			right++
		}
	}
	return 0, errf(ErrBadCall, "couldn't find the goto destination %q", name)
}

/* ---------- import / export ---------- */

// transfer implements import (into the current memory) and export (out of
// it). params[0] names the other section; the rest are variable names. Both
// memories are resolved before the first mutation. Variables move one at a
// time, each checked just before it moves, so when a later name fails the
// earlier ones have already been transferred.
func (vm *VM) transfer(params []string, other, current *SectionMemory, importing bool) error {
	if len(params) < 2 {
		verb := "export"
		if importing {
			verb = "import"
		}
		return errf(ErrBadCall,
			"@%s requires at least 2 parameters: (section, var, ...)", verb)
	}
	if other == nil {
		return errf(ErrUnknownSection,
			"can't find the section %q in the memory union; call BuildMemory first", params[0])
	}
	src, dst := current, other
	if importing {
		src, dst = other, current
	}
	for _, name := range params[1:] {
		if !src.Contains(name) {
			return errf(ErrUnknownVariable, "can't find the variable %q", name)
		}
		if dst.Contains(name) {
			return errf(ErrDuplicateVariable, "variable %q already exists at the receiver", name)
		}
		if err := src.Transfer(name, dst); err != nil {
			return err
		}
		vm.Log.Debug().Str("var", name).Str("section", params[0]).
			Bool("import", importing).Msg("transfer")
	}
	return nil
}
