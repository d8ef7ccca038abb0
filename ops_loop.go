// ops_loop.go — loop setup.
//
// @loop does not iterate; it validates (start, stop, step) and stores them
// as ___LOOP___ENGINE___<iterator>___{start,stop,step}___ variables, each at
// the narrowest integer width that fits. The @start/@end block in the VM
// consumes them. The return address names the iterator, which must already
// exist; the helper variables outlive the loop so bounds stay inspectable.
package verlight

func registerLoopOps(vm *VM) {
	vm.register("loop", opLoop)
}

func loopVarName(iterator, suffix string) string {
	return "___LOOP___ENGINE___" + iterator + "___" + suffix + "___"
}

func opLoop(vm *VM, params []string, ret string, mem *SectionMemory) error {
	if len(params) != 3 {
		return errf(ErrBadCall, "loop() requires exactly 3 parameters: (start, stop, step)")
	}
	if !mem.Contains(ret) {
		return errf(ErrUnknownReturnAddress,
			"loop() return address %q (the iterator) was not found", ret)
	}

	bounds := [3]int64{}
	suffixes := [3]string{"start", "stop", "step"}
	for i, tok := range params {
		s, err := resolveToken(mem, tok)
		if err != nil {
			return err
		}
		if !isNumeric(s) {
			return errf(ErrBadLiteral, "invalid number for loop %s: %q", suffixes[i], s)
		}
		n, perr := intPrefix(s)
		if perr != nil {
			return errf(ErrOverflow, "loop %s literal %q too big for int64", suffixes[i], s)
		}
		bounds[i] = n
	}

	start, stop, step := bounds[0], bounds[1], bounds[2]
	switch {
	case step == 0:
		return errf(ErrBadLoopBounds, "step must not be zero")
	case step > 0 && start > stop:
		return errf(ErrBadLoopBounds, "step > 0 but start > stop")
	case step < 0 && start < stop:
		return errf(ErrBadLoopBounds, "step < 0 but start < stop")
	}

	for i, suffix := range suffixes {
		key := loopVarName(ret, suffix)
		if mem.Contains(key) {
			return errf(ErrDuplicateVariable, "loop option already exists: %s", key)
		}
		if err := mem.Insert(key, narrowestInt(bounds[i])); err != nil {
			return err
		}
	}
	return nil
}
