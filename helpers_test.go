package verlight

import (
	"bytes"
	"strings"
	"testing"
)

// buildVM compiles src and wires a VM with captured output and the given
// stdin text.
func buildVM(t *testing.T, src, stdin string) (*VM, *bytes.Buffer) {
	t.Helper()
	prog, err := Compile(src)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	vm := NewVM(prog)
	var out bytes.Buffer
	vm.Out = NewWriterSink(&out)
	vm.In = NewScannerSource(strings.NewReader(stdin))
	vm.BuildMemory()
	return vm, &out
}

// runMain executes "main" and fails the test on error; returns stdout.
func runMain(t *testing.T, src, stdin string) (*VM, string) {
	t.Helper()
	vm, out := buildVM(t, src, stdin)
	if err := vm.Execute("main"); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	vm.Out.Flush()
	return vm, out.String()
}

// runMainErr executes "main" expecting a failure; returns the error and the
// output produced before it.
func runMainErr(t *testing.T, src, stdin string) (error, string) {
	t.Helper()
	vm, out := buildVM(t, src, stdin)
	err := vm.Execute("main")
	vm.Out.Flush()
	if err == nil {
		t.Fatalf("Execute should have failed\noutput: %q", out.String())
	}
	return err, out.String()
}

func wantKind(t *testing.T, err error, kind ErrKind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error of kind %s, got nil", kind)
	}
	if got := ErrKindOf(err); got != kind {
		t.Fatalf("error kind = %s, want %s (err: %v)", got, kind, err)
	}
}

func wantErrContains(t *testing.T, err error, sub string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error containing %q, got nil", sub)
	}
	if !strings.Contains(err.Error(), sub) {
		t.Fatalf("error %q should contain %q", err.Error(), sub)
	}
}

// mustGet reads a variable from a section memory or fails.
func mustGet(t *testing.T, vm *VM, section, name string) Value {
	t.Helper()
	mem := vm.Memory(section)
	if mem == nil {
		t.Fatalf("no memory for section %q", section)
	}
	v, err := mem.Get(name)
	if err != nil {
		t.Fatalf("Get(%q) failed: %v", name, err)
	}
	return v
}
