package verlight

import "testing"

func Test_Declare_integers_with_range_checks(t *testing.T) {
	vm, _ := runMain(t, `#main{
		@new_i8 : (a , -128) ;
		@new_i16 : (b , 32767) ;
		@new_i32 : (c , -2147483648) ;
		@new_i64 : (d , 9223372036854775807) ;
	}`, "")
	if v := mustGet(t, vm, "main", "a"); v.Tag != TagI8 || v.I != -128 {
		t.Fatalf("a = %#v", v)
	}
	if v := mustGet(t, vm, "main", "d"); v.Tag != TagI64 || v.I != 9223372036854775807 {
		t.Fatalf("d = %#v", v)
	}
}

func Test_Declare_i8_overflow(t *testing.T) {
	err, _ := runMainErr(t, `#main{ @new_i8 : (x , 200) ; }`, "")
	wantKind(t, err, ErrOverflow)
}

func Test_Declare_integer_truncates_at_decimal_point(t *testing.T) {
	vm, _ := runMain(t, `#main{
		@new_i32 : (x , 3.7) ;
		@new_i32 : (y , -3.7) ;
	}`, "")
	if v := mustGet(t, vm, "main", "x"); v.I != 3 {
		t.Fatalf("x = %#v", v)
	}
	if v := mustGet(t, vm, "main", "y"); v.I != -3 {
		t.Fatalf("y = %#v", v)
	}
}

func Test_Declare_rejects_non_numeric(t *testing.T) {
	err, _ := runMainErr(t, `#main{ @new_i32 : (x , abc) ; }`, "")
	wantKind(t, err, ErrBadLiteral)
}

func Test_Declare_duplicate_variable(t *testing.T) {
	err, _ := runMainErr(t, `#main{
		@new_i32 : (x , 1) ;
		@new_i32 : (x , 2) ;
	}`, "")
	wantKind(t, err, ErrDuplicateVariable)
}

func Test_Declare_floats_and_ref_chain(t *testing.T) {
	vm, _ := runMain(t, `#main{
		@new_f32 : (f , 2.5) ;
		@new_f64 : (g , $f) ;
		@new_fmax : (h , $g) ;
	}`, "")
	if v := mustGet(t, vm, "main", "f"); v.Tag != TagF32 || v.Stringify() != "2.500000" {
		t.Fatalf("f = %#v", v)
	}
	// $g feeds the parse/print pipeline, so h sees "2.500000".
	if v := mustGet(t, vm, "main", "h"); v.Tag != TagFMax || v.F != 2.5 {
		t.Fatalf("h = %#v", v)
	}
}

func Test_Declare_string_strips_wrapper_blindly(t *testing.T) {
	vm, _ := runMain(t, `#main{
		@new_str : (s , "hello world") ;
		@new_str : (empty , "") ;
		@new_str : (copy , $s) ;
	}`, "")
	if v := mustGet(t, vm, "main", "s"); v.S != "hello world" {
		t.Fatalf("s = %#v", v)
	}
	if v := mustGet(t, vm, "main", "empty"); v.S != "" {
		t.Fatalf("empty = %#v", v)
	}
	if v := mustGet(t, vm, "main", "copy"); v.S != "hello world" {
		t.Fatalf("copy = %#v", v)
	}
}

func Test_Declare_char_accepts_double_quoted_literal(t *testing.T) {
	// Single quotes vanish during compilation, double quotes survive and the
	// wrapper is stripped without inspecting the quote kind.
	vm, _ := runMain(t, `#main{ @new_char : (c , "a") ; }`, "")
	if v := mustGet(t, vm, "main", "c"); v.Tag != TagChar || v.C != 'a' {
		t.Fatalf("c = %#v", v)
	}
}

func Test_Declare_char_from_reference_takes_first_byte(t *testing.T) {
	vm, _ := runMain(t, `#main{
		@new_str : (s , "xyz") ;
		@new_char : (c , $s) ;
	}`, "")
	if v := mustGet(t, vm, "main", "c"); v.C != 'x' {
		t.Fatalf("c = %#v", v)
	}
}

func Test_Declare_char_escapes(t *testing.T) {
	m := NewSectionMemory()
	cases := []struct {
		literal string
		want    byte
	}{
		{`'a'`, 'a'},
		{`'\n'`, '\n'},
		{`'\t'`, '\t'},
		{`'\\'`, '\\'},
		{`'\''`, '\''},
		{`'\0'`, 0},
		{`'\x41'`, 'A'},
		{`'\101'`, 'A'},
		{`'\12'`, 10},
	}
	for _, c := range cases {
		v, err := newCharValue(m, "c", c.literal)
		if err != nil {
			t.Fatalf("newCharValue(%q) failed: %v", c.literal, err)
		}
		if v.C != c.want {
			t.Fatalf("newCharValue(%q) = %d, want %d", c.literal, v.C, c.want)
		}
	}

	for _, bad := range []string{`'ab'`, `'\q'`, `'\x4'`, `''`, `x`} {
		if _, err := newCharValue(m, "c", bad); err == nil {
			t.Fatalf("newCharValue(%q) should fail", bad)
		}
	}
}

func Test_Declare_bool_and_reassign_retypes(t *testing.T) {
	vm, _ := runMain(t, `#main{
		@new_bool : (b , true) ;
		@reAssign_bool : (b , false) ;
		@new_i32 : (n , 5) ;
		@reAssign_str : (n , "five") ;
	}`, "")
	if v := mustGet(t, vm, "main", "b"); v.B != false {
		t.Fatalf("b = %#v", v)
	}
	// Reassignment replaces payload and tag atomically.
	if v := mustGet(t, vm, "main", "n"); v.Tag != TagString || v.S != "five" {
		t.Fatalf("n = %#v", v)
	}
}

func Test_Declare_bool_rejects_other_tokens(t *testing.T) {
	err, _ := runMainErr(t, `#main{ @new_bool : (b , yes) ; }`, "")
	wantKind(t, err, ErrBadLiteral)
}

func Test_Declare_reassign_absent_fails(t *testing.T) {
	err, _ := runMainErr(t, `#main{ @reAssign_i32 : (x , 1) ; }`, "")
	wantKind(t, err, ErrUnknownVariable)
}

func Test_Declare_delete_var_and_legacy_alias(t *testing.T) {
	vm, _ := runMain(t, `#main{
		@new_i32 : (x , 1) ;
		@new_i32 : (y , 2) ;
		@delete_var : (x) ;
		@delete_i8 : (y) ;
	}`, "")
	mem := vm.Memory("main")
	if mem.Contains("x") || mem.Contains("y") {
		t.Fatal("deleted variables should be gone")
	}

	err, _ := runMainErr(t, `#main{ @delete_var : (ghost) ; }`, "")
	wantKind(t, err, ErrUnknownVariable)
}

func Test_Declare_return_address_must_exist(t *testing.T) {
	err, _ := runMainErr(t, `#main{ @new_i32 : (x , 1) ~ missing ; }`, "")
	wantKind(t, err, ErrUnknownReturnAddress)
}
