package verlight

import (
	"reflect"
	"testing"
)

func Test_List_splitListBody(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{`[1, 2, 3]`, []string{"1", "2", "3"}},
		{`[1, 'a', "hello, world"]`, []string{"1", "'a'", `"hello, world"`}},
		{`[  1 ,   2.5  ]`, []string{"1", "2.5"}},
		{`["a \"quoted\" comma, here"]`, []string{`"a \"quoted\" comma, here"`}},
		{`[]`, nil},
	}
	for _, c := range cases {
		got := splitListBody(c.in)
		if !reflect.DeepEqual(got, c.want) {
			t.Fatalf("splitListBody(%q) = %#v, want %#v", c.in, got, c.want)
		}
	}
}

func Test_List_new_list_builds_slots_and_size(t *testing.T) {
	vm, _ := runMain(t, `#main{
		@new_list : (L , dynamic , [1, 300, 70000, 2.5, "hi", true]) ;
	}`, "")
	mem := vm.Memory("main")

	size, err := mem.Get("___LIST___ENGINE___L___SIZE___")
	if err != nil || size.Tag != TagI64 || size.I != 6 {
		t.Fatalf("size = %#v, %v", size, err)
	}
	wantTags := []Tag{TagI8, TagI16, TagI32, TagF32, TagString, TagBool}
	for i, tag := range wantTags {
		v, err := mem.Get(listSlotName("L", int64(i)))
		if err != nil {
			t.Fatalf("slot %d missing: %v", i, err)
		}
		if v.Tag != tag {
			t.Fatalf("slot %d tag = %s, want %s", i, v.Tag, tag)
		}
	}
	// Exactly size + slot variables exist for the prefix.
	if mem.Len() != 7 {
		t.Fatalf("memory holds %d variables, want 7", mem.Len())
	}
}

func Test_List_exists_collision(t *testing.T) {
	err, _ := runMainErr(t, `#main{
		@new_list : (L , dynamic , [1]) ;
		@new_list : (L , dynamic , [2]) ;
	}`, "")
	wantKind(t, err, ErrListExists)
}

func Test_List_bad_element(t *testing.T) {
	err, _ := runMainErr(t, `#main{ @new_list : (L , dynamic , [wat]) ; }`, "")
	wantKind(t, err, ErrBadLiteral)
}

func Test_List_get_with_literal_and_ref_index(t *testing.T) {
	vm, _ := runMain(t, `#main{
		@new_list : (L , dynamic , [10, 20, 30]) ;
		@new_i32 : (dst , 0) ;
		@new_i32 : (i , 2) ;
		@get : (L , 1) ~ dst ;
		@new_i32 : (dst2 , 0) ;
		@get : (L , $i) ~ dst2 ;
	}`, "")
	if v := mustGet(t, vm, "main", "dst"); v.I != 20 {
		t.Fatalf("dst = %#v", v)
	}
	if v := mustGet(t, vm, "main", "dst2"); v.I != 30 {
		t.Fatalf("dst2 = %#v", v)
	}
}

func Test_List_get_bounds(t *testing.T) {
	err, _ := runMainErr(t, `#main{
		@new_list : (L , dynamic , [1]) ;
		@new_i32 : (dst , 0) ;
		@get : (L , 5) ~ dst ;
	}`, "")
	wantKind(t, err, ErrBadCall)
}

func Test_List_push_pop(t *testing.T) {
	vm, _ := runMain(t, `#main{
		@new_list : (L , dynamic , [1]) ;
		@push : (L , 2) ;
		@push : (L , "text") ;
		@pop : (L) ;
	}`, "")
	mem := vm.Memory("main")
	size, _ := mem.Get(listSizeName("L"))
	if size.I != 2 {
		t.Fatalf("size = %#v", size)
	}
	v, _ := mem.Get(listSlotName("L", 1))
	if v.Tag != TagI8 || v.I != 2 {
		t.Fatalf("slot 1 = %#v", v)
	}
	if mem.Contains(listSlotName("L", 2)) {
		t.Fatal("popped slot should be removed")
	}

	err, _ := runMainErr(t, `#main{
		@new_list : (L , dynamic , []) ;
		@pop : (L) ;
	}`, "")
	wantKind(t, err, ErrBadCall)
}

func Test_List_push_resolves_reference(t *testing.T) {
	vm, _ := runMain(t, `#main{
		@new_list : (L , dynamic , []) ;
		@new_i32 : (n , 70000) ;
		@push : (L , $n) ;
	}`, "")
	v := mustGet(t, vm, "main", listSlotName("L", 0))
	if v.Tag != TagI32 || v.I != 70000 {
		t.Fatalf("pushed slot = %#v", v)
	}
}

func Test_List_delete_removes_all_slots(t *testing.T) {
	vm, _ := runMain(t, `#main{
		@new_list : (A , dynamic , [1, 2]) ;
		@new_list : (B , dynamic , [3]) ;
		@delete_list : (A , B) ;
	}`, "")
	if vm.Memory("main").Len() != 0 {
		t.Fatalf("memory should be empty, holds %d", vm.Memory("main").Len())
	}
}

func Test_List_reassign_keeps_stale_slots(t *testing.T) {
	vm, _ := runMain(t, `#main{
		@new_list : (L , dynamic , [1, 2, 3]) ;
		@reAssign_list : (L , dynamic , [9]) ;
	}`, "")
	mem := vm.Memory("main")
	size, _ := mem.Get(listSizeName("L"))
	if size.I != 1 {
		t.Fatalf("size = %#v", size)
	}
	if v, _ := mem.Get(listSlotName("L", 0)); v.I != 9 {
		t.Fatalf("slot 0 = %#v", v)
	}
	// Shrinking never removes the out-of-range slots.
	if !mem.Contains(listSlotName("L", 1)) || !mem.Contains(listSlotName("L", 2)) {
		t.Fatal("stale slots should linger after a shrinking reassignment")
	}
}

func Test_List_reassign_missing_list(t *testing.T) {
	err, _ := runMainErr(t, `#main{ @reAssign_list : (L , dynamic , [1]) ; }`, "")
	wantKind(t, err, ErrUnknownVariable)
}

func Test_List_print_list_formats(t *testing.T) {
	_, out := runMain(t, `#main{
		@new_list : (L , dynamic , "[1, 2.5, 'a', "hi", true]") ;
		@print_list : (L , "" , "") ;
	}`, "")
	if out != `[1, 2.500000, "a", "hi", true]` {
		t.Fatalf("out = %q", out)
	}
}

func Test_List_print_list_head_tail(t *testing.T) {
	_, out := runMain(t, `#main{
		@new_list : (L , dynamic , [7]) ;
		@print_list : (L , "start: " , " :end") ;
	}`, "")
	if out != "start: [7] :end" {
		t.Fatalf("out = %q", out)
	}
}
