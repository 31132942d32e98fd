package tsdoc

import "testing"

func TestParseReference(t *testing.T) {
	tests := []struct {
		in      string
		pkg     string
		path    string
		members []string
		local   bool
	}{
		{"Foo", "", "", []string{"Foo"}, true},
		{"Foo.bar", "", "", []string{"Foo", "bar"}, true},
		{"my-pkg#Foo", "my-pkg", "", []string{"Foo"}, true},
		{"other#Foo", "other", "", []string{"Foo"}, false},
		{"@scope/pkg/sub#Foo", "@scope/pkg", "sub", []string{"Foo"}, false},
		{"./local#Foo", "", "./local", []string{"Foo"}, true},
		{"(Foo:class).(bar:instance)", "", "", []string{"Foo", "bar"}, true},
	}
	for _, tt := range tests {
		ref, err := ParseReference(tt.in)
		if err != nil {
			t.Fatalf("%q: %v", tt.in, err)
		}
		if ref.Package != tt.pkg || ref.ImportPath != tt.path || len(ref.Members) != len(tt.members) {
			t.Fatalf("%q: got %+v", tt.in, ref)
		}
		for i := range tt.members {
			if ref.Members[i] != tt.members[i] {
				t.Fatalf("%q: members %v", tt.in, ref.Members)
			}
		}
		if ref.IsLocal("my-pkg") != tt.local {
			t.Fatalf("%q: IsLocal = %v", tt.in, !tt.local)
		}
	}
}

func TestParseReferenceErrors(t *testing.T) {
	for _, in := range []string{"", "  ", "Foo..bar", "Foo.1x"} {
		if _, err := ParseReference(in); err == nil {
			t.Fatalf("%q: expected error", in)
		}
	}
}
