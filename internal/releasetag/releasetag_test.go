package releasetag

import "testing"

func TestOrder(t *testing.T) {
	order := []Tag{None, Internal, Alpha, Beta, Public}
	for i := 1; i < len(order); i++ {
		if !IsMorePublic(order[i], order[i-1]) {
			t.Fatalf("%s must be more public than %s", order[i], order[i-1])
		}
	}
	if Max(Alpha, Beta) != Beta || Max(Public, None) != Public {
		t.Fatalf("Max is wrong")
	}
}

func TestFromTagName(t *testing.T) {
	tests := []struct {
		name string
		want Tag
		ok   bool
	}{
		{"@public", Public, true},
		{"@beta", Beta, true},
		{"@experimental", Beta, true},
		{"@alpha", Alpha, true},
		{"@internal", Internal, true},
		{"@sealed", None, false},
	}
	for _, tt := range tests {
		got, ok := FromTagName(tt.name)
		if got != tt.want || ok != tt.ok {
			t.Errorf("FromTagName(%q) = %s,%v want %s,%v", tt.name, got, ok, tt.want, tt.ok)
		}
	}
}

func TestIncludedIn(t *testing.T) {
	if !Beta.IncludedIn(Alpha) || Alpha.IncludedIn(Beta) {
		t.Fatalf("beta items belong to the alpha rollup, alpha items not to the beta one")
	}
	if !None.IncludedIn(Public) || !Internal.IncludedIn(None) {
		t.Fatalf("untagged items and the untrimmed rollup keep everything")
	}
}

func TestParse(t *testing.T) {
	var tag Tag
	if err := tag.UnmarshalText([]byte("beta")); err != nil || tag != Beta {
		t.Fatalf("UnmarshalText = %s, %v", tag, err)
	}
	if _, err := Parse("gamma"); err == nil {
		t.Fatalf("expected error")
	}
}
