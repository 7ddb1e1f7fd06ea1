package document

import "testing"

func TestMapping_PreservesOrder(t *testing.T) {
	n := Mapping(
		MapPair{Key: "zebra", Value: Scalar("z")},
		MapPair{Key: "alpha", Value: Scalar("a")},
		MapPair{Key: "mid", Value: Scalar("m")},
	)

	keys := n.Keys()
	if len(keys) != 3 || keys[0] != "zebra" || keys[1] != "alpha" || keys[2] != "mid" {
		t.Errorf("Keys() = %v, want insertion order", keys)
	}
}

func TestMapping_DuplicateKeyKeepsLastValueFirstPosition(t *testing.T) {
	n := Mapping(
		MapPair{Key: "a", Value: Scalar(1.0)},
		MapPair{Key: "b", Value: Scalar(2.0)},
		MapPair{Key: "a", Value: Scalar(3.0)},
	)

	keys := n.Keys()
	if len(keys) != 2 || keys[0] != "a" {
		t.Errorf("Keys() = %v, want [a b]", keys)
	}
	child, _ := n.Child("a")
	if child.Scalar() != 3.0 {
		t.Errorf("a = %v, want 3", child.Scalar())
	}
}

func TestNode_ChildOnNonMapping(t *testing.T) {
	if _, ok := Scalar("x").Child("key"); ok {
		t.Error("scalar Child() = ok, want false")
	}
	if _, ok := Sequence(Scalar("x")).Child("key"); ok {
		t.Error("sequence Child() = ok, want false")
	}
}

func TestNode_Len(t *testing.T) {
	tests := []struct {
		name string
		node *Node
		want int
	}{
		{"scalar", Scalar("x"), 0},
		{"empty mapping", Mapping(), 0},
		{"mapping", Mapping(MapPair{Key: "a", Value: Scalar(nil)}), 1},
		{"sequence", Sequence(Scalar("a"), Scalar("b")), 2},
	}
	for _, tt := range tests {
		if got := tt.node.Len(); got != tt.want {
			t.Errorf("%s: Len() = %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestPath_ChildReturnsCopy(t *testing.T) {
	base := Path{"Resources", "Bucket"}
	a := base.Child("Properties")
	b := base.Child("Type")

	if a.String() != "Resources/Bucket/Properties" {
		t.Errorf("a = %q", a.String())
	}
	if b.String() != "Resources/Bucket/Type" {
		t.Errorf("b = %q, child paths must not share backing arrays", b.String())
	}
}

func TestPath_Root(t *testing.T) {
	var p Path
	if !p.IsRoot() {
		t.Error("empty path IsRoot() = false, want true")
	}
	if p.String() != "" {
		t.Errorf("root String() = %q, want empty", p.String())
	}
}
