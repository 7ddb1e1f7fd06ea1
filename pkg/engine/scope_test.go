package engine

import (
	"errors"
	"testing"

	"mercator-hq/ganymede/pkg/document"
)

func TestScope_DefineAndResolve(t *testing.T) {
	scope := NewScope()
	sel := Selection{{Value: document.Scalar("v"), Path: document.Path{"a"}}}

	if err := scope.Define("x", sel); err != nil {
		t.Fatalf("Define() failed: %v", err)
	}

	got, err := scope.Resolve("x")
	if err != nil {
		t.Fatalf("Resolve() failed: %v", err)
	}
	if len(got) != 1 || got[0].Path.String() != "a" {
		t.Errorf("Resolve() = %v", got)
	}
}

func TestScope_UndefinedVariable(t *testing.T) {
	_, err := NewScope().Resolve("missing")
	if err == nil {
		t.Fatal("Resolve() succeeded, want error")
	}
	var undef *UndefinedVariableError
	if !errors.As(err, &undef) {
		t.Fatalf("error type = %T, want *UndefinedVariableError", err)
	}
	if undef.Name != "missing" {
		t.Errorf("Name = %q, want missing", undef.Name)
	}
}

func TestScope_DuplicateDefineRejected(t *testing.T) {
	scope := NewScope()
	if err := scope.Define("x", nil); err != nil {
		t.Fatalf("first Define() failed: %v", err)
	}
	err := scope.Define("x", nil)
	var dup *DuplicateBindingError
	if !errors.As(err, &dup) {
		t.Fatalf("second Define() error = %v, want *DuplicateBindingError", err)
	}
}

func TestScope_ChildShadowsWithoutMutatingParent(t *testing.T) {
	parent := NewScope()
	parentSel := Selection{{Value: document.Scalar("parent")}}
	if err := parent.Define("x", parentSel); err != nil {
		t.Fatal(err)
	}

	child := parent.Child()
	childSel := Selection{{Value: document.Scalar("child")}}
	if err := child.Define("x", childSel); err != nil {
		t.Fatalf("shadowing Define() failed: %v", err)
	}

	got, _ := child.Resolve("x")
	if got[0].Value.Scalar() != "child" {
		t.Errorf("child Resolve() = %v, want shadowed value", got[0].Value.Scalar())
	}
	got, _ = parent.Resolve("x")
	if got[0].Value.Scalar() != "parent" {
		t.Errorf("parent Resolve() = %v, shadowing must not mutate parent", got[0].Value.Scalar())
	}
}

func TestScope_ChildFallsThroughToParent(t *testing.T) {
	parent := NewScope()
	if err := parent.Define("x", Selection{{Value: document.Scalar(1.0)}}); err != nil {
		t.Fatal(err)
	}
	got, err := parent.Child().Resolve("x")
	if err != nil {
		t.Fatalf("child Resolve() failed: %v", err)
	}
	if got[0].Value.Scalar() != 1.0 {
		t.Errorf("Resolve() = %v", got[0].Value.Scalar())
	}
}
