package actions

import "testing"

func TestActionEqualClick(t *testing.T) {
	a := Action{Type: Click, Index: 3}
	b := Action{Type: Click, Index: 3}
	c := Action{Type: Click, Index: 4}
	if !a.Equal(b) {
		t.Fatal("expected equal clicks on same index")
	}
	if a.Equal(c) {
		t.Fatal("expected unequal clicks on different index")
	}
}

func TestActionEqualType(t *testing.T) {
	a := Action{Type: Type_, Index: 1, Text: "hello"}
	b := Action{Type: Type_, Index: 1, Text: "hello"}
	c := Action{Type: Type_, Index: 1, Text: "world"}
	if !a.Equal(b) {
		t.Fatal("expected equal type actions with same index and text")
	}
	if a.Equal(c) {
		t.Fatal("expected unequal type actions with different text")
	}
}

func TestActionEqualNavigate(t *testing.T) {
	a := Action{Type: Navigate, URL: "https://example.com"}
	b := Action{Type: Navigate, URL: "https://example.com"}
	c := Action{Type: Navigate, URL: "https://example.org"}
	if !a.Equal(b) || a.Equal(c) {
		t.Fatal("navigate equality should depend only on URL")
	}
}

func TestActionEqualDifferentTypes(t *testing.T) {
	a := Action{Type: Click, Index: 1}
	b := Action{Type: Hover, Index: 1}
	if a.Equal(b) {
		t.Fatal("actions with different types must never be equal")
	}
}

func TestActionEqualDone(t *testing.T) {
	a := Action{Type: Done, Success: true}
	b := Action{Type: Done, Success: false}
	if a.Equal(b) {
		t.Fatal("done actions have no loop-detection equality and should not compare equal")
	}
}
