package controller

import (
	"errors"
	"testing"
	"time"
)

func TestClassifyCritical(t *testing.T) {
	kind, hint := Classify(errors.New("Browser crashed during navigation"))
	if kind != KindCritical {
		t.Fatalf("expected critical, got %v", kind)
	}
	if hint == "" {
		t.Fatal("expected non-empty recovery hint")
	}
	if !kind.IsCritical() {
		t.Fatal("expected IsCritical to be true")
	}
}

func TestClassifyNotFound(t *testing.T) {
	kind, _ := Classify(errors.New("element not found: index 7"))
	if kind != KindNotFound {
		t.Fatalf("expected not found, got %v", kind)
	}
}

func TestClassifyNotClickable(t *testing.T) {
	kind, _ := Classify(errors.New("element is covered by another element"))
	if kind != KindNotClickable {
		t.Fatalf("expected not clickable, got %v", kind)
	}
}

func TestClassifyTimeout(t *testing.T) {
	kind, _ := Classify(errors.New("Timeout 30000ms exceeded"))
	if kind != KindTimeout {
		t.Fatalf("expected timeout, got %v", kind)
	}
}

func TestClassifyUnknownFallback(t *testing.T) {
	kind, hint := Classify(errors.New("something unexpected happened"))
	if kind != KindUnknown {
		t.Fatalf("expected unknown, got %v", kind)
	}
	if hint == "" {
		t.Fatal("expected a fallback recovery hint")
	}
}

func TestClassifyNilError(t *testing.T) {
	kind, hint := Classify(nil)
	if kind != KindUnknown || hint != "" {
		t.Fatalf("expected unknown/empty for nil error, got %v %q", kind, hint)
	}
}

func TestClassifyContextDestroyed(t *testing.T) {
	kind, _ := Classify(errors.New("Execution context was destroyed, most likely because of a navigation"))
	if kind != KindNavigation {
		t.Fatalf("expected navigation, got %v", kind)
	}
}

func TestFailTranslatesContextDestroyedToSuccess(t *testing.T) {
	res := fail(time.Now(), errors.New("Protocol error (Runtime.callFunctionOn): Cannot find context with specified id"))
	if !res.Success || !res.NavigationDetected {
		t.Fatalf("expected a navigation-detected success, got %+v", res)
	}
}

func TestFailReportsOrdinaryFailures(t *testing.T) {
	res := fail(time.Now(), errors.New("element not found: index 3"))
	if res.Success || res.NavigationDetected {
		t.Fatalf("expected an ordinary failure, got %+v", res)
	}
}
