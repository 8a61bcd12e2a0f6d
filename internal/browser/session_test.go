package browser

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

var playwrightCheck struct {
	once sync.Once
	err  error
}

func requirePlaywright(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping browser integration tests in short mode")
	}
	playwrightCheck.once.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		pool, err := NewPool(PoolConfig{Timeout: 10 * time.Second, Headless: true})
		if err != nil {
			playwrightCheck.err = err
			return
		}
		defer pool.Close()

		instance, err := pool.NewInstance(ctx)
		if err != nil {
			playwrightCheck.err = err
			return
		}
		instance.cleanupRoot()
	})

	if playwrightCheck.err != nil {
		t.Skipf("playwright not available: %v", playwrightCheck.err)
	}
}

func TestIsContextDestroyed(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{errors.New("Execution context was destroyed, most likely because of a navigation"), true},
		{errors.New("Cannot find context with specified id"), true},
		{errors.New("Protocol error (Page.navigate): target closed"), true},
		{errors.New("element not found"), false},
		{nil, false},
	}
	for _, c := range cases {
		if got := isContextDestroyed(c.err); got != c.want {
			t.Errorf("isContextDestroyed(%v) = %v, want %v", c.err, got, c.want)
		}
	}
}

func TestSessionNavigateAndClick(t *testing.T) {
	requirePlaywright(t)

	pool, err := NewPool(PoolConfig{Headless: true})
	if err != nil {
		t.Fatalf("new pool: %v", err)
	}
	defer pool.Close()

	ctx := context.Background()
	session, err := NewSession(ctx, pool)
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	defer session.Close()

	if err := session.Navigate(ctx, "data:text/html,<html><body><a id='link' href='#x'>go</a></body></html>"); err != nil {
		t.Fatalf("navigate: %v", err)
	}

	if _, err := session.Click(Locator{CSS: "#link"}); err != nil {
		t.Fatalf("click: %v", err)
	}
}

func TestSessionTabLifecycle(t *testing.T) {
	requirePlaywright(t)

	pool, err := NewPool(PoolConfig{Headless: true})
	if err != nil {
		t.Fatalf("new pool: %v", err)
	}
	defer pool.Close()

	ctx := context.Background()
	session, err := NewSession(ctx, pool)
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	defer session.Close()

	id, err := session.NewTab()
	if err != nil {
		t.Fatalf("new tab: %v", err)
	}
	if len(session.AllTabsInfo()) != 2 {
		t.Fatalf("expected 2 tabs, got %d", len(session.AllTabsInfo()))
	}

	if err := session.SwitchTab(id); err != nil {
		t.Fatalf("switch tab: %v", err)
	}

	if err := session.CloseTab(id); err != nil {
		t.Fatalf("close tab: %v", err)
	}
	if len(session.AllTabsInfo()) != 1 {
		t.Fatalf("expected 1 tab after close, got %d", len(session.AllTabsInfo()))
	}
}
