package vault

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestSplitMount(t *testing.T) {
	cases := []struct{ in, mount, rel string }{
		{"secret/waitlist/db", "secret", "waitlist/db"},
		{"/secret/app/", "secret", "app"},
		{"secret", "secret", ""},
		{"", "", ""},
	}
	for _, tc := range cases {
		m, r := splitMount(tc.in)
		if m != tc.mount || r != tc.rel {
			t.Errorf("splitMount(%q) = %q, %q; want %q, %q", tc.in, m, r, tc.mount, tc.rel)
		}
	}
}

func TestCache(t *testing.T) {
	c := &Client{log: zap.NewNop().Sugar(), ttl: time.Minute, cache: map[string]cached{}}
	c.store("a#b", "v")
	if v, ok := c.cached("a#b"); !ok || v != "v" {
		t.Fatalf("cached = %q, %v", v, ok)
	}

	c.cache["old#k"] = cached{val: "x", exp: time.Now().Add(-time.Second)}
	if _, ok := c.cached("old#k"); ok {
		t.Fatal("expired entry served")
	}

	off := &Client{log: zap.NewNop().Sugar(), cache: map[string]cached{}}
	off.store("a#b", "v")
	if _, ok := off.cached("a#b"); ok {
		t.Fatal("cache should be disabled with ttl 0")
	}
}

func TestSecret_RejectsBadInput(t *testing.T) {
	c := &Client{log: zap.NewNop().Sugar(), cache: map[string]cached{}}
	if _, err := c.Secret(context.Background(), "", "k"); err == nil {
		t.Fatal("expected error for empty path")
	}
	if _, err := c.Secret(context.Background(), "secret", "k"); err == nil {
		t.Fatal("expected error for path without mount prefix")
	}
}
