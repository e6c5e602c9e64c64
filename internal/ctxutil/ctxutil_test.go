package ctxutil

import (
	"context"
	"testing"
	"time"
)

func TestValues(t *testing.T) {
	ctx := WithRequestID(WithOp(WithUserID(WithChatID(context.Background(), 10), 20), "announcements"), "req-1")

	if v, ok := ChatID(ctx); !ok || v != 10 {
		t.Fatalf("ChatID=%d,%v", v, ok)
	}
	if v, ok := UserID(ctx); !ok || v != 20 {
		t.Fatalf("UserID=%d,%v", v, ok)
	}
	if v, ok := Op(ctx); !ok || v != "announcements" {
		t.Fatalf("Op=%q,%v", v, ok)
	}
	if v, ok := RequestID(ctx); !ok || v != "req-1" {
		t.Fatalf("RequestID=%q,%v", v, ok)
	}
	if _, ok := UserID(context.Background()); ok {
		t.Fatal("empty context must not have user id")
	}
}

func TestWithDBTimeout(t *testing.T) {
	t.Run("default_deadline", func(t *testing.T) {
		ctx, cancel := WithDBTimeout(context.Background())
		defer cancel()
		dl, ok := ctx.Deadline()
		if !ok {
			t.Fatal("deadline expected")
		}
		if left := time.Until(dl); left > DefaultDBTimeout || left < DefaultDBTimeout-time.Second {
			t.Fatalf("unexpected remaining %v", left)
		}
	})
	t.Run("shorter_parent_wins", func(t *testing.T) {
		parent, cancelParent := context.WithTimeout(context.Background(), 100*time.Millisecond)
		defer cancelParent()
		ctx, cancel := WithDBTimeout(parent)
		defer cancel()
		dl, _ := ctx.Deadline()
		if time.Until(dl) > 100*time.Millisecond {
			t.Fatal("parent deadline must be kept")
		}
	})
}
