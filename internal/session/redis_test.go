package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func TestRedisStore_SaveLoadDelete(t *testing.T) {
	mr := miniredis.RunT(t)
	s := NewRedisStore(mr.Addr(), "", time.Hour)
	defer s.Close()
	ctx := context.Background()

	if err := s.Ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}
	if _, ok, err := s.Load(ctx, 7); err != nil || ok {
		t.Fatalf("expected empty store, ok=%v err=%v", ok, err)
	}
	if err := s.Save(ctx, 7, 101); err != nil {
		t.Fatalf("save: %v", err)
	}
	id, ok, err := s.Load(ctx, 7)
	if err != nil || !ok || id != 101 {
		t.Fatalf("load=%d,%v,%v; want 101", id, ok, err)
	}
	if err := s.Delete(ctx, 7); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := s.Load(ctx, 7); ok {
		t.Fatal("session must be gone")
	}
	// удаление несуществующей сессии: не ошибка
	if err := s.Delete(ctx, 7); err != nil {
		t.Fatalf("second delete: %v", err)
	}
}

func TestRedisStore_Expires(t *testing.T) {
	mr := miniredis.RunT(t)
	s := NewRedisStore(mr.Addr(), "", time.Minute)
	defer s.Close()
	ctx := context.Background()

	if err := s.Save(ctx, 1, 5); err != nil {
		t.Fatal(err)
	}
	mr.FastForward(2 * time.Minute)
	if _, ok, err := s.Load(ctx, 1); err != nil || ok {
		t.Fatalf("expired session must not load, ok=%v err=%v", ok, err)
	}
}

func TestRedisStore_BadValue(t *testing.T) {
	mr := miniredis.RunT(t)
	s := NewRedisStore(mr.Addr(), "", time.Minute)
	defer s.Close()

	if err := mr.Set(key(3), "not-a-number"); err != nil {
		t.Fatal(err)
	}
	if _, _, err := s.Load(context.Background(), 3); err == nil {
		t.Fatal("expected parse error")
	}
}
