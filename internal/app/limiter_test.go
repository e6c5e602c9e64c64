package app

import (
	"sync"
	"sync/atomic"
	"testing"
)

func TestChatLimiter_SerializesOneChat(t *testing.T) {
	l := NewChatLimiter()
	var (
		inside  int32
		maxSeen int32
		wg      sync.WaitGroup
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := l.lock(1)
			defer unlock()
			n := atomic.AddInt32(&inside, 1)
			if n > atomic.LoadInt32(&maxSeen) {
				atomic.StoreInt32(&maxSeen, n)
			}
			atomic.AddInt32(&inside, -1)
		}()
	}
	wg.Wait()
	if maxSeen != 1 {
		t.Fatalf("concurrent handlers in one chat: %d", maxSeen)
	}
}

func TestChatLimiter_DifferentChatsIndependent(t *testing.T) {
	l := NewChatLimiter()
	unlock := l.lock(1)
	defer unlock()

	done := make(chan struct{})
	go func() {
		u := l.lock(2)
		u()
		close(done)
	}()
	<-done
}
