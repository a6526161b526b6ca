package cache

import (
	"testing"
	"time"
)

type signalingCleaner struct {
	swept chan struct{}
}

func (c *signalingCleaner) CleanExpired() int {
	select {
	case c.swept <- struct{}{}:
	default:
	}
	return 1
}

func TestManagerSweepsRegisteredCaches(t *testing.T) {
	m := NewManager()
	c := &signalingCleaner{swept: make(chan struct{}, 1)}
	m.Register(c)
	m.StartCleanup(time.Millisecond)
	defer m.Stop()

	select {
	case <-c.swept:
	case <-time.After(5 * time.Second):
		t.Fatal("janitor never swept the registered cache")
	}
}

func TestManagerStopWithoutStart(t *testing.T) {
	m := NewManager()
	m.Stop() // must return, not block on a janitor that never ran
}
