package cache_test

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/boddenberg/lessence-studio-bfa/internal/infra/cache"
	"github.com/boddenberg/lessence-studio-bfa/internal/port"
)

var _ port.Cache[string] = (*cache.InMemory[string])(nil)

func TestCache_SetAndGet(t *testing.T) {
	c := cache.New[string](5 * time.Minute)
	defer c.Close()

	c.Set("wizard-1", "step-2")
	val, ok := c.Get("wizard-1")
	if !ok {
		t.Fatal("expected key to exist")
	}
	if val != "step-2" {
		t.Errorf("expected 'step-2', got '%s'", val)
	}
}

func TestCache_GetMiss(t *testing.T) {
	c := cache.New[string](5 * time.Minute)
	defer c.Close()

	if _, ok := c.Get("nonexistent"); ok {
		t.Fatal("expected cache miss for nonexistent key")
	}
}

func TestCache_Expiration(t *testing.T) {
	c := cache.New[string](50 * time.Millisecond)
	defer c.Close()

	c.Set("key1", "value1")
	time.Sleep(100 * time.Millisecond)

	if _, ok := c.Get("key1"); ok {
		t.Fatal("expected cache entry to be expired")
	}
}

func TestCache_SetWithTTLOverridesDefault(t *testing.T) {
	c := cache.New[bool](5 * time.Minute)
	defer c.Close()

	c.SetWithTTL("jti", true, 30*time.Millisecond)
	time.Sleep(60 * time.Millisecond)

	if _, ok := c.Get("jti"); ok {
		t.Fatal("expected short-lived entry to be expired")
	}
}

func TestCache_SetIfAbsent(t *testing.T) {
	c := cache.New[bool](5 * time.Minute)
	defer c.Close()

	if !c.SetIfAbsent("jti", true, 30*time.Millisecond) {
		t.Fatal("expected first insert to win")
	}
	if c.SetIfAbsent("jti", true, time.Minute) {
		t.Fatal("expected second insert to lose while the entry is live")
	}

	time.Sleep(60 * time.Millisecond)
	if !c.SetIfAbsent("jti", true, time.Minute) {
		t.Fatal("expected insert over an expired entry to win")
	}
}

func TestCache_SetIfAbsentConcurrent(t *testing.T) {
	c := cache.New[bool](5 * time.Minute)
	defer c.Close()

	var (
		wg   sync.WaitGroup
		wins atomic.Int32
	)
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if c.SetIfAbsent("jti", true, time.Minute) {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	if got := wins.Load(); got != 1 {
		t.Errorf("expected exactly one winner, got %d", got)
	}
}

func TestCache_Delete(t *testing.T) {
	c := cache.New[string](5 * time.Minute)
	defer c.Close()

	c.Set("key1", "value1")
	c.Delete("key1")

	if _, ok := c.Get("key1"); ok {
		t.Fatal("expected key to be deleted")
	}
}

func TestCache_CloseTwice(t *testing.T) {
	c := cache.New[int](time.Minute)
	c.Close()
	c.Close()

	c.Set("a", 1)
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Fatal("expected cache to stay usable after Close")
	}
}
