// Intrasync - 42 Intra project catalog sync to Anytype
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/intrasync

package cache

import (
	"sync"
	"testing"
	"time"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (f *fakeClock) now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.t
}

func (f *fakeClock) advance(d time.Duration) {
	f.mu.Lock()
	f.t = f.t.Add(d)
	f.mu.Unlock()
}

func TestLRU_BasicOperations(t *testing.T) {
	t.Parallel()

	cache := NewLRU[int, string](3, time.Minute)
	cache.Add(1, "a")
	cache.Add(2, "b")
	cache.Add(3, "c")

	for k, want := range map[int]string{1: "a", 2: "b", 3: "c"} {
		got, found := cache.Get(k)
		if !found || got != want {
			t.Errorf("Get(%d) = %q, %v; want %q", k, got, found, want)
		}
	}
	if cache.Len() != 3 {
		t.Errorf("Expected len 3, got %d", cache.Len())
	}
}

func TestLRU_Eviction(t *testing.T) {
	t.Parallel()

	cache := NewLRU[string, int](3, time.Minute)
	cache.Add("a", 1)
	cache.Add("b", 2)
	cache.Add("c", 3)

	// Access 'a' to make it most recently used
	cache.Get("a")

	// 'b' is now the least recently used
	cache.Add("d", 4)

	if _, found := cache.Get("b"); found {
		t.Error("Expected 'b' to be evicted")
	}
	for _, k := range []string{"a", "c", "d"} {
		if _, found := cache.Get(k); !found {
			t.Errorf("Expected %q to be present", k)
		}
	}
}

func TestLRU_UpdateExisting(t *testing.T) {
	t.Parallel()

	cache := NewLRU[string, int](2, time.Minute)
	cache.Add("a", 1)
	cache.Add("a", 2)

	if got, _ := cache.Get("a"); got != 2 {
		t.Errorf("Get(a) = %d, want 2", got)
	}
	if cache.Len() != 1 {
		t.Errorf("Len() = %d, want 1", cache.Len())
	}
}

func TestLRU_TTLExpiration(t *testing.T) {
	t.Parallel()

	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	cache := NewLRU[string, int](10, time.Minute)
	cache.SetClock(clock.now)

	cache.Add("a", 1)
	if _, found := cache.Get("a"); !found {
		t.Fatal("Expected to find key 'a' immediately")
	}

	clock.advance(61 * time.Second)
	if _, found := cache.Get("a"); found {
		t.Error("Expected key 'a' to be expired")
	}
	if cache.Len() != 0 {
		t.Error("Expired entry should be removed on access")
	}
}

func TestLRU_Remove(t *testing.T) {
	t.Parallel()

	cache := NewLRU[string, int](10, time.Minute)
	cache.Add("a", 1)
	cache.Add("b", 2)

	if !cache.Remove("a") {
		t.Error("Expected Remove to return true for existing key")
	}
	if cache.Remove("a") {
		t.Error("Expected Remove to return false for non-existing key")
	}
	if _, found := cache.Get("b"); !found {
		t.Error("Expected key 'b' to still be present")
	}
}

func TestLRU_Clear(t *testing.T) {
	t.Parallel()

	cache := NewLRU[string, int](10, time.Minute)
	cache.Add("a", 1)
	cache.Add("b", 2)
	cache.Clear()

	if cache.Len() != 0 {
		t.Errorf("Expected empty cache after Clear, got len %d", cache.Len())
	}
	if _, found := cache.Get("a"); found {
		t.Error("Expected no items after Clear")
	}
}

func TestLRU_CleanupExpired(t *testing.T) {
	t.Parallel()

	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	cache := NewLRU[string, int](10, 50*time.Millisecond)
	cache.SetClock(clock.now)

	cache.Add("a", 1)
	cache.Add("b", 2)
	cache.Add("c", 3)
	clock.advance(60 * time.Millisecond)
	cache.Add("d", 4)

	if removed := cache.CleanupExpired(); removed != 3 {
		t.Errorf("Expected 3 expired items removed, got %d", removed)
	}
	if cache.Len() != 1 {
		t.Errorf("Expected 1 item remaining, got %d", cache.Len())
	}
}

func TestLRU_Stats(t *testing.T) {
	t.Parallel()

	cache := NewLRU[string, int](10, time.Minute)
	cache.Add("a", 1)
	cache.Get("a")        // hit
	cache.Get("a")        // hit
	cache.Get("nonexist") // miss

	stats := cache.Stats()
	if stats.Hits != 2 || stats.Misses != 1 || stats.Size != 1 {
		t.Errorf("Stats() = %+v", stats)
	}
	if rate := stats.HitRate(); rate < 0.66 || rate > 0.67 {
		t.Errorf("HitRate() = %v", rate)
	}
	if (Stats{}).HitRate() != 0 {
		t.Error("HitRate() of empty stats should be 0")
	}
}

func TestLRU_Defaults(t *testing.T) {
	t.Parallel()

	cache := NewLRU[int, int](0, 0)
	if cache.capacity != defaultCapacity || cache.ttl != defaultTTL {
		t.Errorf("defaults = %d/%v", cache.capacity, cache.ttl)
	}
}

func TestLRU_Concurrent(t *testing.T) {
	t.Parallel()

	cache := NewLRU[int, int](100, time.Minute)

	var wg sync.WaitGroup
	for g := 0; g < 50; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				key := (g*200 + i) % 150
				cache.Add(key, i)
				cache.Get(key)
				if i%10 == 0 {
					cache.Remove(key)
				}
			}
		}(g)
	}
	wg.Wait()

	if cache.Len() > 100 {
		t.Errorf("Len() = %d exceeds capacity", cache.Len())
	}
}
