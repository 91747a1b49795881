package cache

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/quevendi/backend/internal/domain"
)

func TestMemoryCache_SetAndGet(t *testing.T) {
	cache := NewMemoryCache(time.Minute)
	defer cache.Close()
	ctx := context.Background()

	tests := []struct {
		name  string
		key   string
		value []byte
		ttl   time.Duration
	}{
		{
			name:  "store and retrieve pending choice",
			key:   "pending:tok-1",
			value: []byte(`{"token":"tok-1","role":"item"}`),
			ttl:   1 * time.Minute,
		},
		{
			name:  "store and retrieve empty value",
			key:   "pending:tok-2",
			value: []byte{},
			ttl:   1 * time.Minute,
		},
		{
			name:  "store with short TTL",
			key:   "pending:tok-3",
			value: []byte("expires-soon"),
			ttl:   1 * time.Millisecond,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := cache.Set(ctx, tt.key, tt.value, tt.ttl); err != nil {
				t.Fatalf("Set() error = %v", err)
			}

			// For short TTL test, wait for expiration
			if tt.ttl < 10*time.Millisecond {
				time.Sleep(10 * time.Millisecond)
				_, err := cache.Get(ctx, tt.key)
				if err != domain.ErrCacheMiss {
					t.Errorf("Get() after expiration error = %v, want ErrCacheMiss", err)
				}
				return
			}

			got, err := cache.Get(ctx, tt.key)
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if string(got) != string(tt.value) {
				t.Errorf("Get() = %q, want %q", got, tt.value)
			}
		})
	}
}

func TestMemoryCache_ValuesAreCopied(t *testing.T) {
	cache := NewMemoryCache(time.Minute)
	defer cache.Close()
	ctx := context.Background()

	value := []byte("original")
	_ = cache.Set(ctx, "key", value, time.Minute)
	value[0] = 'X'

	got, _ := cache.Get(ctx, "key")
	if string(got) != "original" {
		t.Errorf("Get() = %q after caller mutated input, want original", got)
	}

	got[0] = 'Y'
	again, _ := cache.Get(ctx, "key")
	if string(again) != "original" {
		t.Errorf("Get() = %q after caller mutated output, want original", again)
	}
}

func TestMemoryCache_Get_CacheMiss(t *testing.T) {
	cache := NewMemoryCache(time.Minute)
	defer cache.Close()

	_, err := cache.Get(context.Background(), "non-existent-key")
	if err != domain.ErrCacheMiss {
		t.Errorf("Get() error = %v, want ErrCacheMiss", err)
	}
}

func TestMemoryCache_Delete(t *testing.T) {
	cache := NewMemoryCache(time.Minute)
	defer cache.Close()
	ctx := context.Background()

	_ = cache.Set(ctx, "key", []byte("value"), time.Minute)

	if err := cache.Delete(ctx, "key"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := cache.Get(ctx, "key"); err != domain.ErrCacheMiss {
		t.Errorf("Get() after Delete() error = %v, want ErrCacheMiss", err)
	}

	// Deleting a missing key is not an error
	if err := cache.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete() missing key error = %v, want nil", err)
	}
}

func TestMemoryCache_GetDel(t *testing.T) {
	cache := NewMemoryCache(time.Minute)
	defer cache.Close()
	ctx := context.Background()

	_ = cache.Set(ctx, "key", []byte("value"), time.Minute)

	got, err := cache.GetDel(ctx, "key")
	if err != nil {
		t.Fatalf("GetDel() error = %v", err)
	}
	if string(got) != "value" {
		t.Errorf("GetDel() = %q, want %q", got, "value")
	}
	if _, err := cache.GetDel(ctx, "key"); err != domain.ErrCacheMiss {
		t.Errorf("second GetDel() error = %v, want ErrCacheMiss", err)
	}

	_ = cache.Set(ctx, "expired", []byte("value"), -time.Second)
	if _, err := cache.GetDel(ctx, "expired"); err != domain.ErrCacheMiss {
		t.Errorf("GetDel() expired error = %v, want ErrCacheMiss", err)
	}
	if cache.Size() != 0 {
		t.Errorf("Size() = %d, want 0", cache.Size())
	}
}

func TestMemoryCache_GetDelSingleTaker(t *testing.T) {
	cache := NewMemoryCache(time.Minute)
	defer cache.Close()
	ctx := context.Background()

	for round := 0; round < 20; round++ {
		_ = cache.Set(ctx, "token", []byte("pending"), time.Minute)

		var taken int32
		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := cache.GetDel(ctx, "token"); err == nil {
					atomic.AddInt32(&taken, 1)
				}
			}()
		}
		wg.Wait()

		if taken != 1 {
			t.Fatalf("round %d: %d callers took the value, want 1", round, taken)
		}
	}
}

func TestMemoryCache_Exists(t *testing.T) {
	cache := NewMemoryCache(time.Minute)
	defer cache.Close()
	ctx := context.Background()

	_ = cache.Set(ctx, "live", []byte("v"), time.Minute)
	_ = cache.Set(ctx, "expired", []byte("v"), time.Millisecond)
	time.Sleep(5 * time.Millisecond)

	tests := []struct {
		key  string
		want bool
	}{
		{"live", true},
		{"expired", false},
		{"missing", false},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, err := cache.Exists(ctx, tt.key)
			if err != nil {
				t.Fatalf("Exists() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Exists(%q) = %v, want %v", tt.key, got, tt.want)
			}
		})
	}
}

func TestMemoryCache_RemoveExpired(t *testing.T) {
	cache := NewMemoryCache(time.Minute)
	defer cache.Close()
	ctx := context.Background()

	_ = cache.Set(ctx, "short", []byte("v"), time.Second)
	_ = cache.Set(ctx, "long", []byte("v"), time.Hour)

	cache.removeExpired(time.Now().Add(time.Minute))

	if cache.Size() != 1 {
		t.Errorf("Size() = %d after sweep, want 1", cache.Size())
	}
	if ok, _ := cache.Exists(ctx, "long"); !ok {
		t.Error("long-lived key was swept")
	}
}

func TestMemoryCache_SizeAndClear(t *testing.T) {
	cache := NewMemoryCache(time.Minute)
	defer cache.Close()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_ = cache.Set(ctx, fmt.Sprintf("key-%d", i), []byte("v"), time.Minute)
	}
	if cache.Size() != 5 {
		t.Errorf("Size() = %d, want 5", cache.Size())
	}

	cache.Clear()
	if cache.Size() != 0 {
		t.Errorf("Size() after Clear() = %d, want 0", cache.Size())
	}
}

func TestMemoryCache_CloseIsIdempotent(t *testing.T) {
	cache := NewMemoryCache(time.Millisecond)
	if err := cache.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if err := cache.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}

func TestMemoryCache_Concurrent(t *testing.T) {
	cache := NewMemoryCache(time.Minute)
	defer cache.Close()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			key := fmt.Sprintf("key-%d", n%10)
			_ = cache.Set(ctx, key, []byte("value"), time.Minute)
			_, _ = cache.Get(ctx, key)
			_, _ = cache.Exists(ctx, key)
			if n%7 == 0 {
				_ = cache.Delete(ctx, key)
			}
		}(i)
	}
	wg.Wait()

	if cache.Size() > 10 {
		t.Errorf("Size() = %d, want at most 10", cache.Size())
	}
}
