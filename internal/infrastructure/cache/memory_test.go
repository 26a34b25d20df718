package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/sana-a-khan/fabrix/internal/domain"
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
			name:  "store and retrieve record",
			key:   "analysis:1",
			value: []byte(`{"fibers":[{"name":"cotton","percentage":100}],"composition_grade":"Natural"}`),
			ttl:   1 * time.Minute,
		},
		{
			name:  "store empty value",
			key:   "analysis:2",
			value: []byte{},
			ttl:   1 * time.Minute,
		},
		{
			name:  "store with short TTL",
			key:   "analysis:3",
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
					t.Errorf("Expected cache miss after expiration, got error = %v", err)
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

	value := []byte("wool")
	if err := cache.Set(ctx, "k", value, time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	value[0] = 'X'

	got, _ := cache.Get(ctx, "k")
	if string(got) != "wool" {
		t.Errorf("stored value changed through caller slice: %q", got)
	}

	got[0] = 'Y'
	again, _ := cache.Get(ctx, "k")
	if string(again) != "wool" {
		t.Errorf("stored value changed through returned slice: %q", again)
	}
}

func TestMemoryCache_Get_CacheMiss(t *testing.T) {
	cache := NewMemoryCache(time.Minute)
	defer cache.Close()

	_, err := cache.Get(context.Background(), "non-existent-key")
	if err != domain.ErrCacheMiss {
		t.Errorf("Get() error = %v, want %v", err, domain.ErrCacheMiss)
	}
}

func TestMemoryCache_Delete(t *testing.T) {
	cache := NewMemoryCache(time.Minute)
	defer cache.Close()
	ctx := context.Background()

	key := "delete-test"
	if err := cache.Set(ctx, key, []byte("value"), 1*time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	if err := cache.Delete(ctx, key); err != nil {
		t.Errorf("Delete() error = %v", err)
	}

	if _, err := cache.Get(ctx, key); err != domain.ErrCacheMiss {
		t.Errorf("Get() after delete error = %v, want %v", err, domain.ErrCacheMiss)
	}
}

func TestMemoryCache_Exists(t *testing.T) {
	cache := NewMemoryCache(time.Minute)
	defer cache.Close()
	ctx := context.Background()

	exists, err := cache.Exists(ctx, "exists-test")
	if err != nil || exists {
		t.Errorf("Exists() = %v, %v; want false, nil", exists, err)
	}

	if err := cache.Set(ctx, "exists-test", []byte("value"), 1*time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if exists, _ := cache.Exists(ctx, "exists-test"); !exists {
		t.Errorf("Exists() = false, want true after setting value")
	}

	if err := cache.Set(ctx, "short-ttl", []byte("value"), 1*time.Millisecond); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	time.Sleep(10 * time.Millisecond)

	if exists, _ := cache.Exists(ctx, "short-ttl"); exists {
		t.Errorf("Exists() = true, want false after expiration")
	}
}

func TestMemoryCache_RemoveExpired(t *testing.T) {
	cache := NewMemoryCache(time.Hour)
	defer cache.Close()
	ctx := context.Background()

	cache.Set(ctx, "old", []byte("a"), time.Millisecond)
	cache.Set(ctx, "fresh", []byte("b"), time.Hour)

	cache.removeExpired(time.Now().Add(time.Second))

	if size := cache.Size(); size != 1 {
		t.Errorf("Size() = %d, want 1 after sweep", size)
	}
	if _, err := cache.Get(ctx, "fresh"); err != nil {
		t.Errorf("fresh entry swept: %v", err)
	}
}

func TestMemoryCache_Clear(t *testing.T) {
	cache := NewMemoryCache(time.Minute)
	defer cache.Close()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		key := string(rune('a' + i))
		if err := cache.Set(ctx, key, []byte{byte(i)}, 1*time.Minute); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
	}

	if size := cache.Size(); size != 5 {
		t.Fatalf("Size() = %d, want 5 before clear", size)
	}

	cache.Clear()

	if size := cache.Size(); size != 0 {
		t.Errorf("Size() = %d, want 0 after clear", size)
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
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			key := string(rune('a' + id))
			if err := cache.Set(ctx, key, []byte{byte(id)}, 1*time.Minute); err != nil {
				t.Errorf("Concurrent Set() error = %v", err)
			}
			if _, err := cache.Get(ctx, key); err != nil {
				t.Errorf("Concurrent Get() error = %v", err)
			}
		}(i)
	}
	wg.Wait()
}
