package supabase

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sana-a-khan/fabrix/internal/domain"
)

func newTestStore(t *testing.T, handler http.HandlerFunc) *Store {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewStore(Config{URL: server.URL, Key: "service-key"}, zerolog.Nop())
}

func TestStore_Get(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodGet, r.Method)
			assert.Equal(t, "/rest/v1/products", r.URL.Path)
			assert.Equal(t, "eq.https://shop.example/p/1", r.URL.Query().Get("url"))
			assert.Equal(t, "service-key", r.Header.Get("apikey"))
			assert.Equal(t, "Bearer service-key", r.Header.Get("Authorization"))

			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`[{"url":"https://shop.example/p/1","title":"Tee","fibers":[{"name":"cotton","percentage":100}],"lining":null,"composition_grade":"Natural","check_count":3}]`))
		})

		record, err := store.Get(context.Background(), "https://shop.example/p/1")
		require.NoError(t, err)
		assert.Equal(t, "Tee", record.Title)
		assert.Equal(t, 3, record.CheckCount)
		assert.Equal(t, domain.GradeNatural, record.CompositionGrade)
		assert.Nil(t, record.Lining)
	})

	t.Run("absent", func(t *testing.T) {
		store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`[]`))
		})

		_, err := store.Get(context.Background(), "https://shop.example/none")
		assert.ErrorIs(t, err, domain.ErrProductNotFound)
	})

	t.Run("store error carries detail", func(t *testing.T) {
		store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"message":"column products.urll does not exist","code":"42703"}`))
		})

		_, err := store.Get(context.Background(), "https://shop.example/p/1")
		require.Error(t, err)
		assert.False(t, errors.Is(err, domain.ErrProductNotFound))
		assert.Equal(t, "database error: column products.urll does not exist", err.Error())
	})
}

func TestStore_Insert(t *testing.T) {
	store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "return=minimal", r.Header.Get("Prefer"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "https://shop.example/p/1", body["url"])
		assert.Equal(t, float64(1), body["check_count"])

		w.WriteHeader(http.StatusCreated)
	})

	err := store.Insert(context.Background(), &domain.ProductRecord{
		URL:        "https://shop.example/p/1",
		Fibers:     []domain.FiberEntry{{Name: "wool", Percentage: 100}},
		CheckCount: 1,
	})
	assert.NoError(t, err)
}

func TestStore_Patch(t *testing.T) {
	store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "eq.https://shop.example/p/1", r.URL.Query().Get("url"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, map[string]any{"check_count": float64(5)}, body)

		w.WriteHeader(http.StatusNoContent)
	})

	err := store.Patch(context.Background(), "https://shop.example/p/1", domain.ProductPatch{CheckCount: 5})
	assert.NoError(t, err)
}

func TestStore_GetUser(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/rest/v1/user_profiles", r.URL.Path)
			assert.Equal(t, "eq.u-1", r.URL.Query().Get("id"))

			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`[{"id":"u-1","email":"a@example.com","subscription_tier":"premium","scans_remaining":12,"scans_used_today":2,"is_flagged":false,"flagged_reason":null}]`))
		})

		user, err := store.GetUser(context.Background(), "u-1")
		require.NoError(t, err)
		assert.True(t, user.IsPremium())
		assert.Equal(t, 12, user.ScansRemaining)
	})

	t.Run("absent", func(t *testing.T) {
		store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`[]`))
		})

		_, err := store.GetUser(context.Background(), "ghost")
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})
}

func TestStore_FlagUser(t *testing.T) {
	store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "eq.u-1", r.URL.Query().Get("id"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, true, body["is_flagged"])
		assert.Equal(t, "too many scans", body["flagged_reason"])

		w.WriteHeader(http.StatusNoContent)
	})

	assert.NoError(t, store.FlagUser(context.Background(), "u-1", "too many scans"))
}

func TestStore_IncrementScanUsage(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     int
	}{
		{"remaining returned", `[{"scans_remaining":7}]`, 7},
		{"null remaining", `[{"scans_remaining":null}]`, 0},
		{"no rows", `[]`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/rest/v1/rpc/increment_scan_usage", r.URL.Path)

				var body map[string]string
				require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
				assert.Equal(t, "u-1", body["p_user_id"])

				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(tt.response))
			})

			got, err := store.IncrementScanUsage(context.Background(), "u-1")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStore_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	store := NewStore(Config{URL: url, Key: "k"}, zerolog.Nop())
	_, err := store.IncrementScanUsage(context.Background(), "u-1")
	require.ErrorIs(t, err, errStore)
	assert.Equal(t, "database error: database unavailable", err.Error())

	_, err = store.Get(context.Background(), "https://x.test/a")
	require.Error(t, err)
	assert.NotContains(t, err.Error(), url)
	assert.NotContains(t, err.Error(), "x.test")
}
