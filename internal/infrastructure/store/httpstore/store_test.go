package httpstore

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kvoloboi/sensorpipe/internal/domain"
)

func testRecord(t *testing.T) domain.Record {
	t.Helper()

	captured := time.Date(2026, 5, 6, 7, 8, 9, 123456789, time.UTC)
	r, err := domain.NewReading("temp-01", 23.5, "C", captured)
	require.NoError(t, err)

	return domain.NewRecord(r, captured.Add(50*time.Millisecond))
}

func TestInsertPostsRecordJSON(t *testing.T) {
	var (
		mu     sync.Mutex
		bodies []recordJSON
		paths  []string
	)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body recordJSON
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		mu.Lock()
		bodies = append(bodies, body)
		paths = append(paths, r.URL.Path)
		mu.Unlock()

		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	store, err := NewStore(srv.URL, nil)
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Insert(context.Background(), testRecord(t)))

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, bodies, 1)
	require.Equal(t, "/records", paths[0])
	require.Equal(t, "temp-01", bodies[0].SensorID)
	require.Equal(t, 23.5, bodies[0].Value)
	require.Equal(t, "C", bodies[0].Unit)
	require.Equal(t, "2026-05-06T07:08:09.123456789Z", bodies[0].Timestamp)
}

func TestInsertFailsOnServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "write rejected", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	store, err := NewStore(srv.URL, nil)
	require.NoError(t, err)

	require.ErrorIs(t, store.Insert(context.Background(), testRecord(t)), ErrInsert)
}

func TestNewStoreRejectsEmptyURL(t *testing.T) {
	_, err := NewStore("", nil)
	require.Error(t, err)
}
