package quarantine

import (
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAppendReadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "discarded.qlog")

	ql, err := Open(path)
	require.NoError(t, err)

	require.NoError(t, ql.Append(ReasonMalformed, []byte("{{{not json")))
	require.NoError(t, ql.Append(ReasonInvalid, []byte(`{"unit":"C"}`)))
	require.NoError(t, ql.Append(ReasonStoreFailed, []byte(`{"sensor_id":"temp-01"}`)))
	require.NoError(t, ql.Close())

	r, err := NewReader(path)
	require.NoError(t, err)
	defer r.Close()

	first, err := r.Next()
	require.NoError(t, err)
	require.Equal(t, uint64(0), first.Seq)
	require.Equal(t, ReasonMalformed, first.Reason)
	require.Equal(t, []byte("{{{not json"), first.Payload)
	require.False(t, first.QuarantinedAt.IsZero())

	second, err := r.Next()
	require.NoError(t, err)
	require.Equal(t, ReasonInvalid, second.Reason)

	third, err := r.Next()
	require.NoError(t, err)
	require.Equal(t, ReasonStoreFailed, third.Reason)

	_, err = r.Next()
	require.ErrorIs(t, err, io.EOF)
}

func TestAppendAfterCloseFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "discarded.qlog")

	ql, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, ql.Close())

	require.ErrorIs(t, ql.Append(ReasonMalformed, []byte("x")), ErrLogClosed)
}

func TestAppendDuringCloseIsSerialized(t *testing.T) {
	path := filepath.Join(t.TempDir(), "discarded.qlog")

	ql, err := Open(path)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				if err := ql.Append(ReasonStoreFailed, []byte("payload")); err != nil {
					require.ErrorIs(t, err, ErrLogClosed)
					return
				}
			}
		}()
	}

	require.NoError(t, ql.Close())
	wg.Wait()

	// Whatever made it in before Close must read back intact.
	r, err := NewReader(path)
	require.NoError(t, err)
	defer r.Close()

	for {
		entry, err := r.Next()
		if err != nil {
			require.ErrorIs(t, err, io.EOF)
			return
		}
		require.Equal(t, []byte("payload"), entry.Payload)
	}
}

func TestReopenContinuesSequence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "discarded.qlog")

	ql, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, ql.Append(ReasonMalformed, []byte("one")))
	require.NoError(t, ql.Close())

	ql, err = Open(path)
	require.NoError(t, err)
	require.NoError(t, ql.Append(ReasonInvalid, []byte("two")))
	require.NoError(t, ql.Close())

	r, err := NewReader(path)
	require.NoError(t, err)
	defer r.Close()

	first, err := r.Next()
	require.NoError(t, err)
	require.Equal(t, uint64(0), first.Seq)

	second, err := r.Next()
	require.NoError(t, err)
	require.Equal(t, uint64(1), second.Seq)
}

func TestOpenTruncatesTornTail(t *testing.T) {
	path := filepath.Join(t.TempDir(), "discarded.qlog")

	ql, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, ql.Append(ReasonMalformed, []byte("intact")))
	require.NoError(t, ql.Close())

	intact, err := os.Stat(path)
	require.NoError(t, err)

	// Simulate a crash mid-append: a second record missing its tail.
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0o600)
	require.NoError(t, err)
	_, err = f.Write(make([]byte, headerLen+3))
	require.NoError(t, err)
	require.NoError(t, f.Close())

	ql, err = Open(path)
	require.NoError(t, err)
	require.NoError(t, ql.Close())

	truncated, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, intact.Size(), truncated.Size(), "torn record truncated away")

	r, err := NewReader(path)
	require.NoError(t, err)
	defer r.Close()

	first, err := r.Next()
	require.NoError(t, err)
	require.Equal(t, []byte("intact"), first.Payload)

	_, err = r.Next()
	require.ErrorIs(t, err, io.EOF)
}

func TestOpenTruncatesCorruptRecord(t *testing.T) {
	path := filepath.Join(t.TempDir(), "discarded.qlog")

	ql, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, ql.Append(ReasonMalformed, []byte("payload")))
	require.NoError(t, ql.Close())

	// Flip a payload byte; the CRC no longer matches.
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	data[headerLen] ^= 0xFF
	require.NoError(t, os.WriteFile(path, data, 0o600))

	ql, err = Open(path)
	require.NoError(t, err)
	require.NoError(t, ql.Close())

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Zero(t, info.Size(), "corrupt record truncated away")
}
