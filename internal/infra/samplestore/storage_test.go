package samplestore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemoryStoragePutAndDelete(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStorage()

	obj, err := store.Put(ctx, "samples/u/speech/1", []byte("wav-bytes"), "audio/wav")
	require.NoError(t, err)
	require.Equal(t, int64(9), obj.Size)
	require.Equal(t, "audio/wav", obj.MimeType)
	require.Len(t, obj.ETag, 32)

	data, ok := store.Bytes("samples/u/speech/1")
	require.True(t, ok)
	require.Equal(t, "wav-bytes", string(data))

	require.NoError(t, store.Delete(ctx, "samples/u/speech/1"))
	_, ok = store.Bytes("samples/u/speech/1")
	require.False(t, ok)
}

func TestSanitizeEndpoint(t *testing.T) {
	require.Equal(t, "acct.r2.cloudflarestorage.com", sanitizeEndpoint("https://acct.r2.cloudflarestorage.com/bucket"))
	require.Equal(t, "localhost:9000", sanitizeEndpoint(" http://localhost:9000 "))
	require.Equal(t, "minio:9000", sanitizeEndpoint("minio:9000"))
}
