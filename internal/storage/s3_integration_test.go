//go:build integration

package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aditya-singh004/Dev-Doc-AI/internal/testutil"
)

func TestS3Store_Integration(t *testing.T) {
	ctx := context.Background()
	rc := testutil.NewRustFSContainer(ctx, t)
	defer rc.Terminate(ctx)

	store, err := NewS3Store(ctx, S3ClientConfig{
		Endpoint:        rc.Endpoint(),
		Region:          "us-east-1",
		AccessKeyID:     "rustfsadmin",
		SecretAccessKey: "rustfsadmin",
		Bucket:          "devdoc-test",
		Key:             "index/snapshot.zst",
		UsePathStyle:    true,
	})
	require.NoError(t, err)
	require.NoError(t, store.EnsureBucket(ctx))

	_, err = store.Get(ctx)
	assert.True(t, errors.Is(err, ErrSnapshotNotFound))

	require.NoError(t, store.Put(ctx, strings.NewReader("snapshot-bytes")))

	body, err := store.Get(ctx)
	require.NoError(t, err)
	defer body.Close()
	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "snapshot-bytes", string(data))

	meta, err := store.HeadObject(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(len("snapshot-bytes")), meta.ContentLength)
}
