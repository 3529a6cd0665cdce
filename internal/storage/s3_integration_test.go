//go:build integration

package storage

import (
	"context"
	"testing"

	"github.com/novanote/novanote/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestS3Client_Integration(t *testing.T) {
	ctx := context.Background()
	rc := testutil.NewRustFSContainer(ctx, t)
	defer rc.Terminate(ctx)

	client, err := NewS3Client(ctx, S3ClientConfig{
		Endpoint:        rc.Endpoint(),
		Region:          "us-east-1",
		AccessKeyID:     "rustfsadmin",
		SecretAccessKey: "rustfsadmin",
		Bucket:          "novanote-test",
		UsePathStyle:    true,
	})
	require.NoError(t, err)
	require.NoError(t, client.EnsureBucket(ctx))
	require.NoError(t, client.EnsureBucket(ctx))

	key := "pdfs/c1/i1.pdf"
	body := []byte("%PDF-1.4 fake body")
	require.NoError(t, client.PutObject(ctx, key, body, "application/pdf"))

	got, err := client.GetObject(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, body, got)

	url, err := client.GenerateDownloadURL(ctx, key)
	require.NoError(t, err)
	assert.Contains(t, url, key)

	require.NoError(t, client.DeleteObject(ctx, key))
	_, err = client.GetObject(ctx, key)
	assert.Error(t, err)
}
