package storage

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"io"
	"testing"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryBlobClient keeps blobs in memory
type memoryBlobClient struct {
	blobs map[string][]byte
}

func newMemoryBlobClient() *memoryBlobClient {
	return &memoryBlobClient{blobs: make(map[string][]byte)}
}

func (m *memoryBlobClient) CreateContainer(ctx context.Context, containerName string, o *azblob.CreateContainerOptions) (azblob.CreateContainerResponse, error) {
	return azblob.CreateContainerResponse{}, nil
}

func (m *memoryBlobClient) UploadBuffer(ctx context.Context, containerName string, blobName string, buffer []byte, o *azblob.UploadBufferOptions) (azblob.UploadBufferResponse, error) {
	m.blobs[containerName+"/"+blobName] = append([]byte(nil), buffer...)
	return azblob.UploadBufferResponse{}, nil
}

func (m *memoryBlobClient) DownloadStream(ctx context.Context, containerName string, blobName string, o *azblob.DownloadStreamOptions) (azblob.DownloadStreamResponse, error) {
	data, ok := m.blobs[containerName+"/"+blobName]
	if !ok {
		return azblob.DownloadStreamResponse{}, fmt.Errorf("blob %s: %w", blobName, ErrImageNotFound)
	}
	var resp azblob.DownloadStreamResponse
	resp.Body = io.NopCloser(bytes.NewReader(data))
	return resp, nil
}

func TestAzureStore_SaveOpen(t *testing.T) {
	client := newMemoryBlobClient()
	store, err := newAzureStore(context.Background(), client, "plates")
	require.NoError(t, err)

	img := imaging.New(10, 5, color.NRGBA{G: 128, A: 255})
	require.NoError(t, store.Save(context.Background(), "captured_20240101_120000.jpg", img))
	assert.Contains(t, client.blobs, "plates/captured_20240101_120000.jpg")

	rc, err := store.Open(context.Background(), "captured_20240101_120000.jpg")
	require.NoError(t, err)
	defer rc.Close()
	decoded, err := imaging.Decode(rc)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 10, 5), decoded.Bounds())
}

func TestAzureStore_Errors(t *testing.T) {
	store, err := newAzureStore(context.Background(), newMemoryBlobClient(), "plates")
	require.NoError(t, err)

	_, err = store.Open(context.Background(), "missing.jpg")
	assert.ErrorIs(t, err, ErrImageNotFound)

	err = store.Save(context.Background(), "../escape.jpg", imaging.New(1, 1, color.Black))
	assert.ErrorIs(t, err, ErrInvalidName)

	err = store.Save(context.Background(), "frame.xyz", imaging.New(1, 1, color.Black))
	assert.Error(t, err)
}

var _ BlobClient = (*azblob.Client)(nil)
