package storage

import (
	"context"
	"fmt"
	"image"
	"io"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
)

// BlobClient is the subset of *azblob.Client used by AzureStore
type BlobClient interface {
	CreateContainer(ctx context.Context, containerName string, o *azblob.CreateContainerOptions) (azblob.CreateContainerResponse, error)
	UploadBuffer(ctx context.Context, containerName string, blobName string, buffer []byte, o *azblob.UploadBufferOptions) (azblob.UploadBufferResponse, error)
	DownloadStream(ctx context.Context, containerName string, blobName string, o *azblob.DownloadStreamOptions) (azblob.DownloadStreamResponse, error)
}

// AzureStore keeps images as blobs in one container
type AzureStore struct {
	client    BlobClient
	container string
}

// NewAzureStore connects with a shared key and makes sure the container exists
func NewAzureStore(ctx context.Context, accountName, accountKey, container string) (*AzureStore, error) {
	credential, err := azblob.NewSharedKeyCredential(accountName, accountKey)
	if err != nil {
		return nil, fmt.Errorf("invalid azure storage credentials: %w", err)
	}

	client, err := azblob.NewClientWithSharedKeyCredential(
		fmt.Sprintf("https://%s.blob.core.windows.net/", accountName),
		credential,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create azure blob client: %w", err)
	}

	return newAzureStore(ctx, client, container)
}

func newAzureStore(ctx context.Context, client BlobClient, container string) (*AzureStore, error) {
	if _, err := client.CreateContainer(ctx, container, nil); err != nil &&
		!bloberror.HasCode(err, bloberror.ContainerAlreadyExists) {
		return nil, fmt.Errorf("failed to create container %s: %w", container, err)
	}
	return &AzureStore{client: client, container: container}, nil
}

// Save uploads img encoded by its extension
func (s *AzureStore) Save(ctx context.Context, name string, img image.Image) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	data, err := Encode(name, img)
	if err != nil {
		return err
	}

	contentType := ContentType(name)
	_, err = s.client.UploadBuffer(ctx, s.container, name, data, &azblob.UploadBufferOptions{
		HTTPHeaders: &blob.HTTPHeaders{BlobContentType: &contentType},
	})
	if err != nil {
		return fmt.Errorf("upload of %s failed: %w", name, err)
	}
	return nil
}

// Open streams the blob back
func (s *AzureStore) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	resp, err := s.client.DownloadStream(ctx, s.container, name, nil)
	if bloberror.HasCode(err, bloberror.BlobNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrImageNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("download of %s failed: %w", name, err)
	}
	return resp.Body, nil
}
