package storage

import (
	"context"
	"fmt"
	"path"

	"github.com/chartmuseum/storage"
)

// LocalClient implements ObjectStorage on a directory, e.g. a drop folder the
// SAP exports are copied into.
type LocalClient struct {
	backend *storage.LocalFilesystemBackend
}

func NewLocalClient(root string) (*LocalClient, error) {
	if root == "" {
		return nil, fmt.Errorf("local storage root must be provided")
	}
	return &LocalClient{backend: storage.NewLocalFilesystemBackend(root)}, nil
}

// ListObjects lists all files below prefix. Keys are relative to the root.
func (c *LocalClient) ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	files, err := c.backend.ListObjects(prefix)
	if err != nil {
		return nil, fmt.Errorf("local list failed: %w", err)
	}
	results := make([]ObjectInfo, 0, len(files))
	for _, object := range files {
		results = append(results, ObjectInfo{
			Key:  path.Join(prefix, object.Path),
			Size: int64(len(object.Content)),
		})
	}
	return results, nil
}

func (c *LocalClient) GetObject(ctx context.Context, key string) ([]byte, error) {
	object, err := c.backend.GetObject(key)
	if err != nil {
		return nil, fmt.Errorf("local get failed: %w", err)
	}
	return object.Content, nil
}

func (c *LocalClient) UploadObject(ctx context.Context, key string, data []byte) error {
	if err := c.backend.PutObject(key, data); err != nil {
		return fmt.Errorf("local upload failed: %w", err)
	}
	return nil
}

var _ ObjectStorage = (*LocalClient)(nil)
