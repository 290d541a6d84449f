package storage

import (
	"context"
	"fmt"
	"path"
	"sort"

	"github.com/andresuchdata/qms-dashboard/backend-go/internal/pipeline"
	"github.com/andresuchdata/qms-dashboard/backend-go/internal/sheet"
)

// ObjectInfo represents metadata for a remote file/object.
type ObjectInfo struct {
	Key  string
	Size int64
}

// ObjectStorage captures the minimal S3-compatible operations the ingestion needs.
type ObjectStorage interface {
	ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, error)
	GetObject(ctx context.Context, key string) ([]byte, error)
	UploadObject(ctx context.Context, key string, data []byte) error
}

// LoadInputs downloads every supported export below prefix, ordered by key.
// Objects with other extensions are ignored.
func LoadInputs(ctx context.Context, store ObjectStorage, prefix string) ([]pipeline.Input, error) {
	objects, err := store.ListObjects(ctx, prefix)
	if err != nil {
		return nil, err
	}
	sort.Slice(objects, func(i, j int) bool { return objects[i].Key < objects[j].Key })

	var inputs []pipeline.Input
	for _, obj := range objects {
		if !sheet.Supported(obj.Key) {
			continue
		}
		data, err := store.GetObject(ctx, obj.Key)
		if err != nil {
			return nil, fmt.Errorf("failed to download %s: %w", obj.Key, err)
		}
		inputs = append(inputs, pipeline.Input{Name: path.Base(obj.Key), Data: data})
	}
	return inputs, nil
}
