package assets

import (
	"context"
	"fmt"
	"sync"

	"github.com/rowvault/rowvault/storage"
)

type putCall struct {
	location storage.AssetLocation
	rowIdx   int64
	column   string
	filename string
	data     []byte
}

// fakeAssetStore records puts and answers with a reference derived
// from the arguments, the way the real store does. Safe for concurrent
// use so the worker pool paths can be tested against it.
type fakeAssetStore struct {
	mu     sync.Mutex
	puts   []putCall
	putErr error
}

func (obj *fakeAssetStore) Put(
	ctx context.Context, location storage.AssetLocation, rowIdx int64, column, filename string, data []byte,
) (storage.Asset, error) {
	obj.mu.Lock()
	defer obj.mu.Unlock()
	if obj.putErr != nil {
		return storage.Asset{}, obj.putErr
	}
	obj.puts = append(obj.puts, putCall{
		location: location,
		rowIdx:   rowIdx,
		column:   column,
		filename: filename,
		data:     append([]byte(nil), data...),
	})
	return storage.Asset{
		Src: fmt.Sprintf(
			"http://assets.local/%s/--/%s/--/%s/%s/%d/%s/%s",
			location.Dataset, location.Revision, location.Config, location.Split, rowIdx, column, filename,
		),
	}, nil
}

func (obj *fakeAssetStore) Delete(ctx context.Context, location storage.AssetLocation) error {
	return nil
}

func (obj *fakeAssetStore) calls() []putCall {
	obj.mu.Lock()
	defer obj.mu.Unlock()
	return append([]putCall(nil), obj.puts...)
}
