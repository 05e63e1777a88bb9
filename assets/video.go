package assets

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alekLukanen/errs"

	"github.com/rowvault/rowvault/features"
	"github.com/rowvault/rowvault/storage"
)

// VideoSample is the canonical form of a video cell: the encoded bytes
// and/or the path they came from. Videos are persisted as-is, the
// extension is taken from the path.
type VideoSample struct {
	Path  string
	Bytes []byte
}

func (obj *Transformer) encodeVideo(
	ctx context.Context, rowIdx int64, value any, column string, path features.Path,
) (*storage.Asset, error) {
	if value == nil {
		return nil, nil
	}

	sample, err := normalizeVideoCell(value)
	if err != nil {
		return nil, err
	}

	extension, err := videoFileExtension(sample)
	if err != nil {
		return nil, err
	}

	data := sample.Bytes
	if data == nil {
		data, err = os.ReadFile(sample.Path)
		if err != nil {
			return nil, errs.Wrap(err)
		}
	}

	filename := features.AppendHashSuffix("video", path) + extension
	asset, err := obj.store.Put(ctx, obj.location, rowIdx, column, filename, data)
	if err != nil {
		return nil, errs.Wrap(err)
	}
	return &asset, nil
}

func normalizeVideoCell(value any) (VideoSample, error) {
	switch typed := value.(type) {
	case *VideoSample:
		return *typed, nil
	case VideoSample:
		return typed, nil
	case map[string]any:
		sample := VideoSample{}
		if filePath, ok := typed["path"].(string); ok {
			sample.Path = filePath
		}
		if data, ok := typed["bytes"].([]byte); ok {
			sample.Bytes = data
		}
		if sample.Path == "" && sample.Bytes == nil {
			return VideoSample{}, errs.NewStackError(fmt.Errorf(
				"%w| video cell must carry a path or encoded bytes", ErrTypeMismatch,
			))
		}
		return sample, nil
	case []byte:
		return VideoSample{Bytes: typed}, nil
	case string:
		return VideoSample{Path: typed}, nil
	default:
		return VideoSample{}, errs.NewStackError(fmt.Errorf(
			"%w| video cell must be an encoded video value, got %T", ErrTypeMismatch, value,
		))
	}
}

func videoFileExtension(sample VideoSample) (string, error) {
	if sample.Path == "" {
		return "", errs.NewStackError(fmt.Errorf("%w| video cell has no path", ErrMissingExtension))
	}
	extension := filepath.Ext(strings.SplitN(sample.Path, "::", 2)[0])
	if extension == "" {
		return "", errs.NewStackError(fmt.Errorf("%w| path: %s", ErrMissingExtension, sample.Path))
	}
	return extension, nil
}
