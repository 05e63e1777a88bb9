package assets

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"os"

	_ "image/gif"

	"github.com/alekLukanen/errs"

	"github.com/rowvault/rowvault/features"
	"github.com/rowvault/rowvault/storage"
)

// ImageFormat is one persistable output format. Encode may fail for
// format-specific reasons, in which case the transformer moves on to
// the next configured format.
type ImageFormat interface {
	Extension() string
	Encode(w *bytes.Buffer, img image.Image) error
}

type JPEGFormat struct{}

func (JPEGFormat) Extension() string {
	return ".jpg"
}

func (JPEGFormat) Encode(w *bytes.Buffer, img image.Image) error {
	// JPEG has no alpha channel
	if opaquer, ok := img.(interface{ Opaque() bool }); ok && !opaquer.Opaque() {
		return fmt.Errorf("cannot encode image with transparency as JPEG")
	}
	return jpeg.Encode(w, img, nil)
}

type PNGFormat struct{}

func (PNGFormat) Extension() string {
	return ".png"
}

func (PNGFormat) Encode(w *bytes.Buffer, img image.Image) error {
	return png.Encode(w, img)
}

var DefaultImageFormats = []ImageFormat{JPEGFormat{}, PNGFormat{}}

func (obj *Transformer) encodeImage(
	ctx context.Context, rowIdx int64, value any, column string, path features.Path,
) (*storage.Asset, error) {
	if value == nil {
		return nil, nil
	}

	img, err := decodeImageCell(value)
	if err != nil {
		return nil, err
	}

	for _, format := range obj.imageFormats {
		var buf bytes.Buffer
		if err := format.Encode(&buf, img); err != nil {
			// wrong format for this image, try the next one
			continue
		}
		filename := features.AppendHashSuffix("image", path) + format.Extension()
		asset, err := obj.store.Put(ctx, obj.location, rowIdx, column, filename, buf.Bytes())
		if err != nil {
			return nil, errs.Wrap(err)
		}
		return &asset, nil
	}
	return nil, errs.NewStackError(ErrEncodingExhausted)
}

func decodeImageCell(value any) (image.Image, error) {
	switch typed := value.(type) {
	case image.Image:
		return typed, nil
	case []byte:
		img, _, err := image.Decode(bytes.NewReader(typed))
		if err != nil {
			return nil, errs.Wrap(err)
		}
		return img, nil
	case map[string]any:
		if data, ok := typed["bytes"].([]byte); ok && len(data) > 0 {
			img, _, err := image.Decode(bytes.NewReader(data))
			if err != nil {
				return nil, errs.Wrap(err)
			}
			return img, nil
		}
		if filePath, ok := typed["path"].(string); ok && fileExists(filePath) {
			data, err := os.ReadFile(filePath)
			if err != nil {
				return nil, errs.Wrap(err)
			}
			img, _, err := image.Decode(bytes.NewReader(data))
			if err != nil {
				return nil, errs.Wrap(err)
			}
			return img, nil
		}
	}
	return nil, errs.NewStackError(fmt.Errorf(
		"%w| image cell must be a decoded image or an encoded image value, got %T", ErrTypeMismatch, value,
	))
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
