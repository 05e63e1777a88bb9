package assets

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rowvault/rowvault/features"
	"github.com/rowvault/rowvault/storage"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testLocation() storage.AssetLocation {
	return storage.AssetLocation{Dataset: "ds", Revision: "rev", Config: "default", Split: "train"}
}

func newTransparentImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for x := 0; x < 4; x++ {
		for y := 0; y < 4; y++ {
			img.Set(x, y, color.RGBA{R: 200, G: 10, B: 10, A: 128})
		}
	}
	return img
}

func newOpaqueImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for x := 0; x < 4; x++ {
		for y := 0; y < 4; y++ {
			img.Set(x, y, color.RGBA{R: 200, G: 10, B: 10, A: 255})
		}
	}
	return img
}

func pngBytes(t *testing.T, img image.Image) []byte {
	var buf bytes.Buffer
	require.Nil(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestEncodeImage_TransparentImageFallsBackToPNG(t *testing.T) {
	ctx := context.Background()
	store := &fakeAssetStore{}
	transformer := NewTransformer(testLogger(), store, testLocation(), TransformerOptions{})

	value, err := transformer.GetCellValue(ctx, 7, newTransparentImage(), "img", features.Image{}, nil)

	require.Nil(t, err)
	asset, ok := value.(*storage.Asset)
	require.True(t, ok)
	assert.True(t, strings.HasSuffix(asset.Src, ".png"))

	calls := store.calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "image.png", calls[0].filename)
	assert.Equal(t, int64(7), calls[0].rowIdx)
	assert.Equal(t, "img", calls[0].column)
}

func TestEncodeImage_OpaqueImageStoredAsJPEG(t *testing.T) {
	ctx := context.Background()
	store := &fakeAssetStore{}
	transformer := NewTransformer(testLogger(), store, testLocation(), TransformerOptions{})

	value, err := transformer.GetCellValue(ctx, 0, newOpaqueImage(), "img", features.Image{}, nil)

	require.Nil(t, err)
	asset := value.(*storage.Asset)
	assert.True(t, strings.HasSuffix(asset.Src, ".jpg"))
}

func TestEncodeImage_EncodedBytesCell(t *testing.T) {
	ctx := context.Background()
	store := &fakeAssetStore{}
	transformer := NewTransformer(testLogger(), store, testLocation(), TransformerOptions{})

	cell := map[string]any{"bytes": pngBytes(t, newTransparentImage()), "path": nil}
	value, err := transformer.GetCellValue(ctx, 0, cell, "img", features.Image{}, nil)

	require.Nil(t, err)
	asset := value.(*storage.Asset)
	assert.True(t, strings.HasSuffix(asset.Src, ".png"))
}

func TestEncodeImage_PathCell(t *testing.T) {
	ctx := context.Background()
	store := &fakeAssetStore{}
	transformer := NewTransformer(testLogger(), store, testLocation(), TransformerOptions{})

	filePath := t.TempDir() + "/img.png"
	require.Nil(t, os.WriteFile(filePath, pngBytes(t, newOpaqueImage()), 0o644))

	value, err := transformer.GetCellValue(ctx, 0, map[string]any{"path": filePath}, "img", features.Image{}, nil)

	require.Nil(t, err)
	asset := value.(*storage.Asset)
	assert.True(t, strings.HasSuffix(asset.Src, ".jpg"))
}

func TestEncodeImage_TypeMismatch(t *testing.T) {
	ctx := context.Background()
	store := &fakeAssetStore{}
	transformer := NewTransformer(testLogger(), store, testLocation(), TransformerOptions{})

	_, err := transformer.GetCellValue(ctx, 0, 42, "img", features.Image{}, nil)

	require.NotNil(t, err)
	assert.True(t, errors.Is(err, ErrTypeMismatch))
}

func TestEncodeImage_AllFormatsFail(t *testing.T) {
	ctx := context.Background()
	store := &fakeAssetStore{}
	transformer := NewTransformer(testLogger(), store, testLocation(), TransformerOptions{
		ImageFormats: []ImageFormat{JPEGFormat{}},
	})

	_, err := transformer.GetCellValue(ctx, 0, newTransparentImage(), "img", features.Image{}, nil)

	require.NotNil(t, err)
	assert.True(t, errors.Is(err, ErrEncodingExhausted))
	assert.Empty(t, store.calls())
}

func TestEncodeImage_StorageErrorPropagates(t *testing.T) {
	ctx := context.Background()
	storageErr := errors.New("quota exceeded")
	store := &fakeAssetStore{putErr: storageErr}
	transformer := NewTransformer(testLogger(), store, testLocation(), TransformerOptions{})

	_, err := transformer.GetCellValue(ctx, 0, newOpaqueImage(), "img", features.Image{}, nil)

	require.NotNil(t, err)
	assert.True(t, errors.Is(err, storageErr))
}
