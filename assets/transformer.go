package assets

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/alekLukanen/errs"

	"github.com/rowvault/rowvault/features"
	"github.com/rowvault/rowvault/storage"
)

type TransformerOptions struct {
	// Formats attempted in order when persisting an image cell. Defaults
	// to JPEG then PNG.
	ImageFormats []ImageFormat
}

/*
Transformer materializes the media cells of one dataset slice. Given a
feature type and a raw cell value it either persists the cell through
the asset store and returns the asset reference, recurses into
container cells, or passes scalar cells through untouched. The
structural path accumulated during recursion feeds the deterministic
asset file names.
*/
type Transformer struct {
	logger *slog.Logger

	store    storage.IAssetStore
	location storage.AssetLocation

	imageFormats []ImageFormat
}

func NewTransformer(
	logger *slog.Logger,
	store storage.IAssetStore,
	location storage.AssetLocation,
	options TransformerOptions,
) *Transformer {
	imageFormats := options.ImageFormats
	if len(imageFormats) == 0 {
		imageFormats = DefaultImageFormats
	}
	return &Transformer{
		logger:       logger,
		store:        store,
		location:     location,
		imageFormats: imageFormats,
	}
}

// GetCellValue transforms one cell according to its feature type. A nil
// cell is always returned as nil, whatever the type says.
func (obj *Transformer) GetCellValue(
	ctx context.Context,
	rowIdx int64,
	cell any,
	column string,
	featureType features.FeatureType,
	path features.Path,
) (any, error) {
	if cell == nil {
		return nil, nil
	}

	switch typed := featureType.(type) {
	case features.Image:
		return obj.encodeImage(ctx, rowIdx, cell, column, path)
	case features.Audio:
		return obj.encodeAudio(ctx, rowIdx, cell, column, path)
	case features.Video:
		return obj.encodeVideo(ctx, rowIdx, cell, column, path)
	case features.Document:
		return obj.encodeDocument(ctx, rowIdx, cell, column, path)
	case features.List:
		elements, ok := cell.([]any)
		if !ok {
			return nil, errs.NewStackError(fmt.Errorf("%w| list cell must be a sequence, got %T", ErrTypeMismatch, cell))
		}
		if typed.Length >= 0 && len(elements) != typed.Length {
			return nil, errs.NewStackError(fmt.Errorf(
				"%w| expected %d elements, got %d", ErrArityMismatch, typed.Length, len(elements),
			))
		}
		return obj.transformSequence(ctx, rowIdx, elements, column, typed.Element, path)
	case features.LargeList:
		elements, ok := cell.([]any)
		if !ok {
			return nil, errs.NewStackError(fmt.Errorf("%w| list cell must be a sequence, got %T", ErrTypeMismatch, cell))
		}
		return obj.transformSequence(ctx, rowIdx, elements, column, typed.Element, path)
	case features.Struct:
		mapping, ok := cell.(map[string]any)
		if !ok {
			return nil, errs.NewStackError(fmt.Errorf("%w| struct cell must be a mapping, got %T", ErrTypeMismatch, cell))
		}
		transformed := make(map[string]any, len(mapping))
		for key, subCell := range mapping {
			fieldType, found := typed.Field(key)
			if !found {
				return nil, errs.NewStackError(fmt.Errorf("%w| struct cell key %q not in feature type", ErrTypeMismatch, key))
			}
			transformedValue, err := obj.GetCellValue(ctx, rowIdx, subCell, column, fieldType, path.With(key))
			if err != nil {
				return nil, err
			}
			transformed[key] = transformedValue
		}
		return transformed, nil
	case features.Scalar:
		return cell, nil
	default:
		return nil, errs.NewStackError(fmt.Errorf("%w| %T", ErrUnknownFeatureType, featureType))
	}
}

func (obj *Transformer) transformSequence(
	ctx context.Context,
	rowIdx int64,
	elements []any,
	column string,
	elementType features.FeatureType,
	path features.Path,
) ([]any, error) {
	transformed := make([]any, len(elements))
	for idx, subCell := range elements {
		transformedValue, err := obj.GetCellValue(ctx, rowIdx, subCell, column, elementType, path.With(idx))
		if err != nil {
			return nil, err
		}
		transformed[idx] = transformedValue
	}
	return transformed, nil
}
