package assets

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/alekLukanen/errs"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/rowvault/rowvault/features"
	"github.com/rowvault/rowvault/storage"
)

func (obj *Transformer) encodeDocument(
	ctx context.Context, rowIdx int64, value any, column string, path features.Path,
) (*storage.Asset, error) {
	if value == nil {
		return nil, nil
	}

	data, err := documentFileBytes(value)
	if err != nil {
		return nil, err
	}

	filename := features.AppendHashSuffix("document", path) + ".pdf"
	asset, err := obj.store.Put(ctx, obj.location, rowIdx, column, filename, data)
	if err != nil {
		return nil, errs.Wrap(err)
	}
	return &asset, nil
}

// documentFileBytes normalizes a document cell into PDF bytes. Encoded
// cells are parsed before persisting so malformed documents fail here
// instead of serving broken assets; parse errors propagate uncaught.
func documentFileBytes(value any) ([]byte, error) {
	switch typed := value.(type) {
	case *model.Context:
		var buf bytes.Buffer
		if err := api.WriteContext(typed, &buf); err != nil {
			return nil, errs.Wrap(err)
		}
		return buf.Bytes(), nil
	case []byte:
		return validatePDFBytes(typed)
	case map[string]any:
		if data, ok := typed["bytes"].([]byte); ok && len(data) > 0 {
			return validatePDFBytes(data)
		}
		if filePath, ok := typed["path"].(string); ok && fileExists(filePath) {
			data, err := os.ReadFile(filePath)
			if err != nil {
				return nil, errs.Wrap(err)
			}
			return validatePDFBytes(data)
		}
	}
	return nil, errs.NewStackError(fmt.Errorf(
		"%w| document cell must be a parsed PDF or an encoded PDF value, got %T", ErrTypeMismatch, value,
	))
}

func validatePDFBytes(data []byte) ([]byte, error) {
	_, err := api.ReadContext(bytes.NewReader(data), model.NewDefaultConfiguration())
	if err != nil {
		return nil, errs.Wrap(err)
	}
	return data, nil
}
