package rows

import (
	"context"
	"log/slog"

	"github.com/alekLukanen/errs"
	"golang.org/x/sync/errgroup"

	"github.com/rowvault/rowvault/assets"
	"github.com/rowvault/rowvault/features"
)

// Row is one dataset row: column name to raw cell value. Rows are
// treated as immutable inputs; transformation builds new rows.
type Row map[string]any

const defaultMaxWorkers = 8

type TransformerOptions struct {
	// MaxWorkers bounds the worker pool used for media-bearing schemas.
	MaxWorkers int
}

/*
Transformer maps batches of rows through the cell transformer. Batches
over a schema that contains images, audio or documents run on a bounded
worker pool, since encoding and uploading those cells is codec and I/O
bound. Purely structural schemas run sequentially. Results always come
back in input order, whatever the strategy.
*/
type Transformer struct {
	logger *slog.Logger

	cells      *assets.Transformer
	maxWorkers int
}

func NewTransformer(
	logger *slog.Logger,
	cells *assets.Transformer,
	options TransformerOptions,
) *Transformer {
	maxWorkers := options.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = defaultMaxWorkers
	}
	return &Transformer{
		logger:     logger,
		cells:      cells,
		maxWorkers: maxWorkers,
	}
}

// TransformRow transforms every schema column of one row. Columns
// missing from the row transform as nil cells. When rowIdxColumn is set
// and present in the row, its value replaces the positional row index
// in asset names, and the column is carried through to the output even
// if it is not a schema column.
func (obj *Transformer) TransformRow(
	ctx context.Context,
	row Row,
	feats features.Features,
	rowIdx int64,
	rowIdxColumn string,
) (Row, error) {
	effectiveRowIdx := rowIdx
	if rowIdxColumn != "" {
		if value, ok := row[rowIdxColumn]; ok {
			if idx, ok := asRowIdx(value); ok {
				effectiveRowIdx = idx
			}
		}
	}

	transformed := make(Row, len(feats))
	for _, column := range feats {
		cell := row[column.Name]
		transformedCell, err := obj.cells.GetCellValue(ctx, effectiveRowIdx, cell, column.Name, column.Type, nil)
		if err != nil {
			return nil, errs.Wrap(err)
		}
		transformed[column.Name] = transformedCell
	}

	if rowIdxColumn != "" {
		if _, ok := transformed[rowIdxColumn]; !ok {
			if value, ok := row[rowIdxColumn]; ok {
				transformed[rowIdxColumn] = value
			}
		}
	}
	return transformed, nil
}

// TransformRows transforms a batch, one output row per input row, in
// input order. Any cell failure cancels the batch and is returned; no
// partial results are produced.
func (obj *Transformer) TransformRows(
	ctx context.Context,
	rws []Row,
	feats features.Features,
	offset int64,
	rowIdxColumn string,
) ([]Row, error) {
	useWorkerPool := requiresWorkerPool(feats)
	obj.logger.Debug(
		"transforming rows",
		slog.Int("numRows", len(rws)),
		slog.Bool("workerPool", useWorkerPool),
	)

	transformed := make([]Row, len(rws))

	if useWorkerPool {
		group, groupCtx := errgroup.WithContext(ctx)
		group.SetLimit(obj.maxWorkers)
		for idx, row := range rws {
			group.Go(func() error {
				transformedRow, err := obj.TransformRow(groupCtx, row, feats, offset+int64(idx), rowIdxColumn)
				if err != nil {
					return err
				}
				transformed[idx] = transformedRow
				return nil
			})
		}
		if err := group.Wait(); err != nil {
			return nil, errs.Wrap(err)
		}
		return transformed, nil
	}

	for idx, row := range rws {
		if err := ctx.Err(); err != nil {
			return nil, errs.Wrap(err)
		}
		transformedRow, err := obj.TransformRow(ctx, row, feats, offset+int64(idx), rowIdxColumn)
		if err != nil {
			return nil, errs.Wrap(err)
		}
		transformed[idx] = transformedRow
	}
	return transformed, nil
}

// requiresWorkerPool decides the batch execution strategy from the
// schema alone. Video is excluded: its encoder does no codec work, it
// only renames bytes.
func requiresWorkerPool(feats features.Features) bool {
	required := false
	for _, column := range feats {
		features.Visit(column.Type, func(node features.FeatureType) {
			switch node.(type) {
			case features.Image, features.Audio, features.Document:
				required = true
			}
		})
	}
	return required
}

func asRowIdx(value any) (int64, bool) {
	switch typed := value.(type) {
	case int:
		return int64(typed), true
	case int32:
		return int64(typed), true
	case int64:
		return typed, true
	case uint32:
		return int64(typed), true
	case uint64:
		return int64(typed), true
	case float64:
		return int64(typed), true
	default:
		return 0, false
	}
}
