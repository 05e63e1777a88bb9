package source

import (
	"context"
	"log/slog"

	"github.com/alekLukanen/errs"
	"github.com/apache/arrow/go/v17/arrow/memory"
	parquetFileUtils "github.com/apache/arrow/go/v17/parquet/file"
	"github.com/apache/arrow/go/v17/parquet/pqarrow"

	"github.com/rowvault/rowvault/features"
	"github.com/rowvault/rowvault/rows"
)

type ParquetSourceOptions struct {
	BatchSize int64
}

/*
ParquetSource reads a parquet file into plain rows plus the features
schema derived from the file's Arrow schema. It is the row-source side
of the transform pipeline: the transformer itself never touches the
dataset format.
*/
type ParquetSource struct {
	logger *slog.Logger

	mem       *memory.GoAllocator
	batchSize int64
}

func NewParquetSource(
	logger *slog.Logger,
	mem *memory.GoAllocator,
	options ParquetSourceOptions,
) *ParquetSource {
	batchSize := options.BatchSize
	if batchSize <= 0 {
		batchSize = 1 << 20 // 1MB
	}
	return &ParquetSource{
		logger:    logger,
		mem:       mem,
		batchSize: batchSize,
	}
}

func (obj *ParquetSource) Read(ctx context.Context, filePath string) ([]rows.Row, features.Features, error) {
	obj.logger.Info("reading parquet file", slog.String("filePath", filePath))

	parquetFileReader, err := parquetFileUtils.OpenParquetFile(filePath, false)
	if err != nil {
		return nil, nil, errs.Wrap(err)
	}
	defer parquetFileReader.Close()

	parquetReadProps := pqarrow.ArrowReadProperties{
		Parallel:  true,
		BatchSize: obj.batchSize,
	}
	arrowFileReader, err := pqarrow.NewFileReader(parquetFileReader, parquetReadProps, obj.mem)
	if err != nil {
		return nil, nil, errs.Wrap(err)
	}

	schema, err := arrowFileReader.Schema()
	if err != nil {
		return nil, nil, errs.Wrap(err)
	}
	feats := features.FromArrowSchema(schema)

	recordReader, err := arrowFileReader.GetRecordReader(ctx, nil, nil)
	if err != nil {
		return nil, nil, errs.Wrap(err)
	}
	defer recordReader.Release()

	allRows := make([]rows.Row, 0)
	for recordReader.Next() {
		allRows = append(allRows, rows.FromRecord(recordReader.Record())...)
	}
	if err := recordReader.Err(); err != nil {
		return nil, nil, errs.Wrap(err)
	}

	return allRows, feats, nil
}
