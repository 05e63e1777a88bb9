package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/apache/arrow/go/v17/arrow/memory"

	"github.com/rowvault/rowvault/assets"
	"github.com/rowvault/rowvault/features"
	"github.com/rowvault/rowvault/rows"
	"github.com/rowvault/rowvault/source"
	"github.com/rowvault/rowvault/storage"
)

func main() {

	TransformSampleParquetFile()

}

func TransformSampleParquetFile() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger.Info("Running RowVault Scratch")

	ctx := context.Background()

	uploadTracker, err := storage.NewUploadTracker(ctx, logger, storage.UploadTrackerOptions{
		Address:   "localhost:6379",
		Password:  "",
		KeyPrefix: "rowvault",
	})
	if err != nil {
		logger.Error("failed to create the upload tracker", slog.String("error", err.Error()))
		return
	}

	assetStore, err := storage.NewAssetStore(
		ctx,
		logger,
		uploadTracker,
		*storage.NewAssetStoreOptionsFromStaticCredentials(
			"http://localhost:9090",
			"us-west-2",
			"key",
			"secret",
			true,
			"rowvault-assets",
			"assets",
			"http://localhost:9090/rowvault-assets",
		),
	)
	if err != nil {
		logger.Error("failed to create the asset store", slog.String("error", err.Error()))
		return
	}

	location := storage.AssetLocation{
		Dataset:  "sample-dataset",
		Revision: "main",
		Config:   "default",
		Split:    "train",
	}

	mem := memory.NewGoAllocator()
	parquetSource := source.NewParquetSource(logger, mem, source.ParquetSourceOptions{})
	allRows, feats, err := parquetSource.Read(ctx, "sample.parquet")
	if err != nil {
		logger.Error("failed to read the parquet file", slog.String("error", err.Error()))
		return
	}

	supported, unsupported := features.Classify(feats, nil)
	logger.Info(
		"classified columns",
		slog.Any("supported", supported),
		slog.Any("unsupported", unsupported),
	)

	cellTransformer := assets.NewTransformer(logger, assetStore, location, assets.TransformerOptions{})
	rowTransformer := rows.NewTransformer(logger, cellTransformer, rows.TransformerOptions{MaxWorkers: 8})

	transformed, err := rowTransformer.TransformRows(ctx, allRows, feats, 0, "")
	if err != nil {
		logger.Error("failed to transform the rows", slog.String("error", err.Error()))
		return
	}

	logger.Info("transformed rows", slog.Int("numRows", len(transformed)))
}
