package storage

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/alekLukanen/errs"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const (
	AssetStoreAuthTypeStatic = "static"
)

// AssetLocation names the dataset slice an asset belongs to. It is
// part of the object key so assets from different revisions never
// collide.
type AssetLocation struct {
	Dataset  string
	Revision string
	Config   string
	Split    string
}

// Asset is the reference returned for a persisted media object. The
// transformed row carries it in place of the original cell bytes.
type Asset struct {
	Src string
}

type IAssetStore interface {
	Put(ctx context.Context, location AssetLocation, rowIdx int64, column, filename string, data []byte) (Asset, error)
	Delete(ctx context.Context, location AssetLocation) error
}

type AssetStoreOptions struct {
	Endpoint     string
	Region       string
	AuthKey      string
	AuthSecret   string
	UsePathStyle bool
	AuthType     string

	BucketName string
	KeyPrefix  string
	BaseURL    string
}

func NewAssetStoreOptionsFromStaticCredentials(
	endpoint string,
	region string,
	authKey string,
	authSecret string,
	usePathStyle bool,
	bucketName string,
	keyPrefix string,
	baseURL string,
) *AssetStoreOptions {
	return &AssetStoreOptions{
		Endpoint:     endpoint,
		Region:       region,
		AuthKey:      authKey,
		AuthSecret:   authSecret,
		UsePathStyle: usePathStyle,
		AuthType:     AssetStoreAuthTypeStatic,
		BucketName:   bucketName,
		KeyPrefix:    keyPrefix,
		BaseURL:      baseURL,
	}
}

type AssetStore struct {
	logger *slog.Logger

	client  *s3.Client
	tracker IUploadTracker

	bucketName string
	keyPrefix  string
	baseURL    string
}

func NewAssetStore(
	ctx context.Context,
	logger *slog.Logger,
	tracker IUploadTracker,
	options AssetStoreOptions,
) (*AssetStore, error) {

	if options.BucketName == "" {
		return nil, errs.NewStackError(ErrBucketNameRequired)
	}

	configFuncs := make([]func(*config.LoadOptions) error, 0)
	configFuncs = append(configFuncs, config.WithRegion(options.Region))

	if options.AuthType == AssetStoreAuthTypeStatic {
		creds := credentials.NewStaticCredentialsProvider(options.AuthKey, options.AuthSecret, "")
		configFuncs = append(configFuncs, config.WithCredentialsProvider(creds))
	}

	s3Config, err := config.LoadDefaultConfig(
		ctx,
		configFuncs...,
	)
	if err != nil {
		return nil, err
	}

	newSession := s3.NewFromConfig(s3Config, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(options.Endpoint)
		o.UsePathStyle = options.UsePathStyle
	})

	return &AssetStore{
		logger:     logger,
		client:     newSession,
		tracker:    tracker,
		bucketName: options.BucketName,
		keyPrefix:  options.KeyPrefix,
		baseURL:    options.BaseURL,
	}, nil
}

// ObjectKey builds the store's own key scheme. The "--" separators keep
// dataset names containing slashes from colliding with the revision and
// config segments.
func (obj *AssetStore) ObjectKey(location AssetLocation, rowIdx int64, column, filename string) string {
	key := fmt.Sprintf(
		"%s/--/%s/--/%s/%s/%d/%s/%s",
		location.Dataset, location.Revision, location.Config, location.Split, rowIdx, column, filename,
	)
	if obj.keyPrefix != "" {
		key = fmt.Sprintf("%s/%s", obj.keyPrefix, key)
	}
	return key
}

func (obj *AssetStore) locationPrefix(location AssetLocation) string {
	prefix := fmt.Sprintf("%s/--/%s/--/%s/%s/", location.Dataset, location.Revision, location.Config, location.Split)
	if obj.keyPrefix != "" {
		prefix = fmt.Sprintf("%s/%s", obj.keyPrefix, prefix)
	}
	return prefix
}

func (obj *AssetStore) src(key string) string {
	return fmt.Sprintf("%s/%s", obj.baseURL, key)
}

// Put persists one encoded media object and returns its reference.
// Repeated puts of the same key with the same content are skipped when
// an upload tracker is configured, which keeps re-runs idempotent and
// cheap.
func (obj *AssetStore) Put(
	ctx context.Context, location AssetLocation, rowIdx int64, column, filename string, data []byte,
) (Asset, error) {
	key := obj.ObjectKey(location, rowIdx, column, filename)

	if obj.tracker != nil {
		seen, err := obj.tracker.Seen(ctx, key, data)
		if err != nil {
			return Asset{}, errs.Wrap(err)
		}
		if seen {
			obj.logger.Debug("skipping upload of unchanged object", slog.String("key", key))
			return Asset{Src: obj.src(key)}, nil
		}
	}

	obj.logger.Info(
		"uploading object", slog.String("bucket", obj.bucketName), slog.String("key", key), slog.Int("numBytes", len(data)),
	)

	uploader := manager.NewUploader(obj.client)
	_, err := uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: &obj.bucketName,
		Key:    &key,
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return Asset{}, errs.Wrap(err)
	}

	return Asset{Src: obj.src(key)}, nil
}

// Delete removes every asset stored for the dataset slice.
func (obj *AssetStore) Delete(ctx context.Context, location AssetLocation) error {
	prefix := obj.locationPrefix(location)
	obj.logger.Info("deleting objects", slog.String("bucket", obj.bucketName), slog.String("prefix", prefix))

	maxKeys := int32(10_000)
	listObjectsOutput, err := obj.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket:  &obj.bucketName,
		Prefix:  aws.String(prefix),
		MaxKeys: &maxKeys,
	})
	if err != nil {
		return errs.Wrap(err)
	}

	for _, object := range listObjectsOutput.Contents {
		_, err := obj.client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: &obj.bucketName,
			Key:    object.Key,
		})
		if err != nil {
			return errs.Wrap(err)
		}
	}
	return nil
}
