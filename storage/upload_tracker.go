package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"

	goredislib "github.com/redis/go-redis/v9"
)

type IUploadTracker interface {
	Seen(ctx context.Context, key string, data []byte) (bool, error)
}

type UploadTrackerOptions struct {
	Address   string
	Password  string
	KeyPrefix string
}

/*
UploadTracker remembers the content checksum of every uploaded object
key so that a re-run over the same rows can skip uploads whose content
has not changed. The checksum is stored under the object key, so a key
re-put with different content is uploaded again and the stored checksum
replaced.
*/
type UploadTracker struct {
	logger *slog.Logger
	client *goredislib.Client

	keyPrefix string
}

func NewUploadTracker(
	ctx context.Context,
	logger *slog.Logger,
	options UploadTrackerOptions,
) (*UploadTracker, error) {
	client := goredislib.NewClient(&goredislib.Options{
		Addr:     options.Address,
		Password: options.Password, // no password set
		DB:       0,                // use default DB
	})

	return &UploadTracker{
		logger:    logger,
		client:    client,
		keyPrefix: options.KeyPrefix,
	}, nil
}

func (obj *UploadTracker) Key(key string) string {
	return fmt.Sprintf("%s-asset-%s", obj.keyPrefix, key)
}

func (obj *UploadTracker) Seen(ctx context.Context, key string, data []byte) (bool, error) {
	checksum := sha256.Sum256(data)
	digest := hex.EncodeToString(checksum[:])
	trackerKey := obj.Key(key)

	set, err := obj.client.SetNX(ctx, trackerKey, digest, 0).Result()
	if err != nil {
		return false, err
	}
	if set {
		// first time this key is uploaded
		return false, nil
	}

	existing, err := obj.client.Get(ctx, trackerKey).Result()
	if err != nil {
		return false, err
	}
	if existing == digest {
		return true, nil
	}

	err = obj.client.Set(ctx, trackerKey, digest, 0).Err()
	if err != nil {
		return false, err
	}
	return false, nil
}
