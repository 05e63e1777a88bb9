package storage

import "errors"

var (
	ErrBucketNameRequired = errors.New("bucket name is required")
)
