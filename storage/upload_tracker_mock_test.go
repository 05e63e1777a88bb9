package storage

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockUploadTracker struct {
	mock.Mock
}

func (obj *MockUploadTracker) Seen(ctx context.Context, key string, data []byte) (bool, error) {
	ret := obj.Called(ctx, key, data)
	return ret.Bool(0), ret.Error(1)
}
