package mocks

import (
	"context"
	"io"

	"portal/internal/storage"

	"github.com/stretchr/testify/mock"
)

type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) Put(ctx context.Context, r io.Reader, opt storage.PutObjectOptions) (storage.ObjectInfo, error) {
	args := m.Called(ctx, r, opt)
	if f, ok := args.Get(0).(func(context.Context, io.Reader, storage.PutObjectOptions) storage.ObjectInfo); ok {
		return f(ctx, r, opt), args.Error(1)
	}
	return args.Get(0).(storage.ObjectInfo), args.Error(1)
}

func (m *MockStorage) Resolve(ctx context.Context, key string) (storage.ResolvedURL, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(storage.ResolvedURL), args.Error(1)
}

func (m *MockStorage) Remove(ctx context.Context, key string) (storage.Removal, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(storage.Removal), args.Error(1)
}

func (m *MockStorage) Driver() string {
	args := m.Called()
	return args.String(0)
}
