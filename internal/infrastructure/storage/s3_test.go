package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/shopadmin/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockS3 struct {
	mock.Mock
}

func (m *mockS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	args := m.Called(ctx, in)
	if out := args.Get(0); out != nil {
		return out.(*s3.PutObjectOutput), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockS3) HeadBucket(ctx context.Context, in *s3.HeadBucketInput, _ ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	args := m.Called(ctx, in)
	if out := args.Get(0); out != nil {
		return out.(*s3.HeadBucketOutput), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockS3) CreateBucket(ctx context.Context, in *s3.CreateBucketInput, _ ...func(*s3.Options)) (*s3.CreateBucketOutput, error) {
	args := m.Called(ctx, in)
	if out := args.Get(0); out != nil {
		return out.(*s3.CreateBucketOutput), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestNewS3ImageStorage_RequiresBucket(t *testing.T) {
	_, err := NewS3ImageStorage(context.Background(), config.StorageConfig{}, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bucket is required")
}

func TestPublicBaseURL(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.StorageConfig
		want string
	}{
		{"explicit base", config.StorageConfig{Bucket: "img", PublicBaseURL: "https://cdn.shop.test/"}, "https://cdn.shop.test"},
		{"path style endpoint", config.StorageConfig{Bucket: "img", Endpoint: "http://localhost:9000", UsePathStyle: true}, "http://localhost:9000/img"},
		{"virtual host endpoint", config.StorageConfig{Bucket: "img", Endpoint: "https://s3.example.net"}, "https://img.s3.example.net"},
		{"aws default", config.StorageConfig{Bucket: "img"}, "https://img.s3.eu-west-1.amazonaws.com"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, publicBaseURL(tt.cfg, "eu-west-1"))
		})
	}
}

func TestS3ImageStorage_Upload(t *testing.T) {
	client := new(mockS3)
	store := newS3ImageStorage(client, config.StorageConfig{
		Bucket:        "shop-images",
		Folder:        "product-images",
		PublicBaseURL: "https://cdn.shop.test",
	}, "us-east-1", zap.NewNop())

	var body string
	client.On("PutObject", mock.Anything, mock.MatchedBy(func(in *s3.PutObjectInput) bool {
		if data, _ := io.ReadAll(in.Body); len(data) > 0 {
			body = string(data)
		}
		return *in.Bucket == "shop-images" &&
			strings.HasPrefix(*in.Key, "product-images/") &&
			strings.HasSuffix(*in.Key, ".png") &&
			*in.ContentType == "image/png"
	})).Return(&s3.PutObjectOutput{}, nil)

	url, err := store.Upload(context.Background(), "shirt.PNG", "image/png", strings.NewReader("png-bytes"))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(url, "https://cdn.shop.test/product-images/"))
	assert.Equal(t, "png-bytes", body)
	client.AssertExpectations(t)
}

func TestS3ImageStorage_UploadError(t *testing.T) {
	client := new(mockS3)
	store := newS3ImageStorage(client, config.StorageConfig{Bucket: "b"}, "us-east-1", zap.NewNop())
	client.On("PutObject", mock.Anything, mock.Anything).Return(nil, errors.New("access denied"))

	_, err := store.Upload(context.Background(), "a.jpg", "image/jpeg", strings.NewReader("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access denied")
}

func TestS3ImageStorage_EnsureBucket(t *testing.T) {
	t.Run("existing bucket", func(t *testing.T) {
		client := new(mockS3)
		store := newS3ImageStorage(client, config.StorageConfig{Bucket: "b"}, "us-east-1", zap.NewNop())
		client.On("HeadBucket", mock.Anything, mock.Anything).Return(&s3.HeadBucketOutput{}, nil)

		require.NoError(t, store.EnsureBucket(context.Background()))
		client.AssertNotCalled(t, "CreateBucket", mock.Anything, mock.Anything)
	})

	t.Run("missing bucket is created", func(t *testing.T) {
		client := new(mockS3)
		store := newS3ImageStorage(client, config.StorageConfig{Bucket: "b"}, "us-east-1", zap.NewNop())
		client.On("HeadBucket", mock.Anything, mock.Anything).Return(nil, &types.NotFound{})
		client.On("CreateBucket", mock.Anything, mock.Anything).Return(&s3.CreateBucketOutput{}, nil)

		require.NoError(t, store.EnsureBucket(context.Background()))
		client.AssertExpectations(t)
	})

	t.Run("create race is tolerated", func(t *testing.T) {
		client := new(mockS3)
		store := newS3ImageStorage(client, config.StorageConfig{Bucket: "b"}, "us-east-1", zap.NewNop())
		client.On("HeadBucket", mock.Anything, mock.Anything).Return(nil, &types.NoSuchBucket{})
		client.On("CreateBucket", mock.Anything, mock.Anything).Return(nil, &types.BucketAlreadyOwnedByYou{})

		require.NoError(t, store.EnsureBucket(context.Background()))
	})

	t.Run("other errors surface", func(t *testing.T) {
		client := new(mockS3)
		store := newS3ImageStorage(client, config.StorageConfig{Bucket: "b"}, "us-east-1", zap.NewNop())
		client.On("HeadBucket", mock.Anything, mock.Anything).Return(nil, errors.New("forbidden"))

		err := store.EnsureBucket(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "forbidden")
	})
}
