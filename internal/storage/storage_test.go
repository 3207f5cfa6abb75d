package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/aditya-singh004/Dev-Doc-AI/internal/domain"
)

func TestFileStore_PutGet(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "index.zst")
	store := NewFileStore(path)

	_, err := store.Get(ctx)
	assert.True(t, errors.Is(err, ErrSnapshotNotFound))
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	require.NoError(t, store.Put(ctx, strings.NewReader("first")))
	require.NoError(t, store.Put(ctx, strings.NewReader("second")))

	rc, err := store.Get(ctx)
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
	assert.Equal(t, path, store.Location())
}

type MockObjectAPI struct {
	mock.Mock
}

func (m *MockObjectAPI) PutObject(ctx context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	args := m.Called(ctx, params)
	return &s3.PutObjectOutput{}, args.Error(0)
}

func (m *MockObjectAPI) GetObject(ctx context.Context, params *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*s3.GetObjectOutput), args.Error(1)
}

func (m *MockObjectAPI) HeadObject(ctx context.Context, params *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*s3.HeadObjectOutput), args.Error(1)
}

func (m *MockObjectAPI) HeadBucket(ctx context.Context, params *s3.HeadBucketInput, _ ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	args := m.Called(ctx, params)
	return &s3.HeadBucketOutput{}, args.Error(0)
}

func (m *MockObjectAPI) CreateBucket(ctx context.Context, params *s3.CreateBucketInput, _ ...func(*s3.Options)) (*s3.CreateBucketOutput, error) {
	args := m.Called(ctx, params)
	return &s3.CreateBucketOutput{}, args.Error(0)
}

func TestS3Store_Put(t *testing.T) {
	api := new(MockObjectAPI)
	var uploaded []byte
	api.On("PutObject", mock.Anything, mock.MatchedBy(func(in *s3.PutObjectInput) bool {
		return aws.ToString(in.Bucket) == "bucket" &&
			aws.ToString(in.Key) == "index/snapshot.zst" &&
			aws.ToInt64(in.ContentLength) == 4
	})).Run(func(args mock.Arguments) {
		uploaded, _ = io.ReadAll(args.Get(1).(*s3.PutObjectInput).Body)
	}).Return(nil)

	store := NewS3StoreWithClient(api, "bucket", "index/snapshot.zst")
	require.NoError(t, store.Put(context.Background(), strings.NewReader("data")))
	assert.Equal(t, "data", string(uploaded))
	assert.Equal(t, "s3://bucket/index/snapshot.zst", store.Location())
	api.AssertExpectations(t)
}

func TestS3Store_Get(t *testing.T) {
	api := new(MockObjectAPI)
	api.On("GetObject", mock.Anything, mock.Anything).
		Return(&s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader([]byte("snap")))}, nil).Once()
	api.On("GetObject", mock.Anything, mock.Anything).Return(nil, &types.NoSuchKey{}).Once()

	store := NewS3StoreWithClient(api, "bucket", "key")

	rc, err := store.Get(context.Background())
	require.NoError(t, err)
	data, _ := io.ReadAll(rc)
	assert.Equal(t, "snap", string(data))

	_, err = store.Get(context.Background())
	assert.True(t, errors.Is(err, ErrSnapshotNotFound))
}

func TestS3Store_HeadObject(t *testing.T) {
	api := new(MockObjectAPI)
	api.On("HeadObject", mock.Anything, mock.Anything).
		Return(&s3.HeadObjectOutput{ContentLength: aws.Int64(42), ETag: aws.String(`"abc"`)}, nil).Once()
	api.On("HeadObject", mock.Anything, mock.Anything).Return(nil, &types.NotFound{}).Once()

	store := NewS3StoreWithClient(api, "bucket", "key")

	meta, err := store.HeadObject(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(42), meta.ContentLength)

	_, err = store.HeadObject(context.Background())
	assert.True(t, errors.Is(err, ErrSnapshotNotFound))
}

func TestS3Store_EnsureBucket(t *testing.T) {
	api := new(MockObjectAPI)
	api.On("HeadBucket", mock.Anything, mock.Anything).Return(errors.New("not found"))
	api.On("CreateBucket", mock.Anything, mock.MatchedBy(func(in *s3.CreateBucketInput) bool {
		return aws.ToString(in.Bucket) == "bucket"
	})).Return(nil)

	store := NewS3StoreWithClient(api, "bucket", "key")
	require.NoError(t, store.EnsureBucket(context.Background()))
	api.AssertExpectations(t)
}
