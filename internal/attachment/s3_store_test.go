package attachment

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockS3Client struct {
	mock.Mock
}

func (m *mockS3Client) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	args := m.Called(ctx, params)
	if out, ok := args.Get(0).(*s3.PutObjectOutput); ok {
		return out, args.Error(1)
	}
	return nil, args.Error(1)
}

// mockStore is a mock implementation of the Store interface for testing.
type mockStore struct {
	putFunc func(ctx context.Context, obj Object) (string, error)
}

func (m *mockStore) Put(ctx context.Context, obj Object) (string, error) {
	if m.putFunc != nil {
		return m.putFunc(ctx, obj)
	}
	return "", errors.New("not implemented")
}

func TestS3Store_Put(t *testing.T) {
	client := new(mockS3Client)
	store := newS3Store(client, "dokumen", "pln/", zerolog.Nop())

	client.On("PutObject", mock.Anything, mock.MatchedBy(func(in *s3.PutObjectInput) bool {
		body, _ := io.ReadAll(in.Body)
		return *in.Bucket == "dokumen" &&
			*in.Key == "pln/surat-jalan/ORD-1/scan.pdf" &&
			*in.ContentType == "application/pdf" &&
			*in.ContentLength == 3 &&
			string(body) == "pdf"
	})).Return(&s3.PutObjectOutput{}, nil)

	ref, err := store.Put(context.Background(), Object{
		Key:         "surat-jalan/ORD-1/scan.pdf",
		ContentType: "application/pdf",
		Body:        []byte("pdf"),
	})

	require.NoError(t, err)
	assert.Equal(t, "s3://dokumen/pln/surat-jalan/ORD-1/scan.pdf", ref)
	client.AssertExpectations(t)
}

func TestS3Store_Put_Error(t *testing.T) {
	client := new(mockS3Client)
	store := newS3Store(client, "dokumen", "", zerolog.Nop())

	client.On("PutObject", mock.Anything, mock.Anything).Return(nil, errors.New("access denied"))

	_, err := store.Put(context.Background(), Object{Key: "a.pdf"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "access denied")
}

func TestFallbackStore_S3Success(t *testing.T) {
	remote := &mockStore{putFunc: func(ctx context.Context, obj Object) (string, error) {
		return "s3://bucket/" + obj.Key, nil
	}}
	local := &mockStore{putFunc: func(ctx context.Context, obj Object) (string, error) {
		t.Error("file store should not be called when S3 succeeds")
		return "", errors.New("should not be called")
	}}

	ref, err := NewFallbackStore(remote, local, true, zerolog.Nop()).Put(context.Background(), Object{Key: "a.pdf"})

	require.NoError(t, err)
	assert.Equal(t, "s3://bucket/a.pdf", ref)
}

func TestFallbackStore_S3FailsFallsBackToLocal(t *testing.T) {
	remote := &mockStore{putFunc: func(ctx context.Context, obj Object) (string, error) {
		return "", errors.New("S3 connection failed")
	}}
	local := &mockStore{putFunc: func(ctx context.Context, obj Object) (string, error) {
		return "file:///data/" + obj.Key, nil
	}}

	ref, err := NewFallbackStore(remote, local, true, zerolog.Nop()).Put(context.Background(), Object{Key: "a.pdf"})

	require.NoError(t, err)
	assert.Equal(t, "file:///data/a.pdf", ref)
}

func TestFallbackStore_S3Disabled(t *testing.T) {
	remote := &mockStore{putFunc: func(ctx context.Context, obj Object) (string, error) {
		t.Error("S3 store should not be called when disabled")
		return "", nil
	}}
	local := &mockStore{putFunc: func(ctx context.Context, obj Object) (string, error) {
		return "file:///data/" + obj.Key, nil
	}}

	ref, err := NewFallbackStore(remote, local, false, zerolog.Nop()).Put(context.Background(), Object{Key: "a.pdf"})
	require.NoError(t, err)
	assert.Equal(t, "file:///data/a.pdf", ref)

	ref, err = NewFallbackStore(nil, local, true, zerolog.Nop()).Put(context.Background(), Object{Key: "b.pdf"})
	require.NoError(t, err)
	assert.Equal(t, "file:///data/b.pdf", ref)
}
