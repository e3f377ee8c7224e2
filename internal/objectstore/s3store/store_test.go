package s3store

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adanyl0v/go-todo-attachments/internal/attachments"
)

var _ attachments.ObjectStore = (*Store)(nil)

type fakeClient struct {
	headInputs   []*s3.HeadObjectInput
	deleteInputs []*s3.DeleteObjectInput
	headErr      error
	deleteErr    error
}

func (f *fakeClient) HeadObject(_ context.Context, params *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	f.headInputs = append(f.headInputs, params)
	if f.headErr != nil {
		return nil, f.headErr
	}
	return &s3.HeadObjectOutput{}, nil
}

func (f *fakeClient) DeleteObject(_ context.Context, params *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.deleteInputs = append(f.deleteInputs, params)
	if f.deleteErr != nil {
		return nil, f.deleteErr
	}
	return &s3.DeleteObjectOutput{}, nil
}

type fakePresigner struct {
	inputs  []*s3.PutObjectInput
	expires time.Duration
	err     error
}

func (f *fakePresigner) PresignPutObject(_ context.Context, params *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	f.inputs = append(f.inputs, params)
	if f.err != nil {
		return nil, f.err
	}

	var opts s3.PresignOptions
	for _, fn := range optFns {
		fn(&opts)
	}
	f.expires = opts.Expires

	return &v4.PresignedHTTPRequest{
		URL:    "https://attachments.s3.amazonaws.com/" + aws.ToString(params.Key) + "?X-Amz-Signature=abc",
		Method: http.MethodPut,
	}, nil
}

func TestStore_PresignUpload(t *testing.T) {
	presigner := &fakePresigner{}
	store := NewStore(zerolog.Nop(), &fakeClient{}, presigner, "attachments", "")

	got, err := store.PresignUpload(context.Background(), "t1", 5*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, "https://attachments.s3.amazonaws.com/t1?X-Amz-Signature=abc", got)

	require.Len(t, presigner.inputs, 1)
	assert.Equal(t, "attachments", aws.ToString(presigner.inputs[0].Bucket))
	assert.Equal(t, "t1", aws.ToString(presigner.inputs[0].Key))
	assert.Equal(t, 5*time.Minute, presigner.expires)
}

func TestStore_PresignUploadFailure(t *testing.T) {
	store := NewStore(zerolog.Nop(), &fakeClient{}, &fakePresigner{err: errors.New("no credentials")}, "attachments", "")

	_, err := store.PresignUpload(context.Background(), "t1", time.Minute)
	assert.ErrorIs(t, err, attachments.ErrObjectStoreUnavailable)
}

func TestStore_ObjectURL(t *testing.T) {
	tests := []struct {
		name    string
		baseURL string
		key     string
		want    string
	}{
		{
			name: "default virtual-hosted url",
			key:  "t1",
			want: "https://attachments.s3.amazonaws.com/t1",
		},
		{
			name:    "public base url with trailing slash",
			baseURL: "https://cdn.example.com/files/",
			key:     "t1",
			want:    "https://cdn.example.com/files/t1",
		},
		{
			name: "escapes key",
			key:  "a b",
			want: "https://attachments.s3.amazonaws.com/a%20b",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewStore(zerolog.Nop(), &fakeClient{}, &fakePresigner{}, "attachments", tt.baseURL)
			assert.Equal(t, tt.want, store.ObjectURL(tt.key))
		})
	}
}

func TestStore_Exists(t *testing.T) {
	tests := []struct {
		name    string
		headErr error
		want    bool
		wantErr error
	}{
		{name: "present", want: true},
		{name: "not found", headErr: &types.NotFound{}, want: false},
		{name: "no such key", headErr: &smithy.GenericAPIError{Code: "NoSuchKey"}, want: false},
		{name: "backend failure", headErr: errors.New("dial tcp: timeout"), wantErr: attachments.ErrObjectStoreUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &fakeClient{headErr: tt.headErr}
			store := NewStore(zerolog.Nop(), client, &fakePresigner{}, "attachments", "")

			got, err := store.Exists(context.Background(), "t1")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			require.Len(t, client.headInputs, 1)
			assert.Equal(t, "t1", aws.ToString(client.headInputs[0].Key))
		})
	}
}

func TestStore_Delete(t *testing.T) {
	client := &fakeClient{}
	store := NewStore(zerolog.Nop(), client, &fakePresigner{}, "attachments", "")

	require.NoError(t, store.Delete(context.Background(), "t1"))
	require.Len(t, client.deleteInputs, 1)
	assert.Equal(t, "attachments", aws.ToString(client.deleteInputs[0].Bucket))
	assert.Equal(t, "t1", aws.ToString(client.deleteInputs[0].Key))

	client.deleteErr = &smithy.GenericAPIError{Code: "NoSuchKey"}
	assert.NoError(t, store.Delete(context.Background(), "t1"))

	client.deleteErr = errors.New("access denied")
	assert.ErrorIs(t, store.Delete(context.Background(), "t1"), attachments.ErrObjectStoreUnavailable)
}
