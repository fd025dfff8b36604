package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePutter struct {
	key, bucket, contentType, body string
	err                            error
}

func (f *fakePutter) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.bucket = aws.ToString(in.Bucket)
	f.key = aws.ToString(in.Key)
	f.contentType = aws.ToString(in.ContentType)
	b, _ := io.ReadAll(in.Body)
	f.body = string(b)
	return &s3.PutObjectOutput{}, nil
}

func TestS3Store_Upload(t *testing.T) {
	local := filepath.Join(t.TempDir(), "acme_risk_analysis_t.json")
	require.NoError(t, os.WriteFile(local, []byte(`{"a":1}`), 0o644))

	fake := &fakePutter{}
	s := &S3Store{api: fake, bucket: "risk", prefix: "analyses"}

	url, err := s.Upload(context.Background(), local, "org-1/acme_risk_analysis_t.json")

	require.NoError(t, err)
	assert.Equal(t, "s3://risk/analyses/org-1/acme_risk_analysis_t.json", url)
	assert.Equal(t, "risk", fake.bucket)
	assert.Equal(t, "analyses/org-1/acme_risk_analysis_t.json", fake.key)
	assert.Equal(t, "application/json", fake.contentType)
	assert.Equal(t, `{"a":1}`, fake.body)
}

func TestS3Store_UploadErrors(t *testing.T) {
	s := &S3Store{api: &fakePutter{}, bucket: "risk"}
	_, err := s.Upload(context.Background(), filepath.Join(t.TempDir(), "missing.json"), "k")
	assert.Error(t, err)

	local := filepath.Join(t.TempDir(), "a.json")
	require.NoError(t, os.WriteFile(local, nil, 0o644))
	s = &S3Store{api: &fakePutter{err: errors.New("access denied")}, bucket: "risk"}
	_, err = s.Upload(context.Background(), local, "k")
	assert.ErrorContains(t, err, "access denied")
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "application/json", contentType("a.json"))
	assert.Equal(t, "application/octet-stream", contentType("a.bin"))
}
