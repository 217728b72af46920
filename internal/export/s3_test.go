package export

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	inputs []*s3.PutObjectInput
	err    error
}

func (f *fakeS3) PutObject(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.inputs = append(f.inputs, params)
	if f.err != nil {
		return nil, f.err
	}
	return &s3.PutObjectOutput{}, nil
}

func TestUploadPayoutCSV(t *testing.T) {
	fake := &fakeS3{}
	e := &S3Exporter{
		client: fake,
		bucket: "lumina-exports",
		prefix: "partnerdesk",
		now:    func() time.Time { return time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC) },
	}

	key, err := e.UploadPayoutCSV(context.Background(), "batch-1", []byte("a,b\n1,2\n"))
	require.NoError(t, err)
	assert.Equal(t, "partnerdesk/payouts/2026-08-31/batch-batch-1.csv", key)

	require.Len(t, fake.inputs, 1)
	in := fake.inputs[0]
	assert.Equal(t, "lumina-exports", *in.Bucket)
	assert.Equal(t, key, *in.Key)
	assert.Equal(t, "text/csv", *in.ContentType)
	body, _ := io.ReadAll(in.Body)
	assert.Equal(t, "a,b\n1,2\n", string(body))
}
