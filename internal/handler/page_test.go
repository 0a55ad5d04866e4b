package handler

import (
	"context"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/dmorgan81/imagine/internal/page"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePageS3 struct {
	keys     []string
	metadata map[string]string
	headKey  string
	written  *s3.WriteGetObjectResponseInput
	body     []byte
}

func (f *fakePageS3) ListObjectsV2(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	out := &s3.ListObjectsV2Output{}
	for _, k := range f.keys {
		out.Contents = append(out.Contents, s3types.Object{Key: aws.String(k)})
	}
	return out, nil
}

func (f *fakePageS3) HeadObject(_ context.Context, in *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	f.headKey = aws.ToString(in.Key)
	return &s3.HeadObjectOutput{Metadata: f.metadata, ETag: aws.String(`"etag"`)}, nil
}

func (f *fakePageS3) WriteGetObjectResponse(_ context.Context, in *s3.WriteGetObjectResponseInput, _ ...func(*s3.Options)) (*s3.WriteGetObjectResponseOutput, error) {
	f.written = in
	body, err := io.ReadAll(in.Body)
	f.body = body
	return &s3.WriteGetObjectResponseOutput{}, err
}

func pageRequest(url string) PageRequest {
	return PageRequest{
		Id: "req-1",
		GetContext: objectContext{
			Url:   url,
			Route: "route",
			Token: "token",
		},
	}
}

func TestPageHandler(t *testing.T) {
	client := &fakePageS3{
		keys:     []string{"img/20261018T093000.html", "img/20261018T093000.jpg"},
		metadata: map[string]string{"prompt": "a cute astronaut cat on the moon", "created": "2026-10-18T09:30:00Z"},
	}
	h := &PageHandler{client: client, bucket: "images", templator: &page.Templator{}}

	err := h.Handle(context.Background(), pageRequest("https://bucket-123.s3-object-lambda.us-east-1.amazonaws.com/img/20261018T093000.html?X-Amz-Signature=abc"))
	require.NoError(t, err)

	assert.Equal(t, "img/20261018T093000.jpg", client.headKey)
	require.NotNil(t, client.written)
	assert.Equal(t, "route", aws.ToString(client.written.RequestRoute))
	assert.Equal(t, "token", aws.ToString(client.written.RequestToken))
	assert.Equal(t, "text/html", aws.ToString(client.written.ContentType))
	assert.Contains(t, string(client.body), `src="20261018T093000.jpg"`)
	assert.Contains(t, string(client.body), "a cute astronaut cat on the moon")
}

func TestPageHandlerErrors(t *testing.T) {
	t.Run("unexpected url", func(t *testing.T) {
		h := &PageHandler{client: &fakePageS3{}, templator: &page.Templator{}}
		assert.Error(t, h.Handle(context.Background(), pageRequest("https://example.com/x.png")))
	})

	t.Run("no image", func(t *testing.T) {
		client := &fakePageS3{keys: []string{"a.html"}}
		h := &PageHandler{client: client, templator: &page.Templator{}}
		err := h.Handle(context.Background(), pageRequest("https://b.s3.amazonaws.com/a.html"))
		assert.ErrorContains(t, err, "no image stored")
		assert.Nil(t, client.written)
	})
}
