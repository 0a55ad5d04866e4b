package feed

import (
	"context"
	"encoding/xml"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type object struct {
	prompt   string
	modified time.Time
}

type fakeS3 struct {
	objects map[string]object
	keys    []string
	headErr error
}

func (f *fakeS3) ListObjectsV2(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	out := &s3.ListObjectsV2Output{}
	for _, k := range f.keys {
		out.Contents = append(out.Contents, s3types.Object{Key: aws.String(k)})
	}
	return out, nil
}

func (f *fakeS3) HeadObject(_ context.Context, in *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	if f.headErr != nil {
		return nil, f.headErr
	}
	obj := f.objects[aws.ToString(in.Key)]
	meta := map[string]string{}
	if obj.prompt != "" {
		meta["prompt"] = obj.prompt
	}
	return &s3.HeadObjectOutput{
		Metadata:     meta,
		ContentType:  aws.String("image/png"),
		LastModified: aws.Time(obj.modified),
	}, nil
}

type rss struct {
	Channel struct {
		Title string `xml:"title"`
		Items []struct {
			Title string `xml:"title"`
			Link  string `xml:"link"`
		} `xml:"item"`
	} `xml:"channel"`
}

func TestGenerate(t *testing.T) {
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	client := &fakeS3{
		keys: []string{"img/old.png", "img/new.jpg", "img/new.html", "img/feed.xml"},
		objects: map[string]object{
			"img/old.png": {prompt: "an old cat", modified: now.Add(-time.Hour)},
			"img/new.jpg": {modified: now},
		},
	}
	g := &Generator{client: client, bucket: "images", prefix: "img/", siteURL: "https://images.example.com/"}

	out, err := g.Generate(context.Background())
	require.NoError(t, err)

	var doc rss
	require.NoError(t, xml.Unmarshal(out, &doc))
	assert.Equal(t, "imagine", doc.Channel.Title)
	require.Len(t, doc.Channel.Items, 2)
	assert.Equal(t, "new.jpg", doc.Channel.Items[0].Title, "falls back to the file name")
	assert.Equal(t, "https://images.example.com/img/new.jpg", doc.Channel.Items[0].Link)
	assert.Equal(t, "an old cat", doc.Channel.Items[1].Title)
}

func TestGenerateHeadError(t *testing.T) {
	client := &fakeS3{keys: []string{"a.png"}, headErr: errors.New("denied")}
	g := &Generator{client: client, bucket: "images"}

	_, err := g.Generate(context.Background())
	assert.ErrorContains(t, err, "denied")
}

func TestIsImage(t *testing.T) {
	assert.True(t, isImage("x/a.PNG"))
	assert.True(t, isImage("a.webp"))
	assert.False(t, isImage("a.html"))
	assert.False(t, isImage(Name))
}
