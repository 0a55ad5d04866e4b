package feed

import (
	"context"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/dmorgan81/imagine/internal/log"
	"github.com/gorilla/feeds"
	"github.com/samber/do"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
)

const Name = "feed.xml"

var imageExts = []string{".png", ".jpg", ".jpeg", ".gif", ".webp", ".bmp"}

type S3Client interface {
	s3.ListObjectsV2APIClient
	HeadObject(context.Context, *s3.HeadObjectInput, ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
}

// Generator builds an RSS feed of every generated image in the bucket.
type Generator struct {
	client  S3Client
	bucket  string
	prefix  string
	siteURL string
}

func NewS3Generator(i *do.Injector) (*Generator, error) {
	return &Generator{
		client:  do.MustInvoke[*s3.Client](i),
		bucket:  do.MustInvokeNamed[string](i, "bucket"),
		prefix:  do.MustInvokeNamed[string](i, "prefix"),
		siteURL: do.MustInvokeNamed[string](i, "site_url"),
	}, nil
}

func (g *Generator) Generate(ctx context.Context) ([]byte, error) {
	log := log.FromContextOrDiscard(ctx).WithGroup("feed")
	log.Info("generating rss feed", "bucket", g.bucket, "prefix", g.prefix)

	feed := feeds.Feed{
		Title:       "imagine",
		Description: "Images generated from prompts",
		Link:        &feeds.Link{Href: g.siteURL},
		Updated:     time.Now(),
	}

	pager := s3.NewListObjectsV2Paginator(g.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(g.bucket),
		Prefix: lo.Ternary(g.prefix != "", aws.String(g.prefix), nil),
	})

	var mu sync.Mutex
	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(8)
	for pager.HasMorePages() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			_ = group.Wait()
			return nil, err
		}

		objs := lo.Filter(page.Contents, func(o s3types.Object, _ int) bool {
			return isImage(aws.ToString(o.Key))
		})

		for _, obj := range objs {
			key := aws.ToString(obj.Key)
			group.Go(func() error {
				out, err := g.client.HeadObject(gctx, &s3.HeadObjectInput{
					Bucket: aws.String(g.bucket),
					Key:    aws.String(key),
				})
				if err != nil {
					return err
				}

				item := &feeds.Item{
					Title:       lo.ValueOr(out.Metadata, "prompt", path.Base(key)),
					Link:        &feeds.Link{Href: g.link(key)},
					Description: aws.ToString(out.ContentType),
					Id:          key,
					Updated:     aws.ToTime(out.LastModified),
				}
				mu.Lock()
				feed.Add(item)
				mu.Unlock()
				return nil
			})
		}
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	// newest first
	feed.Sort(func(a, b *feeds.Item) bool {
		return a.Updated.After(b.Updated)
	})
	rss, err := feed.ToRss()
	return []byte(rss), err
}

func (g *Generator) link(key string) string {
	if g.siteURL == "" {
		return key
	}
	return strings.TrimSuffix(g.siteURL, "/") + "/" + key
}

func isImage(key string) bool {
	ext := strings.ToLower(path.Ext(key))
	return lo.Contains(imageExts, ext)
}
