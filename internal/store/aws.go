package store

import (
	"bytes"
	"context"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudfront"
	cftypes "github.com/aws/aws-sdk-go-v2/service/cloudfront/types"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/dmorgan81/imagine/internal/log"
	"github.com/samber/do"
	"github.com/samber/lo"
)

type S3PutClient interface {
	PutObject(context.Context, *s3.PutObjectInput, ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type CloudFrontClient interface {
	CreateInvalidation(context.Context, *cloudfront.CreateInvalidationInput, ...func(*cloudfront.Options)) (*cloudfront.CreateInvalidationOutput, error)
}

type S3Uploader struct {
	Client S3PutClient
	Bucket string
	Prefix string
}

func NewS3Uploader(i *do.Injector) (Uploader, error) {
	return &S3Uploader{
		Client: do.MustInvoke[*s3.Client](i),
		Bucket: do.MustInvokeNamed[string](i, "bucket"),
		Prefix: do.MustInvokeNamed[string](i, "prefix"),
	}, nil
}

// Key joins the configured prefix and name into an object key.
func (u *S3Uploader) Key(name string) string {
	return strings.TrimPrefix(path.Join(u.Prefix, strings.TrimPrefix(name, "/")), "/")
}

func (u *S3Uploader) Upload(ctx context.Context, params UploadParams) (string, error) {
	key := u.Key(params.Name)
	log := log.FromContextOrDiscard(ctx).WithGroup("s3").With(
		"key", key,
		"content-type", params.ContentType,
		"bucket", u.Bucket,
	)
	log.Info("uploading to s3")

	_, err := u.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(u.Bucket),
		Key:          aws.String(key),
		ContentType:  aws.String(params.ContentType),
		Body:         bytes.NewReader(params.Data),
		Metadata:     params.Metadata,
		StorageClass: s3types.StorageClassIntelligentTiering,
	})
	if err != nil {
		return "", err
	}
	return key, nil
}

type CloudFrontInvalidator struct {
	Client       CloudFrontClient
	Distribution string
}

// NewCloudFrontInvalidator falls back to a no-op when no distribution is configured.
func NewCloudFrontInvalidator(i *do.Injector) (Invalidator, error) {
	distribution := do.MustInvokeNamed[string](i, "distribution")
	if distribution == "" {
		return NopInvalidator{}, nil
	}
	return &CloudFrontInvalidator{
		Client:       do.MustInvoke[*cloudfront.Client](i),
		Distribution: distribution,
	}, nil
}

func (i *CloudFrontInvalidator) Invalidate(ctx context.Context, paths []string) error {
	paths = lo.Uniq(lo.Map(paths, func(p string, _ int) string {
		return "/" + strings.TrimPrefix(p, "/")
	}))
	log := log.FromContextOrDiscard(ctx).WithGroup("cloudfront").With("paths", paths, "distribution", i.Distribution)
	log.Info("invalidating paths in cloudfront")

	_, err := i.Client.CreateInvalidation(ctx, &cloudfront.CreateInvalidationInput{
		DistributionId: aws.String(i.Distribution),
		InvalidationBatch: &cftypes.InvalidationBatch{
			CallerReference: aws.String(time.Now().UTC().Format("20060102150405.000000000")),
			Paths: &cftypes.Paths{
				Quantity: aws.Int32(int32(len(paths))),
				Items:    paths,
			},
		},
	})
	return err
}
