package handler

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"regexp"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/dmorgan81/imagine/internal/log"
	"github.com/dmorgan81/imagine/internal/page"
	"github.com/samber/do"
	"github.com/samber/lo"
)

var urlRegexp = regexp.MustCompile(`^https://.+\.amazonaws\.com/(?P<key>.+?)\.html(?:\?.*)?$`)

var imageExts = []string{".png", ".jpg", ".jpeg", ".gif", ".webp", ".bmp"}

type objectContext struct {
	Url   string `json:"inputS3Url"`
	Route string `json:"outputRoute"`
	Token string `json:"outputToken"`
}

// PageRequest is the S3 Object Lambda event for a GET of <name>.html.
type PageRequest struct {
	Id         string        `json:"xAmzRequestId"`
	GetContext objectContext `json:"getObjectContext"`
}

type PageS3Client interface {
	ListObjectsV2(context.Context, *s3.ListObjectsV2Input, ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	HeadObject(context.Context, *s3.HeadObjectInput, ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	WriteGetObjectResponse(context.Context, *s3.WriteGetObjectResponseInput, ...func(*s3.Options)) (*s3.WriteGetObjectResponseOutput, error)
}

// PageHandler renders the HTML page for a stored image on request, so pages
// never need to be written ahead of time.
type PageHandler struct {
	client    PageS3Client
	bucket    string
	templator *page.Templator
}

func NewPageHandler(i *do.Injector) (*PageHandler, error) {
	return &PageHandler{
		client:    do.MustInvoke[*s3.Client](i),
		bucket:    do.MustInvokeNamed[string](i, "bucket"),
		templator: do.MustInvoke[*page.Templator](i),
	}, nil
}

func (h *PageHandler) Handle(ctx context.Context, request PageRequest) error {
	log := log.FromContextOrDiscard(ctx).WithGroup("page").With("request", request.Id)
	matches := urlRegexp.FindStringSubmatch(request.GetContext.Url)
	if matches == nil {
		return fmt.Errorf("unexpected object url %q", request.GetContext.Url)
	}
	base := matches[urlRegexp.SubexpIndex("key")]
	log.Info("handling page request", "key", base)

	key, err := h.findImage(ctx, base)
	if err != nil {
		return err
	}

	out, err := h.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(h.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return err
	}

	html, err := h.templator.Template(ctx, page.Params{
		Image:   path.Base(key),
		Prompt:  out.Metadata["prompt"],
		Created: out.Metadata["created"],
	})
	if err != nil {
		return err
	}

	_, err = h.client.WriteGetObjectResponse(ctx, &s3.WriteGetObjectResponseInput{
		RequestRoute: aws.String(request.GetContext.Route),
		RequestToken: aws.String(request.GetContext.Token),

		Body:          bytes.NewReader(html),
		ContentLength: aws.Int64(int64(len(html))),
		ContentType:   aws.String("text/html"),
		ETag:          out.ETag,
		LastModified:  out.LastModified,
		Metadata:      out.Metadata,
		StatusCode:    aws.Int32(200),
	})
	return err
}

func (h *PageHandler) findImage(ctx context.Context, base string) (string, error) {
	out, err := h.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket: aws.String(h.bucket),
		Prefix: aws.String(base + "."),
	})
	if err != nil {
		return "", err
	}
	obj, ok := lo.Find(out.Contents, func(o s3types.Object) bool {
		key := aws.ToString(o.Key)
		return strings.TrimSuffix(key, path.Ext(key)) == base && lo.Contains(imageExts, strings.ToLower(path.Ext(key)))
	})
	if !ok {
		return "", fmt.Errorf("no image stored for %s", base)
	}
	return aws.ToString(obj.Key), nil
}
