package registry

import (
	"context"
	stderrors "errors"
	"io"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/upmkit/upmkit/internal/errors"
)

// s3API narrows the S3 client to the single call the source makes.
type s3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// s3Source fetches registry documents from an S3 bucket. The object
// layout mirrors the HTTP registry: <prefix>/<package> holds the
// packument, <prefix>/<package>/-/<tarball> the tarball.
type s3Source struct {
	client s3API
	bucket string
	prefix string
}

// newS3SourceFromURL builds an s3Source from an s3://bucket/prefix URL
// using the default AWS credential chain.
func newS3SourceFromURL(ctx context.Context, u *url.URL) (*s3Source, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, errors.New("E301").
			WithPath(u.String()).
			WithDetail("Could not load AWS credentials: " + err.Error()).
			WithSuggestion("Configure AWS credentials or use an http registry URL")
	}

	prefix := strings.Trim(u.Path, "/")
	if prefix != "" {
		prefix += "/"
	}

	return &s3Source{
		client: s3.NewFromConfig(awsCfg),
		bucket: u.Host,
		prefix: prefix,
	}, nil
}

func (s *s3Source) Fetch(ctx context.Context, path string) ([]byte, error) {
	key := s.prefix + path

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if stderrors.As(err, &noKey) {
			return nil, errors.New("E302").WithPath("s3://" + s.bucket + "/" + key)
		}
		return nil, errors.New("E301").
			WithPath("s3://" + s.bucket + "/" + key).
			Wrap(err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, errors.New("E301").
			WithPath("s3://" + s.bucket + "/" + key).
			Wrap(err)
	}
	return data, nil
}
