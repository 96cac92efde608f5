package s3store

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"mime"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/cockroachdb/errors"
	"github.com/questline/mint-console/modules/minter/blobstore"
)

type Config struct {
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
	KeyPrefix string `mapstructure:"key_prefix"`
	// PublicBaseUrl overrides the default virtual-hosted bucket URL, e.g.
	// a CloudFront distribution in front of the bucket.
	PublicBaseUrl string `mapstructure:"public_base_url"`
}

// Store writes blobs to S3 under content-addressed keys (sha256 of the
// payload), so re-uploading the same bytes is idempotent.
type Store struct {
	uploader      *manager.Uploader
	bucket        string
	keyPrefix     string
	publicBaseUrl string
}

var _ blobstore.Store = (*Store)(nil)

func New(ctx context.Context, conf Config) (*Store, error) {
	if conf.Bucket == "" {
		return nil, errors.New("s3 bucket is required")
	}
	sdkConfig, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "can't load aws user config")
	}
	client := s3.NewFromConfig(sdkConfig, func(o *s3.Options) {
		if conf.Region != "" {
			o.Region = conf.Region
		}
	})

	publicBaseUrl := strings.TrimRight(conf.PublicBaseUrl, "/")
	if publicBaseUrl == "" {
		publicBaseUrl = fmt.Sprintf("https://%s.s3.amazonaws.com", conf.Bucket)
	}
	return &Store{
		uploader:      manager.NewUploader(client),
		bucket:        conf.Bucket,
		keyPrefix:     strings.Trim(conf.KeyPrefix, "/"),
		publicBaseUrl: publicBaseUrl,
	}, nil
}

func (s *Store) Upload(ctx context.Context, name string, data []byte) (blobstore.Object, error) {
	sum := sha256.Sum256(data)
	contentId := hex.EncodeToString(sum[:])

	key := contentId + path.Ext(name)
	if s.keyPrefix != "" {
		key = s.keyPrefix + "/" + key
	}

	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	}
	if contentType := mime.TypeByExtension(path.Ext(name)); contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	if _, err := s.uploader.Upload(ctx, input); err != nil {
		return blobstore.Object{}, errors.Wrapf(err, "can't upload %q to s3", name)
	}

	return blobstore.Object{
		ContentId:  contentId,
		NativeUrl:  fmt.Sprintf("s3://%s/%s", s.bucket, key),
		GatewayUrl: s.publicBaseUrl + "/" + key,
	}, nil
}
