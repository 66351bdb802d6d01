package vault

import (
	"context"
	"fmt"
	"io"
	"mime"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"recdocs/internal/config"
	"recdocs/internal/drive"
)

// s3API is the subset of the S3 client used by S3Vault.
type s3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	HeadBucket(ctx context.Context, in *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
}

// uploader streams object bodies, switching to multipart for large files.
type uploader interface {
	Upload(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

// presigner signs GET requests for preview and download links.
type presigner interface {
	PresignGetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// S3Vault stores documents in an S3 bucket. Folders are represented by
// zero-byte marker objects whose key ends in "/".
type S3Vault struct {
	name      string
	bucket    string
	prefix    string
	linkTTL   time.Duration
	client    s3API
	uploader  uploader
	presigner presigner
}

// NewS3Vault creates an S3 vault from config. Static credentials are used
// when an access key is configured, the default AWS chain otherwise.
func NewS3Vault(ctx context.Context, name string, cfg config.VaultConfig) (*S3Vault, error) {
	if cfg.S3Bucket == "" {
		return nil, fmt.Errorf("s3 vault requires s3_bucket to be set")
	}
	ttl, err := cfg.LinkTTL()
	if err != nil {
		return nil, err
	}

	var opts []func(*awsconfig.LoadOptions) error
	if cfg.S3Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.S3Region))
	}
	if cfg.S3AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3AccessKeyID,
			cfg.S3SecretKey,
			"",
		)))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
		}
		o.UsePathStyle = cfg.S3UsePathStyle
	})

	return newS3Vault(name, cfg.S3Bucket, cfg.S3Prefix, ttl, client, manager.NewUploader(client), s3.NewPresignClient(client)), nil
}

func newS3Vault(name, bucket, prefix string, ttl time.Duration, client s3API, up uploader, ps presigner) *S3Vault {
	return &S3Vault{
		name:      name,
		bucket:    bucket,
		prefix:    strings.Trim(prefix, "/"),
		linkTTL:   ttl,
		client:    client,
		uploader:  up,
		presigner: ps,
	}
}

func (v *S3Vault) objectKey(key string) string {
	return path.Join(v.prefix, strings.Trim(key, "/"))
}

// CreateFolder writes a folder marker object.
func (v *S3Vault) CreateFolder(ctx context.Context, folderPath string) error {
	_, err := v.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(v.bucket),
		Key:           aws.String(v.objectKey(folderPath) + "/"),
		Body:          strings.NewReader(""),
		ContentLength: aws.Int64(0),
	})
	if err != nil {
		return fmt.Errorf("creating folder marker: %w", err)
	}
	return nil
}

// PutObject uploads size bytes from r.
func (v *S3Vault) PutObject(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	in := &s3.PutObjectInput{
		Bucket:        aws.String(v.bucket),
		Key:           aws.String(v.objectKey(key)),
		Body:          r,
		ContentLength: aws.Int64(size),
	}
	if contentType != "" {
		in.ContentType = aws.String(contentType)
	}
	if _, err := v.uploader.Upload(ctx, in); err != nil {
		return fmt.Errorf("uploading object: %w", err)
	}
	return nil
}

// DeleteObject removes the object at key.
func (v *S3Vault) DeleteObject(ctx context.Context, key string) error {
	_, err := v.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(v.bucket),
		Key:    aws.String(v.objectKey(key)),
	})
	if err != nil {
		return fmt.Errorf("deleting object: %w", err)
	}
	return nil
}

// Links presigns two GET requests: one rendered inline, one served as an attachment.
func (v *S3Vault) Links(ctx context.Context, key, fileName string) (drive.Links, error) {
	web, err := v.presign(ctx, key, "inline", fileName)
	if err != nil {
		return drive.Links{}, err
	}
	download, err := v.presign(ctx, key, "attachment", fileName)
	if err != nil {
		return drive.Links{}, err
	}
	return drive.Links{WebURL: web, DownloadURL: download}, nil
}

func (v *S3Vault) presign(ctx context.Context, key, disposition, fileName string) (string, error) {
	req, err := v.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket:                     aws.String(v.bucket),
		Key:                        aws.String(v.objectKey(key)),
		ResponseContentDisposition: aws.String(mime.FormatMediaType(disposition, map[string]string{"filename": fileName})),
	}, s3.WithPresignExpires(v.linkTTL))
	if err != nil {
		return "", fmt.Errorf("presigning %s link: %w", disposition, err)
	}
	return req.URL, nil
}

// ValidateSetup checks that the bucket exists and is reachable.
func (v *S3Vault) ValidateSetup(ctx context.Context) error {
	if _, err := v.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(v.bucket)}); err != nil {
		return fmt.Errorf("bucket %s not accessible: %w", v.bucket, err)
	}
	return nil
}

// Compile-time check that S3Vault implements drive.Vault interface
var _ drive.Vault = (*S3Vault)(nil)
