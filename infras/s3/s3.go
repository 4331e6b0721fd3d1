package s3

//go:generate go run go.uber.org/mock/mockgen -source=./s3.go -destination=./mocks/s3_mock.go -package=mocks

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"travelo/config"
	"travelo/infras/otel"
	"travelo/shared/constant"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"
)

const (
	otelAttrFileName = "file_name"
	otelAttrBucket   = "bucket"

	defaultRegion = "auto"
)

// Object describes an uploaded object.
type Object struct {
	Bucket string `json:"bucket"`
	Key    string `json:"key"`
	URL    string `json:"url"`
}

type S3 interface {
	UploadFileBytes(ctx context.Context, bucketName, directory, fileName, contentType string, fileData []byte) (object Object, err error)
	PresignGetURL(ctx context.Context, bucketName, key string, expiry time.Duration) (url string, err error)
}

type s3Impl struct {
	Client  *s3.Client
	Presign *s3.PresignClient
	Config  *config.Config
	otel    otel.Otel
}

func (svc *s3Impl) bucket(bucketName string) string {
	if bucketName == "" {
		return svc.Config.External.S3.BucketName
	}

	return bucketName
}

func (svc *s3Impl) UploadFileBytes(ctx context.Context, bucketName, directory, fileName, contentType string, fileData []byte) (object Object, err error) {
	ctx, scope := svc.otel.NewScope(ctx, constant.OtelS3ScopeName, constant.OtelS3ScopeName+".UploadFileBytes")
	defer scope.End()
	defer scope.TraceIfError(&err)

	bucketName = svc.bucket(bucketName)
	objectKey := path.Join(directory, fileName)

	scope.SetAttributes(map[string]any{
		otelAttrFileName: objectKey,
		otelAttrBucket:   bucketName,
	})

	fileReader := bytes.NewReader(fileData)

	_, err = svc.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(bucketName),
		Key:           aws.String(objectKey),
		Body:          fileReader,
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(fileReader.Size()),
	})
	if err != nil {
		log.Error().Err(err).Str("bucket", bucketName).Str("key", objectKey).Msg("failed to upload file to S3")

		return Object{}, fmt.Errorf("failed to upload file to S3: %w", err)
	}

	return Object{
		Bucket: bucketName,
		Key:    objectKey,
		URL:    svc.publicURL(bucketName, objectKey),
	}, nil
}

// PresignGetURL returns a time-limited download link for a private object.
func (svc *s3Impl) PresignGetURL(ctx context.Context, bucketName, key string, expiry time.Duration) (url string, err error) {
	ctx, scope := svc.otel.NewScope(ctx, constant.OtelS3ScopeName, constant.OtelS3ScopeName+".PresignGetURL")
	defer scope.End()
	defer scope.TraceIfError(&err)

	bucketName = svc.bucket(bucketName)

	request, err := svc.Presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucketName),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(expiry))
	if err != nil {
		return constant.Empty, fmt.Errorf("failed to presign object: %w", err)
	}

	return request.URL, nil
}

func (svc *s3Impl) publicURL(bucketName, objectKey string) string {
	publicURL := strings.TrimSuffix(svc.Config.External.S3.PublicURL, "/")
	if publicURL == "" {
		return fmt.Sprintf("s3://%s/%s", bucketName, objectKey)
	}

	return fmt.Sprintf("%s/%s", publicURL, objectKey)
}

func New(config *config.Config, otel otel.Otel) S3 {
	s3Config := config.External.S3

	region := s3Config.Region
	if region == "" {
		region = defaultRegion
	}

	options := []func(*awsConfig.LoadOptions) error{
		awsConfig.WithRegion(region),
	}

	if s3Config.AccessKeyID != "" {
		options = append(options, awsConfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(s3Config.AccessKeyID, s3Config.SecretAccessKey, ""),
		))
	}

	cfg, err := awsConfig.LoadDefaultConfig(context.Background(), options...)
	if err != nil {
		log.Err(err).Msg("Error loading AWS configuration")
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if s3Config.Endpoint != "" {
			o.BaseEndpoint = aws.String(s3Config.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &s3Impl{
		Client:  client,
		Presign: s3.NewPresignClient(client),
		Config:  config,
		otel:    otel,
	}
}
