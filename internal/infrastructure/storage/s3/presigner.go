package s3

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"tour-booking/internal/config"
)

const UploadExpiry = 15 * time.Minute

// Upload is a presigned PUT the client uses to send an image straight to the bucket.
type Upload struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	Method    string    `json:"method"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type FilePresigner struct {
	client     *s3.PresignClient
	bucketName string
	now        func() time.Time
}

func NewFilePresigner(ctx context.Context, cfg config.S3Config) (*FilePresigner, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket is not configured")
	}

	awsCfg, err := awsConfig.LoadDefaultConfig(ctx,
		awsConfig.WithRegion(cfg.Region),
		awsConfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})

	return &FilePresigner{
		client:     s3.NewPresignClient(client),
		bucketName: cfg.Bucket,
		now:        time.Now,
	}, nil
}

// PresignUpload signs a PUT of key with the given content type.
func (p *FilePresigner) PresignUpload(ctx context.Context, key, contentType string) (*Upload, error) {
	request, err := p.client.PresignPutObject(ctx,
		&s3.PutObjectInput{
			Bucket:      aws.String(p.bucketName),
			Key:         aws.String(key),
			ContentType: aws.String(contentType),
		},
		s3.WithPresignExpires(UploadExpiry),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to presign upload: %w", err)
	}

	return &Upload{
		Key:       key,
		URL:       request.URL,
		Method:    request.Method,
		ExpiresAt: p.now().Add(UploadExpiry),
	}, nil
}

// UserPhotoKey names the object for a user's photo, e.g. users/user-<id>-<unix>.jpeg.
func UserPhotoKey(userID string, at time.Time) string {
	return fmt.Sprintf("users/user-%s-%d.jpeg", userID, at.Unix())
}

// TourCoverKey names the object for a tour's cover image.
func TourCoverKey(tourID string, at time.Time) string {
	return fmt.Sprintf("tours/tour-%s-%d-cover.jpeg", tourID, at.Unix())
}

// TourImageKey names the object for the n-th (1-based) gallery image of a tour.
func TourImageKey(tourID string, at time.Time, n int) string {
	return fmt.Sprintf("tours/tour-%s-%d-%d.jpeg", tourID, at.Unix(), n)
}
