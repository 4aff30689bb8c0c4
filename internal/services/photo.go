package services

import (
	"context"
	"errors"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/oklog/ulid/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/markjakearzadon/trashmate-gobackend/internal/apperr"
)

// Presigner is the part of s3.PresignClient used for uploads.
type Presigner interface {
	PresignPutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

var photoContentTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// PhotoUpload is a presigned PUT the client uses to upload a profile photo.
type PhotoUpload struct {
	URL       string    `json:"uploadUrl"`
	Key       string    `json:"key"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// PhotoService hands out upload URLs for profile photos stored in S3.
type PhotoService struct {
	users     UserStore
	presigner Presigner
	bucket    string
	ttl       time.Duration
	now       func() time.Time
	logger    *zap.Logger
}

// NewPhotoService returns nil if no bucket is configured.
func NewPhotoService(users UserStore, presigner Presigner, bucket string, ttl time.Duration, now func() time.Time, logger *zap.Logger) *PhotoService {
	if bucket == "" || presigner == nil {
		return nil
	}
	if now == nil {
		now = time.Now
	}
	return &PhotoService{users: users, presigner: presigner, bucket: bucket, ttl: ttl, now: now, logger: logger}
}

// UploadURL presigns a PUT for a new photo object and records it as the
// user's photo.
func (s *PhotoService) UploadURL(ctx context.Context, userID primitive.ObjectID, contentType string) (*PhotoUpload, error) {
	if !photoContentTypes[contentType] {
		return nil, apperr.Validation("Unsupported content type")
	}
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.NotFound("User not found")
		}
		return nil, err
	}

	key := "profile-photos/" + userID.Hex() + "/" + ulid.Make().String()
	req, err := s.presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
		Metadata:    map[string]string{"user-id": userID.Hex()},
	}, func(o *s3.PresignOptions) { o.Expires = s.ttl })
	if err != nil {
		return nil, apperr.Upstream("failed to presign upload", err)
	}

	now := s.now()
	if err := s.users.SetPhotoKey(ctx, userID, key, now); err != nil {
		return nil, err
	}
	s.logger.Info("photo upload presigned",
		zap.String("user_id", userID.Hex()),
		zap.String("key", key),
	)
	return &PhotoUpload{URL: req.URL, Key: key, ExpiresAt: now.Add(s.ttl)}, nil
}
