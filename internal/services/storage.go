package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/chachabrian/rideflow-backend/internal/config"
	"github.com/chachabrian/rideflow-backend/internal/models"
)

const feedbackFolder = "feedback"

// FeedbackArchive keeps a durable copy of each feedback record.
type FeedbackArchive interface {
	Save(ctx context.Context, fb models.Feedback) (string, error)
}

// InitStorage picks S3 when AWS is configured and falls back to a
// local directory otherwise.
func InitStorage(cfg config.Config) (FeedbackArchive, error) {
	if cfg.AWS.Enabled() {
		sess, err := session.NewSession(&aws.Config{
			Region: aws.String(cfg.AWS.Region),
			Credentials: credentials.NewStaticCredentials(
				cfg.AWS.AccessKeyID,
				cfg.AWS.SecretAccessKey,
				"", // Token (optional)
			),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create AWS session: %v", err)
		}

		log.Printf("AWS S3 feedback archive initialized (bucket %s)", cfg.AWS.Bucket)
		return &S3Archive{
			uploader: s3manager.NewUploader(sess),
			bucket:   cfg.AWS.Bucket,
			region:   cfg.AWS.Region,
		}, nil
	}

	log.Printf("AWS S3 not configured. Archiving feedback under %s", cfg.FeedbackDir)
	return NewLocalArchive(cfg.FeedbackDir)
}

type S3Archive struct {
	uploader *s3manager.Uploader
	bucket   string
	region   string
}

func (a *S3Archive) Save(ctx context.Context, fb models.Feedback) (string, error) {
	body, err := json.Marshal(fb)
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf("%s/%s.json", feedbackFolder, fb.ID)
	_, err = a.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %v", err)
	}

	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", a.bucket, a.region, key), nil
}

type LocalArchive struct {
	dir string
}

func NewLocalArchive(dir string) (*LocalArchive, error) {
	if err := os.MkdirAll(filepath.Join(dir, feedbackFolder), 0755); err != nil {
		return nil, fmt.Errorf("failed to create feedback directory: %v", err)
	}
	return &LocalArchive{dir: dir}, nil
}

func (a *LocalArchive) Save(_ context.Context, fb models.Feedback) (string, error) {
	body, err := json.MarshalIndent(fb, "", "  ")
	if err != nil {
		return "", err
	}

	rel := filepath.Join(feedbackFolder, fb.ID+".json")
	if err := os.WriteFile(filepath.Join(a.dir, rel), body, 0644); err != nil {
		return "", fmt.Errorf("failed to save feedback: %v", err)
	}
	return rel, nil
}
