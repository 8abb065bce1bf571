package topology

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/golang/snappy"
)

// S3Config configures the S3 document store. Endpoint and path-style access
// support MinIO and other S3-compatible backends.
type S3Config struct {
	Bucket       string `yaml:"bucket"`
	Region       string `yaml:"region"`
	Endpoint     string `yaml:"endpoint,omitempty"`
	AccessKey    string `yaml:"access_key,omitempty"`
	SecretKey    string `yaml:"secret_key,omitempty"`
	UsePathStyle bool   `yaml:"use_path_style,omitempty"`
}

// S3Store persists one snappy-compressed JSON object per project. PutObject
// replaces the object atomically, so readers never observe a
// partially-written document.
type S3Store struct {
	client *s3.Client
	bucket string

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewS3Store creates an S3-backed topology store.
func NewS3Store(ctx context.Context, cfg S3Config) (*S3Store, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("s3 bucket cannot be empty")
	}

	var awsCfg aws.Config
	var err error
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		// Static credentials (MinIO or AWS with explicit keys)
		awsCfg, err = awsconfig.LoadDefaultConfig(ctx,
			awsconfig.WithRegion(cfg.Region),
			awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
				cfg.AccessKey,
				cfg.SecretKey,
				"",
			)),
		)
	} else {
		// Default credential chain (IAM roles, env vars, etc.)
		awsCfg, err = awsconfig.LoadDefaultConfig(ctx,
			awsconfig.WithRegion(cfg.Region),
		)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		if cfg.UsePathStyle {
			o.UsePathStyle = true
		}
	})

	return &S3Store{
		client: client,
		bucket: cfg.Bucket,
		locks:  make(map[string]*sync.Mutex),
	}, nil
}

func (s *S3Store) projectLock(projectID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[projectID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[projectID] = lock
	}
	return lock
}

func (s *S3Store) objectKey(projectID string) string {
	return "topologies/" + projectID + ".json.snappy"
}

// Save validates and uploads the document, replacing any prior version.
func (s *S3Store) Save(ctx context.Context, doc *Document) error {
	if err := ValidateDocument(doc); err != nil {
		return err
	}

	lock := s.projectLock(doc.ProjectID)
	lock.Lock()
	defer lock.Unlock()

	if err := ctx.Err(); err != nil {
		return unavailable("Save", "s3", doc.ProjectID, err)
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return &StoreError{Op: "Save", Backend: "s3", ProjectID: doc.ProjectID, Cause: err}
	}
	compressed := snappy.Encode(nil, data)

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.objectKey(doc.ProjectID)),
		Body:        bytes.NewReader(compressed),
		ContentType: aws.String("application/octet-stream"),
	})
	if err != nil {
		return unavailable("Save", "s3", doc.ProjectID, err)
	}
	return nil
}

// Load downloads the current document for the project, or ok=false when no
// object exists for that ID.
func (s *S3Store) Load(ctx context.Context, projectID string) (*Document, bool, error) {
	if err := ValidateProjectID(projectID); err != nil {
		return nil, false, err
	}

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(projectID)),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, false, nil
		}
		return nil, false, unavailable("Load", "s3", projectID, err)
	}
	defer out.Body.Close()

	compressed, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, false, unavailable("Load", "s3", projectID, err)
	}

	data, err := snappy.Decode(nil, compressed)
	if err != nil {
		return nil, false, &StoreError{Op: "Load", Backend: "s3", ProjectID: projectID, Cause: err}
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, false, &StoreError{Op: "Load", Backend: "s3", ProjectID: projectID, Cause: err}
	}

	applyDefaultIcons(&doc)
	return &doc, true, nil
}

var _ Store = (*S3Store)(nil)
