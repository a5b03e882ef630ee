package services

import (
	"context"
	"fmt"
	"io"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/portfolio-content-backend/errs"
)

// MaxUploadSize caps a single media upload.
const MaxUploadSize = 10 << 20

// MediaFolders lists the folders uploads may be filed under.
var MediaFolders = map[string]bool{
	"projects/thumbnails": true,
	"projects/heroes":     true,
	"projects/diagrams":   true,
	"blog/images":         true,
	"profile":             true,
	"resume":              true,
}

var allowedMediaTypes = map[string]bool{
	"image/png":       true,
	"image/jpeg":      true,
	"image/gif":       true,
	"image/webp":      true,
	"image/svg+xml":   true,
	"application/pdf": true,
	"video/mp4":       true,
}

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// ObjectPutter is the part of the S3 API the media store needs.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type MediaConfig struct {
	Bucket        string
	Region        string
	PublicBaseURL string
}

type Upload struct {
	Folder      string
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// S3MediaStore files uploads in an S3 bucket and returns their public URL. Only the URL is
// ever stored in the database.
type S3MediaStore struct {
	client ObjectPutter
	cfg    MediaConfig
	now    func() time.Time
	logger zerolog.Logger
}

// NewS3Client loads the default AWS credential chain for region.
func NewS3Client(ctx context.Context, region string) (*s3.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, eris.Wrap(err, "loading AWS config")
	}
	return s3.NewFromConfig(awsCfg), nil
}

func NewS3MediaStore(client ObjectPutter, cfg MediaConfig) (*S3MediaStore, error) {
	if cfg.Bucket == "" {
		return nil, eris.New("media bucket is required")
	}
	if cfg.PublicBaseURL == "" {
		cfg.PublicBaseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	}
	cfg.PublicBaseURL = strings.TrimRight(cfg.PublicBaseURL, "/")
	return &S3MediaStore{
		client: client,
		cfg:    cfg,
		now:    time.Now,
		logger: log.With().Str("service", "mediaStore").Logger(),
	}, nil
}

// ValidateUpload checks an upload before any bytes are sent.
func ValidateUpload(u Upload) error {
	problems := map[string]string{}
	if !MediaFolders[u.Folder] {
		problems["folder"] = "unknown media folder"
	}
	if u.Size <= 0 {
		problems["file"] = "required"
	} else if u.Size > MaxUploadSize {
		problems["file"] = fmt.Sprintf("must be at most %d bytes", MaxUploadSize)
	}
	if !allowedMediaTypes[u.ContentType] {
		problems["content_type"] = "unsupported media type"
	}
	if len(problems) > 0 {
		return errs.NewValidationError(problems)
	}
	return nil
}

// Put stores the upload under folder/yyyy/mm/<uuid>-<name> and returns its public URL.
func (s *S3MediaStore) Put(ctx context.Context, u Upload) (string, error) {
	if err := ValidateUpload(u); err != nil {
		return "", err
	}

	key := path.Join(u.Folder, s.now().UTC().Format("2006/01"), uuid.NewString()+"-"+sanitizeFilename(u.Filename))
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.cfg.Bucket),
		Key:           aws.String(key),
		Body:          u.Body,
		ContentType:   aws.String(u.ContentType),
		ContentLength: aws.Int64(u.Size),
		CacheControl:  aws.String("public, max-age=31536000, immutable"),
	})
	if err != nil {
		return "", errs.NewExternalServiceError("media store", err)
	}

	url := s.cfg.PublicBaseURL + "/" + key
	s.logger.Info().Str("key", key).Int64("size", u.Size).Msg("Stored media object")
	return url, nil
}

func sanitizeFilename(name string) string {
	name = path.Base(strings.ReplaceAll(name, `\`, "/"))
	name = strings.Trim(unsafeFilenameChars.ReplaceAllString(name, "-"), "-.")
	if name == "" {
		return "upload"
	}
	if len(name) > 100 {
		name = name[len(name)-100:]
	}
	return strings.ToLower(name)
}
