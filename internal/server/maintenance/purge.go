// Package maintenance implements out-of-band housekeeping for the sync store.
// The only job so far is the tombstone purge: soft-deleted rows past the
// retention window are archived to object storage and then removed.
package maintenance

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/aidaily-app/aidaily/internal/logging"
	"github.com/aidaily-app/aidaily/internal/server/config"
	"github.com/aidaily-app/aidaily/internal/syncx"
)

// tombstoneStore is the part of the records repository the purge needs.
type tombstoneStore interface {
	TombstonesBefore(ctx context.Context, cutoff time.Time) (*syncx.ChangeSet, error)
	DeleteTombstonesBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// objectPutter matches the one S3 call the purge makes, so tests can fake it.
type objectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type Purger struct {
	config *config.Config
	store  tombstoneStore
	s3     objectPutter
	logger logging.Logger
	now    func() time.Time
}

func NewPurger(cfg *config.Config, store tombstoneStore, logger logging.Logger) (*Purger, error) {
	client, err := newS3Client(cfg)
	if err != nil {
		return nil, err
	}
	return &Purger{
		config: cfg,
		store:  store,
		s3:     client,
		logger: logger.With("module", "purge"),
		now:    time.Now,
	}, nil
}

func newS3Client(cfg *config.Config) (*s3.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3RootUser,
			cfg.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.S3BaseEndpoint)
		o.UsePathStyle = true
	}), nil
}

// Run archives tombstones older than the retention cutoff to S3 and deletes
// them. The archive upload happens first: if it fails, nothing is deleted and
// the next run picks the same rows up again.
func (p *Purger) Run(ctx context.Context) error {
	cutoff := p.now().Add(-p.config.TombstoneRetention)

	cs, err := p.store.TombstonesBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("collecting tombstones: %w", err)
	}
	if cs.Empty() {
		p.logger.Info(ctx, "nothing to purge", "cutoff", cutoff)
		return nil
	}

	key := archiveKey(p.now())
	if err := p.archive(ctx, key, cs); err != nil {
		return fmt.Errorf("archiving tombstones: %w", err)
	}

	deleted, err := p.store.DeleteTombstonesBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("deleting tombstones: %w", err)
	}

	p.logger.Info(ctx, "purge finished",
		"cutoff", cutoff,
		"archived", cs.Total(),
		"deleted", deleted,
		"key", key)

	return nil
}

func (p *Purger) archive(ctx context.Context, key string, cs *syncx.ChangeSet) error {
	body, err := json.Marshal(cs)
	if err != nil {
		return err
	}

	_, err = p.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(p.config.S3Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	return err
}

func archiveKey(t time.Time) string {
	return fmt.Sprintf("tombstones/%s.json", t.UTC().Format("2006/01/02/150405"))
}
