// internal/services/upload_pipeline.go
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/dario9661s/bundles-sub000/internal/config"
	"github.com/dario9661s/bundles-sub000/internal/shopify"
)

// FilesAPI is the slice of the media service the upload pipeline
// drives.
type FilesAPI interface {
	StagedUploadCreate(ctx context.Context, filename, mimeType string, size int64) (*shopify.StagedUploadTarget, error)
	UploadToStagedTarget(ctx context.Context, target *shopify.StagedUploadTarget, filename, mimeType string, data []byte) error
	FileCreate(ctx context.Context, resourceURL, altText string) (string, error)
	GetFileStatus(ctx context.Context, fileID string) (status, url string, err error)
}

// Clock abstracts the poll delay so tests can run the bounded retry
// loop without wall-clock waits.
type Clock interface {
	Sleep(ctx context.Context, d time.Duration) error
}

type realClock struct{}

func (realClock) Sleep(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

type pipelineState string

const (
	stateStaged      pipelineState = "staged"
	stateTransferred pipelineState = "transferred"
	stateRegistering pipelineState = "registering"
	stateReady       pipelineState = "ready"
	stateFailed      pipelineState = "failed"
)

// UploadPipeline runs the media upload state machine:
// staged → transferred → registering → ready|failed.
// The poll loop is strictly bounded; exhaustion is a terminal failure
// rather than an unresolved asset reference.
type UploadPipeline struct {
	files        FilesAPI
	clock        Clock
	pollInterval time.Duration
	maxPolls     int
	log          *logrus.Entry
}

func NewUploadPipeline(files FilesAPI, cfg config.UploadConfig) *UploadPipeline {
	return &UploadPipeline{
		files:        files,
		clock:        realClock{},
		pollInterval: time.Duration(cfg.PollIntervalMs) * time.Millisecond,
		maxPolls:     cfg.MaxPolls,
		log:          logrus.WithField("component", "upload_pipeline"),
	}
}

// WithClock substitutes the poll clock; used by tests.
func (p *UploadPipeline) WithClock(clock Clock) *UploadPipeline {
	p.clock = clock
	return p
}

// Run uploads raw image bytes and returns the durable media id plus its
// resolved URL. It only returns once the asset is URL-resolvable; any
// earlier exit is an error and no caller may reference the media.
func (p *UploadPipeline) Run(ctx context.Context, filename, mimeType string, data []byte) (mediaID, url string, err error) {
	state := stateStaged
	target, err := p.files.StagedUploadCreate(ctx, filename, mimeType, int64(len(data)))
	if err != nil {
		return "", "", fmt.Errorf("upload pipeline failed at %s: %w", state, err)
	}

	if err := p.files.UploadToStagedTarget(ctx, target, filename, mimeType, data); err != nil {
		return "", "", fmt.Errorf("upload pipeline failed at %s: %w", state, err)
	}
	state = stateTransferred

	mediaID, err = p.files.FileCreate(ctx, target.ResourceURL, filename)
	if err != nil {
		return "", "", fmt.Errorf("upload pipeline failed at %s: %w", state, err)
	}
	state = stateRegistering

	for attempt := 0; attempt < p.maxPolls; attempt++ {
		if attempt > 0 {
			if err := p.clock.Sleep(ctx, p.pollInterval); err != nil {
				return "", "", err
			}
		}

		status, resolvedURL, err := p.files.GetFileStatus(ctx, mediaID)
		if err != nil {
			return "", "", fmt.Errorf("upload pipeline failed at %s: %w", state, err)
		}

		if status == shopify.FileStatusFailed {
			state = stateFailed
			return "", "", fmt.Errorf("media processing failed for %s", mediaID)
		}
		if status == shopify.FileStatusReady && resolvedURL != "" {
			state = stateReady
			p.log.WithFields(logrus.Fields{"media_id": mediaID, "polls": attempt + 1}).Debug("Media ready")
			return mediaID, resolvedURL, nil
		}
	}

	return "", "", fmt.Errorf("%w: media %s after %d polls", ErrUploadTimeout, mediaID, p.maxPolls)
}
