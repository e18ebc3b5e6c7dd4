// internal/services/upload_pipeline_test.go
package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dario9661s/bundles-sub000/internal/config"
	"github.com/dario9661s/bundles-sub000/internal/shopify"
)

// instantClock skips poll delays and counts them.
type instantClock struct {
	sleeps int
}

func (c *instantClock) Sleep(ctx context.Context, d time.Duration) error {
	c.sleeps++
	return nil
}

// fakeFilesAPI scripts the media service: statuses are returned in
// order, the last one repeating.
type fakeFilesAPI struct {
	statuses    []string
	readyURL    string
	polls       int
	stagedErr   error
	transferErr error
	createErr   error

	createdFiles int
}

func (f *fakeFilesAPI) StagedUploadCreate(ctx context.Context, filename, mimeType string, size int64) (*shopify.StagedUploadTarget, error) {
	if f.stagedErr != nil {
		return nil, f.stagedErr
	}
	return &shopify.StagedUploadTarget{
		URL:         "https://upload.example.com/stage",
		ResourceURL: "https://upload.example.com/stage/resource",
	}, nil
}

func (f *fakeFilesAPI) UploadToStagedTarget(ctx context.Context, target *shopify.StagedUploadTarget, filename, mimeType string, data []byte) error {
	return f.transferErr
}

func (f *fakeFilesAPI) FileCreate(ctx context.Context, resourceURL, altText string) (string, error) {
	if f.createErr != nil {
		return "", f.createErr
	}
	f.createdFiles++
	return "gid://fake/MediaImage/1", nil
}

func (f *fakeFilesAPI) GetFileStatus(ctx context.Context, fileID string) (string, string, error) {
	i := f.polls
	if i >= len(f.statuses) {
		i = len(f.statuses) - 1
	}
	f.polls++
	status := f.statuses[i]
	if status == shopify.FileStatusReady {
		return status, f.readyURL, nil
	}
	return status, "", nil
}

func pipelineConfig(maxPolls int) config.UploadConfig {
	return config.UploadConfig{PollIntervalMs: 1, MaxPolls: maxPolls}
}

func TestPipelineResolvesAfterProcessing(t *testing.T) {
	files := &fakeFilesAPI{
		statuses: []string{shopify.FileStatusProcessing, shopify.FileStatusProcessing, shopify.FileStatusReady},
		readyURL: "https://cdn.example.com/final.png",
	}
	clock := &instantClock{}
	p := NewUploadPipeline(files, pipelineConfig(10)).WithClock(clock)

	mediaID, url, err := p.Run(context.Background(), "img.png", "image/png", []byte("bytes"))
	require.NoError(t, err)
	assert.Equal(t, "gid://fake/MediaImage/1", mediaID)
	assert.Equal(t, "https://cdn.example.com/final.png", url)
	assert.Equal(t, 3, files.polls)
	// First poll happens before any sleep.
	assert.Equal(t, 2, clock.sleeps)
}

func TestPipelineTimeoutIsTerminal(t *testing.T) {
	files := &fakeFilesAPI{statuses: []string{shopify.FileStatusProcessing}}
	p := NewUploadPipeline(files, pipelineConfig(3)).WithClock(&instantClock{})

	mediaID, url, err := p.Run(context.Background(), "img.png", "image/png", []byte("bytes"))
	assert.ErrorIs(t, err, ErrUploadTimeout)
	assert.Empty(t, mediaID)
	assert.Empty(t, url)
	assert.Equal(t, 3, files.polls)
}

func TestPipelineFailedStatusAborts(t *testing.T) {
	files := &fakeFilesAPI{statuses: []string{shopify.FileStatusProcessing, shopify.FileStatusFailed}}
	p := NewUploadPipeline(files, pipelineConfig(10)).WithClock(&instantClock{})

	_, _, err := p.Run(context.Background(), "img.png", "image/png", []byte("bytes"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUploadTimeout)
}

func TestPipelineStagingFailureCreatesNoFile(t *testing.T) {
	files := &fakeFilesAPI{stagedErr: errors.New("ACCESS_DENIED")}
	p := NewUploadPipeline(files, pipelineConfig(10)).WithClock(&instantClock{})

	_, _, err := p.Run(context.Background(), "img.png", "image/png", []byte("bytes"))
	require.Error(t, err)
	assert.Equal(t, 0, files.createdFiles)
}

func TestPipelineReadyWithoutURLKeepsPolling(t *testing.T) {
	files := &fakeFilesAPI{statuses: []string{shopify.FileStatusReady}}
	// readyURL left empty: READY with no URL is not resolvable yet.
	p := NewUploadPipeline(files, pipelineConfig(2)).WithClock(&instantClock{})

	_, _, err := p.Run(context.Background(), "img.png", "image/png", []byte("bytes"))
	assert.ErrorIs(t, err, ErrUploadTimeout)
	assert.Equal(t, 2, files.polls)
}
