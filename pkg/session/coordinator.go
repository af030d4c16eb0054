package session

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/figmatch/figmatch/pkg/embeddings"
	"github.com/figmatch/figmatch/pkg/imaging"
	"github.com/figmatch/figmatch/pkg/matcher"
	"github.com/figmatch/figmatch/pkg/parts"
	"github.com/figmatch/figmatch/pkg/storage"
)

// Coordinator wires the workflow together: uploads start sessions, region
// submissions crop and advance, and completion triggers the per-category
// encode-and-match batch.
//
// A single session's steps are inherently sequential (the client walks
// head, torso, legs in order); independent sessions run concurrently with
// no shared mutable state beyond the session store.
type Coordinator struct {
	sessions *Store
	files    *storage.Store
	embedder embeddings.Embedder
	matcher  matcher.Matcher
	logger   *zap.Logger
}

// NewCoordinator creates a workflow coordinator.
func NewCoordinator(sessions *Store, files *storage.Store, embedder embeddings.Embedder, m matcher.Matcher, logger *zap.Logger) *Coordinator {
	return &Coordinator{
		sessions: sessions,
		files:    files,
		embedder: embedder,
		matcher:  m,
		logger:   logger,
	}
}

// Start persists an upload and opens a fresh session awaiting the head
// region. The session name is the sanitized filename stem; re-uploading
// the same filename restarts its workflow.
func (c *Coordinator) Start(filename string, r io.Reader) (*Session, error) {
	sanitized, err := storage.SanitizeFilename(filename)
	if err != nil {
		return nil, err
	}

	if _, err := c.files.SaveUpload(sanitized, r); err != nil {
		return nil, err
	}

	sess := &Session{
		Name:           storage.SessionName(sanitized),
		UploadFilename: sanitized,
		State:          AwaitingHead,
	}
	if err := c.sessions.Put(sess); err != nil {
		return nil, err
	}

	c.logger.Info("session started",
		zap.String("session", sess.Name),
		zap.String("upload", sanitized),
	)

	return sess, nil
}

// SubmitRegion crops the part for the category the session is waiting on
// and advances the workflow. Submissions for any other category are
// rejected without a state transition, and a complete session accepts
// nothing further.
func (c *Coordinator) SubmitRegion(name string, category parts.Category, region parts.Region) (*Session, error) {
	sess, err := c.sessions.Get(name)
	if err != nil {
		return nil, err
	}

	expected, ok := sess.State.Expecting()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrComplete, name)
	}
	if category != expected {
		return nil, fmt.Errorf("%w: session %s expects %s, got %s", ErrWrongStep, name, expected, category)
	}

	src, err := c.files.OpenUpload(sess.UploadFilename)
	if err != nil {
		return nil, err
	}

	if !region.In(src.Bounds()) {
		return nil, fmt.Errorf("%w: %+v against %v", ErrRegionBounds, region, src.Bounds())
	}

	cropped := imaging.Crop(src, region)
	if err := c.files.SaveCrop(category, sess.Name, cropped); err != nil {
		return nil, err
	}

	sess.State = sess.State.next()
	if err := c.sessions.Put(sess); err != nil {
		return nil, err
	}

	c.logger.Info("region submitted",
		zap.String("session", sess.Name),
		zap.String("category", string(category)),
		zap.String("state", string(sess.State)),
	)

	return sess, nil
}

// Results runs the matching batch for a complete session: per category,
// re-load the cropped part, embed it, and take the single best catalog
// match. Reporting is all-or-nothing; the first failure aborts the batch
// and no partial results are returned.
//
// The request context flows into embedding and matching, so a caller that
// disconnects cancels the remaining inference work.
func (c *Coordinator) Results(ctx context.Context, name string) ([]MatchResult, error) {
	sess, err := c.sessions.Get(name)
	if err != nil {
		return nil, err
	}

	if sess.State != Complete {
		return nil, fmt.Errorf("%w: %s is %s", ErrNotComplete, name, sess.State)
	}

	results := make([]MatchResult, 0, len(parts.Order))
	for _, category := range parts.Order {
		result, err := c.matchPart(ctx, sess.Name, category)
		if err != nil {
			return nil, fmt.Errorf("matching %s: %w", category, err)
		}
		results = append(results, *result)
	}

	c.logger.Info("session matched",
		zap.String("session", sess.Name),
	)

	return results, nil
}

// matchPart computes the best catalog match for one cropped part.
func (c *Coordinator) matchPart(ctx context.Context, name string, category parts.Category) (*MatchResult, error) {
	img, err := c.files.OpenCrop(category, name)
	if err != nil {
		return nil, err
	}

	embedding, err := c.embedder.Embed(ctx, img)
	if err != nil {
		return nil, err
	}

	matches, err := c.matcher.Match(ctx, category, embedding, 1)
	if err != nil {
		return nil, err
	}

	best := matches[0]
	id, err := category.Identifier(best.Filename)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("part matched",
		zap.String("session", name),
		zap.String("category", string(category)),
		zap.String("match", best.Filename),
		zap.Float32("score", best.Score),
	)

	return &MatchResult{
		Category: category,
		Match:    best.Filename,
		ID:       id,
		ImageURL: parts.ExternalImageURL(id),
	}, nil
}
