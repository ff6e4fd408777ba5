// Package submit runs the two-phase product submission: upload the staged
// image if there is one, then create or update the product with the full
// variant array in a single call. The phases are explicit states, so
// "upload succeeded but create not attempted" is representable and
// testable rather than an implicit moment in a callback chain.
package submit

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/rkohli/stockpilot/internal/draft"
	"github.com/rkohli/stockpilot/internal/errs"
	"github.com/rkohli/stockpilot/internal/model"
)

// State names one phase of a submission.
type State string

const (
	StateIdle       State = "idle"
	StateUploading  State = "uploading"
	StateSubmitting State = "submitting"
	StateSucceeded  State = "succeeded"
	StateFailed     State = "failed"
)

// ProductAPI is the slice of the backend the pipeline needs.
type ProductAPI interface {
	CreateProduct(ctx context.Context, p model.ProductPayload) (model.Product, error)
	UpdateProduct(ctx context.Context, id int, p model.ProductPayload) (model.Product, error)
}

// Uploader is the staged-image slot feeding the upload phase.
type Uploader interface {
	HasStaged() bool
	Upload(ctx context.Context) (string, error)
}

// Pipeline submits one draft at a time. Re-entry while a submission is
// running is rejected; after success or failure the caller decides
// whether to Reset and go again. The draft is never mutated here, so a
// failed submission can be retried without re-entering data.
type Pipeline struct {
	mu      sync.Mutex
	state   State
	running bool
	lastErr error
	api     ProductAPI
	refresh func(ctx context.Context) error
	logger  *zap.Logger
}

// New constructs an idle pipeline. refresh is invoked after a successful
// submission to reload the product list / reference data; it is
// best-effort and may be nil.
func New(api ProductAPI, refresh func(ctx context.Context) error, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{state: StateIdle, api: api, refresh: refresh, logger: logger}
}

// State returns the current phase.
func (p *Pipeline) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Err returns the failure reason of the last run, if any.
func (p *Pipeline) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastErr
}

// Reset returns a finished pipeline to Idle. It fails while a submission
// is still running.
func (p *Pipeline) Reset() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return errs.ErrBusy
	}
	p.state = StateIdle
	p.lastErr = nil
	return nil
}

// Create submits d as a new product.
func (p *Pipeline) Create(ctx context.Context, d model.ProductDraft, up Uploader) (model.Product, error) {
	return p.run(ctx, d, up, func(ctx context.Context, payload model.ProductPayload) (model.Product, error) {
		return p.api.CreateProduct(ctx, payload)
	})
}

// Update submits d as a replacement for the product identified by id.
func (p *Pipeline) Update(ctx context.Context, id int, d model.ProductDraft, up Uploader) (model.Product, error) {
	return p.run(ctx, d, up, func(ctx context.Context, payload model.ProductPayload) (model.Product, error) {
		return p.api.UpdateProduct(ctx, id, payload)
	})
}

func (p *Pipeline) run(ctx context.Context, d model.ProductDraft, up Uploader, send func(context.Context, model.ProductPayload) (model.Product, error)) (model.Product, error) {
	if err := p.begin(); err != nil {
		return model.Product{}, err
	}
	defer p.endRun()

	// The assembler gates everything: an unsubmittable draft must not
	// reach the network, the upload included.
	payload, err := draft.Assemble(d, "")
	if err != nil {
		p.transition(StateIdle, nil)
		return model.Product{}, err
	}

	if up != nil && up.HasStaged() {
		p.transition(StateUploading, nil)
		p.logger.Info("uploading staged image", zap.String("item_id", payload.ItemID))
		url, err := up.Upload(ctx)
		if err != nil {
			err = fmt.Errorf("image upload failed: %w", err)
			p.transition(StateFailed, err)
			return model.Product{}, err
		}
		payload.ImageURL = url
	}

	// An abandoned caller must not have its completed upload silently
	// turned into a product write.
	if err := ctx.Err(); err != nil {
		p.transition(StateFailed, err)
		return model.Product{}, err
	}

	p.transition(StateSubmitting, nil)
	product, err := send(ctx, payload)
	if err != nil {
		p.transition(StateFailed, err)
		p.logger.Warn("submission failed", zap.String("item_id", payload.ItemID), zap.Error(err))
		return model.Product{}, err
	}

	p.transition(StateSucceeded, nil)
	p.logger.Info("product submitted",
		zap.String("item_id", product.ItemID),
		zap.Int("id", product.ID),
		zap.Int("variants", len(product.Variants)),
	)
	if p.refresh != nil {
		if err := p.refresh(ctx); err != nil {
			p.logger.Warn("post-submit refresh failed", zap.Error(err))
		}
	}
	return product, nil
}

// begin guards against concurrent double-submission of the same draft.
func (p *Pipeline) begin() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running || (p.state != StateIdle && p.state != StateFailed) {
		return fmt.Errorf("%w: state %s", errs.ErrBusy, p.state)
	}
	p.running = true
	p.state = StateIdle
	p.lastErr = nil
	return nil
}

func (p *Pipeline) endRun() {
	p.mu.Lock()
	p.running = false
	p.mu.Unlock()
}

func (p *Pipeline) transition(s State, err error) {
	p.mu.Lock()
	p.state = s
	p.lastErr = err
	p.mu.Unlock()
}
