package submit

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
)

// ErrSubmissionInFlight is returned when a dispatch is requested while a
// previous batch is still outstanding. Editing is never blocked by an
// in-flight submission; only re-submission is.
var ErrSubmissionInFlight = errors.New("a submission is already in flight")

// Publisher sends one brand-scoped request to the external publishing API.
type Publisher interface {
	Publish(ctx context.Context, request Request) error
}

// Recorder persists the outcome of one dispatched bucket. A nil recorder
// disables persistence; recording failures never fail the dispatch.
type Recorder interface {
	RecordDispatch(ctx context.Context, record DispatchRecord) error
}

// DispatchRecord is the audit row written per brand bucket.
type DispatchRecord struct {
	BatchID   string
	BrandID   string
	Platforms []string
	Status    string
	Error     string
	CreatedAt time.Time
}

const (
	DispatchStatusSucceeded = "succeeded"
	DispatchStatusFailed    = "failed"
)

// BucketResult is the per-brand outcome of one dispatch.
type BucketResult struct {
	BrandID string `json:"brand_id"`
	Status  string `json:"status"`
	Error   string `json:"error,omitempty"`
}

// DispatchResult summarizes a batch. The batch counts as successful when at
// least one bucket succeeded; bucket completion order is not defined.
type DispatchResult struct {
	BatchID   string         `json:"batch_id"`
	Buckets   []BucketResult `json:"buckets"`
	Succeeded int            `json:"succeeded"`
	Failed    int            `json:"failed"`
}

// Dispatcher fans built requests out to the publisher, one goroutine per
// brand bucket. It performs no retries; retrying a failed bucket is the
// caller's decision.
type Dispatcher struct {
	Publisher Publisher
	Recorder  Recorder
	Logger    *log.Logger

	inFlight atomic.Bool
}

func NewDispatcher(publisher Publisher) *Dispatcher {
	return &Dispatcher{Publisher: publisher}
}

// InFlight reports whether a batch is currently outstanding.
func (d *Dispatcher) InFlight() bool {
	return d.inFlight.Load()
}

// Dispatch sends every request concurrently and waits for all buckets.
// Partial failure is tolerated: an error is returned only when no bucket
// succeeded (or when dispatch could not start at all).
func (d *Dispatcher) Dispatch(ctx context.Context, requests []Request) (*DispatchResult, error) {
	if d == nil || d.Publisher == nil {
		return nil, errors.New("dispatcher publisher is required")
	}
	if len(requests) == 0 {
		return nil, errors.New("no requests to dispatch")
	}
	if !d.inFlight.CompareAndSwap(false, true) {
		return nil, ErrSubmissionInFlight
	}
	defer d.inFlight.Store(false)

	logger := d.logger()
	batchID := requests[0].BatchID
	logger.Info("dispatching submission", "batch_id", batchID, "buckets", len(requests))

	results := make([]BucketResult, len(requests))
	var wg sync.WaitGroup
	for i, request := range requests {
		wg.Add(1)
		go func(i int, request Request) {
			defer wg.Done()
			results[i] = d.dispatchBucket(ctx, request)
		}(i, request)
	}
	wg.Wait()

	result := &DispatchResult{BatchID: batchID, Buckets: results}
	var firstErr string
	for _, bucket := range results {
		if bucket.Status == DispatchStatusSucceeded {
			result.Succeeded++
			continue
		}
		result.Failed++
		if firstErr == "" {
			firstErr = bucket.Error
		}
	}

	if result.Succeeded == 0 {
		return result, fmt.Errorf("all %d brand buckets failed: %s", result.Failed, firstErr)
	}
	if result.Failed > 0 {
		logger.Warn("submission partially failed", "batch_id", batchID, "succeeded", result.Succeeded, "failed", result.Failed)
	}
	return result, nil
}

func (d *Dispatcher) dispatchBucket(ctx context.Context, request Request) BucketResult {
	logger := d.logger()
	result := BucketResult{BrandID: request.BrandID, Status: DispatchStatusSucceeded}

	if err := d.Publisher.Publish(ctx, request); err != nil {
		result.Status = DispatchStatusFailed
		result.Error = err.Error()
		logger.Warn("bucket dispatch failed", "batch_id", request.BatchID, "brand_id", request.BrandID, "error", err)
	} else {
		logger.Info("bucket dispatched", "batch_id", request.BatchID, "brand_id", request.BrandID, "platforms", len(request.Platforms))
	}

	if d.Recorder != nil {
		record := DispatchRecord{
			BatchID:   request.BatchID,
			BrandID:   request.BrandID,
			Platforms: platformNames(request),
			Status:    result.Status,
			Error:     result.Error,
			CreatedAt: time.Now().UTC(),
		}
		if err := d.Recorder.RecordDispatch(ctx, record); err != nil {
			logger.Warn("dispatch record not persisted", "batch_id", request.BatchID, "brand_id", request.BrandID, "error", err)
		}
	}
	return result
}

func (d *Dispatcher) logger() *log.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return log.Default()
}

func platformNames(request Request) []string {
	names := make([]string, 0, len(request.Platforms))
	for _, entry := range request.Platforms {
		names = append(names, string(entry.Platform))
	}
	return names
}
