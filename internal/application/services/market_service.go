package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"tbtc-market-service/internal/domain/entities"
	"tbtc-market-service/internal/domain/interfaces"
	"tbtc-market-service/internal/infrastructure/logging"
	"tbtc-market-service/internal/infrastructure/metrics"
)

// DefaultProcessLabel is how the upstream process is named in error details
const DefaultProcessLabel = "node script"

// snapshotSaveTimeout bounds the best-effort snapshot write after a success
const snapshotSaveTimeout = 2 * time.Second

// marketService implements the MarketService interface
type marketService struct {
	runner interfaces.ProcessRunner
	store  interfaces.SnapshotStore
	label  string
	logger logging.UpstreamLogger
	now    func() time.Time
}

// NewMarketService creates a new instance of the market service.
// store may be nil, in which case no snapshot is kept.
func NewMarketService(runner interfaces.ProcessRunner, store interfaces.SnapshotStore, label string, logger logging.UpstreamLogger) interfaces.MarketService {
	if label == "" {
		label = DefaultProcessLabel
	}
	if logger == nil {
		logger = logging.Upstream()
	}

	return &marketService{
		runner: runner,
		store:  store,
		label:  label,
		logger: logger,
		now:    time.Now,
	}
}

// FetchMarket runs the upstream process once and classifies its outcome.
// No retries, no cached fallback: every call is one fresh invocation.
func (s *marketService) FetchMarket(ctx context.Context) (*entities.MarketDocument, error) {
	// A disconnecting caller must not kill the process; only the runner timeout bounds it
	ctx = context.WithoutCancel(ctx)

	done := metrics.TrackUpstreamInFlight()
	defer done()

	commandLine := s.runner.CommandLine()
	fetchedAt := s.now()

	result, runErr := s.runner.Run(ctx)

	var duration time.Duration
	if result != nil {
		duration = result.Duration
	}
	durationMs := float64(duration.Microseconds()) / 1000

	doc, err := s.classify(commandLine, result, runErr)
	if err != nil {
		outcome := outcomeFor(err)
		metrics.RecordUpstreamInvocation(outcome, duration.Seconds(), 0)
		s.logger.ProcessFailed(ctx, commandLine, outcome, stderrOf(err), err, durationMs)
		return nil, err
	}

	metrics.RecordUpstreamInvocation(metrics.OutcomeSuccess, duration.Seconds(), len(doc.Raw))
	s.logger.ProcessCompleted(ctx, commandLine, result.ExitCode, durationMs, len(result.Stdout))

	s.saveSnapshot(ctx, entities.NewMarketSnapshot(doc, fetchedAt, duration))

	return doc, nil
}

// classify maps the runner outcome onto the upstream error taxonomy.
// Order matters: timeout, then exit status, then output checks.
func (s *marketService) classify(commandLine string, result *entities.ProcessResult, runErr error) (*entities.MarketDocument, error) {
	if runErr != nil {
		if errors.Is(runErr, context.DeadlineExceeded) {
			return nil, entities.NewTimeoutError(commandLine, runErr)
		}
		return nil, entities.NewProcessError(s.label, runErr.Error(), runErr)
	}

	if result == nil {
		return nil, entities.NewProcessError(s.label, "no result from upstream process", nil)
	}

	if !result.Succeeded() {
		return nil, entities.NewProcessError(s.label, result.Stderr, fmt.Errorf("exit status %d", result.ExitCode))
	}

	stdout := bytes.TrimSpace([]byte(result.Stdout))
	if len(stdout) == 0 {
		return nil, entities.NewEmptyResponseError(commandLine)
	}

	// Unmarshal into RawMessage rejects trailing data, so only a single JSON value passes
	var raw json.RawMessage
	if err := json.Unmarshal(stdout, &raw); err != nil {
		return nil, entities.NewMalformedResponseError(s.label, err, string(stdout))
	}

	return entities.NewMarketDocument(stdout), nil
}

// saveSnapshot stores the snapshot without letting a store failure reach the caller
func (s *marketService) saveSnapshot(ctx context.Context, snapshot *entities.MarketSnapshot) {
	if s.store == nil {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, snapshotSaveTimeout)
	defer cancel()

	if err := s.store.Save(ctx, snapshot); err != nil {
		s.logger.WarnWithError(ctx, "Failed to save market snapshot", err, logging.Fields{
			"fetched_at": snapshot.FetchedAt,
		})
	}
}

// LastSnapshot returns the last successful document without invoking the upstream process
func (s *marketService) LastSnapshot(ctx context.Context) (*entities.MarketSnapshot, error) {
	if s.store == nil {
		return nil, entities.ErrSnapshotNotFound
	}

	snapshot, err := s.store.Load(ctx)
	if err != nil {
		if errors.Is(err, entities.ErrSnapshotNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to load market snapshot: %w", err)
	}

	metrics.UpdateSnapshotAge(s.now().Sub(snapshot.FetchedAt).Seconds())
	return snapshot, nil
}

// stderrOf returns the stderr captured for a failed invocation, if any
func stderrOf(err error) string {
	var upstreamErr *entities.UpstreamError
	if errors.As(err, &upstreamErr) {
		return upstreamErr.Stderr
	}
	return ""
}

// outcomeFor returns the metrics label for an upstream error
func outcomeFor(err error) string {
	switch {
	case errors.Is(err, entities.ErrUpstreamTimeout):
		return metrics.OutcomeTimeout
	case errors.Is(err, entities.ErrEmptyUpstreamResponse):
		return metrics.OutcomeEmpty
	case errors.Is(err, entities.ErrMalformedUpstreamResponse):
		return metrics.OutcomeMalformed
	default:
		return metrics.OutcomeProcessError
	}
}
