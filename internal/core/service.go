package core

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime/debug"

	"github.com/ShirinGhmm/Thickness-files/internal/audit"
	"github.com/ShirinGhmm/Thickness-files/internal/config"
	"github.com/ShirinGhmm/Thickness-files/internal/logging"
	"github.com/ShirinGhmm/Thickness-files/internal/staging"
	"github.com/ShirinGhmm/Thickness-files/internal/thickness"
)

// Service runs the ingestion state machine for each request:
//
//	receive body -> stage artifact -> process -> release -> result
//
// Any failure is absorbed into an ErrorRecord; nothing escalates past the
// request. Requests share no mutable state beyond the audit directory and
// the staging directory, so Service is safe for concurrent use.
type Service struct {
	cfg    *config.Config
	stager *staging.Stager
	audit  *audit.Dir
	sink   AggregateSink
}

// NewService wires the orchestrator. sink may be nil to disable aggregate
// persistence.
func NewService(cfg *config.Config, auditDir *audit.Dir, sink AggregateSink) *Service {
	return &Service{
		cfg:    cfg,
		stager: staging.New(cfg.Staging.Dir),
		audit:  auditDir,
		sink:   sink,
	}
}

// TableFrom stages the payload and returns its full parsed table.
func (s *Service) TableFrom(ctx context.Context, format staging.Format, body io.Reader) (*thickness.Table, *ErrorRecord) {
	return run(ctx, s, OpTable, format, body,
		func(ctx context.Context, f *thickness.File, log *audit.Logger) (*thickness.Table, error) {
			return f.TableOfDF()
		})
}

// DatabaseValuesFrom stages the payload and returns database-ready aggregate
// values. When a sink is configured the values are also persisted;
// persistence failures are logged but do not fail the request.
func (s *Service) DatabaseValuesFrom(ctx context.Context, format staging.Format, body io.Reader) (*thickness.AggregateValues, *ErrorRecord) {
	return run(ctx, s, OpDatabaseValues, format, body,
		func(ctx context.Context, f *thickness.File, log *audit.Logger) (*thickness.AggregateValues, error) {
			agg, err := f.ThicknessMAForDatabase()
			if err != nil {
				return nil, err
			}
			if s.sink != nil {
				if err := s.sink.SaveAggregates(ctx, string(format), agg); err != nil {
					log.Error("aggregate persistence failed", "error", err.Error())
					logging.FromContext(ctx).Warn("aggregate persistence failed", "error", err)
				} else {
					log.Info("aggregate values persisted", "column", agg.Column, "count", agg.Count)
				}
			}
			return agg, nil
		})
}

// ValidateFrom stages the payload and returns a validity verdict. An invalid
// file is a normal verdict; only pipeline-level failures produce an
// ErrorRecord.
func (s *Service) ValidateFrom(ctx context.Context, format staging.Format, body io.Reader) (*thickness.Validity, *ErrorRecord) {
	return run(ctx, s, OpValidation, format, body,
		func(ctx context.Context, f *thickness.File, log *audit.Logger) (*thickness.Validity, error) {
			return f.ValidityCheck()
		})
}

// run is the state machine shared by every operation. invoke performs the
// operation's terminal processor call against the staged file.
func run[T any](
	ctx context.Context,
	s *Service,
	op Operation,
	format staging.Format,
	body io.Reader,
	invoke func(context.Context, *thickness.File, *audit.Logger) (T, error),
) (T, *ErrorRecord) {
	var zero T
	slogger := logging.FromContext(ctx).With("operation", string(op), "format", string(format))

	log, err := s.audit.Open()
	if err != nil {
		// Degrade to the process logger; the request still runs.
		slogger.Warn("audit log unavailable", "error", err)
		log = nil
	}
	defer log.Close()

	log.Info("request received", "operation", string(op), "format", string(format))

	// Receive
	data, err := io.ReadAll(body)
	if err != nil {
		return zero, s.fail(log, slogger, op, "", fmt.Errorf("read request body: %w", err))
	}

	// Stage
	path, err := s.stager.Stage(data, format)
	if err != nil {
		return zero, s.fail(log, slogger, op, "", err)
	}
	log.Info("staged artifact created", "path", path, "bytes", len(data))

	// Process
	result, err := process(ctx, s, path, log, invoke)
	if err != nil {
		return zero, s.fail(log, slogger, op, path, err)
	}
	log.Info("operation completed", "operation", string(op))

	// Cleanup-Success
	if err := s.stager.Release(path); err != nil {
		// The result exists; the leaked artifact is an audit-level problem.
		log.Error("staged artifact not deleted", "path", path, "error", err.Error())
		slogger.Warn("staged artifact not deleted", "path", path, "error", err)
	} else {
		log.Info("staged artifact deleted", "path", path)
	}

	return result, nil
}

// process constructs the processor and invokes the operation, converting
// panics from the processing layer into ordinary errors.
func process[T any](
	ctx context.Context,
	s *Service,
	path string,
	log *audit.Logger,
	invoke func(context.Context, *thickness.File, *audit.Logger) (T, error),
) (result T, err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("processor panic", "trace", string(debug.Stack()))
			err = fmt.Errorf("processor panic: %v", r)
		}
	}()

	f, err := thickness.Open(path, thickness.WithMAWindow(s.cfg.Processing.MAWindow))
	if err != nil {
		var zero T
		return zero, err
	}
	return invoke(ctx, f, log)
}

// fail records the failure with its diagnostic detail and builds the
// ErrorRecord. The staged artifact, when one exists, is retained or released
// according to the configured policy; either way the audit log explains what
// happened to it.
func (s *Service) fail(log *audit.Logger, slogger *slog.Logger, op Operation, path string, err error) *ErrorRecord {
	problematic := PlaceholderNoArtifact
	if path != "" {
		problematic = path
	}

	log.Error("request failed", "operation", string(op), "error", err.Error())
	log.Error("diagnostic trace", "trace", fmt.Sprintf("%+v", err))
	slogger.Error("request failed", "error", err, "problematic_file", problematic)

	if path != "" {
		if s.cfg.Staging.RetainOnFailure {
			log.Info("staged artifact retained for inspection", "path", path)
		} else if relErr := s.stager.Release(path); relErr != nil {
			log.Error("staged artifact not deleted", "path", path, "error", relErr.Error())
		} else {
			log.Info("staged artifact deleted", "path", path)
		}
	}

	return &ErrorRecord{
		Error:           err.Error(),
		ProblematicFile: problematic,
	}
}
