// Package batch enhances every qualifying image of a source folder into a
// destination folder, one file at a time.
package batch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/txk/image-augmentor/internal/utils"
	"github.com/txk/image-augmentor/pkg/processing"
	"github.com/txk/image-augmentor/pkg/types"
)

const tracerName = "github.com/txk/image-augmentor/pkg/batch"

// ErrInvalidSettings wraps range violations found before a run starts
var ErrInvalidSettings = errors.New("invalid enhancement settings")

// Observer receives per-file outcomes, typically a metrics recorder
type Observer interface {
	ObserveFile(res types.FileResult)
	ObserveAbort()
}

// Options configures an Enhancer
type Options struct {
	FailurePolicy types.FailurePolicy
	Logger        logrus.FieldLogger
	Observer      Observer
}

// Enhancer runs the enhancement pipeline over a folder
type Enhancer struct {
	processor *processing.Processor
	policy    types.FailurePolicy
	logger    logrus.FieldLogger
	observer  Observer
}

// New creates an Enhancer. A nil processor uses default encoder options and
// an empty failure policy means FailHalt.
func New(processor *processing.Processor, opts Options) *Enhancer {
	if processor == nil {
		processor = processing.NewProcessor()
	}
	if opts.FailurePolicy == "" {
		opts.FailurePolicy = types.FailHalt
	}
	if opts.Logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		opts.Logger = l
	}
	return &Enhancer{
		processor: processor,
		policy:    opts.FailurePolicy,
		logger:    opts.Logger,
		observer:  opts.Observer,
	}
}

// Run enhances every image in s.SourceDir and writes it under the same name to
// s.DestDir.
//
// The source folder is checked before anything else: a missing or
// non-directory source returns an aborted report with a nil error even when
// other settings are invalid, and the destination is not created. Invalid
// settings or an unknown policy then fail with ErrInvalidSettings before any
// file is touched. With FailHalt the first failing file ends the run and its
// error is returned alongside the partial report. With FailContinue failures
// are recorded in the report and Run returns a nil error.
func (e *Enhancer) Run(ctx context.Context, s types.EnhancementSettings) (types.Report, error) {
	report := types.Report{
		RunID:     uuid.NewString(),
		SourceDir: s.SourceDir,
		DestDir:   s.DestDir,
	}
	log := e.logger.WithField("run_id", report.RunID)

	ctx, span := otel.Tracer(tracerName).Start(ctx, "batch.run", trace.WithAttributes(
		attribute.String("run.id", report.RunID),
		attribute.String("source.dir", s.SourceDir),
		attribute.String("dest.dir", s.DestDir),
	))
	defer span.End()

	if !utils.DirExists(s.SourceDir) {
		report.Aborted = true
		report.AbortReason = "source folder does not exist or is not a directory"
		log.WithField("source", s.SourceDir).Warn(report.AbortReason)
		span.SetAttributes(attribute.Bool("run.aborted", true))
		if e.observer != nil {
			e.observer.ObserveAbort()
		}
		return report, nil
	}

	if err := s.Validate(); err != nil {
		err = fmt.Errorf("%w: %v", ErrInvalidSettings, err)
		span.SetStatus(codes.Error, err.Error())
		return report, err
	}
	if e.policy != types.FailHalt && e.policy != types.FailContinue {
		err := fmt.Errorf("%w: unknown failure policy %q", ErrInvalidSettings, e.policy)
		span.SetStatus(codes.Error, err.Error())
		return report, err
	}

	if err := utils.EnsureDir(s.DestDir); err != nil {
		err = fmt.Errorf("create destination folder: %w", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return report, err
	}

	files, err := utils.ListImageFiles(s.SourceDir)
	if err != nil {
		err = fmt.Errorf("list source folder: %w", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return report, err
	}
	log.WithField("files", len(files)).Debug("enhancing folder")

	for _, src := range files {
		if err := ctx.Err(); err != nil {
			span.SetStatus(codes.Error, err.Error())
			return report, err
		}

		res := e.processFile(ctx, log, src, filepath.Join(s.DestDir, filepath.Base(src)), s)
		report.Files = append(report.Files, res)

		if !res.OK() && e.policy == types.FailHalt {
			err := fmt.Errorf("enhance %s: %w", res.Name, res.Err)
			span.SetStatus(codes.Error, err.Error())
			log.WithError(res.Err).WithField("file", res.Name).Error("batch halted")
			return report, err
		}
	}

	span.SetAttributes(
		attribute.Int("files.succeeded", report.Succeeded()),
		attribute.Int("files.failed", report.Failed()),
	)
	log.WithFields(logrus.Fields{
		"succeeded": report.Succeeded(),
		"failed":    report.Failed(),
		"dest":      s.DestDir,
	}).Info("batch complete")

	return report, nil
}

func (e *Enhancer) processFile(ctx context.Context, log logrus.FieldLogger, src, dst string, s types.EnhancementSettings) types.FileResult {
	_, span := otel.Tracer(tracerName).Start(ctx, "batch.file", trace.WithAttributes(
		attribute.String("file.source", src),
		attribute.String("file.dest", dst),
	))
	defer span.End()

	res := e.processor.Process(src, dst, s)
	if e.observer != nil {
		e.observer.ObserveFile(res)
	}

	flog := log.WithField("file", res.Name)
	for _, n := range res.Notices {
		flog.WithField("step", n.Step).Warn(n.Message)
	}

	if !res.OK() {
		span.RecordError(res.Err)
		span.SetStatus(codes.Error, res.Err.Error())
		if e.policy == types.FailContinue {
			flog.WithError(res.Err).Error("file failed, continuing")
		}
		return res
	}

	span.SetAttributes(
		attribute.Int("image.width", res.Width),
		attribute.Int("image.height", res.Height),
		attribute.Int64("file.bytes", res.Bytes),
	)
	flog.WithFields(logrus.Fields{
		"dest": res.DestPath,
		"size": utils.FormatFileSize(res.Bytes),
	}).Info("saved " + res.DestPath)
	return res
}
