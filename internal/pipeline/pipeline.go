// Package pipeline runs the bulletin ingestion end to end: classify each
// file, extract its text, parse it and merge everything into a Snapshot.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"time"

	"kpss-tercih/internal/classifier"
	"kpss-tercih/internal/fileutils"
	"kpss-tercih/internal/logging"
	"kpss-tercih/internal/merger"
	"kpss-tercih/internal/models"
	"kpss-tercih/internal/parsererror"
	"kpss-tercih/internal/pdfparser"
	"kpss-tercih/internal/positionparser"
	"kpss-tercih/internal/qualparser"
	"kpss-tercih/internal/report"
	"kpss-tercih/internal/snapshot"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// DefaultFileTimeout bounds the decoding of a single PDF.
const DefaultFileTimeout = 2 * time.Minute

// Source is one input document. Data may be nil, in which case Path is read
// when the file is processed.
type Source struct {
	Name string
	Path string
	Data []byte
}

// Options tunes a Pipeline.
type Options struct {
	Workers     int
	FileTimeout time.Duration
}

// Pipeline wires the components together. It keeps no state between runs
// and may be reused.
type Pipeline struct {
	classifier  *classifier.Classifier
	extractor   pdfparser.Extractor
	positions   *positionparser.Parser
	merger      *merger.Merger
	logger      logging.Logger
	workers     int
	fileTimeout time.Duration
}

// New creates a pipeline. Zero options select runtime.NumCPU() workers and
// DefaultFileTimeout.
func New(cls *classifier.Classifier, extractor pdfparser.Extractor, positions *positionparser.Parser,
	mrg *merger.Merger, logger logging.Logger, opts Options) *Pipeline {
	if opts.Workers < 1 {
		opts.Workers = runtime.NumCPU()
	}
	if opts.FileTimeout <= 0 {
		opts.FileTimeout = DefaultFileTimeout
	}
	return &Pipeline{
		classifier:  cls,
		extractor:   extractor,
		positions:   positions,
		merger:      mrg,
		logger:      logger,
		workers:     opts.Workers,
		fileTimeout: opts.FileTimeout,
	}
}

// fileResult is the independent output slot of one source.
type fileResult struct {
	entry          report.FileEntry
	source         string
	kind           models.BulletinKind
	qualifications []models.Qualification
	positions      []models.Position
	rejected       map[string]int
}

// SourcesFromDir lists the PDF files of dir as sources, sorted by name.
func SourcesFromDir(dir string) ([]Source, error) {
	files, err := fileutils.ListFilesWithExtension(dir, ".pdf")
	if err != nil {
		return nil, err
	}
	sources := make([]Source, 0, len(files))
	for _, f := range files {
		sources = append(sources, Source{Name: filepath.Base(f), Path: f})
	}
	return sources, nil
}

// Run processes sources concurrently and merges the results in input order,
// so the output does not depend on scheduling. Failures of single files are
// recorded in the report and never abort the run; only cancellation of ctx
// does.
func (p *Pipeline) Run(ctx context.Context, sources []Source) (*snapshot.Snapshot, *report.RunReport, error) {
	started := time.Now()
	runID := uuid.NewString()
	logger := p.logger.WithField(logging.FieldRunID, runID)
	logger.Info("Starting bulletin run",
		logging.F(logging.FieldCount, len(sources)),
		logging.F("workers", p.workers))

	results := make([]fileResult, len(sources))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for i := range sources {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = p.processFile(gctx, logger, sources[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, fmt.Errorf("run cancelled: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, fmt.Errorf("run cancelled: %w", err)
	}

	var qualBatches []merger.QualificationBatch
	var posBatches []merger.PositionBatch
	rep := report.NewRunReport(runID, started)
	for _, r := range results {
		rep.Files = append(rep.Files, r.entry)
		for reason, n := range r.rejected {
			rep.RejectedByReason[reason] += n
		}
		switch r.kind {
		case models.KindQualification:
			qualBatches = append(qualBatches, merger.QualificationBatch{Source: r.source, Records: r.qualifications})
		case models.KindPosition:
			posBatches = append(posBatches, merger.PositionBatch{Source: r.source, Records: r.positions})
		}
	}

	merged := p.merger.Merge(qualBatches, posBatches)
	snap := snapshot.New(merged.Qualifications, merged.Positions, runID)

	quals, positions := snap.Counts()
	for level, n := range quals {
		rep.QualificationsByLevel[string(level)] = n
	}
	for level, n := range positions {
		rep.PositionsByLevel[string(level)] = n
	}
	for _, c := range merged.Conflicts {
		rep.Conflicts = append(rep.Conflicts, report.Conflict{Code: c.Code, KeptFrom: c.KeptFrom, DroppedFrom: c.DropFrom})
	}
	rep.DuplicateOsymCodes = merged.DuplicateOsymCodes
	rep.TotalQualifications = len(merged.Qualifications)
	rep.TotalPositions = len(merged.Positions)
	rep.DurationMS = time.Since(started).Milliseconds()

	logger.Info("Bulletin run finished",
		logging.F("qualifications", rep.TotalQualifications),
		logging.F("positions", rep.TotalPositions),
		logging.F("failed_files", rep.CountStatus(models.FileStatusFailed)),
		logging.F(logging.FieldDuration, rep.DurationMS))
	return snap, rep, nil
}

func (p *Pipeline) processFile(ctx context.Context, logger logging.Logger, src Source) (res fileResult) {
	started := time.Now()
	name := src.Name
	if name == "" {
		name = filepath.Base(src.Path)
	}
	logger = logger.WithField(logging.FieldFile, name)

	res = fileResult{
		source: name,
		kind:   models.KindUnclassified,
		entry:  report.FileEntry{File: name, Kind: string(models.KindUnclassified)},
	}
	defer func() {
		res.entry.DurationMS = time.Since(started).Milliseconds()
	}()

	cls := p.classifier.Classify(name)
	if !cls.Classified() {
		miss := &parsererror.ClassificationMiss{File: name}
		logger.WithError(miss).Info("Skipping file")
		res.entry.Status = models.FileStatusSkipped
		res.entry.Error = miss.Error()
		return res
	}
	res.entry.Kind = string(cls.Kind)
	res.entry.Level = string(cls.Level)
	logger = logger.WithFields(
		logging.F(logging.FieldKind, string(cls.Kind)),
		logging.F(logging.FieldEducationLevel, string(cls.Level)))

	data := src.Data
	if data == nil {
		var err error
		data, err = fileutils.ReadFile(src.Path)
		if err != nil {
			return p.fail(logger, res, err)
		}
	}

	fctx, cancel := context.WithTimeout(ctx, p.fileTimeout)
	defer cancel()
	text, err := p.extractor.ExtractText(fctx, name, data)
	if err != nil {
		return p.fail(logger, res, err)
	}

	switch cls.Kind {
	case models.KindQualification:
		res.qualifications = qualparser.Parse(text, cls.Level)
		res.entry.Qualifications = len(res.qualifications)
		logger.Info("Parsed qualification bulletin", logging.F(logging.FieldCount, len(res.qualifications)))
	case models.KindPosition:
		parsed := p.positions.Parse(text, cls.Level)
		res.positions = parsed.Positions
		res.rejected = parsed.Rejected
		res.entry.Positions = len(parsed.Positions)
		res.entry.Segments = parsed.Segments
		res.entry.Rejected = parsed.RejectedTotal()
		for _, rej := range parsed.Rejections {
			logger.Debug("Rejected segment",
				logging.F(logging.FieldOsymCode, rej.OsymCode),
				logging.F(logging.FieldReason, rej.Reason),
				logging.F("snippet", rej.Snippet))
		}
		logger.Info("Parsed position table",
			logging.F(logging.FieldCount, len(parsed.Positions)),
			logging.F("segments", parsed.Segments),
			logging.F(logging.FieldRejected, parsed.RejectedTotal()))
	}
	res.kind = cls.Kind
	res.entry.Status = models.FileStatusOK
	return res
}

func (p *Pipeline) fail(logger logging.Logger, res fileResult, err error) fileResult {
	msg := "Failed to process file"
	if errors.Is(err, context.DeadlineExceeded) {
		msg = "Timed out processing file"
	}
	logger.WithError(err).Warn(msg)
	res.entry.Status = models.FileStatusFailed
	res.entry.Error = err.Error()
	return res
}
