package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"log/slog"
	"strings"
	"time"

	"github.com/dgallion1/docstruct/internal/chunker"
	"github.com/dgallion1/docstruct/internal/docmodel"
	"github.com/dgallion1/docstruct/internal/extractor"
)

// Worker processes a single chunking job: extraction, structural
// inference, and the merge into output records.
type Worker struct {
	registry *extractor.Registry
	log      *slog.Logger
}

func NewWorker(registry *extractor.Registry, log *slog.Logger) *Worker {
	return &Worker{
		registry: registry,
		log:      log,
	}
}

// Process runs the full pipeline for a job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "filename", job.Filename)

	job.SetStatus(StatusExtracting, "extracting")
	ext, err := w.registry.ForFile(job.Filename)
	if err != nil {
		log.Error("unsupported format", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "extracting")
		return
	}

	res, err := w.extract(ctx, log, ext, job)
	if err != nil {
		log.Error("extraction failed", "error", err)
		job.AddError(fmt.Sprintf("extract: %s", err))
		job.SetStatus(StatusFailed, "extracting")
		return
	}

	// Tables lead the output, in source order, before the text chunks.
	records := make([]docmodel.Record, 0, len(res.Tables))
	for _, t := range res.Tables {
		records = append(records, docmodel.Record{
			ID:        generateULID(),
			Type:      docmodel.RecordTable,
			Text:      t.Markup,
			Positions: t.Positions,
		})
	}

	if res.Hierarchical {
		qaRecords, err := unitRecords(res.Units)
		if err != nil {
			log.Error("unit encoding failed", "error", err)
			job.AddError(fmt.Sprintf("units: %s", err))
			job.SetStatus(StatusFailed, "extracting")
			return
		}
		records = append(records, qaRecords...)
	} else {
		job.SetStatus(StatusMerging, "merging")
		chunkRecords, err := mergeRecords(res)
		if err != nil {
			log.Error("structural inference failed", "error", err)
			job.AddError(fmt.Sprintf("merge: %s", err))
			job.SetStatus(StatusFailed, "merging")
			return
		}
		records = append(records, chunkRecords...)
	}

	job.SetRecords(records)
	job.SetProgress(1, "done")
	job.SetStatus(StatusCompleted, "done")
	log.Info("job completed", "tables", len(res.Tables), "records", len(records))
}

// extract runs the extraction path, retrying transient collaborator
// failures with backoff.
func (w *Worker) extract(ctx context.Context, log *slog.Logger, ext extractor.Extractor, job *Job) (*extractor.Result, error) {
	progress := func(pct float64, msg string) {
		job.SetProgress(pct, msg)
	}

	var res *extractor.Result
	var lastErr error
	for attempt := 0; attempt < MaxRetries; attempt++ {
		res, lastErr = ext.Extract(ctx, job.Filename, job.FileData(), job.Options, progress)
		if lastErr == nil || !IsRetryable(lastErr) {
			break
		}
		log.Warn("retryable extraction error", "attempt", attempt, "error", lastErr)
		select {
		case <-time.After(Backoff(attempt)):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if lastErr != nil {
		return nil, lastErr
	}
	return res, nil
}

// mergeRecords runs structural inference over the extracted blocks and
// merges them into chunk records with recovered positions. Table markup
// joins the stream with the wildcard section id, so a table also lands
// inside whichever chunk surrounds it in reading order.
func mergeRecords(res *extractor.Result) ([]docmodel.Record, error) {
	sections := make([]int, len(res.Blocks))
	if !res.Unsectioned {
		levels, pivot, err := chunker.Levels(res.Blocks, res.Outline)
		if err != nil {
			return nil, err
		}
		sections = chunker.AssignSections(levels, pivot)
	}

	items := make([]chunker.Item, 0, len(res.Blocks)+len(res.Tables))
	for i, b := range res.Blocks {
		items = append(items, chunker.Item{
			Text:      b.Text,
			SectionID: sections[i],
			Positions: b.Positions,
		})
	}
	for _, t := range res.Tables {
		items = append(items, chunker.Item{
			Text:      t.Markup,
			SectionID: chunker.TableSection,
			Positions: t.Positions,
		})
	}

	var records []docmodel.Record
	for _, chunk := range chunker.Merge(items, chunker.EstimateTokens) {
		clean, positions := docmodel.ExtractTags(chunk)
		if strings.TrimSpace(clean) == "" {
			continue
		}
		records = append(records, docmodel.Record{
			ID:        generateULID(),
			Type:      docmodel.RecordChunk,
			Text:      clean,
			Positions: positions,
		})
	}
	return records, nil
}

// unitRecords turns reconstructed question/answer units into records.
// The record text is the heading path joined top-down, then the answer;
// an undescribed image travels as PNG bytes.
func unitRecords(units []docmodel.QAUnit) ([]docmodel.Record, error) {
	var records []docmodel.Record
	for _, u := range units {
		text := strings.Join(u.HeadingPath, "\n")
		if u.Answer != "" {
			text += "\n" + u.Answer
		}
		rec := docmodel.Record{
			ID:   generateULID(),
			Type: docmodel.RecordQA,
			Text: text,
		}
		if u.Image != nil {
			var buf bytes.Buffer
			if err := png.Encode(&buf, u.Image); err != nil {
				return nil, fmt.Errorf("encode unit image: %w", err)
			}
			rec.ImagePNG = buf.Bytes()
		}
		records = append(records, rec)
	}
	return records, nil
}
