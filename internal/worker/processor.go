package worker

import (
	"context"
	"fmt"
	"log/slog"
	"unicode/utf8"

	"github.com/cuongbtq/translate-queue/internal/translator"
	"github.com/cuongbtq/translate-queue/internal/worker/domain"
	"github.com/cuongbtq/translate-queue/shared/errs"
	"github.com/cuongbtq/translate-queue/shared/logger"
)

const logPreviewLength = 100

func preview(s string) string {
	if utf8.RuneCountInString(s) <= logPreviewLength {
		return s
	}
	return string([]rune(s)[:logPreviewLength]) + "..."
}

// processJob runs PROCESSING, translate, then COMPLETED or FAILED. Permanent
// translation errors are recorded as FAILED; anything else is returned for
// the retry policy.
func (w *Worker) processJob(ctx context.Context, job *domain.Job) error {
	log := logger.FromContext(ctx, w.logger)
	log.Info("Processing translation",
		slog.String("text", preview(job.Text)),
		slog.String("source_lang", job.SourceLang),
		slog.String("target_lang", job.TargetLang),
	)

	jobCtx, cancel := context.WithTimeout(ctx, w.jobTimeout)
	defer cancel()

	if err := w.status.Update(jobCtx, job.RequestID, domain.StatusUpdate{Status: domain.StatusProcessing}); err != nil {
		return fmt.Errorf("failed to mark translation processing: %w", err)
	}

	translated, err := w.translator.Translate(jobCtx, job.Text, job.SourceLang, job.TargetLang)
	if err != nil {
		if translator.IsPermanent(err) {
			return w.recordFailure(ctx, job, err)
		}
		return domain.Transient(err)
	}
	log.Info("Translated", slog.String("translated_text", preview(translated)))

	if err := w.status.Update(jobCtx, job.RequestID, domain.StatusUpdate{
		Status:         domain.StatusCompleted,
		TranslatedText: translated,
	}); err != nil {
		return fmt.Errorf("failed to mark translation completed: %w", err)
	}
	return nil
}

func (w *Worker) recordFailure(ctx context.Context, job *domain.Job, cause error) error {
	ctx, cancel := context.WithTimeout(ctx, w.jobTimeout)
	defer cancel()

	err := w.status.Update(ctx, job.RequestID, domain.StatusUpdate{
		Status:       domain.StatusFailed,
		ErrorMessage: cause.Error(),
		ErrorCode:    domain.ErrorCodeTranslate,
	})
	if err != nil {
		return fmt.Errorf("failed to mark translation failed: %w", err)
	}
	return errs.Mark(domain.Permanent(cause), domain.ErrFailureRecorded)
}
