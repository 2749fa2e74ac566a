package scraper

import (
	"context"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/user/dashboard-scraper/internal/browser"
	"github.com/user/dashboard-scraper/internal/domain"
	"github.com/user/dashboard-scraper/internal/ocr"
)

// ViewRecognizer captures the current view as a full-page screenshot and
// recovers its text through OCR. This is the fallback for data the DOM
// extractor cannot see: canvas-drawn charts and image-based scorecards.
type ViewRecognizer struct {
	rec    ocr.Recognizer
	logger *zap.Logger
}

func NewViewRecognizer(rec ocr.Recognizer, logger *zap.Logger) *ViewRecognizer {
	return &ViewRecognizer{rec: rec, logger: logger}
}

// Recognize scrolls to the top first so every capture starts from the
// same frame, then screenshots and recognizes. Failures and textless
// views both yield nil: OCR is strictly best-effort.
func (v *ViewRecognizer) Recognize(ctx context.Context, page browser.Page, sourceTab string) *domain.OcrExtraction {
	if err := page.Evaluate(ctx, windowScrollTopScript, nil); err != nil {
		v.logger.Debug("scroll to top before screenshot failed", zap.Error(err))
	}
	sleep(ctx, time.Second)

	image, err := page.Screenshot(ctx)
	if err != nil {
		v.logger.Warn("screenshot failed, skipping ocr for view",
			zap.String("source_tab", sourceTab), zap.Error(err))
		return nil
	}

	text, err := v.rec.Recognize(ctx, image)
	if err != nil {
		v.logger.Warn("ocr failed for view",
			zap.String("source_tab", sourceTab), zap.Error(err))
		return nil
	}
	if text == "" {
		v.logger.Info("ocr found no text in view", zap.String("source_tab", sourceTab))
		return nil
	}

	charCount := utf8.RuneCountInString(text)
	v.logger.Info("ocr extracted text",
		zap.String("source_tab", sourceTab), zap.Int("characters", charCount))
	return &domain.OcrExtraction{
		SourceTab: sourceTab,
		Text:      text,
		CharCount: charCount,
	}
}
