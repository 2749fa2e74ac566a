package ocr

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/otiai10/gosseract/v2"
	"go.uber.org/zap"
)

// Recognizer recovers text from a raster image. Implementations return an
// empty string, not an error, when the image simply contains no text.
type Recognizer interface {
	Recognize(ctx context.Context, image []byte) (string, error)
}

// Tesseract runs OCR through the system Tesseract engine, configured for
// a single uniform block of text with inter-word spacing preserved, which
// matches how dashboard screenshots lay out their numbers.
type Tesseract struct {
	logger *zap.Logger
}

func NewTesseract(logger *zap.Logger) *Tesseract {
	return &Tesseract{logger: logger}
}

// Recognize writes the screenshot to a temporary file, runs recognition,
// and deletes the file before returning. Nothing is persisted.
func (t *Tesseract) Recognize(ctx context.Context, image []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp("", "dashview-*.png")
	if err != nil {
		return "", fmt.Errorf("create screenshot temp file: %w", err)
	}
	path := tmp.Name()
	defer os.Remove(path)

	if _, err := tmp.Write(image); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write screenshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close screenshot: %w", err)
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetPageSegMode(gosseract.PSM_SINGLE_BLOCK); err != nil {
		return "", fmt.Errorf("set page segmentation mode: %w", err)
	}
	if err := client.SetVariable("preserve_interword_spaces", "1"); err != nil {
		return "", fmt.Errorf("set tesseract variable: %w", err)
	}
	if err := client.SetImage(path); err != nil {
		return "", fmt.Errorf("load screenshot: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("recognize text: %w", err)
	}

	text = strings.TrimSpace(text)
	t.logger.Debug("ocr pass finished", zap.Int("characters", len(text)))
	return text, nil
}
