package service

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"strings"
	"time"

	"github.com/Aashish23092/workpass-ocr/dto"
	"github.com/Aashish23092/workpass-ocr/export"
	"github.com/Aashish23092/workpass-ocr/store"
	"github.com/Aashish23092/workpass-ocr/utils"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// TextRecognizer turns one image into raw text
type TextRecognizer interface {
	ExtractText(ctx context.Context, img []byte) (string, error)
	Name() string
}

// Capture sources
const (
	SourceOCR     = "ocr"
	SourcePDFText = "pdf_text"
	SourceQR      = "qr"
	SourceText    = "text"
)

// a PDF text layer shorter than this is treated as a scanned document
const minTextLayer = 20

// ErrNoText is returned when no capture of an upload produced any text
var ErrNoText = errors.New("no text could be extracted from the file")

// Config tunes the submission pipeline
type Config struct {
	MaxParallel int
	Timeout     time.Duration
	MaxFileSize int64
}

// ExtractionService runs uploads through OCR and the extraction engine.
// Store and Storage are optional; without them nothing is persisted.
type ExtractionService struct {
	recognizer   TextRecognizer
	pdfProcessor PDFProcessor
	store        store.Store
	storage      store.Storage
	cfg          Config
	logger       *slog.Logger
	now          func() time.Time
}

// NewExtractionService creates a new ExtractionService instance
func NewExtractionService(recognizer TextRecognizer, pdfProcessor PDFProcessor, st store.Store, storage store.Storage, cfg Config, logger *slog.Logger) *ExtractionService {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxParallel <= 0 {
		cfg.MaxParallel = 4
	}
	return &ExtractionService{
		recognizer:   recognizer,
		pdfProcessor: pdfProcessor,
		store:        st,
		storage:      storage,
		cfg:          cfg,
		logger:       logger,
		now:          time.Now,
	}
}

// ExtractText runs the engine over already recognised texts. Captures are
// merged in the order given and nothing is persisted.
func (s *ExtractionService) ExtractText(texts []string, hint dto.DocumentTypeHint) *dto.SubmissionResponse {
	captures := make([]dto.CaptureResult, 0, len(texts))
	for _, text := range texts {
		captures = append(captures, s.capture("", SourceText, text, hint))
	}
	return s.buildResponse(captures)
}

// ExtractFile produces the captures of one upload: the PDF text layer or the
// OCR text of each page/image first, then any QR code text.
func (s *ExtractionService) ExtractFile(ctx context.Context, upload dto.Upload, hint dto.DocumentTypeHint) ([]dto.CaptureResult, error) {
	var images []image.Image
	var texts []dto.CaptureResult
	ocrPages := true

	if strings.Contains(strings.ToLower(upload.MimeType), "pdf") {
		text, err := s.pdfProcessor.ExtractText(upload.Data)
		if err != nil {
			s.logger.Warn("pdf text layer unreadable", "file", upload.Filename, "error", err)
		}
		if len(strings.TrimSpace(text)) >= minTextLayer {
			texts = append(texts, s.capture(upload.Filename, SourcePDFText, text, hint))
			ocrPages = false
		} else {
			s.logger.Debug("pdf has no usable text layer, running OCR on page images", "file", upload.Filename)
		}

		images, err = s.pdfProcessor.ExtractImages(upload.Data)
		if err != nil {
			s.logger.Warn("pdf images unreadable", "file", upload.Filename, "error", err)
		}
	} else {
		img, err := decodeImage(upload.Data, upload.MimeType)
		if err != nil {
			return nil, fmt.Errorf("failed to decode image %s: %w", upload.Filename, err)
		}
		images = []image.Image{img}
	}

	var qrCaptures []dto.CaptureResult
	for idx, img := range images {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if ocrPages {
			s.recognizePage(ctx, upload.Filename, idx, img, hint, &texts)
		}

		if qr, err := decodeQR(img); err == nil && strings.TrimSpace(qr) != "" {
			s.logger.Debug("qr code decoded", "file", upload.Filename, "page", idx+1, "bytes", len(qr))
			qrCaptures = append(qrCaptures, s.capture(upload.Filename, SourceQR, qr, hint))
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	captures := append(texts, qrCaptures...)
	if len(captures) == 0 {
		return nil, fmt.Errorf("%s: %w", upload.Filename, ErrNoText)
	}
	return captures, nil
}

// recognizePage OCRs one page. Failures are logged and the page skipped.
func (s *ExtractionService) recognizePage(ctx context.Context, filename string, idx int, img image.Image, hint dto.DocumentTypeHint, texts *[]dto.CaptureResult) {
	pngData, err := encodePNG(img)
	if err != nil {
		s.logger.Warn("page encode failed", "file", filename, "page", idx+1, "error", err)
		return
	}

	text, err := s.recognizer.ExtractText(ctx, pngData)
	switch {
	case err != nil:
		s.logger.Warn("ocr failed", "file", filename, "page", idx+1, "recognizer", s.recognizer.Name(), "error", err)
	case strings.TrimSpace(text) != "":
		*texts = append(*texts, s.capture(filename, SourceOCR, text, hint))
	}
}

func (s *ExtractionService) capture(filename, source, text string, hint dto.DocumentTypeHint) dto.CaptureResult {
	result := utils.ExtractRecord(text, hint)
	return dto.CaptureResult{
		Filename:         filename,
		Source:           source,
		Quality:          evaluateCapture(text, result.Record),
		ExtractionResult: result,
	}
}

// ExtractSubmission extracts every upload concurrently and merges the
// captures in upload order. When a store is configured the merged record is
// saved as a worker, or as a certification when the submission is a
// certificate only.
func (s *ExtractionService) ExtractSubmission(ctx context.Context, uploads []dto.Upload, hint dto.DocumentTypeHint) (*dto.SubmissionResponse, error) {
	if len(uploads) == 0 {
		return nil, dto.ErrNoFiles
	}
	for i := range uploads {
		if err := uploads[i].Validate(s.cfg.MaxFileSize); err != nil {
			return nil, fmt.Errorf("%s: %w", uploads[i].Filename, err)
		}
	}

	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	start := s.now()
	results := make([][]dto.CaptureResult, len(uploads))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.MaxParallel)
	for i := range uploads {
		g.Go(func() error {
			captures, err := s.ExtractFile(gctx, uploads[i], hint)
			if err != nil {
				return err
			}
			results[i] = captures
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// images are kept only once every upload extracted
	imageKeys, err := s.saveUploads(uploads)
	if err != nil {
		return nil, err
	}

	var captures []dto.CaptureResult
	for i, r := range results {
		if imageKeys != nil {
			for j := range r {
				r[j].ImageKey = imageKeys[i]
			}
		}
		captures = append(captures, r...)
	}
	resp := s.buildResponse(captures)

	if s.store != nil {
		persisted, err := s.persist(resp, imageKeys)
		if err != nil {
			s.discardUploads(imageKeys)
			return nil, err
		}
		resp.Persisted = persisted
	}

	s.logger.Info("submission extracted",
		"submission_id", resp.SubmissionID,
		"files", len(uploads),
		"captures", len(captures),
		"document_type", resp.DocumentType,
		"persisted", resp.Persisted,
		"elapsed_ms", s.now().Sub(start).Milliseconds(),
	)
	return resp, nil
}

// saveUploads stores every upload in order. On failure the files already
// saved are removed again.
func (s *ExtractionService) saveUploads(uploads []dto.Upload) ([]string, error) {
	if s.storage == nil {
		return nil, nil
	}
	keys := make([]string, 0, len(uploads))
	for _, u := range uploads {
		key, err := s.storage.Save(u.Filename, u.Data)
		if err != nil {
			s.discardUploads(keys)
			return nil, fmt.Errorf("storing %s: %w", u.Filename, err)
		}
		keys = append(keys, key)
	}
	return keys, nil
}

func (s *ExtractionService) discardUploads(keys []string) {
	for _, key := range keys {
		if err := s.storage.Delete(key); err != nil {
			s.logger.Warn("stored image not removed", "key", key, "error", err)
		}
	}
}

func (s *ExtractionService) buildResponse(captures []dto.CaptureResult) *dto.SubmissionResponse {
	records := make([]dto.ExtractedRecord, len(captures))
	results := make([]dto.ExtractionResult, len(captures))
	for i, c := range captures {
		records[i] = c.Record
		results[i] = c.ExtractionResult
	}
	flags := utils.MergeFlags(results)

	if captures == nil {
		captures = []dto.CaptureResult{}
	}
	return &dto.SubmissionResponse{
		SubmissionID: uuid.NewString(),
		DocumentType: flags.Kind(),
		Flags:        flags,
		Captures:     captures,
		Merged:       utils.MergeRecords(records),
		Consistency:  checkConsistency(records),
		ProcessedAt:  s.now().UTC().Format(time.RFC3339),
	}
}

// persist stores the merged record. Records without an identifier are skipped.
func (s *ExtractionService) persist(resp *dto.SubmissionResponse, imageKeys []string) (bool, error) {
	fin := ""
	if resp.Merged.FinNumber != nil {
		fin = *resp.Merged.FinNumber
	}
	if fin == "" {
		s.logger.Info("submission not persisted: no FIN/NRIC", "submission_id", resp.SubmissionID)
		return false, nil
	}

	if resp.Flags.Certification && !resp.Flags.WorkPermit && !resp.Flags.IdentityCard {
		if _, err := s.store.AddCertification(fin, resp.Merged, imageKeys); err != nil {
			return false, fmt.Errorf("saving certification: %w", err)
		}
		return true, nil
	}
	if _, err := s.store.UpsertWorker(fin, resp.Merged, imageKeys); err != nil {
		return false, fmt.Errorf("saving worker: %w", err)
	}
	return true, nil
}

// checkConsistency compares names and identifiers across captures. It only
// reports; the merged record is never changed.
func checkConsistency(records []dto.ExtractedRecord) dto.ConsistencyReport {
	report := dto.ConsistencyReport{NameMatch: true, IdentifierMatch: true, Notes: []string{}}

	var names, ids []string
	for _, r := range records {
		if r.WorkerName != nil {
			names = append(names, *r.WorkerName)
		}
		if r.FinNumber != nil {
			ids = append(ids, *r.FinNumber)
		}
	}

	if len(names) < 2 {
		report.NameSimilarity = 1
	} else {
		report.NameSimilarity = 1
		for _, other := range names[1:] {
			report.NameSimilarity = min(report.NameSimilarity, utils.NameSimilarity(names[0], other))
			if !utils.CompareNames(names[0], other) {
				report.NameMatch = false
				report.Notes = append(report.Notes, fmt.Sprintf("name %q does not match %q", other, names[0]))
			}
		}
	}

	for _, id := range ids[min(1, len(ids)):] {
		if !strings.EqualFold(id, ids[0]) {
			report.IdentifierMatch = false
			report.Notes = append(report.Notes, fmt.Sprintf("identifier %s differs from %s", id, ids[0]))
		}
	}
	return report
}

// WorkerProfile returns a stored worker with its certifications
func (s *ExtractionService) WorkerProfile(fin string) (*dto.WorkerProfile, error) {
	if s.store == nil {
		return nil, store.ErrNotFound
	}

	worker, err := s.store.GetWorker(fin)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	certs, err := s.store.ListCertifications(fin)
	if err != nil {
		return nil, err
	}
	if worker == nil && len(certs) == 0 {
		return nil, fmt.Errorf("worker %s: %w", fin, store.ErrNotFound)
	}
	return &dto.WorkerProfile{Worker: worker, Certifications: certs}, nil
}

// ExportWorkers builds an XLSX workbook of every stored worker and certification
func (s *ExtractionService) ExportWorkers() ([]byte, error) {
	var workerRows, certRows []export.Row
	if s.store != nil {
		workers, err := s.store.ListWorkers()
		if err != nil {
			return nil, fmt.Errorf("listing workers: %w", err)
		}
		for _, w := range workers {
			workerRows = append(workerRows, export.Row{Key: w.FIN, Record: w.Record, UpdatedAt: w.UpdatedAt})
		}

		certs, err := s.store.AllCertifications()
		if err != nil {
			return nil, fmt.Errorf("listing certifications: %w", err)
		}
		for _, c := range certs {
			certRows = append(certRows, export.Row{Key: c.FIN + "/" + c.ID, Record: c.Record, UpdatedAt: c.CreatedAt})
		}
	}

	data, err := export.RecordsXLSX(
		export.Sheet{Name: "Workers", Rows: workerRows},
		export.Sheet{Name: "Certifications", Rows: certRows},
	)
	if err != nil {
		return nil, err
	}
	s.logger.Info("workers exported", "workers", len(workerRows), "certifications", len(certRows))
	return data, nil
}
