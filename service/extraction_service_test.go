package service

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Aashish23092/workpass-ocr/dto"
	"github.com/Aashish23092/workpass-ocr/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	frontText = `WORK PERMIT
Employer: ABC Construction Pte Ltd
Name: RAHMAN MOHAMMED ABDUL
Work Permit No: 0 34773262
FIN: G1234567N
Date of Expiry: 28 Feb 2026`

	backText = `Name: RAHMAN MOHAMED ABDUL
FIN: G1234567N
Nationality: Bangladeshi
Sex: M
Date of Birth: 15/08/1990
Date of Issue: 01-03-2024`

	certText = `CERTIFICATE OF ACHIEVEMENT
This is to certify that
LIM WEI MING
FIN: G7654321K
has successfully completed
Apply Workplace Safety and Health in Construction Sites
Course Date: 13/02/2022`
)

// fakeRecognizer answers by image width so concurrent calls stay deterministic
type fakeRecognizer struct {
	byWidth map[int]string
	err     error
}

func (f *fakeRecognizer) ExtractText(ctx context.Context, img []byte) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	decoded, err := png.Decode(bytes.NewReader(img))
	if err != nil {
		return "", err
	}
	return f.byWidth[decoded.Bounds().Dx()], nil
}

func (f *fakeRecognizer) Name() string { return "fake" }

type fakePDF struct {
	text   string
	images []image.Image
}

func (f *fakePDF) ExtractText([]byte) (string, error) {
	return f.text, nil
}

func (f *fakePDF) ExtractImages([]byte) ([]image.Image, error) {
	return f.images, nil
}

// fakeStorage fails every Save after the first failAfter
type fakeStorage struct {
	failAfter int
	saved     []string
	deleted   []string
}

func (f *fakeStorage) Save(filename string, data []byte) (string, error) {
	if len(f.saved) >= f.failAfter {
		return "", errors.New("disk full")
	}
	f.saved = append(f.saved, "key_"+filename)
	return "key_" + filename, nil
}

func (f *fakeStorage) Get(key string) ([]byte, error) {
	return nil, store.ErrNotFound
}

func (f *fakeStorage) Delete(key string) error {
	f.deleted = append(f.deleted, key)
	return nil
}

func blankImage(width int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, 8))
	for x := 0; x < width; x++ {
		for y := 0; y < 8; y++ {
			img.Set(x, y, color.White)
		}
	}
	return img
}

func pngUpload(t *testing.T, name string, width int) dto.Upload {
	t.Helper()
	buf := new(bytes.Buffer)
	require.NoError(t, png.Encode(buf, blankImage(width)))
	return dto.Upload{Filename: name, MimeType: "image/png", Data: buf.Bytes()}
}

func newService(t *testing.T, rec TextRecognizer, pdf PDFProcessor, persist bool) (*ExtractionService, *store.BoltStore) {
	t.Helper()
	var (
		st      *store.BoltStore
		storage store.Storage
	)
	if persist {
		dir := t.TempDir()
		var err error
		st, err = store.NewBoltStore(filepath.Join(dir, "workers.db"))
		require.NoError(t, err)
		t.Cleanup(func() { st.Close() })
		ls, err := store.NewLocalStorage(filepath.Join(dir, "images"))
		require.NoError(t, err)
		storage = ls
	}

	cfg := Config{MaxParallel: 2, Timeout: 5 * time.Second}
	if st == nil {
		return NewExtractionService(rec, pdf, nil, nil, cfg, nil), nil
	}
	return NewExtractionService(rec, pdf, st, storage, cfg, nil), st
}

func TestExtractSubmissionMergesInUploadOrder(t *testing.T) {
	rec := &fakeRecognizer{byWidth: map[int]string{10: frontText, 20: backText}}
	svc, st := newService(t, rec, &fakePDF{}, true)

	resp, err := svc.ExtractSubmission(context.Background(), []dto.Upload{
		pngUpload(t, "front.png", 10),
		pngUpload(t, "back.png", 20),
	}, dto.HintAuto)
	require.NoError(t, err)

	require.Len(t, resp.Captures, 2)
	assert.Equal(t, "front.png", resp.Captures[0].Filename)
	assert.Equal(t, SourceOCR, resp.Captures[0].Source)
	assert.NotEmpty(t, resp.Captures[0].ImageKey)
	assert.Equal(t, "back.png", resp.Captures[1].Filename)

	m := resp.Merged
	assert.Equal(t, "work_permit", resp.DocumentType)
	assert.Equal(t, "G1234567N", *m.FinNumber)
	assert.Equal(t, "034773262", *m.WorkPermitNo)
	// the front capture wins for fields both sides print
	assert.Equal(t, "RAHMAN MOHAMMED ABDUL", *m.WorkerName)
	assert.Equal(t, "BANGLADESHI", *m.Nationality)
	assert.Equal(t, "1990-08-15", *m.DateOfBirth)
	assert.Equal(t, "2024-03-01", *m.IssueDate)
	assert.Equal(t, "2026-02-28", *m.ExpiryDate)

	assert.True(t, resp.Consistency.NameMatch)
	assert.True(t, resp.Consistency.IdentifierMatch)
	assert.Greater(t, resp.Consistency.NameSimilarity, 0.9)
	assert.NotEmpty(t, resp.SubmissionID)

	assert.True(t, resp.Persisted)
	w, err := st.GetWorker("g1234567n")
	require.NoError(t, err)
	assert.Equal(t, m.WorkerName, w.Record.WorkerName)
	assert.Len(t, w.ImageKeys, 2)
}

func TestExtractSubmissionCertificationIsLinked(t *testing.T) {
	rec := &fakeRecognizer{byWidth: map[int]string{10: certText}}
	svc, st := newService(t, rec, &fakePDF{}, true)

	resp, err := svc.ExtractSubmission(context.Background(), []dto.Upload{pngUpload(t, "cert.png", 10)}, dto.HintCertification)
	require.NoError(t, err)
	assert.True(t, resp.Persisted)
	assert.Equal(t, "certification", resp.DocumentType)

	_, err = st.GetWorker("G7654321K")
	assert.ErrorIs(t, err, store.ErrNotFound)

	profile, err := svc.WorkerProfile("G7654321K")
	require.NoError(t, err)
	assert.Nil(t, profile.Worker)
	require.Len(t, profile.Certifications, 1)
	assert.Equal(t, "2022-02-13", *profile.Certifications[0].Record.IssueDate)
}

func TestExtractSubmissionWithoutIdentifierIsNotPersisted(t *testing.T) {
	rec := &fakeRecognizer{byWidth: map[int]string{10: "NAME: JOHN TAN"}}
	svc, _ := newService(t, rec, &fakePDF{}, true)

	resp, err := svc.ExtractSubmission(context.Background(), []dto.Upload{pngUpload(t, "a.png", 10)}, dto.HintAuto)
	require.NoError(t, err)
	assert.False(t, resp.Persisted)
	assert.Equal(t, "JOHN TAN", *resp.Merged.WorkerName)
}

func TestExtractSubmissionErrors(t *testing.T) {
	svc, _ := newService(t, &fakeRecognizer{err: errors.New("engine down")}, &fakePDF{}, false)
	ctx := context.Background()

	_, err := svc.ExtractSubmission(ctx, nil, dto.HintAuto)
	assert.ErrorIs(t, err, dto.ErrNoFiles)

	_, err = svc.ExtractSubmission(ctx, []dto.Upload{{Filename: "a.txt", MimeType: "text/plain", Data: []byte("x")}}, dto.HintAuto)
	assert.ErrorIs(t, err, dto.ErrUnsupportedFileType)

	_, err = svc.ExtractSubmission(ctx, []dto.Upload{pngUpload(t, "a.png", 10)}, dto.HintAuto)
	assert.ErrorIs(t, err, ErrNoText)

	_, err = svc.ExtractSubmission(ctx, []dto.Upload{{Filename: "a.png", MimeType: "image/png", Data: []byte("not a png")}}, dto.HintAuto)
	assert.Error(t, err)
}

func TestExtractSubmissionFailureStoresNoImages(t *testing.T) {
	dir := t.TempDir()
	storage, err := store.NewLocalStorage(dir)
	require.NoError(t, err)
	rec := &fakeRecognizer{byWidth: map[int]string{10: frontText}}
	svc := NewExtractionService(rec, &fakePDF{}, nil, storage, Config{MaxParallel: 2}, nil)

	_, err = svc.ExtractSubmission(context.Background(), []dto.Upload{
		pngUpload(t, "front.png", 10),
		{Filename: "back.png", MimeType: "image/png", Data: []byte("not a png")},
	}, dto.HintAuto)
	require.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestExtractSubmissionStorageFailureRemovesSavedImages(t *testing.T) {
	storage := &fakeStorage{failAfter: 1}
	rec := &fakeRecognizer{byWidth: map[int]string{10: frontText, 20: backText}}
	svc := NewExtractionService(rec, &fakePDF{}, nil, storage, Config{MaxParallel: 2}, nil)

	_, err := svc.ExtractSubmission(context.Background(), []dto.Upload{
		pngUpload(t, "front.png", 10),
		pngUpload(t, "back.png", 20),
	}, dto.HintAuto)
	require.Error(t, err)
	assert.Equal(t, []string{"key_front.png"}, storage.saved)
	assert.Equal(t, storage.saved, storage.deleted)
}

func TestExtractFilePDFTextLayerSkipsOCR(t *testing.T) {
	rec := &fakeRecognizer{byWidth: map[int]string{30: backText}}
	pdf := &fakePDF{text: frontText, images: []image.Image{blankImage(30)}}
	svc, _ := newService(t, rec, pdf, false)

	captures, err := svc.ExtractFile(context.Background(), dto.Upload{Filename: "wp.pdf", MimeType: "application/pdf", Data: []byte("%PDF")}, dto.HintAuto)
	require.NoError(t, err)
	require.Len(t, captures, 1)
	assert.Equal(t, SourcePDFText, captures[0].Source)
	assert.Equal(t, "034773262", *captures[0].Record.WorkPermitNo)
	assert.Greater(t, captures[0].Quality.Score, 50.0)
}

func TestExtractFileScannedPDF(t *testing.T) {
	rec := &fakeRecognizer{byWidth: map[int]string{30: frontText, 40: backText}}
	pdf := &fakePDF{text: " \n ", images: []image.Image{blankImage(30), blankImage(40)}}
	svc, _ := newService(t, rec, pdf, false)

	captures, err := svc.ExtractFile(context.Background(), dto.Upload{Filename: "scan.pdf", MimeType: "application/pdf", Data: []byte("%PDF")}, dto.HintAuto)
	require.NoError(t, err)
	require.Len(t, captures, 2)
	assert.Equal(t, SourceOCR, captures[0].Source)
	assert.Equal(t, "034773262", *captures[0].Record.WorkPermitNo)
	assert.Equal(t, SourceOCR, captures[1].Source)
	assert.Equal(t, "BANGLADESHI", *captures[1].Record.Nationality)
}

func TestExtractTextReportsInconsistencies(t *testing.T) {
	svc, _ := newService(t, &fakeRecognizer{}, &fakePDF{}, false)

	resp := svc.ExtractText([]string{
		"NAME: JOHN TAN\nFIN: G1234567N",
		"NAME: MARY LIM\nFIN: S7654321A",
	}, dto.HintAuto)

	require.Len(t, resp.Captures, 2)
	assert.Equal(t, SourceText, resp.Captures[0].Source)
	assert.Equal(t, "JOHN TAN", *resp.Merged.WorkerName)
	assert.Equal(t, "G1234567N", *resp.Merged.FinNumber)
	assert.False(t, resp.Consistency.NameMatch)
	assert.False(t, resp.Consistency.IdentifierMatch)
	assert.Len(t, resp.Consistency.Notes, 2)
	assert.False(t, resp.Persisted)
}

func TestExportWorkers(t *testing.T) {
	rec := &fakeRecognizer{byWidth: map[int]string{10: frontText}}
	svc, _ := newService(t, rec, &fakePDF{}, true)

	_, err := svc.ExtractSubmission(context.Background(), []dto.Upload{pngUpload(t, "front.png", 10)}, dto.HintAuto)
	require.NoError(t, err)

	data, err := svc.ExportWorkers()
	require.NoError(t, err)
	// xlsx files are zip archives
	assert.True(t, bytes.HasPrefix(data, []byte("PK")))
}

func TestWorkerProfileWithoutStore(t *testing.T) {
	svc, _ := newService(t, &fakeRecognizer{}, &fakePDF{}, false)

	_, err := svc.WorkerProfile("G1234567N")
	assert.ErrorIs(t, err, store.ErrNotFound)
}
