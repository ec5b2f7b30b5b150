package store

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/Aashish23092/workpass-ocr/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *BoltStore {
	t.Helper()
	s, err := NewBoltStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestUpsertWorkerMergesIncomingFirst(t *testing.T) {
	s := newTestStore(t)

	_, err := s.UpsertWorker("g1234567n", dto.ExtractedRecord{
		WorkerName:  dto.Optional("RAHMAN MOHAMMED"),
		Nationality: dto.Optional("BANGLADESHI"),
		ExpiryDate:  dto.Optional("2024-02-28"),
	}, []string{"a.jpg"})
	require.NoError(t, err)

	w, err := s.UpsertWorker("G1234567N", dto.ExtractedRecord{
		ExpiryDate:   dto.Optional("2026-02-28"),
		EmployerName: dto.Optional("ABC Construction Pte Ltd"),
	}, []string{"b.jpg"})
	require.NoError(t, err)

	assert.Equal(t, "G1234567N", w.FIN)
	assert.Equal(t, "G1234567N", *w.Record.FinNumber)
	assert.Equal(t, "RAHMAN MOHAMMED", *w.Record.WorkerName)
	assert.Equal(t, "BANGLADESHI", *w.Record.Nationality)
	assert.Equal(t, "2026-02-28", *w.Record.ExpiryDate)
	assert.Equal(t, "ABC Construction Pte Ltd", *w.Record.EmployerName)
	assert.Equal(t, []string{"a.jpg", "b.jpg"}, w.ImageKeys)
	assert.False(t, w.UpdatedAt.Before(w.CreatedAt))

	got, err := s.GetWorker(" g1234567n ")
	require.NoError(t, err)
	assert.Equal(t, w.Record, got.Record)
}

func TestUpsertWorkerWithoutIdentifier(t *testing.T) {
	s := newTestStore(t)

	_, err := s.UpsertWorker("  ", dto.ExtractedRecord{WorkerName: dto.Optional("JOHN TAN")}, nil)
	assert.ErrorIs(t, err, ErrNoIdentifier)

	_, err = s.AddCertification("", dto.ExtractedRecord{}, nil)
	assert.ErrorIs(t, err, ErrNoIdentifier)
}

func TestGetWorkerNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetWorker("S0000000A")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestListWorkers(t *testing.T) {
	s := newTestStore(t)

	workers, err := s.ListWorkers()
	require.NoError(t, err)
	assert.Empty(t, workers)

	for _, fin := range []string{"S1234567D", "G1234567N"} {
		_, err := s.UpsertWorker(fin, dto.ExtractedRecord{}, nil)
		require.NoError(t, err)
	}

	workers, err = s.ListWorkers()
	require.NoError(t, err)
	require.Len(t, workers, 2)
	assert.Equal(t, "G1234567N", workers[0].FIN)
	assert.Equal(t, "S1234567D", workers[1].FIN)
}

func TestCertificationsArePerWorker(t *testing.T) {
	s := newTestStore(t)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	s.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}

	first, err := s.AddCertification("g7654321k", dto.ExtractedRecord{CourseTitle: dto.Optional("Working at Height")}, []string{"c1.png"})
	require.NoError(t, err)
	_, err = s.AddCertification("G7654321K", dto.ExtractedRecord{CourseTitle: dto.Optional("Rigger and Signalman")}, nil)
	require.NoError(t, err)
	// shares a prefix with the first FIN but is another worker
	_, err = s.AddCertification("G7654321", dto.ExtractedRecord{CourseTitle: dto.Optional("Other")}, nil)
	require.NoError(t, err)

	certs, err := s.ListCertifications("G7654321K")
	require.NoError(t, err)
	require.Len(t, certs, 2)
	assert.Equal(t, first.ID, certs[0].ID)
	assert.Equal(t, "Working at Height", *certs[0].Record.CourseTitle)
	assert.Equal(t, "Rigger and Signalman", *certs[1].Record.CourseTitle)
	assert.Equal(t, "G7654321K", certs[1].FIN)

	none, err := s.ListCertifications("S1111111A")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestAllCertifications(t *testing.T) {
	s := newTestStore(t)

	for _, fin := range []string{"S1234567D", "G7654321K", "S1234567D"} {
		_, err := s.AddCertification(fin, dto.ExtractedRecord{}, nil)
		require.NoError(t, err)
	}

	certs, err := s.AllCertifications()
	require.NoError(t, err)
	require.Len(t, certs, 3)
	assert.Equal(t, "G7654321K", certs[0].FIN)
	assert.Equal(t, "S1234567D", certs[2].FIN)
}
