package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Aashish23092/workpass-ocr/dto"
	"github.com/Aashish23092/workpass-ocr/utils"
	"github.com/google/uuid"
	"go.etcd.io/bbolt"
)

const (
	workersBucket        = "workers"
	certificationsBucket = "certifications"
)

var (
	// ErrNotFound is returned when no record exists for a key
	ErrNotFound = errors.New("record not found")
	// ErrNoIdentifier is returned when a record cannot be keyed
	ErrNoIdentifier = errors.New("record has no FIN/NRIC to key on")
)

// Store persists extracted workers and their certifications
type Store interface {
	// UpsertWorker merges rec into the stored worker with the same FIN
	UpsertWorker(fin string, rec dto.ExtractedRecord, imageKeys []string) (*dto.WorkerRecord, error)

	// GetWorker returns the worker stored under fin (case-insensitive)
	GetWorker(fin string) (*dto.WorkerRecord, error)

	// ListWorkers returns every worker ordered by FIN
	ListWorkers() ([]*dto.WorkerRecord, error)

	// AddCertification stores a certificate linked to fin
	AddCertification(fin string, rec dto.ExtractedRecord, imageKeys []string) (*dto.CertificationRecord, error)

	// ListCertifications returns the certificates of one worker
	ListCertifications(fin string) ([]dto.CertificationRecord, error)

	// AllCertifications returns every stored certificate ordered by FIN
	AllCertifications() ([]dto.CertificationRecord, error)

	// Close closes the database connection
	Close() error
}

// BoltStore implements Store on a bbolt file
type BoltStore struct {
	db  *bbolt.DB
	now func() time.Time
}

// NewBoltStore opens (or creates) the database at path
func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening boltdb: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range []string{workersBucket, certificationsBucket} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating buckets: %w", err)
	}

	return &BoltStore{db: db, now: time.Now}, nil
}

// workerKey normalizes an identifier for lookups
func workerKey(fin string) string {
	return strings.ToUpper(strings.TrimSpace(fin))
}

// UpsertWorker merges the incoming record over the stored one. Incoming
// non-empty fields win; fields it lacks keep their stored values.
func (b *BoltStore) UpsertWorker(fin string, rec dto.ExtractedRecord, imageKeys []string) (*dto.WorkerRecord, error) {
	key := workerKey(fin)
	if key == "" {
		return nil, ErrNoIdentifier
	}

	var saved dto.WorkerRecord
	err := b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(workersBucket))
		now := b.now().UTC()

		saved = dto.WorkerRecord{FIN: key, CreatedAt: now}
		if data := bucket.Get([]byte(key)); data != nil {
			if err := json.Unmarshal(data, &saved); err != nil {
				return fmt.Errorf("unmarshaling worker: %w", err)
			}
		}

		saved.Record = utils.MergeRecords([]dto.ExtractedRecord{rec, saved.Record})
		saved.Record.FinNumber = dto.Optional(key)
		saved.ImageKeys = append(saved.ImageKeys, imageKeys...)
		saved.UpdatedAt = now

		data, err := json.Marshal(saved)
		if err != nil {
			return fmt.Errorf("marshaling worker: %w", err)
		}
		return bucket.Put([]byte(key), data)
	})
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

// GetWorker retrieves a worker by FIN
func (b *BoltStore) GetWorker(fin string) (*dto.WorkerRecord, error) {
	var worker *dto.WorkerRecord
	err := b.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket([]byte(workersBucket)).Get([]byte(workerKey(fin)))
		if data == nil {
			return fmt.Errorf("worker %s: %w", fin, ErrNotFound)
		}
		return json.Unmarshal(data, &worker)
	})
	if err != nil {
		return nil, err
	}
	return worker, nil
}

// ListWorkers returns all workers
func (b *BoltStore) ListWorkers() ([]*dto.WorkerRecord, error) {
	workers := make([]*dto.WorkerRecord, 0)
	err := b.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(workersBucket)).ForEach(func(k, v []byte) error {
			var worker dto.WorkerRecord
			if err := json.Unmarshal(v, &worker); err != nil {
				return fmt.Errorf("unmarshaling worker: %w", err)
			}
			workers = append(workers, &worker)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return workers, nil
}

// AddCertification stores a certificate under "<FIN>/<uuid>"
func (b *BoltStore) AddCertification(fin string, rec dto.ExtractedRecord, imageKeys []string) (*dto.CertificationRecord, error) {
	key := workerKey(fin)
	if key == "" {
		return nil, ErrNoIdentifier
	}

	cert := dto.CertificationRecord{
		ID:        uuid.NewString(),
		FIN:       key,
		Record:    rec,
		ImageKeys: imageKeys,
		CreatedAt: b.now().UTC(),
	}

	err := b.db.Update(func(tx *bbolt.Tx) error {
		data, err := json.Marshal(cert)
		if err != nil {
			return fmt.Errorf("marshaling certification: %w", err)
		}
		return tx.Bucket([]byte(certificationsBucket)).Put([]byte(key+"/"+cert.ID), data)
	})
	if err != nil {
		return nil, err
	}
	return &cert, nil
}

// ListCertifications returns the certificates stored for fin, oldest first
func (b *BoltStore) ListCertifications(fin string) ([]dto.CertificationRecord, error) {
	prefix := []byte(workerKey(fin) + "/")
	certs := make([]dto.CertificationRecord, 0)

	err := b.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket([]byte(certificationsBucket)).Cursor()
		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			var cert dto.CertificationRecord
			if err := json.Unmarshal(v, &cert); err != nil {
				return fmt.Errorf("unmarshaling certification: %w", err)
			}
			certs = append(certs, cert)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sortByCreated(certs)
	return certs, nil
}

// AllCertifications returns every certificate, grouped by FIN
func (b *BoltStore) AllCertifications() ([]dto.CertificationRecord, error) {
	certs := make([]dto.CertificationRecord, 0)
	err := b.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(certificationsBucket)).ForEach(func(k, v []byte) error {
			var cert dto.CertificationRecord
			if err := json.Unmarshal(v, &cert); err != nil {
				return fmt.Errorf("unmarshaling certification: %w", err)
			}
			certs = append(certs, cert)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return certs, nil
}

// Close closes the database connection
func (b *BoltStore) Close() error {
	return b.db.Close()
}

func sortByCreated(certs []dto.CertificationRecord) {
	sort.SliceStable(certs, func(i, j int) bool {
		return certs[i].CreatedAt.Before(certs[j].CreatedAt)
	})
}
