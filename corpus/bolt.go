package corpus

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"go.etcd.io/bbolt"
)

var (
	bucketRecords  = []byte("records")
	bucketPeptides = []byte("peptides")
	bucketCodons   = []byte("codons")
)

// importBatchSize bounds how many records go into a single write transaction.
const importBatchSize = 1000

// BoltStore implements Store using bbolt. The records bucket holds full
// records keyed by identifier; the peptides and codons buckets hold the raw
// sequence columns so scans avoid decoding full records.
type BoltStore struct {
	db     *bbolt.DB
	logger *slog.Logger
}

// BoltStoreOption configures a BoltStore.
type BoltStoreOption func(*BoltStore)

// WithLogger sets the logger for the store.
func WithLogger(logger *slog.Logger) BoltStoreOption {
	return func(s *BoltStore) {
		s.logger = logger
	}
}

// OpenBolt opens (creating if necessary) the corpus database at path.
func OpenBolt(path string, opts ...BoltStoreOption) (*BoltStore, error) {
	s := &BoltStore{logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}

	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening corpus database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketRecords, bucketPeptides, bucketCodons} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("creating bucket %s: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	s.db = db
	s.logger.Debug("opened corpus store", "path", path)
	return s, nil
}

// Close closes the underlying database.
func (s *BoltStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Import bulk-loads records, overwriting any existing entries with the same
// identifier. Records are written in batches to bound transaction size.
func (s *BoltStore) Import(ctx context.Context, records []Record) error {
	start := time.Now()

	for offset := 0; offset < len(records); offset += importBatchSize {
		end := offset + importBatchSize
		if end > len(records) {
			end = len(records)
		}
		batch := records[offset:end]

		if err := ctx.Err(); err != nil {
			return err
		}

		err := s.db.Update(func(tx *bbolt.Tx) error {
			recs := tx.Bucket(bucketRecords)
			peps := tx.Bucket(bucketPeptides)
			cods := tx.Bucket(bucketCodons)

			for i := range batch {
				rec := &batch[i]
				rec.derive()

				data, err := json.Marshal(rec)
				if err != nil {
					return fmt.Errorf("encoding record %s: %w", rec.Identifier, err)
				}

				key := []byte(rec.Identifier)
				if err := recs.Put(key, data); err != nil {
					return fmt.Errorf("storing record %s: %w", rec.Identifier, err)
				}
				if err := peps.Put(key, []byte(rec.TagPeptide)); err != nil {
					return fmt.Errorf("storing peptide projection %s: %w", rec.Identifier, err)
				}
				if err := cods.Put(key, []byte(rec.Codons)); err != nil {
					return fmt.Errorf("storing codon projection %s: %w", rec.Identifier, err)
				}
			}
			return nil
		})
		if err != nil {
			return err
		}
	}

	s.logger.Info("imported corpus records",
		"count", len(records),
		"duration", time.Since(start),
	)
	return nil
}

// Sequences returns the scan projection for the given kind.
func (s *BoltStore) Sequences(ctx context.Context, kind Kind) ([]SequenceRow, error) {
	bucket := bucketPeptides
	switch kind {
	case KindPeptide:
	case KindCodon:
		bucket = bucketCodons
	default:
		return nil, fmt.Errorf("unknown sequence kind %q", kind)
	}

	var rows []SequenceRow
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucket).ForEach(func(k, v []byte) error {
			rows = append(rows, SequenceRow{
				Identifier: string(k),
				Sequence:   string(v),
			})
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("scanning %s projection: %w", kind, err)
	}
	return rows, nil
}

// Get returns the full record for an identifier.
func (s *BoltStore) Get(ctx context.Context, identifier string) (*Record, error) {
	var rec *Record
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketRecords).Get([]byte(identifier))
		if data == nil {
			return ErrNotFound
		}
		rec = &Record{}
		if err := json.Unmarshal(data, rec); err != nil {
			return fmt.Errorf("decoding record %s: %w", identifier, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// Stats returns corpus-level statistics. Organism counting decodes only the
// organism column of each record.
func (s *BoltStore) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}
	organisms := make(map[string]struct{})

	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketRecords).ForEach(func(k, v []byte) error {
			stats.TotalRecords++
			var row struct {
				OrganismName string `json:"organism_name"`
			}
			if err := json.Unmarshal(v, &row); err != nil {
				return fmt.Errorf("decoding record %s: %w", k, err)
			}
			if row.OrganismName != "" {
				organisms[row.OrganismName] = struct{}{}
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	stats.UniqueOrganisms = len(organisms)
	return stats, nil
}

var _ Store = (*BoltStore)(nil)
