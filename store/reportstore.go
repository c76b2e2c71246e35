package store

import (
	"os"

	badger "github.com/dgraph-io/badger/v2"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/vmihailenco/msgpack/v4"
	"gitlab.com/extmon/extmon"
)

// ErrReportNotFound when no session with the requested id was persisted
var ErrReportNotFound = errors.New("session report not found")

const reportPrefix = "report:"

// ReportStore persists session reports in badger keyed by session id
type ReportStore struct {
	db       *badger.DB
	filepath string
}

// NewReportStore rooted at filepath
func NewReportStore(filepath string) *ReportStore {
	return &ReportStore{filepath: filepath}
}

// Init opens the underlying store, creating the directory when missing
func (s *ReportStore) Init() error {
	if err := os.MkdirAll(s.filepath, 0766); err != nil {
		return err
	}
	db, err := badger.Open(badger.DefaultOptions(s.filepath))
	if err != nil {
		return errors.Wrap(err, "failed to open report store")
	}
	s.db = db
	return nil
}

// MakeReportKey for a session id
func MakeReportKey(id string) []byte {
	return append([]byte(reportPrefix), []byte(id)...)
}

// Put serializes and stores one report. A failure here is an operational
// error the caller surfaces, the in-memory report stays valid.
func (s *ReportStore) Put(report *extmon.SessionReport) error {
	if report == nil || report.ID == "" {
		return errors.New("refusing to store report without a session id")
	}
	bytez, err := msgpack.Marshal(report)
	if err != nil {
		return errors.Wrap(err, "failed to encode session report")
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(MakeReportKey(report.ID), bytez)
	})
}

// Get one report by session id
func (s *ReportStore) Get(id string) (*extmon.SessionReport, error) {
	report := &extmon.SessionReport{}
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(MakeReportKey(id))
		if err == badger.ErrKeyNotFound {
			return ErrReportNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return msgpack.Unmarshal(val, report)
		})
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

// List persisted session ids
func (s *ReportStore) List() ([]string, error) {
	ids := make([]string, 0)
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{Prefix: []byte(reportPrefix)})
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			key := it.Item().KeyCopy(nil)
			ids = append(ids, string(key[len(reportPrefix):]))
		}
		return nil
	})
	return ids, err
}

// Close the store
func (s *ReportStore) Close() error {
	if s.db == nil {
		return nil
	}
	if err := s.db.Close(); err != nil {
		log.Error().Err(err).Msg("failed to close report store")
		return err
	}
	return nil
}
