package store

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/rs/zerolog/log"
)

const ledgerFile = "segment_info.json"

// Record is one persisted ledger entry: where a segment came from and the
// content hash of its completed file.
type Record struct {
	URL string `json:"url"`
	MD5 string `json:"md5"`
}

// Store owns one run directory: the per-index segment files and the ledger
// document tracking verified completions across runs. RecordCompletion is safe
// to call from concurrent workers; the ledger is written back once via
// Persist.
type Store struct {
	dir     string
	mu      sync.Mutex
	records map[int]Record
}

// Open creates the run directory if needed and loads any prior ledger. An
// unreadable or corrupt ledger means no prior progress, never an error.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("error creating run directory: %v", err)
	}
	s := &Store{dir: dir, records: make(map[int]Record)}
	data, err := os.ReadFile(filepath.Join(dir, ledgerFile))
	if err != nil {
		return s, nil
	}
	var raw map[string]Record
	if err := json.Unmarshal(data, &raw); err != nil {
		log.Warn().Str("op", "store/open").Msgf("Ignoring unreadable ledger in %s: %v", dir, err)
		return s, nil
	}
	for key, record := range raw {
		index, err := strconv.Atoi(key)
		if err != nil || index < 0 {
			log.Warn().Str("op", "store/open").Msgf("Ignoring ledger entry with bad index %q", key)
			continue
		}
		s.records[index] = record
	}
	return s, nil
}

// Dir returns the run directory path.
func (s *Store) Dir() string {
	return s.dir
}

// SegmentPath returns the canonical file path for a segment index.
func (s *Store) SegmentPath(index int) string {
	return filepath.Join(s.dir, fmt.Sprintf("segment_%05d.ts", index))
}

// IsDone reports whether a segment was completed by a prior run and its file
// still hashes to the recorded value. Any mismatch, including a missing or
// truncated file, forces a re-download.
func (s *Store) IsDone(index int) bool {
	s.mu.Lock()
	record, ok := s.records[index]
	s.mu.Unlock()
	if !ok {
		return false
	}
	path := s.SegmentPath(index)
	if _, err := os.Stat(path); err != nil {
		return false
	}
	hash, err := FileMD5(path)
	if err != nil {
		return false
	}
	if hash != record.MD5 {
		log.Debug().Str("op", "store/verify").Msgf("Hash mismatch for segment %d, forcing re-download", index)
		return false
	}
	return true
}

// RecordCompletion hashes the finished segment file and stores its ledger
// entry in memory.
func (s *Store) RecordCompletion(index int, url, path string) error {
	hash, err := FileMD5(path)
	if err != nil {
		return fmt.Errorf("error hashing segment %d: %v", index, err)
	}
	s.mu.Lock()
	s.records[index] = Record{URL: url, MD5: hash}
	s.mu.Unlock()
	return nil
}

// Persist writes the full ledger document, replacing any prior one.
func (s *Store) Persist() error {
	s.mu.Lock()
	raw := make(map[string]Record, len(s.records))
	for index, record := range s.records {
		raw[strconv.Itoa(index)] = record
	}
	s.mu.Unlock()
	data, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("error encoding ledger: %v", err)
	}
	if err := os.WriteFile(filepath.Join(s.dir, ledgerFile), data, 0644); err != nil {
		return fmt.Errorf("error writing ledger: %v", err)
	}
	return nil
}

// FileMD5 computes the hex MD5 digest of a file's contents.
func FileMD5(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	h := md5.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
