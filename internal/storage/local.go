package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/foliotrack/folio/internal/common"
	"github.com/foliotrack/folio/internal/interfaces"
	"github.com/foliotrack/folio/internal/models"
)

// File names under the data directory. The history layout (a single JSON
// array, newest last) is kept byte-compatible with pre-migration data.
const (
	historyFile = "portfolio_history.json"
	ledgerFile  = "transactions.json"
	backupDir   = "backup"
)

// LocalStore persists the snapshot history in a single JSON file with a
// pre-write backup, corruption fail-fast, and atomic temp+rename writes.
type LocalStore struct {
	dataDir     string
	backupPath  string
	historyPath string
	ledgerPath  string
	logger      *common.Logger
}

// NewLocalStore creates a LocalStore rooted at the configured data
// directory, creating it and the backup directory if needed.
func NewLocalStore(logger *common.Logger, config *common.LocalConfig) (*LocalStore, error) {
	if config.Path == "" {
		return nil, fmt.Errorf("local store path is required")
	}

	backupPath := filepath.Join(config.Path, backupDir)
	for _, dir := range []string{config.Path, backupPath} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	s := &LocalStore{
		dataDir:     config.Path,
		backupPath:  backupPath,
		historyPath: filepath.Join(config.Path, historyFile),
		ledgerPath:  filepath.Join(config.Path, ledgerFile),
		logger:      logger,
	}

	logger.Debug().Str("path", config.Path).Msg("LocalStore opened")
	return s, nil
}

// loadHistory reads and parses the history file. A missing or empty file
// yields an empty history; an unparsable file yields a CorruptionError and
// the file is never touched.
func (s *LocalStore) loadHistory() ([]*models.Snapshot, error) {
	data, err := os.ReadFile(s.historyPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read history %s: %w", s.historyPath, err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	var history []*models.Snapshot
	if err := json.Unmarshal(data, &history); err != nil {
		s.logger.Error().
			Str("path", s.historyPath).
			Err(err).
			Msg("History file contains invalid JSON; file preserved, manual intervention required")
		return nil, &CorruptionError{Path: s.historyPath, Err: err}
	}
	return history, nil
}

// backupFile copies src to dst. Best-effort: failure is logged but never
// blocks the write that follows.
func (s *LocalStore) backupFile(src, dst string) {
	data, err := os.ReadFile(src)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn().Str("path", src).Err(err).Msg("Failed to read file for backup")
		}
		return
	}
	if err := os.WriteFile(dst, data, 0644); err != nil {
		s.logger.Warn().Str("path", dst).Err(err).Msg("Failed to write backup")
	}
}

// writeFileAtomic serializes v and writes it to target via an exclusive
// temp file in the same directory, an fsync, and an atomic rename. A crash
// before the rename leaves the original file intact; a crash after leaves
// the new file intact.
func (s *LocalStore) writeFileAtomic(target string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	data = append(data, '\n')

	tmpFile, err := os.CreateTemp(s.dataDir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, target); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	return nil
}

// Append validates the snapshot and appends it to the history file.
// Order of operations: parse existing history (fail fast on corruption),
// validate the new snapshot, back up the current file, then write
// atomically.
func (s *LocalStore) Append(ctx context.Context, snapshot *models.Snapshot) error {
	if err := snapshot.Validate(); err != nil {
		return err
	}

	history, err := s.loadHistory()
	if err != nil {
		return err
	}

	s.backupFile(s.historyPath, filepath.Join(s.backupPath, historyFile+".bak"))

	history = append(history, snapshot)
	if err := s.writeFileAtomic(s.historyPath, history); err != nil {
		return fmt.Errorf("failed to write history: %w", err)
	}

	s.logger.Info().
		Str("path", s.historyPath).
		Int("snapshots", len(history)).
		Float64("total_value", snapshot.TotalValue).
		Msg("Snapshot appended to local history")
	return nil
}

// Latest returns the most recent snapshot, or nil if the history is empty.
func (s *LocalStore) Latest(ctx context.Context) (*models.Snapshot, error) {
	history, err := s.loadHistory()
	if err != nil {
		return nil, err
	}
	if len(history) == 0 {
		return nil, nil
	}
	return history[len(history)-1], nil
}

// All returns the full history, oldest first.
func (s *LocalStore) All(ctx context.Context) ([]*models.Snapshot, error) {
	return s.loadHistory()
}

// Delete removes the snapshot at index after taking a timestamped backup.
func (s *LocalStore) Delete(ctx context.Context, index int) error {
	history, err := s.loadHistory()
	if err != nil {
		return err
	}
	if index < 0 || index >= len(history) {
		return fmt.Errorf("snapshot index %d out of range (0-%d)", index, len(history)-1)
	}

	stamp := time.Now().UTC().Format("20060102-150405")
	s.backupFile(s.historyPath, filepath.Join(s.backupPath, fmt.Sprintf("%s.bak.%s", historyFile, stamp)))

	removed := history[index]
	history = append(history[:index], history[index+1:]...)
	if err := s.writeFileAtomic(s.historyPath, history); err != nil {
		return fmt.Errorf("failed to write history: %w", err)
	}

	s.logger.Info().
		Int("index", index).
		Time("timestamp", removed.Timestamp).
		Int("remaining", len(history)).
		Msg("Snapshot deleted from local history")
	return nil
}

// SaveLedger persists the ledger document with the same backup and atomic
// write discipline as the history.
func (s *LocalStore) SaveLedger(ctx context.Context, doc *models.LedgerDocument) error {
	s.backupFile(s.ledgerPath, filepath.Join(s.backupPath, ledgerFile+".bak"))

	if err := s.writeFileAtomic(s.ledgerPath, doc); err != nil {
		return fmt.Errorf("failed to write ledger: %w", err)
	}

	s.logger.Debug().
		Int("buys", doc.Metadata.BuyCount).
		Int("sells", doc.Metadata.SellCount).
		Msg("Ledger saved to local store")
	return nil
}

// Ledger returns the persisted ledger document, or nil if absent.
func (s *LocalStore) Ledger(ctx context.Context) (*models.LedgerDocument, error) {
	data, err := os.ReadFile(s.ledgerPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read ledger %s: %w", s.ledgerPath, err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	var doc models.LedgerDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &CorruptionError{Path: s.ledgerPath, Err: err}
	}
	return &doc, nil
}

// Available always reports true for local storage.
func (s *LocalStore) Available(ctx context.Context) bool {
	return true
}

// Close releases resources (no-op for file storage).
func (s *LocalStore) Close() error {
	return nil
}

// Compile-time check
var _ interfaces.SnapshotStore = (*LocalStore)(nil)
