package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"path"
	"time"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/foliotrack/folio/internal/common"
	"github.com/foliotrack/folio/internal/interfaces"
	"github.com/foliotrack/folio/internal/models"
)

// GCSStore persists the snapshot history as a single JSON object in a
// Google Cloud Storage bucket, enabling cross-machine sync.
type GCSStore struct {
	client     *gcs.Client
	bucket     *gcs.BucketHandle
	bucketName string
	historyKey string
	ledgerKey  string
	timeout    time.Duration
	logger     *common.Logger
}

// NewGCSStore creates a GCSStore against the configured bucket. When no
// credentials file is set, Application Default Credentials are used.
func NewGCSStore(ctx context.Context, logger *common.Logger, config *common.GCSConfig) (*GCSStore, error) {
	if config.Bucket == "" {
		return nil, fmt.Errorf("gcs bucket name is required")
	}

	var opts []option.ClientOption
	if config.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(config.CredentialsFile))
	}

	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create gcs client: %w", err)
	}

	s := &GCSStore{
		client:     client,
		bucket:     client.Bucket(config.Bucket),
		bucketName: config.Bucket,
		historyKey: objectKey(config.Prefix, historyFile),
		ledgerKey:  objectKey(config.Prefix, ledgerFile),
		timeout:    config.GetTimeout(),
		logger:     logger,
	}

	logger.Debug().
		Str("bucket", config.Bucket).
		Str("object", s.historyKey).
		Msg("GCSStore initialized")
	return s, nil
}

func objectKey(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return path.Join(prefix, name)
}

// classify maps GCS errors onto the storage sentinels. Auth and permission
// failures are fatal; transient network and server errors are retryable.
func classify(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == 401 || apiErr.Code == 403:
			return fmt.Errorf("%w: %v", ErrFatal, err)
		case apiErr.Code == 429 || apiErr.Code >= 500:
			return fmt.Errorf("%w: %v", ErrUnavailable, err)
		default:
			return fmt.Errorf("%w: %v", ErrFatal, err)
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}

// downloadHistory fetches and parses the history object. A missing object
// is an empty history (first run).
func (s *GCSStore) downloadHistory(ctx context.Context) ([]*models.Snapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	reader, err := s.bucket.Object(s.historyKey).NewReader(ctx)
	if err != nil {
		if errors.Is(err, gcs.ErrObjectNotExist) {
			return nil, nil
		}
		return nil, classify(err)
	}
	defer reader.Close()

	var history []*models.Snapshot
	if err := json.NewDecoder(reader).Decode(&history); err != nil {
		return nil, &CorruptionError{Path: s.objectURL(s.historyKey), Err: err}
	}
	return history, nil
}

// uploadJSON writes v to the named object. GCS uploads are atomic at the
// object level: the new content becomes visible only on a successful close.
func (s *GCSStore) uploadJSON(ctx context.Context, key string, v interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	writer := s.bucket.Object(key).NewWriter(ctx)
	writer.ContentType = "application/json"

	if _, err := writer.Write(data); err != nil {
		writer.Close()
		return classify(err)
	}
	if err := writer.Close(); err != nil {
		return classify(err)
	}
	return nil
}

func (s *GCSStore) objectURL(key string) string {
	return fmt.Sprintf("gs://%s/%s", s.bucketName, key)
}

// Append validates the snapshot, downloads the current history, appends,
// and uploads the result.
func (s *GCSStore) Append(ctx context.Context, snapshot *models.Snapshot) error {
	if err := snapshot.Validate(); err != nil {
		return err
	}

	history, err := s.downloadHistory(ctx)
	if err != nil {
		return err
	}

	history = append(history, snapshot)
	if err := s.uploadJSON(ctx, s.historyKey, history); err != nil {
		return err
	}

	s.logger.Info().
		Str("object", s.objectURL(s.historyKey)).
		Int("snapshots", len(history)).
		Msg("Snapshot appended to cloud history")
	return nil
}

// Latest returns the most recent snapshot, or nil if the history is empty.
func (s *GCSStore) Latest(ctx context.Context) (*models.Snapshot, error) {
	history, err := s.downloadHistory(ctx)
	if err != nil {
		return nil, err
	}
	if len(history) == 0 {
		return nil, nil
	}
	return history[len(history)-1], nil
}

// All returns the full history, oldest first.
func (s *GCSStore) All(ctx context.Context) ([]*models.Snapshot, error) {
	return s.downloadHistory(ctx)
}

// Delete removes the snapshot at index and uploads the shortened history.
func (s *GCSStore) Delete(ctx context.Context, index int) error {
	history, err := s.downloadHistory(ctx)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(history) {
		return fmt.Errorf("snapshot index %d out of range (0-%d)", index, len(history)-1)
	}

	history = append(history[:index], history[index+1:]...)
	if err := s.uploadJSON(ctx, s.historyKey, history); err != nil {
		return err
	}

	s.logger.Info().
		Int("index", index).
		Int("remaining", len(history)).
		Msg("Snapshot deleted from cloud history")
	return nil
}

// SaveLedger uploads the ledger document.
func (s *GCSStore) SaveLedger(ctx context.Context, doc *models.LedgerDocument) error {
	if err := s.uploadJSON(ctx, s.ledgerKey, doc); err != nil {
		return err
	}
	s.logger.Debug().Str("object", s.objectURL(s.ledgerKey)).Msg("Ledger saved to cloud store")
	return nil
}

// Ledger returns the persisted ledger document, or nil if absent.
func (s *GCSStore) Ledger(ctx context.Context) (*models.LedgerDocument, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	reader, err := s.bucket.Object(s.ledgerKey).NewReader(ctx)
	if err != nil {
		if errors.Is(err, gcs.ErrObjectNotExist) {
			return nil, nil
		}
		return nil, classify(err)
	}
	defer reader.Close()

	var doc models.LedgerDocument
	if err := json.NewDecoder(reader).Decode(&doc); err != nil {
		return nil, &CorruptionError{Path: s.objectURL(s.ledgerKey), Err: err}
	}
	return &doc, nil
}

// Available probes the bucket with a lightweight metadata call.
func (s *GCSStore) Available(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if _, err := s.bucket.Attrs(ctx); err != nil {
		s.logger.Warn().Str("bucket", s.bucketName).Err(err).Msg("Cloud storage unavailable")
		return false
	}
	return true
}

// Close releases the underlying client.
func (s *GCSStore) Close() error {
	return s.client.Close()
}

var _ interfaces.SnapshotStore = (*GCSStore)(nil)
