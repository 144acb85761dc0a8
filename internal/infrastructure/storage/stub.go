package storage

import (
	"context"
	"strings"
	"time"

	appmetering "github.com/gridledger/billing/internal/application/metering"
)

var _ appmetering.ObjectStorage = (*StubObjectStorage)(nil)

// StubObjectStorage stands in for object storage when none is configured.
// It hands out placeholder URLs and treats every key as uploaded, so the
// image flow can be exercised end to end in development.
type StubObjectStorage struct {
	BaseURL string
}

// NewStubObjectStorage creates a StubObjectStorage rooted at baseURL
func NewStubObjectStorage(baseURL string) *StubObjectStorage {
	if baseURL == "" {
		baseURL = "http://localhost:9000/meter-images"
	}
	return &StubObjectStorage{BaseURL: strings.TrimRight(baseURL, "/")}
}

// GenerateUploadURL returns a placeholder upload URL
func (s *StubObjectStorage) GenerateUploadURL(_ context.Context, storageKey, _ string, expiresIn time.Duration) (string, time.Time, error) {
	if storageKey == "" {
		return "", time.Time{}, errEmptyKey
	}
	expiresAt := time.Now().Add(expiresIn)
	return s.BaseURL + "/upload/" + storageKey + "?expires=" + expiresAt.UTC().Format(time.RFC3339), expiresAt, nil
}

// GenerateDownloadURL returns the object URL with an expiry marker
func (s *StubObjectStorage) GenerateDownloadURL(_ context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error) {
	if storageKey == "" {
		return "", time.Time{}, errEmptyKey
	}
	expiresAt := time.Now().Add(expiresIn)
	return s.ObjectURL(storageKey) + "?expires=" + expiresAt.UTC().Format(time.RFC3339), expiresAt, nil
}

// DeleteObject does nothing
func (s *StubObjectStorage) DeleteObject(_ context.Context, storageKey string) error {
	if storageKey == "" {
		return errEmptyKey
	}
	return nil
}

// ObjectExists is always true
func (s *StubObjectStorage) ObjectExists(_ context.Context, storageKey string) (bool, error) {
	if storageKey == "" {
		return false, errEmptyKey
	}
	return true, nil
}

// ObjectURL joins the base URL and storageKey
func (s *StubObjectStorage) ObjectURL(storageKey string) string {
	return s.BaseURL + "/" + storageKey
}
