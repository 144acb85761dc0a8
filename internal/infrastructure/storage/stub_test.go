package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStubObjectStorage(t *testing.T) {
	assert.Equal(t, "http://localhost:9000/meter-images", NewStubObjectStorage("").BaseURL)
	assert.Equal(t, "https://img.example", NewStubObjectStorage("https://img.example/").BaseURL)
}

func TestStubObjectStorage(t *testing.T) {
	s := NewStubObjectStorage("https://img.example")
	ctx := context.Background()
	key := "meters/m1/location/plan.png"

	url, expiresAt, err := s.GenerateUploadURL(ctx, key, "image/png", 15*time.Minute)
	require.NoError(t, err)
	assert.Contains(t, url, "https://img.example/upload/"+key)
	assert.True(t, expiresAt.After(time.Now()))

	url, _, err = s.GenerateDownloadURL(ctx, key, time.Hour)
	require.NoError(t, err)
	assert.Contains(t, url, s.ObjectURL(key))

	exists, err := s.ObjectExists(ctx, key)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, s.DeleteObject(ctx, key))

	assert.Equal(t, "https://img.example/"+key, s.ObjectURL(key))
}

func TestStubObjectStorage_EmptyKey(t *testing.T) {
	s := NewStubObjectStorage("")
	ctx := context.Background()

	_, _, err := s.GenerateUploadURL(ctx, "", "image/png", time.Minute)
	assert.ErrorIs(t, err, errEmptyKey)
	_, _, err = s.GenerateDownloadURL(ctx, "", time.Minute)
	assert.ErrorIs(t, err, errEmptyKey)
	assert.ErrorIs(t, s.DeleteObject(ctx, ""), errEmptyKey)
	_, err = s.ObjectExists(ctx, "")
	assert.ErrorIs(t, err, errEmptyKey)
}
