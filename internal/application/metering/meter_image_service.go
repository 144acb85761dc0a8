package metering

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	appidentity "github.com/gridledger/billing/internal/application/identity"
	"github.com/gridledger/billing/internal/domain/identity"
	"github.com/gridledger/billing/internal/domain/metering"
	"github.com/gridledger/billing/internal/domain/shared"
	"go.uber.org/zap"
)

// ObjectStorage is the bucket meter images live in
type ObjectStorage interface {
	GenerateUploadURL(ctx context.Context, storageKey, contentType string, expiresIn time.Duration) (string, time.Time, error)
	GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error)
	DeleteObject(ctx context.Context, storageKey string) error
	ObjectExists(ctx context.Context, storageKey string) (bool, error)
	// ObjectURL is the permanent address recorded on the meter
	ObjectURL(storageKey string) string
}

// ImageSlot names one of the two images a meter carries
type ImageSlot string

const (
	ImageSlotLocation ImageSlot = "location" // Map or plan of the installation site
	ImageSlotPhoto    ImageSlot = "photo"    // Photo of the device
)

// ParseImageSlot validates a slot name taken from a request path
func ParseImageSlot(raw string) (ImageSlot, error) {
	switch slot := ImageSlot(strings.ToLower(raw)); slot {
	case ImageSlotLocation, ImageSlotPhoto:
		return slot, nil
	}
	return "", shared.NewValidationError("slot", "must be location or photo")
}

var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// MeterImageConfig bounds the lifetime of presigned URLs
type MeterImageConfig struct {
	UploadURLExpiry   time.Duration
	DownloadURLExpiry time.Duration
}

// MeterImageService uploads the location and device images of a meter
// through presigned object storage URLs. The client PUTs the bytes
// directly to storage, then confirms the key.
type MeterImageService struct {
	meterRepo metering.MeterRepository
	storage   ObjectStorage
	guard     *appidentity.AccessGuard
	config    MeterImageConfig
	logger    *zap.Logger
}

// NewMeterImageService creates a new MeterImageService
func NewMeterImageService(
	meterRepo metering.MeterRepository,
	storage ObjectStorage,
	guard *appidentity.AccessGuard,
	config MeterImageConfig,
	logger *zap.Logger,
) *MeterImageService {
	if config.UploadURLExpiry <= 0 {
		config.UploadURLExpiry = 15 * time.Minute
	}
	if config.DownloadURLExpiry <= 0 {
		config.DownloadURLExpiry = time.Hour
	}
	return &MeterImageService{
		meterRepo: meterRepo,
		storage:   storage,
		guard:     guard,
		config:    config,
		logger:    logger,
	}
}

// InitiateUpload returns a presigned URL the image can be PUT to. The meter
// is unchanged until ConfirmUpload.
func (s *MeterImageService) InitiateUpload(
	ctx context.Context,
	actor identity.Actor,
	meterID uuid.UUID,
	slot ImageSlot,
	req InitiateImageUploadRequest,
) (*ImageUploadResponse, error) {
	if err := s.guard.Authorize(ctx, actor, identity.ModuleMeters, appidentity.ActionWrite); err != nil {
		return nil, err
	}

	contentType := strings.ToLower(strings.TrimSpace(req.ContentType))
	ext, ok := allowedImageTypes[contentType]
	if !ok {
		return nil, shared.NewValidationError("content_type", "must be image/jpeg, image/png or image/webp")
	}
	if _, err := s.meterRepo.FindByID(ctx, meterID); err != nil {
		return nil, err
	}

	key := fmt.Sprintf("%s%s%s", keyPrefix(meterID, slot), uuid.NewString(), ext)
	uploadURL, expiresAt, err := s.storage.GenerateUploadURL(ctx, key, contentType, s.config.UploadURLExpiry)
	if err != nil {
		return nil, fmt.Errorf("generate upload URL: %w", err)
	}

	s.logger.Debug("Meter image upload initiated",
		zap.String("meter_id", meterID.String()),
		zap.String("slot", string(slot)),
		zap.String("file_name", path.Base(req.FileName)),
		zap.String("storage_key", key))

	return &ImageUploadResponse{
		Slot:       string(slot),
		StorageKey: key,
		UploadURL:  uploadURL,
		ExpiresAt:  expiresAt,
	}, nil
}

// ConfirmUpload records an uploaded object as the slot's image. The image
// it replaces is removed from storage when it lived there.
func (s *MeterImageService) ConfirmUpload(
	ctx context.Context,
	actor identity.Actor,
	meterID uuid.UUID,
	slot ImageSlot,
	req ConfirmImageUploadRequest,
) (*MeterResponse, error) {
	if err := s.guard.Authorize(ctx, actor, identity.ModuleMeters, appidentity.ActionWrite); err != nil {
		return nil, err
	}

	// Keys are only accepted for the meter and slot they were issued for
	if !strings.HasPrefix(req.StorageKey, keyPrefix(meterID, slot)) {
		return nil, shared.NewValidationError("storage_key", "was not issued for this meter image")
	}

	meter, err := s.meterRepo.FindByID(ctx, meterID)
	if err != nil {
		return nil, err
	}

	exists, err := s.storage.ObjectExists(ctx, req.StorageKey)
	if err != nil {
		return nil, fmt.Errorf("check uploaded image: %w", err)
	}
	if !exists {
		return nil, shared.NewValidationError("storage_key", "no object uploaded under this key")
	}

	previous := imageURL(meter, slot)
	objectURL := s.storage.ObjectURL(req.StorageKey)
	locationImage, photo := meter.LocationImageURL, meter.PhotoURL
	if slot == ImageSlotLocation {
		locationImage = objectURL
	} else {
		photo = objectURL
	}
	if err := meter.SetImages(locationImage, photo); err != nil {
		return nil, err
	}
	if err := s.meterRepo.Save(ctx, meter); err != nil {
		return nil, err
	}

	if oldKey, ok := s.storageKey(previous); ok && oldKey != req.StorageKey {
		if err := s.storage.DeleteObject(ctx, oldKey); err != nil {
			s.logger.Warn("Failed to delete replaced meter image",
				zap.String("storage_key", oldKey),
				zap.Error(err))
		}
	}

	s.logger.Info("Meter image attached",
		zap.String("meter_id", meterID.String()),
		zap.String("slot", string(slot)))

	response := ToMeterResponse(meter)
	return &response, nil
}

// DownloadURL returns a readable URL for the slot's image
func (s *MeterImageService) DownloadURL(
	ctx context.Context,
	actor identity.Actor,
	meterID uuid.UUID,
	slot ImageSlot,
) (*ImageDownloadResponse, error) {
	if err := s.guard.Authorize(ctx, actor, identity.ModuleMeters, appidentity.ActionRead); err != nil {
		return nil, err
	}

	meter, err := s.meterRepo.FindByID(ctx, meterID)
	if err != nil {
		return nil, err
	}
	current := imageURL(meter, slot)
	if current == "" {
		return nil, shared.NewNotFoundError("meter image")
	}

	key, ok := s.storageKey(current)
	if !ok {
		return &ImageDownloadResponse{Slot: string(slot), URL: current}, nil
	}
	url, expiresAt, err := s.storage.GenerateDownloadURL(ctx, key, s.config.DownloadURLExpiry)
	if err != nil {
		return nil, fmt.Errorf("generate download URL: %w", err)
	}
	return &ImageDownloadResponse{Slot: string(slot), URL: url, ExpiresAt: &expiresAt}, nil
}

// storageKey recovers the key of an object URL issued by this storage
func (s *MeterImageService) storageKey(objectURL string) (string, bool) {
	if objectURL == "" {
		return "", false
	}
	key, ok := strings.CutPrefix(objectURL, s.storage.ObjectURL(""))
	if !ok || key == "" {
		return "", false
	}
	return key, true
}

func keyPrefix(meterID uuid.UUID, slot ImageSlot) string {
	return fmt.Sprintf("meters/%s/%s/", meterID, slot)
}

func imageURL(m *metering.Meter, slot ImageSlot) string {
	if slot == ImageSlotLocation {
		return m.LocationImageURL
	}
	return m.PhotoURL
}
