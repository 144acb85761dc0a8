package metering

import (
	"time"

	"github.com/google/uuid"
	"github.com/gridledger/billing/internal/domain/metering"
)

// CreateMeterRequest is the payload to install a meter
type CreateMeterRequest struct {
	MeterNumber      string    `json:"meter_number" binding:"required,min=1,max=45"`
	ContractID       uuid.UUID `json:"contract_id" binding:"required"`
	InstalledOn      time.Time `json:"installed_on" binding:"required"`
	Location         string    `json:"location" binding:"required,min=1,max=45"`
	Status           string    `json:"status" binding:"omitempty,oneof=ACTIVE INACTIVE MAINTENANCE DAMAGED"`
	LocationImageURL string    `json:"location_image_url" binding:"omitempty,url,max=200"`
	PhotoURL         string    `json:"photo_url" binding:"omitempty,url,max=200"`
}

// UpdateMeterRequest is the payload to update a meter
type UpdateMeterRequest struct {
	Location         *string `json:"location" binding:"omitempty,min=1,max=45"`
	Status           *string `json:"status" binding:"omitempty,oneof=ACTIVE INACTIVE MAINTENANCE DAMAGED"`
	LocationImageURL *string `json:"location_image_url" binding:"omitempty,max=200"`
	PhotoURL         *string `json:"photo_url" binding:"omitempty,max=200"`
}

// MeterListFilter narrows a meter listing
type MeterListFilter struct {
	Search     string `form:"search"`
	ContractID string `form:"contract_id" binding:"omitempty,uuid"`
	Status     string `form:"status" binding:"omitempty,oneof=ACTIVE INACTIVE MAINTENANCE DAMAGED"`
	Page       int    `form:"page" binding:"omitempty,min=1"`
	PageSize   int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// MeterResponse is a meter in API responses
type MeterResponse struct {
	ID               uuid.UUID `json:"id"`
	MeterNumber      string    `json:"meter_number"`
	ContractID       uuid.UUID `json:"contract_id"`
	InstalledOn      time.Time `json:"installed_on"`
	Location         string    `json:"location"`
	Status           string    `json:"status"`
	LocationImageURL string    `json:"location_image_url,omitempty"`
	PhotoURL         string    `json:"photo_url,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// ToMeterResponse converts a domain meter to a response
func ToMeterResponse(m *metering.Meter) MeterResponse {
	return MeterResponse{
		ID:               m.ID,
		MeterNumber:      m.MeterNumber,
		ContractID:       m.ContractID,
		InstalledOn:      m.InstalledOn,
		Location:         m.Location,
		Status:           string(m.Status),
		LocationImageURL: m.LocationImageURL,
		PhotoURL:         m.PhotoURL,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}

// InitiateImageUploadRequest asks for an upload URL for one meter image
type InitiateImageUploadRequest struct {
	FileName    string `json:"file_name" binding:"required,max=100"`
	ContentType string `json:"content_type" binding:"required"`
}

// ImageUploadResponse is where the client PUTs the image bytes
type ImageUploadResponse struct {
	Slot       string    `json:"slot"`
	StorageKey string    `json:"storage_key"`
	UploadURL  string    `json:"upload_url"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// ConfirmImageUploadRequest attaches an uploaded object to the meter
type ConfirmImageUploadRequest struct {
	StorageKey string `json:"storage_key" binding:"required"`
}

// ImageDownloadResponse is a readable URL for a meter image. ExpiresAt is
// omitted when the image is hosted outside the billing bucket.
type ImageDownloadResponse struct {
	Slot      string     `json:"slot"`
	URL       string     `json:"url"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// CreateReadingRequest is the payload to record a reading
type CreateReadingRequest struct {
	MeterID        uuid.UUID `json:"meter_id" binding:"required"`
	ReadingDate    time.Time `json:"reading_date" binding:"required"`
	ConsumptionKWh int64     `json:"consumption_kwh" binding:"min=0"`
	Kind           string    `json:"kind" binding:"required,oneof=DIGITAL ANALOG"`
	CurrentValue   int64     `json:"current_value" binding:"min=0"`
}

// UpdateReadingRequest is the payload to correct a reading
type UpdateReadingRequest struct {
	ReadingDate    *time.Time `json:"reading_date"`
	ConsumptionKWh *int64     `json:"consumption_kwh" binding:"omitempty,min=0"`
	Kind           *string    `json:"kind" binding:"omitempty,oneof=DIGITAL ANALOG"`
	CurrentValue   *int64     `json:"current_value" binding:"omitempty,min=0"`
}

// ReadingListFilter narrows a reading listing
type ReadingListFilter struct {
	MeterID  string     `form:"meter_id" binding:"omitempty,uuid"`
	Kind     string     `form:"kind" binding:"omitempty,oneof=DIGITAL ANALOG"`
	From     *time.Time `form:"from" time_format:"2006-01-02"`
	To       *time.Time `form:"to" time_format:"2006-01-02"`
	Page     int        `form:"page" binding:"omitempty,min=1"`
	PageSize int        `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// ReadingResponse is a reading in API responses
type ReadingResponse struct {
	ID             uuid.UUID `json:"id"`
	MeterID        uuid.UUID `json:"meter_id"`
	ReadingDate    time.Time `json:"reading_date"`
	ConsumptionKWh int64     `json:"consumption_kwh"`
	Kind           string    `json:"kind"`
	CurrentValue   int64     `json:"current_value"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ToReadingResponse converts a domain reading to a response
func ToReadingResponse(r *metering.Reading) ReadingResponse {
	return ReadingResponse{
		ID:             r.ID,
		MeterID:        r.MeterID,
		ReadingDate:    r.ReadingDate,
		ConsumptionKWh: r.ConsumptionKWh,
		Kind:           string(r.Kind),
		CurrentValue:   r.CurrentValue,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}
