package metering

import (
	"context"

	"github.com/google/uuid"
	appidentity "github.com/gridledger/billing/internal/application/identity"
	"github.com/gridledger/billing/internal/domain/customer"
	"github.com/gridledger/billing/internal/domain/identity"
	"github.com/gridledger/billing/internal/domain/metering"
	"github.com/gridledger/billing/internal/domain/shared"
	"go.uber.org/zap"
)

// MeterService manages installed meters
type MeterService struct {
	meterRepo    metering.MeterRepository
	contractRepo customer.ContractRepository
	guard        *appidentity.AccessGuard
	logger       *zap.Logger
}

// NewMeterService creates a new MeterService
func NewMeterService(
	meterRepo metering.MeterRepository,
	contractRepo customer.ContractRepository,
	guard *appidentity.AccessGuard,
	logger *zap.Logger,
) *MeterService {
	return &MeterService{
		meterRepo:    meterRepo,
		contractRepo: contractRepo,
		guard:        guard,
		logger:       logger,
	}
}

// Create installs a meter on an existing contract. Status defaults to ACTIVE.
func (s *MeterService) Create(ctx context.Context, actor identity.Actor, req CreateMeterRequest) (*MeterResponse, error) {
	if err := s.guard.Authorize(ctx, actor, identity.ModuleMeters, appidentity.ActionWrite); err != nil {
		return nil, err
	}

	if _, err := s.contractRepo.FindByID(ctx, req.ContractID); err != nil {
		return nil, err
	}
	exists, err := s.meterRepo.ExistsByMeterNumber(ctx, req.MeterNumber)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewAlreadyExistsError("meter number", req.MeterNumber)
	}

	status := metering.MeterStatusActive
	if req.Status != "" {
		status = metering.MeterStatus(req.Status)
	}
	meter, err := metering.NewMeter(req.MeterNumber, req.ContractID, req.InstalledOn, req.Location, status)
	if err != nil {
		return nil, err
	}
	if req.LocationImageURL != "" || req.PhotoURL != "" {
		if err := meter.SetImages(req.LocationImageURL, req.PhotoURL); err != nil {
			return nil, err
		}
	}
	if err := s.meterRepo.Save(ctx, meter); err != nil {
		return nil, err
	}

	s.logger.Info("Meter installed",
		zap.String("meter_id", meter.ID.String()),
		zap.String("contract_id", meter.ContractID.String()))

	response := ToMeterResponse(meter)
	return &response, nil
}

// GetByID retrieves a meter
func (s *MeterService) GetByID(ctx context.Context, actor identity.Actor, id uuid.UUID) (*MeterResponse, error) {
	if err := s.guard.Authorize(ctx, actor, identity.ModuleMeters, appidentity.ActionRead); err != nil {
		return nil, err
	}
	meter, err := s.meterRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToMeterResponse(meter)
	return &response, nil
}

// List lists meters, most recently installed first
func (s *MeterService) List(ctx context.Context, actor identity.Actor, filter MeterListFilter) ([]MeterResponse, int64, error) {
	if err := s.guard.Authorize(ctx, actor, identity.ModuleMeters, appidentity.ActionRead); err != nil {
		return nil, 0, err
	}

	domainFilter := shared.DefaultFilter()
	domainFilter.Search = filter.Search
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	if filter.ContractID != "" {
		domainFilter.Filters["contract_id"] = filter.ContractID
	}
	if filter.Status != "" {
		domainFilter.Filters["status"] = filter.Status
	}

	meters, err := s.meterRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.meterRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]MeterResponse, len(meters))
	for i := range meters {
		responses[i] = ToMeterResponse(&meters[i])
	}
	return responses, total, nil
}

// Update relocates the meter, changes its status or its images
func (s *MeterService) Update(ctx context.Context, actor identity.Actor, id uuid.UUID, req UpdateMeterRequest) (*MeterResponse, error) {
	if err := s.guard.Authorize(ctx, actor, identity.ModuleMeters, appidentity.ActionWrite); err != nil {
		return nil, err
	}

	meter, err := s.meterRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Location != nil {
		if err := meter.Relocate(*req.Location); err != nil {
			return nil, err
		}
	}
	if req.Status != nil {
		if err := meter.ChangeStatus(metering.MeterStatus(*req.Status)); err != nil {
			return nil, err
		}
	}
	if req.LocationImageURL != nil || req.PhotoURL != nil {
		locationImage, photo := meter.LocationImageURL, meter.PhotoURL
		if req.LocationImageURL != nil {
			locationImage = *req.LocationImageURL
		}
		if req.PhotoURL != nil {
			photo = *req.PhotoURL
		}
		if err := meter.SetImages(locationImage, photo); err != nil {
			return nil, err
		}
	}

	if err := s.meterRepo.Save(ctx, meter); err != nil {
		return nil, err
	}

	response := ToMeterResponse(meter)
	return &response, nil
}

// Delete removes a meter and its readings
func (s *MeterService) Delete(ctx context.Context, actor identity.Actor, id uuid.UUID) error {
	if err := s.guard.Authorize(ctx, actor, identity.ModuleMeters, appidentity.ActionWrite); err != nil {
		return err
	}
	if err := s.meterRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Meter deleted", zap.String("meter_id", id.String()))
	return nil
}
