package metering

import (
	"context"

	"github.com/google/uuid"
	appidentity "github.com/gridledger/billing/internal/application/identity"
	"github.com/gridledger/billing/internal/domain/identity"
	"github.com/gridledger/billing/internal/domain/metering"
	"github.com/gridledger/billing/internal/domain/shared"
	"go.uber.org/zap"
)

// ReadingService records and corrects meter readings
type ReadingService struct {
	readingRepo    metering.ReadingRepository
	meterRepo      metering.MeterRepository
	guard          *appidentity.AccessGuard
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewReadingService creates a new ReadingService
func NewReadingService(
	readingRepo metering.ReadingRepository,
	meterRepo metering.MeterRepository,
	guard *appidentity.AccessGuard,
	logger *zap.Logger,
) *ReadingService {
	return &ReadingService{
		readingRepo: readingRepo,
		meterRepo:   meterRepo,
		guard:       guard,
		logger:      logger,
	}
}

// SetEventPublisher sets the publisher that receives ReadingRecorded events
func (s *ReadingService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create records a reading. The register value must not go backwards
// relative to the meter's neighbouring readings.
func (s *ReadingService) Create(ctx context.Context, actor identity.Actor, req CreateReadingRequest) (*ReadingResponse, error) {
	if err := s.guard.Authorize(ctx, actor, identity.ModuleReadings, appidentity.ActionWrite); err != nil {
		return nil, err
	}

	if _, err := s.meterRepo.FindByID(ctx, req.MeterID); err != nil {
		return nil, err
	}

	reading, err := metering.NewReading(req.MeterID, req.ReadingDate, req.ConsumptionKWh, metering.ReadingKind(req.Kind), req.CurrentValue)
	if err != nil {
		return nil, err
	}
	if err := s.checkProgression(ctx, reading); err != nil {
		return nil, err
	}
	if err := s.readingRepo.Save(ctx, reading); err != nil {
		return nil, err
	}

	s.logger.Info("Reading recorded",
		zap.String("reading_id", reading.ID.String()),
		zap.String("meter_id", reading.MeterID.String()),
		zap.Int64("consumption_kwh", reading.ConsumptionKWh))

	s.publishDomainEvents(ctx, reading)

	response := ToReadingResponse(reading)
	return &response, nil
}

// GetByID retrieves a reading
func (s *ReadingService) GetByID(ctx context.Context, actor identity.Actor, id uuid.UUID) (*ReadingResponse, error) {
	if err := s.guard.Authorize(ctx, actor, identity.ModuleReadings, appidentity.ActionRead); err != nil {
		return nil, err
	}
	reading, err := s.readingRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToReadingResponse(reading)
	return &response, nil
}

// List lists readings, most recent reading date first
func (s *ReadingService) List(ctx context.Context, actor identity.Actor, filter ReadingListFilter) ([]ReadingResponse, int64, error) {
	if err := s.guard.Authorize(ctx, actor, identity.ModuleReadings, appidentity.ActionRead); err != nil {
		return nil, 0, err
	}

	domainFilter := shared.DefaultFilter()
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	if filter.MeterID != "" {
		domainFilter.Filters["meter_id"] = filter.MeterID
	}
	if filter.Kind != "" {
		domainFilter.Filters["kind"] = filter.Kind
	}
	if filter.From != nil {
		domainFilter.Filters["from"] = *filter.From
	}
	if filter.To != nil {
		domainFilter.Filters["to"] = *filter.To
	}

	readings, err := s.readingRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.readingRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]ReadingResponse, len(readings))
	for i := range readings {
		responses[i] = ToReadingResponse(&readings[i])
	}
	return responses, total, nil
}

// Update corrects a reading. The progression check runs against the
// neighbours at the corrected date, ignoring the reading itself.
func (s *ReadingService) Update(ctx context.Context, actor identity.Actor, id uuid.UUID, req UpdateReadingRequest) (*ReadingResponse, error) {
	if err := s.guard.Authorize(ctx, actor, identity.ModuleReadings, appidentity.ActionWrite); err != nil {
		return nil, err
	}

	reading, err := s.readingRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	date, consumption, kind, current := reading.ReadingDate, reading.ConsumptionKWh, reading.Kind, reading.CurrentValue
	if req.ReadingDate != nil {
		date = *req.ReadingDate
	}
	if req.ConsumptionKWh != nil {
		consumption = *req.ConsumptionKWh
	}
	if req.Kind != nil {
		kind = metering.ReadingKind(*req.Kind)
	}
	if req.CurrentValue != nil {
		current = *req.CurrentValue
	}
	if err := reading.Correct(date, consumption, kind, current); err != nil {
		return nil, err
	}
	if err := s.checkProgression(ctx, reading); err != nil {
		return nil, err
	}
	if err := s.readingRepo.Save(ctx, reading); err != nil {
		return nil, err
	}

	response := ToReadingResponse(reading)
	return &response, nil
}

// Delete removes a reading together with its invoice and notifications
func (s *ReadingService) Delete(ctx context.Context, actor identity.Actor, id uuid.UUID) error {
	if err := s.guard.Authorize(ctx, actor, identity.ModuleReadings, appidentity.ActionWrite); err != nil {
		return err
	}
	if err := s.readingRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Reading deleted", zap.String("reading_id", id.String()))
	return nil
}

func (s *ReadingService) checkProgression(ctx context.Context, reading *metering.Reading) error {
	previous, err := s.readingRepo.FindPrevious(ctx, reading.MeterID, reading.ReadingDate, reading.ID)
	if err != nil {
		return err
	}
	next, err := s.readingRepo.FindNext(ctx, reading.MeterID, reading.ReadingDate, reading.ID)
	if err != nil {
		return err
	}
	return reading.CheckProgression(previous, next)
}

// publishDomainEvents hands the reading's events to the bus once it is stored.
// Handler failures are logged by the bus and never undo the write.
func (s *ReadingService) publishDomainEvents(ctx context.Context, reading *metering.Reading) {
	events := reading.GetDomainEvents()
	reading.ClearDomainEvents()
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("Reading event handlers failed",
			zap.String("reading_id", reading.ID.String()),
			zap.Error(err))
	}
}
