package tariff

import (
	"context"
	"time"

	"github.com/google/uuid"
	appidentity "github.com/gridledger/billing/internal/application/identity"
	"github.com/gridledger/billing/internal/domain/identity"
	"github.com/gridledger/billing/internal/domain/shared"
	"github.com/gridledger/billing/internal/domain/tariff"
	"go.uber.org/zap"
)

// TariffService manages the tariff catalogue and the tariff assigned to
// each contract
type TariffService struct {
	tariffRepo     tariff.TariffRepository
	assignmentRepo tariff.AssignmentRepository
	txScope        TransactionScope
	guard          *appidentity.AccessGuard
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
	now            func() time.Time
}

// NewTariffService creates a new TariffService
func NewTariffService(
	tariffRepo tariff.TariffRepository,
	assignmentRepo tariff.AssignmentRepository,
	txScope TransactionScope,
	guard *appidentity.AccessGuard,
	logger *zap.Logger,
) *TariffService {
	return &TariffService{
		tariffRepo:     tariffRepo,
		assignmentRepo: assignmentRepo,
		txScope:        txScope,
		guard:          guard,
		logger:         logger,
		now:            time.Now,
	}
}

// SetEventPublisher sets the publisher for assignment change events
func (s *TariffService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create publishes a new tariff
func (s *TariffService) Create(ctx context.Context, actor identity.Actor, req CreateTariffRequest) (*TariffResponse, error) {
	if err := s.guard.Authorize(ctx, actor, identity.ModuleTariffs, appidentity.ActionWrite); err != nil {
		return nil, err
	}

	t, err := tariff.NewTariff(tariff.Season(req.Season), tariff.ClientClass(req.ClientClass), req.PricePerKWh, req.EffectiveDate)
	if err != nil {
		return nil, err
	}
	if err := s.tariffRepo.Save(ctx, t); err != nil {
		return nil, err
	}

	s.logger.Info("Tariff created",
		zap.String("tariff_id", t.ID.String()),
		zap.String("season", string(t.Season)),
		zap.String("client_class", string(t.ClientClass)),
		zap.Int64("price_per_kwh", t.PricePerKWh))

	response := ToTariffResponse(t)
	return &response, nil
}

// GetByID retrieves a tariff
func (s *TariffService) GetByID(ctx context.Context, actor identity.Actor, id uuid.UUID) (*TariffResponse, error) {
	if err := s.guard.Authorize(ctx, actor, identity.ModuleTariffs, appidentity.ActionRead); err != nil {
		return nil, err
	}
	t, err := s.tariffRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToTariffResponse(t)
	return &response, nil
}

// List lists tariffs, latest effective date first
func (s *TariffService) List(ctx context.Context, actor identity.Actor, filter TariffListFilter) ([]TariffResponse, int64, error) {
	if err := s.guard.Authorize(ctx, actor, identity.ModuleTariffs, appidentity.ActionRead); err != nil {
		return nil, 0, err
	}

	domainFilter := shared.DefaultFilter()
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	if filter.Season != "" {
		domainFilter.Filters["season"] = filter.Season
	}
	if filter.ClientClass != "" {
		domainFilter.Filters["client_class"] = filter.ClientClass
	}

	tariffs, err := s.tariffRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.tariffRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]TariffResponse, len(tariffs))
	for i := range tariffs {
		responses[i] = ToTariffResponse(&tariffs[i])
	}
	return responses, total, nil
}

// Update revises a tariff. Invoices already issued keep their totals.
func (s *TariffService) Update(ctx context.Context, actor identity.Actor, id uuid.UUID, req UpdateTariffRequest) (*TariffResponse, error) {
	if err := s.guard.Authorize(ctx, actor, identity.ModuleTariffs, appidentity.ActionWrite); err != nil {
		return nil, err
	}

	t, err := s.tariffRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	season, class, price, effective := t.Season, t.ClientClass, t.PricePerKWh, t.EffectiveDate
	if req.Season != nil {
		season = tariff.Season(*req.Season)
	}
	if req.ClientClass != nil {
		class = tariff.ClientClass(*req.ClientClass)
	}
	if req.PricePerKWh != nil {
		price = *req.PricePerKWh
	}
	if req.EffectiveDate != nil {
		effective = *req.EffectiveDate
	}
	if err := t.Update(season, class, price, effective); err != nil {
		return nil, err
	}
	if err := s.tariffRepo.Save(ctx, t); err != nil {
		return nil, err
	}

	response := ToTariffResponse(t)
	return &response, nil
}

// Delete removes a tariff and the assignments that reference it
func (s *TariffService) Delete(ctx context.Context, actor identity.Actor, id uuid.UUID) error {
	if err := s.guard.Authorize(ctx, actor, identity.ModuleTariffs, appidentity.ActionWrite); err != nil {
		return err
	}
	if err := s.tariffRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Tariff deleted", zap.String("tariff_id", id.String()))
	return nil
}
