package customer

import (
	"context"
	"time"

	"github.com/google/uuid"
	appidentity "github.com/gridledger/billing/internal/application/identity"
	"github.com/gridledger/billing/internal/domain/customer"
	"github.com/gridledger/billing/internal/domain/identity"
	"github.com/gridledger/billing/internal/domain/shared"
	"go.uber.org/zap"
)

// ContractService handles supply contracts
type ContractService struct {
	contractRepo customer.ContractRepository
	clientRepo   customer.ClientRepository
	guard        *appidentity.AccessGuard
	logger       *zap.Logger
	now          func() time.Time
}

// NewContractService creates a new ContractService
func NewContractService(
	contractRepo customer.ContractRepository,
	clientRepo customer.ClientRepository,
	guard *appidentity.AccessGuard,
	logger *zap.Logger,
) *ContractService {
	return &ContractService{
		contractRepo: contractRepo,
		clientRepo:   clientRepo,
		guard:        guard,
		logger:       logger,
		now:          time.Now,
	}
}

// Create signs a new contract for an existing client. Status defaults to ACTIVE.
func (s *ContractService) Create(ctx context.Context, actor identity.Actor, req CreateContractRequest) (*ContractResponse, error) {
	if err := s.guard.Authorize(ctx, actor, identity.ModuleContracts, appidentity.ActionWrite); err != nil {
		return nil, err
	}

	if _, err := s.clientRepo.FindByID(ctx, req.ClientID); err != nil {
		return nil, err
	}
	exists, err := s.contractRepo.ExistsByContractNumber(ctx, req.ContractNumber)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewAlreadyExistsError("contract number", req.ContractNumber)
	}

	status := customer.ContractStatusActive
	if req.Status != "" {
		status = customer.ContractStatus(req.Status)
	}
	contract, err := customer.NewContract(req.ContractNumber, req.ClientID, req.StartDate, req.EndDate, status, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.contractRepo.Save(ctx, contract); err != nil {
		return nil, err
	}

	s.logger.Info("Contract created",
		zap.String("contract_id", contract.ID.String()),
		zap.String("client_id", contract.ClientID.String()),
		zap.String("status", string(contract.Status)))

	response := ToContractResponse(contract)
	return &response, nil
}

// GetByID retrieves a contract
func (s *ContractService) GetByID(ctx context.Context, actor identity.Actor, id uuid.UUID) (*ContractResponse, error) {
	if err := s.guard.Authorize(ctx, actor, identity.ModuleContracts, appidentity.ActionRead); err != nil {
		return nil, err
	}
	contract, err := s.contractRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToContractResponse(contract)
	return &response, nil
}

// List lists contracts, most recent start date first
func (s *ContractService) List(ctx context.Context, actor identity.Actor, filter ContractListFilter) ([]ContractResponse, int64, error) {
	if err := s.guard.Authorize(ctx, actor, identity.ModuleContracts, appidentity.ActionRead); err != nil {
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
	if filter.ClientID != "" {
		domainFilter.Filters["client_id"] = filter.ClientID
	}
	if filter.Status != "" {
		domainFilter.Filters["status"] = filter.Status
	}

	contracts, err := s.contractRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.contractRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]ContractResponse, len(contracts))
	for i := range contracts {
		responses[i] = ToContractResponse(&contracts[i])
	}
	return responses, total, nil
}

// Update reschedules the contract and/or changes its status
func (s *ContractService) Update(ctx context.Context, actor identity.Actor, id uuid.UUID, req UpdateContractRequest) (*ContractResponse, error) {
	if err := s.guard.Authorize(ctx, actor, identity.ModuleContracts, appidentity.ActionWrite); err != nil {
		return nil, err
	}

	contract, err := s.contractRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	today := s.now()

	var status customer.ContractStatus
	if req.Status != nil {
		status = customer.ContractStatus(*req.Status)
	}

	// Deactivate before rescheduling so an expired period can be recorded
	if status == customer.ContractStatusInactive {
		contract.Deactivate()
	}
	if req.StartDate != nil || req.EndDate != nil {
		start, end := contract.StartDate, contract.EndDate
		if req.StartDate != nil {
			start = *req.StartDate
		}
		if req.EndDate != nil {
			end = *req.EndDate
		}
		if err := contract.Reschedule(start, end, today); err != nil {
			return nil, err
		}
	}
	if status != "" && status != customer.ContractStatusInactive {
		if err := contract.ChangeStatus(status, today); err != nil {
			return nil, err
		}
	}

	if err := s.contractRepo.Save(ctx, contract); err != nil {
		return nil, err
	}

	response := ToContractResponse(contract)
	return &response, nil
}

// Delete removes a contract and everything attached to it
func (s *ContractService) Delete(ctx context.Context, actor identity.Actor, id uuid.UUID) error {
	if err := s.guard.Authorize(ctx, actor, identity.ModuleContracts, appidentity.ActionWrite); err != nil {
		return err
	}
	if err := s.contractRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Contract deleted", zap.String("contract_id", id.String()))
	return nil
}
