package customer

import (
	"context"

	"github.com/google/uuid"
	appidentity "github.com/gridledger/billing/internal/application/identity"
	"github.com/gridledger/billing/internal/domain/customer"
	"github.com/gridledger/billing/internal/domain/identity"
	"github.com/gridledger/billing/internal/domain/shared"
	"go.uber.org/zap"
)

// ClientService handles client-related operations
type ClientService struct {
	clientRepo customer.ClientRepository
	guard      *appidentity.AccessGuard
	logger     *zap.Logger
}

// NewClientService creates a new ClientService
func NewClientService(clientRepo customer.ClientRepository, guard *appidentity.AccessGuard, logger *zap.Logger) *ClientService {
	return &ClientService{
		clientRepo: clientRepo,
		guard:      guard,
		logger:     logger,
	}
}

// Create registers a new client
func (s *ClientService) Create(ctx context.Context, actor identity.Actor, req CreateClientRequest) (*ClientResponse, error) {
	if err := s.guard.Authorize(ctx, actor, identity.ModuleClients, appidentity.ActionWrite); err != nil {
		return nil, err
	}

	exists, err := s.clientRepo.ExistsByClientNumber(ctx, req.ClientNumber)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewAlreadyExistsError("client number", req.ClientNumber)
	}
	exists, err = s.clientRepo.ExistsByEmail(ctx, req.Email, uuid.Nil)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewAlreadyExistsError("client email", req.Email)
	}

	client, err := customer.NewClient(req.ClientNumber, req.Name, req.Email, req.Phone)
	if err != nil {
		return nil, err
	}
	if err := s.clientRepo.Save(ctx, client); err != nil {
		return nil, err
	}

	s.logger.Info("Client created",
		zap.String("client_id", client.ID.String()),
		zap.String("client_number", client.ClientNumber))

	response := ToClientResponse(client)
	return &response, nil
}

// GetByID retrieves a client
func (s *ClientService) GetByID(ctx context.Context, actor identity.Actor, id uuid.UUID) (*ClientResponse, error) {
	if err := s.guard.Authorize(ctx, actor, identity.ModuleClients, appidentity.ActionRead); err != nil {
		return nil, err
	}
	client, err := s.clientRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToClientResponse(client)
	return &response, nil
}

// List lists clients ordered by name
func (s *ClientService) List(ctx context.Context, actor identity.Actor, filter ClientListFilter) ([]ClientResponse, int64, error) {
	if err := s.guard.Authorize(ctx, actor, identity.ModuleClients, appidentity.ActionRead); err != nil {
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

	clients, err := s.clientRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.clientRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]ClientResponse, len(clients))
	for i := range clients {
		responses[i] = ToClientResponse(&clients[i])
	}
	return responses, total, nil
}

// Update changes a client's name and contact details
func (s *ClientService) Update(ctx context.Context, actor identity.Actor, id uuid.UUID, req UpdateClientRequest) (*ClientResponse, error) {
	if err := s.guard.Authorize(ctx, actor, identity.ModuleClients, appidentity.ActionWrite); err != nil {
		return nil, err
	}

	client, err := s.clientRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	name, email, phone := client.Name, client.Email, client.Phone
	if req.Name != nil {
		name = *req.Name
	}
	if req.Email != nil {
		email = *req.Email
		exists, err := s.clientRepo.ExistsByEmail(ctx, email, client.ID)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, shared.NewAlreadyExistsError("client email", email)
		}
	}
	if req.Phone != nil {
		phone = *req.Phone
	}

	if err := client.Update(name, email, phone); err != nil {
		return nil, err
	}
	if err := s.clientRepo.Save(ctx, client); err != nil {
		return nil, err
	}

	response := ToClientResponse(client)
	return &response, nil
}

// Delete removes a client together with its contracts, meters, readings,
// invoices, payments and notifications
func (s *ClientService) Delete(ctx context.Context, actor identity.Actor, id uuid.UUID) error {
	if err := s.guard.Authorize(ctx, actor, identity.ModuleClients, appidentity.ActionWrite); err != nil {
		return err
	}
	if err := s.clientRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Client deleted", zap.String("client_id", id.String()))
	return nil
}
