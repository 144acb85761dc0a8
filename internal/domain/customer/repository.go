package customer

import (
	"context"

	"github.com/google/uuid"
	"github.com/gridledger/billing/internal/domain/shared"
)

// ClientRepository defines the interface for client persistence
type ClientRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Client, error)
	// FindAll lists clients ordered by name
	FindAll(ctx context.Context, filter shared.Filter) ([]Client, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	ExistsByClientNumber(ctx context.Context, clientNumber string) (bool, error)
	// ExistsByEmail checks the email against every client other than excludeID
	ExistsByEmail(ctx context.Context, email string, excludeID uuid.UUID) (bool, error)
	Save(ctx context.Context, client *Client) error
	// Delete removes the client; contracts and everything below cascade
	Delete(ctx context.Context, id uuid.UUID) error
}

// ContractRepository defines the interface for contract persistence
type ContractRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Contract, error)

	// FindByIDForUpdate loads the contract holding a row lock until the
	// surrounding transaction ends
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Contract, error)

	// FindAll lists contracts, most recent start date first
	FindAll(ctx context.Context, filter shared.Filter) ([]Contract, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	ExistsByContractNumber(ctx context.Context, contractNumber string) (bool, error)
	Save(ctx context.Context, contract *Contract) error
	Delete(ctx context.Context, id uuid.UUID) error
}
