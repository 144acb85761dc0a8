package customer

import (
	"regexp"
	"strings"
	"time"

	"github.com/gridledger/billing/internal/domain/shared"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// Client is the utility customer that owns contracts
// It is the aggregate root for client-related operations
type Client struct {
	shared.BaseAggregateRoot
	ClientNumber string // Immutable after creation
	Name         string
	Email        string
	Phone        string
}

// NewClient creates a new client
func NewClient(clientNumber, name, email, phone string) (*Client, error) {
	clientNumber = strings.TrimSpace(clientNumber)
	if clientNumber == "" {
		return nil, shared.NewValidationError("client_number", "cannot be empty")
	}
	if len(clientNumber) > 45 {
		return nil, shared.NewValidationError("client_number", "cannot exceed 45 characters")
	}

	client := &Client{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ClientNumber:      clientNumber,
	}
	if err := client.apply(name, email, phone); err != nil {
		return nil, err
	}

	client.AddDomainEvent(NewClientCreatedEvent(client))

	return client, nil
}

// Update replaces the client's mutable details
func (c *Client) Update(name, email, phone string) error {
	if err := c.apply(name, email, phone); err != nil {
		return err
	}
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
	return nil
}

func (c *Client) apply(name, email, phone string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewValidationError("name", "cannot be empty")
	}
	if len(name) > 45 {
		return shared.NewValidationError("name", "cannot exceed 45 characters")
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if len(email) > 45 {
		return shared.NewValidationError("email", "cannot exceed 45 characters")
	}
	if !emailRegex.MatchString(email) {
		return shared.NewValidationError("email", "invalid email format")
	}
	phone = strings.TrimSpace(phone)
	if len(phone) > 15 {
		return shared.NewValidationError("phone", "cannot exceed 15 characters")
	}

	c.Name = name
	c.Email = email
	c.Phone = phone
	return nil
}
