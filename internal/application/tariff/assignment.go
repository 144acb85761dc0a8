package tariff

import (
	"context"

	"github.com/google/uuid"
	appidentity "github.com/gridledger/billing/internal/application/identity"
	"github.com/gridledger/billing/internal/domain/identity"
	"github.com/gridledger/billing/internal/domain/shared"
	"github.com/gridledger/billing/internal/domain/tariff"
	"github.com/gridledger/billing/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// AssignTariff gives a contract its tariff. A contract holds at most one
// assignment; replacing it goes through ReassignTariff.
func (s *TariffService) AssignTariff(ctx context.Context, actor identity.Actor, contractID, tariffID uuid.UUID) (resp *AssignmentResponse, err error) {
	if err := s.guard.Authorize(ctx, actor, identity.ModuleTariffs, appidentity.ActionWrite); err != nil {
		return nil, err
	}

	ctx, span := telemetry.StartServiceSpan(ctx, "tariff", "assign",
		telemetry.IDAttr(telemetry.SpanAttrContractID, contractID),
		telemetry.IDAttr(telemetry.SpanAttrTariffID, tariffID))
	defer func() { telemetry.EndSpan(span, err) }()

	var (
		assignment *tariff.Assignment
		t          *tariff.Tariff
	)
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		if _, err := repos.Contracts().FindByIDForUpdate(ctx, contractID); err != nil {
			return err
		}
		found, err := repos.Tariffs().FindByID(ctx, tariffID)
		if err != nil {
			return err
		}
		current, err := repos.Assignments().FindByContract(ctx, contractID)
		if err != nil {
			return err
		}
		if err := tariff.CheckAssignable(current, tariffID); err != nil {
			return err
		}
		created, err := tariff.NewAssignment(contractID, tariffID, s.now())
		if err != nil {
			return err
		}
		if err := repos.Assignments().Create(ctx, created); err != nil {
			return err
		}
		assignment, t = created, found
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Tariff assigned",
		zap.String("contract_id", contractID.String()),
		zap.String("tariff_id", tariffID.String()))
	s.publish(ctx, tariff.NewAssignmentChangedEvent(tariff.EventTypeTariffAssigned, contractID, nil, &tariffID))

	response := ToAssignmentResponse(assignment, t)
	return &response, nil
}

// ReassignTariff replaces whatever the contract is assigned with tariffID.
// The contract row is locked for the duration so concurrent reassignments
// leave exactly one assignment behind.
func (s *TariffService) ReassignTariff(ctx context.Context, actor identity.Actor, contractID, tariffID uuid.UUID) (resp *AssignmentResponse, err error) {
	if err := s.guard.Authorize(ctx, actor, identity.ModuleTariffs, appidentity.ActionWrite); err != nil {
		return nil, err
	}

	ctx, span := telemetry.StartServiceSpan(ctx, "tariff", "reassign",
		telemetry.IDAttr(telemetry.SpanAttrContractID, contractID),
		telemetry.IDAttr(telemetry.SpanAttrTariffID, tariffID))
	defer func() { telemetry.EndSpan(span, err) }()

	var (
		assignment *tariff.Assignment
		t          *tariff.Tariff
		previous   *uuid.UUID
	)
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		if _, err := repos.Contracts().FindByIDForUpdate(ctx, contractID); err != nil {
			return err
		}
		found, err := repos.Tariffs().FindByID(ctx, tariffID)
		if err != nil {
			return err
		}
		current, err := repos.Assignments().FindByContract(ctx, contractID)
		if err != nil {
			return err
		}
		if current != nil {
			prev := current.TariffID
			previous = &prev
		}
		if _, err := repos.Assignments().DeleteByContract(ctx, contractID); err != nil {
			return err
		}
		created, err := tariff.NewAssignment(contractID, tariffID, s.now())
		if err != nil {
			return err
		}
		if err := repos.Assignments().Create(ctx, created); err != nil {
			return err
		}
		assignment, t = created, found
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Tariff reassigned",
		zap.String("contract_id", contractID.String()),
		zap.String("tariff_id", tariffID.String()))
	s.publish(ctx, tariff.NewAssignmentChangedEvent(tariff.EventTypeTariffReassigned, contractID, previous, &tariffID))

	response := ToAssignmentResponse(assignment, t)
	return &response, nil
}

// CurrentTariff returns the contract's assignment, nil when it has none
func (s *TariffService) CurrentTariff(ctx context.Context, actor identity.Actor, contractID uuid.UUID) (*AssignmentResponse, error) {
	if err := s.guard.Authorize(ctx, actor, identity.ModuleTariffs, appidentity.ActionRead); err != nil {
		return nil, err
	}

	assignment, err := s.assignmentRepo.FindByContract(ctx, contractID)
	if err != nil {
		return nil, err
	}
	if assignment == nil {
		return nil, nil
	}
	t, err := s.tariffRepo.FindByID(ctx, assignment.TariffID)
	if err != nil {
		return nil, err
	}
	response := ToAssignmentResponse(assignment, t)
	return &response, nil
}

// UnassignTariff removes the contract's assignment
func (s *TariffService) UnassignTariff(ctx context.Context, actor identity.Actor, contractID uuid.UUID) error {
	if err := s.guard.Authorize(ctx, actor, identity.ModuleTariffs, appidentity.ActionWrite); err != nil {
		return err
	}

	var previous *uuid.UUID
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		if _, err := repos.Contracts().FindByIDForUpdate(ctx, contractID); err != nil {
			return err
		}
		current, err := repos.Assignments().FindByContract(ctx, contractID)
		if err != nil {
			return err
		}
		if current == nil {
			return shared.NewNotFoundError("tariff assignment")
		}
		prev := current.TariffID
		previous = &prev
		_, err = repos.Assignments().DeleteByContract(ctx, contractID)
		return err
	})
	if err != nil {
		return err
	}

	s.logger.Info("Tariff unassigned", zap.String("contract_id", contractID.String()))
	s.publish(ctx, tariff.NewAssignmentChangedEvent(tariff.EventTypeTariffUnassigned, contractID, previous, nil))
	return nil
}

func (s *TariffService) publish(ctx context.Context, event shared.DomainEvent) {
	if s.eventPublisher == nil {
		return
	}
	if err := s.eventPublisher.Publish(ctx, event); err != nil {
		s.logger.Warn("Failed to publish assignment event",
			zap.String("event_type", event.EventType()),
			zap.Error(err))
	}
}
