package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/vasapolrittideah/linkbridge/services/link-service/internal/repository"
	"github.com/vasapolrittideah/linkbridge/shared/provider"
)

// ReconcileUsecase defines the Role Reconciler.
type ReconcileUsecase interface {
	// Reconcile grants the role to requestingIdentity if its link exists and the role is missing.
	// It never revokes roles and never writes to the Account Store.
	Reconcile(ctx context.Context, requestingIdentity string) ReconcileOutcome
}

type reconcileUsecase struct {
	logger      *zerolog.Logger
	accountRepo repository.AccountRepository
	roleGateway RoleGateway
	alerter     OperatorAlerter
}

// NewReconcileUsecase creates a Role Reconciler. A nil alerter disables operator alerts.
func NewReconcileUsecase(
	logger *zerolog.Logger,
	accountRepo repository.AccountRepository,
	roleGateway RoleGateway,
	alerter OperatorAlerter,
) ReconcileUsecase {
	if alerter == nil {
		alerter = nopAlerter{}
	}

	return &reconcileUsecase{
		logger:      logger,
		accountRepo: accountRepo,
		roleGateway: roleGateway,
		alerter:     alerter,
	}
}

func (u *reconcileUsecase) Reconcile(ctx context.Context, requestingIdentity string) ReconcileOutcome {
	logger := loggerFrom(ctx, u.logger).With().Str("identity", requestingIdentity).Logger()

	if strings.TrimSpace(requestingIdentity) == "" {
		return NotLinked
	}

	account, err := u.accountRepo.GetAccountByLinkedIdentity(ctx, requestingIdentity)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return NotLinked
		}
		logger.Error().Err(err).Msg("failed to look up account by linked identity")
		return ReconcileStoreUnavailable
	}

	logger = logger.With().Str("account_id", account.ID).Logger()

	hasRole, err := u.roleGateway.HasRole(ctx, requestingIdentity)
	if err != nil {
		if errors.Is(err, provider.ErrRoleUnresolvable) {
			return u.roleUnavailable(ctx, &logger, requestingIdentity, account.ID, err)
		}
		logger.Error().Err(err).Msg("failed to read role membership")
		return GrantFailed
	}

	if hasRole {
		return AlreadyCurrent
	}

	if err := u.roleGateway.GrantRole(ctx, requestingIdentity); err != nil {
		if errors.Is(err, provider.ErrRoleUnresolvable) {
			return u.roleUnavailable(ctx, &logger, requestingIdentity, account.ID, err)
		}
		logger.Error().Err(err).Msg("failed to grant role")
		u.alerter.Alert(ctx, Alert{
			Kind:      AlertGrantFailed,
			Identity:  requestingIdentity,
			AccountID: account.ID,
			Err:       err,
		})
		return GrantFailed
	}

	logger.Info().Msg("role reconciled")
	return Reconciled
}

func (u *reconcileUsecase) roleUnavailable(
	ctx context.Context,
	logger *zerolog.Logger,
	identity, accountID string,
	err error,
) ReconcileOutcome {
	logger.Error().Err(err).Msg("authorization role is not resolvable")
	u.alerter.Alert(ctx, Alert{
		Kind:      AlertRoleUnavailable,
		Identity:  identity,
		AccountID: accountID,
		Err:       err,
	})
	return RoleUnavailable
}
