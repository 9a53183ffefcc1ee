package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/vasapolrittideah/linkbridge/services/link-service/internal/repository"
)

const defaultGrantTimeout = 5 * time.Second

// LinkUsecase defines the Link Resolver.
type LinkUsecase interface {
	// ResolveLink consumes submittedCode on behalf of requestingIdentity.
	// It never returns an error; every result, partial success included, is an outcome.
	ResolveLink(ctx context.Context, requestingIdentity, submittedCode string) LinkOutcome
}

type linkUsecase struct {
	logger       *zerolog.Logger
	accountRepo  repository.AccountRepository
	roleGateway  RoleGateway
	alerter      OperatorAlerter
	grantTimeout time.Duration
}

// NewLinkUsecase creates a Link Resolver. A nil alerter disables operator alerts.
func NewLinkUsecase(
	logger *zerolog.Logger,
	accountRepo repository.AccountRepository,
	roleGateway RoleGateway,
	alerter OperatorAlerter,
	grantTimeout time.Duration,
) LinkUsecase {
	if alerter == nil {
		alerter = nopAlerter{}
	}
	if grantTimeout <= 0 {
		grantTimeout = defaultGrantTimeout
	}

	return &linkUsecase{
		logger:       logger,
		accountRepo:  accountRepo,
		roleGateway:  roleGateway,
		alerter:      alerter,
		grantTimeout: grantTimeout,
	}
}

func (u *linkUsecase) ResolveLink(ctx context.Context, requestingIdentity, submittedCode string) LinkOutcome {
	logger := loggerFrom(ctx, u.logger).With().Str("identity", requestingIdentity).Logger()

	// Codes are opaque: compared byte for byte, never trimmed or case-folded.
	if strings.TrimSpace(requestingIdentity) == "" || submittedCode == "" {
		return InvalidCode
	}

	// First link wins: an identity holding a code for a second account is still refused.
	_, err := u.accountRepo.GetAccountByLinkedIdentity(ctx, requestingIdentity)
	switch {
	case err == nil:
		return AlreadyLinked
	case !errors.Is(err, repository.ErrAccountNotFound):
		logger.Error().Err(err).Msg("failed to look up account by linked identity")
		return LinkStoreUnavailable
	}

	candidates, err := u.accountRepo.ListUnlinkedAccountsByPendingCode(ctx, submittedCode)
	if err != nil {
		logger.Error().Err(err).Msg("failed to look up account by pending code")
		return LinkStoreUnavailable
	}
	if len(candidates) == 0 {
		return InvalidCode
	}

	account := candidates[0]
	if len(candidates) > 1 {
		ids := make([]string, 0, len(candidates))
		for _, c := range candidates {
			ids = append(ids, c.ID)
		}
		logger.Warn().
			Strs("account_ids", ids).
			Str("chosen_account_id", account.ID).
			Msg("pending code matches more than one unlinked account")
	}

	logger = logger.With().Str("account_id", account.ID).Logger()

	err = u.accountRepo.CommitLink(ctx, account.ID, submittedCode, requestingIdentity)
	switch {
	case err == nil:
	case errors.Is(err, repository.ErrLinkNotApplied):
		logger.Info().Msg("pending code consumed by a concurrent request")
		return InvalidCode
	case errors.Is(err, repository.ErrIdentityAlreadyLinked):
		logger.Info().Msg("identity linked by a concurrent request")
		return AlreadyLinked
	default:
		logger.Error().Err(err).Msg("failed to commit link")
		return LinkStoreUnavailable
	}

	logger.Info().Msg("account linked")

	// The link is committed. The grant must run even if the caller has gone away,
	// so it gets its own deadline instead of inheriting the request's cancellation.
	grantCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), u.grantTimeout)
	defer cancel()

	if err := u.roleGateway.GrantRole(grantCtx, requestingIdentity); err != nil {
		logger.Error().Err(err).Msg("failed to grant role after link")
		u.alerter.Alert(ctx, Alert{
			Kind:      AlertLinkedRoleGrantFailed,
			Identity:  requestingIdentity,
			AccountID: account.ID,
			Err:       err,
		})
		return LinkedRoleGrantFailed
	}

	return Linked
}
