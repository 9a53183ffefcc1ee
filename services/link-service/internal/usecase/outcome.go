package usecase

// LinkOutcome is the result of resolving a link code.
type LinkOutcome string

const (
	// Linked means the account was linked and the role granted.
	Linked LinkOutcome = "linked"
	// LinkedRoleGrantFailed means the link is committed but the role grant failed.
	// The caller should route the user to reconciliation.
	LinkedRoleGrantFailed LinkOutcome = "linked_role_grant_failed"
	// AlreadyLinked means the requesting identity already owns a linked account.
	AlreadyLinked LinkOutcome = "already_linked"
	// InvalidCode means no unlinked account holds the code, or another request consumed it first.
	InvalidCode LinkOutcome = "invalid_code"
	// LinkStoreUnavailable means the Account Store could not be read or written. Nothing was changed.
	LinkStoreUnavailable LinkOutcome = "store_unavailable"
)

// ReconcileOutcome is the result of reconciling an identity's role with its link.
type ReconcileOutcome string

const (
	// Reconciled means the missing role was granted.
	Reconciled ReconcileOutcome = "reconciled"
	// AlreadyCurrent means the identity already holds the role. Nothing was changed.
	AlreadyCurrent ReconcileOutcome = "already_current"
	// NotLinked means no account is linked to the identity.
	NotLinked ReconcileOutcome = "not_linked"
	// RoleUnavailable means the role configuration cannot be resolved on the platform.
	RoleUnavailable ReconcileOutcome = "role_unavailable"
	// GrantFailed means the role could not be read or granted. Safe to retry.
	GrantFailed ReconcileOutcome = "grant_failed"
	// ReconcileStoreUnavailable means the Account Store could not be read.
	ReconcileStoreUnavailable ReconcileOutcome = "store_unavailable"
)
