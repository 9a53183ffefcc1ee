package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"github.com/vasapolrittideah/linkbridge/services/link-service/internal/model"
)

var (
	// ErrAccountNotFound is returned when no account matches a lookup.
	ErrAccountNotFound = errors.New("account not found")
	// ErrLinkNotApplied is returned when the conditional link update matched no account,
	// i.e. the account was linked or its code changed since it was read.
	ErrLinkNotApplied = errors.New("link was not applied")
	// ErrIdentityAlreadyLinked is returned when the identity is already linked to another account.
	ErrIdentityAlreadyLinked = errors.New("identity is already linked to an account")
)

// MaxPendingCodeMatches bounds ListUnlinkedAccountsByPendingCode. Two is enough to tell
// a unique code from a duplicated one.
const MaxPendingCodeMatches = 2

// AccountRepository defines the Account Store operations used by the link service.
// Any error other than the sentinels above means the store is unavailable.
type AccountRepository interface {
	// GetAccountByLinkedIdentity returns the account linked to identity, or ErrAccountNotFound.
	GetAccountByLinkedIdentity(ctx context.Context, identity string) (*model.Account, error)

	// ListUnlinkedAccountsByPendingCode returns unlinked accounts holding code, oldest first,
	// at most MaxPendingCodeMatches of them. No match is an empty slice, not an error.
	ListUnlinkedAccountsByPendingCode(ctx context.Context, code string) ([]model.Account, error)

	// CommitLink links accountID to identity and consumes code in a single conditional
	// update. It only applies while the account is unlinked and still holds code.
	CommitLink(ctx context.Context, accountID, code, identity string) error

	// Ping checks that the store is reachable.
	Ping(ctx context.Context) error
}

const accountCollection = "accounts"

type accountMongoRepository struct {
	db *mongo.Database
}

// NewAccountMongoRepository creates a MongoDB Account Store and ensures its indexes.
func NewAccountMongoRepository(ctx context.Context, logger *zerolog.Logger, db *mongo.Database) AccountRepository {
	if err := ensureAccountIndexes(ctx, db); err != nil {
		logger.Fatal().Err(err).Msg("failed to create account indexes")
	}

	return &accountMongoRepository{db: db}
}

func ensureAccountIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := []mongo.IndexModel{
		{
			// Backs the one-account-per-identity invariant when two different codes race.
			Keys: bson.D{{Key: "linked_identity", Value: 1}},
			Options: options.Index().
				SetName("uniq_linked_identity").
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"linked_identity": bson.M{"$type": "string"}}),
		},
		{
			Keys:    bson.D{{Key: "pending_code", Value: 1}, {Key: "created_at", Value: 1}},
			Options: options.Index().SetName("idx_pending_code_created_at"),
		},
	}

	_, err := db.Collection(accountCollection).Indexes().CreateMany(ctx, indexes)
	return err
}

func (r *accountMongoRepository) GetAccountByLinkedIdentity(
	ctx context.Context,
	identity string,
) (*model.Account, error) {
	var account model.Account
	err := r.db.Collection(accountCollection).
		FindOne(ctx, bson.M{"linked_identity": identity}).
		Decode(&account)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("get account by linked identity: %w", err)
	}

	return &account, nil
}

func (r *accountMongoRepository) ListUnlinkedAccountsByPendingCode(
	ctx context.Context,
	code string,
) ([]model.Account, error) {
	findOptions := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}).
		SetLimit(MaxPendingCodeMatches)

	cursor, err := r.db.Collection(accountCollection).Find(ctx, bson.M{
		"pending_code":    code,
		"linked_identity": nil,
	}, findOptions)
	if err != nil {
		return nil, fmt.Errorf("list accounts by pending code: %w", err)
	}
	defer cursor.Close(ctx)

	accounts := make([]model.Account, 0, MaxPendingCodeMatches)
	if err := cursor.All(ctx, &accounts); err != nil {
		return nil, fmt.Errorf("decode accounts by pending code: %w", err)
	}

	return accounts, nil
}

func (r *accountMongoRepository) CommitLink(ctx context.Context, accountID, code, identity string) error {
	now := time.Now()
	filter := bson.M{
		"_id":             accountID,
		"linked_identity": nil,
		"pending_code":    code,
	}
	update := bson.M{
		"$set": bson.M{
			"linked_identity": identity,
			"linked_at":       now,
			"updated_at":      now,
		},
		"$unset": bson.M{"pending_code": ""},
	}

	result, err := r.db.Collection(accountCollection).UpdateOne(ctx, filter, update)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrIdentityAlreadyLinked
		}
		return fmt.Errorf("commit link: %w", err)
	}

	if result.MatchedCount == 0 {
		return ErrLinkNotApplied
	}

	return nil
}

func (r *accountMongoRepository) Ping(ctx context.Context) error {
	return r.db.Client().Ping(ctx, readpref.Primary())
}
