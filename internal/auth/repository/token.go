package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	autherrors "mediq/internal/auth/errors"
	"mediq/pkg/config"
	"mediq/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	CollectionName = "tokens"
)

// TokenRepository stores issued refresh tokens. Records expire via a TTL
// index on created_at, so stale rows need no sweeper.
type TokenRepository interface {
	Insert(ctx context.Context, token *model.Token) error
	FindByValue(ctx context.Context, value string) (*model.Token, error)
	DeleteByUserID(ctx context.Context, userID string) error
	DeleteByValue(ctx context.Context, value string) error
}

type mongoTokenRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoTokenRepository(cfg *config.Config) TokenRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoTokenRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoTokenRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoTokenRepository) Insert(ctx context.Context, token *model.Token) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	token.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, token)
	if err != nil {
		return fmt.Errorf("failed to insert token: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		token.ID = oid.Hex()
	}
	return nil
}

func (r *mongoTokenRepository) FindByValue(ctx context.Context, value string) (*model.Token, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var token model.Token
	err := r.collection.FindOne(ctx, bson.M{"token": value}).Decode(&token)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, autherrors.ErrTokenNotFound
		}
		return nil, fmt.Errorf("failed to find token: %w", err)
	}

	return &token, nil
}

func (r *mongoTokenRepository) DeleteByUserID(ctx context.Context, userID string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if _, err := r.collection.DeleteMany(ctx, bson.M{"user_id": userID}); err != nil {
		return fmt.Errorf("failed to delete tokens for user: %w", err)
	}
	return nil
}

func (r *mongoTokenRepository) DeleteByValue(ctx context.Context, value string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.DeleteOne(ctx, bson.M{"token": value})
	if err != nil {
		return fmt.Errorf("failed to delete token: %w", err)
	}
	if result.DeletedCount == 0 {
		return autherrors.ErrTokenNotFound
	}
	return nil
}
