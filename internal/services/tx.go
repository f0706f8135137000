package services

import (
	"context"

	"goshop/pkg/database"

	"go.mongodb.org/mongo-driver/mongo"
)

// TxRunner scopes a function to a storage transaction. Every write the
// function performs through the passed context commits or aborts together.
type TxRunner interface {
	Run(ctx context.Context, fn func(ctx context.Context) error) error
}

type mongoTxRunner struct {
	db *database.MongoDB
}

func NewTxRunner(db *database.MongoDB) TxRunner {
	return &mongoTxRunner{db: db}
}

func (r *mongoTxRunner) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	_, err := r.db.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		return nil, fn(sessCtx)
	})
	return err
}
