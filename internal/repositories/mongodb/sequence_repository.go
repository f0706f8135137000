package mongodb

import (
	"context"
	"fmt"
	"time"

	"goshop/internal/repositories/interfaces"
	"goshop/internal/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type sequenceRepository struct {
	collection *mongo.Collection
}

func NewSequenceRepository(db *mongo.Database) interfaces.SequenceRepository {
	return &sequenceRepository{
		collection: db.Collection(utils.CollectionCounters),
	}
}

// Next reserves the next ordinal for the kind and day. The findAndModify with
// $inc and upsert is atomic on the server, so concurrent callers each get a
// distinct value even on the first call of a day.
func (r *sequenceRepository) Next(ctx context.Context, kind string, day time.Time) (int64, error) {
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var counter struct {
		ID    string `bson:"_id"`
		Value int64  `bson:"value"`
	}

	err := r.collection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": utils.SequenceKey(kind, day)},
		bson.M{"$inc": bson.M{"value": int64(1)}},
		opts,
	).Decode(&counter)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return 0, fmt.Errorf("failed to reserve sequence value: %w", err)
		}
		return 0, fmt.Errorf("failed to increment sequence: %w", err)
	}

	return counter.Value, nil
}
