package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Migration struct {
	Version     int
	Description string
	Up          func(*mongo.Database) error
	Down        func(*mongo.Database) error
}

type Migrator struct {
	db         *mongo.Database
	migrations []Migration
}

func NewMigrator(db *mongo.Database) *Migrator {
	return &Migrator{
		db:         db,
		migrations: getMigrations(),
	}
}

func (m *Migrator) Up() error {
	err := m.createMigrationsCollection()
	if err != nil {
		return err
	}

	currentVersion, err := m.getCurrentVersion()
	if err != nil {
		return err
	}

	for _, migration := range m.migrations {
		if migration.Version > currentVersion {
			log.Printf("Running migration %d: %s", migration.Version, migration.Description)

			err := migration.Up(m.db)
			if err != nil {
				return fmt.Errorf("migration %d failed: %w", migration.Version, err)
			}

			err = m.updateVersion(migration.Version)
			if err != nil {
				return fmt.Errorf("failed to update migration version: %w", err)
			}

			log.Printf("Migration %d completed successfully", migration.Version)
		}
	}

	return nil
}

func (m *Migrator) Down(targetVersion int) error {
	currentVersion, err := m.getCurrentVersion()
	if err != nil {
		return err
	}

	for i := len(m.migrations) - 1; i >= 0; i-- {
		migration := m.migrations[i]
		if migration.Version <= currentVersion && migration.Version > targetVersion {
			log.Printf("Reverting migration %d: %s", migration.Version, migration.Description)

			err := migration.Down(m.db)
			if err != nil {
				return fmt.Errorf("migration %d rollback failed: %w", migration.Version, err)
			}

			previousVersion := targetVersion
			if i > 0 {
				previousVersion = m.migrations[i-1].Version
			}

			err = m.updateVersion(previousVersion)
			if err != nil {
				return fmt.Errorf("failed to update migration version: %w", err)
			}

			log.Printf("Migration %d reverted successfully", migration.Version)
		}
	}

	return nil
}

func (m *Migrator) createMigrationsCollection() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	collections, err := m.db.ListCollectionNames(ctx, bson.D{})
	if err != nil {
		return err
	}

	for _, name := range collections {
		if name == "migrations" {
			return nil
		}
	}

	return m.db.CreateCollection(ctx, "migrations")
}

func (m *Migrator) getCurrentVersion() (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var result struct {
		Version int `bson:"version"`
	}

	err := m.db.Collection("migrations").FindOne(ctx, bson.D{}).Decode(&result)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return 0, nil
		}
		return 0, err
	}

	return result.Version, nil
}

func (m *Migrator) updateVersion(version int) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := m.db.Collection("migrations").ReplaceOne(
		ctx,
		bson.D{},
		bson.D{{Key: "version", Value: version}, {Key: "updated_at", Value: time.Now()}},
		options.Replace().SetUpsert(true),
	)

	return err
}

func getMigrations() []Migration {
	return []Migration{
		{
			Version:     1,
			Description: "Create users collection with indexes",
			Up: func(db *mongo.Database) error {
				return createUsersIndexes(db)
			},
			Down: func(db *mongo.Database) error {
				return db.Collection("users").Drop(context.Background())
			},
		},
		{
			Version:     2,
			Description: "Create upgrade packages collection with indexes",
			Up: func(db *mongo.Database) error {
				return createUpgradePackagesIndexes(db)
			},
			Down: func(db *mongo.Database) error {
				return db.Collection("upgradePackages").Drop(context.Background())
			},
		},
		{
			Version:     3,
			Description: "Create user upgrades collection with indexes",
			Up: func(db *mongo.Database) error {
				return createUserUpgradesIndexes(db)
			},
			Down: func(db *mongo.Database) error {
				return db.Collection("userUpgrades").Drop(context.Background())
			},
		},
		{
			Version:     4,
			Description: "Create transactions collection with settlement guards",
			Up: func(db *mongo.Database) error {
				return createTransactionsIndexes(db)
			},
			Down: func(db *mongo.Database) error {
				return db.Collection("transactions").Drop(context.Background())
			},
		},
		{
			Version:     5,
			Description: "Create revenue ledger collections with indexes",
			Up: func(db *mongo.Database) error {
				return createRevenueIndexes(db)
			},
			Down: func(db *mongo.Database) error {
				if err := db.Collection("totalRevenues").Drop(context.Background()); err != nil {
					return err
				}
				if err := db.Collection("revenuesInvite").Drop(context.Background()); err != nil {
					return err
				}
				return db.Collection("revenuesAffiliate").Drop(context.Background())
			},
		},
		{
			Version:     6,
			Description: "Create purchases collection with indexes",
			Up: func(db *mongo.Database) error {
				return createPurchasesIndexes(db)
			},
			Down: func(db *mongo.Database) error {
				return db.Collection("purchases").Drop(context.Background())
			},
		},
	}
}

func createUsersIndexes(db *mongo.Database) error {
	ctx := context.Background()
	collection := db.Collection("users")

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "roles", Value: 1}},
		},
		{
			Keys:    bson.D{{Key: "aff_code", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
		{
			Keys: bson.D{{Key: "referrer_id", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "created_at", Value: -1}},
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}

func createUpgradePackagesIndexes(db *mongo.Database) error {
	ctx := context.Background()
	collection := db.Collection("upgradePackages")

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "name", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "price", Value: 1}},
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}

func createUserUpgradesIndexes(db *mongo.Database) error {
	ctx := context.Background()
	collection := db.Collection("userUpgrades")

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "code_upgrade", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		// Backstop for the single-active-subscription invariant: no two
		// documents for the same user may hold in_use=true.
		{
			Keys: bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"in_use": true}),
		},
		{
			Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "package_id", Value: 1}, {Key: "status", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "expiry_date", Value: 1}},
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}

func createTransactionsIndexes(db *mongo.Database) error {
	ctx := context.Background()
	collection := db.Collection("transactions")

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "transaction_code", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		// Duplicate-settlement guards. The application checks before insert,
		// but the unique partial indexes close the check-then-act window.
		{
			Keys: bson.D{{Key: "upgrade_id", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"upgrade_id": bson.M{"$type": "objectId"}}),
		},
		{
			Keys: bson.D{{Key: "purchase_id", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"purchase_id": bson.M{"$type": "objectId"}}),
		},
		{
			Keys: bson.D{{Key: "code_purchase", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "code_upgrade", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "seller_id", Value: 1}, {Key: "created_at", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "status", Value: 1}},
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}

func createRevenueIndexes(db *mongo.Database) error {
	ctx := context.Background()

	totalIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "money", Value: -1}},
		},
	}
	if _, err := db.Collection("totalRevenues").Indexes().CreateMany(ctx, totalIndexes); err != nil {
		return err
	}

	inviteIndexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "user_upgrade_id", Value: 1}},
		},
	}
	if _, err := db.Collection("revenuesInvite").Indexes().CreateMany(ctx, inviteIndexes); err != nil {
		return err
	}

	affiliateIndexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "purchase_id", Value: 1}},
		},
	}
	_, err := db.Collection("revenuesAffiliate").Indexes().CreateMany(ctx, affiliateIndexes)
	return err
}

func createPurchasesIndexes(db *mongo.Database) error {
	ctx := context.Background()
	collection := db.Collection("purchases")

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "code_purchase", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "seller_id", Value: 1}, {Key: "created_at", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "status", Value: 1}},
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
