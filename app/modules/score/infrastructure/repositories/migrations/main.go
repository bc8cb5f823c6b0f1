package scoremigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"

	scoredb "github.com/Quiz-Night-Club/quiz-engine/app/modules/score/infrastructure/repositories"
)

var Migrations = migrate.NewMigrations()

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating score_ledgers table...")

		if _, err := db.NewCreateTable().Model((*scoredb.Ledger)(nil)).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("failed to create score_ledgers table: %w", err)
		}

		fmt.Println("score_ledgers table created successfully!")
		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Rolling back score_ledgers table...")

		if _, err := db.NewDropTable().Model((*scoredb.Ledger)(nil)).IfExists().Cascade().Exec(ctx); err != nil {
			return fmt.Errorf("failed to drop score_ledgers table: %w", err)
		}

		fmt.Println("score_ledgers table dropped successfully!")
		return nil
	})
}
