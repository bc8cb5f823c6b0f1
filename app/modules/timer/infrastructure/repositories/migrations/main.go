package timermigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"

	timerdb "github.com/Quiz-Night-Club/quiz-engine/app/modules/timer/infrastructure/repositories"
)

var Migrations = migrate.NewMigrations()

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating timers table...")

		if _, err := db.NewCreateTable().Model((*timerdb.Timer)(nil)).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("failed to create timers table: %w", err)
		}

		fmt.Println("timers table created successfully!")
		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Rolling back timers table...")

		if _, err := db.NewDropTable().Model((*timerdb.Timer)(nil)).IfExists().Cascade().Exec(ctx); err != nil {
			return fmt.Errorf("failed to drop timers table: %w", err)
		}

		fmt.Println("timers table dropped successfully!")
		return nil
	})
}
