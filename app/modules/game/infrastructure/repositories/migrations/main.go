package gamemigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"

	gamedb "github.com/Quiz-Night-Club/quiz-engine/app/modules/game/infrastructure/repositories"
)

var Migrations = migrate.NewMigrations()

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating games, teams and players tables...")

		for _, model := range []interface{}{
			(*gamedb.Game)(nil),
			(*gamedb.Team)(nil),
			(*gamedb.Player)(nil),
		} {
			if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
				return fmt.Errorf("failed to create game tables: %w", err)
			}
		}

		fmt.Println("Game tables created successfully!")
		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Rolling back game tables...")

		for _, model := range []interface{}{
			(*gamedb.Player)(nil),
			(*gamedb.Team)(nil),
			(*gamedb.Game)(nil),
		} {
			if _, err := db.NewDropTable().Model(model).IfExists().Cascade().Exec(ctx); err != nil {
				return fmt.Errorf("failed to drop game tables: %w", err)
			}
		}

		fmt.Println("Game tables dropped successfully!")
		return nil
	})
}
