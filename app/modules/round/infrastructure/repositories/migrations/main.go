package roundmigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"

	rounddb "github.com/Quiz-Night-Club/quiz-engine/app/modules/round/infrastructure/repositories"
)

var Migrations = migrate.NewMigrations()

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating rounds, questions and question_states tables...")

		for _, model := range []interface{}{
			(*rounddb.Round)(nil),
			(*rounddb.Question)(nil),
			(*rounddb.QuestionState)(nil),
		} {
			if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
				return fmt.Errorf("failed to create round tables: %w", err)
			}
		}

		fmt.Println("Round tables created successfully!")
		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Rolling back round tables...")

		for _, model := range []interface{}{
			(*rounddb.QuestionState)(nil),
			(*rounddb.Question)(nil),
			(*rounddb.Round)(nil),
		} {
			if _, err := db.NewDropTable().Model(model).IfExists().Cascade().Exec(ctx); err != nil {
				return fmt.Errorf("failed to drop round tables: %w", err)
			}
		}

		fmt.Println("Round tables dropped successfully!")
		return nil
	})
}
