package eventbus

import "context"

// InitializeStreams creates the engine's JetStream streams at startup.
// One stream per module keeps retention and consumer policies independent.
func InitializeStreams(ctx context.Context, bus EventBus) error {
	streams := map[string][]string{
		"game":    {"game.>"},
		"round":   {"round.>"},
		"buzzer":  {"buzzer.>"},
		"chooser": {"chooser.>"},
		"score":   {"score.>"},
		"timer":   {"timer.>"},
	}

	for name, subjects := range streams {
		if err := bus.CreateStream(ctx, name, subjects...); err != nil {
			return err
		}
	}
	return nil
}
