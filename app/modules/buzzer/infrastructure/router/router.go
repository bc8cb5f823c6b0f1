package buzzerrouter

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/ThreeDotsLabs/watermill/components/metrics"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"

	"github.com/Quiz-Night-Club/quiz-engine/app/eventbus"
	"github.com/Quiz-Night-Club/quiz-engine/app/events"
	buzzerservice "github.com/Quiz-Night-Club/quiz-engine/app/modules/buzzer/application"
	buzzerhandlers "github.com/Quiz-Night-Club/quiz-engine/app/modules/buzzer/infrastructure/handlers"
	"github.com/Quiz-Night-Club/quiz-engine/app/shared/attr"
	"github.com/Quiz-Night-Club/quiz-engine/app/shared/observability"
	"github.com/Quiz-Night-Club/quiz-engine/app/shared/utils"
	"github.com/Quiz-Night-Club/quiz-engine/config"
)

const (
	TestEnvironmentFlag  = "APP_ENV"
	TestEnvironmentValue = "test"
)

// BuzzerRouter wires buzzer race topics to their handlers.
type BuzzerRouter struct {
	logger           *slog.Logger
	Router           *message.Router
	subscriber       eventbus.EventBus
	publisher        eventbus.EventBus
	config           *config.Config
	helper           utils.Helpers
	tracer           trace.Tracer
	middlewareHelper utils.MiddlewareHelpers
	metricsBuilder   *metrics.PrometheusMetricsBuilder
	metricsEnabled   bool
}

func NewBuzzerRouter(
	logger *slog.Logger,
	router *message.Router,
	subscriber eventbus.EventBus,
	publisher eventbus.EventBus,
	config *config.Config,
	helper utils.Helpers,
	tracer trace.Tracer,
	prometheusRegistry *prometheus.Registry,
) *BuzzerRouter {
	inTestEnv := os.Getenv(TestEnvironmentFlag) == TestEnvironmentValue

	var metricsBuilder *metrics.PrometheusMetricsBuilder
	if prometheusRegistry != nil && !inTestEnv {
		builder := metrics.NewPrometheusMetricsBuilder(prometheusRegistry, "", "")
		metricsBuilder = &builder
	}
	return &BuzzerRouter{
		logger:           logger,
		Router:           router,
		subscriber:       subscriber,
		publisher:        publisher,
		config:           config,
		helper:           helper,
		tracer:           tracer,
		middlewareHelper: utils.NewMiddlewareHelper(),
		metricsBuilder:   metricsBuilder,
		metricsEnabled:   prometheusRegistry != nil && !inTestEnv,
	}
}

// Configure registers middleware and the buzzer handlers on the shared router.
func (r *BuzzerRouter) Configure(routerCtx context.Context, buzzerService buzzerservice.Service, opMetrics *observability.OperationMetrics) error {
	if r.metricsEnabled && r.metricsBuilder != nil {
		r.metricsBuilder.AddPrometheusRouterMetrics(r.Router)
	}

	buzzerHandlers := buzzerhandlers.NewBuzzerHandlers(buzzerService, r.logger, r.tracer, r.helper, opMetrics)

	r.Router.AddMiddleware(
		middleware.CorrelationID,
		r.middlewareHelper.CommonMetadataMiddleware("buzzer"),
		middleware.Recoverer,
		middleware.Retry{MaxRetries: 3}.Middleware,
	)

	if err := r.RegisterHandlers(routerCtx, buzzerHandlers); err != nil {
		return fmt.Errorf("failed to register handlers: %w", err)
	}
	return nil
}

// RegisterHandlers subscribes each buzzer topic and publishes handler output
// to the topic each result message recorded for itself.
func (r *BuzzerRouter) RegisterHandlers(ctx context.Context, handlers buzzerhandlers.Handlers) error {
	eventsToHandlers := map[string]message.HandlerFunc{
		events.BuzzerPressRequestedV1:   handlers.HandleBuzzerPressRequest,
		events.BuzzerReleaseRequestedV1: handlers.HandleBuzzerReleaseRequest,
		events.PlayerCancelRequestedV1:  handlers.HandlePlayerCancelRequest,
		events.BuzzerClearRequestedV1:   handlers.HandleBuzzerClearRequest,
	}

	for topic, handlerFunc := range eventsToHandlers {
		handlerName := fmt.Sprintf("buzzer.%s", topic)
		r.Router.AddHandler(
			handlerName,
			topic,
			r.subscriber,
			"",
			nil,
			func(msg *message.Message) ([]*message.Message, error) {
				messages, err := handlerFunc(msg)
				if err != nil {
					r.logger.ErrorContext(ctx, "Error processing message", attr.String("message_id", msg.UUID), attr.Any("error", err))
					return nil, err
				}
				for _, m := range messages {
					publishTopic := utils.PublishTopic(m)
					if publishTopic == "" {
						r.logger.Error("no publish topic recorded on result message",
							attr.String("handler", handlerName),
							attr.String("msg_uuid", m.UUID),
						)
						continue
					}
					if err := r.publisher.Publish(publishTopic, m); err != nil {
						return nil, fmt.Errorf("failed to publish to %s: %w", publishTopic, err)
					}
				}
				return nil, nil
			},
		)
	}
	return nil
}

func (r *BuzzerRouter) Close() error {
	return r.Router.Close()
}
