// Package api is the HTTP command gateway. Every endpoint maps one-to-one
// onto a service operation; the watermill handlers expose the same commands
// on the bus.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	buzzerservice "github.com/Quiz-Night-Club/quiz-engine/app/modules/buzzer/application"
	gameservice "github.com/Quiz-Night-Club/quiz-engine/app/modules/game/application"
	quizimportservice "github.com/Quiz-Night-Club/quiz-engine/app/modules/quizimport/application"
	scoreservice "github.com/Quiz-Night-Club/quiz-engine/app/modules/score/application"
	"github.com/Quiz-Night-Club/quiz-engine/app/shared/attr"
	"github.com/Quiz-Night-Club/quiz-engine/app/shared/results"
	"github.com/Quiz-Night-Club/quiz-engine/config"
)

// Server is the HTTP command gateway.
type Server struct {
	cfg           *config.Config
	logger        *slog.Logger
	gameService   gameservice.Service
	buzzerService buzzerservice.Service
	scoreService  scoreservice.Service
	importService quizimportservice.Service
	limiter       *buzzerLimiter
	httpServer    *http.Server
}

// NewServer wires the gateway routes.
func NewServer(
	cfg *config.Config,
	logger *slog.Logger,
	gameService gameservice.Service,
	buzzerService buzzerservice.Service,
	scoreService scoreservice.Service,
	importService quizimportservice.Service,
) *Server {
	s := &Server{
		cfg:           cfg,
		logger:        logger,
		gameService:   gameService,
		buzzerService: buzzerService,
		scoreService:  scoreService,
		importService: importService,
		limiter:       newBuzzerLimiter(cfg.HTTP.BuzzerRatePerSecond, cfg.HTTP.BuzzerRateBurst),
	}

	s.httpServer = &http.Server{
		Addr:              cfg.HTTP.Address,
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)

	r.Route("/v1/games/{gameID}", func(r chi.Router) {
		r.Use(s.authMiddleware)

		r.Group(func(r chi.Router) {
			r.Use(s.requireRole(RoleOrganizer))

			r.Post("/open", s.handleOpenGame)
			r.Post("/schedule", s.handleScheduleGame)
			r.Post("/end", s.handleEndGame)

			r.Post("/rounds/start", s.handleStartRound)
			r.Post("/rounds/end", s.handleEndRound)
			r.Post("/special/start", s.handleStartSpecial)

			r.Post("/questions/start", s.handleStartQuestion)
			r.Post("/questions/end", s.handleEndQuestion)
			r.Post("/questions/reset", s.handleResetQuestion)
			r.Post("/answers/resolve", s.handleResolveAnswer)
			r.Post("/chooser/switch", s.handleSwitchChooser)

			r.Post("/buzzer/cancel", s.handleCancelPlayer)
			r.Post("/buzzer/clear", s.handleClearBuzzer)

			r.Post("/import", s.handleImportQuestionSet)
		})

		r.Group(func(r chi.Router) {
			r.Use(s.rateLimitMiddleware)
			r.Post("/buzzer/press", s.handlePressBuzzer)
		})
		r.Post("/buzzer/release", s.handleReleaseBuzzer)

		r.Get("/scores/{scope}", s.handleGetScores)
		r.Get("/scores/{scope}/chart.png", s.handleScoreChart)
	})

	return r
}

// Start serves until ctx is canceled, then drains in-flight requests.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP gateway listening", attr.String("address", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	}
}

func (s *Server) respondJSON(w http.ResponseWriter, r *http.Request, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.ErrorContext(r.Context(), "Failed to encode response", attr.Error(err))
	}
}

func (s *Server) respondError(w http.ResponseWriter, r *http.Request, status int, reason string) {
	s.respondJSON(w, r, status, map[string]string{"error": reason})
}

// respondResult maps an operation result onto HTTP: committed success is 200,
// a business refusal is 409 with the failure payload, an infrastructure error
// is 500.
func respondResult[S any, F any](s *Server, w http.ResponseWriter, r *http.Request, result results.OperationResult[S, F], err error) {
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Command failed", attr.Error(err))
		s.respondError(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	if result.IsFailure() {
		s.respondJSON(w, r, http.StatusConflict, result.Failure)
		return
	}
	s.respondJSON(w, r, http.StatusOK, result.Success)
}

func decodeBody(r *http.Request, into interface{}) error {
	defer r.Body.Close()
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(into)
}
