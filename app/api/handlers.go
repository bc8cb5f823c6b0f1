package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Quiz-Night-Club/quiz-engine/app/events"
	"github.com/Quiz-Night-Club/quiz-engine/app/shared/attr"
	"github.com/Quiz-Night-Club/quiz-engine/app/shared/types"
)

// gameIDFromRequest parses the path game id and checks it against the token,
// so a token for one room cannot drive another.
func (s *Server) gameIDFromRequest(w http.ResponseWriter, r *http.Request) (types.GameID, bool) {
	gameID, err := types.ParseGameID(chi.URLParam(r, "gameID"))
	if err != nil {
		s.respondError(w, r, http.StatusBadRequest, "invalid game id")
		return types.GameID{}, false
	}
	claims, ok := ClaimsFromContext(r.Context())
	if !ok || claims.GameID != gameID {
		s.respondError(w, r, http.StatusForbidden, "token is for a different game")
		return types.GameID{}, false
	}
	return gameID, true
}

func (s *Server) handleOpenGame(w http.ResponseWriter, r *http.Request) {
	gameID, ok := s.gameIDFromRequest(w, r)
	if !ok {
		return
	}
	result, err := s.gameService.OpenGame(r.Context(), events.GameOpenRequestedPayloadV1{GameID: gameID})
	respondResult(s, w, r, result, err)
}

func (s *Server) handleScheduleGame(w http.ResponseWriter, r *http.Request) {
	gameID, ok := s.gameIDFromRequest(w, r)
	if !ok {
		return
	}
	var payload events.GameScheduleRequestedPayloadV1
	if err := decodeBody(r, &payload); err != nil {
		s.respondError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	payload.GameID = gameID
	result, err := s.gameService.ScheduleGame(r.Context(), payload)
	respondResult(s, w, r, result, err)
}

func (s *Server) handleEndGame(w http.ResponseWriter, r *http.Request) {
	gameID, ok := s.gameIDFromRequest(w, r)
	if !ok {
		return
	}
	result, err := s.gameService.EndGame(r.Context(), events.GameEndRequestedPayloadV1{GameID: gameID})
	respondResult(s, w, r, result, err)
}

func (s *Server) handleStartRound(w http.ResponseWriter, r *http.Request) {
	gameID, ok := s.gameIDFromRequest(w, r)
	if !ok {
		return
	}
	var payload events.RoundStartRequestedPayloadV1
	if err := decodeBody(r, &payload); err != nil {
		s.respondError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	payload.GameID = gameID
	result, err := s.gameService.StartRound(r.Context(), payload)
	respondResult(s, w, r, result, err)
}

func (s *Server) handleEndRound(w http.ResponseWriter, r *http.Request) {
	gameID, ok := s.gameIDFromRequest(w, r)
	if !ok {
		return
	}
	var payload events.RoundEndRequestedPayloadV1
	if err := decodeBody(r, &payload); err != nil {
		s.respondError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	payload.GameID = gameID
	result, err := s.gameService.EndRound(r.Context(), payload)
	respondResult(s, w, r, result, err)
}

func (s *Server) handleStartSpecial(w http.ResponseWriter, r *http.Request) {
	gameID, ok := s.gameIDFromRequest(w, r)
	if !ok {
		return
	}
	result, err := s.gameService.StartSpecial(r.Context(), events.SpecialStartRequestedPayloadV1{GameID: gameID})
	respondResult(s, w, r, result, err)
}

func (s *Server) handleStartQuestion(w http.ResponseWriter, r *http.Request) {
	gameID, ok := s.gameIDFromRequest(w, r)
	if !ok {
		return
	}
	var payload events.QuestionStartRequestedPayloadV1
	if err := decodeBody(r, &payload); err != nil {
		s.respondError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	payload.GameID = gameID
	result, err := s.gameService.StartQuestion(r.Context(), payload)
	respondResult(s, w, r, result, err)
}

func (s *Server) handleEndQuestion(w http.ResponseWriter, r *http.Request) {
	gameID, ok := s.gameIDFromRequest(w, r)
	if !ok {
		return
	}
	var payload events.QuestionEndRequestedPayloadV1
	if err := decodeBody(r, &payload); err != nil {
		s.respondError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	payload.GameID = gameID
	result, err := s.gameService.EndQuestion(r.Context(), payload)
	respondResult(s, w, r, result, err)
}

func (s *Server) handleResetQuestion(w http.ResponseWriter, r *http.Request) {
	gameID, ok := s.gameIDFromRequest(w, r)
	if !ok {
		return
	}
	var payload events.QuestionResetRequestedPayloadV1
	if err := decodeBody(r, &payload); err != nil {
		s.respondError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	payload.GameID = gameID
	result, err := s.gameService.ResetQuestion(r.Context(), payload)
	respondResult(s, w, r, result, err)
}

func (s *Server) handleResolveAnswer(w http.ResponseWriter, r *http.Request) {
	gameID, ok := s.gameIDFromRequest(w, r)
	if !ok {
		return
	}
	var payload events.AnswerResolveRequestedPayloadV1
	if err := decodeBody(r, &payload); err != nil {
		s.respondError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	payload.GameID = gameID
	result, err := s.gameService.ResolveAnswer(r.Context(), payload)
	respondResult(s, w, r, result, err)
}

func (s *Server) handleSwitchChooser(w http.ResponseWriter, r *http.Request) {
	gameID, ok := s.gameIDFromRequest(w, r)
	if !ok {
		return
	}
	var payload events.ChooserSwitchRequestedPayloadV1
	if err := decodeBody(r, &payload); err != nil {
		s.respondError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	payload.GameID = gameID
	result, err := s.gameService.SwitchChooser(r.Context(), payload)
	respondResult(s, w, r, result, err)
}

func (s *Server) handlePressBuzzer(w http.ResponseWriter, r *http.Request) {
	gameID, ok := s.gameIDFromRequest(w, r)
	if !ok {
		return
	}
	claims, _ := ClaimsFromContext(r.Context())
	var payload events.BuzzerPressRequestedPayloadV1
	if err := decodeBody(r, &payload); err != nil {
		s.respondError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	payload.GameID = gameID
	// The press is always the caller's own.
	payload.PlayerID = claims.PlayerID
	result, err := s.buzzerService.PressBuzzer(r.Context(), payload)
	respondResult(s, w, r, result, err)
}

func (s *Server) handleReleaseBuzzer(w http.ResponseWriter, r *http.Request) {
	gameID, ok := s.gameIDFromRequest(w, r)
	if !ok {
		return
	}
	claims, _ := ClaimsFromContext(r.Context())
	var payload events.BuzzerReleaseRequestedPayloadV1
	if err := decodeBody(r, &payload); err != nil {
		s.respondError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	payload.GameID = gameID
	payload.PlayerID = claims.PlayerID
	result, err := s.buzzerService.ReleaseBuzzer(r.Context(), payload)
	respondResult(s, w, r, result, err)
}

func (s *Server) handleCancelPlayer(w http.ResponseWriter, r *http.Request) {
	gameID, ok := s.gameIDFromRequest(w, r)
	if !ok {
		return
	}
	var payload events.PlayerCancelRequestedPayloadV1
	if err := decodeBody(r, &payload); err != nil {
		s.respondError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	payload.GameID = gameID
	result, err := s.buzzerService.CancelPlayer(r.Context(), payload)
	respondResult(s, w, r, result, err)
}

func (s *Server) handleClearBuzzer(w http.ResponseWriter, r *http.Request) {
	gameID, ok := s.gameIDFromRequest(w, r)
	if !ok {
		return
	}
	var payload events.BuzzerClearRequestedPayloadV1
	if err := decodeBody(r, &payload); err != nil {
		s.respondError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	payload.GameID = gameID
	result, err := s.buzzerService.ClearBuzzer(r.Context(), payload)
	respondResult(s, w, r, result, err)
}

func (s *Server) handleImportQuestionSet(w http.ResponseWriter, r *http.Request) {
	gameID, ok := s.gameIDFromRequest(w, r)
	if !ok {
		return
	}
	var payload events.QuizImportRequestedPayloadV1
	if err := decodeBody(r, &payload); err != nil {
		s.respondError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	payload.GameID = gameID
	result, err := s.importService.ImportQuestionSet(r.Context(), payload)
	respondResult(s, w, r, result, err)
}

func (s *Server) scopeFromRequest(w http.ResponseWriter, r *http.Request) (events.LedgerScope, bool) {
	scope := events.LedgerScope(chi.URLParam(r, "scope"))
	if scope != events.LedgerScopeRound && scope != events.LedgerScopeGame {
		s.respondError(w, r, http.StatusBadRequest, "scope must be round or game")
		return "", false
	}
	return scope, true
}

func (s *Server) handleGetScores(w http.ResponseWriter, r *http.Request) {
	gameID, ok := s.gameIDFromRequest(w, r)
	if !ok {
		return
	}
	scope, ok := s.scopeFromRequest(w, r)
	if !ok {
		return
	}
	ranking, err := s.scoreService.GetRanking(r.Context(), gameID, scope)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Failed to read ranking", attr.Error(err))
		s.respondError(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	s.respondJSON(w, r, http.StatusOK, ranking)
}

func (s *Server) handleScoreChart(w http.ResponseWriter, r *http.Request) {
	gameID, ok := s.gameIDFromRequest(w, r)
	if !ok {
		return
	}
	scope, ok := s.scopeFromRequest(w, r)
	if !ok {
		return
	}
	png, err := s.scoreService.RenderProgressChart(r.Context(), gameID, scope)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Failed to render chart", attr.Error(err))
		s.respondError(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(png); err != nil {
		s.logger.ErrorContext(r.Context(), "Failed to write chart", attr.Error(err))
	}
}
