package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"scoreline/server/internal/models"

	"github.com/rs/zerolog/log"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// notFound reports whether a repository error is a missing-row error rather
// than an infrastructure failure.
func notFound(err error) bool {
	return err != nil && strings.Contains(err.Error(), "not found")
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	if err := s.db.Health(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded", "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// listGames returns the upcoming slate, or a specific day with ?date=2026-02-10
func (s *Server) listGames(w http.ResponseWriter, r *http.Request) {
	sport, err := sportParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	if rawDate := r.URL.Query().Get("date"); rawDate != "" {
		day, err := time.Parse("2006-01-02", rawDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		games, err := s.db.Games.GetByDate(r.Context(), sport, day)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, games)
		return
	}

	games, err := s.db.Games.GetUpcoming(r.Context(), sport, 50)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, games)
}

func (s *Server) listTeams(w http.ResponseWriter, r *http.Request) {
	sport, err := sportParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	teams, err := s.db.Teams.ListBySport(r.Context(), sport)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, teams)
}

func (s *Server) getGame(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	game, err := s.db.Games.GetByID(r.Context(), id)
	if notFound(err) {
		writeError(w, http.StatusNotFound, err)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, game)
}

// getGameOdds returns the freshest quote from each bookmaker for a game
func (s *Server) getGameOdds(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	quotes, err := s.db.Quotes.GetLatestForGame(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, quotes)
}

// getPrediction recomputes the model's view of a game on every request
func (s *Server) getPrediction(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	game, err := s.db.Games.GetByID(r.Context(), id)
	if notFound(err) {
		writeError(w, http.StatusNotFound, err)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	pred, err := s.service.Predict(r.Context(), game)
	if err != nil {
		log.Error().Err(err).Int("game_id", game.GameID).Msg("Prediction failed")
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, pred)
}

type valueBetsResponse struct {
	Prediction *models.GamePrediction `json:"prediction"`
	ValueBets  []models.ValueBet      `json:"value_bets"`
}

func (s *Server) getValueBets(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	game, err := s.db.Games.GetByID(r.Context(), id)
	if notFound(err) {
		writeError(w, http.StatusNotFound, err)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	bets, pred, err := s.service.ValueBets(r.Context(), game)
	if err != nil {
		log.Error().Err(err).Int("game_id", game.GameID).Msg("Value bet evaluation failed")
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, valueBetsResponse{Prediction: pred, ValueBets: bets})
}

// getTeamSnapshot exposes the assembled model input for a team, mostly for
// debugging why a prediction came out the way it did
func (s *Server) getTeamSnapshot(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	sport, err := sportParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	ts, err := s.builder.BuildTeamSnapshot(r.Context(), sport, id, time.Now().UTC(), true)
	if notFound(err) {
		writeError(w, http.StatusNotFound, err)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, ts)
}

func (s *Server) getPlayer(w http.ResponseWriter, r *http.Request) {
	if s.feed == nil {
		writeJSON(w, http.StatusNotImplemented, map[string]string{"error": "player feed not configured"})
		return
	}

	id, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	sport, err := sportParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	cacheKey := fmt.Sprintf("%s:%d", sport, id)
	var cached models.Player
	if hit, _ := s.cache.Get(r.Context(), "player", cacheKey, &cached); hit {
		writeJSON(w, http.StatusOK, &cached)
		return
	}

	player, err := s.feed.FetchPlayer(r.Context(), sport, id)
	if err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}

	if err := s.cache.Set(r.Context(), "player", cacheKey, player, s.playerTTL); err != nil {
		log.Warn().Err(err).Int("player_id", id).Msg("Player cache write failed")
	}
	writeJSON(w, http.StatusOK, player)
}

func (s *Server) listAlerts(w http.ResponseWriter, r *http.Request) {
	if s.publisher == nil {
		writeJSON(w, http.StatusOK, []struct{}{})
		return
	}

	recent, err := s.publisher.Recent(r.Context(), 100)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, recent)
}
