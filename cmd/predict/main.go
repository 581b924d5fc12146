package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"scoreline/server/internal/cache"
	"scoreline/server/internal/client"
	"scoreline/server/internal/config"
	"scoreline/server/internal/models"
	"scoreline/server/internal/repository"
	"scoreline/server/internal/snapshot"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// predict is a one-shot CLI: predict <sport> <game_id>
// It prints the prediction and any value bets for the game as JSON.
func main() {
	zerolog.SetGlobalLevel(zerolog.WarnLevel)

	if len(os.Args) != 3 {
		fmt.Fprintln(os.Stderr, "usage: predict <nba|nfl> <game_id>")
		os.Exit(2)
	}

	sport := models.Sport(os.Args[1])
	if !sport.Valid() {
		fmt.Fprintf(os.Stderr, "unsupported sport %q\n", os.Args[1])
		os.Exit(2)
	}

	gameID, err := strconv.Atoi(os.Args[2])
	if err != nil || gameID <= 0 {
		fmt.Fprintf(os.Stderr, "invalid game id %q\n", os.Args[2])
		os.Exit(2)
	}

	cfg := config.MustLoad()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	db, err := repository.NewDatabase(ctx, repository.Config{
		Host:     cfg.DatabaseHost,
		Port:     strconv.Itoa(cfg.DatabasePort),
		User:     cfg.DatabaseUser,
		Password: cfg.DatabasePassword,
		Database: cfg.DatabaseName,
		SSLMode:  cfg.DatabaseSSLMode,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	sportsFeed := client.NewSportsFeed(
		cfg.SportsDataNBABaseURL,
		cfg.SportsDataNFLBaseURL,
		cfg.SportsDataAPIKey,
		cfg.SportsDataTimeout,
	)
	injuries := client.NewInjuryReport(sportsFeed, 15*time.Minute)

	// One-shot run, no cache
	builder := snapshot.NewBuilder(db.Teams, db.Games, db.ClosingLines, injuries, cache.Null{}, 0)
	service := snapshot.NewService(builder, db.Quotes, cfg.PreferredBookmaker)

	game, err := db.Games.GetByGameID(ctx, sport, gameID)
	if err != nil {
		log.Fatal().Err(err).Int("game_id", gameID).Msg("Game not found")
	}

	bets, pred, err := service.ValueBets(ctx, game)
	if err != nil {
		log.Fatal().Err(err).Int("game_id", gameID).Msg("Prediction failed")
	}

	out := struct {
		Prediction *models.GamePrediction `json:"prediction"`
		ValueBets  []models.ValueBet      `json:"value_bets"`
	}{Prediction: pred, ValueBets: bets}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		log.Fatal().Err(err).Msg("Failed to encode output")
	}
}
