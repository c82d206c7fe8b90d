package main

import (
	"context"
	"flag"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mitchelldurbincs/PokerMonsterAgent/internal/config"
	"github.com/mitchelldurbincs/PokerMonsterAgent/internal/game"
	"github.com/mitchelldurbincs/PokerMonsterAgent/internal/graph"
	"github.com/mitchelldurbincs/PokerMonsterAgent/internal/selfplay"
	"github.com/mitchelldurbincs/PokerMonsterAgent/internal/thinker"
)

func main() {
	// Command line flags
	configPath := flag.String("config", "", "Path to config file")
	games := flag.Int("games", -1, "Number of games to play (-1 to use config default)")
	dataDir := flag.String("data-dir", "", "Directory for the experience databases (empty to use config default)")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error) (empty to use config default)")
	flag.Parse()

	// Initialize configuration
	if err := config.Init(*configPath); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize config")
	}

	cfg := config.Get()

	// Use config defaults if not overridden by flags
	if *games == -1 {
		*games = cfg.Selfplay.Games
	}
	if *dataDir == "" {
		*dataDir = cfg.Graph.DataDir
	}
	if *logLevel == "" {
		*logLevel = cfg.Logging.Level
	}

	setupLogging(*logLevel, cfg.Logging.Format)

	config.WatchConfig(func() {
		log.Info().Str("file", config.ConfigFilePath()).Msg("Config reloaded")
	})

	log.Info().
		Int("games", *games).
		Str("data_dir", *dataDir).
		Str("model", cfg.LLM.Model).
		Msg("Starting self-play")

	seed := cfg.Selfplay.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	var storeOpts []graph.Option
	if cfg.Graph.ClosePolicy == "departure" {
		storeOpts = append(storeOpts, graph.WithClosePolicy(graph.DepartureClose))
	}

	heroStore, err := graph.Open(filepath.Join(*dataDir, "hero_graph.db"), log.Logger, storeOpts...)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open hero graph")
	}
	defer heroStore.Close()

	monsterStore, err := graph.Open(filepath.Join(*dataDir, "monster_graph.db"), log.Logger, storeOpts...)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open monster graph")
	}
	defer monsterStore.Close()

	gen := thinker.NewAnthropicGenerator(cfg.LLM.APIKey, cfg.LLM.Model)
	th := thinker.New(gen, rng, log.Logger,
		thinker.WithMaxCandidates(cfg.Thinker.MaxCandidates),
		thinker.WithMinSamples(cfg.Thinker.MinSamples),
		thinker.WithTemperature(cfg.Thinker.Temperature),
	)

	players := []selfplay.Player{
		{ID: "hero", Store: heroStore, Policy: selfplay.Policy(cfg.Selfplay.HeroPolicy)},
		{ID: "monster", Store: monsterStore, Policy: selfplay.Policy(cfg.Selfplay.MonsterPolicy)},
	}
	runner := selfplay.NewRunner(players, th, game.DefaultBoundaries(), rng, log.Logger)

	ctx := context.Background()
	for i := 0; i < *games; i++ {
		engine := game.NewDemoEngine([]string{"hero", "monster"}, cfg.Selfplay.MaxTurns, rng)
		outcome, err := runner.PlayGame(ctx, engine)
		if err != nil {
			log.Fatal().Err(err).Int("game", i+1).Msg("Game failed")
		}
		log.Info().Int("game", i+1).Interface("outcome", outcome).Msg("Game complete")
	}
}

func setupLogging(level, format string) {
	// Parse log level
	var logLevel zerolog.Level
	switch level {
	case "debug":
		logLevel = zerolog.DebugLevel
	case "info":
		logLevel = zerolog.InfoLevel
	case "warn":
		logLevel = zerolog.WarnLevel
	case "error":
		logLevel = zerolog.ErrorLevel
	default:
		logLevel = zerolog.InfoLevel
	}

	zerolog.SetGlobalLevel(logLevel)

	if format == "json" || os.Getenv("APP_ENV") == "production" {
		// JSON output for production
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	} else {
		// Pretty console output for development
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		})
	}
}
