package main

import (
	"context"
	"io"
	"net/url"
	"os"
	"path/filepath"

	"github.com/budgetbuddy/backend/internal/cache"
	"github.com/budgetbuddy/backend/internal/controllers"
	"github.com/budgetbuddy/backend/internal/models"
	"github.com/budgetbuddy/backend/internal/router"
	"github.com/budgetbuddy/backend/internal/store"
	"github.com/budgetbuddy/backend/internal/syncer"
	"github.com/budgetbuddy/backend/internal/syncer/memory"
	"github.com/budgetbuddy/backend/internal/syncer/remote"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Local configuration can be kept in a .env file, a missing file is fine
	_ = godotenv.Load()

	// gin uses debug as the default mode, we use release for
	// security reasons
	ginMode, ok := os.LookupEnv("GIN_MODE")
	if !ok {
		gin.SetMode("release")
	} else {
		gin.SetMode(ginMode)
	}

	// Log format can be explicitly set.
	// If it is not set, it defaults to human readable for development
	// and JSON for release
	logFormat, ok := os.LookupEnv("LOG_FORMAT")
	output := io.Writer(os.Stdout)
	if (!ok && gin.IsDebugging()) || (ok && logFormat == "human") {
		output = zerolog.ConsoleWriter{Out: os.Stdout}
	}

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if gin.IsDebugging() {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = log.Output(output).With().Timestamp().Logger()

	dbPath, ok := os.LookupEnv("DB_PATH")
	if !ok {
		// Create data directory
		dataDir := filepath.Join(".", "data")
		err := os.MkdirAll(dataDir, os.ModePerm)
		if err != nil {
			log.Fatal().Msg(err.Error())
		}

		dbPath = filepath.Join(dataDir, "backend.db")
	}

	err := models.Connect(dbPath)
	if err != nil {
		log.Fatal().Msg(err.Error())
	}

	apiURL, ok := os.LookupEnv("API_URL")
	if !ok {
		apiURL = "http://localhost:8080"
	}

	baseURL, err := url.Parse(apiURL)
	if err != nil {
		log.Fatal().Msg(err.Error())
	}

	// The collaboration service is optional. Without a configured URL all
	// sync operations run against an in-process remote, which keeps the
	// backend fully usable offline.
	var collaborationRemote syncer.Remote
	if remoteURL, ok := os.LookupEnv("REMOTE_URL"); ok {
		collaborationRemote = remote.New(remoteURL, os.Getenv("REMOTE_TOKEN"))
		log.Info().Str("url", remoteURL).Msg("using remote collaboration service")
	} else {
		identity, ok := os.LookupEnv("ACCOUNT_EMAIL")
		if !ok {
			identity = "local@localhost"
		}
		collaborationRemote = memory.New(identity)
		log.Info().Msg("no REMOTE_URL configured, using in-process collaboration service")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := store.New(models.DB)
	sy := syncer.New(s, collaborationRemote)

	co, err := controllers.New(ctx, s, cache.New(), sy)
	if err != nil {
		log.Fatal().Msg(err.Error())
	}

	r, err := router.Config(baseURL)
	if err != nil {
		log.Fatal().Msg(err.Error())
	}
	router.AttachRoutes(co, r.Group("/"))

	if err := r.Run(); err != nil {
		log.Fatal().Msg(err.Error())
	}
}
