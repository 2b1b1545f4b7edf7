package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	pkg "github.com/dasamritendu619/sharelearner-server/pkg/internal"
	"github.com/dasamritendu619/sharelearner-server/pkg/internal/auth"
	"github.com/dasamritendu619/sharelearner-server/pkg/internal/database"
	"github.com/dasamritendu619/sharelearner-server/pkg/internal/http"
	"github.com/dasamritendu619/sharelearner-server/pkg/internal/mail"
	"github.com/dasamritendu619/sharelearner-server/pkg/internal/search"
	"github.com/dasamritendu619/sharelearner-server/pkg/internal/services"
	"github.com/dasamritendu619/sharelearner-server/pkg/internal/storage"
	"github.com/fatih/color"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

func init() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})
}

func main() {
	// Booting screen
	fmt.Println(color.YellowString(" ____  _                    _\n/ ___|| |__   __ _ _ __ ___| |    ___  __ _ _ __ _ __   ___ _ __\n\\___ \\| '_ \\ / _` | '__/ _ \\ |   / _ \\/ _` | '__| '_ \\ / _ \\ '__|\n ___) | | | | (_| | | |  __/ |__|  __/ (_| | |  | | | |  __/ |\n|____/|_| |_|\\__,_|_|  \\___|_____\\___|\\__,_|_|  |_| |_|\\___|_|"))
	fmt.Printf("%s v%s\n", color.New(color.FgHiYellow).Add(color.Bold).Sprintf("ShareLearner"), pkg.AppVersion)
	fmt.Printf("The learning focused social network server\n")
	color.HiBlack("=====================================================\n")

	// Configure settings
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.SetConfigName("settings")
	viper.SetConfigType("toml")
	viper.SetEnvPrefix("SHARELEARNER")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Load settings
	if err := viper.ReadInConfig(); err != nil {
		log.Panic().Err(err).Msg("An error occurred when loading settings.")
	}
	if viper.GetBool("debug.enabled") {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	// Connect to database
	db, err := database.NewGorm()
	if err != nil {
		log.Fatal().Err(err).Msg("An error occurred when connect to database.")
	} else if err := database.RunMigration(db); err != nil {
		log.Fatal().Err(err).Msg("An error occurred when running database auto migration.")
	}

	// Collaborators
	store, err := storage.NewFromViper(context.Background())
	if err != nil {
		log.Fatal().Err(err).Msg("An error occurred when configuring storage.")
	}
	mailer := mail.NewFromViper()
	tokens := auth.NewManagerFromViper()
	searcher, err := search.NewFromViper(context.Background(), db)
	if err != nil {
		log.Fatal().Err(err).Msg("An error occurred when configuring search.")
	}
	if viper.GetBool("search.reindex_on_boot") {
		go func() {
			if err := services.ReindexSearch(context.Background(), db, searcher); err != nil {
				log.Error().Err(err).Msg("An error occurred when rebuilding search index...")
			}
		}()
	}

	// Configure timed tasks
	quartz := cron.New(cron.WithLogger(cron.VerbosePrintfLogger(&log.Logger)))
	quartz.AddFunc("@every 60m", func() {
		services.DoAutoDatabaseCleanup(db)
	})
	quartz.Start()

	// Server
	server := http.NewServer(db, store, mailer, searcher, tokens)
	go server.Listen()

	log.Info().Str("bind", viper.GetString("bind")).Msg("ShareLearner is up and running.")

	// Messages
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	quartz.Stop()
	if err := server.Shutdown(); err != nil {
		log.Error().Err(err).Msg("An error occurred when shutting down server...")
	}
}
