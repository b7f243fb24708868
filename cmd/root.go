/*
Copyright © 2024 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/leadflowhq/lead-services/api/services"
	"github.com/leadflowhq/lead-services/db"
	"github.com/leadflowhq/lead-services/internal/appconfig"
	"github.com/leadflowhq/lead-services/internal/events"
	"github.com/leadflowhq/lead-services/internal/gcal"
	"github.com/leadflowhq/lead-services/internal/llm"
	"github.com/leadflowhq/lead-services/internal/outreach"
	"github.com/leadflowhq/lead-services/internal/ratelimit"
	"github.com/leadflowhq/lead-services/internal/scoring"
	"github.com/leadflowhq/lead-services/internal/secrets"

	"github.com/go-redis/redis/v8"
)

var (
	logLevel   string
	host       string
	port       int
	configPath string

	appCfg *appconfig.Config
	leadDB *db.LeadDB
)

var rootCmd = &cobra.Command{
	Use:   "lead-services",
	Short: "Lead Services",
	Long:  `Lead Services is a CLI tool for running the lead processing API, automation worker and event consumer.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "warn",
		"sets the log level")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.yaml",
		"path to the config file")
}

// commonSetUp loads the config and sets up logging.
func commonSetUp() {
	setLogging(logLevel)

	var err error
	appCfg, err = appconfig.LoadConfig(configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Dev environments get human-readable console output.
	if appCfg.IsDev() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	if appCfg.Database.Source != "" {
		if err := os.Setenv("DATABASE_URL", appCfg.Database.Source); err != nil {
			log.Fatal().Err(err).Msg("failed to set DATABASE_URL")
		}
	}
}

// initDB connects to Postgres. Lifecycle events published from the
// database layer go through the given notifier.
func initDB(notifier events.Notifier) {
	logger := log.Logger

	var err error
	leadDB, err = db.NewLeadDB(notifier, &logger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize LeadDB")
	}
}

// buildService wires the shared dependency set used by the API server
// and the worker. Disabled integrations stay nil.
func buildService(publisher events.Notifier) *services.Service {
	logger := log.Logger

	svc := &services.Service{
		Config:    appCfg,
		DB:        leadDB,
		Publisher: publisher,
		Scorer:    scoring.NewScorer(appCfg.Scoring),
		LLM:       llm.NewClient(appCfg.OpenAI),
	}

	if appCfg.Email.Enabled {
		sender, err := outreach.NewEmailSender(context.Background(), appCfg.AWS.Region, appCfg.Email, &logger)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize email sender")
		}
		svc.Email = sender
	}

	if appCfg.WhatsApp.Enabled {
		svc.WhatsApp = outreach.NewWhatsAppSender(appCfg.WhatsApp, &logger)
	}

	if appCfg.Telegram.Enabled {
		svc.Telegram = outreach.NewTelegramNotifier(appCfg.Telegram, &logger)
	}

	if appCfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     appCfg.Redis.Addr,
			Password: appCfg.Redis.Password,
			DB:       appCfg.Redis.DB,
		})
		svc.Quota = ratelimit.NewQuota(rdb, appCfg.WhatsApp.DailyLimit, appCfg.WhatsApp.HourlyLimit)
	}

	if appCfg.Calendar.Enabled {
		scheduler, err := gcal.NewScheduler(context.Background(), appCfg.Calendar)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize calendar scheduler")
		}
		svc.Calendar = scheduler
	}

	store, err := secrets.NewStore(context.Background(), appCfg.AWS.Region)
	if err != nil {
		log.Warn().Err(err).Msg("secrets store unavailable, integration endpoints disabled")
	} else {
		svc.Secrets = store
	}

	return svc
}

func setLogging(level string) {
	zerolog.TimestampFunc = func() time.Time {
		return time.Now().UTC()
	}

	switch strings.ToLower(level) {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	case "fatal":
		zerolog.SetGlobalLevel(zerolog.FatalLevel)
	case "panic":
		zerolog.SetGlobalLevel(zerolog.PanicLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	}
}
