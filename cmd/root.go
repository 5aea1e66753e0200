package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kheina-com/tagsvc/config"
	"github.com/kheina-com/tagsvc/internal/db/migrations"
	pgxdb "github.com/kheina-com/tagsvc/internal/db/pgx"
	"github.com/kheina-com/tagsvc/internal/db/rdb"
	"github.com/kheina-com/tagsvc/pkg/logger"
)

const defaultConfigFile = "config/config.yaml"

var RootCmdName = "tagsvc"

var configFile string
var rootCmd = &cobra.Command{
	Use: func() string {
		return RootCmdName
	}(),
	Short: "tagsvc: the tag microservice",
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Usage()
	},
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", fmt.Sprintf("config file (default is %s)", defaultConfigFile))
}

func SetupAll() {
	setUpConfig()
	setUpLogger()
	setUpPostgres()
	setUpRedis()
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("rootCmd.Execute() Error: %v", err)
		os.Exit(1)
	}
}

func setUpConfig() {
	if configFile == "" {
		configFile = defaultConfigFile
	}
	log.Default().Printf("Using config file: %s", configFile)
	config.SetConfig(configFile)
}

func setUpLogger() {
	log.Default().Printf("Using log level: %s", config.GetConfig().Log.Level)
	logger.InitLogger("zap")
}

func setUpPostgres() {
	if config.GetConfig().Postgres.Host == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	logger.Log.Info("Initializing postgres pool")
	if err := pgxdb.InitPool(ctx, config.GetConfig().Postgres); err != nil {
		logger.Log.Fatal("pgx.InitPool()", zap.Error(err))
	}

	logger.Log.Info("Running migrations")
	if err := migrations.RunUp(ctx); err != nil {
		logger.Log.Fatal("migrations.RunUp()", zap.Error(err))
	}
	logger.Log.Info("postgres ready")
}

func setUpRedis() {
	if len(config.GetConfig().Redis) == 0 || config.GetConfig().Redis[0].Host == "" {
		return
	}
	logger.Log.Info("Initializing redis")
	if err := rdb.InitRedisClient(config.GetConfig().Redis); err != nil {
		logger.Log.Fatal("rdb.InitRedisClient()", zap.Error(err))
	}
	logger.Log.Info("redis initialized")
}
