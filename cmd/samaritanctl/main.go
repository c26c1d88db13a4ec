// Command samaritanctl is the operator CLI for the Samaritan Inn backend.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/UTDallasEPICS/the-samaritan-inn/config"
	"github.com/UTDallasEPICS/the-samaritan-inn/pkg/database"
	applogger "github.com/UTDallasEPICS/the-samaritan-inn/pkg/logger"
)

var (
	configPath string
	timeout    time.Duration
)

// rootCmd is the base command
var rootCmd = &cobra.Command{
	Use:           "samaritanctl",
	Short:         "Operate the Samaritan Inn backend",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default: ./config/config.yaml)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "operation timeout")

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(createUserCmd)
	rootCmd.AddCommand(listUsersCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// env is what every subcommand needs: config, a logger and a database.
type env struct {
	cfg    *config.Config
	logger *zap.Logger
	db     *gorm.DB
}

func openEnv() (*env, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		return nil, err
	}
	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, logger: logger, db: db}, nil
}

func (e *env) Close() {
	if sqlDB, err := e.db.DB(); err == nil {
		sqlDB.Close()
	}
	_ = e.logger.Sync()
}
