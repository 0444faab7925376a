package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"pdfchat/internal/config"
)

const configFilePath = "./configs/config.yaml"

var (
	cfgFile  string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "pdfchat",
	Short: "Ask questions about your PDF documents",
	Long: `pdfchat extracts the text of uploaded documents, indexes it in memory
and answers questions with a hosted chat model using the most relevant passages.`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initLogging)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", configFilePath, "path to the YAML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error); overrides the config file")
}

func initLogging() {
	_ = godotenv.Load()
	setupLogger(os.Stderr, "info")
}

// setupLogger sends console formatted logs to w.
func setupLogger(w io.Writer, level string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}).With().Caller().Logger()
}

// loadConfig reads the config file and applies the --log-level flag.
func loadConfig(w io.Writer) (*config.Config, error) {
	cfg, err := config.LoadConfig(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	setupLogger(w, cfg.Log.Level)
	log.Debug().Str("config", cfgFile).Str("chat_model", cfg.Chat.Model).Msg("Configuration loaded")
	return cfg, nil
}
