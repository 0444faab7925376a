package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"pdfchat/internal/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui file.pdf [file2.pdf ...]",
	Short: "Chat with the given documents in the terminal",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logPath, _ := cmd.Flags().GetString("log-file")
		logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		defer logFile.Close()

		// the terminal belongs to the UI, so logs go to a file
		cfg, err := loadConfig(logFile)
		if err != nil {
			return err
		}
		ctrl, err := newController(cfg)
		if err != nil {
			return err
		}
		if cerr := ctrl.ConfigError(); cerr != nil {
			return cerr
		}

		s, err := ctrl.NewSession()
		if err != nil {
			return err
		}
		defer s.Close()

		fmt.Fprintln(os.Stderr, "Processing documents...")
		if err := processFiles(cmd.Context(), ctrl, s, args, os.Stderr); err != nil {
			return err
		}

		m := tui.New(cmd.Context(), ctrl, s, summarize(s))
		_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
		return err
	},
}

func init() {
	tuiCmd.Flags().String("log-file", "pdfchat.log", "file receiving logs while the UI runs")
	rootCmd.AddCommand(tuiCmd)
}
