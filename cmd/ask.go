package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"pdfchat/internal/helper"
	"pdfchat/internal/models"
)

var askCmd = &cobra.Command{
	Use:   "ask --file doc.pdf [--file other.pdf] question",
	Short: "Answer a single question about the given documents",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files, _ := cmd.Flags().GetStringArray("file")
		asJSON, _ := cmd.Flags().GetBool("json")
		showSources, _ := cmd.Flags().GetBool("sources")
		question := strings.Join(args, " ")

		cfg, err := loadConfig(os.Stderr)
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

		if len(files) == 0 {
			return errors.New(models.MsgNoDocuments)
		}
		if err := processFiles(cmd.Context(), ctrl, s, files, os.Stderr); err != nil {
			return err
		}

		out := ctrl.Ask(cmd.Context(), s, question)
		if !out.OK() {
			return errors.New(out.Message)
		}
		tr := s.View().Transcript
		answer := tr[len(tr)-1]

		if asJSON {
			helper.PrettyPrint(models.PromptResponse{
				Query:   question,
				Sources: answer.Sources,
				Content: answer.Content,
			})
			return nil
		}

		fmt.Println(answer.Content)
		if showSources {
			for _, src := range answer.Sources {
				fmt.Printf("\n--- chunk %d (score %.3f)\n%s\n", src.Ord, src.Score, src.Content)
			}
		}
		return nil
	},
}

func init() {
	askCmd.Flags().StringArrayP("file", "f", nil, "document to index (repeatable)")
	askCmd.Flags().Bool("json", false, "print the answer and its sources as JSON")
	askCmd.Flags().Bool("sources", false, "print the retrieved passages after the answer")
	rootCmd.AddCommand(askCmd)
}
