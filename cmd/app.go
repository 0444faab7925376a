package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"pdfchat/internal/config"
	"pdfchat/internal/models"
	"pdfchat/internal/session"
)

func newController(cfg *config.Config) (*session.Controller, error) {
	ctrl, err := session.NewController(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to set up pipeline: %w", err)
	}
	return ctrl, nil
}

func readDocuments(paths []string) ([]models.Document, error) {
	docs := make([]models.Document, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", p, err)
		}
		docs = append(docs, models.Document{Filename: filepath.Base(p), Data: data})
	}
	return docs, nil
}

// processFiles runs the Process action for the given paths and reports
// warnings to w.
func processFiles(ctx context.Context, ctrl *session.Controller, s *session.Session, paths []string, w io.Writer) error {
	docs, err := readDocuments(paths)
	if err != nil {
		return err
	}
	out := ctrl.Process(ctx, s, docs)
	for _, warn := range out.Warnings {
		fmt.Fprintln(w, "warning:", warn)
	}
	if !out.OK() {
		if out.Err != nil {
			log.Error().Err(out.Err).Str("outcome", out.Kind.String()).Msg("Processing failed")
		}
		return fmt.Errorf("%s", out.Message)
	}
	return nil
}

func summarize(s *session.Session) string {
	st := s.View().Stats
	return fmt.Sprintf("%d document(s), %d characters, %d chunks", st.Documents, st.Chars, st.Chunks)
}
