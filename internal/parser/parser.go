package parser

import (
	"bytes"
	"errors"
	"fmt"
	"html"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"

	"pdfchat/internal/models"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported file format")

	paragraphEndRe = regexp.MustCompile(`</w:p>|<w:br/>|<w:tab/>`)
	xmlTagRe       = regexp.MustCompile(`<[^>]+>`)
)

// Extract reads every document in order and concatenates their text.
// Documents that cannot be read are logged, reported and skipped.
func Extract(docs []models.Document) (string, []*models.ExtractionError) {
	var (
		text     strings.Builder
		failures []*models.ExtractionError
	)
	for _, doc := range docs {
		content, err := ExtractDocument(doc)
		if err != nil {
			log.Warn().Err(err).Str("file", doc.Filename).Msg("Skipping document")
			failures = append(failures, &models.ExtractionError{File: doc.Filename, Err: err})
			continue
		}
		log.Debug().Str("file", doc.Filename).Int("chars", utf8.RuneCountInString(content)).Msg("Extracted document")
		text.WriteString(content)
	}
	return text.String(), failures
}

// ExtractDocument returns the plain text of a single document.
func ExtractDocument(doc models.Document) (text string, err error) {
	// third party parsers panic on some malformed input
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("parser panic: %v", r)
		}
	}()

	switch detectFormat(doc) {
	case ".pdf":
		return parsePDF(doc.Data)
	case ".docx":
		return parseDOCX(doc.Data)
	case ".xlsx", ".xlsm":
		return parseXLSX(doc.Data)
	case ".txt", ".md":
		return parseText(doc.Data)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(doc.Filename))
	}
}

func detectFormat(doc models.Document) string {
	if bytes.HasPrefix(doc.Data, []byte("%PDF-")) {
		return ".pdf"
	}
	return strings.ToLower(filepath.Ext(doc.Filename))
}

// parsePDF concatenates page texts in page order, without separators.
func parsePDF(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	var text strings.Builder
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("page %d: %v", i, err)
		}
		text.WriteString(pageText)
	}
	return text.String(), nil
}

func parseDOCX(data []byte) (string, error) {
	r, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	defer r.Close()

	content := r.Editable().GetContent()
	content = paragraphEndRe.ReplaceAllString(content, "\n")
	content = xmlTagRe.ReplaceAllString(content, "")
	content = html.UnescapeString(content)

	var paragraphs []string
	for _, p := range strings.Split(content, "\n") {
		if strings.TrimSpace(p) == "" {
			continue
		}
		paragraphs = append(paragraphs, p)
	}
	return strings.Join(paragraphs, "\n"), nil
}

func parseXLSX(data []byte) (string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	defer f.Close()

	var text strings.Builder
	for _, sheetName := range f.GetSheetList() {
		rows, err := f.GetRows(sheetName)
		if err != nil {
			log.Warn().Err(err).Str("sheet", sheetName).Msg("Skipping sheet")
			continue
		}
		if len(rows) == 0 {
			continue
		}
		text.WriteString(fmt.Sprintf("Sheet: %s\n", sheetName))
		for _, row := range rows {
			text.WriteString(strings.Join(row, "\t"))
			text.WriteString("\n")
		}
		text.WriteString("\n")
	}
	return text.String(), nil
}

func parseText(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", errors.New("text file is not valid UTF-8")
	}
	return string(data), nil
}
