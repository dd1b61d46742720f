package analysis

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/bryanwahyu/sentichain/internal/domain/sentiment"
)

const defaultBatchConcurrency = 4

// BatchRow is the result for one CSV record, in input order.
type BatchRow struct {
	Row    int              `json:"row"`
	Text   string           `json:"text"`
	Result sentiment.Result `json:"result"`
}

// AnalyzeBatch scores the "text" column of a CSV document with model.
// Rows are scored concurrently; the output keeps input order.
func (s *Service) AnalyzeBatch(ctx context.Context, r io.Reader, model sentiment.Model) ([]BatchRow, error) {
	texts, err := ReadTextColumn(r)
	if err != nil {
		return nil, err
	}

	rows := make([]BatchRow, len(texts))
	g, gctx := errgroup.WithContext(ctx)
	limit := s.BatchConcurrency
	if limit <= 0 {
		limit = defaultBatchConcurrency
	}
	g.SetLimit(limit)

	for i, text := range texts {
		i, text := i, text
		g.Go(func() error {
			res, err := s.Score(gctx, text, model)
			if err != nil {
				return fmt.Errorf("row %d: %w", i+1, err)
			}
			rows[i] = BatchRow{Row: i + 1, Text: sentiment.Snippet(text), Result: res}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	s.logger().Info("batch analysis done", "rows", len(rows), "model", sentiment.ParseModel(string(model)))
	return rows, nil
}

// ReadTextColumn returns the "text" column of a CSV document, header excluded.
func ReadTextColumn(r io.Reader) ([]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, sentiment.NewInputError("CSV is empty")
	}
	if err != nil {
		return nil, sentiment.NewInputError("invalid CSV: %v", err)
	}
	col := -1
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")), "text") {
			col = i
			break
		}
	}
	if col < 0 {
		return nil, sentiment.NewInputError("CSV must have a 'text' column")
	}

	var texts []string
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, sentiment.NewInputError("invalid CSV: %v", err)
		}
		if col < len(rec) {
			texts = append(texts, rec[col])
		} else {
			texts = append(texts, "")
		}
	}
	return texts, nil
}
