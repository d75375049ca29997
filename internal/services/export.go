package services

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"time"

	"github.com/soaringjerry/valoracion/internal/models"
)

var reviewCSVHeader = []string{"id", "q1", "q2", "q3", "q4", "comment", "created_at"}

// ExportReviewsCSV renders reviews in the given order, one row per review.
// Missing comments are written as empty cells.
func ExportReviewsCSV(rs []*models.Review) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	if err := w.Write(reviewCSVHeader); err != nil {
		return nil, err
	}
	for _, r := range rs {
		comment := ""
		if r.Comment != nil {
			comment = *r.Comment
		}
		rec := []string{
			strconv.FormatInt(r.ID, 10),
			strconv.FormatBool(r.Q1),
			strconv.FormatBool(r.Q2),
			strconv.FormatBool(r.Q3),
			strconv.FormatBool(r.Q4),
			comment,
			r.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := w.Write(rec); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
