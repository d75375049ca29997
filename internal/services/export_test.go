package services

import (
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/soaringjerry/valoracion/internal/models"
)

func TestExportReviewsCSV(t *testing.T) {
	at := time.Date(2025, 5, 4, 10, 30, 0, 0, time.UTC)
	comment := "Buen servicio, \"rápido\""
	rs := []*models.Review{
		{ID: 2, Q1: true, Q2: false, Q3: true, Q4: true, Comment: &comment, CreatedAt: at.Add(time.Hour)},
		{ID: 1, CreatedAt: at},
	}
	b, err := ExportReviewsCSV(rs)
	if err != nil {
		t.Fatalf("ExportReviewsCSV returned error: %v", err)
	}
	records, err := csv.NewReader(strings.NewReader(string(b))).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("rows = %d, want 3", len(records))
	}
	if strings.Join(records[0], ",") != "id,q1,q2,q3,q4,comment,created_at" {
		t.Fatalf("unexpected header %v", records[0])
	}
	first := records[1]
	if first[0] != "2" || first[1] != "true" || first[2] != "false" || first[5] != comment {
		t.Fatalf("unexpected first row %v", first)
	}
	if first[6] != "2025-05-04T11:30:00Z" {
		t.Fatalf("created_at = %q", first[6])
	}
	if second := records[2]; second[0] != "1" || second[5] != "" || second[4] != "false" {
		t.Fatalf("unexpected second row %v", second)
	}
}

func TestExportReviewsCSVEmpty(t *testing.T) {
	b, err := ExportReviewsCSV(nil)
	if err != nil {
		t.Fatalf("ExportReviewsCSV returned error: %v", err)
	}
	if got := strings.TrimSpace(string(b)); got != "id,q1,q2,q3,q4,comment,created_at" {
		t.Fatalf("unexpected output %q", got)
	}
}
