package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/pathlight/pathlight-backend/internal/repos"
	"github.com/pathlight/pathlight-backend/internal/types"
)

func TestExportProgressCSV(t *testing.T) {
	db := newTestDB(t)
	log := newTestLogger(t)

	user := &types.User{
		ID:        uuid.New(),
		Email:     "quote@example.com",
		Password:  "hashed",
		FirstName: `Anna "Ace"`,
		LastName:  "O'Brien, Jr.",
		Role:      types.RoleStudent,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	student := &types.Student{
		ID:               uuid.New(),
		UserID:           user.ID,
		UniqueID:         "STU-CSV001",
		Grade:            "7",
		ModulesCompleted: 2,
		XP:               300,
	}
	if err := db.Create(student).Error; err != nil {
		t.Fatalf("seed student: %v", err)
	}

	es := NewExportService(log, repos.NewStudentRepo(db, log))

	var buf bytes.Buffer
	if err := es.ExportProgressCSV(context.Background(), &buf); err != nil {
		t.Fatalf("export: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("parse exported csv: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("records = %d, want header + 1 row", len(records))
	}
	if records[0][0] != "unique_id" {
		t.Errorf("header[0] = %s, want unique_id", records[0][0])
	}
	row := records[1]
	if row[0] != "STU-CSV001" {
		t.Errorf("unique_id = %s", row[0])
	}
	// quotes and commas must survive the round trip
	if row[1] != `Anna "Ace"` || row[2] != "O'Brien, Jr." {
		t.Errorf("name = %q %q, csv escaping broken", row[1], row[2])
	}
	if row[7] != "2" || row[8] != "300" {
		t.Errorf("counters = %s/%s, want 2/300", row[7], row[8])
	}
}

func TestExportRosterCSVOmitsProgress(t *testing.T) {
	db := newTestDB(t)
	log := newTestLogger(t)
	es := NewExportService(log, repos.NewStudentRepo(db, log))

	var buf bytes.Buffer
	if err := es.ExportRosterCSV(context.Background(), &buf); err != nil {
		t.Fatalf("export: %v", err)
	}
	header := strings.TrimSpace(buf.String())
	if strings.Contains(header, "xp") || strings.Contains(header, "modules_completed") {
		t.Errorf("roster header = %s, must not carry progress columns", header)
	}
	if !strings.HasPrefix(header, "unique_id,first_name,last_name,email,grade") {
		t.Errorf("roster header = %s", header)
	}
}
