package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/pathlight/pathlight-backend/internal/apperrors"
	"github.com/pathlight/pathlight-backend/internal/logger"
	"github.com/pathlight/pathlight-backend/internal/repos"
	"github.com/pathlight/pathlight-backend/internal/types"
)

// ExportService renders roster and progress reports as CSV for teachers
// and organizations. Rows stream straight into the caller's writer so
// large cohorts never buffer in memory.
type ExportService interface {
	ExportProgressCSV(ctx context.Context, w io.Writer) error
	ExportRosterCSV(ctx context.Context, w io.Writer) error
}

type exportService struct {
	log         *logger.Logger
	studentRepo repos.StudentRepo
}

func NewExportService(log *logger.Logger, studentRepo repos.StudentRepo) ExportService {
	return &exportService{
		log:         log.With("service", "ExportService"),
		studentRepo: studentRepo,
	}
}

var progressHeader = []string{
	"unique_id", "first_name", "last_name", "email", "grade",
	"onboarding_completed", "assessment_completed",
	"modules_completed", "xp", "streak_days",
}

func (es *exportService) ExportProgressCSV(ctx context.Context, w io.Writer) error {
	students, err := es.studentRepo.ListAll(ctx, nil)
	if err != nil {
		return apperrors.DataAccess("list students for export", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(progressHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, s := range students {
		row := []string{
			s.UniqueID,
			userField(s.User, func(u *types.User) string { return u.FirstName }),
			userField(s.User, func(u *types.User) string { return u.LastName }),
			userField(s.User, func(u *types.User) string { return u.Email }),
			s.Grade,
			strconv.FormatBool(s.OnboardingCompleted),
			strconv.FormatBool(s.AssessmentCompleted),
			strconv.Itoa(s.ModulesCompleted),
			strconv.Itoa(s.XP),
			strconv.Itoa(s.StreakDays),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	es.log.Info("exported progress report", "rows", len(students))
	return nil
}

var rosterHeader = []string{"unique_id", "first_name", "last_name", "email", "grade"}

// ExportRosterCSV is the sign-in sheet a teacher hands out: identity
// columns only, no progress numbers and never the password hash.
func (es *exportService) ExportRosterCSV(ctx context.Context, w io.Writer) error {
	students, err := es.studentRepo.ListAll(ctx, nil)
	if err != nil {
		return apperrors.DataAccess("list students for export", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(rosterHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, s := range students {
		row := []string{
			s.UniqueID,
			userField(s.User, func(u *types.User) string { return u.FirstName }),
			userField(s.User, func(u *types.User) string { return u.LastName }),
			userField(s.User, func(u *types.User) string { return u.Email }),
			s.Grade,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	es.log.Info("exported roster", "rows", len(students))
	return nil
}

func userField(u *types.User, pick func(*types.User) string) string {
	if u == nil {
		return ""
	}
	return pick(u)
}
