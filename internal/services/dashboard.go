package services

import (
	"context"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/pathlight/pathlight-backend/internal/apperrors"
	"github.com/pathlight/pathlight-backend/internal/logger"
	"github.com/pathlight/pathlight-backend/internal/repos"
	"github.com/pathlight/pathlight-backend/internal/types"
)

// StudentDashboard is the student/parent view: the student record plus the
// progress the session service has accumulated.
type StudentDashboard struct {
	Student        *types.Student               `json:"student"`
	ModuleProgress []*types.ModuleProgress       `json:"module_progress"`
	PathProgress   []*types.PathProgress         `json:"path_progress"`
	Assessments    []*types.AssessmentResponse   `json:"assessments"`
	LearningPaths  []*types.LearningPathResponse `json:"learning_paths"`
}

// CohortDashboard is the teacher/organization view over all students.
type CohortDashboard struct {
	TotalStudents       int              `json:"total_students"`
	OnboardingCompleted int              `json:"onboarding_completed"`
	AssessmentCompleted int              `json:"assessment_completed"`
	Students            []*types.Student `json:"students"`
}

// PlatformDashboard is the admin / platform_super_admin view.
type PlatformDashboard struct {
	TotalStudents int              `json:"total_students"`
	Teachers      []*types.User    `json:"teachers"`
	Organizations []*types.User    `json:"organizations"`
	Students      []*types.Student `json:"students"`
}

type DashboardService interface {
	StudentDashboard(ctx context.Context, userID uuid.UUID) (*StudentDashboard, error)
	CohortDashboard(ctx context.Context) (*CohortDashboard, error)
	PlatformDashboard(ctx context.Context) (*PlatformDashboard, error)
}

type dashboardService struct {
	db             *gorm.DB
	log            *logger.Logger
	userRepo       repos.UserRepo
	studentRepo    repos.StudentRepo
	moduleRepo     repos.ModuleProgressRepo
	pathRepo       repos.PathProgressRepo
	assessmentRepo repos.AssessmentResponseRepo
	learningRepo   repos.LearningPathRepo
}

func NewDashboardService(
	db *gorm.DB,
	log *logger.Logger,
	userRepo repos.UserRepo,
	studentRepo repos.StudentRepo,
	moduleRepo repos.ModuleProgressRepo,
	pathRepo repos.PathProgressRepo,
	assessmentRepo repos.AssessmentResponseRepo,
	learningRepo repos.LearningPathRepo,
) DashboardService {
	return &dashboardService{
		db:             db,
		log:            log.With("service", "DashboardService"),
		userRepo:       userRepo,
		studentRepo:    studentRepo,
		moduleRepo:     moduleRepo,
		pathRepo:       pathRepo,
		assessmentRepo: assessmentRepo,
		learningRepo:   learningRepo,
	}
}

// StudentDashboard fans the independent reads out; each hits a different
// table and none depends on another's result.
func (ds *dashboardService) StudentDashboard(ctx context.Context, userID uuid.UUID) (*StudentDashboard, error) {
	if userID == uuid.Nil {
		return nil, apperrors.Validation("user id is required")
	}

	student, err := ds.studentRepo.GetByUserID(ctx, nil, userID)
	if err != nil {
		return nil, apperrors.DataAccess("load student", err)
	}
	if student == nil {
		return nil, apperrors.NotFound("student not found")
	}

	out := &StudentDashboard{Student: student}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := ds.moduleRepo.GetByStudent(gctx, nil, userID, student.ID)
		if err != nil {
			return err
		}
		out.ModuleProgress = rows
		return nil
	})
	g.Go(func() error {
		rows, err := ds.pathRepo.GetByStudent(gctx, nil, userID, student.ID)
		if err != nil {
			return err
		}
		out.PathProgress = rows
		return nil
	})
	g.Go(func() error {
		rows, err := ds.assessmentRepo.GetByUniqueID(gctx, nil, student.UniqueID)
		if err != nil {
			return err
		}
		out.Assessments = rows
		return nil
	})
	g.Go(func() error {
		rows, err := ds.learningRepo.GetByUniqueID(gctx, nil, student.UniqueID)
		if err != nil {
			return err
		}
		out.LearningPaths = rows
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, apperrors.DataAccess("build student dashboard", err)
	}
	return out, nil
}

func (ds *dashboardService) CohortDashboard(ctx context.Context) (*CohortDashboard, error) {
	students, err := ds.studentRepo.ListAll(ctx, nil)
	if err != nil {
		return nil, apperrors.DataAccess("list students", err)
	}

	out := &CohortDashboard{TotalStudents: len(students), Students: students}
	for _, s := range students {
		if s.OnboardingCompleted {
			out.OnboardingCompleted++
		}
		if s.AssessmentCompleted {
			out.AssessmentCompleted++
		}
	}
	return out, nil
}

func (ds *dashboardService) PlatformDashboard(ctx context.Context) (*PlatformDashboard, error) {
	out := &PlatformDashboard{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		students, err := ds.studentRepo.ListAll(gctx, nil)
		if err != nil {
			return err
		}
		out.Students = students
		out.TotalStudents = len(students)
		return nil
	})
	g.Go(func() error {
		teachers, err := ds.userRepo.GetByRole(gctx, nil, types.RoleTeacher)
		if err != nil {
			return err
		}
		out.Teachers = teachers
		return nil
	})
	g.Go(func() error {
		orgs, err := ds.userRepo.GetByRole(gctx, nil, types.RoleOrganization)
		if err != nil {
			return err
		}
		out.Organizations = orgs
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, apperrors.DataAccess("build platform dashboard", err)
	}
	return out, nil
}
