package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/pathlight/pathlight-backend/internal/apperrors"
	"github.com/pathlight/pathlight-backend/internal/clients/redis"
	"github.com/pathlight/pathlight-backend/internal/logger"
	"github.com/pathlight/pathlight-backend/internal/repos"
	"github.com/pathlight/pathlight-backend/internal/types"
)

// navHistoryCap bounds UserSession.NavigationHistory; oldest entries are
// evicted first.
const navHistoryCap = 50

// legacyModulesPage is the page snapshot earlier releases used to embed
// module progress in, before module_progress rows existed.
const legacyModulesPage = "modules"

// ModuleProgressPatch carries the fields a save may assert for one module.
// Status transitions are monotonic: a patch can never move a module from
// completed back to in-progress or not-started.
type ModuleProgressPatch struct {
	Status   OptionalString  `json:"status"`
	Progress OptionalFloat64 `json:"progress"`
	LastPage OptionalInt     `json:"last_page"`
	Metadata OptionalJSON    `json:"metadata"`
}

// AssessmentProgressPatch merges into the single active response per
// (unique_id, assessment_type). Answers are shallow-merged by question key.
type AssessmentProgressPatch struct {
	Status          OptionalString `json:"status"`
	CurrentQuestion OptionalInt    `json:"current_question"`
	Answers         OptionalJSON   `json:"answers"`
	Questions       OptionalJSON   `json:"questions"`
	Result          OptionalJSON   `json:"result"`
}

// StudentProgressTotals are cumulative totals computed by the caller. The
// service performs a shallow merge of the set fields; it never increments.
type StudentProgressTotals struct {
	ModulesCompleted OptionalInt `json:"modules_completed"`
	XP               OptionalInt `json:"xp"`
	StreakDays       OptionalInt `json:"streak_days"`
}

// MigrationReport summarizes one MigrateExistingData invocation.
type MigrationReport struct {
	ModulesMigrated int  `json:"modules_migrated"`
	AlreadyMigrated bool `json:"already_migrated"`
}

type SessionService interface {
	SavePageData(ctx context.Context, userID uuid.UUID, page string, data, metadata json.RawMessage) error
	LoadPageData(ctx context.Context, userID uuid.UUID, page string) (*types.SessionPageData, error)
	SaveModuleProgress(ctx context.Context, userID, studentID uuid.UUID, moduleID string, patch ModuleProgressPatch) (*types.ModuleProgress, error)
	LoadModuleProgress(ctx context.Context, userID, studentID uuid.UUID) ([]*types.ModuleProgress, error)
	SavePathProgress(ctx context.Context, userID, studentID uuid.UUID, pathID string, patch ModuleProgressPatch) (*types.PathProgress, error)
	LoadPathProgress(ctx context.Context, userID, studentID uuid.UUID) ([]*types.PathProgress, error)
	SaveAssessmentProgress(ctx context.Context, uniqueID, assessmentType string, patch AssessmentProgressPatch) (*types.AssessmentResponse, error)
	LoadAssessmentProgress(ctx context.Context, uniqueID, assessmentType string) (*types.AssessmentResponse, error)
	SaveCareerProgress(ctx context.Context, userID, studentID uuid.UUID, data json.RawMessage) error
	LoadCareerProgress(ctx context.Context, userID, studentID uuid.UUID) (json.RawMessage, error)
	SaveStudentProgress(ctx context.Context, studentID uuid.UUID, totals StudentProgressTotals) error
	UpdateNavigationHistory(ctx context.Context, userID uuid.UUID, page string) error
	MigrateExistingData(ctx context.Context, userID, studentID uuid.UUID) (*MigrationReport, error)
	CreateSession(ctx context.Context, userID uuid.UUID, studentID *uuid.UUID, page string) (*types.UserSession, error)
	GetActiveSession(ctx context.Context, userID uuid.UUID) (*types.UserSession, error)
}

type sessionService struct {
	db              *gorm.DB
	log             *logger.Logger
	pageDataRepo    repos.SessionPageDataRepo
	moduleRepo      repos.ModuleProgressRepo
	pathRepo        repos.PathProgressRepo
	assessmentRepo  repos.AssessmentResponseRepo
	progressRepo    repos.StudentProgressRepo
	userSessionRepo repos.UserSessionRepo
	studentRepo     repos.StudentRepo
	sessionCache    redis.SessionCache
}

func NewSessionService(
	db *gorm.DB,
	log *logger.Logger,
	pageDataRepo repos.SessionPageDataRepo,
	moduleRepo repos.ModuleProgressRepo,
	pathRepo repos.PathProgressRepo,
	assessmentRepo repos.AssessmentResponseRepo,
	progressRepo repos.StudentProgressRepo,
	userSessionRepo repos.UserSessionRepo,
	studentRepo repos.StudentRepo,
	sessionCache redis.SessionCache,
) SessionService {
	return &sessionService{
		db:              db,
		log:             log.With("service", "SessionService"),
		pageDataRepo:    pageDataRepo,
		moduleRepo:      moduleRepo,
		pathRepo:        pathRepo,
		assessmentRepo:  assessmentRepo,
		progressRepo:    progressRepo,
		userSessionRepo: userSessionRepo,
		studentRepo:     studentRepo,
		sessionCache:    sessionCache,
	}
}

func (ss *sessionService) SavePageData(ctx context.Context, userID uuid.UUID, page string, data, metadata json.RawMessage) error {
	if userID == uuid.Nil {
		return apperrors.Validation("user id is required")
	}
	if page == "" {
		return apperrors.Validation("page is required")
	}

	now := time.Now().UTC()
	row := &types.SessionPageData{
		ID:      uuid.New(),
		UserID:  userID,
		Page:    page,
		Data:    datatypes.JSON(data),
		SavedAt: now,
	}
	if len(metadata) > 0 {
		row.Metadata = datatypes.JSON(metadata)
	}
	if err := ss.pageDataRepo.Upsert(ctx, nil, row); err != nil {
		return apperrors.DataAccess("save page data", err)
	}
	return nil
}

// LoadPageData returns an empty snapshot when nothing was saved; absence is
// not an error.
func (ss *sessionService) LoadPageData(ctx context.Context, userID uuid.UUID, page string) (*types.SessionPageData, error) {
	if userID == uuid.Nil {
		return nil, apperrors.Validation("user id is required")
	}
	if page == "" {
		return nil, apperrors.Validation("page is required")
	}

	row, err := ss.pageDataRepo.GetByKey(ctx, nil, userID, page)
	if err != nil {
		return nil, apperrors.DataAccess("load page data", err)
	}
	if row == nil {
		return &types.SessionPageData{UserID: userID, Page: page}, nil
	}
	return row, nil
}

func (ss *sessionService) SaveModuleProgress(ctx context.Context, userID, studentID uuid.UUID, moduleID string, patch ModuleProgressPatch) (*types.ModuleProgress, error) {
	if userID == uuid.Nil || studentID == uuid.Nil {
		return nil, apperrors.Validation("user id and student id are required")
	}
	if moduleID == "" {
		return nil, apperrors.Validation("module id is required")
	}

	var out *types.ModuleProgress
	err := ss.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := ss.moduleRepo.GetByKey(ctx, tx, userID, studentID, moduleID)
		if err != nil {
			return err
		}

		row := &types.ModuleProgress{
			ID:        uuid.New(),
			UserID:    userID,
			StudentID: studentID,
			ModuleID:  moduleID,
			Status:    types.ProgressStatusNotStarted,
		}
		if existing != nil {
			row = existing
		}

		merged, err := applyProgressPatch(row.Status, row.Progress, row.Metadata, patch)
		if err != nil {
			return err
		}
		row.Status = merged.status
		row.Progress = merged.progress
		row.Metadata = merged.metadata
		if patch.LastPage.Set && patch.LastPage.Value != nil {
			row.LastPage = *patch.LastPage.Value
		}
		if row.Status == types.ProgressStatusCompleted && row.CompletedAt == nil {
			now := time.Now().UTC()
			row.CompletedAt = &now
		}

		if err := ss.moduleRepo.Upsert(ctx, tx, row); err != nil {
			return err
		}
		out = row
		return nil
	})
	if err != nil {
		if apperrors.IsValidation(err) {
			return nil, err
		}
		return nil, apperrors.DataAccess("save module progress", err)
	}
	return out, nil
}

func (ss *sessionService) LoadModuleProgress(ctx context.Context, userID, studentID uuid.UUID) ([]*types.ModuleProgress, error) {
	if userID == uuid.Nil || studentID == uuid.Nil {
		return nil, apperrors.Validation("user id and student id are required")
	}
	rows, err := ss.moduleRepo.GetByStudent(ctx, nil, userID, studentID)
	if err != nil {
		return nil, apperrors.DataAccess("load module progress", err)
	}
	return rows, nil
}

func (ss *sessionService) SavePathProgress(ctx context.Context, userID, studentID uuid.UUID, pathID string, patch ModuleProgressPatch) (*types.PathProgress, error) {
	if userID == uuid.Nil || studentID == uuid.Nil {
		return nil, apperrors.Validation("user id and student id are required")
	}
	if pathID == "" {
		return nil, apperrors.Validation("path id is required")
	}

	var out *types.PathProgress
	err := ss.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := ss.pathRepo.GetByKey(ctx, tx, userID, studentID, pathID)
		if err != nil {
			return err
		}

		row := &types.PathProgress{
			ID:        uuid.New(),
			UserID:    userID,
			StudentID: studentID,
			PathID:    pathID,
			Status:    types.ProgressStatusNotStarted,
		}
		if existing != nil {
			row = existing
		}

		merged, err := applyProgressPatch(row.Status, row.Progress, row.Metadata, patch)
		if err != nil {
			return err
		}
		row.Status = merged.status
		row.Progress = merged.progress
		row.Metadata = merged.metadata
		if patch.LastPage.Set && patch.LastPage.Value != nil {
			row.Milestone = *patch.LastPage.Value
		}

		if err := ss.pathRepo.Upsert(ctx, tx, row); err != nil {
			return err
		}
		out = row
		return nil
	})
	if err != nil {
		if apperrors.IsValidation(err) {
			return nil, err
		}
		return nil, apperrors.DataAccess("save path progress", err)
	}
	return out, nil
}

func (ss *sessionService) LoadPathProgress(ctx context.Context, userID, studentID uuid.UUID) ([]*types.PathProgress, error) {
	if userID == uuid.Nil || studentID == uuid.Nil {
		return nil, apperrors.Validation("user id and student id are required")
	}
	rows, err := ss.pathRepo.GetByStudent(ctx, nil, userID, studentID)
	if err != nil {
		return nil, apperrors.DataAccess("load path progress", err)
	}
	return rows, nil
}

func (ss *sessionService) SaveAssessmentProgress(ctx context.Context, uniqueID, assessmentType string, patch AssessmentProgressPatch) (*types.AssessmentResponse, error) {
	if uniqueID == "" {
		return nil, apperrors.Validation("unique id is required")
	}
	if assessmentType == "" {
		return nil, apperrors.Validation("assessment type is required")
	}

	var out *types.AssessmentResponse
	err := ss.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := ss.assessmentRepo.GetByKey(ctx, tx, uniqueID, assessmentType)
		if err != nil {
			return err
		}

		row := &types.AssessmentResponse{
			ID:             uuid.New(),
			UniqueID:       uniqueID,
			AssessmentType: assessmentType,
			Status:         types.AssessmentStatusNotStarted,
		}
		if existing != nil {
			row = existing
		}

		if patch.Status.Set && patch.Status.Value != nil {
			next := *patch.Status.Value
			if next != types.AssessmentStatusNotStarted &&
				next != types.AssessmentStatusInProgress &&
				next != types.AssessmentStatusCompleted {
				return apperrors.Validation("unknown assessment status")
			}
			// re-asserting the same or a later state is fine; regressions are not
			if types.ProgressRank(next) >= types.ProgressRank(row.Status) {
				row.Status = next
			}
		}
		if patch.CurrentQuestion.Set && patch.CurrentQuestion.Value != nil {
			row.CurrentQuestion = *patch.CurrentQuestion.Value
		}
		if patch.Answers.Set && patch.Answers.Value != nil {
			merged, mErr := mergeJSONObjects(json.RawMessage(row.Answers), *patch.Answers.Value)
			if mErr != nil {
				return apperrors.Validation("answers must be a JSON object")
			}
			row.Answers = datatypes.JSON(merged)
		}
		if patch.Questions.Set && patch.Questions.Value != nil {
			row.Questions = datatypes.JSON(*patch.Questions.Value)
		}
		if patch.Result.Set && patch.Result.Value != nil {
			row.Result = datatypes.JSON(*patch.Result.Value)
		}

		if err := ss.assessmentRepo.Upsert(ctx, tx, row); err != nil {
			return err
		}
		out = row
		return nil
	})
	if err != nil {
		if apperrors.IsValidation(err) {
			return nil, err
		}
		return nil, apperrors.DataAccess("save assessment progress", err)
	}
	return out, nil
}

// LoadAssessmentProgress returns a not-started sentinel when no response
// exists yet.
func (ss *sessionService) LoadAssessmentProgress(ctx context.Context, uniqueID, assessmentType string) (*types.AssessmentResponse, error) {
	if uniqueID == "" {
		return nil, apperrors.Validation("unique id is required")
	}
	if assessmentType == "" {
		return nil, apperrors.Validation("assessment type is required")
	}

	row, err := ss.assessmentRepo.GetByKey(ctx, nil, uniqueID, assessmentType)
	if err != nil {
		return nil, apperrors.DataAccess("load assessment progress", err)
	}
	if row == nil {
		return &types.AssessmentResponse{
			UniqueID:       uniqueID,
			AssessmentType: assessmentType,
			Status:         types.AssessmentStatusNotStarted,
		}, nil
	}
	return row, nil
}

// SaveCareerProgress stores one free-form object per (user, student); the
// previous object is replaced wholesale, no history is kept.
func (ss *sessionService) SaveCareerProgress(ctx context.Context, userID, studentID uuid.UUID, data json.RawMessage) error {
	if userID == uuid.Nil || studentID == uuid.Nil {
		return apperrors.Validation("user id and student id are required")
	}

	row := &types.StudentProgress{
		ID:             uuid.New(),
		UserID:         userID,
		StudentID:      studentID,
		CareerProgress: datatypes.JSON(data),
	}
	err := ss.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := ss.progressRepo.GetByKey(ctx, tx, userID, studentID)
		if err != nil {
			return err
		}
		if existing != nil {
			existing.CareerProgress = datatypes.JSON(data)
			row = existing
		}
		return ss.progressRepo.Upsert(ctx, tx, row)
	})
	if err != nil {
		return apperrors.DataAccess("save career progress", err)
	}
	return nil
}

func (ss *sessionService) LoadCareerProgress(ctx context.Context, userID, studentID uuid.UUID) (json.RawMessage, error) {
	if userID == uuid.Nil || studentID == uuid.Nil {
		return nil, apperrors.Validation("user id and student id are required")
	}
	row, err := ss.progressRepo.GetByKey(ctx, nil, userID, studentID)
	if err != nil {
		return nil, apperrors.DataAccess("load career progress", err)
	}
	if row == nil || len(row.CareerProgress) == 0 {
		return json.RawMessage("{}"), nil
	}
	return json.RawMessage(row.CareerProgress), nil
}

// SaveStudentProgress merges cumulative totals onto the aggregate row and
// mirrors them to the denormalized student counters. Callers own the math;
// passing deltas here silently understates progress.
func (ss *sessionService) SaveStudentProgress(ctx context.Context, studentID uuid.UUID, totals StudentProgressTotals) error {
	if studentID == uuid.Nil {
		return apperrors.Validation("student id is required")
	}

	err := ss.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		students, err := ss.studentRepo.GetByIDs(ctx, tx, []uuid.UUID{studentID})
		if err != nil {
			return err
		}
		if len(students) == 0 {
			return apperrors.NotFound("student not found")
		}
		student := students[0]

		existing, err := ss.progressRepo.GetByKey(ctx, tx, student.UserID, studentID)
		if err != nil {
			return err
		}
		row := &types.StudentProgress{
			ID:        uuid.New(),
			UserID:    student.UserID,
			StudentID: studentID,
		}
		if existing != nil {
			row = existing
		}

		updates := map[string]any{}
		if totals.ModulesCompleted.Set && totals.ModulesCompleted.Value != nil {
			row.ModulesCompleted = *totals.ModulesCompleted.Value
			updates["modules_completed"] = *totals.ModulesCompleted.Value
		}
		if totals.XP.Set && totals.XP.Value != nil {
			row.XP = *totals.XP.Value
			updates["xp"] = *totals.XP.Value
		}
		if totals.StreakDays.Set && totals.StreakDays.Value != nil {
			row.StreakDays = *totals.StreakDays.Value
			updates["streak_days"] = *totals.StreakDays.Value
		}

		if err := ss.progressRepo.Upsert(ctx, tx, row); err != nil {
			return err
		}
		return ss.studentRepo.UpdateFields(ctx, tx, studentID, updates)
	})
	if err != nil {
		if apperrors.IsNotFound(err) {
			return err
		}
		return apperrors.DataAccess("save student progress", err)
	}
	return nil
}

func (ss *sessionService) UpdateNavigationHistory(ctx context.Context, userID uuid.UUID, page string) error {
	if userID == uuid.Nil {
		return apperrors.Validation("user id is required")
	}
	if page == "" {
		return apperrors.Validation("page is required")
	}

	err := ss.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		session, err := ss.ensureSession(ctx, tx, userID)
		if err != nil {
			return err
		}

		var history []types.NavigationEntry
		if len(session.NavigationHistory) > 0 {
			if uErr := json.Unmarshal(session.NavigationHistory, &history); uErr != nil {
				// unreadable history is dropped rather than wedging navigation
				history = nil
			}
		}
		history = append(history, types.NavigationEntry{Page: page, VisitedAt: time.Now().UTC()})
		if len(history) > navHistoryCap {
			history = history[len(history)-navHistoryCap:]
		}

		raw, mErr := json.Marshal(history)
		if mErr != nil {
			return mErr
		}
		now := time.Now().UTC()
		return ss.userSessionRepo.UpdateFields(ctx, tx, userID, map[string]any{
			"navigation_history": datatypes.JSON(raw),
			"current_page":       page,
			"last_active_at":     now,
			"updated_at":         now,
		})
	})
	if err != nil {
		return apperrors.DataAccess("update navigation history", err)
	}
	if ss.sessionCache != nil {
		ss.sessionCache.Invalidate(ctx, userID.String())
	}
	return nil
}

// MigrateExistingData lifts legacy module progress embedded in the "modules"
// page snapshot into module_progress rows. The snapshot is marked migrated
// afterwards, so repeat invocations are no-ops.
func (ss *sessionService) MigrateExistingData(ctx context.Context, userID, studentID uuid.UUID) (*MigrationReport, error) {
	if userID == uuid.Nil || studentID == uuid.Nil {
		return nil, apperrors.Validation("user id and student id are required")
	}

	report := &MigrationReport{}
	err := ss.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		snapshot, err := ss.pageDataRepo.GetByKey(ctx, tx, userID, legacyModulesPage)
		if err != nil {
			return err
		}
		if snapshot == nil || len(snapshot.Data) == 0 {
			return nil
		}

		var meta map[string]any
		if len(snapshot.Metadata) > 0 {
			if uErr := json.Unmarshal(snapshot.Metadata, &meta); uErr != nil {
				meta = nil
			}
		}
		if migrated, ok := meta["migrated"].(bool); ok && migrated {
			report.AlreadyMigrated = true
			return nil
		}

		var legacy struct {
			Modules []struct {
				ModuleID string  `json:"moduleId"`
				Status   string  `json:"status"`
				Progress float64 `json:"progress"`
			} `json:"modules"`
		}
		if uErr := json.Unmarshal(snapshot.Data, &legacy); uErr != nil {
			// a snapshot that was never the legacy shape has nothing to migrate
			return nil
		}

		for _, m := range legacy.Modules {
			if m.ModuleID == "" {
				continue
			}
			existing, gErr := ss.moduleRepo.GetByKey(ctx, tx, userID, studentID, m.ModuleID)
			if gErr != nil {
				return gErr
			}
			if existing != nil {
				// the current schema already owns this module; legacy data loses
				continue
			}
			status := m.Status
			if types.ProgressRank(status) == 0 {
				status = types.ProgressStatusNotStarted
			}
			row := &types.ModuleProgress{
				ID:        uuid.New(),
				UserID:    userID,
				StudentID: studentID,
				ModuleID:  m.ModuleID,
				Status:    status,
				Progress:  m.Progress,
			}
			if uErr := ss.moduleRepo.Upsert(ctx, tx, row); uErr != nil {
				return uErr
			}
			report.ModulesMigrated++
		}

		if meta == nil {
			meta = map[string]any{}
		}
		meta["migrated"] = true
		metaRaw, mErr := json.Marshal(meta)
		if mErr != nil {
			return mErr
		}
		return ss.pageDataRepo.UpdateFields(ctx, tx, userID, legacyModulesPage, map[string]any{
			"metadata":   datatypes.JSON(metaRaw),
			"updated_at": time.Now().UTC(),
		})
	})
	if err != nil {
		return nil, apperrors.DataAccess("migrate existing data", err)
	}
	return report, nil
}

func (ss *sessionService) CreateSession(ctx context.Context, userID uuid.UUID, studentID *uuid.UUID, page string) (*types.UserSession, error) {
	if userID == uuid.Nil {
		return nil, apperrors.Validation("user id is required")
	}

	now := time.Now().UTC()
	row := &types.UserSession{
		ID:           uuid.New(),
		UserID:       userID,
		StudentID:    studentID,
		CurrentPage:  page,
		LastActiveAt: now,
	}
	if err := ss.userSessionRepo.Upsert(ctx, nil, row); err != nil {
		return nil, apperrors.DataAccess("create session", err)
	}
	if ss.sessionCache != nil {
		ss.sessionCache.Set(ctx, row)
	}
	return row, nil
}

// GetActiveSession returns nil without error when the user has no session
// yet; the handle is a UX convenience, not a resource callers may demand.
func (ss *sessionService) GetActiveSession(ctx context.Context, userID uuid.UUID) (*types.UserSession, error) {
	if userID == uuid.Nil {
		return nil, apperrors.Validation("user id is required")
	}

	if ss.sessionCache != nil {
		if session, ok := ss.sessionCache.Get(ctx, userID.String()); ok {
			return session, nil
		}
	}
	session, err := ss.userSessionRepo.GetByUserID(ctx, nil, userID)
	if err != nil {
		return nil, apperrors.DataAccess("get active session", err)
	}
	if session != nil && ss.sessionCache != nil {
		ss.sessionCache.Set(ctx, session)
	}
	return session, nil
}

func (ss *sessionService) ensureSession(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.UserSession, error) {
	session, err := ss.userSessionRepo.GetByUserID(ctx, tx, userID)
	if err != nil {
		return nil, err
	}
	if session != nil {
		return session, nil
	}
	session = &types.UserSession{
		ID:           uuid.New(),
		UserID:       userID,
		LastActiveAt: time.Now().UTC(),
	}
	if err := ss.userSessionRepo.Upsert(ctx, tx, session); err != nil {
		return nil, err
	}
	return session, nil
}

type mergedProgress struct {
	status   string
	progress float64
	metadata datatypes.JSON
}

// applyProgressPatch enforces the monotonic status machine and re-asserts
// progress percent from the patch.
func applyProgressPatch(status string, progress float64, metadata datatypes.JSON, patch ModuleProgressPatch) (mergedProgress, error) {
	out := mergedProgress{status: status, progress: progress, metadata: metadata}

	if patch.Status.Set && patch.Status.Value != nil {
		next := *patch.Status.Value
		if next != types.ProgressStatusNotStarted &&
			next != types.ProgressStatusInProgress &&
			next != types.ProgressStatusCompleted {
			return out, apperrors.Validation("unknown progress status")
		}
		if types.ProgressRank(next) >= types.ProgressRank(status) {
			out.status = next
		}
	}
	if patch.Progress.Set && patch.Progress.Value != nil {
		v := *patch.Progress.Value
		if v < 0 || v > 100 {
			return out, apperrors.Validation("progress out of range (0..100)")
		}
		out.progress = v
	}
	if patch.Metadata.Set && patch.Metadata.Value != nil {
		merged, err := mergeJSONObjects(json.RawMessage(metadata), *patch.Metadata.Value)
		if err != nil {
			return out, err
		}
		out.metadata = datatypes.JSON(merged)
	}
	return out, nil
}
