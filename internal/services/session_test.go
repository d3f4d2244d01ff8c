package services

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/pathlight/pathlight-backend/internal/apperrors"
	"github.com/pathlight/pathlight-backend/internal/logger"
	"github.com/pathlight/pathlight-backend/internal/repos"
	"github.com/pathlight/pathlight-backend/internal/types"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	err = db.AutoMigrate(
		&types.User{},
		&types.Student{},
		&types.AssessmentResponse{},
		&types.StudentProgress{},
		&types.ModuleProgress{},
		&types.PathProgress{},
		&types.SessionPageData{},
		&types.UserSession{},
		&types.LearningPathResponse{},
	)
	if err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	return db
}

func newTestSessionService(t *testing.T) (SessionService, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	log, err := logger.New("production")
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	svc := NewSessionService(
		db,
		log,
		repos.NewSessionPageDataRepo(db, log),
		repos.NewModuleProgressRepo(db, log),
		repos.NewPathProgressRepo(db, log),
		repos.NewAssessmentResponseRepo(db, log),
		repos.NewStudentProgressRepo(db, log),
		repos.NewUserSessionRepo(db, log),
		repos.NewStudentRepo(db, log),
		nil,
	)
	return svc, db
}

func seedStudent(t *testing.T, db *gorm.DB, uniqueID string) (*types.User, *types.Student) {
	t.Helper()
	user := &types.User{
		ID:        uuid.New(),
		Email:     uniqueID + "@example.com",
		Password:  "hashed",
		FirstName: "Test",
		LastName:  "Student",
		Role:      types.RoleStudent,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	student := &types.Student{
		ID:       uuid.New(),
		UserID:   user.ID,
		UniqueID: uniqueID,
		Grade:    "8",
	}
	if err := db.Create(student).Error; err != nil {
		t.Fatalf("seed student: %v", err)
	}
	return user, student
}

func strPtr(s string) *string       { return &s }
func intPtr(v int) *int             { return &v }
func floatPtr(v float64) *float64   { return &v }
func rawPtr(s string) *json.RawMessage {
	raw := json.RawMessage(s)
	return &raw
}

func TestSavePageDataOverwritesWholeSnapshot(t *testing.T) {
	svc, _ := newTestSessionService(t)
	ctx := context.Background()
	userID := uuid.New()

	if err := svc.SavePageData(ctx, userID, "dashboard", json.RawMessage(`{"tab":"overview","scroll":120}`), nil); err != nil {
		t.Fatalf("first save: %v", err)
	}
	if err := svc.SavePageData(ctx, userID, "dashboard", json.RawMessage(`{"tab":"paths"}`), json.RawMessage(`{"client":"web"}`)); err != nil {
		t.Fatalf("second save: %v", err)
	}

	got, err := svc.LoadPageData(ctx, userID, "dashboard")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	var data map[string]any
	if err := json.Unmarshal(got.Data, &data); err != nil {
		t.Fatalf("unmarshal data: %v", err)
	}
	if data["tab"] != "paths" {
		t.Errorf("tab = %v, want paths", data["tab"])
	}
	if _, ok := data["scroll"]; ok {
		t.Errorf("scroll survived a whole-snapshot overwrite")
	}
}

func TestSavePageDataWithoutMetadataClearsStored(t *testing.T) {
	svc, _ := newTestSessionService(t)
	ctx := context.Background()
	userID := uuid.New()

	if err := svc.SavePageData(ctx, userID, "dashboard", json.RawMessage(`{"tab":"overview"}`), json.RawMessage(`{"client":"web"}`)); err != nil {
		t.Fatalf("first save: %v", err)
	}
	if err := svc.SavePageData(ctx, userID, "dashboard", json.RawMessage(`{"tab":"paths"}`), nil); err != nil {
		t.Fatalf("second save: %v", err)
	}

	got, err := svc.LoadPageData(ctx, userID, "dashboard")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got.Metadata) != 0 && string(got.Metadata) != "null" {
		t.Errorf("Metadata = %s, want cleared", got.Metadata)
	}
}

func TestLoadPageDataAbsentReturnsEmptySnapshot(t *testing.T) {
	svc, _ := newTestSessionService(t)

	got, err := svc.LoadPageData(context.Background(), uuid.New(), "never-saved")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got == nil {
		t.Fatal("want empty snapshot, got nil")
	}
	if len(got.Data) != 0 {
		t.Errorf("Data = %s, want empty", got.Data)
	}
}

func TestSaveModuleProgressMergesWithoutTouchingOthers(t *testing.T) {
	svc, _ := newTestSessionService(t)
	ctx := context.Background()
	userID := uuid.New()
	studentID := uuid.New()

	if _, err := svc.SaveModuleProgress(ctx, userID, studentID, "m1", ModuleProgressPatch{
		Status:   OptionalString{Set: true, Value: strPtr(types.ProgressStatusInProgress)},
		Progress: OptionalFloat64{Set: true, Value: floatPtr(40)},
	}); err != nil {
		t.Fatalf("save m1: %v", err)
	}
	if _, err := svc.SaveModuleProgress(ctx, userID, studentID, "m2", ModuleProgressPatch{
		Status: OptionalString{Set: true, Value: strPtr(types.ProgressStatusInProgress)},
	}); err != nil {
		t.Fatalf("save m2: %v", err)
	}

	if _, err := svc.SaveModuleProgress(ctx, userID, studentID, "m1", ModuleProgressPatch{
		Status:   OptionalString{Set: true, Value: strPtr(types.ProgressStatusCompleted)},
		Progress: OptionalFloat64{Set: true, Value: floatPtr(75)},
	}); err != nil {
		t.Fatalf("update m1: %v", err)
	}

	rows, err := svc.LoadModuleProgress(ctx, userID, studentID)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("len(rows) = %d, want 2", len(rows))
	}
	byModule := map[string]*types.ModuleProgress{}
	for _, r := range rows {
		byModule[r.ModuleID] = r
	}
	m1 := byModule["m1"]
	if m1.Status != types.ProgressStatusCompleted || m1.Progress != 75 {
		t.Errorf("m1 = %s/%v, want completed/75", m1.Status, m1.Progress)
	}
	if m1.CompletedAt == nil {
		t.Errorf("m1.CompletedAt not set on completion")
	}
	m2 := byModule["m2"]
	if m2.Status != types.ProgressStatusInProgress || m2.Progress != 0 {
		t.Errorf("m2 = %s/%v, updating m1 must not touch m2", m2.Status, m2.Progress)
	}
}

func TestSaveModuleProgressStatusNeverRegresses(t *testing.T) {
	svc, _ := newTestSessionService(t)
	ctx := context.Background()
	userID := uuid.New()
	studentID := uuid.New()

	if _, err := svc.SaveModuleProgress(ctx, userID, studentID, "m1", ModuleProgressPatch{
		Status: OptionalString{Set: true, Value: strPtr(types.ProgressStatusCompleted)},
	}); err != nil {
		t.Fatalf("complete m1: %v", err)
	}

	row, err := svc.SaveModuleProgress(ctx, userID, studentID, "m1", ModuleProgressPatch{
		Status: OptionalString{Set: true, Value: strPtr(types.ProgressStatusInProgress)},
	})
	if err != nil {
		t.Fatalf("regress attempt: %v", err)
	}
	if row.Status != types.ProgressStatusCompleted {
		t.Errorf("status = %s, completed must not regress", row.Status)
	}
}

func TestSaveModuleProgressRejectsOutOfRange(t *testing.T) {
	svc, _ := newTestSessionService(t)

	_, err := svc.SaveModuleProgress(context.Background(), uuid.New(), uuid.New(), "m1", ModuleProgressPatch{
		Progress: OptionalFloat64{Set: true, Value: floatPtr(120)},
	})
	if !apperrors.IsValidation(err) {
		t.Fatalf("err = %v, want validation error", err)
	}
}

func TestSaveModuleProgressReassertsZero(t *testing.T) {
	svc, _ := newTestSessionService(t)
	ctx := context.Background()
	userID := uuid.New()
	studentID := uuid.New()

	if _, err := svc.SaveModuleProgress(ctx, userID, studentID, "m1", ModuleProgressPatch{
		Status:   OptionalString{Set: true, Value: strPtr(types.ProgressStatusInProgress)},
		Progress: OptionalFloat64{Set: true, Value: floatPtr(40)},
	}); err != nil {
		t.Fatalf("first save: %v", err)
	}

	// every save re-asserts the percent, zero included
	row, err := svc.SaveModuleProgress(ctx, userID, studentID, "m1", ModuleProgressPatch{
		Progress: OptionalFloat64{Set: true, Value: floatPtr(0)},
	})
	if err != nil {
		t.Fatalf("second save: %v", err)
	}
	if row.Progress != 0 {
		t.Errorf("progress = %v after re-asserting 0, want 0", row.Progress)
	}

	rows, err := svc.LoadModuleProgress(ctx, userID, studentID)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("len(rows) = %d, want 1", len(rows))
	}
	if rows[0].Progress != 0 {
		t.Errorf("stored progress = %v, want 0", rows[0].Progress)
	}
}

func TestSavePathProgressKeepsOneRowPerPath(t *testing.T) {
	svc, _ := newTestSessionService(t)
	ctx := context.Background()
	userID := uuid.New()
	studentID := uuid.New()

	for i := 0; i < 3; i++ {
		if _, err := svc.SavePathProgress(ctx, userID, studentID, "p1", ModuleProgressPatch{
			Status: OptionalString{Set: true, Value: strPtr(types.ProgressStatusInProgress)},
		}); err != nil {
			t.Fatalf("save %d: %v", i, err)
		}
	}

	rows, err := svc.LoadPathProgress(ctx, userID, studentID)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(rows) != 1 {
		t.Errorf("len(rows) = %d, repeated saves must upsert one row", len(rows))
	}
}

func TestSaveAssessmentProgressMergesAnswers(t *testing.T) {
	svc, _ := newTestSessionService(t)
	ctx := context.Background()

	if _, err := svc.SaveAssessmentProgress(ctx, "STU-AAAAAA", "career", AssessmentProgressPatch{
		Status:  OptionalString{Set: true, Value: strPtr(types.AssessmentStatusInProgress)},
		Answers: OptionalJSON{Set: true, Value: rawPtr(`{"q1":"a"}`)},
	}); err != nil {
		t.Fatalf("first save: %v", err)
	}
	row, err := svc.SaveAssessmentProgress(ctx, "STU-AAAAAA", "career", AssessmentProgressPatch{
		Answers:         OptionalJSON{Set: true, Value: rawPtr(`{"q2":"b"}`)},
		CurrentQuestion: OptionalInt{Set: true, Value: intPtr(2)},
	})
	if err != nil {
		t.Fatalf("second save: %v", err)
	}

	var answers map[string]string
	if err := json.Unmarshal(row.Answers, &answers); err != nil {
		t.Fatalf("unmarshal answers: %v", err)
	}
	if answers["q1"] != "a" || answers["q2"] != "b" {
		t.Errorf("answers = %v, merge must keep earlier keys", answers)
	}
	if row.CurrentQuestion != 2 {
		t.Errorf("current question = %d, want 2", row.CurrentQuestion)
	}
}

func TestLoadAssessmentProgressAbsentReturnsNotStarted(t *testing.T) {
	svc, _ := newTestSessionService(t)

	row, err := svc.LoadAssessmentProgress(context.Background(), "STU-ZZZZZZ", "career")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if row.Status != types.AssessmentStatusNotStarted {
		t.Errorf("status = %s, want %s", row.Status, types.AssessmentStatusNotStarted)
	}
}

func TestSaveAssessmentProgressRejectsUnknownStatus(t *testing.T) {
	svc, _ := newTestSessionService(t)

	_, err := svc.SaveAssessmentProgress(context.Background(), "STU-AAAAAA", "career", AssessmentProgressPatch{
		Status: OptionalString{Set: true, Value: strPtr("paused")},
	})
	if !apperrors.IsValidation(err) {
		t.Fatalf("err = %v, want validation error", err)
	}
}

func TestCareerProgressLastWriteWins(t *testing.T) {
	svc, _ := newTestSessionService(t)
	ctx := context.Background()
	userID := uuid.New()
	studentID := uuid.New()

	got, err := svc.LoadCareerProgress(ctx, userID, studentID)
	if err != nil {
		t.Fatalf("load absent: %v", err)
	}
	if string(got) != "{}" {
		t.Errorf("absent career progress = %s, want {}", got)
	}

	if err := svc.SaveCareerProgress(ctx, userID, studentID, json.RawMessage(`{"career":"designer","step":1}`)); err != nil {
		t.Fatalf("first save: %v", err)
	}
	if err := svc.SaveCareerProgress(ctx, userID, studentID, json.RawMessage(`{"career":"engineer"}`)); err != nil {
		t.Fatalf("second save: %v", err)
	}

	got, err = svc.LoadCareerProgress(ctx, userID, studentID)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	var obj map[string]any
	if err := json.Unmarshal(got, &obj); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if obj["career"] != "engineer" {
		t.Errorf("career = %v, want engineer", obj["career"])
	}
	if _, ok := obj["step"]; ok {
		t.Errorf("step survived, career progress is replace-wholesale")
	}
}

func TestSaveStudentProgressMirrorsTotals(t *testing.T) {
	svc, db := newTestSessionService(t)
	ctx := context.Background()
	_, student := seedStudent(t, db, "STU-BBBBBB")

	err := svc.SaveStudentProgress(ctx, student.ID, StudentProgressTotals{
		ModulesCompleted: OptionalInt{Set: true, Value: intPtr(3)},
		XP:               OptionalInt{Set: true, Value: intPtr(450)},
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	// totals are absolute; a second save re-asserts, never adds
	err = svc.SaveStudentProgress(ctx, student.ID, StudentProgressTotals{
		ModulesCompleted: OptionalInt{Set: true, Value: intPtr(4)},
	})
	if err != nil {
		t.Fatalf("second save: %v", err)
	}

	var reloaded types.Student
	if err := db.First(&reloaded, "id = ?", student.ID).Error; err != nil {
		t.Fatalf("reload student: %v", err)
	}
	if reloaded.ModulesCompleted != 4 {
		t.Errorf("modules_completed = %d, want 4", reloaded.ModulesCompleted)
	}
	if reloaded.XP != 450 {
		t.Errorf("xp = %d, unset fields must survive the merge", reloaded.XP)
	}

	var agg types.StudentProgress
	if err := db.First(&agg, "student_id = ?", student.ID).Error; err != nil {
		t.Fatalf("reload aggregate: %v", err)
	}
	if agg.ModulesCompleted != 4 || agg.XP != 450 {
		t.Errorf("aggregate = %d/%d, want 4/450", agg.ModulesCompleted, agg.XP)
	}
}

func TestSaveStudentProgressUnknownStudent(t *testing.T) {
	svc, _ := newTestSessionService(t)

	err := svc.SaveStudentProgress(context.Background(), uuid.New(), StudentProgressTotals{
		XP: OptionalInt{Set: true, Value: intPtr(10)},
	})
	if !apperrors.IsNotFound(err) {
		t.Fatalf("err = %v, want not found", err)
	}
}

func TestUpdateNavigationHistoryCapsAtFifty(t *testing.T) {
	svc, _ := newTestSessionService(t)
	ctx := context.Background()
	userID := uuid.New()

	for i := 0; i < 55; i++ {
		page := "page-" + string(rune('a'+i%26)) + "-" + string(rune('0'+i%10))
		if err := svc.UpdateNavigationHistory(ctx, userID, page); err != nil {
			t.Fatalf("visit %d: %v", i, err)
		}
	}

	session, err := svc.GetActiveSession(ctx, userID)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	var history []types.NavigationEntry
	if err := json.Unmarshal(session.NavigationHistory, &history); err != nil {
		t.Fatalf("unmarshal history: %v", err)
	}
	if len(history) != 50 {
		t.Fatalf("len(history) = %d, want 50", len(history))
	}
	// oldest entries evicted first: the 55 visits keep the last 50
	if history[len(history)-1].Page != "page-"+string(rune('a'+54%26))+"-"+string(rune('0'+54%10)) {
		t.Errorf("newest entry = %s, want the last visited page", history[len(history)-1].Page)
	}
}

func TestMigrateExistingDataLiftsLegacyModules(t *testing.T) {
	svc, _ := newTestSessionService(t)
	ctx := context.Background()
	userID := uuid.New()
	studentID := uuid.New()

	legacy := `{"modules":[{"moduleId":"m1","status":"completed","progress":100},{"moduleId":"m2","status":"in-progress","progress":30}]}`
	if err := svc.SavePageData(ctx, userID, "modules", json.RawMessage(legacy), nil); err != nil {
		t.Fatalf("seed legacy snapshot: %v", err)
	}
	// m2 already owned by the current schema; migration must not clobber it
	if _, err := svc.SaveModuleProgress(ctx, userID, studentID, "m2", ModuleProgressPatch{
		Progress: OptionalFloat64{Set: true, Value: floatPtr(60)},
	}); err != nil {
		t.Fatalf("seed existing row: %v", err)
	}

	report, err := svc.MigrateExistingData(ctx, userID, studentID)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if report.ModulesMigrated != 1 {
		t.Errorf("modules migrated = %d, want 1", report.ModulesMigrated)
	}

	rows, err := svc.LoadModuleProgress(ctx, userID, studentID)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	byModule := map[string]*types.ModuleProgress{}
	for _, r := range rows {
		byModule[r.ModuleID] = r
	}
	if byModule["m1"].Status != types.ProgressStatusCompleted || byModule["m1"].Progress != 100 {
		t.Errorf("m1 = %s/%v, want migrated completed/100", byModule["m1"].Status, byModule["m1"].Progress)
	}
	if byModule["m2"].Progress != 60 {
		t.Errorf("m2 progress = %v, existing row must win over legacy", byModule["m2"].Progress)
	}

	// second run is a no-op
	report, err = svc.MigrateExistingData(ctx, userID, studentID)
	if err != nil {
		t.Fatalf("second migrate: %v", err)
	}
	if !report.AlreadyMigrated || report.ModulesMigrated != 0 {
		t.Errorf("second run = %+v, want already-migrated no-op", report)
	}
}

func TestGetActiveSessionAbsentReturnsNil(t *testing.T) {
	svc, _ := newTestSessionService(t)

	session, err := svc.GetActiveSession(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if session != nil {
		t.Errorf("session = %+v, want nil for a user with no session", session)
	}
}

func TestCreateSessionUpsertsOnePerUser(t *testing.T) {
	svc, db := newTestSessionService(t)
	ctx := context.Background()
	userID := uuid.New()

	if _, err := svc.CreateSession(ctx, userID, nil, "dashboard"); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if _, err := svc.CreateSession(ctx, userID, nil, "modules"); err != nil {
		t.Fatalf("second create: %v", err)
	}

	var count int64
	if err := db.Model(&types.UserSession{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Errorf("count = %d, want one session row per user", count)
	}

	session, err := svc.GetActiveSession(ctx, userID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if session.CurrentPage != "modules" {
		t.Errorf("current page = %s, want modules", session.CurrentPage)
	}
}
