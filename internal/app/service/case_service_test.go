package service

import (
	"context"
	"testing"
	"time"

	"github.com/lexcase/lexcase-backend/internal/app/model"
	"github.com/lexcase/lexcase-backend/internal/app/repository"
	"github.com/lexcase/lexcase-backend/internal/db"
	"github.com/lexcase/lexcase-backend/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type caseServiceFixture struct {
	cases         CaseService
	verifications VerificationService
	db            *gorm.DB
	user          *model.User
	reviewer      *model.User
}

func setupCaseServiceTest(t *testing.T) *caseServiceFixture {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	verificationRepo := repository.NewVerificationRepository(testDB)
	caseRepo := repository.NewCaseRepository(testDB)
	documentRepo := repository.NewDocumentRepository(testDB)
	auditRepo := repository.NewAuditRepository(testDB)
	notificationRepo := repository.NewNotificationRepository(testDB)

	localStorage, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	registry := storage.NewRegistry(model.StorageBackendLocal, localStorage)

	auditService := NewAuditService(auditRepo, 3)
	notificationService := NewNotificationService(notificationRepo, nil)
	dispatcher := NewSideEffectDispatcher(auditService, notificationService, 5*time.Second)
	verificationService := NewVerificationService(testDB, verificationRepo, dispatcher)
	documentService := NewDocumentService(documentRepo, registry)
	caseService := NewCaseService(caseRepo, verificationService, documentService, dispatcher)

	user := &model.User{
		Email:        "lawyer@example.com",
		PasswordHash: "hash",
		Name:         "Test Lawyer",
		Role:         model.RoleUser,
	}
	testDB.Create(user)

	reviewer := &model.User{
		Email:        "reviewer@example.com",
		PasswordHash: "hash",
		Name:         "Test Reviewer",
		Role:         model.RoleReviewer,
	}
	testDB.Create(reviewer)

	return &caseServiceFixture{
		cases:         caseService,
		verifications: verificationService,
		db:            testDB,
		user:          user,
		reviewer:      reviewer,
	}
}

// seedCase inserts a case directly, bypassing the verification gate
func (f *caseServiceFixture) seedCase(t *testing.T, caseNumber string) *model.Case {
	c := &model.Case{
		CaseNumber: caseNumber,
		Title:      "Seeded Case",
		Status:     model.CaseStatusOpen,
		CreatedBy:  f.user.ID,
	}
	require.NoError(t, f.db.Create(c).Error)
	return c
}

func (f *caseServiceFixture) approveUser(t *testing.T, userID uint) {
	request, err := f.verifications.Submit(context.Background(), userID)
	require.NoError(t, err)
	_, err = f.verifications.Decide(context.Background(), request.ID, f.reviewer.ID, model.OutcomeApprove, "")
	require.NoError(t, err)
}

func TestCaseService_CreateCase_RequiresApproval(t *testing.T) {
	f := setupCaseServiceTest(t)

	_, err := f.cases.CreateCase(context.Background(), f.user.ID, CreateCaseInput{
		CaseNumber: "2026-CV-0001",
		Title:      "Smith v. Jones",
	})
	assert.ErrorIs(t, err, ErrNotVerified)
}

func TestCaseService_CreateCase_Success(t *testing.T) {
	f := setupCaseServiceTest(t)
	f.approveUser(t, f.user.ID)

	created, err := f.cases.CreateCase(context.Background(), f.user.ID, CreateCaseInput{
		CaseNumber:  "2026-CV-0001",
		Title:       "Smith v. Jones",
		Description: "Contract dispute",
		Parties:     []string{"Alice Smith", "Bob Jones"},
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, model.CaseStatusOpen, created.Status)
	assert.Equal(t, f.user.ID, created.CreatedBy)

	// Case opening is recorded in the audit trail
	var entry model.AuditEntry
	require.NoError(t, f.db.Where("action = ?", model.ActionCaseOpened).First(&entry).Error)
	assert.Equal(t, f.user.ID, entry.ActorID)
}

func TestCaseService_AttachDocument_NotVerified(t *testing.T) {
	f := setupCaseServiceTest(t)
	c := f.seedCase(t, "2026-CV-0002")

	_, err := f.cases.AttachDocument(context.Background(), c.ID, f.user.ID, RegisterDocumentInput{
		FileName:   "brief.pdf",
		StorageRef: "refs/brief.pdf",
		Size:       1024,
	})
	assert.ErrorIs(t, err, ErrNotVerified)

	var count int64
	f.db.Model(&model.DocumentRecord{}).Count(&count)
	assert.Zero(t, count)
}

func TestCaseService_AttachDocument_CaseNotFound(t *testing.T) {
	f := setupCaseServiceTest(t)
	f.approveUser(t, f.user.ID)

	_, err := f.cases.AttachDocument(context.Background(), 9999, f.user.ID, RegisterDocumentInput{
		FileName:   "brief.pdf",
		StorageRef: "refs/brief.pdf",
	})
	assert.ErrorIs(t, err, ErrCaseNotFound)
}

func TestCaseService_AttachDocument_Idempotent(t *testing.T) {
	f := setupCaseServiceTest(t)
	f.approveUser(t, f.user.ID)
	c := f.seedCase(t, "2026-CV-0003")

	input := RegisterDocumentInput{
		FileName:    "brief.pdf",
		ContentType: "application/pdf",
		Size:        2048,
		StorageRef:  "refs/brief.pdf",
	}

	first, err := f.cases.AttachDocument(context.Background(), c.ID, f.user.ID, input)
	require.NoError(t, err)

	// Retrying with the same storage ref returns the committed record
	retry, err := f.cases.AttachDocument(context.Background(), c.ID, f.user.ID, input)
	require.NoError(t, err)
	assert.Equal(t, first.ID, retry.ID)

	var docCount int64
	f.db.Model(&model.DocumentRecord{}).Count(&docCount)
	assert.Equal(t, int64(1), docCount)

	// The attachment entry stays single despite the repeated dispatch
	var auditCount int64
	f.db.Model(&model.AuditEntry{}).Where("action = ?", model.ActionDocumentAttached).Count(&auditCount)
	assert.Equal(t, int64(1), auditCount)
}

// Full approval path: submit, review, approve, attach. Ends with exactly one
// document, two audit entries and one unread approval notification.
func TestCaseService_ApproveThenAttach(t *testing.T) {
	f := setupCaseServiceTest(t)
	c := f.seedCase(t, "2026-CV-0004")

	request, err := f.verifications.Submit(context.Background(), f.user.ID)
	require.NoError(t, err)
	assert.Equal(t, model.VerificationStatusPending, request.Status)

	reviewed, err := f.verifications.BeginReview(context.Background(), request.ID, f.reviewer.ID)
	require.NoError(t, err)
	assert.Equal(t, model.VerificationStatusUnderReview, reviewed.Status)

	decided, err := f.verifications.Decide(context.Background(), request.ID, f.reviewer.ID, model.OutcomeApprove, "")
	require.NoError(t, err)
	assert.Equal(t, model.VerificationStatusApproved, decided.Status)
	require.NotNil(t, decided.DecidedAt)

	record, err := f.cases.AttachDocument(context.Background(), c.ID, f.user.ID, RegisterDocumentInput{
		FileName:    "brief.pdf",
		ContentType: "application/pdf",
		Size:        4096,
		StorageRef:  "refs/brief.pdf",
	})
	require.NoError(t, err)
	assert.NotZero(t, record.ID)

	var docCount int64
	f.db.Model(&model.DocumentRecord{}).Count(&docCount)
	assert.Equal(t, int64(1), docCount)

	var entries []model.AuditEntry
	f.db.Order("occurred_at ASC").Find(&entries)
	require.Len(t, entries, 2)
	assert.Equal(t, model.ActionVerificationApproved, entries[0].Action)
	assert.Equal(t, model.ActionDocumentAttached, entries[1].Action)

	var notifications []model.Notification
	f.db.Where("user_id = ? AND is_read = ?", f.user.ID, false).Find(&notifications)
	require.Len(t, notifications, 1)
	assert.Equal(t, model.NotificationTypeVerificationDecided, notifications[0].Type)
}

// Rejection path: the user never gets to attach anything and only the
// rejection lands in the audit trail.
func TestCaseService_RejectThenAttach(t *testing.T) {
	f := setupCaseServiceTest(t)
	c := f.seedCase(t, "2026-CV-0005")

	request, err := f.verifications.Submit(context.Background(), f.user.ID)
	require.NoError(t, err)
	_, err = f.verifications.Decide(context.Background(), request.ID, f.reviewer.ID, model.OutcomeReject, "incomplete application")
	require.NoError(t, err)

	_, err = f.cases.AttachDocument(context.Background(), c.ID, f.user.ID, RegisterDocumentInput{
		FileName:   "brief.pdf",
		StorageRef: "refs/brief.pdf",
	})
	assert.ErrorIs(t, err, ErrNotVerified)

	var docCount int64
	f.db.Model(&model.DocumentRecord{}).Count(&docCount)
	assert.Zero(t, docCount)

	var entries []model.AuditEntry
	f.db.Find(&entries)
	require.Len(t, entries, 1)
	assert.Equal(t, model.ActionVerificationRejected, entries[0].Action)
}

func TestCaseService_GetCaseDocuments_ReconcilesMissingAudit(t *testing.T) {
	f := setupCaseServiceTest(t)
	c := f.seedCase(t, "2026-CV-0006")

	// Simulate a crash between the registry commit and the audit commit:
	// the document row exists but its attachment entry does not
	doc := &model.DocumentRecord{
		CaseID:     c.ID,
		FileName:   "exhibit-a.pdf",
		StorageRef: "refs/exhibit-a.pdf",
		Size:       512,
		Backend:    model.StorageBackendLocal,
		UploadedBy: f.user.ID,
		UploadedAt: time.Now(),
	}
	require.NoError(t, f.db.Create(doc).Error)

	var before int64
	f.db.Model(&model.AuditEntry{}).Where("action = ?", model.ActionDocumentAttached).Count(&before)
	require.Zero(t, before)

	documents, err := f.cases.GetCaseDocuments(context.Background(), c.ID)
	require.NoError(t, err)
	require.Len(t, documents, 1)

	// The read re-derived the missing entry
	var entry model.AuditEntry
	require.NoError(t, f.db.Where("action = ?", model.ActionDocumentAttached).First(&entry).Error)
	assert.Equal(t, f.user.ID, entry.ActorID)

	// A second read does not duplicate it
	_, err = f.cases.GetCaseDocuments(context.Background(), c.ID)
	require.NoError(t, err)

	var after int64
	f.db.Model(&model.AuditEntry{}).Where("action = ?", model.ActionDocumentAttached).Count(&after)
	assert.Equal(t, int64(1), after)
}

func TestCaseService_CloseCase(t *testing.T) {
	f := setupCaseServiceTest(t)
	c := f.seedCase(t, "2026-CV-0007")

	closed, err := f.cases.CloseCase(c.ID, f.user.ID)
	require.NoError(t, err)
	assert.Equal(t, model.CaseStatusClosed, closed.Status)

	// Closing again is a no-op
	again, err := f.cases.CloseCase(c.ID, f.user.ID)
	require.NoError(t, err)
	assert.Equal(t, model.CaseStatusClosed, again.Status)
}

func TestCaseService_CanActOnCase(t *testing.T) {
	f := setupCaseServiceTest(t)

	allowed, err := f.cases.CanActOnCase(f.user.ID)
	require.NoError(t, err)
	assert.False(t, allowed)

	f.approveUser(t, f.user.ID)

	allowed, err = f.cases.CanActOnCase(f.user.ID)
	require.NoError(t, err)
	assert.True(t, allowed)
}
