package service

import (
	"context"
	"testing"

	"github.com/lexcase/lexcase-backend/internal/app/model"
	"github.com/lexcase/lexcase-backend/internal/app/repository"
	"github.com/lexcase/lexcase-backend/internal/db"
	"github.com/lexcase/lexcase-backend/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupDocumentServiceTest(t *testing.T) (DocumentService, *gorm.DB, *model.Case) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	localStorage, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	registry := storage.NewRegistry(model.StorageBackendLocal, localStorage)

	documentRepo := repository.NewDocumentRepository(testDB)
	documentService := NewDocumentService(documentRepo, registry)

	user := &model.User{
		Email:        "uploader@example.com",
		PasswordHash: "hash",
		Name:         "Uploader",
		Role:         model.RoleUser,
	}
	testDB.Create(user)

	c := &model.Case{
		CaseNumber: "2026-CV-0100",
		Title:      "Test Case",
		Status:     model.CaseStatusOpen,
		CreatedBy:  user.ID,
	}
	testDB.Create(c)

	return documentService, testDB, c
}

func TestDocumentService_Register_WithExistingRef(t *testing.T) {
	svc, _, c := setupDocumentServiceTest(t)

	record, created, err := svc.Register(context.Background(), RegisterDocumentInput{
		CaseID:      c.ID,
		UploaderID:  c.CreatedBy,
		FileName:    "contract.pdf",
		ContentType: "application/pdf",
		Size:        4096,
		StorageRef:  "refs/contract.pdf",
	})
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotZero(t, record.ID)
	assert.Equal(t, model.StorageBackendLocal, record.Backend)
	assert.False(t, record.UploadedAt.IsZero())
}

func TestDocumentService_Register_StoresBytesWhenNoRef(t *testing.T) {
	svc, _, c := setupDocumentServiceTest(t)

	data := []byte("dummy pdf content")
	record, created, err := svc.Register(context.Background(), RegisterDocumentInput{
		CaseID:      c.ID,
		UploaderID:  c.CreatedBy,
		FileName:    "inline.pdf",
		ContentType: "application/pdf",
		Size:        int64(len(data)),
		Data:        data,
	})
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEmpty(t, record.StorageRef)

	// Bytes round-trip through the backend
	fetched, body, err := svc.Download(context.Background(), record.ID)
	require.NoError(t, err)
	assert.Equal(t, record.ID, fetched.ID)
	assert.Equal(t, data, body)
}

func TestDocumentService_Register_IdempotentOnCaseAndRef(t *testing.T) {
	svc, testDB, c := setupDocumentServiceTest(t)

	in := RegisterDocumentInput{
		CaseID:     c.ID,
		UploaderID: c.CreatedBy,
		FileName:   "contract.pdf",
		Size:       4096,
		StorageRef: "refs/contract.pdf",
	}

	first, created, err := svc.Register(context.Background(), in)
	require.NoError(t, err)
	assert.True(t, created)

	second, created, err := svc.Register(context.Background(), in)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)

	var count int64
	testDB.Model(&model.DocumentRecord{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestDocumentService_Register_SameRefDifferentCase(t *testing.T) {
	svc, testDB, c := setupDocumentServiceTest(t)

	other := &model.Case{
		CaseNumber: "2026-CV-0101",
		Title:      "Other Case",
		Status:     model.CaseStatusOpen,
		CreatedBy:  c.CreatedBy,
	}
	testDB.Create(other)

	_, created, err := svc.Register(context.Background(), RegisterDocumentInput{
		CaseID:     c.ID,
		UploaderID: c.CreatedBy,
		FileName:   "contract.pdf",
		StorageRef: "refs/contract.pdf",
	})
	require.NoError(t, err)
	assert.True(t, created)

	// The key is (case, ref), not the ref alone
	_, created, err = svc.Register(context.Background(), RegisterDocumentInput{
		CaseID:     other.ID,
		UploaderID: c.CreatedBy,
		FileName:   "contract.pdf",
		StorageRef: "refs/contract.pdf",
	})
	require.NoError(t, err)
	assert.True(t, created)
}

func TestDocumentService_Register_InvalidMetadata(t *testing.T) {
	svc, _, c := setupDocumentServiceTest(t)

	cases := []RegisterDocumentInput{
		{CaseID: c.ID, UploaderID: c.CreatedBy, FileName: "", StorageRef: "refs/x"},
		{CaseID: c.ID, UploaderID: c.CreatedBy, FileName: "   ", StorageRef: "refs/x"},
		{CaseID: c.ID, UploaderID: c.CreatedBy, FileName: "x.pdf", Size: -1, StorageRef: "refs/x"},
		{CaseID: 0, UploaderID: c.CreatedBy, FileName: "x.pdf", StorageRef: "refs/x"},
		{CaseID: c.ID, UploaderID: 0, FileName: "x.pdf", StorageRef: "refs/x"},
	}
	for _, in := range cases {
		_, _, err := svc.Register(context.Background(), in)
		assert.ErrorIs(t, err, ErrInvalidDocumentMeta)
	}
}

func TestDocumentService_Register_UnsupportedBackend(t *testing.T) {
	svc, _, c := setupDocumentServiceTest(t)

	_, _, err := svc.Register(context.Background(), RegisterDocumentInput{
		CaseID:     c.ID,
		UploaderID: c.CreatedBy,
		FileName:   "contract.pdf",
		Backend:    "tape-archive",
		StorageRef: "refs/contract.pdf",
	})
	assert.ErrorIs(t, err, ErrUnsupportedBackend)
}

func TestDocumentService_ListByCase_OrderedByUpload(t *testing.T) {
	svc, _, c := setupDocumentServiceTest(t)

	for _, name := range []string{"first.pdf", "second.pdf"} {
		_, _, err := svc.Register(context.Background(), RegisterDocumentInput{
			CaseID:     c.ID,
			UploaderID: c.CreatedBy,
			FileName:   name,
			StorageRef: "refs/" + name,
		})
		require.NoError(t, err)
	}

	documents, err := svc.ListByCase(c.ID)
	require.NoError(t, err)
	require.Len(t, documents, 2)
	assert.Equal(t, "first.pdf", documents[0].FileName)
	assert.Equal(t, "second.pdf", documents[1].FileName)
}

func TestDocumentService_GetByID_NotFound(t *testing.T) {
	svc, _, _ := setupDocumentServiceTest(t)

	_, err := svc.GetByID(9999)
	assert.ErrorIs(t, err, ErrDocumentNotFound)
}
