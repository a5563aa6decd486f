package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/aduana/backend/internal/domain/clearance"
	"github.com/aduana/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newMockAttachmentRepository(t *testing.T) (*GormDocumentAttachmentRepository, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormDocumentAttachmentRepository(gormDB), mock, mockDB
}

func attachmentRows(attachmentID, documentID uuid.UUID, status string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "created_at", "updated_at", "version",
		"document_id", "status", "file_name", "file_size", "content_type",
		"storage_key", "uploaded_by",
	}).AddRow(
		attachmentID, time.Now(), time.Now(), 1,
		documentID, status, "pedimento-scan.pdf", int64(204800), "application/pdf",
		"clearance/"+documentID.String()+"/pedimento-scan.pdf", nil,
	)
}

func TestGormDocumentAttachmentRepository_FindByID(t *testing.T) {
	t.Run("finds attachment", func(t *testing.T) {
		repo, mock, mockDB := newMockAttachmentRepository(t)
		defer mockDB.Close()

		attachmentID := uuid.New()
		documentID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "clearance_document_attachments" WHERE id = \$1`).
			WithArgs(attachmentID, 1).
			WillReturnRows(attachmentRows(attachmentID, documentID, "ACTIVE"))

		attachment, err := repo.FindByID(context.Background(), attachmentID)

		assert.NoError(t, err)
		assert.NotNil(t, attachment)
		assert.Equal(t, attachmentID, attachment.ID)
		assert.Equal(t, documentID, attachment.DocumentID)
		assert.True(t, attachment.IsActive())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns ErrNotFound for unknown attachment", func(t *testing.T) {
		repo, mock, mockDB := newMockAttachmentRepository(t)
		defer mockDB.Close()

		attachmentID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "clearance_document_attachments" WHERE id = \$1`).
			WithArgs(attachmentID, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		attachment, err := repo.FindByID(context.Background(), attachmentID)

		assert.Error(t, err)
		assert.Nil(t, attachment)
		assert.Equal(t, shared.ErrNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormDocumentAttachmentRepository_FindActiveByDocument(t *testing.T) {
	t.Run("returns only confirmed attachments", func(t *testing.T) {
		repo, mock, mockDB := newMockAttachmentRepository(t)
		defer mockDB.Close()

		documentID := uuid.New()
		attachmentID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "clearance_document_attachments" WHERE document_id = \$1 AND status = \$2 ORDER BY created_at DESC`).
			WithArgs(documentID, "ACTIVE").
			WillReturnRows(attachmentRows(attachmentID, documentID, "ACTIVE"))

		attachments, err := repo.FindActiveByDocument(context.Background(), documentID)

		assert.NoError(t, err)
		assert.Len(t, attachments, 1)
		assert.Equal(t, clearance.AttachmentStatusActive, attachments[0].Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormDocumentAttachmentRepository_CountActiveByDocument(t *testing.T) {
	t.Run("counts confirmed attachments", func(t *testing.T) {
		repo, mock, mockDB := newMockAttachmentRepository(t)
		defer mockDB.Close()

		documentID := uuid.New()

		mock.ExpectQuery(`SELECT count\(\*\) FROM "clearance_document_attachments" WHERE document_id = \$1 AND status = \$2`).
			WithArgs(documentID, "ACTIVE").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

		count, err := repo.CountActiveByDocument(context.Background(), documentID)

		assert.NoError(t, err)
		assert.Equal(t, int64(3), count)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormDocumentAttachmentRepository_Delete(t *testing.T) {
	t.Run("deletes existing attachment", func(t *testing.T) {
		repo, mock, mockDB := newMockAttachmentRepository(t)
		defer mockDB.Close()

		attachmentID := uuid.New()

		mock.ExpectExec(`DELETE FROM "clearance_document_attachments" WHERE id = \$1`).
			WithArgs(attachmentID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Delete(context.Background(), attachmentID)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns ErrNotFound for missing attachment", func(t *testing.T) {
		repo, mock, mockDB := newMockAttachmentRepository(t)
		defer mockDB.Close()

		attachmentID := uuid.New()

		mock.ExpectExec(`DELETE FROM "clearance_document_attachments" WHERE id = \$1`).
			WithArgs(attachmentID).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Delete(context.Background(), attachmentID)

		assert.Error(t, err)
		assert.Equal(t, shared.ErrNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormDocumentAttachmentRepository_InterfaceCompliance(t *testing.T) {
	t.Run("implements clearance.DocumentAttachmentRepository", func(t *testing.T) {
		repo, _, mockDB := newMockAttachmentRepository(t)
		defer mockDB.Close()

		var _ clearance.DocumentAttachmentRepository = repo
	})
}
