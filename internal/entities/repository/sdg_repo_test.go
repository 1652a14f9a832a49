package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/climate-finance-tracker/cft-backend/internal/entities/domain"
)

var sdgCols = []string{"sdg_id", "sdg_number", "title", "created_at", "updated_at"}

func TestSDGRepository(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewSDGRepository(db)
	ctx := context.Background()
	now := time.Now()

	t.Run("find or create ignores case", func(t *testing.T) {
		mock.ExpectQuery(`WHERE LOWER\(title\) = LOWER\(\$1\)`).
			WithArgs("Climate Action").
			WillReturnRows(sqlmock.NewRows(sdgCols))
		mock.ExpectQuery(`INSERT INTO sdg_alignments`).
			WithArgs(sqlmock.AnyArg(), 13, "Climate Action").
			WillReturnRows(sqlmock.NewRows(sdgCols).AddRow("s13", 13, "Climate Action", now, now))
		mock.ExpectQuery(`WHERE LOWER\(title\) = LOWER\(\$1\)`).
			WithArgs("climate action").
			WillReturnRows(sqlmock.NewRows(sdgCols).AddRow("s13", 13, "Climate Action", now, now))

		a, created, err := repo.FindOrCreate(ctx, 13, "Climate Action")
		require.NoError(t, err)
		assert.True(t, created)
		b, created, err := repo.FindOrCreate(ctx, 13, "climate action")
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, a.ID, b.ID)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("update of unknown id is not found", func(t *testing.T) {
		mock.ExpectQuery(`UPDATE sdg_alignments`).
			WithArgs("x", 6, "Clean Water").
			WillReturnRows(sqlmock.NewRows(sdgCols))

		_, err := repo.Update(ctx, "x", 6, "Clean Water")
		assert.ErrorIs(t, err, domain.ErrNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("delete clears project links", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM project_sdgs WHERE sdg_id = \$1`).
			WithArgs("s13").
			WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectExec(`DELETE FROM sdg_alignments WHERE sdg_id = \$1`).
			WithArgs("s13").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		require.NoError(t, repo.Delete(ctx, "s13"))
		require.NoError(t, mock.ExpectationsWereMet())
	})
}
