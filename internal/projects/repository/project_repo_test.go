package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/climate-finance-tracker/cft-backend/internal/projects/domain"
)

func floodInput() *domain.Input {
	return &domain.Input{
		Fields: domain.Fields{Title: "Flood Resilience", Status: "Active", ApprovalFY: "2024"},
		Relations: domain.RelationIDs{
			AgencyIDs:        []string{"a1"},
			FundingSourceIDs: []string{"f1"},
			SDGIDs:           []string{},
		},
	}
}

func TestProjectRepository_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("inserts project, wash and one join row per id", func(t *testing.T) {
		db, mock := setupMock(t)
		repo := NewProjectRepository(db)

		in := floodInput()
		in.Wash = &domain.WashComponent{Presence: true, WashPercentage: 30}

		mock.ExpectBegin()
		mock.ExpectExec(`INSERT INTO projects \(project_id, title, type`).
			WithArgs(anyArgs(1 + len(scalarColumns))...).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`INSERT INTO wash_components`).
			WithArgs(sqlmock.AnyArg(), true, 30.0, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`INSERT INTO project_agencies`).
			WithArgs(sqlmock.AnyArg(), "a1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`INSERT INTO project_funding_sources`).
			WithArgs(sqlmock.AnyArg(), "f1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		id, err := repo.Create(ctx, in)
		require.NoError(t, err)
		assert.NotEmpty(t, id)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("skips wash row when presence is false", func(t *testing.T) {
		db, mock := setupMock(t)
		repo := NewProjectRepository(db)

		in := floodInput()
		in.Wash = &domain.WashComponent{Presence: false}
		in.Relations = domain.RelationIDs{}

		mock.ExpectBegin()
		mock.ExpectExec(`INSERT INTO projects`).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		_, err := repo.Create(ctx, in)
		require.NoError(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing required field rolls back", func(t *testing.T) {
		db, mock := setupMock(t)
		repo := NewProjectRepository(db)

		in := floodInput()
		in.ApprovalFY = ""

		mock.ExpectBegin()
		mock.ExpectRollback()

		_, err := repo.Create(ctx, in)
		assert.ErrorIs(t, err, domain.ErrMissingField)
		assert.Contains(t, err.Error(), "approval_fy")
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("relation failure rolls back the whole project", func(t *testing.T) {
		db, mock := setupMock(t)
		repo := NewProjectRepository(db)

		mock.ExpectBegin()
		mock.ExpectExec(`INSERT INTO projects`).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`INSERT INTO project_agencies`).
			WillReturnError(errors.New("connection reset"))
		mock.ExpectRollback()

		_, err := repo.Create(ctx, floodInput())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "connection reset")
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestProjectRepository_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("replaces every relation kind with the submitted ids", func(t *testing.T) {
		db, mock := setupMock(t)
		repo := NewProjectRepository(db)

		in := floodInput()
		in.Relations = domain.RelationIDs{AgencyIDs: []string{"B", "C"}}
		in.Wash = &domain.WashComponent{Presence: true, WashPercentage: 10, Description: "Latrines"}

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE projects\s+SET title = \$2`).
			WithArgs(anyArgs(1 + len(scalarColumns))...).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`INSERT INTO wash_components .* ON CONFLICT \(project_id\) DO UPDATE`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		for _, rel := range relations {
			mock.ExpectExec(`DELETE FROM ` + rel.joinTable + ` WHERE project_id = \$1`).
				WithArgs("p1").
				WillReturnResult(sqlmock.NewResult(0, 2))
		}
		mock.ExpectExec(`INSERT INTO project_agencies`).WithArgs("p1", "B").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`INSERT INTO project_agencies`).WithArgs("p1", "C").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		require.NoError(t, repo.Update(ctx, "p1", in))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("update without wash data clears the component", func(t *testing.T) {
		db, mock := setupMock(t)
		repo := NewProjectRepository(db)

		in := floodInput()
		in.Wash = nil

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE projects`).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`INSERT INTO wash_components .* ON CONFLICT \(project_id\) DO UPDATE`).
			WithArgs("p1", false, float64(0), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))
		for _, rel := range relations {
			mock.ExpectExec(`DELETE FROM ` + rel.joinTable).WithArgs("p1").WillReturnResult(sqlmock.NewResult(0, 0))
		}
		mock.ExpectExec(`INSERT INTO project_agencies`).WithArgs("p1", "a1").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`INSERT INTO project_funding_sources`).WithArgs("p1", "f1").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		require.NoError(t, repo.Update(ctx, "p1", in))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown id is not found and rolls back", func(t *testing.T) {
		db, mock := setupMock(t)
		repo := NewProjectRepository(db)

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE projects`).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err := repo.Update(ctx, "missing", floodInput())
		assert.ErrorIs(t, err, domain.ErrNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestProjectRepository_GetByID(t *testing.T) {
	ctx := context.Background()

	t.Run("joins relations and returns raw id lists", func(t *testing.T) {
		db, mock := setupMock(t)
		repo := NewProjectRepository(db)

		mock.ExpectQuery(`FROM projects p\s+LEFT JOIN wash_components w .* WHERE p.project_id = \$1`).
			WithArgs("p1").
			WillReturnRows(sqlmock.NewRows(projectCols()).AddRow(projectValues("p1", "Flood Resilience", "Active", true)...))
		for _, rel := range relations {
			rows := sqlmock.NewRows(relationCols(rel.idColumn))
			switch rel.joinTable {
			case "project_agencies":
				rows.AddRow("p1", "a1", "LGED")
			case "project_funding_sources":
				rows.AddRow("p1", "f1", "GCF")
			}
			mock.ExpectQuery(`FROM ` + rel.joinTable + ` j`).WithArgs("p1").WillReturnRows(rows)
		}

		p, err := repo.GetByID(ctx, "p1")
		require.NoError(t, err)
		assert.Equal(t, "Flood Resilience", p.Title)
		assert.Equal(t, "Active", p.Status)
		assert.Equal(t, []domain.Ref{{ID: "a1", Name: "LGED"}}, p.Agencies)
		assert.Equal(t, []string{"a1"}, p.AgencyIDs)
		assert.Equal(t, []string{"f1"}, p.FundingSourceIDs)
		assert.Empty(t, p.SDGs)
		assert.NotNil(t, p.SDGs)
		require.NotNil(t, p.Wash)
		assert.Equal(t, 25.0, p.Wash.WashPercentage)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing id", func(t *testing.T) {
		db, mock := setupMock(t)
		repo := NewProjectRepository(db)

		mock.ExpectQuery(`FROM projects p`).WithArgs("nope").WillReturnRows(sqlmock.NewRows(projectCols()))

		_, err := repo.GetByID(ctx, "nope")
		assert.ErrorIs(t, err, domain.ErrNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestProjectRepository_GetAll(t *testing.T) {
	db, mock := setupMock(t)
	repo := NewProjectRepository(db)

	mock.ExpectQuery(`FROM projects p\s+LEFT JOIN wash_components w .* ORDER BY p.created_at DESC`).
		WillReturnRows(sqlmock.NewRows(projectCols()).
			AddRow(projectValues("p2", "Solar Irrigation", "Completed", false)...).
			AddRow(projectValues("p1", "Flood Resilience", "Active", true)...))
	for _, rel := range relations {
		rows := sqlmock.NewRows(relationCols(rel.idColumn))
		if rel.joinTable == "project_sdgs" {
			rows.AddRow("p1", "s13", "Climate Action").AddRow("p2", "s7", "Affordable and Clean Energy")
		}
		mock.ExpectQuery(`FROM ` + rel.joinTable + ` j`).WillReturnRows(rows)
	}

	items, err := repo.GetAll(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "p2", items[0].ID)
	assert.Nil(t, items[0].Wash)
	assert.Equal(t, []domain.Ref{{ID: "s7", Name: "Affordable and Clean Energy"}}, items[0].SDGs)
	assert.Equal(t, []domain.Ref{{ID: "s13", Name: "Climate Action"}}, items[1].SDGs)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProjectRepository_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("cascades over join tables and wash row", func(t *testing.T) {
		db, mock := setupMock(t)
		repo := NewProjectRepository(db)

		mock.ExpectBegin()
		for _, rel := range relations {
			mock.ExpectExec(`DELETE FROM ` + rel.joinTable).WithArgs("p1").WillReturnResult(sqlmock.NewResult(0, 1))
		}
		mock.ExpectExec(`DELETE FROM wash_components`).WithArgs("p1").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`DELETE FROM projects WHERE`).WithArgs("p1").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		require.NoError(t, repo.Delete(ctx, "p1"))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing project rolls back", func(t *testing.T) {
		db, mock := setupMock(t)
		repo := NewProjectRepository(db)

		mock.ExpectBegin()
		for _, rel := range relations {
			mock.ExpectExec(`DELETE FROM ` + rel.joinTable).WillReturnResult(sqlmock.NewResult(0, 0))
		}
		mock.ExpectExec(`DELETE FROM wash_components`).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(`DELETE FROM projects WHERE`).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		assert.ErrorIs(t, repo.Delete(ctx, "gone"), domain.ErrNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}
