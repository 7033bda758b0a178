package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-teachers-api/internal/models"
)

var teacherRowColumns = []string{
	"id", "uuid", "is_active", "created_at", "updated_at",
	"user_id", "firstname", "lastname", "username", "afm", "father_name", "father_lastname", "mother_name", "mother_lastname", "date_of_birth", "gender", "role", "user_is_active",
	"pi_id", "amka", "identity_number", "place_of_birth", "municipality_of_registration",
	"attachment_id", "filename", "saved_name", "file_path", "content_type", "extension",
}

func newTeacherRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func addTeacherRow(rows *sqlmock.Rows, id int64, uuid, afm string, withFile bool) *sqlmock.Rows {
	now := time.Now()
	dob := time.Date(1985, 3, 14, 0, 0, 0, 0, time.UTC)
	var attID, filename, saved, path, ctype, ext interface{}
	if withFile {
		attID, filename, saved, path, ctype, ext = int64(9), "amka.pdf", "f0e1.pdf", "uploads/f0e1.pdf", "application/pdf", ".pdf"
	}
	return rows.AddRow(
		id, uuid, true, now, now,
		id+100, "Maria", "Papadopoulou", "maria"+afm, afm, "Nikos", "Papadopoulos", "Eleni", "Georgiou", dob, "FEMALE", "TEACHER", true,
		id+200, "12345678901", "AB123456", "Athens", "Athens",
		attID, filename, saved, path, ctype, ext,
	)
}

func TestTeacherRepositoryFindAllWithoutCriteria(t *testing.T) {
	db, mock, cleanup := newTeacherRepoMock(t)
	defer cleanup()
	repo := NewTeacherRepository(db, nil)

	rows := sqlmock.NewRows(teacherRowColumns)
	addTeacherRow(rows, 1, "uuid-1", "123456789", true)
	addTeacherRow(rows, 2, "uuid-2", "987654321", false)
	mock.ExpectQuery("^" + regexp.QuoteMeta(teacherSelect+teacherFrom) + "$").WillReturnRows(rows)

	list, err := repo.FindAll(context.Background(), AllOf(TeacherIsActive(nil)))
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.NotNil(t, list[0].PersonalInfo.AmkaFile)
	assert.Equal(t, "f0e1.pdf", list[0].PersonalInfo.AmkaFile.SavedName)
	assert.Equal(t, int64(101), list[0].User.ID)
	assert.Equal(t, models.RoleTeacher, list[0].User.Role)
	assert.Nil(t, list[1].PersonalInfo.AmkaFile)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeacherRepositoryFindPage(t *testing.T) {
	db, mock, cleanup := newTeacherRepoMock(t)
	defer cleanup()
	repo := NewTeacherRepository(db, nil)

	rows := sqlmock.NewRows(teacherRowColumns)
	addTeacherRow(rows, 6, "uuid-6", "123456789", false)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE u.afm = $1 ORDER BY u.lastname DESC, t.id ASC LIMIT $2 OFFSET $3")).
		WithArgs("123456789", 5, 5).
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*)" + teacherFrom + " WHERE u.afm = $1")).
		WithArgs("123456789").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(6))

	list, total, err := repo.FindPage(context.Background(), AllOf(TeacherUserAfmIs("123456789")), models.Pageable{
		Page: 1, Size: 5, SortBy: "lastname", SortDirection: models.SortDesc,
	})
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, int64(6), total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeacherRepositoryFindPageSortByIDHasNoTieBreaker(t *testing.T) {
	db, mock, cleanup := newTeacherRepoMock(t)
	defer cleanup()
	repo := NewTeacherRepository(db, nil)

	mock.ExpectQuery(regexp.QuoteMeta(teacherFrom+" ORDER BY t.id ASC LIMIT $1 OFFSET $2")).
		WithArgs(5, 0).
		WillReturnRows(sqlmock.NewRows(teacherRowColumns))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*)" + teacherFrom)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	list, total, err := repo.FindPage(context.Background(), AllOf(), models.Pageable{Size: 5, SortBy: "id", SortDirection: models.SortAsc})
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Zero(t, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeacherRepositoryFindPageSaturatesOffset(t *testing.T) {
	db, mock, cleanup := newTeacherRepoMock(t)
	defer cleanup()
	repo := NewTeacherRepository(db, nil)

	mock.ExpectQuery(regexp.QuoteMeta(teacherFrom+" ORDER BY t.id ASC LIMIT $1 OFFSET $2")).
		WithArgs(2, math.MaxInt).
		WillReturnRows(sqlmock.NewRows(teacherRowColumns))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*)" + teacherFrom)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

	list, total, err := repo.FindPage(context.Background(), AllOf(), models.Pageable{
		Page: math.MaxInt/2 + 1, Size: 2, SortBy: "id", SortDirection: models.SortAsc,
	})
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Equal(t, int64(4), total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeacherRepositoryFindPageRejectsUnknownSort(t *testing.T) {
	db, mock, cleanup := newTeacherRepoMock(t)
	defer cleanup()
	repo := NewTeacherRepository(db, nil)

	_, _, err := repo.FindPage(context.Background(), AllOf(), models.Pageable{Size: 5, SortBy: "password", SortDirection: models.SortAsc})
	assert.ErrorIs(t, err, ErrInvalidSort)
	_, _, err = repo.FindPage(context.Background(), AllOf(), models.Pageable{Size: 5, SortBy: "id", SortDirection: "SIDEWAYS"})
	assert.ErrorIs(t, err, ErrInvalidSort)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeacherRepositoryFindByUUIDNotFound(t *testing.T) {
	db, mock, cleanup := newTeacherRepoMock(t)
	defer cleanup()
	repo := NewTeacherRepository(db, nil)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE t.uuid = $1")).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(teacherRowColumns))

	_, err := repo.FindByUUID(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeacherRepositorySaveWithinTx(t *testing.T) {
	db, mock, cleanup := newTeacherRepoMock(t)
	defer cleanup()
	repo := NewTeacherRepository(db, nil)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM users WHERE afm = $1 LIMIT 1")).
		WithArgs("123456789").
		WillReturnRows(sqlmock.NewRows([]string{"1"}))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM users WHERE username = $1 LIMIT 1")).
		WithArgs("maria").
		WillReturnRows(sqlmock.NewRows([]string{"1"}))
	mock.ExpectQuery("INSERT INTO users").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
	mock.ExpectQuery("INSERT INTO attachments").
		WithArgs("amka.pdf", "f0e1.pdf", "uploads/f0e1.pdf", "application/pdf", ".pdf").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))
	mock.ExpectQuery("INSERT INTO personal_information").
		WithArgs("12345678901", "AB123456", "Athens", "Athens", int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(4))
	mock.ExpectQuery("INSERT INTO teachers").
		WithArgs(sqlmock.AnyArg(), true, int64(7), int64(4), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))
	mock.ExpectCommit()

	teacher := &models.Teacher{
		IsActive: true,
		User:     models.User{Username: "maria", Afm: "123456789", Role: models.RoleTeacher, IsActive: true},
		PersonalInfo: models.PersonalInfo{
			Amka: "12345678901", IdentityNumber: "AB123456", PlaceOfBirth: "Athens", MunicipalityOfRegistration: "Athens",
			AmkaFile: &models.Attachment{Filename: "amka.pdf", SavedName: "f0e1.pdf", FilePath: "uploads/f0e1.pdf", ContentType: "application/pdf", Extension: ".pdf"},
		},
	}
	err := repo.WithinTx(context.Background(), func(tx TeacherTx) error {
		exists, err := tx.ExistsUserByAfm(context.Background(), "123456789")
		if err != nil || exists {
			return fmt.Errorf("afm check: %v %v", exists, err)
		}
		exists, err = tx.ExistsUserByUsername(context.Background(), "maria")
		if err != nil || exists {
			return fmt.Errorf("username check: %v %v", exists, err)
		}
		return tx.Save(context.Background(), teacher)
	})
	require.NoError(t, err)
	assert.Equal(t, int64(11), teacher.ID)
	assert.Equal(t, int64(7), teacher.UserID)
	assert.Equal(t, int64(4), teacher.PersonalInfo.ID)
	assert.Equal(t, int64(3), teacher.PersonalInfo.AmkaFile.ID)
	assert.NotEmpty(t, teacher.UUID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeacherRepositorySaveWithoutAttachment(t *testing.T) {
	db, mock, cleanup := newTeacherRepoMock(t)
	defer cleanup()
	repo := NewTeacherRepository(db, nil)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO users").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectQuery("INSERT INTO personal_information").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), nil).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(2))
	mock.ExpectQuery("INSERT INTO teachers").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))
	mock.ExpectCommit()

	err := repo.WithinTx(context.Background(), func(tx TeacherTx) error {
		return tx.Save(context.Background(), &models.Teacher{})
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeacherRepositoryWithinTxRollsBackOnError(t *testing.T) {
	db, mock, cleanup := newTeacherRepoMock(t)
	defer cleanup()
	repo := NewTeacherRepository(db, nil)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO users").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "users_afm_key"})
	mock.ExpectRollback()

	err := repo.WithinTx(context.Background(), func(tx TeacherTx) error {
		return tx.Save(context.Background(), &models.Teacher{})
	})
	require.Error(t, err)
	assert.True(t, IsUniqueViolation(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, IsUniqueViolation(fmt.Errorf("wrapped: %w", &pq.Error{Code: "23505"})))
	assert.False(t, IsUniqueViolation(&pq.Error{Code: "23503"}))
	assert.False(t, IsUniqueViolation(errors.New("boom")))
}

func TestUserRepositoryFindByUsername(t *testing.T) {
	db, mock, cleanup := newTeacherRepoMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE username = $1 LIMIT 1")).
		WithArgs("maria").
		WillReturnRows(sqlmock.NewRows([]string{"id", "firstname", "lastname", "username", "password", "afm", "father_name", "father_lastname", "mother_name", "mother_lastname", "date_of_birth", "gender", "role", "is_active", "created_at", "updated_at"}).
			AddRow(1, "Maria", "Papadopoulou", "maria", "hash", "123456789", "N", "P", "E", "G", now, "FEMALE", "TEACHER", true, now, now))

	user, err := repo.FindByUsername(context.Background(), "maria")
	require.NoError(t, err)
	assert.Equal(t, "hash", user.PasswordHash)
	assert.Equal(t, models.RoleTeacher, user.Role)

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE username = $1 LIMIT 1")).
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)
	_, err = repo.FindByUsername(context.Background(), "ghost")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryCreateAuditLog(t *testing.T) {
	db, mock, cleanup := newTeacherRepoMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	username := "maria"
	mock.ExpectQuery("INSERT INTO audit_logs").
		WithArgs(&username, models.AuditActionLogin, "auth", nil, sqlmock.AnyArg(), "127.0.0.1", "test", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5))

	log := &models.AuditLog{Username: &username, Action: models.AuditActionLogin, Resource: "auth", IPAddress: "127.0.0.1", UserAgent: "test"}
	require.NoError(t, repo.CreateAuditLog(context.Background(), log))
	assert.Equal(t, int64(5), log.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
