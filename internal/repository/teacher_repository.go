package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/school-teachers-api/internal/models"
)

// ErrInvalidSort is returned when a page is requested with a non-sortable field or bad direction.
var ErrInvalidSort = errors.New("invalid sort")

const (
	teacherSelect = "SELECT t.id, t.uuid, t.is_active, t.created_at, t.updated_at, " +
		"u.id AS user_id, u.firstname, u.lastname, u.username, u.afm, u.father_name, u.father_lastname, u.mother_name, u.mother_lastname, u.date_of_birth, u.gender, u.role, u.is_active AS user_is_active, " +
		"pi.id AS pi_id, pi.amka, pi.identity_number, pi.place_of_birth, pi.municipality_of_registration, " +
		"a.id AS attachment_id, a.filename, a.saved_name, a.file_path, a.content_type, a.extension"
	teacherFrom = " FROM teachers t JOIN users u ON u.id = t.user_id JOIN personal_information pi ON pi.id = t.personal_info_id LEFT JOIN attachments a ON a.id = pi.amka_file_id"
)

var teacherSortColumns = map[string]string{
	"id":        "t.id",
	"uuid":      "t.uuid",
	"isActive":  "t.is_active",
	"createdAt": "t.created_at",
	"updatedAt": "t.updated_at",
	"firstname": "u.firstname",
	"lastname":  "u.lastname",
	"username":  "u.username",
	"afm":       "u.afm",
	"amka":      "pi.amka",
}

// TeacherSortable reports whether field can be used to order teacher pages.
func TeacherSortable(field string) bool {
	_, ok := teacherSortColumns[field]
	return ok
}

type teacherRow struct {
	ID                         int64          `db:"id"`
	UUID                       string         `db:"uuid"`
	IsActive                   bool           `db:"is_active"`
	CreatedAt                  time.Time      `db:"created_at"`
	UpdatedAt                  time.Time      `db:"updated_at"`
	UserID                     int64          `db:"user_id"`
	Firstname                  string         `db:"firstname"`
	Lastname                   string         `db:"lastname"`
	Username                   string         `db:"username"`
	Afm                        string         `db:"afm"`
	FatherName                 string         `db:"father_name"`
	FatherLastname             string         `db:"father_lastname"`
	MotherName                 string         `db:"mother_name"`
	MotherLastname             string         `db:"mother_lastname"`
	DateOfBirth                time.Time      `db:"date_of_birth"`
	Gender                     string         `db:"gender"`
	Role                       string         `db:"role"`
	UserIsActive               bool           `db:"user_is_active"`
	PersonalInfoID             int64          `db:"pi_id"`
	Amka                       string         `db:"amka"`
	IdentityNumber             string         `db:"identity_number"`
	PlaceOfBirth               string         `db:"place_of_birth"`
	MunicipalityOfRegistration string         `db:"municipality_of_registration"`
	AttachmentID               sql.NullInt64  `db:"attachment_id"`
	Filename                   sql.NullString `db:"filename"`
	SavedName                  sql.NullString `db:"saved_name"`
	FilePath                   sql.NullString `db:"file_path"`
	ContentType                sql.NullString `db:"content_type"`
	Extension                  sql.NullString `db:"extension"`
}

func (row teacherRow) toModel() models.Teacher {
	teacher := models.Teacher{
		ID:        row.ID,
		UUID:      row.UUID,
		IsActive:  row.IsActive,
		UserID:    row.UserID,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
		User: models.User{
			ID:             row.UserID,
			Firstname:      row.Firstname,
			Lastname:       row.Lastname,
			Username:       row.Username,
			Afm:            row.Afm,
			FatherName:     row.FatherName,
			FatherLastname: row.FatherLastname,
			MotherName:     row.MotherName,
			MotherLastname: row.MotherLastname,
			DateOfBirth:    row.DateOfBirth,
			Gender:         models.Gender(row.Gender),
			Role:           models.UserRole(row.Role),
			IsActive:       row.UserIsActive,
		},
		PersonalInfo: models.PersonalInfo{
			ID:                         row.PersonalInfoID,
			Amka:                       row.Amka,
			IdentityNumber:             row.IdentityNumber,
			PlaceOfBirth:               row.PlaceOfBirth,
			MunicipalityOfRegistration: row.MunicipalityOfRegistration,
		},
	}
	if row.AttachmentID.Valid {
		teacher.PersonalInfo.AmkaFile = &models.Attachment{
			ID:          row.AttachmentID.Int64,
			Filename:    row.Filename.String,
			SavedName:   row.SavedName.String,
			FilePath:    row.FilePath.String,
			ContentType: row.ContentType.String,
			Extension:   row.Extension.String,
		}
	}
	return teacher
}

func toTeachers(rows []teacherRow) []models.Teacher {
	teachers := make([]models.Teacher, 0, len(rows))
	for _, row := range rows {
		teachers = append(teachers, row.toModel())
	}
	return teachers
}

// TeacherTx is the unit of work handed to WithinTx callbacks.
type TeacherTx interface {
	ExistsUserByAfm(ctx context.Context, afm string) (bool, error)
	ExistsUserByUsername(ctx context.Context, username string) (bool, error)
	Save(ctx context.Context, teacher *models.Teacher) error
}

// TeacherRepository manages persistence for the teacher graph.
type TeacherRepository struct {
	db    *sqlx.DB
	users *UserRepository
}

// NewTeacherRepository constructs a TeacherRepository.
func NewTeacherRepository(db *sqlx.DB, users *UserRepository) *TeacherRepository {
	if users == nil {
		users = NewUserRepository(db)
	}
	return &TeacherRepository{db: db, users: users}
}

// FindAll returns every teacher matching spec in store order.
func (r *TeacherRepository) FindAll(ctx context.Context, spec TeacherSpecification) ([]models.Teacher, error) {
	binder := &argBinder{}
	query := teacherSelect + teacherFrom + renderWhere(spec, binder)
	var rows []teacherRow
	if err := r.db.SelectContext(ctx, &rows, query, binder.args...); err != nil {
		return nil, fmt.Errorf("list teachers: %w", err)
	}
	return toTeachers(rows), nil
}

// FindPage returns one page of teachers matching spec along with the total match count.
func (r *TeacherRepository) FindPage(ctx context.Context, spec TeacherSpecification, pageable models.Pageable) ([]models.Teacher, int64, error) {
	column, ok := teacherSortColumns[pageable.SortBy]
	if !ok {
		return nil, 0, fmt.Errorf("%w: field %q", ErrInvalidSort, pageable.SortBy)
	}
	direction := pageable.SortDirection
	if direction != models.SortAsc && direction != models.SortDesc {
		return nil, 0, fmt.Errorf("%w: direction %q", ErrInvalidSort, direction)
	}

	binder := &argBinder{}
	where := renderWhere(spec, binder)
	countArgs := append([]interface{}(nil), binder.args...)

	order := fmt.Sprintf(" ORDER BY %s %s", column, direction)
	if column != "t.id" {
		order += ", t.id ASC"
	}
	limit := binder.bind(pageable.Size)
	offset := binder.bind(pageable.Offset())
	query := teacherSelect + teacherFrom + where + order + " LIMIT " + limit + " OFFSET " + offset

	var rows []teacherRow
	if err := r.db.SelectContext(ctx, &rows, query, binder.args...); err != nil {
		return nil, 0, fmt.Errorf("list teachers page: %w", err)
	}

	var total int64
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*)"+teacherFrom+where, countArgs...); err != nil {
		return nil, 0, fmt.Errorf("count teachers: %w", err)
	}
	return toTeachers(rows), total, nil
}

// FindByUUID fetches a teacher by its external id. sql.ErrNoRows is returned unwrapped.
func (r *TeacherRepository) FindByUUID(ctx context.Context, id string) (*models.Teacher, error) {
	var row teacherRow
	if err := r.db.GetContext(ctx, &row, teacherSelect+teacherFrom+" WHERE t.uuid = $1", id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find teacher by uuid: %w", err)
	}
	teacher := row.toModel()
	return &teacher, nil
}

// WithinTx runs fn in a single transaction, committing only when fn returns nil.
func (r *TeacherRepository) WithinTx(ctx context.Context, fn func(tx TeacherTx) error) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin teacher transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(&teacherTx{tx: tx, repo: r}); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit teacher transaction: %w", err)
	}
	return nil
}

type teacherTx struct {
	tx   *sqlx.Tx
	repo *TeacherRepository
}

func (t *teacherTx) ExistsUserByAfm(ctx context.Context, afm string) (bool, error) {
	return t.repo.users.ExistsByAfm(ctx, t.tx, afm)
}

func (t *teacherTx) ExistsUserByUsername(ctx context.Context, username string) (bool, error) {
	return t.repo.users.ExistsByUsername(ctx, t.tx, username)
}

func (t *teacherTx) Save(ctx context.Context, teacher *models.Teacher) error {
	return t.repo.save(ctx, t.tx, teacher)
}

// save inserts users -> attachments -> personal_information -> teachers and assigns generated ids.
func (r *TeacherRepository) save(ctx context.Context, exec sqlx.ExtContext, teacher *models.Teacher) error {
	if teacher == nil {
		return fmt.Errorf("teacher payload is nil")
	}
	if teacher.UUID == "" {
		teacher.UUID = uuid.NewString()
	}
	now := time.Now().UTC()
	if teacher.CreatedAt.IsZero() {
		teacher.CreatedAt = now
	}
	teacher.UpdatedAt = now

	if err := r.users.Insert(ctx, exec, &teacher.User); err != nil {
		return err
	}
	teacher.UserID = teacher.User.ID

	info := &teacher.PersonalInfo
	var attachmentID *int64
	if file := info.AmkaFile; file != nil {
		const attachmentQuery = `INSERT INTO attachments (filename, saved_name, file_path, content_type, extension)
VALUES ($1, $2, $3, $4, $5) RETURNING id`
		if err := exec.QueryRowxContext(ctx, attachmentQuery, file.Filename, file.SavedName, file.FilePath, file.ContentType, file.Extension).Scan(&file.ID); err != nil {
			return fmt.Errorf("insert attachment: %w", err)
		}
		attachmentID = &file.ID
	}

	const infoQuery = `INSERT INTO personal_information (amka, identity_number, place_of_birth, municipality_of_registration, amka_file_id)
VALUES ($1, $2, $3, $4, $5) RETURNING id`
	if err := exec.QueryRowxContext(ctx, infoQuery, info.Amka, info.IdentityNumber, info.PlaceOfBirth, info.MunicipalityOfRegistration, attachmentID).Scan(&info.ID); err != nil {
		return fmt.Errorf("insert personal information: %w", err)
	}

	const teacherQuery = `INSERT INTO teachers (uuid, is_active, user_id, personal_info_id, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	if err := exec.QueryRowxContext(ctx, teacherQuery, teacher.UUID, teacher.IsActive, teacher.UserID, info.ID, teacher.CreatedAt, teacher.UpdatedAt).Scan(&teacher.ID); err != nil {
		return fmt.Errorf("insert teacher: %w", err)
	}
	return nil
}
