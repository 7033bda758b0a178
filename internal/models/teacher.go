package models

import (
	"math"
	"time"
)

// Teacher is the aggregate root: it owns exactly one User and one PersonalInfo.
type Teacher struct {
	ID           int64        `db:"id" json:"id"`
	UUID         string       `db:"uuid" json:"uuid"`
	IsActive     bool         `db:"is_active" json:"isActive"`
	UserID       int64        `db:"user_id" json:"-"`
	PersonalInfo PersonalInfo `db:"-" json:"personalInfo"`
	User         User         `db:"-" json:"user"`
	CreatedAt    time.Time    `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time    `db:"updated_at" json:"updatedAt"`
}

// PersonalInfo holds identity details and the optional AMKA document.
type PersonalInfo struct {
	ID                         int64       `db:"id" json:"id"`
	Amka                       string      `db:"amka" json:"amka"`
	IdentityNumber             string      `db:"identity_number" json:"identityNumber"`
	PlaceOfBirth               string      `db:"place_of_birth" json:"placeOfBirth"`
	MunicipalityOfRegistration string      `db:"municipality_of_registration" json:"municipalityOfRegistration"`
	AmkaFile                   *Attachment `db:"-" json:"amkaFile,omitempty"`
}

// Attachment is metadata of an uploaded file. Rows are insert-only.
type Attachment struct {
	ID          int64  `db:"id" json:"id"`
	Filename    string `db:"filename" json:"filename"`
	SavedName   string `db:"saved_name" json:"savedName"`
	FilePath    string `db:"file_path" json:"filePath"`
	ContentType string `db:"content_type" json:"contentType"`
	Extension   string `db:"extension" json:"extension"`
}

// TeacherFilters captures the optional filtering and paging criteria for teacher queries.
// A nil field means "do not filter on it".
type TeacherFilters struct {
	UUID          *string `json:"uuid,omitempty"`
	UserAfm       *string `json:"userAfm,omitempty"`
	UserAmka      *string `json:"userAmka,omitempty"`
	IsActive      *bool   `json:"isActive,omitempty"`
	Page          *int    `json:"page,omitempty"`
	PageSize      *int    `json:"pageSize,omitempty"`
	SortBy        *string `json:"sortBy,omitempty"`
	SortDirection *string `json:"sortDirection,omitempty"`
}

// SortDirection orders a page.
type SortDirection string

const (
	SortAsc  SortDirection = "ASC"
	SortDesc SortDirection = "DESC"
)

// Pageable is a validated page request.
type Pageable struct {
	Page          int
	Size          int
	SortBy        string
	SortDirection SortDirection
}

// Offset returns the number of rows to skip. Offsets past math.MaxInt saturate,
// so a very large page still lands beyond the last row instead of wrapping.
func (p Pageable) Offset() int {
	if p.Page <= 0 || p.Size <= 0 {
		return 0
	}
	if p.Page > math.MaxInt/p.Size {
		return math.MaxInt
	}
	return p.Page * p.Size
}
