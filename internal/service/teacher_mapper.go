package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/noah-isme/school-teachers-api/internal/dto"
	"github.com/noah-isme/school-teachers-api/internal/models"
)

const dateOfBirthLayout = "2006-01-02"

type passwordHasher interface {
	Hash(plain string) (string, error)
}

// TeacherMapper converts between insert requests, the persisted graph and read-only views.
type TeacherMapper struct {
	hasher passwordHasher
}

func NewTeacherMapper(hasher passwordHasher) *TeacherMapper {
	if hasher == nil {
		hasher = NewBcryptHasher(0)
	}
	return &TeacherMapper{hasher: hasher}
}

// ToTeacher builds an unsaved entity graph. The account inherits the teacher's active flag.
func (m *TeacherMapper) ToTeacher(req dto.TeacherInsertRequest) (*models.Teacher, error) {
	dob, err := time.Parse(dateOfBirthLayout, strings.TrimSpace(req.User.DateOfBirth))
	if err != nil {
		return nil, fmt.Errorf("parse date of birth: %w", err)
	}
	hash, err := m.hasher.Hash(req.User.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := req.User
	info := req.PersonalInfo
	return &models.Teacher{
		IsActive: req.IsActive,
		User: models.User{
			Firstname:      strings.TrimSpace(u.Firstname),
			Lastname:       strings.TrimSpace(u.Lastname),
			Username:       strings.TrimSpace(u.Username),
			PasswordHash:   hash,
			Afm:            strings.TrimSpace(u.Afm),
			FatherName:     strings.TrimSpace(u.FatherName),
			FatherLastname: strings.TrimSpace(u.FatherLastname),
			MotherName:     strings.TrimSpace(u.MotherName),
			MotherLastname: strings.TrimSpace(u.MotherLastname),
			DateOfBirth:    dob,
			Gender:         models.Gender(u.Gender),
			Role:           models.UserRole(u.Role),
			IsActive:       req.IsActive,
		},
		PersonalInfo: models.PersonalInfo{
			Amka:                       strings.TrimSpace(info.Amka),
			IdentityNumber:             strings.TrimSpace(info.IdentityNumber),
			PlaceOfBirth:               strings.TrimSpace(info.PlaceOfBirth),
			MunicipalityOfRegistration: strings.TrimSpace(info.MunicipalityOfRegistration),
		},
	}, nil
}

// ToReadOnly projects a persisted teacher to its public view.
func (m *TeacherMapper) ToReadOnly(t models.Teacher) dto.TeacherReadOnly {
	out := dto.TeacherReadOnly{
		ID:       t.ID,
		UUID:     t.UUID,
		IsActive: t.IsActive,
		User: dto.UserReadOnly{
			Firstname: t.User.Firstname,
			Lastname:  t.User.Lastname,
			Afm:       t.User.Afm,
		},
		PersonalInfo: dto.PersonalInfoReadOnly{
			Amka:           t.PersonalInfo.Amka,
			IdentityNumber: t.PersonalInfo.IdentityNumber,
		},
	}
	if f := t.PersonalInfo.AmkaFile; f != nil {
		out.PersonalInfo.AmkaFile = &dto.AttachmentReadOnly{
			Filename:    f.Filename,
			SavedName:   f.SavedName,
			ContentType: f.ContentType,
			Extension:   f.Extension,
		}
	}
	return out
}

func (m *TeacherMapper) ToReadOnlyList(teachers []models.Teacher) []dto.TeacherReadOnly {
	out := make([]dto.TeacherReadOnly, 0, len(teachers))
	for _, t := range teachers {
		out = append(out, m.ToReadOnly(t))
	}
	return out
}
