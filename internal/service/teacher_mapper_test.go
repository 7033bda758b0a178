package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/school-teachers-api/internal/models"
)

func TestTeacherMapperToTeacherHashesPassword(t *testing.T) {
	mapper := NewTeacherMapper(NewBcryptHasher(bcrypt.MinCost))
	req := validInsertRequest("123456789", " maria ")
	req.IsActive = false

	teacher, err := mapper.ToTeacher(req)
	require.NoError(t, err)
	assert.Equal(t, "maria", teacher.User.Username)
	assert.NotEqual(t, req.User.Password, teacher.User.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(teacher.User.PasswordHash), []byte(req.User.Password)))
	assert.Equal(t, time.Date(1985, 3, 14, 0, 0, 0, 0, time.UTC), teacher.User.DateOfBirth)
	assert.Equal(t, models.GenderFemale, teacher.User.Gender)
	assert.Equal(t, models.RoleTeacher, teacher.User.Role)
	assert.False(t, teacher.IsActive)
	assert.False(t, teacher.User.IsActive)
	assert.Equal(t, "12345678901", teacher.PersonalInfo.Amka)
	assert.Nil(t, teacher.PersonalInfo.AmkaFile)
	assert.Zero(t, teacher.ID)
}

func TestTeacherMapperRejectsBadDate(t *testing.T) {
	mapper := NewTeacherMapper(fakeHasher{})
	req := validInsertRequest("123456789", "maria")
	req.User.DateOfBirth = "14/03/1985"

	_, err := mapper.ToTeacher(req)
	assert.Error(t, err)
}

func TestTeacherMapperToReadOnly(t *testing.T) {
	mapper := NewTeacherMapper(fakeHasher{})
	teacher := models.Teacher{
		ID:       3,
		UUID:     "uuid-3",
		IsActive: true,
		User:     models.User{Firstname: "Maria", Lastname: "Papadopoulou", Afm: "123456789", PasswordHash: "secret"},
		PersonalInfo: models.PersonalInfo{
			Amka:           "12345678901",
			IdentityNumber: "AB123456",
			AmkaFile:       &models.Attachment{Filename: "a.pdf", SavedName: "x.pdf", FilePath: "/srv/uploads/x.pdf", ContentType: "application/pdf", Extension: ".pdf"},
		},
	}

	out := mapper.ToReadOnly(teacher)
	assert.Equal(t, int64(3), out.ID)
	assert.Equal(t, "uuid-3", out.UUID)
	assert.Equal(t, "123456789", out.User.Afm)
	assert.Equal(t, "AB123456", out.PersonalInfo.IdentityNumber)
	require.NotNil(t, out.PersonalInfo.AmkaFile)
	assert.Equal(t, "x.pdf", out.PersonalInfo.AmkaFile.SavedName)

	assert.Empty(t, mapper.ToReadOnlyList(nil))
	assert.NotNil(t, mapper.ToReadOnlyList(nil))
}

func TestNewBcryptHasherClampsCost(t *testing.T) {
	assert.Equal(t, bcrypt.DefaultCost, NewBcryptHasher(0).cost)
	assert.Equal(t, bcrypt.DefaultCost, NewBcryptHasher(99).cost)
	assert.Equal(t, 11, NewBcryptHasher(11).cost)
}
