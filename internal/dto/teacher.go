package dto

// TeacherInsertRequest is the `teacher` part of POST /teachers/save.
type TeacherInsertRequest struct {
	IsActive     bool                      `json:"isActive"`
	User         UserInsertRequest         `json:"user"`
	PersonalInfo PersonalInfoInsertRequest `json:"personalInfo"`
}

// UserInsertRequest carries the account half of a teacher registration.
type UserInsertRequest struct {
	Firstname      string `json:"firstname" validate:"required,min=2,max=255"`
	Lastname       string `json:"lastname" validate:"required,min=2,max=255"`
	Username       string `json:"username" validate:"required,min=2,max=255"`
	Password       string `json:"password" validate:"required,min=8,max=72"`
	Afm            string `json:"afm" validate:"required,numeric,len=9"`
	FatherName     string `json:"fatherName" validate:"required,max=255"`
	FatherLastname string `json:"fatherLastname" validate:"required,max=255"`
	MotherName     string `json:"motherName" validate:"required,max=255"`
	MotherLastname string `json:"motherLastname" validate:"required,max=255"`
	DateOfBirth    string `json:"dateOfBirth" validate:"required,datetime=2006-01-02"`
	Gender         string `json:"gender" validate:"required,oneof=MALE FEMALE OTHER"`
	Role           string `json:"role" validate:"required,oneof=TEACHER EMPLOYEE SUPER_ADMIN"`
}

// PersonalInfoInsertRequest carries identity details.
type PersonalInfoInsertRequest struct {
	Amka                       string `json:"amka" validate:"required,numeric,len=11"`
	IdentityNumber             string `json:"identityNumber" validate:"required,max=255"`
	PlaceOfBirth               string `json:"placeOfBirth" validate:"required,max=255"`
	MunicipalityOfRegistration string `json:"municipalityOfRegistration" validate:"required,max=255"`
}

// TeacherReadOnly is the public view of a teacher.
type TeacherReadOnly struct {
	ID           int64                `json:"id"`
	UUID         string               `json:"uuid"`
	IsActive     bool                 `json:"isActive"`
	User         UserReadOnly         `json:"user"`
	PersonalInfo PersonalInfoReadOnly `json:"personalInfo"`
}

type UserReadOnly struct {
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
	Afm       string `json:"afm"`
}

type PersonalInfoReadOnly struct {
	Amka           string              `json:"amka"`
	IdentityNumber string              `json:"identityNumber"`
	AmkaFile       *AttachmentReadOnly `json:"amkaFile,omitempty"`
}

// AttachmentReadOnly omits the server-side file path.
type AttachmentReadOnly struct {
	Filename    string `json:"filename"`
	SavedName   string `json:"savedName"`
	ContentType string `json:"contentType"`
	Extension   string `json:"extension"`
}

// AttachmentLinkResponse is returned by the signed-link endpoint.
type AttachmentLinkResponse struct {
	URL       string `json:"url"`
	ExpiresAt string `json:"expiresAt"`
}
