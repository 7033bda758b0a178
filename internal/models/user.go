package models

import "time"

// UserRole represents the available roles for the RBAC system.
type UserRole string

const (
	RoleSuperAdmin UserRole = "SUPER_ADMIN"
	RoleEmployee   UserRole = "EMPLOYEE"
	RoleTeacher    UserRole = "TEACHER"
)

// Gender of a registered person.
type Gender string

const (
	GenderMale   Gender = "MALE"
	GenderFemale Gender = "FEMALE"
	GenderOther  Gender = "OTHER"
)

// User represents an application account stored in the users table.
type User struct {
	ID             int64     `db:"id" json:"id"`
	Firstname      string    `db:"firstname" json:"firstname"`
	Lastname       string    `db:"lastname" json:"lastname"`
	Username       string    `db:"username" json:"username"`
	PasswordHash   string    `db:"password" json:"-"`
	Afm            string    `db:"afm" json:"afm"`
	FatherName     string    `db:"father_name" json:"fatherName"`
	FatherLastname string    `db:"father_lastname" json:"fatherLastname"`
	MotherName     string    `db:"mother_name" json:"motherName"`
	MotherLastname string    `db:"mother_lastname" json:"motherLastname"`
	DateOfBirth    time.Time `db:"date_of_birth" json:"dateOfBirth"`
	Gender         Gender    `db:"gender" json:"gender"`
	Role           UserRole  `db:"role" json:"role"`
	IsActive       bool      `db:"is_active" json:"isActive"`
	CreatedAt      time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time `db:"updated_at" json:"updatedAt"`
}
