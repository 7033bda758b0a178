package repository

import (
	"fmt"
	"strings"

	"github.com/noah-isme/school-teachers-api/internal/models"
)

// TeacherField names a string attribute of the teacher graph usable in a LIKE predicate.
type TeacherField string

// TeacherFieldUUID is the teacher's external identifier.
const TeacherFieldUUID TeacherField = "uuid"

var teacherFieldColumns = map[TeacherField]string{
	TeacherFieldUUID: "t.uuid::text",
}

func (f TeacherField) value(t *models.Teacher) string {
	if f == TeacherFieldUUID {
		return t.UUID
	}
	return ""
}

// TeacherSpecification is a composable condition over the teacher graph. It renders
// to a parameterised SQL fragment and can also be evaluated against a loaded Teacher.
type TeacherSpecification interface {
	build(b *argBinder) string
	Matches(t *models.Teacher) bool
}

// argBinder accumulates positional arguments and hands out their $n placeholders.
type argBinder struct {
	args []interface{}
}

func (b *argBinder) bind(v interface{}) string {
	b.args = append(b.args, v)
	return fmt.Sprintf("$%d", len(b.args))
}

type alwaysTrue struct{}

func (alwaysTrue) build(*argBinder) string      { return "TRUE" }
func (alwaysTrue) Matches(*models.Teacher) bool { return true }

type equals struct {
	column string
	value  interface{}
	match  func(t *models.Teacher) bool
}

func (e equals) build(b *argBinder) string {
	return e.column + " = " + b.bind(e.value)
}

func (e equals) Matches(t *models.Teacher) bool { return e.match(t) }

type upperLike struct {
	field TeacherField
	value string
}

func (l upperLike) build(b *argBinder) string {
	return fmt.Sprintf("UPPER(%s) LIKE UPPER(%s)", teacherFieldColumns[l.field], b.bind("%"+escapeLike(l.value)+"%"))
}

func (l upperLike) Matches(t *models.Teacher) bool {
	return strings.Contains(strings.ToUpper(l.field.value(t)), strings.ToUpper(l.value))
}

type allOf []TeacherSpecification

func (a allOf) build(b *argBinder) string {
	parts := make([]string, 0, len(a))
	for _, spec := range a {
		if clause := spec.build(b); clause != "TRUE" {
			parts = append(parts, clause)
		}
	}
	if len(parts) == 0 {
		return "TRUE"
	}
	return strings.Join(parts, " AND ")
}

func (a allOf) Matches(t *models.Teacher) bool {
	for _, spec := range a {
		if !spec.Matches(t) {
			return false
		}
	}
	return true
}

// TeacherStringFieldLike matches field case-insensitively against value as a substring.
// A blank value matches everything.
func TeacherStringFieldLike(field TeacherField, value string) TeacherSpecification {
	if _, ok := teacherFieldColumns[field]; !ok || strings.TrimSpace(value) == "" {
		return alwaysTrue{}
	}
	return upperLike{field: field, value: value}
}

// TeacherUserAfmIs matches the account tax id exactly. A blank value matches everything.
func TeacherUserAfmIs(afm string) TeacherSpecification {
	if strings.TrimSpace(afm) == "" {
		return alwaysTrue{}
	}
	return equals{column: "u.afm", value: afm, match: func(t *models.Teacher) bool { return t.User.Afm == afm }}
}

// TeacherPersonalInfoAmkaIs matches the social-security number exactly. A blank value matches everything.
func TeacherPersonalInfoAmkaIs(amka string) TeacherSpecification {
	if strings.TrimSpace(amka) == "" {
		return alwaysTrue{}
	}
	return equals{column: "pi.amka", value: amka, match: func(t *models.Teacher) bool { return t.PersonalInfo.Amka == amka }}
}

// TeacherIsActive matches the account active flag. nil means any.
func TeacherIsActive(active *bool) TeacherSpecification {
	if active == nil {
		return alwaysTrue{}
	}
	want := *active
	return equals{column: "u.is_active", value: want, match: func(t *models.Teacher) bool { return t.User.IsActive == want }}
}

// AllOf is the conjunction of specs. An empty conjunction matches everything.
func AllOf(specs ...TeacherSpecification) TeacherSpecification {
	return allOf(specs)
}

// renderWhere returns the WHERE clause with a leading space, or "" when spec is unrestricted.
func renderWhere(spec TeacherSpecification, b *argBinder) string {
	if spec == nil {
		return ""
	}
	clause := spec.build(b)
	if clause == "TRUE" {
		return ""
	}
	return " WHERE " + clause
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
