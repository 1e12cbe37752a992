package domain

import (
	"strings"
	"time"
)

// ListSeparator joins skills and certifications into a single column.
const ListSeparator = ", "

// Profile is the nested document assembled from users, profile,
// work_experience and education rows.
type Profile struct {
	UserID         int64            `json:"user_id"`
	Email          string           `json:"email"`
	FirstName      string           `json:"firstname"`
	LastName       string           `json:"lastname"`
	Phone          string           `json:"phone"`
	LinkedIn       string           `json:"linkedin"`
	City           string           `json:"city"`
	Skills         []string         `json:"skills"`
	Certifications []string         `json:"certifications"`
	WorkExperience []WorkExperience `json:"workExperience"`
	Education      []Education      `json:"education"`
}

// FullName joins first and last name.
func (p *Profile) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

type WorkExperience struct {
	Company           string `json:"company"`
	Position          string `json:"position"`
	YearsOfExperience int    `json:"yearsOfExperience"`
	Responsibilities  string `json:"responsibilities"`
}

type Education struct {
	Degree      string  `json:"degree"`
	Institution string  `json:"institution"`
	GPA         float64 `json:"gpa"`
	Field       string  `json:"field"`
	EndYear     *int    `json:"endYear"`
}

// Equal compares every field, including the end year value.
func (e Education) Equal(o Education) bool {
	if e.Degree != o.Degree || e.Institution != o.Institution || e.GPA != o.GPA || e.Field != o.Field {
		return false
	}
	if e.EndYear == nil || o.EndYear == nil {
		return e.EndYear == nil && o.EndYear == nil
	}
	return *e.EndYear == *o.EndYear
}

// ProfileJoinRow is one row of the users ⟕ profile ⟕ work_experience ⟕ education
// join. Child columns are nil when the outer join found no match.
type ProfileJoinRow struct {
	UserID         *int64
	Email          *string
	FirstName      *string
	LastName       *string
	Phone          *string
	LinkedIn       *string
	City           *string
	Skills         *string
	Certifications *string

	Company           *string
	Position          *string
	YearsOfExperience *int
	Responsibilities  *string

	Degree         *string
	School         *string
	GPA            *float64
	FieldOfStudy   *string
	GraduationYear *int
}

// ProfileUpdate is the flattened write set produced from a submitted document.
type ProfileUpdate struct {
	OriginalEmail  string
	Email          string
	FirstName      string
	LastName       string
	Phone          string
	LinkedIn       string
	City           string
	Skills         string
	Certifications string
	WorkExperience []WorkExperience
	Education      []EducationRecord
}

// EmailChanged reports whether the update renames the account.
func (u *ProfileUpdate) EmailChanged() bool {
	return u.Email != "" && u.Email != u.OriginalEmail
}

// EducationRecord is an education row as stored: the year is widened to a date.
type EducationRecord struct {
	Degree         string
	School         string
	GPA            float64
	FieldOfStudy   string
	GraduationDate *time.Time
}

// JoinList serializes a list column.
func JoinList(items []string) string {
	return strings.Join(items, ListSeparator)
}

// SplitList parses a list column; the empty string yields an empty list.
func SplitList(s string) []string {
	if s == "" {
		return []string{}
	}
	return strings.Split(s, ListSeparator)
}
