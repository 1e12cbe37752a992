package profile

import (
	"math"
	"strconv"
	"strings"
	"time"

	"tracker_server/core/domain"
	"tracker_server/core/port/in"
	"tracker_server/pkg/apperr"
)

// Normalize flattens a submitted profile document into the write set stored
// by ReplaceProfile. Loosely typed numbers are coerced here; anything that
// cannot be coerced is an InvalidInput error.
func Normalize(req *in.SaveProfileRequest) (*domain.ProfileUpdate, error) {
	original := strings.TrimSpace(req.OriginalEmail)
	if original == "" {
		original = strings.TrimSpace(req.Email)
	}
	if original == "" {
		return nil, apperr.MissingField("originalEmail", "Original email is required")
	}

	certs, err := certificationNames(req.Certifications)
	if err != nil {
		return nil, err
	}

	update := &domain.ProfileUpdate{
		OriginalEmail:  original,
		Email:          strings.TrimSpace(req.Email),
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Phone:          req.Phone,
		LinkedIn:       req.LinkedIn,
		City:           req.City,
		Skills:         domain.JoinList(req.Skills),
		Certifications: domain.JoinList(certs),
		WorkExperience: make([]domain.WorkExperience, 0, len(req.WorkExperience)),
		Education:      make([]domain.EducationRecord, 0, len(req.Education)),
	}
	if update.Email == "" {
		update.Email = original
	}

	for i, w := range req.WorkExperience {
		years, err := coerceYears(w.YearsOfExperience)
		if err != nil {
			return nil, apperr.InvalidInput(fieldPath("workExperience", i, "yearsOfExperience"), err.Error())
		}
		update.WorkExperience = append(update.WorkExperience, domain.WorkExperience{
			Company:           w.Company,
			Position:          w.Position,
			YearsOfExperience: years,
			Responsibilities:  w.Responsibilities,
		})
	}

	for i, e := range req.Education {
		gpa, err := coerceGPA(e.GPA)
		if err != nil {
			return nil, apperr.InvalidInput(fieldPath("education", i, "gpa"), err.Error())
		}
		graduation, err := coerceEndYear(e.EndYear)
		if err != nil {
			return nil, apperr.InvalidInput(fieldPath("education", i, "endYear"), err.Error())
		}
		update.Education = append(update.Education, domain.EducationRecord{
			Degree:         e.Degree,
			School:         e.Institution,
			GPA:            gpa,
			FieldOfStudy:   e.Field,
			GraduationDate: graduation,
		})
	}

	return update, nil
}

// certificationNames accepts plain strings and {"name": ...} records.
func certificationNames(items []any) ([]string, error) {
	names := make([]string, 0, len(items))
	for i, item := range items {
		switch v := item.(type) {
		case string:
			names = append(names, v)
		case map[string]any:
			name, _ := v["name"].(string)
			names = append(names, name)
		default:
			return nil, apperr.InvalidInput(fieldPath("certifications", i, ""), "expected a string or an object with a name")
		}
	}
	return names, nil
}

type coercionError string

func (e coercionError) Error() string { return string(e) }

const (
	errNotNumber   coercionError = "not a number"
	errNotInteger  coercionError = "not a whole number"
	errNegative    coercionError = "must not be negative"
	errYearOutside coercionError = "year out of range"
)

func coerceYears(v any) (int, error) {
	switch n := v.(type) {
	case nil:
		return 0, nil
	case float64:
		if n != math.Trunc(n) {
			return 0, errNotInteger
		}
		if n < 0 {
			return 0, errNegative
		}
		return int(n), nil
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return 0, nil
		}
		years, err := strconv.Atoi(s)
		if err != nil {
			return 0, errNotInteger
		}
		if years < 0 {
			return 0, errNegative
		}
		return years, nil
	default:
		return 0, errNotNumber
	}
}

func coerceGPA(v any) (float64, error) {
	switch n := v.(type) {
	case nil:
		return 0, nil
	case float64:
		return n, nil
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return 0, nil
		}
		gpa, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(gpa) || math.IsInf(gpa, 0) {
			return 0, errNotNumber
		}
		return gpa, nil
	default:
		return 0, errNotNumber
	}
}

// coerceEndYear widens a year to January 1st. Empty and zero values mean no date.
func coerceEndYear(v any) (*time.Time, error) {
	var year int
	switch n := v.(type) {
	case nil:
		return nil, nil
	case float64:
		if n != math.Trunc(n) {
			return nil, errNotInteger
		}
		year = int(n)
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return nil, nil
		}
		y, err := strconv.Atoi(s)
		if err != nil {
			return nil, errNotInteger
		}
		year = y
	default:
		return nil, errNotNumber
	}
	if year == 0 {
		return nil, nil
	}
	if year < 1 || year > 9999 {
		return nil, errYearOutside
	}
	t := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	return &t, nil
}

func fieldPath(list string, i int, field string) string {
	p := list + "[" + strconv.Itoa(i) + "]"
	if field != "" {
		p += "." + field
	}
	return p
}
