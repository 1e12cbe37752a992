package profile

import "tracker_server/core/domain"

// Aggregate folds the rows of the profile outer join into one document.
//
// The join repeats every work-experience row once per education row (and the
// other way round), so children are appended only when an equal entry is not
// already present. Two genuinely identical entries therefore collapse into one.
// Rows without a user id are skipped; ok is false when none remain.
func Aggregate(rows []domain.ProfileJoinRow) (profile *domain.Profile, ok bool) {
	byUser := make(map[int64]*domain.Profile)
	var order []int64

	for i := range rows {
		row := &rows[i]
		if row.UserID == nil {
			continue
		}

		p, seen := byUser[*row.UserID]
		if !seen {
			p = newProfile(row)
			byUser[*row.UserID] = p
			order = append(order, *row.UserID)
		}

		if row.Company != nil && *row.Company != "" {
			appendWork(p, domain.WorkExperience{
				Company:           *row.Company,
				Position:          str(row.Position),
				YearsOfExperience: intOr(row.YearsOfExperience),
				Responsibilities:  str(row.Responsibilities),
			})
		}

		if row.Degree != nil && *row.Degree != "" {
			appendEducation(p, domain.Education{
				Degree:      *row.Degree,
				Institution: str(row.School),
				GPA:         floatOr(row.GPA),
				Field:       str(row.FieldOfStudy),
				EndYear:     row.GraduationYear,
			})
		}
	}

	if len(order) == 0 {
		return nil, false
	}
	// An email resolves to a single user; the first group wins if it ever doesn't.
	return byUser[order[0]], true
}

func newProfile(row *domain.ProfileJoinRow) *domain.Profile {
	return &domain.Profile{
		UserID:         *row.UserID,
		Email:          str(row.Email),
		FirstName:      str(row.FirstName),
		LastName:       str(row.LastName),
		Phone:          str(row.Phone),
		LinkedIn:       str(row.LinkedIn),
		City:           str(row.City),
		Skills:         domain.SplitList(str(row.Skills)),
		Certifications: domain.SplitList(str(row.Certifications)),
		WorkExperience: []domain.WorkExperience{},
		Education:      []domain.Education{},
	}
}

func appendWork(p *domain.Profile, w domain.WorkExperience) {
	for _, existing := range p.WorkExperience {
		if existing == w {
			return
		}
	}
	p.WorkExperience = append(p.WorkExperience, w)
}

func appendEducation(p *domain.Profile, e domain.Education) {
	for _, existing := range p.Education {
		if existing.Equal(e) {
			return
		}
	}
	p.Education = append(p.Education, e)
}

func str(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func intOr(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}

func floatOr(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
