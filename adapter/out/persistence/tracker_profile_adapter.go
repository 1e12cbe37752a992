package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"tracker_server/core/domain"

	"github.com/jmoiron/sqlx"
)

// ProfileAdapter implements out.ProfileRepository using PostgreSQL.
type ProfileAdapter struct {
	db *sqlx.DB
}

// NewProfileAdapter creates a new ProfileAdapter.
func NewProfileAdapter(db *sqlx.DB) *ProfileAdapter {
	return &ProfileAdapter{db: db}
}

type profileJoinRow struct {
	UserID         sql.NullInt64  `db:"user_id"`
	Email          sql.NullString `db:"email"`
	FirstName      sql.NullString `db:"firstname"`
	LastName       sql.NullString `db:"lastname"`
	Phone          sql.NullString `db:"phone"`
	LinkedIn       sql.NullString `db:"linkedin"`
	City           sql.NullString `db:"city"`
	Skills         sql.NullString `db:"skills"`
	Certifications sql.NullString `db:"certifications"`

	Company           sql.NullString `db:"company_name"`
	Position          sql.NullString `db:"position"`
	YearsOfExperience sql.NullInt32  `db:"years_of_experience"`
	Responsibilities  sql.NullString `db:"job_description"`

	Degree         sql.NullString  `db:"degree"`
	School         sql.NullString  `db:"school"`
	GPA            sql.NullFloat64 `db:"gpa"`
	FieldOfStudy   sql.NullString  `db:"field_of_study"`
	GraduationYear sql.NullInt32   `db:"graduation_year"`
}

func (r *profileJoinRow) toEntity() domain.ProfileJoinRow {
	return domain.ProfileJoinRow{
		UserID:            nullInt64(r.UserID),
		Email:             nullString(r.Email),
		FirstName:         nullString(r.FirstName),
		LastName:          nullString(r.LastName),
		Phone:             nullString(r.Phone),
		LinkedIn:          nullString(r.LinkedIn),
		City:              nullString(r.City),
		Skills:            nullString(r.Skills),
		Certifications:    nullString(r.Certifications),
		Company:           nullString(r.Company),
		Position:          nullString(r.Position),
		YearsOfExperience: nullInt(r.YearsOfExperience),
		Responsibilities:  nullString(r.Responsibilities),
		Degree:            nullString(r.Degree),
		School:            nullString(r.School),
		GPA:               nullFloat(r.GPA),
		FieldOfStudy:      nullString(r.FieldOfStudy),
		GraduationYear:    nullInt(r.GraduationYear),
	}
}

// ProfileRows runs the four-table outer join. Child rows are ordered by id so
// entries come back in insertion order.
func (a *ProfileAdapter) ProfileRows(ctx context.Context, email string) ([]domain.ProfileJoinRow, error) {
	const query = `
		SELECT
			u.id AS user_id, u.email, u.firstname, u.lastname, u.phone, u.linkedin, u.city,
			p.skills, p.certifications,
			w.company_name, w.position, w.years_of_experience, w.job_description,
			e.degree, e.school, e.gpa, e.field_of_study,
			EXTRACT(YEAR FROM e.graduation_date)::INT AS graduation_year
		FROM users u
		LEFT JOIN profile p ON p.id = u.id
		LEFT JOIN work_experience w ON w.profile_id = u.id
		LEFT JOIN education e ON e.profile_id = u.id
		WHERE LOWER(u.email) = LOWER($1)
		ORDER BY w.id, e.id
	`

	var rows []profileJoinRow
	if err := a.db.SelectContext(ctx, &rows, query, email); err != nil {
		return nil, fmt.Errorf("select profile rows: %w", err)
	}

	result := make([]domain.ProfileJoinRow, len(rows))
	for i := range rows {
		result[i] = rows[i].toEntity()
	}
	return result, nil
}

// ReplaceProfile writes the whole update in one transaction.
func (a *ProfileAdapter) ReplaceProfile(ctx context.Context, u *domain.ProfileUpdate) error {
	tx, err := a.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var userID int64
	err = tx.GetContext(ctx, &userID, `SELECT id FROM users WHERE LOWER(email) = LOWER($1) FOR UPDATE`, u.OriginalEmail)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("resolve user: %w", err)
	}

	if u.EmailChanged() {
		if _, err := tx.ExecContext(ctx, `UPDATE users SET email = $1 WHERE id = $2`, u.Email, userID); err != nil {
			return fmt.Errorf("rename user: %w", translate(err))
		}
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE users
		SET firstname = $1, lastname = $2, phone = $3, city = $4, linkedin = $5
		WHERE id = $6
	`, u.FirstName, u.LastName, u.Phone, u.City, u.LinkedIn, userID)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO profile (id, skills, certifications)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET skills = EXCLUDED.skills, certifications = EXCLUDED.certifications
	`, userID, u.Skills, u.Certifications)
	if err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM work_experience WHERE profile_id = $1`, userID); err != nil {
		return fmt.Errorf("clear work experience: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM education WHERE profile_id = $1`, userID); err != nil {
		return fmt.Errorf("clear education: %w", err)
	}

	for _, w := range u.WorkExperience {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO work_experience (profile_id, company_name, position, years_of_experience, job_description)
			VALUES ($1, $2, $3, $4, $5)
		`, userID, w.Company, w.Position, w.YearsOfExperience, w.Responsibilities)
		if err != nil {
			return fmt.Errorf("insert work experience: %w", err)
		}
	}

	for _, e := range u.Education {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO education (profile_id, degree, school, gpa, field_of_study, graduation_date)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, userID, e.Degree, e.School, e.GPA, e.FieldOfStudy, e.GraduationDate)
		if err != nil {
			return fmt.Errorf("insert education: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit profile: %w", err)
	}
	return nil
}

func nullString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	return &v.String
}

func nullInt64(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	return &v.Int64
}

func nullInt(v sql.NullInt32) *int {
	if !v.Valid {
		return nil
	}
	i := int(v.Int32)
	return &i
}

func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	return &v.Float64
}
