package persistence

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"testing"
	"time"

	"tracker_server/core/domain"
	"tracker_server/infra/database"

	"github.com/jmoiron/sqlx"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const postgresImage = "postgres:16-alpine"

func dockerAvailable() bool {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return exec.CommandContext(ctx, "docker", "info").Run() == nil
}

// startPostgres runs a throwaway Postgres with the schema applied.
func startPostgres(t *testing.T) *sqlx.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping Postgres tests in short mode")
	}
	if !dockerAvailable() {
		t.Skip("skipping Postgres tests: Docker not available")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        postgresImage,
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "tracker",
				"POSTGRES_PASSWORD": "tracker",
				"POSTGRES_DB":       "tracker",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(90 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("start postgres container: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("terminate postgres container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("container host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("container port: %v", err)
	}

	dsn := fmt.Sprintf("postgres://tracker:tracker@%s:%s/tracker?sslmode=disable", host, port.Port())
	db, err := database.NewSQLX(ctx, dsn, database.DefaultPostgresConfig(4, 2))
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := Migrate(ctx, db); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	return db
}

func createUser(t *testing.T, users *UserAdapter, email string) *domain.User {
	t.Helper()
	u := &domain.User{Email: email, PasswordHash: "hash", FirstName: "Ada", LastName: "Lovelace"}
	if err := users.Create(context.Background(), u); err != nil {
		t.Fatalf("Create(%s) error = %v", email, err)
	}
	return u
}

func countRows(t *testing.T, db *sqlx.DB, query string, args ...any) int {
	t.Helper()
	var n int
	if err := db.GetContext(context.Background(), &n, query, args...); err != nil {
		t.Fatalf("count %q: %v", query, err)
	}
	return n
}

func TestPostgresAdapters(t *testing.T) {
	db := startPostgres(t)
	ctx := context.Background()
	users := NewUserAdapter(db)
	profiles := NewProfileAdapter(db)
	jobs := NewJobAdapter(db)

	graduated := time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)

	t.Run("profile save replaces children", func(t *testing.T) {
		u := createUser(t, users, "replace@example.com")
		first := &domain.ProfileUpdate{
			OriginalEmail: u.Email,
			Email:         u.Email,
			FirstName:     "Ada",
			Skills:        "Go, SQL",
			WorkExperience: []domain.WorkExperience{
				{Company: "Acme", Position: "Eng", YearsOfExperience: 3},
				{Company: "Globex", Position: "Lead", YearsOfExperience: 2},
			},
			Education: []domain.EducationRecord{
				{Degree: "BSc", School: "MIT", GPA: 3.8, FieldOfStudy: "CS", GraduationDate: &graduated},
				{Degree: "MSc", School: "MIT", GPA: 3.9, FieldOfStudy: "CS"},
			},
		}
		if err := profiles.ReplaceProfile(ctx, first); err != nil {
			t.Fatalf("ReplaceProfile() error = %v", err)
		}

		rows, err := profiles.ProfileRows(ctx, u.Email)
		if err != nil {
			t.Fatalf("ProfileRows() error = %v", err)
		}
		if len(rows) != 4 {
			t.Errorf("join rows = %d, want 4 (2 work x 2 education)", len(rows))
		}

		second := *first
		second.WorkExperience = nil
		second.Skills = "Rust"
		if err := profiles.ReplaceProfile(ctx, &second); err != nil {
			t.Fatalf("second ReplaceProfile() error = %v", err)
		}

		if n := countRows(t, db, `SELECT COUNT(*) FROM work_experience WHERE profile_id = $1`, u.ID); n != 0 {
			t.Errorf("work_experience rows = %d, want 0", n)
		}
		if n := countRows(t, db, `SELECT COUNT(*) FROM education WHERE profile_id = $1`, u.ID); n != 2 {
			t.Errorf("education rows = %d, want 2", n)
		}
		if n := countRows(t, db, `SELECT COUNT(*) FROM profile WHERE id = $1`, u.ID); n != 1 {
			t.Errorf("profile rows = %d, want 1 after upsert", n)
		}
		var skills string
		if err := db.GetContext(ctx, &skills, `SELECT skills FROM profile WHERE id = $1`, u.ID); err != nil {
			t.Fatalf("select skills: %v", err)
		}
		if skills != "Rust" {
			t.Errorf("skills = %q, want Rust", skills)
		}
	})

	t.Run("failed education insert rolls back", func(t *testing.T) {
		u := createUser(t, users, "rollback@example.com")
		prior := &domain.ProfileUpdate{
			OriginalEmail:  u.Email,
			Email:          u.Email,
			FirstName:      "Ada",
			Skills:         "Go",
			WorkExperience: []domain.WorkExperience{{Company: "Acme", Position: "Eng", YearsOfExperience: 3}},
		}
		if err := profiles.ReplaceProfile(ctx, prior); err != nil {
			t.Fatalf("ReplaceProfile() error = %v", err)
		}

		failing := &domain.ProfileUpdate{
			OriginalEmail:  u.Email,
			Email:          u.Email,
			FirstName:      "Grace",
			Skills:         "COBOL",
			WorkExperience: []domain.WorkExperience{{Company: "Navy", Position: "Admiral"}},
			// degree is VARCHAR(255)
			Education: []domain.EducationRecord{{Degree: strings.Repeat("x", 300)}},
		}
		if err := profiles.ReplaceProfile(ctx, failing); err == nil {
			t.Fatal("ReplaceProfile() expected error for oversized degree")
		}

		var companies []string
		if err := db.SelectContext(ctx, &companies, `SELECT company_name FROM work_experience WHERE profile_id = $1`, u.ID); err != nil {
			t.Fatalf("select companies: %v", err)
		}
		if len(companies) != 1 || companies[0] != "Acme" {
			t.Errorf("work_experience = %v, want [Acme]", companies)
		}
		var firstName string
		if err := db.GetContext(ctx, &firstName, `SELECT firstname FROM users WHERE id = $1`, u.ID); err != nil {
			t.Fatalf("select firstname: %v", err)
		}
		if firstName != "Ada" {
			t.Errorf("firstname = %q, want Ada", firstName)
		}
	})

	t.Run("rename onto existing email is duplicate", func(t *testing.T) {
		u := createUser(t, users, "rename@example.com")
		createUser(t, users, "taken@example.com")

		err := profiles.ReplaceProfile(ctx, &domain.ProfileUpdate{OriginalEmail: u.Email, Email: "Taken@example.com"})
		if !errors.Is(err, ErrDuplicate) {
			t.Errorf("ReplaceProfile() error = %v, want ErrDuplicate", err)
		}
	})

	t.Run("application upsert keeps one row", func(t *testing.T) {
		u := createUser(t, users, "apply@example.com")
		posting := &domain.JobPosting{Title: "Go Engineer", Company: "Acme"}

		jobID, err := jobs.SaveApplication(ctx, posting, &domain.Application{UserID: u.ID, Status: "Applied"})
		if err != nil {
			t.Fatalf("SaveApplication() error = %v", err)
		}
		if _, err := jobs.SaveApplication(ctx, nil, &domain.Application{JobID: jobID, UserID: u.ID, Status: "Interview"}); err != nil {
			t.Fatalf("second SaveApplication() error = %v", err)
		}

		if n := countRows(t, db, `SELECT COUNT(*) FROM users_jobs WHERE job_id = $1 AND user_id = $2`, jobID, u.ID); n != 1 {
			t.Errorf("users_jobs rows = %d, want 1", n)
		}
		list, err := jobs.ListUserJobs(ctx, u.ID)
		if err != nil {
			t.Fatalf("ListUserJobs() error = %v", err)
		}
		if len(list) != 1 || list[0].Status != "Interview" {
			t.Errorf("ListUserJobs() = %+v, want one job with status Interview", list)
		}
	})

	t.Run("empty status lists as Applied", func(t *testing.T) {
		u := createUser(t, users, "blank@example.com")
		applied := time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC)

		_, err := jobs.SaveApplication(ctx, &domain.JobPosting{Title: "SRE"}, &domain.Application{UserID: u.ID, DateApplied: &applied})
		if err != nil {
			t.Fatalf("SaveApplication() error = %v", err)
		}
		list, err := jobs.ListUserJobs(ctx, u.ID)
		if err != nil {
			t.Fatalf("ListUserJobs() error = %v", err)
		}
		if len(list) != 1 {
			t.Fatalf("ListUserJobs() returned %d jobs, want 1", len(list))
		}
		if list[0].Status != domain.DefaultApplicationStatus {
			t.Errorf("Status = %q, want %q", list[0].Status, domain.DefaultApplicationStatus)
		}
		if list[0].DateApplied == nil || *list[0].DateApplied != "2024-03-05" {
			t.Errorf("DateApplied = %v, want 2024-03-05", list[0].DateApplied)
		}
	})

	t.Run("application for unknown user is not found", func(t *testing.T) {
		_, err := jobs.SaveApplication(ctx, &domain.JobPosting{Title: "Ghost"}, &domain.Application{UserID: 999999})
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("SaveApplication() error = %v, want ErrNotFound", err)
		}
	})
}
