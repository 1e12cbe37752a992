package in

import (
	"bytes"
	"strconv"

	"github.com/goccy/go-json"
)

// FlexInt64 accepts a JSON number or a numeric string. Clients send job ids
// both ways; null, "" and 0 all mean "no id".
type FlexInt64 int64

func (f *FlexInt64) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = 0
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			*f = 0
			return nil
		}
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return err
		}
		*f = FlexInt64(v)
		return nil
	}
	var v int64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = FlexInt64(v)
	return nil
}

// Int64 returns the id, zero when absent.
func (f FlexInt64) Int64() int64 { return int64(f) }

type SignUpRequest struct {
	FirstName string `json:"firstname"`
	LastName  string `json:"lastname"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=6"`
}

type SignInRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type SignInResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}

type GenerateOTPRequest struct {
	Email string `json:"email"`
}

type VerifyOTPRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

// UnmarshalJSON lets otp arrive as a number.
func (r *VerifyOTPRequest) UnmarshalJSON(data []byte) error {
	var raw struct {
		Email string `json:"email"`
		OTP   any    `json:"otp"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	r.Email = raw.Email
	switch v := raw.OTP.(type) {
	case string:
		r.OTP = v
	case float64:
		r.OTP = strconv.FormatInt(int64(v), 10)
	default:
		r.OTP = ""
	}
	return nil
}

type ResetPasswordRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SaveProfileRequest is the nested profile document as the client submits it.
// Numeric fields are loosely typed on the wire and coerced by the normalizer.
type SaveProfileRequest struct {
	OriginalEmail  string                `json:"originalEmail"`
	Email          string                `json:"email"`
	FirstName      string                `json:"firstname"`
	LastName       string                `json:"lastname"`
	Phone          string                `json:"phone"`
	LinkedIn       string                `json:"linkedin"`
	City           string                `json:"city"`
	Skills         []string              `json:"skills"`
	Certifications []any                 `json:"certifications"`
	WorkExperience []WorkExperienceInput `json:"workExperience"`
	Education      []EducationInput      `json:"education"`
}

type WorkExperienceInput struct {
	Company           string `json:"company"`
	Position          string `json:"position"`
	YearsOfExperience any    `json:"yearsOfExperience"`
	Responsibilities  string `json:"responsibilities"`
}

type EducationInput struct {
	Degree      string `json:"degree"`
	Institution string `json:"institution"`
	GPA         any    `json:"gpa"`
	Field       string `json:"field"`
	EndYear     any    `json:"endYear"`
}

// JobRequest covers createJob and editJob. Email falls back to originalEmail.
type JobRequest struct {
	JobID         FlexInt64 `json:"job_id"`
	Title         string    `json:"job_title" validate:"max=255"`
	Company       string    `json:"company_name" validate:"max=255"`
	Location      string    `json:"job_location" validate:"max=255"`
	Type          string    `json:"job_type" validate:"max=100"`
	Status        string    `json:"job_status" validate:"max=50"`
	DateApplied   string    `json:"date_applied"`
	Link          string    `json:"job_link"`
	Description   string    `json:"job_description"`
	Email         string    `json:"email"`
	OriginalEmail string    `json:"originalEmail"`
}

// OwnerEmail returns the address that identifies the applicant.
func (r *JobRequest) OwnerEmail() string {
	if r.OriginalEmail != "" {
		return r.OriginalEmail
	}
	return r.Email
}

type DeleteJobRequest struct {
	JobID FlexInt64 `json:"jobs_id"`
	Email string    `json:"email"`
}

type JobSearchQuery struct {
	Keyword string `query:"keyword"`
	Page    int    `query:"page"`
	Country string `query:"country"`
}

type JoobleSearchQuery struct {
	Keyword  string `query:"keyword"`
	Location string `query:"location"`
}

// AdzunaSearchResponse keeps the raw results under jobs_data for existing clients.
type AdzunaSearchResponse struct {
	JobsData   []map[string]any `json:"jobs_data"`
	TotalPages int              `json:"total_pages"`
	Listings   any              `json:"listings"`
}

type JoobleSearchResponse struct {
	TotalJobs int `json:"total_jobs"`
	Jobs      any `json:"jobs"`
}

type GenerateDocumentRequest struct {
	JobDescription string `json:"job_description"`
	Email          string `json:"email"`
}
