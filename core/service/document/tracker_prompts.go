package document

import (
	_ "embed"
	"regexp"
	"strings"
	"text/template"
)

const (
	coverLetterSystem    = "You are a helpful AI that writes professional, personalized cover letters."
	coverLetterMaxTokens = 600

	resumeSystem    = "You are a helpful AI that creates professional Resume."
	resumeMaxTokens = 500

	defaultCompany = "the company"
)

//go:embed prompts/cover_letter.tmpl
var coverLetterPromptRaw string

//go:embed prompts/resume.tmpl
var resumePromptRaw string

var (
	coverLetterTemplate = template.Must(template.New("cover_letter").Parse(coverLetterPromptRaw))
	resumeTemplate      = template.Must(template.New("resume").Parse(resumePromptRaw))
)

// companyPattern picks the capitalized phrase after "at", "with" or "within".
var companyPattern = regexp.MustCompile(`\b(?:at|with|within)\s+([A-Z][A-Za-z0-9&., ]+)`)

type coverLetterData struct {
	FullName       string
	City           string
	Email          string
	Phone          string
	Company        string
	JobDescription string
}

type resumeData struct {
	Profile        string
	JobDescription string
}

// extractCompany returns the first company-like phrase in the description.
func extractCompany(jobDescription string) string {
	m := companyPattern.FindStringSubmatch(jobDescription)
	if m == nil {
		return defaultCompany
	}
	if company := strings.TrimSpace(m[1]); company != "" {
		return company
	}
	return defaultCompany
}

func render(t *template.Template, data any) (string, error) {
	var sb strings.Builder
	if err := t.Execute(&sb, data); err != nil {
		return "", err
	}
	return sb.String(), nil
}
