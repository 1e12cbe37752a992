package domain

import "time"

type DocumentKind string

const (
	DocumentCoverLetter DocumentKind = "cover_letter"
	DocumentResume      DocumentKind = "resume"
)

// GeneratedDocument is an AI draft kept for later reference.
type GeneratedDocument struct {
	ID             string       `json:"id" bson:"id"`
	Email          string       `json:"email" bson:"email"`
	Kind           DocumentKind `json:"kind" bson:"kind"`
	Company        string       `json:"company,omitempty" bson:"company,omitempty"`
	JobDescription string       `json:"job_description" bson:"job_description"`
	Content        string       `json:"content" bson:"content"`
	Model          string       `json:"model" bson:"model"`
	CreatedAt      time.Time    `json:"created_at" bson:"created_at"`
}

// GenerationRequest is one chat completion: a system instruction and a user prompt.
type GenerationRequest struct {
	System    string
	Prompt    string
	MaxTokens int
}
