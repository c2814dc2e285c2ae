package models

import (
	"strings"
	"time"
)

// JobStatus is the server-reported lifecycle stage of a cracking job.
//
//	queued -> processing -> completed | failed
//
// Queued and failed jobs may additionally be deleted by their owner.
type JobStatus string

const (
	JobStatusQueued     JobStatus = "queued"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// JobStatuses lists every status in lifecycle order.
var JobStatuses = []JobStatus{
	JobStatusQueued,
	JobStatusProcessing,
	JobStatusCompleted,
	JobStatusFailed,
}

// Valid reports whether s is one of the four known statuses.
func (s JobStatus) Valid() bool {
	switch s {
	case JobStatusQueued, JobStatusProcessing, JobStatusCompleted, JobStatusFailed:
		return true
	}
	return false
}

// Terminal reports whether the server will not move the job any further.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// CanDelete is the single rule deciding whether a job may be deleted by its
// owner. Presentation code must call it rather than restating the rule.
func CanDelete(s JobStatus) bool {
	return s == JobStatusQueued || s == JobStatusFailed
}

// HashType names the scheme of a submitted hash.
type HashType string

// HashTypeAuto asks the server to detect the type; it is never sent on the wire.
const HashTypeAuto HashType = "auto"

const (
	HashTypeMD5     HashType = "md5"
	HashTypeSHA1    HashType = "sha1"
	HashTypeSHA256  HashType = "sha256"
	HashTypeBcrypt  HashType = "bcrypt"
	HashTypeUnknown HashType = "unknown"
)

// SubmittableHashTypes are the values accepted by the job submission form.
var SubmittableHashTypes = []HashType{
	HashTypeAuto,
	HashTypeMD5,
	HashTypeSHA1,
	HashTypeSHA256,
	HashTypeBcrypt,
}

// ParseHashType maps user input to a submittable type. The empty string is
// treated as auto-detect.
func ParseHashType(s string) (HashType, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return HashTypeAuto, true
	}
	for _, t := range SubmittableHashTypes {
		if string(t) == s {
			return t, true
		}
	}
	return "", false
}

// DetectHashType guesses the scheme of value the same way the server's
// auto-detection does. It is a display hint only.
func DetectHashType(value string) HashType {
	value = strings.TrimSpace(value)
	switch {
	case strings.HasPrefix(value, "$2y$"), strings.HasPrefix(value, "$2b$"):
		return HashTypeBcrypt
	case len(value) == 32:
		return HashTypeMD5
	case len(value) == 40:
		return HashTypeSHA1
	case len(value) == 64:
		return HashTypeSHA256
	default:
		return HashTypeUnknown
	}
}

// Job is one hash-cracking request as last observed from the server.
// Result is set only when Status is completed.
type Job struct {
	ID          int64
	UserID      int64
	HashValue   string
	HashType    HashType
	Status      JobStatus
	Result      *string
	Attempts    int64
	Priority    int
	CreatedAt   time.Time
	StartedAt   *time.Time
	CompletedAt *time.Time
}

// JobPage is one page of the caller's jobs, newest first.
type JobPage struct {
	Jobs       []Job
	Page       int
	PerPage    int
	Total      int
	TotalPages int
}

// Contains reports whether a job with the given id is on the page.
func (p JobPage) Contains(id int64) bool {
	for _, j := range p.Jobs {
		if j.ID == id {
			return true
		}
	}
	return false
}
