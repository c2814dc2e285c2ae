package models

import "time"

// UserStats is the server-side statistics record of the current user.
type UserStats struct {
	TotalJobs          int64
	SuccessfulCracks   int64
	FailedAttempts     int64
	TotalHashesCracked int64
	TotalAttempts      int64
	LastJobDate        *time.Time
	SuccessRate        float64
	RecentJobs         []Job
}

// StatusSummary counts jobs per status.
type StatusSummary struct {
	Total   int
	Cracked int
	ByState map[JobStatus]int
}

// Summarize derives per-status counts from a job collection. Cracked counts
// completed jobs that carry a recovered plaintext.
func Summarize(jobs []Job) StatusSummary {
	s := StatusSummary{ByState: make(map[JobStatus]int, len(JobStatuses))}
	for _, st := range JobStatuses {
		s.ByState[st] = 0
	}
	for _, j := range jobs {
		s.Total++
		s.ByState[j.Status]++
		if j.Status == JobStatusCompleted && j.Result != nil {
			s.Cracked++
		}
	}
	return s
}

// DailyCount is the number of jobs submitted on one calendar day.
type DailyCount struct {
	Date  time.Time
	Count int64
}

// Dashboard is the chart data of the current user: the statistics record,
// job counts per status and per hash type, and submissions per day over the
// last thirty days.
type Dashboard struct {
	Stats      UserStats
	ByStatus   map[JobStatus]int64
	ByHashType map[HashType]int64
	JobsPerDay []DailyCount
}
