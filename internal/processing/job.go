package processing

import (
	"slices"
	"time"
)

type JobType string

const (
	JobDaily  JobType = "daily"
	JobWeekly JobType = "weekly"
	JobManual JobType = "manual"
)

func (t JobType) Valid() bool {
	switch t {
	case JobDaily, JobWeekly, JobManual:
		return true
	default:
		return false
	}
}

type JobStatus string

const (
	JobPending   JobStatus = "pending"
	JobRunning   JobStatus = "running"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
)

// StepResult is the outcome of one generator for one user.
type StepResult struct {
	Step     string        `json:"step"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration"`
}

// UserResult is the outcome of the whole pipeline for one user. Success means every
// step succeeded.
type UserResult struct {
	UserID    string        `json:"userId"`
	Success   bool          `json:"success"`
	Error     string        `json:"error,omitempty"`
	Steps     []StepResult  `json:"steps"`
	Duration  time.Duration `json:"duration"`
	Timestamp time.Time     `json:"timestamp"`
}

type Job struct {
	ID          string       `json:"jobId"`
	Type        JobType      `json:"type"`
	Status      JobStatus    `json:"status"`
	StartedAt   time.Time    `json:"startedAt"`
	CompletedAt *time.Time   `json:"completedAt,omitempty"`
	Results     []UserResult `json:"results"`
	Error       string       `json:"error,omitempty"`
}

// Clone returns a copy that shares no slices with j.
func (j *Job) Clone() *Job {
	c := *j
	if j.CompletedAt != nil {
		completed := *j.CompletedAt
		c.CompletedAt = &completed
	}

	c.Results = make([]UserResult, len(j.Results))
	for i, r := range j.Results {
		r.Steps = slices.Clone(r.Steps)
		c.Results[i] = r
	}

	return &c
}

// Statistics summarizes recent jobs.
type Statistics struct {
	TotalJobs           int           `json:"totalJobs"`
	SuccessfulJobs      int           `json:"successfulJobs"`
	FailedJobs          int           `json:"failedJobs"`
	AverageDuration     time.Duration `json:"averageDuration"`
	TotalUsersProcessed int           `json:"totalUsersProcessed"`
}
