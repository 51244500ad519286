package domain

import (
	"time"
)

// JobID is a unique identifier for a job.
type JobID string

// String returns the string representation of the JobID.
func (id JobID) String() string {
	return string(id)
}

// JobKind selects what an admin job does.
type JobKind string

const (
	// JobKindIngest runs the batch ingestion pipeline followed by a validation sweep.
	JobKindIngest JobKind = "ingest"
	// JobKindSweep validates every pending row.
	JobKindSweep JobKind = "sweep"
	// JobKindRevalidate re-checks every valid row.
	JobKindRevalidate JobKind = "revalidate"
)

// Valid reports whether the kind is known.
func (k JobKind) Valid() bool {
	switch k {
	case JobKindIngest, JobKindSweep, JobKindRevalidate:
		return true
	}
	return false
}

// JobStatus represents the current state of a job.
type JobStatus string

const (
	JobStatusQueued     JobStatus = "queued"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
	JobStatusRetrying   JobStatus = "retrying"
)

// MatrixCell is one (subject, class band) pair of an ingestion matrix.
type MatrixCell struct {
	Subject    string    `json:"subject" yaml:"subject"`
	ClassLevel ClassBand `json:"class_level" yaml:"class_level"`
}

// BuildMatrix returns the cross product of subjects and class levels.
func BuildMatrix(subjects []string, classLevels []ClassBand) []MatrixCell {
	cells := make([]MatrixCell, 0, len(subjects)*len(classLevels))
	for _, s := range subjects {
		for _, c := range classLevels {
			cells = append(cells, MatrixCell{Subject: NormalizeTag(s), ClassLevel: c})
		}
	}
	return cells
}

// IngestionReport summarizes one ingestion or sweep run.
type IngestionReport struct {
	RunID          string        `json:"run_id"`
	Kind           JobKind       `json:"kind"`
	Searches       int           `json:"searches"`
	SearchFailures int           `json:"search_failures"`
	Candidates     int           `json:"candidates"`
	Duplicates     int           `json:"duplicates"`
	Added          int           `json:"added"`
	Validated      int           `json:"validated"`
	Failed         int           `json:"failed"`
	Inconclusive   int           `json:"inconclusive"`
	Downgraded     int           `json:"downgraded"`
	Duration       time.Duration `json:"duration"`
}

// Job represents an admin-triggered maintenance job in the queue.
type Job struct {
	ID         JobID
	Kind       JobKind
	Matrix     []MatrixCell
	Status     JobStatus
	Attempts   int
	MaxRetries int
	LastError  string
	Report     *IngestionReport
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewJob creates a new queued job.
func NewJob(id JobID, kind JobKind, maxRetries int) *Job {
	now := time.Now()
	return &Job{
		ID:         id,
		Kind:       kind,
		Status:     JobStatusQueued,
		Attempts:   0,
		MaxRetries: maxRetries,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// CanRetry returns true if the job can be retried.
func (j *Job) CanRetry() bool {
	return j.Attempts < j.MaxRetries
}

// MarkProcessing updates the job status to processing.
func (j *Job) MarkProcessing() {
	j.Status = JobStatusProcessing
	j.UpdatedAt = time.Now()
}

// MarkCompleted updates the job status to completed and attaches the run report.
func (j *Job) MarkCompleted(report *IngestionReport) {
	j.Status = JobStatusCompleted
	j.Report = report
	j.UpdatedAt = time.Now()
}

// MarkFailed updates the job status to failed with an error message.
func (j *Job) MarkFailed(err string) {
	j.Attempts++
	j.LastError = err
	j.UpdatedAt = time.Now()

	if j.CanRetry() {
		j.Status = JobStatusRetrying
	} else {
		j.Status = JobStatusFailed
	}
}
