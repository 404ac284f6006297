package pipeline

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"github.com/dgallion1/docstruct/internal/docmodel"
	"github.com/dgallion1/docstruct/internal/extractor"
)

// JobStatus represents the state of a chunking job.
type JobStatus string

const (
	StatusQueued     JobStatus = "queued"
	StatusExtracting JobStatus = "extracting"
	StatusMerging    JobStatus = "merging"
	StatusCompleted  JobStatus = "completed"
	StatusFailed     JobStatus = "failed"
)

// Job tracks the state of a single document chunking run.
type Job struct {
	mu sync.Mutex

	ID string `json:"job_id"`

	Status   JobStatus `json:"status"`
	Phase    string    `json:"phase"`
	Filename string    `json:"filename"`
	Name     string    `json:"name"`

	Options extractor.Options `json:"options"`

	Progress Progress `json:"progress"`

	ContentHash string    `json:"content_hash,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Internal: not serialized.
	fileData []byte
	records  []docmodel.Record
	errors   []string
}

// Progress tracks processing progress.
type Progress struct {
	Pct     float64  `json:"pct"`
	Message string   `json:"message"`
	Tables  int      `json:"tables"`
	Chunks  int      `json:"chunks"`
	Errors  []string `json:"errors"`
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// Cleanup removes expired jobs.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		if now.Sub(job.UpdatedAt) > s.ttl {
			delete(s.jobs, id)
		}
	}
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// SetProgress records a progress checkpoint.
func (j *Job) SetProgress(pct float64, msg string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.Pct = pct
	j.Progress.Message = msg
	j.UpdatedAt = time.Now()
}

// AddError records an error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.Progress.Errors = j.errors
	j.UpdatedAt = time.Now()
}

// SetFileData sets the raw file bytes for processing.
func (j *Job) SetFileData(data []byte) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.fileData = data
}

// FileData returns the raw file bytes.
func (j *Job) FileData() []byte {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.fileData
}

// SetRecords stores the finished output records and updates the counts.
func (j *Job) SetRecords(records []docmodel.Record) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.records = records
	tables, chunks := 0, 0
	for _, r := range records {
		switch r.Type {
		case docmodel.RecordTable:
			tables++
		default:
			chunks++
		}
	}
	j.Progress.Tables = tables
	j.Progress.Chunks = chunks
	j.UpdatedAt = time.Now()
}

// Records returns the finished output records, or nil before completion.
func (j *Job) Records() []docmodel.Record {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.records
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID       string            `json:"job_id"`
	Status   JobStatus         `json:"status"`
	Phase    string            `json:"phase"`
	Filename string            `json:"filename"`
	Name     string            `json:"name"`
	Options  extractor.Options `json:"options"`
	Progress Progress          `json:"progress"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := j.Progress.Errors
	if errs == nil {
		errs = []string{}
	}
	return JobSnapshot{
		ID:       j.ID,
		Status:   j.Status,
		Phase:    j.Phase,
		Filename: j.Filename,
		Name:     j.Name,
		Options:  j.Options,
		Progress: Progress{
			Pct:     j.Progress.Pct,
			Message: j.Progress.Message,
			Tables:  j.Progress.Tables,
			Chunks:  j.Progress.Chunks,
			Errors:  errs,
		},
	}
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}
