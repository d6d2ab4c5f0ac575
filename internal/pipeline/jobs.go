package pipeline

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"github.com/rs/xid"
)

// JobStatus represents the state of a conversion job.
type JobStatus string

const (
	StatusQueued     JobStatus = "queued"
	StatusExtracting JobStatus = "extracting"
	StatusParsing    JobStatus = "parsing"
	StatusWriting    JobStatus = "writing"
	StatusCompleted  JobStatus = "completed"
	StatusCached     JobStatus = "cached"
	StatusFailed     JobStatus = "failed"
)

// Done reports whether the status is terminal.
func (s JobStatus) Done() bool {
	return s == StatusCompleted || s == StatusCached || s == StatusFailed
}

// Job tracks the state of a single document conversion.
type Job struct {
	mu sync.Mutex

	ID       string    `json:"job_id"`
	Status   JobStatus `json:"status"`
	Phase    string    `json:"phase"`
	Filename string    `json:"filename"`

	BOM  bool `json:"bom"`
	Flat bool `json:"flat"`

	Progress Progress `json:"progress"`

	ContentHash string    `json:"content_hash,omitempty"`
	OutDir      string    `json:"-"`
	ZipPath     string    `json:"-"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Internal: not serialized.
	fileData []byte
	errors   []string
}

// Progress tracks conversion output.
type Progress struct {
	Tables      int      `json:"tables"`
	Rows        int      `json:"rows"`
	Diagnostics []string `json:"diagnostics"`
	Errors      []string `json:"errors"`
}

// NewJob returns a queued job for an uploaded file.
func NewJob(filename string, data []byte, bom, flat bool) *Job {
	now := time.Now()
	return &Job{
		ID:        xid.New().String(),
		Status:    StatusQueued,
		Phase:     "queued",
		Filename:  filename,
		BOM:       bom,
		Flat:      flat,
		CreatedAt: now,
		UpdatedAt: now,
		fileData:  data,
	}
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

// Cleanup removes expired jobs and returns them so their output can be released.
func (s *JobStore) Cleanup() []*Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	var expired []*Job
	for id, job := range s.jobs {
		job.mu.Lock()
		updated := job.UpdatedAt
		job.mu.Unlock()
		if now.Sub(updated) > s.ttl {
			delete(s.jobs, id)
			expired = append(expired, job)
		}
	}
	return expired
}

// References reports whether a job still in the store uses the archive.
func (s *JobStore) References(zipPath string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, job := range s.jobs {
		job.mu.Lock()
		same := job.ZipPath == zipPath
		job.mu.Unlock()
		if same {
			return true
		}
	}
	return false
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
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

// AddDiagnostic records a non-fatal parse finding.
func (j *Job) AddDiagnostic(msg string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.Diagnostics = append(j.Progress.Diagnostics, msg)
	j.UpdatedAt = time.Now()
}

// SetOutput records where the job's tables were written.
func (j *Job) SetOutput(res Result) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.OutDir = res.OutDir
	j.ZipPath = res.ZipPath
	j.Progress.Tables = res.Tables
	j.Progress.Rows = res.Rows
	j.UpdatedAt = time.Now()
}

// output returns where the job's files live and the cache key that produced them.
func (j *Job) output() (outDir, zipPath, key string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.OutDir, j.ZipPath, j.ContentHash
}

// Archive returns the zip path once the job has finished successfully.
func (j *Job) Archive() (string, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.Status != StatusCompleted && j.Status != StatusCached {
		return "", false
	}
	return j.ZipPath, j.ZipPath != ""
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

// releaseFileData drops the upload once it has been converted.
func (j *Job) releaseFileData() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.fileData = nil
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID       string    `json:"job_id"`
	Status   JobStatus `json:"status"`
	Phase    string    `json:"phase"`
	Filename string    `json:"filename"`
	BOM      bool      `json:"bom"`
	Flat     bool      `json:"flat"`
	Progress Progress  `json:"progress"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := j.Progress.Errors
	if errs == nil {
		errs = []string{}
	}
	diags := j.Progress.Diagnostics
	if diags == nil {
		diags = []string{}
	}
	return JobSnapshot{
		ID:       j.ID,
		Status:   j.Status,
		Phase:    j.Phase,
		Filename: j.Filename,
		BOM:      j.BOM,
		Flat:     j.Flat,
		Progress: Progress{
			Tables:      j.Progress.Tables,
			Rows:        j.Progress.Rows,
			Diagnostics: append([]string{}, diags...),
			Errors:      append([]string{}, errs...),
		},
	}
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}
