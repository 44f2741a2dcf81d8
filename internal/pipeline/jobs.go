package pipeline

import (
	"sync"
	"time"
)

// JobStatus represents the state of a book ingestion job.
type JobStatus string

const (
	StatusQueued      JobStatus = "queued"
	StatusStructuring JobStatus = "structuring"
	StatusPersisting  JobStatus = "persisting"
	StatusIndexing    JobStatus = "indexing"
	StatusCompleted   JobStatus = "completed"
	StatusPartial     JobStatus = "partial"
	StatusFailed      JobStatus = "failed"
)

// Job tracks one document's ingestion. Structuring is strictly
// sequential per document; the mutex only guards status reads from the
// API against the single processing goroutine.
type Job struct {
	mu sync.Mutex

	ID    string `json:"job_id"`
	Title string `json:"title"`

	Status JobStatus `json:"status"`
	Phase  string    `json:"phase"`

	BookID   int64    `json:"book_id,omitempty"`
	Progress Progress `json:"progress"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Internal: not serialized.
	path     string
	filename string
	errors   []string
}

// Progress tracks per-phase counters.
type Progress struct {
	TotalPages     int      `json:"total_pages"`
	PagesProcessed int      `json:"pages_processed"`
	Chapters       int      `json:"chapters"`
	Sections       int      `json:"sections"`
	Blocks         int      `json:"blocks"`
	Questions      int      `json:"questions"`
	ChunksIndexed  int      `json:"chunks_indexed"`
	NewEmbeddings  int      `json:"new_embeddings"`
	Errors         []string `json:"errors"`
}

// NewJob builds a queued job for a document on disk.
func NewJob(id, path, filename, title string) *Job {
	now := time.Now()
	return &Job{
		ID:        id,
		Title:     title,
		Status:    StatusQueued,
		Phase:     "queued",
		CreatedAt: now,
		UpdatedAt: now,
		path:      path,
		filename:  filename,
	}
}

// Path returns the on-disk location of the uploaded document.
func (j *Job) Path() string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.path
}

// Filename returns the original upload filename.
func (j *Job) Filename() string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.filename
}

// updatedAt reads the last-touched time under the job's own lock so the
// store's cleanup does not race with status updates.
func (j *Job) updatedAt() time.Time {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.UpdatedAt
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// SetBookID records the persisted book row.
func (j *Job) SetBookID(id int64) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.BookID = id
	j.UpdatedAt = time.Now()
}

// AddError records a per-unit recoverable error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.Progress.Errors = j.errors
	j.UpdatedAt = time.Now()
}

// ErrorCount returns how many per-unit errors were recorded.
func (j *Job) ErrorCount() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return len(j.errors)
}

// SetTotalPages records the page count discovered at open time.
func (j *Job) SetTotalPages(n int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.TotalPages = n
	j.UpdatedAt = time.Now()
}

// IncrPagesProcessed bumps the page counter.
func (j *Job) IncrPagesProcessed() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.PagesProcessed++
	j.UpdatedAt = time.Now()
}

// AddStructure records persisted structure counts.
func (j *Job) AddStructure(chapters, sections, blocks, questions int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.Chapters += chapters
	j.Progress.Sections += sections
	j.Progress.Blocks += blocks
	j.Progress.Questions += questions
	j.UpdatedAt = time.Now()
}

// AddIndexed records chunk indexing counts.
func (j *Job) AddIndexed(processed, generated int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.ChunksIndexed += processed
	j.Progress.NewEmbeddings += generated
	j.UpdatedAt = time.Now()
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID       string    `json:"job_id"`
	Title    string    `json:"title"`
	Status   JobStatus `json:"status"`
	Phase    string    `json:"phase"`
	BookID   int64     `json:"book_id,omitempty"`
	Progress Progress  `json:"progress"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	p := j.Progress
	p.Errors = make([]string, len(j.errors))
	copy(p.Errors, j.errors)
	return JobSnapshot{
		ID:        j.ID,
		Title:     j.Title,
		Status:    j.Status,
		Phase:     j.Phase,
		BookID:    j.BookID,
		Progress:  p,
		CreatedAt: j.CreatedAt,
		UpdatedAt: j.UpdatedAt,
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

// Cleanup removes expired jobs.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		if now.Sub(job.updatedAt()) > s.ttl {
			delete(s.jobs, id)
		}
	}
}
