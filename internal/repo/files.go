package repo

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/ubiquity-os/dao-analytics/internal/domain"
)

// Artifact filenames are a contract with the dashboard; do not rename.
const (
	treeFile        = "complete-analytics.json"
	untrackedFile   = "prsWithoutTrackedIssues.json"
	multiLinkedFile = "prsWithMultipleLinkedIssues.json"
	graphFile       = "interaction-graph.json"
	recordsDir      = "analytics"
)

// RunInfo is the bookkeeping record of one analysis run.
type RunInfo struct {
	StartedAt     time.Time `json:"startedAt"`
	FinishedAt    time.Time `json:"finishedAt"`
	Orgs          []string  `json:"orgs"`
	ReposAnalyzed int       `json:"reposAnalyzed"`
	PrsAnalyzed   int       `json:"prsAnalyzed"`
	Untracked     int       `json:"untracked"`
	MultiLinked   int       `json:"multiLinked"`
	OK            bool      `json:"ok"`
	Error         string    `json:"error,omitempty"`
}

// Repository persists run artifacts to an output directory. A write failure
// is fatal to the run: partial output files would mislead the dashboard.
type Repository struct {
	dir string
	log zerolog.Logger

	mu      sync.Mutex
	running bool
	lastRun *RunInfo
}

func New(dir string, log zerolog.Logger) *Repository {
	return &Repository{dir: dir, log: log}
}

// WriteRecord persists one per-pull-request artifact immediately after it
// is computed, so a crashed run still leaves partial progress behind.
func (r *Repository) WriteRecord(owner, repoName string, prNumber int, rec *domain.Record) error {
	dir := filepath.Join(r.dir, recordsDir, owner, repoName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("repo: create %s: %w", dir, err)
	}
	return r.writeJSON(filepath.Join(dir, strconv.Itoa(prNumber)+".json"), rec)
}

func (r *Repository) WriteResultTree(tree domain.ResultTree) error {
	return r.writeJSON(filepath.Join(r.dir, treeFile), tree)
}

func (r *Repository) WriteUntracked(issues []domain.UntrackedIssue) error {
	if issues == nil { issues = []domain.UntrackedIssue{} }
	return r.writeJSON(filepath.Join(r.dir, untrackedFile), issues)
}

func (r *Repository) WriteMultiLinked(issues []domain.MultiLinkedIssue) error {
	if issues == nil { issues = []domain.MultiLinkedIssue{} }
	return r.writeJSON(filepath.Join(r.dir, multiLinkedFile), issues)
}

func (r *Repository) WriteInteractionGraph(edges []domain.InteractionEdge) error {
	if edges == nil { edges = []domain.InteractionEdge{} }
	return r.writeJSON(filepath.Join(r.dir, graphFile), edges)
}

func (r *Repository) writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("repo: marshal %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("repo: write %s: %w", path, err)
	}
	return nil
}

// TryRunLock reports whether the caller may start a run; at most one run is
// in flight per process.
func (r *Repository) TryRunLock() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running { return false }
	r.running = true
	return true
}

func (r *Repository) RunUnlock() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.running = false
}

func (r *Repository) StartJobRun(orgs []string) *RunInfo {
	run := &RunInfo{StartedAt: time.Now().UTC(), Orgs: orgs}
	r.mu.Lock()
	r.lastRun = run
	r.mu.Unlock()
	return run
}

// UpdateRun applies fn to the run record under the repository lock. Every
// RunInfo mutation after StartJobRun must go through here: GetLastRun copies
// the record mid-run and concurrent field writes would race with that copy.
func (r *Repository) UpdateRun(run *RunInfo, fn func(*RunInfo)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fn(run)
}

func (r *Repository) FinishJobRun(run *RunInfo, ok bool, errMsg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	run.FinishedAt = time.Now().UTC()
	run.OK = ok
	run.Error = errMsg
}

// GetLastRun returns a copy of the most recent run record, nil before the
// first run.
func (r *Repository) GetLastRun() *RunInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.lastRun == nil { return nil }
	cp := *r.lastRun
	return &cp
}
