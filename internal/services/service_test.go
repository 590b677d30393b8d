package services

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/ubiquity-os/dao-analytics/internal/config"
	"github.com/ubiquity-os/dao-analytics/internal/domain"
	"github.com/ubiquity-os/dao-analytics/internal/repo"
)

func tsp(s string) *time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil { panic(err) }
	return &t
}

// fakeForge serves one org with one repo: issue 42 closed by PR 10, and
// PR 99 with no tracked issue.
type fakeForge struct{}

func (fakeForge) OrgRepos(_ context.Context, org string) []domain.Repo {
	if org != "acme" { return nil }
	return []domain.Repo{{Owner: "acme", Name: "widgets"}}
}

func (fakeForge) RepoPullRequests(_ context.Context, _, _ string) []domain.PullRequest {
	return []domain.PullRequest{
		{Number: 10, Author: "carol", CreatedAt: tsp("2024-01-06T00:00:00Z"), ClosedAt: tsp("2024-01-11T00:00:00Z")},
		{Number: 99, Author: "dave", CreatedAt: tsp("2024-01-06T00:00:00Z")},
	}
}

func (fakeForge) RepoIssues(_ context.Context, _, _ string) []domain.Issue {
	return []domain.Issue{{Number: 42, CreatedAt: tsp("2024-01-01T00:00:00Z"), ClosedAt: tsp("2024-01-11T00:00:00Z")}}
}

func (fakeForge) Issue(_ context.Context, _, _ string, number int) *domain.Issue {
	return &domain.Issue{Number: number, Body: "great feature", CreatedAt: tsp("2024-01-01T00:00:00Z"), ClosedAt: tsp("2024-01-11T00:00:00Z")}
}

func (fakeForge) PullRequest(_ context.Context, _, _ string, number int) *domain.PullRequest {
	return &domain.PullRequest{Number: number, Author: "carol", CreatedAt: tsp("2024-01-06T00:00:00Z"), ClosedAt: tsp("2024-01-11T00:00:00Z")}
}

func (fakeForge) IssueComments(_ context.Context, _, _ string, _ int) []domain.IssueComment {
	return []domain.IssueComment{{ID: 1, Author: "alice", CreatedAt: tsp("2024-01-07T00:00:00Z")}}
}

func (fakeForge) IssueEvents(_ context.Context, _, _ string, _ int) []domain.IssueEvent {
	return []domain.IssueEvent{{Event: "assigned", Actor: "carol", CreatedAt: tsp("2024-01-02T00:00:00Z")}}
}

func (fakeForge) PullRequestReviews(_ context.Context, _, _ string, _ int) []domain.Review {
	return []domain.Review{{ID: 1, Author: "alice", SubmittedAt: tsp("2024-01-08T00:00:00Z")}}
}

func (fakeForge) PullRequestReviewComments(_ context.Context, _, _ string, _ int) []domain.ReviewComment {
	return nil
}

func (fakeForge) PullRequestCommits(_ context.Context, _, _ string, _ int) []domain.Commit {
	return []domain.Commit{{SHA: "a", AuthorLogin: "carol", AuthoredAt: tsp("2024-01-07T00:00:00Z"), Additions: 3, Deletions: 1}}
}

func (fakeForge) PullRequestFiles(_ context.Context, _, _ string, _ int) []domain.CommitFile {
	return []domain.CommitFile{{Filename: "main.go", Additions: 3, Deletions: 1}}
}

func (fakeForge) LinkedPullRequests(_ context.Context, _, _ string, issueNumber int) ([]int, error) {
	if issueNumber == 42 { return []int{10}, nil }
	return nil, nil
}

func (fakeForge) ClosingIssues(_ context.Context, _, _ string, _ int) ([]int, error) {
	return nil, nil
}

func testConfig() config.Config {
	return config.Config{
		GithubOrgs:   []string{"acme"},
		WorkersRepos: 2,
		WorkersPRs:   2,
		HTTPTimeout:  time.Second,
	}
}

func TestRunAnalysis_EndToEnd(t *testing.T) {
	dir := t.TempDir()
	r := repo.New(dir, zerolog.Nop())
	svc := New(testConfig(), zerolog.Nop(), r, fakeForge{}, nil, nil)

	if err := svc.RunAnalysis(context.Background()); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	// The linked PR produced a record; the unlinked one did not.
	if _, err := os.Stat(filepath.Join(dir, "analytics", "acme", "widgets", "10.json")); err != nil {
		t.Fatalf("expected record for PR 10: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "analytics", "acme", "widgets", "99.json")); err == nil {
		t.Fatalf("unlinked PR 99 must not produce a record")
	}

	data, err := os.ReadFile(filepath.Join(dir, "complete-analytics.json"))
	if err != nil { t.Fatalf("expected result tree: %v", err) }
	var tree map[string]map[string]map[string]*domain.Record
	if err := json.Unmarshal(data, &tree); err != nil { t.Fatalf("tree not valid JSON: %v", err) }
	rec := tree["acme"]["widgets"]["10"]
	if rec == nil { t.Fatalf("expected tree entry for acme/widgets/10: %#v", tree) }
	if !rec.HasLinkedPr || rec.HasMultipleLinkedPrs { t.Fatalf("unexpected linkage flags: %#v", rec) }
	if rec.CommitAnalytics.TotalCommits != 1 { t.Fatalf("unexpected commit aggregate: %#v", rec.CommitAnalytics) }

	for _, name := range []string{"prsWithoutTrackedIssues.json", "prsWithMultipleLinkedIssues.json", "interaction-graph.json"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Fatalf("expected artifact %s: %v", name, err)
		}
	}

	// The interaction graph recorded alice engaging on carol's PR.
	data, err = os.ReadFile(filepath.Join(dir, "interaction-graph.json"))
	if err != nil { t.Fatalf("read graph: %v", err) }
	var edges []domain.InteractionEdge
	if err := json.Unmarshal(data, &edges); err != nil { t.Fatalf("graph not valid JSON: %v", err) }
	if len(edges) != 1 || edges[0].Author != "carol" || edges[0].Participants[0] != "alice" {
		t.Fatalf("unexpected graph: %#v", edges)
	}

	run := svc.GetLastRun()
	if run == nil || !run.OK { t.Fatalf("expected successful run record: %#v", run) }
	if run.PrsAnalyzed != 1 || run.ReposAnalyzed != 1 { t.Fatalf("unexpected run counters: %#v", run) }
}

// slowForge widens the run window so reads of the run record overlap the
// orchestrator's bookkeeping writes.
type slowForge struct{ fakeForge }

func (f slowForge) OrgRepos(ctx context.Context, org string) []domain.Repo {
	time.Sleep(5 * time.Millisecond)
	return f.fakeForge.OrgRepos(ctx, org)
}

func (f slowForge) PullRequest(ctx context.Context, owner, repoName string, number int) *domain.PullRequest {
	time.Sleep(5 * time.Millisecond)
	return f.fakeForge.PullRequest(ctx, owner, repoName, number)
}

func TestGetLastRun_SafeWhileRunInFlight(t *testing.T) {
	r := repo.New(t.TempDir(), zerolog.Nop())
	svc := New(testConfig(), zerolog.Nop(), r, slowForge{}, nil, nil)

	done := make(chan error, 1)
	go func() { done <- svc.RunAnalysis(context.Background()) }()

	deadline := time.After(10 * time.Second)
	for {
		select {
		case err := <-done:
			if err != nil { t.Fatalf("run failed: %v", err) }
			run := svc.GetLastRun()
			if run == nil || !run.OK || run.PrsAnalyzed != 1 { t.Fatalf("unexpected final run: %#v", run) }
			return
		case <-deadline:
			t.Fatalf("run did not finish")
		default:
			_ = svc.GetLastRun()
			time.Sleep(time.Millisecond)
		}
	}
}

func TestRunAnalysis_RejectsOverlappingRuns(t *testing.T) {
	r := repo.New(t.TempDir(), zerolog.Nop())
	svc := New(testConfig(), zerolog.Nop(), r, fakeForge{}, nil, nil)

	if !r.TryRunLock() { t.Fatalf("setup lock failed") }
	defer r.RunUnlock()

	if err := svc.RunAnalysis(context.Background()); !errors.Is(err, ErrRunInProgress) {
		t.Fatalf("expected ErrRunInProgress, got %v", err)
	}
}
