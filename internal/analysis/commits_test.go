package analysis

import (
	"testing"
	"time"

	"github.com/ubiquity-os/dao-analytics/internal/domain"
)

func ts(s string) *time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil { panic(err) }
	return &t
}

func TestAnalyzeCommits_TenDayWindow(t *testing.T) {
	now := time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC)
	pr := &domain.PullRequest{
		Number:    1,
		CreatedAt: ts("2024-01-01T00:00:00Z"),
		ClosedAt:  ts("2024-01-10T00:00:00Z"),
	}
	commits := []domain.Commit{
		{SHA: "a", AuthorLogin: "alice", AuthoredAt: ts("2024-01-01T00:00:00Z"), Additions: 10, Deletions: 2},
		{SHA: "b", AuthorLogin: "alice", AuthoredAt: ts("2024-01-05T00:00:00Z"), Additions: 5, Deletions: 1},
		{SHA: "c", AuthorLogin: "bob", AuthoredAt: ts("2024-01-10T00:00:00Z"), Additions: 1, Deletions: 0},
	}

	out := AnalyzeCommits(pr, commits, now)

	if out.TotalCommits != 3 { t.Fatalf("expected 3 commits, got %d", out.TotalCommits) }
	if out.LinesAdded != 16 || out.LinesRemoved != 3 {
		t.Fatalf("unexpected line counts: +%d -%d", out.LinesAdded, out.LinesRemoved)
	}
	if out.CommitsPerContributor["alice"] != 2 || out.CommitsPerContributor["bob"] != 1 {
		t.Fatalf("unexpected per-contributor counts: %#v", out.CommitsPerContributor)
	}

	nineDays := int64(9 * 24 * time.Hour / time.Millisecond)
	if out.TimeFromFirstCommitToLastCommit != nineDays {
		t.Fatalf("expected first-to-last %d, got %d", nineDays, out.TimeFromFirstCommitToLastCommit)
	}
	if out.TimeFromLastCommitToClose != 0 {
		t.Fatalf("expected zero last-to-close, got %d", out.TimeFromLastCommitToClose)
	}
	if out.AverageTimeBetweenCommits != nineDays/2 {
		t.Fatalf("expected mean gap %d, got %d", nineDays/2, out.AverageTimeBetweenCommits)
	}

	// Closed PR spans 10 inclusive days.
	if out.AverageCommitsPerDay != 0.3 {
		t.Fatalf("expected 0.3 commits/day, got %v", out.AverageCommitsPerDay)
	}
	if out.AverageCommitsPerWeek != out.AverageCommitsPerDay*7 {
		t.Fatalf("per-week not derived from per-day: %v", out.AverageCommitsPerWeek)
	}
	if out.AverageCommitsPerMonth != out.AverageCommitsPerDay*(365.0/12.0) {
		t.Fatalf("per-month not derived from per-day: %v", out.AverageCommitsPerMonth)
	}

	if len(out.TotalCommitsPerDay) != 3 { t.Fatalf("expected 3 day buckets, got %#v", out.TotalCommitsPerDay) }
	if out.TotalCommitsPerWeek["2024-W1"] != 2 || out.TotalCommitsPerWeek["2024-W2"] != 1 {
		t.Fatalf("unexpected week buckets: %#v", out.TotalCommitsPerWeek)
	}
	if out.TotalCommitsPerMonth["2024-01"] != 3 {
		t.Fatalf("unexpected month buckets: %#v", out.TotalCommitsPerMonth)
	}
}

func TestAnalyzeCommits_EmptyListYieldsZeroRecord(t *testing.T) {
	now := time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC)
	out := AnalyzeCommits(&domain.PullRequest{Number: 2, CreatedAt: ts("2024-01-01T00:00:00Z")}, nil, now)

	if out.TotalCommits != 0 || out.AverageCommitsPerDay != 0 {
		t.Fatalf("expected zero record, got %#v", out)
	}
	if out.CommitsPerContributor == nil || out.TotalCommitsPerDay == nil {
		t.Fatalf("expected empty maps, got nil")
	}
	if len(out.CommitsPerContributor) != 0 { t.Fatalf("expected no contributors, got %#v", out.CommitsPerContributor) }
}

func TestAnalyzeCommits_LoginFallsBackToNameThenUnknown(t *testing.T) {
	now := time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC)
	commits := []domain.Commit{
		{SHA: "a", AuthorName: "Alice Example", AuthoredAt: ts("2024-01-01T00:00:00Z")},
		{SHA: "b", AuthoredAt: ts("2024-01-02T00:00:00Z")},
	}
	out := AnalyzeCommits(nil, commits, now)
	if out.CommitsPerContributor["Alice Example"] != 1 || out.CommitsPerContributor["unknown"] != 1 {
		t.Fatalf("unexpected attribution: %#v", out.CommitsPerContributor)
	}
}
