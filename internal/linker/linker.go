package linker

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/ubiquity-os/dao-analytics/internal/domain"
)

// RefClient resolves closing references between issues and pull requests.
type RefClient interface {
	// LinkedPullRequests returns the pull requests whose merge closes the issue.
	LinkedPullRequests(ctx context.Context, owner, repo string, issueNumber int) ([]int, error)
	// ClosingIssues returns the issues the pull request closes.
	ClosingIssues(ctx context.Context, owner, repo string, prNumber int) ([]int, error)
}

// Linkage is the resolved issue<->PR relationship for one repository.
// PRToIssue is single-valued: a pull request closes exactly one tracked
// issue, and when the forge reports several the first reference wins.
type Linkage struct {
	IssueToPRs map[int][]int
	PRToIssue  map[int]int
}

// Result carries the linkage plus the reporting side channels.
type Result struct {
	Linkage     Linkage
	Untracked   []domain.UntrackedIssue
	MultiLinked []domain.MultiLinkedIssue
}

// Link resolves the many-to-many issue/PR relationship in two passes.
//
// Forward: for every issue, query the PRs configured to close it. Reverse:
// for every PR still unmapped, query the issues it closes and take the
// first. Reverse-resolved links populate PRToIssue only and never backfill
// IssueToPRs; the asymmetry is inherited from the source design and
// downstream reports depend on it.
func Link(ctx context.Context, client RefClient, repo domain.Repo, issues []domain.Issue, prs []domain.PullRequest, log zerolog.Logger) Result {
	res := Result{Linkage: Linkage{
		IssueToPRs: map[int][]int{},
		PRToIssue:  map[int]int{},
	}}

	for _, issue := range issues {
		linked, err := client.LinkedPullRequests(ctx, repo.Owner, repo.Name, issue.Number)
		if err != nil {
			log.Error().Err(err).Str("repo", repo.Owner+"/"+repo.Name).Int("issue", issue.Number).Msg("linker: forward lookup failed")
			continue
		}
		if len(linked) == 0 {
			res.Untracked = append(res.Untracked, domain.UntrackedIssue{Owner: repo.Owner, Repo: repo.Name, Issue: issue.Number})
			continue
		}
		for _, pr := range linked {
			res.Linkage.IssueToPRs[issue.Number] = append(res.Linkage.IssueToPRs[issue.Number], pr)
			if _, ok := res.Linkage.PRToIssue[pr]; !ok { res.Linkage.PRToIssue[pr] = issue.Number }
		}
		if len(linked) > 1 {
			res.MultiLinked = append(res.MultiLinked, domain.MultiLinkedIssue{Owner: repo.Owner, Repo: repo.Name, Issue: issue.Number, LinkedPrs: linked})
		}
	}

	for _, pr := range prs {
		if _, ok := res.Linkage.PRToIssue[pr.Number]; ok { continue }
		closing, err := client.ClosingIssues(ctx, repo.Owner, repo.Name, pr.Number)
		if err != nil {
			log.Error().Err(err).Str("repo", repo.Owner+"/"+repo.Name).Int("pr", pr.Number).Msg("linker: reverse lookup failed")
			continue
		}
		if len(closing) == 0 {
			log.Debug().Str("repo", repo.Owner+"/"+repo.Name).Int("pr", pr.Number).Msg("linker: no linked issue found")
			continue
		}
		res.Linkage.PRToIssue[pr.Number] = closing[0]
	}

	return res
}
