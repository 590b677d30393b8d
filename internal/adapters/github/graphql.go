package github

import (
	"context"

	"github.com/shurcooL/githubv4"
)

// The closing-reference relationship between issues and pull requests is
// only exposed on the GraphQL surface.

// LinkedPullRequests returns the numbers of pull requests whose merge is
// configured to close the issue, in forge order.
func (c *Client) LinkedPullRequests(ctx context.Context, owner, repo string, issueNumber int) ([]int, error) {
	var q struct {
		Repository struct {
			Issue struct {
				ClosedByPullRequestsReferences struct {
					Nodes []struct {
						Number githubv4.Int
					}
				} `graphql:"closedByPullRequestsReferences(first: 100, includeClosedPrs: true)"`
			} `graphql:"issue(number: $issue)"`
		} `graphql:"repository(owner: $owner, name: $name)"`
	}
	vars := map[string]any{
		"owner": githubv4.String(owner),
		"name":  githubv4.String(repo),
		"issue": githubv4.Int(issueNumber),
	}
	c.checkQuota(ctx)
	cctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	if err := c.gql.Query(cctx, &q, vars); err != nil { return nil, err }

	nodes := q.Repository.Issue.ClosedByPullRequestsReferences.Nodes
	out := make([]int, 0, len(nodes))
	for _, n := range nodes { out = append(out, int(n.Number)) }
	return out, nil
}

// ClosingIssues returns the numbers of issues the pull request closes, in
// forge order.
func (c *Client) ClosingIssues(ctx context.Context, owner, repo string, prNumber int) ([]int, error) {
	var q struct {
		Repository struct {
			PullRequest struct {
				ClosingIssuesReferences struct {
					Nodes []struct {
						Number githubv4.Int
					}
				} `graphql:"closingIssuesReferences(first: 100, includeClosed: true)"`
			} `graphql:"pullRequest(number: $pr)"`
		} `graphql:"repository(owner: $owner, name: $name)"`
	}
	vars := map[string]any{
		"owner": githubv4.String(owner),
		"name":  githubv4.String(repo),
		"pr":    githubv4.Int(prNumber),
	}
	c.checkQuota(ctx)
	cctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	if err := c.gql.Query(cctx, &q, vars); err != nil { return nil, err }

	nodes := q.Repository.PullRequest.ClosingIssuesReferences.Nodes
	out := make([]int, 0, len(nodes))
	for _, n := range nodes { out = append(out, int(n.Number)) }
	return out, nil
}
