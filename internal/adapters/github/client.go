package github

import (
	"context"
	"errors"
	"time"

	gh "github.com/google/go-github/v62/github"
	"github.com/rs/zerolog"
	"github.com/shurcooL/githubv4"
	"golang.org/x/oauth2"

	"github.com/ubiquity-os/dao-analytics/internal/config"
	"github.com/ubiquity-os/dao-analytics/internal/domain"
)

// quotaLowWater is the remaining-request threshold below which every
// request is preceded by a warning.
const quotaLowWater = 100

// RetryPolicy governs how a rate-limited page is retried. MaxAttempts 0
// means retry forever, the production default.
type RetryPolicy struct {
	Interval    time.Duration
	MaxAttempts int
}

// Client wraps the GitHub REST and GraphQL surfaces behind paginated,
// quota-aware collection. Per-entity failures degrade to empty results so
// one deleted issue cannot fail an entire organization's analysis.
type Client struct {
	rest    *gh.Client
	gql     *githubv4.Client
	log     zerolog.Logger
	retry   RetryPolicy
	timeout time.Duration

	// injectable for tests
	quota func(ctx context.Context) (remaining int, reset time.Time, err error)
	sleep func(d time.Duration)
}

func NewClient(cfg config.Config, log zerolog.Logger) *Client {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.GithubToken})
	tc := oauth2.NewClient(context.Background(), ts)
	rest := gh.NewClient(tc)

	c := &Client{
		rest:    rest,
		gql:     githubv4.NewClient(tc),
		log:     log,
		retry:   RetryPolicy{Interval: cfg.RateRetryEvery, MaxAttempts: cfg.RateRetryMax},
		timeout: cfg.HTTPTimeout,
		sleep:   time.Sleep,
	}
	c.quota = func(ctx context.Context) (int, time.Time, error) {
		limits, _, err := rest.RateLimit.Get(ctx)
		if err != nil { return 0, time.Time{}, err }
		core := limits.GetCore()
		if core == nil { return 0, time.Time{}, errors.New("github: no core rate limit reported") }
		return core.Remaining, core.Reset.Time, nil
	}
	return c
}

// checkQuota inspects the remaining request quota before a request goes
// out. Near exhaustion it warns and proceeds; at zero it suspends the
// calling worker until the reset timestamp plus a one second safety margin.
func (c *Client) checkQuota(ctx context.Context) {
	remaining, reset, err := c.quota(ctx)
	if err != nil {
		c.log.Debug().Err(err).Msg("github: quota check failed")
		return
	}
	if remaining == 0 {
		wait := time.Until(reset) + time.Second
		if wait > 0 {
			c.log.Warn().Time("reset", reset).Dur("wait", wait).Msg("github: rate limit exhausted, sleeping until reset")
			c.sleep(wait)
		}
		return
	}
	if remaining < quotaLowWater {
		c.log.Warn().Int("remaining", remaining).Msg("github: approaching rate limit")
	}
}

// collect paginates a list endpoint until the forge reports no next page,
// accumulating items in request order. A rate-limited page is retried in
// place per the retry policy; any other error aborts the collection.
func collect[T any](ctx context.Context, c *Client, fetch func(ctx context.Context, page int) ([]T, *gh.Response, error)) ([]T, error) {
	var out []T
	page := 0
	attempts := 0
	for {
		c.checkQuota(ctx)
		cctx, cancel := context.WithTimeout(ctx, c.timeout)
		items, resp, err := fetch(cctx, page)
		cancel()
		if err != nil {
			if isRateLimited(err) {
				attempts++
				if c.retry.MaxAttempts > 0 && attempts >= c.retry.MaxAttempts {
					return out, err
				}
				c.log.Warn().Dur("backoff", c.retry.Interval).Int("attempt", attempts).Msg("github: rate limited, waiting before retrying page")
				c.sleep(c.retry.Interval)
				continue
			}
			return out, err
		}
		attempts = 0
		out = append(out, items...)
		if resp == nil || resp.NextPage == 0 { break }
		page = resp.NextPage
	}
	return out, nil
}

func isRateLimited(err error) bool {
	var rle *gh.RateLimitError
	var arle *gh.AbuseRateLimitError
	return errors.As(err, &rle) || errors.As(err, &arle)
}

// OrgRepos lists every repository of an organization.
func (c *Client) OrgRepos(ctx context.Context, org string) []domain.Repo {
	repos, err := collect(ctx, c, func(ctx context.Context, page int) ([]*gh.Repository, *gh.Response, error) {
		return c.rest.Repositories.ListByOrg(ctx, org, &gh.RepositoryListByOrgOptions{
			Type:        "all",
			ListOptions: gh.ListOptions{Page: page, PerPage: 100},
		})
	})
	if err != nil {
		c.log.Error().Err(err).Str("org", org).Msg("github: list org repos failed")
		return nil
	}
	out := make([]domain.Repo, 0, len(repos))
	for _, r := range repos {
		if r.GetOwner().GetLogin() == "" || r.GetName() == "" { continue }
		out = append(out, domain.Repo{Owner: r.GetOwner().GetLogin(), Name: r.GetName()})
	}
	return out
}

// RepoPullRequests lists pull requests of all states.
func (c *Client) RepoPullRequests(ctx context.Context, owner, repo string) []domain.PullRequest {
	prs, err := collect(ctx, c, func(ctx context.Context, page int) ([]*gh.PullRequest, *gh.Response, error) {
		return c.rest.PullRequests.List(ctx, owner, repo, &gh.PullRequestListOptions{
			State:       "all",
			ListOptions: gh.ListOptions{Page: page, PerPage: 100},
		})
	})
	if err != nil {
		c.log.Error().Err(err).Str("repo", owner+"/"+repo).Msg("github: list pull requests failed")
		return nil
	}
	out := make([]domain.PullRequest, 0, len(prs))
	for _, pr := range prs { out = append(out, convertPullRequest(pr)) }
	return out
}

// RepoIssues lists issues of all states. The forge reports pull requests on
// the issue surface too; those are dropped at this boundary.
func (c *Client) RepoIssues(ctx context.Context, owner, repo string) []domain.Issue {
	issues, err := collect(ctx, c, func(ctx context.Context, page int) ([]*gh.Issue, *gh.Response, error) {
		return c.rest.Issues.ListByRepo(ctx, owner, repo, &gh.IssueListByRepoOptions{
			State:       "all",
			ListOptions: gh.ListOptions{Page: page, PerPage: 100},
		})
	})
	if err != nil {
		c.log.Error().Err(err).Str("repo", owner+"/"+repo).Msg("github: list issues failed")
		return nil
	}
	out := make([]domain.Issue, 0, len(issues))
	for _, issue := range issues {
		if issue.IsPullRequest() { continue }
		out = append(out, convertIssue(issue))
	}
	return out
}

// Issue fetches one issue; nil when deleted or inaccessible.
func (c *Client) Issue(ctx context.Context, owner, repo string, number int) *domain.Issue {
	c.checkQuota(ctx)
	cctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	issue, _, err := c.rest.Issues.Get(cctx, owner, repo, number)
	if err != nil {
		c.log.Error().Err(err).Str("repo", owner+"/"+repo).Int("issue", number).Msg("github: get issue failed")
		return nil
	}
	converted := convertIssue(issue)
	return &converted
}

// PullRequest fetches one pull request detail; nil when inaccessible.
func (c *Client) PullRequest(ctx context.Context, owner, repo string, number int) *domain.PullRequest {
	c.checkQuota(ctx)
	cctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	pr, _, err := c.rest.PullRequests.Get(cctx, owner, repo, number)
	if err != nil {
		c.log.Error().Err(err).Str("repo", owner+"/"+repo).Int("pr", number).Msg("github: get pull request failed")
		return nil
	}
	converted := convertPullRequest(pr)
	return &converted
}

func (c *Client) IssueComments(ctx context.Context, owner, repo string, number int) []domain.IssueComment {
	comments, err := collect(ctx, c, func(ctx context.Context, page int) ([]*gh.IssueComment, *gh.Response, error) {
		return c.rest.Issues.ListComments(ctx, owner, repo, number, &gh.IssueListCommentsOptions{
			ListOptions: gh.ListOptions{Page: page, PerPage: 100},
		})
	})
	if err != nil {
		c.log.Error().Err(err).Str("repo", owner+"/"+repo).Int("issue", number).Msg("github: list issue comments failed")
		return nil
	}
	out := make([]domain.IssueComment, 0, len(comments))
	for _, cm := range comments {
		out = append(out, domain.IssueComment{
			ID:        cm.GetID(),
			Author:    cm.GetUser().GetLogin(),
			Body:      cm.GetBody(),
			CreatedAt: timeOf(cm.CreatedAt),
		})
	}
	return out
}

func (c *Client) IssueEvents(ctx context.Context, owner, repo string, number int) []domain.IssueEvent {
	events, err := collect(ctx, c, func(ctx context.Context, page int) ([]*gh.IssueEvent, *gh.Response, error) {
		return c.rest.Issues.ListIssueEvents(ctx, owner, repo, number, &gh.ListOptions{Page: page, PerPage: 100})
	})
	if err != nil {
		c.log.Error().Err(err).Str("repo", owner+"/"+repo).Int("issue", number).Msg("github: list issue events failed")
		return nil
	}
	out := make([]domain.IssueEvent, 0, len(events))
	for _, ev := range events {
		out = append(out, domain.IssueEvent{
			Event:     ev.GetEvent(),
			Actor:     ev.GetActor().GetLogin(),
			CreatedAt: timeOf(ev.CreatedAt),
		})
	}
	return out
}

func (c *Client) PullRequestReviews(ctx context.Context, owner, repo string, number int) []domain.Review {
	reviews, err := collect(ctx, c, func(ctx context.Context, page int) ([]*gh.PullRequestReview, *gh.Response, error) {
		return c.rest.PullRequests.ListReviews(ctx, owner, repo, number, &gh.ListOptions{Page: page, PerPage: 100})
	})
	if err != nil {
		c.log.Error().Err(err).Str("repo", owner+"/"+repo).Int("pr", number).Msg("github: list reviews failed")
		return nil
	}
	out := make([]domain.Review, 0, len(reviews))
	for _, r := range reviews {
		out = append(out, domain.Review{
			ID:          r.GetID(),
			Author:      r.GetUser().GetLogin(),
			State:       r.GetState(),
			Body:        r.GetBody(),
			SubmittedAt: timeOf(r.SubmittedAt),
		})
	}
	return out
}

func (c *Client) PullRequestReviewComments(ctx context.Context, owner, repo string, number int) []domain.ReviewComment {
	comments, err := collect(ctx, c, func(ctx context.Context, page int) ([]*gh.PullRequestComment, *gh.Response, error) {
		return c.rest.PullRequests.ListComments(ctx, owner, repo, number, &gh.PullRequestListCommentsOptions{
			ListOptions: gh.ListOptions{Page: page, PerPage: 100},
		})
	})
	if err != nil {
		c.log.Error().Err(err).Str("repo", owner+"/"+repo).Int("pr", number).Msg("github: list review comments failed")
		return nil
	}
	out := make([]domain.ReviewComment, 0, len(comments))
	for _, cm := range comments {
		out = append(out, domain.ReviewComment{
			ID:        cm.GetID(),
			ReviewID:  cm.GetPullRequestReviewID(),
			InReplyTo: cm.GetInReplyTo(),
			Author:    cm.GetUser().GetLogin(),
			Body:      cm.GetBody(),
			CreatedAt: timeOf(cm.CreatedAt),
		})
	}
	return out
}

func (c *Client) PullRequestCommits(ctx context.Context, owner, repo string, number int) []domain.Commit {
	commits, err := collect(ctx, c, func(ctx context.Context, page int) ([]*gh.RepositoryCommit, *gh.Response, error) {
		return c.rest.PullRequests.ListCommits(ctx, owner, repo, number, &gh.ListOptions{Page: page, PerPage: 100})
	})
	if err != nil {
		c.log.Error().Err(err).Str("repo", owner+"/"+repo).Int("pr", number).Msg("github: list commits failed")
		return nil
	}
	out := make([]domain.Commit, 0, len(commits))
	for _, rc := range commits {
		commit := domain.Commit{
			SHA:         rc.GetSHA(),
			AuthorLogin: rc.GetAuthor().GetLogin(),
		}
		if author := rc.GetCommit().GetAuthor(); author != nil {
			commit.AuthorName = author.GetName()
			commit.AuthoredAt = timeOf(author.Date)
		}
		if stats := rc.GetStats(); stats != nil {
			commit.Additions = stats.GetAdditions()
			commit.Deletions = stats.GetDeletions()
		}
		out = append(out, commit)
	}
	return out
}

func (c *Client) PullRequestFiles(ctx context.Context, owner, repo string, number int) []domain.CommitFile {
	files, err := collect(ctx, c, func(ctx context.Context, page int) ([]*gh.CommitFile, *gh.Response, error) {
		return c.rest.PullRequests.ListFiles(ctx, owner, repo, number, &gh.ListOptions{Page: page, PerPage: 100})
	})
	if err != nil {
		c.log.Error().Err(err).Str("repo", owner+"/"+repo).Int("pr", number).Msg("github: list files failed")
		return nil
	}
	out := make([]domain.CommitFile, 0, len(files))
	for _, f := range files {
		out = append(out, domain.CommitFile{
			Filename:  f.GetFilename(),
			Additions: f.GetAdditions(),
			Deletions: f.GetDeletions(),
		})
	}
	return out
}

func convertPullRequest(pr *gh.PullRequest) domain.PullRequest {
	out := domain.PullRequest{
		Number:    pr.GetNumber(),
		Title:     pr.GetTitle(),
		Body:      pr.GetBody(),
		Author:    pr.GetUser().GetLogin(),
		State:     pr.GetState(),
		Draft:     pr.GetDraft(),
		CreatedAt: timeOf(pr.CreatedAt),
		MergedAt:  timeOf(pr.MergedAt),
		ClosedAt:  timeOf(pr.ClosedAt),
	}
	for _, u := range pr.RequestedReviewers {
		if u.GetLogin() != "" { out.RequestedReviewers = append(out.RequestedReviewers, u.GetLogin()) }
	}
	return out
}

func convertIssue(issue *gh.Issue) domain.Issue {
	out := domain.Issue{
		Number:    issue.GetNumber(),
		Title:     issue.GetTitle(),
		Body:      issue.GetBody(),
		Author:    issue.GetUser().GetLogin(),
		State:     issue.GetState(),
		CreatedAt: timeOf(issue.CreatedAt),
		ClosedAt:  timeOf(issue.ClosedAt),
	}
	for _, l := range issue.Labels {
		if l.GetName() != "" { out.Labels = append(out.Labels, l.GetName()) }
	}
	return out
}

func timeOf(ts *gh.Timestamp) *time.Time {
	if ts == nil { return nil }
	t := ts.Time.UTC()
	return &t
}
