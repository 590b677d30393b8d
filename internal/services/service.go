package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/ubiquity-os/dao-analytics/internal/analysis"
	"github.com/ubiquity-os/dao-analytics/internal/config"
	"github.com/ubiquity-os/dao-analytics/internal/domain"
	"github.com/ubiquity-os/dao-analytics/internal/linker"
	"github.com/ubiquity-os/dao-analytics/internal/repo"
)

// ForgeClient is the full data-acquisition surface the orchestrator needs.
// Every method degrades to empty/nil on per-entity failure; only the
// closing-reference lookups surface errors, which the linker absorbs.
type ForgeClient interface {
	OrgRepos(ctx context.Context, org string) []domain.Repo
	RepoPullRequests(ctx context.Context, owner, repoName string) []domain.PullRequest
	RepoIssues(ctx context.Context, owner, repoName string) []domain.Issue
	Issue(ctx context.Context, owner, repoName string, number int) *domain.Issue
	PullRequest(ctx context.Context, owner, repoName string, number int) *domain.PullRequest
	IssueComments(ctx context.Context, owner, repoName string, number int) []domain.IssueComment
	IssueEvents(ctx context.Context, owner, repoName string, number int) []domain.IssueEvent
	PullRequestReviews(ctx context.Context, owner, repoName string, number int) []domain.Review
	PullRequestReviewComments(ctx context.Context, owner, repoName string, number int) []domain.ReviewComment
	PullRequestCommits(ctx context.Context, owner, repoName string, number int) []domain.Commit
	PullRequestFiles(ctx context.Context, owner, repoName string, number int) []domain.CommitFile

	linker.RefClient
}

// LLM summarizes a finished run; optional.
type LLM interface {
	SummarizeRun(ctx context.Context, run *repo.RunInfo) (string, error)
}

// Notifier pushes run notifications; optional.
type Notifier interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
}

var ErrRunInProgress = errors.New("analysis run already in progress")

type Service struct {
	cfg   config.Config
	log   zerolog.Logger
	repo  *repo.Repository
	forge ForgeClient
	llm   LLM
	tg    Notifier
	now   func() time.Time
}

func New(cfg config.Config, log zerolog.Logger, r *repo.Repository, forge ForgeClient, llm LLM, tg Notifier) *Service {
	return &Service{cfg: cfg, log: log, repo: r, forge: forge, llm: llm, tg: tg, now: func() time.Time { return time.Now().UTC() }}
}

// runState is the shared-mutable accumulation of one run. Pull requests are
// processed concurrently, so the tree and report slices are mutex-guarded;
// the interaction graph carries its own lock.
type runState struct {
	mu          sync.Mutex
	tree        domain.ResultTree
	untracked   []domain.UntrackedIssue
	multiLinked []domain.MultiLinkedIssue
	graph       *analysis.InteractionGraph
	prsAnalyzed int

	fatal  error // first persistence failure; aborts the run
	cancel context.CancelFunc
}

func (st *runState) fail(err error) {
	st.mu.Lock()
	if st.fatal == nil { st.fatal = err }
	st.mu.Unlock()
	st.cancel()
}

// RunAnalysis drives one full collection-and-aggregation run across the
// configured organizations. Per-entity fetch failures are absorbed along
// the way; only a persistence failure aborts the run.
func (s *Service) RunAnalysis(ctx context.Context) error {
	if !s.repo.TryRunLock() { return ErrRunInProgress }
	defer s.repo.RunUnlock()

	run := s.repo.StartJobRun(s.cfg.GithubOrgs)
	s.log.Info().Strs("orgs", s.cfg.GithubOrgs).Msg("analysis: start")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	st := &runState{tree: domain.ResultTree{}, graph: analysis.NewInteractionGraph(), cancel: cancel}

	var repos []domain.Repo
	for _, org := range s.cfg.GithubOrgs {
		repos = append(repos, s.forge.OrgRepos(ctx, org)...)
	}
	s.repo.UpdateRun(run, func(ri *repo.RunInfo) { ri.ReposAnalyzed = len(repos) })

	workerCount := s.cfg.WorkersRepos
	if workerCount <= 0 { workerCount = 4 }
	jobs := make(chan domain.Repo)
	var wg sync.WaitGroup
	for w := 0; w < workerCount; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for r := range jobs {
				if ctx.Err() != nil { continue }
				s.processRepo(ctx, r, st)
			}
		}()
	}
	for _, r := range repos { jobs <- r }
	close(jobs)
	wg.Wait()

	err := st.fatal
	if err == nil { err = s.persistRun(st) }

	st.mu.Lock()
	prsAnalyzed, untracked, multiLinked := st.prsAnalyzed, len(st.untracked), len(st.multiLinked)
	st.mu.Unlock()
	s.repo.UpdateRun(run, func(ri *repo.RunInfo) {
		ri.PrsAnalyzed = prsAnalyzed
		ri.Untracked = untracked
		ri.MultiLinked = multiLinked
	})

	if err != nil {
		s.repo.FinishJobRun(run, false, err.Error())
		s.log.Error().Err(err).Msg("analysis: failed")
		return err
	}
	s.repo.FinishJobRun(run, true, "")
	s.log.Info().Int("prs", prsAnalyzed).Int("repos", len(repos)).Msg("analysis: done")

	s.notifyRunDone(run)
	return nil
}

func (s *Service) persistRun(st *runState) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	if err := s.repo.WriteResultTree(st.tree); err != nil { return err }
	if err := s.repo.WriteUntracked(st.untracked); err != nil { return err }
	if err := s.repo.WriteMultiLinked(st.multiLinked); err != nil { return err }
	return s.repo.WriteInteractionGraph(st.graph.Edges())
}

func (s *Service) processRepo(ctx context.Context, r domain.Repo, st *runState) {
	var prs []domain.PullRequest
	var issues []domain.Issue
	var wg sync.WaitGroup
	wg.Add(2)
	go func() { defer wg.Done(); prs = s.forge.RepoPullRequests(ctx, r.Owner, r.Name) }()
	go func() { defer wg.Done(); issues = s.forge.RepoIssues(ctx, r.Owner, r.Name) }()
	wg.Wait()

	res := linker.Link(ctx, s.forge, r, issues, prs, s.log)

	st.mu.Lock()
	st.untracked = append(st.untracked, res.Untracked...)
	st.multiLinked = append(st.multiLinked, res.MultiLinked...)
	st.mu.Unlock()

	issueMap := map[int]domain.Issue{}
	for _, issue := range issues { issueMap[issue.Number] = issue }
	prAuthors := map[int]string{}
	for _, pr := range prs { prAuthors[pr.Number] = pr.Author }

	// only PRs with a resolved issue are analyzed
	var eligible []domain.PullRequest
	for _, pr := range prs {
		if _, ok := res.Linkage.PRToIssue[pr.Number]; ok { eligible = append(eligible, pr) }
	}
	if len(eligible) == 0 {
		s.log.Debug().Str("repo", r.Owner+"/"+r.Name).Msg("analysis: no linked pull requests")
		return
	}

	workerCount := s.cfg.WorkersPRs
	if workerCount <= 0 { workerCount = 8 }
	jobs := make(chan domain.PullRequest)
	var prWg sync.WaitGroup
	for w := 0; w < workerCount; w++ {
		prWg.Add(1)
		go func() {
			defer prWg.Done()
			for pr := range jobs {
				if ctx.Err() != nil { continue }
				s.processPullRequest(ctx, r, pr, res.Linkage, issueMap, prAuthors, st)
			}
		}()
	}
	for _, pr := range eligible { jobs <- pr }
	close(jobs)
	prWg.Wait()
}

func (s *Service) processPullRequest(ctx context.Context, r domain.Repo, listed domain.PullRequest, link linker.Linkage, issueMap map[int]domain.Issue, prAuthors map[int]string, st *runState) {
	issueNumber := link.PRToIssue[listed.Number]

	var issue *domain.Issue
	var issueComments []domain.IssueComment
	var issueEvents []domain.IssueEvent
	if issueNumber != 0 {
		issue = s.forge.Issue(ctx, r.Owner, r.Name, issueNumber)
		if issue == nil {
			if cached, ok := issueMap[issueNumber]; ok { issue = &cached }
		}
		issueComments = s.forge.IssueComments(ctx, r.Owner, r.Name, issueNumber)
		issueEvents = s.forge.IssueEvents(ctx, r.Owner, r.Name, issueNumber)
	}

	pr := s.forge.PullRequest(ctx, r.Owner, r.Name, listed.Number)
	reviews := s.forge.PullRequestReviews(ctx, r.Owner, r.Name, listed.Number)
	reviewComments := s.forge.PullRequestReviewComments(ctx, r.Owner, r.Name, listed.Number)
	commits := s.forge.PullRequestCommits(ctx, r.Owner, r.Name, listed.Number)
	files := s.forge.PullRequestFiles(ctx, r.Owner, r.Name, listed.Number)

	rec := analysis.BuildRecord(analysis.RecordInput{
		Issue:          issue,
		PullRequest:    pr,
		Reviews:        reviews,
		ReviewComments: reviewComments,
		IssueComments:  issueComments,
		Commits:        commits,
		Files:          files,
		IssueEvents:    issueEvents,
		LinkedPrs:      link.IssueToPRs[issueNumber],
		PrAuthors:      prAuthors,
		Now:            s.now(),
	})

	st.graph.Record(pr, reviews, reviewComments, issueComments)

	// partial-progress durability: persist each record as soon as we have it
	if err := s.repo.WriteRecord(r.Owner, r.Name, listed.Number, rec); err != nil {
		st.fail(err)
		return
	}

	st.mu.Lock()
	if st.tree[r.Owner] == nil { st.tree[r.Owner] = map[string]map[int]*domain.Record{} }
	if st.tree[r.Owner][r.Name] == nil { st.tree[r.Owner][r.Name] = map[int]*domain.Record{} }
	st.tree[r.Owner][r.Name][listed.Number] = rec
	st.prsAnalyzed++
	st.mu.Unlock()

	s.log.Info().Str("repo", r.Owner+"/"+r.Name).Int("pr", listed.Number).Msg("analysis: pull request complete")
}

// notifyRunDone pushes an optional run summary to the configured chats.
// Both the LLM and the notifier are best-effort extras.
func (s *Service) notifyRunDone(run *repo.RunInfo) {
	if s.tg == nil || len(s.cfg.TelegramChatIDs) == 0 { return }
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.HTTPTimeout)
	defer cancel()

	text := fmt.Sprintf("DAO Analytics run finished.\nRepos: %d\nPRs analyzed: %d\nUntracked issues: %d", run.ReposAnalyzed, run.PrsAnalyzed, run.Untracked)
	if s.llm != nil {
		if summary, err := s.llm.SummarizeRun(ctx, run); err == nil && summary != "" {
			text = summary
		} else if err != nil {
			s.log.Error().Err(err).Msg("run summary failed")
		}
	}
	for _, chat := range s.cfg.TelegramChatIDs {
		if err := s.tg.SendMessage(ctx, chat, text); err != nil {
			s.log.Error().Err(err).Int64("chat", chat).Msg("telegram send failed")
		}
	}
}

func (s *Service) GetLastRun() *repo.RunInfo { return s.repo.GetLastRun() }
