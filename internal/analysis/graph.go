package analysis

import (
	"sort"
	"sync"

	"github.com/ubiquity-os/dao-analytics/internal/domain"
)

// InteractionGraph is the run-wide directed social graph: an edge
// author -> participant means the participant engaged on a pull request
// authored by author. Edges are a set; repeated interactions are no-ops.
// Safe for concurrent use, pull requests are processed in parallel.
type InteractionGraph struct {
	mu    sync.Mutex
	edges map[string]map[string]struct{}
}

func NewInteractionGraph() *InteractionGraph {
	return &InteractionGraph{edges: map[string]map[string]struct{}{}}
}

// Record adds edges from the PR author to every other participant of the
// pull request (reviewers, review commenters, issue commenters).
func (g *InteractionGraph) Record(pr *domain.PullRequest, reviews []domain.Review, reviewComments []domain.ReviewComment, issueComments []domain.IssueComment) {
	if pr == nil || pr.Author == "" { return }
	author := pr.Author

	participants := map[string]struct{}{}
	for _, r := range reviews {
		if r.Author != "" { participants[r.Author] = struct{}{} }
	}
	for _, c := range reviewComments {
		if c.Author != "" { participants[c.Author] = struct{}{} }
	}
	for _, c := range issueComments {
		if c.Author != "" { participants[c.Author] = struct{}{} }
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	for p := range participants {
		if p == author { continue }
		if g.edges[author] == nil { g.edges[author] = map[string]struct{}{} }
		g.edges[author][p] = struct{}{}
	}
}

// Edges serializes the graph as sorted author/participants entries.
func (g *InteractionGraph) Edges() []domain.InteractionEdge {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]domain.InteractionEdge, 0, len(g.edges))
	for author, set := range g.edges {
		participants := make([]string, 0, len(set))
		for p := range set { participants = append(participants, p) }
		sort.Strings(participants)
		out = append(out, domain.InteractionEdge{Author: author, Participants: participants})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Author < out[j].Author })
	return out
}
