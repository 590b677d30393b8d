package analysis

import (
	"reflect"
	"testing"

	"github.com/ubiquity-os/dao-analytics/internal/domain"
)

func TestInteractionGraph_DeduplicatesAndSkipsSelfEdges(t *testing.T) {
	g := NewInteractionGraph()
	pr := &domain.PullRequest{Number: 1, Author: "carol"}
	reviews := []domain.Review{
		{ID: 1, Author: "alice"},
		{ID: 2, Author: "alice"},
		{ID: 3, Author: "carol"},
	}
	comments := []domain.ReviewComment{{ID: 11, Author: "bob"}}
	issueComments := []domain.IssueComment{{ID: 21, Author: "bob"}}

	g.Record(pr, reviews, comments, issueComments)
	g.Record(pr, reviews, comments, issueComments)

	want := []domain.InteractionEdge{{Author: "carol", Participants: []string{"alice", "bob"}}}
	if got := g.Edges(); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %#v, got %#v", want, got)
	}
}

func TestInteractionGraph_NilOrAuthorlessPRIsIgnored(t *testing.T) {
	g := NewInteractionGraph()
	g.Record(nil, []domain.Review{{ID: 1, Author: "alice"}}, nil, nil)
	g.Record(&domain.PullRequest{Number: 2}, []domain.Review{{ID: 1, Author: "alice"}}, nil, nil)
	if got := g.Edges(); len(got) != 0 {
		t.Fatalf("expected no edges, got %#v", got)
	}
}

func TestInteractionGraph_EdgesSortedByAuthor(t *testing.T) {
	g := NewInteractionGraph()
	g.Record(&domain.PullRequest{Number: 1, Author: "zoe"}, []domain.Review{{ID: 1, Author: "alice"}}, nil, nil)
	g.Record(&domain.PullRequest{Number: 2, Author: "bob"}, []domain.Review{{ID: 2, Author: "alice"}}, nil, nil)

	edges := g.Edges()
	if len(edges) != 2 || edges[0].Author != "bob" || edges[1].Author != "zoe" {
		t.Fatalf("expected authors [bob zoe], got %#v", edges)
	}
}
