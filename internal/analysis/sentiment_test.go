package analysis

import "testing"

func TestSentimentScore_Comparative(t *testing.T) {
	// "good" scores 3, "work" scores 0, over two tokens.
	if got := SentimentScore("good work"); got != 1.5 {
		t.Fatalf("expected 1.5, got %v", got)
	}
	if got := SentimentScore(""); got != 0 {
		t.Fatalf("expected 0 for empty text, got %v", got)
	}
	if got := SentimentScore("the quick brown fox"); got != 0 {
		t.Fatalf("expected 0 for unscored text, got %v", got)
	}
	if got := SentimentScore("awful bug"); got >= 0 {
		t.Fatalf("expected negative score, got %v", got)
	}
	// Case and punctuation must not affect the score.
	if SentimentScore("Good, work!") != SentimentScore("good work") {
		t.Fatalf("tokenization is case or punctuation sensitive")
	}
}
