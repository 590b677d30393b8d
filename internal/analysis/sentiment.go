package analysis

import "strings"

// Sentiment scoring over issue and pull request bodies. The score is the
// AFINN-style comparative: summed token valence divided by token count, so
// longer texts are not rewarded for repeating the same words.

var valence = map[string]int{
	"abandon": -2, "abuse": -3, "accept": 1, "accomplish": 2, "ache": -2,
	"adore": 3, "agree": 1, "amazing": 4, "angry": -3, "annoy": -2,
	"appreciate": 2, "approve": 2, "argue": -2, "awesome": 4, "awful": -3,
	"bad": -3, "benefit": 2, "best": 3, "block": -1, "blocked": -1,
	"boring": -3, "brilliant": 4, "broke": -2, "broken": -1, "bug": -2,
	"clean": 2, "clear": 1, "complain": -2, "confuse": -2, "confusing": -2,
	"correct": 3, "crash": -2, "critical": -2, "damage": -3, "dead": -3,
	"delay": -1, "delight": 3, "deny": -2, "difficult": -1, "dirty": -2,
	"disagree": -2, "dislike": -2, "easy": 1, "effective": 2, "efficient": 2,
	"elegant": 2, "error": -2, "excellent": 3, "excite": 3, "fail": -2,
	"failed": -2, "failure": -2, "fantastic": 4, "fast": 1, "fault": -2,
	"fine": 2, "fix": 1, "fixed": 1, "flawless": 2, "fraud": -4,
	"fun": 4, "glad": 3, "good": 3, "great": 3, "happy": 3,
	"hard": -1, "hate": -3, "helpful": 2, "hope": 2, "horrible": -3,
	"ignore": -1, "ignored": -2, "important": 2, "improve": 2, "improvement": 2,
	"incorrect": -2, "interesting": 2, "issue": -1, "lack": -2, "lazy": -1,
	"like": 2, "limited": -1, "love": 3, "lost": -3, "mess": -2,
	"messy": -2, "mistake": -2, "nice": 3, "obsolete": -1, "outstanding": 5,
	"perfect": 3, "please": 1, "poor": -2, "problem": -2, "progress": 2,
	"reject": -1, "rejected": -2, "reliable": 2, "resolve": 2, "resolved": 2,
	"risk": -2, "robust": 2, "sad": -2, "safe": 1, "simple": 1,
	"slow": -2, "smart": 1, "solid": 2, "solve": 1, "solved": 2,
	"stable": 2, "strong": 2, "stuck": -2, "stupid": -2, "succeed": 3,
	"success": 2, "terrible": -3, "thank": 2, "thanks": 2, "trouble": -2,
	"trust": 1, "ugly": -3, "unstable": -2, "useful": 2, "useless": -2,
	"want": 1, "waste": -1, "weak": -2, "welcome": 2, "win": 4,
	"wonderful": 4, "worse": -3, "worst": -3, "wrong": -2,
}

// SentimentScore returns the comparative sentiment of free text; zero for
// empty or unscored text.
func SentimentScore(text string) float64 {
	tokens := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return (r < 'a' || r > 'z') && (r < '0' || r > '9')
	})
	if len(tokens) == 0 { return 0 }
	total := 0
	for _, tok := range tokens {
		total += valence[tok]
	}
	return float64(total) / float64(len(tokens))
}
