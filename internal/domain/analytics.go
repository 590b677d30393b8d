package domain

// Analytics record types mirror the JSON schema the dashboard consumes.
// Every duration is integer milliseconds; nullable durations are pointers.

type CommitAnalytics struct {
	TotalCommits                    int                `json:"totalCommits"`
	LinesAdded                      int                `json:"linesAdded"`
	LinesRemoved                    int                `json:"linesRemoved"`
	CommitsPerContributor           map[string]int     `json:"commitsPerContributor"`
	TimeFromFirstCommitToLastCommit int64              `json:"timeFromFirstCommitToLastCommit"`
	TimeFromLastCommitToClose       int64              `json:"timeFromLastCommitToClose"`
	AverageTimeBetweenCommits       int64              `json:"averageTimeBetweenCommits"`
	AverageCommitsPerDay            float64            `json:"averageCommitsPerDay"`
	AverageCommitsPerWeek           float64            `json:"averageCommitsPerWeek"`
	AverageCommitsPerMonth          float64            `json:"averageCommitsPerMonth"`
	TotalCommitsPerDay              map[string]int     `json:"totalCommitsPerDay"`
	TotalCommitsPerWeek             map[string]int     `json:"totalCommitsPerWeek"`
	TotalCommitsPerMonth            map[string]int     `json:"totalCommitsPerMonth"`
}

type PullRequestAnalytics struct {
	TimeFromOpenToClose *int64 `json:"timeFromOpenToClose"`
	TimeFromOpenToMerge *int64 `json:"timeFromOpenToMerge"`
	TotalCommits        int    `json:"totalCommits"`
	TotalComments       int    `json:"totalComments"`
	TotalReviews        int    `json:"totalReviews"`
	TotalReviewers      int    `json:"totalReviewers"`
	TotalReviewRequests int    `json:"totalReviewRequests"`
	TotalReviewComments int    `json:"totalReviewComments"`

	TotalReviewCommentsAddressed int `json:"totalReviewCommentsAddressed"`
	TotalReviewCommentsIgnored   int `json:"totalReviewCommentsIgnored"`
	TotalContributors            int `json:"totalContributors"`

	AverageTimeFromReviewRequestToReviewCompletion   int64 `json:"averageTimeFromReviewRequestToReviewCompletion"`
	AverageTimeFromReviewCompletionToReviewAddressed int64 `json:"averageTimeFromReviewCompletionToReviewAddressed"`
}

type ReviewAnalytics struct {
	TotalReviews                 int            `json:"totalReviews"`
	TotalTimeSpentReviewing      int64          `json:"totalTimeSpentReviewing"`
	TotalReviewComments          int            `json:"totalReviewComments"`
	TotalReviewCommentsAddressed int            `json:"totalReviewCommentsAddressed"`
	TotalReviewCommentsIgnored   int            `json:"totalReviewCommentsIgnored"`
	TotalReviewRequests          int            `json:"totalReviewRequests"`
	AverageTimeSpentReviewing    int64          `json:"averageTimeSpentReviewing"`
	AverageTimeBetweenReviews    int64          `json:"averageTimeBetweenReviews"`
	AverageReviewsPerDay         float64        `json:"averageReviewsPerDay"`
	AverageReviewsPerWeek        float64        `json:"averageReviewsPerWeek"`
	AverageReviewsPerMonth       float64        `json:"averageReviewsPerMonth"`
	TotalReviewsPerDay           map[string]int `json:"totalReviewsPerDay"`
	TotalReviewsPerWeek          map[string]int `json:"totalReviewsPerWeek"`
	TotalReviewsPerMonth         map[string]int `json:"totalReviewsPerMonth"`
	TotalReviewCommentsPerDay    map[string]int `json:"totalReviewCommentsPerDay"`
	TotalReviewCommentsPerWeek   map[string]int `json:"totalReviewCommentsPerWeek"`
	TotalReviewCommentsPerMonth  map[string]int `json:"totalReviewCommentsPerMonth"`

	// Keyed by review/comment id; approximations, the forge does not expose
	// true per-request timestamps.
	RequestToCompletionTimes   map[string]int64 `json:"requestToCompletionTimes"`
	CompletionToAddressedTimes map[string]int64 `json:"completionToAddressedTimes"`

	ReviewsPerReviewer map[string]int `json:"reviewsPerReviewer"`
}

type ReviewerStats struct {
	Login                        string         `json:"login"`
	TotalReviews                 int            `json:"totalReviews"`
	TotalReviewComments          int            `json:"totalReviewComments"`
	TotalReviewCommentsAddressed int            `json:"totalReviewCommentsAddressed"`
	TotalReviewCommentsIgnored   int            `json:"totalReviewCommentsIgnored"`
	AverageTimeSpentReviewing    int64          `json:"averageTimeSpentReviewing"`
	TotalTimeSpentReviewing      int64          `json:"totalTimeSpentReviewing"`
	AverageTimeBetweenReviews    int64          `json:"averageTimeBetweenReviews"`
	AverageReviewsPerDay         float64        `json:"averageReviewsPerDay"`
	AverageReviewsPerWeek        float64        `json:"averageReviewsPerWeek"`
	AverageReviewsPerMonth       float64        `json:"averageReviewsPerMonth"`
	TotalReviewsPerDay           map[string]int `json:"totalReviewsPerDay"`
	TotalReviewsPerWeek          map[string]int `json:"totalReviewsPerWeek"`
	TotalReviewsPerMonth         map[string]int `json:"totalReviewsPerMonth"`
	TotalReviewCommentsPerDay    map[string]int `json:"totalReviewCommentsPerDay"`
	TotalReviewCommentsPerWeek   map[string]int `json:"totalReviewCommentsPerWeek"`
	TotalReviewCommentsPerMonth  map[string]int `json:"totalReviewCommentsPerMonth"`

	RequestToCompletionTimes   map[string]int64 `json:"requestToCompletionTimes"`
	CompletionToAddressedTimes map[string]int64 `json:"completionToAddressedTimes"`
}

// Record is the per-pull-request analytics artifact, keyed in the result
// tree by org/repo/pr-number.
type Record struct {
	TimeFromOpenToClose        *int64 `json:"timeFromOpenToClose"`
	TimeFromPrOpenToIssueClose *int64 `json:"timeFromPrOpenToIssueClose"`

	TotalContributorsThatAttempted              int  `json:"totalContributorsThatAttempted"`
	HasLinkedPr                                 bool `json:"hasLinkedPr"`
	HasMultipleLinkedPrs                        bool `json:"hasMultipleLinkedPrs"`
	TotalPrsFromAuthorThatClosedIssue           int  `json:"totalPrsFromAuthorThatClosedIssue"`
	TotalCommentsFromContributorThatClosedIssue int  `json:"totalCommentsFromContributorThatClosedIssue"`

	IssueSentimentScore float64 `json:"issueSentimentScore"`
	PrSentimentScore    float64 `json:"prSentimentScore"`

	PullRequestAnalytics *PullRequestAnalytics `json:"pullRequestAnalytics"`
	ReviewAnalytics      *ReviewAnalytics      `json:"reviewAnalytics"`
	ReviewerStats        []ReviewerStats       `json:"reviewerStats"`
	CommitAnalytics      *CommitAnalytics      `json:"commitAnalytics"`

	Issue       *Issue       `json:"issue"`
	PullRequest *PullRequest `json:"pullRequest"`
}

// ResultTree is the full run output: org -> repo -> pr number -> record.
type ResultTree map[string]map[string]map[int]*Record

// UntrackedIssue reports an issue with no resolvable closing pull request.
type UntrackedIssue struct {
	Owner string `json:"owner"`
	Repo  string `json:"repo"`
	Issue int    `json:"issue"`
}

// MultiLinkedIssue reports an issue closed by more than one pull request.
type MultiLinkedIssue struct {
	Owner     string `json:"owner"`
	Repo      string `json:"repo"`
	Issue     int    `json:"issue"`
	LinkedPrs []int  `json:"linkedPrs"`
}

// InteractionEdge is one serialized interaction graph entry.
type InteractionEdge struct {
	Author       string   `json:"author"`
	Participants []string `json:"participants"`
}
