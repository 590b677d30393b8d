package github

import (
	"context"
	"errors"
	"testing"
	"time"

	gh "github.com/google/go-github/v62/github"
	"github.com/rs/zerolog"
)

func testClient(quota func(ctx context.Context) (int, time.Time, error), sleep func(d time.Duration), retry RetryPolicy) *Client {
	return &Client{
		log:     zerolog.Nop(),
		retry:   retry,
		timeout: time.Second,
		quota:   quota,
		sleep:   sleep,
	}
}

func TestCheckQuota_SleepsUntilResetWhenExhausted(t *testing.T) {
	reset := time.Now().Add(5 * time.Minute)
	var slept []time.Duration
	c := testClient(
		func(ctx context.Context) (int, time.Time, error) { return 0, reset, nil },
		func(d time.Duration) { slept = append(slept, d) },
		RetryPolicy{Interval: time.Minute},
	)

	c.checkQuota(context.Background())

	if len(slept) != 1 { t.Fatalf("expected one sleep, got %d", len(slept)) }
	// Reset delta plus the one second safety margin.
	if slept[0] < 4*time.Minute || slept[0] > 5*time.Minute+2*time.Second {
		t.Fatalf("unexpected sleep duration: %v", slept[0])
	}
}

func TestCheckQuota_ProceedsWhenQuotaRemains(t *testing.T) {
	var slept []time.Duration
	c := testClient(
		func(ctx context.Context) (int, time.Time, error) { return 50, time.Now(), nil },
		func(d time.Duration) { slept = append(slept, d) },
		RetryPolicy{Interval: time.Minute},
	)
	c.checkQuota(context.Background())
	if len(slept) != 0 { t.Fatalf("expected no sleep with quota remaining, got %v", slept) }
}

func TestCollect_PaginatesUntilLastPage(t *testing.T) {
	c := testClient(
		func(ctx context.Context) (int, time.Time, error) { return 5000, time.Now(), nil },
		func(d time.Duration) {},
		RetryPolicy{Interval: time.Minute},
	)

	pages := map[int][]int{0: {1, 2}, 2: {3}}
	var requested []int
	out, err := collect(context.Background(), c, func(ctx context.Context, page int) ([]int, *gh.Response, error) {
		requested = append(requested, page)
		next := 0
		if page == 0 { next = 2 }
		return pages[page], &gh.Response{NextPage: next}, nil
	})
	if err != nil { t.Fatalf("unexpected error: %v", err) }
	if len(out) != 3 || out[0] != 1 || out[2] != 3 {
		t.Fatalf("unexpected items: %#v", out)
	}
	if len(requested) != 2 || requested[1] != 2 {
		t.Fatalf("unexpected page sequence: %#v", requested)
	}
}

func TestCollect_RetriesRateLimitedPageInPlace(t *testing.T) {
	var slept []time.Duration
	c := testClient(
		func(ctx context.Context) (int, time.Time, error) { return 5000, time.Now(), nil },
		func(d time.Duration) { slept = append(slept, d) },
		RetryPolicy{Interval: 30 * time.Second},
	)

	calls := 0
	out, err := collect(context.Background(), c, func(ctx context.Context, page int) ([]int, *gh.Response, error) {
		calls++
		if calls == 1 { return nil, nil, &gh.RateLimitError{Message: "slow down"} }
		return []int{7}, &gh.Response{}, nil
	})
	if err != nil { t.Fatalf("unexpected error: %v", err) }
	if len(out) != 1 || out[0] != 7 { t.Fatalf("unexpected items: %#v", out) }
	if calls != 2 { t.Fatalf("expected one retry, got %d calls", calls) }
	if len(slept) != 1 || slept[0] != 30*time.Second {
		t.Fatalf("expected a single 30s backoff, got %v", slept)
	}
}

func TestCollect_RateLimitRetriesAreCapped(t *testing.T) {
	c := testClient(
		func(ctx context.Context) (int, time.Time, error) { return 5000, time.Now(), nil },
		func(d time.Duration) {},
		RetryPolicy{Interval: time.Millisecond, MaxAttempts: 3},
	)

	calls := 0
	_, err := collect(context.Background(), c, func(ctx context.Context, page int) ([]int, *gh.Response, error) {
		calls++
		return nil, nil, &gh.AbuseRateLimitError{Message: "abuse"}
	})
	if err == nil { t.Fatalf("expected error after exhausting retries") }
	if calls != 3 { t.Fatalf("expected 3 attempts, got %d", calls) }
}

func TestCollect_NonRateLimitErrorAborts(t *testing.T) {
	sentinel := errors.New("not found")
	c := testClient(
		func(ctx context.Context) (int, time.Time, error) { return 5000, time.Now(), nil },
		func(d time.Duration) { t.Fatalf("must not sleep on non-rate-limit errors") },
		RetryPolicy{Interval: time.Minute},
	)

	calls := 0
	_, err := collect(context.Background(), c, func(ctx context.Context, page int) ([]int, *gh.Response, error) {
		calls++
		return nil, nil, sentinel
	})
	if !errors.Is(err, sentinel) { t.Fatalf("expected sentinel error, got %v", err) }
	if calls != 1 { t.Fatalf("expected a single attempt, got %d", calls) }
}
