// Package cf talks to the Codeforces API. The API is unauthenticated,
// rate limited and eventually consistent; every failure here is transient
// from the caller's point of view and is reported as ErrUnavailable.
package cf

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// ErrUnavailable wraps any transport, timeout or parse failure against the
// judge API. Callers must treat it as "unknown", never as "no result".
var ErrUnavailable = errors.New("codeforces api unavailable")

const (
	defaultBaseURL = "https://codeforces.com/api"
	userAgent      = "lockout-1v1"

	// SubmissionWindow bounds how far back we look in a handle's history.
	// Matches are short-lived, so the most recent submissions are enough.
	SubmissionWindow = 1000
)

// Problem is one judge problem from the problemset listing.
type Problem struct {
	ContestID int    `json:"contestId"`
	Index     string `json:"index"`
	Name      string `json:"name"`
	Rating    int    `json:"rating"`
}

// Key returns the identity a problem is deduplicated by.
func (p Problem) Key() string {
	return fmt.Sprintf("%d%s", p.ContestID, p.Index)
}

// Submission is one entry from a handle's recent submission history.
type Submission struct {
	ContestID int
	Index     string
	Verdict   string
	At        time.Time
}

// Accepted reports whether the judge accepted the submission.
func (s Submission) Accepted() bool {
	return s.Verdict == "OK"
}

// ProblemSource lists all problems carrying a numeric rating.
type ProblemSource interface {
	ListRatedProblems(ctx context.Context) ([]Problem, error)
}

// SubmissionSource lists a handle's most recent submissions, newest first.
type SubmissionSource interface {
	ListRecentSubmissions(ctx context.Context, handle string, count int) ([]Submission, error)
}

// Client is the HTTP implementation of both sources.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

type apiEnvelope struct {
	Status  string          `json:"status"`
	Comment string          `json:"comment"`
	Result  json.RawMessage `json:"result"`
}

func (c *Client) call(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: http %d", ErrUnavailable, resp.StatusCode)
	}

	var envelope apiEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if envelope.Status != "OK" {
		return fmt.Errorf("%w: status %s (%s)", ErrUnavailable, envelope.Status, envelope.Comment)
	}
	if err := json.Unmarshal(envelope.Result, out); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// ListRatedProblems fetches the full problemset and keeps only problems
// with a defined numeric rating.
func (c *Client) ListRatedProblems(ctx context.Context) ([]Problem, error) {
	var result struct {
		Problems []struct {
			ContestID int    `json:"contestId"`
			Index     string `json:"index"`
			Name      string `json:"name"`
			Rating    *int   `json:"rating"`
		} `json:"problems"`
	}
	if err := c.call(ctx, "/problemset.problems", &result); err != nil {
		return nil, err
	}

	problems := make([]Problem, 0, len(result.Problems))
	for _, p := range result.Problems {
		if p.Rating == nil {
			continue
		}
		problems = append(problems, Problem{
			ContestID: p.ContestID,
			Index:     p.Index,
			Name:      p.Name,
			Rating:    *p.Rating,
		})
	}
	return problems, nil
}

// ListRecentSubmissions fetches the handle's latest submissions, newest first.
func (c *Client) ListRecentSubmissions(ctx context.Context, handle string, count int) ([]Submission, error) {
	path := fmt.Sprintf("/user.status?handle=%s&from=1&count=%d", url.QueryEscape(handle), count)

	var result []struct {
		Verdict             string `json:"verdict"`
		CreationTimeSeconds int64  `json:"creationTimeSeconds"`
		Problem             struct {
			ContestID int    `json:"contestId"`
			Index     string `json:"index"`
		} `json:"problem"`
	}
	if err := c.call(ctx, path, &result); err != nil {
		return nil, err
	}

	subs := make([]Submission, 0, len(result))
	for _, s := range result {
		subs = append(subs, Submission{
			ContestID: s.Problem.ContestID,
			Index:     s.Problem.Index,
			Verdict:   s.Verdict,
			At:        time.Unix(s.CreationTimeSeconds, 0),
		})
	}
	return subs, nil
}
