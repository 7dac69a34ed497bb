package github

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/vukan322/devcards/internal/core"
	"github.com/vukan322/devcards/internal/providers"
)

const (
	defaultBaseURL   = "https://api.github.com"
	defaultUserAgent = "devcards/0.1"
	maxPages         = 10
)

var ErrUserNotFound = errors.New("user not found")

type Provider struct {
	client  *http.Client
	baseURL string
	token   string
}

func New(token string) *Provider {
	return NewWithBaseURL(token, defaultBaseURL)
}

func NewWithBaseURL(token, baseURL string) *Provider {
	return &Provider{
		client:  &http.Client{Timeout: 10 * time.Second},
		baseURL: baseURL,
		token:   token,
	}
}

func (p *Provider) Name() string {
	return "github"
}

type count struct {
	TotalCount int `json:"totalCount"`
}

type pageInfo struct {
	HasNextPage bool   `json:"hasNextPage"`
	EndCursor   string `json:"endCursor"`
}

type statsUser struct {
	Name                    string `json:"name"`
	Login                   string `json:"login"`
	ContributionsCollection struct {
		TotalCommitContributions            int `json:"totalCommitContributions"`
		TotalPullRequestReviewContributions int `json:"totalPullRequestReviewContributions"`
	} `json:"contributionsCollection"`
	RepositoriesContributedTo    count  `json:"repositoriesContributedTo"`
	PullRequests                 count  `json:"pullRequests"`
	MergedPullRequests           *count `json:"mergedPullRequests"`
	OpenIssues                   count  `json:"openIssues"`
	ClosedIssues                 count  `json:"closedIssues"`
	Followers                    count  `json:"followers"`
	RepositoryDiscussions        *count `json:"repositoryDiscussions"`
	RepositoryDiscussionComments *count `json:"repositoryDiscussionComments"`
	Repositories                 struct {
		TotalCount int `json:"totalCount"`
		Nodes      []struct {
			Name       string `json:"name"`
			Stargazers count  `json:"stargazers"`
		} `json:"nodes"`
		PageInfo pageInfo `json:"pageInfo"`
	} `json:"repositories"`
}

type languagesUser struct {
	Repositories struct {
		Nodes []struct {
			Name      string `json:"name"`
			Languages struct {
				Edges []struct {
					Size int64 `json:"size"`
					Node struct {
						Name  string `json:"name"`
						Color string `json:"color"`
					} `json:"node"`
				} `json:"edges"`
			} `json:"languages"`
		} `json:"nodes"`
		PageInfo pageInfo `json:"pageInfo"`
	} `json:"repositories"`
}

func (p *Provider) FetchStats(ctx context.Context, handle string, opts providers.StatsOptions) (core.Snapshot, error) {
	var (
		user    *statsUser
		stars   int
		after   *string
		exclude = providers.Excluded(opts.ExcludeRepos)
	)

	for page := 0; page < maxPages; page++ {
		var data struct {
			User *statsUser `json:"user"`
		}
		err := p.graphql(ctx, statsQuery, map[string]any{
			"login":                     handle,
			"after":                     after,
			"includeMergedPullRequests": opts.IncludeMergedPRs,
			"includeDiscussions":        opts.IncludeDiscussions,
			"includeDiscussionsAnswers": opts.IncludeDiscussionsAnswers,
		}, &data)
		if err != nil {
			return core.Snapshot{}, fmt.Errorf("github: fetch stats: %w", err)
		}
		if data.User == nil {
			return core.Snapshot{}, fmt.Errorf("github: fetch stats: %w: %q", ErrUserNotFound, handle)
		}
		if user == nil {
			user = data.User
		}

		lastHasStars := false
		for _, r := range data.User.Repositories.Nodes {
			lastHasStars = r.Stargazers.TotalCount > 0
			if _, skip := exclude[r.Name]; skip {
				continue
			}
			stars += r.Stargazers.TotalCount
		}

		// Repositories come ordered by stars, so a starless tail ends the scan.
		info := data.User.Repositories.PageInfo
		if !info.HasNextPage || !lastHasStars {
			break
		}
		cursor := info.EndCursor
		after = &cursor
	}

	snap := core.Snapshot{
		Name:          pickName(user),
		Commits:       user.ContributionsCollection.TotalCommitContributions,
		PRs:           user.PullRequests.TotalCount,
		Reviews:       user.ContributionsCollection.TotalPullRequestReviewContributions,
		Issues:        user.OpenIssues.TotalCount + user.ClosedIssues.TotalCount,
		Stars:         stars,
		Followers:     user.Followers.TotalCount,
		Repositories:  user.Repositories.TotalCount,
		ContributedTo: user.RepositoriesContributedTo.TotalCount,
	}
	if user.MergedPullRequests != nil {
		snap.PRsMerged = user.MergedPullRequests.TotalCount
	}
	if user.RepositoryDiscussions != nil {
		snap.DiscussionsStarted = user.RepositoryDiscussions.TotalCount
	}
	if user.RepositoryDiscussionComments != nil {
		snap.DiscussionsAnswered = user.RepositoryDiscussionComments.TotalCount
	}

	if opts.IncludeAllCommits {
		total, err := p.fetchAllCommits(ctx, user.Login)
		if err != nil {
			return core.Snapshot{}, fmt.Errorf("github: fetch all commits: %w", err)
		}
		snap.AllCommits = total
	}

	return snap, nil
}

func (p *Provider) FetchLanguages(ctx context.Context, handle string, excludeRepos []string) ([]core.LanguageUsage, error) {
	exclude := providers.Excluded(excludeRepos)
	index := make(map[string]int)
	var langs []core.LanguageUsage
	var after *string

	for page := 0; page < maxPages; page++ {
		var data struct {
			User *languagesUser `json:"user"`
		}
		err := p.graphql(ctx, languagesQuery, map[string]any{
			"login": handle,
			"after": after,
		}, &data)
		if err != nil {
			return nil, fmt.Errorf("github: fetch languages: %w", err)
		}
		if data.User == nil {
			return nil, fmt.Errorf("github: fetch languages: %w: %q", ErrUserNotFound, handle)
		}

		for _, repo := range data.User.Repositories.Nodes {
			if _, skip := exclude[repo.Name]; skip {
				continue
			}
			for _, edge := range repo.Languages.Edges {
				name := edge.Node.Name
				pos, ok := index[name]
				if !ok {
					index[name] = len(langs)
					langs = append(langs, core.LanguageUsage{Name: name, Color: edge.Node.Color})
					pos = len(langs) - 1
				}
				langs[pos].Size += edge.Size
				langs[pos].Count++
			}
		}

		info := data.User.Repositories.PageInfo
		if !info.HasNextPage {
			break
		}
		cursor := info.EndCursor
		after = &cursor
	}

	sort.SliceStable(langs, func(i, j int) bool {
		return langs[i].Size > langs[j].Size
	})

	return langs, nil
}

type graphqlError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func (p *Provider) graphql(ctx context.Context, query string, vars map[string]any, out any) error {
	body, err := json.Marshal(map[string]any{"query": query, "variables": vars})
	if err != nil {
		return fmt.Errorf("encode query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/graphql", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	p.applyHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %d from graphql", resp.StatusCode)
	}

	var envelope struct {
		Data   json.RawMessage `json:"data"`
		Errors []graphqlError  `json:"errors"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	if len(envelope.Errors) > 0 {
		e := envelope.Errors[0]
		if e.Type == "NOT_FOUND" {
			return fmt.Errorf("%w: %s", ErrUserNotFound, e.Message)
		}
		return fmt.Errorf("graphql: %s", e.Message)
	}

	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("decode data: %w", err)
	}
	return nil
}

func (p *Provider) fetchAllCommits(ctx context.Context, login string) (int, error) {
	endpoint := fmt.Sprintf("%s/search/commits?q=author:%s&per_page=1", p.baseURL, url.QueryEscape(login))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, fmt.Errorf("new request: %w", err)
	}
	p.applyHeaders(req)
	req.Header.Set("Accept", "application/vnd.github.cloak-preview")

	resp, err := p.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var result struct {
		TotalCount int `json:"total_count"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return 0, fmt.Errorf("decode response: %w", err)
	}

	return result.TotalCount, nil
}

func (p *Provider) applyHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", defaultUserAgent)
	if p.token != "" {
		req.Header.Set("Authorization", "Bearer "+p.token)
	}
}

func pickName(u *statsUser) string {
	if u.Name != "" {
		return u.Name
	}
	return u.Login
}
