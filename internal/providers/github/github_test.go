package github

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vukan322/devcards/internal/providers"
)

type gqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

const statsPage1 = `{"data":{"user":{
  "name":"Octo Cat","login":"octocat",
  "contributionsCollection":{"totalCommitContributions":120,"totalPullRequestReviewContributions":4},
  "repositoriesContributedTo":{"totalCount":6},
  "pullRequests":{"totalCount":30},
  "mergedPullRequests":{"totalCount":20},
  "openIssues":{"totalCount":2},
  "closedIssues":{"totalCount":5},
  "followers":{"totalCount":11},
  "repositories":{"totalCount":3,
    "nodes":[{"name":"big","stargazers":{"totalCount":40}},{"name":"skipme","stargazers":{"totalCount":7}}],
    "pageInfo":{"hasNextPage":true,"endCursor":"c1"}}
}}}`

const statsPage2 = `{"data":{"user":{
  "name":"Octo Cat","login":"octocat",
  "followers":{"totalCount":11},
  "repositories":{"totalCount":3,
    "nodes":[{"name":"small","stargazers":{"totalCount":2}}],
    "pageInfo":{"hasNextPage":false,"endCursor":"c2"}}
}}}`

const languagesPage = `{"data":{"user":{"repositories":{
  "nodes":[
    {"name":"a","languages":{"edges":[{"size":100,"node":{"name":"Go","color":"#00ADD8"}},{"size":10,"node":{"name":"Shell","color":"#89e051"}}]}},
    {"name":"b","languages":{"edges":[{"size":500,"node":{"name":"TypeScript","color":"#3178c6"}},{"size":50,"node":{"name":"Go","color":"#00ADD8"}}]}},
    {"name":"hidden","languages":{"edges":[{"size":9999,"node":{"name":"HTML","color":"#e34c26"}}]}}
  ],
  "pageInfo":{"hasNextPage":false,"endCursor":""}
}}}}`

func TestFetchStats(t *testing.T) {
	var calls atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))

		switch r.URL.Path {
		case "/graphql":
			var req gqlRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "octocat", req.Variables["login"])
			assert.Equal(t, true, req.Variables["includeMergedPullRequests"])

			if calls.Add(1) == 1 {
				assert.Nil(t, req.Variables["after"])
				_, _ = w.Write([]byte(statsPage1))
				return
			}
			assert.Equal(t, "c1", req.Variables["after"])
			_, _ = w.Write([]byte(statsPage2))
		case "/search/commits":
			assert.Equal(t, "author:octocat", r.URL.Query().Get("q"))
			_, _ = w.Write([]byte(`{"total_count": 999}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	p := NewWithBaseURL("tok", srv.URL)
	snap, err := p.FetchStats(context.Background(), "octocat", providers.StatsOptions{
		IncludeAllCommits: true,
		IncludeMergedPRs:  true,
		ExcludeRepos:      []string{"skipme"},
	})
	require.NoError(t, err)

	assert.Equal(t, "Octo Cat", snap.Name)
	assert.Equal(t, 120, snap.Commits)
	assert.Equal(t, 999, snap.AllCommits)
	assert.Equal(t, 30, snap.PRs)
	assert.Equal(t, 20, snap.PRsMerged)
	assert.Equal(t, 4, snap.Reviews)
	assert.Equal(t, 7, snap.Issues)
	assert.Equal(t, 42, snap.Stars)
	assert.Equal(t, 11, snap.Followers)
	assert.Equal(t, 3, snap.Repositories)
	assert.Equal(t, 6, snap.ContributedTo)
	assert.Zero(t, snap.DiscussionsStarted)
	assert.EqualValues(t, 2, calls.Load())
}

func TestFetchStats_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"user":null},"errors":[{"type":"NOT_FOUND","message":"Could not resolve to a User"}]}`))
	}))
	defer srv.Close()

	_, err := NewWithBaseURL("", srv.URL).FetchStats(context.Background(), "ghost", providers.StatsOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.True(t, strings.HasPrefix(err.Error(), "github: fetch stats"))
}

func TestFetchStats_BadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := NewWithBaseURL("bad", srv.URL).FetchStats(context.Background(), "octocat", providers.StatsOptions{})
	assert.ErrorContains(t, err, "unexpected status 401")
}

func TestFetchLanguages(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req gqlRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Contains(t, req.Query, "languages(")
		_, _ = w.Write([]byte(languagesPage))
	}))
	defer srv.Close()

	langs, err := NewWithBaseURL("", srv.URL).FetchLanguages(context.Background(), "octocat", []string{"hidden"})
	require.NoError(t, err)
	require.Len(t, langs, 3)

	assert.Equal(t, "TypeScript", langs[0].Name)
	assert.EqualValues(t, 500, langs[0].Size)
	assert.EqualValues(t, 1, langs[0].Count)

	assert.Equal(t, "Go", langs[1].Name)
	assert.EqualValues(t, 150, langs[1].Size)
	assert.EqualValues(t, 2, langs[1].Count)
	assert.Equal(t, "#00ADD8", langs[1].Color)

	assert.Equal(t, "Shell", langs[2].Name)
}
