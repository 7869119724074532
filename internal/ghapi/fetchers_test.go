package ghapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testRepo = RepoRef{Owner: "acme", Name: "widgets"}

func TestListContributorsFiltersNonUsers(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/acme/widgets/contributors", r.URL.Path)
		assert.Equal(t, "false", r.URL.Query().Get("anon"))
		assert.Equal(t, "100", r.URL.Query().Get("per_page"))
		w.Write([]byte(`[
			{"login":"alice","id":1,"html_url":"https://github.com/alice","avatar_url":"https://a.test/alice.png","type":"User"},
			{"login":"dependabot[bot]","id":2,"html_url":"https://github.com/apps/dependabot","avatar_url":"https://a.test/bot.png","type":"Bot"},
			{"login":"ghost","id":0,"html_url":"https://github.com/ghost","avatar_url":"https://a.test/ghost.png","type":"User"},
			{"login":"noavatar","id":3,"html_url":"https://github.com/noavatar","avatar_url":"","type":"User"}
		]`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	contributors, err := client.ListContributors(context.Background(), testRepo)
	require.NoError(t, err)

	require.Len(t, contributors, 1)
	assert.Equal(t, "alice", contributors[0].Login)
}

func TestListClosedIssuesSkipsPullRequests(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/acme/widgets/issues", r.URL.Path)
		assert.Equal(t, "closed", r.URL.Query().Get("state"))
		w.Write([]byte(`[
			{"id":10,"number":1,"html_url":"https://github.com/acme/widgets/issues/1","title":"Crash on load","state":"closed"},
			{"id":11,"number":2,"html_url":"https://github.com/acme/widgets/pull/2","title":"Fix crash","state":"closed","pull_request":{"url":"x"}},
			{"id":12,"number":3,"html_url":"https://github.com/acme/widgets/issues/3","title":"Still open somehow","state":"open"},
			{"id":13,"number":0,"html_url":"https://github.com/acme/widgets/issues/0","title":"Broken entry","state":"closed"}
		]`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	issues, err := client.ListClosedIssues(context.Background(), testRepo)
	require.NoError(t, err)

	require.Len(t, issues, 1)
	assert.Equal(t, 1, issues[0].Number)
}

func TestGetIssueUsesRawAccept(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/acme/widgets/issues/7", r.URL.Path)
		assert.Equal(t, "application/vnd.github.raw+json", r.Header.Get("Accept"))
		w.Write([]byte(`{"id":70,"number":7,"html_url":"https://github.com/acme/widgets/issues/7","title":"Flaky test","body":"raw body","state":"closed","comments":4,"labels":[{"name":"bug"}]}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	issue, err := client.GetIssue(context.Background(), testRepo, 7)
	require.NoError(t, err)

	assert.Equal(t, "raw body", issue.Body)
	assert.Equal(t, 4, issue.Comments)
	require.Len(t, issue.Labels, 1)
	assert.Equal(t, "bug", issue.Labels[0].Name)
}

func TestGetCommitIncludesFiles(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/acme/widgets/commits/abc123", r.URL.Path)
		w.Write([]byte(`{
			"sha":"abc123",
			"html_url":"https://github.com/acme/widgets/commit/abc123",
			"commit":{"message":"Fix crash on load","comment_count":2},
			"author":{"login":"alice","id":1,"type":"User"},
			"files":[{"filename":"main.go","status":"modified","patch":"@@ -1 +1 @@"}]
		}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	commit, err := client.GetCommit(context.Background(), testRepo, "abc123")
	require.NoError(t, err)

	assert.Equal(t, 2, commit.Commit.CommentCount)
	require.Len(t, commit.Files, 1)
	assert.Equal(t, "main.go", commit.Files[0].Filename)
}

func TestListCommits(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/acme/widgets/commits", r.URL.Path)
		w.Write([]byte(`[
			{"sha":"abc123","html_url":"https://github.com/acme/widgets/commit/abc123","commit":{"message":"First"},"author":{"login":"alice","id":1,"type":"User"}},
			{"sha":"def456","html_url":"https://github.com/acme/widgets/commit/def456","commit":{"message":"Second"},"author":null}
		]`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	commits, err := client.ListCommits(context.Background(), testRepo)
	require.NoError(t, err)

	// unattributable commits stay in the list, the aggregator decides what to drop
	require.Len(t, commits, 2)
	assert.Nil(t, commits[1].Author)
}
