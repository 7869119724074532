package aggregator

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alimgiray/whodid/internal/ghapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAggregator(baseURL string, issueLimit, commitLimit int) *Aggregator {
	client := ghapi.NewClient(baseURL, "test-token")
	client.RateLimitSlack = 0
	client.PageDelay = 0
	client.DetailDelay = 0
	return New(client, issueLimit, commitLimit)
}

// fakeRepoServer serves a minimal single-repository GitHub API
func fakeRepoServer(t *testing.T, routes map[string]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if body, ok := routes[r.URL.Path]; ok {
			w.Write([]byte(body))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
}

func TestRunAggregatesContributorActivity(t *testing.T) {
	server := fakeRepoServer(t, map[string]string{
		"/repos/acme/widgets/contributors": `[
			{"login":"alice","id":1,"html_url":"https://github.com/alice","avatar_url":"https://a.test/alice.png","type":"User"}
		]`,
		"/repos/acme/widgets/issues": `[
			{"id":100,"number":1,"html_url":"https://github.com/acme/widgets/issues/1","title":"Crash on load","state":"closed",
			 "assignees":[{"login":"alice","id":1,"html_url":"https://github.com/alice","avatar_url":"https://a.test/alice.png","type":"User"}]}
		]`,
		"/repos/acme/widgets/issues/1": `{"id":100,"number":1,"html_url":"https://github.com/acme/widgets/issues/1","title":"Crash on load",
			"body":"Stack trace attached","state":"closed","state_reason":"completed","comments":3,"labels":[{"name":"bug"},{"name":"p1"}],
			"assignees":[{"login":"alice","id":1,"html_url":"https://github.com/alice","avatar_url":"https://a.test/alice.png","type":"User"}]}`,
		"/repos/acme/widgets/commits": `[
			{"sha":"abc123","html_url":"https://github.com/acme/widgets/commit/abc123",
			 "commit":{"message":"Fix crash on load\n\nLonger explanation"},
			 "author":{"login":"alice","id":1,"html_url":"https://github.com/alice","avatar_url":"https://a.test/alice.png","type":"User"}}
		]`,
		"/repos/acme/widgets/commits/abc123": `{"sha":"abc123","html_url":"https://github.com/acme/widgets/commit/abc123",
			"commit":{"message":"Fix crash on load\n\nLonger explanation","comment_count":2},
			"author":{"login":"alice","id":1,"type":"User"},
			"files":[{"filename":"main.go","status":"modified","patch":"@@ -1 +1 @@"},{"filename":"util.go","status":"added","patch":""}]}`,
	})
	defer server.Close()

	agg := newTestAggregator(server.URL, 500, 500)
	result := agg.Run(context.Background(), []string{"https://github.com/acme/widgets"})

	require.Equal(t, 1, result.Size())
	alice := result.Contributor("alice")
	require.NotNil(t, alice)
	assert.Equal(t, int64(1), alice.ID)
	assert.Equal(t, "https://github.com/alice", alice.URL)

	require.Len(t, alice.Works, 1)
	work := alice.Works[0]
	assert.Equal(t, "https://github.com/acme/widgets", work.RepositoryURL)

	require.Len(t, work.Issues, 1)
	issue := work.Issues[0]
	assert.Equal(t, 1, issue.Number)
	require.NotNil(t, issue.Body)
	assert.Equal(t, "Stack trace attached", *issue.Body)
	assert.Equal(t, []string{"bug", "p1"}, issue.Labels)
	assert.Equal(t, 3, issue.Comments)
	require.NotNil(t, issue.StateReason)
	assert.Equal(t, "completed", *issue.StateReason)

	require.Len(t, work.Commits, 1)
	commit := work.Commits[0]
	assert.Equal(t, "abc123", commit.SHA)
	assert.Equal(t, "Fix crash on load", commit.Message)
	require.NotNil(t, commit.CommentCount)
	assert.Equal(t, 2, *commit.CommentCount)
	assert.Equal(t, []FileChange{{Filename: "main.go", Status: "modified"}, {Filename: "util.go", Status: "added"}}, commit.FilesChanged)
	require.NotNil(t, commit.DiffPatch)
	assert.Equal(t, "--- File: main.go ---\n@@ -1 +1 @@", *commit.DiffPatch)

	assert.Equal(t, []string{"https://github.com/acme/widgets"}, result.meta.ProcessedRepositories)
	assert.GreaterOrEqual(t, result.meta.ProcessingTimeSeconds, 0.0)
}

func TestRunPromotesActivityOnlyUsers(t *testing.T) {
	server := fakeRepoServer(t, map[string]string{
		"/repos/acme/widgets/contributors": `[]`,
		"/repos/acme/widgets/issues":       `[]`,
		"/repos/acme/widgets/commits": `[
			{"sha":"abc123","html_url":"https://github.com/acme/widgets/commit/abc123",
			 "commit":{"message":"Initial import"},
			 "author":{"login":"bob","id":7,"html_url":"https://github.com/bob","avatar_url":"https://a.test/bob.png","type":"User"}}
		]`,
	})
	defer server.Close()

	agg := newTestAggregator(server.URL, 0, 0)
	result := agg.Run(context.Background(), []string{"https://github.com/acme/widgets"})

	bob := result.Contributor("bob")
	require.NotNil(t, bob)
	assert.Equal(t, int64(7), bob.ID)
	require.Len(t, bob.Works, 1)
	assert.Len(t, bob.Works[0].Commits, 1)
}

func TestRunSkipsUsersWithoutIdentity(t *testing.T) {
	server := fakeRepoServer(t, map[string]string{
		"/repos/acme/widgets/contributors": `[]`,
		"/repos/acme/widgets/issues": `[
			{"id":100,"number":1,"html_url":"https://github.com/acme/widgets/issues/1","title":"Mystery","state":"closed",
			 "assignees":[{"login":"ghost","id":0,"html_url":"","avatar_url":"","type":"User"}]}
		]`,
		"/repos/acme/widgets/commits": `[]`,
	})
	defer server.Close()

	agg := newTestAggregator(server.URL, 0, 0)
	result := agg.Run(context.Background(), []string{"https://github.com/acme/widgets"})

	assert.Equal(t, 0, result.Size())
	assert.Nil(t, result.Contributor("ghost"))

	out := result.Output()
	assert.Equal(t, []string{"ghost"}, out.Metadata.SkippedUsers)
}

func TestRunListedContributorWithoutActivityHasNoWorks(t *testing.T) {
	server := fakeRepoServer(t, map[string]string{
		"/repos/acme/widgets/contributors": `[
			{"login":"carol","id":3,"html_url":"https://github.com/carol","avatar_url":"https://a.test/carol.png","type":"User"}
		]`,
		"/repos/acme/widgets/issues":  `[]`,
		"/repos/acme/widgets/commits": `[]`,
	})
	defer server.Close()

	agg := newTestAggregator(server.URL, 500, 500)
	result := agg.Run(context.Background(), []string{"https://github.com/acme/widgets"})

	carol := result.Contributor("carol")
	require.NotNil(t, carol)
	assert.NotNil(t, carol.Works)
	assert.Empty(t, carol.Works)
}

func TestIssueDetailBudgetChargesPerAttempt(t *testing.T) {
	detailCalls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/repos/acme/widgets/contributors" || r.URL.Path == "/repos/acme/widgets/commits":
			w.Write([]byte(`[]`))
		case r.URL.Path == "/repos/acme/widgets/issues":
			w.Write([]byte(`[
				{"id":100,"number":1,"html_url":"https://github.com/acme/widgets/issues/1","title":"First","state":"closed",
				 "assignees":[{"login":"alice","id":1,"html_url":"https://github.com/alice","avatar_url":"https://a.test/alice.png","type":"User"}]},
				{"id":101,"number":2,"html_url":"https://github.com/acme/widgets/issues/2","title":"Second","state":"closed",
				 "assignees":[{"login":"alice","id":1,"html_url":"https://github.com/alice","avatar_url":"https://a.test/alice.png","type":"User"}]}
			]`))
		case strings.HasPrefix(r.URL.Path, "/repos/acme/widgets/issues/"):
			detailCalls++
			w.Write([]byte(`{"id":100,"number":1,"html_url":"https://github.com/acme/widgets/issues/1","title":"First","body":"details","state":"closed","comments":1,
				"assignees":[{"login":"alice","id":1,"html_url":"https://github.com/alice","avatar_url":"https://a.test/alice.png","type":"User"}]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	agg := newTestAggregator(server.URL, 1, 0)
	result := agg.Run(context.Background(), []string{"https://github.com/acme/widgets"})

	assert.Equal(t, 1, detailCalls)

	alice := result.Contributor("alice")
	require.NotNil(t, alice)
	require.Len(t, alice.Works, 1)
	issues := alice.Works[0].Issues
	require.Len(t, issues, 2)

	// first issue got the detail pass, the second stays summary-only
	assert.NotNil(t, issues[0].Body)
	assert.Nil(t, issues[1].Body)
	assert.Equal(t, "Second", issues[1].Title)
	assert.Equal(t, 2, issues[1].Number)
}

func TestCommitDetailFailureKeepsSummaryRecord(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/repos/acme/widgets/contributors" || r.URL.Path == "/repos/acme/widgets/issues":
			w.Write([]byte(`[]`))
		case r.URL.Path == "/repos/acme/widgets/commits":
			w.Write([]byte(`[
				{"sha":"abc123","html_url":"https://github.com/acme/widgets/commit/abc123",
				 "commit":{"message":"Fix crash"},
				 "author":{"login":"alice","id":1,"html_url":"https://github.com/alice","avatar_url":"https://a.test/alice.png","type":"User"}}
			]`))
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer server.Close()

	agg := newTestAggregator(server.URL, 500, 500)
	result := agg.Run(context.Background(), []string{"https://github.com/acme/widgets"})

	alice := result.Contributor("alice")
	require.NotNil(t, alice)
	require.Len(t, alice.Works, 1)
	require.Len(t, alice.Works[0].Commits, 1)

	commit := alice.Works[0].Commits[0]
	assert.Equal(t, "Fix crash", commit.Message)
	assert.Nil(t, commit.CommentCount)
	assert.Nil(t, commit.FilesChanged)
	assert.Nil(t, commit.DiffPatch)
}

func TestRunReplacesWorkEntryOnReprocess(t *testing.T) {
	commitLists := [][]byte{
		[]byte(`[
			{"sha":"abc123","html_url":"https://github.com/acme/widgets/commit/abc123","commit":{"message":"First"},
			 "author":{"login":"alice","id":1,"html_url":"https://github.com/alice","avatar_url":"https://a.test/alice.png","type":"User"}}
		]`),
		[]byte(`[
			{"sha":"def456","html_url":"https://github.com/acme/widgets/commit/def456","commit":{"message":"Second"},
			 "author":{"login":"alice","id":1,"html_url":"https://github.com/alice","avatar_url":"https://a.test/alice.png","type":"User"}}
		]`),
	}
	commitCalls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/repos/acme/widgets/contributors", "/repos/acme/widgets/issues":
			w.Write([]byte(`[]`))
		case "/repos/acme/widgets/commits":
			w.Write(commitLists[commitCalls])
			commitCalls++
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	agg := newTestAggregator(server.URL, 0, 0)
	result := agg.Run(context.Background(), []string{
		"https://github.com/acme/widgets",
		"https://github.com/acme/widgets",
	})

	alice := result.Contributor("alice")
	require.NotNil(t, alice)
	require.Len(t, alice.Works, 1)
	require.Len(t, alice.Works[0].Commits, 1)
	assert.Equal(t, "def456", alice.Works[0].Commits[0].SHA)
}

func TestRunSkipsUnparsableURLs(t *testing.T) {
	server := fakeRepoServer(t, map[string]string{
		"/repos/acme/widgets/contributors": `[
			{"login":"alice","id":1,"html_url":"https://github.com/alice","avatar_url":"https://a.test/alice.png","type":"User"}
		]`,
		"/repos/acme/widgets/issues":  `[]`,
		"/repos/acme/widgets/commits": `[]`,
	})
	defer server.Close()

	agg := newTestAggregator(server.URL, 0, 0)
	result := agg.Run(context.Background(), []string{
		"https://gitlab.com/acme/widgets",
		"https://github.com/acme/widgets",
	})

	assert.Equal(t, 1, result.Size())
	assert.NotNil(t, result.Contributor("alice"))
	assert.Len(t, result.meta.ProcessedRepositories, 2)
}

func TestRunCancelledBetweenRepositories(t *testing.T) {
	server := fakeRepoServer(t, map[string]string{})
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	agg := newTestAggregator(server.URL, 0, 0)
	result := agg.Run(ctx, []string{"https://github.com/acme/widgets"})
	assert.Equal(t, 0, result.Size())
}

func TestCommitDeduplicationBySHA(t *testing.T) {
	server := fakeRepoServer(t, map[string]string{
		"/repos/acme/widgets/contributors": `[]`,
		"/repos/acme/widgets/issues":       `[]`,
		"/repos/acme/widgets/commits": `[
			{"sha":"abc123","html_url":"https://github.com/acme/widgets/commit/abc123","commit":{"message":"Fix"},
			 "author":{"login":"alice","id":1,"html_url":"https://github.com/alice","avatar_url":"https://a.test/alice.png","type":"User"}},
			{"sha":"abc123","html_url":"https://github.com/acme/widgets/commit/abc123","commit":{"message":"Fix"},
			 "author":{"login":"alice","id":1,"html_url":"https://github.com/alice","avatar_url":"https://a.test/alice.png","type":"User"}}
		]`,
	})
	defer server.Close()

	agg := newTestAggregator(server.URL, 0, 0)
	result := agg.Run(context.Background(), []string{"https://github.com/acme/widgets"})

	alice := result.Contributor("alice")
	require.NotNil(t, alice)
	require.Len(t, alice.Works, 1)
	assert.Len(t, alice.Works[0].Commits, 1)
}

func TestCommitsWithoutUserAuthorAreDropped(t *testing.T) {
	server := fakeRepoServer(t, map[string]string{
		"/repos/acme/widgets/contributors": `[]`,
		"/repos/acme/widgets/issues":       `[]`,
		"/repos/acme/widgets/commits": `[
			{"sha":"abc123","html_url":"https://github.com/acme/widgets/commit/abc123","commit":{"message":"Bot bump"},
			 "author":{"login":"dependabot[bot]","id":2,"type":"Bot"}},
			{"sha":"def456","html_url":"https://github.com/acme/widgets/commit/def456","commit":{"message":"Orphan"},"author":null}
		]`,
	})
	defer server.Close()

	agg := newTestAggregator(server.URL, 0, 0)
	result := agg.Run(context.Background(), []string{"https://github.com/acme/widgets"})
	assert.Equal(t, 0, result.Size())
}

func TestSummarizeMessage(t *testing.T) {
	assert.Equal(t, "No commit message", summarizeMessage(""))
	assert.Equal(t, "Fix crash", summarizeMessage("Fix crash"))
	assert.Equal(t, "Fix crash", summarizeMessage("Fix crash\n\nLonger body"))

	long := strings.Repeat("a", 250)
	got := summarizeMessage(long)
	assert.Len(t, got, 200)
	assert.True(t, strings.HasSuffix(got, "..."))
}

func TestCombinedPatch(t *testing.T) {
	patch := combinedPatch([]ghapi.CommitFile{
		{Filename: "a.go", Status: "modified", Patch: "@@ -1 +1 @@"},
		{Filename: "b.go", Status: "added", Patch: ""},
		{Filename: "", Status: "removed", Patch: "@@ -5 +0 @@"},
	})
	require.NotNil(t, patch)
	assert.Equal(t, "--- File: a.go ---\n@@ -1 +1 @@\n\n--- File: Unknown ---\n@@ -5 +0 @@", *patch)

	assert.Nil(t, combinedPatch(nil))
	assert.Nil(t, combinedPatch([]ghapi.CommitFile{{Filename: "a.go", Patch: ""}}))
}
