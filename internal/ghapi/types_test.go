package ghapi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRepoURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		want    RepoRef
		wantErr bool
	}{
		{
			name: "plain repository URL",
			url:  "https://github.com/acme/widgets",
			want: RepoRef{Owner: "acme", Name: "widgets"},
		},
		{
			name: "trailing slash",
			url:  "https://github.com/acme/widgets/",
			want: RepoRef{Owner: "acme", Name: "widgets"},
		},
		{
			name: "git suffix is stripped",
			url:  "https://github.com/acme/widgets.git",
			want: RepoRef{Owner: "acme", Name: "widgets"},
		},
		{
			name: "extra path segments are ignored",
			url:  "https://github.com/acme/widgets/tree/main",
			want: RepoRef{Owner: "acme", Name: "widgets"},
		},
		{
			name: "host is case insensitive",
			url:  "https://GitHub.com/acme/widgets",
			want: RepoRef{Owner: "acme", Name: "widgets"},
		},
		{
			name:    "wrong host",
			url:     "https://gitlab.com/acme/widgets",
			wantErr: true,
		},
		{
			name:    "owner only",
			url:     "https://github.com/acme",
			wantErr: true,
		},
		{
			name:    "no path",
			url:     "https://github.com/",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRepoURL(tt.url)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCanonicalURL(t *testing.T) {
	ref, err := ParseRepoURL("https://github.com/Acme/Widgets.git")
	require.NoError(t, err)
	assert.Equal(t, "https://github.com/Acme/Widgets", ref.CanonicalURL())
	assert.Equal(t, "Acme/Widgets", ref.String())
}

func TestActorIsUser(t *testing.T) {
	assert.True(t, (&Actor{Login: "alice", Type: ActorTypeUser}).IsUser())
	assert.False(t, (&Actor{Login: "dependabot[bot]", Type: ActorTypeBot}).IsUser())
	assert.False(t, (&Actor{Login: "acme", Type: ActorTypeOrganization}).IsUser())
	assert.False(t, (&Actor{Type: ActorTypeUser}).IsUser())

	var missing *Actor
	assert.False(t, missing.IsUser())
}

func TestIssueUserAssignees(t *testing.T) {
	alice := &Actor{Login: "alice", Type: ActorTypeUser}
	bot := &Actor{Login: "dependabot[bot]", Type: ActorTypeBot}

	issue := &Issue{Assignees: []*Actor{alice, bot}}
	assert.Equal(t, []*Actor{alice}, issue.UserAssignees())

	// fall back to the single assignee field
	issue = &Issue{Assignee: alice}
	assert.Equal(t, []*Actor{alice}, issue.UserAssignees())

	// assignees list wins over the single field
	issue = &Issue{Assignee: bot, Assignees: []*Actor{alice}}
	assert.Equal(t, []*Actor{alice}, issue.UserAssignees())

	issue = &Issue{}
	assert.Empty(t, issue.UserAssignees())
}

func TestIssueIsPullRequest(t *testing.T) {
	issue := &Issue{PullRequest: []byte(`{"url":"https://api.github.com/repos/acme/widgets/pulls/7"}`)}
	assert.True(t, issue.IsPullRequest())
	assert.False(t, (&Issue{}).IsPullRequest())
}
