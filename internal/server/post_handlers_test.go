package server

import (
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"microblog/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// postBodies returns the bodies of the posts in a listing response.
func postBodies(t *testing.T, body map[string]any) []string {
	t.Helper()
	page, ok := body["posts"].(map[string]any)
	require.True(t, ok, "response has no posts page: %v", body)
	items := page["items"].([]any)
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.(map[string]any)["body"].(string))
	}
	return out
}

func TestFeed_FollowAndUnfollow(t *testing.T) {
	env := newTestEnv(t)
	_, aliceToken := env.login(t, "alice")
	_, bobToken := env.login(t, "bob")

	status, _ := env.do(t, http.MethodPost, "/index", map[string]any{"post": "alice was here"}, aliceToken)
	require.Equal(t, http.StatusCreated, status)

	status, body := env.do(t, http.MethodPost, "/follow/bob", nil, aliceToken)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "You are following bob!", body["flash"])

	status, body = env.do(t, http.MethodPost, "/index", map[string]any{"post": "hello"}, bobToken)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "Your post is now live!", body["flash"])
	post := body["post"].(map[string]any)
	assert.Equal(t, "bob", post["author"].(map[string]any)["username"])

	status, body = env.do(t, http.MethodGet, "/index", nil, aliceToken)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []string{"hello", "alice was here"}, postBodies(t, body))

	status, body = env.do(t, http.MethodPost, "/unfollow/bob", nil, aliceToken)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "You are not following bob.", body["flash"])

	status, body = env.do(t, http.MethodGet, "/", nil, aliceToken)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []string{"alice was here"}, postBodies(t, body))

	// bob's own feed never depended on alice.
	status, body = env.do(t, http.MethodGet, "/index", nil, bobToken)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []string{"hello"}, postBodies(t, body))
}

func TestCreatePost_Validation(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.login(t, "alice")

	for _, text := range []string{"", "   ", strings.Repeat("x", 141)} {
		status, _ := env.do(t, http.MethodPost, "/index", map[string]any{"post": text}, token)
		assert.Equal(t, http.StatusBadRequest, status, "post of length %d", len(text))
	}

	status, _ := env.do(t, http.MethodPost, "/index", map[string]any{"post": strings.Repeat("é", 140)}, token)
	assert.Equal(t, http.StatusCreated, status)
}

func TestExplore_Paging(t *testing.T) {
	env := newTestEnv(t)
	carol := testutil.CreateUser(t, env.db, "carol")
	_, token := env.login(t, "alice")

	base := time.Now().Add(-time.Hour)
	for i := 1; i <= 7; i++ {
		testutil.CreatePost(t, env.db, carol, fmt.Sprintf("post %d", i), base.Add(time.Duration(i)*time.Minute))
	}

	status, body := env.do(t, http.MethodGet, "/explore", nil, token)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Explore", body["title"])
	assert.Equal(t, []string{"post 7", "post 6", "post 5"}, postBodies(t, body))
	assert.Equal(t, "/explore?page=2", body["next_url"])
	assert.NotContains(t, body, "prev_url")

	status, body = env.do(t, http.MethodGet, "/explore?page=3", nil, token)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []string{"post 1"}, postBodies(t, body))
	assert.Equal(t, "/explore?page=2", body["prev_url"])
	assert.NotContains(t, body, "next_url")

	status, body = env.do(t, http.MethodGet, "/explore?page=9", nil, token)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, postBodies(t, body))

	status, body = env.do(t, http.MethodGet, "/explore?page=bogus", nil, token)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []string{"post 7", "post 6", "post 5"}, postBodies(t, body))
}
