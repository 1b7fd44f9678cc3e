package httpadapter_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpadapter "github.com/PabloGalante/postcraft/internal/adapters/http"
	"github.com/PabloGalante/postcraft/internal/adapters/llm"
	"github.com/PabloGalante/postcraft/internal/adapters/storage/memory"
	"github.com/PabloGalante/postcraft/internal/app/refinement"
)

// browser keeps the session cookie between requests.
type browser struct {
	t      *testing.T
	srv    http.Handler
	store  *memory.SessionStore
	cookie *http.Cookie
}

func (b *browser) get(path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	return b.send(req)
}

func (b *browser) post(path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return b.send(req)
}

func (b *browser) send(req *http.Request) *httptest.ResponseRecorder {
	if b.cookie != nil {
		req.AddCookie(b.cookie)
	}
	w := httptest.NewRecorder()
	b.srv.ServeHTTP(w, req)
	for _, c := range w.Result().Cookies() {
		if c.Name == "postcraft_session" {
			b.cookie = c
		}
	}
	return w
}

func newBrowser(t *testing.T, layout string) *browser {
	store := memory.NewSessionStore()
	svc := refinement.NewService(llm.NewMockLLM(), store, nil)
	return &browser{t: t, srv: httpadapter.NewServer(svc, httpadapter.Options{Layout: layout}), store: store}
}

func TestIndexDoesNotStoreSessions(t *testing.T) {
	b := newBrowser(t, "desktop")

	for i := 0; i < 5; i++ {
		w := b.get("/")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "AI LinkedIn Post Generator")
		assert.Contains(t, w.Body.String(), "Quick Topics")
		assert.NotContains(t, w.Body.String(), "Your Generated Post")
	}
	assert.Nil(t, b.cookie)
	assert.Zero(t, b.store.Len())

	w := b.get("/ui/download")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, b.store.Len())
}

func TestFirstPostStartsSession(t *testing.T) {
	b := newBrowser(t, "desktop")
	b.get("/")

	b.post("/ui/generate", url.Values{"topic": {"Remote work tips"}})

	require.NotNil(t, b.cookie)
	assert.NotEmpty(t, b.cookie.Value)
	assert.Equal(t, 1, b.store.Len())

	first := b.cookie.Value
	b.get("/")
	b.post("/ui/feedback", url.Values{"feedback": {"shorter"}})
	assert.Equal(t, first, b.cookie.Value)
	assert.Equal(t, 1, b.store.Len())
}

func TestUIDraftingFlow(t *testing.T) {
	b := newBrowser(t, "desktop")
	b.get("/")

	w := b.post("/ui/generate", url.Values{"topic": {"Remote work tips"}})
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/?notice=generated", w.Header().Get("Location"))

	w = b.post("/ui/feedback", url.Values{"preset": {"shorter"}})
	require.Equal(t, http.StatusSeeOther, w.Code)

	w = b.get("/?notice=updated")
	body := w.Body.String()
	assert.Contains(t, body, "Post updated!")
	assert.Contains(t, body, "Your Generated Post")
	assert.Contains(t, body, "Version 2 (Current)")
	assert.Contains(t, body, "Feedback 1:")
	assert.Contains(t, body, "Make the post shorter")

	w = b.post("/ui/revert", url.Values{"version": {"1"}})
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Contains(t, b.get("/").Body.String(), "Version 1 (Current)")

	w = b.get("/ui/download")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "linkedin_post_v1.txt")
	assert.Contains(t, w.Body.String(), "Remote work tips")

	w = b.post("/ui/reset", nil)
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.NotContains(t, b.get("/").Body.String(), "Your Generated Post")
}

func TestUIErrorsRenderAsFlash(t *testing.T) {
	b := newBrowser(t, "desktop")
	b.get("/")

	w := b.post("/ui/feedback", url.Values{"feedback": {"make it shorter"}})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "generate a post before giving feedback")
}

func TestUIGenerationFailureKeepsTypedTopic(t *testing.T) {
	svc := refinement.NewService(failingLLM{}, memory.NewSessionStore(), nil)
	b := &browser{t: t, srv: httpadapter.NewServer(svc, httpadapter.Options{})}
	b.get("/")

	w := b.post("/ui/generate", url.Values{"topic": {"Remote work tips"}})

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "upstream rate limited")
	assert.Contains(t, w.Body.String(), "Remote work tips")
}

func TestQuickTopicPrefillsTopicBox(t *testing.T) {
	b := newBrowser(t, "desktop")

	w := b.get("/?topic=networking")

	assert.Contains(t, w.Body.String(), "The power of authentic networking")
}

func TestMobileLayoutMovesQuickTopicsToSidebar(t *testing.T) {
	b := newBrowser(t, "mobile")

	body := b.get("/").Body.String()

	assert.Contains(t, body, `class="layout-mobile"`)
	sidebarEnd := strings.Index(body, "</aside>")
	quick := strings.Index(body, "Quick Topics")
	require.Positive(t, quick)
	assert.Less(t, quick, sidebarEnd)
}

func TestUnknownPathIs404(t *testing.T) {
	b := newBrowser(t, "desktop")
	assert.Equal(t, http.StatusNotFound, b.get("/nope").Code)
}
