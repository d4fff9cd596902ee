package server

import (
	"net/http"
	"strings"
	"testing"
	"testing/fstest"
)

func TestSPAFallback(t *testing.T) {
	prev := uiFS
	t.Cleanup(func() { SetUI(prev) })
	SetUI(fstest.MapFS{
		"index.html": {Data: []byte("<html>cony</html>")},
		"app.js":     {Data: []byte("console.log('cony')")},
	})
	srv := testServer(t)

	w := do(t, srv, "GET", "/app.js", "", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "console.log") {
		t.Errorf("asset: status = %d body = %q", w.Code, w.Body.String())
	}

	w = do(t, srv, "GET", "/patients/123", "", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "<html>cony</html>") {
		t.Errorf("fallback: status = %d body = %q", w.Code, w.Body.String())
	}

	// API paths never fall through to the client.
	if w := do(t, srv, "GET", "/api/unknown", "", ""); w.Code != http.StatusNotFound {
		t.Errorf("api status = %d, want 404", w.Code)
	}
}
