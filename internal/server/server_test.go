package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/lazypower/cony/internal/config"
	"github.com/lazypower/cony/internal/domain"
	"github.com/lazypower/cony/internal/service/account"
	"github.com/lazypower/cony/internal/store"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-secret-test-secret-test-secret!"

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Auth.JWTSecret = testSecret
	cfg.Auth.BcryptCost = bcrypt.MinCost
	return &cfg
}

func testServerWith(t *testing.T, cfg *config.Config) *Server {
	t.Helper()
	db, err := store.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	srv, err := New(db, cfg, zap.NewNop(), "test-version")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return srv
}

func testServer(t *testing.T) *Server {
	return testServerWith(t, testConfig())
}

func do(t *testing.T, srv *Server, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rdr)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("decode body %q: %v", w.Body.String(), err)
	}
}

// signUp registers a patient over HTTP and returns its token.
func signUp(t *testing.T, srv *Server, email string) string {
	t.Helper()
	body := `{"email":"` + email + `","password":"correct-horse","name":"Test User"}`
	w := do(t, srv, "POST", "/api/auth/signup", "", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("signup status = %d; body: %s", w.Code, w.Body.String())
	}
	var res struct {
		Token string `json:"token"`
	}
	decode(t, w, &res)
	if res.Token == "" {
		t.Fatal("signup returned no token")
	}
	return res.Token
}

// signInAs creates an account with role directly and signs it in over HTTP.
func signInAs(t *testing.T, srv *Server, email string, role domain.Role) (domain.Profile, string) {
	t.Helper()
	p, err := srv.accounts.Register(context.Background(), account.SignUpInput{
		Email: email, Password: "correct-horse", Name: string(role),
	}, role)
	if err != nil {
		t.Fatalf("Register %s: %v", email, err)
	}
	w := do(t, srv, "POST", "/api/auth/signin", "", `{"email":"`+email+`","password":"correct-horse"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("signin status = %d; body: %s", w.Code, w.Body.String())
	}
	var res struct {
		Token string `json:"token"`
	}
	decode(t, w, &res)
	return p, res.Token
}

func TestHealthEndpoint(t *testing.T) {
	srv := testServer(t)

	w := do(t, srv, "GET", "/api/health", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var body map[string]any
	decode(t, w, &body)
	if body["status"] != "ok" {
		t.Errorf("status = %v, want ok", body["status"])
	}
	if body["version"] != "test-version" {
		t.Errorf("version = %v, want test-version", body["version"])
	}
	if body["db"] != true {
		t.Errorf("db = %v, want true", body["db"])
	}
}

func TestRequestIDEchoed(t *testing.T) {
	srv := testServer(t)

	w := do(t, srv, "GET", "/api/health", "", "")
	if w.Header().Get(requestIDHeader) == "" {
		t.Error("missing generated request id")
	}

	req := httptest.NewRequest("GET", "/api/health", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	if got := w.Header().Get(requestIDHeader); got != "abc-123" {
		t.Errorf("request id = %q, want abc-123", got)
	}
}

func TestUnknownAPIRoute(t *testing.T) {
	srv := testServer(t)

	w := do(t, srv, "GET", "/api/nope", "", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
	var body map[string]any
	decode(t, w, &body)
	if body["error"] == "" {
		t.Error("expected error message")
	}
}

func TestMetricsEndpoint(t *testing.T) {
	srv := testServer(t)
	do(t, srv, "GET", "/api/health", "", "")

	w := do(t, srv, "GET", "/metrics", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), `cony_http_requests_total{method="GET",route="/api/health",status="200"} 1`) {
		t.Errorf("request counter missing from:\n%s", w.Body.String())
	}
}

func TestMetricsDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.Metrics.Disabled = true
	srv := testServerWith(t, cfg)

	if srv.Metrics() != nil {
		t.Error("metrics should be nil when disabled")
	}
	w := do(t, srv, "GET", "/metrics", "", "")
	if w.Code == http.StatusOK {
		t.Errorf("/metrics served while disabled")
	}
	// Requests still work without collectors.
	if w := do(t, srv, "GET", "/api/health", "", ""); w.Code != http.StatusOK {
		t.Errorf("health status = %d", w.Code)
	}
}

func TestSignUpAndMe(t *testing.T) {
	srv := testServer(t)
	token := signUp(t, srv, "ana@example.com")

	w := do(t, srv, "GET", "/api/me", token, "")
	if w.Code != http.StatusOK {
		t.Fatalf("me status = %d; body: %s", w.Code, w.Body.String())
	}
	var me struct {
		Profile struct {
			Email string `json:"email"`
			Role  string `json:"role"`
		} `json:"profile"`
		Navigation []struct {
			View string `json:"view"`
		} `json:"navigation"`
	}
	decode(t, w, &me)
	if me.Profile.Email != "ana@example.com" || me.Profile.Role != "patient" {
		t.Errorf("profile = %+v", me.Profile)
	}
	if len(me.Navigation) != 5 || me.Navigation[0].View != "dashboard" {
		t.Errorf("navigation = %+v", me.Navigation)
	}
}

func TestSignUpValidation(t *testing.T) {
	srv := testServer(t)

	w := do(t, srv, "POST", "/api/auth/signup", "", `{"email":"","password":"short","name":""}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	var body errorBody
	decode(t, w, &body)
	if len(body.Fields) != 3 {
		t.Errorf("fields = %+v, want 3", body.Fields)
	}

	w = do(t, srv, "POST", "/api/auth/signup", "", `{not json`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("malformed body status = %d, want 400", w.Code)
	}
}

func TestSignUpDuplicateEmail(t *testing.T) {
	srv := testServer(t)
	signUp(t, srv, "dup@example.com")

	body := `{"email":"DUP@example.com","password":"correct-horse","name":"Again"}`
	w := do(t, srv, "POST", "/api/auth/signup", "", body)
	if w.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", w.Code)
	}
}

func TestSignInWrongPassword(t *testing.T) {
	srv := testServer(t)
	signUp(t, srv, "ana@example.com")

	w := do(t, srv, "POST", "/api/auth/signin", "", `{"email":"ana@example.com","password":"wrong-password"}`)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestAuthRequired(t *testing.T) {
	srv := testServer(t)

	for _, path := range []string{"/api/me", "/api/emotions", "/api/dashboard", "/api/patients", "/api/admin/stats"} {
		if w := do(t, srv, "GET", path, "", ""); w.Code != http.StatusUnauthorized {
			t.Errorf("GET %s: status = %d, want 401", path, w.Code)
		}
	}
	if w := do(t, srv, "GET", "/api/me", "garbage", ""); w.Code != http.StatusUnauthorized {
		t.Errorf("bad token: status = %d, want 401", w.Code)
	}
}

func TestSignOutRevokesToken(t *testing.T) {
	srv := testServer(t)
	token := signUp(t, srv, "ana@example.com")

	if w := do(t, srv, "POST", "/api/auth/signout", token, ""); w.Code != http.StatusOK {
		t.Fatalf("signout status = %d; body: %s", w.Code, w.Body.String())
	}
	if w := do(t, srv, "GET", "/api/me", token, ""); w.Code != http.StatusUnauthorized {
		t.Errorf("after signout: status = %d, want 401", w.Code)
	}
}

func TestEmotionLifecycle(t *testing.T) {
	srv := testServer(t)
	token := signUp(t, srv, "ana@example.com")

	w := do(t, srv, "POST", "/api/emotions", token, `{"emotion":"calm","intensity":14,"triggers":["work","work"]}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d; body: %s", w.Code, w.Body.String())
	}
	var created domain.EmotionEntry
	decode(t, w, &created)
	if created.Intensity != 10 {
		t.Errorf("intensity = %d, want clamped 10", created.Intensity)
	}
	if len(created.Triggers) != 1 {
		t.Errorf("triggers = %v, want deduplicated", created.Triggers)
	}

	w = do(t, srv, "GET", "/api/emotions", token, "")
	var list []domain.EmotionEntry
	decode(t, w, &list)
	if len(list) != 1 || list[0].ID != created.ID {
		t.Fatalf("list = %+v", list)
	}

	w = do(t, srv, "GET", "/api/dashboard", token, "")
	if w.Code != http.StatusOK {
		t.Fatalf("dashboard status = %d", w.Code)
	}
	var dash struct {
		Streaks struct {
			Current int `json:"current"`
		} `json:"streaks"`
		TotalEmotions int  `json:"total_emotions"`
		Partial       bool `json:"partial"`
	}
	decode(t, w, &dash)
	if dash.Streaks.Current != 1 || dash.TotalEmotions != 1 || dash.Partial {
		t.Errorf("dashboard = %+v", dash)
	}

	w = do(t, srv, "DELETE", "/api/emotions/"+created.ID.String(), token, "")
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", w.Code)
	}
	w = do(t, srv, "DELETE", "/api/emotions/"+created.ID.String(), token, "")
	if w.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", w.Code)
	}
	w = do(t, srv, "DELETE", "/api/emotions/not-a-uuid", token, "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad id status = %d, want 400", w.Code)
	}
}

func TestEmotionValidation(t *testing.T) {
	srv := testServer(t)
	token := signUp(t, srv, "ana@example.com")

	w := do(t, srv, "POST", "/api/emotions", token, `{"emotion":"ennui","intensity":5,"date":"yesterday"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	var body errorBody
	decode(t, w, &body)
	fields := map[string]bool{}
	for _, f := range body.Fields {
		fields[f.Field] = true
	}
	if !fields["emotion"] || !fields["date"] {
		t.Errorf("fields = %+v, want emotion and date", body.Fields)
	}
}

func TestThoughtsAndAnalytics(t *testing.T) {
	srv := testServer(t)
	token := signUp(t, srv, "ana@example.com")

	body := `{"situation":"meeting","automatic_thought":"I will fail","emotion":"Anxiety",
		"pre_intensity":8,"evidence":"I prepared","alternative_thought":"I can handle it","post_intensity":3}`
	w := do(t, srv, "POST", "/api/thoughts", token, body)
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d; body: %s", w.Code, w.Body.String())
	}

	w = do(t, srv, "GET", "/api/thoughts", token, "")
	var list []domain.ThoughtRecord
	decode(t, w, &list)
	if len(list) != 1 {
		t.Fatalf("thoughts = %d, want 1", len(list))
	}

	w = do(t, srv, "GET", "/api/analytics", token, "")
	if w.Code != http.StatusOK {
		t.Fatalf("analytics status = %d", w.Code)
	}
	var report struct {
		AverageImprovement float64 `json:"average_improvement"`
		Trend              []any   `json:"trend"`
		Weekly             struct {
			Thoughts int `json:"thoughts"`
		} `json:"weekly"`
	}
	decode(t, w, &report)
	if report.AverageImprovement != 5 {
		t.Errorf("average improvement = %v, want 5", report.AverageImprovement)
	}
	if len(report.Trend) != 7 {
		t.Errorf("trend length = %d, want 7", len(report.Trend))
	}
	if report.Weekly.Thoughts != 1 {
		t.Errorf("weekly thoughts = %d, want 1", report.Weekly.Thoughts)
	}
}

func TestResources(t *testing.T) {
	srv := testServer(t)
	token := signUp(t, srv, "ana@example.com")

	w := do(t, srv, "GET", "/api/resources", token, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var catalog struct {
		Categories []struct {
			ID string `json:"id"`
		} `json:"categories"`
	}
	decode(t, w, &catalog)
	if len(catalog.Categories) == 0 {
		t.Error("empty catalog")
	}
}

func TestRoleGates(t *testing.T) {
	srv := testServer(t)
	patient := signUp(t, srv, "ana@example.com")
	_, psych := signInAs(t, srv, "doc@example.com", domain.RolePsychologist)
	_, adminTok := signInAs(t, srv, "root@example.com", domain.RoleAdmin)

	cases := []struct {
		token  string
		method string
		path   string
		want   int
	}{
		{patient, "GET", "/api/patients", http.StatusForbidden},
		{patient, "GET", "/api/admin/stats", http.StatusForbidden},
		{psych, "GET", "/api/emotions", http.StatusForbidden},
		{psych, "GET", "/api/admin/users", http.StatusForbidden},
		{psych, "GET", "/api/patients", http.StatusOK},
		{adminTok, "GET", "/api/thoughts", http.StatusForbidden},
		{adminTok, "GET", "/api/resources", http.StatusForbidden},
		{adminTok, "GET", "/api/admin/users", http.StatusOK},
		{adminTok, "GET", "/api/dashboard", http.StatusOK},
	}
	for _, c := range cases {
		if w := do(t, srv, c.method, c.path, c.token, ""); w.Code != c.want {
			t.Errorf("%s %s: status = %d, want %d", c.method, c.path, w.Code, c.want)
		}
	}
}

func TestClinicalWorkflow(t *testing.T) {
	srv := testServer(t)
	signUp(t, srv, "ana@example.com")
	doc, psych := signInAs(t, srv, "doc@example.com", domain.RolePsychologist)
	_, adminTok := signInAs(t, srv, "root@example.com", domain.RoleAdmin)

	w := do(t, srv, "GET", "/api/admin/users?role=patient", adminTok, "")
	var users []domain.Profile
	decode(t, w, &users)
	if len(users) != 1 {
		t.Fatalf("patients = %d, want 1", len(users))
	}
	patientID := users[0].ID.String()

	// Not yet assigned.
	if w := do(t, srv, "GET", "/api/patients/"+patientID, psych, ""); w.Code != http.StatusForbidden {
		t.Errorf("unassigned detail status = %d, want 403", w.Code)
	}

	w = do(t, srv, "POST", "/api/admin/patients/"+patientID+"/assign", adminTok,
		`{"psychologist_id":"`+doc.ID.String()+`"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("assign status = %d; body: %s", w.Code, w.Body.String())
	}

	w = do(t, srv, "GET", "/api/patients?status=active", psych, "")
	var roster struct {
		Patients []domain.Patient `json:"patients"`
		Stats    struct {
			Total int `json:"total"`
		} `json:"stats"`
	}
	decode(t, w, &roster)
	if len(roster.Patients) != 1 || roster.Stats.Total != 1 {
		t.Fatalf("roster = %+v", roster)
	}

	w = do(t, srv, "PATCH", "/api/patients/"+patientID, psych, `{"risk_level":"high","notes":"check in weekly"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("update status = %d; body: %s", w.Code, w.Body.String())
	}
	var updated domain.Patient
	decode(t, w, &updated)
	if updated.RiskLevel != domain.RiskHigh || updated.Notes != "check in weekly" {
		t.Errorf("updated = %+v", updated)
	}

	w = do(t, srv, "PATCH", "/api/patients/"+patientID, psych, `{"status":"paused"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad status update = %d, want 400", w.Code)
	}

	w = do(t, srv, "GET", "/api/admin/stats", adminTok, "")
	var stats struct {
		TotalUsers int `json:"total_users"`
	}
	decode(t, w, &stats)
	if stats.TotalUsers != 3 {
		t.Errorf("total users = %d, want 3", stats.TotalUsers)
	}

	w = do(t, srv, "PATCH", "/api/admin/psychologists/"+doc.ID.String(), adminTok, `{"max_patients":1,"license":"PSY-1"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("update psychologist status = %d; body: %s", w.Code, w.Body.String())
	}
	w = do(t, srv, "GET", "/api/admin/psychologists", adminTok, "")
	var psychs []struct {
		License string `json:"license"`
		Full    bool   `json:"full"`
	}
	decode(t, w, &psychs)
	if len(psychs) != 1 || psychs[0].License != "PSY-1" || !psychs[0].Full {
		t.Errorf("psychologists = %+v", psychs)
	}
}

func TestSetRoleRevokesSessions(t *testing.T) {
	srv := testServer(t)
	patientTok := signUp(t, srv, "ana@example.com")
	admin, adminTok := signInAs(t, srv, "root@example.com", domain.RoleAdmin)

	w := do(t, srv, "GET", "/api/admin/users?role=patient", adminTok, "")
	var users []domain.Profile
	decode(t, w, &users)
	if len(users) != 1 {
		t.Fatalf("patients = %d", len(users))
	}

	w = do(t, srv, "PUT", "/api/admin/users/"+users[0].ID.String()+"/role", adminTok, `{"role":"psychologist"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("set role status = %d; body: %s", w.Code, w.Body.String())
	}
	if w := do(t, srv, "GET", "/api/me", patientTok, ""); w.Code != http.StatusUnauthorized {
		t.Errorf("stale token status = %d, want 401", w.Code)
	}

	w = do(t, srv, "PUT", "/api/admin/users/"+admin.ID.String()+"/role", adminTok, `{"role":"patient"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("self role change status = %d, want 400", w.Code)
	}
}
