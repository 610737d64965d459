package server_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/haidang/referral-hub/internal/config"
	"github.com/haidang/referral-hub/internal/repository/flatfile"
	"github.com/haidang/referral-hub/internal/server"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	store, err := flatfile.New(t.TempDir(), logger)
	if err != nil {
		t.Fatalf("flatfile.New: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	cfg := &config.Config{
		Port:      0,
		Env:       "development",
		Store:     "flatfile",
		JWTSecret: "test-secret-at-least-16-chars!!",
	}
	srv, err := server.New(cfg, store, logger)
	if err != nil {
		t.Fatalf("server.New: %v", err)
	}

	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts
}

// doJSON issues a request with a JSON body and decodes the JSON response
// into a generic map.
func doJSON(t *testing.T, method, url string, body any, token string) (int, map[string]any) {
	t.Helper()

	var buf io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshaling request body: %v", err)
		}
		buf = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, url, buf)
	if err != nil {
		t.Fatalf("building request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer res.Body.Close()

	var decoded map[string]any
	if err := json.NewDecoder(res.Body).Decode(&decoded); err != nil && err != io.EOF {
		t.Fatalf("decoding response: %v", err)
	}
	return res.StatusCode, decoded
}

func TestHealthEndpoint(t *testing.T) {
	ts := newTestServer(t)

	status, body := doJSON(t, http.MethodGet, ts.URL+"/health", nil, "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])
}

// TestRegistrationApprovalWorkflow walks the full account lifecycle: a fresh
// registration starts Pending and cannot log in; once an admin flips it to
// Active, login succeeds and the issued token opens the messaging routes.
func TestRegistrationApprovalWorkflow(t *testing.T) {
	ts := newTestServer(t)

	status, body := doJSON(t, http.MethodPost, ts.URL+"/local/register", map[string]any{
		"name":     "Riley Tran",
		"email":    "riley@example.com",
		"password": "secret123",
	}, "")
	assert.Equal(t, http.StatusCreated, status)
	user, ok := body["user"].(map[string]any)
	if !ok {
		t.Fatalf("register response has no user object: %v", body)
	}
	assert.Equal(t, "Pending", user["status"])
	assert.Empty(t, user["password"], "responses must never carry the password hash")
	userID, _ := user["_id"].(string)
	assert.NotEmpty(t, userID)

	// Pending accounts are turned away at login.
	status, body = doJSON(t, http.MethodPost, ts.URL+"/local/login", map[string]any{
		"email":    "riley@example.com",
		"password": "secret123",
	}, "")
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "forbidden", body["error"])

	// Admin approves the account.
	status, _ = doJSON(t, http.MethodPost, ts.URL+"/local/users/update-status", map[string]any{
		"userId":    userID,
		"newStatus": "Active",
	}, "")
	assert.Equal(t, http.StatusOK, status)

	status, body = doJSON(t, http.MethodPost, ts.URL+"/local/login", map[string]any{
		"email":    "riley@example.com",
		"password": "secret123",
	}, "")
	assert.Equal(t, http.StatusOK, status)
	token, _ := body["token"].(string)
	assert.NotEmpty(t, token)

	// The token opens the authenticated messaging surface.
	status, body = doJSON(t, http.MethodGet, ts.URL+"/api/messaging/unread-count", nil, token)
	assert.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 0, body["unreadCount"])

	// Without it, the same route refuses.
	status, _ = doJSON(t, http.MethodGet, ts.URL+"/api/messaging/unread-count", nil, "")
	assert.Equal(t, http.StatusUnauthorized, status)
}

// TestReferralWorkflow covers the core loop: post a job, refer a candidate,
// list it as the assigned admin, and walk the status pipeline one legal hop
// at a time. Skipping a stage is rejected without corrupting the record.
func TestReferralWorkflow(t *testing.T) {
	ts := newTestServer(t)

	// Provision the two actors directly (admin backdoor skips approval).
	status, body := doJSON(t, http.MethodPost, ts.URL+"/local/users", map[string]any{
		"name":   "Admin",
		"email":  "admin@example.com",
		"role":   "admin",
		"status": "Active",
	}, "")
	assert.Equal(t, http.StatusCreated, status)
	admin := body["user"].(map[string]any)
	adminID := admin["_id"].(string)

	status, body = doJSON(t, http.MethodPost, ts.URL+"/local/users", map[string]any{
		"name":   "Riley Tran",
		"email":  "recruiter@example.com",
		"role":   "recruiter",
		"status": "Active",
	}, "")
	assert.Equal(t, http.StatusCreated, status)
	recruiter := body["user"].(map[string]any)
	recruiterID := recruiter["_id"].(string)

	status, body = doJSON(t, http.MethodPost, ts.URL+"/local/jobs", map[string]any{
		"title":     "Senior Backend Engineer",
		"company":   "Acme",
		"adminName": "Admin",
	}, "")
	assert.Equal(t, http.StatusCreated, status)
	job := body["job"].(map[string]any)
	jobID := job["_id"].(string)
	assert.Equal(t, "Active", job["status"])

	// The submission form's field names (jobId/recruiterId/email), not the
	// stored record's.
	status, body = doJSON(t, http.MethodPost, ts.URL+"/local/referrals", map[string]any{
		"jobId":         jobID,
		"recruiterId":   recruiterID,
		"candidateName": "Casey Pham",
		"email":         "casey@example.com",
	}, "")
	assert.Equal(t, http.StatusCreated, status)
	referral := body["referral"].(map[string]any)
	referralID := referral["_id"].(string)
	assert.Equal(t, "submitted", referral["status"])
	assert.Equal(t, "casey@example.com", referral["candidateEmail"])
	assert.Equal(t, adminID, referral["admin"], "a new referral is assigned to the first admin")

	// Listing requires both id and isAdmin.
	status, body = doJSON(t, http.MethodGet,
		ts.URL+"/local/referrals?id="+adminID, nil, "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "id & isAdmin are required", body["message"])

	// The assigned admin sees it; an unrelated recruiter does not.
	status, body = doJSON(t, http.MethodGet,
		ts.URL+"/local/referrals?id="+adminID+"&isAdmin=true", nil, "")
	assert.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 1, body["total"])

	status, body = doJSON(t, http.MethodGet,
		ts.URL+"/local/referrals?id=someone-else&isAdmin=false&email=other@example.com", nil, "")
	assert.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 0, body["total"])

	// Walk the pipeline one legal transition at a time.
	for _, next := range []string{"under_review", "interviewing", "offer"} {
		status, body = doJSON(t, http.MethodPut,
			ts.URL+"/local/referrals/update/"+referralID,
			map[string]any{"status": next}, "")
		assert.Equal(t, http.StatusOK, status, "transition to %s", next)
		assert.Equal(t, next, body["referral"].(map[string]any)["status"])
	}

	// offer → onboard skips hired and must be refused.
	status, body = doJSON(t, http.MethodPut,
		ts.URL+"/local/referrals/update/"+referralID,
		map[string]any{"status": "onboard"}, "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "validation_error", body["error"])

	// The record kept the last valid status.
	status, body = doJSON(t, http.MethodGet,
		ts.URL+"/local/referrals?id="+adminID+"&isAdmin=true", nil, "")
	assert.Equal(t, http.StatusOK, status)
	items := body["items"].([]any)
	assert.Equal(t, "offer", items[0].(map[string]any)["status"])

	// Every step left a trail in the activity feed.
	status, body = doJSON(t, http.MethodGet, ts.URL+"/api/comments/activities?limit=50", nil, "")
	assert.Equal(t, http.StatusOK, status)
	types := map[string]int{}
	for _, raw := range body["activities"].([]any) {
		a := raw.(map[string]any)
		types[a["type"].(string)]++
	}
	assert.GreaterOrEqual(t, types["job_created"], 1)
	assert.GreaterOrEqual(t, types["referral_created"], 1)
	assert.GreaterOrEqual(t, types["referral_updated"], 3)
}

// TestCommentWorkflow exercises the embedded comment thread on a job: add,
// forbidden edit by a stranger, admin reply, and feed entries.
func TestCommentWorkflow(t *testing.T) {
	ts := newTestServer(t)

	status, body := doJSON(t, http.MethodPost, ts.URL+"/local/jobs", map[string]any{
		"title":     "Product Designer",
		"adminName": "Admin",
	}, "")
	assert.Equal(t, http.StatusCreated, status)
	jobID := body["job"].(map[string]any)["_id"].(string)

	status, body = doJSON(t, http.MethodPost, ts.URL+"/api/comments/comments/"+jobID, map[string]any{
		"text":       "Is this role remote friendly?",
		"author":     "Riley Tran",
		"authorRole": "recruiter",
		"userId":     "u-riley",
	}, "")
	assert.Equal(t, http.StatusCreated, status)
	comment := body["comment"].(map[string]any)
	commentID := comment["id"].(string)

	// A different non-admin user cannot edit someone else's comment.
	status, _ = doJSON(t, http.MethodPut, ts.URL+"/api/comments/comments/"+jobID+"/"+commentID, map[string]any{
		"text":     "edited",
		"userId":   "u-other",
		"userRole": "recruiter",
	}, "")
	assert.Equal(t, http.StatusForbidden, status)

	// Only admins may reply.
	status, _ = doJSON(t, http.MethodPost,
		ts.URL+"/api/comments/comments/"+jobID+"/"+commentID+"/replies", map[string]any{
			"text":       "not allowed",
			"author":     "Riley Tran",
			"authorRole": "recruiter",
			"userId":     "u-riley",
		}, "")
	assert.Equal(t, http.StatusForbidden, status)

	status, body = doJSON(t, http.MethodPost,
		ts.URL+"/api/comments/comments/"+jobID+"/"+commentID+"/replies", map[string]any{
			"text":       "Yes, fully remote.",
			"author":     "Admin",
			"authorRole": "admin",
			"userId":     "u-admin",
		}, "")
	assert.Equal(t, http.StatusCreated, status)

	status, body = doJSON(t, http.MethodGet, ts.URL+"/api/comments/comments/"+jobID, nil, "")
	assert.Equal(t, http.StatusOK, status)
	comments := body["comments"].([]any)
	assert.Len(t, comments, 1)
	replies := comments[0].(map[string]any)["replies"].([]any)
	assert.Len(t, replies, 1)
}

func TestUnknownJobReturnsNotFound(t *testing.T) {
	ts := newTestServer(t)

	status, body := doJSON(t, http.MethodGet, ts.URL+"/local/job/does-not-exist", nil, "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "not_found", body["error"])
}
