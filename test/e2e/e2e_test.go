// test/e2e/e2e_test.go
package e2e

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"nexoprec/internal/assistant"
	"nexoprec/internal/common/config"
	"nexoprec/internal/common/database"
	"nexoprec/internal/common/logger"
	"nexoprec/internal/form"
	"nexoprec/internal/notify"
	"nexoprec/internal/server"
	"nexoprec/internal/store"
)

var zapLog *zap.Logger

const e2eOrganizer = "e2e-organizer-001"

func TestMain(m *testing.M) {
	zapLog, _ = zap.NewProduction()

	code := m.Run()

	_ = zapLog.Sync()
	os.Exit(code)
}

func TestFullE2E(t *testing.T) {
	if os.Getenv("E2E") == "" {
		t.Skip("E2E not set, skipping full end-to-end test (requires local PostgreSQL and Redis)")
	}

	_, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	// Load config
	cfg, err := config.Load()
	require.NoError(t, err)
	require.NotNil(t, cfg)

	t.Log("🚀 Starting FULL E2E Test with real services...")

	// 1. Check all external services are available
	assertAllServicesConnectivity(t, cfg)

	// 2. Create DB tables if needed and clear previous test data
	createDatabaseTables(t, cfg)

	// 3. Run the organizer and applicant scenarios through the real router
	runScenarios(t, cfg, zapLog)

	t.Log("✅ ALL TESTS PASSED — Full E2E flow successful!")
}

func assertAllServicesConnectivity(t *testing.T, cfg *config.Config) {
	t.Log("🔍 Checking service connectivity...")

	// 🔧 FORCE LOCALHOST FOR E2E TESTS
	cfg.Database.Postgres.Host = "localhost"
	cfg.Database.Redis.Address = "localhost:6379"

	// --- PostgreSQL ---
	db, err := database.NewPostgres(cfg.Database.Postgres)
	require.NoError(t, err, "❌ PostgreSQL connection failed")
	assert.NoError(t, db.Ping(context.Background()), "❌ PostgreSQL ping failed")
	db.Close()
	t.Log("✅ PostgreSQL connected")

	// --- Redis ---
	rdb, err := database.NewRedis(cfg.Database.Redis)
	require.NoError(t, err, "❌ Redis client creation failed")
	assert.NoError(t, rdb.Ping(context.Background()), "❌ Redis ping failed")
	rdb.Close()
	t.Log("✅ Redis connected")

	// --- Elasticsearch (optional) ---
	if cfg.Database.Elasticsearch.Enabled {
		es, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
		require.NoError(t, err, "❌ Elasticsearch client creation failed")
		assert.NoError(t, es.Ping(), "❌ Elasticsearch ping failed")
		t.Log("✅ Elasticsearch connected")
	} else {
		t.Log("ℹ️ Elasticsearch disabled, submission search skipped")
	}
}

// ==========================
// 2. Database Tables Setup
// ==========================
func createDatabaseTables(t *testing.T, cfg *config.Config) {
	t.Log("🔧 Creating database tables...")

	dbClient, err := database.NewPostgres(cfg.Database.Postgres)
	require.NoError(t, err)
	defer dbClient.Close()

	db := dbClient.GetDB()

	queries := []string{
		`CREATE TABLE IF NOT EXISTS events (
			id VARCHAR(255) PRIMARY KEY,
			owner_id VARCHAR(255) NOT NULL,
			title VARCHAR(255) NOT NULL,
			description TEXT,
			form_schema JSONB NOT NULL,
			ai_knowledge TEXT,
			terms_conditions TEXT,
			status VARCHAR(50) NOT NULL DEFAULT 'draft',
			start_date TIMESTAMP,
			end_date TIMESTAMP,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS submissions (
			id VARCHAR(255) PRIMARY KEY,
			event_id VARCHAR(255) NOT NULL REFERENCES events(id),
			answers JSONB NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS chat_sessions (
			id VARCHAR(255) PRIMARY KEY,
			event_id VARCHAR(255) NOT NULL REFERENCES events(id),
			session_id VARCHAR(255) NOT NULL,
			messages JSONB NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(event_id, session_id)
		)`,
	}

	for _, query := range queries {
		_, err := db.ExecContext(context.Background(), query)
		if err != nil {
			t.Logf("Warning: Failed to create table: %v", err)
		}
	}

	// Clear data from previous runs so counts are deterministic
	cleanup := []string{
		`DELETE FROM chat_sessions WHERE event_id IN (SELECT id FROM events WHERE owner_id = '` + e2eOrganizer + `')`,
		`DELETE FROM submissions WHERE event_id IN (SELECT id FROM events WHERE owner_id = '` + e2eOrganizer + `')`,
		`DELETE FROM events WHERE owner_id = '` + e2eOrganizer + `'`,
	}
	for _, query := range cleanup {
		if _, err := db.ExecContext(context.Background(), query); err != nil {
			t.Logf("Warning: Failed to clean test data: %v", err)
		}
	}

	t.Log("✅ Database tables created/verified")
}

// ==========================
// 3. Scenarios
// ==========================
func runScenarios(t *testing.T, cfg *config.Config, log *zap.Logger) {
	t.Log("🧪 Running end-to-end scenarios through the HTTP API...")

	appLog := logger.NewZapAdapter(log)

	dbClient, err := database.NewPostgres(cfg.Database.Postgres)
	require.NoError(t, err)
	defer dbClient.Close()
	db := dbClient.GetDB()

	rdbClient, err := database.NewRedis(cfg.Database.Redis)
	require.NoError(t, err)
	defer rdbClient.Close()

	cache := store.NewEventCache(rdbClient.GetClient(), time.Duration(cfg.Database.Redis.EventTTL)*time.Second, appLog)

	srv := server.New(server.Deps{
		Config:      cfg,
		Events:      store.NewEventStore(db, appLog),
		Submissions: store.NewSubmissionStore(db, appLog),
		Chats:       store.NewChatStore(db, appLog),
		Cache:       cache,
		Assistant:   assistant.NewService(nil, appLog),
		Notifier:    notify.NewNotifierWithClients(cfg.Notifications, nil, nil, appLog),
		Logger:      appLog,
	})

	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	state := &scenarioState{base: ts.URL}

	scenarios := []struct {
		name   string
		testFn func(*testing.T, *scenarioState, *sql.DB)
	}{
		{"organizer-lifecycle", testOrganizerLifecycle},
		{"applicant-submission", testApplicantSubmission},
		{"conditional-visibility", testConditionalVisibility},
		{"review-and-export", testReviewAndExport},
		{"chat-fallback", testChatFallback},
		{"cache-invalidation", testCacheInvalidation},
	}

	for _, sc := range scenarios {
		t.Run(sc.name, func(t *testing.T) {
			sc.testFn(t, state, db)
		})
	}
}

type scenarioState struct {
	base    string
	eventID string
	session string
}

func (s *scenarioState) do(t *testing.T, method, path string, body interface{}, organizer bool) (*http.Response, map[string]interface{}) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, s.base+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if organizer {
		req.Header.Set("X-User-ID", e2eOrganizer)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)

	var decoded map[string]interface{}
	if strings.Contains(resp.Header.Get("Content-Type"), "application/json") {
		_ = json.NewDecoder(resp.Body).Decode(&decoded)
	}
	resp.Body.Close()
	return resp, decoded
}

func e2eSchema() []map[string]interface{} {
	return []map[string]interface{}{
		{"id": "field_name", "type": "text", "label": "Full Name", "required": true},
		{"id": "field_division", "type": "select", "label": "Division", "required": true,
			"options": []string{"Engineering", "Design"}},
		{"id": "field_reason", "type": "text", "label": "Reason", "required": true,
			"condition": map[string]string{"field": "field_division", "value": "Engineering"}},
	}
}

func testOrganizerLifecycle(t *testing.T, s *scenarioState, _ *sql.DB) {
	// Create a draft event
	resp, body := s.do(t, http.MethodPost, "/api/v1/org/events", map[string]interface{}{
		"title":      "E2E Recruitment 2026",
		"formSchema": e2eSchema(),
	}, true)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.NotEmpty(t, body["id"])
	assert.Equal(t, "draft", body["status"])

	s.eventID = body["id"].(string)
	t.Logf("📄 Created event: %s", s.eventID)

	// Draft events are invisible to applicants
	resp, _ = s.do(t, http.MethodGet, "/api/v1/events/"+s.eventID+"/form", nil, false)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Publish with an open registration window
	end := time.Now().Add(48 * time.Hour).UTC().Format(time.RFC3339)
	resp, body = s.do(t, http.MethodPut, "/api/v1/org/events/"+s.eventID, map[string]interface{}{
		"status":  "published",
		"endDate": end,
	}, true)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "published", body["status"])
	t.Log("✅ Event published")

	// Another organizer cannot touch it
	req, err := http.NewRequest(http.MethodGet, s.base+"/api/v1/org/events/"+s.eventID, nil)
	require.NoError(t, err)
	req.Header.Set("X-User-ID", "someone-else")
	other, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	other.Body.Close()
	assert.Equal(t, http.StatusForbidden, other.StatusCode)
}

func testApplicantSubmission(t *testing.T, s *scenarioState, db *sql.DB) {
	require.NotEmpty(t, s.eventID, "organizer-lifecycle must run first")

	// Public form omits organizer-only fields
	resp, body := s.do(t, http.MethodGet, "/api/v1/events/"+s.eventID+"/form", nil, false)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotContains(t, body, "aiKnowledge")
	assert.NotContains(t, body, "ownerId")

	// Valid submission
	resp, _ = s.do(t, http.MethodPost, "/api/v1/events/"+s.eventID+"/submissions", map[string]interface{}{
		"answers": map[string]string{
			"field_name":     "Ada Lovelace",
			"field_division": "Engineering",
			"field_reason":   "I want to build things.",
		},
	}, false)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	t.Log("✅ Submission accepted")

	// Missing visible required field is rejected
	resp, body = s.do(t, http.MethodPost, "/api/v1/events/"+s.eventID+"/submissions", map[string]interface{}{
		"answers": map[string]string{"field_division": "Engineering"},
	}, false)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION_FAILED", body["code"])

	var count int
	require.NoError(t, db.QueryRowContext(context.Background(),
		`SELECT COUNT(*) FROM submissions WHERE event_id = $1`, s.eventID).Scan(&count))
	assert.Equal(t, 1, count, "rejected submission must not be persisted")
}

func testConditionalVisibility(t *testing.T, s *scenarioState, _ *sql.DB) {
	require.NotEmpty(t, s.eventID)

	// field_reason is hidden for Design, so its required flag is not enforced
	resp, _ := s.do(t, http.MethodPost, "/api/v1/events/"+s.eventID+"/submissions", map[string]interface{}{
		"answers": map[string]string{
			"field_name":     "Grace Hopper",
			"field_division": "Design",
		},
	}, false)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	t.Log("✅ Hidden required field not enforced")
}

func testReviewAndExport(t *testing.T, s *scenarioState, _ *sql.DB) {
	require.NotEmpty(t, s.eventID)

	resp, body := s.do(t, http.MethodGet, "/api/v1/org/events/"+s.eventID+"/submissions", nil, true)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 2, body["total"])

	// CSV export carries the BOM and the reconciled header
	req, err := http.NewRequest(http.MethodGet, s.base+"/api/v1/org/events/"+s.eventID+"/export", nil)
	require.NoError(t, err)
	req.Header.Set("X-User-ID", e2eOrganizer)
	csvResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer csvResp.Body.Close()

	require.Equal(t, http.StatusOK, csvResp.StatusCode)
	assert.Contains(t, csvResp.Header.Get("Content-Disposition"), "submissions_E2E_Recruitment_2026.csv")

	var out bytes.Buffer
	_, err = out.ReadFrom(csvResp.Body)
	require.NoError(t, err)
	content := out.String()
	assert.True(t, strings.HasPrefix(content, "\uFEFF"), "CSV must start with a UTF-8 BOM")
	assert.Contains(t, content, `"Submission Date","Full Name","Division","Reason"`)
	assert.Contains(t, content, `"Ada Lovelace"`)
	t.Log("✅ CSV export verified")
}

func testChatFallback(t *testing.T, s *scenarioState, db *sql.DB) {
	require.NotEmpty(t, s.eventID)

	// No generator configured, so the canned fallback answer comes back
	resp, body := s.do(t, http.MethodPost, "/api/v1/events/"+s.eventID+"/chat", map[string]interface{}{
		"message": "When is the deadline?",
	}, false)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	session, _ := body["sessionId"].(string)
	require.True(t, strings.HasPrefix(session, "GUEST-"), "expected generated guest session, got %q", session)
	assert.Equal(t, assistant.FallbackReply, body["answer"])
	s.session = session

	// Second message reuses the session and the history is persisted
	resp, body = s.do(t, http.MethodPost, "/api/v1/events/"+s.eventID+"/chat", map[string]interface{}{
		"sessionId": session,
		"message":   "Is there an interview?",
	}, false)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, session, body["sessionId"])

	var raw []byte
	require.NoError(t, db.QueryRowContext(context.Background(),
		`SELECT messages FROM chat_sessions WHERE event_id = $1 AND session_id = $2`,
		s.eventID, session).Scan(&raw))

	var messages []map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &messages))
	assert.Len(t, messages, 4, "two user turns and two assistant turns")
	t.Log("✅ Chat session persisted")
}

func testCacheInvalidation(t *testing.T, s *scenarioState, _ *sql.DB) {
	require.NotEmpty(t, s.eventID)

	// Warm the cache through the public read
	resp, _ := s.do(t, http.MethodGet, "/api/v1/events/"+s.eventID+"/form", nil, false)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Update the title; the cached copy must not survive
	resp, _ = s.do(t, http.MethodPut, "/api/v1/org/events/"+s.eventID, map[string]interface{}{
		"title": "E2E Recruitment 2026 (extended)",
	}, true)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := s.do(t, http.MethodGet, "/api/v1/events/"+s.eventID+"/form", nil, false)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "E2E Recruitment 2026 (extended)", body["title"])
	t.Log("✅ Cache invalidated on update")
}

// ==========================
// Benchmarks
// ==========================

func benchmarkSchema() form.Schema {
	return form.Schema{
		{ID: "field_name", Type: form.FieldText, Label: "Full Name", Required: true},
		{ID: "field_division", Type: form.FieldSelect, Label: "Division", Required: true,
			Options: []string{"Engineering", "Design", "Operations"}},
		{ID: "field_reason", Type: form.FieldText, Label: "Reason", Required: true,
			Condition: &form.Condition{Field: "field_division", Value: "Engineering"}},
	}
}

func BenchmarkBuildSubmission(b *testing.B) {
	schema := benchmarkSchema()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c := form.NewCollector()
		c.SetAnswer("field_name", "Ada Lovelace")
		c.SetAnswer("field_division", "Engineering")
		c.SetAnswer("field_reason", "benchmarking")
		if _, err := c.BuildSubmission(schema); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkWriteCSV(b *testing.B) {
	schema := benchmarkSchema()
	subs := make([]form.Submission, 100)
	for i := range subs {
		subs[i] = form.Submission{
			Answers: form.AnswerSet{
				"field_name":     fmt.Sprintf("Applicant %d", i),
				"field_division": "Engineering",
				"field_reason":   "benchmark run",
			},
			CreatedAt: time.Now(),
		}
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		var buf bytes.Buffer
		if err := form.WriteCSV(&buf, schema, subs); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkSanitize(b *testing.B) {
	schema := benchmarkSchema()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		form.Sanitize(schema)
	}
}
