package api

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"stand-lead-engine/internal/handlers"
	"stand-lead-engine/internal/models"
	"stand-lead-engine/internal/services/catalog"
	"stand-lead-engine/internal/services/notifier"
	"stand-lead-engine/internal/services/quotes"
	"stand-lead-engine/internal/services/routing"
	"stand-lead-engine/internal/services/store"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func berlinBuilder(id string) *models.Builder {
	return &models.Builder{
		ID:                  id,
		CompanyName:         id,
		EstablishedYear:     2005,
		ServiceLocations:    []models.Location{{City: "Berlin", Country: "Germany"}},
		Verified:            true,
		Rating:              4.9,
		ReviewCount:         150,
		TeamSize:            45,
		ProjectsCompleted:   800,
		ResponseHours:       2,
		PriceRange:          models.PriceRange{Custom: models.PriceBand{Min: 300, Max: 500}, AverageProject: 75000},
		Services:            []models.ServiceCategory{models.ServiceDesign, models.ServiceConstruction, models.ServiceTechnology},
		Specializations:     []string{"technology"},
		TradeShowExperience: []string{"ifa-berlin"},
		Status:              models.BuilderStatusActive,
		Plan:                models.PlanEnterprise,
		ContactEmail:        id + "@builders.example",
	}
}

func newTestServer(t *testing.T) (http.Handler, *store.MemoryStore) {
	t.Helper()

	s := store.NewMemoryStore([]*models.Builder{berlinBuilder("spree"), berlinBuilder("havel")}, nil)
	mux := notifier.NewMux(zap.NewNop())
	mux.Handle(notifier.ChannelEmail, notifier.LogSender{Logger: zap.NewNop()})
	queue := notifier.Inline{Notifier: mux}
	cat := catalog.Default()

	srv := New(Deps{
		Store:   s,
		Router:  routing.NewRouter(s, queue, routing.Options{Catalog: cat, Logger: zap.NewNop()}),
		Quotes:  quotes.NewService(s, cat, queue, quotes.Options{Logger: zap.NewNop()}),
		Catalog: cat,
		Health:  handlers.NewHealthHandler(nil),
		Logger:  zap.NewNop(),
	})
	return srv.Handler(), s
}

func do(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

const leadBody = `{"company_name":"Acme Audio","contact_email":"events@acme.example","city":"Berlin",` +
	`"country":"Germany","trade_show_slug":"ifa-berlin","budget":"mid-range","stand_size":120}`

func TestHealth(t *testing.T) {
	h, _ := newTestServer(t)

	rec, env := do(t, h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)
	assert.Contains(t, string(env.Data), `"status":"healthy"`)
}

func TestCreateAndFetchLead(t *testing.T) {
	h, _ := newTestServer(t)

	rec, env := do(t, h, http.MethodPost, "/api/leads", leadBody)
	require.Equal(t, http.StatusCreated, rec.Code)

	var intake handlers.IntakeResponse
	require.NoError(t, json.Unmarshal(env.Data, &intake))
	assert.True(t, intake.Routing.Success)
	assert.Equal(t, 2, intake.Routing.AssignmentsCreated)
	assert.Equal(t, 2, intake.Routing.NotificationsSent)

	rec, env = do(t, h, http.MethodGet, "/api/leads/"+intake.LeadID, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var lead models.Lead
	require.NoError(t, json.Unmarshal(env.Data, &lead))
	assert.Equal(t, models.LeadStatusRouted, lead.Status)
	assert.ElementsMatch(t, []string{"spree", "havel"}, lead.AssignedBuilders)

	rec, env = do(t, h, http.MethodGet, "/api/analytics/routing", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var analytics routing.RoutingAnalytics
	require.NoError(t, json.Unmarshal(env.Data, &analytics))
	assert.Equal(t, 1, analytics.TotalLeads)
	assert.Equal(t, 1, analytics.RoutedLeads)
	assert.Equal(t, 2, analytics.ActiveAssignments)
}

func TestCreateLeadValidation(t *testing.T) {
	h, _ := newTestServer(t)

	rec, env := do(t, h, http.MethodPost, "/api/leads", `{"company_name":"Acme"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, env.Success)
	assert.Contains(t, env.Error, "validation failed")

	rec, _ = do(t, h, http.MethodPost, "/api/leads", `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouteMissingLead(t *testing.T) {
	h, _ := newTestServer(t)

	rec, env := do(t, h, http.MethodPost, "/api/leads/nope/route", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, routing.MsgLeadNotFound, env.Error)

	rec, _ = do(t, h, http.MethodGet, "/api/leads/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReRouteSweep(t *testing.T) {
	h, _ := newTestServer(t)

	rec, env := do(t, h, http.MethodPost, "/api/leads/reroute", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Re-routed 0 of 0 inactive leads", env.Message)
}

func TestQuoteMatch(t *testing.T) {
	h, _ := newTestServer(t)

	body := `{"trade_show_slug":"ifa-berlin","stand_size":120,"budget":"mid-range",` +
		`"company_name":"Acme Audio","contact_email":"events@acme.example"}`
	rec, env := do(t, h, http.MethodPost, "/api/quotes/match", body)
	require.Equal(t, http.StatusOK, rec.Code)

	var res quotes.QuoteResult
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Len(t, res.Matches, 2)
	assert.Equal(t, 2, res.NotificationsSent)
	assert.Equal(t, "Matched 2 builders", env.Message)

	rec, env = do(t, h, http.MethodGet, "/api/quotes/analytics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(env.Data), `"avg_match_score"`)

	rec, _ = do(t, h, http.MethodPost, "/api/quotes/match", strings.Replace(body, "ifa-berlin", "imaginary-expo", 1))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = do(t, h, http.MethodPost, "/api/quotes/match", `{"trade_show_slug":"ifa-berlin"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTradeShows(t *testing.T) {
	h, _ := newTestServer(t)

	rec, env := do(t, h, http.MethodGet, "/api/tradeshows", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var shows []models.TradeShow
	require.NoError(t, json.Unmarshal(env.Data, &shows))
	assert.Len(t, shows, len(catalog.Default().List()))
}

func TestPresignedURLWithoutBucket(t *testing.T) {
	h, _ := newTestServer(t)

	rec, _ := do(t, h, http.MethodPost, "/api/builders/presigned-url", `{"filename":"b.csv"}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestImportBuilders(t *testing.T) {
	h, s := newTestServer(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "builders.csv")
	require.NoError(t, err)
	_, _ = fw.Write([]byte("id,company_name,city,country\nelbe,Elbe Messebau,Hamburg,Germany\n,Nameless,Hamburg,Germany\n"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/builders/import", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	var res ImportResponse
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, 1, res.Upserted)
	assert.Equal(t, 1, res.Failed)

	builders, err := s.GetBuilders(req.Context())
	require.NoError(t, err)
	assert.Len(t, builders, 3)
}

func TestMetricsAndCORS(t *testing.T) {
	h, _ := newTestServer(t)
	do(t, h, http.MethodGet, "/health", "")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `stand_http_requests_total{code="200",route="GET /health"}`)

	req := httptest.NewRequest(http.MethodOptions, "/api/leads", nil)
	req.Header.Set("Origin", "https://stands.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
