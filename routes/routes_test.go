package routes

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"villas-backend/config"
	"villas-backend/controllers"
	"villas-backend/mailer"
	"villas-backend/pricing"
	"villas-backend/services"
)

type recordingMailer struct {
	mu   sync.Mutex
	sent []mailer.Message
	err  error
}

func (m *recordingMailer) Send(_ context.Context, msg mailer.Message) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	if m.err != nil {
		return "", m.err
	}
	return "id", nil
}

func (m *recordingMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

func newTestRouter(t *testing.T, m mailer.Mailer) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := config.ConnectDatabase(config.DatabaseConfig{URL: "sqlite://:memory:"})
	require.NoError(t, err)

	catalogSvc := services.NewCatalogService(db)
	inquirySvc := services.NewInquiryService(m, services.EmailSettings{
		From:            "resort@resort.test",
		OperatorAddress: "ops@resort.test",
		ResortName:      "The Villas Bedouin Resort",
	}, services.NewMemoryIdempotencyStore(), time.Minute)

	return SetupRouter(
		config.CORSConfig{AllowedOrigins: []string{"*"}},
		controllers.NewCatalogController(catalogSvc),
		controllers.NewInquiryController(inquirySvc),
		controllers.NewFormController(inquirySvc, catalogSvc),
	)
}

func doJSON(r http.Handler, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

const bookingBody = `{
	"name": "Ana", "email": "ana@example.com", "country": "Spain",
	"arrivalDate": "2026-11-02", "guests": 1,
	"villas": {"doubleRoom": 1, "twinRoom": 0, "tripleRoom": 0},
	"experiences": [{"name": "Horse Riding", "price": 100}],
	"message": "", "totalPrice": 350
}`

func TestHealthAndMetrics(t *testing.T) {
	r := newTestRouter(t, &recordingMailer{})

	w := doJSON(r, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = doJSON(r, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http_requests_total")
}

func TestCatalogEndpoints(t *testing.T) {
	r := newTestRouter(t, &recordingMailer{})

	w := doJSON(r, http.MethodGet, "/api/rooms", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var rooms []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rooms))
	assert.Len(t, rooms, 3)

	w = doJSON(r, http.MethodGet, "/api/experiences", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Sandboarding")

	w = doJSON(r, http.MethodGet, "/api/virtual-tours/camp", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	embed := body["embedUrl"].(string)
	assert.True(t, strings.HasPrefix(embed, "https://v0-360-virtual-tour-system.vercel.app/embed?data="))
	u, err := url.Parse(embed)
	require.NoError(t, err)
	var scenes []map[string]any
	require.NoError(t, json.Unmarshal([]byte(u.Query().Get("data")), &scenes))
	assert.Len(t, scenes, 7)

	w = doJSON(r, http.MethodGet, "/api/virtual-tours/nowhere", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestQuoteEndpoint(t *testing.T) {
	r := newTestRouter(t, &recordingMailer{})

	w := doJSON(r, http.MethodPost, "/api/quote",
		`{"villas":{"doubleRoom":2,"tripleRoom":1},"experiences":["Camel Riding","Camel Riding","None"],"guests":2}`, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var q pricing.Quote
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &q))
	assert.Equal(t, 2*250.0+320+45*2, q.Total)
	assert.True(t, q.CanSubmit)
	assert.Len(t, q.Experiences, 1)

	w = doJSON(r, http.MethodPost, "/api/quote", `{"villas":{"doubleRoom":-1}}`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBookingEndpoint(t *testing.T) {
	m := &recordingMailer{}
	r := newTestRouter(t, m)

	w := doJSON(r, http.MethodPost, "/api/booking", bookingBody, map[string]string{"Idempotency-Key": "abc"})
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, services.BookingSuccessMessage, body["message"])
	assert.Equal(t, 2, m.count())

	w = doJSON(r, http.MethodPost, "/api/booking", bookingBody, map[string]string{"Idempotency-Key": "abc"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode(t, w)["duplicate"])
	assert.Equal(t, 2, m.count())

}

func TestBookingEndpointRejectsUnreadableBodiesWithServerError(t *testing.T) {
	m := &recordingMailer{}
	r := newTestRouter(t, m)

	w := doJSON(r, http.MethodPost, "/api/booking", `{"name":"Ana"}`, nil)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	body := decode(t, w)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Failed to send booking request. Error: email is required", body["message"])

	w = doJSON(r, http.MethodPost, "/api/booking", `{"name":`, nil)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Failed to send booking request. Error: request body is incomplete", decode(t, w)["message"])

	w = doJSON(r, http.MethodPost, "/api/contact", `{"name":"Omar","email":"omar@example.com"}`, nil)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Failed to send message. Error: subject is required, message is required", decode(t, w)["message"])

	assert.Equal(t, 0, m.count())
}

func TestBookingEndpointTrustsIdentityFields(t *testing.T) {
	m := &recordingMailer{}
	r := newTestRouter(t, m)

	body := strings.Replace(bookingBody, `"ana@example.com"`, `"ana at x"`, 1)
	w := doJSON(r, http.MethodPost, "/api/booking", body, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode(t, w)["success"])
	require.Equal(t, 2, m.count())
	assert.Equal(t, "ana at x", m.sent[0].ReplyTo)
}

func TestBookingEndpointProviderFailure(t *testing.T) {
	m := &recordingMailer{err: &mailer.ProviderError{Provider: "resend", Message: "rate limit exceeded"}}
	r := newTestRouter(t, m)

	w := doJSON(r, http.MethodPost, "/api/booking", bookingBody, nil)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	body := decode(t, w)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Error sending email: rate limit exceeded", body["message"])
}

func TestContactEndpoint(t *testing.T) {
	m := &recordingMailer{}
	r := newTestRouter(t, m)

	w := doJSON(r, http.MethodPost, "/api/contact",
		`{"name":"Omar","email":"omar@example.com","subject":"Dates","message":"Open in July?"}`, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, services.ContactSuccessMessage, decode(t, w)["message"])

	m.err = errors.New("connection reset")
	w = doJSON(r, http.MethodPost, "/api/contact",
		`{"name":"Omar","email":"omar@example.com","subject":"Dates","message":"Open in July?"}`, nil)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Exception sending email: connection reset", decode(t, w)["message"])
}

func postForm(r http.Handler, values url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/forms/booking", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestBookingFormGate(t *testing.T) {
	m := &recordingMailer{}
	r := newTestRouter(t, m)

	w := postForm(r, url.Values{"name": {"Ana"}, "email": {"ana@example.com"}, "guests": {"2"}})
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Please select at least one room to continue", decode(t, w)["message"])
	assert.Equal(t, 0, m.count())
}

func TestBookingFormComputesTotal(t *testing.T) {
	m := &recordingMailer{}
	r := newTestRouter(t, m)

	w := postForm(r, url.Values{
		"name":           {"Ana"},
		"email":          {"ana@example.com"},
		"guests":         {"1abc"},
		"doubleRoom":     {"1"},
		"experiences":    {"Horse Riding", "Horse Riding", "Moon Walk"},
		"idempotencyKey": {"form-9"},
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 2, m.count())

	primary := m.sent[0]
	assert.Contains(t, primary.HTML, "<p><strong>Number of Guests:</strong> 1</p>")
	assert.Contains(t, primary.HTML, "<p><strong>Total Price:</strong> 350 JOD</p>")

	w = postForm(r, url.Values{
		"name": {"Ana"}, "email": {"ana@example.com"}, "doubleRoom": {"1"}, "idempotencyKey": {"form-9"},
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode(t, w)["duplicate"])
	assert.Equal(t, 2, m.count())
}

func TestBookingFormReadsLeadingGuestDigits(t *testing.T) {
	m := &recordingMailer{}
	r := newTestRouter(t, m)

	w := postForm(r, url.Values{
		"name":        {"Ana"},
		"email":       {"ana@example.com"},
		"guests":      {"3abc"},
		"twinRoom":    {"1"},
		"experiences": {"Sandboarding"},
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 2, m.count())
	assert.Contains(t, m.sent[0].HTML, "<p><strong>Number of Guests:</strong> 3</p>")
	assert.Contains(t, m.sent[0].HTML, "<p><strong>Total Price:</strong> 400 JOD</p>")
}
