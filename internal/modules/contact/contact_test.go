package contact

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/georgemunganga/promoled-directory/internal/logger"
	"github.com/georgemunganga/promoled-directory/internal/modules/directory"
)

type providerMap map[string]*directory.Provider

func (m providerMap) GetProvider(id string) (*directory.Provider, error) {
	if p, ok := m[id]; ok {
		return p, nil
	}
	return nil, directory.ErrProviderNotFound
}

// mockWriter records messages like a kafka.Writer would send them.
type mockWriter struct {
	messages []kafka.Message
	err      error
	closed   bool
}

func (m *mockWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if m.err != nil {
		return m.err
	}
	m.messages = append(m.messages, msgs...)
	return nil
}

func (m *mockWriter) Close() error {
	m.closed = true
	return nil
}

var testProviders = providerMap{
	"lumiere": {
		ID: "lumiere", Name: "Paul Martin", Company: "Lumière 31",
		Email: "contact@lumiere31.fr", Phone: "05 61 00 00 00",
		Address: directory.Address{City: "Toulouse", Zip: "31000"},
	},
	"solo": {ID: "solo", Name: "Jean Dupont"},
}

func newTestService(w *mockWriter) *service {
	svc := NewService(testProviders, NewKafkaPublisherWithWriter(w), logger.Nop()).(*service)
	// 09:30 in Paris
	svc.now = func() time.Time { return time.Date(2026, 3, 14, 8, 30, 0, 0, time.UTC) }
	return svc
}

func validRequest() Request {
	return Request{
		ProviderID:  "lumiere",
		ClientName:  "Alice",
		ClientPhone: "06 12 34 56 78",
		ClientCity:  "Blagnac",
		ProjectDesc: "Bande LED cuisine, 4m",
	}
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, "ab", Sanitize("a\x00b", 10))
	assert.Equal(t, "a\nb\nc", Sanitize("a\u2028b\u2029c", 10))
	assert.Equal(t, "Éle", Sanitize("Électricien", 3))
	// the cut counts runes, so a multi-byte rune is kept or dropped whole
	assert.Equal(t, "Lumiè", Sanitize("Lumière", 5))
	assert.Equal(t, "Lumi", Sanitize("Lumière", 4))
	assert.Equal(t, "日本", Sanitize("日本語", 2))
	assert.True(t, utf8.ValidString(Sanitize("Lumière", 5)))
	assert.Equal(t, "Néon", Sanitize("Néon", 4))
	assert.Equal(t, "", Sanitize("", 3))
}

func TestSendPublishesPayload(t *testing.T) {
	w := &mockWriter{}
	svc := newTestService(w)

	payload, err := svc.Send(context.Background(), validRequest())
	require.NoError(t, err)

	assert.Equal(t, "Lumière 31", payload.ElectricianName)
	assert.Equal(t, "contact@lumiere31.fr", payload.ElectricianEmail)
	assert.Equal(t, "31000", payload.ElectricianZip)
	assert.Equal(t, "14/03/2026 09:30", payload.RequestDate)

	require.Len(t, w.messages, 1)
	assert.Equal(t, "lumiere", string(w.messages[0].Key))

	var sent map[string]string
	require.NoError(t, json.Unmarshal(w.messages[0].Value, &sent))
	assert.Equal(t, "Alice", sent["client_name"])
	assert.Equal(t, "Bande LED cuisine, 4m", sent["project_desc"])
	assert.Len(t, sent, 11)
}

func TestSendUsesNameWithoutCompany(t *testing.T) {
	svc := newTestService(&mockWriter{})
	req := validRequest()
	req.ProviderID = "solo"
	req.ProjectDesc = strings.Repeat("x", 1500)

	payload, err := svc.Send(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "Jean Dupont", payload.ElectricianName)
	assert.Len(t, payload.ProjectDesc, 1200)
}

func TestSendErrors(t *testing.T) {
	w := &mockWriter{}
	svc := newTestService(w)

	req := validRequest()
	req.ClientPhone = " "
	_, err := svc.Send(context.Background(), req)
	assert.ErrorIs(t, err, ErrMissingField)
	assert.EqualError(t, err, "missing required field: client_phone")

	req = validRequest()
	req.ProviderID = "ghost"
	_, err = svc.Send(context.Background(), req)
	assert.ErrorIs(t, err, directory.ErrProviderNotFound)

	w.err = errors.New("broker down")
	_, err = svc.Send(context.Background(), validRequest())
	assert.ErrorContains(t, err, "broker down")
	assert.Empty(t, w.messages)
}

func TestLogPublisher(t *testing.T) {
	p := NewLogPublisher(logger.Nop())
	assert.NoError(t, p.Publish(context.Background(), "lumiere", Payload{}))
	assert.NoError(t, p.Close())
}

func TestKafkaPublisherClose(t *testing.T) {
	w := &mockWriter{}
	require.NoError(t, NewKafkaPublisherWithWriter(w).Close())
	assert.True(t, w.closed)
}

func TestContactEndpoint(t *testing.T) {
	w := &mockWriter{}
	router := chi.NewRouter()
	NewHandler(newTestService(w)).RegisterRoutes(router)

	post := func(body string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/contact", strings.NewReader(body)))
		return rec
	}

	rec := post(`{"provider_id":"lumiere","client_name":"Alice","client_phone":"06","client_city":"Albi"}`)
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Len(t, w.messages, 1)

	rec = post(`{"provider_id":"lumiere","client_name":"Alice"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = post(`{"provider_id":"ghost","client_name":"A","client_phone":"06","client_city":"Albi"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = post(`not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
