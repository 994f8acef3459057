package documents

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRequest(e *echo.Echo, method string, params ...string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	var names, values []string
	for i := 0; i+1 < len(params); i += 2 {
		names = append(names, params[i])
		values = append(values, params[i+1])
	}
	c.SetParamNames(names...)
	c.SetParamValues(values...)
	return c, rec
}

func httpCode(t *testing.T, err error) int {
	t.Helper()
	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	return he.Code
}

func TestHandler_Generate(t *testing.T) {
	f := newFixture(t)
	id := f.patients.add(maria())
	f.documentTemplate(t, AmbulatoryTemplate, paragraph("{nome}"), "")
	h := NewHandler(f.svc)

	c, rec := newRequest(echo.New(), http.MethodPost, "id", id.String(), "kind", "ambulatory")
	require.NoError(t, h.Generate(c))

	assert.Equal(t, http.StatusCreated, rec.Code)
	var body pathResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, ambDir+"/Rossi Maria.docx", body.Path)
}

func TestHandler_Generate_Errors(t *testing.T) {
	f := newFixture(t)
	id := f.patients.add(maria())
	h := NewHandler(f.svc)
	e := echo.New()

	c, _ := newRequest(e, http.MethodPost, "id", "abc", "kind", "ambulatory")
	assert.Equal(t, http.StatusBadRequest, httpCode(t, h.Generate(c)))

	c, _ = newRequest(e, http.MethodPost, "id", uuid.New().String(), "kind", "ambulatory")
	assert.Equal(t, http.StatusNotFound, httpCode(t, h.Generate(c)))

	c, _ = newRequest(e, http.MethodPost, "id", id.String(), "kind", "lettera-dimissione")
	assert.Equal(t, http.StatusNotFound, httpCode(t, h.Generate(c)))

	// no template installed
	c, _ = newRequest(e, http.MethodPost, "id", id.String(), "kind", "procedural")
	assert.Equal(t, http.StatusInternalServerError, httpCode(t, h.Generate(c)))
}

func TestHandler_PreviewConsent(t *testing.T) {
	f := newFixture(t)
	id := f.patients.add(maria())
	f.documentTemplate(t, ConsentTemplate, paragraph("{nome} {cognome}"), "")
	h := NewHandler(f.svc)

	c, rec := newRequest(echo.New(), http.MethodGet, "id", id.String())
	require.NoError(t, h.PreviewConsent(c))

	var body htmlResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "<p>Maria Rossi</p>", body.HTML)
}

func TestHandler_PreviewConsent_Empty(t *testing.T) {
	f := newFixture(t)
	id := f.patients.add(maria())
	f.documentTemplate(t, ConsentTemplate, "", "")
	h := NewHandler(f.svc)

	c, _ := newRequest(echo.New(), http.MethodGet, "id", id.String())
	assert.Equal(t, http.StatusUnprocessableEntity, httpCode(t, h.PreviewConsent(c)))
}
