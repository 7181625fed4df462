package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/gommon/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiaot623/gogo/chatbot/internal/adapter/llm"
	"github.com/xiaot623/gogo/chatbot/internal/config"
	"github.com/xiaot623/gogo/chatbot/internal/domain"
	"github.com/xiaot623/gogo/chatbot/internal/hub"
	"github.com/xiaot623/gogo/chatbot/internal/service"
	"github.com/xiaot623/gogo/chatbot/tests/helpers"
)

func TestLogLevel(t *testing.T) {
	cases := map[string]log.Lvl{
		"debug":   log.DEBUG,
		"INFO":    log.INFO,
		"":        log.INFO,
		"verbose": log.INFO,
		"warn":    log.WARN,
		" Error ": log.ERROR,
		"off":     log.OFF,
	}
	for in, want := range cases {
		assert.Equal(t, want, logLevel(in), in)
	}
}

func TestNewServerAppliesLogLevel(t *testing.T) {
	cfg := &config.Config{DefaultProvider: "completion", LogLevel: "error"}
	providers := &llm.Providers{
		Completion: llm.NewMockClient(domain.VariantCompletion),
		Chat:       llm.NewMockClient(domain.VariantChat),
	}
	svc := service.New(helpers.NewTestSQLiteStore(t), providers, nil, nil, cfg)

	e := NewServer(svc, hub.NewHub(), cfg)
	assert.Equal(t, log.ERROR, e.Logger.Level())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Chatbot API is running"}`, rec.Body.String())
}
