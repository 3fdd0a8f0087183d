package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	appconfig "github.com/gomind-health/bianca/internal/config"
	"github.com/gomind-health/bianca/internal/conversation"
	"github.com/gomind-health/bianca/internal/gomind"
	"github.com/gomind-health/bianca/pkg/logging"
)

type wiringGateway struct{}

func (wiringGateway) RequestVerificationCode(context.Context, string) error { return nil }
func (wiringGateway) AuthenticateWithCode(context.Context, string, string) (gomind.AuthResult, error) {
	return gomind.AuthResult{}, nil
}
func (wiringGateway) FetchResults(context.Context, string) (map[string]float64, error) {
	return nil, gomind.ErrNoResults
}
func (wiringGateway) FetchProducts(context.Context, int, string) ([]gomind.Product, error) {
	return nil, nil
}
func (wiringGateway) FetchProviders(context.Context, int, string) ([]gomind.Clinic, error) {
	return nil, nil
}
func (wiringGateway) SubmitAppointment(context.Context, gomind.AppointmentRequest, string) (int, error) {
	return http.StatusOK, nil
}

type wiringIntents struct{}

func (wiringIntents) Classify(context.Context, string, conversation.Stage) (conversation.Intent, error) {
	return conversation.IntentAmbiguous, nil
}
func (wiringIntents) ClassifyFarewell(context.Context, string, *conversation.Session) (conversation.FarewellIntent, error) {
	return conversation.FarewellContinuing, nil
}

type wiringLLM struct {
	last conversation.LLMRequest
}

func (l *wiringLLM) Complete(_ context.Context, req conversation.LLMRequest) (conversation.LLMResponse, error) {
	l.last = req
	return conversation.LLMResponse{Text: "claro, con gusto"}, nil
}

func TestSetupConversationMetricsExposesMetrics(t *testing.T) {
	handler, m := setupConversationMetrics()
	if handler == nil || m == nil {
		t.Fatalf("expected non-nil handler and metrics")
	}

	m.ObserveTurn("completed", "ok")

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "bianca_conversation_turns_total") {
		t.Fatalf("expected turn counter to be exported")
	}
}

func TestSetupEngineAppliesConfiguredMaxTokens(t *testing.T) {
	logger := logging.New("error")
	cfg := &appconfig.Config{
		BedrockModelID:   "model-x",
		BedrockMaxTokens: 256,
	}
	llm := &wiringLLM{}

	engine := setupEngine(cfg, wiringGateway{}, wiringIntents{}, llm, logger)
	if engine == nil {
		t.Fatalf("expected engine")
	}

	sess := conversation.NewSession("wiring-test")
	sess.Stage = conversation.StageCompleted
	engine.Dispatch(context.Background(), sess, "cuéntame más")

	if llm.last.Model != "model-x" {
		t.Fatalf("expected configured model on the request, got %q", llm.last.Model)
	}
	if llm.last.MaxTokens != 256 {
		t.Fatalf("expected configured token limit 256, got %d", llm.last.MaxTokens)
	}
}
