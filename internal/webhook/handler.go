package webhook

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/gomind-health/bianca/internal/conversation"
	"github.com/gomind-health/bianca/pkg/logging"
)

var tracer = otel.Tracer("bianca.internal.webhook")

// Processor runs one conversation turn.
type Processor interface {
	ProcessMessage(ctx context.Context, sessionID, message string) (*conversation.Reply, error)
}

var _ Processor = (*conversation.Service)(nil)

// Handler exposes the conversation over HTTP: a Twilio WhatsApp webhook and a
// plain JSON chat endpoint.
type Handler struct {
	processor Processor
	logger    *logging.Logger
}

func NewHandler(processor Processor, logger *logging.Logger) *Handler {
	if processor == nil {
		panic("webhook: processor cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		processor: processor,
		logger:    logger,
	}
}

// Twilio handles POST /webhook requests from the Twilio WhatsApp sandbox.
// The sender's number keys the session; the reply goes back as TwiML.
func (h *Handler) Twilio(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracer.Start(r.Context(), "webhook.twilio")
	defer span.End()

	if err := r.ParseForm(); err != nil {
		h.logger.Error("failed to parse twilio form", "error", err)
		http.Error(w, "Bad Request", http.StatusBadRequest)
		span.RecordError(err)
		return
	}

	body := strings.TrimSpace(r.FormValue("Body"))
	from := strings.TrimSpace(r.FormValue("From"))
	sessionID := from
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	span.SetAttributes(attribute.String("bianca.session_id", sessionID))

	reply, err := h.processor.ProcessMessage(ctx, sessionID, body)
	if err != nil {
		h.logger.Error("failed to process twilio message", "error", err, "session_id", sessionID)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		span.RecordError(err)
		return
	}

	h.logger.Info("twilio webhook processed", "session_id", sessionID, "stage", string(reply.Stage))
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(twiml(reply.Response)))
}

type chatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

// Chat handles POST /chat requests from non-Twilio clients.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracer.Start(r.Context(), "webhook.chat")
	defer span.End()

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode chat request", "error", err)
		http.Error(w, "Bad Request", http.StatusBadRequest)
		span.RecordError(err)
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		err := errors.New("missing message field")
		http.Error(w, "Bad Request", http.StatusBadRequest)
		span.RecordError(err)
		return
	}
	if req.SessionID == "" {
		req.SessionID = uuid.NewString()
	}
	span.SetAttributes(attribute.String("bianca.session_id", req.SessionID))

	reply, err := h.processor.ProcessMessage(ctx, req.SessionID, req.Message)
	if err != nil {
		h.logger.Error("failed to process chat message", "error", err, "session_id", req.SessionID)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		span.RecordError(err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(reply)
}

// HealthCheck returns a simple health check response.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response := map[string]string{
		"status":  "ok",
		"service": "Bianca WhatsApp Bot",
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(response)
}

func twiml(message string) string {
	var escaped strings.Builder
	_ = xml.EscapeText(&escaped, []byte(message))
	return `<?xml version="1.0" encoding="UTF-8"?><Response><Message>` + escaped.String() + `</Message></Response>`
}
