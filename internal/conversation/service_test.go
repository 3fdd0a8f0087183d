package conversation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gomind-health/bianca/internal/gomind"
	"github.com/gomind-health/bianca/internal/observability/metrics"
	"github.com/gomind-health/bianca/pkg/logging"
	"github.com/prometheus/client_golang/prometheus"
)

func newTestService(gw *stubGateway, intents *stubIntents, llm *stubLLM) (*Service, SessionStore) {
	store := NewMemorySessionStore()
	engine := newTestEngine(gw, intents, llm)
	m := metrics.NewConversationMetrics(prometheus.NewRegistry())
	return NewService(engine, store, nil, m, logging.New("error")), store
}

func TestServiceFirstTurnGreets(t *testing.T) {
	svc, store := newTestService(&stubGateway{}, nil, nil)

	reply, err := svc.ProcessMessage(context.Background(), "whatsapp:+56912345678", "hola")

	require.NoError(t, err)
	assert.Equal(t, "whatsapp:+56912345678", reply.SessionID)
	assert.Equal(t, StageWaitingEmail, reply.Stage)
	assert.Contains(t, reply.Response, "Bianca")

	sess, err := store.GetOrCreate(context.Background(), "whatsapp:+56912345678")
	require.NoError(t, err)
	assert.Equal(t, StageWaitingEmail, sess.Stage)
	require.Len(t, sess.Messages, 2)
	assert.Equal(t, "user", sess.Messages[0].Role)
	assert.Equal(t, "hola", sess.Messages[0].Content)
	assert.Equal(t, "assistant", sess.Messages[1].Role)
}

func TestServiceEmptyEngineReplyGetsFallback(t *testing.T) {
	// showing_products with a non-product intent yields no reply from the
	// engine; the service substitutes the generic fallback without logging
	// an assistant message.
	intents := &stubIntents{intent: IntentAmbiguous, farewell: FarewellContinuing}
	svc, store := newTestService(&stubGateway{}, intents, nil)

	sess, err := store.GetOrCreate(context.Background(), "s1")
	require.NoError(t, err)
	sess.Stage = StageShowingProducts
	require.NoError(t, store.Save(context.Background(), sess))

	reply, err := svc.ProcessMessage(context.Background(), "s1", "hola")

	require.NoError(t, err)
	assert.Equal(t, msgProcessingFallback, reply.Response)
	assert.Equal(t, StageAuthenticated, reply.Stage)

	sess, err = store.GetOrCreate(context.Background(), "s1")
	require.NoError(t, err)
	require.Len(t, sess.Messages, 1)
	assert.Equal(t, "user", sess.Messages[0].Role)
}

func TestServiceSessionsAreIsolated(t *testing.T) {
	svc, _ := newTestService(&stubGateway{}, nil, nil)
	ctx := context.Background()

	replyA, err := svc.ProcessMessage(ctx, "a", "hola")
	require.NoError(t, err)
	replyB, err := svc.ProcessMessage(ctx, "b", "hola")
	require.NoError(t, err)

	assert.Equal(t, StageWaitingEmail, replyA.Stage)
	assert.Equal(t, StageWaitingEmail, replyB.Stage)

	// Session a advances while b stays on the email prompt.
	replyA, err = svc.ProcessMessage(ctx, "a", "ana@example.com")
	require.NoError(t, err)
	assert.Equal(t, StageWaitingVerificationCode, replyA.Stage)

	replyB, err = svc.ProcessMessage(ctx, "b", "no es correo")
	require.NoError(t, err)
	assert.Equal(t, StageWaitingEmail, replyB.Stage)
}

func gomindAuth() gomind.AuthResult {
	return gomind.AuthResult{Token: "tok", CompanyID: 7, UserID: "42", UserName: "Ana"}
}

func TestServiceFullAuthenticationScenario(t *testing.T) {
	gw := &stubGateway{
		authResult: gomindAuth(),
		results:    map[string]float64{"Glicemia Basal": 90},
	}
	svc, _ := newTestService(gw, nil, &stubLLM{text: "1. Sigue así"})
	ctx := context.Background()
	id := "whatsapp:+56900000001"

	reply, err := svc.ProcessMessage(ctx, id, "hola")
	require.NoError(t, err)
	require.Equal(t, StageWaitingEmail, reply.Stage)

	reply, err = svc.ProcessMessage(ctx, id, "ana@example.com")
	require.NoError(t, err)
	require.Equal(t, StageWaitingVerificationCode, reply.Stage)

	reply, err = svc.ProcessMessage(ctx, id, "123456")
	require.NoError(t, err)
	require.Equal(t, StageMainMenu, reply.Stage)
	assert.Contains(t, reply.Response, "¡Bienvenido/a, Ana!")

	reply, err = svc.ProcessMessage(ctx, id, "Revisa mi examen")
	require.NoError(t, err)
	require.Equal(t, StageCompleted, reply.Stage)
	assert.Contains(t, reply.Response, "¡Excelente noticia")
}
