package conversation

import (
	"context"
	"strings"

	"github.com/gomind-health/bianca/pkg/logging"
)

// Intent is the classified meaning of an utterance relative to the current
// stage.
type Intent string

const (
	IntentPositive       Intent = "POSITIVA"
	IntentNegative       Intent = "NEGATIVA"
	IntentAmbiguous      Intent = "AMBIGUA"
	IntentProducts       Intent = "PRODUCTOS"
	IntentNewAppointment Intent = "NUEVA_CITA"
)

// FarewellIntent classifies whether the user is ending the conversation.
type FarewellIntent string

const (
	FarewellGoodbye    FarewellIntent = "DESPEDIDA"
	FarewellContinuing FarewellIntent = "CONTINUANDO"
	FarewellAmbiguous  FarewellIntent = "AMBIGUO"
)

// IntentClassifier reduces free text to a fixed label set.
type IntentClassifier interface {
	Classify(ctx context.Context, utterance string, stage Stage) (Intent, error)
	ClassifyFarewell(ctx context.Context, utterance string, sess *Session) (FarewellIntent, error)
}

// LLMIntentClassifier asks the LLM oracle for a single-label classification.
type LLMIntentClassifier struct {
	llm   LLMClient
	model string
}

func NewLLMIntentClassifier(llm LLMClient, model string) *LLMIntentClassifier {
	if llm == nil {
		panic("conversation: intent classifier llm cannot be nil")
	}
	return &LLMIntentClassifier{llm: llm, model: model}
}

var _ IntentClassifier = (*LLMIntentClassifier)(nil)

func (c *LLMIntentClassifier) Classify(ctx context.Context, utterance string, stage Stage) (Intent, error) {
	resp, err := c.llm.Complete(ctx, LLMRequest{
		Model:       c.model,
		Messages:    []ChatMessage{{Role: ChatRoleUser, Content: intentPrompt(utterance, stage)}},
		MaxTokens:   10,
		Temperature: -1,
	})
	if err != nil {
		return "", err
	}

	switch intent := Intent(strings.ToUpper(strings.TrimSpace(resp.Text))); intent {
	case IntentPositive, IntentNegative, IntentAmbiguous, IntentProducts, IntentNewAppointment:
		return intent, nil
	default:
		return IntentAmbiguous, nil
	}
}

func (c *LLMIntentClassifier) ClassifyFarewell(ctx context.Context, utterance string, sess *Session) (FarewellIntent, error) {
	resp, err := c.llm.Complete(ctx, LLMRequest{
		Model:       c.model,
		Messages:    []ChatMessage{{Role: ChatRoleUser, Content: farewellPrompt(utterance, conversationContext(sess))}},
		MaxTokens:   10,
		Temperature: -1,
	})
	if err != nil {
		return "", err
	}

	switch intent := FarewellIntent(strings.ToUpper(strings.TrimSpace(resp.Text))); intent {
	case FarewellGoodbye, FarewellContinuing, FarewellAmbiguous:
		return intent, nil
	default:
		return FarewellContinuing, nil
	}
}

var (
	negativeWords = []string{"no", "nunca", "jamás"}
	positiveWords = []string{"si", "sí", "yes", "ok", "claro"}

	farewellKeywords = []string{
		"gracias", "adiós", "hasta luego", "nos vemos", "chao", "bye",
		"eso es todo", "ya terminé", "ya está", "perfecto gracias",
	}
)

// KeywordIntentClassifier is the deterministic fallback used when the oracle
// is unreachable. Matching is substring-based, mirroring the oracle prompt's
// guidance rather than full tokenization.
type KeywordIntentClassifier struct{}

var _ IntentClassifier = (*KeywordIntentClassifier)(nil)

func (KeywordIntentClassifier) Classify(_ context.Context, utterance string, _ Stage) (Intent, error) {
	lower := strings.ToLower(utterance)
	for _, word := range negativeWords {
		if strings.Contains(lower, word) {
			return IntentNegative, nil
		}
	}
	for _, word := range positiveWords {
		if strings.Contains(lower, word) {
			return IntentPositive, nil
		}
	}
	return IntentAmbiguous, nil
}

func (KeywordIntentClassifier) ClassifyFarewell(_ context.Context, utterance string, _ *Session) (FarewellIntent, error) {
	lower := strings.ToLower(utterance)
	for _, keyword := range farewellKeywords {
		if strings.Contains(lower, keyword) {
			return FarewellGoodbye, nil
		}
	}
	return FarewellContinuing, nil
}

// FallbackIntentClassifier tries the oracle-backed classifier and falls back
// to keyword matching when the oracle call fails.
type FallbackIntentClassifier struct {
	primary  IntentClassifier
	fallback IntentClassifier
	logger   *logging.Logger
}

func NewFallbackIntentClassifier(primary, fallback IntentClassifier, logger *logging.Logger) *FallbackIntentClassifier {
	if primary == nil {
		panic("conversation: primary intent classifier cannot be nil")
	}
	if fallback == nil {
		fallback = KeywordIntentClassifier{}
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &FallbackIntentClassifier{primary: primary, fallback: fallback, logger: logger}
}

var _ IntentClassifier = (*FallbackIntentClassifier)(nil)

func (c *FallbackIntentClassifier) Classify(ctx context.Context, utterance string, stage Stage) (Intent, error) {
	intent, err := c.primary.Classify(ctx, utterance, stage)
	if err == nil {
		return intent, nil
	}
	c.logger.Warn("intent oracle failed, using keyword fallback", "error", err.Error(), "stage", string(stage))
	return c.fallback.Classify(ctx, utterance, stage)
}

func (c *FallbackIntentClassifier) ClassifyFarewell(ctx context.Context, utterance string, sess *Session) (FarewellIntent, error) {
	intent, err := c.primary.ClassifyFarewell(ctx, utterance, sess)
	if err == nil {
		return intent, nil
	}
	c.logger.Warn("farewell oracle failed, using keyword fallback", "error", err.Error())
	return c.fallback.ClassifyFarewell(ctx, utterance, sess)
}
