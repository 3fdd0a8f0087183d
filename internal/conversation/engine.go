package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gomind-health/bianca/internal/dates"
	"github.com/gomind-health/bianca/internal/gomind"
	"github.com/gomind-health/bianca/internal/medical"
	"github.com/gomind-health/bianca/pkg/logging"
)

// bookingProductID is pinned upstream; the user's product selection is
// informational and does not thread into the booking payload.
const bookingProductID = 2

// Gateway is the port to the GoMind platform API.
type Gateway interface {
	RequestVerificationCode(ctx context.Context, email string) error
	AuthenticateWithCode(ctx context.Context, email, code string) (gomind.AuthResult, error)
	FetchResults(ctx context.Context, token string) (map[string]float64, error)
	FetchProducts(ctx context.Context, companyID int, token string) ([]gomind.Product, error)
	FetchProviders(ctx context.Context, companyID int, token string) ([]gomind.Clinic, error)
	SubmitAppointment(ctx context.Context, req gomind.AppointmentRequest, token string) (int, error)
}

var _ Gateway = (*gomind.Client)(nil)

// Engine is the conversation state machine. Given the session's stage and a
// raw utterance it runs the matching handler, mutates the session, and
// returns the reply plus the next stage. Remote failures are converted into
// apologetic replies and a safe fallback stage, never propagated.
type Engine struct {
	gateway   Gateway
	intents   IntentClassifier
	llm       LLMClient
	model     string
	maxTokens int32
	logger    *logging.Logger
	now       func() time.Time
}

// EngineOption customizes engine construction.
type EngineOption func(*Engine)

// WithClock overrides the wall clock, used by scheduling logic.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) { e.now = now }
}

// WithMaxTokens overrides the generative reply token budget.
func WithMaxTokens(n int32) EngineOption {
	return func(e *Engine) { e.maxTokens = n }
}

func NewEngine(gateway Gateway, intents IntentClassifier, llm LLMClient, model string, logger *logging.Logger, opts ...EngineOption) *Engine {
	if gateway == nil {
		panic("conversation: gateway cannot be nil")
	}
	if intents == nil {
		panic("conversation: intent classifier cannot be nil")
	}
	if llm == nil {
		panic("conversation: llm client cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	e := &Engine{
		gateway:   gateway,
		intents:   intents,
		llm:       llm,
		model:     model,
		maxTokens: 1000,
		logger:    logger,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Dispatch runs one turn. The returned stage is always a defined Stage; the
// response may be empty only when a handler explicitly yields no reply.
func (e *Engine) Dispatch(ctx context.Context, sess *Session, utterance string) (string, Stage) {
	switch sess.Stage {
	case StageInitial:
		return msgWelcome, StageWaitingEmail
	case StageWaitingEmail:
		return e.handleEmail(ctx, sess, utterance)
	case StageWaitingVerificationCode:
		return e.handleVerificationCode(ctx, sess, utterance)
	case StageAuthenticated:
		return e.processMedicalResults(ctx, sess, strings.TrimSpace(utterance), "Usuario")
	case StageMainMenu:
		return e.handleMainMenu(ctx, sess, utterance)
	case StageShowingProducts:
		return e.handleShowingProducts(ctx, sess, utterance)
	case StageSelectingProduct:
		return e.handleProductSelection(ctx, sess, utterance)
	case StageAnalyzing:
		return e.handleAnalyzing(ctx, sess, utterance)
	case StageSelectingClinic:
		return e.handleClinicSelection(ctx, sess, utterance)
	case StageScheduling:
		return e.handleDaySelection(ctx, sess, utterance)
	case StageSelectingTime:
		return e.handleTimeSelection(sess, utterance)
	case StageConfirming:
		return e.handleConfirming(ctx, sess, utterance)
	case StageWaitingJSON:
		return e.handleWaitingJSON(ctx, sess, utterance)
	case StageCompleted:
		return e.handleCompleted(ctx, sess, utterance)
	case StageConversationEnded:
		return msgConversationEnded, StageConversationEnded
	default:
		// Unknown stages (e.g. from a stale persisted session) degrade to
		// contextual conversation.
		return e.contextualReply(ctx, sess, utterance)
	}
}

// ---- authentication flow ----

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

func isValidEmail(email string) bool {
	return emailPattern.MatchString(email) && !strings.Contains(email, " ")
}

func (e *Engine) handleEmail(ctx context.Context, sess *Session, utterance string) (string, Stage) {
	email := strings.ToLower(strings.TrimSpace(utterance))
	if !isValidEmail(email) {
		return msgInvalidEmail, StageWaitingEmail
	}
	sess.UserEmail = email

	if err := e.gateway.RequestVerificationCode(ctx, email); err != nil {
		var notFound *gomind.UserNotFoundError
		if errors.As(err, &notFound) {
			return notFound.Error(), StageWaitingEmail
		}
		return fmt.Sprintf("Error enviando código de verificación: %v. Por favor, intenta nuevamente.", err), StageWaitingEmail
	}
	return msgVerificationCodeSent, StageWaitingVerificationCode
}

func (e *Engine) handleVerificationCode(ctx context.Context, sess *Session, utterance string) (string, Stage) {
	auth, err := e.gateway.AuthenticateWithCode(ctx, sess.UserEmail, strings.TrimSpace(utterance))
	if err != nil {
		var invalid *gomind.InvalidCodeError
		if errors.As(err, &invalid) {
			return msgInvalidCode, StageWaitingVerificationCode
		}
		return fmt.Sprintf("%s %v", msgCodeError, err), StageWaitingVerificationCode
	}

	sess.AuthToken = auth.Token
	sess.CompanyID = auth.CompanyID
	sess.UserData = &UserData{ID: auth.UserID, Name: auth.UserName}

	// Products are best-effort; login succeeds without them.
	products, err := e.gateway.FetchProducts(ctx, auth.CompanyID, auth.Token)
	if err != nil {
		e.logger.Warn("product fetch after login failed", "error", err.Error(), "session_id", sess.SessionID)
		products = nil
	}
	sess.CompanyProducts = products

	return msgCodeAuthenticationSuccess + "\n\n" + fmt.Sprintf(msgLoginSuccessMenu, auth.UserName), StageMainMenu
}

// ---- medical results flow ----

func (e *Engine) processMedicalResults(ctx context.Context, sess *Session, userID, userName string) (string, Stage) {
	results, err := e.gateway.FetchResults(ctx, sess.AuthToken)
	if err != nil {
		if errors.Is(err, gomind.ErrNoResults) {
			return fmt.Sprintf("Lo siento, no se logró identificar al paciente con el ID %s. Verifica que el número sea correcto o contacta a soporte. ¿Hay algo más en lo que pueda ayudarte?", userID), StageCompleted
		}
		return fmt.Sprintf("Error obteniendo resultados de la API: %v. ¿Puedes compartir tus resultados médicos en formato JSON? Ejemplo: {\"Glicemia Basal\": 90, \"Hemoglobina\": 13}", err), StageWaitingJSON
	}

	sess.UserData = &UserData{ID: userID, Results: results}
	issues, _ := medical.Evaluate(results)
	return e.medicalResponse(ctx, sess, results, issues, userName)
}

func (e *Engine) medicalResponse(ctx context.Context, sess *Session, results map[string]float64, issues []string, userName string) (string, Stage) {
	if len(issues) == 0 {
		var b strings.Builder
		fmt.Fprintf(&b, "%s! Gracias por compartir tus resultados conmigo. Me da gusto poder revisarlos contigo.\n\n", userName)
		fmt.Fprintf(&b, msgHealthyResultsIntro, formatResultsList(results))
		b.WriteString(e.actionSteps(ctx, results, issues, true))
		b.WriteString(msgDisclaimer)
		return b.String(), StageCompleted
	}

	lines := make([]string, 0, len(issues))
	for _, issue := range issues {
		lines = append(lines, "- "+issue)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s! Gracias por compartir tus resultados conmigo. ", userName)
	fmt.Fprintf(&b, msgUnhealthyResultsIntro, strings.Join(lines, "\n"))
	b.WriteString(e.actionSteps(ctx, results, issues, false))
	b.WriteString(msgDisclaimer)
	b.WriteString("\n\n" + msgAppointmentQuestion)
	return b.String(), StageAnalyzing
}

func formatResultsList(results map[string]float64) string {
	params := make([]string, 0, len(results))
	for param := range results {
		params = append(params, param)
	}
	sort.Strings(params)
	lines := make([]string, 0, len(params))
	for _, param := range params {
		lines = append(lines, fmt.Sprintf("- %s: %v", param, results[param]))
	}
	return strings.Join(lines, "\n")
}

func (e *Engine) actionSteps(ctx context.Context, results map[string]float64, issues []string, healthy bool) string {
	resp, err := e.llm.Complete(ctx, LLMRequest{
		Model:       e.model,
		Messages:    []ChatMessage{{Role: ChatRoleUser, Content: actionStepsPrompt(results, issues, healthy)}},
		MaxTokens:   150,
		Temperature: -1,
	})
	if err != nil || strings.TrimSpace(resp.Text) == "" {
		if err != nil {
			e.logger.Warn("action steps generation failed", "error", err.Error())
		}
		if healthy {
			return actionStepsHealthyFallback
		}
		return actionStepsUnhealthyFallback
	}
	return "\n\n**Pasos a Seguir:**\n" + strings.TrimSpace(resp.Text)
}

// ---- main menu and products ----

var (
	bookingKeywords = []string{"agendar", "cita", "chequeo", "preventivo", "producto"}
	reviewKeywords  = []string{"revisa", "revisar", "examen", "examenes", "exámenes", "analizar", "resultado", "médico", "medico"}
)

func containsAny(s string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(s, keyword) {
			return true
		}
	}
	return false
}

func (e *Engine) handleMainMenu(ctx context.Context, sess *Session, utterance string) (string, Stage) {
	choice := strings.ToLower(strings.TrimSpace(utterance))
	switch {
	case containsAny(choice, bookingKeywords):
		return e.showProductsMenu(sess)
	case containsAny(choice, reviewKeywords):
		return e.startMedicalAnalysis(ctx, sess)
	default:
		return msgInvalidMenuOption, StageMainMenu
	}
}

func (e *Engine) showProductsMenu(sess *Session) (string, Stage) {
	if len(sess.CompanyProducts) == 0 {
		return "No hay productos disponibles en este momento. ¿Te gustaría hacer un análisis médico en su lugar?", StageMainMenu
	}

	var list strings.Builder
	for _, product := range sess.CompanyProducts {
		list.WriteString("- " + productName(product) + "\n")
	}
	return fmt.Sprintf(msgProductsMenu, list.String()), StageSelectingProduct
}

func (e *Engine) startMedicalAnalysis(ctx context.Context, sess *Session) (string, Stage) {
	if sess.UserData != nil && sess.UserData.ID != "" {
		return e.processMedicalResults(ctx, sess, sess.UserData.ID, sess.UserName())
	}
	return "Para analizar tus resultados médicos, por favor ingresa tu número de identificación:", StageAuthenticated
}

func (e *Engine) handleShowingProducts(ctx context.Context, sess *Session, utterance string) (string, Stage) {
	intent := e.classify(ctx, utterance, StageShowingProducts)
	if intent != IntentProducts {
		// No reply here; the channel adapter substitutes the generic fallback.
		return "", StageAuthenticated
	}
	if len(sess.CompanyProducts) == 0 {
		return "No hay productos disponibles en este momento.", StageAuthenticated
	}

	var b strings.Builder
	b.WriteString("Aquí tienes los productos disponibles de tu compañía:\n\n")
	for _, product := range sess.CompanyProducts {
		description := product.Description
		if description == "" {
			description = "Sin descripción"
		}
		price := "Precio no disponible"
		if product.Price > 0 {
			price = strconv.FormatFloat(product.Price, 'f', -1, 64)
		}
		fmt.Fprintf(&b, "**%s**\n%s\nPrecio: %s\n\n", productName(product), description, price)
	}
	return b.String(), StageShowingProducts
}

func (e *Engine) handleProductSelection(ctx context.Context, sess *Session, utterance string) (string, Stage) {
	var selected *gomind.Product
	if idx, err := strconv.Atoi(strings.TrimSpace(utterance)); err == nil {
		if idx >= 1 && idx <= len(sess.CompanyProducts) {
			selected = &sess.CompanyProducts[idx-1]
		}
	}
	if selected == nil {
		selected = findProductMatch(utterance, sess.CompanyProducts)
	}
	if selected == nil {
		return msgInvalidProductOption, StageSelectingProduct
	}

	sess.SelectedProduct = selected
	header := fmt.Sprintf(msgProductSelected, productName(*selected))
	response, stage := e.startAppointmentFlow(ctx, sess)
	return header + "\n\n" + response, stage
}

func productName(p gomind.Product) string {
	if p.Name != "" {
		return p.Name
	}
	return "Producto sin nombre"
}

// ---- appointment flow ----

func (e *Engine) startAppointmentFlow(ctx context.Context, sess *Session) (string, Stage) {
	clinics, err := e.gateway.FetchProviders(ctx, sess.CompanyID, sess.AuthToken)
	if err != nil {
		return fmt.Sprintf(msgClinicError, err), StageCompleted
	}
	if len(clinics) == 0 {
		return msgClinicUnavailable, StageCompleted
	}
	sess.Clinics = clinics

	var b strings.Builder
	b.WriteString("Contamos con los siguientes centros médicos:\n\n")
	for i, clinic := range clinics {
		fmt.Fprintf(&b, "%d. %s\n", i+1, clinic.Name)
	}
	b.WriteString("\n¿En cuál clínica prefieres agendar tu cita?\nResponde con el número de tu opción.")
	return b.String(), StageSelectingClinic
}

func (e *Engine) handleAnalyzing(ctx context.Context, sess *Session, utterance string) (string, Stage) {
	switch e.classify(ctx, utterance, StageAnalyzing) {
	case IntentPositive:
		return e.startAppointmentFlow(ctx, sess)
	case IntentAmbiguous:
		return "¿Te gustaría que te ayude a agendar una cita? Por favor responde sí o no para continuar.", StageAnalyzing
	default:
		return msgAppointmentGeneralDeclined, StageCompleted
	}
}

func (e *Engine) handleClinicSelection(ctx context.Context, sess *Session, utterance string) (string, Stage) {
	var selected string
	if idx, err := strconv.Atoi(strings.TrimSpace(utterance)); err == nil {
		if idx >= 1 && idx <= len(sess.Clinics) {
			selected = sess.Clinics[idx-1].Name
		}
	} else {
		names := make([]string, 0, len(sess.Clinics))
		for _, clinic := range sess.Clinics {
			names = append(names, clinic.Name)
		}
		selected = findMatch(utterance, names)
	}
	if selected == "" {
		return msgClinicNotRecognized, StageSelectingClinic
	}

	sess.SelectedClinic = selected
	sess.NextDays = dates.NextBusinessDays(e.now(), 3)

	var b strings.Builder
	fmt.Fprintf(&b, "¡Excelente! Has seleccionado %s.\n\nAhora, tengo disponibilidad para agendar una cita en los próximos días hábiles:\n\n", selected)
	for i, day := range sess.NextDays {
		fmt.Fprintf(&b, "%d. %s\n", i+1, day)
	}
	b.WriteString("\n¿Para qué día te gustaría agendar? (Selecciona el numero)")
	return b.String(), StageScheduling
}

func (e *Engine) handleDaySelection(_ context.Context, sess *Session, utterance string) (string, Stage) {
	var selected string
	if idx, err := strconv.Atoi(strings.TrimSpace(utterance)); err == nil {
		if idx >= 1 && idx <= len(sess.NextDays) {
			selected = sess.NextDays[idx-1]
		}
	} else {
		selected = findMatch(utterance, sess.NextDays)
	}
	if selected == "" {
		return msgDayNotRecognized, StageScheduling
	}

	hours := hourSlots()
	sess.SelectedDay = selected
	sess.AvailableHours = hours

	lines := make([]string, 0, len(hours))
	for i, hour := range hours {
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, hour))
	}
	return fmt.Sprintf("Genial, el %s tengo disponibilidad en los siguientes horarios:\n\n%s\n\n¿A qué hora te gustaría agendar? Por favor, Responde con el número de tu opción (1-%d).",
		selected, strings.Join(lines, "\n"), len(hours)), StageSelectingTime
}

// hourSlots lists the bookable hours, 09:00 through 18:00.
func hourSlots() []string {
	hours := make([]string, 0, 10)
	for h := 9; h <= 18; h++ {
		hours = append(hours, fmt.Sprintf("%d:00", h))
	}
	return hours
}

func (e *Engine) handleTimeSelection(sess *Session, utterance string) (string, Stage) {
	input := strings.TrimSpace(utterance)
	hours := sess.AvailableHours
	if len(hours) == 0 {
		hours = hourSlots()
	}

	if option, err := strconv.Atoi(input); err == nil {
		if option >= 1 && option <= len(hours) {
			sess.SelectedTime = hours[option-1]
			return fmt.Sprintf("Perfecto, reservo para el %s a las %s. ¿Confirmo tu cita?", sess.SelectedDay, sess.SelectedTime), StageConfirming
		}
		return fmt.Sprintf("Por favor, elige un número entre 1 y %d.", len(hours)), StageSelectingTime
	}

	// Fallback: a literal "H:MM" time inside business hours.
	if hourStr, _, found := strings.Cut(input, ":"); found {
		if hour, err := strconv.Atoi(strings.TrimSpace(hourStr)); err == nil {
			if hour < 9 || hour > 18 {
				return fmt.Sprintf("Esa hora no está disponible. Por favor, elige un número entre 1 y %d.", len(hours)), StageSelectingTime
			}
			sess.SelectedTime = input
			return fmt.Sprintf("Perfecto, reservo para el %s a las %s. ¿Confirmo tu cita?", sess.SelectedDay, input), StageConfirming
		}
	}
	return fmt.Sprintf("Por favor, responde con el número de la opción que prefieres (1-%d).", len(hours)), StageSelectingTime
}

func (e *Engine) handleConfirming(ctx context.Context, sess *Session, utterance string) (string, Stage) {
	switch e.classify(ctx, utterance, StageConfirming) {
	case IntentPositive:
		return e.confirmAppointment(ctx, sess)
	case IntentAmbiguous:
		return "¿Confirmas tu cita? Por favor responde sí o no.", StageConfirming
	default:
		sess.SelectedTime = ""
		return msgAppointmentDeclined, StageCompleted
	}
}

func (e *Engine) confirmAppointment(ctx context.Context, sess *Session) (string, Stage) {
	// Incomplete selections restart the booking flow with fresh providers.
	if sess.SelectedClinic == "" || sess.SelectedDay == "" || sess.SelectedTime == "" {
		return e.startAppointmentFlow(ctx, sess)
	}
	if sess.UserData == nil || sess.UserData.ID == "" {
		return unexpectedError("ID de usuario no disponible")
	}

	var providerID int
	for _, clinic := range sess.Clinics {
		if clinic.Name == sess.SelectedClinic {
			providerID = clinic.HealthProviderID
			break
		}
	}
	if providerID == 0 {
		return unexpectedError(fmt.Sprintf("Clínica no encontrada en datos del endpoint: %s", sess.SelectedClinic))
	}

	iso, err := dates.ToISO(sess.SelectedDay, sess.SelectedTime, e.now())
	if err != nil {
		// Day/time were validated at selection; reaching here is an internal
		// inconsistency, reported like any other booking failure.
		return unexpectedError(fmt.Sprintf("Error procesando fecha y hora: %v", err))
	}

	status, err := e.gateway.SubmitAppointment(ctx, gomind.AppointmentRequest{
		UserID:           json.Number(sess.UserData.ID),
		ProductID:        bookingProductID,
		HealthProviderID: providerID,
		DateTime:         iso,
	}, sess.AuthToken)
	if err != nil {
		return msgConnectionError, StageCompleted
	}
	if status == 200 || status == 201 {
		return fmt.Sprintf(msgAppointmentSuccess, sess.SelectedDay, sess.SelectedTime, sess.SelectedClinic), StageCompleted
	}
	return fmt.Sprintf(msgAppointmentError, status), StageCompleted
}

func unexpectedError(detail string) (string, Stage) {
	return fmt.Sprintf("Error inesperado: %s. ¿Te gustaría intentarlo más tarde?", detail), StageCompleted
}

// ---- completed / medical input ----

func (e *Engine) handleCompleted(ctx context.Context, sess *Session, utterance string) (string, Stage) {
	if response, stage, ok := e.tryMedicalInput(ctx, sess, utterance); ok {
		return response, stage
	}

	switch e.classify(ctx, utterance, StageCompleted) {
	case IntentNewAppointment, IntentPositive:
		sess.ResetAppointment()
		return e.startAppointmentFlow(ctx, sess)
	case IntentNegative:
		return e.farewellResponse(sess), StageConversationEnded
	default:
		return e.contextualReply(ctx, sess, utterance)
	}
}

func (e *Engine) handleWaitingJSON(ctx context.Context, sess *Session, utterance string) (string, Stage) {
	if response, stage, ok := e.tryMedicalInput(ctx, sess, utterance); ok {
		return response, stage
	}
	return msgInvalidJSON, StageWaitingJSON
}

var clinicalKeyTokens = []string{"glicemia", "hemoglobina", "colesterol", "glucosa"}

// tryMedicalInput recognizes either a numeric patient identifier or a JSON
// object of lab results. Returns ok=false when the utterance is neither.
func (e *Engine) tryMedicalInput(ctx context.Context, sess *Session, utterance string) (string, Stage, bool) {
	trimmed := strings.TrimSpace(utterance)
	if trimmed != "" && isDigits(trimmed) {
		response, stage := e.processMedicalResults(ctx, sess, trimmed, "Usuario")
		return response, stage, true
	}

	var data map[string]any
	if err := json.Unmarshal([]byte(utterance), &data); err != nil {
		return "", "", false
	}
	if !hasClinicalKey(data) {
		return "", "", false
	}

	userName := "Usuario"
	if name, ok := data["nombre_usuario"].(string); ok && name != "" {
		userName = name
	}
	results := make(map[string]float64)
	for key, value := range data {
		if key == "nombre_usuario" {
			continue
		}
		if number, ok := value.(float64); ok {
			results[key] = number
		}
	}
	sess.UserData = &UserData{Results: results}
	issues, _ := medical.Evaluate(results)
	response, stage := e.medicalResponse(ctx, sess, results, issues, userName)
	return response, stage, true
}

func hasClinicalKey(data map[string]any) bool {
	for key := range data {
		if containsAny(strings.ToLower(key), clinicalKeyTokens) {
			return true
		}
	}
	return false
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// ---- contextual conversation and farewells ----

func (e *Engine) contextualReply(ctx context.Context, sess *Session, utterance string) (string, Stage) {
	if farewell, err := e.intents.ClassifyFarewell(ctx, utterance, sess); err == nil && farewell == FarewellGoodbye {
		return e.farewellResponse(sess), StageConversationEnded
	}

	resp, err := e.llm.Complete(ctx, LLMRequest{
		Model:       e.model,
		Messages:    []ChatMessage{{Role: ChatRoleUser, Content: contextualPrompt(utterance, conversationContext(sess))}},
		MaxTokens:   e.maxTokens,
		Temperature: -1,
	})
	if err != nil || strings.TrimSpace(resp.Text) == "" {
		if err != nil {
			e.logger.Warn("contextual reply generation failed", "error", err.Error(), "session_id", sess.SessionID)
		}
		return msgProcessingFallback, StageCompleted
	}
	return resp.Text, StageCompleted
}

func (e *Engine) farewellResponse(sess *Session) string {
	name := ""
	if sess.UserData != nil && sess.UserData.Name != "" && sess.UserData.Name != "Usuario" {
		name = sess.UserData.Name
	}

	if sess.SelectedClinic != "" && sess.SelectedDay != "" && sess.SelectedTime != "" {
		info := fmt.Sprintf(" para tu cita del %s a las %s en %s", sess.SelectedDay, sess.SelectedTime, sess.SelectedClinic)
		if name != "" {
			return fmt.Sprintf("¡Perfecto, %s! Me alegra haber podido ayudarte%s. ¡Que tengas un excelente día y nos vemos pronto!", name, info)
		}
		return fmt.Sprintf("¡Perfecto! Me alegra haber podido ayudarte%s. ¡Que tengas un excelente día y nos vemos pronto!", info)
	}

	if name != "" {
		return fmt.Sprintf("¡Gracias por usar nuestros servicios, %s! Espero haber podido ayudarte. ¡Que tengas un excelente día!", name)
	}
	return "¡Gracias por usar nuestros servicios! Espero haber podido ayudarte. ¡Que tengas un excelente día!"
}

func (e *Engine) classify(ctx context.Context, utterance string, stage Stage) Intent {
	intent, err := e.intents.Classify(ctx, utterance, stage)
	if err != nil {
		e.logger.Warn("intent classification failed", "error", err.Error(), "stage", string(stage))
		return IntentAmbiguous
	}
	return intent
}

// findMatch resolves free text against candidate names by word overlap: the
// first candidate with any of its lowercased words appearing inside the
// utterance wins. No scoring.
func findMatch(prompt string, names []string) string {
	lower := strings.ToLower(prompt)
	for _, name := range names {
		for _, word := range strings.Fields(strings.ToLower(name)) {
			if strings.Contains(lower, word) {
				return name
			}
		}
	}
	return ""
}

func findProductMatch(prompt string, products []gomind.Product) *gomind.Product {
	lower := strings.ToLower(prompt)
	for i := range products {
		for _, word := range strings.Fields(strings.ToLower(products[i].Name)) {
			if strings.Contains(lower, word) {
				return &products[i]
			}
		}
	}
	return nil
}
