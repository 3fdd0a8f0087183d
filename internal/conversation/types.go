package conversation

import "github.com/gomind-health/bianca/internal/gomind"

// Stage is the discrete state of a single user's conversation.
type Stage string

const (
	StageInitial                 Stage = "initial"
	StageWaitingEmail            Stage = "waiting_email"
	StageWaitingVerificationCode Stage = "waiting_verification_code"
	StageAuthenticated           Stage = "authenticated"
	StageMainMenu                Stage = "main_menu"
	StageShowingProducts         Stage = "showing_products"
	StageSelectingProduct        Stage = "selecting_product"
	StageAnalyzing               Stage = "analyzing"
	StageSelectingClinic         Stage = "selecting_clinic"
	StageScheduling              Stage = "scheduling"
	StageSelectingTime           Stage = "selecting_time"
	StageConfirming              Stage = "confirming"
	StageWaitingJSON             Stage = "waiting_json"
	StageCompleted               Stage = "completed"
	StageConversationEnded       Stage = "conversation_ended"
)

// Stages lists every defined stage.
var Stages = []Stage{
	StageInitial, StageWaitingEmail, StageWaitingVerificationCode,
	StageAuthenticated, StageMainMenu, StageShowingProducts,
	StageSelectingProduct, StageAnalyzing, StageSelectingClinic,
	StageScheduling, StageSelectingTime, StageConfirming,
	StageWaitingJSON, StageCompleted, StageConversationEnded,
}

// Valid reports whether s is one of the defined stages.
func (s Stage) Valid() bool {
	for _, stage := range Stages {
		if s == stage {
			return true
		}
	}
	return false
}

// Message is one entry in a session's conversation log.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// UserData holds the verified patient identity and their fetched lab results.
type UserData struct {
	ID      string             `json:"id,omitempty"`
	Name    string             `json:"name,omitempty"`
	Results map[string]float64 `json:"results,omitempty"`
}

// Session is the durable per-user conversation record. One exists per
// external identity (phone number or chat session id) and grows for the
// lifetime of the conversation; the message log is never truncated.
type Session struct {
	SessionID string    `json:"session_id"`
	Stage     Stage     `json:"stage"`
	UserData  *UserData `json:"user_data,omitempty"`
	Messages  []Message `json:"messages,omitempty"`

	UserEmail string `json:"user_email,omitempty"`
	AuthToken string `json:"auth_token,omitempty"`
	CompanyID int    `json:"company_id,omitempty"`

	CompanyProducts []gomind.Product `json:"company_products,omitempty"`
	SelectedProduct *gomind.Product  `json:"selected_product,omitempty"`

	// Appointment sub-flow. Clinics, NextDays, and AvailableHours are
	// session-scoped caches refreshed on every booking attempt.
	Clinics        []gomind.Clinic `json:"clinics,omitempty"`
	SelectedClinic string          `json:"selected_clinic,omitempty"`
	SelectedDay    string          `json:"selected_day,omitempty"`
	SelectedTime   string          `json:"selected_time,omitempty"`
	NextDays       []string        `json:"next_days,omitempty"`
	AvailableHours []string        `json:"available_hours,omitempty"`
}

// NewSession creates a session at the initial stage.
func NewSession(sessionID string) *Session {
	return &Session{SessionID: sessionID, Stage: StageInitial}
}

// Authenticated reports whether verification-code authentication completed.
func (s *Session) Authenticated() bool {
	return s.AuthToken != ""
}

// UserName returns the verified user's name, or the generic fallback.
func (s *Session) UserName() string {
	if s.UserData != nil && s.UserData.Name != "" {
		return s.UserData.Name
	}
	return "Usuario"
}

// ResetAppointment clears the appointment sub-flow so a new booking attempt
// starts from fresh provider data.
func (s *Session) ResetAppointment() {
	s.SelectedClinic = ""
	s.SelectedDay = ""
	s.SelectedTime = ""
	s.Clinics = nil
	s.NextDays = nil
}

// Reply is the outcome of one processed turn.
type Reply struct {
	SessionID string `json:"session_id"`
	Response  string `json:"response"`
	Stage     Stage  `json:"stage"`
}
