package gomind

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gomind-health/bianca/pkg/logging"
)

// Client talks to the GoMind platform API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *logging.Logger
}

// NewClient creates a GoMind API client. Every call shares one timeout; a
// request exceeding it fails instead of hanging.
func NewClient(baseURL string, timeout time.Duration, logger *logging.Logger) *Client {
	if strings.TrimSpace(baseURL) == "" {
		panic("gomind: base URL cannot be empty")
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// RequestVerificationCode asks the identity service to email a verification
// code to the user.
func (c *Client) RequestVerificationCode(ctx context.Context, email string) error {
	body, status, err := c.post(ctx, "/api/auth/login/user-exist", map[string]any{"email": email}, "")
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return &APIError{Op: "request verification code", StatusCode: status, Body: string(body)}
	}

	var payload struct {
		UserExist *bool  `json:"user_exist"`
		Message   string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return fmt.Errorf("gomind: decode user-exist response: %w", err)
	}
	if payload.UserExist != nil && !*payload.UserExist {
		return &UserNotFoundError{Message: payload.Message}
	}
	return nil
}

// AuthenticateWithCode exchanges an emailed verification code for a bearer
// token plus the user's company and profile.
func (c *Client) AuthenticateWithCode(ctx context.Context, email, code string) (AuthResult, error) {
	authCode, err := strconv.Atoi(strings.TrimSpace(code))
	if err != nil {
		return AuthResult{}, fmt.Errorf("gomind: verification code must be numeric: %w", err)
	}

	body, status, err := c.post(ctx, "/api/auth/login/wsp", map[string]any{"email": email, "auth_code": authCode}, "")
	if err != nil {
		return AuthResult{}, err
	}
	if status != http.StatusOK {
		return AuthResult{}, &APIError{Op: "authenticate with code", StatusCode: status, Body: string(body)}
	}

	var payload struct {
		Success *bool  `json:"success"`
		Message string `json:"message"`
		Token   string `json:"token"`
		Company struct {
			CompanyID int `json:"company_id"`
		} `json:"company"`
		User map[string]any `json:"user"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return AuthResult{}, fmt.Errorf("gomind: decode wsp login response: %w", err)
	}
	if payload.Success != nil && !*payload.Success {
		return AuthResult{}, &InvalidCodeError{Message: payload.Message}
	}
	if payload.Token == "" || payload.Company.CompanyID == 0 || len(payload.User) == 0 {
		return AuthResult{}, &InvalidCodeError{Message: "respuesta de autenticación incompleta"}
	}

	userID := firstNonEmpty(
		coerceString(payload.User["user_id"]),
		coerceString(payload.User["id"]),
		coerceString(payload.User["userId"]),
	)
	userName := coerceString(payload.User["name"])
	if userName == "" {
		userName = "Usuario"
	}

	return AuthResult{
		Token:     payload.Token,
		CompanyID: payload.Company.CompanyID,
		UserID:    userID,
		UserName:  userName,
	}, nil
}

type resultRecord struct {
	AnalysisResults string  `json:"analysis_results"`
	Value           float64 `json:"value"`
}

// FetchResults retrieves the authenticated user's lab results keyed by
// canonical parameter name. Duplicate labels overwrite earlier ones.
func (c *Client) FetchResults(ctx context.Context, token string) (map[string]float64, error) {
	body, status, err := c.get(ctx, "/api/parameters/results-user", token)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, &APIError{Op: "fetch results", StatusCode: status, Body: string(body)}
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var records []resultRecord
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return nil, fmt.Errorf("gomind: decode results list: %w", err)
		}
		if len(records) == 0 {
			return nil, ErrNoResults
		}
		results := make(map[string]float64, len(records))
		for _, rec := range records {
			results[ExtractParameter(rec.AnalysisResults)] = rec.Value
		}
		return results, nil
	}

	// Some deployments return the mapping directly.
	var results map[string]float64
	if err := json.Unmarshal(trimmed, &results); err != nil {
		return nil, fmt.Errorf("gomind: decode results object: %w", err)
	}
	return results, nil
}

// FetchProducts lists the company's bookable products.
func (c *Client) FetchProducts(ctx context.Context, companyID int, token string) ([]Product, error) {
	body, status, err := c.get(ctx, fmt.Sprintf("/api/companies/%d/products", companyID), token)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, &APIError{Op: "fetch products", StatusCode: status, Body: string(body)}
	}

	var payload struct {
		Products []Product `json:"products"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("gomind: decode products response: %w", err)
	}
	return payload.Products, nil
}

// FetchProviders lists the company's health providers (clinics).
func (c *Client) FetchProviders(ctx context.Context, companyID int, token string) ([]Clinic, error) {
	body, status, err := c.get(ctx, fmt.Sprintf("/api/companies/%d/health-providers", companyID), token)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, &APIError{Op: "fetch providers", StatusCode: status, Body: string(body)}
	}

	var payload struct {
		HealthProviders []Clinic `json:"healthProviders"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("gomind: decode providers response: %w", err)
	}
	return payload.HealthProviders, nil
}

// SubmitAppointment posts a booking and returns the HTTP status. Non-success
// statuses are a recoverable booking failure, not an error.
func (c *Client) SubmitAppointment(ctx context.Context, req AppointmentRequest, token string) (int, error) {
	if strings.TrimSpace(token) == "" {
		return 0, fmt.Errorf("gomind: auth token is required to submit an appointment")
	}
	_, status, err := c.post(ctx, "/api/appointments", req, token)
	if err != nil {
		return 0, err
	}
	return status, nil
}

func (c *Client) post(ctx context.Context, path string, payload any, token string) ([]byte, int, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, 0, fmt.Errorf("gomind: marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, 0, fmt.Errorf("gomind: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, token)
}

func (c *Client) get(ctx context.Context, path, token string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("gomind: build request: %w", err)
	}
	return c.do(req, token)
}

func (c *Client) do(req *http.Request, token string) ([]byte, int, error) {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("gomind: %s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("gomind: read response body: %w", err)
	}
	return body, resp.StatusCode, nil
}

func coerceString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
