package gomind

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, 5*time.Second, nil)
}

func TestRequestVerificationCode(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/auth/login/user-exist", r.URL.Path)
		var payload map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		require.Equal(t, "user@x.com", payload["email"])
		_ = json.NewEncoder(w).Encode(map[string]any{"user_exist": true})
	})

	require.NoError(t, client.RequestVerificationCode(context.Background(), "user@x.com"))
}

func TestRequestVerificationCodeUnknownUser(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"user_exist": false, "message": "No encontramos tu correo"})
	})

	err := client.RequestVerificationCode(context.Background(), "missing@x.com")
	var notFound *UserNotFoundError
	require.ErrorAs(t, err, &notFound)
	require.Equal(t, "No encontramos tu correo", notFound.Message)
}

func TestRequestVerificationCodeServerError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	err := client.RequestVerificationCode(context.Background(), "user@x.com")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
}

func TestAuthenticateWithCode(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/auth/login/wsp", r.URL.Path)
		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		require.Equal(t, float64(123456), payload["auth_code"])
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"token":   "tok-abc",
			"company": map[string]any{"company_id": 9},
			"user":    map[string]any{"user_id": 42, "name": "Ana"},
		})
	})

	auth, err := client.AuthenticateWithCode(context.Background(), "user@x.com", "123456")
	require.NoError(t, err)
	require.Equal(t, "tok-abc", auth.Token)
	require.Equal(t, 9, auth.CompanyID)
	require.Equal(t, "42", auth.UserID)
	require.Equal(t, "Ana", auth.UserName)
}

func TestAuthenticateWithCodeRejected(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "message": "código incorrecto"})
	})

	_, err := client.AuthenticateWithCode(context.Background(), "user@x.com", "000000")
	var invalid *InvalidCodeError
	require.ErrorAs(t, err, &invalid)
}

func TestAuthenticateWithCodeIncompletePayload(t *testing.T) {
	cases := []struct {
		name string
		body map[string]any
	}{
		{"missing token", map[string]any{"success": true, "company": map[string]any{"company_id": 9}, "user": map[string]any{"user_id": 42}}},
		{"missing company", map[string]any{"success": true, "token": "tok", "user": map[string]any{"user_id": 42}}},
		{"missing user", map[string]any{"success": true, "token": "tok", "company": map[string]any{"company_id": 9}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				_ = json.NewEncoder(w).Encode(tc.body)
			})

			_, err := client.AuthenticateWithCode(context.Background(), "user@x.com", "123456")
			var invalid *InvalidCodeError
			require.ErrorAs(t, err, &invalid)
		})
	}
}

func TestAuthenticateWithCodeNonNumeric(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("request should not reach the backend")
	})

	_, err := client.AuthenticateWithCode(context.Background(), "user@x.com", "abc")
	require.Error(t, err)
}

func TestFetchResultsList(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/parameters/results-user", r.URL.Path)
		require.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode([]map[string]any{
			{"analysis_results": "VALOR Glicemia Basal.", "value": 90},
			{"analysis_results": "VALOR Hemoglobina.", "value": 12},
			{"analysis_results": "VALOR Glicemia Basal. repetido", "value": 95},
		})
	})

	results, err := client.FetchResults(context.Background(), "tok")
	require.NoError(t, err)
	// Later duplicates win.
	require.Equal(t, map[string]float64{"Glicemia Basal": 95, "Hemoglobina": 12}, results)
}

func TestFetchResultsEmptyList(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]any{})
	})

	_, err := client.FetchResults(context.Background(), "tok")
	require.True(t, errors.Is(err, ErrNoResults))
}

func TestFetchResultsObjectPassthrough(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]float64{"Glicemia Basal": 88})
	})

	results, err := client.FetchResults(context.Background(), "tok")
	require.NoError(t, err)
	require.Equal(t, map[string]float64{"Glicemia Basal": 88}, results)
}

func TestFetchProductsAndProviders(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/companies/9/products":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"products": []map[string]any{{"name": "Chequeo Preventivo", "price": 25000}},
			})
		case "/api/companies/9/health-providers":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"healthProviders": []map[string]any{{"name": "Clinic X", "health_provider_id": 7}},
			})
		default:
			http.NotFound(w, r)
		}
	})

	products, err := client.FetchProducts(context.Background(), 9, "tok")
	require.NoError(t, err)
	require.Len(t, products, 1)
	require.Equal(t, "Chequeo Preventivo", products[0].Name)

	clinics, err := client.FetchProviders(context.Background(), 9, "tok")
	require.NoError(t, err)
	require.Len(t, clinics, 1)
	require.Equal(t, 7, clinics[0].HealthProviderID)
}

func TestSubmitAppointmentReturnsStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/appointments", r.URL.Path)
		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		require.Equal(t, float64(2), payload["product_id"])
		w.WriteHeader(http.StatusCreated)
	})

	status, err := client.SubmitAppointment(context.Background(), AppointmentRequest{
		UserID:           json.Number("42"),
		ProductID:        2,
		HealthProviderID: 7,
		DateTime:         "2026-01-05T10:00:00.000Z",
	}, "tok")
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, status)
}

func TestSubmitAppointmentRequiresToken(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("request should not reach the backend")
	})

	_, err := client.SubmitAppointment(context.Background(), AppointmentRequest{}, "")
	require.Error(t, err)
}
