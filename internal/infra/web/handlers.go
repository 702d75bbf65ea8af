package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"activation-service/internal/domain"
	"activation-service/internal/domain/model"
	"activation-service/internal/usecase"
)

// A struct to define the expected JSON request body for issuing a code.
// An empty code asks the server to generate one.
type addCodeRequest struct {
	Code     string `json:"code"`
	CodeType string `json:"code_type"`
}

func addCodeHandler(codeUC usecase.CodeUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req addCodeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if req.CodeType == "" {
			req.CodeType = string(model.TierForever)
		}

		code, err := codeUC.Issue(r.Context(), strings.TrimSpace(req.Code), req.CodeType, time.Now())
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrInvalidTier):
				http.Error(w, "Invalid code type", http.StatusBadRequest)
			case errors.Is(err, domain.ErrCodeTooShort):
				http.Error(w, "Code too short", http.StatusBadRequest)
			case errors.Is(err, domain.ErrCodeAlreadyExists):
				http.Error(w, "Code already exists", http.StatusConflict)
			default:
				http.Error(w, "Failed to issue code", http.StatusInternalServerError)
			}
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status":     "success",
			"code":       code.Value,
			"code_type":  code.Tier,
			"expires_at": code.ExpiresAt,
		})
	}
}

type codeItem struct {
	Code    string     `json:"code"`
	Type    model.Tier `json:"type"`
	Created time.Time  `json:"created"`
	Expires *time.Time `json:"expires"`
	Used    bool       `json:"used"`
}

func listCodesHandler(codeUC usecase.CodeUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		codes, err := codeUC.List(r.Context())
		if err != nil {
			http.Error(w, "Failed to list codes", http.StatusInternalServerError)
			return
		}

		items := make([]codeItem, 0, len(codes))
		for _, c := range codes {
			items = append(items, codeItem{
				Code:    c.Value,
				Type:    c.Tier,
				Created: c.CreatedAt,
				Expires: c.ExpiresAt,
				Used:    c.Consumed,
			})
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status": "success",
			"codes":  items,
		})
	}
}

// userItem deliberately omits the credential digest.
type userItem struct {
	ID          string     `json:"id"`
	Username    string     `json:"username"`
	CreatedAt   time.Time  `json:"created_at"`
	LastLoginAt *time.Time `json:"last_login_at"`
}

// listUsersHandler returns a paginated user list.
// It accepts 'offset' and 'limit' query parameters.
func listUsersHandler(accountUC usecase.AccountUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		if limit <= 0 {
			limit = 50 // Default page size
		}
		if offset < 0 {
			offset = 0
		}

		users, err := accountUC.ListUsers(r.Context(), offset, limit)
		if err != nil {
			http.Error(w, "Failed to list users", http.StatusInternalServerError)
			return
		}
		total, err := accountUC.CountUsers(r.Context())
		if err != nil {
			http.Error(w, "Failed to count users", http.StatusInternalServerError)
			return
		}

		items := make([]userItem, 0, len(users))
		for _, u := range users {
			items = append(items, userItem{
				ID:          u.ID,
				Username:    u.Username,
				CreatedAt:   u.CreatedAt,
				LastLoginAt: u.LastLoginAt,
			})
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status": "success",
			"total":  total,
			"users":  items,
		})
	}
}
