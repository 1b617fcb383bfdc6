package auth

import (
	"net/http"

	"argip-api/internal/apperr"
	"argip-api/internal/middleware"
)

type RegisterRequest struct {
	Username *string `json:"username" validate:"required,min=1,max=50"`
	Email    *string `json:"email" validate:"required,email,max=100"`
	Password *string `json:"password" validate:"required,min=1"`
}

type LoginRequest struct {
	Username *string `json:"username" validate:"required"`
	Password *string `json:"password" validate:"required"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

func RegisterHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RegisterRequest
		if err := middleware.DecodeJSON(r, &req); err != nil {
			middleware.ErrorResponse(w, r, err)
			return
		}

		user, err := svc.Register(r.Context(), *req.Username, *req.Email, *req.Password)
		if err != nil {
			middleware.ErrorResponse(w, r, err)
			return
		}
		middleware.JSONResponse(w, http.StatusCreated, user)
	}
}

func LoginHandler(svc *Service, tokens *TokenService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := middleware.DecodeJSON(r, &req); err != nil {
			middleware.ErrorResponse(w, r, err)
			return
		}

		user, err := svc.Verify(r.Context(), *req.Username, *req.Password)
		if err != nil {
			middleware.ErrorResponse(w, r, err)
			return
		}

		token, err := tokens.Issue(user.Username)
		if err != nil {
			middleware.ErrorResponse(w, r, err)
			return
		}
		middleware.JSONResponse(w, http.StatusOK, TokenResponse{AccessToken: token, TokenType: "bearer"})
	}
}

// MeHandler returns the authenticated user. It must sit behind JWTMiddleware.
func MeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFromContext(r.Context())
		if !ok {
			middleware.ErrorResponse(w, r, apperr.ErrUnauthenticated)
			return
		}
		middleware.JSONResponse(w, http.StatusOK, user)
	}
}
