package handlers

import (
	"net/http"

	"github.com/hediske/fitness-microservices-app/internal/auth/application"
	"github.com/hediske/fitness-microservices-app/internal/auth/domain"
	"github.com/hediske/fitness-microservices-app/internal/auth/transport/http/dto"
	"github.com/hediske/fitness-microservices-app/internal/auth/transport/http/response"
	"github.com/hediske/fitness-microservices-app/internal/platform/logger"
)

type AuthHandler struct {
	svc *application.Service
}

func NewAuthHandler(svc *application.Service) *AuthHandler {
	return &AuthHandler{svc: svc}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}
	if err := dto.Validate(req); err != nil {
		response.WriteError(w, r, err)
		return
	}

	res, err := h.svc.Register(r.Context(), application.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Profile: domain.Profile{
			FirstName:    req.FirstName,
			LastName:     req.LastName,
			Gender:       req.Gender,
			BirthDate:    req.BirthDate,
			HeightCM:     req.Height,
			WeightKG:     req.Weight,
			FitnessLevel: req.FitnessLevel,
		},
	})
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	logger.Ctx(r.Context()).Info().
		Str("user_id", res.UserID).
		Str("email", res.Email).
		Msg("user_registered")

	response.WriteJSON(w, http.StatusOK, dto.RegisterResponse{
		Message:  res.Message,
		UserID:   res.UserID,
		Email:    res.Email,
		Username: res.Username,
	})
}

func (h *AuthHandler) Authenticate(w http.ResponseWriter, r *http.Request) {
	var req dto.AuthenticationRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}
	if err := dto.Validate(req); err != nil {
		response.WriteError(w, r, err)
		return
	}

	toks, err := h.svc.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, dto.AuthenticationResponse{
		Token:        toks.AccessToken,
		RefreshToken: toks.RefreshToken,
	})
}

func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req dto.TokenRefreshRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}
	if err := dto.Validate(req); err != nil {
		response.WriteError(w, r, err)
		return
	}

	toks, err := h.svc.RefreshToken(r.Context(), req.RefreshToken)
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, dto.AuthenticationResponse{
		Token:        toks.AccessToken,
		RefreshToken: toks.RefreshToken,
	})
}

// Introspect always answers 200. A malformed body is just an inactive token:
// this endpoint backs the gateway's hot path and must never fail loudly.
func (h *AuthHandler) Introspect(w http.ResponseWriter, r *http.Request) {
	var req dto.TokenIntrospectionRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.WriteJSON(w, http.StatusOK, dto.TokenIntrospectionResponse{Active: false})
		return
	}

	res := h.svc.Introspect(r.Context(), req.Token)
	response.WriteJSON(w, http.StatusOK, dto.TokenIntrospectionResponse{
		Active: res.Active,
		Email:  res.Email,
		Role:   res.Role,
	})
}

func (h *AuthHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")

	if err := h.svc.VerifyEmail(r.Context(), token); err != nil {
		response.WriteError(w, r, err)
		return
	}

	response.WriteText(w, http.StatusOK, "Email verified successfully")
}

func (h *AuthHandler) ResendVerification(w http.ResponseWriter, r *http.Request) {
	var req dto.EmailRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}
	if err := dto.Validate(req); err != nil {
		response.WriteError(w, r, err)
		return
	}

	if err := h.svc.ResendVerification(r.Context(), req.Email); err != nil {
		response.WriteError(w, r, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, dto.MessageResponse{
		Message: "Verification email resent successfully",
	})
}

func (h *AuthHandler) InitiatePasswordReset(w http.ResponseWriter, r *http.Request) {
	var req dto.EmailRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}
	if err := dto.Validate(req); err != nil {
		response.WriteError(w, r, err)
		return
	}

	if err := h.svc.InitiatePasswordReset(r.Context(), req.Email); err != nil {
		response.WriteError(w, r, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, dto.MessageResponse{
		Message: "Password reset link has been sent to your email",
	})
}

func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req dto.PasswordResetRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}
	if err := dto.Validate(req); err != nil {
		response.WriteError(w, r, err)
		return
	}
	if req.NewPassword != req.ConfirmPassword {
		response.WriteError(w, r, domain.ErrPasswordMismatch())
		return
	}

	if err := h.svc.ResetPassword(r.Context(), req.Token, req.NewPassword); err != nil {
		response.WriteError(w, r, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, dto.MessageResponse{
		Message: "Password has been reset successfully",
	})
}
