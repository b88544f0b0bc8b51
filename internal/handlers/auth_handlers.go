package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"fieldops/internal/auth"
	"fieldops/internal/handlers/dto"
	"fieldops/internal/logger"

	"go.uber.org/zap"
)

type AuthHandler struct {
	AuthService AuthService
	TokenTTL    time.Duration
}

func NewAuthHandler(authService AuthService, tokenTTL time.Duration) AuthHandler {
	return AuthHandler{
		AuthService: authService,
		TokenTTL:    tokenTTL,
	}
}

func (h *AuthHandler) PostLogin(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	if !checkContentType(r, "application/json") {
		responseWithError(w, http.StatusUnsupportedMediaType, "Content-Type должен быть application/json")
		return
	}

	var request dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		logger.Warn("HTTP: ошибка чтения JSON",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusBadRequest, "неверное тело запроса: "+err.Error())
		return
	}

	if err := validate.Struct(request); err != nil {
		responseWithError(w, http.StatusBadRequest, "логин и пароль обязательны")
		return
	}

	token, role, err := h.AuthService.Login(r.Context(), request.Username, request.Password)
	if err != nil {
		if handleBusinessError(w, err, "вход") {
			return
		}
		logger.Error("HTTP: Ошибка Service", err,
			zap.String("operation", "login"))

		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(h.TokenTTL),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	logger.Info("HTTP_OUT: Вход выполнен",
		zap.String("username", request.Username),
		zap.Duration("ms", time.Since(start)))

	responseWithSuccess(w, http.StatusOK, toPayload("role", role))
}

func (h *AuthHandler) PostLogout(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})

	responseWithSuccess(w, http.StatusOK)
}
