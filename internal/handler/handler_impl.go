// Package handler provides HTTP request handlers for the application.
package handler

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/render"
	"go.uber.org/zap"

	"github.com/ppopeskul/wa-inbox/internal/api"
	"github.com/ppopeskul/wa-inbox/internal/middleware"
	"github.com/ppopeskul/wa-inbox/internal/service"
)

const maxBodyBytes = 1 << 20

const (
	errorMessageInvalidBody         = "Request body must be a JSON object"
	errorMessageBodyTooLarge        = "Request body is too large"
	errorMessageFailedToProcessHook = "Failed to process webhook"
	errorMessageFailedToSendMessage = "Failed to send message"
	errorMessageFailedToGetChats    = "Failed to retrieve chats"
	errorMessageFailedToGetMessages = "Failed to retrieve messages"
	errorMessageFailedToSignup      = "Failed to register user"
	errorMessageFailedToLogin       = "Failed to log in"
	errorMessageStatusUpdateFailed  = "Failed to apply status update"
	webhookMessageNothingToProcess  = "No messages or statuses found in payload"
)

type Handler struct {
	service *service.Service
	logger  *zap.Logger
}

var _ api.ServerInterface = (*Handler)(nil)

// NewHandler creates a new handler instance that implements api.ServerInterface.
func NewHandler(service *service.Service, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// ProcessWebhook implements api.ServerInterface.
func (h *Handler) ProcessWebhook(w http.ResponseWriter, r *http.Request) {
	body, ok := h.readBody(w, r)
	if !ok {
		return
	}

	result, err := h.service.Message.ProcessWebhook(r.Context(), body)
	if err != nil {
		h.handleServiceError(w, r, err, errorMessageFailedToProcessHook)
		return
	}

	switch result.Kind {
	case service.WebhookKindMessages:
		render.Status(r, http.StatusCreated)
		render.JSON(w, r, api.WebhookCreatedResponse{
			Inserted: len(result.Created),
			Created:  toAPIMessages(result.Created),
		})
	case service.WebhookKindStatuses:
		details := toAPIStatusOutcomes(result.Statuses)
		updated := 0
		for _, d := range details {
			if d.Updated {
				updated++
			}
		}
		render.JSON(w, r, api.WebhookStatusResponse{
			Updated: updated,
			Details: details,
		})
	default:
		render.JSON(w, r, api.WebhookNoopResponse{Message: webhookMessageNothingToProcess})
	}
}

// SendMessage implements api.ServerInterface.
func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	var req api.SendMessageRequest
	if !h.decode(w, r, &req) {
		return
	}

	msg, err := h.service.Message.SendMessage(r.Context(), service.SendMessageInput{
		ContactID: req.ContactId,
		Name:      req.Name,
		Number:    req.Number,
		Text:      req.Text,
	})
	if err != nil {
		h.handleServiceError(w, r, err, errorMessageFailedToSendMessage)
		return
	}

	if claims := middleware.GetClaims(r.Context()); claims != nil {
		h.logger.Info("Message sent",
			zap.String("request_id", middleware.GetRequestID(r.Context())),
			zap.Int64("user_id", claims.UserID),
			zap.String("contact_id", msg.ContactID),
			zap.Int64("message_id", msg.ID))
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, toAPIMessage(msg))
}

// GetChats implements api.ServerInterface.
func (h *Handler) GetChats(w http.ResponseWriter, r *http.Request) {
	chats, err := h.service.Message.GetChats(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err, errorMessageFailedToGetChats)
		return
	}

	render.JSON(w, r, toAPIChats(chats))
}

// GetChatMessages implements api.ServerInterface.
func (h *Handler) GetChatMessages(w http.ResponseWriter, r *http.Request, contactId string) {
	messages, err := h.service.Message.GetMessages(r.Context(), contactId)
	if err != nil {
		h.handleServiceError(w, r, err, errorMessageFailedToGetMessages)
		return
	}

	render.JSON(w, r, toAPIMessages(messages))
}

// Signup implements api.ServerInterface.
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req api.SignupRequest
	if !h.decode(w, r, &req) {
		return
	}

	result, err := h.service.Auth.Signup(r.Context(), service.SignupInput{
		Name:     req.Name,
		Mobile:   req.Mobile,
		Password: req.Password,
	})
	if err != nil {
		h.handleServiceError(w, r, err, errorMessageFailedToSignup)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, toAPIAuth(result))
}

// Login implements api.ServerInterface.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req api.LoginRequest
	if !h.decode(w, r, &req) {
		return
	}

	result, err := h.service.Auth.Login(r.Context(), service.LoginInput{
		Mobile:   req.Mobile,
		Password: req.Password,
	})
	if err != nil {
		h.handleServiceError(w, r, err, errorMessageFailedToLogin)
		return
	}

	render.JSON(w, r, toAPIAuth(result))
}

// HealthCheck implements api.ServerInterface.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	health := h.service.Health.GetHealth(r.Context())

	response := api.HealthResponse{
		Status:    health.Status,
		Timestamp: time.Now(),
	}

	if health.DatabaseStatus != "" {
		status := health.DatabaseStatus
		response.DatabaseStatus = &status
	}

	if health.RedisStatus != "" {
		status := health.RedisStatus
		response.RedisStatus = &status
	}

	if health.CacheBreakerState != "" {
		state := health.CacheBreakerState
		response.CacheBreakerState = &state
	}

	// Degraded still answers 200 so the service stays in rotation.
	if health.Status == api.Unhealthy {
		render.Status(r, http.StatusServiceUnavailable)
	}

	render.JSON(w, r, response)
}

// ParamError is used as the generated router's ErrorHandlerFunc.
func (h *Handler) ParamError(w http.ResponseWriter, r *http.Request, err error) {
	h.sendError(w, r, http.StatusBadRequest, middleware.ErrorCodeValidation, err.Error())
}

func (h *Handler) readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.sendError(w, r, http.StatusRequestEntityTooLarge, middleware.ErrorCodeValidation, errorMessageBodyTooLarge)
			return nil, false
		}
		h.sendError(w, r, http.StatusBadRequest, middleware.ErrorCodeValidation, errorMessageInvalidBody)
		return nil, false
	}
	return body, true
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := render.DecodeJSON(http.MaxBytesReader(w, r.Body, maxBodyBytes), v); err != nil {
		h.sendError(w, r, http.StatusBadRequest, middleware.ErrorCodeValidation, errorMessageInvalidBody)
		return false
	}
	return true
}

// handleServiceError maps service errors onto HTTP responses. Anything
// unrecognised is logged and reported as an internal error with fallback.
func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrValidation):
		h.sendError(w, r, http.StatusBadRequest, middleware.ErrorCodeValidation, err.Error())
	case errors.Is(err, service.ErrMobileTaken):
		h.sendError(w, r, http.StatusConflict, middleware.ErrorCodeConflict, service.ErrMobileTaken.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		h.sendError(w, r, http.StatusUnauthorized, middleware.ErrorCodeUnauthorized, service.ErrInvalidCredentials.Error())
	default:
		h.logger.Error(fallback,
			zap.String("request_id", middleware.GetRequestID(r.Context())),
			zap.String("path", r.URL.Path),
			zap.Error(err))
		h.sendError(w, r, http.StatusInternalServerError, middleware.ErrorCodeInternal, fallback)
	}
}

func (h *Handler) sendError(w http.ResponseWriter, r *http.Request, statusCode int, errorCode, message string) {
	render.Status(r, statusCode)
	render.JSON(w, r, api.ErrorResponse{
		Error:   errorCode,
		Message: message,
		Timestamp: func() *time.Time {
			t := time.Now()
			return &t
		}(),
	})
}
