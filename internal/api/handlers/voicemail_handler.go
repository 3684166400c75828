package handlers

import (
	"errors"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/welldanyogia/webrana-voicemail-backend/internal/api/middleware"
	"github.com/welldanyogia/webrana-voicemail-backend/internal/api/response"
	apperrors "github.com/welldanyogia/webrana-voicemail-backend/internal/errors"
	"github.com/welldanyogia/webrana-voicemail-backend/internal/models"
	"github.com/welldanyogia/webrana-voicemail-backend/internal/phone"
	"github.com/welldanyogia/webrana-voicemail-backend/internal/services"
	"github.com/welldanyogia/webrana-voicemail-backend/internal/validator"
)

// VoicemailHandler handles voicemail-related HTTP requests.
// Every route acts on the account resolved by middleware.AccountIdentity.
type VoicemailHandler struct {
	service services.VoicemailService
}

// NewVoicemailHandler creates a new VoicemailHandler
func NewVoicemailHandler(service services.VoicemailService) *VoicemailHandler {
	return &VoicemailHandler{service: service}
}

// CreateVoicemailRequest represents the request body for logging a voicemail
type CreateVoicemailRequest struct {
	FromName       string `json:"from_name"`
	ToName         string `json:"to_name"`
	PhoneNumber    string `json:"phone_number"`
	MessageContent string `json:"message_content"`
	DateTime       string `json:"date_time"`
	TakenBy        string `json:"taken_by"`
}

// VoicemailResponse is a voicemail as shown to its owner
type VoicemailResponse struct {
	ID             string     `json:"id"`
	FromName       string     `json:"from_name"`
	ToName         string     `json:"to_name"`
	PhoneNumber    string     `json:"phone_number"`
	PhoneDisplay   string     `json:"phone_display"`
	MessageContent string     `json:"message_content"`
	DateTime       time.Time  `json:"date_time"`
	TakenBy        string     `json:"taken_by"`
	Returned       bool       `json:"returned"`
	ReturnedAt     *time.Time `json:"returned_at"`
	CreatedAt      time.Time  `json:"created_at"`
}

// CreatedResponse carries the ID of a new voicemail
type CreatedResponse struct {
	ID string `json:"id"`
}

func toVoicemailResponse(v models.Voicemail) VoicemailResponse {
	return VoicemailResponse{
		ID:             v.ID,
		FromName:       v.FromName,
		ToName:         v.ToName,
		PhoneNumber:    v.PhoneNumber,
		PhoneDisplay:   phone.Format(v.PhoneNumber),
		MessageContent: v.MessageContent,
		DateTime:       v.DateTime,
		TakenBy:        v.TakenBy,
		Returned:       v.Returned,
		ReturnedAt:     v.ReturnedAt,
		CreatedAt:      v.CreatedAt,
	}
}

// List handles GET /api/voicemails
func (h *VoicemailHandler) List(c echo.Context) error {
	voicemails, err := h.service.ListActive(c.Request().Context(), middleware.AccountID(c))
	if err != nil {
		return response.Error(c, err)
	}

	items := make([]VoicemailResponse, 0, len(voicemails))
	for _, v := range voicemails {
		items = append(items, toVoicemailResponse(v))
	}
	return response.Success(c, items)
}

// Create handles POST /api/voicemails
func (h *VoicemailHandler) Create(c echo.Context) error {
	var req CreateVoicemailRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	if req.DateTime == "" {
		return response.BadRequest(c, "date_time is required")
	}
	dateTime, err := validator.ParseDateTime(req.DateTime)
	if err != nil {
		return response.BadRequest(c, "date_time: "+err.Error())
	}

	input := models.VoicemailInput{
		FromName:       req.FromName,
		ToName:         req.ToName,
		PhoneNumber:    req.PhoneNumber,
		MessageContent: req.MessageContent,
		DateTime:       dateTime,
		TakenBy:        req.TakenBy,
	}

	id, err := h.service.Create(c.Request().Context(), middleware.AccountID(c), input, services.SourceAPI)
	if err != nil {
		var fieldErr *validator.FieldError
		if errors.As(err, &fieldErr) {
			return response.BadRequest(c, fieldErr.Error())
		}
		if errors.Is(err, apperrors.ErrConstraintViolation) {
			return response.Conflict(c, "account no longer exists")
		}
		return response.Error(c, err)
	}

	return response.Created(c, CreatedResponse{ID: id})
}

// Delete handles DELETE /api/voicemails/:id
func (h *VoicemailHandler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), middleware.AccountID(c), c.Param("id")); err != nil {
		return response.Error(c, err)
	}
	return response.NoContent(c)
}

// MarkReturned handles PATCH /api/voicemails/:id/returned
func (h *VoicemailHandler) MarkReturned(c echo.Context) error {
	if err := h.service.MarkReturned(c.Request().Context(), middleware.AccountID(c), c.Param("id")); err != nil {
		return response.Error(c, err)
	}
	return response.SuccessWithMessage(c, nil, "voicemail marked as returned")
}
