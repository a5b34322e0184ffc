package delivery

import (
	"errors"
	"net/http"

	"reminders-backend/internal/reminder/domain"
	"reminders-backend/internal/reminder/usecase"
	"reminders-backend/pkg/googleauth"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ReminderHandler handles reminder dispatch HTTP requests
type ReminderHandler struct {
	reminderUsecase usecase.ReminderUsecase
	log             *zap.Logger
}

// NewReminderHandler creates a new ReminderHandler
func NewReminderHandler(reminderUsecase usecase.ReminderUsecase, log *zap.Logger) *ReminderHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &ReminderHandler{
		reminderUsecase: reminderUsecase,
		log:             log,
	}
}

// SendReminders runs one dispatch invocation
// ANY /send_reminders?kind=consumo|mood&slot=morning|afternoon|evening
func (h *ReminderHandler) SendReminders(c *gin.Context) {
	req, err := domain.ParseRequest(c.Query("kind"), c.Query("slot"))
	if err != nil {
		status, text := errorResponse(err)
		c.String(status, text)
		return
	}

	summary, err := h.reminderUsecase.Run(c.Request.Context(), req)
	if err != nil {
		status, text := errorResponse(err)
		h.log.Error("send reminders failed", zap.String("request", req.String()), zap.Error(err))
		c.String(status, text)
		return
	}

	c.Header("X-Run-Id", summary.RunID)
	c.String(http.StatusOK, "ok")
}

func errorResponse(err error) (int, string) {
	var credErr *googleauth.CredentialError
	switch {
	case errors.Is(err, domain.ErrInvalidKind):
		return http.StatusBadRequest, "invalid kind"
	case errors.Is(err, domain.ErrInvalidSlot):
		return http.StatusBadRequest, "invalid slot"
	case errors.Is(err, usecase.ErrUserFetch), errors.Is(err, usecase.ErrRecordLookup):
		return http.StatusInternalServerError, "db error"
	case errors.As(err, &credErr):
		return http.StatusInternalServerError, "credential error"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}
