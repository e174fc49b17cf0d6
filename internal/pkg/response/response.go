package response

import (
	"errors"
	"net/http"

	"miru/internal/booking"
	"miru/internal/models"

	"github.com/gin-gonic/gin"
)

// Messages shown to API clients.
const (
	MsgFieldsRequired = "All fields are required."
	MsgNotFound       = "Booking not found."
	MsgInvalidBody    = "Invalid request body."
	MsgInternal       = "Internal server error."
)

// Envelope is the wrapper of every JSON answer of the booking API.
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// OK sends data with the given status.
func OK(c *gin.Context, status int, data any) {
	c.JSON(status, Envelope{Success: true, Data: data})
}

// Fail sends a failure envelope with an explicit message.
func Fail(c *gin.Context, status int, msg string) {
	c.JSON(status, Envelope{Success: false, Error: msg})
}

// Error maps err to a status and message. Unknown errors are attached to the
// gin context for the request logger and answered with 500.
func Error(c *gin.Context, err error) {
	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		msg := verr.Error()
		if verr.MissingRequired() {
			msg = MsgFieldsRequired
		}
		Fail(c, http.StatusBadRequest, msg)
	case errors.Is(err, booking.ErrNotFound):
		Fail(c, http.StatusNotFound, MsgNotFound)
	default:
		_ = c.Error(err)
		Fail(c, http.StatusInternalServerError, MsgInternal)
	}
}
