package handler

import (
	"gigmatch/internal/apperr"

	"github.com/gin-gonic/gin"
)

// fail maps a service error onto the wire: stable machine code, message,
// and the quota reset time when present.
func fail(c *gin.Context, err error) {
	e := apperr.From(err)
	body := gin.H{"error": e.Code, "message": e.Message}
	if e.ResetAt != nil {
		body["reset_at"] = e.ResetAt
	}
	c.JSON(apperr.HTTPStatus(err), body)
}
