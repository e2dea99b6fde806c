package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/recipebook-backend/internal/http/response"
	"github.com/yungbote/recipebook-backend/internal/pkg/dbctx"
)

func requestDBC(c *gin.Context) dbctx.Context {
	return dbctx.New(c.Request.Context())
}

// bindJSON decodes the request body into dst and writes the error response
// itself when decoding fails.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			response.RespondError(c, http.StatusRequestEntityTooLarge, "payload_too_large", errors.New("request body too large"))
			return false
		}
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return false
	}
	return true
}

func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_id", fmt.Errorf("%s must be a UUID", name))
		return uuid.Nil, false
	}
	return id, true
}
