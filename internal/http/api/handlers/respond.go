package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/router-for-me/AppSubscriptions/internal/apperr"
	log "github.com/sirupsen/logrus"
)

// ContextUserIDKey is the gin context key holding the authenticated user ID.
const ContextUserIDKey = "userID"

// getUserID returns the authenticated user ID, or 0 when unauthenticated.
func getUserID(c *gin.Context) uint64 {
	value, ok := c.Get(ContextUserIDKey)
	if !ok {
		return 0
	}
	id, _ := value.(uint64)
	return id
}

// requireUserID writes a permission error and returns false when the request
// is unauthenticated.
func requireUserID(c *gin.Context) (uint64, bool) {
	userID := getUserID(c)
	if userID == 0 {
		WriteError(c, apperr.Permission("Authentication credentials were not provided."))
		return 0, false
	}
	return userID, true
}

// WriteError renders err using its application kind. Unclassified errors are
// logged and hidden behind a generic message.
func WriteError(c *gin.Context, err error) {
	_ = c.Error(err)
	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.Kind == apperr.KindInternal {
		log.WithError(err).WithFields(log.Fields{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
		}).Error("api: request failed")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	body := gin.H{"error": appErr.Message}
	if len(appErr.Fields) > 0 {
		body["fields"] = appErr.Fields
	}
	c.AbortWithStatusJSON(apperr.HTTPStatus(appErr), body)
}

// bindJSON decodes the request body into dst. An empty body leaves dst at its
// zero value so required-field checks report the missing fields.
func bindJSON(c *gin.Context, dst any) error {
	errBind := c.ShouldBindJSON(dst)
	if errBind == nil || errors.Is(errBind, io.EOF) {
		return nil
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(errBind, &typeErr) && typeErr.Field != "" {
		return apperr.FieldError(typeErr.Field, "Incorrect type.")
	}
	return &apperr.Error{Kind: apperr.KindValidation, Message: "invalid json", Err: errBind}
}

// parseID reads a positive integer path parameter. Anything else is reported
// as not found.
func parseID(c *gin.Context, name string) (uint64, error) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param(name)), 10, 64)
	if errParse != nil || id == 0 {
		return 0, apperr.NotFound("not found")
	}
	return id, nil
}

func okMessage(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "ok"})
}
