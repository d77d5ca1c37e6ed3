package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/router-for-me/AppSubscriptions/internal/models"
	"github.com/router-for-me/AppSubscriptions/internal/resource"
	"github.com/router-for-me/AppSubscriptions/internal/store"
)

// AppHandler serves the owner-scoped app endpoints.
type AppHandler struct {
	apps store.AppStore // App repository.
}

// NewAppHandler constructs an AppHandler.
func NewAppHandler(apps store.AppStore) *AppHandler {
	return &AppHandler{apps: apps}
}

// Create validates input and inserts an app owned by the caller.
func (h *AppHandler) Create(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var body resource.AppInput
	if errBind := bindJSON(c, &body); errBind != nil {
		WriteError(c, errBind)
		return
	}
	validate, errLookup := resource.AppValidator(resource.ActionCreate)
	if errLookup != nil {
		WriteError(c, errLookup)
		return
	}
	var app models.App
	if errValidate := validate(body, &app); errValidate != nil {
		WriteError(c, errValidate)
		return
	}
	app.UserID = userID

	if errCreate := h.apps.Create(c.Request.Context(), &app); errCreate != nil {
		WriteError(c, errCreate)
		return
	}
	c.JSON(http.StatusCreated, resource.NewAppOutput(&app))
}

// List returns the caller's apps.
func (h *AppHandler) List(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	apps, errList := h.apps.ListByUser(c.Request.Context(), userID)
	if errList != nil {
		WriteError(c, errList)
		return
	}
	c.JSON(http.StatusOK, resource.NewAppOutputs(apps))
}

// Get returns one of the caller's apps.
func (h *AppHandler) Get(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	id, errID := parseID(c, "id")
	if errID != nil {
		WriteError(c, errID)
		return
	}
	app, errGet := h.apps.Get(c.Request.Context(), id, userID)
	if errGet != nil {
		WriteError(c, errGet)
		return
	}
	c.JSON(http.StatusOK, resource.NewAppOutput(app))
}

// Update replaces the editable fields of one of the caller's apps.
func (h *AppHandler) Update(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	id, errID := parseID(c, "id")
	if errID != nil {
		WriteError(c, errID)
		return
	}
	var body resource.AppInput
	if errBind := bindJSON(c, &body); errBind != nil {
		WriteError(c, errBind)
		return
	}
	app, errGet := h.apps.Get(c.Request.Context(), id, userID)
	if errGet != nil {
		WriteError(c, errGet)
		return
	}
	validate, errLookup := resource.AppValidator(resource.ActionUpdate)
	if errLookup != nil {
		WriteError(c, errLookup)
		return
	}
	if errValidate := validate(body, app); errValidate != nil {
		WriteError(c, errValidate)
		return
	}
	updated, errUpdate := h.apps.Update(c.Request.Context(), app)
	if errUpdate != nil {
		WriteError(c, errUpdate)
		return
	}
	c.JSON(http.StatusOK, resource.NewAppOutput(updated))
}

// Delete removes one of the caller's apps together with its subscriptions.
func (h *AppHandler) Delete(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	id, errID := parseID(c, "id")
	if errID != nil {
		WriteError(c, errID)
		return
	}
	if errDelete := h.apps.Delete(c.Request.Context(), id, userID); errDelete != nil {
		WriteError(c, errDelete)
		return
	}
	okMessage(c)
}
