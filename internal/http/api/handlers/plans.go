package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/router-for-me/AppSubscriptions/internal/resource"
	"github.com/router-for-me/AppSubscriptions/internal/store"
)

// PlanHandler serves the public, read-only plan catalog.
type PlanHandler struct {
	plans store.PlanStore
}

// NewPlanHandler constructs a PlanHandler.
func NewPlanHandler(plans store.PlanStore) *PlanHandler {
	return &PlanHandler{plans: plans}
}

// List returns every plan.
func (h *PlanHandler) List(c *gin.Context) {
	plans, errList := h.plans.List(c.Request.Context())
	if errList != nil {
		WriteError(c, errList)
		return
	}
	c.JSON(http.StatusOK, resource.NewPlanOutputs(plans))
}

// Get fetches a plan by ID.
func (h *PlanHandler) Get(c *gin.Context) {
	id, errID := parseID(c, "id")
	if errID != nil {
		WriteError(c, errID)
		return
	}
	plan, errGet := h.plans.Get(c.Request.Context(), id)
	if errGet != nil {
		WriteError(c, errGet)
		return
	}
	c.JSON(http.StatusOK, resource.NewPlanOutput(plan))
}
