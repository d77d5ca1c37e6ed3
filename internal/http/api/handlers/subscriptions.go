package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/router-for-me/AppSubscriptions/internal/apperr"
	"github.com/router-for-me/AppSubscriptions/internal/models"
	"github.com/router-for-me/AppSubscriptions/internal/resource"
	"github.com/router-for-me/AppSubscriptions/internal/store"
)

// SubscriptionHandler serves the owner-scoped subscription endpoints.
type SubscriptionHandler struct {
	subscriptions store.SubscriptionStore // Subscription repository.
	apps          store.AppStore          // Used to check the referenced app belongs to the caller.
	plans         store.PlanStore         // Used to check the referenced plan exists.
}

// NewSubscriptionHandler constructs a SubscriptionHandler.
func NewSubscriptionHandler(subscriptions store.SubscriptionStore, apps store.AppStore, plans store.PlanStore) *SubscriptionHandler {
	return &SubscriptionHandler{subscriptions: subscriptions, apps: apps, plans: plans}
}

// Create subscribes one of the caller's apps to a plan.
func (h *SubscriptionHandler) Create(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var body resource.SubscriptionInput
	if errBind := bindJSON(c, &body); errBind != nil {
		WriteError(c, errBind)
		return
	}
	validate, errLookup := resource.SubscriptionValidator(resource.ActionCreate)
	if errLookup != nil {
		WriteError(c, errLookup)
		return
	}
	var sub models.Subscription
	if errValidate := validate(body, &sub); errValidate != nil {
		WriteError(c, errValidate)
		return
	}
	sub.UserID = userID

	ctx := c.Request.Context()
	if errRefs := h.checkReferences(ctx, &sub); errRefs != nil {
		WriteError(c, errRefs)
		return
	}
	if errCreate := h.subscriptions.Create(ctx, &sub); errCreate != nil {
		WriteError(c, errCreate)
		return
	}
	c.JSON(http.StatusCreated, resource.NewSubscriptionOutput(&sub))
}

// List returns the caller's subscriptions.
func (h *SubscriptionHandler) List(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	subs, errList := h.subscriptions.ListByUser(c.Request.Context(), userID)
	if errList != nil {
		WriteError(c, errList)
		return
	}
	c.JSON(http.StatusOK, resource.NewSubscriptionOutputs(subs))
}

// GetByApp returns the subscription of the app named by the id path parameter.
func (h *SubscriptionHandler) GetByApp(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	appID, errID := parseID(c, "id")
	if errID != nil {
		WriteError(c, errID)
		return
	}
	sub, errGet := h.subscriptions.GetByApp(c.Request.Context(), appID, userID)
	if errGet != nil {
		WriteError(c, errGet)
		return
	}
	c.JSON(http.StatusOK, resource.NewSubscriptionOutput(sub))
}

// Update replaces plan, app and active of a subscription.
func (h *SubscriptionHandler) Update(c *gin.Context) {
	h.update(c, resource.ActionUpdate)
}

// PartialUpdate merges the supplied fields over a subscription.
func (h *SubscriptionHandler) PartialUpdate(c *gin.Context) {
	h.update(c, resource.ActionPartialUpdate)
}

func (h *SubscriptionHandler) update(c *gin.Context, action resource.Action) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	id, errID := parseID(c, "id")
	if errID != nil {
		WriteError(c, errID)
		return
	}
	var body resource.SubscriptionInput
	if errBind := bindJSON(c, &body); errBind != nil {
		WriteError(c, errBind)
		return
	}

	ctx := c.Request.Context()
	sub, errGet := h.subscriptions.Get(ctx, id, userID)
	if errGet != nil {
		WriteError(c, errGet)
		return
	}
	validate, errLookup := resource.SubscriptionValidator(action)
	if errLookup != nil {
		WriteError(c, errLookup)
		return
	}
	if errValidate := validate(body, sub); errValidate != nil {
		WriteError(c, errValidate)
		return
	}
	if errRefs := h.checkReferences(ctx, sub); errRefs != nil {
		WriteError(c, errRefs)
		return
	}
	updated, errUpdate := h.subscriptions.Update(ctx, sub)
	if errUpdate != nil {
		WriteError(c, errUpdate)
		return
	}
	c.JSON(http.StatusOK, resource.NewSubscriptionOutput(updated))
}

// checkReferences requires an existing plan and an app owned by sub.UserID.
func (h *SubscriptionHandler) checkReferences(ctx context.Context, sub *models.Subscription) error {
	fields := make(map[string][]string)

	exists, errPlan := h.plans.Exists(ctx, sub.PlanID)
	if errPlan != nil {
		return errPlan
	}
	if !exists {
		fields["plan"] = []string{invalidPK(sub.PlanID)}
	}

	if _, errApp := h.apps.Get(ctx, sub.AppID, sub.UserID); errApp != nil {
		if !apperr.Is(errApp, apperr.KindNotFound) {
			return errApp
		}
		fields["app"] = []string{invalidPK(sub.AppID)}
	}

	if len(fields) > 0 {
		return apperr.Validation(fields)
	}
	return nil
}

func invalidPK(id uint64) string {
	return fmt.Sprintf(`Invalid pk "%d" - object does not exist.`, id)
}
