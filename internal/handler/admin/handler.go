package admin

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/symptomsync/healthai/backend/internal/model/admin"
	"github.com/symptomsync/healthai/backend/pkg/utils"
)

// Handler serves the admin panel data and the pricing plans.
type Handler struct {
	store admin.Store
}

// New creates an admin handler.
func New(store admin.Store) *Handler {
	return &Handler{store: store}
}

// RegisterPublicRoutes mounts the pricing routes.
func (h *Handler) RegisterPublicRoutes(r chi.Router) {
	r.Get("/plans", h.handleListPlans)
	r.Get("/plans/{planID}", h.handleGetPlan)
}

// RegisterRoutes mounts the admin panel routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/dashboard", h.handleDashboard)
	r.Get("/users", h.handleUsers)
	r.Get("/subscriptions", h.handleSubscriptions)
	r.Get("/settings", h.handleGetSettings)
	r.Put("/settings", h.handleUpdateSettings)
}

type planResponse struct {
	admin.Plan
	YearlySavings int `json:"yearlySavings"`
}

func newPlanResponse(p admin.Plan) planResponse {
	return planResponse{Plan: p, YearlySavings: p.YearlySavings()}
}

func (h *Handler) handleListPlans(w http.ResponseWriter, r *http.Request) {
	plans := h.store.Dataset().Plans
	out := make([]planResponse, 0, len(plans))
	for _, p := range plans {
		out = append(out, newPlanResponse(p))
	}
	utils.RespondJSON(w, http.StatusOK, out)
}

func (h *Handler) handleGetPlan(w http.ResponseWriter, r *http.Request) {
	plan, ok := h.store.FindPlan(chi.URLParam(r, "planID"))
	if !ok {
		utils.RespondError(w, http.StatusNotFound, "plan not found")
		return
	}
	utils.RespondJSON(w, http.StatusOK, newPlanResponse(plan))
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	data := h.store.Dataset()
	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"stats":          data.DashboardStats,
		"recentActivity": data.RecentActivity,
	})
}

func (h *Handler) handleUsers(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"stats": h.store.Dataset().UserStats,
	})
}

func (h *Handler) handleSubscriptions(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"stats":         h.store.Dataset().SubscriptionStats,
		"subscriptions": h.store.SubscriptionsByStatus(r.URL.Query().Get("status")),
	})
}

func (h *Handler) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.store.Settings())
}

func (h *Handler) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var payload admin.Settings
	if err := utils.DecodeJSON(r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	utils.RespondJSON(w, http.StatusOK, h.store.UpdateSettings(payload))
}
