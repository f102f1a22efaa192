package chat

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	modelauth "github.com/symptomsync/healthai/backend/internal/model/auth"
	"github.com/symptomsync/healthai/backend/internal/model/chat"
	chatService "github.com/symptomsync/healthai/backend/internal/service/chat"
	"github.com/symptomsync/healthai/backend/pkg/utils"
)

// PricingRoute 免费额度用尽后的跳转页面
const PricingRoute = "/pricing"

// Handler 聊天服务的HTTP处理器
type Handler struct {
	chatSvc *chatService.Service
}

// New 创建聊天处理器
func New(chatSvc *chatService.Service) *Handler {
	return &Handler{chatSvc: chatSvc}
}

// RegisterRoutes 注册聊天相关的路由，请求上下文中需要已登录的用户
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.handleGetConversation)
	r.Delete("/", h.handleClearConversation)
	r.Post("/messages", h.handleSendMessage)
	r.Post("/upgrade/dismiss", h.handleDismissUpgrade)
}

type conversationResponse struct {
	Turns  []chat.Turn `json:"turns"`
	Status chat.Status `json:"status"`
}

func (h *Handler) handleGetConversation(w http.ResponseWriter, r *http.Request) {
	page, ok := h.openPage(w, r)
	if !ok {
		return
	}

	turns := page.Turns()
	if turns == nil {
		turns = []chat.Turn{}
	}
	utils.RespondJSON(w, http.StatusOK, conversationResponse{Turns: turns, Status: page.Status()})
}

func (h *Handler) handleClearConversation(w http.ResponseWriter, r *http.Request) {
	page, ok := h.openPage(w, r)
	if !ok {
		return
	}

	if err := page.Clear(r.Context()); err != nil {
		slog.Error("failed to clear conversation", "component", "chat", "user", page.UserID(), "error", err)
		utils.RespondError(w, http.StatusInternalServerError, "failed to clear conversation")
		return
	}
	utils.RespondJSON(w, http.StatusOK, conversationResponse{Turns: []chat.Turn{}, Status: page.Status()})
}

func (h *Handler) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Message string `json:"message"`
	}
	if err := utils.DecodeJSON(r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	page, ok := h.openPage(w, r)
	if !ok {
		return
	}

	result, err := page.Send(r.Context(), payload.Message)
	if err != nil {
		respondSendError(w, r, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, result)
}

func (h *Handler) handleDismissUpgrade(w http.ResponseWriter, r *http.Request) {
	page, ok := h.openPage(w, r)
	if !ok {
		return
	}
	utils.RespondJSON(w, http.StatusOK, page.DismissUpgrade())
}

func (h *Handler) openPage(w http.ResponseWriter, r *http.Request) (*chatService.Page, bool) {
	principal, ok := modelauth.PrincipalFromContext(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "unauthenticated")
		return nil, false
	}

	page, err := h.chatSvc.Open(r.Context(), principal.User.ID)
	if err != nil {
		slog.Error("failed to open chat page", "component", "chat", "user", principal.User.ID, "error", err)
		utils.RespondError(w, http.StatusInternalServerError, "failed to load conversation")
		return nil, false
	}
	return page, true
}

func respondSendError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, chatService.ErrEmptyMessage):
		utils.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, chatService.ErrBusy):
		utils.RespondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, chatService.ErrQuotaExceeded):
		utils.RespondJSON(w, http.StatusPaymentRequired, utils.ErrorBody{
			Error:           err.Error(),
			Redirect:        PricingRoute,
			UpgradeRequired: true,
		})
	case errors.Is(err, chatService.ErrAIUnavailable):
		utils.RespondError(w, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, chatService.ErrAggregation):
		utils.RespondError(w, http.StatusBadGateway, chatService.ErrAggregation.Error())
	case errors.Is(err, chatService.ErrModel):
		utils.RespondError(w, http.StatusBadGateway, chatService.ErrModel.Error())
	default:
		slog.Error("send failed", "component", "chat", "request_id", middleware.GetReqID(r.Context()), "error", err)
		utils.RespondError(w, http.StatusInternalServerError, "failed to send message")
	}
}
