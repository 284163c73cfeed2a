package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/pyq-ai/pyq-assistant/internal/account"
)

func (s *Server) handleListPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := s.accounts.Plans()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "plans unavailable")
		return
	}
	writeJSON(w, http.StatusOK, plans)
}

type subscriptionResponse struct {
	Subscription *account.Subscription `json:"subscription"`
	Active       bool                  `json:"active"`
}

func (s *Server) handleGetSubscription(w http.ResponseWriter, r *http.Request) {
	user, _ := userFrom(r.Context())

	sub, ok, err := s.accounts.ActiveSubscription(user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "subscription lookup failed")
		return
	}
	if !ok {
		writeJSON(w, http.StatusOK, subscriptionResponse{})
		return
	}
	writeJSON(w, http.StatusOK, subscriptionResponse{
		Subscription: &sub,
		Active:       sub.Active(time.Now()),
	})
}

type subscribeRequest struct {
	PlanID string `json:"plan_id"`
}

func (s *Server) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	user, _ := userFrom(r.Context())

	var req subscribeRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sub, err := s.accounts.Subscribe(user.ID, req.PlanID)
	if err != nil {
		switch {
		case errors.Is(err, account.ErrUnknownPlan):
			writeError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, account.ErrAlreadySubscribed):
			writeError(w, http.StatusConflict, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "subscribe failed")
		}
		return
	}
	writeJSON(w, http.StatusCreated, sub)
}

func (s *Server) handleCancelSubscription(w http.ResponseWriter, r *http.Request) {
	user, _ := userFrom(r.Context())

	if err := s.accounts.Cancel(user.ID); err != nil {
		if errors.Is(err, account.ErrNoActiveSubscription) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "cancel failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}
