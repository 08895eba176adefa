package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"classroom-subscription/internal/domain/model"
)

type planRequest struct {
	Title         string `json:"title"`
	Description   string `json:"description"`
	PriceCents    int64  `json:"price_cents"`
	DurationValue int    `json:"duration_value"`
	DurationType  string `json:"duration_type"`
}

func (s *Server) handleCreatePlan() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req planRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, err)
			return
		}

		plan, err := s.planUC.Create(r.Context(), req.Title, req.Description, req.PriceCents,
			req.DurationValue, model.DurationType(req.DurationType))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toPlanDTO(plan))
	}
}

func (s *Server) handleUpdatePlan() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req planRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, err)
			return
		}

		plan, err := s.planUC.Update(r.Context(), chi.URLParam(r, "id"), req.Title, req.Description,
			req.PriceCents, req.DurationValue, model.DurationType(req.DurationType))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toPlanDTO(plan))
	}
}

func (s *Server) handleDeletePlan() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.planUC.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) handleListPlans() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		plans, err := s.planUC.List(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		items := make([]planDTO, 0, len(plans))
		for _, p := range plans {
			items = append(items, toPlanDTO(p))
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"items": items})
	}
}

func (s *Server) handleGetPlan() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		plan, err := s.planUC.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toPlanDTO(plan))
	}
}

type adminRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
	Role     string `json:"role"`
	Status   string `json:"status"`
}

func (s *Server) handleAddAdmin() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req adminRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, err)
			return
		}

		admin, err := s.adminUC.Add(r.Context(), req.Name, req.Email, req.Phone, req.Password, model.AdminRole(req.Role))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toAdminDTO(admin))
	}
}

func (s *Server) handleGetAdmin() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		admin, err := s.adminUC.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toAdminDTO(admin))
	}
}

func (s *Server) handleListAdmins() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		admins, err := s.adminUC.List(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		items := make([]adminDTO, 0, len(admins))
		for _, a := range admins {
			items = append(items, toAdminDTO(a))
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"items": items})
	}
}

func (s *Server) handleUpdateAdmin() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req adminRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, err)
			return
		}

		admin, err := s.adminUC.Update(r.Context(), chi.URLParam(r, "id"), req.Name, req.Email,
			req.Phone, req.Password, model.AdminRole(req.Role), req.Status)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toAdminDTO(admin))
	}
}

func (s *Server) handleDeleteAdmin() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.adminUC.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) handleListPendingSignups() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		views, err := s.adminUC.ListPendingSignups(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		items := make([]signupViewDTO, 0, len(views))
		for _, v := range views {
			items = append(items, toSignupViewDTO(v))
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"items": items})
	}
}

type resendLinkRequest struct {
	Email    string `json:"email"`
	URL      string `json:"url"`
	TimeLeft string `json:"time_left"`
}

func (s *Server) handleResendPaymentLink() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req resendLinkRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, err)
			return
		}
		if err := s.adminUC.ResendPaymentLink(r.Context(), req.Email, req.URL, req.TimeLeft); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "sent"})
	}
}

func (s *Server) handleListTransactions() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		txs, err := s.adminUC.ListTransactions(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		items := make([]transactionDTO, 0, len(txs))
		for _, t := range txs {
			items = append(items, toTransactionDTO(t))
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"items": items})
	}
}

type grantRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
	PlanID   string `json:"plan_id"`
}

func (s *Server) handleGrant() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req grantRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, err)
			return
		}

		account, err := s.subUC.Grant(r.Context(), req.Name, req.Email, req.Phone, req.Password, req.PlanID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toAccountDTO(account))
	}
}

type adminRenewRequest struct {
	AccountID string `json:"account_id"`
	PlanID    string `json:"plan_id"`
}

func (s *Server) handleAdminRenew() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req adminRenewRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, err)
			return
		}

		account, err := s.subUC.Renew(r.Context(), req.AccountID, req.PlanID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toAccountDTO(account))
	}
}

type classRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (s *Server) handleCreateClass() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req classRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, err)
			return
		}

		class, err := s.classUC.Create(r.Context(), req.Name, req.Description)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toClassDTO(class))
	}
}

func (s *Server) handleGetClass() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		class, err := s.classUC.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toClassDTO(class))
	}
}

func (s *Server) handleListClasses() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		classes, err := s.classUC.List(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		items := make([]classDTO, 0, len(classes))
		for _, c := range classes {
			items = append(items, toClassDTO(c))
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"items": items})
	}
}

func (s *Server) handleDeleteClass() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.classUC.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

type joinClassRequest struct {
	StudentID string `json:"student_id"`
}

func (s *Server) handleJoinClass() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req joinClassRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, err)
			return
		}
		if err := s.classUC.Join(r.Context(), chi.URLParam(r, "id"), req.StudentID); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "joined"})
	}
}

func (s *Server) handleKickStudent() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := s.classUC.Kick(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "studentID"))
		if err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
