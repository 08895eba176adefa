package web

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"classroom-subscription/internal/domain/ports/adapter"
	"classroom-subscription/internal/infra/metrics"
	"classroom-subscription/internal/infra/redis"
	"classroom-subscription/internal/usecase"
)

// Server holds the HTTP surface: public signup/checkout flow, student auth,
// the webhook endpoint, and the admin API.
type Server struct {
	signupUC  *usecase.SignupUseCase
	paymentUC usecase.PaymentUseCase
	subUC     *usecase.SubscriptionUseCase
	planUC    *usecase.PlanUseCase
	classUC   *usecase.ClassUseCase
	adminUC   *usecase.AdminUseCase
	authUC    *usecase.AuthUseCase
	gateway   adapter.PaymentGateway
	limiter   *redis.RateLimiter
	log       *zerolog.Logger
}

func NewServer(
	signupUC *usecase.SignupUseCase,
	paymentUC usecase.PaymentUseCase,
	subUC *usecase.SubscriptionUseCase,
	planUC *usecase.PlanUseCase,
	classUC *usecase.ClassUseCase,
	adminUC *usecase.AdminUseCase,
	authUC *usecase.AuthUseCase,
	gateway adapter.PaymentGateway,
	limiter *redis.RateLimiter,
	logger *zerolog.Logger,
) *Server {
	l := logger.With().Str("component", "web").Logger()
	return &Server{
		signupUC:  signupUC,
		paymentUC: paymentUC,
		subUC:     subUC,
		planUC:    planUC,
		classUC:   classUC,
		adminUC:   adminUC,
		authUC:    authUC,
		gateway:   gateway,
		limiter:   limiter,
		log:       &l,
	}
}

func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()
	r.Use(s.requestID)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", s.handleLogin())
			r.Post("/forgot-password", s.handleForgotPassword())
			r.Post("/reset-password", s.handleResetPassword())
			r.With(s.authenticate("")).Post("/logout", s.handleLogout())
		})

		r.Route("/signup", func(r chi.Router) {
			r.Post("/", s.handleCreateSignup())
			r.Post("/{id}/checkout", s.handleBeginCheckout())
			r.Post("/{id}/retry", s.handleRetryCheckout())
			r.Get("/{id}/status", s.handleSignupStatus())
		})

		r.Post("/payment/webhook", s.handleWebhook())
		r.With(s.authenticate("student")).Post("/subscription/renew", s.handleRenew())

		r.Get("/plans", s.handleListPlans())
		r.Get("/plans/{id}", s.handleGetPlan())

		r.With(s.authenticate("student")).Get("/classes", s.handleListClasses())

		r.Route("/admin", func(r chi.Router) {
			r.Post("/login", s.handleAdminLogin())
			r.Post("/forgot-password", s.handleAdminForgotPassword())
			r.Post("/reset-password", s.handleAdminResetPassword())

			r.Group(func(r chi.Router) {
				r.Use(s.authenticate("admin"))

				r.Post("/plans", s.handleCreatePlan())
				r.Put("/plans/{id}", s.handleUpdatePlan())
				r.Delete("/plans/{id}", s.handleDeletePlan())

				r.Post("/admins", s.handleAddAdmin())
				r.Get("/admins", s.handleListAdmins())
				r.Get("/admins/{id}", s.handleGetAdmin())
				r.Put("/admins/{id}", s.handleUpdateAdmin())
				r.Delete("/admins/{id}", s.handleDeleteAdmin())

				r.Get("/signups", s.handleListPendingSignups())
				r.Post("/signups/resend-link", s.handleResendPaymentLink())
				r.Get("/transactions", s.handleListTransactions())

				r.Post("/subscriptions/grant", s.handleGrant())
				r.Post("/subscriptions/renew", s.handleAdminRenew())

				r.Post("/classes", s.handleCreateClass())
				r.Get("/classes/{id}", s.handleGetClass())
				r.Delete("/classes/{id}", s.handleDeleteClass())
				r.Post("/classes/{id}/students", s.handleJoinClass())
				r.Delete("/classes/{id}/students/{studentID}", s.handleKickStudent())
			})
		})
	})

	return r
}

// Run serves until ctx is cancelled, then drains with a shutdown grace
// period.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", addr).Msg("http server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
