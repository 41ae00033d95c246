// Package pronos226 предоставляет маршруты основного приложения.
package pronos226

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/ouedraogodev/pronos226/internal/config"
	"github.com/ouedraogodev/pronos226/internal/http/handlers/auth/login"
	"github.com/ouedraogodev/pronos226/internal/http/handlers/auth/register"
	claimapprove "github.com/ouedraogodev/pronos226/internal/http/handlers/claim/approve"
	claimlist "github.com/ouedraogodev/pronos226/internal/http/handlers/claim/list"
	claimlistown "github.com/ouedraogodev/pronos226/internal/http/handlers/claim/listown"
	"github.com/ouedraogodev/pronos226/internal/http/handlers/claim/paymentinfo"
	claimredrive "github.com/ouedraogodev/pronos226/internal/http/handlers/claim/redrive"
	claimreject "github.com/ouedraogodev/pronos226/internal/http/handlers/claim/reject"
	claimsubmit "github.com/ouedraogodev/pronos226/internal/http/handlers/claim/submit"
	"github.com/ouedraogodev/pronos226/internal/http/handlers/health"
	profileget "github.com/ouedraogodev/pronos226/internal/http/handlers/profile/get"
	predictioncreate "github.com/ouedraogodev/pronos226/internal/http/handlers/prediction/create"
	predictionlist "github.com/ouedraogodev/pronos226/internal/http/handlers/prediction/list"
	predictionremove "github.com/ouedraogodev/pronos226/internal/http/handlers/prediction/remove"
	predictionresult "github.com/ouedraogodev/pronos226/internal/http/handlers/prediction/result"
	userlist "github.com/ouedraogodev/pronos226/internal/http/handlers/user/list"
	userupdate "github.com/ouedraogodev/pronos226/internal/http/handlers/user/update"
	"github.com/ouedraogodev/pronos226/internal/http/middlewarectx"
	authservice "github.com/ouedraogodev/pronos226/internal/services/auth"
	claimservice "github.com/ouedraogodev/pronos226/internal/services/claim"
	predictionservice "github.com/ouedraogodev/pronos226/internal/services/prediction"
	profileservice "github.com/ouedraogodev/pronos226/internal/services/profile"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, cfg *config.Config,
	authService *authservice.AuthService,
	profileService *profileservice.ProfileService,
	claimService *claimservice.ClaimService,
	predictionService *predictionservice.PredictionService,
) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/register", register.New(logger, authService).ServeHTTP)
		r.Post("/login", login.New(logger, authService).ServeHTTP)
		r.Get("/payment-info", paymentinfo.New(logger, cfg).ServeHTTP)
		r.Get("/health", health.New(logger).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(authService, logger))
			r.Use(middlewarectx.ProfileMiddleware(logger, profileService))
			r.Use(middlewarectx.RateLimitMiddleware(logger))

			r.Get("/me", profileget.New(logger).ServeHTTP)
			r.Get("/predictions", predictionlist.New(logger, predictionService).ServeHTTP)
			r.Post("/claims", claimsubmit.New(logger, claimService).ServeHTTP)
			r.Get("/claims", claimlistown.New(logger, claimService).ServeHTTP)

			// Административная панель
			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.AdminMiddleware(logger))

				r.Get("/admin/claims", claimlist.New(logger, claimService).ServeHTTP)
				r.Post("/admin/claims/{id}/approve", claimapprove.New(logger, claimService).ServeHTTP)
				r.Post("/admin/claims/{id}/reject", claimreject.New(logger, claimService).ServeHTTP)
				r.Post("/admin/claims/{id}/redrive", claimredrive.New(logger, claimService).ServeHTTP)

				r.Post("/admin/predictions", predictioncreate.New(logger, predictionService).ServeHTTP)
				r.Patch("/admin/predictions/{id}/result", predictionresult.New(logger, predictionService).ServeHTTP)
				r.Delete("/admin/predictions/{id}", predictionremove.New(logger, predictionService).ServeHTTP)

				r.Get("/admin/users", userlist.New(logger, profileService).ServeHTTP)
				r.Put("/admin/users/{uid}/subscription", userupdate.New(logger, profileService).ServeHTTP)
			})
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
