package middlewarectx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/ouedraogodev/pronos226/internal/http/response"
	"github.com/ouedraogodev/pronos226/internal/lib/sl"
	"github.com/ouedraogodev/pronos226/internal/models"
	profileservice "github.com/ouedraogodev/pronos226/internal/services/profile"
)

// ProfileProvider описывает интерфейс загрузки сверенного профиля.
type ProfileProvider interface {
	GetProfile(ctx context.Context, userUID string) (*models.User, error)
}

// ProfileMiddleware загружает профиль аутентифицированного пользователя
// и кладет его в контекст запроса. Загрузка проходит через сверку ролей,
// поэтому обработчики ниже по цепочке видят уже исправленную запись.
func ProfileMiddleware(log *slog.Logger, profiles ProfileProvider) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.ProfileMiddleware"

			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			userUID, ok := r.Context().Value(UserUID).(string)
			if !ok || userUID == "" {
				log.Error("user identification missing")
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("user identification missing"))
				return
			}

			user, err := profiles.GetProfile(r.Context(), userUID)
			if err != nil {
				if errors.Is(err, profileservice.ErrUserNotFound) {
					log.Error("profile not found", slog.String("user_uid", userUID))
					render.Status(r, http.StatusUnauthorized)
					render.JSON(w, r, response.Error("unknown user"))
					return
				}
				log.Error("failed to load profile", sl.Err(err))
				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, response.Error("internal service error"))
				return
			}

			ctx := context.WithValue(r.Context(), Profile, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AdminMiddleware пропускает только пользователей с уровнем admin.
// Должен стоять после ProfileMiddleware: решение принимается по
// сверенному профилю, а не по уровню из токена.
func AdminMiddleware(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.AdminMiddleware"

			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			user, ok := r.Context().Value(Profile).(*models.User)
			if !ok || user == nil {
				log.Error("profile missing in context")
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("user identification missing"))
				return
			}
			if user.Tier != models.TierAdmin {
				log.Error("access denied", slog.String("user_uid", user.UID))
				render.Status(r, http.StatusForbidden)
				render.JSON(w, r, response.Error("admin access required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
