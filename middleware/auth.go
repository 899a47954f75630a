package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/yaswanth-2005/Task-Manager-Dashboard-Backend/models"
	"github.com/yaswanth-2005/Task-Manager-Dashboard-Backend/store"
	"github.com/yaswanth-2005/Task-Manager-Dashboard-Backend/utils"
)

type contextKey int

const ctxKeyUser contextKey = 0

// TokenValidator verifies a bearer token and returns the user id it carries.
type TokenValidator interface {
	ValidateJwt(token string) (string, error)
}

// UserLookup resolves a user id to a record without its password hash.
type UserLookup interface {
	Get(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}

// Auth gates handlers behind a valid bearer token that resolves to an
// existing user.
type Auth struct {
	Tokens TokenValidator
	Users  UserLookup
	Logger *slog.Logger
}

func (a *Auth) AuthMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimSpace(strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer "))
		if token == "" {
			utils.ResponseWithError(w, http.StatusUnauthorized, "No token provided")
			return
		}

		userID, err := a.Tokens.ValidateJwt(token)
		if err != nil {
			utils.ResponseWithError(w, http.StatusUnauthorized, "Invalid token")
			return
		}
		id, err := primitive.ObjectIDFromHex(userID)
		if err != nil {
			utils.ResponseWithError(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		user, err := a.Users.Get(r.Context(), id)
		if err != nil {
			if !errors.Is(err, store.ErrNotFound) {
				a.Logger.Error("resolve token user", slog.String("user_id", userID), slog.Any("err", err))
			}
			utils.ResponseWithError(w, http.StatusUnauthorized, "Invalid token")
			return
		}
		user.Password = ""

		next.ServeHTTP(w, r.WithContext(ContextWithUser(r.Context(), user)))
	}
}

func ContextWithUser(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, ctxKeyUser, u)
}

// UserFromContext returns the user attached by AuthMiddleware.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	u, ok := ctx.Value(ctxKeyUser).(*models.User)
	return u, ok && u != nil
}
