package auth

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/frahmantamala/ewaste-management/internal"
	coreuser "github.com/frahmantamala/ewaste-management/internal/core/user"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
)

var _ = ginkgo.Describe("Handler", func() {
	var (
		handler  *Handler
		service  *Service
		provider *FixtureIdentityProvider
		quiet    = slog.New(slog.NewTextHandler(io.Discard, nil))
	)

	ginkgo.BeforeEach(func() {
		var err error
		provider, err = NewFixtureIdentityProvider([]internal.FixtureUser{
			{ID: 1, Email: "Partner@Example.com", Password: "partner123", Role: "partner"},
			{ID: 2, Email: "ops@example.com", Password: "admin123", Role: "admin", Permissions: []string{"manage_batches", "unknown"}},
		}, bcrypt.MinCost)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())

		tokens := NewJWTTokenGenerator("handler-access-secret-0123456789abcd", "handler-refresh-secret-0123456789abc", time.Minute, time.Hour)
		service = NewService(provider, tokens, bcrypt.MinCost, quiet)
		handler = NewHandler(service)
	})

	postJSON := func(h http.HandlerFunc, body interface{}) *httptest.ResponseRecorder {
		raw, _ := json.Marshal(body)
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(raw))
		rec := httptest.NewRecorder()
		h(rec, req)
		return rec
	}

	accessToken := func(email, password string) string {
		rec := postJSON(handler.Login, LoginDTO{Email: email, Password: password})
		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
		var result LoginResult
		gomega.Expect(json.Unmarshal(rec.Body.Bytes(), &result)).To(gomega.Succeed())
		return result.AccessToken
	}

	ginkgo.Describe("Login", func() {
		ginkgo.It("returns tokens and the profile for fixture users", func() {
			rec := postJSON(handler.Login, LoginDTO{Email: "ops@example.com", Password: "admin123"})

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
			var result LoginResult
			gomega.Expect(json.Unmarshal(rec.Body.Bytes(), &result)).To(gomega.Succeed())
			gomega.Expect(result.User.Email).To(gomega.Equal("ops@example.com"))
			gomega.Expect(result.User.Permissions).To(gomega.Equal([]string{"manage_batches"}))
		})

		ginkgo.It("answers 401 with an error body for a bad password", func() {
			rec := postJSON(handler.Login, LoginDTO{Email: "ops@example.com", Password: "nope"})

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnauthorized))
			gomega.Expect(rec.Body.String()).To(gomega.ContainSubstring(string(internal.ErrCodeInvalidCredentials)))
		})

		ginkgo.It("answers 400 for a malformed body", func() {
			req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString("{"))
			rec := httptest.NewRecorder()
			handler.Login(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusBadRequest))
		})
	})

	ginkgo.Describe("Logout", func() {
		ginkgo.It("requires a token", func() {
			rec := postJSON(handler.Logout, nil)
			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnauthorized))
		})

		ginkgo.It("accepts a valid access token", func() {
			req := httptest.NewRequest(http.MethodPost, "/", nil)
			req.Header.Set("Authorization", "Bearer "+accessToken("partner@example.com", "partner123"))
			rec := httptest.NewRecorder()
			handler.Logout(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
		})
	})

	ginkgo.Describe("AuthMiddleware", func() {
		var (
			seen *internal.User
			next http.Handler
		)

		ginkgo.BeforeEach(func() {
			seen = nil
			next = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen, _ = internal.UserFromContext(r.Context())
				w.WriteHeader(http.StatusNoContent)
			})
		})

		serve := func(h http.Handler, token string) *httptest.ResponseRecorder {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if token != "" {
				req.Header.Set("Authorization", "Bearer "+token)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			return rec
		}

		ginkgo.It("attaches the resolved actor", func() {
			rec := serve(handler.AuthMiddleware(next), accessToken("ops@example.com", "admin123"))

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusNoContent))
			gomega.Expect(seen).ToNot(gomega.BeNil())
			gomega.Expect(seen.ID).To(gomega.Equal(int64(2)))
			gomega.Expect(seen.Role).To(gomega.Equal(coreuser.RoleAdmin))
		})

		ginkgo.It("rejects requests without a token", func() {
			rec := serve(handler.AuthMiddleware(next), "")

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnauthorized))
			gomega.Expect(seen).To(gomega.BeNil())
		})

		ginkgo.It("rejects garbage tokens", func() {
			rec := serve(handler.AuthMiddleware(next), "not-a-jwt")
			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnauthorized))
		})

		ginkgo.Context("with RBAC on top", func() {
			var rbac *RBACAuthorization

			ginkgo.BeforeEach(func() {
				rbac = NewRBACAuthorization(nil, quiet)
			})

			ginkgo.It("lets a permitted admin through", func() {
				h := handler.AuthMiddleware(rbac.RequireManageBatches()(next))
				rec := serve(h, accessToken("ops@example.com", "admin123"))
				gomega.Expect(rec.Code).To(gomega.Equal(http.StatusNoContent))
			})

			ginkgo.It("answers 403 when the permission is missing", func() {
				h := handler.AuthMiddleware(rbac.RequireManageItems()(next))
				rec := serve(h, accessToken("ops@example.com", "admin123"))

				gomega.Expect(rec.Code).To(gomega.Equal(http.StatusForbidden))
				gomega.Expect(rec.Body.String()).To(gomega.ContainSubstring(string(internal.ErrCodeForbidden)))
			})

			ginkgo.It("never grants partners an admin permission", func() {
				h := handler.AuthMiddleware(rbac.RequireManageBatches()(next))
				rec := serve(h, accessToken("partner@example.com", "partner123"))
				gomega.Expect(rec.Code).To(gomega.Equal(http.StatusForbidden))
			})
		})
	})

	ginkgo.Describe("NewFixtureIdentityProvider", func() {
		ginkgo.It("rejects unknown roles", func() {
			_, err := NewFixtureIdentityProvider([]internal.FixtureUser{
				{ID: 9, Email: "x@example.com", Password: "pw", Role: "root"},
			}, bcrypt.MinCost)
			gomega.Expect(err).To(gomega.HaveOccurred())
		})

		ginkgo.It("rejects duplicate emails", func() {
			_, err := NewFixtureIdentityProvider([]internal.FixtureUser{
				{ID: 1, Email: "x@example.com", Password: "pw", Role: "partner"},
				{ID: 2, Email: "X@example.com", Password: "pw", Role: "partner"},
			}, bcrypt.MinCost)
			gomega.Expect(err).To(gomega.HaveOccurred())
		})

		ginkgo.It("rejects duplicate ids", func() {
			_, err := NewFixtureIdentityProvider([]internal.FixtureUser{
				{ID: 1, Email: "first@example.com", Password: "pw", Role: "partner"},
				{ID: 1, Email: "second@example.com", Password: "pw", Role: "admin"},
			}, bcrypt.MinCost)
			gomega.Expect(err).To(gomega.MatchError(gomega.ContainSubstring("duplicate id 1")))
		})
	})
})
