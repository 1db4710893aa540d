package user_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"

	"github.com/frahmantamala/ewaste-management/internal"
	"github.com/frahmantamala/ewaste-management/internal/auth"
	userDatamodel "github.com/frahmantamala/ewaste-management/internal/core/datamodel/user"
	coreuser "github.com/frahmantamala/ewaste-management/internal/core/user"
	"github.com/frahmantamala/ewaste-management/internal/user"
	userPostgres "github.com/frahmantamala/ewaste-management/internal/user/postgres"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var _ = Describe("User Handler Integration", func() {
	var (
		db      *gorm.DB
		handler *user.Handler
		router  *chi.Mux
		actor   *internal.User
	)

	withActor := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if actor != nil {
				r = r.WithContext(internal.ContextWithUser(r.Context(), actor))
			}
			next.ServeHTTP(w, r)
		})
	}

	do := func(method, path string, body interface{}) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		if body != nil {
			Expect(json.NewEncoder(&buf).Encode(body)).To(Succeed())
		}
		req := httptest.NewRequest(method, path, &buf)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	BeforeEach(func() {
		var err error
		slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		sqlDB.SetMaxOpenConns(1)
		Expect(db.AutoMigrate(&userDatamodel.User{}, &userDatamodel.Permission{}, &userDatamodel.UserPermission{})).To(Succeed())

		repo := userPostgres.NewUserRepository(db)
		service := user.NewService(repo, auth.NewBatchPolicy(nil), bcrypt.MinCost, slogger)
		handler = user.NewHandler(service)
		actor = nil

		router = chi.NewRouter()
		router.Post("/auth/register", handler.Register)
		router.Group(func(r chi.Router) {
			r.Use(withActor)
			r.Get("/users/me", handler.GetCurrentUser)
			r.Put("/users/me", handler.UpdateProfile)
			r.Put("/users/me/password", handler.ChangePassword)
			r.Patch("/users/{id}/deactivate", handler.Deactivate)
		})
	})

	register := func(email string) int64 {
		rec := do(http.MethodPost, "/auth/register", map[string]string{
			"email":      email,
			"password":   "secret1",
			"first_name": "Pat",
			"last_name":  "Partner",
			"role":       "partner",
		})
		Expect(rec.Code).To(Equal(http.StatusCreated))
		var resp struct {
			User user.User `json:"user"`
		}
		Expect(json.Unmarshal(rec.Body.Bytes(), &resp)).To(Succeed())
		return resp.User.ID
	}

	It("registers and then serves the profile", func() {
		id := register("pat@college.edu")
		actor = &internal.User{ID: id, Role: coreuser.RolePartner}

		rec := do(http.MethodGet, "/users/me", nil)

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring(`"email":"pat@college.edu"`))
		Expect(rec.Body.String()).NotTo(ContainSubstring("password"))
	})

	It("answers 409 for a duplicate registration", func() {
		register("pat@college.edu")

		rec := do(http.MethodPost, "/auth/register", map[string]string{
			"email": "pat@college.edu", "password": "secret1", "first_name": "P", "last_name": "Q", "role": "partner",
		})

		Expect(rec.Code).To(Equal(http.StatusConflict))
		Expect(rec.Body.String()).To(ContainSubstring(string(internal.ErrCodeEmailTaken)))
	})

	It("answers 400 with field details for invalid registrations", func() {
		rec := do(http.MethodPost, "/auth/register", map[string]string{"email": "not-an-email", "role": "root"})

		Expect(rec.Code).To(Equal(http.StatusBadRequest))
		Expect(rec.Body.String()).To(ContainSubstring(`"field":"email"`))
		Expect(rec.Body.String()).To(ContainSubstring(`"field":"role"`))
	})

	It("answers 401 without an actor", func() {
		rec := do(http.MethodGet, "/users/me", nil)
		Expect(rec.Code).To(Equal(http.StatusUnauthorized))
	})

	It("updates the profile and password", func() {
		id := register("pat@college.edu")
		actor = &internal.User{ID: id, Role: coreuser.RolePartner}

		rec := do(http.MethodPut, "/users/me", map[string]string{"organization_name": "State College", "organization_type": "college"})
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring("State College"))

		rec = do(http.MethodPut, "/users/me/password", map[string]string{"current_password": "secret1", "new_password": "secret2"})
		Expect(rec.Code).To(Equal(http.StatusOK))

		var model userDatamodel.User
		Expect(db.First(&model, id).Error).To(Succeed())
		Expect(bcrypt.CompareHashAndPassword([]byte(model.PasswordHash), []byte("secret2"))).To(Succeed())
	})

	Describe("deactivation", func() {
		var targetID int64

		BeforeEach(func() {
			targetID = register("pat@college.edu")
		})

		It("lets a manage_users admin deactivate an account", func() {
			actor = &internal.User{ID: 900, Role: coreuser.RoleAdmin, Permissions: []coreuser.Permission{coreuser.PermManageUsers}}

			rec := do(http.MethodPatch, "/users/"+itoa(targetID)+"/deactivate", nil)

			Expect(rec.Code).To(Equal(http.StatusOK))
			u, err := userPostgres.NewUserRepository(db).GetByID(context.Background(), targetID)
			Expect(err).NotTo(HaveOccurred())
			Expect(u.IsActive).To(BeFalse())
		})

		It("answers 403 for a partner", func() {
			actor = &internal.User{ID: 901, Role: coreuser.RolePartner}

			rec := do(http.MethodPatch, "/users/"+itoa(targetID)+"/deactivate", nil)

			Expect(rec.Code).To(Equal(http.StatusForbidden))
		})

		It("answers 400 for a malformed id", func() {
			actor = &internal.User{ID: 900, Role: coreuser.RoleSuperAdmin}

			rec := do(http.MethodPatch, "/users/abc/deactivate", nil)

			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})
	})
})

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
