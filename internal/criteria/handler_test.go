package criteria_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"

	errors "github.com/frahmantamala/evaluation-criteria/internal"
	categoryPostgres "github.com/frahmantamala/evaluation-criteria/internal/category/postgres"
	categoryDatamodel "github.com/frahmantamala/evaluation-criteria/internal/core/datamodel/category"
	criteriaDatamodel "github.com/frahmantamala/evaluation-criteria/internal/core/datamodel/criteria"
	"github.com/frahmantamala/evaluation-criteria/internal/criteria"
	criteriaPostgres "github.com/frahmantamala/evaluation-criteria/internal/criteria/postgres"
	"github.com/frahmantamala/evaluation-criteria/internal/transport"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var _ = Describe("Criteria Handler Integration", func() {
	var (
		db       *gorm.DB
		router   *chi.Mux
		active   *categoryDatamodel.Category
		inactive *categoryDatamodel.Category
		perms    []string
	)

	BeforeEach(func() {
		var err error
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		sqlDB.SetMaxOpenConns(1)
		Expect(db.AutoMigrate(&categoryDatamodel.Category{}, &criteriaDatamodel.Criteria{})).To(Succeed())

		active = &categoryDatamodel.Category{Name: "Communication", Weight: 100, IsActive: true}
		inactive = &categoryDatamodel.Category{Name: "Legacy", IsActive: false}
		Expect(db.Create(active).Error).To(Succeed())
		Expect(db.Create(inactive).Error).To(Succeed())

		slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service := criteria.NewService(
			criteriaPostgres.NewCriteriaRepository(db),
			categoryPostgres.NewCategoryRepository(db),
			permissionAuthorizer{},
			slogger,
		)
		handler := criteria.NewHandler(transport.NewBaseHandler(slogger), service)

		perms = adminPerms
		router = chi.NewRouter()
		router.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				ctx := errors.ContextWithUser(r.Context(), &errors.Principal{ID: "tester", Permissions: perms})
				next.ServeHTTP(w, r.WithContext(ctx))
			})
		})
		router.Get("/categories/{id}/criteria", handler.ListCriteria)
		router.Post("/categories/{id}/criteria", handler.CreateCriteria)
		router.Patch("/criteria/{id}", handler.UpdateCriteria)
		router.Post("/criteria/{id}/deactivate", handler.DeactivateCriteria)
		router.Post("/criteria/{id}/activate", handler.ActivateCriteria)
	})

	do := func(method, path string, body interface{}) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		if body != nil {
			Expect(json.NewEncoder(&buf).Encode(body)).To(Succeed())
		}
		req := httptest.NewRequest(method, path, &buf)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	path := func(format string, id int64) string {
		return format + strconv.FormatInt(id, 10)
	}

	It("creates and lists criteria for a category", func() {
		w := do(http.MethodPost, path("/categories/", active.ID)+"/criteria", map[string]string{"name": "Clarity"})
		Expect(w.Code).To(Equal(http.StatusCreated))

		var created criteria.Criteria
		Expect(json.NewDecoder(w.Body).Decode(&created)).To(Succeed())
		Expect(created.CategoryID).To(Equal(active.ID))

		w = do(http.MethodGet, path("/categories/", active.ID)+"/criteria", nil)
		Expect(w.Code).To(Equal(http.StatusOK))

		var list criteria.CriteriaListResponse
		Expect(json.NewDecoder(w.Body).Decode(&list)).To(Succeed())
		Expect(list.Criteria).To(HaveLen(1))
		Expect(list.Criteria[0].Name).To(Equal("Clarity"))
	})

	It("returns 409 when activating under an inactive category", func() {
		row := &criteriaDatamodel.Criteria{CategoryID: inactive.ID, Name: "Old rubric"}
		Expect(db.Create(row).Error).To(Succeed())

		w := do(http.MethodPost, path("/criteria/", row.ID)+"/activate", nil)
		Expect(w.Code).To(Equal(http.StatusConflict))
	})

	It("deactivates a criteria", func() {
		row := &criteriaDatamodel.Criteria{CategoryID: active.ID, Name: "Listening", IsActive: true}
		Expect(db.Create(row).Error).To(Succeed())

		w := do(http.MethodPost, path("/criteria/", row.ID)+"/deactivate", nil)
		Expect(w.Code).To(Equal(http.StatusOK))

		var stored criteriaDatamodel.Criteria
		Expect(db.First(&stored, row.ID).Error).To(Succeed())
		Expect(stored.IsActive).To(BeFalse())
	})

	It("renames a criteria", func() {
		row := &criteriaDatamodel.Criteria{CategoryID: active.ID, Name: "Listening", IsActive: true}
		Expect(db.Create(row).Error).To(Succeed())

		w := do(http.MethodPatch, path("/criteria/", row.ID), map[string]string{"name": "Active listening"})
		Expect(w.Code).To(Equal(http.StatusOK))

		var updated criteria.Criteria
		Expect(json.NewDecoder(w.Body).Decode(&updated)).To(Succeed())
		Expect(updated.Name).To(Equal("Active listening"))
	})

	It("returns 404 for unknown criteria", func() {
		w := do(http.MethodPatch, "/criteria/999", map[string]string{"name": "Ghost"})
		Expect(w.Code).To(Equal(http.StatusNotFound))
	})

	It("hides the criteria of an inactive category from non-administrators", func() {
		Expect(db.Create(&criteriaDatamodel.Criteria{CategoryID: inactive.ID, Name: "Old rubric", IsActive: true}).Error).To(Succeed())

		w := do(http.MethodGet, path("/categories/", inactive.ID)+"/criteria", nil)
		Expect(w.Code).To(Equal(http.StatusOK))

		perms = userPerms
		w = do(http.MethodGet, path("/categories/", inactive.ID)+"/criteria", nil)
		Expect(w.Code).To(Equal(http.StatusNotFound))
	})
})
