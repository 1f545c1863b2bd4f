package category_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"

	errors "github.com/frahmantamala/evaluation-criteria/internal"
	"github.com/frahmantamala/evaluation-criteria/internal/category"
	categoryPostgres "github.com/frahmantamala/evaluation-criteria/internal/category/postgres"
	categoryDatamodel "github.com/frahmantamala/evaluation-criteria/internal/core/datamodel/category"
	criteriaDatamodel "github.com/frahmantamala/evaluation-criteria/internal/core/datamodel/criteria"
	"github.com/frahmantamala/evaluation-criteria/internal/transport"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type errorEnvelope struct {
	Error struct {
		Code    string                 `json:"code"`
		Message string                 `json:"message"`
		Details map[string]interface{} `json:"details"`
	} `json:"error"`
}

var _ = Describe("Category Handler Integration", func() {
	var (
		db     *gorm.DB
		repo   category.RepositoryAPI
		router *chi.Mux
		perms  []string
		ids    map[string]int64
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

		err = db.AutoMigrate(&categoryDatamodel.Category{}, &criteriaDatamodel.Criteria{})
		Expect(err).NotTo(HaveOccurred())

		repo = categoryPostgres.NewCategoryRepository(db)
		service := category.NewService(repo, nil, permissionAuthorizer{}, nil, newTestLogger())
		handler := category.NewHandler(transport.NewBaseHandler(newTestLogger()), service)

		perms = adminPerms
		router = chi.NewRouter()
		router.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				ctx := errors.ContextWithUser(r.Context(), &errors.Principal{ID: "tester", Permissions: perms})
				next.ServeHTTP(w, r.WithContext(ctx))
			})
		})
		router.Get("/categories", handler.GetCategories)
		router.Get("/categories/summary", handler.GetWeightSummary)
		router.Get("/admin/categories", handler.GetAllCategories)
		router.Post("/categories", handler.CreateCategory)
		router.Get("/categories/{id}", handler.GetCategory)
		router.Patch("/categories/{id}", handler.UpdateCategory)
		router.Post("/categories/weights/validate", handler.ValidateWeights)
		router.Put("/categories/weights", handler.RebalanceWeights)
		router.Post("/categories/{id}/cascade-deactivate", handler.CascadeDeactivate)
		router.Post("/categories/{id}/deactivate", handler.DeactivateCategory)
		router.Post("/categories/{id}/reactivate", handler.ReactivateCategory)
		router.Delete("/categories/{id}", handler.DeleteCategory)

		ids = map[string]int64{}
		for _, seed := range []struct {
			name   string
			weight float64
			active bool
		}{
			{"Communication", 40, true},
			{"Delivery", 30, true},
			{"Ownership", 30, true},
			{"Legacy", 0, false},
		} {
			row := &categoryDatamodel.Category{Name: seed.name, Weight: seed.weight, IsActive: seed.active}
			Expect(db.Create(row).Error).To(Succeed())
			ids[seed.name] = row.ID
		}
	})

	do := func(method, path string, body interface{}) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		if body != nil {
			Expect(json.NewEncoder(&buf).Encode(body)).To(Succeed())
		}
		req := httptest.NewRequest(method, path, &buf)
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	decodeError := func(w *httptest.ResponseRecorder) errorEnvelope {
		var env errorEnvelope
		Expect(json.NewDecoder(w.Body).Decode(&env)).To(Succeed())
		return env
	}

	It("lists only active categories publicly", func() {
		w := do(http.MethodGet, "/categories", nil)
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Header().Get("Content-Type")).To(ContainSubstring("application/json"))

		var response category.CategoriesResponse
		Expect(json.NewDecoder(w.Body).Decode(&response)).To(Succeed())
		names := make([]string, len(response.Categories))
		for i, c := range response.Categories {
			names[i] = c.Name
		}
		Expect(names).To(ConsistOf("Communication", "Delivery", "Ownership"))
	})

	It("lists inactive categories for administrators", func() {
		w := do(http.MethodGet, "/admin/categories", nil)
		Expect(w.Code).To(Equal(http.StatusOK))

		var response category.CategoriesResponse
		Expect(json.NewDecoder(w.Body).Decode(&response)).To(Succeed())
		Expect(response.Categories).To(HaveLen(4))
	})

	It("reports the weight summary", func() {
		w := do(http.MethodGet, "/categories/summary", nil)
		Expect(w.Code).To(Equal(http.StatusOK))

		var summary category.WeightSummary
		Expect(json.NewDecoder(w.Body).Decode(&summary)).To(Succeed())
		Expect(summary.ActiveTotal).To(Equal(100.0))
		Expect(summary.Balanced).To(BeTrue())
	})

	It("rebalances weights", func() {
		w := do(http.MethodPut, "/categories/weights", category.RebalanceWeightsDTO{Weights: []category.WeightPair{
			{CategoryID: ids["Communication"], Weight: 50},
			{CategoryID: ids["Delivery"], Weight: 25},
			{CategoryID: ids["Ownership"], Weight: 25},
		}})
		Expect(w.Code).To(Equal(http.StatusOK))

		stored, err := repo.GetByID(context.Background(), ids["Communication"])
		Expect(err).NotTo(HaveOccurred())
		Expect(stored.Weight).To(Equal(50.0))
	})

	It("returns 422 with totals when a rebalance does not sum to 100", func() {
		w := do(http.MethodPut, "/categories/weights", category.RebalanceWeightsDTO{Weights: []category.WeightPair{
			{CategoryID: ids["Communication"], Weight: 50},
			{CategoryID: ids["Delivery"], Weight: 30},
			{CategoryID: ids["Ownership"], Weight: 30},
		}})
		Expect(w.Code).To(Equal(http.StatusUnprocessableEntity))

		env := decodeError(w)
		Expect(env.Error.Code).To(Equal(string(errors.ErrCodeWeightValidationFailed)))
		Expect(env.Error.Details).To(HaveKeyWithValue("total", 110.0))
		Expect(env.Error.Details).To(HaveKeyWithValue("delta", 10.0))
	})

	It("returns 422 when a rebalance names an inactive category", func() {
		w := do(http.MethodPut, "/categories/weights", category.RebalanceWeightsDTO{Weights: []category.WeightPair{
			{CategoryID: ids["Communication"], Weight: 40},
			{CategoryID: ids["Delivery"], Weight: 30},
			{CategoryID: ids["Legacy"], Weight: 30},
		}})
		Expect(w.Code).To(Equal(http.StatusUnprocessableEntity))

		env := decodeError(w)
		Expect(env.Error.Code).To(Equal(string(errors.ErrCodeCategoryInactive)))
		Expect(env.Error.Details).To(HaveKeyWithValue("category_id", float64(ids["Legacy"])))

		stored, err := repo.GetByID(context.Background(), ids["Legacy"])
		Expect(err).NotTo(HaveOccurred())
		Expect(stored.Weight).To(Equal(0.0))
	})

	It("validates a distribution without saving it", func() {
		w := do(http.MethodPost, "/categories/weights/validate", category.RebalanceWeightsDTO{Weights: []category.WeightPair{
			{CategoryID: ids["Communication"], Weight: 90},
		}})
		Expect(w.Code).To(Equal(http.StatusOK))

		var result category.ValidationResult
		Expect(json.NewDecoder(w.Body).Decode(&result)).To(Succeed())
		Expect(result.Valid).To(BeFalse())
		Expect(result.Delta).To(Equal(-10.0))
	})

	It("returns 422 with the baseline when an update exceeds 100", func() {
		w := do(http.MethodPatch, "/categories/"+itoa(ids["Delivery"]), map[string]interface{}{"weight": 35})
		Expect(w.Code).To(Equal(http.StatusUnprocessableEntity))

		env := decodeError(w)
		Expect(env.Error.Code).To(Equal(string(errors.ErrCodeWeightExceeded)))
		Expect(env.Error.Details).To(HaveKeyWithValue("current_total", 70.0))
		Expect(env.Error.Details).To(HaveKeyWithValue("proposed_total", 105.0))
	})

	It("creates a zero-weight category", func() {
		w := do(http.MethodPost, "/categories", category.CreateCategoryDTO{Name: "Mentoring", Weight: 0})
		Expect(w.Code).To(Equal(http.StatusCreated))

		var created category.CategoryResponse
		Expect(json.NewDecoder(w.Body).Decode(&created)).To(Succeed())
		Expect(created.ID).To(BeNumerically(">", 0))
		Expect(created.IsActive).To(BeTrue())
	})

	It("rejects unknown fields", func() {
		w := do(http.MethodPost, "/categories", map[string]interface{}{"name": "Mentoring", "colour": "red"})
		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})

	It("returns 409 when deleting a category with criteria", func() {
		Expect(db.Create(&criteriaDatamodel.Criteria{CategoryID: ids["Legacy"], Name: "Old rubric"}).Error).To(Succeed())

		w := do(http.MethodDelete, "/categories/"+itoa(ids["Legacy"]), nil)
		Expect(w.Code).To(Equal(http.StatusConflict))
		Expect(decodeError(w).Error.Code).To(Equal(string(errors.ErrCodeHasDependentCriteria)))
	})

	It("deletes a category without criteria", func() {
		w := do(http.MethodDelete, "/categories/"+itoa(ids["Legacy"]), nil)
		Expect(w.Code).To(Equal(http.StatusNoContent))
	})

	It("cascade deactivates and reactivates", func() {
		Expect(db.Create(&criteriaDatamodel.Criteria{CategoryID: ids["Ownership"], Name: "Follow-through", IsActive: true}).Error).To(Succeed())

		w := do(http.MethodPost, "/categories/"+itoa(ids["Ownership"])+"/cascade-deactivate", nil)
		Expect(w.Code).To(Equal(http.StatusOK))

		w = do(http.MethodPost, "/categories/"+itoa(ids["Ownership"])+"/reactivate", nil)
		Expect(w.Code).To(Equal(http.StatusOK))

		var active int64
		Expect(db.Model(&criteriaDatamodel.Criteria{}).Where("is_active = ?", true).Count(&active).Error).To(Succeed())
		Expect(active).To(BeZero())
	})

	It("returns 404 for unknown categories", func() {
		w := do(http.MethodPost, "/categories/9999/deactivate", nil)
		Expect(w.Code).To(Equal(http.StatusNotFound))
		Expect(decodeError(w).Error.Code).To(Equal(string(errors.ErrCodeCategoryNotFound)))
	})

	It("returns 400 for malformed ids", func() {
		w := do(http.MethodGet, "/categories/abc", nil)
		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})

	Context("as a non-administrator", func() {
		BeforeEach(func() {
			perms = userPerms
		})

		It("forbids mutations", func() {
			w := do(http.MethodPost, "/categories/"+itoa(ids["Delivery"])+"/deactivate", nil)
			Expect(w.Code).To(Equal(http.StatusForbidden))
			Expect(decodeError(w).Error.Code).To(Equal(string(errors.ErrCodeUnauthorizedAccess)))
		})

		It("hides inactive categories", func() {
			w := do(http.MethodGet, "/categories/"+itoa(ids["Legacy"]), nil)
			Expect(w.Code).To(Equal(http.StatusNotFound))
		})
	})
})

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
