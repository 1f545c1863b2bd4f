package postgres_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"slices"
	"testing"

	"github.com/frahmantamala/evaluation-criteria/internal/category"
	categoryPostgres "github.com/frahmantamala/evaluation-criteria/internal/category/postgres"
	categoryDatamodel "github.com/frahmantamala/evaluation-criteria/internal/core/datamodel/category"
	criteriaDatamodel "github.com/frahmantamala/evaluation-criteria/internal/core/datamodel/criteria"
	"github.com/jmoiron/sqlx"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestCategoryPostgres(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Category Postgres Suite")
}

var errInjected = errors.New("injected failure")

type adminOnly struct{}

func (adminOnly) IsAdmin(perms []string) bool {
	return slices.Contains(perms, "admin")
}

var _ = Describe("Category PostgreSQL Repository", func() {
	var (
		ctx  context.Context
		db   *gorm.DB
		repo category.RepositoryAPI

		// failCategoryUpdates makes every UPDATE on categories fail once set.
		failCategoryUpdates bool
	)

	BeforeEach(func() {
		var err error
		ctx = context.Background()
		failCategoryUpdates = false

		// Use SQLite in-memory database for testing
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())

		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		sqlDB.SetMaxOpenConns(1)

		err = db.AutoMigrate(&categoryDatamodel.Category{}, &criteriaDatamodel.Criteria{})
		Expect(err).NotTo(HaveOccurred())

		err = db.Callback().Update().Before("gorm:update").Register("test:fail_category_update", func(tx *gorm.DB) {
			if failCategoryUpdates && tx.Statement.Table == "categories" {
				_ = tx.AddError(errInjected)
			}
		})
		Expect(err).NotTo(HaveOccurred())

		repo = categoryPostgres.NewCategoryRepository(db)
	})

	seedCategory := func(name string, weight float64, active bool) *categoryDatamodel.Category {
		cat := &categoryDatamodel.Category{Name: name, Weight: weight, IsActive: active}
		Expect(repo.Create(ctx, cat)).To(Succeed())
		return cat
	}

	seedCriteria := func(categoryID int64, name string, active bool) *criteriaDatamodel.Criteria {
		cr := &criteriaDatamodel.Criteria{CategoryID: categoryID, Name: name, IsActive: active}
		Expect(db.Create(cr).Error).To(Succeed())
		return cr
	}

	weightOf := func(id int64) float64 {
		cat, err := repo.GetByID(ctx, id)
		Expect(err).NotTo(HaveOccurred())
		return cat.Weight
	}

	Describe("Create and GetByID", func() {
		It("assigns an id and timestamps", func() {
			cat := seedCategory("Communication", 40, true)
			Expect(cat.ID).To(BeNumerically(">", 0))
			Expect(cat.CreatedAt).NotTo(BeZero())

			found, err := repo.GetByID(ctx, cat.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(found.Name).To(Equal("Communication"))
			Expect(found.Weight).To(Equal(40.0))
		})

		It("returns nil for a missing id", func() {
			found, err := repo.GetByID(ctx, 999)
			Expect(err).NotTo(HaveOccurred())
			Expect(found).To(BeNil())
		})

		It("persists inactive categories as inactive", func() {
			cat := seedCategory("Legacy", 0, false)
			found, err := repo.GetByID(ctx, cat.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(found.IsActive).To(BeFalse())
		})
	})

	Describe("GetActive and SumActiveWeights", func() {
		var comm *categoryDatamodel.Category

		BeforeEach(func() {
			comm = seedCategory("Communication", 40.5, true)
			seedCategory("Delivery", 29.5, true)
			seedCategory("Legacy", 30, false)
		})

		It("returns active categories ordered by name", func() {
			active, err := repo.GetActive(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(active).To(HaveLen(2))
			Expect(active[0].Name).To(Equal("Communication"))
			Expect(active[1].Name).To(Equal("Delivery"))
		})

		It("sums only active weights", func() {
			total, err := repo.SumActiveWeights(ctx, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(total).To(Equal(70.0))
		})

		It("leaves out the excluded category", func() {
			total, err := repo.SumActiveWeights(ctx, comm.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(total).To(Equal(29.5))
		})

		It("returns zero on an empty table", func() {
			Expect(db.Where("1 = 1").Delete(&categoryDatamodel.Category{}).Error).To(Succeed())
			total, err := repo.SumActiveWeights(ctx, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(total).To(BeZero())
		})
	})

	Describe("criteria access", func() {
		It("counts active and inactive criteria", func() {
			cat := seedCategory("Communication", 40, true)
			seedCriteria(cat.ID, "Clarity", true)
			seedCriteria(cat.ID, "Listening", false)

			count, err := repo.CountCriteria(ctx, cat.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(Equal(int64(2)))

			criteria, err := repo.GetCriteria(ctx, cat.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(criteria).To(HaveLen(2))
		})
	})

	Describe("WithTransaction", func() {
		It("commits when the callback succeeds", func() {
			cat := seedCategory("Communication", 40, true)

			err := repo.WithTransaction(ctx, func(tx category.RepositoryAPI) error {
				cat.Weight = 55
				return tx.Update(ctx, cat)
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(weightOf(cat.ID)).To(Equal(55.0))
		})

		It("rolls back when the callback fails", func() {
			cat := seedCategory("Communication", 40, true)

			err := repo.WithTransaction(ctx, func(tx category.RepositoryAPI) error {
				cat.Weight = 55
				if err := tx.Update(ctx, cat); err != nil {
					return err
				}
				return errors.New("abort")
			})
			Expect(err).To(MatchError("abort"))
			Expect(weightOf(cat.ID)).To(Equal(40.0))
		})
	})

	Describe("with the category service", func() {
		var (
			service *category.Service
			admin   = []string{"admin"}
		)

		BeforeEach(func() {
			slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
			sqlDB, err := db.DB()
			Expect(err).NotTo(HaveOccurred())
			summary := categoryPostgres.NewSummaryRepository(sqlx.NewDb(sqlDB, "sqlite3"))
			service = category.NewService(repo, summary, adminOnly{}, nil, slogger)
		})

		It("rebalances atomically", func() {
			a := seedCategory("A", 40, true)
			b := seedCategory("B", 30, true)
			c := seedCategory("C", 30, true)

			err := service.RebalanceWeights(ctx, []category.WeightPair{
				{CategoryID: a.ID, Weight: 50}, {CategoryID: b.ID, Weight: 25}, {CategoryID: c.ID, Weight: 25},
			}, admin)
			Expect(err).NotTo(HaveOccurred())

			summary, err := service.WeightSummary(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(summary.ActiveCount).To(Equal(int64(3)))
			Expect(summary.ActiveTotal).To(Equal(100.0))
			Expect(summary.Balanced).To(BeTrue())
		})

		It("leaves every weight unchanged when an id in the middle is missing", func() {
			a := seedCategory("A", 40, true)
			b := seedCategory("B", 30, true)
			c := seedCategory("C", 30, true)

			err := service.RebalanceWeights(ctx, []category.WeightPair{
				{CategoryID: a.ID, Weight: 20}, {CategoryID: 999, Weight: 40}, {CategoryID: b.ID, Weight: 20}, {CategoryID: c.ID, Weight: 20},
			}, admin)
			Expect(category.IsNotFound(err)).To(BeTrue())

			Expect(weightOf(a.ID)).To(Equal(40.0))
			Expect(weightOf(b.ID)).To(Equal(30.0))
			Expect(weightOf(c.ID)).To(Equal(30.0))
		})

		It("refuses to rebalance onto an inactive category", func() {
			a := seedCategory("A", 60, true)
			b := seedCategory("B", 40, false)

			err := service.RebalanceWeights(ctx, []category.WeightPair{
				{CategoryID: a.ID, Weight: 30}, {CategoryID: b.ID, Weight: 70},
			}, admin)
			var inactive *category.InactiveCategoryError
			Expect(errors.As(err, &inactive)).To(BeTrue())
			Expect(inactive.ID).To(Equal(b.ID))

			Expect(weightOf(a.ID)).To(Equal(60.0))
			Expect(weightOf(b.ID)).To(Equal(40.0))

			summary, err := service.WeightSummary(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(summary.ActiveTotal).To(Equal(60.0))
		})

		It("cascade deactivates the category and its criteria together", func() {
			cat := seedCategory("Communication", 40, true)
			for _, name := range []string{"Clarity", "Listening", "Writing"} {
				seedCriteria(cat.ID, name, true)
			}

			Expect(service.CascadeDeactivate(ctx, cat.ID, admin)).To(Succeed())

			var activeCriteria int64
			Expect(db.Model(&criteriaDatamodel.Criteria{}).Where("is_active = ?", true).Count(&activeCriteria).Error).To(Succeed())
			Expect(activeCriteria).To(BeZero())

			found, err := repo.GetByID(ctx, cat.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(found.IsActive).To(BeFalse())
		})

		It("rolls back the criteria when the category update fails", func() {
			cat := seedCategory("Communication", 40, true)
			for _, name := range []string{"Clarity", "Listening", "Writing"} {
				seedCriteria(cat.ID, name, true)
			}
			failCategoryUpdates = true

			err := service.CascadeDeactivate(ctx, cat.ID, admin)
			var txErr *category.TransactionError
			Expect(errors.As(err, &txErr)).To(BeTrue())
			Expect(errors.Is(err, errInjected)).To(BeTrue())

			var activeCriteria int64
			Expect(db.Model(&criteriaDatamodel.Criteria{}).Where("is_active = ?", true).Count(&activeCriteria).Error).To(Succeed())
			Expect(activeCriteria).To(Equal(int64(3)))

			found, err := repo.GetByID(ctx, cat.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(found.IsActive).To(BeTrue())
		})

		It("refuses to delete a category referenced by an inactive criteria", func() {
			cat := seedCategory("Legacy", 0, false)
			seedCriteria(cat.ID, "Old rubric", false)

			err := service.DeleteCategory(ctx, cat.ID, admin)
			var dependent *category.HasDependentCriteriaError
			Expect(errors.As(err, &dependent)).To(BeTrue())

			found, err := repo.GetByID(ctx, cat.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(found).NotTo(BeNil())
		})

		It("deletes an unreferenced category", func() {
			cat := seedCategory("Scratch", 0, true)
			Expect(service.DeleteCategory(ctx, cat.ID, admin)).To(Succeed())

			found, err := repo.GetByID(ctx, cat.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(found).To(BeNil())
		})
	})
})
