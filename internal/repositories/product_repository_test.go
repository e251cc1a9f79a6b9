package repositories_test

import (
	"context"
	"math"
	"sync"
	"testing"

	"productsapi/internal/config"
	"productsapi/internal/database"
	"productsapi/internal/models"
	"productsapi/internal/repositories"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(b bool) *bool {
	return &b
}

// newRepositories returns every ProductRepository implementation, each backed
// by fresh, empty storage.
func newRepositories(t *testing.T) map[string]repositories.ProductRepository {
	t.Helper()

	cfg := config.DatabaseConfig{
		Driver:   config.DriverSQLite,
		URL:      "file:" + uuid.NewString() + "?mode=memory&cache=shared",
		LogLevel: "silent",
	}
	db, err := database.Open(cfg)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(context.Background(), db, cfg.Driver))
	t.Cleanup(func() {
		_ = database.Close(db)
	})

	return map[string]repositories.ProductRepository{
		"gorm":   repositories.NewGORMProductRepository(db),
		"memory": repositories.NewMemoryProductRepository(),
	}
}

func TestProductRepository_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	for name, repo := range newRepositories(t) {
		t.Run(name, func(t *testing.T) {
			created, err := repo.Create(ctx, models.ProductInput{Name: "Monitor Curvo", Price: 300})
			require.NoError(t, err)
			assert.NotZero(t, created.ID)
			assert.Equal(t, "Monitor Curvo", created.Name)
			assert.Equal(t, 300.0, created.Price)
			assert.True(t, created.Availability, "availability defaults to true")

			found, err := repo.GetByID(ctx, created.ID)
			require.NoError(t, err)
			assert.Equal(t, created.ID, found.ID)
			assert.Equal(t, created.Name, found.Name)
			assert.Equal(t, created.Price, found.Price)
			assert.Equal(t, created.Availability, found.Availability)
		})
	}
}

func TestProductRepository_CreateUnavailable(t *testing.T) {
	ctx := context.Background()
	for name, repo := range newRepositories(t) {
		t.Run(name, func(t *testing.T) {
			created, err := repo.Create(ctx, models.ProductInput{Name: "Teclado", Price: 45.5, Availability: boolPtr(false)})
			require.NoError(t, err)
			assert.False(t, created.Availability)

			found, err := repo.GetByID(ctx, created.ID)
			require.NoError(t, err)
			assert.False(t, found.Availability)
		})
	}
}

func TestProductRepository_CreateRejectsInvalidInput(t *testing.T) {
	ctx := context.Background()
	inputs := []models.ProductInput{
		{Name: "", Price: 10},
		{Name: "Mouse", Price: 0},
		{Name: "Mouse", Price: -1},
		{Name: "Mouse", Price: math.Inf(1)},
	}
	for name, repo := range newRepositories(t) {
		t.Run(name, func(t *testing.T) {
			for _, input := range inputs {
				_, err := repo.Create(ctx, input)
				assert.ErrorIs(t, err, models.ErrInvalidProduct)
			}
			products, err := repo.List(ctx)
			require.NoError(t, err)
			assert.Empty(t, products)
		})
	}
}

func TestProductRepository_ListNewestFirst(t *testing.T) {
	ctx := context.Background()
	for name, repo := range newRepositories(t) {
		t.Run(name, func(t *testing.T) {
			products, err := repo.List(ctx)
			require.NoError(t, err)
			assert.NotNil(t, products)
			assert.Empty(t, products)

			for _, n := range []string{"A", "B", "C"} {
				_, err := repo.Create(ctx, models.ProductInput{Name: n, Price: 1})
				require.NoError(t, err)
			}

			products, err = repo.List(ctx)
			require.NoError(t, err)
			require.Len(t, products, 3)
			assert.Equal(t, "C", products[0].Name)
			assert.Equal(t, "B", products[1].Name)
			assert.Equal(t, "A", products[2].Name)
			assert.Greater(t, products[0].ID, products[1].ID)
			assert.Greater(t, products[1].ID, products[2].ID)
		})
	}
}

func TestProductRepository_Update(t *testing.T) {
	ctx := context.Background()
	for name, repo := range newRepositories(t) {
		t.Run(name, func(t *testing.T) {
			created, err := repo.Create(ctx, models.ProductInput{Name: "Monitor", Price: 100})
			require.NoError(t, err)

			updated, err := repo.Update(ctx, created.ID, models.ProductInput{Name: "Monitor 4K", Price: 450, Availability: boolPtr(false)})
			require.NoError(t, err)
			assert.Equal(t, created.ID, updated.ID)
			assert.Equal(t, "Monitor 4K", updated.Name)
			assert.Equal(t, 450.0, updated.Price)
			assert.False(t, updated.Availability)

			found, err := repo.GetByID(ctx, created.ID)
			require.NoError(t, err)
			assert.Equal(t, "Monitor 4K", found.Name)
			assert.False(t, found.Availability)
		})
	}
}

func TestProductRepository_UpdateErrors(t *testing.T) {
	ctx := context.Background()
	for name, repo := range newRepositories(t) {
		t.Run(name, func(t *testing.T) {
			created, err := repo.Create(ctx, models.ProductInput{Name: "Monitor", Price: 100})
			require.NoError(t, err)

			_, err = repo.Update(ctx, created.ID, models.ProductInput{Name: "Monitor", Price: 100})
			assert.ErrorIs(t, err, models.ErrInvalidProduct, "availability is required on update")

			_, err = repo.Update(ctx, created.ID+100, models.ProductInput{Name: "Monitor", Price: 100, Availability: boolPtr(true)})
			assert.ErrorIs(t, err, models.ErrProductNotFound)
		})
	}
}

func TestProductRepository_ToggleAvailability(t *testing.T) {
	ctx := context.Background()
	for name, repo := range newRepositories(t) {
		t.Run(name, func(t *testing.T) {
			created, err := repo.Create(ctx, models.ProductInput{Name: "Silla", Price: 80})
			require.NoError(t, err)
			require.True(t, created.Availability)

			toggled, err := repo.ToggleAvailability(ctx, created.ID)
			require.NoError(t, err)
			assert.False(t, toggled.Availability)
			assert.Equal(t, created.Name, toggled.Name)
			assert.Equal(t, created.Price, toggled.Price)

			toggled, err = repo.ToggleAvailability(ctx, created.ID)
			require.NoError(t, err)
			assert.True(t, toggled.Availability, "toggling twice restores the original value")

			_, err = repo.ToggleAvailability(ctx, created.ID+100)
			assert.ErrorIs(t, err, models.ErrProductNotFound)
		})
	}
}

func TestProductRepository_Delete(t *testing.T) {
	ctx := context.Background()
	for name, repo := range newRepositories(t) {
		t.Run(name, func(t *testing.T) {
			first, err := repo.Create(ctx, models.ProductInput{Name: "A", Price: 1})
			require.NoError(t, err)
			second, err := repo.Create(ctx, models.ProductInput{Name: "B", Price: 2})
			require.NoError(t, err)

			require.NoError(t, repo.Delete(ctx, second.ID))

			_, err = repo.GetByID(ctx, second.ID)
			assert.ErrorIs(t, err, models.ErrProductNotFound)
			assert.ErrorIs(t, repo.Delete(ctx, second.ID), models.ErrProductNotFound)

			products, err := repo.List(ctx)
			require.NoError(t, err)
			require.Len(t, products, 1)
			assert.Equal(t, first.ID, products[0].ID)

			third, err := repo.Create(ctx, models.ProductInput{Name: "C", Price: 3})
			require.NoError(t, err)
			assert.Greater(t, third.ID, second.ID, "ids are never reused")
		})
	}
}

func TestProductRepository_GetUnknown(t *testing.T) {
	ctx := context.Background()
	for name, repo := range newRepositories(t) {
		t.Run(name, func(t *testing.T) {
			_, err := repo.GetByID(ctx, 42)
			assert.ErrorIs(t, err, models.ErrProductNotFound)
		})
	}
}

func TestMemoryProductRepository_ConcurrentCreate(t *testing.T) {
	repo := repositories.NewMemoryProductRepository()
	ctx := context.Background()

	const workers = 50
	ids := make(chan uint, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, err := repo.Create(ctx, models.ProductInput{Name: "Item", Price: 1})
			if assert.NoError(t, err) {
				ids <- p.ID
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[uint]bool)
	for id := range ids {
		assert.False(t, seen[id], "duplicate id %d", id)
		seen[id] = true
	}
	assert.Len(t, seen, workers)
}

func TestProductRepository_ConcurrentToggle(t *testing.T) {
	ctx := context.Background()
	for name, repo := range newRepositories(t) {
		t.Run(name, func(t *testing.T) {
			created, err := repo.Create(ctx, models.ProductInput{Name: "Silla", Price: 80})
			require.NoError(t, err)

			const toggles = 10
			var wg sync.WaitGroup
			for i := 0; i < toggles; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					_, err := repo.ToggleAvailability(ctx, created.ID)
					assert.NoError(t, err)
				}()
			}
			wg.Wait()

			// Every toggle negates the stored value, so an even count restores it.
			found, err := repo.GetByID(ctx, created.ID)
			require.NoError(t, err)
			assert.True(t, found.Availability)
		})
	}
}

func TestProductRepository_ConcurrentUpdate(t *testing.T) {
	ctx := context.Background()
	for name, repo := range newRepositories(t) {
		t.Run(name, func(t *testing.T) {
			created, err := repo.Create(ctx, models.ProductInput{Name: "Mesa", Price: 50})
			require.NoError(t, err)

			prices := []float64{10, 20, 30, 40, 50, 60}
			var wg sync.WaitGroup
			for i, price := range prices {
				i, price := i, price
				wg.Add(1)
				go func() {
					defer wg.Done()
					_, err := repo.Update(ctx, created.ID, models.ProductInput{
						Name:         "Mesa",
						Price:        price,
						Availability: boolPtr(i%2 == 0),
					})
					assert.NoError(t, err)
				}()
			}
			wg.Wait()

			// Last write wins: the row holds exactly one of the submitted states.
			found, err := repo.GetByID(ctx, created.ID)
			require.NoError(t, err)
			assert.Contains(t, prices, found.Price)
			idx := int(found.Price/10) - 1
			assert.Equal(t, idx%2 == 0, found.Availability)
		})
	}
}
