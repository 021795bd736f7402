package repository_test

import (
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/effective-orders/internal/domain"
	"github.com/nikolayk812/effective-orders/internal/port"
	"github.com/nikolayk812/effective-orders/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type productRepositorySuite struct {
	suite.Suite

	repo port.ProductRepository
	pool *pgxpool.Pool
}

func TestProductRepositorySuite(t *testing.T) {
	suite.Run(t, new(productRepositorySuite))
}

func (suite *productRepositorySuite) SetupSuite() {
	ctx := suite.T().Context()

	_, connStr, err := startPostgres(ctx)
	suite.Require().NoError(err)

	suite.pool, err = pgxpool.New(ctx, connStr)
	suite.Require().NoError(err)

	suite.repo, err = repository.NewProduct(suite.pool)
	suite.Require().NoError(err)
}

func (suite *productRepositorySuite) TearDownSuite() {
	if suite.pool != nil {
		suite.pool.Close()
	}
}

func (suite *productRepositorySuite) TestCreateProduct() {
	tests := []struct {
		name      string
		product   domain.Product
		wantError bool
	}{
		{
			name:    "with id: ok",
			product: *randomProductPurchasable(),
		},
		{
			name: "without id: assigned",
			product: domain.Product{
				ProductTitle: gofakeit.ProductName(),
				ProductPrice: 1500,
			},
		},
		{
			name:      "blank title: error",
			product:   domain.Product{ProductPrice: 1500},
			wantError: true,
		},
		{
			name:      "zero price: error",
			product:   domain.Product{ProductTitle: gofakeit.ProductName()},
			wantError: true,
		},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			t := suite.T()
			ctx := t.Context()

			product := tt.product
			err := suite.repo.CreateProduct(ctx, &product)
			if tt.wantError {
				var verrs domain.ValidationErrors
				require.ErrorAs(t, err, &verrs)
				return
			}
			require.NoError(t, err)
			assert.NotEqual(t, uuid.Nil, product.ID)
			assert.False(t, product.CreatedAt.IsZero())

			got, err := suite.repo.GetProduct(ctx, product.ID.String())
			require.NoError(t, err)

			diff := cmp.Diff(product, got, cmpopts.IgnoreFields(domain.Product{}, "CreatedAt", "UpdatedAt"))
			assert.Empty(t, diff)
		})
	}
}

func (suite *productRepositorySuite) TestGetProduct_NotFound() {
	t := suite.T()
	ctx := t.Context()

	_, err := suite.repo.GetProduct(ctx, uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrProductNotFound)

	_, err = suite.repo.GetProduct(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}
