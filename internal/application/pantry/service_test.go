package pantry

import (
	"context"
	stderrors "errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap/zaptest"

	"github.com/pantrychef/backend/internal/domain/pantry"
	"github.com/pantrychef/backend/internal/infrastructure/persistence/jsonfile"
	"github.com/pantrychef/backend/internal/ports/inbound"
	"github.com/pantrychef/backend/pkg/errors"
	"github.com/pantrychef/backend/test/testutils"
)

type ServiceTestSuite struct {
	suite.Suite
	repo    *testutils.MockPantryRepository
	service *Service
	factory *testutils.PantryItemFactory
	ctx     context.Context
}

func (suite *ServiceTestSuite) SetupTest() {
	suite.repo = new(testutils.MockPantryRepository)
	suite.service = NewService(suite.repo, Config{UpsertByName: true}, zaptest.NewLogger(suite.T()))
	suite.factory = testutils.NewPantryItemFactory(42)
	suite.ctx = context.Background()
}

func (suite *ServiceTestSuite) TestList() {
	suite.Run("ShouldReturnItems", func() {
		// Arrange
		items := suite.factory.CreateItems(3)
		suite.repo.On("List", suite.ctx).Return(items, nil).Once()

		// Act
		result, err := suite.service.List(suite.ctx)

		// Assert
		require.NoError(suite.T(), err)
		assert.Equal(suite.T(), items, result)
	})

	suite.Run("NilFromStore_ShouldReturnEmptySlice", func() {
		// Arrange
		suite.repo.On("List", suite.ctx).Return(nil, nil).Once()

		// Act
		result, err := suite.service.List(suite.ctx)

		// Assert
		require.NoError(suite.T(), err)
		assert.NotNil(suite.T(), result)
		assert.Empty(suite.T(), result)
	})

	suite.Run("StoreFailure_ShouldBeDatabaseError", func() {
		// Arrange
		suite.repo.On("List", suite.ctx).Return(nil, stderrors.New("disk on fire")).Once()

		// Act
		_, err := suite.service.List(suite.ctx)

		// Assert
		assert.True(suite.T(), errors.Is(err, errors.CodeDatabaseError))
	})
}

func (suite *ServiceTestSuite) TestAdd() {
	suite.Run("NewName_ShouldCreate", func() {
		// Arrange
		suite.repo.On("FindByName", suite.ctx, "Rice").Return(nil, pantry.ErrItemNotFound).Once()
		suite.repo.On("Create", suite.ctx, mock.AnythingOfType("*pantry.Item")).
			Run(func(args mock.Arguments) {
				args.Get(1).(*pantry.Item).ID = "7"
			}).
			Return(nil).Once()

		// Act
		result, err := suite.service.Add(suite.ctx, inbound.AddItemCommand{Name: " Rice ", Quantity: 2, Unit: "kg"})

		// Assert
		require.NoError(suite.T(), err)
		assert.True(suite.T(), result.Created)
		assert.Equal(suite.T(), "7", result.Item.ID)
		assert.Equal(suite.T(), "Rice", result.Item.Name)
		assert.Equal(suite.T(), 2.0, result.Item.Quantity)
		assert.Equal(suite.T(), "kg", result.Item.Unit)
	})

	suite.Run("ExistingName_ShouldUpsert", func() {
		// Arrange
		existing := testutils.NewPantryItemBuilder().WithID("3").WithName("rice").WithQuantity(1, "cups").MustBuild()
		suite.repo.On("FindByName", suite.ctx, "RICE").Return(&existing, nil).Once()
		suite.repo.On("Update", suite.ctx, mock.MatchedBy(func(item *pantry.Item) bool {
			return item.ID == "3" && item.Quantity == 5 && item.Unit == "units"
		})).Return(nil).Once()

		// Act
		result, err := suite.service.Add(suite.ctx, inbound.AddItemCommand{Name: "RICE", Quantity: 5})

		// Assert
		require.NoError(suite.T(), err)
		assert.False(suite.T(), result.Created)
		assert.Equal(suite.T(), "rice", result.Item.Name)
		assert.Equal(suite.T(), 5.0, result.Item.Quantity)
	})

	suite.Run("InvalidQuantity_ShouldFailWithoutTouchingStore", func() {
		// Arrange
		repo := new(testutils.MockPantryRepository)
		service := NewService(repo, Config{UpsertByName: true}, zaptest.NewLogger(suite.T()))

		// Act
		_, err := service.Add(suite.ctx, inbound.AddItemCommand{Name: "Salt", Quantity: 0})

		// Assert
		require.Error(suite.T(), err)
		assert.True(suite.T(), errors.Is(err, errors.CodeValidationFailed))
		repo.AssertNotCalled(suite.T(), "Create", mock.Anything, mock.Anything)
		repo.AssertNotCalled(suite.T(), "FindByName", mock.Anything, mock.Anything)
	})

	suite.Run("BlankName_ShouldFail", func() {
		// Act
		_, err := suite.service.Add(suite.ctx, inbound.AddItemCommand{Name: "  ", Quantity: 1})

		// Assert
		var appErr *errors.AppError
		require.ErrorAs(suite.T(), err, &appErr)
		assert.Equal(suite.T(), "Item name is required", appErr.Message)
	})

	suite.Run("WithoutUpsert_ShouldInsertAndMapDuplicates", func() {
		// Arrange
		repo := new(testutils.MockPantryRepository)
		service := NewService(repo, Config{UpsertByName: false}, zaptest.NewLogger(suite.T()))
		repo.On("Create", suite.ctx, mock.Anything).Return(pantry.ErrDuplicateName).Once()

		// Act
		_, err := service.Add(suite.ctx, inbound.AddItemCommand{Name: "Eggs", Quantity: 6})

		// Assert
		assert.True(suite.T(), errors.Is(err, errors.CodeConflict))
		repo.AssertNotCalled(suite.T(), "FindByName", mock.Anything, mock.Anything)
	})
}

func (suite *ServiceTestSuite) TestUpdate() {
	suite.Run("ShouldApplyPatch", func() {
		// Arrange
		item := testutils.NewPantryItemBuilder().WithID("1").WithName("Milk").WithQuantity(1, "l").MustBuild()
		quantity := 3.0
		suite.repo.On("FindByID", suite.ctx, "1").Return(&item, nil).Once()
		suite.repo.On("Update", suite.ctx, mock.AnythingOfType("*pantry.Item")).Return(nil).Once()

		// Act
		updated, err := suite.service.Update(suite.ctx, "1", pantry.Patch{Quantity: &quantity})

		// Assert
		require.NoError(suite.T(), err)
		assert.Equal(suite.T(), 3.0, updated.Quantity)
		assert.Equal(suite.T(), "Milk", updated.Name)
	})

	suite.Run("UnknownID_ShouldBeNotFound", func() {
		// Arrange
		suite.repo.On("FindByID", suite.ctx, "404").Return(nil, pantry.ErrItemNotFound).Once()

		// Act
		_, err := suite.service.Update(suite.ctx, "404", pantry.Patch{})

		// Assert
		var appErr *errors.AppError
		require.ErrorAs(suite.T(), err, &appErr)
		assert.Equal(suite.T(), errors.CodePantryItemNotFound, appErr.Code)
		assert.Equal(suite.T(), 404, appErr.StatusCode())
	})

	suite.Run("NegativeQuantity_ShouldFail", func() {
		// Arrange
		quantity := -1.0

		// Act
		_, err := suite.service.Update(suite.ctx, "1", pantry.Patch{Quantity: &quantity})

		// Assert
		assert.True(suite.T(), errors.Is(err, errors.CodeValidationFailed))
	})
}

func (suite *ServiceTestSuite) TestDelete() {
	suite.Run("Removed_ShouldReportDeleted", func() {
		// Arrange
		suite.repo.On("Delete", suite.ctx, "1").Return(true, nil).Once()

		// Act
		result, err := suite.service.Delete(suite.ctx, "1")

		// Assert
		require.NoError(suite.T(), err)
		assert.Equal(suite.T(), &inbound.DeleteItemResult{ID: "1", Deleted: true}, result)
	})

	suite.Run("FileStoreMiss_ShouldBeNoOp", func() {
		// Arrange
		suite.repo.On("Delete", suite.ctx, "ghost").Return(false, nil).Once()

		// Act
		result, err := suite.service.Delete(suite.ctx, "ghost")

		// Assert
		require.NoError(suite.T(), err)
		assert.False(suite.T(), result.Deleted)
	})

	suite.Run("RelationalMiss_ShouldBeNotFound", func() {
		// Arrange
		suite.repo.On("Delete", suite.ctx, "99").Return(false, pantry.ErrItemNotFound).Once()

		// Act
		_, err := suite.service.Delete(suite.ctx, "99")

		// Assert
		assert.True(suite.T(), errors.Is(err, errors.CodePantryItemNotFound))
	})
}

func (suite *ServiceTestSuite) TestShoppingList() {
	suite.Run("ShouldReturnMissingIngredients", func() {
		// Arrange
		items := []pantry.Item{
			testutils.NewPantryItemBuilder().WithName("Rice").MustBuild(),
			testutils.NewPantryItemBuilder().WithName("Cumin").MustBuild(),
		}
		suite.repo.On("List", suite.ctx).Return(items, nil).Once()

		// Act
		missing, err := suite.service.ShoppingList(suite.ctx, []string{"rice", "Salt", "cumin"})

		// Assert
		require.NoError(suite.T(), err)
		assert.Equal(suite.T(), []string{"Salt"}, missing)
	})
}

// slowLookupStore widens the gap between the name lookup and the insert
type slowLookupStore struct {
	*jsonfile.PantryStore
}

func (s slowLookupStore) FindByName(ctx context.Context, name string) (*pantry.Item, error) {
	item, err := s.PantryStore.FindByName(ctx, name)
	time.Sleep(2 * time.Millisecond)
	return item, err
}

func TestService_ConcurrentAddsOfSameNameStoreOneItem(t *testing.T) {
	logger := zaptest.NewLogger(t)
	store := jsonfile.NewPantryStore(filepath.Join(t.TempDir(), "db.json"), logger)
	service := NewService(slowLookupStore{store}, Config{UpsertByName: true}, logger)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := service.Add(ctx, inbound.AddItemCommand{Name: "Rice", Quantity: 2, Unit: "kg"})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	items, err := service.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Rice", items[0].Name)
}

func TestServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ServiceTestSuite))
}
