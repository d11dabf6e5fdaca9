package gorm_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/pantrychef/backend/internal/domain/pantry"
	"github.com/pantrychef/backend/internal/domain/recipe"
	"github.com/pantrychef/backend/internal/infrastructure/persistence/gorm"
	"github.com/pantrychef/backend/internal/ports/outbound"
	"github.com/pantrychef/backend/test/testutils"
)

type PantryRepositoryTestSuite struct {
	suite.Suite
	autoMigrate bool
	repo        *gorm.PantryRepository
	ctx         context.Context
}

func (suite *PantryRepositoryTestSuite) SetupTest() {
	suite.reset()
}

func (suite *PantryRepositoryTestSuite) SetupSubTest() {
	suite.reset()
}

func (suite *PantryRepositoryTestSuite) reset() {
	db := testutils.NewSQLiteDB(suite.T(), suite.autoMigrate)
	suite.repo = gorm.NewPantryRepository(db)
	suite.ctx = context.Background()
}

func (suite *PantryRepositoryTestSuite) create(name string, quantity float64, unit string) pantry.Item {
	item := testutils.NewPantryItemBuilder().WithName(name).WithQuantity(quantity, unit).MustBuild()
	require.NoError(suite.T(), suite.repo.Create(suite.ctx, &item))
	return item
}

func (suite *PantryRepositoryTestSuite) TestCreate() {
	suite.Run("ShouldAssignSequentialIDs", func() {
		// Act
		first := suite.create("Rice", 2, "kg")
		second := suite.create("Beans", 1, "can")

		// Assert
		assert.Equal(suite.T(), "1", first.ID)
		assert.Equal(suite.T(), "2", second.ID)
	})

	suite.Run("DuplicateName_ShouldFail", func() {
		// Arrange
		suite.create("Rice", 2, "kg")
		dup := testutils.NewPantryItemBuilder().WithName("Rice").MustBuild()

		// Act
		err := suite.repo.Create(suite.ctx, &dup)

		// Assert
		assert.ErrorIs(suite.T(), err, pantry.ErrDuplicateName)
	})

	suite.Run("DuplicateNameInOtherCase_ShouldFail", func() {
		// Arrange
		suite.create("Rice", 2, "kg")
		dup := testutils.NewPantryItemBuilder().WithName("rice").MustBuild()

		// Act
		err := suite.repo.Create(suite.ctx, &dup)

		// Assert
		assert.ErrorIs(suite.T(), err, pantry.ErrDuplicateName)
	})
}

func (suite *PantryRepositoryTestSuite) TestList() {
	suite.Run("Empty_ShouldReturnNoItems", func() {
		items, err := suite.repo.List(suite.ctx)

		require.NoError(suite.T(), err)
		assert.Empty(suite.T(), items)
	})

	suite.Run("ShouldKeepInsertionOrder", func() {
		// Arrange
		suite.create("Onion", 3, "units")
		suite.create("Garlic", 1, "head")

		// Act
		items, err := suite.repo.List(suite.ctx)

		// Assert
		require.NoError(suite.T(), err)
		assert.Equal(suite.T(), []string{"Onion", "Garlic"}, pantry.Names(items))
		assert.Equal(suite.T(), "head", items[1].Unit)
	})
}

func (suite *PantryRepositoryTestSuite) TestFind() {
	suite.Run("ByName_ShouldIgnoreCase", func() {
		// Arrange
		created := suite.create("Basmati Rice", 1, "kg")

		// Act
		found, err := suite.repo.FindByName(suite.ctx, "  BASMATI rice ")

		// Assert
		require.NoError(suite.T(), err)
		assert.Equal(suite.T(), created.ID, found.ID)
	})

	suite.Run("UnknownName_ShouldBeNotFound", func() {
		_, err := suite.repo.FindByName(suite.ctx, "saffron")

		assert.ErrorIs(suite.T(), err, pantry.ErrItemNotFound)
	})

	suite.Run("MalformedID_ShouldBeNotFound", func() {
		_, err := suite.repo.FindByID(suite.ctx, "abc")

		assert.ErrorIs(suite.T(), err, pantry.ErrItemNotFound)
	})
}

func (suite *PantryRepositoryTestSuite) TestUpdate() {
	suite.Run("ShouldPersistChanges", func() {
		// Arrange
		item := suite.create("Milk", 1, "l")
		item.Quantity = 0.5
		item.Notes = "half left"
		item.UpdatedAt = time.Now().UTC().Add(time.Minute)

		// Act
		err := suite.repo.Update(suite.ctx, &item)

		// Assert
		require.NoError(suite.T(), err)
		stored, err := suite.repo.FindByID(suite.ctx, item.ID)
		require.NoError(suite.T(), err)
		assert.Equal(suite.T(), 0.5, stored.Quantity)
		assert.Equal(suite.T(), "half left", stored.Notes)
	})

	suite.Run("UnknownID_ShouldBeNotFound", func() {
		item := testutils.NewPantryItemBuilder().WithID("42").MustBuild()

		err := suite.repo.Update(suite.ctx, &item)

		assert.ErrorIs(suite.T(), err, pantry.ErrItemNotFound)
	})

	suite.Run("RenameToExisting_ShouldBeDuplicate", func() {
		// Arrange
		suite.create("Salt", 1, "box")
		pepper := suite.create("Pepper", 1, "jar")
		pepper.Name = "Salt"

		// Act
		err := suite.repo.Update(suite.ctx, &pepper)

		// Assert
		assert.ErrorIs(suite.T(), err, pantry.ErrDuplicateName)
	})
}

func (suite *PantryRepositoryTestSuite) TestDelete() {
	suite.Run("ShouldRemoveItem", func() {
		// Arrange
		item := suite.create("Eggs", 12, "units")

		// Act
		deleted, err := suite.repo.Delete(suite.ctx, item.ID)

		// Assert
		require.NoError(suite.T(), err)
		assert.True(suite.T(), deleted)
		_, err = suite.repo.FindByID(suite.ctx, item.ID)
		assert.ErrorIs(suite.T(), err, pantry.ErrItemNotFound)
	})

	suite.Run("UnknownID_ShouldBeNotFound", func() {
		deleted, err := suite.repo.Delete(suite.ctx, "999")

		assert.False(suite.T(), deleted)
		assert.ErrorIs(suite.T(), err, pantry.ErrItemNotFound)
	})
}

func TestPantryRepositoryWithMigrations(t *testing.T) {
	suite.Run(t, &PantryRepositoryTestSuite{autoMigrate: false})
}

func TestPantryRepositoryWithAutoMigrate(t *testing.T) {
	suite.Run(t, &PantryRepositoryTestSuite{autoMigrate: true})
}

func TestRecipeLogRepository_Append(t *testing.T) {
	db := testutils.NewSQLiteDB(t, false)
	repo := gorm.NewRecipeLogRepository(db)
	ctx := context.Background()

	suggestion := recipe.Suggestion{
		Recipes: []recipe.Recipe{{Title: "Fried Rice", Steps: []string{"Fry"}}},
	}

	err := repo.Append(ctx, outbound.RecipeLogEntry{
		Mode:    recipe.ModeProfessional,
		Source:  recipe.SourceParsed,
		Title:   "Fried Rice",
		Payload: suggestion,
	})
	require.NoError(t, err)

	var stored gorm.RecipeLogModel
	require.NoError(t, db.First(&stored).Error)
	assert.Equal(t, "professional", stored.Mode)
	assert.Equal(t, "parsed", stored.Source)
	assert.Equal(t, "Fried Rice", stored.Title)
	assert.False(t, stored.CreatedAt.IsZero())

	var decoded recipe.Suggestion
	require.NoError(t, json.Unmarshal(stored.Payload, &decoded))
	assert.Equal(t, suggestion.Recipes[0].Title, decoded.Recipes[0].Title)
}
