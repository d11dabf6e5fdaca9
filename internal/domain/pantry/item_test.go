package pantry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// ItemTestSuite covers pantry item validation and updates
type ItemTestSuite struct {
	suite.Suite
	now time.Time
}

func (suite *ItemTestSuite) SetupTest() {
	suite.now = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
}

func (suite *ItemTestSuite) TestNewItem() {
	suite.Run("ValidItem_ShouldApplyDefaults", func() {
		// Act
		item, err := NewItem("  Rice ", 2, "", " grains ", suite.now)

		// Assert
		require.NoError(suite.T(), err)
		assert.Equal(suite.T(), "Rice", item.Name)
		assert.Equal(suite.T(), 2.0, item.Quantity)
		assert.Equal(suite.T(), DefaultUnit, item.Unit)
		assert.Equal(suite.T(), "grains", item.Category)
		assert.Equal(suite.T(), suite.now, item.CreatedAt)
		assert.Empty(suite.T(), item.ID)
	})

	suite.Run("EmptyName_ShouldReturnError", func() {
		item, err := NewItem("   ", 1, "kg", "", suite.now)

		assert.Nil(suite.T(), item)
		assert.ErrorIs(suite.T(), err, ErrNameRequired)
	})

	suite.Run("NonPositiveQuantity_ShouldReturnError", func() {
		for _, q := range []float64{0, -1, -0.5} {
			item, err := NewItem("Rice", q, "kg", "", suite.now)

			assert.Nil(suite.T(), item)
			assert.ErrorIs(suite.T(), err, ErrInvalidQuantity)
		}
	})
}

func (suite *ItemTestSuite) TestApply() {
	suite.Run("PartialPatch_ShouldOnlyChangeProvidedFields", func() {
		// Arrange
		item, err := NewItem("Rice", 2, "kg", "grains", suite.now)
		require.NoError(suite.T(), err)
		quantity := 5.0
		later := suite.now.Add(time.Hour)

		// Act
		err = item.Apply(Patch{Quantity: &quantity}, later)

		// Assert
		require.NoError(suite.T(), err)
		assert.Equal(suite.T(), 5.0, item.Quantity)
		assert.Equal(suite.T(), "Rice", item.Name)
		assert.Equal(suite.T(), "kg", item.Unit)
		assert.Equal(suite.T(), later, item.UpdatedAt)
		assert.Equal(suite.T(), suite.now, item.CreatedAt)
	})

	suite.Run("InvalidPatch_ShouldLeaveItemUntouched", func() {
		item, err := NewItem("Rice", 2, "kg", "", suite.now)
		require.NoError(suite.T(), err)
		zero := 0.0
		blank := " "

		assert.ErrorIs(suite.T(), item.Apply(Patch{Quantity: &zero}, suite.now.Add(time.Hour)), ErrInvalidQuantity)
		assert.ErrorIs(suite.T(), item.Apply(Patch{Name: &blank}, suite.now.Add(time.Hour)), ErrNameRequired)
		assert.Equal(suite.T(), 2.0, item.Quantity)
		assert.Equal(suite.T(), suite.now, item.UpdatedAt)
	})

	suite.Run("BlankUnit_ShouldFallBackToDefault", func() {
		item, err := NewItem("Rice", 2, "kg", "", suite.now)
		require.NoError(suite.T(), err)
		blank := ""

		require.NoError(suite.T(), item.Apply(Patch{Unit: &blank}, suite.now))
		assert.Equal(suite.T(), DefaultUnit, item.Unit)
	})
}

func (suite *ItemTestSuite) TestLabelAndMatching() {
	item := Item{Name: "Chicken Breast", Quantity: 2, Unit: "pieces"}
	assert.Equal(suite.T(), "Chicken Breast (2 pieces)", item.Label())

	item.Quantity = 0.5
	assert.Equal(suite.T(), "Chicken Breast (0.5 pieces)", item.Label())

	assert.True(suite.T(), item.Matches("  chicken breast"))
	assert.False(suite.T(), item.Matches("chicken"))
	assert.Equal(suite.T(), []string{"Chicken Breast"}, Names([]Item{item}))
}

func (suite *ItemTestSuite) TestPatchIsEmpty() {
	assert.True(suite.T(), Patch{}.IsEmpty())
	notes := "use soon"
	assert.False(suite.T(), Patch{Notes: &notes}.IsEmpty())
}

func TestItemTestSuite(t *testing.T) {
	suite.Run(t, new(ItemTestSuite))
}
