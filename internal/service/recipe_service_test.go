package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	apperrors "foodgram/internal/errors"
	"foodgram/internal/model"
	"foodgram/internal/repository"
)

type recipeServiceMocks struct {
	recipeRepo     *MockRecipeRepository
	tagRepo        *MockTagRepository
	ingredientRepo *MockIngredientRepository
	relationRepo   *MockRelationRepository
	mediaStore     *MockMediaStore
}

func newRecipeService() (RecipeService, *recipeServiceMocks) {
	m := &recipeServiceMocks{
		recipeRepo:     new(MockRecipeRepository),
		tagRepo:        new(MockTagRepository),
		ingredientRepo: new(MockIngredientRepository),
		relationRepo:   new(MockRelationRepository),
		mediaStore:     new(MockMediaStore),
	}
	svc := NewRecipeService(m.recipeRepo, m.tagRepo, m.ingredientRepo, m.relationRepo, m.mediaStore, "http://localhost:8080")
	return svc, m
}

func assertFieldError(t *testing.T, err error, field string) {
	t.Helper()
	var vErr *apperrors.ValidationError
	assert.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Fields, field)
}

func validRecipeInput() RecipeInput {
	return RecipeInput{
		Name:        "Borscht",
		Text:        "Simmer until done.",
		Image:       "data:image/png;base64,aGVsbG8=",
		CookingTime: 45,
		TagIDs:      []uint{1},
		Ingredients: []IngredientAmount{{ID: 10, Amount: 500}},
	}
}

func TestRecipeService_Create_Validation(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(*RecipeInput)
		setupMocks func(*recipeServiceMocks)
		wantField  string
	}{
		{
			name:      "empty tags",
			mutate:    func(in *RecipeInput) { in.TagIDs = nil },
			wantField: "tags",
		},
		{
			name:      "duplicate tags",
			mutate:    func(in *RecipeInput) { in.TagIDs = []uint{1, 1} },
			wantField: "tags",
		},
		{
			name:   "unknown tag id",
			mutate: func(in *RecipeInput) { in.TagIDs = []uint{99} },
			setupMocks: func(m *recipeServiceMocks) {
				m.tagRepo.On("FindByIDs", mock.Anything, []uint{99}).Return([]model.Tag{}, nil)
			},
			wantField: "tags",
		},
		{
			name:   "empty ingredients",
			mutate: func(in *RecipeInput) { in.Ingredients = nil },
			setupMocks: func(m *recipeServiceMocks) {
				m.tagRepo.On("FindByIDs", mock.Anything, []uint{1}).Return([]model.Tag{{ID: 1}}, nil)
			},
			wantField: "ingredients",
		},
		{
			name: "duplicate ingredients",
			mutate: func(in *RecipeInput) {
				in.Ingredients = []IngredientAmount{{ID: 10, Amount: 5}, {ID: 10, Amount: 7}}
			},
			setupMocks: func(m *recipeServiceMocks) {
				m.tagRepo.On("FindByIDs", mock.Anything, []uint{1}).Return([]model.Tag{{ID: 1}}, nil)
			},
			wantField: "ingredients",
		},
		{
			name: "amount below minimum",
			mutate: func(in *RecipeInput) {
				in.Ingredients = []IngredientAmount{{ID: 10, Amount: 0}}
			},
			setupMocks: func(m *recipeServiceMocks) {
				m.tagRepo.On("FindByIDs", mock.Anything, []uint{1}).Return([]model.Tag{{ID: 1}}, nil)
			},
			wantField: "ingredients",
		},
		{
			name: "amount above maximum",
			mutate: func(in *RecipeInput) {
				in.Ingredients = []IngredientAmount{{ID: 10, Amount: 32001}}
			},
			setupMocks: func(m *recipeServiceMocks) {
				m.tagRepo.On("FindByIDs", mock.Anything, []uint{1}).Return([]model.Tag{{ID: 1}}, nil)
			},
			wantField: "ingredients",
		},
		{
			name: "unknown ingredient ids reported together",
			mutate: func(in *RecipeInput) {
				in.Ingredients = []IngredientAmount{{ID: 10, Amount: 5}, {ID: 11, Amount: 5}, {ID: 12, Amount: 5}}
			},
			setupMocks: func(m *recipeServiceMocks) {
				m.tagRepo.On("FindByIDs", mock.Anything, []uint{1}).Return([]model.Tag{{ID: 1}}, nil)
				m.ingredientRepo.On("FindByIDs", mock.Anything, []uint{10, 11, 12}).
					Return([]model.Ingredient{{ID: 11}}, nil)
			},
			wantField: "ingredients",
		},
		{
			name:   "cooking time below minimum",
			mutate: func(in *RecipeInput) { in.CookingTime = 0 },
			setupMocks: func(m *recipeServiceMocks) {
				m.tagRepo.On("FindByIDs", mock.Anything, []uint{1}).Return([]model.Tag{{ID: 1}}, nil)
				m.ingredientRepo.On("FindByIDs", mock.Anything, []uint{10}).Return([]model.Ingredient{{ID: 10}}, nil)
			},
			wantField: "cooking_time",
		},
		{
			name:   "cooking time above maximum",
			mutate: func(in *RecipeInput) { in.CookingTime = 32001 },
			setupMocks: func(m *recipeServiceMocks) {
				m.tagRepo.On("FindByIDs", mock.Anything, []uint{1}).Return([]model.Tag{{ID: 1}}, nil)
				m.ingredientRepo.On("FindByIDs", mock.Anything, []uint{10}).Return([]model.Ingredient{{ID: 10}}, nil)
			},
			wantField: "cooking_time",
		},
		{
			name:   "name already used by this author",
			mutate: func(in *RecipeInput) {},
			setupMocks: func(m *recipeServiceMocks) {
				m.tagRepo.On("FindByIDs", mock.Anything, []uint{1}).Return([]model.Tag{{ID: 1}}, nil)
				m.ingredientRepo.On("FindByIDs", mock.Anything, []uint{10}).Return([]model.Ingredient{{ID: 10}}, nil)
				m.recipeRepo.On("ExistsByAuthorAndName", mock.Anything, uint(1), "Borscht", uint(0)).Return(true, nil)
			},
			wantField: "name",
		},
		{
			name:   "missing image",
			mutate: func(in *RecipeInput) { in.Image = "" },
			setupMocks: func(m *recipeServiceMocks) {
				m.tagRepo.On("FindByIDs", mock.Anything, []uint{1}).Return([]model.Tag{{ID: 1}}, nil)
				m.ingredientRepo.On("FindByIDs", mock.Anything, []uint{10}).Return([]model.Ingredient{{ID: 10}}, nil)
				m.recipeRepo.On("ExistsByAuthorAndName", mock.Anything, uint(1), "Borscht", uint(0)).Return(false, nil)
			},
			wantField: "image",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newRecipeService()
			if tt.setupMocks != nil {
				tt.setupMocks(m)
			}

			input := validRecipeInput()
			tt.mutate(&input)

			got, err := svc.Create(context.Background(), 1, input)
			assert.Nil(t, got)
			assertFieldError(t, err, tt.wantField)
			m.recipeRepo.AssertNotCalled(t, "Create")
		})
	}
}

func TestRecipeService_Create_BoundaryAmounts(t *testing.T) {
	svc, m := newRecipeService()

	input := validRecipeInput()
	input.Ingredients = []IngredientAmount{{ID: 10, Amount: 1}, {ID: 11, Amount: 32000}}

	m.tagRepo.On("FindByIDs", mock.Anything, []uint{1}).Return([]model.Tag{{ID: 1, Name: "dinner", Slug: "dinner"}}, nil)
	m.ingredientRepo.On("FindByIDs", mock.Anything, []uint{10, 11}).
		Return([]model.Ingredient{{ID: 10, Name: "salt", MeasurementUnit: "g"}, {ID: 11, Name: "flour", MeasurementUnit: "g"}}, nil)
	m.recipeRepo.On("ExistsByAuthorAndName", mock.Anything, uint(1), "Borscht", uint(0)).Return(false, nil)
	m.mediaStore.On("SaveBase64", mock.Anything, input.Image, "recipes/images").
		Return("http://media/recipes/images/x.png", nil)
	m.recipeRepo.On("ShortURLExists", mock.Anything, mock.AnythingOfType("string")).Return(false, nil)
	m.recipeRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.Recipe"), mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			args.Get(1).(*model.Recipe).ID = 7
		}).Return(nil)

	stored := &model.Recipe{
		ID:          7,
		AuthorID:    1,
		Name:        "Borscht",
		Image:       "http://media/recipes/images/x.png",
		CookingTime: 45,
		Author:      model.UserProfile{ID: 1, Username: "cook"},
		Tags:        []model.Tag{{ID: 1, Name: "dinner", Slug: "dinner"}},
		RecipeIngredients: []model.IngredientRecipe{
			{IngredientID: 10, Amount: 1, Ingredient: model.Ingredient{ID: 10, Name: "salt", MeasurementUnit: "g"}},
			{IngredientID: 11, Amount: 32000, Ingredient: model.Ingredient{ID: 11, Name: "flour", MeasurementUnit: "g"}},
		},
	}
	m.recipeRepo.On("FindByID", mock.Anything, uint(7)).Return(stored, nil)
	m.relationRepo.On("FavoriteExists", mock.Anything, uint(1), uint(7)).Return(false, nil)
	m.relationRepo.On("CartItemExists", mock.Anything, uint(1), uint(7)).Return(false, nil)
	m.relationRepo.On("FollowExists", mock.Anything, uint(1), uint(1)).Return(false, nil)

	got, err := svc.Create(context.Background(), 1, input)

	assert.NoError(t, err)
	assert.NotNil(t, got)
	assert.Equal(t, uint(7), got.ID)
	assert.Len(t, got.Ingredients, 2)
	assert.Equal(t, 1, got.Ingredients[0].Amount)
	assert.Equal(t, 32000, got.Ingredients[1].Amount)
	m.recipeRepo.AssertExpectations(t)
}

func TestRecipeService_Update_NotOwner(t *testing.T) {
	svc, m := newRecipeService()

	m.recipeRepo.On("FindByID", mock.Anything, uint(5)).Return(&model.Recipe{ID: 5, AuthorID: 1}, nil)

	got, err := svc.Update(context.Background(), 5, 2, validRecipeInput())

	assert.Nil(t, got)
	assert.ErrorIs(t, err, apperrors.ErrNotOwner)
	m.recipeRepo.AssertNotCalled(t, "Update")
}

func TestRecipeService_Update_ReplacesIngredientSet(t *testing.T) {
	svc, m := newRecipeService()

	input := validRecipeInput()
	input.Image = ""
	input.TagIDs = []uint{2}
	input.Ingredients = []IngredientAmount{{ID: 20, Amount: 250}, {ID: 21, Amount: 1}}

	existing := &model.Recipe{
		ID:          5,
		AuthorID:    1,
		Name:        "Borscht",
		Image:       "http://media/recipes/images/old.png",
		CookingTime: 30,
		ShortURL:    "ab12cd34",
		RecipeIngredients: []model.IngredientRecipe{
			{ID: 100, RecipeID: 5, IngredientID: 10, Amount: 500},
		},
	}
	m.recipeRepo.On("FindByID", mock.Anything, uint(5)).Return(existing, nil).Once()

	m.tagRepo.On("FindByIDs", mock.Anything, []uint{2}).
		Return([]model.Tag{{ID: 2, Name: "dinner", Slug: "dinner"}}, nil)
	m.ingredientRepo.On("FindByIDs", mock.Anything, []uint{20, 21}).
		Return([]model.Ingredient{{ID: 20, Name: "beets", MeasurementUnit: "g"}, {ID: 21, Name: "dill", MeasurementUnit: "g"}}, nil)
	m.recipeRepo.On("ExistsByAuthorAndName", mock.Anything, uint(1), "Borscht", uint(5)).Return(false, nil)

	// The stored set must be exactly the submitted one; nothing from the old
	// set may survive the replace.
	m.recipeRepo.On("Update", mock.Anything,
		mock.MatchedBy(func(recipe *model.Recipe) bool {
			return recipe.ID == 5 && recipe.Image == "http://media/recipes/images/old.png"
		}),
		mock.MatchedBy(func(tags []model.Tag) bool {
			return len(tags) == 1 && tags[0].ID == 2
		}),
		mock.MatchedBy(func(items []model.IngredientRecipe) bool {
			return len(items) == 2 &&
				items[0].IngredientID == 20 && items[0].Amount == 250 &&
				items[1].IngredientID == 21 && items[1].Amount == 1
		}),
	).Return(nil)

	updated := &model.Recipe{
		ID:          5,
		AuthorID:    1,
		Name:        "Borscht",
		Image:       "http://media/recipes/images/old.png",
		CookingTime: 45,
		ShortURL:    "ab12cd34",
		Author:      model.UserProfile{ID: 1, Username: "cook"},
		Tags:        []model.Tag{{ID: 2, Name: "dinner", Slug: "dinner"}},
		RecipeIngredients: []model.IngredientRecipe{
			{IngredientID: 20, Amount: 250, Ingredient: model.Ingredient{ID: 20, Name: "beets", MeasurementUnit: "g"}},
			{IngredientID: 21, Amount: 1, Ingredient: model.Ingredient{ID: 21, Name: "dill", MeasurementUnit: "g"}},
		},
	}
	m.recipeRepo.On("FindByID", mock.Anything, uint(5)).Return(updated, nil).Once()
	m.relationRepo.On("FavoriteExists", mock.Anything, uint(1), uint(5)).Return(false, nil)
	m.relationRepo.On("CartItemExists", mock.Anything, uint(1), uint(5)).Return(false, nil)
	m.relationRepo.On("FollowExists", mock.Anything, uint(1), uint(1)).Return(false, nil)

	got, err := svc.Update(context.Background(), 5, 1, input)

	assert.NoError(t, err)
	if assert.NotNil(t, got) && assert.Len(t, got.Ingredients, 2) {
		assert.Equal(t, uint(20), got.Ingredients[0].ID)
		assert.Equal(t, 250, got.Ingredients[0].Amount)
		assert.Equal(t, uint(21), got.Ingredients[1].ID)
		assert.Equal(t, 1, got.Ingredients[1].Amount)
	}
	m.mediaStore.AssertNotCalled(t, "SaveBase64")
	m.recipeRepo.AssertExpectations(t)
}

func TestRecipeService_Delete(t *testing.T) {
	t.Run("not owner", func(t *testing.T) {
		svc, m := newRecipeService()
		m.recipeRepo.On("FindByID", mock.Anything, uint(5)).Return(&model.Recipe{ID: 5, AuthorID: 1}, nil)

		err := svc.Delete(context.Background(), 5, 2)

		assert.ErrorIs(t, err, apperrors.ErrNotOwner)
		m.recipeRepo.AssertNotCalled(t, "Delete")
	})

	t.Run("not found", func(t *testing.T) {
		svc, m := newRecipeService()
		m.recipeRepo.On("FindByID", mock.Anything, uint(5)).Return(nil, gorm.ErrRecordNotFound)

		err := svc.Delete(context.Background(), 5, 1)

		assert.ErrorIs(t, err, apperrors.ErrRecipeNotFound)
	})

	t.Run("owner deletes", func(t *testing.T) {
		svc, m := newRecipeService()
		m.recipeRepo.On("FindByID", mock.Anything, uint(5)).Return(&model.Recipe{ID: 5, AuthorID: 1}, nil)
		m.recipeRepo.On("Delete", mock.Anything, uint(5)).Return(nil)

		err := svc.Delete(context.Background(), 5, 1)

		assert.NoError(t, err)
		m.recipeRepo.AssertExpectations(t)
	})
}

func TestRecipeService_List_AnonymousViewerFilters(t *testing.T) {
	truthy := true
	falsy := false

	t.Run("truthy favorited filter yields empty set", func(t *testing.T) {
		svc, m := newRecipeService()

		views, total, err := svc.List(context.Background(), 0, RecipeListParams{Favorited: &truthy, Limit: 6})

		assert.NoError(t, err)
		assert.Empty(t, views)
		assert.Equal(t, int64(0), total)
		m.recipeRepo.AssertNotCalled(t, "List")
	})

	t.Run("falsy filters are dropped", func(t *testing.T) {
		svc, m := newRecipeService()
		m.recipeRepo.On("List", mock.Anything, mock.MatchedBy(func(f repository.RecipeListFilter) bool {
			return f.Favorited == nil && f.InCart == nil
		}), 0, 6).Return([]model.Recipe{}, int64(0), nil)

		_, _, err := svc.List(context.Background(), 0, RecipeListParams{Favorited: &falsy, InCart: &falsy, Limit: 6})

		assert.NoError(t, err)
		m.recipeRepo.AssertExpectations(t)
	})
}

func TestRecipeService_GetShortLink(t *testing.T) {
	t.Run("existing token", func(t *testing.T) {
		svc, m := newRecipeService()
		m.recipeRepo.On("FindByID", mock.Anything, uint(3)).
			Return(&model.Recipe{ID: 3, AuthorID: 1, ShortURL: "ab12cd34"}, nil)

		link, err := svc.GetShortLink(context.Background(), 3)

		assert.NoError(t, err)
		assert.Equal(t, "http://localhost:8080/s/ab12cd34", link)
	})

	t.Run("token generated lazily with collision retry", func(t *testing.T) {
		svc, m := newRecipeService()
		m.recipeRepo.On("FindByID", mock.Anything, uint(3)).
			Return(&model.Recipe{ID: 3, AuthorID: 1}, nil)
		m.recipeRepo.On("ShortURLExists", mock.Anything, mock.AnythingOfType("string")).Return(true, nil).Once()
		m.recipeRepo.On("ShortURLExists", mock.Anything, mock.AnythingOfType("string")).Return(false, nil).Once()
		m.recipeRepo.On("SetShortURL", mock.Anything, uint(3), mock.AnythingOfType("string")).Return(nil)

		link, err := svc.GetShortLink(context.Background(), 3)

		assert.NoError(t, err)
		assert.Contains(t, link, "http://localhost:8080/s/")
		assert.Len(t, link, len("http://localhost:8080/s/")+model.ShortURLLength)
		m.recipeRepo.AssertExpectations(t)
	})
}

func TestRecipeService_ResolveShortLink(t *testing.T) {
	t.Run("known token", func(t *testing.T) {
		svc, m := newRecipeService()
		m.recipeRepo.On("FindByShortURL", mock.Anything, "ab12cd34").Return(&model.Recipe{ID: 9}, nil)

		id, err := svc.ResolveShortLink(context.Background(), "ab12cd34")

		assert.NoError(t, err)
		assert.Equal(t, uint(9), id)
	})

	t.Run("unknown token", func(t *testing.T) {
		svc, m := newRecipeService()
		m.recipeRepo.On("FindByShortURL", mock.Anything, "nope1234").Return(nil, gorm.ErrRecordNotFound)

		_, err := svc.ResolveShortLink(context.Background(), "nope1234")

		assert.ErrorIs(t, err, apperrors.ErrRecipeNotFound)
	})
}
