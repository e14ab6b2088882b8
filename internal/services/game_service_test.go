package services_test

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/LukeA4591/GameTroveAPI/internal/models"
	"github.com/LukeA4591/GameTroveAPI/internal/repositories"
	"github.com/LukeA4591/GameTroveAPI/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type gameServiceFixture struct {
	games  *MockGameRepository
	refs   *MockReferenceRepository
	users  *MockUserRepository
	auth   *MockTokenResolver
	events *MockPublisher
}

func newGameService(strictSort bool) (*services.GameService, *gameServiceFixture) {
	f := &gameServiceFixture{
		games:  new(MockGameRepository),
		refs:   new(MockReferenceRepository),
		users:  new(MockUserRepository),
		auth:   new(MockTokenResolver),
		events: new(MockPublisher),
	}
	svc := services.NewGameService(f.games, f.refs, f.users, f.auth, strictSort,
		services.WithEvents(f.events), services.WithLogger(discardLogger()))
	return svc, f
}

func someGames(n int) []models.GameView {
	games := make([]models.GameView, n)
	for i := range games {
		games[i] = models.GameView{GameID: uint(i + 1), Title: fmt.Sprintf("Game %d", i+1), PlatformIDs: []int{1}}
	}
	return games
}

func intPtr(v int) *int    { return &v }
func uintPtr(v uint) *uint { return &v }

func TestGameService_Search_UnknownGenreFailsFast(t *testing.T) {
	svc, f := newGameService(false)

	f.refs.On("MissingGenres", mock.Anything, []uint{3}).Return([]uint{3}, nil).Once()

	_, err := svc.Search(context.Background(), services.SearchParams{GenreIDs: []uint{3}})

	var refErr *services.UnknownReferenceError
	require.True(t, errors.As(err, &refErr))
	assert.Equal(t, "genre", refErr.Kind)
	assert.Equal(t, uint(3), refErr.ID)
	assert.True(t, errors.Is(err, services.ErrNotFound))
	f.games.AssertNotCalled(t, "Search", mock.Anything, mock.Anything)
	f.refs.AssertExpectations(t)
}

func TestGameService_Search_UnknownCreator(t *testing.T) {
	svc, f := newGameService(false)

	f.users.On("Exists", mock.Anything, uint(42)).Return(false, nil).Once()

	_, err := svc.Search(context.Background(), services.SearchParams{CreatorID: uintPtr(42)})

	var refErr *services.UnknownReferenceError
	require.True(t, errors.As(err, &refErr))
	assert.Equal(t, "user", refErr.Kind)
	f.games.AssertNotCalled(t, "Search", mock.Anything, mock.Anything)
}

func TestGameService_Search_Pagination(t *testing.T) {
	svc, f := newGameService(false)
	f.games.On("Search", mock.Anything, mock.Anything).Return(someGames(5), nil)

	tests := []struct {
		name    string
		start   *int
		count   *int
		wantIDs []uint
	}{
		{"everything", nil, nil, []uint{1, 2, 3, 4, 5}},
		{"window", intPtr(1), intPtr(2), []uint{2, 3}},
		{"start only", intPtr(3), nil, []uint{4, 5}},
		{"count past end", intPtr(4), intPtr(10), []uint{5}},
		{"start past end", intPtr(10), nil, []uint{}},
		{"zero count", intPtr(0), intPtr(0), []uint{}},
		{"max count", intPtr(1), intPtr(math.MaxInt), []uint{2, 3, 4, 5}},
		{"max start", intPtr(math.MaxInt), intPtr(math.MaxInt), []uint{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := svc.Search(context.Background(), services.SearchParams{StartIndex: tt.start, Count: tt.count})
			require.NoError(t, err)
			assert.Equal(t, 5, result.Count)
			ids := make([]uint, len(result.Games))
			for i, g := range result.Games {
				ids[i] = g.GameID
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestGameService_Search_EmptyResultIsValid(t *testing.T) {
	svc, f := newGameService(false)
	f.games.On("Search", mock.Anything, mock.Anything).Return([]models.GameView{}, nil).Once()

	result, err := svc.Search(context.Background(), services.SearchParams{Query: "nothing matches"})
	require.NoError(t, err)
	assert.Equal(t, 0, result.Count)
	assert.Empty(t, result.Games)
}

func TestGameService_Search_OwnedByMeNeedsSession(t *testing.T) {
	svc, f := newGameService(false)
	f.auth.On("ResolveToken", mock.Anything, "").Return(uint(0), services.ErrUnauthorized).Once()

	_, err := svc.Search(context.Background(), services.SearchParams{OwnedByMe: true})
	assert.True(t, errors.Is(err, services.ErrUnauthorized))
	f.games.AssertNotCalled(t, "Search", mock.Anything, mock.Anything)
}

func TestGameService_Search_ResolvesUserRelativeFilters(t *testing.T) {
	svc, f := newGameService(false)
	f.auth.On("ResolveToken", mock.Anything, "tok").Return(uint(7), nil).Once()
	f.games.On("Search", mock.Anything, mock.MatchedBy(func(filter repositories.GameFilter) bool {
		return filter.OwnedBy != nil && *filter.OwnedBy == 7 &&
			filter.WishlistedBy != nil && *filter.WishlistedBy == 7 &&
			filter.Sort == models.SortPriceDesc
	})).Return(someGames(1), nil).Once()

	result, err := svc.Search(context.Background(), services.SearchParams{
		OwnedByMe: true, WishlistedByMe: true, Token: "tok", SortBy: "PRICE_DESC",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Count)
	f.games.AssertExpectations(t)
	f.auth.AssertExpectations(t)
}

func TestGameService_Search_SortValidation(t *testing.T) {
	lenient, f := newGameService(false)
	f.games.On("Search", mock.Anything, mock.MatchedBy(func(filter repositories.GameFilter) bool {
		return filter.Sort == models.SortCreatedAsc
	})).Return(someGames(2), nil).Once()

	_, err := lenient.Search(context.Background(), services.SearchParams{SortBy: "SIDEWAYS"})
	require.NoError(t, err)
	f.games.AssertExpectations(t)

	strict, f := newGameService(true)
	_, err = strict.Search(context.Background(), services.SearchParams{SortBy: "SIDEWAYS"})
	assert.True(t, errors.Is(err, services.ErrInvalidSort))
	assert.True(t, errors.Is(err, services.ErrInvalidInput))
	f.games.AssertNotCalled(t, "Search", mock.Anything, mock.Anything)
}

func TestGameService_Search_StoreFailureIsTransient(t *testing.T) {
	svc, f := newGameService(false)
	f.games.On("Search", mock.Anything, mock.Anything).Return(nil, errors.New("connection refused")).Once()

	_, err := svc.Search(context.Background(), services.SearchParams{})
	assert.True(t, errors.Is(err, services.ErrTransient))
	assert.Contains(t, err.Error(), "connection refused")
}

func TestGameService_GetByID(t *testing.T) {
	svc, f := newGameService(false)
	view := &models.GameView{GameID: 1, Title: "Chess", PlatformIDs: []int{1, 2}}
	f.games.On("GetView", mock.Anything, uint(1)).Return(view, nil).Once()
	f.games.On("GetView", mock.Anything, uint(2)).Return(nil, repositories.ErrNotFound).Once()

	got, err := svc.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, view, got)

	_, err = svc.GetByID(context.Background(), 2)
	assert.True(t, errors.Is(err, services.ErrNotFound))
}

func TestGameService_Create(t *testing.T) {
	ctx := context.Background()
	input := services.CreateGameInput{Title: "Chess", GenreID: 1, Price: 500, PlatformIDs: []uint{1, 2, 1}}

	t.Run("title exists", func(t *testing.T) {
		svc, f := newGameService(false)
		f.games.On("TitleTaken", mock.Anything, "Chess", uint(0)).Return(true, nil).Once()

		_, code, err := svc.Create(ctx, 9, input)
		require.NoError(t, err)
		assert.Equal(t, models.ResultTitleExists, code)
		f.games.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("invalid genre", func(t *testing.T) {
		svc, f := newGameService(false)
		f.games.On("TitleTaken", mock.Anything, "Chess", uint(0)).Return(false, nil).Once()
		f.refs.On("MissingGenres", mock.Anything, []uint{1}).Return([]uint{1}, nil).Once()

		_, code, err := svc.Create(ctx, 9, input)
		require.NoError(t, err)
		assert.Equal(t, models.ResultInvalidGenre, code)
	})

	t.Run("invalid platform", func(t *testing.T) {
		svc, f := newGameService(false)
		f.games.On("TitleTaken", mock.Anything, "Chess", uint(0)).Return(false, nil).Once()
		f.refs.On("MissingGenres", mock.Anything, []uint{1}).Return([]uint{}, nil).Once()
		f.refs.On("MissingPlatforms", mock.Anything, []uint{1, 2}).Return([]uint{2}, nil).Once()

		_, code, err := svc.Create(ctx, 9, input)
		require.NoError(t, err)
		assert.Equal(t, models.ResultInvalidPlatform, code)
	})

	t.Run("no platforms", func(t *testing.T) {
		svc, f := newGameService(false)
		f.games.On("TitleTaken", mock.Anything, "Solo", uint(0)).Return(false, nil).Once()
		f.refs.On("MissingGenres", mock.Anything, []uint{1}).Return([]uint{}, nil).Once()

		_, code, err := svc.Create(ctx, 9, services.CreateGameInput{Title: "Solo", GenreID: 1})
		require.NoError(t, err)
		assert.Equal(t, models.ResultInvalidPlatform, code)
	})

	t.Run("negative price", func(t *testing.T) {
		svc, _ := newGameService(false)
		_, _, err := svc.Create(ctx, 9, services.CreateGameInput{Title: "Chess", GenreID: 1, Price: -1, PlatformIDs: []uint{1}})
		assert.True(t, errors.Is(err, services.ErrInvalidInput))
	})

	t.Run("success", func(t *testing.T) {
		svc, f := newGameService(false)
		f.games.On("TitleTaken", mock.Anything, "Chess", uint(0)).Return(false, nil).Once()
		f.refs.On("MissingGenres", mock.Anything, []uint{1}).Return([]uint{}, nil).Once()
		f.refs.On("MissingPlatforms", mock.Anything, []uint{1, 2}).Return([]uint{}, nil).Once()
		f.games.On("Create", mock.Anything, mock.MatchedBy(func(g *models.Game) bool {
			return g.Title == "Chess" && g.CreatorID == 9 && g.Price == 500 && !g.CreationDate.IsZero()
		}), []uint{1, 2}).Run(func(args mock.Arguments) {
			args.Get(1).(*models.Game).ID = 11
		}).Return(nil).Once()
		f.events.On("Publish", services.EventsExchange, services.EventGameCreated, mock.Anything).Return(nil).Once()

		id, code, err := svc.Create(ctx, 9, input)
		require.NoError(t, err)
		assert.Equal(t, models.ResultSuccess, code)
		assert.Equal(t, uint(11), id)
		f.games.AssertExpectations(t)
		f.events.AssertExpectations(t)
	})

	t.Run("title taken concurrently", func(t *testing.T) {
		svc, f := newGameService(false)
		f.games.On("TitleTaken", mock.Anything, "Chess", uint(0)).Return(false, nil).Once()
		f.refs.On("MissingGenres", mock.Anything, []uint{1}).Return([]uint{}, nil).Once()
		f.refs.On("MissingPlatforms", mock.Anything, []uint{1, 2}).Return([]uint{}, nil).Once()
		f.games.On("Create", mock.Anything, mock.Anything, []uint{1, 2}).
			Return(fmt.Errorf("failed to create game: %w", repositories.ErrDuplicate)).Once()

		_, code, err := svc.Create(ctx, 9, input)
		require.NoError(t, err)
		assert.Equal(t, models.ResultTitleExists, code)
		f.events.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestGameService_Edit(t *testing.T) {
	ctx := context.Background()
	stored := func() *models.Game {
		return &models.Game{ID: 5, Title: "Chess", CreatorID: 9, GenreID: 1, Price: 500}
	}

	t.Run("game missing", func(t *testing.T) {
		svc, f := newGameService(false)
		f.games.On("GetByID", mock.Anything, uint(5)).Return(nil, repositories.ErrNotFound).Once()

		code, err := svc.Edit(ctx, 5, 9, services.EditGameInput{})
		require.NoError(t, err)
		assert.Equal(t, models.ResultGameDNE, code)
	})

	t.Run("not creator", func(t *testing.T) {
		svc, f := newGameService(false)
		f.games.On("GetByID", mock.Anything, uint(5)).Return(stored(), nil).Once()

		code, err := svc.Edit(ctx, 5, 10, services.EditGameInput{Price: intPtr(1)})
		require.NoError(t, err)
		assert.Equal(t, models.ResultNotCreator, code)
		f.games.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("empty platform set", func(t *testing.T) {
		svc, f := newGameService(false)
		f.games.On("GetByID", mock.Anything, uint(5)).Return(stored(), nil).Once()

		code, err := svc.Edit(ctx, 5, 9, services.EditGameInput{PlatformIDs: []uint{}})
		require.NoError(t, err)
		assert.Equal(t, models.ResultInvalidPlatform, code)
	})

	t.Run("partial update", func(t *testing.T) {
		svc, f := newGameService(false)
		title := "Chess 2"
		f.games.On("GetByID", mock.Anything, uint(5)).Return(stored(), nil).Once()
		f.games.On("TitleTaken", mock.Anything, "Chess 2", uint(5)).Return(false, nil).Once()
		f.games.On("Update", mock.Anything, mock.MatchedBy(func(g *models.Game) bool {
			return g.Title == "Chess 2" && g.Price == 500 && g.GenreID == 1
		}), []uint(nil)).Return(nil).Once()
		f.events.On("Publish", services.EventsExchange, services.EventGameUpdated, mock.Anything).Return(nil).Once()

		code, err := svc.Edit(ctx, 5, 9, services.EditGameInput{Title: &title})
		require.NoError(t, err)
		assert.Equal(t, models.ResultSuccess, code)
		f.games.AssertExpectations(t)
	})
}

func TestGameService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("reviewed game is kept", func(t *testing.T) {
		svc, f := newGameService(false)
		f.games.On("GetByID", mock.Anything, uint(5)).Return(&models.Game{ID: 5, CreatorID: 9}, nil).Once()
		f.games.On("HasReviews", mock.Anything, uint(5)).Return(true, nil).Once()

		code, err := svc.Delete(ctx, 5, 9)
		require.NoError(t, err)
		assert.Equal(t, models.ResultGameReviewed, code)
		f.games.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("reviewed between check and delete", func(t *testing.T) {
		svc, f := newGameService(false)
		f.games.On("GetByID", mock.Anything, uint(5)).Return(&models.Game{ID: 5, CreatorID: 9}, nil).Once()
		f.games.On("HasReviews", mock.Anything, uint(5)).Return(false, nil).Once()
		f.games.On("Delete", mock.Anything, uint(5)).Return(fmt.Errorf("game 5 has 1 reviews: %w", repositories.ErrReviewed)).Once()

		code, err := svc.Delete(ctx, 5, 9)
		require.NoError(t, err)
		assert.Equal(t, models.ResultGameReviewed, code)
		f.events.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("success", func(t *testing.T) {
		svc, f := newGameService(false)
		f.games.On("GetByID", mock.Anything, uint(5)).Return(&models.Game{ID: 5, CreatorID: 9}, nil).Once()
		f.games.On("HasReviews", mock.Anything, uint(5)).Return(false, nil).Once()
		f.games.On("Delete", mock.Anything, uint(5)).Return(nil).Once()
		f.events.On("Publish", services.EventsExchange, services.EventGameDeleted, mock.Anything).Return(errors.New("broker down")).Once()

		code, err := svc.Delete(ctx, 5, 9)
		require.NoError(t, err)
		assert.Equal(t, models.ResultSuccess, code)
		f.games.AssertExpectations(t)
		f.events.AssertExpectations(t)
	})
}
