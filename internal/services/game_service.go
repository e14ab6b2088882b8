package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/LukeA4591/GameTroveAPI/internal/models"
	"github.com/LukeA4591/GameTroveAPI/internal/repositories"

	"github.com/sirupsen/logrus"
)

// TokenResolver maps a session token to the authenticated user's id.
type TokenResolver interface {
	ResolveToken(ctx context.Context, token string) (uint, error)
}

// SearchParams is a raw search request as received from a client. Every
// field is optional.
type SearchParams struct {
	Query          string
	GenreIDs       []uint
	PlatformIDs    []uint
	MaxPrice       *int
	CreatorID      *uint
	ReviewerID     *uint
	OwnedByMe      bool
	WishlistedByMe bool
	SortBy         string
	StartIndex     *int
	Count          *int
	Token          string
}

// CreateGameInput holds the fields of a new game.
type CreateGameInput struct {
	Title       string
	Description string
	GenreID     uint
	Price       int
	PlatformIDs []uint
}

// EditGameInput holds a partial update. Nil fields are left unchanged.
type EditGameInput struct {
	Title       *string
	Description *string
	GenreID     *uint
	Price       *int
	PlatformIDs []uint
}

// GameService handles the catalogue: search, lookup and the creator's
// create/edit/delete operations.
type GameService struct {
	base
	games      repositories.GameRepository
	refs       repositories.ReferenceRepository
	users      repositories.UserRepository
	auth       TokenResolver
	strictSort bool
}

// NewGameService creates a new GameService.
func NewGameService(games repositories.GameRepository, refs repositories.ReferenceRepository,
	users repositories.UserRepository, auth TokenResolver, strictSort bool, opts ...Option) *GameService {
	return &GameService{
		base:       newBase(opts),
		games:      games,
		refs:       refs,
		users:      users,
		auth:       auth,
		strictSort: strictSort,
	}
}

// Search validates every referenced id, resolves the caller for the
// user-relative filters, runs the query and slices out the requested page.
// Count is always the size of the full filtered set.
func (s *GameService) Search(ctx context.Context, p SearchParams) (*models.SearchResult, error) {
	started := time.Now()

	filter, err := s.resolveFilter(ctx, p)
	if err != nil {
		return nil, err
	}

	games, err := s.games.Search(ctx, filter)
	if err != nil {
		return nil, transient("search games", err)
	}

	total := len(games)
	s.metrics.ObserveSearch(time.Since(started), total)
	return &models.SearchResult{Games: page(games, p.StartIndex, p.Count), Count: total}, nil
}

func (s *GameService) resolveFilter(ctx context.Context, p SearchParams) (repositories.GameFilter, error) {
	filter := repositories.GameFilter{
		Text:        strings.TrimSpace(p.Query),
		GenreIDs:    dedupe(p.GenreIDs),
		PlatformIDs: dedupe(p.PlatformIDs),
		MaxPrice:    p.MaxPrice,
		CreatorID:   p.CreatorID,
		ReviewerID:  p.ReviewerID,
	}

	sortKey, ok := models.ParseSortKey(p.SortBy)
	if !ok && p.SortBy != "" && s.strictSort {
		return filter, fmt.Errorf("%w %q", ErrInvalidSort, p.SortBy)
	}
	filter.Sort = sortKey

	if p.MaxPrice != nil && *p.MaxPrice < 0 {
		return filter, fmt.Errorf("%w: price must not be negative", ErrInvalidInput)
	}
	if (p.StartIndex != nil && *p.StartIndex < 0) || (p.Count != nil && *p.Count < 0) {
		return filter, fmt.Errorf("%w: startIndex and count must not be negative", ErrInvalidInput)
	}

	if err := s.requireGenres(ctx, filter.GenreIDs); err != nil {
		return filter, err
	}
	if err := s.requirePlatforms(ctx, filter.PlatformIDs); err != nil {
		return filter, err
	}
	for _, id := range []*uint{p.CreatorID, p.ReviewerID} {
		if id == nil {
			continue
		}
		exists, err := s.users.Exists(ctx, *id)
		if err != nil {
			return filter, transient("check user", err)
		}
		if !exists {
			return filter, &UnknownReferenceError{Kind: "user", ID: *id}
		}
	}

	if p.OwnedByMe || p.WishlistedByMe {
		userID, err := s.auth.ResolveToken(ctx, p.Token)
		if err != nil {
			return filter, err
		}
		if p.OwnedByMe {
			filter.OwnedBy = &userID
		}
		if p.WishlistedByMe {
			filter.WishlistedBy = &userID
		}
	}
	return filter, nil
}

func (s *GameService) requireGenres(ctx context.Context, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	missing, err := s.refs.MissingGenres(ctx, ids)
	if err != nil {
		return transient("check genres", err)
	}
	if len(missing) > 0 {
		return &UnknownReferenceError{Kind: "genre", ID: missing[0]}
	}
	return nil
}

func (s *GameService) requirePlatforms(ctx context.Context, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	missing, err := s.refs.MissingPlatforms(ctx, ids)
	if err != nil {
		return transient("check platforms", err)
	}
	if len(missing) > 0 {
		return &UnknownReferenceError{Kind: "platform", ID: missing[0]}
	}
	return nil
}

// GetByID returns the detail view of a game.
func (s *GameService) GetByID(ctx context.Context, id uint) (*models.GameView, error) {
	view, err := s.games.GetView(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("game %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, transient("get game", err)
	}
	return view, nil
}

func (s *GameService) ListGenres(ctx context.Context) ([]models.Genre, error) {
	genres, err := s.refs.ListGenres(ctx)
	if err != nil {
		return nil, transient("list genres", err)
	}
	return genres, nil
}

func (s *GameService) ListPlatforms(ctx context.Context) ([]models.Platform, error) {
	platforms, err := s.refs.ListPlatforms(ctx)
	if err != nil {
		return nil, transient("list platforms", err)
	}
	return platforms, nil
}

// Create adds a game owned by creatorID. All reference checks run before any
// write; a title taken concurrently still resolves to TITLE_EXISTS.
func (s *GameService) Create(ctx context.Context, creatorID uint, in CreateGameInput) (uint, models.ResultCode, error) {
	code, err := s.checkCreate(ctx, &in)
	if err != nil {
		return 0, "", err
	}
	if code != models.ResultSuccess {
		s.metrics.CountGameMutation("create", string(code))
		return 0, code, nil
	}

	game := &models.Game{
		Title:        in.Title,
		Description:  in.Description,
		CreationDate: time.Now().UTC(),
		CreatorID:    creatorID,
		GenreID:      in.GenreID,
		Price:        in.Price,
	}
	if err := s.games.Create(ctx, game, in.PlatformIDs); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			s.metrics.CountGameMutation("create", string(models.ResultTitleExists))
			return 0, models.ResultTitleExists, nil
		}
		return 0, "", transient("create game", err)
	}

	s.metrics.CountGameMutation("create", string(models.ResultSuccess))
	s.log.WithFields(logrus.Fields{"game_id": game.ID, "creator_id": creatorID}).Info("game created")
	s.publish(EventGameCreated, game.ID, creatorID)
	return game.ID, models.ResultSuccess, nil
}

func (s *GameService) checkCreate(ctx context.Context, in *CreateGameInput) (models.ResultCode, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return "", fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if in.Price < 0 {
		return "", fmt.Errorf("%w: price must not be negative", ErrInvalidInput)
	}
	in.PlatformIDs = dedupe(in.PlatformIDs)
	if in.PlatformIDs == nil {
		in.PlatformIDs = []uint{}
	}

	taken, err := s.games.TitleTaken(ctx, in.Title, 0)
	if err != nil {
		return "", transient("check title", err)
	}
	if taken {
		return models.ResultTitleExists, nil
	}
	return s.checkReferences(ctx, &in.GenreID, in.PlatformIDs)
}

// checkReferences validates an optional genre and an optional platform set.
// A non-nil but empty platform set is invalid.
func (s *GameService) checkReferences(ctx context.Context, genreID *uint, platformIDs []uint) (models.ResultCode, error) {
	if genreID != nil {
		missing, err := s.refs.MissingGenres(ctx, []uint{*genreID})
		if err != nil {
			return "", transient("check genre", err)
		}
		if len(missing) > 0 {
			return models.ResultInvalidGenre, nil
		}
	}
	if platformIDs != nil {
		if len(platformIDs) == 0 {
			return models.ResultInvalidPlatform, nil
		}
		missing, err := s.refs.MissingPlatforms(ctx, platformIDs)
		if err != nil {
			return "", transient("check platforms", err)
		}
		if len(missing) > 0 {
			return models.ResultInvalidPlatform, nil
		}
	}
	return models.ResultSuccess, nil
}

// Edit applies a partial update on behalf of editorID, who must be the
// game's creator.
func (s *GameService) Edit(ctx context.Context, gameID, editorID uint, in EditGameInput) (models.ResultCode, error) {
	code, err := s.edit(ctx, gameID, editorID, in)
	if err == nil {
		s.metrics.CountGameMutation("edit", string(code))
	}
	return code, err
}

func (s *GameService) edit(ctx context.Context, gameID, editorID uint, in EditGameInput) (models.ResultCode, error) {
	game, code, err := s.ownedGame(ctx, gameID, editorID)
	if err != nil || code != models.ResultSuccess {
		return code, err
	}

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return "", fmt.Errorf("%w: title must not be empty", ErrInvalidInput)
		}
		taken, err := s.games.TitleTaken(ctx, title, gameID)
		if err != nil {
			return "", transient("check title", err)
		}
		if taken {
			return models.ResultTitleExists, nil
		}
		game.Title = title
	}
	if in.Price != nil {
		if *in.Price < 0 {
			return "", fmt.Errorf("%w: price must not be negative", ErrInvalidInput)
		}
		game.Price = *in.Price
	}
	if in.PlatformIDs != nil {
		in.PlatformIDs = dedupe(in.PlatformIDs)
	}
	if code, err := s.checkReferences(ctx, in.GenreID, in.PlatformIDs); err != nil || code != models.ResultSuccess {
		return code, err
	}
	if in.GenreID != nil {
		game.GenreID = *in.GenreID
	}
	if in.Description != nil {
		game.Description = *in.Description
	}

	if err := s.games.Update(ctx, game, in.PlatformIDs); err != nil {
		switch {
		case errors.Is(err, repositories.ErrDuplicate):
			return models.ResultTitleExists, nil
		case errors.Is(err, repositories.ErrNotFound):
			return models.ResultGameDNE, nil
		}
		return "", transient("update game", err)
	}

	s.log.WithField("game_id", gameID).Info("game updated")
	s.publish(EventGameUpdated, gameID, editorID)
	return models.ResultSuccess, nil
}

// Delete removes a game. Games with reviews cannot be deleted.
func (s *GameService) Delete(ctx context.Context, gameID, userID uint) (models.ResultCode, error) {
	code, err := s.delete(ctx, gameID, userID)
	if err == nil {
		s.metrics.CountGameMutation("delete", string(code))
	}
	return code, err
}

func (s *GameService) delete(ctx context.Context, gameID, userID uint) (models.ResultCode, error) {
	if _, code, err := s.ownedGame(ctx, gameID, userID); err != nil || code != models.ResultSuccess {
		return code, err
	}

	reviewed, err := s.games.HasReviews(ctx, gameID)
	if err != nil {
		return "", transient("check reviews", err)
	}
	if reviewed {
		return models.ResultGameReviewed, nil
	}

	if err := s.games.Delete(ctx, gameID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.ResultGameDNE, nil
		}
		if errors.Is(err, repositories.ErrReviewed) {
			return models.ResultGameReviewed, nil
		}
		return "", transient("delete game", err)
	}

	s.log.WithField("game_id", gameID).Info("game deleted")
	s.publish(EventGameDeleted, gameID, userID)
	return models.ResultSuccess, nil
}

// ownedGame loads a game and checks that userID created it.
func (s *GameService) ownedGame(ctx context.Context, gameID, userID uint) (*models.Game, models.ResultCode, error) {
	game, err := s.games.GetByID(ctx, gameID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, models.ResultGameDNE, nil
	}
	if err != nil {
		return nil, "", transient("get game", err)
	}
	if game.CreatorID != userID {
		return nil, models.ResultNotCreator, nil
	}
	return game, models.ResultSuccess, nil
}

// page slices games to the window [start, start+count). A missing count
// means "to the end"; a window past the end is empty.
func page(games []models.GameView, start, count *int) []models.GameView {
	from := 0
	if start != nil {
		from = *start
	}
	if from >= len(games) {
		return []models.GameView{}
	}
	to := len(games)
	if count != nil && *count < to-from {
		to = from + *count
	}
	return games[from:to]
}

// dedupe drops repeated ids, keeping first occurrences in order. nil stays
// nil so "not supplied" is distinguishable from "empty".
func dedupe(ids []uint) []uint {
	if ids == nil {
		return nil
	}
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
