package repositories

import (
	"sort"
	"strconv"
	"strings"

	"github.com/LukeA4591/GameTroveAPI/internal/models"

	"gorm.io/gorm"
)

// GameFilter is a fully resolved search request. Every set field narrows
// the result; zero values mean "no constraint". User-relative filters carry
// the already authenticated user's id.
type GameFilter struct {
	GameID       *uint
	Text         string
	GenreIDs     []uint
	PlatformIDs  []uint
	MaxPrice     *int
	CreatorID    *uint
	ReviewerID   *uint
	OwnedBy      *uint
	WishlistedBy *uint
	Sort         models.SortKey
}

// Condition is a single parameterized predicate. SQL only ever contains
// fixed text and ? placeholders; values travel in Args.
type Condition struct {
	SQL  string
	Args []interface{}
}

// Conditions are combined with AND.
type Conditions []Condition

func (cs Conditions) And(sql string, args ...interface{}) Conditions {
	return append(cs, Condition{SQL: sql, Args: args})
}

// Apply adds every condition to tx as a WHERE clause.
func (cs Conditions) Apply(tx *gorm.DB) *gorm.DB {
	for _, c := range cs {
		tx = tx.Where(c.SQL, c.Args...)
	}
	return tx
}

// String renders the combined predicate with placeholders, for logging.
func (cs Conditions) String() string {
	parts := make([]string, len(cs))
	for i, c := range cs {
		parts[i] = c.SQL
	}
	return strings.Join(parts, " AND ")
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// BuildConditions turns a filter into its predicate list.
func BuildConditions(f GameFilter) Conditions {
	var cs Conditions
	if f.GameID != nil {
		cs = cs.And("game.id = ?", *f.GameID)
	}
	if f.Text != "" {
		pattern := "%" + likeEscaper.Replace(strings.ToLower(f.Text)) + "%"
		cs = cs.And(`(LOWER(game.title) LIKE ? ESCAPE '\' OR LOWER(game.description) LIKE ? ESCAPE '\')`, pattern, pattern)
	}
	if len(f.GenreIDs) > 0 {
		cs = cs.And("game.genre_id IN ?", f.GenreIDs)
	}
	if len(f.PlatformIDs) > 0 {
		cs = cs.And("EXISTS (SELECT 1 FROM game_platforms fp WHERE fp.game_id = game.id AND fp.platform_id IN ?)", f.PlatformIDs)
	}
	if f.MaxPrice != nil {
		cs = cs.And("game.price <= ?", *f.MaxPrice)
	}
	if f.CreatorID != nil {
		cs = cs.And("game.creator_id = ?", *f.CreatorID)
	}
	if f.ReviewerID != nil {
		cs = cs.And("EXISTS (SELECT 1 FROM game_review fr WHERE fr.game_id = game.id AND fr.user_id = ?)", *f.ReviewerID)
	}
	if f.OwnedBy != nil {
		cs = cs.And("EXISTS (SELECT 1 FROM owned fo WHERE fo.game_id = game.id AND fo.user_id = ?)", *f.OwnedBy)
	}
	if f.WishlistedBy != nil {
		cs = cs.And("EXISTS (SELECT 1 FROM wishlist fw WHERE fw.game_id = game.id AND fw.user_id = ?)", *f.WishlistedBy)
	}
	return cs
}

const ratingExpr = "COALESCE(rv.avg_rating, 0)"

var orderClauses = map[models.SortKey]string{
	models.SortAlphabeticalAsc:  "game.title ASC",
	models.SortAlphabeticalDesc: "game.title DESC",
	models.SortPriceAsc:         "game.price ASC",
	models.SortPriceDesc:        "game.price DESC",
	models.SortCreatedAsc:       "game.creation_date ASC",
	models.SortCreatedDesc:      "game.creation_date DESC",
	models.SortRatingAsc:        ratingExpr + " ASC",
	models.SortRatingDesc:       ratingExpr + " DESC",
}

// OrderClause maps a sort key onto a fixed ORDER BY fragment. Unknown keys
// fall back to the default order. Game id breaks ties so pages are stable.
func OrderClause(key models.SortKey) string {
	clause, ok := orderClauses[key]
	if !ok {
		clause = orderClauses[models.DefaultSort]
	}
	return clause + ", game.id ASC"
}

// platformAggregate collapses a game's platform rows into one comma
// separated string.
func platformAggregate(dialect string) string {
	if dialect == "postgres" {
		return "COALESCE(STRING_AGG(DISTINCT CAST(gp.platform_id AS TEXT), ','), '')"
	}
	return "COALESCE(GROUP_CONCAT(DISTINCT gp.platform_id), '')"
}

func selectColumns(dialect string) string {
	return strings.Join([]string{
		"game.id AS game_id",
		"game.title AS title",
		"game.description AS description",
		"game.genre_id AS genre_id",
		"game.creator_id AS creator_id",
		"COALESCE(creator.first_name, '') AS creator_first_name",
		"COALESCE(creator.last_name, '') AS creator_last_name",
		"game.price AS price",
		"game.creation_date AS creation_date",
		ratingExpr + " AS rating",
		"COALESCE(ow.owners, 0) AS number_of_owners",
		"COALESCE(wl.wishlisters, 0) AS number_of_wishlists",
		platformAggregate(dialect) + " AS platform_ids",
	}, ", ")
}

const groupColumns = "game.id, game.title, game.description, game.genre_id, game.creator_id, " +
	"creator.first_name, creator.last_name, game.price, game.creation_date, " +
	"rv.avg_rating, ow.owners, wl.wishlisters"

// aggregateQuery joins every game to its creator, its per-game rating,
// owner and wishlist counts and its platforms. The counts come from
// derived tables grouped by game, so the platform join cannot multiply them.
func aggregateQuery(db *gorm.DB) *gorm.DB {
	return db.Table("game").
		Select(selectColumns(db.Dialector.Name())).
		Joins("LEFT JOIN users creator ON creator.id = game.creator_id").
		Joins("LEFT JOIN (SELECT game_id, CAST(AVG(rating) AS DOUBLE PRECISION) AS avg_rating FROM game_review GROUP BY game_id) rv ON rv.game_id = game.id").
		Joins("LEFT JOIN (SELECT game_id, COUNT(DISTINCT user_id) AS owners FROM owned GROUP BY game_id) ow ON ow.game_id = game.id").
		Joins("LEFT JOIN (SELECT game_id, COUNT(DISTINCT user_id) AS wishlisters FROM wishlist GROUP BY game_id) wl ON wl.game_id = game.id").
		Joins("LEFT JOIN game_platforms gp ON gp.game_id = game.id").
		Group(groupColumns)
}

// gameRow is the scan target of aggregateQuery.
type gameRow struct {
	GameID            uint    `gorm:"column:game_id"`
	Title             string  `gorm:"column:title"`
	Description       string  `gorm:"column:description"`
	GenreID           uint    `gorm:"column:genre_id"`
	CreatorID         uint    `gorm:"column:creator_id"`
	CreatorFirstName  string  `gorm:"column:creator_first_name"`
	CreatorLastName   string  `gorm:"column:creator_last_name"`
	Price             int     `gorm:"column:price"`
	CreationDate      sqlTime `gorm:"column:creation_date"`
	Rating            float64 `gorm:"column:rating"`
	NumberOfOwners    int64   `gorm:"column:number_of_owners"`
	NumberOfWishlists int64   `gorm:"column:number_of_wishlists"`
	PlatformIDs       string  `gorm:"column:platform_ids"`
}

func (r gameRow) view() models.GameView {
	return models.GameView{
		GameID:           r.GameID,
		Title:            r.Title,
		GenreID:          r.GenreID,
		CreatorID:        r.CreatorID,
		CreatorFirstName: r.CreatorFirstName,
		CreatorLastName:  r.CreatorLastName,
		Price:            r.Price,
		Rating:           r.Rating,
		PlatformIDs:      ParsePlatformIDs(r.PlatformIDs),
		CreationDate:     r.CreationDate.Time,
	}
}

// ParsePlatformIDs turns an aggregated "3,1,3" string into a sorted set of
// ids. Unparseable fragments are skipped.
func ParsePlatformIDs(s string) []int {
	ids := []int{}
	seen := make(map[int]struct{})
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.Atoi(part)
		if err != nil {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
