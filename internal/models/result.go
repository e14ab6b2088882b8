package models

// ResultCode is the outcome of a core operation, independent of transport.
type ResultCode string

const (
	ResultSuccess             ResultCode = "SUCCESS"
	ResultGameDNE             ResultCode = "GAME_DNE"
	ResultGameCreator         ResultCode = "GAME_CREATOR"
	ResultGameAlreadyOwned    ResultCode = "GAME_ALREADY_OWNED"
	ResultGameAlreadyWishlist ResultCode = "GAME_ALREADY_WISHLIST"
	ResultGameAdded           ResultCode = "GAME_ADDED"
	ResultGameNot             ResultCode = "GAME_NOT"
	ResultTitleExists         ResultCode = "TITLE_EXISTS"
	ResultInvalidGenre        ResultCode = "INVALID_GENRE"
	ResultInvalidPlatform     ResultCode = "INVALID_PLATFORM"
	ResultNotCreator          ResultCode = "NOT_CREATOR"
	ResultGameReviewed        ResultCode = "GAME_REVIEWED"
	ResultCreator             ResultCode = "CREATOR"
	ResultReviewed            ResultCode = "REVIEWED"
	ResultEmailInUse          ResultCode = "EMAIL_IN_USE"
)

// SortKey orders game search results.
type SortKey string

const (
	SortAlphabeticalAsc  SortKey = "ALPHABETICAL_ASC"
	SortAlphabeticalDesc SortKey = "ALPHABETICAL_DESC"
	SortPriceAsc         SortKey = "PRICE_ASC"
	SortPriceDesc        SortKey = "PRICE_DESC"
	SortCreatedAsc       SortKey = "CREATED_ASC"
	SortCreatedDesc      SortKey = "CREATED_DESC"
	SortRatingAsc        SortKey = "RATING_ASC"
	SortRatingDesc       SortKey = "RATING_DESC"

	DefaultSort = SortCreatedAsc
)

// ParseSortKey reports whether s names a known sort key.
func ParseSortKey(s string) (SortKey, bool) {
	switch k := SortKey(s); k {
	case SortAlphabeticalAsc, SortAlphabeticalDesc,
		SortPriceAsc, SortPriceDesc,
		SortCreatedAsc, SortCreatedDesc,
		SortRatingAsc, SortRatingDesc:
		return k, true
	}
	return DefaultSort, false
}
