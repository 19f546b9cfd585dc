package model

type Role string

const (
	RolePlayer Role = "player"
	RoleStaff  Role = "staff"
	RoleAdmin  Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RolePlayer, RoleStaff, RoleAdmin:
		return true
	}
	return false
}

// StationCategory is the kind of terminal a station is.
type StationCategory string

const (
	CategoryConsole StationCategory = "console"
	CategoryPC      StationCategory = "PC"
)

func (c StationCategory) Valid() bool {
	return c == CategoryConsole || c == CategoryPC
}

type StationStatus string

const (
	StationAvailable   StationStatus = "available"
	StationInUse       StationStatus = "in_use"
	StationMaintenance StationStatus = "maintenance"
)

func (s StationStatus) Valid() bool {
	switch s {
	case StationAvailable, StationInUse, StationMaintenance:
		return true
	}
	return false
}

// RateCategory is the station category a rate setting applies to.
// RateCategoryAll is the fallback used when no category-specific rate is active.
type RateCategory string

const (
	RateCategoryConsole RateCategory = RateCategory(CategoryConsole)
	RateCategoryPC      RateCategory = RateCategory(CategoryPC)
	RateCategoryAll     RateCategory = "all"
)

// RateCategories lists every category reported by the current-rates endpoint.
var RateCategories = []RateCategory{RateCategoryConsole, RateCategoryPC, RateCategoryAll}

func (c RateCategory) Valid() bool {
	switch c {
	case RateCategoryConsole, RateCategoryPC, RateCategoryAll:
		return true
	}
	return false
}
