package engine

// BuildingType is one of the four public buildings on the board.
type BuildingType string

const (
	BuildingPolice   BuildingType = "police"
	BuildingHospital BuildingType = "hospital"
	BuildingFire     BuildingType = "fire"
	BuildingDiner    BuildingType = "diner"
)

// AllBuildingTypes returns the building types in id order.
func AllBuildingTypes() []BuildingType {
	return []BuildingType{BuildingPolice, BuildingHospital, BuildingFire, BuildingDiner}
}

// Building is a building token placed during setup.
type Building struct {
	ID          string       `json:"id"`
	Type        BuildingType `json:"type"`
	DistrictX   int          `json:"district_x"`
	DistrictY   int          `json:"district_y"`
	SubPosition int          `json:"sub_position"`
	IsUsed      bool         `json:"is_used"`
}
