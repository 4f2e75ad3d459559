package engine

// Sex of a citizen card.
type Sex string

const (
	SexMale   Sex = "male"
	SexFemale Sex = "female"
)

// Age bracket printed on a citizen card.
type Age int

const (
	Age20 Age = 20
	Age40 Age = 40
	Age60 Age = 60
)

// Size is the build of a citizen (S/M/L).
type Size string

const (
	SizeS Size = "S"
	SizeM Size = "M"
	SizeL Size = "L"
)

// Height of a citizen.
type Height string

const (
	HeightSmall  Height = "small"
	HeightMedium Height = "medium"
	HeightLarge  Height = "large"
)

// Group is the thematic category derived from a citizen's job.
type Group string

const (
	GroupGovernment    Group = "government"
	GroupCriminal      Group = "criminal"
	GroupMedical       Group = "medical"
	GroupService       Group = "service"
	GroupEntertainment Group = "entertainment"
	GroupEducation     Group = "education"
	GroupEmergency     Group = "emergency"
	GroupBusiness      Group = "business"
	GroupCreative      Group = "creative"
)

// AllGroups returns the 9 groups in display order.
func AllGroups() []Group {
	return []Group{
		GroupGovernment, GroupCriminal, GroupMedical,
		GroupService, GroupEntertainment, GroupEducation,
		GroupEmergency, GroupBusiness, GroupCreative,
	}
}

// Valid reports whether g is one of the known groups.
func (g Group) Valid() bool {
	for _, known := range AllGroups() {
		if g == known {
			return true
		}
	}
	return false
}

// Citizen is one card of the citizen deck. Group is empty until
// AssignGroups has run.
type Citizen struct {
	ID     int    `json:"id"`
	Job    string `json:"job"`
	Sex    Sex    `json:"sex"`
	Age    Age    `json:"age"`
	Size   Size   `json:"size"`
	Height Height `json:"height"`
	Color  string `json:"color"`
	Group  Group  `json:"group,omitempty"`
}

// CitizenPosition places a citizen on the board.
type CitizenPosition struct {
	CitizenID   int  `json:"citizen_id"`
	DistrictX   int  `json:"district_x"`
	DistrictY   int  `json:"district_y"`
	SubPosition int  `json:"sub_position"` // 1-based slot within the district
	IsScared    bool `json:"is_scared"`
	IsDead      bool `json:"is_dead"`
}
