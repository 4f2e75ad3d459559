package engine

import "math/rand/v2"

// GroupTable maps a job title to its group. The zero value classifies
// every citizen into the fallback group of DefaultGroupTable.
type GroupTable struct {
	jobs     map[string]Group
	fallback Group
}

// NewGroupTable copies jobs, so later changes to the map do not leak into
// the table.
func NewGroupTable(jobs map[string]Group, fallback Group) GroupTable {
	t := GroupTable{jobs: make(map[string]Group, len(jobs)), fallback: fallback}
	for job, g := range jobs {
		t.jobs[job] = g
	}
	return t
}

// Lookup returns the group for job, or the fallback group.
func (t GroupTable) Lookup(job string) Group {
	if g, ok := t.jobs[job]; ok {
		return g
	}
	return t.Fallback()
}

// Fallback is the group used for unmapped jobs.
func (t GroupTable) Fallback() Group {
	if t.fallback == "" {
		return GroupBusiness
	}
	return t.fallback
}

// Len returns the number of mapped jobs.
func (t GroupTable) Len() int {
	return len(t.jobs)
}

// Jobs returns the jobs mapped to g.
func (t GroupTable) Jobs(g Group) []string {
	var out []string
	for job, jg := range t.jobs {
		if jg == g {
			out = append(out, job)
		}
	}
	return out
}

// DefaultGroupTable returns the job table of the base citizen deck.
func DefaultGroupTable() GroupTable {
	jobs := map[string]Group{}
	add := func(g Group, names ...string) {
		for _, n := range names {
			jobs[n] = g
		}
	}

	add(GroupGovernment, "Judge", "Congressman", "Mayor", "Ambassador", "Lobbyist")
	add(GroupCriminal, "Don", "Gangster", "Informant")
	add(GroupMedical, "Coroner", "Psychiatrist", "Pharmacist", "Surgeon", "Nurse", "Orderly", "Veterinarian")
	add(GroupService, "Restaurateur", "Bartender", "Waitress", "Mailman", "Stewardess",
		"Driver", "Bouncer", "Greaser", "Ice Cream Man")
	add(GroupEntertainment, "Actress", "Dancer", "Announcer", "Musician", "Baseball Player", "Photographer")
	add(GroupEducation, "Professor", "Librarian", "Journalist", "Editor", "Newsboy")
	add(GroupEmergency, "Firefighter", "Patrolman", "Inspector", "Dispatcher")
	add(GroupBusiness, "Speculator", "Philanthropist", "Widow", "Cat Lady")
	add(GroupCreative, "Painter", "Fortune Teller", "Veteran", "Agent", "Sailor", "Welder",
		"Homeless", "Nun", "Secretary", "Lawyer", "Prosecutor")

	return GroupTable{jobs: jobs, fallback: GroupBusiness}
}

// AssignGroups returns a copy of citizens with Group set from table.
// Order and length are preserved.
func AssignGroups(citizens []Citizen, table GroupTable) []Citizen {
	out := make([]Citizen, len(citizens))
	for i, c := range citizens {
		c.Group = table.Lookup(c.Job)
		out[i] = c
	}
	return out
}

// CitizensByGroup returns the citizens whose group is g.
func CitizensByGroup(citizens []Citizen, g Group) []Citizen {
	var out []Citizen
	for _, c := range citizens {
		if c.Group == g {
			out = append(out, c)
		}
	}
	return out
}

// GroupCounts counts citizens per group. Unclassified citizens are not counted.
func GroupCounts(citizens []Citizen) map[Group]int {
	counts := make(map[Group]int)
	for _, c := range citizens {
		if c.Group != "" {
			counts[c.Group]++
		}
	}
	return counts
}

// RandomCitizen picks one citizen uniformly. ok is false for an empty slice.
func RandomCitizen(rng *rand.Rand, citizens []Citizen) (Citizen, bool) {
	if len(citizens) == 0 {
		return Citizen{}, false
	}
	return citizens[rng.IntN(len(citizens))], true
}

// RandomCitizens returns up to count distinct citizens in random order.
func RandomCitizens(rng *rand.Rand, citizens []Citizen, count int) []Citizen {
	if count <= 0 {
		return nil
	}
	shuffled := make([]Citizen, len(citizens))
	copy(shuffled, citizens)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	if count > len(shuffled) {
		count = len(shuffled)
	}
	return shuffled[:count]
}

// CitizenByID returns the first citizen with the given id.
func CitizenByID(citizens []Citizen, id int) (Citizen, bool) {
	for _, c := range citizens {
		if c.ID == id {
			return c, true
		}
	}
	return Citizen{}, false
}
