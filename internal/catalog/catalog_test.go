package catalog_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"citykiller/internal/catalog"
	"citykiller/internal/engine"
)

func TestBaseCitizens(t *testing.T) {
	deck, err := catalog.BaseCitizens()
	require.NoError(t, err)
	require.Len(t, deck, 56)

	ids := map[int]bool{}
	for _, c := range deck {
		assert.NotEmpty(t, c.Job)
		assert.Empty(t, c.Group, "deck cards are unclassified")
		ids[c.ID] = true
	}
	assert.Len(t, ids, 56)

	classified := engine.AssignGroups(deck, engine.DefaultGroupTable())
	counts := engine.GroupCounts(classified)
	for _, g := range engine.AllGroups() {
		assert.Positive(t, counts[g], "group %s", g)
	}
	business := engine.CitizensByGroup(classified, engine.GroupBusiness)
	assert.Len(t, business, 6, "4 business jobs plus 2 unmapped jobs")
}

func TestLoadCitizensRejectsBadDecks(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"not json", `{"citizens": [`},
		{"no citizens", `{}`},
		{"bad sex", `{"citizens":[{"id":1,"job":"Nurse","sex":"other","age":20,"size":"S","height":"small","color":"red"}]}`},
		{"bad age", `{"citizens":[{"id":1,"job":"Nurse","sex":"male","age":30,"size":"S","height":"small","color":"red"}]}`},
		{"missing job", `{"citizens":[{"id":1,"sex":"male","age":20,"size":"S","height":"small","color":"red"}]}`},
		{"group given", `{"citizens":[{"id":1,"job":"Nurse","sex":"male","age":20,"size":"S","height":"small","color":"red","group":"medical"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := catalog.LoadCitizens(strings.NewReader(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestLoadCitizensDuplicateID(t *testing.T) {
	card := `{"id":3,"job":"Nurse","sex":"female","age":40,"size":"M","height":"medium","color":"blue"}`
	_, err := catalog.LoadCitizens(strings.NewReader(`{"citizens":[` + card + `,` + card + `]}`))
	assert.ErrorIs(t, err, catalog.ErrDuplicateCitizen)
}

func TestCitizensFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deck.json")
	doc := `{"citizens":[{"id":9,"job":"Mayor","sex":"male","age":60,"size":"L","height":"large","color":"gray"}]}`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	deck, err := catalog.Citizens(path)
	require.NoError(t, err)
	require.Len(t, deck, 1)
	assert.Equal(t, engine.Citizen{ID: 9, Job: "Mayor", Sex: engine.SexMale, Age: engine.Age60,
		Size: engine.SizeL, Height: engine.HeightLarge, Color: "gray"}, deck[0])

	_, err = catalog.Citizens(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestSampleGroupsMatchBuiltIn(t *testing.T) {
	table, err := catalog.Groups(filepath.Join("..", "..", "configs", "groups.yml"))
	require.NoError(t, err)

	builtIn := engine.DefaultGroupTable()
	assert.Equal(t, builtIn.Len(), table.Len())
	for _, g := range engine.AllGroups() {
		for _, job := range builtIn.Jobs(g) {
			assert.Equal(t, g, table.Lookup(job), job)
		}
	}
	assert.Equal(t, engine.GroupBusiness, table.Lookup("Astronaut"))
}

func TestParseGroupTable(t *testing.T) {
	table, err := catalog.ParseGroupTable([]byte("fallback: creative\ngroups:\n  medical: [Nurse]\n"))
	require.NoError(t, err)
	assert.Equal(t, engine.GroupMedical, table.Lookup("Nurse"))
	assert.Equal(t, engine.GroupCreative, table.Lookup("Judge"))

	_, err = catalog.ParseGroupTable([]byte("groups:\n  pirates: [Captain]\n"))
	assert.ErrorIs(t, err, catalog.ErrUnknownGroup)

	_, err = catalog.ParseGroupTable([]byte("fallback: pirates\n"))
	assert.ErrorIs(t, err, catalog.ErrUnknownGroup)

	_, err = catalog.ParseGroupTable([]byte("groups:\n  medical: [Nurse]\n  service: [Nurse]\n"))
	assert.ErrorIs(t, err, catalog.ErrDuplicateJob)

	table, err = catalog.Groups("")
	require.NoError(t, err)
	assert.Equal(t, 54, table.Len())
}
