package category

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEveryCategoryIsDescribed(t *testing.T) {
	seenFiles := map[string]Category{}
	seenFolders := map[string]Category{}

	for _, c := range All() {
		info := Describe(c)
		assert.True(t, IsValid(c), "%d should be valid", c)
		assert.NotEmpty(t, info.Name, "%d should have a name", c)
		assert.NotEqual(t, KindInvalid, info.Kind, "%s should be filterable", c)

		if info.Kind != KindListed {
			assert.Empty(t, info.File, "%s is not file backed", c)
			assert.Empty(t, info.Folder, "%s is not folder backed", c)
			continue
		}

		assert.NotEmpty(t, info.File, "%s needs a data file", c)
		assert.NotEmpty(t, info.Folder, "%s needs a data folder", c)
		if prev, dup := seenFiles[info.File]; dup {
			t.Errorf("%s and %s share data file %s", prev, c, info.File)
		}
		if prev, dup := seenFolders[info.Folder]; dup {
			t.Errorf("%s and %s share data folder %s", prev, c, info.Folder)
		}
		seenFiles[info.File] = c
		seenFolders[info.Folder] = c
	}
}

func TestIsValid(t *testing.T) {
	assert.False(t, IsValid(None), "None is not filterable")
	assert.False(t, IsValid(Category(-1)), "negative values are invalid")
	assert.False(t, IsValid(None+1), "values past None are invalid")
	assert.True(t, IsValid(Weapon))
	assert.True(t, IsValid(BuildingMaterials))
}

func TestInvalidDescribesAsNone(t *testing.T) {
	assert.Equal(t, "None", Category(99).String())
	assert.Equal(t, KindInvalid, Category(-3).Kind())
}

func TestParse(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   Category
		wantOK bool
	}{
		{name: "exact", input: "RawFood", want: RawFood, wantOK: true},
		{name: "case_insensitive", input: "leatherpelts", want: LeatherPelts, wantOK: true},
		{name: "spaces", input: "  Ores ", want: Ores, wantOK: true},
		{name: "none_is_not_parsed", input: "None", want: None},
		{name: "unknown", input: "Dragons", want: None},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Parse(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOfKind(t *testing.T) {
	assert.Equal(t, []Category{Jewelry, BookSpell}, OfKind(KindKeyword))
	assert.Len(t, OfKind(KindListed), 8, "eight categories are file backed")
}
