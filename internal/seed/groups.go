package seed

import (
	"fmt"
	"io"
	"os"

	"quill/internal/models"
	"quill/internal/validation"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GroupFixture is one group entry of a fixtures file.
type GroupFixture struct {
	Slug        string `yaml:"slug"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
}

type groupsFile struct {
	Groups []GroupFixture `yaml:"groups"`
}

// DefaultGroups is used when no fixtures file is given.
var DefaultGroups = []GroupFixture{
	{Slug: "general", Title: "General", Description: "Anything goes."},
	{Slug: "books", Title: "Books", Description: "Reading lists and reviews."},
	{Slug: "travel", Title: "Travel", Description: "Trips, routes and photos."},
	{Slug: "cooking", Title: "Cooking", Description: "Recipes and kitchen notes."},
}

// LoadGroups decodes and validates a YAML fixtures document of the form
// `groups: [{slug, title, description}]`.
func LoadGroups(r io.Reader) ([]GroupFixture, error) {
	var doc groupsFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode group fixtures: %w", err)
	}

	seen := make(map[string]bool, len(doc.Groups))
	for i, g := range doc.Groups {
		if err := validation.ValidateGroupSlug(g.Slug); err != nil {
			return nil, fmt.Errorf("group %d: %w", i, err)
		}
		if err := validation.ValidateGroupTitle(g.Title); err != nil {
			return nil, fmt.Errorf("group %q: %w", g.Slug, err)
		}
		if seen[g.Slug] {
			return nil, fmt.Errorf("group %q listed twice", g.Slug)
		}
		seen[g.Slug] = true
	}
	return doc.Groups, nil
}

// LoadGroupsFile reads fixtures from path.
func LoadGroupsFile(path string) ([]GroupFixture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadGroups(f)
}

// Groups upserts fixtures by slug and returns the stored rows ordered by slug.
func Groups(db *gorm.DB, fixtures []GroupFixture) ([]models.Group, error) {
	if len(fixtures) == 0 {
		return nil, nil
	}

	slugs := make([]string, 0, len(fixtures))
	rows := make([]models.Group, 0, len(fixtures))
	for _, g := range fixtures {
		slugs = append(slugs, g.Slug)
		rows = append(rows, models.Group{Slug: g.Slug, Title: g.Title, Description: g.Description})
	}

	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "slug"}},
		DoUpdates: clause.AssignmentColumns([]string{"title", "description"}),
	}).Create(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("upsert groups: %w", err)
	}

	var groups []models.Group
	if err := db.Where("slug IN ?", slugs).Order("slug").Find(&groups).Error; err != nil {
		return nil, err
	}
	return groups, nil
}
