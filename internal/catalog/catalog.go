// Package catalog loads the static tutorial definitions: categories and
// tutorials declared in YAML, with derived fields filled and the data model
// invariants checked.
package catalog

import (
	"bytes"
	"crypto/rand"
	_ "embed"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"gopkg.in/yaml.v3"

	"github.com/hpungsan/tutorhub/internal/errors"
	"github.com/hpungsan/tutorhub/internal/listing"
	"github.com/hpungsan/tutorhub/internal/tutorial"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// Directory is the loaded tutorial directory in catalog order.
type Directory struct {
	Categories []tutorial.Category
	Tutorials  []tutorial.Tutorial
}

// WithCounts returns the categories with TutorialCount derived from Tutorials.
func (d *Directory) WithCounts() []tutorial.Category {
	return listing.CountByCategory(d.Categories, d.Tutorials)
}

// file is the YAML document layout.
type file struct {
	Categories []categoryDef `yaml:"categories"`
	Tutorials  []tutorialDef `yaml:"tutorials"`
}

type categoryDef struct {
	ID          string `yaml:"id,omitempty"`
	Name        string `yaml:"name"`
	Slug        string `yaml:"slug,omitempty"`
	Description string `yaml:"description,omitempty"`
}

type tutorialDef struct {
	ID          string   `yaml:"id,omitempty"`
	Title       string   `yaml:"title"`
	Description string   `yaml:"description,omitempty"`
	Category    string   `yaml:"category"`
	Slug        string   `yaml:"slug,omitempty"`
	Author      string   `yaml:"author,omitempty"`
	ReadTime    string   `yaml:"read_time,omitempty"`
	Difficulty  string   `yaml:"difficulty"`
	Published   string   `yaml:"published"`
	Tags        []string `yaml:"tags,omitempty"`
	Featured    bool     `yaml:"featured,omitempty"`
	Body        string   `yaml:"body,omitempty"`
}

// Default returns the directory built into the binary.
func Default() (*Directory, error) {
	return Parse(bytes.NewReader(defaultCatalog))
}

// Parse decodes a YAML catalog, fills derived fields and validates it:
//   - a missing slug is derived from the name or title
//   - a missing ID is generated
//   - a missing read time is estimated from the body
//
// Each tutorial must reference a declared category; its Category field is set
// to that category's slug.
func Parse(r io.Reader) (*Directory, error) {
	var doc file
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && err != io.EOF {
		return nil, errors.NewInvalidCatalog(fmt.Sprintf("invalid catalog YAML: %v", err), nil)
	}

	dir := &Directory{
		Categories: make([]tutorial.Category, 0, len(doc.Categories)),
		Tutorials:  make([]tutorial.Tutorial, 0, len(doc.Tutorials)),
	}

	bySlug := make(map[string]string, len(doc.Categories))
	categoryIDs := make(map[string]int, len(doc.Categories))
	for i, def := range doc.Categories {
		c, err := buildCategory(def)
		if err != nil {
			return nil, withIndex(err, "categories", i)
		}
		if err := checkUniqueID(categoryIDs, c.ID, "categories", i); err != nil {
			return nil, err
		}
		key := tutorial.Normalize(c.Slug)
		if _, dup := bySlug[key]; dup {
			return nil, errors.NewDuplicateSlug("", c.Slug)
		}
		bySlug[key] = c.Slug
		dir.Categories = append(dir.Categories, c)
	}

	tutorialIDs := make(map[string]int, len(doc.Tutorials))
	for i, def := range doc.Tutorials {
		t, err := buildTutorial(def)
		if err != nil {
			return nil, withIndex(err, "tutorials", i)
		}
		if err := checkUniqueID(tutorialIDs, t.ID, "tutorials", i); err != nil {
			return nil, err
		}
		slug, ok := bySlug[tutorial.Normalize(t.Category)]
		if !ok {
			return nil, errors.NewInvalidCatalog(
				fmt.Sprintf("tutorial %q references unknown category %q", t.Title, t.Category),
				map[string]any{"index": i, "category": t.Category},
			)
		}
		t.Category = slug
		dir.Tutorials = append(dir.Tutorials, t)
	}

	if conflict, dup := tutorial.CheckUniqueSlugs(dir.Tutorials); dup {
		return nil, errors.NewDuplicateSlug(conflict.Category, conflict.Slug)
	}

	return dir, nil
}

func buildCategory(def categoryDef) (tutorial.Category, error) {
	name := strings.TrimSpace(def.Name)
	if name == "" {
		return tutorial.Category{}, &tutorial.ValidationError{Field: "name", Reason: "must not be empty"}
	}
	slug := def.Slug
	if slug == "" {
		slug = tutorial.Slugify(name)
	}
	if slug == "" || tutorial.Slugify(slug) != slug {
		return tutorial.Category{}, &tutorial.ValidationError{Field: "slug", Reason: fmt.Sprintf("%q is not a valid slug", slug)}
	}
	id := def.ID
	if id == "" {
		id = slug
	}
	return tutorial.Category{
		ID:          id,
		Name:        name,
		Slug:        slug,
		Description: strings.TrimSpace(def.Description),
	}, nil
}

func buildTutorial(def tutorialDef) (tutorial.Tutorial, error) {
	difficulty, ok := tutorial.ParseDifficulty(def.Difficulty)
	if !ok {
		return tutorial.Tutorial{}, &tutorial.ValidationError{
			Field:  "difficulty",
			Reason: fmt.Sprintf("%q is not one of Beginner, Intermediate, Advanced", def.Difficulty),
		}
	}

	published, err := tutorial.ParseDate(def.Published)
	if err != nil {
		return tutorial.Tutorial{}, &tutorial.ValidationError{Field: "published", Reason: fmt.Sprintf("%q is not a YYYY-MM-DD date", def.Published)}
	}

	t := tutorial.Tutorial{
		ID:          strings.TrimSpace(def.ID),
		Title:       strings.TrimSpace(def.Title),
		Description: strings.TrimSpace(def.Description),
		Category:    strings.TrimSpace(def.Category),
		Slug:        def.Slug,
		Author:      strings.TrimSpace(def.Author),
		ReadTime:    strings.TrimSpace(def.ReadTime),
		Difficulty:  difficulty,
		PublishDate: published,
		Tags:        cleanTags(def.Tags),
		Featured:    def.Featured,
		Body:        def.Body,
	}

	if t.Slug == "" {
		t.Slug = tutorial.Slugify(t.Title)
	}
	if t.ID == "" {
		id, err := generateULID()
		if err != nil {
			return tutorial.Tutorial{}, errors.NewInternal(err)
		}
		t.ID = id
	}
	if t.ReadTime == "" {
		t.ReadTime = tutorial.FormatReadTime(tutorial.EstimateReadTime(tutorial.PlainText(t.Body)))
	}

	if err := tutorial.Validate(t); err != nil {
		return tutorial.Tutorial{}, err
	}
	return t, nil
}

// cleanTags trims tags and drops blanks and case-insensitive duplicates.
func cleanTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		key := tutorial.Normalize(tag)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, tag)
	}
	return out
}

// checkUniqueID records id for the entry at index and rejects repeats.
func checkUniqueID(seen map[string]int, id, section string, index int) error {
	if first, dup := seen[id]; dup {
		return errors.NewInvalidCatalog(
			fmt.Sprintf("%s[%d]: id %q already used by %s[%d]", section, index, id, section, first),
			map[string]any{"section": section, "index": index, "id": id},
		)
	}
	seen[id] = index
	return nil
}

// withIndex converts a validation failure into an INVALID_CATALOG error that
// names the offending entry.
func withIndex(err error, section string, index int) error {
	if vErr, ok := err.(*tutorial.ValidationError); ok {
		return errors.NewInvalidCatalog(
			fmt.Sprintf("%s[%d]: %s", section, index, vErr.Error()),
			map[string]any{"section": section, "index": index, "field": vErr.Field},
		)
	}
	return err
}

func generateULID() (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(time.Now()), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// Encode writes dir as a catalog YAML document that Parse accepts.
func Encode(w io.Writer, dir *Directory) error {
	doc := file{
		Categories: make([]categoryDef, len(dir.Categories)),
		Tutorials:  make([]tutorialDef, len(dir.Tutorials)),
	}
	for i, c := range dir.Categories {
		doc.Categories[i] = categoryDef{ID: c.ID, Name: c.Name, Slug: c.Slug, Description: c.Description}
	}
	for i, t := range dir.Tutorials {
		doc.Tutorials[i] = tutorialDef{
			ID:          t.ID,
			Title:       t.Title,
			Description: t.Description,
			Category:    t.Category,
			Slug:        t.Slug,
			Author:      t.Author,
			ReadTime:    t.ReadTime,
			Difficulty:  string(t.Difficulty),
			Published:   t.PublishDate.Format(time.DateOnly),
			Tags:        t.Tags,
			Featured:    t.Featured,
			Body:        t.Body,
		}
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return errors.NewInternal(err)
	}
	return enc.Close()
}
