// Package dataset reads family files for offline use. Files hold a
// people list and a unions list in YAML or JSON.
package dataset

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"kinfolk/internal/family/models"
	dErrors "kinfolk/pkg/domain-errors"
)

type file struct {
	People []models.Person `yaml:"people"`
	Unions []models.Union  `yaml:"unions"`
}

// LoadFile reads and checks a dataset from path.
func LoadFile(path string) (models.Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Load decodes a dataset. JSON input is accepted as YAML flow syntax.
func Load(r io.Reader) (models.Snapshot, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("read dataset: %w", err)
	}
	var doc file
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && err != io.EOF {
		return models.Snapshot{}, dErrors.Wrap(err, dErrors.CodeValidation, "dataset is not valid YAML or JSON")
	}
	snap := models.Snapshot{People: doc.People, Unions: doc.Unions}
	if err := Check(snap); err != nil {
		return models.Snapshot{}, err
	}
	for i := range snap.Unions {
		t, err := models.ParseUnionType(string(snap.Unions[i].Type))
		if err != nil {
			return models.Snapshot{}, err
		}
		snap.Unions[i].Type = t
	}
	return snap, nil
}

// Check enforces unique non-empty ids and names. Parent and partner ids
// that do not resolve are allowed.
func Check(snap models.Snapshot) error {
	seen := make(map[string]bool, len(snap.People))
	for i, p := range snap.People {
		if p.ID == "" {
			return dErrors.Newf(dErrors.CodeValidation, "people[%d]: id is required", i)
		}
		if seen[p.ID] {
			return dErrors.Newf(dErrors.CodeValidation, "people[%d]: duplicate id %q", i, p.ID)
		}
		seen[p.ID] = true
		if p.FullName == "" {
			return dErrors.Newf(dErrors.CodeValidation, "people[%d]: full_name is required", i)
		}
	}
	unionIDs := make(map[string]bool, len(snap.Unions))
	for i, u := range snap.Unions {
		if u.ID == "" {
			return dErrors.Newf(dErrors.CodeValidation, "unions[%d]: id is required", i)
		}
		if unionIDs[u.ID] {
			return dErrors.Newf(dErrors.CodeValidation, "unions[%d]: duplicate id %q", i, u.ID)
		}
		unionIDs[u.ID] = true
		if u.Person1ID == "" || u.Person2ID == "" {
			return dErrors.Newf(dErrors.CodeValidation, "unions[%d]: person1_id and person2_id are required", i)
		}
	}
	return nil
}

type personWriter interface {
	Create(ctx context.Context, p *models.Person) error
}

type unionWriter interface {
	Create(ctx context.Context, u *models.Union) error
}

// Seed writes a snapshot into stores, people first.
func Seed(ctx context.Context, snap models.Snapshot, people personWriter, unions unionWriter) error {
	for i := range snap.People {
		p := snap.People[i]
		if err := people.Create(ctx, &p); err != nil {
			return fmt.Errorf("seed person %s: %w", p.ID, err)
		}
	}
	for i := range snap.Unions {
		u := snap.Unions[i]
		if err := unions.Create(ctx, &u); err != nil {
			return fmt.Errorf("seed union %s: %w", u.ID, err)
		}
	}
	return nil
}
