package core

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Seed is the reference data file format:
//
//	categories:
//	  - name: Design
//	    sub_categories: [Logo Design, Branding]
//	statuses: [Pending, In Progress, Completed]
//	payment_statuses: [Unpaid, Partially Paid, Paid]
//	assignees:
//	  - assignee: John Doe
//	    captain: Jane Smith
type Seed struct {
	Categories      []SeedCategory `yaml:"categories"`
	Statuses        []string       `yaml:"statuses"`
	PaymentStatuses []string       `yaml:"payment_statuses"`
	Assignees       []SeedAssignee `yaml:"assignees"`
}

// SeedCategory is a category with its sub-categories.
type SeedCategory struct {
	Name          string   `yaml:"name"`
	SubCategories []string `yaml:"sub_categories"`
}

// SeedAssignee is one directory pair.
type SeedAssignee struct {
	Assignee string `yaml:"assignee"`
	Captain  string `yaml:"captain"`
}

// SeedResult counts what ApplySeed created.
type SeedResult struct {
	Created   int `json:"created"`
	Existing  int `json:"existing"`
	Assignees int `json:"assignees"`
}

// LoadSeedFile reads a seed file from disk.
func LoadSeedFile(path string) (Seed, error) {
	f, err := os.Open(path)
	if err != nil {
		return Seed{}, fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()
	return DecodeSeed(f)
}

// DecodeSeed parses seed YAML. Unknown keys are rejected so typos surface.
func DecodeSeed(r io.Reader) (Seed, error) {
	var seed Seed
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&seed); err != nil && err != io.EOF {
		return Seed{}, fmt.Errorf("decode seed: %w", err)
	}
	return seed, nil
}

// ApplySeed creates the reference values in seed that do not exist yet and
// upserts its assignee pairs. Running it twice creates nothing the second time.
func (s *Service) ApplySeed(ctx context.Context, seed Seed) (SeedResult, error) {
	var res SeedResult

	want := seedValues(seed)
	for _, kind := range []ReferenceKind{RefCategory, RefSubCategory, RefStatus, RefPaymentStatus} {
		existing, err := s.store.ListReference(ctx, kind)
		if err != nil {
			return res, fmt.Errorf("list %s: %w", kind, err)
		}
		have := make(map[string]struct{}, len(existing))
		for _, v := range existing {
			have[refKey(v)] = struct{}{}
		}

		for _, v := range want[kind] {
			if _, ok := have[refKey(v)]; ok {
				res.Existing++
				continue
			}
			if _, err := s.CreateReference(ctx, v); err != nil {
				return res, err
			}
			have[refKey(v)] = struct{}{}
			res.Created++
		}
	}

	if len(seed.Assignees) > 0 {
		pairs := make([]AssigneeRow, 0, len(seed.Assignees))
		for _, a := range seed.Assignees {
			a.Assignee, a.Captain = strings.TrimSpace(a.Assignee), strings.TrimSpace(a.Captain)
			if a.Assignee == "" || a.Captain == "" {
				continue
			}
			pairs = append(pairs, AssigneeRow{AssigneeName: a.Assignee, CaptainName: a.Captain})
		}
		n, err := s.store.UpsertAssignees(ctx, pairs)
		if err != nil {
			return res, fmt.Errorf("seed assignees: %w", err)
		}
		res.Assignees = n
	}

	slog.InfoContext(ctx, "reference seed applied",
		"created", res.Created,
		"existing", res.Existing,
		"assignees", res.Assignees,
	)
	return res, nil
}

// seedValues flattens a Seed into reference values per kind.
func seedValues(seed Seed) map[ReferenceKind][]ReferenceValue {
	out := make(map[ReferenceKind][]ReferenceValue)
	add := func(kind ReferenceKind, name, parent string) {
		name = strings.TrimSpace(name)
		if name == "" {
			return
		}
		out[kind] = append(out[kind], ReferenceValue{Kind: kind, Name: name, Parent: strings.TrimSpace(parent)})
	}

	for _, c := range seed.Categories {
		add(RefCategory, c.Name, "")
		for _, sub := range c.SubCategories {
			add(RefSubCategory, sub, c.Name)
		}
	}
	for _, st := range seed.Statuses {
		add(RefStatus, st, "")
	}
	for _, ps := range seed.PaymentStatuses {
		add(RefPaymentStatus, ps, "")
	}
	return out
}

func refKey(v ReferenceValue) string {
	return strings.ToLower(v.Parent) + "\x00" + strings.ToLower(v.Name)
}
