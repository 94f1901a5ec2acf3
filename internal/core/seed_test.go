package core_test

import (
	"context"
	"strings"
	"testing"

	"github.com/JonMunkholm/taskdesk/internal/core"
)

const seedYAML = `
categories:
  - name: Design
    sub_categories: [Logo Design, Branding]
  - name: Audit
    sub_categories: [Quarterly]
statuses: [Pending, In Progress, Completed]
payment_statuses: [Unpaid, Partially Paid, Paid]
assignees:
  - assignee: John Doe
    captain: Jane Smith
`

func TestDecodeSeed(t *testing.T) {
	seed, err := core.DecodeSeed(strings.NewReader(seedYAML))
	if err != nil {
		t.Fatalf("DecodeSeed: %v", err)
	}
	if len(seed.Categories) != 2 || len(seed.Categories[0].SubCategories) != 2 {
		t.Errorf("categories = %+v", seed.Categories)
	}
	if len(seed.Statuses) != 3 || len(seed.PaymentStatuses) != 3 || len(seed.Assignees) != 1 {
		t.Errorf("seed = %+v", seed)
	}

	if _, err := core.DecodeSeed(strings.NewReader("colours: [red]\n")); err == nil {
		t.Error("unknown key accepted")
	}

	empty, err := core.DecodeSeed(strings.NewReader(""))
	if err != nil || len(empty.Categories) != 0 {
		t.Errorf("empty seed = %+v, %v", empty, err)
	}
}

func TestApplySeed_Idempotent(t *testing.T) {
	svc, _ := newService(t, core.ServiceOptions{})
	ctx := context.Background()

	seed, err := core.DecodeSeed(strings.NewReader(seedYAML))
	if err != nil {
		t.Fatal(err)
	}

	first, err := svc.ApplySeed(ctx, seed)
	if err != nil {
		t.Fatalf("first ApplySeed: %v", err)
	}
	// 2 categories + 3 sub-categories + 3 statuses + 3 payment statuses
	if first.Created != 11 || first.Existing != 0 || first.Assignees != 1 {
		t.Errorf("first = %+v", first)
	}

	second, err := svc.ApplySeed(ctx, seed)
	if err != nil {
		t.Fatalf("second ApplySeed: %v", err)
	}
	if second.Created != 0 || second.Existing != 11 {
		t.Errorf("second = %+v", second)
	}

	subs, _ := svc.ListReference(ctx, core.RefSubCategory)
	if len(subs) != 3 {
		t.Fatalf("sub-categories = %+v", subs)
	}
	for _, s := range subs {
		if s.Parent == "" {
			t.Errorf("sub-category %q has no parent", s.Name)
		}
	}
}
