package assignment_test

import (
	"context"
	"testing"

	"github.com/ignite/signature-relay/internal/domain"
	"github.com/ignite/signature-relay/internal/service/assignment"
)

// memRepo is an in-memory assignment repository for unit testing.
type memRepo struct {
	profiles    map[string]*domain.Profile // keyed by email
	assignments map[string]*domain.Assignment
	signatures  map[string]*domain.Signature
	banners     map[string]*domain.Banner
}

func newMemRepo() *memRepo {
	return &memRepo{
		profiles:    make(map[string]*domain.Profile),
		assignments: make(map[string]*domain.Assignment),
		signatures:  make(map[string]*domain.Signature),
		banners:     make(map[string]*domain.Banner),
	}
}

func (m *memRepo) GetProfileByEmail(_ context.Context, email string) (*domain.Profile, error) {
	p, ok := m.profiles[email]
	if !ok {
		return nil, assignment.ErrProfileNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memRepo) GetActiveAssignment(_ context.Context, profileID string) (*domain.Assignment, error) {
	a, ok := m.assignments[profileID]
	if !ok || !a.IsActive {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (m *memRepo) GetSignature(_ context.Context, id string) (*domain.Signature, error) {
	s, ok := m.signatures[id]
	if !ok {
		return nil, assignment.ErrSignatureNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *memRepo) GetBanner(_ context.Context, id string) (*domain.Banner, error) {
	b, ok := m.banners[id]
	if !ok {
		return nil, assignment.ErrBannerNotFound
	}
	cp := *b
	return &cp, nil
}

func seeded() *memRepo {
	repo := newMemRepo()
	repo.profiles["jane@co.com"] = &domain.Profile{ID: "p1", Email: "jane@co.com", FirstName: "Jane", LastName: "Doe"}
	repo.assignments["p1"] = &domain.Assignment{
		ID: "a1", ProfileID: "p1", SignatureID: "s1",
		BannerIDs: []string{"b1", "b2"}, IsActive: true,
	}
	repo.signatures["s1"] = &domain.Signature{ID: "s1", HTML: "<p>Jane Doe</p>", IsActive: true}
	repo.banners["b1"] = &domain.Banner{ID: "b1", HTML: "<img src=\"b1.png\">", IsActive: true}
	repo.banners["b2"] = &domain.Banner{ID: "b2", HTML: "<img src=\"b2.png\">", IsActive: true, MaxClicks: 5, CurrentClicks: 5}
	return repo
}

func TestResolve(t *testing.T) {
	svc := assignment.NewService(seeded())

	res, err := svc.Resolve(context.Background(), `"Jane Doe" <jane@co.com>`)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res == nil {
		t.Fatal("expected a resolution")
	}
	if res.Profile.ID != "p1" {
		t.Errorf("profile = %s, want p1", res.Profile.ID)
	}
	if res.Signature == nil || res.Signature.ID != "s1" {
		t.Errorf("signature = %+v, want s1", res.Signature)
	}
	if len(res.BannerIDs) != 2 || res.BannerIDs[0] != "b1" || res.BannerIDs[1] != "b2" {
		t.Errorf("banner ids = %v, want [b1 b2]", res.BannerIDs)
	}
}

func TestResolveNoProfile(t *testing.T) {
	svc := assignment.NewService(seeded())

	res, err := svc.Resolve(context.Background(), "stranger@elsewhere.com")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res != nil {
		t.Errorf("expected nil resolution for unknown sender, got %+v", res)
	}
}

func TestResolveInactiveAssignment(t *testing.T) {
	repo := seeded()
	repo.assignments["p1"].IsActive = false
	svc := assignment.NewService(repo)

	res, err := svc.Resolve(context.Background(), "jane@co.com")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res != nil {
		t.Errorf("expected nil resolution for inactive assignment, got %+v", res)
	}
}

func TestResolveMissingSignatureDegrades(t *testing.T) {
	repo := seeded()
	delete(repo.signatures, "s1")
	svc := assignment.NewService(repo)

	res, err := svc.Resolve(context.Background(), "jane@co.com")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res == nil {
		t.Fatal("expected a resolution")
	}
	if res.Signature != nil {
		t.Errorf("expected nil signature, got %+v", res.Signature)
	}
	if len(res.BannerIDs) != 2 {
		t.Errorf("banners should survive a missing signature, got %v", res.BannerIDs)
	}
}

func TestActiveBanner(t *testing.T) {
	svc := assignment.NewService(seeded())
	ctx := context.Background()

	b, err := svc.ActiveBanner(ctx, "b1")
	if err != nil || b == nil {
		t.Fatalf("ActiveBanner(b1) = %v, %v", b, err)
	}

	// b2 spent its click budget
	b, err = svc.ActiveBanner(ctx, "b2")
	if err != nil {
		t.Fatalf("ActiveBanner(b2): %v", err)
	}
	if b != nil {
		t.Errorf("exhausted banner should resolve to nil, got %+v", b)
	}

	b, err = svc.ActiveBanner(ctx, "nope")
	if err != nil {
		t.Fatalf("ActiveBanner(nope): %v", err)
	}
	if b != nil {
		t.Errorf("missing banner should resolve to nil, got %+v", b)
	}
}

func TestExtractAddress(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{`"Jane Doe" <jane@co.com>`, "jane@co.com"},
		{`Jane Doe <Jane@Co.com>`, "jane@co.com"},
		{`jane@co.com`, "jane@co.com"},
		{`<jane@co.com>`, "jane@co.com"},
		{`Jane Doe [mailto] <jane@co.com>`, "jane@co.com"},
		{``, ""},
		{`not an address`, ""},
	}
	for _, tc := range cases {
		if got := assignment.ExtractAddress(tc.in); got != tc.want {
			t.Errorf("ExtractAddress(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
