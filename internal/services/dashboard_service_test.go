package services

import (
	"testing"

	"github.com/google/uuid"

	types "github.com/brandlight/ims-backend/internal/domain"
)

func newDashboardFixture(t *testing.T) (*fakeAssetRepo, *fakeStoredFileRepo, *fakeProjectRepo, DashboardService) {
	t.Helper()
	assets := newFakeAssetRepo()
	files := &fakeStoredFileRepo{}
	projects := &fakeProjectRepo{}
	audit := &fakeAuditService{}
	svc := NewDashboardService(nil, testLogger(t), assets, files, projects, audit)
	return assets, files, projects, svc
}

func seedAssetWithStatus(t *testing.T, assets *fakeAssetRepo, title, status string) {
	t.Helper()
	_, err := assets.Create(authedCtx(uuid.New(), types.RoleContributor, "Seeder"), []*types.MarketingAsset{{
		ID:          uuid.New(),
		Title:       title,
		Status:      status,
		OwnerUserID: uuid.New(),
	}})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
}

func TestSummaryBucketsStatuses(t *testing.T) {
	assets, _, _, svc := newDashboardFixture(t)
	seedAssetWithStatus(t, assets, "a", types.StatusDraft)
	seedAssetWithStatus(t, assets, "b", types.StatusPeerReview)
	seedAssetWithStatus(t, assets, "c", types.StatusHODApproval)
	seedAssetWithStatus(t, assets, "d", types.StatusFinalSignoff)
	seedAssetWithStatus(t, assets, "e", types.StatusApproved)
	seedAssetWithStatus(t, assets, "f", types.StatusRejected)
	seedAssetWithStatus(t, assets, "g", "Mystery State")

	dbc := authedCtx(uuid.New(), types.RoleContributor, "Jane Smith")
	got, err := svc.Summary(dbc)
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	want := StatusSummary{Total: 7, Draft: 2, PeerReview: 1, HODApproval: 1, FinalSignoff: 1, Approved: 1, Rejected: 1}
	if *got != want {
		t.Fatalf("summary = %+v, want %+v", *got, want)
	}
}

func TestClampListLimit(t *testing.T) {
	cases := []struct {
		in   int
		want int
	}{
		{0, 500},
		{-5, 500},
		{1, 1},
		{50, 50},
		{51, 50},
		{999, 50},
	}
	for _, c := range cases {
		if got := clampListLimit(c.in); got != c.want {
			t.Fatalf("clampListLimit(%d) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestRecentAssetsExpandsInReviewFilter(t *testing.T) {
	assets, _, _, svc := newDashboardFixture(t)
	seedAssetWithStatus(t, assets, "a", types.StatusDraft)
	seedAssetWithStatus(t, assets, "b", types.StatusPeerReview)
	seedAssetWithStatus(t, assets, "c", types.StatusFinalSignoff)
	seedAssetWithStatus(t, assets, "d", types.StatusApproved)

	dbc := authedCtx(uuid.New(), types.RoleContributor, "Jane Smith")

	got, err := svc.RecentAssets(dbc, 0, "In Review")
	if err != nil {
		t.Fatalf("RecentAssets: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("%d assets, want the 2 in review", len(got))
	}

	got, err = svc.RecentAssets(dbc, 0, types.StatusDraft)
	if err != nil {
		t.Fatalf("RecentAssets draft: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("%d drafts, want 1", len(got))
	}

	got, err = svc.RecentAssets(dbc, 0, "")
	if err != nil {
		t.Fatalf("RecentAssets all: %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("%d assets, want all 4", len(got))
	}
}

func TestSearchBlankQueryReturnsEmpty(t *testing.T) {
	assets, _, projects, svc := newDashboardFixture(t)
	seedAssetWithStatus(t, assets, "Spring Launch Hero", types.StatusDraft)
	projects.Create(authedCtx(uuid.New(), types.RoleContributor, "Seeder"), []*types.Project{{
		ID: uuid.New(), Title: "Spring Launch", Status: types.ProjectStatusActive,
	}})

	dbc := authedCtx(uuid.New(), types.RoleContributor, "Jane Smith")

	got, err := svc.Search(dbc, "   ")
	if err != nil {
		t.Fatalf("Search blank: %v", err)
	}
	if len(got.Assets) != 0 || len(got.Projects) != 0 {
		t.Fatalf("blank search = %+v", got)
	}

	got, err = svc.Search(dbc, "spring")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got.Assets) != 1 || len(got.Projects) != 1 {
		t.Fatalf("search hits = %d assets %d projects", len(got.Assets), len(got.Projects))
	}
}

func TestRecentUploadsFiltersAttachedType(t *testing.T) {
	_, files, _, svc := newDashboardFixture(t)
	assetID := uuid.New()
	files.Create(authedCtx(uuid.New(), types.RoleContributor, "Seeder"), []*types.StoredFile{
		{ID: uuid.New(), FileName: "hero.png", AttachedToType: types.DocTypeMarketingAsset, AttachedToID: &assetID},
		{ID: uuid.New(), FileName: "brief.pdf", AttachedToType: types.DocTypeProject},
	})

	dbc := authedCtx(uuid.New(), types.RoleContributor, "Jane Smith")
	got, err := svc.RecentUploads(dbc, 0)
	if err != nil {
		t.Fatalf("RecentUploads: %v", err)
	}
	if len(got) != 1 || got[0].FileName != "hero.png" {
		t.Fatalf("uploads = %+v", got)
	}
}
