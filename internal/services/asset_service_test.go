package services

import (
	"strings"
	"testing"

	"github.com/google/uuid"

	types "github.com/brandlight/ims-backend/internal/domain"
	"github.com/brandlight/ims-backend/internal/pkg/apierr"
)

type assetFixture struct {
	assets *fakeAssetRepo
	files  *fakeFileService
	notify *fakeNotificationService
	audit  *fakeAuditService
	svc    AssetService
}

func newAssetFixture(t *testing.T) (*fakeAssetRepo, *fakeFileService, *fakeAuditService, AssetService) {
	t.Helper()
	f := newAssetServiceFixture(t)
	return f.assets, f.files, f.audit, f.svc
}

func newAssetServiceFixture(t *testing.T) assetFixture {
	t.Helper()
	assets := newFakeAssetRepo()
	revisions := newFakeRevisionRepo()
	files := newFakeFileService()
	notify := &fakeNotificationService{}
	audit := &fakeAuditService{}
	revSvc := NewRevisionService(nil, testLogger(t), assets, revisions, audit)
	lifecycle := NewLifecycleService(nil, testLogger(t), assets, NewDefaultWorkflowEngine(), files, notify, audit)
	svc := NewAssetService(nil, testLogger(t), assets, files, revSvc, lifecycle, notify, audit)
	return assetFixture{assets: assets, files: files, notify: notify, audit: audit, svc: svc}
}

func uploadInput(name string) UploadInput {
	return UploadInput{
		FileName:  name,
		MimeType:  "image/png",
		SizeBytes: 1024,
		Body:      strings.NewReader("png bytes"),
	}
}

func TestAssetCreate(t *testing.T) {
	assets, files, audit, svc := newAssetFixture(t)
	owner := uuid.New()
	dbc := authedCtx(owner, types.RoleContributor, "Jane Smith")

	asset, err := svc.Create(dbc, CreateAssetInput{
		Title:    "  Spring Launch Hero  ",
		Campaign: "Spring 2026",
		File:     uploadInput("hero.png"),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if asset.Title != "Spring Launch Hero" {
		t.Fatalf("title = %q, want trimmed", asset.Title)
	}
	if asset.Category != "Asset" {
		t.Fatalf("category = %q, want default", asset.Category)
	}
	if asset.Status != types.StatusDraft || asset.WorkflowState != types.StatusDraft {
		t.Fatalf("status = %q / %q", asset.Status, asset.WorkflowState)
	}
	if asset.OwnerUserID != owner {
		t.Fatal("owner not taken from caller")
	}
	if asset.LatestFileID == nil {
		t.Fatal("file not linked")
	}

	stored := files.files[*asset.LatestFileID]
	if !stored.IsPrivate {
		t.Fatal("initial upload must be private")
	}
	if stored.AttachedToType != types.DocTypeMarketingAsset || stored.AttachedToID == nil || *stored.AttachedToID != asset.ID {
		t.Fatalf("file not back-linked: %+v", stored)
	}
	if got := audit.byAction(types.AuditActionCreated); len(got) != 1 {
		t.Fatalf("%d Created audit rows, want 1", len(got))
	}
	if _, err := assets.GetByID(dbc, asset.ID); err != nil {
		t.Fatalf("persisted read: %v", err)
	}
}

func TestAssetCreateValidation(t *testing.T) {
	_, _, _, svc := newAssetFixture(t)

	dbc := authedCtx(uuid.New(), types.RoleContributor, "Jane Smith")
	if _, err := svc.Create(dbc, CreateAssetInput{Title: "  ", File: uploadInput("hero.png")}); !apierr.IsCode(err, "validation_error") {
		t.Fatalf("blank title: err = %v", err)
	}

	anon := anonCtx()
	if _, err := svc.Create(anon, CreateAssetInput{Title: "X", File: uploadInput("hero.png")}); !apierr.IsCode(err, "permission_denied") {
		t.Fatalf("anonymous create: err = %v", err)
	}
}

func TestAssetGetDetail(t *testing.T) {
	_, _, _, svc := newAssetFixture(t)
	dbc := authedCtx(uuid.New(), types.RoleContributor, "Jane Smith")

	asset, err := svc.Create(dbc, CreateAssetInput{Title: "Hero", File: uploadInput("hero.png")})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.SaveContentBrief(dbc, asset.ID, "Brief"); err != nil {
		t.Fatalf("SaveContentBrief: %v", err)
	}

	detail, err := svc.Get(dbc, asset.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if detail.Asset.ID != asset.ID {
		t.Fatal("wrong asset")
	}
	if len(detail.Revisions) != 1 {
		t.Fatalf("%d revisions, want the baseline", len(detail.Revisions))
	}
	if len(detail.Transitions) != 1 || detail.Transitions[0].Action != "Submit for Review" {
		t.Fatalf("transitions = %+v", detail.Transitions)
	}

	if _, err := svc.Get(dbc, uuid.New()); !apierr.IsCode(err, "not_found") {
		t.Fatalf("missing asset: err = %v", err)
	}
}

func TestAssetUpdatePartialFields(t *testing.T) {
	assets, _, audit, svc := newAssetFixture(t)
	dbc := authedCtx(uuid.New(), types.RoleContributor, "Jane Smith")

	asset, err := svc.Create(dbc, CreateAssetInput{Title: "Hero", Campaign: "Spring", File: uploadInput("hero.png")})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	newTitle := "Hero v2"
	updated, err := svc.Update(dbc, asset.ID, UpdateAssetInput{Title: &newTitle})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Title != "Hero v2" {
		t.Fatalf("title = %q", updated.Title)
	}
	if updated.Campaign != "Spring" {
		t.Fatalf("campaign changed unexpectedly: %q", updated.Campaign)
	}
	if got := audit.byAction(types.AuditActionModified); len(got) != 1 {
		t.Fatalf("%d Modified audit rows, want 1", len(got))
	}

	blank := " "
	if _, err := svc.Update(dbc, asset.ID, UpdateAssetInput{Title: &blank}); !apierr.IsCode(err, "validation_error") {
		t.Fatalf("blank title update: err = %v", err)
	}
	if assets.assets[asset.ID].Title != "Hero v2" {
		t.Fatal("failed update mutated the row")
	}
}

func TestAssetUpdateReclaimsPublicFile(t *testing.T) {
	f := newAssetServiceFixture(t)
	dbc := authedCtx(uuid.New(), types.RoleContributor, "Jane Smith")

	asset, err := f.svc.Create(dbc, CreateAssetInput{Title: "Hero", File: uploadInput("hero.png")})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Simulate a file that leaked public while the asset is still a draft.
	f.files.files[*asset.LatestFileID].IsPrivate = false

	newTitle := "Hero v2"
	if _, err := f.svc.Update(dbc, asset.ID, UpdateAssetInput{Title: &newTitle}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if !f.files.files[*asset.LatestFileID].IsPrivate {
		t.Fatal("saving a draft asset must pull its file back private")
	}
}

func TestSaveContentBriefScansMentions(t *testing.T) {
	f := newAssetServiceFixture(t)
	dbc := authedCtx(uuid.New(), types.RoleContributor, "Jane Smith")

	asset, err := f.svc.Create(dbc, CreateAssetInput{Title: "Hero", File: uploadInput("hero.png")})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	brief := "Tighten the copy, @Alex.Reviewer should take a look"
	if _, err := f.svc.SaveContentBrief(dbc, asset.ID, brief); err != nil {
		t.Fatalf("SaveContentBrief: %v", err)
	}
	if len(f.notify.mentions) != 1 || f.notify.mentions[0] != brief {
		t.Fatalf("mention scans = %+v, want the brief text", f.notify.mentions)
	}
}

func TestAssetUploadRevisionStoresPrivateFile(t *testing.T) {
	_, files, _, svc := newAssetFixture(t)
	dbc := authedCtx(uuid.New(), types.RoleContributor, "Jane Smith")

	asset, err := svc.Create(dbc, CreateAssetInput{Title: "Hero", File: uploadInput("hero.png")})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	rev, err := svc.UploadRevision(dbc, asset.ID, uploadInput("hero-v2.png"), "Second pass")
	if err != nil {
		t.Fatalf("UploadRevision: %v", err)
	}
	if rev.RevisionNumber != 1 {
		t.Fatalf("revision number = %d, want 1 on an asset with no prior revisions", rev.RevisionNumber)
	}

	stored := files.files[rev.RevisionFileID]
	if !stored.IsPrivate {
		t.Fatal("revision file must stay private")
	}
	if stored.AttachedToType != types.DocTypeAssetRevision {
		t.Fatalf("attached type = %q", stored.AttachedToType)
	}

	if _, err := svc.UploadRevision(dbc, uuid.New(), uploadInput("x.png"), ""); !apierr.IsCode(err, "not_found") {
		t.Fatalf("unknown asset: err = %v", err)
	}
}

func TestListByProject(t *testing.T) {
	assets, _, _, svc := newAssetFixture(t)
	dbc := authedCtx(uuid.New(), types.RoleContributor, "Jane Smith")
	projectID := uuid.New()

	asset := seedFakeAsset(t, assets, true)
	stored := assets.assets[asset.ID]
	stored.ProjectID = &projectID
	seedFakeAsset(t, assets, true)

	got, err := svc.ListByProject(dbc, projectID)
	if err != nil {
		t.Fatalf("ListByProject: %v", err)
	}
	if len(got) != 1 || got[0].ID != asset.ID {
		t.Fatalf("project assets = %+v", got)
	}

	if _, err := svc.ListByProject(dbc, uuid.Nil); !apierr.IsCode(err, "validation_error") {
		t.Fatalf("nil project: err = %v", err)
	}
}
