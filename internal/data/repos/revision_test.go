package repos

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/brandlight/ims-backend/internal/data/repos/testutil"
	types "github.com/brandlight/ims-backend/internal/domain"
	"github.com/brandlight/ims-backend/internal/pkg/dbctx"
)

func seedAsset(t *testing.T, dbc dbctx.Context, files StoredFileRepo, assets AssetRepo) *types.MarketingAsset {
	t.Helper()
	file := &types.StoredFile{ID: uuid.New(), FileName: "hero.png", StorageKey: "private/hero.png", IsPrivate: true}
	if _, err := files.Create(dbc, []*types.StoredFile{file}); err != nil {
		t.Fatalf("seed file: %v", err)
	}
	asset := &types.MarketingAsset{
		ID:           uuid.New(),
		Title:        "Spring Launch Hero",
		Status:       types.StatusDraft,
		LatestFileID: &file.ID,
		OwnerUserID:  uuid.New(),
	}
	if _, err := assets.Create(dbc, []*types.MarketingAsset{asset}); err != nil {
		t.Fatalf("seed asset: %v", err)
	}
	return asset
}

func TestRevisionRepoNumberingAndLatest(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}
	log := testutil.Logger(t)

	files := NewStoredFileRepo(db, log)
	assets := NewAssetRepo(db, log)
	revisions := NewRevisionRepo(db, log)

	asset := seedAsset(t, dbc, files, assets)

	max, err := revisions.MaxRevisionNumber(dbc, asset.ID)
	if err != nil || max != 0 {
		t.Fatalf("MaxRevisionNumber empty: max=%d err=%v", max, err)
	}

	r1 := &types.AssetRevision{ID: uuid.New(), MarketingAssetID: asset.ID, RevisionNumber: 1, RevisionFileID: *asset.LatestFileID, Annotations: datatypes.JSON(`[]`)}
	r2 := &types.AssetRevision{ID: uuid.New(), MarketingAssetID: asset.ID, RevisionNumber: 2, RevisionFileID: *asset.LatestFileID, Annotations: datatypes.JSON(`[]`)}
	if _, err := revisions.Create(dbc, []*types.AssetRevision{r1, r2}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	max, err = revisions.MaxRevisionNumber(dbc, asset.ID)
	if err != nil || max != 2 {
		t.Fatalf("MaxRevisionNumber: max=%d err=%v", max, err)
	}

	latest, err := revisions.GetLatestByAssetID(dbc, asset.ID)
	if err != nil || latest == nil || latest.RevisionNumber != 2 {
		t.Fatalf("GetLatestByAssetID: rev=%+v err=%v", latest, err)
	}

	byNum, err := revisions.GetByAssetAndNumber(dbc, asset.ID, 1)
	if err != nil || byNum == nil || byNum.ID != r1.ID {
		t.Fatalf("GetByAssetAndNumber: rev=%+v err=%v", byNum, err)
	}

	all, err := revisions.ListByAssetID(dbc, asset.ID)
	if err != nil || len(all) != 2 || all[0].RevisionNumber != 1 {
		t.Fatalf("ListByAssetID: len=%d err=%v", len(all), err)
	}
}

func TestRevisionRepoVersionedAnnotationWrite(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}
	log := testutil.Logger(t)

	files := NewStoredFileRepo(db, log)
	assets := NewAssetRepo(db, log)
	revisions := NewRevisionRepo(db, log)

	asset := seedAsset(t, dbc, files, assets)
	rev := &types.AssetRevision{ID: uuid.New(), MarketingAssetID: asset.ID, RevisionNumber: 1, RevisionFileID: *asset.LatestFileID, Annotations: datatypes.JSON(`[]`)}
	if _, err := revisions.Create(dbc, []*types.AssetRevision{rev}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	ok, err := revisions.UpdateAnnotationsVersioned(dbc, rev.ID, 0, datatypes.JSON(`[{"id":"a1"}]`))
	if err != nil || !ok {
		t.Fatalf("UpdateAnnotationsVersioned first write: ok=%v err=%v", ok, err)
	}

	// Stale version must be rejected.
	ok, err = revisions.UpdateAnnotationsVersioned(dbc, rev.ID, 0, datatypes.JSON(`[{"id":"a2"}]`))
	if err != nil {
		t.Fatalf("UpdateAnnotationsVersioned stale write: %v", err)
	}
	if ok {
		t.Fatal("UpdateAnnotationsVersioned: stale lock_version write landed")
	}

	got, err := revisions.GetByID(dbc, rev.ID)
	if err != nil || got == nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.LockVersion != 1 {
		t.Fatalf("lock_version: want=1 got=%d", got.LockVersion)
	}
	if string(got.Annotations) != `[{"id":"a1"}]` {
		t.Fatalf("annotations: got=%s", string(got.Annotations))
	}
}
