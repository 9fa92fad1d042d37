package services

import (
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	types "github.com/brandlight/ims-backend/internal/domain"
	"github.com/brandlight/ims-backend/internal/pkg/dbctx"
	"github.com/brandlight/ims-backend/internal/pkg/logger"
	"github.com/brandlight/ims-backend/internal/requestdata"
)

var (
	testLogOnce sync.Once
	testLog     *logger.Logger
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	testLogOnce.Do(func() {
		l, err := logger.New("test")
		if err != nil {
			panic(err)
		}
		testLog = l
	})
	return testLog
}

func authedCtx(userID uuid.UUID, role, fullName string) dbctx.Context {
	ctx := requestdata.WithRequestData(context.Background(), &requestdata.RequestData{
		UserID:   userID,
		Role:     role,
		FullName: fullName,
	})
	return dbctx.Context{Ctx: ctx}
}

// fakeAssetRepo keeps assets in a map and applies UpdateFields by column name.
type fakeAssetRepo struct {
	assets map[uuid.UUID]*types.MarketingAsset
}

func newFakeAssetRepo() *fakeAssetRepo {
	return &fakeAssetRepo{assets: map[uuid.UUID]*types.MarketingAsset{}}
}

func (r *fakeAssetRepo) Create(dbc dbctx.Context, assets []*types.MarketingAsset) ([]*types.MarketingAsset, error) {
	for _, a := range assets {
		if a.ID == uuid.Nil {
			a.ID = uuid.New()
		}
		copied := *a
		r.assets[a.ID] = &copied
	}
	return assets, nil
}

func (r *fakeAssetRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.MarketingAsset, error) {
	a, ok := r.assets[id]
	if !ok {
		return nil, nil
	}
	copied := *a
	return &copied, nil
}

func (r *fakeAssetRepo) Update(dbc dbctx.Context, asset *types.MarketingAsset) error {
	copied := *asset
	r.assets[asset.ID] = &copied
	return nil
}

func (r *fakeAssetRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	a, ok := r.assets[id]
	if !ok {
		return nil
	}
	for col, val := range updates {
		switch col {
		case "title":
			a.Title = val.(string)
		case "campaign":
			a.Campaign = val.(string)
		case "category":
			a.Category = val.(string)
		case "description":
			a.Description = val.(string)
		case "status":
			a.Status = val.(string)
		case "workflow_state":
			a.WorkflowState = val.(string)
		case "latest_file_id":
			fileID := val.(uuid.UUID)
			a.LatestFileID = &fileID
		case "expiry_date":
			expiry := val.(time.Time)
			a.ExpiryDate = &expiry
		}
	}
	return nil
}

func (r *fakeAssetRepo) ListRecent(dbc dbctx.Context, limit int, statuses []string) ([]*types.MarketingAsset, error) {
	out := []*types.MarketingAsset{}
	for _, a := range r.assets {
		if len(statuses) > 0 {
			match := false
			for _, s := range statuses {
				if a.Status == s {
					match = true
					break
				}
			}
			if !match {
				continue
			}
		}
		copied := *a
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeAssetRepo) ListByProjectID(dbc dbctx.Context, projectID uuid.UUID) ([]*types.MarketingAsset, error) {
	out := []*types.MarketingAsset{}
	for _, a := range r.assets {
		if a.ProjectID != nil && *a.ProjectID == projectID {
			copied := *a
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeAssetRepo) ListAll(dbc dbctx.Context) ([]*types.MarketingAsset, error) {
	out := []*types.MarketingAsset{}
	for _, a := range r.assets {
		copied := *a
		out = append(out, &copied)
	}
	return out, nil
}

func (r *fakeAssetRepo) CountByStatus(dbc dbctx.Context) (map[string]int64, error) {
	out := map[string]int64{}
	for _, a := range r.assets {
		out[a.Status]++
	}
	return out, nil
}

func (r *fakeAssetRepo) SearchLike(dbc dbctx.Context, query string, limit int) ([]*types.MarketingAsset, error) {
	out := []*types.MarketingAsset{}
	q := strings.ToLower(query)
	for _, a := range r.assets {
		if strings.Contains(strings.ToLower(a.Title), q) || strings.Contains(strings.ToLower(a.Campaign), q) {
			copied := *a
			out = append(out, &copied)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// fakeRevisionRepo implements the versioned annotation write in memory.
// loseRaces simulates concurrent writers: while positive, each versioned
// write bumps the lock version without applying and reports a lost race.
type fakeRevisionRepo struct {
	revisions map[uuid.UUID]*types.AssetRevision
	loseRaces int
}

func newFakeRevisionRepo() *fakeRevisionRepo {
	return &fakeRevisionRepo{revisions: map[uuid.UUID]*types.AssetRevision{}}
}

func (r *fakeRevisionRepo) Create(dbc dbctx.Context, revisions []*types.AssetRevision) ([]*types.AssetRevision, error) {
	for _, rev := range revisions {
		if rev.ID == uuid.Nil {
			rev.ID = uuid.New()
		}
		copied := *rev
		r.revisions[rev.ID] = &copied
	}
	return revisions, nil
}

func (r *fakeRevisionRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.AssetRevision, error) {
	rev, ok := r.revisions[id]
	if !ok {
		return nil, nil
	}
	copied := *rev
	return &copied, nil
}

func (r *fakeRevisionRepo) GetLatestByAssetID(dbc dbctx.Context, assetID uuid.UUID) (*types.AssetRevision, error) {
	var latest *types.AssetRevision
	for _, rev := range r.revisions {
		if rev.MarketingAssetID != assetID {
			continue
		}
		if latest == nil || rev.RevisionNumber > latest.RevisionNumber {
			latest = rev
		}
	}
	if latest == nil {
		return nil, nil
	}
	copied := *latest
	return &copied, nil
}

func (r *fakeRevisionRepo) GetByAssetAndNumber(dbc dbctx.Context, assetID uuid.UUID, number int) (*types.AssetRevision, error) {
	for _, rev := range r.revisions {
		if rev.MarketingAssetID == assetID && rev.RevisionNumber == number {
			copied := *rev
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeRevisionRepo) MaxRevisionNumber(dbc dbctx.Context, assetID uuid.UUID) (int, error) {
	max := 0
	for _, rev := range r.revisions {
		if rev.MarketingAssetID == assetID && rev.RevisionNumber > max {
			max = rev.RevisionNumber
		}
	}
	return max, nil
}

func (r *fakeRevisionRepo) ListByAssetID(dbc dbctx.Context, assetID uuid.UUID) ([]*types.AssetRevision, error) {
	out := []*types.AssetRevision{}
	for _, rev := range r.revisions {
		if rev.MarketingAssetID == assetID {
			copied := *rev
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RevisionNumber > out[j].RevisionNumber })
	return out, nil
}

func (r *fakeRevisionRepo) ListAll(dbc dbctx.Context) ([]*types.AssetRevision, error) {
	out := []*types.AssetRevision{}
	for _, rev := range r.revisions {
		copied := *rev
		out = append(out, &copied)
	}
	return out, nil
}

func (r *fakeRevisionRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	rev, ok := r.revisions[id]
	if !ok {
		return nil
	}
	for col, val := range updates {
		switch col {
		case "content_brief":
			rev.ContentBrief = val.(string)
		case "revision_notes":
			rev.RevisionNotes = val.(string)
		}
	}
	return nil
}

func (r *fakeRevisionRepo) UpdateAnnotationsVersioned(dbc dbctx.Context, id uuid.UUID, lockVersion int, annotations datatypes.JSON) (bool, error) {
	rev, ok := r.revisions[id]
	if !ok {
		return false, nil
	}
	if r.loseRaces > 0 {
		r.loseRaces--
		rev.LockVersion++
		return false, nil
	}
	if rev.LockVersion != lockVersion {
		return false, nil
	}
	rev.Annotations = annotations
	rev.LockVersion++
	return true, nil
}

type fakeStoredFileRepo struct {
	files []*types.StoredFile
}

func (r *fakeStoredFileRepo) Create(dbc dbctx.Context, files []*types.StoredFile) ([]*types.StoredFile, error) {
	for _, f := range files {
		if f.ID == uuid.Nil {
			f.ID = uuid.New()
		}
		copied := *f
		r.files = append(r.files, &copied)
	}
	return files, nil
}

func (r *fakeStoredFileRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.StoredFile, error) {
	for _, f := range r.files {
		if f.ID == id {
			copied := *f
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeStoredFileRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.StoredFile, error) {
	out := []*types.StoredFile{}
	for _, id := range ids {
		if f, _ := r.GetByID(dbc, id); f != nil {
			out = append(out, f)
		}
	}
	return out, nil
}

func (r *fakeStoredFileRepo) CountByFileNamePrefix(dbc dbctx.Context, prefix string) (int64, error) {
	var count int64
	for _, f := range r.files {
		if strings.HasPrefix(f.FileName, prefix) {
			count++
		}
	}
	return count, nil
}

func (r *fakeStoredFileRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	for _, f := range r.files {
		if f.ID != id {
			continue
		}
		for col, val := range updates {
			switch col {
			case "file_name":
				f.FileName = val.(string)
			case "storage_key":
				f.StorageKey = val.(string)
			case "file_url":
				f.FileURL = val.(string)
			case "is_private":
				f.IsPrivate = val.(bool)
			case "attached_to_type":
				f.AttachedToType = val.(string)
			case "attached_to_id":
				attachedID := val.(uuid.UUID)
				f.AttachedToID = &attachedID
			}
		}
	}
	return nil
}

func (r *fakeStoredFileRepo) ListRecentByAttachedType(dbc dbctx.Context, attachedType string, limit int) ([]*types.StoredFile, error) {
	out := []*types.StoredFile{}
	for i := len(r.files) - 1; i >= 0; i-- {
		if r.files[i].AttachedToType != attachedType {
			continue
		}
		copied := *r.files[i]
		out = append(out, &copied)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (r *fakeStoredFileRepo) ListAll(dbc dbctx.Context) ([]*types.StoredFile, error) {
	out := []*types.StoredFile{}
	for _, f := range r.files {
		copied := *f
		out = append(out, &copied)
	}
	return out, nil
}

type fakeProjectRepo struct {
	projects []*types.Project
}

func (r *fakeProjectRepo) Create(dbc dbctx.Context, projects []*types.Project) ([]*types.Project, error) {
	for _, p := range projects {
		if p.ID == uuid.Nil {
			p.ID = uuid.New()
		}
		copied := *p
		r.projects = append(r.projects, &copied)
	}
	return projects, nil
}

func (r *fakeProjectRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Project, error) {
	for _, p := range r.projects {
		if p.ID == id {
			copied := *p
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeProjectRepo) SearchLike(dbc dbctx.Context, query string, limit int) ([]*types.Project, error) {
	out := []*types.Project{}
	q := strings.ToLower(query)
	for _, p := range r.projects {
		if strings.Contains(strings.ToLower(p.Title), q) {
			copied := *p
			out = append(out, &copied)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakeUserRepo struct {
	users []*types.User
}

func (r *fakeUserRepo) Create(dbc dbctx.Context, users []*types.User) ([]*types.User, error) {
	for _, u := range users {
		if u.ID == uuid.Nil {
			u.ID = uuid.New()
		}
		copied := *u
		r.users = append(r.users, &copied)
	}
	return users, nil
}

func (r *fakeUserRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.User, error) {
	for _, u := range r.users {
		if u.ID == id {
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.User, error) {
	out := []*types.User{}
	for _, id := range ids {
		if u, _ := r.GetByID(dbc, id); u != nil {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) GetByEmails(dbc dbctx.Context, emails []string) ([]*types.User, error) {
	out := []*types.User{}
	for _, u := range r.users {
		for _, e := range emails {
			if strings.EqualFold(u.Email, e) {
				copied := *u
				out = append(out, &copied)
			}
		}
	}
	return out, nil
}

func (r *fakeUserRepo) SearchByName(dbc dbctx.Context, query string, limit int) ([]*types.User, error) {
	out := []*types.User{}
	q := strings.ToLower(query)
	for _, u := range r.users {
		if strings.Contains(strings.ToLower(u.FullName), q) || strings.Contains(strings.ToLower(u.Email), q) {
			copied := *u
			out = append(out, &copied)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakeNotificationRepo struct {
	notifications []*types.Notification
}

func (r *fakeNotificationRepo) Create(dbc dbctx.Context, notifications []*types.Notification) ([]*types.Notification, error) {
	for _, n := range notifications {
		if n.ID == uuid.Nil {
			n.ID = uuid.New()
		}
		copied := *n
		r.notifications = append(r.notifications, &copied)
	}
	return notifications, nil
}

func (r *fakeNotificationRepo) ListForUser(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*types.Notification, error) {
	out := []*types.Notification{}
	for _, n := range r.notifications {
		if n.ForUserID == userID {
			copied := *n
			out = append(out, &copied)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeNotificationRepo) CountUnread(dbc dbctx.Context, userID uuid.UUID) (int64, error) {
	var count int64
	for _, n := range r.notifications {
		if n.ForUserID == userID && !n.Read {
			count++
		}
	}
	return count, nil
}

func (r *fakeNotificationRepo) MarkAllRead(dbc dbctx.Context, userID uuid.UUID) error {
	for _, n := range r.notifications {
		if n.ForUserID == userID {
			n.Read = true
		}
	}
	return nil
}

type fakeAuditRepo struct {
	events []*types.AuditEvent
}

func (r *fakeAuditRepo) Create(dbc dbctx.Context, events []*types.AuditEvent) ([]*types.AuditEvent, error) {
	for _, e := range events {
		copied := *e
		r.events = append(r.events, &copied)
	}
	return events, nil
}

func (r *fakeAuditRepo) ListRecent(dbc dbctx.Context, limit int, action string, documentTypes []string) ([]*types.AuditEvent, error) {
	out := []*types.AuditEvent{}
	for i := len(r.events) - 1; i >= 0; i-- {
		e := r.events[i]
		if action != "" && e.Action != action {
			continue
		}
		if len(documentTypes) > 0 {
			match := false
			for _, dt := range documentTypes {
				if e.DocumentType == dt {
					match = true
					break
				}
			}
			if !match {
				continue
			}
		}
		copied := *e
		out = append(out, &copied)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

// recordedAudit is one Record call captured by fakeAuditService.
type recordedAudit struct {
	DocumentType string
	DocumentID   uuid.UUID
	Action       string
	Details      string
}

type fakeAuditService struct {
	records []recordedAudit
}

func (s *fakeAuditService) Record(dbc dbctx.Context, documentType string, documentID uuid.UUID, action, details string) {
	s.records = append(s.records, recordedAudit{
		DocumentType: documentType,
		DocumentID:   documentID,
		Action:       action,
		Details:      details,
	})
}

func (s *fakeAuditService) ListRecent(dbc dbctx.Context, limit int, action string, documentTypes []string) ([]*types.AuditEvent, error) {
	return []*types.AuditEvent{}, nil
}

func (s *fakeAuditService) byAction(action string) []recordedAudit {
	out := []recordedAudit{}
	for _, r := range s.records {
		if r.Action == action {
			out = append(out, r)
		}
	}
	return out
}

// recordedNotify is one Notify call captured by fakeNotificationService.
type recordedNotify struct {
	ForUserID uuid.UUID
	Kind      string
	Subject   string
}

type fakeNotificationService struct {
	notifies []recordedNotify
	mentions []string
}

func (s *fakeNotificationService) Notify(dbc dbctx.Context, forUserID uuid.UUID, kind, subject, documentType string, documentID *uuid.UUID) (*types.Notification, error) {
	s.notifies = append(s.notifies, recordedNotify{ForUserID: forUserID, Kind: kind, Subject: subject})
	return &types.Notification{ID: uuid.New(), ForUserID: forUserID, Kind: kind, Subject: subject}, nil
}

func (s *fakeNotificationService) ProcessMentions(dbc dbctx.Context, text, documentType string, documentID uuid.UUID, subject string) {
	s.mentions = append(s.mentions, text)
}

func (s *fakeNotificationService) ListForUser(dbc dbctx.Context, userID uuid.UUID, limit int) (*NotificationFeed, error) {
	return &NotificationFeed{}, nil
}

func (s *fakeNotificationService) MarkAllRead(dbc dbctx.Context, userID uuid.UUID) error {
	return nil
}

func (s *fakeNotificationService) MentionCandidates(dbc dbctx.Context, query string) ([]*types.User, error) {
	return []*types.User{}, nil
}

// fakeFileService tracks visibility moves without touching object storage.
type fakeFileService struct {
	files      map[uuid.UUID]*types.StoredFile
	moves      []uuid.UUID
	wantErrSet error
}

func newFakeFileService() *fakeFileService {
	return &fakeFileService{files: map[uuid.UUID]*types.StoredFile{}}
}

func (s *fakeFileService) StoreUpload(dbc dbctx.Context, in UploadInput) (*types.StoredFile, error) {
	f := &types.StoredFile{
		ID:             uuid.New(),
		FileName:       in.FileName,
		MimeType:       in.MimeType,
		SizeBytes:      in.SizeBytes,
		IsPrivate:      in.Private,
		AttachedToType: in.AttachedToType,
		AttachedToID:   in.AttachedToID,
	}
	s.files[f.ID] = f
	return f, nil
}

func (s *fakeFileService) SetVisibility(ctx context.Context, fileID uuid.UUID, private bool) (*types.StoredFile, error) {
	if s.wantErrSet != nil {
		return nil, s.wantErrSet
	}
	f, ok := s.files[fileID]
	if !ok {
		f = &types.StoredFile{ID: fileID, FileName: "asset.png"}
		s.files[fileID] = f
	}
	if f.IsPrivate != private {
		s.moves = append(s.moves, fileID)
	}
	f.IsPrivate = private
	if private {
		f.FileURL = "https://cdn.internal.example.com/files/asset.png"
	} else {
		f.FileURL = "https://cdn.example.com/files/asset.png"
	}
	copied := *f
	return &copied, nil
}

func (s *fakeFileService) Open(ctx context.Context, fileID uuid.UUID) (io.ReadCloser, *types.StoredFile, error) {
	f, ok := s.files[fileID]
	if !ok {
		return nil, nil, nil
	}
	copied := *f
	return io.NopCloser(strings.NewReader("fake")), &copied, nil
}

func (s *fakeFileService) Get(dbc dbctx.Context, fileID uuid.UUID) (*types.StoredFile, error) {
	f, ok := s.files[fileID]
	if !ok {
		return nil, nil
	}
	copied := *f
	return &copied, nil
}

func (s *fakeFileService) Attach(dbc dbctx.Context, fileID uuid.UUID, docType string, docID uuid.UUID) error {
	if f, ok := s.files[fileID]; ok {
		f.AttachedToType = docType
		attached := docID
		f.AttachedToID = &attached
	}
	return nil
}
