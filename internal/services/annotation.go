package services

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/brandlight/ims-backend/internal/data/repos"
	types "github.com/brandlight/ims-backend/internal/domain"
	"github.com/brandlight/ims-backend/internal/pkg/apierr"
	"github.com/brandlight/ims-backend/internal/pkg/dbctx"
	"github.com/brandlight/ims-backend/internal/pkg/logger"
	"github.com/brandlight/ims-backend/internal/requestdata"
)

// Bounded retries for the annotation append. Two writers racing re-read the
// list and try again; past this the caller gets a retryable error instead of
// a silently dropped comment.
const annotationWriteAttempts = 3

// AnnotationInput is one incoming annotation. Type may be empty; geometry
// decides between point and rect in that case.
type AnnotationInput struct {
	X       float64           `json:"x"`
	Y       float64           `json:"y"`
	Width   float64           `json:"width"`
	Height  float64           `json:"height"`
	Type    string            `json:"annotation_type"`
	Comment string            `json:"comment"`
	Path    []types.PathPoint `json:"path,omitempty"`
}

// AnnotationList is the read side: the resolved revision plus its decoded
// annotation list. ContentBrief rides along so an empty list still gives the
// reviewer something to react to.
type AnnotationList struct {
	RevisionID     uuid.UUID          `json:"revision_id"`
	RevisionNumber int                `json:"revision_number"`
	Annotations    []types.Annotation `json:"annotations"`
	ContentBrief   string             `json:"content_brief,omitempty"`
}

type AnnotationService interface {
	Add(dbc dbctx.Context, assetID uuid.UUID, in AnnotationInput) (*types.Annotation, *types.AssetRevision, error)
	List(dbc dbctx.Context, assetID uuid.UUID, revisionNumber *int) (*AnnotationList, error)
}

type annotationService struct {
	db        *gorm.DB
	log       *logger.Logger
	assets    repos.AssetRepo
	revisions repos.RevisionRepo
	revSvc    RevisionService
	notify    NotificationService
	audit     AuditService
}

func NewAnnotationService(
	db *gorm.DB,
	baseLog *logger.Logger,
	assets repos.AssetRepo,
	revisions repos.RevisionRepo,
	revSvc RevisionService,
	notify NotificationService,
	audit AuditService,
) AnnotationService {
	return &annotationService{
		db:        db,
		log:       baseLog.With("service", "AnnotationService"),
		assets:    assets,
		revisions: revisions,
		revSvc:    revSvc,
		notify:    notify,
		audit:     audit,
	}
}

func (s *annotationService) Add(dbc dbctx.Context, assetID uuid.UUID, in AnnotationInput) (*types.Annotation, *types.AssetRevision, error) {
	comment := strings.TrimSpace(in.Comment)
	if comment == "" {
		return nil, nil, apierr.Validation("annotation comment must not be empty")
	}

	rev, err := s.revSvc.GetOrCreateWritableRevision(dbc, assetID)
	if err != nil {
		return nil, nil, err
	}

	ann := types.Annotation{
		ID:           uuid.New().String(),
		X:            in.X,
		Y:            in.Y,
		Width:        in.Width,
		Height:       in.Height,
		Type:         types.InferAnnotationType(in.Type, in.Width, in.Height, in.Path),
		Comment:      comment,
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
		RevisionName: rev.ID.String(),
	}
	if ann.Type == types.AnnotationTypeFreehand {
		ann.Path = in.Path
	}
	if rd := requestdata.GetRequestData(dbc.Ctx); rd != nil {
		ann.Author = rd.UserID.String()
		ann.AuthorName = rd.FullName
	}

	if err := s.appendWithRetry(dbc, rev, ann); err != nil {
		return nil, nil, err
	}

	s.notify.ProcessMentions(dbc, comment, types.DocTypeMarketingAsset, assetID,
		fmt.Sprintf("You were mentioned in a comment on revision %d", rev.RevisionNumber))
	s.audit.Record(dbc, types.DocTypeMarketingAsset, assetID, types.AuditActionComment,
		fmt.Sprintf("Annotation added on revision %d: %s", rev.RevisionNumber, truncate(comment, 140)))

	return &ann, rev, nil
}

// appendWithRetry does the read-modify-write under optimistic concurrency.
// A lost race reloads the revision and retries with the fresh list.
func (s *annotationService) appendWithRetry(dbc dbctx.Context, rev *types.AssetRevision, ann types.Annotation) error {
	current := rev
	for attempt := 0; attempt < annotationWriteAttempts; attempt++ {
		list, err := types.DecodeAnnotations(current.Annotations)
		if err != nil {
			return apierr.Validation("revision %s: %v", current.ID, err)
		}
		list = append(list, ann)
		encoded, err := types.EncodeAnnotations(list)
		if err != nil {
			return apierr.Internal(err)
		}

		ok, err := s.revisions.UpdateAnnotationsVersioned(dbc, current.ID, current.LockVersion, encoded)
		if err != nil {
			return apierr.Internal(err)
		}
		if ok {
			rev.Annotations = encoded
			rev.LockVersion = current.LockVersion + 1
			return nil
		}

		s.log.Debug("annotation write lost race, retrying",
			"revision_id", current.ID.String(), "attempt", attempt+1)
		fresh, err := s.revisions.GetByID(dbc, current.ID)
		if err != nil {
			return apierr.Internal(err)
		}
		if fresh == nil {
			return apierr.NotFound("revision %s not found", current.ID)
		}
		current = fresh
	}
	return apierr.New(http.StatusConflict, "conflict", fmt.Errorf("annotation write contended after %d attempts, retry", annotationWriteAttempts))
}

func (s *annotationService) List(dbc dbctx.Context, assetID uuid.UUID, revisionNumber *int) (*AnnotationList, error) {
	var rev *types.AssetRevision
	var err error
	if revisionNumber != nil {
		rev, err = s.revSvc.GetByNumber(dbc, assetID, *revisionNumber)
	} else {
		rev, err = s.revSvc.Latest(dbc, assetID)
	}
	if err != nil {
		return nil, err
	}
	if rev == nil {
		// No revisions yet; the asset description stands in for the brief
		// so the panel is not blank before the first annotation.
		asset, err := s.assets.GetByID(dbc, assetID)
		if err != nil {
			return nil, apierr.Internal(err)
		}
		if asset == nil {
			return nil, apierr.NotFound("asset %s not found", assetID)
		}
		return &AnnotationList{Annotations: []types.Annotation{}, ContentBrief: asset.Description}, nil
	}

	list, err := types.DecodeAnnotations(rev.Annotations)
	if err != nil {
		return nil, apierr.Validation("revision %s: %v", rev.ID, err)
	}
	return &AnnotationList{
		RevisionID:     rev.ID,
		RevisionNumber: rev.RevisionNumber,
		Annotations:    list,
		ContentBrief:   rev.ContentBrief,
	}, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
