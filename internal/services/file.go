package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/brandlight/ims-backend/internal/clients/gcp"
	"github.com/brandlight/ims-backend/internal/data/repos"
	types "github.com/brandlight/ims-backend/internal/domain"
	"github.com/brandlight/ims-backend/internal/pkg/apierr"
	"github.com/brandlight/ims-backend/internal/pkg/dbctx"
	"github.com/brandlight/ims-backend/internal/pkg/logger"
)

// UploadInput describes one incoming file body.
type UploadInput struct {
	FileName       string
	MimeType       string
	SizeBytes      int64
	Body           io.Reader
	Private        bool
	AttachedToType string
	AttachedToID   *uuid.UUID
}

// FileService owns stored file rows and the objects behind them. Visibility
// is which bucket the object sits in; SetVisibility moves the object and
// keeps the row in sync.
type FileService interface {
	StoreUpload(dbc dbctx.Context, in UploadInput) (*types.StoredFile, error)
	SetVisibility(ctx context.Context, fileID uuid.UUID, private bool) (*types.StoredFile, error)
	Open(ctx context.Context, fileID uuid.UUID) (io.ReadCloser, *types.StoredFile, error)
	Get(dbc dbctx.Context, fileID uuid.UUID) (*types.StoredFile, error)
	Attach(dbc dbctx.Context, fileID uuid.UUID, docType string, docID uuid.UUID) error
}

type fileService struct {
	db     *gorm.DB
	log    *logger.Logger
	files  repos.StoredFileRepo
	bucket gcp.BucketService
}

func NewFileService(db *gorm.DB, baseLog *logger.Logger, files repos.StoredFileRepo, bucket gcp.BucketService) FileService {
	return &fileService{
		db:     db,
		log:    baseLog.With("service", "FileService"),
		files:  files,
		bucket: bucket,
	}
}

func categoryFor(private bool) gcp.BucketCategory {
	if private {
		return gcp.BucketCategoryPrivate
	}
	return gcp.BucketCategoryPublic
}

func (s *fileService) StoreUpload(dbc dbctx.Context, in UploadInput) (*types.StoredFile, error) {
	name := sanitizeFileName(in.FileName)
	if name == "" {
		return nil, apierr.Validation("missing file name")
	}
	if in.Body == nil {
		return nil, apierr.Validation("missing file body")
	}

	finalName, err := s.uniqueFileName(dbc, name)
	if err != nil {
		return nil, err
	}
	key := "files/" + finalName
	category := categoryFor(in.Private)

	if err := s.bucket.UploadFile(dbc.Ctx, category, key, in.Body); err != nil {
		return nil, apierr.Internal(err)
	}

	row := &types.StoredFile{
		ID:             uuid.New(),
		FileName:       finalName,
		StorageKey:     key,
		FileURL:        s.bucket.ObjectURL(category, key),
		SizeBytes:      in.SizeBytes,
		MimeType:       in.MimeType,
		IsPrivate:      in.Private,
		AttachedToType: in.AttachedToType,
		AttachedToID:   in.AttachedToID,
	}
	if _, err := s.files.Create(dbc, []*types.StoredFile{row}); err != nil {
		// The object is orphaned if we keep it; best effort cleanup.
		if delErr := s.bucket.DeleteFile(dbc.Ctx, category, key); delErr != nil {
			s.log.Warn("orphaned object after failed file insert",
				"key", key, "err", delErr.Error())
		}
		return nil, apierr.Internal(err)
	}
	return row, nil
}

// SetVisibility moves the object to the bucket matching the requested
// visibility. Copy first, then flip the row, then delete the old object; a
// failed row update deletes the fresh copy so both sides stay consistent.
func (s *fileService) SetVisibility(ctx context.Context, fileID uuid.UUID, private bool) (*types.StoredFile, error) {
	dbc := dbctx.Context{Ctx: ctx}
	row, err := s.files.GetByID(dbc, fileID)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	if row == nil {
		return nil, apierr.NotFound("file %s not found", fileID)
	}
	if row.IsPrivate == private {
		return row, nil
	}

	srcCategory := categoryFor(row.IsPrivate)
	dstCategory := categoryFor(private)

	if err := s.bucket.CopyObject(ctx, srcCategory, row.StorageKey, dstCategory, row.StorageKey); err != nil {
		return nil, apierr.Internal(err)
	}

	newURL := s.bucket.ObjectURL(dstCategory, row.StorageKey)
	updates := map[string]interface{}{
		"is_private": private,
		"file_url":   newURL,
	}
	if err := s.files.UpdateFields(dbc, row.ID, updates); err != nil {
		// Roll the copy back so storage still matches the row.
		if delErr := s.bucket.DeleteFile(ctx, dstCategory, row.StorageKey); delErr != nil {
			s.log.Error("visibility compensation failed, object duplicated across buckets",
				"file_id", row.ID.String(), "key", row.StorageKey, "err", delErr.Error())
		}
		return nil, apierr.Internal(err)
	}

	if err := s.bucket.DeleteFile(ctx, srcCategory, row.StorageKey); err != nil {
		// Row and destination object are correct; the stale source copy is
		// cleaned up by the file reconciler.
		s.log.Warn("stale source object left after visibility move",
			"file_id", row.ID.String(), "key", row.StorageKey, "err", err.Error())
	}

	row.IsPrivate = private
	row.FileURL = newURL
	return row, nil
}

func (s *fileService) Open(ctx context.Context, fileID uuid.UUID) (io.ReadCloser, *types.StoredFile, error) {
	row, err := s.files.GetByID(dbctx.Context{Ctx: ctx}, fileID)
	if err != nil {
		return nil, nil, apierr.Internal(err)
	}
	if row == nil {
		return nil, nil, apierr.NotFound("file %s not found", fileID)
	}
	rc, err := s.bucket.DownloadFile(ctx, categoryFor(row.IsPrivate), row.StorageKey)
	if err != nil {
		return nil, nil, apierr.Internal(err)
	}
	return rc, row, nil
}

func (s *fileService) Get(dbc dbctx.Context, fileID uuid.UUID) (*types.StoredFile, error) {
	row, err := s.files.GetByID(dbc, fileID)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	if row == nil {
		return nil, apierr.NotFound("file %s not found", fileID)
	}
	return row, nil
}

func (s *fileService) Attach(dbc dbctx.Context, fileID uuid.UUID, docType string, docID uuid.UUID) error {
	if fileID == uuid.Nil || docID == uuid.Nil {
		return apierr.Validation("missing file or document id")
	}
	updates := map[string]interface{}{
		"attached_to_type": docType,
		"attached_to_id":   docID,
	}
	if err := s.files.UpdateFields(dbc, fileID, updates); err != nil {
		return apierr.Internal(err)
	}
	return nil
}

// uniqueFileName keeps the first upload's name as-is and suffixes later
// uploads of the same name with a short random tag before the extension.
func (s *fileService) uniqueFileName(dbc dbctx.Context, name string) (string, error) {
	ext := path.Ext(name)
	base := strings.TrimSuffix(name, ext)

	count, err := s.files.CountByFileNamePrefix(dbc, base)
	if err != nil {
		return "", apierr.Internal(err)
	}
	if count == 0 {
		return name, nil
	}
	buf := make([]byte, 3)
	if _, err := rand.Read(buf); err != nil {
		return "", apierr.Internal(err)
	}
	return fmt.Sprintf("%s-%s%s", base, hex.EncodeToString(buf), ext), nil
}

func sanitizeFileName(name string) string {
	name = strings.TrimSpace(name)
	// Strip any client-supplied directory components.
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" {
		return ""
	}
	return name
}
