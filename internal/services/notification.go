package services

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	redisclient "github.com/brandlight/ims-backend/internal/clients/redis"
	"github.com/brandlight/ims-backend/internal/data/repos"
	types "github.com/brandlight/ims-backend/internal/domain"
	"github.com/brandlight/ims-backend/internal/pkg/apierr"
	"github.com/brandlight/ims-backend/internal/pkg/dbctx"
	"github.com/brandlight/ims-backend/internal/pkg/logger"
	"github.com/brandlight/ims-backend/internal/requestdata"
)

// Matches "@[Jane Smith]" (display form) and bare "@jane.smith" tokens.
var mentionPattern = regexp.MustCompile(`@\[([^\]]+)\]|@([A-Za-z0-9._-]+)`)

const (
	maxNotificationFeed   = 100
	maxMentionCandidates  = 10
	defaultActivityInFeed = 20
)

// NotificationFeed is the inbox payload: the user's notifications plus a
// slice of recent activity for context and the unread badge count.
type NotificationFeed struct {
	Notifications  []*types.Notification `json:"notifications"`
	RecentActivity []*types.AuditEvent   `json:"recent_activity"`
	UnreadCount    int64                 `json:"unread_count"`
}

type NotificationService interface {
	Notify(dbc dbctx.Context, forUserID uuid.UUID, kind, subject, documentType string, documentID *uuid.UUID) (*types.Notification, error)
	ProcessMentions(dbc dbctx.Context, text, documentType string, documentID uuid.UUID, subject string)
	ListForUser(dbc dbctx.Context, userID uuid.UUID, limit int) (*NotificationFeed, error)
	MarkAllRead(dbc dbctx.Context, userID uuid.UUID) error
	MentionCandidates(dbc dbctx.Context, query string) ([]*types.User, error)
}

type notificationService struct {
	db            *gorm.DB
	log           *logger.Logger
	notifications repos.NotificationRepo
	users         repos.UserRepo
	events        repos.AuditRepo
	bus           redisclient.NotifyBus
}

func NewNotificationService(
	db *gorm.DB,
	baseLog *logger.Logger,
	notifications repos.NotificationRepo,
	users repos.UserRepo,
	events repos.AuditRepo,
	bus redisclient.NotifyBus,
) NotificationService {
	return &notificationService{
		db:            db,
		log:           baseLog.With("service", "NotificationService"),
		notifications: notifications,
		users:         users,
		events:        events,
		bus:           bus,
	}
}

func (s *notificationService) Notify(dbc dbctx.Context, forUserID uuid.UUID, kind, subject, documentType string, documentID *uuid.UUID) (*types.Notification, error) {
	if forUserID == uuid.Nil {
		return nil, apierr.Validation("missing notification recipient")
	}
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return nil, apierr.Validation("missing notification subject")
	}
	if kind == "" {
		kind = types.NotificationKindInfo
	}

	row := &types.Notification{
		ID:           uuid.New(),
		Subject:      subject,
		ForUserID:    forUserID,
		Kind:         kind,
		DocumentType: documentType,
		DocumentID:   documentID,
	}
	if rd := requestdata.GetRequestData(dbc.Ctx); rd != nil && rd.UserID != uuid.Nil {
		fromID := rd.UserID
		row.FromUserID = &fromID
	}
	if _, err := s.notifications.Create(dbc, []*types.Notification{row}); err != nil {
		return nil, apierr.Internal(err)
	}

	if s.bus != nil {
		msg := redisclient.NotifyMessage{
			NotificationID: row.ID.String(),
			ForUserID:      forUserID.String(),
			Kind:           kind,
			Subject:        subject,
			DocumentType:   documentType,
		}
		if documentID != nil {
			msg.DocumentID = documentID.String()
		}
		if err := s.bus.Publish(dbc.Ctx, msg); err != nil {
			s.log.Warn("notify publish failed", "notification_id", row.ID.String(), "err", err.Error())
		}
	}
	return row, nil
}

// ProcessMentions scans free text for @-mentions and notifies each resolved
// user once. Resolution failures are logged and skipped; a mention scan never
// fails the comment or annotation that triggered it.
func (s *notificationService) ProcessMentions(dbc dbctx.Context, text, documentType string, documentID uuid.UUID, subject string) {
	tokens := extractMentionTokens(text)
	if len(tokens) == 0 {
		return
	}

	seen := map[uuid.UUID]bool{}
	self := uuid.Nil
	if rd := requestdata.GetRequestData(dbc.Ctx); rd != nil {
		self = rd.UserID
	}

	for _, token := range tokens {
		user, err := s.resolveMention(dbc, token)
		if err != nil {
			s.log.Warn("mention lookup failed", "token", token, "err", err.Error())
			continue
		}
		if user == nil || user.ID == self || seen[user.ID] {
			continue
		}
		seen[user.ID] = true
		docID := documentID
		if _, err := s.Notify(dbc, user.ID, types.NotificationKindMention, subject, documentType, &docID); err != nil {
			s.log.Warn("mention notify failed", "user_id", user.ID.String(), "err", err.Error())
		}
	}
}

func extractMentionTokens(text string) []string {
	matches := mentionPattern.FindAllStringSubmatch(text, -1)
	out := []string{}
	for _, m := range matches {
		token := m[1]
		if token == "" {
			token = m[2]
		}
		token = strings.TrimSpace(token)
		if token != "" {
			out = append(out, token)
		}
	}
	return out
}

// resolveMention matches bracketed tokens against full names and bare tokens
// against the local part of the user's email.
func (s *notificationService) resolveMention(dbc dbctx.Context, token string) (*types.User, error) {
	candidates, err := s.users.SearchByName(dbc, token, maxMentionCandidates)
	if err != nil {
		return nil, err
	}
	for _, u := range candidates {
		if strings.EqualFold(u.FullName, token) {
			return u, nil
		}
	}
	for _, u := range candidates {
		local := u.Email
		if i := strings.Index(local, "@"); i > 0 {
			local = local[:i]
		}
		if strings.EqualFold(local, token) {
			return u, nil
		}
	}
	return nil, nil
}

func (s *notificationService) ListForUser(dbc dbctx.Context, userID uuid.UUID, limit int) (*NotificationFeed, error) {
	if userID == uuid.Nil {
		return nil, apierr.Validation("missing user id")
	}
	if limit <= 0 || limit > maxNotificationFeed {
		limit = maxNotificationFeed
	}

	rows, err := s.notifications.ListForUser(dbc, userID, limit)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	unread, err := s.notifications.CountUnread(dbc, userID)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	activity, err := s.events.ListRecent(dbc, defaultActivityInFeed, "", nil)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	return &NotificationFeed{
		Notifications:  rows,
		RecentActivity: activity,
		UnreadCount:    unread,
	}, nil
}

func (s *notificationService) MarkAllRead(dbc dbctx.Context, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return apierr.Validation("missing user id")
	}
	if err := s.notifications.MarkAllRead(dbc, userID); err != nil {
		return apierr.Internal(err)
	}
	return nil
}

func (s *notificationService) MentionCandidates(dbc dbctx.Context, query string) ([]*types.User, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []*types.User{}, nil
	}
	users, err := s.users.SearchByName(dbc, query, maxMentionCandidates)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	return users, nil
}
