package usecases

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/hydroline/analytics/internal/core/domain"
	"github.com/hydroline/analytics/internal/core/ports"
)

// ErrSiteNotInActiveTab is returned when selecting a site that belongs to the other tab.
var ErrSiteNotInActiveTab = errors.New("site is not in the active tab")

// Session is the UI state of one map viewer: the active tab and the selected site.
// A Session is owned by a single connection and is not safe for concurrent use.
type Session struct {
	ID        string
	ActiveTab domain.Category
	Selected  *domain.Site
}

// SessionService applies map interactions to sessions and announces them.
type SessionService struct {
	sites     ports.SiteRepository
	publisher ports.EventPublisher
}

// NewSessionService creates a new SessionService. publisher may be nil.
func NewSessionService(sites ports.SiteRepository, publisher ports.EventPublisher) *SessionService {
	return &SessionService{sites: sites, publisher: publisher}
}

// NewSession starts a session on the default tab with nothing selected.
func (s *SessionService) NewSession() *Session {
	return &Session{ID: uuid.NewString(), ActiveTab: domain.DefaultCategory}
}

// SelectTab switches the active tab. Switching clears the selection.
func (s *SessionService) SelectTab(ctx context.Context, sess *Session, category domain.Category) error {
	if !category.Valid() {
		return fmt.Errorf("%w: %q", domain.ErrUnknownCategory, category)
	}
	// The detail panel belongs to the tab it was opened from, so a
	// different tab drops it.
	if sess.ActiveTab != category {
		sess.Selected = nil
	}
	sess.ActiveTab = category
	s.publish(ctx, &domain.Interaction{
		Kind:      domain.InteractionTabSelected,
		SessionID: sess.ID,
		Category:  category,
	})
	return nil
}

// SelectSite opens the detail view for a site of the active tab.
func (s *SessionService) SelectSite(ctx context.Context, sess *Session, id string) (*domain.SiteDetail, error) {
	site, err := s.sites.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if site.Category != sess.ActiveTab {
		return nil, fmt.Errorf("%w: %s is %s, active tab is %s", ErrSiteNotInActiveTab, id, site.Category, sess.ActiveTab)
	}

	sess.Selected = site
	s.publish(ctx, &domain.Interaction{
		Kind:      domain.InteractionSiteSelected,
		SessionID: sess.ID,
		Category:  site.Category,
		SiteID:    site.ID,
	})
	d := site.Detail()
	return &d, nil
}

// ClearSelection closes the detail view. Clearing an empty selection is a no-op.
func (s *SessionService) ClearSelection(ctx context.Context, sess *Session) {
	if sess.Selected == nil {
		return
	}
	id := sess.Selected.ID
	sess.Selected = nil
	s.publish(ctx, &domain.Interaction{
		Kind:      domain.InteractionSiteCleared,
		SessionID: sess.ID,
		Category:  sess.ActiveTab,
		SiteID:    id,
	})
}

func (s *SessionService) publish(ctx context.Context, event *domain.Interaction) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishInteraction(ctx, event); err != nil {
		slog.Warn("publish interaction", "kind", event.Kind, "session", event.SessionID, "error", err)
	}
}
