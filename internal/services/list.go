package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"placelists/internal/domain"
)

const (
	activityCollaboratorJoined  = "collaborator_joined"
	activityCollaboratorLeft    = "collaborator_left"
	activityCollaboratorRemoved = "collaborator_removed"
	activityPlaceAdded          = "place_added"
)

type listService struct {
	listRepo       domain.ListRepository
	profiles       domain.ProfileStore
	notifier       domain.Notifier
	shareCodes     domain.ShareCodeHasher
	logger         *slog.Logger
	contextTimeout time.Duration
}

// NewListService creates a ListService with the given repository, profile
// store, notifier, and share code hasher.
func NewListService(listRepo domain.ListRepository,
	profiles domain.ProfileStore,
	notifier domain.Notifier,
	shareCodes domain.ShareCodeHasher,
	logger *slog.Logger,
	timeout time.Duration,
) domain.ListService {
	return &listService{
		listRepo:       listRepo,
		profiles:       profiles,
		notifier:       notifier,
		shareCodes:     shareCodes,
		logger:         logger,
		contextTimeout: timeout,
	}
}

func (s *listService) CreateList(ctx context.Context, list *domain.List) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if list.OwnerID == "" {
		return "", fmt.Errorf("%w: list owner is required", domain.ErrInvalidInput)
	}
	if list.Name == "" {
		return "", fmt.Errorf("%w: list name is required", domain.ErrInvalidInput)
	}

	if list.ID == "" {
		list.ID = uuid.NewString()
	}
	now := time.Now()
	list.CreatedAt = now
	list.UpdatedAt = now
	list.Collaborators = []string{}
	list.PendingCollaborators = []string{}
	list.CollaboratorDetails = map[string]domain.CollaboratorDetail{}
	list.Places = []domain.Place{}
	list.PlacesCount = 0
	list.ColorAssignments = domain.GenerateColorAssignments([]string{list.OwnerID})

	code, err := s.shareCodes.Generate()
	if err != nil {
		return "", fmt.Errorf("generate share code: %w", err)
	}
	hash, err := s.shareCodes.Hash(code)
	if err != nil {
		return "", fmt.Errorf("hash share code: %w", err)
	}
	list.ShareCodeHash = hash

	if err := s.listRepo.Create(ctx, list); err != nil {
		return "", fmt.Errorf("create list: %w", err)
	}
	return code, nil
}

func (s *listService) Invite(ctx context.Context, listID, actorID string, inviteeIDs []string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if len(inviteeIDs) == 0 {
		return fmt.Errorf("%w: no invitees", domain.ErrInvalidInput)
	}

	list, err := s.listRepo.GetByID(ctx, listID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrOffline) {
			return err
		}
		return fmt.Errorf("get list: %w", err)
	}
	if !list.IsMember(actorID) {
		return domain.ErrForbidden
	}

	// Already-accepted or already-pending ids are skipped, so repeated
	// invites are no-ops.
	newInvitees := make([]string, 0, len(inviteeIDs))
	for _, id := range inviteeIDs {
		if id == "" || id == list.OwnerID || list.IsCollaborator(id) || list.IsPending(id) {
			continue
		}
		newInvitees = append(newInvitees, id)
	}
	if len(newInvitees) == 0 {
		return nil
	}

	if err := s.listRepo.AddPending(ctx, listID, newInvitees); err != nil {
		return fmt.Errorf("add pending collaborators: %w", err)
	}

	actorName := s.resolveDisplayName(ctx, actorID, list)
	for _, inviteeID := range newInvitees {
		s.notifyBestEffort(ctx, domain.Notification{
			Kind:     domain.NotificationInvite,
			FromID:   actorID,
			FromName: actorName,
			ToID:     inviteeID,
			ListID:   list.ID,
			ListName: list.Name,
		})
	}
	return nil
}

func (s *listService) AcceptInvitation(ctx context.Context, listID, userID string, profile *domain.Profile) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if userID == "" {
		return fmt.Errorf("%w: user id is required", domain.ErrInvalidInput)
	}

	list, err := s.listRepo.GetByID(ctx, listID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrOffline) {
			return err
		}
		return fmt.Errorf("get list: %w", err)
	}
	return s.accept(ctx, list, userID, profile)
}

// accept runs the acceptance flow against an already-loaded list. Idempotent:
// an existing collaborator (or the owner) is a success without mutation.
func (s *listService) accept(ctx context.Context, list *domain.List, userID string, profile *domain.Profile) error {
	if userID == list.OwnerID || list.IsCollaborator(userID) {
		return nil
	}

	detail := detailFromProfile(profile)

	// Extend colors for any member lacking one; existing assignments are
	// preserved, never recomputed.
	assignments := make(map[string]string, len(list.ColorAssignments)+2)
	for id, c := range list.ColorAssignments {
		assignments[id] = c
	}
	for _, id := range append(list.OrderedMemberIDs(), userID) {
		if _, ok := assignments[id]; !ok {
			assignments[id] = domain.AssignColor(id, assignments)
		}
	}

	if err := s.listRepo.AddCollaborator(ctx, list.ID, userID); err != nil {
		return fmt.Errorf("add collaborator: %w", err)
	}
	if err := s.listRepo.RemovePending(ctx, list.ID, userID); err != nil {
		return fmt.Errorf("remove pending invitee: %w", err)
	}
	if err := s.listRepo.MergeCollaboratorDetail(ctx, list.ID, userID, detail); err != nil {
		return fmt.Errorf("merge collaborator detail: %w", err)
	}
	if err := s.listRepo.SetColorAssignments(ctx, list.ID, assignments); err != nil {
		return fmt.Errorf("set color assignments: %w", err)
	}
	if err := s.listRepo.SetLastActivity(ctx, list.ID, domain.Activity{
		Type:      activityCollaboratorJoined,
		ActorID:   userID,
		ActorName: detail.DisplayName,
		Timestamp: time.Now(),
	}); err != nil {
		return fmt.Errorf("set last activity: %w", err)
	}

	s.notifyBestEffort(ctx, domain.Notification{
		Kind:     domain.NotificationInviteAccepted,
		FromID:   userID,
		FromName: detail.DisplayName,
		ToID:     list.OwnerID,
		ListID:   list.ID,
		ListName: list.Name,
	})
	return nil
}

func (s *listService) DeclineInvitation(ctx context.Context, listID, userID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.listRepo.GetByID(ctx, listID); err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrOffline) {
			return err
		}
		return fmt.Errorf("get list: %w", err)
	}
	// Set-remove of an absent id is a no-op, so declining twice is safe.
	if err := s.listRepo.RemovePending(ctx, listID, userID); err != nil {
		return fmt.Errorf("remove pending invitee: %w", err)
	}
	return nil
}

func (s *listService) JoinByShareCode(ctx context.Context, listID, code, userID string, profile *domain.Profile) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	list, err := s.listRepo.GetByID(ctx, listID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrOffline) {
			return err
		}
		return fmt.Errorf("get list: %w", err)
	}
	if list.ShareCodeHash == "" {
		return domain.ErrForbidden
	}
	if err := s.shareCodes.Compare(list.ShareCodeHash, code); err != nil {
		return domain.ErrForbidden
	}
	return s.accept(ctx, list, userID, profile)
}

func (s *listService) RemoveCollaborator(ctx context.Context, listID, memberID, actorID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	list, err := s.listRepo.GetByID(ctx, listID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrOffline) {
			return err
		}
		return fmt.Errorf("get list: %w", err)
	}

	// The owner is permanent; only the owner may remove someone else, and any
	// member may remove themselves.
	if memberID == list.OwnerID {
		return domain.ErrForbidden
	}
	if actorID != list.OwnerID && actorID != memberID {
		return domain.ErrForbidden
	}

	if !list.IsCollaborator(memberID) {
		// The owner revoking a pending invite goes through the same
		// operation; removing a complete stranger is a no-op success.
		if list.IsPending(memberID) {
			if err := s.listRepo.RemovePending(ctx, listID, memberID); err != nil {
				return fmt.Errorf("remove pending invitee: %w", err)
			}
		}
		return nil
	}

	if err := s.listRepo.RemoveCollaborator(ctx, listID, memberID); err != nil {
		return fmt.Errorf("remove collaborator: %w", err)
	}
	if err := s.listRepo.RemoveCollaboratorDetail(ctx, listID, memberID); err != nil {
		return fmt.Errorf("remove collaborator detail: %w", err)
	}
	if err := s.listRepo.RemoveColorAssignment(ctx, listID, memberID); err != nil {
		return fmt.Errorf("remove color assignment: %w", err)
	}

	activityType := activityCollaboratorRemoved
	if actorID == memberID {
		activityType = activityCollaboratorLeft
	}
	if err := s.listRepo.SetLastActivity(ctx, listID, domain.Activity{
		Type:      activityType,
		ActorID:   actorID,
		ActorName: s.resolveDisplayName(ctx, actorID, list),
		Timestamp: time.Now(),
	}); err != nil {
		return fmt.Errorf("set last activity: %w", err)
	}
	return nil
}

func (s *listService) AddPlace(ctx context.Context, listID string, place *domain.Place, contributorID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if place == nil || place.Name == "" {
		return fmt.Errorf("%w: place name is required", domain.ErrInvalidInput)
	}

	list, err := s.listRepo.GetByID(ctx, listID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrOffline) {
			return err
		}
		return fmt.Errorf("get list: %w", err)
	}
	if !list.IsMember(contributorID) {
		return domain.ErrForbidden
	}
	// Acceptance guarantees every member a color, so this should be
	// unreachable; checked anyway so a bad write is caught here instead of
	// producing an uncolored place.
	color, ok := list.ColorAssignments[contributorID]
	if !ok || color == "" {
		return domain.ErrNoColorAssignment
	}

	place.ID = uuid.NewString()
	place.AddedBy = contributorID
	place.AddedAt = time.Now()
	place.UserColor = color

	// One write appends the place and bumps places_count, so the count stays
	// consistent with the content even under concurrent adds.
	if err := s.listRepo.AppendPlace(ctx, listID, *place); err != nil {
		return fmt.Errorf("append place: %w", err)
	}
	if contributorID != list.OwnerID {
		if err := s.listRepo.IncrementMemberPlaceCount(ctx, listID, contributorID, 1); err != nil {
			return fmt.Errorf("increment member place count: %w", err)
		}
	}
	if err := s.listRepo.SetLastActivity(ctx, listID, domain.Activity{
		Type:      activityPlaceAdded,
		ActorID:   contributorID,
		ActorName: s.resolveDisplayName(ctx, contributorID, list),
		Timestamp: place.AddedAt,
	}); err != nil {
		return fmt.Errorf("set last activity: %w", err)
	}
	return nil
}

func (s *listService) GetMembers(ctx context.Context, listID string) ([]*domain.Member, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	list, err := s.listRepo.GetByID(ctx, listID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrOffline) {
			return nil, err
		}
		return nil, fmt.Errorf("get list: %w", err)
	}
	return s.buildRoster(ctx, list), nil
}

// buildRoster assembles the member roster, owner first. Profile lookups are
// best-effort: a failed lookup falls back to the stored snapshot, and a
// member missing from both still appears with placeholder fields. Counts are
// recomputed from the places, not read from the cached counter.
func (s *listService) buildRoster(ctx context.Context, list *domain.List) []*domain.Member {
	members := make([]*domain.Member, 0, len(list.Collaborators)+1)
	for _, id := range list.OrderedMemberIDs() {
		m := &domain.Member{
			UserID:           id,
			DisplayName:      domain.DefaultDisplayName,
			Avatar:           domain.DefaultAvatar,
			Color:            list.ColorAssignments[id],
			IsOwner:          id == list.OwnerID,
			AddedPlacesCount: domain.CountAttributedPlaces(list, id),
		}
		if detail, ok := list.CollaboratorDetails[id]; ok {
			if detail.DisplayName != "" {
				m.DisplayName = detail.DisplayName
			}
			if detail.Avatar != "" {
				m.Avatar = detail.Avatar
			}
			m.JoinedAt = detail.JoinedAt
		}
		if profile, err := s.profiles.GetProfile(ctx, id); err == nil {
			if profile.DisplayName != "" {
				m.DisplayName = profile.DisplayName
			}
			if profile.Avatar != "" {
				m.Avatar = profile.Avatar
			}
			m.Username = profile.Username
		}
		members = append(members, m)
	}
	return members
}

func (s *listService) RefreshColorAssignments(ctx context.Context, listID, actorID string) (map[string]string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	list, err := s.listRepo.GetByID(ctx, listID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrOffline) {
			return nil, err
		}
		return nil, fmt.Errorf("get list: %w", err)
	}
	if actorID != list.OwnerID {
		return nil, domain.ErrForbidden
	}

	// Whole-map overwrite: concurrent rebuilds do not commute, which is why
	// this is an owner-triggered repair rather than a hot path.
	assignments := domain.GenerateColorAssignments(list.OrderedMemberIDs())
	if err := s.listRepo.SetColorAssignments(ctx, listID, assignments); err != nil {
		return nil, fmt.Errorf("set color assignments: %w", err)
	}
	return assignments, nil
}

func (s *listService) GetListWithSyncedCounts(ctx context.Context, listID string) (*domain.List, []*domain.Member, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	list, err := s.listRepo.GetByID(ctx, listID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrOffline) {
			return nil, nil, err
		}
		return nil, nil, fmt.Errorf("get list: %w", err)
	}

	if delta := len(list.Places) - list.PlacesCount; delta != 0 {
		// Repair a drifted counter with a delta increment so the write still
		// commutes with concurrent place adds.
		if err := s.listRepo.IncrementPlacesCount(ctx, listID, delta); err != nil {
			s.logger.WarnContext(ctx, "places count repair failed", "list_id", listID, "delta", delta, "err", err)
		} else {
			list.PlacesCount = len(list.Places)
		}
	}
	return list, s.buildRoster(ctx, list), nil
}

// notifyBestEffort delivers a notification, logging failures. Notification
// delivery never fails or rolls back the primary state change.
func (s *listService) notifyBestEffort(ctx context.Context, n domain.Notification) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, n); err != nil {
		s.logger.WarnContext(ctx, "notification failed",
			"kind", string(n.Kind), "to", n.ToID, "list_id", n.ListID, "err", err)
	}
}

// resolveDisplayName returns the best available display name for a member:
// live profile, then stored snapshot, then placeholder.
func (s *listService) resolveDisplayName(ctx context.Context, userID string, list *domain.List) string {
	if profile, err := s.profiles.GetProfile(ctx, userID); err == nil && profile.DisplayName != "" {
		return profile.DisplayName
	}
	if detail, ok := list.CollaboratorDetails[userID]; ok && detail.DisplayName != "" {
		return detail.DisplayName
	}
	return domain.DefaultDisplayName
}

// detailFromProfile builds a collaborator snapshot, substituting placeholder
// values for missing profile fields. Missing profile data never fails an
// acceptance.
func detailFromProfile(profile *domain.Profile) domain.CollaboratorDetail {
	detail := domain.CollaboratorDetail{
		DisplayName: domain.DefaultDisplayName,
		Avatar:      domain.DefaultAvatar,
		JoinedAt:    time.Now(),
	}
	if profile != nil {
		if profile.DisplayName != "" {
			detail.DisplayName = profile.DisplayName
		}
		if profile.Avatar != "" {
			detail.Avatar = profile.Avatar
		}
	}
	return detail
}
