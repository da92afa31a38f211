package domain

import (
	"context"
	"errors"
	"sort"
	"time"
)

// Sentinel errors for list operations.
var (
	// ErrNotFound is returned when the referenced list does not exist.
	ErrNotFound = errors.New("list not found")
	// ErrForbidden is returned when the caller lacks permission for the
	// requested mutation (e.g. a non-owner removing another member).
	ErrForbidden = errors.New("forbidden")
	// ErrOffline is returned when the backing store is unreachable. It is
	// expected and retryable; callers should surface it as a connectivity
	// problem rather than a generic failure.
	ErrOffline = errors.New("store unreachable")
	// ErrNoColorAssignment is returned when a contributor has no color at
	// place-add time. Acceptance always assigns a color, so hitting this
	// indicates an upstream invariant violation.
	ErrNoColorAssignment = errors.New("member has no color assignment")
	// ErrInvalidInput is returned when the request is invalid (e.g. inviting
	// with an empty invitee list).
	ErrInvalidInput = errors.New("invalid input")
)

// Place is one contributed entry in a list. AddedBy may be empty for entries
// created before per-member attribution existed.
type Place struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address,omitempty"`
	Latitude  float64   `json:"latitude,omitempty"`
	Longitude float64   `json:"longitude,omitempty"`
	AddedBy   string    `json:"added_by,omitempty"`
	AddedAt   time.Time `json:"added_at"`
	UserColor string    `json:"user_color,omitempty"`
}

// CollaboratorDetail is the denormalized member snapshot stored on the list,
// used when a live profile lookup is unavailable. AddedPlacesCount is a
// cached counter; the roster recomputes the real value from the places.
type CollaboratorDetail struct {
	DisplayName      string    `json:"display_name"`
	Avatar           string    `json:"avatar"`
	JoinedAt         time.Time `json:"joined_at"`
	AddedPlacesCount int       `json:"added_places_count"`
}

// Activity is a last-writer-wins descriptor of the most recent change,
// kept for activity feeds only. It plays no part in conflict resolution.
type Activity struct {
	Type      string    `json:"type"`
	ActorID   string    `json:"actor_id"`
	ActorName string    `json:"actor_name"`
	Timestamp time.Time `json:"timestamp"`
}

// List is the shared unit of collaboration: one owner, accepted
// collaborators, pending invitees, and the places they contribute.
// swagger:model List
type List struct {
	ID                   string                        `json:"id"`
	Name                 string                        `json:"name"`
	OwnerID              string                        `json:"owner_id"`
	Collaborators        []string                      `json:"collaborators"`
	PendingCollaborators []string                      `json:"pending_collaborators"`
	CollaboratorDetails  map[string]CollaboratorDetail `json:"collaborator_details"`
	ColorAssignments     map[string]string             `json:"color_assignments"`
	Places               []Place                       `json:"places"`
	PlacesCount          int                           `json:"places_count"`
	ShareCodeHash        string                        `json:"-"`
	LastActivity         *Activity                     `json:"last_activity,omitempty"`
	CreatedAt            time.Time                     `json:"created_at"`
	UpdatedAt            time.Time                     `json:"updated_at"`
}

// NewList returns a List with owner-only membership. ID and the owner color
// are set by the service on create.
func NewList(name, ownerID string, createdAt time.Time) *List {
	return &List{
		Name:                 name,
		OwnerID:              ownerID,
		Collaborators:        []string{},
		PendingCollaborators: []string{},
		CollaboratorDetails:  map[string]CollaboratorDetail{},
		ColorAssignments:     map[string]string{},
		Places:               []Place{},
		CreatedAt:            createdAt,
		UpdatedAt:            createdAt,
	}
}

// IsCollaborator reports whether userID has accepted membership. The owner is
// not a collaborator.
func (l *List) IsCollaborator(userID string) bool {
	for _, c := range l.Collaborators {
		if c == userID {
			return true
		}
	}
	return false
}

// IsPending reports whether userID has been invited but not yet accepted.
func (l *List) IsPending(userID string) bool {
	for _, p := range l.PendingCollaborators {
		if p == userID {
			return true
		}
	}
	return false
}

// IsMember reports whether userID is the owner or an accepted collaborator.
func (l *List) IsMember(userID string) bool {
	return userID == l.OwnerID || l.IsCollaborator(userID)
}

// OrderedMemberIDs returns the owner first, then collaborators sorted by ID.
// The stable order makes color rebuilds converge across repeated repairs.
func (l *List) OrderedMemberIDs() []string {
	collabs := make([]string, len(l.Collaborators))
	copy(collabs, l.Collaborators)
	sort.Strings(collabs)
	return append([]string{l.OwnerID}, collabs...)
}

// Member is one row of the human-facing roster assembled by GetMembers.
// swagger:model Member
type Member struct {
	UserID           string    `json:"user_id"`
	DisplayName      string    `json:"display_name"`
	Avatar           string    `json:"avatar"`
	Username         string    `json:"username,omitempty"`
	Color            string    `json:"color"`
	IsOwner          bool      `json:"is_owner"`
	JoinedAt         time.Time `json:"joined_at,omitzero"`
	AddedPlacesCount int       `json:"added_places_count"`
}

// ListRepository defines storage for list records. Every mutating method
// except SetColorAssignments is a single field-scoped merge write (set-union,
// set-remove, increment, nested-map merge) that commutes with concurrent
// writes from other clients, so retries and interleavings are safe.
// SetColorAssignments replaces the whole map and is reserved for the
// low-frequency repair path.
//
// Implementations must return ErrNotFound for a missing list and ErrOffline
// (wrapped) when the store is unreachable.
type ListRepository interface {
	Create(ctx context.Context, list *List) error
	GetByID(ctx context.Context, id string) (*List, error)

	AddPending(ctx context.Context, listID string, userIDs []string) error
	RemovePending(ctx context.Context, listID, userID string) error

	AddCollaborator(ctx context.Context, listID, userID string) error
	RemoveCollaborator(ctx context.Context, listID, userID string) error

	MergeCollaboratorDetail(ctx context.Context, listID, userID string, detail CollaboratorDetail) error
	RemoveCollaboratorDetail(ctx context.Context, listID, userID string) error
	IncrementMemberPlaceCount(ctx context.Context, listID, userID string, delta int) error

	SetColorAssignments(ctx context.Context, listID string, assignments map[string]string) error
	RemoveColorAssignment(ctx context.Context, listID, userID string) error

	// AppendPlace appends one place and increments places_count by one in the
	// same write, keeping the count consistent with the content.
	AppendPlace(ctx context.Context, listID string, place Place) error
	IncrementPlacesCount(ctx context.Context, listID string, delta int) error

	SetLastActivity(ctx context.Context, listID string, activity Activity) error
}

// ListService defines the collaborative list coordination operations. Every
// mutation takes an explicit actor or subject ID; there is no ambient
// "current user".
type ListService interface {
	// CreateList persists a new owner-only list and returns the plaintext
	// share code for join-by-code. The code is not recoverable afterwards.
	CreateList(ctx context.Context, list *List) (shareCode string, err error)

	Invite(ctx context.Context, listID, actorID string, inviteeIDs []string) error
	AcceptInvitation(ctx context.Context, listID, userID string, profile *Profile) error
	DeclineInvitation(ctx context.Context, listID, userID string) error
	JoinByShareCode(ctx context.Context, listID, code, userID string, profile *Profile) error
	RemoveCollaborator(ctx context.Context, listID, memberID, actorID string) error

	AddPlace(ctx context.Context, listID string, place *Place, contributorID string) error

	GetMembers(ctx context.Context, listID string) ([]*Member, error)
	RefreshColorAssignments(ctx context.Context, listID, actorID string) (map[string]string, error)
	GetListWithSyncedCounts(ctx context.Context, listID string) (*List, []*Member, error)
}
