package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"net"

	"github.com/lib/pq"

	"placelists/internal/domain"
)

type listRepository struct {
	DB *sql.DB
}

// NewListRepository returns a ListRepository backed by Postgres. Sets live in
// text[] columns, maps and places in jsonb, so each mutation is a single
// field-scoped UPDATE that commutes with concurrent writers.
func NewListRepository(db *sql.DB) domain.ListRepository {
	return &listRepository{DB: db}
}

// storeErr maps driver-level connectivity failures to ErrOffline so callers
// can tell "store unreachable" apart from other failures.
func storeErr(err error) error {
	if err == nil {
		return nil
	}
	// database/sql retries ErrBadConn internally and never hands it to
	// callers; kept for drivers that return it directly.
	if errors.Is(err, driver.ErrBadConn) {
		return fmt.Errorf("%w: %v", domain.ErrOffline, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return fmt.Errorf("%w: %v", domain.ErrOffline, err)
	}
	return err
}

func (r *listRepository) Create(ctx context.Context, l *domain.List) error {
	details, err := json.Marshal(l.CollaboratorDetails)
	if err != nil {
		return fmt.Errorf("marshal collaborator details: %w", err)
	}
	colors, err := json.Marshal(l.ColorAssignments)
	if err != nil {
		return fmt.Errorf("marshal color assignments: %w", err)
	}
	places, err := json.Marshal(l.Places)
	if err != nil {
		return fmt.Errorf("marshal places: %w", err)
	}
	var activity any
	if l.LastActivity != nil {
		b, err := json.Marshal(l.LastActivity)
		if err != nil {
			return fmt.Errorf("marshal last activity: %w", err)
		}
		activity = b
	}
	query := `
		INSERT INTO lists (id, name, owner_id, collaborators, pending_collaborators,
			collaborator_details, color_assignments, places, places_count,
			share_code_hash, last_activity, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err = r.DB.ExecContext(ctx, query,
		l.ID, l.Name, l.OwnerID,
		pq.Array(l.Collaborators), pq.Array(l.PendingCollaborators),
		details, colors, places, l.PlacesCount,
		l.ShareCodeHash, activity, l.CreatedAt, l.UpdatedAt,
	)
	return storeErr(err)
}

func (r *listRepository) GetByID(ctx context.Context, id string) (*domain.List, error) {
	query := `
		SELECT id, name, owner_id, collaborators, pending_collaborators,
			collaborator_details, color_assignments, places, places_count,
			share_code_hash, last_activity, created_at, updated_at
		FROM lists
		WHERE id = $1
	`
	l := &domain.List{}
	var details, colors, places []byte
	var activity []byte
	var shareCodeHash sql.NullString
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&l.ID, &l.Name, &l.OwnerID,
		pq.Array(&l.Collaborators), pq.Array(&l.PendingCollaborators),
		&details, &colors, &places, &l.PlacesCount,
		&shareCodeHash, &activity, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, storeErr(err)
	}
	if err := json.Unmarshal(details, &l.CollaboratorDetails); err != nil {
		return nil, fmt.Errorf("unmarshal collaborator details: %w", err)
	}
	if err := json.Unmarshal(colors, &l.ColorAssignments); err != nil {
		return nil, fmt.Errorf("unmarshal color assignments: %w", err)
	}
	if err := json.Unmarshal(places, &l.Places); err != nil {
		return nil, fmt.Errorf("unmarshal places: %w", err)
	}
	if len(activity) > 0 {
		l.LastActivity = &domain.Activity{}
		if err := json.Unmarshal(activity, l.LastActivity); err != nil {
			return nil, fmt.Errorf("unmarshal last activity: %w", err)
		}
	}
	l.ShareCodeHash = shareCodeHash.String
	if l.Collaborators == nil {
		l.Collaborators = []string{}
	}
	if l.PendingCollaborators == nil {
		l.PendingCollaborators = []string{}
	}
	return l, nil
}

// exec runs a single-row UPDATE and maps zero affected rows to ErrNotFound.
func (r *listRepository) exec(ctx context.Context, query string, args ...any) error {
	result, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return storeErr(err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *listRepository) AddPending(ctx context.Context, listID string, userIDs []string) error {
	query := `
		UPDATE lists
		SET pending_collaborators = (
			SELECT COALESCE(array_agg(DISTINCT m ORDER BY m), '{}')
			FROM unnest(pending_collaborators || $2::text[]) AS m
		), updated_at = NOW()
		WHERE id = $1
	`
	return r.exec(ctx, query, listID, pq.Array(userIDs))
}

func (r *listRepository) RemovePending(ctx context.Context, listID, userID string) error {
	query := `
		UPDATE lists
		SET pending_collaborators = array_remove(pending_collaborators, $2), updated_at = NOW()
		WHERE id = $1
	`
	return r.exec(ctx, query, listID, userID)
}

func (r *listRepository) AddCollaborator(ctx context.Context, listID, userID string) error {
	query := `
		UPDATE lists
		SET collaborators = (
			SELECT COALESCE(array_agg(DISTINCT m ORDER BY m), '{}')
			FROM unnest(collaborators || ARRAY[$2::text]) AS m
		), updated_at = NOW()
		WHERE id = $1
	`
	return r.exec(ctx, query, listID, userID)
}

func (r *listRepository) RemoveCollaborator(ctx context.Context, listID, userID string) error {
	query := `
		UPDATE lists
		SET collaborators = array_remove(collaborators, $2), updated_at = NOW()
		WHERE id = $1
	`
	return r.exec(ctx, query, listID, userID)
}

func (r *listRepository) MergeCollaboratorDetail(ctx context.Context, listID, userID string, detail domain.CollaboratorDetail) error {
	b, err := json.Marshal(detail)
	if err != nil {
		return fmt.Errorf("marshal collaborator detail: %w", err)
	}
	query := `
		UPDATE lists
		SET collaborator_details = collaborator_details || jsonb_build_object($2::text, $3::jsonb),
			updated_at = NOW()
		WHERE id = $1
	`
	return r.exec(ctx, query, listID, userID, b)
}

func (r *listRepository) RemoveCollaboratorDetail(ctx context.Context, listID, userID string) error {
	query := `
		UPDATE lists
		SET collaborator_details = collaborator_details - $2, updated_at = NOW()
		WHERE id = $1
	`
	return r.exec(ctx, query, listID, userID)
}

func (r *listRepository) IncrementMemberPlaceCount(ctx context.Context, listID, userID string, delta int) error {
	query := `
		UPDATE lists
		SET collaborator_details = jsonb_set(
			collaborator_details,
			ARRAY[$2::text, 'added_places_count'],
			to_jsonb(COALESCE((collaborator_details #>> ARRAY[$2::text, 'added_places_count'])::int, 0) + $3),
			true
		), updated_at = NOW()
		WHERE id = $1
	`
	return r.exec(ctx, query, listID, userID, delta)
}

func (r *listRepository) SetColorAssignments(ctx context.Context, listID string, assignments map[string]string) error {
	b, err := json.Marshal(assignments)
	if err != nil {
		return fmt.Errorf("marshal color assignments: %w", err)
	}
	// Whole-map overwrite; concurrent rebuilds race last-writer-wins, which
	// is accepted for the repair path.
	query := `
		UPDATE lists
		SET color_assignments = $2::jsonb, updated_at = NOW()
		WHERE id = $1
	`
	return r.exec(ctx, query, listID, b)
}

func (r *listRepository) RemoveColorAssignment(ctx context.Context, listID, userID string) error {
	query := `
		UPDATE lists
		SET color_assignments = color_assignments - $2, updated_at = NOW()
		WHERE id = $1
	`
	return r.exec(ctx, query, listID, userID)
}

func (r *listRepository) AppendPlace(ctx context.Context, listID string, place domain.Place) error {
	b, err := json.Marshal(place)
	if err != nil {
		return fmt.Errorf("marshal place: %w", err)
	}
	// Append and count bump in one statement so places_count == len(places)
	// holds after every successful write.
	query := `
		UPDATE lists
		SET places = places || $2::jsonb, places_count = places_count + 1, updated_at = NOW()
		WHERE id = $1
	`
	return r.exec(ctx, query, listID, b)
}

func (r *listRepository) IncrementPlacesCount(ctx context.Context, listID string, delta int) error {
	query := `
		UPDATE lists
		SET places_count = places_count + $2, updated_at = NOW()
		WHERE id = $1
	`
	return r.exec(ctx, query, listID, delta)
}

func (r *listRepository) SetLastActivity(ctx context.Context, listID string, activity domain.Activity) error {
	b, err := json.Marshal(activity)
	if err != nil {
		return fmt.Errorf("marshal last activity: %w", err)
	}
	query := `
		UPDATE lists
		SET last_activity = $2::jsonb, updated_at = NOW()
		WHERE id = $1
	`
	return r.exec(ctx, query, listID, b)
}
