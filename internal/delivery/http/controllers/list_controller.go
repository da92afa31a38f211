package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"placelists/internal/delivery/http/helpers"
	"placelists/internal/delivery/http/middleware"
	"placelists/internal/domain"
)

type ListController struct {
	Logger  *slog.Logger
	Service domain.ListService
}

func NewListController(logger *slog.Logger, svc domain.ListService) *ListController {
	return &ListController{
		Logger:  logger,
		Service: svc,
	}
}

// respondError maps service errors to HTTP responses. Unmapped errors are
// logged and returned as 500.
func (c *ListController) respondError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "list not found")
	case errors.Is(err, domain.ErrForbidden):
		helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, "forbidden")
	case errors.Is(err, domain.ErrOffline):
		helpers.WriteJSONError(w, http.StatusServiceUnavailable, helpers.ErrCodeOffline, helpers.OfflineMessage)
	case errors.Is(err, domain.ErrNoColorAssignment):
		helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeConflict, "member has no color assignment")
	case errors.Is(err, domain.ErrInvalidInput):
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
	default:
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
	}
}

// profileFromRequest builds an optional profile snapshot from request fields.
// Returns nil when the client sent neither field, letting the service fall
// back to a live profile lookup or placeholders.
func profileFromRequest(userID, displayName, avatar string) *domain.Profile {
	if displayName == "" && avatar == "" {
		return nil
	}
	return &domain.Profile{UserID: userID, DisplayName: displayName, Avatar: avatar}
}

// CreateListRequest is the request body for POST /lists. Only name is accepted.
type CreateListRequest struct {
	Name string `json:"name"`
}

// Validate implements Validator.
func (c CreateListRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(c.Name) == "" {
		errs = append(errs, "name is required")
	}
	return errs
}

// CreateListResponse is the data payload for POST /lists (201). ShareCode is
// returned exactly once; only its hash is stored.
type CreateListResponse struct {
	List      *domain.List `json:"list"`
	ShareCode string       `json:"share_code"`
}

// CreateListSuccessResponse is the success response envelope for POST /lists (201).
type CreateListSuccessResponse struct {
	Data  CreateListResponse `json:"data"`
	Error *helpers.APIError  `json:"error"`
}

// CreateList godoc
// @Summary Create a new place list
// @Description Create a new list owned by the authenticated user. Returns the list and its plaintext share code; the code cannot be recovered later.
// @Tags lists
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param list body CreateListRequest true "List data (name only)"
// @Success 201 {object} controllers.CreateListSuccessResponse "data contains the created list and share code"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 503 {object} helpers.APIResponse "error.code: offline"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /lists [post]
func (c *ListController) CreateList(w http.ResponseWriter, r *http.Request) {
	var req CreateListRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	list := domain.NewList(strings.TrimSpace(req.Name), userID, time.Now().UTC())
	shareCode, err := c.Service.CreateList(r.Context(), list)
	if err != nil {
		c.respondError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, CreateListResponse{List: list, ShareCode: shareCode})
}

// GetListResponse is the data payload for GET /lists/{listID}. Members carries
// the resolved roster alongside the list document.
type GetListResponse struct {
	List    *domain.List     `json:"list"`
	Members []*domain.Member `json:"members"`
}

// GetListSuccessResponse is the success response envelope for GET /lists/{listID} (200).
type GetListSuccessResponse struct {
	Data  GetListResponse   `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// GetList godoc
// @Summary Get a list with reconciled counts
// @Description Returns the list and its member roster. The stored places count is reconciled against the actual places before returning. Requires authentication.
// @Tags lists
// @Produce json
// @Security BearerAuth
// @Param listID path string true "List ID"
// @Success 200 {object} controllers.GetListSuccessResponse "data contains list and members"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 503 {object} helpers.APIResponse "error.code: offline"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /lists/{listID} [get]
func (c *ListController) GetList(w http.ResponseWriter, r *http.Request) {
	listID := r.PathValue("listID")
	if listID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing listID")
		return
	}
	if _, ok := middleware.UserIDFromContext(r.Context()); !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	list, members, err := c.Service.GetListWithSyncedCounts(r.Context(), listID)
	if err != nil {
		c.respondError(w, r, err)
		return
	}
	if members == nil {
		members = []*domain.Member{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, GetListResponse{List: list, Members: members})
}

// InviteRequest is the request body for POST /lists/{listID}/invitations.
type InviteRequest struct {
	InviteeIDs []string `json:"invitee_ids"`
}

// Validate implements Validator.
func (i InviteRequest) Validate() []string {
	var errs []string
	if len(i.InviteeIDs) == 0 {
		errs = append(errs, "invitee_ids is required")
	}
	for _, id := range i.InviteeIDs {
		if strings.TrimSpace(id) == "" {
			errs = append(errs, "invitee_ids must not contain empty values")
			break
		}
	}
	return errs
}

// StatusResponse is the generic status payload for mutations without a richer result.
type StatusResponse struct {
	Status string `json:"status"`
}

// StatusSuccessResponse is the success response envelope wrapping StatusResponse.
type StatusSuccessResponse struct {
	Data  StatusResponse    `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// Invite godoc
// @Summary Invite users to a list
// @Description Adds the given user IDs to the list's pending invitations. Any current member can invite. Users who are already members or already pending are skipped. Requires authentication.
// @Tags lists
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param listID path string true "List ID"
// @Param body body InviteRequest true "User IDs to invite"
// @Success 200 {object} controllers.StatusSuccessResponse "data contains status"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not a member)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 503 {object} helpers.APIResponse "error.code: offline"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /lists/{listID}/invitations [post]
func (c *ListController) Invite(w http.ResponseWriter, r *http.Request) {
	listID := r.PathValue("listID")
	if listID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing listID")
		return
	}
	var req InviteRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	actorID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	if err := c.Service.Invite(r.Context(), listID, actorID, req.InviteeIDs); err != nil {
		c.respondError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, StatusResponse{Status: "invited"})
}

// AcceptInvitationRequest is the request body for POST /lists/{listID}/invitations/accept.
// Both fields are optional; when omitted the server resolves the profile itself.
type AcceptInvitationRequest struct {
	DisplayName string `json:"display_name"`
	Avatar      string `json:"avatar"`
}

// AcceptInvitation godoc
// @Summary Accept an invitation
// @Description The authenticated user joins the list as a collaborator and is assigned a color. Accepting when already a member is a no-op. An optional profile snapshot in the body overrides the server-side profile lookup. Requires authentication.
// @Tags lists
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param listID path string true "List ID"
// @Param body body AcceptInvitationRequest true "Optional profile snapshot"
// @Success 200 {object} controllers.StatusSuccessResponse "data contains status"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 503 {object} helpers.APIResponse "error.code: offline"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /lists/{listID}/invitations/accept [post]
func (c *ListController) AcceptInvitation(w http.ResponseWriter, r *http.Request) {
	listID := r.PathValue("listID")
	if listID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing listID")
		return
	}
	var req AcceptInvitationRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	profile := profileFromRequest(userID, req.DisplayName, req.Avatar)
	if err := c.Service.AcceptInvitation(r.Context(), listID, userID, profile); err != nil {
		c.respondError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, StatusResponse{Status: "accepted"})
}

// DeclineInvitation godoc
// @Summary Decline an invitation
// @Description Removes the authenticated user from the list's pending invitations. Declining without a pending invitation is a no-op. Requires authentication.
// @Tags lists
// @Produce json
// @Security BearerAuth
// @Param listID path string true "List ID"
// @Success 200 {object} controllers.StatusSuccessResponse "data contains status"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 503 {object} helpers.APIResponse "error.code: offline"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /lists/{listID}/invitations/decline [post]
func (c *ListController) DeclineInvitation(w http.ResponseWriter, r *http.Request) {
	listID := r.PathValue("listID")
	if listID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing listID")
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	if err := c.Service.DeclineInvitation(r.Context(), listID, userID); err != nil {
		c.respondError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, StatusResponse{Status: "declined"})
}

// JoinByCodeRequest is the request body for POST /lists/{listID}/join.
type JoinByCodeRequest struct {
	Code        string `json:"code"`
	DisplayName string `json:"display_name"`
	Avatar      string `json:"avatar"`
}

// Validate implements Validator.
func (j JoinByCodeRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(j.Code) == "" {
		errs = append(errs, "code is required")
	}
	return errs
}

// JoinByCode godoc
// @Summary Join a list by share code
// @Description The authenticated user joins the list as a collaborator using its share code, without a prior invitation. A wrong code is rejected with 403. Requires authentication.
// @Tags lists
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param listID path string true "List ID"
// @Param body body JoinByCodeRequest true "Share code and optional profile snapshot"
// @Success 200 {object} controllers.StatusSuccessResponse "data contains status"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (wrong code)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 503 {object} helpers.APIResponse "error.code: offline"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /lists/{listID}/join [post]
func (c *ListController) JoinByCode(w http.ResponseWriter, r *http.Request) {
	listID := r.PathValue("listID")
	if listID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing listID")
		return
	}
	var req JoinByCodeRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	profile := profileFromRequest(userID, req.DisplayName, req.Avatar)
	if err := c.Service.JoinByShareCode(r.Context(), listID, strings.TrimSpace(req.Code), userID, profile); err != nil {
		c.respondError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, StatusResponse{Status: "joined"})
}

// RemoveMember godoc
// @Summary Remove a collaborator or revoke an invitation
// @Description Removes a collaborator (and their color and snapshot) from the list, or revokes a pending invitation. The owner can remove anyone; a collaborator can only remove themself. The owner cannot be removed. Requires authentication.
// @Tags lists
// @Produce json
// @Security BearerAuth
// @Param listID path string true "List ID"
// @Param memberID path string true "User ID of the member to remove"
// @Success 200 {object} controllers.StatusSuccessResponse "data contains status"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 503 {object} helpers.APIResponse "error.code: offline"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /lists/{listID}/members/{memberID} [delete]
func (c *ListController) RemoveMember(w http.ResponseWriter, r *http.Request) {
	listID := r.PathValue("listID")
	memberID := r.PathValue("memberID")
	if listID == "" || memberID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing listID or memberID")
		return
	}
	actorID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	if err := c.Service.RemoveCollaborator(r.Context(), listID, memberID, actorID); err != nil {
		c.respondError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, StatusResponse{Status: "removed"})
}

// ListMembersSuccessResponse is the success response envelope for GET /lists/{listID}/members (200).
type ListMembersSuccessResponse struct {
	Data  []*domain.Member  `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// ListMembers godoc
// @Summary List members of a list
// @Description Returns the resolved roster: owner first, then collaborators. Display names and avatars come from live profiles when reachable, stored snapshots otherwise. Place counts are recomputed from the actual places. Requires authentication.
// @Tags lists
// @Produce json
// @Security BearerAuth
// @Param listID path string true "List ID"
// @Success 200 {object} controllers.ListMembersSuccessResponse "data is an array of members"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 503 {object} helpers.APIResponse "error.code: offline"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /lists/{listID}/members [get]
func (c *ListController) ListMembers(w http.ResponseWriter, r *http.Request) {
	listID := r.PathValue("listID")
	if listID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing listID")
		return
	}
	if _, ok := middleware.UserIDFromContext(r.Context()); !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	members, err := c.Service.GetMembers(r.Context(), listID)
	if err != nil {
		c.respondError(w, r, err)
		return
	}
	if members == nil {
		members = []*domain.Member{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, members)
}

// AddPlaceRequest is the request body for POST /lists/{listID}/places.
type AddPlaceRequest struct {
	Name      string  `json:"name"`
	Address   string  `json:"address"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Validate implements Validator.
func (a AddPlaceRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(a.Name) == "" {
		errs = append(errs, "name is required")
	}
	if a.Latitude < -90 || a.Latitude > 90 {
		errs = append(errs, "latitude must be between -90 and 90")
	}
	if a.Longitude < -180 || a.Longitude > 180 {
		errs = append(errs, "longitude must be between -180 and 180")
	}
	return errs
}

// AddPlaceSuccessResponse is the success response envelope for POST /lists/{listID}/places (201).
type AddPlaceSuccessResponse struct {
	Data  *domain.Place     `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// AddPlace godoc
// @Summary Add a place to a list
// @Description Appends a place attributed to the authenticated user, stamped with their assigned color. Only members can add. A member without a color assignment gets 409. Requires authentication.
// @Tags lists
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param listID path string true "List ID"
// @Param body body AddPlaceRequest true "Place data"
// @Success 201 {object} controllers.AddPlaceSuccessResponse "data contains the stored place"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not a member)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (no color assignment)"
// @Failure 503 {object} helpers.APIResponse "error.code: offline"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /lists/{listID}/places [post]
func (c *ListController) AddPlace(w http.ResponseWriter, r *http.Request) {
	listID := r.PathValue("listID")
	if listID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing listID")
		return
	}
	var req AddPlaceRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	place := &domain.Place{
		Name:      strings.TrimSpace(req.Name),
		Address:   strings.TrimSpace(req.Address),
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
	}
	if err := c.Service.AddPlace(r.Context(), listID, place, userID); err != nil {
		c.respondError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, place)
}

// RefreshColorsSuccessResponse is the success response envelope for POST /lists/{listID}/colors/refresh (200).
type RefreshColorsSuccessResponse struct {
	Data  map[string]string `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// RefreshColors godoc
// @Summary Rebuild color assignments
// @Description Recomputes the full color map from current membership in a stable order and overwrites the stored assignments. Only the owner can trigger this repair. Requires authentication.
// @Tags lists
// @Produce json
// @Security BearerAuth
// @Param listID path string true "List ID"
// @Success 200 {object} controllers.RefreshColorsSuccessResponse "data maps member IDs to colors"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not owner)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 503 {object} helpers.APIResponse "error.code: offline"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /lists/{listID}/colors/refresh [post]
func (c *ListController) RefreshColors(w http.ResponseWriter, r *http.Request) {
	listID := r.PathValue("listID")
	if listID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing listID")
		return
	}
	actorID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	assignments, err := c.Service.RefreshColorAssignments(r.Context(), listID, actorID)
	if err != nil {
		c.respondError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, assignments)
}
