package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"placelists/internal/delivery/http/helpers"
	"placelists/internal/delivery/http/middleware"
	"placelists/internal/domain"
)

// testLogger is a no-op logger for controller tests so we don't assert on log output.
var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

// fakeListService implements domain.ListService for handler tests.
type fakeListService struct {
	createListErr    error
	createdShareCode string
	lastCreatedList  *domain.List

	inviteErr          error
	lastInviteListID   string
	lastInviteActorID  string
	lastInviteInvitees []string

	acceptErr         error
	lastAcceptListID  string
	lastAcceptUserID  string
	lastAcceptProfile *domain.Profile

	declineErr        error
	lastDeclineListID string
	lastDeclineUserID string

	joinErr         error
	lastJoinListID  string
	lastJoinCode    string
	lastJoinUserID  string
	lastJoinProfile *domain.Profile

	removeErr          error
	lastRemoveListID   string
	lastRemoveMemberID string
	lastRemoveActorID  string

	addPlaceErr               error
	lastAddPlaceListID        string
	lastAddPlacePlace         *domain.Place
	lastAddPlaceContributorID string

	getMembersErr    error
	getMembersResult []*domain.Member

	refreshErr          error
	refreshResult       map[string]string
	lastRefreshListID   string
	lastRefreshActorID  string

	getListErr     error
	getListResult  *domain.List
	getListMembers []*domain.Member
}

func (f *fakeListService) CreateList(ctx context.Context, list *domain.List) (string, error) {
	f.lastCreatedList = list
	if f.createListErr != nil {
		return "", f.createListErr
	}
	list.ID = "list-created"
	return f.createdShareCode, nil
}

func (f *fakeListService) Invite(ctx context.Context, listID, actorID string, inviteeIDs []string) error {
	f.lastInviteListID = listID
	f.lastInviteActorID = actorID
	f.lastInviteInvitees = inviteeIDs
	return f.inviteErr
}

func (f *fakeListService) AcceptInvitation(ctx context.Context, listID, userID string, profile *domain.Profile) error {
	f.lastAcceptListID = listID
	f.lastAcceptUserID = userID
	f.lastAcceptProfile = profile
	return f.acceptErr
}

func (f *fakeListService) DeclineInvitation(ctx context.Context, listID, userID string) error {
	f.lastDeclineListID = listID
	f.lastDeclineUserID = userID
	return f.declineErr
}

func (f *fakeListService) JoinByShareCode(ctx context.Context, listID, code, userID string, profile *domain.Profile) error {
	f.lastJoinListID = listID
	f.lastJoinCode = code
	f.lastJoinUserID = userID
	f.lastJoinProfile = profile
	return f.joinErr
}

func (f *fakeListService) RemoveCollaborator(ctx context.Context, listID, memberID, actorID string) error {
	f.lastRemoveListID = listID
	f.lastRemoveMemberID = memberID
	f.lastRemoveActorID = actorID
	return f.removeErr
}

func (f *fakeListService) AddPlace(ctx context.Context, listID string, place *domain.Place, contributorID string) error {
	f.lastAddPlaceListID = listID
	f.lastAddPlacePlace = place
	f.lastAddPlaceContributorID = contributorID
	if f.addPlaceErr != nil {
		return f.addPlaceErr
	}
	place.ID = "place-created"
	place.AddedBy = contributorID
	place.UserColor = "#FF6B6B"
	place.AddedAt = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return nil
}

func (f *fakeListService) GetMembers(ctx context.Context, listID string) ([]*domain.Member, error) {
	if f.getMembersErr != nil {
		return nil, f.getMembersErr
	}
	return f.getMembersResult, nil
}

func (f *fakeListService) RefreshColorAssignments(ctx context.Context, listID, actorID string) (map[string]string, error) {
	f.lastRefreshListID = listID
	f.lastRefreshActorID = actorID
	if f.refreshErr != nil {
		return nil, f.refreshErr
	}
	return f.refreshResult, nil
}

func (f *fakeListService) GetListWithSyncedCounts(ctx context.Context, listID string) (*domain.List, []*domain.Member, error) {
	if f.getListErr != nil {
		return nil, nil, f.getListErr
	}
	return f.getListResult, f.getListMembers, nil
}

func TestListController_CreateList(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		fakeErr        error
		wantStatus     int
		wantBodySubstr string
		noUserContext  bool
		checkResponse  func(t *testing.T, resp CreateListResponse)
	}{
		{
			name:       "success",
			body:       `{"name":"Weekend spots"}`,
			wantStatus: http.StatusCreated,
			checkResponse: func(t *testing.T, resp CreateListResponse) {
				assert.Equal(t, "list-created", resp.List.ID)
				assert.Equal(t, "Weekend spots", resp.List.Name)
				assert.Equal(t, "user-123", resp.List.OwnerID)
				assert.Equal(t, "abcd1234", resp.ShareCode)
			},
		},
		{
			name:           "no user in context",
			body:           `{"name":"Weekend spots"}`,
			wantStatus:     http.StatusUnauthorized,
			wantBodySubstr: "unauthorized",
			noUserContext:  true,
		},
		{
			name:           "bad request invalid json",
			body:           `{invalid`,
			wantStatus:     http.StatusBadRequest,
			wantBodySubstr: "invalid",
			noUserContext:  true, // decode fails before we check context
		},
		{
			name:           "missing name",
			body:           `{"name":"   "}`,
			wantStatus:     http.StatusBadRequest,
			wantBodySubstr: "name is required",
		},
		{
			name:           "unknown field rejected",
			body:           `{"name":"Spots","id":"custom-id"}`,
			wantStatus:     http.StatusBadRequest,
			wantBodySubstr: "unknown field",
		},
		{
			name:           "store offline",
			body:           `{"name":"Spots"}`,
			fakeErr:        domain.ErrOffline,
			wantStatus:     http.StatusServiceUnavailable,
			wantBodySubstr: "offline",
		},
		{
			name:           "service error",
			body:           `{"name":"Spots"}`,
			fakeErr:        errors.New("db error"),
			wantStatus:     http.StatusInternalServerError,
			wantBodySubstr: "db error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeListService{createListErr: tt.fakeErr, createdShareCode: "abcd1234"}
			ctrl := NewListController(testLogger, fake)
			req := httptest.NewRequest(http.MethodPost, "/lists", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			if !tt.noUserContext {
				req = req.WithContext(middleware.SetUserID(req.Context(), "user-123"))
			}
			rr := httptest.NewRecorder()

			ctrl.CreateList(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code, "status code")
			var envelope helpers.APIResponse
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope), "response must be valid JSON envelope")
			if tt.wantStatus == http.StatusCreated && tt.checkResponse != nil {
				require.Nil(t, envelope.Error, "success response must have error nil")
				dataBytes, err := json.Marshal(envelope.Data)
				require.NoError(t, err)
				var resp CreateListResponse
				require.NoError(t, json.Unmarshal(dataBytes, &resp))
				tt.checkResponse(t, resp)
			}
			if tt.wantStatus != http.StatusCreated && tt.wantBodySubstr != "" {
				require.NotNil(t, envelope.Error, "error response must have error set")
				assert.Contains(t, envelope.Error.Message, tt.wantBodySubstr, "error message")
			}
		})
	}
}

func TestListController_GetList(t *testing.T) {
	list := domain.NewList("Weekend spots", "owner-1", time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC))
	list.ID = "list-1"
	list.PlacesCount = 2

	tests := []struct {
		name           string
		listID         string
		fakeErr        error
		wantStatus     int
		wantBodySubstr string
		noUserContext  bool
		checkResponse  func(t *testing.T, resp GetListResponse)
	}{
		{
			name:       "success",
			listID:     "list-1",
			wantStatus: http.StatusOK,
			checkResponse: func(t *testing.T, resp GetListResponse) {
				require.NotNil(t, resp.List)
				assert.Equal(t, "list-1", resp.List.ID)
				assert.Equal(t, 2, resp.List.PlacesCount)
				require.Len(t, resp.Members, 1)
				assert.Equal(t, "owner-1", resp.Members[0].UserID)
			},
		},
		{
			name:           "missing listID",
			listID:         "",
			wantStatus:     http.StatusBadRequest,
			wantBodySubstr: "missing listID",
		},
		{
			name:           "no user in context",
			listID:         "list-1",
			wantStatus:     http.StatusUnauthorized,
			wantBodySubstr: "unauthorized",
			noUserContext:  true,
		},
		{
			name:           "not found",
			listID:         "nope",
			fakeErr:        domain.ErrNotFound,
			wantStatus:     http.StatusNotFound,
			wantBodySubstr: "list not found",
		},
		{
			name:           "store offline",
			listID:         "list-1",
			fakeErr:        domain.ErrOffline,
			wantStatus:     http.StatusServiceUnavailable,
			wantBodySubstr: "offline",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeListService{
				getListErr:     tt.fakeErr,
				getListResult:  list,
				getListMembers: []*domain.Member{{UserID: "owner-1", IsOwner: true, Color: domain.Palette[0]}},
			}
			ctrl := NewListController(testLogger, fake)
			req := httptest.NewRequest(http.MethodGet, "http://test/lists/"+tt.listID, nil)
			if tt.listID != "" {
				req.SetPathValue("listID", tt.listID)
			}
			if !tt.noUserContext {
				req = req.WithContext(middleware.SetUserID(req.Context(), "user-123"))
			}
			rr := httptest.NewRecorder()
			ctrl.GetList(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code, "status code")
			var envelope helpers.APIResponse
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope), "response must be valid JSON envelope")
			if tt.wantStatus == http.StatusOK && tt.checkResponse != nil {
				require.Nil(t, envelope.Error, "success response must have error nil")
				dataBytes, err := json.Marshal(envelope.Data)
				require.NoError(t, err)
				var resp GetListResponse
				require.NoError(t, json.Unmarshal(dataBytes, &resp))
				tt.checkResponse(t, resp)
			}
			if tt.wantStatus != http.StatusOK && tt.wantBodySubstr != "" {
				require.NotNil(t, envelope.Error, "error response must have error set")
				assert.Contains(t, envelope.Error.Message, tt.wantBodySubstr, "error message")
			}
		})
	}
}

func TestListController_Invite(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		fakeErr        error
		wantStatus     int
		wantBodySubstr string
		noUserContext  bool
		checkFake      func(t *testing.T, fake *fakeListService)
	}{
		{
			name:       "success",
			body:       `{"invitee_ids":["user-a","user-b"]}`,
			wantStatus: http.StatusOK,
			checkFake: func(t *testing.T, fake *fakeListService) {
				assert.Equal(t, "list-1", fake.lastInviteListID)
				assert.Equal(t, "user-123", fake.lastInviteActorID)
				assert.Equal(t, []string{"user-a", "user-b"}, fake.lastInviteInvitees)
			},
		},
		{
			name:           "empty invitees",
			body:           `{"invitee_ids":[]}`,
			wantStatus:     http.StatusBadRequest,
			wantBodySubstr: "invitee_ids is required",
		},
		{
			name:           "blank invitee",
			body:           `{"invitee_ids":["user-a",""]}`,
			wantStatus:     http.StatusBadRequest,
			wantBodySubstr: "empty values",
		},
		{
			name:           "no user in context",
			body:           `{"invitee_ids":["user-a"]}`,
			wantStatus:     http.StatusUnauthorized,
			wantBodySubstr: "unauthorized",
			noUserContext:  true,
		},
		{
			name:           "non-member actor forbidden",
			body:           `{"invitee_ids":["user-a"]}`,
			fakeErr:        domain.ErrForbidden,
			wantStatus:     http.StatusForbidden,
			wantBodySubstr: "forbidden",
		},
		{
			name:           "list not found",
			body:           `{"invitee_ids":["user-a"]}`,
			fakeErr:        domain.ErrNotFound,
			wantStatus:     http.StatusNotFound,
			wantBodySubstr: "list not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeListService{inviteErr: tt.fakeErr}
			ctrl := NewListController(testLogger, fake)
			req := httptest.NewRequest(http.MethodPost, "http://test/lists/list-1/invitations", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			req.SetPathValue("listID", "list-1")
			if !tt.noUserContext {
				req = req.WithContext(middleware.SetUserID(req.Context(), "user-123"))
			}
			rr := httptest.NewRecorder()
			ctrl.Invite(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code, "status code")
			var envelope helpers.APIResponse
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
			if tt.wantStatus == http.StatusOK {
				require.Nil(t, envelope.Error)
				if tt.checkFake != nil {
					tt.checkFake(t, fake)
				}
			} else if tt.wantBodySubstr != "" {
				require.NotNil(t, envelope.Error)
				assert.Contains(t, envelope.Error.Message, tt.wantBodySubstr)
			}
		})
	}
}

func TestListController_AcceptInvitation(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		fakeErr        error
		wantStatus     int
		wantBodySubstr string
		wantProfile    *domain.Profile
	}{
		{
			name:        "success with profile snapshot",
			body:        `{"display_name":"Alice","avatar":"cat"}`,
			wantStatus:  http.StatusOK,
			wantProfile: &domain.Profile{UserID: "user-123", DisplayName: "Alice", Avatar: "cat"},
		},
		{
			name:        "success without profile",
			body:        `{}`,
			wantStatus:  http.StatusOK,
			wantProfile: nil,
		},
		{
			name:           "list not found",
			body:           `{}`,
			fakeErr:        domain.ErrNotFound,
			wantStatus:     http.StatusNotFound,
			wantBodySubstr: "list not found",
		},
		{
			name:           "store offline",
			body:           `{}`,
			fakeErr:        domain.ErrOffline,
			wantStatus:     http.StatusServiceUnavailable,
			wantBodySubstr: "offline",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeListService{acceptErr: tt.fakeErr}
			ctrl := NewListController(testLogger, fake)
			req := httptest.NewRequest(http.MethodPost, "http://test/lists/list-1/invitations/accept", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			req.SetPathValue("listID", "list-1")
			req = req.WithContext(middleware.SetUserID(req.Context(), "user-123"))
			rr := httptest.NewRecorder()
			ctrl.AcceptInvitation(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code, "status code")
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, "list-1", fake.lastAcceptListID)
				assert.Equal(t, "user-123", fake.lastAcceptUserID)
				assert.Equal(t, tt.wantProfile, fake.lastAcceptProfile)
			} else if tt.wantBodySubstr != "" {
				var envelope helpers.APIResponse
				require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
				require.NotNil(t, envelope.Error)
				assert.Contains(t, envelope.Error.Message, tt.wantBodySubstr)
			}
		})
	}
}

func TestListController_DeclineInvitation(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		fake := &fakeListService{}
		ctrl := NewListController(testLogger, fake)
		req := httptest.NewRequest(http.MethodPost, "http://test/lists/list-1/invitations/decline", nil)
		req.SetPathValue("listID", "list-1")
		req = req.WithContext(middleware.SetUserID(req.Context(), "user-123"))
		rr := httptest.NewRecorder()
		ctrl.DeclineInvitation(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "list-1", fake.lastDeclineListID)
		assert.Equal(t, "user-123", fake.lastDeclineUserID)
	})

	t.Run("no user in context", func(t *testing.T) {
		ctrl := NewListController(testLogger, &fakeListService{})
		req := httptest.NewRequest(http.MethodPost, "http://test/lists/list-1/invitations/decline", nil)
		req.SetPathValue("listID", "list-1")
		rr := httptest.NewRecorder()
		ctrl.DeclineInvitation(rr, req)

		require.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestListController_JoinByCode(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		fakeErr        error
		wantStatus     int
		wantBodySubstr string
		wantCode       string
	}{
		{
			name:       "success",
			body:       `{"code":" abcd1234 ","display_name":"Bob"}`,
			wantStatus: http.StatusOK,
			wantCode:   "abcd1234",
		},
		{
			name:           "missing code",
			body:           `{}`,
			wantStatus:     http.StatusBadRequest,
			wantBodySubstr: "code is required",
		},
		{
			name:           "wrong code forbidden",
			body:           `{"code":"wrong"}`,
			fakeErr:        domain.ErrForbidden,
			wantStatus:     http.StatusForbidden,
			wantBodySubstr: "forbidden",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeListService{joinErr: tt.fakeErr}
			ctrl := NewListController(testLogger, fake)
			req := httptest.NewRequest(http.MethodPost, "http://test/lists/list-1/join", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			req.SetPathValue("listID", "list-1")
			req = req.WithContext(middleware.SetUserID(req.Context(), "user-123"))
			rr := httptest.NewRecorder()
			ctrl.JoinByCode(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code, "status code")
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, tt.wantCode, fake.lastJoinCode)
				assert.Equal(t, "user-123", fake.lastJoinUserID)
				require.NotNil(t, fake.lastJoinProfile)
				assert.Equal(t, "Bob", fake.lastJoinProfile.DisplayName)
			} else if tt.wantBodySubstr != "" {
				var envelope helpers.APIResponse
				require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
				require.NotNil(t, envelope.Error)
				assert.Contains(t, envelope.Error.Message, tt.wantBodySubstr)
			}
		})
	}
}

func TestListController_RemoveMember(t *testing.T) {
	tests := []struct {
		name           string
		memberID       string
		fakeErr        error
		wantStatus     int
		wantBodySubstr string
	}{
		{
			name:       "success",
			memberID:   "user-b",
			wantStatus: http.StatusOK,
		},
		{
			name:           "missing memberID",
			memberID:       "",
			wantStatus:     http.StatusBadRequest,
			wantBodySubstr: "missing listID or memberID",
		},
		{
			name:           "removing owner forbidden",
			memberID:       "owner-1",
			fakeErr:        domain.ErrForbidden,
			wantStatus:     http.StatusForbidden,
			wantBodySubstr: "forbidden",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeListService{removeErr: tt.fakeErr}
			ctrl := NewListController(testLogger, fake)
			req := httptest.NewRequest(http.MethodDelete, "http://test/lists/list-1/members/"+tt.memberID, nil)
			req.SetPathValue("listID", "list-1")
			if tt.memberID != "" {
				req.SetPathValue("memberID", tt.memberID)
			}
			req = req.WithContext(middleware.SetUserID(req.Context(), "user-123"))
			rr := httptest.NewRecorder()
			ctrl.RemoveMember(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code, "status code")
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, "list-1", fake.lastRemoveListID)
				assert.Equal(t, tt.memberID, fake.lastRemoveMemberID)
				assert.Equal(t, "user-123", fake.lastRemoveActorID)
			}
		})
	}
}

func TestListController_ListMembers(t *testing.T) {
	members := []*domain.Member{
		{UserID: "owner-1", DisplayName: "Olga", IsOwner: true, Color: domain.Palette[0]},
		{UserID: "user-a", DisplayName: "Alice", Color: domain.Palette[1], AddedPlacesCount: 3},
	}

	t.Run("success", func(t *testing.T) {
		fake := &fakeListService{getMembersResult: members}
		ctrl := NewListController(testLogger, fake)
		req := httptest.NewRequest(http.MethodGet, "http://test/lists/list-1/members", nil)
		req.SetPathValue("listID", "list-1")
		req = req.WithContext(middleware.SetUserID(req.Context(), "user-123"))
		rr := httptest.NewRecorder()
		ctrl.ListMembers(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		var envelope helpers.APIResponse
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
		require.Nil(t, envelope.Error)
		dataBytes, err := json.Marshal(envelope.Data)
		require.NoError(t, err)
		var got []*domain.Member
		require.NoError(t, json.Unmarshal(dataBytes, &got))
		require.Len(t, got, 2)
		assert.True(t, got[0].IsOwner)
		assert.Equal(t, 3, got[1].AddedPlacesCount)
	})

	t.Run("nil members become empty array", func(t *testing.T) {
		ctrl := NewListController(testLogger, &fakeListService{})
		req := httptest.NewRequest(http.MethodGet, "http://test/lists/list-1/members", nil)
		req.SetPathValue("listID", "list-1")
		req = req.WithContext(middleware.SetUserID(req.Context(), "user-123"))
		rr := httptest.NewRecorder()
		ctrl.ListMembers(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), `"data":[]`)
	})

	t.Run("not found", func(t *testing.T) {
		ctrl := NewListController(testLogger, &fakeListService{getMembersErr: domain.ErrNotFound})
		req := httptest.NewRequest(http.MethodGet, "http://test/lists/nope/members", nil)
		req.SetPathValue("listID", "nope")
		req = req.WithContext(middleware.SetUserID(req.Context(), "user-123"))
		rr := httptest.NewRecorder()
		ctrl.ListMembers(rr, req)

		require.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestListController_AddPlace(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		fakeErr        error
		wantStatus     int
		wantBodySubstr string
		checkPlace     func(t *testing.T, place domain.Place)
	}{
		{
			name:       "success",
			body:       `{"name":"Blue Bottle","address":"1 Main St","latitude":37.77,"longitude":-122.42}`,
			wantStatus: http.StatusCreated,
			checkPlace: func(t *testing.T, place domain.Place) {
				assert.Equal(t, "place-created", place.ID)
				assert.Equal(t, "Blue Bottle", place.Name)
				assert.Equal(t, "user-123", place.AddedBy)
				assert.Equal(t, "#FF6B6B", place.UserColor)
			},
		},
		{
			name:           "missing name",
			body:           `{"latitude":1,"longitude":1}`,
			wantStatus:     http.StatusBadRequest,
			wantBodySubstr: "name is required",
		},
		{
			name:           "latitude out of range",
			body:           `{"name":"X","latitude":91}`,
			wantStatus:     http.StatusBadRequest,
			wantBodySubstr: "latitude",
		},
		{
			name:           "non-member forbidden",
			body:           `{"name":"X"}`,
			fakeErr:        domain.ErrForbidden,
			wantStatus:     http.StatusForbidden,
			wantBodySubstr: "forbidden",
		},
		{
			name:           "no color assignment",
			body:           `{"name":"X"}`,
			fakeErr:        domain.ErrNoColorAssignment,
			wantStatus:     http.StatusConflict,
			wantBodySubstr: "color",
		},
		{
			name:           "store offline",
			body:           `{"name":"X"}`,
			fakeErr:        domain.ErrOffline,
			wantStatus:     http.StatusServiceUnavailable,
			wantBodySubstr: "offline",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeListService{addPlaceErr: tt.fakeErr}
			ctrl := NewListController(testLogger, fake)
			req := httptest.NewRequest(http.MethodPost, "http://test/lists/list-1/places", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			req.SetPathValue("listID", "list-1")
			req = req.WithContext(middleware.SetUserID(req.Context(), "user-123"))
			rr := httptest.NewRecorder()
			ctrl.AddPlace(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code, "status code")
			var envelope helpers.APIResponse
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
			if tt.wantStatus == http.StatusCreated && tt.checkPlace != nil {
				require.Nil(t, envelope.Error)
				dataBytes, err := json.Marshal(envelope.Data)
				require.NoError(t, err)
				var place domain.Place
				require.NoError(t, json.Unmarshal(dataBytes, &place))
				tt.checkPlace(t, place)
			}
			if tt.wantStatus != http.StatusCreated && tt.wantBodySubstr != "" {
				require.NotNil(t, envelope.Error)
				assert.Contains(t, envelope.Error.Message, tt.wantBodySubstr)
			}
		})
	}
}

func TestListController_RefreshColors(t *testing.T) {
	tests := []struct {
		name           string
		fakeErr        error
		wantStatus     int
		wantBodySubstr string
	}{
		{
			name:       "success",
			wantStatus: http.StatusOK,
		},
		{
			name:           "non-owner forbidden",
			fakeErr:        domain.ErrForbidden,
			wantStatus:     http.StatusForbidden,
			wantBodySubstr: "forbidden",
		},
		{
			name:           "not found",
			fakeErr:        domain.ErrNotFound,
			wantStatus:     http.StatusNotFound,
			wantBodySubstr: "list not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeListService{
				refreshErr:    tt.fakeErr,
				refreshResult: map[string]string{"owner-1": domain.Palette[0], "user-a": domain.Palette[1]},
			}
			ctrl := NewListController(testLogger, fake)
			req := httptest.NewRequest(http.MethodPost, "http://test/lists/list-1/colors/refresh", nil)
			req.SetPathValue("listID", "list-1")
			req = req.WithContext(middleware.SetUserID(req.Context(), "user-123"))
			rr := httptest.NewRecorder()
			ctrl.RefreshColors(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code, "status code")
			var envelope helpers.APIResponse
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
			if tt.wantStatus == http.StatusOK {
				require.Nil(t, envelope.Error)
				assert.Equal(t, "list-1", fake.lastRefreshListID)
				assert.Equal(t, "user-123", fake.lastRefreshActorID)
				dataBytes, err := json.Marshal(envelope.Data)
				require.NoError(t, err)
				var assignments map[string]string
				require.NoError(t, json.Unmarshal(dataBytes, &assignments))
				assert.Equal(t, domain.Palette[0], assignments["owner-1"])
			} else if tt.wantBodySubstr != "" {
				require.NotNil(t, envelope.Error)
				assert.Contains(t, envelope.Error.Message, tt.wantBodySubstr)
			}
		})
	}
}
