package handlers

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/campusnet/backend/internal/models"
	"github.com/campusnet/backend/internal/services"
)

type stubRelationships struct {
	toggleStatus services.ToggleStatus
	toggleErr    error
	respondErr   error

	gotActor, gotTarget uint
	gotAction           string
	gotPage             models.Page
	gotLimit            int
}

func (s *stubRelationships) Toggle(_ context.Context, actorID, targetID uint) (services.ToggleStatus, error) {
	s.gotActor, s.gotTarget = actorID, targetID
	return s.toggleStatus, s.toggleErr
}

func (s *stubRelationships) Respond(_ context.Context, targetID, requesterID uint, action string) (services.RespondStatus, error) {
	s.gotActor, s.gotTarget, s.gotAction = targetID, requesterID, action
	if s.respondErr != nil {
		return "", s.respondErr
	}
	if action == services.ActionAccept {
		return services.StatusAccepted, nil
	}
	return services.StatusRejected, nil
}

func (s *stubRelationships) CancelRequest(_ context.Context, requesterID, targetID uint) error {
	s.gotActor, s.gotTarget = requesterID, targetID
	return s.respondErr
}

func (s *stubRelationships) ListFollowers(_ context.Context, userID uint, page models.Page) ([]models.UserSummary, int64, error) {
	s.gotTarget, s.gotPage = userID, page
	return []models.UserSummary{{ID: 2, Username: "bo"}}, 41, nil
}

func (s *stubRelationships) ListFollowing(_ context.Context, userID uint, page models.Page) ([]models.UserSummary, int64, error) {
	s.gotTarget, s.gotPage = userID, page
	return nil, 0, fmt.Errorf("%w: user", services.ErrNotFound)
}

func (s *stubRelationships) PendingRequests(context.Context, uint) ([]models.PendingRequest, error) {
	return []models.PendingRequest{{Requester: models.UserSummary{ID: 3, Username: "cy"}}}, nil
}

func (s *stubRelationships) Status(context.Context, uint, uint) (models.RelationshipState, error) {
	return models.RelationshipRequested, nil
}

func (s *stubRelationships) Counts(context.Context, uint) (int64, int64, error) {
	return 4, 5, nil
}

func (s *stubRelationships) Suggest(_ context.Context, _ uint, limit int) ([]models.UserSummary, error) {
	s.gotLimit = limit
	return []models.UserSummary{}, nil
}

func TestToggleFollow(t *testing.T) {
	rel := &stubRelationships{toggleStatus: services.StatusRequested}
	e, g := newTestAPI(1, models.RoleStudent)
	NewFollowHandler(rel).RegisterFollowRoutes(g)

	rec := doJSON(t, e, http.MethodPost, "/api/v1/users/2/follow", "")
	expectStatus(t, rec, http.StatusOK)
	if got := dataOf(t, rec)["status"]; got != "requested" {
		t.Fatalf("status = %v", got)
	}
	if rel.gotActor != 1 || rel.gotTarget != 2 {
		t.Fatalf("toggle called with %d -> %d", rel.gotActor, rel.gotTarget)
	}
}

func TestToggleFollow_SelfIsBadRequest(t *testing.T) {
	rel := &stubRelationships{toggleErr: fmt.Errorf("%w: cannot follow yourself", services.ErrInvalidState)}
	e, g := newTestAPI(1, models.RoleStudent)
	NewFollowHandler(rel).RegisterFollowRoutes(g)

	expectStatus(t, doJSON(t, e, http.MethodPost, "/api/v1/users/1/follow", ""), http.StatusBadRequest)
	expectStatus(t, doJSON(t, e, http.MethodPost, "/api/v1/users/abc/follow", ""), http.StatusBadRequest)
}

func TestRespondToRequest(t *testing.T) {
	rel := &stubRelationships{}
	e, g := newTestAPI(9, models.RoleStudent)
	NewFollowHandler(rel).RegisterFollowRoutes(g)

	rec := doJSON(t, e, http.MethodPost, "/api/v1/follow-requests/4", `{"action":"accept"}`)
	expectStatus(t, rec, http.StatusOK)
	if got := dataOf(t, rec)["status"]; got != "accepted" {
		t.Fatalf("status = %v", got)
	}
	if rel.gotActor != 9 || rel.gotTarget != 4 || rel.gotAction != "accept" {
		t.Fatalf("respond called with target=%d requester=%d action=%q", rel.gotActor, rel.gotTarget, rel.gotAction)
	}

	expectStatus(t, doJSON(t, e, http.MethodPost, "/api/v1/follow-requests/4", `{"action":"maybe"}`), http.StatusBadRequest)

	rel.respondErr = fmt.Errorf("%w: no pending request", services.ErrInvalidState)
	expectStatus(t, doJSON(t, e, http.MethodPost, "/api/v1/follow-requests/4", `{"action":"reject"}`), http.StatusBadRequest)
}

func TestCancelRequest(t *testing.T) {
	rel := &stubRelationships{}
	e, g := newTestAPI(1, models.RoleStudent)
	NewFollowHandler(rel).RegisterFollowRoutes(g)

	expectStatus(t, doJSON(t, e, http.MethodDelete, "/api/v1/users/6/follow-request", ""), http.StatusNoContent)
	if rel.gotActor != 1 || rel.gotTarget != 6 {
		t.Fatalf("cancel called with %d -> %d", rel.gotActor, rel.gotTarget)
	}
}

func TestFollowersArePaged(t *testing.T) {
	rel := &stubRelationships{}
	e, g := newTestAPI(1, models.RoleStudent)
	NewFollowHandler(rel).RegisterFollowRoutes(g)

	rec := doJSON(t, e, http.MethodGet, "/api/v1/users/7/followers?page=2&limit=500", "")
	expectStatus(t, rec, http.StatusOK)
	if rel.gotPage.Number != 2 || rel.gotPage.Limit != models.MaxPageLimit {
		t.Fatalf("page = %+v", rel.gotPage)
	}
	meta, ok := decode(t, rec)["meta"].(map[string]interface{})
	if !ok {
		t.Fatalf("meta missing: %s", rec.Body.String())
	}
	if meta["totalItems"] != float64(41) {
		t.Fatalf("totalItems = %v", meta["totalItems"])
	}

	expectStatus(t, doJSON(t, e, http.MethodGet, "/api/v1/users/7/following", ""), http.StatusNotFound)
}

func TestSuggestionsPassLimit(t *testing.T) {
	rel := &stubRelationships{}
	e, g := newTestAPI(1, models.RoleStudent)
	NewFollowHandler(rel).RegisterFollowRoutes(g)

	expectStatus(t, doJSON(t, e, http.MethodGet, "/api/v1/suggestions?limit=12", ""), http.StatusOK)
	if rel.gotLimit != 12 {
		t.Fatalf("limit = %d", rel.gotLimit)
	}
}
