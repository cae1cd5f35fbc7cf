package gatewaysvc

import (
	"context"
	"net/http"
	"net/url"

	"github.com/trezcool/ratiba/core"
)

func (gw *HTTPGateway) Friends(ctx context.Context) ([]core.Friend, error) {
	var friends []core.Friend
	if err := gw.do(ctx, http.MethodGet, "/friends", nil, &friends, true); err != nil {
		return nil, err
	}
	return friends, nil
}

func (gw *HTTPGateway) SearchFriends(ctx context.Context, query string) ([]core.Friend, error) {
	params := make(url.Values)
	params.Set("q", query)

	var matches []core.Friend
	if err := gw.do(ctx, http.MethodGet, queryPath("/friends/search", params), nil, &matches, true); err != nil {
		return nil, err
	}
	return matches, nil
}

func (gw *HTTPGateway) RemoveFriend(ctx context.Context, id core.ID) error {
	return gw.do(ctx, http.MethodDelete, "/friends/"+pathEscape(id), nil, nil, true)
}

func (gw *HTTPGateway) FriendRequests(ctx context.Context) ([]core.FriendRequest, error) {
	var reqs []core.FriendRequest
	if err := gw.do(ctx, http.MethodGet, "/friends/requests", nil, &reqs, true); err != nil {
		return nil, err
	}
	return reqs, nil
}

func (gw *HTTPGateway) SendFriendRequest(ctx context.Context, friendID core.ID, message string) (core.FriendRequest, error) {
	payload := struct {
		FriendID core.ID `json:"friendId"`
		Message  string  `json:"message,omitempty"`
	}{FriendID: friendID, Message: message}

	var req core.FriendRequest
	if err := gw.do(ctx, http.MethodPost, "/friends/requests", payload, &req, true); err != nil {
		return core.FriendRequest{}, err
	}
	return req, nil
}

func (gw *HTTPGateway) AcceptFriendRequest(ctx context.Context, requestID core.ID) error {
	return gw.do(ctx, http.MethodPost, "/friends/requests/"+pathEscape(requestID)+"/accept", nil, nil, true)
}

func (gw *HTTPGateway) RejectFriendRequest(ctx context.Context, requestID core.ID) error {
	return gw.do(ctx, http.MethodPost, "/friends/requests/"+pathEscape(requestID)+"/reject", nil, nil, true)
}

func (gw *HTTPGateway) CancelFriendRequest(ctx context.Context, requestID core.ID) error {
	return gw.do(ctx, http.MethodDelete, "/friends/requests/"+pathEscape(requestID), nil, nil, true)
}

func (gw *HTTPGateway) ScheduleShares(ctx context.Context) ([]core.ScheduleShare, error) {
	var shares []core.ScheduleShare
	if err := gw.do(ctx, http.MethodGet, "/schedule-shares", nil, &shares, true); err != nil {
		return nil, err
	}
	return shares, nil
}

func (gw *HTTPGateway) CreateScheduleShare(ctx context.Context, friendID core.ID, canView, canEdit bool, expiresInDays int) (core.ScheduleShare, error) {
	payload := struct {
		FriendID      core.ID `json:"friendId"`
		CanView       bool    `json:"canView"`
		CanEdit       bool    `json:"canEdit"`
		ExpiresInDays int     `json:"expiresInDays,omitempty"`
	}{FriendID: friendID, CanView: canView, CanEdit: canEdit, ExpiresInDays: expiresInDays}

	var share core.ScheduleShare
	if err := gw.do(ctx, http.MethodPost, "/schedule-shares", payload, &share, true); err != nil {
		return core.ScheduleShare{}, err
	}
	return share, nil
}

func (gw *HTTPGateway) DeleteScheduleShare(ctx context.Context, shareID core.ID) error {
	return gw.do(ctx, http.MethodDelete, "/schedule-shares/"+pathEscape(shareID), nil, nil, true)
}

func (gw *HTTPGateway) SharedSchedules(ctx context.Context) ([]core.BackendSemester, error) {
	var semesters []core.BackendSemester
	if err := gw.do(ctx, http.MethodGet, "/schedule-shares/received", nil, &semesters, true); err != nil {
		return nil, err
	}
	return semesters, nil
}
