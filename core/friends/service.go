// Package friends handles the social side of planning: the friend list,
// friend requests and schedule sharing.
package friends

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/ratiba/core"
	"github.com/trezcool/ratiba/core/schedule"
)

type Service struct {
	conf    *core.Config
	gw      core.FriendGateway
	mailSvc core.EmailService
	log     core.Logger
}

func NewService(conf *core.Config, gw core.FriendGateway, mailSvc core.EmailService, log core.Logger) *Service {
	return &Service{conf: conf, gw: gw, mailSvc: mailSvc, log: log}
}

func (svc *Service) Friends(ctx context.Context) ([]core.Friend, error) {
	friends, err := svc.gw.Friends(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "listing friends")
	}
	return friends, nil
}

// Search matches students by name or email on the backend.
func (svc *Service) Search(ctx context.Context, query string) ([]core.Friend, error) {
	query = core.CleanString(query)
	if len(query) < 2 {
		return nil, core.NewValidationError(nil, core.FieldError{Field: "query", Error: "query must contain at least 2 characters"})
	}
	matches, err := svc.gw.SearchFriends(ctx, query)
	if err != nil {
		return nil, errors.Wrapf(err, "searching friends %q", query)
	}
	return matches, nil
}

func (svc *Service) Remove(ctx context.Context, id core.ID) error {
	return errors.Wrap(svc.gw.RemoveFriend(ctx, id), "removing friend")
}

func (svc *Service) Requests(ctx context.Context) ([]core.FriendRequest, error) {
	reqs, err := svc.gw.FriendRequests(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "listing friend requests")
	}
	return reqs, nil
}

func (svc *Service) SendRequest(ctx context.Context, friendID core.ID, message string) (core.FriendRequest, error) {
	req, err := svc.gw.SendFriendRequest(ctx, friendID, core.CleanString(message))
	if err != nil {
		return core.FriendRequest{}, errors.Wrap(err, "sending friend request")
	}
	return req, nil
}

func (svc *Service) AcceptRequest(ctx context.Context, requestID core.ID) error {
	return errors.Wrap(svc.gw.AcceptFriendRequest(ctx, requestID), "accepting friend request")
}

func (svc *Service) RejectRequest(ctx context.Context, requestID core.ID) error {
	return errors.Wrap(svc.gw.RejectFriendRequest(ctx, requestID), "rejecting friend request")
}

func (svc *Service) CancelRequest(ctx context.Context, requestID core.ID) error {
	return errors.Wrap(svc.gw.CancelFriendRequest(ctx, requestID), "cancelling friend request")
}

// NewShare grants a friend access to the student's schedule.
type NewShare struct {
	FriendID      core.ID `json:"friend_id" validate:"required"`
	CanView       bool    `json:"can_view"`
	CanEdit       bool    `json:"can_edit"`
	ExpiresInDays int     `json:"expires_in_days" validate:"omitempty,min=1,max=90"`
}

func (ns *NewShare) Validate() error {
	if err := core.Validate.Struct(ns); err != nil {
		return err
	}
	if !ns.CanView && !ns.CanEdit {
		return core.NewValidationError(nil, core.FieldError{Field: "can_view", Error: "a share must grant at least view access"})
	}
	return nil
}

func (svc *Service) Shares(ctx context.Context) ([]core.ScheduleShare, error) {
	shares, err := svc.gw.ScheduleShares(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "listing schedule shares")
	}
	return shares, nil
}

func (svc *Service) CreateShare(ctx context.Context, ns NewShare) (core.ScheduleShare, error) {
	if err := ns.Validate(); err != nil {
		return core.ScheduleShare{}, err
	}
	share, err := svc.gw.CreateScheduleShare(ctx, ns.FriendID, ns.CanView || ns.CanEdit, ns.CanEdit, ns.ExpiresInDays)
	if err != nil {
		return core.ScheduleShare{}, errors.Wrap(err, "creating schedule share")
	}
	return share, nil
}

func (svc *Service) DeleteShare(ctx context.Context, shareID core.ID) error {
	return errors.Wrap(svc.gw.DeleteScheduleShare(ctx, shareID), "deleting schedule share")
}

// SharedSchedules lists the semesters friends have shared back.
func (svc *Service) SharedSchedules(ctx context.Context) ([]core.BackendSemester, error) {
	sems, err := svc.gw.SharedSchedules(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "listing shared schedules")
	}
	return sems, nil
}

// EmailShare sends a plain-text rendering of the schedule to someone outside
// the app, friend or not.
type EmailShare struct {
	Email string `json:"email" validate:"required,email"`
	Note  string `json:"note"`
}

func (es *EmailShare) Validate() error {
	es.Email = core.CleanString(es.Email, true /* lower */)
	es.Note = core.CleanString(es.Note)
	return core.Validate.Struct(es)
}

func (svc *Service) ShareByEmail(es EmailShare, from core.Profile, semesters []schedule.Semester) error {
	if err := es.Validate(); err != nil {
		return err
	}

	sender := from.DisplayName
	if sender == "" {
		sender = from.Username
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:      []mail.Address{{Address: es.Email}},
		Subject: fmt.Sprintf("%s shared a schedule with you", sender),
		Body:    renderSchedule(es.Note, semesters),
	})
	return nil
}

func renderSchedule(note string, semesters []schedule.Semester) string {
	b := new(strings.Builder)
	if note != "" {
		b.WriteString(note)
		b.WriteString("\n\n")
	}
	for _, sem := range semesters {
		if len(sem.Classes) == 0 {
			continue
		}
		fmt.Fprintf(b, "%s %d\n", sem.Name, sem.Year)
		for _, cls := range sem.Classes {
			fmt.Fprintf(b, "  - %s (%d cr)", cls.Name, cls.Credits)
			if cls.Professor != "" {
				fmt.Fprintf(b, " with %s", cls.Professor)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	if b.Len() == 0 {
		return "No classes scheduled yet.\n"
	}
	return b.String()
}
