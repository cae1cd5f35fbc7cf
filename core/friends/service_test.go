package friends

import (
	"context"
	"strings"
	"testing"

	"github.com/trezcool/ratiba/core"
	"github.com/trezcool/ratiba/core/schedule"
)

func init() {
	core.InitValidators(core.Validate, core.NewTranslator())
}

type fakeFriendGateway struct {
	friends []core.Friend
	shares  []core.ScheduleShare

	searchCalls int
	lastQuery   string

	lastShareCanView bool
	lastShareCanEdit bool
	lastShareDays    int
}

func (f *fakeFriendGateway) Friends(context.Context) ([]core.Friend, error) { return f.friends, nil }

func (f *fakeFriendGateway) SearchFriends(_ context.Context, query string) ([]core.Friend, error) {
	f.searchCalls++
	f.lastQuery = query
	var out []core.Friend
	for _, fr := range f.friends {
		if strings.Contains(strings.ToLower(fr.Name), strings.ToLower(query)) {
			out = append(out, fr)
		}
	}
	return out, nil
}

func (f *fakeFriendGateway) RemoveFriend(context.Context, core.ID) error { return nil }

func (f *fakeFriendGateway) FriendRequests(context.Context) ([]core.FriendRequest, error) {
	return nil, nil
}

func (f *fakeFriendGateway) SendFriendRequest(_ context.Context, friendID core.ID, message string) (core.FriendRequest, error) {
	return core.FriendRequest{ID: "1", Outgoing: true}, nil
}

func (f *fakeFriendGateway) AcceptFriendRequest(context.Context, core.ID) error { return nil }
func (f *fakeFriendGateway) RejectFriendRequest(context.Context, core.ID) error { return nil }
func (f *fakeFriendGateway) CancelFriendRequest(context.Context, core.ID) error { return nil }

func (f *fakeFriendGateway) ScheduleShares(context.Context) ([]core.ScheduleShare, error) {
	return f.shares, nil
}

func (f *fakeFriendGateway) CreateScheduleShare(_ context.Context, friendID core.ID, canView, canEdit bool, expiresInDays int) (core.ScheduleShare, error) {
	f.lastShareCanView = canView
	f.lastShareCanEdit = canEdit
	f.lastShareDays = expiresInDays
	share := core.ScheduleShare{ID: "s1", FriendID: friendID, CanView: canView, CanEdit: canEdit}
	f.shares = append(f.shares, share)
	return share, nil
}

func (f *fakeFriendGateway) DeleteScheduleShare(context.Context, core.ID) error { return nil }

func (f *fakeFriendGateway) SharedSchedules(context.Context) ([]core.BackendSemester, error) {
	return nil, nil
}

type capturedMail struct {
	messages []*core.EmailMessage
}

func (c *capturedMail) SendMessages(messages ...*core.EmailMessage) {
	c.messages = append(c.messages, messages...)
}

type nopLogger struct{}

func (nopLogger) Enable(bool)                  {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

func serviceFixture() (*Service, *fakeFriendGateway, *capturedMail) {
	gw := &fakeFriendGateway{
		friends: []core.Friend{
			{ID: "1", Name: "Imani", Email: "imani@test.test"},
			{ID: "2", Name: "Juma", Email: "juma@test.test"},
		},
	}
	mailSvc := &capturedMail{}
	return NewService(&core.Config{}, gw, mailSvc, nopLogger{}), gw, mailSvc
}

func TestService_Search(t *testing.T) {
	ctx := context.Background()
	svc, gw, _ := serviceFixture()

	if _, err := svc.Search(ctx, " i "); err == nil {
		t.Error("Search() with a 1-char query error = nil, want validation error")
	}
	if gw.searchCalls != 0 {
		t.Error("short query reached the backend")
	}

	matches, err := svc.Search(ctx, "ima")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(matches) != 1 || matches[0].Name != "Imani" {
		t.Errorf("matches = %+v", matches)
	}
}

func TestService_CreateShare(t *testing.T) {
	ctx := context.Background()
	svc, gw, _ := serviceFixture()

	tests := []struct {
		name    string
		form    NewShare
		wantErr bool
	}{
		{name: "view only", form: NewShare{FriendID: "1", CanView: true, ExpiresInDays: 7}},
		{name: "edit implies view", form: NewShare{FriendID: "1", CanEdit: true}},
		{name: "no friend", form: NewShare{CanView: true}, wantErr: true},
		{name: "no access at all", form: NewShare{FriendID: "1"}, wantErr: true},
		{name: "expiry too long", form: NewShare{FriendID: "1", CanView: true, ExpiresInDays: 120}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateShare(ctx, tt.form)
			if (err != nil) != tt.wantErr {
				t.Fatalf("CreateShare() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}

	if !gw.lastShareCanView {
		t.Error("edit-only share did not grant view access")
	}
}

func TestService_ShareByEmail(t *testing.T) {
	svc, _, mailSvc := serviceFixture()
	from := core.Profile{Username: "asha", DisplayName: "Asha"}
	semesters := []schedule.Semester{
		{ID: "2025-Fall", Year: 2025, Name: "Fall", Classes: []schedule.Class{
			{Name: "Databases", Credits: 3, Professor: "Maxwell"},
			{Name: "Capstone", Credits: 3, Professor: schedule.ProfessorTBD},
		}},
		{ID: "2025-Winter", Year: 2025, Name: "Winter"}, // empty, omitted
	}

	if err := svc.ShareByEmail(EmailShare{Email: "nope"}, from, semesters); err == nil {
		t.Error("ShareByEmail() with bad email error = nil")
	}

	if err := svc.ShareByEmail(EmailShare{Email: "Friend@Test.test", Note: "my plan"}, from, semesters); err != nil {
		t.Fatalf("ShareByEmail() error = %v", err)
	}
	if len(mailSvc.messages) != 1 {
		t.Fatalf("sent %d messages, want 1", len(mailSvc.messages))
	}
	msg := mailSvc.messages[0]
	if msg.To[0].Address != "friend@test.test" {
		t.Errorf("To = %q", msg.To[0].Address)
	}
	if !strings.Contains(msg.Subject, "Asha") {
		t.Errorf("Subject = %q, want the sender named", msg.Subject)
	}
	if !strings.Contains(msg.Body, "Fall 2025") || !strings.Contains(msg.Body, "Databases") {
		t.Errorf("Body = %q", msg.Body)
	}
	if strings.Contains(msg.Body, "Winter") {
		t.Error("empty semester listed in the shared schedule")
	}
}
