package main

import (
	"context"

	"github.com/trezcool/ratiba/core"
	"github.com/trezcool/ratiba/core/friends"
)

func (cli *commandLine) listFriends(search string) error {
	ctx := context.Background()

	if search != "" {
		matches, err := cli.friends.Search(ctx, search)
		if err != nil {
			return err
		}
		if len(matches) == 0 {
			cli.printf("No students match %q\n", search)
			return nil
		}
		for _, f := range matches {
			cli.printf("[%s] %s <%s>\n", f.ID, f.Name, f.Email)
		}
		return nil
	}

	list, err := cli.friends.Friends(ctx)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		cli.printf("No friends yet. Try \"friends -search NAME\".\n")
		return nil
	}
	for _, f := range list {
		cli.printf("[%s] %s <%s>\n", f.ID, f.Name, f.Email)
	}
	return nil
}

func (cli *commandLine) share(friendID core.ID, canEdit bool, days int) error {
	share, err := cli.friends.CreateShare(context.Background(), friends.NewShare{
		FriendID:      friendID,
		CanView:       true,
		CanEdit:       canEdit,
		ExpiresInDays: days,
	})
	if err != nil {
		return err
	}
	perm := "view"
	if share.CanEdit {
		perm = "view and edit"
	}
	cli.printf("Shared your schedule with friend %s (%s)\n", friendID, perm)
	if share.ExpiresAt.Valid {
		cli.printf("Expires %s\n", share.ExpiresAt.Time.Format("Jan 2, 2006"))
	}
	return nil
}

func (cli *commandLine) shareByEmail(email, note string) error {
	ctx := context.Background()
	prof, err := cli.accounts.CurrentProfile(ctx)
	if err != nil {
		return err
	}
	if err = cli.planner.Reload(ctx); err != nil {
		return err
	}
	err = cli.friends.ShareByEmail(friends.EmailShare{Email: email, Note: note}, prof, cli.planner.Semesters())
	if err != nil {
		return err
	}
	cli.printf("Schedule summary sent to %s\n", email)
	return nil
}
