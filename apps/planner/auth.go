package main

import (
	"context"

	"github.com/trezcool/ratiba/core/account"
)

func (cli *commandLine) login(uname, pwd string) error {
	prof, err := cli.accounts.Login(context.Background(), account.Login{Username: uname, Password: pwd})
	if err != nil {
		return err
	}
	cli.printf("Logged in as %s (%s)\n", prof.Username, prof.Email)
	return nil
}

func (cli *commandLine) register(uname, email, name, pwd, confirm string) error {
	prof, err := cli.accounts.Register(context.Background(), account.NewAccount{
		Username:        uname,
		Email:           email,
		DisplayName:     name,
		Password:        pwd,
		PasswordConfirm: confirm,
	})
	if err != nil {
		return err
	}
	cli.printf("Welcome %s! You are now logged in.\n", prof.Username)
	return nil
}

func (cli *commandLine) logout() error {
	if err := cli.accounts.Logout(context.Background()); err != nil {
		return err
	}
	cli.printf("Logged out.\n")
	return nil
}

func (cli *commandLine) whoami() error {
	prof, err := cli.accounts.CurrentProfile(context.Background())
	if err != nil {
		return err
	}
	cli.printf("%s <%s>\n", prof.Username, prof.Email)
	if prof.DisplayName != "" {
		cli.printf("Display name: %s\n", prof.DisplayName)
	}
	return nil
}
