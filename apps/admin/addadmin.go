package main

import (
	"context"

	"github.com/T3Sistema/SCORE-INTELIGENTE-2.0/core"
	"github.com/T3Sistema/SCORE-INTELIGENTE-2.0/core/user"
)

// addAdmin updates or creates an approved admin account.
func (cli *commandLine) addAdmin(name, email, pwd string) error {
	ctx := context.Background()
	name = core.CleanString(name)
	email = core.CleanString(email, true /* lower */)

	usr, err := cli.usrRepo.GetUser(ctx, user.GetFilter{Email: email})
	if err != nil {
		if err != user.ErrNotFound {
			return err
		}
		usr = user.User{
			Name:  name,
			Email: email,
		}
	}
	usr.Name = name
	usr.Role = user.RoleAdmin
	usr.Status = user.StatusApproved
	usr.SetActive(true)
	if err := usr.SetPassword(pwd); err != nil {
		return err
	}
	if _, err := cli.usrRepo.UpdateOrCreateUser(ctx, usr); err != nil {
		return err
	}
	return nil
}
