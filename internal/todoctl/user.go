package todoctl

import (
	"bufio"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/gophtodo/internal/server/forms"
	"github.com/dmitrijs2005/gophtodo/internal/server/services"
	"github.com/urfave/cli/v2"
)

func userCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:  "user",
		Usage: "Manage user accounts",
		Subcommands: []*cli.Command{
			userCreateCmd(e),
			userPasswdCmd(e),
			userDeleteCmd(e),
		},
	}
}

func userCreateCmd(e *env) *cli.Command {
	var username, email string
	return &cli.Command{
		Name:  "create",
		Usage: "Create a user (password is prompted for)",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "username", Aliases: []string{"u"}, Required: true, Destination: &username},
			&cli.StringFlag{Name: "email", Aliases: []string{"e"}, Required: true, Destination: &email},
		},
		Action: func(c *cli.Context) error {
			password, err := promptNewPassword(e.out)
			if err != nil {
				return err
			}
			form := forms.UserForm{Username: username, Email: email, Password: password}
			return e.withAuth(c.Context, func(svc *services.AuthService) error {
				subject, err := svc.Register(c.Context, form)
				if err != nil {
					return err
				}
				e.logger.Info(c.Context, "user created", "id", subject.ID, "username", subject.Username)
				fmt.Fprintf(e.out, "%d\n", subject.ID)
				return nil
			})
		},
	}
}

func userPasswdCmd(e *env) *cli.Command {
	var username string
	return &cli.Command{
		Name:  "passwd",
		Usage: "Set a new password for a user",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "username", Aliases: []string{"u"}, Required: true, Destination: &username},
		},
		Action: func(c *cli.Context) error {
			password, err := promptNewPassword(e.out)
			if err != nil {
				return err
			}
			return e.withAuth(c.Context, func(svc *services.AuthService) error {
				if err := svc.ChangePassword(c.Context, username, password); err != nil {
					return err
				}
				e.logger.Info(c.Context, "password changed", "username", username)
				return nil
			})
		},
	}
}

func userDeleteCmd(e *env) *cli.Command {
	var id int64
	var yes bool
	return &cli.Command{
		Name:  "delete",
		Usage: "Delete a user and all of their todos",
		Flags: []cli.Flag{
			&cli.Int64Flag{Name: "id", Required: true, Destination: &id},
			&cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "Skip the confirmation prompt", Destination: &yes},
		},
		Action: func(c *cli.Context) error {
			if !yes {
				fmt.Fprintf(e.out, "Type %d to confirm deletion\n> ", id)
				answer, err := readLine(bufio.NewReader(e.in))
				if err != nil {
					return err
				}
				if answer != strconv.FormatInt(id, 10) {
					return fmt.Errorf("confirmation %q does not match %d", answer, id)
				}
			}
			return e.withAuth(c.Context, func(svc *services.AuthService) error {
				if err := svc.DeleteUser(c.Context, id); err != nil {
					return err
				}
				e.logger.Info(c.Context, "user deleted", "id", id)
				return nil
			})
		},
	}
}
