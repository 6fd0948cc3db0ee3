package todoctl

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophtodo/internal/common"
	"github.com/urfave/cli/v2"
)

func tokenCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:  "token",
		Usage: "Issue and inspect session tokens",
		Subcommands: []*cli.Command{
			tokenIssueCmd(e),
			tokenInspectCmd(e),
		},
	}
}

func tokenIssueCmd(e *env) *cli.Command {
	var id int64
	var username string
	var ttl time.Duration
	return &cli.Command{
		Name:  "issue",
		Usage: "Print a token for the given subject",
		Flags: []cli.Flag{
			&cli.Int64Flag{Name: "id", Required: true, Destination: &id},
			&cli.StringFlag{Name: "username", Aliases: []string{"u"}, Required: true, Destination: &username},
			&cli.DurationFlag{Name: "ttl", Usage: "Token lifetime (default 30m)", Destination: &ttl},
		},
		Action: func(c *cli.Context) error {
			if id <= 0 {
				return fmt.Errorf("%w: id must be positive", common.ErrorValidation)
			}
			codec, err := e.codec()
			if err != nil {
				return err
			}
			token, err := codec.EncodeTTL(id, username, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(e.out, token)
			return nil
		},
	}
}

type inspection struct {
	ID       int64     `json:"id"`
	Username string    `json:"username"`
	Expire   time.Time `json:"expire"`
	Expired  bool      `json:"expired"`
}

func tokenInspectCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:      "inspect",
		Usage:     "Verify a token and print its claims",
		ArgsUsage: "<token>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return fmt.Errorf("expected exactly one token argument, got %d", c.NArg())
			}
			codec, err := e.codec()
			if err != nil {
				return err
			}
			claims, err := codec.Decode(c.Args().First())
			if err != nil {
				return err
			}
			enc := json.NewEncoder(e.out)
			enc.SetIndent("", "  ")
			return enc.Encode(inspection{
				ID:       claims.ID,
				Username: claims.Username,
				Expire:   claims.ExpiresAt().UTC(),
				Expired:  codec.IsExpired(claims),
			})
		},
	}
}
