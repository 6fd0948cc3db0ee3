package todoctl

import (
	"fmt"

	"github.com/dmitrijs2005/gophtodo/internal/common"
	"github.com/urfave/cli/v2"
)

func secretCmd(e *env) *cli.Command {
	var size int
	return &cli.Command{
		Name:  "secret",
		Usage: "Secret helpers",
		Subcommands: []*cli.Command{
			{
				Name:  "generate",
				Usage: "Print a random hex string suitable for SECRET_KEY",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "bytes", Value: 32, Destination: &size},
				},
				Action: func(c *cli.Context) error {
					if size < 16 {
						return fmt.Errorf("%w: at least 16 bytes required", common.ErrorValidation)
					}
					s, err := common.MakeRandHexString(size)
					if err != nil {
						return err
					}
					fmt.Fprintln(e.out, s)
					return nil
				},
			},
		},
	}
}
