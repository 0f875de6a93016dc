package commands

import (
	"fmt"
	"os"

	"git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
)

// CleanCmd implements the 'clean' command.
type CleanCmd struct {
	Output string `short:"o" help:"Output directory" default:"www" type:"path"`
}

func (c *CleanCmd) Run(_ *Global, _ *CLI) error {
	if _, err := os.Stat(c.Output); os.IsNotExist(err) {
		fmt.Printf("Nothing to clean at %s\n", c.Output)
		return nil
	}
	if err := os.RemoveAll(c.Output); err != nil {
		return errors.IOError("remove output directory").WithCause(err).WithPath(c.Output).Build()
	}
	fmt.Printf("Removed %s\n", c.Output)
	return nil
}
