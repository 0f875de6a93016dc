package commands

import (
	"fmt"
	"os"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
)

// InitCmd implements the 'init' command.
type InitCmd struct {
	Force bool   `help:"Overwrite existing files"`
	Dir   string `arg:"" optional:"" help:"Project directory" default:"." type:"path"`
}

func (i *InitCmd) Run(_ *Global, _ *CLI) error {
	if err := os.MkdirAll(i.Dir, 0o750); err != nil {
		return err
	}
	fmt.Printf("Initializing sitebuilder project in %s\n", i.Dir)
	created, err := config.Init(i.Dir, i.Force)
	if err != nil {
		fmt.Println("Initialization failed")
		return err
	}
	for _, f := range created {
		fmt.Printf("  created %s\n", f)
	}
	fmt.Println("initialized successfully")
	return nil
}
