package commands

import (
	"context"
	"fmt"
	"log/slog"

	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
)

// SetupCmd implements the 'setup' command.
type SetupCmd struct{}

func (s *SetupCmd) Run(g *Global, root *CLI) error {
	syncer, err := root.Syncer()
	if err != nil {
		return err
	}
	loc := syncer.Location()
	state, err := syncer.Setup(context.Background())
	if err != nil {
		return err
	}
	g.Logger.Info("Template mirror ready", logfields.Mirror(loc.Root), logfields.State(string(state)))
	fmt.Printf("Template mirror installed at %s\n", loc.Root)
	return nil
}

// UpdateCmd implements the 'update' command.
type UpdateCmd struct{}

func (u *UpdateCmd) Run(g *Global, root *CLI) error {
	syncer, err := root.Syncer()
	if err != nil {
		return err
	}
	state, err := syncer.Update(context.Background())
	if err != nil {
		return err
	}
	g.Logger.Info("Template mirror updated", logfields.Mirror(syncer.Location().Root), logfields.State(string(state)))
	fmt.Printf("Template mirror %s\n", state)
	return nil
}

// UninstallCmd implements the 'uninstall' command.
type UninstallCmd struct{}

func (u *UninstallCmd) Run(g *Global, root *CLI) error {
	syncer, err := root.Syncer()
	if err != nil {
		return err
	}
	removed, err := syncer.Uninstall()
	if err != nil {
		return err
	}
	loc := syncer.Location()
	if !removed {
		g.Logger.Debug("Template mirror not installed", logfields.Mirror(loc.Root))
		fmt.Println("Template mirror not installed")
		return nil
	}
	g.Logger.Info("Template mirror removed", slog.String("mirror", loc.Root))
	fmt.Printf("Removed template mirror %s\n", loc.Root)
	return nil
}
