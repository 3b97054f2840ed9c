package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ruminaider/toolkit/internal/profiles"
	"github.com/ruminaider/toolkit/internal/session"
)

// errNoTerminal is returned when a command needs to prompt but stdin is
// not a terminal.
var errNoTerminal = errors.New("stdin is not a terminal")

// isInteractive is swapped out by tests.
var isInteractive = func() bool {
	return term.IsTerminal(os.Stdin.Fd())
}

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage client profiles",
}

var profileListCmd = &cobra.Command{
	Use:   "list",
	Short: "List profiles, marking the active one",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		reg, err := profiles.LoadRegistry(cfg.Registry)
		if err != nil {
			return err
		}
		set := reg.Profiles()
		if len(set) == 0 {
			fmt.Fprintln(out, "No profiles configured.")
			return nil
		}

		active, err := profiles.ReadActiveProfile(cfg.Dir)
		if err != nil {
			return err
		}

		for _, p := range set {
			mark := " "
			if p.ID == active {
				mark = "*"
			}
			fmt.Fprintf(out, "%s %s  %s\n", mark, p.Name, p.ID)
		}
		return nil
	},
}

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the active profile",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		reg, err := profiles.LoadRegistry(cfg.Registry)
		if err != nil {
			return err
		}
		active, err := profiles.ReadActiveProfile(cfg.Dir)
		if err != nil {
			return err
		}

		p, ok := profiles.Lookup(reg.Profiles(), active)
		switch {
		case ok:
			fmt.Fprintf(out, "Active profile: %s (%s)\n", p.Name, p.ID)
		case active != "":
			fmt.Fprintf(out, "Active profile: %s (stale id %q)\n", profiles.NoneLabel, active)
		default:
			fmt.Fprintf(out, "Active profile: %s\n", profiles.NoneLabel)
		}
		return nil
	},
}

var profileSetNone bool

var profileSetCmd = &cobra.Command{
	Use:   "set [id|name]",
	Short: "Set the shared active profile",
	Args: func(cmd *cobra.Command, args []string) error {
		if profileSetNone && len(args) > 0 {
			return fmt.Errorf("--none takes no profile argument")
		}
		return cobra.MaximumNArgs(1)(cmd, args)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		reg, err := profiles.LoadRegistry(cfg.Registry)
		if err != nil {
			return err
		}

		var target *profiles.Profile
		switch {
		case profileSetNone:
		case len(args) == 1:
			p, err := reg.Find(args[0])
			if err != nil {
				return err
			}
			target = &p
		default:
			p, err := promptProfile(reg.Profiles())
			if err != nil {
				return err
			}
			target = p
		}

		active := session.NewActiveFile(cfg.Dir)
		store, err := session.Open(active)
		if err != nil {
			return err
		}
		stop := session.Persist(store, active, logger)
		defer stop()

		if target == nil {
			store.SetActiveProfileID("")
			fmt.Fprintf(out, "Active profile set to %s\n", profiles.NoneLabel)
			return nil
		}
		store.SetActiveProfileID(target.ID)
		fmt.Fprintf(out, "Active profile set to %s\n", target.Name)
		return nil
	},
}

// promptProfile asks for a profile with a None option first. It returns
// nil for None.
func promptProfile(set []profiles.Profile) (*profiles.Profile, error) {
	if !isInteractive() {
		return nil, fmt.Errorf("no profile given and %w (use a profile argument or --none)", errNoTerminal)
	}

	options := []huh.Option[string]{huh.NewOption(profiles.NoneLabel, "")}
	for _, p := range set {
		options = append(options, huh.NewOption(p.Name, p.ID))
	}

	var id string
	selectField := huh.NewSelect[string]().
		Title("Active profile").
		Options(options...).
		Value(&id)
	if err := huh.NewForm(huh.NewGroup(selectField)).Run(); err != nil {
		return nil, fmt.Errorf("prompt cancelled: %w", err)
	}

	if p, ok := profiles.Lookup(set, id); ok {
		return &p, nil
	}
	return nil, nil
}

var profileCreateCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Create a profile",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := profiles.LoadRegistry(cfg.Registry)
		if err != nil {
			return err
		}

		var name string
		if len(args) == 1 {
			name = args[0]
		} else {
			if !isInteractive() {
				return fmt.Errorf("no name given and %w", errNoTerminal)
			}
			inputField := huh.NewInput().
				Title("Profile name").
				Placeholder("e.g. Acme").
				Validate(func(s string) error {
					return profiles.CheckName(reg.Profiles(), s)
				}).
				Value(&name)
			if err := huh.NewForm(huh.NewGroup(inputField)).Run(); err != nil {
				return fmt.Errorf("prompt cancelled: %w", err)
			}
		}

		p, err := reg.Create(name)
		if err != nil {
			return err
		}
		logger.Info("profile created", zap.String("id", p.ID), zap.String("name", p.Name))
		fmt.Fprintf(cmd.OutOrStdout(), "Created profile %s (%s)\n", p.Name, p.ID)
		return nil
	},
}

var profileRemoveCmd = &cobra.Command{
	Use:   "remove <id|name>",
	Short: "Remove a profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		reg, err := profiles.LoadRegistry(cfg.Registry)
		if err != nil {
			return err
		}
		p, err := reg.Find(args[0])
		if err != nil {
			return err
		}
		if err := reg.Remove(p.ID); err != nil {
			return err
		}
		logger.Info("profile removed", zap.String("id", p.ID), zap.String("name", p.Name))
		fmt.Fprintf(out, "Removed profile %s\n", p.Name)

		// The active id is left as is and now displays as None.
		active, err := profiles.ReadActiveProfile(cfg.Dir)
		if err != nil {
			return err
		}
		if active == p.ID {
			fmt.Fprintf(out, "It was the active profile; the active profile now shows as %s.\n", profiles.NoneLabel)
		}
		return nil
	},
}

func init() {
	profileSetCmd.Flags().BoolVar(&profileSetNone, "none", false, "Clear the active profile")

	profileCmd.AddCommand(profileListCmd)
	profileCmd.AddCommand(profileShowCmd)
	profileCmd.AddCommand(profileSetCmd)
	profileCmd.AddCommand(profileCreateCmd)
	profileCmd.AddCommand(profileRemoveCmd)
}
