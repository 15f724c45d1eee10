package cli

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/pshelf/pshelf/pkg/repository"
)

// repoCommand creates the repository management command.
func (c *CLI) repoCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repo",
		Short: "Manage configured package repositories",
	}

	cmd.AddCommand(c.repoListCommand())
	cmd.AddCommand(c.repoAddCommand())
	cmd.AddCommand(c.repoRemoveCommand())
	cmd.AddCommand(c.repoTrustCommand())

	return cmd
}

// repoListCommand creates the "repo list" subcommand.
func (c *CLI) repoListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List configured repositories",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := repository.Load("")
			if err != nil {
				return err
			}

			repos := reg.List()
			rows := make([][]string, 0, len(repos))
			for i, r := range repos {
				marker := "  "
				if i == 0 {
					// The first entry is the default for every command.
					marker = "▸ "
				}
				trusted := ""
				if r.Trusted {
					trusted = iconSuccess
				}
				rows = append(rows, []string{marker, r.Name, r.URL, trusted, strconv.Itoa(r.Priority)})
			}

			t := table.New().
				Border(lipgloss.RoundedBorder()).
				BorderStyle(styleTableBorder).
				Headers("", "Name", "URL", "Trusted", "Priority").
				Rows(rows...).
				StyleFunc(func(row, col int) lipgloss.Style {
					if row == -1 {
						return styleTableHeader
					}
					switch col {
					case 2:
						return StyleDim
					case 3:
						return StyleSuccess
					}
					return StyleValue
				})

			fmt.Println(t.Render())
			printDetail("Config: %s", reg.Path())
			return nil
		},
	}
}

// repoAddCommand creates the "repo add" subcommand.
func (c *CLI) repoAddCommand() *cobra.Command {
	var (
		trusted    bool
		priority   int
		apiVersion string
		username   string
		secretEnv  string
	)

	cmd := &cobra.Command{
		Use:   "add <name> <url>",
		Short: "Register a repository",
		Long: `Register a repository endpoint.

Credentials are never stored in the config file: --secret-env names an
environment variable read at request time. Together with --username it
selects basic auth, alone it selects a bearer token.

Examples:
  pshelf repo add internal https://feed.example.com/api/v2 --priority 10
  pshelf repo add private https://feed.example.com/api/v2 --username ci --secret-env FEED_SECRET`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := repository.Load("")
			if err != nil {
				return err
			}

			repo := repository.Repository{
				Name:       args[0],
				URL:        args[1],
				Trusted:    trusted,
				Priority:   priority,
				APIVersion: apiVersion,
				Username:   username,
				SecretEnv:  secretEnv,
			}
			if err := reg.Add(repo); err != nil {
				return err
			}
			if err := reg.Save(); err != nil {
				return err
			}

			printSuccess("Registered %s", args[0])
			printNextStep("Search it", fmt.Sprintf("pshelf search -r %s", args[0]))
			return nil
		},
	}

	cmd.Flags().BoolVar(&trusted, "trusted", false, "mark the repository as trusted")
	cmd.Flags().IntVar(&priority, "priority", repository.DefaultPriority, "priority (lower wins)")
	cmd.Flags().StringVar(&apiVersion, "api-version", "", "protocol version (default v2)")
	cmd.Flags().StringVar(&username, "username", "", "username for basic auth")
	cmd.Flags().StringVar(&secretEnv, "secret-env", "", "environment variable holding the credential")

	return cmd
}

// repoRemoveCommand creates the "repo remove" subcommand.
func (c *CLI) repoRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <name>",
		Short: "Unregister a repository",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := repository.Load("")
			if err != nil {
				return err
			}
			if err := reg.Remove(args[0]); err != nil {
				return err
			}
			if err := reg.Save(); err != nil {
				return err
			}
			printSuccess("Removed %s", args[0])
			return nil
		},
	}
}

// repoTrustCommand creates the "repo trust" subcommand.
func (c *CLI) repoTrustCommand() *cobra.Command {
	var revoke bool

	cmd := &cobra.Command{
		Use:   "trust <name>",
		Short: "Mark a repository as trusted",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := repository.Load("")
			if err != nil {
				return err
			}
			if err := reg.SetTrusted(args[0], !revoke); err != nil {
				return err
			}
			if err := reg.Save(); err != nil {
				return err
			}
			if revoke {
				printSuccess("Revoked trust in %s", args[0])
			} else {
				printSuccess("Trusted %s", args[0])
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&revoke, "revoke", false, "revoke trust instead")

	return cmd
}
