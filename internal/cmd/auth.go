package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/steipete/gsheet/internal/googleauth"
	"github.com/steipete/gsheet/internal/outfmt"
	"github.com/steipete/gsheet/internal/secrets"
	"github.com/steipete/gsheet/internal/ui"
)

func newAuthCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage service account keys stored in the keyring",
	}
	cmd.AddCommand(newAuthAddCmd())
	cmd.AddCommand(newAuthListCmd())
	cmd.AddCommand(newAuthRemoveCmd(flags))
	return cmd
}

func newAuthAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <key.json>",
		Short: "Store a service account key; use it with --account <client_email>",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			info, err := googleauth.ParseKey(data)
			if err != nil {
				return err
			}

			store, err := openSecretsStore()
			if err != nil {
				return err
			}
			if err := store.SetKey(info.ClientEmail, secrets.Key{
				ProjectID: info.ProjectID,
				CreatedAt: time.Now().UTC(),
				JSON:      data,
			}); err != nil {
				return fmt.Errorf("store key: %w", err)
			}

			if outfmt.IsJSON(cmd.Context()) {
				return outfmt.WriteJSON(os.Stdout, map[string]any{
					"stored":    true,
					"email":     info.ClientEmail,
					"projectId": info.ProjectID,
				})
			}
			u := ui.FromContext(cmd.Context())
			u.Out().Printf("email\t%s", info.ClientEmail)
			u.Out().Printf("project\t%s", info.ProjectID)
			return nil
		},
	}
}

func newAuthListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored service account keys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			u := ui.FromContext(cmd.Context())
			store, err := openSecretsStore()
			if err != nil {
				return err
			}
			keys, err := store.ListKeys()
			if err != nil {
				return err
			}

			if outfmt.IsJSON(cmd.Context()) {
				type item struct {
					Email     string `json:"email"`
					ProjectID string `json:"projectId,omitempty"`
					CreatedAt string `json:"createdAt,omitempty"`
				}
				out := make([]item, 0, len(keys))
				for _, k := range keys {
					created := ""
					if !k.CreatedAt.IsZero() {
						created = k.CreatedAt.UTC().Format(time.RFC3339)
					}
					out = append(out, item{Email: k.Email, ProjectID: k.ProjectID, CreatedAt: created})
				}
				return outfmt.WriteJSON(os.Stdout, map[string]any{"accounts": out})
			}

			if len(keys) == 0 {
				u.Err().Println("No keys stored")
				return nil
			}
			w, flush := tableWriter(cmd)
			defer flush()
			for _, k := range keys {
				created := ""
				if !k.CreatedAt.IsZero() {
					created = k.CreatedAt.UTC().Format(time.RFC3339)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", k.Email, k.ProjectID, created)
			}
			return nil
		},
	}
}

func newAuthRemoveCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "remove <email>",
		Aliases: []string{"rm", "delete"},
		Short:   "Remove a stored service account key",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			email := strings.TrimSpace(args[0])
			if err := confirmDestructive(flags, fmt.Sprintf("Remove stored key for %s?", email)); err != nil {
				return err
			}
			store, err := openSecretsStore()
			if err != nil {
				return err
			}
			if err := store.DeleteKey(email); err != nil {
				return err
			}
			if outfmt.IsJSON(cmd.Context()) {
				return outfmt.WriteJSON(os.Stdout, map[string]any{"deleted": true, "email": email})
			}
			ui.FromContext(cmd.Context()).Out().Successf("deleted\t%s", email)
			return nil
		},
	}
}
