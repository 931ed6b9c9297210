package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/steipete/gsheet/internal/outfmt"
	"github.com/steipete/gsheet/internal/sheetclient"
	"github.com/steipete/gsheet/internal/ui"
)

func newSpreadsheetCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "spreadsheet",
		Aliases: []string{"ss"},
		Short:   "Create, share, rename or delete spreadsheets",
	}
	cmd.AddCommand(newSpreadsheetCreateCmd(flags))
	cmd.AddCommand(newSpreadsheetDeleteCmd(flags))
	cmd.AddCommand(newSpreadsheetShareCmd(flags))
	cmd.AddCommand(newSpreadsheetRenameCmd(flags))
	return cmd
}

func writeSpreadsheet(cmd *cobra.Command, ss *sheetclient.Spreadsheet) error {
	if outfmt.IsJSON(cmd.Context()) {
		return outfmt.WriteJSON(os.Stdout, map[string]any{"spreadsheet": ss})
	}
	u := ui.FromContext(cmd.Context())
	u.Out().Printf("id\t%s", ss.ID)
	u.Out().Printf("title\t%s", ss.Title)
	if ss.URL != "" {
		u.Out().Printf("url\t%s", ss.URL)
	}
	return nil
}

func newSpreadsheetCreateCmd(flags *rootFlags) *cobra.Command {
	var template string
	var folderID string
	var folderName string

	cmd := &cobra.Command{
		Use:   "create <title>",
		Short: "Create a spreadsheet (empty, or copied from --template)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			title := strings.TrimSpace(strings.Join(args, " "))
			c, err := openClient(cmd.Context(), flags)
			if err != nil {
				return err
			}
			opts := sheetclient.CreateOptions{FolderID: folderID, FolderName: folderName}
			if strings.TrimSpace(template) != "" {
				opts.Template = &sheetclient.Spreadsheet{ID: strings.TrimSpace(template)}
			}
			ss, err := c.CreateSpreadsheet(cmd.Context(), title, opts)
			if err != nil {
				return err
			}
			return writeSpreadsheet(cmd, ss)
		},
	}

	cmd.Flags().StringVar(&template, "template", "", "Spreadsheet ID to copy")
	cmd.Flags().StringVar(&folderID, "folder", "", "Drive folder ID to create in")
	cmd.Flags().StringVar(&folderName, "folder-name", "", "Drive folder name to create in")
	return cmd
}

func newSpreadsheetDeleteCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <spreadsheetId>",
		Short: "Delete a spreadsheet from Drive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := strings.TrimSpace(args[0])
			c, err := openClient(cmd.Context(), flags)
			if err != nil {
				return err
			}
			if err := confirmDestructive(flags, fmt.Sprintf("Delete spreadsheet %s?", id)); err != nil {
				return err
			}
			if err := c.DeleteSpreadsheet(cmd.Context(), &sheetclient.Spreadsheet{ID: id}); err != nil {
				return err
			}
			if outfmt.IsJSON(cmd.Context()) {
				return outfmt.WriteJSON(os.Stdout, map[string]any{"deleted": true, "id": id})
			}
			ui.FromContext(cmd.Context()).Out().Successf("deleted\t%s", id)
			return nil
		},
	}
}

func newSpreadsheetShareCmd(flags *rootFlags) *cobra.Command {
	var email string
	var role string
	var anyone bool
	var message string

	cmd := &cobra.Command{
		Use:   "share",
		Short: "Share the bound spreadsheet with a user and/or anyone with the link",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(email) == "" && !anyone {
				return newUsageError(fmt.Errorf("pass --email and/or --anyone"))
			}
			c, err := openClient(cmd.Context(), flags)
			if err != nil {
				return err
			}
			opts := sheetclient.ShareOptions{Email: email, Role: role, Message: message}
			if anyone {
				opts.Type = "anyone"
			}
			ids, err := c.Share(cmd.Context(), nil, opts)
			if err != nil {
				return err
			}
			if outfmt.IsJSON(cmd.Context()) {
				return outfmt.WriteJSON(os.Stdout, map[string]any{
					"spreadsheetId": c.Spreadsheet().ID,
					"permissionIds": ids,
				})
			}
			u := ui.FromContext(cmd.Context())
			for _, id := range ids {
				u.Out().Printf("permission\t%s", id)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "User to share with")
	cmd.Flags().StringVar(&role, "role", "reader", "reader|commenter|writer")
	cmd.Flags().BoolVar(&anyone, "anyone", false, "Also share with anyone who has the link")
	cmd.Flags().StringVar(&message, "message", "", "Notification email message")
	return cmd
}

func newSpreadsheetRenameCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <new-title>",
		Short: "Rename the bound spreadsheet",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := openClient(cmd.Context(), flags)
			if err != nil {
				return err
			}
			ss, err := c.RenameSpreadsheet(cmd.Context(), c.Spreadsheet(), strings.TrimSpace(strings.Join(args, " ")))
			if err != nil {
				return err
			}
			return writeSpreadsheet(cmd, ss)
		},
	}
}
