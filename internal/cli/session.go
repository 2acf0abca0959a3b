package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ppiankov/sentidash/internal/model"
	"github.com/ppiankov/sentidash/internal/session"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Save and restore selections between commands",
	Long: `Sessions keep a selection on disk so later commands can reuse it with
--session. Sessions expire after session.ttl.

Example:
  ID=$(sentidash session new)
  sentidash session set $ID --brand Nissan --from 2024-01-01 --to 2024-01-31
  sentidash chart --session $ID`,
}

var sessionNewCmd = &cobra.Command{
	Use:   "new",
	Short: "Create a session and print its id",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		store := a.sessionStore()
		id, err := store.New(a.ctx)
		if err != nil {
			return fmt.Errorf("create session: %w", err)
		}

		sel, err := applySelectionFlags(cmd, model.Selection{})
		if err != nil {
			return err
		}
		if err := store.Put(a.ctx, id, sel); err != nil {
			return fmt.Errorf("save session: %w", err)
		}
		fmt.Println(id)
		return nil
	},
}

var sessionShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print a session's saved selection",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		sel, err := a.sessionStore().Get(a.ctx, args[0])
		if err != nil {
			return fmt.Errorf("session %s: %w", args[0], err)
		}
		data, err := session.MarshalYAML(sel)
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(data)
		return err
	},
}

var sessionSetCmd = &cobra.Command{
	Use:   "set <id>",
	Short: "Update a session's selection from flags",
	Long: `Set applies the selection flags to the saved selection. Flags that are
not given keep their saved value; --brand All clears the brand filter.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		store := a.sessionStore()
		base := store.Load(a.ctx, args[0])

		sel, err := applySelectionFlags(cmd, base)
		if err != nil {
			return err
		}
		if err := store.Put(a.ctx, args[0], sel); err != nil {
			return fmt.Errorf("save session: %w", err)
		}

		data, err := session.MarshalYAML(sel)
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(data)
		return err
	},
}

var sessionClearCmd = &cobra.Command{
	Use:   "clear <id>",
	Short: "Delete a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		if err := a.sessionStore().Delete(a.ctx, args[0]); err != nil {
			return fmt.Errorf("session %s: %w", args[0], err)
		}
		fmt.Fprintf(os.Stderr, "✓ Cleared session %s\n", args[0])
		return nil
	},
}

func init() {
	addFilterFlags(sessionNewCmd)
	addFilterFlags(sessionSetCmd)

	sessionCmd.AddCommand(sessionNewCmd, sessionShowCmd, sessionSetCmd, sessionClearCmd)
	rootCmd.AddCommand(sessionCmd)
}
