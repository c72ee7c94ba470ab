package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mschirtz/daybook/internal/auth"
)

var pinCmd = &cobra.Command{
	Use:     "pin",
	GroupID: "advanced",
	Short:   "Manage the local access PIN",
}

var pinSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Set or change the PIN",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		pin, err := auth.PromptPIN("New PIN: ")
		if err != nil {
			return err
		}
		confirm, err := auth.PromptPIN("Confirm PIN: ")
		if err != nil {
			return err
		}
		if pin != confirm {
			return errors.New("PINs do not match")
		}

		if err := auth.SetPIN(a.store.Settings(), pin); err != nil {
			return err
		}
		a.saver.Request()
		if err := a.flush(cmd.Context()); err != nil {
			return err
		}
		fmt.Println("PIN updated.")
		return nil
	},
}

var pinClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove the PIN",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		if err := auth.SetPIN(a.store.Settings(), ""); err != nil {
			return err
		}
		a.saver.Request()
		if err := a.flush(cmd.Context()); err != nil {
			return err
		}
		fmt.Println("PIN removed.")
		return nil
	},
}

func init() {
	pinCmd.AddCommand(pinSetCmd, pinClearCmd)
	rootCmd.AddCommand(pinCmd)
}
