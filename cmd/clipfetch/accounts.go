package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"clipfetch/pkg/accounts"
	"clipfetch/pkg/twitchtracker"
	"clipfetch/pkg/ui"
)

var accountsMax int

// accountsCmd represents the accounts command
var accountsCmd = &cobra.Command{
	Use:   "accounts",
	Short: "Manage the saved account list",
	Long: `Manage the account list that 'clipfetch batch' works through.

The list is stored as a JSON file (stores.accounts_file in the
configuration, or the per-OS data directory by default). Each entry can
carry its own per-run download limit; 0 means unlimited.`,
}

// accountsAddCmd represents the accounts add command
var accountsAddCmd = &cobra.Command{
	Use:   "add <account>",
	Short: "Add an account to the list",
	Example: `  clipfetch accounts add somestreamer
  clipfetch accounts add somestreamer --max 10`,
	Args: cobra.ExactArgs(1),
	Run:  runAccountsAdd,
}

// accountsRemoveCmd represents the accounts remove command
var accountsRemoveCmd = &cobra.Command{
	Use:     "remove <account>",
	Aliases: []string{"rm"},
	Short:   "Remove an account from the list",
	Args:    cobra.ExactArgs(1),
	Run:     runAccountsRemove,
}

// accountsListCmd represents the accounts list command
var accountsListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "Show the saved accounts",
	Args:    cobra.NoArgs,
	Run:     runAccountsList,
}

func init() {
	rootCmd.AddCommand(accountsCmd)
	accountsCmd.AddCommand(accountsAddCmd)
	accountsCmd.AddCommand(accountsRemoveCmd)
	accountsCmd.AddCommand(accountsListCmd)

	accountsAddCmd.Flags().IntVarP(&accountsMax, "max", "m", 0, "per-run download limit for this account (0 = unlimited)")
}

// openAccounts loads configuration and opens the account store it names
func openAccounts() *accounts.Store {
	cfg, err := loadConfig(nil)
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		os.Exit(1)
	}

	store, err := accounts.NewStore(cfg.Stores.AccountsFile)
	if err != nil {
		ui.PrintError("Failed to open the accounts store", err.Error())
		os.Exit(1)
	}
	return store
}

func runAccountsAdd(cmd *cobra.Command, args []string) {
	name := twitchtracker.SanitizeAccount(strings.TrimSpace(args[0]))

	store := openAccounts()
	if err := store.Add(name, accountsMax); err != nil {
		ui.PrintError("Failed to add account", err.Error())
		os.Exit(1)
	}

	ui.PrintSuccess("Account added: " + strings.ToLower(name))
}

func runAccountsRemove(cmd *cobra.Command, args []string) {
	name := twitchtracker.SanitizeAccount(strings.TrimSpace(args[0]))

	store := openAccounts()
	if err := store.Remove(name); err != nil {
		ui.PrintError("Failed to remove account", err.Error())
		os.Exit(1)
	}

	ui.PrintSuccess("Account removed: " + strings.ToLower(name))
}

func runAccountsList(cmd *cobra.Command, args []string) {
	store := openAccounts()

	targets := store.List()
	if len(targets) == 0 {
		ui.PrintWarning("No accounts configured", "add one with 'clipfetch accounts add <name>'")
		return
	}

	ui.PrintInfo("Accounts", strconv.Itoa(len(targets)))
	for _, t := range targets {
		if t.MaxDownloads > 0 {
			fmt.Printf("  %s (max %d)\n", t.Name, t.MaxDownloads)
		} else {
			fmt.Printf("  %s\n", t.Name)
		}
	}
}
