package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openbill/openbill/migrate"
	"github.com/openbill/openbill/models"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and move any guest drafts into the account",
	RunE:  runLogin,
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account, then log into it",
	RunE:  runRegister,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Drop credentials and return to guest mode",
	RunE:  runLogout,
}

var guestCmd = &cobra.Command{
	Use:   "guest",
	Short: "Continue as guest without an account",
	RunE:  runGuest,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the current session",
	RunE:  runWhoami,
}

func init() {
	rootCmd.AddCommand(loginCmd, registerCmd, logoutCmd, guestCmd, whoamiCmd)

	loginCmd.Flags().String("phone", "", "Phone number the account is registered with")
	loginCmd.Flags().String("password", "", "Account password")
	loginCmd.MarkFlagRequired("phone")
	loginCmd.MarkFlagRequired("password")

	registerCmd.Flags().String("name", "", "Full name")
	registerCmd.Flags().String("phone", "", "Phone number")
	registerCmd.Flags().String("password", "", "Password")
	registerCmd.MarkFlagRequired("name")
	registerCmd.MarkFlagRequired("phone")
	registerCmd.MarkFlagRequired("password")
}

func runLogin(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	phone, _ := cmd.Flags().GetString("phone")
	password, _ := cmd.Flags().GetString("password")

	s, report, err := a.manager.Login(context.Background(), &models.LoginRequest{
		PhoneNumber: phone,
		Password:    password,
	})
	if err != nil {
		return err
	}
	if err := a.saveSession(s); err != nil {
		return err
	}

	fmt.Printf("Logged in as %s\n", s.Username)
	printMigrationReport(report)
	return nil
}

func runRegister(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	name, _ := cmd.Flags().GetString("name")
	phone, _ := cmd.Flags().GetString("phone")
	password, _ := cmd.Flags().GetString("password")

	s, report, err := a.manager.Register(context.Background(), &models.RegisterRequest{
		FullName:    name,
		PhoneNumber: phone,
		Password:    password,
	})
	if err != nil {
		return err
	}
	if err := a.saveSession(s); err != nil {
		return err
	}

	fmt.Printf("Registered and logged in as %s\n", s.Username)
	printMigrationReport(report)
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	s := a.manager.Logout()
	if err := a.saveSession(s); err != nil {
		return err
	}

	fmt.Println("Logged out, back in guest mode")
	return nil
}

func runGuest(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	s := a.manager.ContinueAsGuest()
	if err := a.saveSession(s); err != nil {
		return err
	}

	fmt.Println("Continuing as guest; invoices stay on this machine until you log in")
	return nil
}

func runWhoami(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	s := a.manager.Current()
	if s.Username != "" {
		fmt.Printf("%s (%s)\n", s.Username, s.Mode)
	} else {
		fmt.Println(s.Mode)
	}
	return nil
}

func printMigrationReport(report *migrate.Report) {
	if report == nil || report.Attempted == 0 {
		return
	}
	fmt.Printf("Moved %d of %d guest invoice(s) into your account\n", report.Succeeded, report.Attempted)
	for _, failure := range report.Failures {
		fmt.Printf("  failed: %s: %v\n", failure.InvoiceNumber, failure.Err)
	}
}
