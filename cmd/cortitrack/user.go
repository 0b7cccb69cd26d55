// ABOUTME: CLI commands for user administration.
// ABOUTME: New athletes get a generated week of history.
package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/harperreed/cortitrack/internal/demo"
	"github.com/harperreed/cortitrack/internal/models"
	"github.com/harperreed/cortitrack/internal/wellness"
	"github.com/spf13/cobra"
)

var (
	userListRole string
	userListTeam string

	userAddID       string
	userAddName     string
	userAddEmail    string
	userAddPassword string
	userAddRole     string
	userAddTeam     string
	userAddDOB      string
	userAddSex      string

	loginPassword string
)

var userCmd = &cobra.Command{
	Use:     "user",
	Aliases: []string{"u"},
	Short:   "Manage users",
}

var userListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List users",
	RunE: func(cmd *cobra.Command, args []string) error {
		if userListRole != "" && !models.IsValidRole(userListRole) {
			return fmt.Errorf("unknown role: %s", userListRole)
		}
		users, err := svc.ListUsers()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		faint := color.New(color.Faint)
		shown := 0
		for _, u := range users {
			if userListRole != "" && string(u.Role) != userListRole {
				continue
			}
			if userListTeam != "" && u.Team != userListTeam {
				continue
			}
			fmt.Fprintf(out, "%s %s %s %s %s\n",
				faint.Sprint(padRight(truncate(u.ID, 12), 12)),
				padRight(u.Name, 20),
				padRight(string(u.Role), 20),
				padRight(u.Team, 12),
				faint.Sprint(u.Email))
			shown++
		}
		if shown == 0 {
			fmt.Fprintln(out, "No users found.")
		}
		return nil
	},
}

var userAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a user",
	Long: `Create a user. Athletes start with a generated week of history ending
today at stress 50.

Example:
  cortitrack user add --name "Liam Ortiz" --email liam@mail.com --password secret123 \
    --role athlete --team "Team Alpha" --dob 2000-02-02`,
	RunE: func(cmd *cobra.Command, args []string) error {
		u, err := svc.CreateUser(wellness.NewUserInput{
			ID:          userAddID,
			Name:        userAddName,
			Email:       userAddEmail,
			Password:    userAddPassword,
			Role:        models.Role(userAddRole),
			Team:        userAddTeam,
			DateOfBirth: userAddDOB,
			Sex:         userAddSex,
		})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		color.New(color.FgGreen).Fprintf(out, "✓ Created %s (%s)\n", u.Name, u.ID)

		if u.Role == models.RoleAthlete {
			n, err := demo.SeedAthlete(svc, u.ID, demo.NewAthleteStress, svc.Now(), demo.NewRand(0))
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "  %d days of starting history\n", n)
		}
		return nil
	},
}

var userDeleteCmd = &cobra.Command{
	Use:     "delete <user-id>",
	Aliases: []string{"rm"},
	Short:   "Delete a user and their readings",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := svc.DeleteUser(args[0]); err != nil {
			return err
		}
		color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "✓ Deleted user %s\n", args[0])
		return nil
	},
}

var userLoginCmd = &cobra.Command{
	Use:   "login <email>",
	Short: "Check a user's password and show the id to use with --as",
	Long: `Check a user's password and show the id to use with --as.

The password is read from --password, or from the first line of stdin.

Examples:
  cortitrack user login mike@mail.com --password 12345678
  echo "$PW" | cortitrack user login mike@mail.com`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		password := loginPassword
		if password == "" {
			line, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			password = strings.TrimRight(line, "\r\n")
		}

		u, err := svc.CheckPassword(args[0], password)
		if errors.Is(err, wellness.ErrUnauthorized) {
			return fmt.Errorf("invalid email or password")
		}
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		color.New(color.FgGreen).Fprintf(out, "✓ Signed in as %s (%s)\n", u.Name, u.Role)
		fmt.Fprintf(out, "  Use --as %s to act as this user.\n", u.ID)
		return nil
	},
}

func init() {
	userListCmd.Flags().StringVar(&userListRole, "role", "", "filter by role")
	userListCmd.Flags().StringVar(&userListTeam, "team", "", "filter by team")

	f := userAddCmd.Flags()
	f.StringVar(&userAddID, "id", "", "user id (default: generated)")
	f.StringVar(&userAddName, "name", "", "full name")
	f.StringVar(&userAddEmail, "email", "", "email address")
	f.StringVar(&userAddPassword, "password", "", "password")
	f.StringVar(&userAddRole, "role", string(models.RoleAthlete), "athlete, coach, admin or healthcare_provider")
	f.StringVar(&userAddTeam, "team", "", "team label")
	f.StringVar(&userAddDOB, "dob", "", "date of birth (YYYY-MM-DD)")
	f.StringVar(&userAddSex, "sex", "", "sex")

	userLoginCmd.Flags().StringVar(&loginPassword, "password", "", "password (default: read from stdin)")

	userCmd.AddCommand(userListCmd, userAddCmd, userDeleteCmd, userLoginCmd)
	rootCmd.AddCommand(userCmd)
}
