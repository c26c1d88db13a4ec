package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/UTDallasEPICS/the-samaritan-inn/internal/dto"
	"github.com/UTDallasEPICS/the-samaritan-inn/internal/model"
	"github.com/UTDallasEPICS/the-samaritan-inn/internal/repository"
	"github.com/UTDallasEPICS/the-samaritan-inn/internal/service"
)

var (
	userName     string
	userEmail    string
	userPassword string
	userRole     string
	filterRole   string
)

// createUserCmd creates an account directly, e.g. the first admin
var createUserCmd = &cobra.Command{
	Use:   "create-user",
	Short: "Create an account",
	Long: `Create an account with a bcrypt-hashed password.

Residents normally sign up through the API; use this to bootstrap
the first admin (case worker) account:

  samaritanctl create-user --name "Sarah Johnson" --email sarah@example.org \
      --password '...' --role admin`,
	Args: cobra.NoArgs,
	RunE: runCreateUser,
}

// listUsersCmd prints accounts
var listUsersCmd = &cobra.Command{
	Use:   "list-users",
	Short: "List accounts",
	Args:  cobra.NoArgs,
	RunE:  runListUsers,
}

func init() {
	createUserCmd.Flags().StringVar(&userName, "name", "", "display name")
	createUserCmd.Flags().StringVar(&userEmail, "email", "", "login email")
	createUserCmd.Flags().StringVar(&userPassword, "password", "", "initial password (at least 8 characters)")
	createUserCmd.Flags().StringVar(&userRole, "role", model.RoleResident, "resident, user or admin")
	_ = createUserCmd.MarkFlagRequired("name")
	_ = createUserCmd.MarkFlagRequired("email")
	_ = createUserCmd.MarkFlagRequired("password")

	listUsersCmd.Flags().StringVar(&filterRole, "role", "", "only list this role")
}

func runCreateUser(cmd *cobra.Command, _ []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	users := service.NewUserService(repository.NewRepository(e.db), e.logger)
	user, err := users.Create(ctx, &dto.RegisterRequest{
		Name:     userName,
		Email:    userEmail,
		Password: userPassword,
	}, userRole)
	if err != nil {
		var ve *service.ValidationError
		switch {
		case errors.As(err, &ve):
			return fmt.Errorf("invalid %v", ve.Fields)
		case errors.Is(err, service.ErrEmailExists):
			return fmt.Errorf("an account with email %s already exists", userEmail)
		}
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "created %s %s <%s> id=%s\n", user.Role, user.Name, user.Email, user.ID)
	return nil
}

func runListUsers(cmd *cobra.Command, _ []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	users := service.NewUserService(repository.NewRepository(e.db), e.logger)
	list, err := users.List(ctx, filterRole)
	if err != nil {
		return err
	}

	return printUsers(cmd.OutOrStdout(), list)
}

func printUsers(w io.Writer, users []dto.UserResponse) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tROLE")
	for _, u := range users {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", u.ID, u.Name, u.Email, u.Role)
	}
	return tw.Flush()
}
