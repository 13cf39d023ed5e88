package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"biblioteca/internal/database"
	"biblioteca/internal/repositories"
	"biblioteca/internal/services"
)

func newUserAddCmd() *cobra.Command {
	var in services.UserInput
	cmd := &cobra.Command{
		Use:   "useradd <nome_usuario>",
		Short: "Create a user, prompting for the password",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in.Username = args[0]
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			log := newLogger(cfg)

			password, err := readPassword(cmd, "Senha: ")
			if err != nil {
				return err
			}
			confirm, err := readPassword(cmd, "Confirme a senha: ")
			if err != nil {
				return err
			}
			if password != confirm {
				return errors.New("passwords do not match")
			}
			in.Password = password

			db, err := database.Open(cfg)
			if err != nil {
				return err
			}
			defer closeDB(db, log)

			users := services.NewUserService(db,
				repositories.NewUserRepository(db),
				repositories.NewLoanRepository(db),
				log)
			u, err := users.CreateUser(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created user %q with id %d\n", u.Username, u.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&in.Email, "email", "", "e-mail address")
	cmd.Flags().StringVar(&in.Phone, "telefone", "", "phone number")
	cmd.Flags().StringVar(&in.City, "cidade", "", "city")
	cmd.Flags().StringVar(&in.State, "estado", "", "state")
	return cmd
}

// readPassword reads a password from the terminal without echoing it.
func readPassword(cmd *cobra.Command, prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New("useradd needs an interactive terminal to read the password")
	}
	fmt.Fprint(cmd.OutOrStdout(), prompt)
	raw, err := term.ReadPassword(fd)
	fmt.Fprintln(cmd.OutOrStdout())
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimSpace(string(raw)), nil
}
