package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/nhle/mailscore/internal/credential"
	"github.com/nhle/mailscore/internal/model"
)

func newSetupCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "Configure the IMAP account and store its password in the keyring",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := *a.cfg
			server := cfg.IMAP.Server
			port := strconv.Itoa(cfg.IMAP.Port)
			username := cfg.IMAP.Username
			tls := cfg.IMAP.TLS
			var password string

			err := huh.NewForm(
				huh.NewGroup(
					huh.NewInput().
						Title("IMAP Server").
						Placeholder("imap.gmail.com").
						Value(&server).
						Validate(validateRequired("Server")),
					huh.NewInput().
						Title("Port").
						Value(&port).
						Validate(validatePort),
					huh.NewInput().
						Title("Email Address").
						Value(&username).
						Validate(validateRequired("Email address")),
					huh.NewInput().
						Title("Password").
						Description("Stored in the system keyring, never in the config file").
						EchoMode(huh.EchoModePassword).
						Value(&password).
						Validate(validateRequired("Password")),
					huh.NewConfirm().
						Title("Use implicit TLS?").
						Description("Choose No to connect with STARTTLS").
						Value(&tls),
				),
			).Run()
			if err != nil {
				return err
			}

			cfg.IMAP.Server = strings.TrimSpace(server)
			cfg.IMAP.Port, _ = strconv.Atoi(port)
			cfg.IMAP.Username = strings.TrimSpace(username)
			cfg.IMAP.TLS = tls

			if err := credential.SetPassword(cfg.IMAP.Username, password); err != nil {
				return err
			}
			if err := model.SaveConfig(a.configPath, &cfg); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Saved %s\n", a.configPath)
			return nil
		},
	}
}

func validateRequired(fieldName string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
		return nil
	}
}

func validatePort(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 || n > 65535 {
		return fmt.Errorf("port must be a number between 1 and 65535")
	}
	return nil
}
