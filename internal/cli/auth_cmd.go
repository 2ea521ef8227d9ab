// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jeranaias/microstep-tui/internal/api"
	"github.com/jeranaias/microstep-tui/internal/model"
	"github.com/jeranaias/microstep-tui/internal/util"
)

func (a *App) loginCmd() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session token",
		Long: `Sign in with email and password. Missing values are prompted for;
the password is read without echo when stdin is a terminal.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.requireAuth(); err != nil {
				return err
			}
			p := newPrompter(a.Stdin, a.Stderr)
			creds, err := askCredentials(p, email, password)
			if err != nil {
				return err
			}

			ctx, cancel := a.callContext(cmd)
			defer cancel()
			reply, err := a.auth.Login(ctx, creds)
			if err != nil {
				return err
			}
			return a.emit(cmd, reply.User, func(w io.Writer) {
				fmt.Fprintf(w, "%s Welcome back, %s! 👋\n", SuccessStyle.Render("[OK]"), displayName(reply.User))
			})
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password (prompted when omitted)")
	return cmd
}

func (a *App) registerCmd() *cobra.Command {
	var name, email, password string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.requireAuth(); err != nil {
				return err
			}
			p := newPrompter(a.Stdin, a.Stderr)

			var err error
			if strings.TrimSpace(name) == "" {
				if name, err = p.Line("Name: "); err != nil {
					return err
				}
			}
			creds, err := askCredentials(p, email, password)
			if err != nil {
				return err
			}
			if strings.TrimSpace(name) == "" {
				return NewValidationError("name", "", "all fields are required")
			}

			ctx, cancel := a.callContext(cmd)
			defer cancel()
			reply, err := a.auth.Register(ctx, model.Registration{
				Name:     strings.TrimSpace(name),
				Email:    creds.Email,
				Password: creds.Password,
			})
			if err != nil {
				return err
			}
			return a.emit(cmd, reply.User, func(w io.Writer) {
				fmt.Fprintf(w, "%s Account created! Let's get started, %s 🚀\n", SuccessStyle.Render("[OK]"), displayName(reply.User))
			})
		},
	}
	cmd.Flags().StringVarP(&name, "name", "n", "", "display name")
	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password (prompted when omitted)")
	return cmd
}

// askCredentials prompts for whatever the flags left empty.
func askCredentials(p *prompter, email, password string) (model.Credentials, error) {
	var err error
	if strings.TrimSpace(email) == "" {
		if email, err = p.Line("Email: "); err != nil {
			return model.Credentials{}, err
		}
	}
	if password == "" {
		if password, err = p.Password("Password: "); err != nil {
			return model.Credentials{}, err
		}
	}
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return model.Credentials{}, NewValidationError("credentials", "", "all fields are required")
	}
	return model.Credentials{Email: email, Password: password}, nil
}

func displayName(u model.User) string {
	return model.Identity{User: u}.DisplayName()
}

func (a *App) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session token",
		Long: `Remove the session file. A TUI running in another terminal with
session.watch enabled returns to its login screen.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.requireAuth(); err != nil {
				return err
			}
			had := a.store.HasToken()
			if err := a.auth.Logout(); err != nil {
				return err
			}
			return a.emit(cmd, map[string]bool{"signed_out": had}, func(w io.Writer) {
				if !had {
					fmt.Fprintln(w, DimStyle.Render("Not logged in."))
					return
				}
				fmt.Fprintf(w, "%s Signed out. See you soon! 👋\n", SuccessStyle.Render("[OK]"))
			})
		},
	}
}

func (a *App) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the identity decoded from the stored token",
		Long: `Decode the stored token without contacting the server. The result is
display data only: the signature is not verified.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := a.whoami()
			if err != nil {
				return err
			}
			return a.emit(cmd, data, func(w io.Writer) {
				printWhoAmI(w, data, a.Now())
			})
		},
	}
}

func (a *App) whoami() (WhoAmIData, error) {
	if a.auth == nil {
		return WhoAmIData{Identity: model.StaticIdentity(), Authenticated: true}, nil
	}
	if err := a.requireSession(); err != nil {
		return WhoAmIData{}, err
	}
	id, err := a.auth.CurrentUser()
	if err != nil {
		return WhoAmIData{}, err
	}
	data := WhoAmIData{Identity: id, Authenticated: a.auth.IsAuthenticatedAt(a.Now())}
	if claims, err := api.DecodeToken(a.store.Token()); err == nil && claims.ExpiresAt != nil {
		exp := claims.ExpiresAt.Time
		data.ExpiresAt = &exp
	}
	return data, nil
}

func printWhoAmI(w io.Writer, d WhoAmIData, now time.Time) {
	id := d.Identity
	fmt.Fprintln(w, TitleStyle.Render(id.DisplayName()))
	if id.Email != "" {
		fmt.Fprintln(w, RenderField("Email", id.Email))
	}
	fmt.Fprintln(w, RenderField("User ID", id.UserID))
	fmt.Fprintln(w, RenderField("Streak", fmt.Sprintf("%d days", id.Streak)))
	fmt.Fprintln(w, RenderField("Points", util.Thousands(id.TotalPoints)))
	fmt.Fprintln(w, RenderField("Source", string(id.Source)))

	switch {
	case id.Source == model.SourceStatic:
		fmt.Fprintln(w, RenderField("Session", "single-user mode"))
	case d.Authenticated && d.ExpiresAt != nil:
		fmt.Fprintln(w, RenderLabel("Session")+RenderStatus("valid")+" "+
			DimStyle.Render("expires in "+d.ExpiresAt.Sub(now).Round(time.Minute).String()))
	default:
		fmt.Fprintln(w, RenderLabel("Session")+RenderStatus("expired")+" "+
			DimStyle.Render("run 'microstep login'"))
	}
}
