package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/MrEthical07/gymdesk"
	"github.com/MrEthical07/gymdesk/metrics/export/prometheus"
)

var (
	email    string
	password string
)

func init() {
	loginCmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	loginCmd.Flags().StringVarP(&password, "password", "p", "", "account password (defaults to $GYMDESK_PASSWORD)")
	_ = loginCmd.MarkFlagRequired("email")
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in as an administrator",
	RunE: func(cmd *cobra.Command, args []string) error {
		if password == "" {
			password = os.Getenv("GYMDESK_PASSWORD")
		}
		return withSession(cmd.Context(), func(engine *gymdesk.Engine, _ gymdesk.Session) error {
			result, err := engine.Login(cmd.Context(), email, password)
			if err != nil {
				return report(cmd.ErrOrStderr(), err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "signed in as %s\n", result.Session.Role())
			if !result.Persisted {
				fmt.Fprintln(out, "warning: credential could not be saved; it lasts until this process exits")
			}
			return nil
		})
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and forget the stored credential",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd.Context(), func(engine *gymdesk.Engine, _ gymdesk.Session) error {
			if err := engine.Logout(cmd.Context()); err != nil {
				return report(cmd.ErrOrStderr(), err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "signed out")
			return nil
		})
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the restored session state",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd.Context(), func(engine *gymdesk.Engine, snap gymdesk.Session) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "state: %s\n", snap.State())
			if snap.State() != gymdesk.StateAuthenticated {
				return nil
			}
			fmt.Fprintf(out, "role:  %s\n", snap.Role())
			if gym := snap.GymID(); gym != "" {
				fmt.Fprintf(out, "gym:   %s\n", gym)
			}
			if snap.Claims != nil && snap.Claims.ExpiresAt != nil {
				fmt.Fprintf(out, "token expires: %s\n", snap.Claims.ExpiresAt.Time.Local().Format("2006-01-02 15:04:05"))
			}
			return nil
		})
	},
}

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show the signed-in operator",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd.Context(), func(engine *gymdesk.Engine, _ gymdesk.Session) error {
			p, err := engine.Profile(cmd.Context())
			if err != nil {
				return report(cmd.ErrOrStderr(), err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "name:  %s\n", p.Name)
			fmt.Fprintf(out, "email: %s\n", p.Email)
			if p.Phone != "" {
				fmt.Fprintf(out, "phone: %s\n", p.Phone)
			}
			fmt.Fprintf(out, "role:  %s (%s)\n", p.Role, p.Source)
			return nil
		})
	},
}

var gymCmd = &cobra.Command{
	Use:   "gym",
	Short: "Show the gym the operator manages",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd.Context(), func(engine *gymdesk.Engine, _ gymdesk.Session) error {
			gym, err := engine.CurrentGym(cmd.Context())
			if err != nil {
				return report(cmd.ErrOrStderr(), err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s  %s\n", gym.ID, gym.Name)
			if gym.Address != "" {
				fmt.Fprintln(out, gym.Address)
			}
			return nil
		})
	},
}

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Restore the session and print metrics in Prometheus text format",
	RunE: func(cmd *cobra.Command, args []string) error {
		collectMetrics = true
		return withSession(cmd.Context(), func(engine *gymdesk.Engine, _ gymdesk.Session) error {
			fmt.Fprint(cmd.OutOrStdout(), prometheus.NewPrometheusExporter(engine).Render())
			return nil
		})
	},
}
