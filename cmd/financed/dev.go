package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Nathan-Yinka/autochek-API/internal/infrastructure/config"
	"github.com/Nathan-Yinka/autochek-API/pkg/auth"
	"github.com/Nathan-Yinka/autochek-API/pkg/tlsutil"
)

var devCertsCmd = &cobra.Command{
	Use:   "dev-certs",
	Short: "Write a self-signed TLS certificate for local development",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		out, _ := cmd.Flags().GetString("out")
		hosts, _ := cmd.Flags().GetStringSlice("hosts")
		if err := tlsutil.GenerateSelfSignedCert(hosts, out); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote CA and server certificates to %s\n", out)
		return nil
	},
}

var devTokenCmd = &cobra.Command{
	Use:   "dev-token <user-id>",
	Short: "Issue a signed access token using the configured JWT key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		admin, _ := cmd.Flags().GetBool("admin")
		ttl, _ := cmd.Flags().GetDuration("ttl")

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		jwtCfg := cfg.JWT
		jwtCfg.Expiration = ttl
		svc, err := auth.NewJWTService(jwtCfg)
		if err != nil {
			return err
		}

		roles := []string{auth.RoleUser}
		if admin {
			roles = append(roles, auth.RoleAdmin)
		}
		token, err := svc.GenerateToken(strings.TrimSpace(args[0]), email, roles)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	devCertsCmd.Flags().String("out", "certs", "Output directory")
	devCertsCmd.Flags().StringSlice("hosts", []string{"localhost", "127.0.0.1"}, "DNS names and IPs for the certificate")

	devTokenCmd.Flags().String("email", "", "Email claim")
	devTokenCmd.Flags().Bool("admin", false, "Grant the admin role")
	devTokenCmd.Flags().Duration("ttl", time.Hour, "Token lifetime")
}
