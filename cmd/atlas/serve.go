package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/receipt-atlas/internal/api"
	"github.com/Veraticus/receipt-atlas/internal/certs"
	"github.com/Veraticus/receipt-atlas/internal/common"
	"github.com/Veraticus/receipt-atlas/internal/config"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve locations and spending over HTTP",
		Long: `Start the HTTP API used by the map and dashboard views. Each request
runs detection over the current receipts.`,
		RunE: runServe,
	}

	cmd.Flags().IntP("port", "p", config.DefaultServerPort, "Port to listen on")
	cmd.Flags().StringSlice("allowed-origins", nil, "CORS origins allowed to call the API (default: any)")
	cmd.Flags().Bool("tls", false, "Serve HTTPS with a self-signed localhost certificate")
	cmd.Flags().String("cert-dir", "", "Directory holding the generated certificate")

	_ = viper.BindPFlag(config.KeyServerPort, cmd.Flags().Lookup("port"))
	_ = viper.BindPFlag(config.KeyAllowedOrigins, cmd.Flags().Lookup("allowed-origins"))
	_ = viper.BindPFlag(config.KeyServerTLS, cmd.Flags().Lookup("tls"))
	_ = viper.BindPFlag(config.KeyCertDir, cmd.Flags().Lookup("cert-dir"))

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	settings, err := config.ServerConfig(viper.GetViper())
	if err != nil {
		return common.NewUserError("invalid server settings", err)
	}

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	eng, err := initEngine(store)
	if err != nil {
		return err
	}

	server := api.NewServer(eng, store, settings.AllowedOrigins)
	addr := fmt.Sprintf(":%d", settings.Port)
	if !settings.TLS {
		return server.ListenAndServe(ctx, addr)
	}

	cert, err := certs.NewFileManager(settings.CertDir).Certificate()
	if err != nil {
		return common.NewUserError("could not prepare TLS certificate", err)
	}
	return server.ListenAndServeTLS(ctx, addr, cert)
}
