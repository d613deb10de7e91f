package main

import (
	"fmt"

	"github.com/jonathan/post-curator/internal/publish"
	"github.com/spf13/cobra"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authorize posting to LinkedIn",
	Long: "Runs the LinkedIn OAuth authorization-code flow: open the printed URL, approve the app, " +
		"and the token is saved to LINKEDIN_TOKEN_FILE (encrypted when LINKEDIN_TOKEN_KEY is set).",
	RunE: runAuth,
}

func init() {
	rootCmd.AddCommand(authCmd)
}

func runAuth(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.RequireOAuth(); err != nil {
		return err
	}
	tokens, err := tokenStore(cfg)
	if err != nil {
		return err
	}

	flow, err := publish.NewOAuthFlow(cfg.Publish.ClientID, cfg.Publish.ClientSecret, cfg.Publish.RedirectURI)
	if err != nil {
		return err
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	tok, err := flow.Run(ctx, func(authURL string) {
		fmt.Printf("Open this URL in your browser to authorize posting:\n\n  %s\n\nWaiting for the callback on %s ...\n", authURL, cfg.Publish.RedirectURI)
	})
	if err != nil {
		return fmt.Errorf("authorization failed: %w", err)
	}

	if err := tokens.Save(tok); err != nil {
		return err
	}

	fmt.Printf("Saved LinkedIn token to %s\n", tokens.Path)
	if !tok.ExpiresAt.IsZero() {
		fmt.Printf("Token expires on %s\n", tok.ExpiresAt.Format("2006-01-02"))
	}
	if sub, ok := tok.Subject(); ok {
		fmt.Printf("Authorized member: %s\n", sub)
	}
	return nil
}
