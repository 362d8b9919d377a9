package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	amw "github.com/haythamforever/HonorHub/internal/auth/middleware"
	cdomain "github.com/haythamforever/HonorHub/internal/catalog/domain"
	"github.com/haythamforever/HonorHub/internal/config"
	"github.com/haythamforever/HonorHub/internal/db"
	"github.com/haythamforever/HonorHub/internal/logger"
	"github.com/haythamforever/HonorHub/internal/render"
)

func tokenCmd() *cobra.Command {
	var (
		userID int64
		ttl    time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Sign an API access token for a user with JWT_SIGNING_KEY",
		RunE: func(cmd *cobra.Command, args []string) error {
			if userID <= 0 {
				return fmt.Errorf("--user-id is required")
			}
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			tok, err := amw.SignToken(cfg.JWTSigningKey, userID, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}
	cmd.Flags().Int64Var(&userID, "user-id", 0, "user id to embed as the token subject")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	return cmd
}

// sampleInput is the certificate drawn by render-sample.
func sampleInput(name, tier, message, logo string) render.Input {
	return render.Input{
		CertificateID: uuid.New(),
		Employee:      cdomain.Employee{Name: name, Email: "sample@example.com"},
		Tier:          cdomain.Tier{Name: tier, Color: "#D4AF37", Description: "For outstanding contribution to the team."},
		Template: cdomain.Template{
			Title:          "Certificate of Appreciation",
			PrimaryColor:   "#1E3A5F",
			SecondaryColor: "#D4AF37",
		},
		Sender:        cdomain.Sender{Name: "HonorHub Admin", Role: cdomain.RoleAdmin},
		CustomMessage: message,
		Period:        time.Now().Format("January 2006"),
		LogoPath:      logo,
		Global:        render.Signature{Name: "HonorHub Admin", Title: "People Operations"},
	}
}

func renderSampleCmd() *cobra.Command {
	var (
		outDir  string
		name    string
		tier    string
		message string
		logo    string
	)
	cmd := &cobra.Command{
		Use:   "render-sample",
		Short: "Render a sample certificate PDF locally",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logger.New(os.Getenv("APP_ENV"), os.Getenv("LOG_LEVEL"))
			r := render.New(outDir, outDir, logger.Component(log, "render"))
			p, err := r.Render(cmd.Context(), sampleInput(name, tier, message, logo))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), p)
			return nil
		},
	}
	cmd.Flags().StringVar(&outDir, "out", ".", "directory to write the PDF into")
	cmd.Flags().StringVar(&name, "name", "Jane Doe", "recipient name")
	cmd.Flags().StringVar(&tier, "tier", "Gold", "tier name")
	cmd.Flags().StringVar(&message, "message", "Thank you for your dedication this quarter.", "custom message")
	cmd.Flags().StringVar(&logo, "logo", "", "path to a PNG or JPEG logo")
	return cmd
}

var seedTiers = []cdomain.Tier{
	{Name: "Bronze", Color: "#CD7F32", Rank: 1, Description: "In recognition of valuable contribution."},
	{Name: "Silver", Color: "#C0C0C0", Rank: 2, Description: "In recognition of excellent performance."},
	{Name: "Gold", Color: "#D4AF37", Rank: 3, Description: "In recognition of outstanding achievement."},
	{Name: "Platinum", Color: "#E5E4E2", Rank: 4, Description: "In recognition of exceptional impact."},
}

func seedCmd() *cobra.Command {
	var (
		email string
		name  string
		ttl   time.Duration
	)
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create an admin user, default tiers and a default template",
		Long: `seed is idempotent. It prints KEY=VALUE lines so the output can be
appended to a .env file, including a signed token for the admin user.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			pool, err := db.Open(ctx, cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer pool.Close()

			adminID, err := seed(ctx, pool, strings.ToLower(strings.TrimSpace(email)), name)
			if err != nil {
				return err
			}
			tok, err := amw.SignToken(cfg.JWTSigningKey, adminID, ttl)
			if err != nil {
				return err
			}
			printEnv(cmd.OutOrStdout(), map[string]string{
				"HONORHUB_ADMIN_ID":  fmt.Sprint(adminID),
				"HONORHUB_API_TOKEN": tok,
			})
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "admin@honorhub.local", "admin email")
	cmd.Flags().StringVar(&name, "name", "HonorHub Admin", "admin display name")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "lifetime of the printed token")
	return cmd
}

func seed(ctx context.Context, pool *pgxpool.Pool, email, name string) (int64, error) {
	if email == "" {
		return 0, fmt.Errorf("admin email required")
	}
	var adminID int64
	err := pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, `
			INSERT INTO users (name, email, role) VALUES ($1, $2, $3)
			ON CONFLICT (email) DO UPDATE SET role = EXCLUDED.role
			RETURNING id`, name, email, cdomain.RoleAdmin).Scan(&adminID); err != nil {
			return fmt.Errorf("ensure admin: %w", err)
		}
		for _, t := range seedTiers {
			if _, err := tx.Exec(ctx, `
				INSERT INTO tiers (name, description, color, rank) VALUES ($1, $2, $3, $4)
				ON CONFLICT (name) DO NOTHING`, t.Name, t.Description, t.Color, t.Rank); err != nil {
				return fmt.Errorf("ensure tier %s: %w", t.Name, err)
			}
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO templates (name, title, primary_color, secondary_color, is_default)
			SELECT 'Classic', 'Certificate of Appreciation', '#1E3A5F', '#D4AF37',
				NOT EXISTS (SELECT 1 FROM templates WHERE is_default)
			ON CONFLICT (name) DO NOTHING`); err != nil {
			return fmt.Errorf("ensure template: %w", err)
		}
		return nil
	})
	return adminID, err
}

// printEnv writes KEY=VALUE lines in key order so they can be sourced.
func printEnv(w io.Writer, kv map[string]string) {
	keys := make([]string, 0, len(kv))
	for k := range kv {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "%s=%s\n", k, kv[k])
	}
}
