package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	cdomain "github.com/haythamforever/HonorHub/internal/certificates/domain"
)

// httpClient is nil outside tests.
var httpClient *http.Client

func newClient() *Client { return NewClient(apiURL, apiToken, httpClient) }

func cmdContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), 2*time.Minute)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

func healthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check API, database and cache health",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := cmdContext(cmd)
			defer cancel()
			h, err := newClient().Health(ctx)
			if err != nil {
				return err
			}
			if outputFmt == "json" {
				return printJSON(cmd.OutOrStdout(), h)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "status=%s version=%s db=%s cache=%s\n", h.Status, h.Version, h.DB, h.Cache)
			return nil
		},
	}
}

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show dashboard statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := cmdContext(cmd)
			defer cancel()
			st, err := newClient().Stats(ctx)
			if err != nil {
				return err
			}
			if outputFmt == "json" {
				return printJSON(cmd.OutOrStdout(), st)
			}
			writeStats(cmd.OutOrStdout(), st)
			return nil
		},
	}
}

func writeStats(w io.Writer, st cdomain.Stats) {
	fmt.Fprintf(w, "Certificates: %d\nEmployees:    %d\n\n", st.TotalCertificates, st.TotalEmployees)
	fmt.Fprintf(w, "%-24s %8s\n", "TIER", "COUNT")
	fmt.Fprintln(w, strings.Repeat("-", 33))
	for _, t := range st.ByTier {
		fmt.Fprintf(w, "%-24s %8d\n", t.TierName, t.Count)
	}
	if len(st.Recent) > 0 {
		fmt.Fprintln(w)
		writeCertificates(w, st.Recent)
	}
}

func writeCertificates(w io.Writer, items []cdomain.Detail) {
	fmt.Fprintf(w, "%-6s %-36s %-24s %-16s %-6s %-20s\n", "ID", "CERTIFICATE", "EMPLOYEE", "TIER", "SENT", "CREATED")
	fmt.Fprintln(w, strings.Repeat("-", 113))
	for _, d := range items {
		sent := "No"
		if d.EmailSent {
			sent = "Yes"
		}
		fmt.Fprintf(w, "%-6d %-36s %-24s %-16s %-6s %-20s\n",
			d.ID, d.CertificateID, d.EmployeeName, d.TierName, sent, d.CreatedAt.Format("2006-01-02 15:04:05"))
	}
}

func certificatesCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "certificates",
		Aliases: []string{"certs"},
		Short:   "List, inspect, resend and delete certificates",
	}

	var f cdomain.ListFilter
	list := &cobra.Command{
		Use:   "list",
		Short: "List certificates, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := cmdContext(cmd)
			defer cancel()
			items, err := newClient().ListCertificates(ctx, f)
			if err != nil {
				return err
			}
			if outputFmt == "json" {
				return printJSON(cmd.OutOrStdout(), items)
			}
			writeCertificates(cmd.OutOrStdout(), items)
			return nil
		},
	}
	list.Flags().Int64Var(&f.EmployeeID, "employee", 0, "filter by employee id")
	list.Flags().Int64Var(&f.TierID, "tier", 0, "filter by tier id")
	list.Flags().Int64Var(&f.SenderID, "sender", 0, "filter by sender id")
	list.Flags().IntVar(&f.Limit, "limit", 50, "page size (max 200)")
	list.Flags().IntVar(&f.Offset, "offset", 0, "offset")

	get := &cobra.Command{
		Use:   "get <id>",
		Short: "Show one certificate",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ctx, cancel := cmdContext(cmd)
			defer cancel()
			d, err := newClient().GetCertificate(ctx, id)
			if err != nil {
				return err
			}
			if outputFmt == "json" {
				return printJSON(cmd.OutOrStdout(), d)
			}
			writeCertificates(cmd.OutOrStdout(), []cdomain.Detail{d})
			return nil
		},
	}

	resend := &cobra.Command{
		Use:   "resend <id>",
		Short: "Email an existing certificate to its recipient again",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ctx, cancel := cmdContext(cmd)
			defer cancel()
			d, err := newClient().Resend(ctx, id)
			if err != nil {
				return err
			}
			if outputFmt == "json" {
				return printJSON(cmd.OutOrStdout(), d)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Certificate %d sent to %s\n", d.ID, d.EmployeeEmail)
			return nil
		},
	}

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a certificate record (the PDF file is kept)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ctx, cancel := cmdContext(cmd)
			defer cancel()
			if err := newClient().DeleteCertificate(ctx, id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Certificate %d deleted\n", id)
			return nil
		},
	}

	root.AddCommand(list, get, resend, del)
	return root
}

func settingsCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "settings",
		Short: "Read and update application settings",
	}

	get := &cobra.Command{
		Use:   "get [key]",
		Short: "Show settings (secrets are masked by the server)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := cmdContext(cmd)
			defer cancel()
			all, err := newClient().Settings(ctx)
			if err != nil {
				return err
			}
			if len(args) == 1 {
				v, ok := all[args[0]]
				if !ok {
					return fmt.Errorf("setting %q is not set", args[0])
				}
				fmt.Fprintln(cmd.OutOrStdout(), v)
				return nil
			}
			if outputFmt == "json" {
				return printJSON(cmd.OutOrStdout(), all)
			}
			keys := make([]string, 0, len(all))
			for k := range all {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Fprintf(cmd.OutOrStdout(), "%-28s %s\n", k, all[k])
			}
			return nil
		},
	}

	set := &cobra.Command{
		Use:   "set key=value [key=value...]",
		Short: "Update one or more settings",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kv, err := parseAssignments(args)
			if err != nil {
				return err
			}
			ctx, cancel := cmdContext(cmd)
			defer cancel()
			if err := newClient().PutSettings(ctx, kv); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %d setting(s)\n", len(kv))
			return nil
		},
	}

	root.AddCommand(get, set)
	return root
}

func parseAssignments(args []string) (map[string]string, error) {
	kv := make(map[string]string, len(args))
	for _, a := range args {
		k, v, ok := strings.Cut(a, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("expected key=value, got %q", a)
		}
		kv[k] = v
	}
	return kv, nil
}

func testEmailCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "test-email <address>",
		Short: "Send a test email through the configured provider",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := cmdContext(cmd)
			defer cancel()
			if err := newClient().TestEmail(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Test email sent to %s\n", args[0])
			return nil
		},
	}
}
