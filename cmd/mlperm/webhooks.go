package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/nebari-dev/mlperm/internal/audit"
	"github.com/nebari-dev/mlperm/internal/cliclient"
	"github.com/nebari-dev/mlperm/internal/endpoints"
	"github.com/nebari-dev/mlperm/internal/validate"
)

var (
	webhookName        string
	webhookDescription string
	webhookURL         string
	webhookEvents      []string
	webhookSecret      string
	webhookStatus      string
	webhookNewStatus   string
)

var webhooksCmd = &cobra.Command{
	Use:   "webhooks",
	Short: "Manage webhooks (admin)",
	Long: `Webhooks deliver MLflow events to an HTTP endpoint.

Examples:
  mlperm webhooks create --name ci --url https://ci.example.com/hook --event model_version.created
  mlperm webhooks test <id>`,
}

var webhooksListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List webhooks",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		hooks, err := session.client.ListWebhooks(cmd.Context())
		if err != nil {
			return fmt.Errorf("listing webhooks: %w", err)
		}
		return printWebhooks(cmd, hooks)
	},
}

var webhooksGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show a webhook",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		hook, err := session.client.GetWebhook(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printWebhooks(cmd, []cliclient.Webhook{*hook})
	},
}

func printWebhooks(cmd *cobra.Command, hooks []cliclient.Webhook) error {
	if jsonOutput() {
		return printJSON(cmd, hooks)
	}
	if len(hooks) == 0 {
		fmt.Fprintln(cmd.ErrOrStderr(), "No webhooks configured.")
		return nil
	}
	w := newTable(cmd)
	fmt.Fprintln(w, "ID\tNAME\tSTATUS\tURL\tEVENTS\tUPDATED")
	for _, h := range hooks {
		events := make([]string, len(h.Events))
		for i, e := range h.Events {
			events[i] = e.String()
		}
		updated := ""
		if h.LastUpdatedTimestamp > 0 {
			updated = time.UnixMilli(h.LastUpdatedTimestamp).Local().Format("2006-01-02 15:04")
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", h.ID, h.Name, h.Status, h.URL, strings.Join(events, ","), updated)
	}
	return w.Flush()
}

func parseEvents(raw []string) ([]cliclient.WebhookEvent, error) {
	events := make([]cliclient.WebhookEvent, 0, len(raw))
	for _, s := range raw {
		e, err := cliclient.ParseWebhookEvent(s)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, nil
}

func parseStatus(s string) (cliclient.WebhookStatus, error) {
	switch st := cliclient.WebhookStatus(strings.ToUpper(s)); st {
	case cliclient.WebhookActive, cliclient.WebhookDisabled:
		return st, nil
	}
	return "", &validate.FieldError{Field: "status", Message: fmt.Sprintf("unknown status %q (want ACTIVE or DISABLED)", s)}
}

var webhooksCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a webhook",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if webhookName == "" {
			return &validate.FieldError{Field: "name", Message: "must not be empty"}
		}
		if err := validate.WebhookURL(webhookURL); err != nil {
			return err
		}
		if len(webhookEvents) == 0 {
			return &validate.FieldError{Field: "events", Message: "at least one --event is required"}
		}
		events, err := parseEvents(webhookEvents)
		if err != nil {
			return err
		}
		status, err := parseStatus(webhookStatus)
		if err != nil {
			return err
		}

		req := cliclient.CreateWebhookRequest{
			Name:        webhookName,
			Description: webhookDescription,
			URL:         webhookURL,
			Events:      events,
			Secret:      webhookSecret,
			Status:      status,
		}
		hook, err := session.client.CreateWebhook(cmd.Context(), req)
		if err != nil {
			return fmt.Errorf("creating webhook: %w", err)
		}
		req.Secret = ""
		recordHistory(audit.ActionCreateWebhook, endpoints.Webhook(hook.ID), req)
		fmt.Fprintf(cmd.ErrOrStderr(), "Created webhook %s\n", hook.ID)
		if jsonOutput() {
			return printJSON(cmd, hook)
		}
		return nil
	},
}

var webhooksUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Change a webhook",
	Long:  `Sends only the fields given on the command line.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var req cliclient.UpdateWebhookRequest
		flags := cmd.Flags()
		if flags.Changed("name") {
			req.Name = &webhookName
		}
		if flags.Changed("description") {
			req.Description = &webhookDescription
		}
		if flags.Changed("url") {
			if err := validate.WebhookURL(webhookURL); err != nil {
				return err
			}
			req.URL = &webhookURL
		}
		if flags.Changed("event") {
			events, err := parseEvents(webhookEvents)
			if err != nil {
				return err
			}
			req.Events = events
		}
		if flags.Changed("secret") {
			req.Secret = &webhookSecret
		}
		if flags.Changed("status") {
			st, err := parseStatus(webhookNewStatus)
			if err != nil {
				return err
			}
			req.Status = &st
		}

		hook, err := session.client.UpdateWebhook(cmd.Context(), args[0], req)
		if err != nil {
			return fmt.Errorf("updating webhook: %w", err)
		}
		req.Secret = nil
		recordHistory(audit.ActionUpdateWebhook, endpoints.Webhook(args[0]), req)
		fmt.Fprintf(cmd.ErrOrStderr(), "Updated webhook %s\n", hook.ID)
		return nil
	},
}

var webhooksDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a webhook",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := session.client.DeleteWebhook(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("deleting webhook: %w", err)
		}
		recordHistory(audit.ActionDeleteWebhook, endpoints.Webhook(args[0]), nil)
		fmt.Fprintf(cmd.ErrOrStderr(), "Deleted webhook %s\n", args[0])
		return nil
	},
}

var webhooksTestCmd = &cobra.Command{
	Use:   "test <id>",
	Short: "Send a test delivery",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := session.client.TestWebhook(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("testing webhook: %w", err)
		}
		if jsonOutput() {
			return printJSON(cmd, res)
		}
		if !res.Success {
			return fmt.Errorf("test delivery failed: status %d: %s", res.ResponseStatus, res.ResponseBody)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Delivered (status %d)\n", res.ResponseStatus)
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{webhooksCreateCmd, webhooksUpdateCmd} {
		c.Flags().StringVar(&webhookName, "name", "", "Webhook name")
		c.Flags().StringVar(&webhookDescription, "description", "", "Description")
		c.Flags().StringVar(&webhookURL, "url", "", "Delivery URL (http or https)")
		c.Flags().StringSliceVar(&webhookEvents, "event", nil, "Event as entity.action; repeatable")
		c.Flags().StringVar(&webhookSecret, "secret", "", "Signing secret")
	}
	webhooksCreateCmd.Flags().StringVar(&webhookStatus, "status", "ACTIVE", "ACTIVE or DISABLED")
	webhooksUpdateCmd.Flags().StringVar(&webhookNewStatus, "status", "", "ACTIVE or DISABLED")

	webhooksCmd.AddCommand(webhooksListCmd)
	webhooksCmd.AddCommand(webhooksGetCmd)
	webhooksCmd.AddCommand(webhooksCreateCmd)
	webhooksCmd.AddCommand(webhooksUpdateCmd)
	webhooksCmd.AddCommand(webhooksDeleteCmd)
	webhooksCmd.AddCommand(webhooksTestCmd)
}
