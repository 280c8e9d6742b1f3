package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	appsweep "github.com/xiebiao/circulation/internal/application/sweep"
	"github.com/xiebiao/circulation/internal/application/view"
)

func newSweepCmd(opts *globalOptions) *cobra.Command {
	var (
		asOf      string
		reminders bool
	)
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "立即执行预约过期和逾期标记",
		RunE: func(cmd *cobra.Command, _ []string) error {
			body := map[string]any{}
			if asOf != "" {
				t, err := time.Parse(time.RFC3339, asOf)
				if err != nil {
					return fmt.Errorf("--as-of格式应为RFC3339: %w", err)
				}
				body["as_of"] = t
			}

			client, err := opts.client()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			var result appsweep.RunSweepResponse
			if err := client.do(ctx, http.MethodPost, "/sweeps", body, &result); err != nil {
				return err
			}
			printSweep(cmd.OutOrStdout(), &result)

			if reminders {
				var sent appsweep.DueRemindersResponse
				if err := client.do(ctx, http.MethodPost, "/sweeps/reminders", body, &sent); err != nil {
					return err
				}
				if sent.Skipped {
					fmt.Fprintln(cmd.OutOrStdout(), "到期提醒: 其他实例正在执行,已跳过")
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "到期提醒: %s 共发送%d条\n", sent.Day, sent.Sent)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&asOf, "as-of", "", "基准时间(RFC3339),默认服务端当前时间")
	cmd.Flags().BoolVar(&reminders, "reminders", false, "同时发送当天的到期提醒")
	return cmd
}

func printSweep(w io.Writer, r *appsweep.RunSweepResponse) {
	if r.Skipped {
		fmt.Fprintln(w, "批处理: 其他实例正在执行,已跳过")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "KIND\tSCANNED\tAPPLIED\tFAILED\tDURATION")
	for _, rep := range r.Reports {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%s\n", rep.Kind, rep.Scanned, rep.Applied, rep.Failed, rep.Duration)
	}
	_ = tw.Flush()
}

func newQueueCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "queue <title-id>",
		Short: "查看某本书的预约队列",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil || id == 0 {
				return fmt.Errorf("非法的图书ID: %s", args[0])
			}

			client, err := opts.client()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			var q view.Queue
			if err := client.do(ctx, http.MethodGet, fmt.Sprintf("/titles/%d/queue", id), nil, &q); err != nil {
				return err
			}
			printQueue(cmd.OutOrStdout(), &q)
			return nil
		},
	}
}

func printQueue(w io.Writer, q *view.Queue) {
	fmt.Fprintf(w, "%s (%s) 可借 %d/%d\n", q.Title.Name, q.Title.ISBN, q.Title.AvailableCopies, q.Title.TotalCopies)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "HOLD\tHOLDER\tSTATUS\tPOSITION\tEXPIRES")
	for _, h := range q.Active {
		fmt.Fprintf(tw, "%d\t%d\t%s\t-\t%s\n", h.ID, h.HolderID, h.Status, h.ExpiresAt)
	}
	for _, h := range q.Pending {
		pos := "-"
		if h.QueuePosition != nil {
			pos = strconv.Itoa(*h.QueuePosition)
		}
		fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t\n", h.ID, h.HolderID, h.Status, pos)
	}
	_ = tw.Flush()
}

// client 用配置中的密钥签发馆员Token
func (o *globalOptions) client() (*apiClient, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}
	token, err := librarianToken(o, cfg.JWT.Secret)
	if err != nil {
		return nil, err
	}
	return newAPIClient(o.server, token, &http.Client{Timeout: o.timeout}), nil
}
