package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/xiebiao/circulation/internal/application/view"
	"github.com/xiebiao/circulation/internal/infrastructure/notify"
	"github.com/xiebiao/circulation/pkg/logger"
	"github.com/xiebiao/circulation/pkg/mq"
)

func newNoticesCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notices",
		Short: "流通通知",
	}
	cmd.AddCommand(newNoticesTailCmd(opts))
	return cmd
}

func newNoticesTailCmd(opts *globalOptions) *cobra.Command {
	var (
		kinds []string
		queue string
	)
	cmd := &cobra.Command{
		Use:   "tail",
		Short: "持续打印MQ中的通知,Ctrl+C退出",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if !cfg.MQ.Enabled {
				return errors.New("配置中未启用mq")
			}

			log, err := logger.New(logger.Options{Level: "warn"})
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			consumer, err := mq.NewConsumer(cfg.MQ.URL, cfg.MQ.Exchange, "topic", queue, routingKeys(kinds), log)
			if err != nil {
				return err
			}
			defer consumer.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			out := cmd.OutOrStdout()
			return consumer.Consume(ctx, func(_ context.Context, _ string, body []byte) error {
				return printNotice(out, body)
			})
		},
	}
	cmd.Flags().StringSliceVar(&kinds, "kind", nil, "只看指定类型,如hold_activated,可重复")
	cmd.Flags().StringVar(&queue, "queue", "", "持久队列名,为空时使用临时队列")
	return cmd
}

// routingKeys 未指定类型时订阅全部通知
func routingKeys(kinds []string) []string {
	if len(kinds) == 0 {
		return []string{notify.RoutingKeyPrefix + "#"}
	}
	keys := make([]string, len(kinds))
	for i, k := range kinds {
		keys[i] = notify.RoutingKeyPrefix + k
	}
	return keys
}

// printNotice 消息体无法解析时返回错误,由消费者决定是否重投
func printNotice(w io.Writer, body []byte) error {
	var msg notify.Message
	if err := json.Unmarshal(body, &msg); err != nil {
		return fmt.Errorf("解析通知失败: %w", err)
	}
	fmt.Fprintf(w, "%s  %-16s holder=%d title=%d",
		msg.OccurredAt.Local().Format(view.TimeLayout), msg.Kind, msg.HolderID, msg.TitleID)
	if len(msg.Context) > 0 {
		ctx, _ := json.Marshal(msg.Context)
		fmt.Fprintf(w, " %s", ctx)
	}
	fmt.Fprintln(w)
	return nil
}
