// circulationctl 流通服务的运维命令行
//
//	circulationctl token --holder 9000 --role librarian
//	circulationctl sweep --as-of 2024-06-01T00:00:00Z
//	circulationctl queue 42
//	circulationctl notices tail --kind hold_activated
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/xiebiao/circulation/internal/infrastructure/config"
)

type globalOptions struct {
	configPath string
	server     string
	holderID   uint
	timeout    time.Duration
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "错误:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}
	root := &cobra.Command{
		Use:           "circulationctl",
		Short:         "图书流通服务运维工具",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "配置文件路径,默认读取./config/config.yaml")
	flags.StringVar(&opts.server, "server", "http://localhost:8080", "服务地址")
	flags.UintVar(&opts.holderID, "holder", 1, "签发Token使用的holder_id")
	flags.DurationVar(&opts.timeout, "timeout", 30*time.Second, "请求超时")

	root.AddCommand(
		newTokenCmd(opts),
		newSweepCmd(opts),
		newQueueCmd(opts),
		newNoticesCmd(opts),
	)
	return root
}

func (o *globalOptions) loadConfig() (*config.Config, error) {
	if o.configPath == "" {
		return config.Load()
	}
	return config.LoadFrom(o.configPath)
}
