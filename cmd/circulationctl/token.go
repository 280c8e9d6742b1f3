package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/xiebiao/circulation/pkg/jwt"
)

func newTokenCmd(opts *globalOptions) *cobra.Command {
	var (
		role string
		ttl  time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "用配置中的密钥签发开发用Token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if ttl <= 0 {
				ttl = cfg.JWT.TokenExpire
			}
			token, err := jwt.NewManager(cfg.JWT.Secret, ttl).GenerateToken(opts.holderID, role)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&role, "role", jwt.RoleReader, "角色: reader | librarian")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "有效期,默认取配置")
	return cmd
}

// librarianToken 调用管理接口用的短期Token
func librarianToken(opts *globalOptions, secret string) (string, error) {
	return jwt.NewManager(secret, 10*time.Minute).GenerateToken(opts.holderID, jwt.RoleLibrarian)
}
