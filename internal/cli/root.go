// Package cli 帳本的命令列入口
package cli

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JoeShih716/go-account-statement/internal/app/core/adapter/out/console"
	"github.com/JoeShih716/go-account-statement/internal/config"
	"github.com/JoeShih716/go-account-statement/pkg/logger"
)

// app 子命令共用的設定與 logger，在 PersistentPreRunE 初始化
type app struct {
	configPath string
	envFile    string
	cfg        config.Config
	logger     *zap.Logger
}

// NewRootCommand 建立 ledger 根命令
func NewRootCommand() *cobra.Command {
	a := &app{logger: zap.NewNop()}

	root := &cobra.Command{
		Use:           "ledger",
		Short:         "Single-account ledger with filtered statements",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			_ = a.logger.Sync()
		},
	}
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", config.DefaultPath, "config file")
	root.PersistentFlags().StringVar(&a.envFile, "env-file", ".env", "dotenv file loaded before the config")

	root.AddCommand(
		newServeCommand(a),
		newStatementCommand(a),
		newClientCommand(a),
	)
	return root
}

func (a *app) init(cmd *cobra.Command) error {
	// .env 不存在不算錯誤，已存在的環境變數優先
	if err := godotenv.Load(a.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load env file: %w", err)
	}

	// 沒有指定 --config 時允許設定檔不存在
	cfg, err := config.Load(a.configPath, !cmd.Flags().Changed("config"))
	if err != nil {
		return err
	}
	a.cfg = cfg

	log, err := logger.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	a.logger = log
	return nil
}

func (a *app) renderer() *console.Renderer {
	return console.NewRenderer(
		console.WithCurrencyGlyph(a.cfg.Statement.CurrencyGlyph),
		console.WithTimeLayout(a.cfg.Statement.TimeLayout),
	)
}
