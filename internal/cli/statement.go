package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/JoeShih716/go-account-statement/internal/app/core/adapter/in/api"
	"github.com/JoeShih716/go-account-statement/internal/app/core/adapter/out/console"
	"github.com/JoeShih716/go-account-statement/internal/app/core/adapter/out/memory"
	"github.com/JoeShih716/go-account-statement/internal/app/core/domain"
	"github.com/JoeShih716/go-account-statement/internal/app/core/usecase"
)

// 輸出格式
const (
	formatTable = "table"
	formatJSON  = "json"
)

// statementFlags --from / --to / --kind / --format
type statementFlags struct {
	req    api.StatementRequest
	format string
}

func (f *statementFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.req.From, "from", "", "first day of the range (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.req.To, "to", "", "last day of the range, inclusive (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.req.Kind, "kind", "", "deposit, withdrawal or full_withdrawal")
	cmd.Flags().StringVarP(&f.format, "format", "o", formatTable, "output format (table|json)")
}

func (f *statementFlags) validate() error {
	switch f.format {
	case formatTable, formatJSON:
		return nil
	default:
		return fmt.Errorf("unknown output format %q", f.format)
	}
}

// newStatementCommand 不經過伺服器，直接重放 seed 檔後印出對帳單
func newStatementCommand(a *app) *cobra.Command {
	var (
		flags    statementFlags
		seedPath string
	)
	cmd := &cobra.Command{
		Use:   "statement",
		Short: "Replay a seed file and print its statement",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := flags.validate(); err != nil {
				return err
			}
			q, err := flags.req.Query()
			if err != nil {
				return err
			}
			if seedPath == "" {
				seedPath = a.cfg.Ledger.SeedFile
			}
			seeds, err := loadSeeds(seedPath)
			if err != nil {
				return err
			}

			core := usecase.NewCoreUseCase(
				memory.NewMutexLedger(seeds, a.logger),
				usecase.WithRenderer(a.renderer()),
				usecase.WithLogger(a.logger),
			)
			if flags.format == formatTable {
				return core.PrintStatement(cmd.Context(), cmd.OutOrStdout(), q)
			}
			st, err := core.Statement(cmd.Context(), q)
			if err != nil {
				return err
			}
			return printStatement(cmd.OutOrStdout(), a.renderer(), st, flags.format)
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&seedPath, "seed", "", "seed file (defaults to ledger.seed_file)")
	return cmd
}

func printStatement(w io.Writer, r *console.Renderer, st domain.Statement, format string) error {
	if format == formatJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(st)
	}
	return r.Render(w, st)
}
