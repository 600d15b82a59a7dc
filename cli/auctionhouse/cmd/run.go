package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ainvaltin/httpsrv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/alphabill-org/auctionhouse/keyvaluedb/boltdb"
	"github.com/alphabill-org/auctionhouse/rpc"
	"github.com/alphabill-org/auctionhouse/scenario"
)

const (
	defaultScenario   = "resurrection"
	defaultRPCAddress = "localhost:8555"
)

var errDefectDetected = errors.New("consumed trade state accepted again")

type runConfiguration struct {
	Base *baseConfiguration

	// built-in scenario name or path to a YAML scenario file
	Scenario   string
	Price      uint64
	Size       uint64
	FeeBps     uint16
	RoyaltyBps uint16
	// bolt database file for transaction records, in memory when empty
	DBFile string
	// explorer listen address, no explorer when empty
	RPCAddress string
}

func newRunCmd(baseConfig *baseConfiguration) *cobra.Command {
	config := &runConfiguration{Base: baseConfig}
	var cmd = &cobra.Command{
		Use:   "run",
		Short: "Runs a scenario against a fresh local ledger",
		Long: fmt.Sprintf(`Runs a scenario against a fresh local ledger and prints the outcome of every batch.
Built-in scenarios: %s. Exits with an error when a consumed trade state was accepted again.`, strings.Join(scenario.BuiltinNames(), ", ")),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenario(cmd.Context(), cmd, config)
		},
	}
	config.addFlags(cmd)
	cmd.Flags().StringVar(&config.RPCAddress, "rpc-address", "", "serve the explorer on this address after the scenario has finished, until interrupted")
	return cmd
}

func newServeCmd(baseConfig *baseConfiguration) *cobra.Command {
	config := &runConfiguration{Base: baseConfig}
	var cmd = &cobra.Command{
		Use:   "serve",
		Short: "Runs a scenario and serves the explorer of the resulting ledger",
		RunE: func(cmd *cobra.Command, args []string) error {
			if config.RPCAddress == "" {
				return errors.New("rpc-address is required")
			}
			return runScenario(cmd.Context(), cmd, config)
		},
	}
	config.addFlags(cmd)
	cmd.Flags().StringVar(&config.RPCAddress, "rpc-address", defaultRPCAddress, "explorer listen address")
	return cmd
}

func (c *runConfiguration) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&c.Scenario, "scenario", "s", defaultScenario, "built-in scenario name or YAML scenario file")
	cmd.Flags().Uint64Var(&c.Price, "price", 0, "overrides the sale price of the scenario")
	cmd.Flags().Uint64Var(&c.Size, "size", 0, "overrides the token amount of the scenario")
	cmd.Flags().Uint16Var(&c.FeeBps, "fee-bps", 0, "overrides the auction house fee in basis points")
	cmd.Flags().Uint16Var(&c.RoyaltyBps, "royalty-bps", 0, "overrides the creator royalty in basis points")
	cmd.Flags().StringVar(&c.DBFile, "db", "", "bolt database file for the transaction records, relative to $AH_HOME (default is in memory)")
}

func (c *runConfiguration) loadScenario(flags interface{ Changed(string) bool }) (*scenario.Scenario, error) {
	var s *scenario.Scenario
	var err error
	if ext := filepath.Ext(c.Scenario); ext == ".yaml" || ext == ".yml" {
		s, err = scenario.LoadFile(c.Scenario)
	} else {
		s, err = scenario.Builtin(c.Scenario)
	}
	if err != nil {
		return nil, err
	}
	if flags.Changed("price") {
		s.Price = c.Price
	}
	if flags.Changed("size") {
		s.Size = c.Size
	}
	if flags.Changed("fee-bps") {
		s.FeeBps = c.FeeBps
	}
	if flags.Changed("royalty-bps") {
		s.RoyaltyBps = c.RoyaltyBps
	}
	return s, s.IsValid()
}

func (c *runConfiguration) dbFile() string {
	if c.DBFile == "" || filepath.IsAbs(c.DBFile) {
		return c.DBFile
	}
	return filepath.Join(c.Base.HomeDir, c.DBFile)
}

func runScenario(ctx context.Context, cmd *cobra.Command, config *runConfiguration) error {
	log := config.Base.log
	out := cmd.OutOrStdout()

	s, err := config.loadScenario(cmd.Flags())
	if err != nil {
		return fmt.Errorf("loading scenario: %w", err)
	}

	opts := []scenario.Option{scenario.WithOutput(out)}
	if f := config.dbFile(); f != "" {
		if err := os.MkdirAll(filepath.Dir(f), 0700); err != nil {
			return fmt.Errorf("creating database directory: %w", err)
		}
		db, err := boltdb.New(f)
		if err != nil {
			return fmt.Errorf("opening record database: %w", err)
		}
		opts = append(opts, scenario.WithRecordStore(db))
	}

	run, err := scenario.NewRunner(log, opts...).Start(s)
	if err != nil {
		return err
	}
	defer func() {
		if err := run.Close(); err != nil {
			log.Warn().Err(err).Msg("closing environment")
		}
	}()

	res, err := run.Execute()
	if err != nil {
		return err
	}
	fmt.Fprintln(out)
	res.Report(out)

	if config.RPCAddress != "" {
		if err := serveExplorer(ctx, config.RPCAddress, run, out, log); err != nil {
			return err
		}
	}
	switch {
	case len(res.Defects()) > 0:
		return errDefectDetected
	case len(res.Deviations()) > 0:
		return fmt.Errorf("%d step(s) deviated from the expected outcome", len(res.Deviations()))
	}
	return nil
}

func serveExplorer(ctx context.Context, addr string, run *scenario.Run, out io.Writer, log *zerolog.Logger) error {
	srv := rpc.NewRESTServer(
		&rpc.ServerConfiguration{Address: addr},
		log,
		rpc.ExplorerEndpoints(run.Env, run.Env.Records(), log),
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		fmt.Fprintf(out, "explorer listening on http://%s/api/v1\n", addr)
		err := httpsrv.Run(ctx, *srv, httpsrv.ShutdownTimeout(5*time.Second))
		if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("explorer: %w", err)
		}
		return nil
	})
	return g.Wait()
}
