package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/keybox9823/apollo/internal/catalog"
	"github.com/keybox9823/apollo/internal/emitter"
	"github.com/keybox9823/apollo/internal/hmi"
	"github.com/keybox9823/apollo/internal/ingest"
	"github.com/keybox9823/apollo/internal/kvdb"
	"github.com/keybox9823/apollo/internal/monitor"
	"github.com/keybox9823/apollo/internal/process"
	"github.com/keybox9823/apollo/internal/receiver"
	"github.com/keybox9823/apollo/internal/vehicle"
	"github.com/keybox9823/apollo/pkg/consts"
	"github.com/keybox9823/apollo/pkg/logger"
	"github.com/keybox9823/apollo/pkg/protocol"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "hmid",
	Short: "hmid: the HMI mode and module supervisor",
}

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the supervisor daemon",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(cfgFile)
		if err != nil {
			fmt.Printf("Error loading config: %v\n", err)
			os.Exit(1)
		}

		logger.InitLogger(cfg.Observability.LogLevel)
		if cfg.Observability.MetricsAddr != "" {
			monitor.InitMetrics(cfg.Observability.MetricsAddr)
		}

		logger.Log.Info("Booting HMI supervisor...", "modes_dir", cfg.Catalog.ModesDir)
		if err := runDaemon(cfg); err != nil {
			logger.Log.Error("Supervisor fatal error", "err", err)
			os.Exit(1)
		}
	},
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the config and every mode definition, then exit",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(cfgFile)
		if err != nil {
			fmt.Printf("Error loading config: %v\n", err)
			os.Exit(1)
		}
		cat, err := catalog.Load(cfg.Catalog)
		if err != nil {
			fmt.Printf("Catalog error: %v\n", err)
			os.Exit(1)
		}
		failed := false
		for _, name := range cat.ModeNames() {
			if _, err := catalog.LoadMode(name, cat.Modes[name]); err != nil {
				fmt.Printf("Mode %q: %v\n", name, err)
				failed = true
			}
		}
		if failed {
			os.Exit(1)
		}
		fmt.Printf("OK: %d modes, %d maps, %d vehicles\n",
			len(cat.Modes), len(cat.Maps), len(cat.Vehicles))
	},
}

func loadConfig(path string) (protocol.Config, error) {
	var cfg protocol.Config
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// runDaemon wires the supervisor together and blocks until a stop signal.
func runDaemon(cfg protocol.Config) error {
	cat, err := catalog.Load(cfg.Catalog)
	if err != nil {
		return err
	}
	kv, err := kvdb.Open(cfg.Runtime.KVPath)
	if err != nil {
		return err
	}
	defer kv.Close()

	emit, err := emitter.New(cfg.Sink.Target, cfg.Sink.Source)
	if err != nil {
		return err
	}

	worker, err := hmi.New(cfg, hmi.Options{
		Catalog:  cat,
		KV:       kv,
		Runner:   process.NewShellRunner(),
		Requests: emit,
		Events:   emit,
		Vehicles: vehicle.NewManager(cfg.Runtime.VehicleDataDir),
	})
	if err != nil {
		return err
	}

	// Outbound path: stamp the send time, then emit the snapshot.
	worker.RegisterStatusHandler(func(changed bool, st *protocol.StatusRecord) {
		st.SendTime = time.Now()
		if err := emit.WriteStatus(st); err != nil {
			logger.Log.Error("Cannot publish status", "err", err)
		}
	})

	// Inbound feeds arrive over the receiver and merge through the ingestor.
	ing := ingest.New(worker.Store(), cfg.Runtime.UseSimTime,
		cfg.Runtime.StatusLifetimeOrDefault(), func() {
			if err := worker.Trigger(consts.ActionNone); err != nil {
				logger.Log.Error("Failed to execute high beam action", "err", err)
			}
		})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if cfg.Feeds.ListenPort > 0 {
		rcv, err := receiver.New(cfg.Feeds.ListenPort, ing)
		if err != nil {
			return err
		}
		go func() {
			if err := rcv.Run(ctx); err != nil {
				logger.Log.Error("Feed receiver stopped", "err", err)
			}
		}()
	}

	worker.Start()
	defer worker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Log.Info("Signal: Stop received. Shutting down.", "signal", sig.String())
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "hmid.yaml", "config file path")
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(checkCmd)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
