package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cuemby/relay/pkg/apply"
	"github.com/cuemby/relay/pkg/config"
	"github.com/cuemby/relay/pkg/facade"
	"github.com/cuemby/relay/pkg/log"
	"github.com/cuemby/relay/pkg/metrics"
	"github.com/cuemby/relay/pkg/raftcore"
	"github.com/cuemby/relay/pkg/rpcapi"
	"github.com/cuemby/relay/pkg/state"
	"github.com/cuemby/relay/pkg/storage"
	"github.com/spf13/cobra"
)

var (
	// Version information (set via ldflags during build)
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "relayd",
	Short:   "relayd - Raft-replicated messaging cluster node",
	Long:    `relayd runs a single replica of a Raft-replicated messaging cluster: accounts, direct messages, and sessions, kept consistent across every node via a replicated log.`,
	Version: Version,
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf("relayd version %s\nCommit: %s\nBuilt: %s\n", Version, Commit, BuildTime))

	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("log-json", false, "Output logs in JSON format")

	cobra.OnInitialize(initLogging)

	rootCmd.AddCommand(runCmd)
}

func initLogging() {
	logLevel, _ := rootCmd.PersistentFlags().GetString("log-level")
	logJSON, _ := rootCmd.PersistentFlags().GetBool("log-json")
	log.Init(log.Config{Level: log.Level(logLevel), JSONOutput: logJSON})
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run this node",
	Long:  `Loads cluster.json and node.yaml, opens the durable store, and serves the Messaging and Raft-internal gRPC services until interrupted.`,
	RunE:  runNode,
}

func init() {
	runCmd.Flags().String("node-id", "", "This node's id, as it appears in cluster.json (required)")
	runCmd.Flags().String("cluster-file", "cluster.json", "Path to the cluster membership file")
	runCmd.Flags().String("node-file", "node.yaml", "Path to this node's local config file")
	runCmd.Flags().String("data-dir", "", "Durable store directory (overrides node.yaml)")
	runCmd.Flags().String("metrics-addr", "127.0.0.1:9090", "Address to serve /metrics, /health, /ready, /live on")
	_ = runCmd.MarkFlagRequired("node-id")
}

func runNode(cmd *cobra.Command, args []string) error {
	nodeID, _ := cmd.Flags().GetString("node-id")
	clusterFile, _ := cmd.Flags().GetString("cluster-file")
	nodeFile, _ := cmd.Flags().GetString("node-file")
	dataDirFlag, _ := cmd.Flags().GetString("data-dir")
	metricsAddr, _ := cmd.Flags().GetString("metrics-addr")

	cluster, err := config.LoadCluster(clusterFile)
	if err != nil {
		return err
	}
	selfAddr, ok := cluster[nodeID]
	if !ok {
		return fmt.Errorf("relayd: node id %q is not a member of %s", nodeID, clusterFile)
	}

	nodeCfg, err := config.LoadNode(nodeFile)
	if err != nil {
		return err
	}

	dataDir := dataDirFlag
	if dataDir == "" {
		dataDir = nodeCfg.DataDir
	}
	if dataDir == "" {
		dataDir = "./data/" + nodeID
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("relayd: create data dir: %w", err)
	}

	flags := rootCmd.PersistentFlags()
	logLevel, _ := flags.GetString("log-level")
	logJSON, _ := flags.GetBool("log-json")
	if nodeCfg.LogLevel != "" && !flags.Changed("log-level") {
		logLevel = nodeCfg.LogLevel
	}
	if nodeCfg.LogJSON && !flags.Changed("log-json") {
		logJSON = true
	}
	log.Init(log.Config{Level: log.Level(logLevel), JSONOutput: logJSON})
	logger := log.WithNode(nodeID)

	store, err := storage.NewBoltStore(dataDir)
	if err != nil {
		return fmt.Errorf("relayd: open store: %w", err)
	}
	defer store.Close()

	st := state.New()
	if err := st.Load(store, time.Now().Unix()); err != nil {
		return fmt.Errorf("relayd: load state: %w", err)
	}

	applier := apply.New(store, st)

	peers := cluster.Peers(nodeID)
	transport := rpcapi.NewPeerClient(peers)
	defer transport.Close()

	node, err := raftcore.NewNode(raftcore.Config{
		NodeID:             nodeID,
		Peers:              peers,
		ElectionTimeoutMin: nodeCfg.ElectionTimeoutMin,
		ElectionTimeoutMax: nodeCfg.ElectionTimeoutMax,
		HeartbeatInterval:  nodeCfg.HeartbeatInterval,
		RPCTimeout:         nodeCfg.RPCTimeout,
	}, store, applier, transport)
	if err != nil {
		return fmt.Errorf("relayd: build node: %w", err)
	}
	node.Start()
	defer node.Stop()
	logger.Info().Str("addr", selfAddr).Int("peers", len(peers)).Msg("raft core started")

	f := facade.New(node, applier, st, selfAddr)
	f.SetCommitWaitTimeout(nodeCfg.CommitWaitTimeout)

	server := rpcapi.NewServer(f, node)
	errCh := make(chan error, 1)
	go func() {
		if err := server.Start(selfAddr); err != nil {
			errCh <- fmt.Errorf("rpc server error: %w", err)
		}
	}()
	logger.Info().Str("addr", selfAddr).Msg("gRPC services listening")

	collector := metrics.NewCollector(node, st, len(peers))
	collector.Start()
	defer collector.Stop()

	metrics.SetVersion(Version)
	metrics.RegisterRaftNode(node, 100) // degraded once the applier falls 100 entries behind commit
	metrics.RegisterComponent("storage", true, "open")
	metrics.RegisterComponent("rpcapi", true, "listening")

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	mux.Handle("/health", metrics.HealthHandler())
	mux.Handle("/ready", metrics.ReadyHandler())
	mux.Handle("/live", metrics.LivenessHandler())
	metricsSrv := &http.Server{Addr: metricsAddr, Handler: mux}
	go func() {
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("metrics server error")
		}
	}()
	logger.Info().Str("addr", metricsAddr).Msg("metrics/health endpoints listening")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigCh:
		logger.Info().Msg("shutting down")
	case err := <-errCh:
		logger.Error().Err(err).Msg("fatal error")
	}

	_ = metricsSrv.Close()
	server.Stop()

	logger.Info().Msg("shutdown complete")
	return nil
}
