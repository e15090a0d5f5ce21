package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"seedwatch/pkg/config"
	"seedwatch/pkg/metrics"
	"seedwatch/pkg/server"
	"seedwatch/pkg/tui"
	"seedwatch/pkg/watcher"
)

// Version should be set during build
var Version = "dev"

func main() {
	testFlag := flag.Bool("t", false, "Test configuration and exit")
	testLongFlag := flag.Bool("test", false, "Test configuration and exit")
	jsonFlag := flag.Bool("json", false, "Output test results as JSON")
	dryRunFlag := flag.Bool("dry-run", false, "Perform a trial run with no changes made")
	configFlag := flag.String("config", "", "Path to configuration file")
	versionFlag := flag.Bool("version", false, "Print version and exit")
	serverFlag := flag.Bool("server", false, "Run in headless server mode")
	portFlag := flag.Int("port", 8080, "Port for API server")
	flag.Parse()

	if *versionFlag {
		fmt.Printf("seedwatch version %s\n", Version)
		os.Exit(0)
	}

	cfgInput := *configFlag
	if cfgInput == "" && len(flag.Args()) > 0 {
		cfgInput = flag.Args()[0]
	}
	path, err := config.GetConfigPath(cfgInput)
	if err != nil {
		fmt.Printf("Error determining config path: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.LoadConfigFromFile(path)
	if err != nil {
		fmt.Printf("Error loading config from %s: %v\n", path, err)
		os.Exit(1)
	}

	if *testFlag || *testLongFlag {
		_, ok := runConfigTest(cfg, path, testOptions{JSON: *jsonFlag, DryRun: *dryRunFlag}, os.Stdout)
		if !ok {
			os.Exit(1)
		}
		os.Exit(0)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Printf("Error: %v\n", err)
		fmt.Printf("Please create a config file at %s with a 'node' and its 'rpc_urls'.\n", path)
		os.Exit(1)
	}

	m := metrics.NewManager()
	w := watcher.NewWatcher(cfg)
	w.SetMetrics(m)
	w.Start(context.Background())
	defer w.Stop()

	srv := server.NewServer(w, m)
	go func() {
		if err := srv.Start(*portFlag); err != nil {
			fmt.Printf("Server error: %v\n", err)
		}
	}()

	if *serverFlag {
		fmt.Printf("Running in server mode on port %d...\n", *portFlag)
		select {} // Keep alive
	}

	tui.Start(w, cfg, path, Version)
}
