package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/banshee-data/weld.report/internal/db"
	"github.com/banshee-data/weld.report/internal/version"
)

var (
	configPath = flag.String("config", "", "Dashboard config file (JSON)")
	listen     = flag.String("listen", "", "Listen address (overrides config)")
	dbPath     = flag.String("db", "", "Database path (overrides config)")
	spoolDir   = flag.String("spool-dir", "", "Directory for uploaded archives awaiting ingest (default: <db dir>/spool)")
)

func main() {
	flag.Usage = printUsage
	flag.Parse()

	command := "serve"
	var args []string
	if flag.NArg() > 0 {
		command = flag.Arg(0)
		args = flag.Args()[1:]
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	path := resolveDBPath(cfg, *dbPath)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch command {
	case "serve":
		err = runServe(ctx, cfg, serveOptions{
			Listen:   resolveListen(cfg, *listen),
			DBPath:   path,
			SpoolDir: resolveSpoolDir(path, *spoolDir),
		})
	case "migrate":
		err = db.RunMigrateCommand(args, path, os.Stdout)
	case "ingest":
		err = runIngest(ctx, cfg, path, args, os.Stdout)
	case "upload":
		err = runUpload(ctx, args, os.Stdout)
	case "export-chart":
		err = runExportChart(cfg, path, args, os.Stdout)
	case "version":
		printVersion(os.Stdout)
	case "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		log.Fatalf("%s: %v", command, err)
	}
}

func printVersion(out io.Writer) {
	fmt.Fprintln(out, version.String())
}

func printUsage() {
	fmt.Println(`weld-report - layer scan and weld telemetry viewer

Usage: weld-report [flags] <command> [options]

Commands:
  serve          Run the HTTP API and ingest worker (default)
  migrate        Manage database schema migrations
  ingest         Ingest a zip archive or directory into a new group
  upload         Send a zip archive to a running server
  export-chart   Render a layer's metrics chart to a PNG file
  version        Show weld-report version
  help           Show this help message

Flags:
  --config <file>      Dashboard config file (JSON)
  --listen <addr>      Listen address (overrides config)
  --db <path>          Database path (overrides config)
  --spool-dir <dir>    Upload spool directory

Examples:
  weld-report --config config/dashboard.defaults.json serve
  weld-report ingest -group bracket-07 ./bracket-07.zip
  weld-report upload -server http://localhost:8080 -group bracket-07 ./bracket-07.zip
  weld-report export-chart -layer <layer-id> -out layer.png`)
}
