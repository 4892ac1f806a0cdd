package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"timenav/internal/browser"
	"timenav/internal/config"
	mcpserver "timenav/internal/mcp"
	"timenav/internal/navigator"
	"timenav/internal/timesheet"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to the timenav config file")
	mcpMode := flag.Bool("mcp", false, "Run as an MCP stdio server")
	ssePort := flag.Int("sse-port", 0, "Run as an MCP SSE server on this port (falls back to config)")
	gotoTarget := flag.String("goto", "", "One-shot: navigate to a page (portal_home, app_home, time_tracking, weekly_sheet)")
	logDate := flag.String("log-date", "", "One-shot: record time for this date (YYYY-MM-DD)")
	logHours := flag.Float64("hours", 0, "Hours to record with -log-date")
	dayType := flag.String("day-type", "work", "Day type for -log-date (work, sick, vacation, ...)")
	weekDate := flag.String("week", "", "One-shot: print the week summary for this date (YYYY-MM-DD)")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if *ssePort != 0 {
		cfg.MCP.SSEPort = *ssePort
	}

	// In stdio MCP mode the protocol owns stdout/stderr, so logs go to a file.
	stdioMCP := *mcpMode && cfg.MCP.SSEPort == 0
	if stdioMCP && cfg.Server.LogFile != "" {
		logFile, err := os.OpenFile(cfg.Server.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err == nil {
			log.SetOutput(logFile)
			defer logFile.Close()
		} else {
			log.SetOutput(io.Discard)
		}
	}

	manager := browser.NewManager(cfg.Browser)
	if err := manager.Start(ctx); err != nil {
		log.Fatalf("failed to start browser: %v", err)
	}
	defer func() {
		if err := manager.Shutdown(context.Background()); err != nil {
			log.Printf("browser shutdown: %v", err)
		}
	}()

	nav := navigator.New(manager, cfg)
	rec := timesheet.NewRecorder(nav, cfg.Timesheet)

	if *mcpMode || cfg.MCP.SSEPort > 0 {
		server := mcpserver.NewServer(cfg, manager, nav, rec)

		var startErr error
		if cfg.MCP.SSEPort > 0 {
			log.Printf("starting timenav MCP SSE server on port %d", cfg.MCP.SSEPort)
			startErr = server.StartSSE(ctx, cfg.MCP.SSEPort)
		} else {
			log.Printf("starting timenav MCP stdio server")
			startErr = server.Start(ctx)
		}
		if startErr != nil && !errors.Is(startErr, context.Canceled) {
			log.Fatalf("server exited with error: %v", startErr)
		}
		return
	}

	if err := runOneShot(ctx, nav, rec, *gotoTarget, *logDate, *logHours, *dayType, *weekDate); err != nil {
		log.Fatalf("%v", err)
	}
}

// runOneShot executes the single action selected by the CLI flags and exits.
func runOneShot(ctx context.Context, nav *navigator.Navigator, rec *timesheet.Recorder,
	gotoTarget, logDate string, logHours float64, dayType, weekDate string) error {

	switch {
	case gotoTarget != "":
		page, err := nav.Goto(ctx, navigator.PageState(gotoTarget))
		if err != nil {
			return fmt.Errorf("goto %s: %w", gotoTarget, err)
		}
		url, _ := page.URL()
		fmt.Printf("on %s: %s\n", gotoTarget, url)
		return nil

	case logDate != "":
		date, err := time.Parse("2006-01-02", logDate)
		if err != nil {
			return fmt.Errorf("parse -log-date: %w", err)
		}
		if logHours <= 0 {
			return errors.New("-hours must be positive with -log-date")
		}
		dt, err := timesheet.ParseDayType(dayType)
		if err != nil {
			return err
		}
		if err := rec.Record(ctx, date, logHours, dt); err != nil {
			return fmt.Errorf("record time: %w", err)
		}
		fmt.Printf("recorded %.2f hours on %s (%s)\n", logHours, logDate, dt)
		return nil

	case weekDate != "":
		date, err := time.Parse("2006-01-02", weekDate)
		if err != nil {
			return fmt.Errorf("parse -week: %w", err)
		}
		entries, err := rec.Week(ctx, date)
		if err != nil {
			return fmt.Errorf("read week: %w", err)
		}
		printWeek(entries)
		return nil

	default:
		return errors.New("nothing to do: pass -mcp, -goto, -log-date, or -week")
	}
}

func printWeek(entries map[string]timesheet.Entry) {
	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var total float64
	for _, k := range keys {
		e := entries[k]
		fmt.Printf("%-8s %6s (%.2f h)\n", e.Column, e.Clock, e.Hours)
		total += e.Hours
	}
	fmt.Printf("total    %.2f h over %d days\n", total, len(keys))
}
