// Command deliverysim is the autonomous delivery agent system CLI.
//
// Subcommands cover the full surface: map generation (create-maps), algorithm
// benchmarking (compare, experiment, analyze), a scripted simulation run
// (simulate), the HTTP server with REST API, WebSocket hub and /mcp endpoint
// (serve), and an MCP stdio server (mcp).
//
// Flags control host/port, maps/sessions directories, planner tuning, debug
// logging, and optional ngrok tunneling for easy external access during
// development.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/urfave/cli/v3"
	"github.com/wricardo/mcp-training/deliverysim/api"
	"github.com/wricardo/mcp-training/deliverysim/sim/agent"
	"github.com/wricardo/mcp-training/deliverysim/sim/config"
	"github.com/wricardo/mcp-training/deliverysim/sim/engine"
	"github.com/wricardo/mcp-training/deliverysim/sim/planner"
	"github.com/wricardo/mcp-training/deliverysim/sim/service"
	"github.com/wricardo/mcp-training/deliverysim/sim/session"
	"github.com/wricardo/mcp-training/deliverysim/transport/mcp"
	"github.com/wricardo/mcp-training/deliverysim/transport/websocket"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Delivery Agent Simulator"
)

// services bundles everything a subcommand may need after initialization.
type services struct {
	service  service.SimulationService
	sessions *session.Manager
	maps     *config.Manager
	tuning   planner.Tuning
}

func main() {
	// Load .env file if it exists (ignore error if not found)
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Warning: Error loading .env file: %v", err)
		}
	} else {
		log.Println("Loaded environment variables from .env file")
	}

	cmd := &cli.Command{
		Name:    "deliverysim",
		Usage:   "Autonomous Delivery Agent System",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "maps-dir",
				Value:   "maps",
				Usage:   "Directory containing map files",
				Sources: cli.EnvVars("MAPS_DIR"),
			},
			&cli.StringFlag{
				Name:    "sessions-dir",
				Value:   "sessions",
				Usage:   "Directory for persisted sessions",
				Sources: cli.EnvVars("SESSIONS_DIR"),
			},
			&cli.StringFlag{
				Name:    "tuning",
				Usage:   "Planner tuning YAML file (compiled-in defaults when unset)",
				Sources: cli.EnvVars("TUNING_FILE"),
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug logging",
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			if cmd.Bool("debug") {
				log.SetFlags(log.LstdFlags | log.Lshortfile)
			} else {
				log.SetFlags(log.LstdFlags)
			}
			return ctx, nil
		},
		Commands: []*cli.Command{
			createMapsCommand(),
			compareCommand(),
			simulateCommand(),
			experimentCommand(),
			analyzeCommand(),
			serveCommand(),
			mcpCommand(),
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

// initializeServices wires the map manager, session persistence, session
// manager, and simulation service. It also starts background routines to
// prune stale sessions and sync memory with the sessions directory.
func initializeServices(cmd *cli.Command, background bool) (*services, error) {
	tuning := planner.DefaultTuning()
	if path := cmd.String("tuning"); path != "" {
		loaded, err := planner.LoadTuning(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load tuning: %w", err)
		}
		tuning = loaded
		log.Printf("[CONFIG] tuning=%s loaded", path)
	}

	mapManager, err := config.NewManager(cmd.String("maps-dir"))
	if err != nil {
		return nil, fmt.Errorf("failed to create map manager: %w", err)
	}

	persistence, err := session.NewFilePersistence(cmd.String("sessions-dir"), mapManager, tuning)
	if err != nil {
		return nil, fmt.Errorf("failed to create session persistence: %w", err)
	}

	sessionManager := session.NewManagerWithPersistence(mapManager, tuning, persistence)

	if err := sessionManager.LoadPersistedSessions(); err != nil {
		log.Printf("Warning: Failed to load persisted sessions: %v", err)
	}

	if background {
		go sessionCleanupRoutine(sessionManager)
		go filesystemSyncRoutine(sessionManager, persistence)
	}

	return &services{
		service:  service.NewSimulationService(sessionManager, mapManager, tuning),
		sessions: sessionManager,
		maps:     mapManager,
		tuning:   tuning,
	}, nil
}

// parsePosition parses an "x,y" coordinate pair.
func parsePosition(s string) (engine.Position, error) {
	parts := strings.Split(strings.TrimSpace(s), ",")
	if len(parts) != 2 {
		return engine.Position{}, fmt.Errorf("invalid position format %q, use x,y (e.g., 0,0)", s)
	}
	x, errX := strconv.Atoi(strings.TrimSpace(parts[0]))
	y, errY := strconv.Atoi(strings.TrimSpace(parts[1]))
	if errX != nil || errY != nil {
		return engine.Position{}, fmt.Errorf("invalid position format %q, use x,y (e.g., 0,0)", s)
	}
	return engine.Position{X: x, Y: y}, nil
}

func createMapsCommand() *cli.Command {
	return &cli.Command{
		Name:  "create-maps",
		Usage: "Write all built-in maps to the maps directory",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			svcs, err := initializeServices(cmd, false)
			if err != nil {
				return err
			}

			paths, err := svcs.service.CreateMaps(ctx)
			if err != nil {
				return err
			}
			for _, path := range paths {
				fmt.Printf("Created map: %s\n", path)
			}
			return nil
		},
	}
}

func compareCommand() *cli.Command {
	return &cli.Command{
		Name:  "compare",
		Usage: "Run all path search algorithms on one start/goal pair",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "map",
				Usage:    "Map to use: small, medium, large or dynamic",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "start",
				Value: "0,0",
				Usage: "Start position (format: x,y)",
			},
			&cli.StringFlag{
				Name:     "goal",
				Usage:    "Goal position (format: x,y)",
				Required: true,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			start, err := parsePosition(cmd.String("start"))
			if err != nil {
				return err
			}
			goal, err := parsePosition(cmd.String("goal"))
			if err != nil {
				return err
			}

			svcs, err := initializeServices(cmd, false)
			if err != nil {
				return err
			}

			env, err := svcs.maps.LoadEnvironment(cmd.String("map"))
			if err != nil {
				return err
			}
			fmt.Printf("Comparing algorithms from (%d,%d) to (%d,%d) on a %dx%d grid.\n\n",
				start.X, start.Y, goal.X, goal.Y, env.Width, env.Height)

			result, err := svcs.service.Compare(ctx, cmd.String("map"), start, goal)
			if err != nil {
				return err
			}
			fmt.Print(result.Report)
			return nil
		},
	}
}

func simulateCommand() *cli.Command {
	return &cli.Command{
		Name:  "simulate",
		Usage: "Run a delivery simulation with default tasks scaled to the map",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "map",
				Usage:    "Map to use: small, medium, large or dynamic",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "strategy",
				Usage:    "Planning strategy: bfs, astar, hill_climbing or simulated_annealing",
				Required: true,
			},
			&cli.IntFlag{
				Name:  "max-steps",
				Value: 1000,
				Usage: "Maximum simulation steps",
			},
			&cli.StringFlag{
				Name:  "log-file",
				Value: "dynamic_replanning.log",
				Usage: "Tee simulation logging to this file (empty to disable)",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			svcs, err := initializeServices(cmd, false)
			if err != nil {
				return err
			}

			strategy, err := planner.ForName(cmd.String("strategy"), svcs.tuning)
			if err != nil {
				return err
			}

			env, err := svcs.maps.LoadEnvironment(cmd.String("map"))
			if err != nil {
				return err
			}

			if logPath := cmd.String("log-file"); logPath != "" {
				f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
				if err != nil {
					log.Printf("Warning: cannot open log file %s: %v", logPath, err)
				} else {
					defer f.Close()
					log.SetOutput(io.MultiWriter(os.Stderr, f))
				}
			}

			deliveryAgent := agent.NewDeliveryAgent(env, engine.Position{X: 0, Y: 0}, 100.0)
			deliveryAgent.SetStrategy(strategy)

			tasks := service.DefaultTasks(env)
			for _, task := range tasks {
				deliveryAgent.AddDeliveryTask(task)
			}

			maxSteps := int(cmd.Int("max-steps"))
			fmt.Printf("Running simulation with %s on a %dx%d grid. Tasks: %d. Max steps: %d.\n",
				strategy.Name(), env.Width, env.Height, len(tasks), maxSteps)

			stats := deliveryAgent.RunSimulation(maxSteps)

			fmt.Println("\nSimulation completed:")
			fmt.Printf("  Deliveries completed: %d/%d\n", stats.DeliveriesCompleted, len(tasks))
			fmt.Printf("  Steps taken: %d\n", stats.SimulationSteps)
			fmt.Printf("  Distance traveled: %.2f\n", stats.TotalDistanceTraveled)
			fmt.Printf("  Fuel consumed: %.2f\n", stats.TotalFuelConsumed)
			fmt.Printf("  Planning time: %.4fs\n", stats.TotalPlanningTime.Seconds())
			fmt.Printf("  Replanning events: %d\n", stats.ReplanningEvents)

			if stats.SimulationSteps > 0 {
				efficiency := float64(stats.DeliveriesCompleted) / float64(stats.SimulationSteps) * 100
				fmt.Printf("  Delivery efficiency: %.2f%% (deliveries per step)\n", efficiency)
			}
			return nil
		},
	}
}

func experimentCommand() *cli.Command {
	return &cli.Command{
		Name:  "experiment",
		Usage: "Run every algorithm on every built-in map's scenarios",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "results",
				Value: api.DefaultResultsPath,
				Usage: "Where to write the results JSON",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			svcs, err := initializeServices(cmd, false)
			if err != nil {
				return err
			}

			fmt.Println("Running comprehensive experiment...")
			result, err := svcs.service.RunExperiment(ctx, cmd.String("results"))
			if err != nil {
				return err
			}

			fmt.Printf("\nExperiment completed. Results saved to %s\n", result.SavedTo)
			return nil
		},
	}
}

func analyzeCommand() *cli.Command {
	return &cli.Command{
		Name:  "analyze",
		Usage: "Summarize a saved experiment per map and algorithm",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "results",
				Value: api.DefaultResultsPath,
				Usage: "Experiment results JSON to analyze",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			svcs, err := initializeServices(cmd, false)
			if err != nil {
				return err
			}

			report, err := svcs.service.Analyze(ctx, cmd.String("results"))
			if err != nil {
				return fmt.Errorf("run 'experiment' first: %w", err)
			}

			mapNames := make([]string, 0, len(report.Maps))
			for name := range report.Maps {
				mapNames = append(mapNames, name)
			}
			sort.Strings(mapNames)

			for _, name := range mapNames {
				fmt.Printf("\n%s map:\n", name)
				for _, s := range report.Maps[name] {
					fmt.Printf("  %-20s success=%.0f%% avg_cost=%.2f avg_time=%.4fs\n",
						s.Algorithm, s.SuccessRate, s.AverageCost, s.AverageTime)
				}
			}
			return nil
		},
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP server with REST API, WebSocket hub and /mcp endpoint",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Value: "localhost",
				Usage: "HTTP server host",
			},
			&cli.IntFlag{
				Name:  "port",
				Value: 8080,
				Usage: "HTTP server port",
			},
			&cli.BoolFlag{
				Name:    "ngrok",
				Usage:   "Enable ngrok tunnel",
				Sources: cli.EnvVars("NGROK_ENABLED"),
			},
			&cli.StringFlag{
				Name:    "ngrok-auth",
				Usage:   "Ngrok auth token",
				Sources: cli.EnvVars("NGROK_AUTHTOKEN", "NGROK_AUTH_TOKEN"),
			},
			&cli.StringFlag{
				Name:    "ngrok-domain",
				Usage:   "Custom ngrok domain (optional)",
				Sources: cli.EnvVars("NGROK_DOMAIN"),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			svcs, err := initializeServices(cmd, true)
			if err != nil {
				return err
			}

			log.Printf("Starting %s v%s", AppName, Version)
			runHTTPServer(svcs.service, cmd)
			return nil
		},
	}
}

func mcpCommand() *cli.Command {
	return &cli.Command{
		Name:    "mcp",
		Aliases: []string{"stdio-mcp", "mcp-stdio"},
		Usage:   "Run an MCP stdio server (reuses a running API server or starts one)",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "port",
				Value: 8080,
				Usage: "Port of an external API server to probe",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			svcs, err := initializeServices(cmd, true)
			if err != nil {
				return err
			}

			runStdioMCPWithInternalServer(svcs.service, int(cmd.Int("port")))
			return nil
		},
	}
}

// runHTTPServer starts the HTTP server with REST API, WebSocket hub, and an
// /mcp proxy endpoint. If ngrok is enabled (via flag or environment), it also
// provisions a public tunnel.
func runHTTPServer(simService service.SimulationService, cmd *cli.Command) {
	hub := websocket.NewHub()
	go hub.Run()

	apiServer := api.NewServer(simService, hub)

	addr := fmt.Sprintf("%s:%d", cmd.String("host"), cmd.Int("port"))

	// MCP client for the /mcp endpoint
	baseURL := fmt.Sprintf("http://%s", addr)
	mcpClient := mcp.NewClient(baseURL)

	mainRouter := http.NewServeMux()
	mainRouter.Handle("/", apiServer)
	mainRouter.HandleFunc("/mcp", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := mcpClient.GetMCPServer().HandleMessage(r.Context(), body)

		w.Header().Set("Content-Type", "application/json")
		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Write(responseData)
	})

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      mainRouter,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()

		log.Printf("HTTP server listening on %s", addr)
		log.Printf("REST API: http://%s/api", addr)
		log.Printf("WebSocket: ws://%s/ws?session=<session_id>", addr)
		log.Printf("MCP endpoint: http://%s/mcp", addr)

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	if cmd.Bool("ngrok") {
		wg.Add(1)
		go func() {
			defer wg.Done()

			authToken := cmd.String("ngrok-auth")
			if authToken == "" {
				log.Println("WARNING: Ngrok enabled but no auth token provided (use --ngrok-auth, NGROK_AUTHTOKEN, or NGROK_AUTH_TOKEN env var)")
				return
			}

			log.Println("Starting ngrok tunnel...")

			var tunnel ngrokConfig.Tunnel
			if domain := cmd.String("ngrok-domain"); domain != "" {
				tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(domain))
				log.Printf("Using custom ngrok domain: %s", domain)
			} else {
				tunnel = ngrokConfig.HTTPEndpoint()
			}

			tun, err := ngrok.Listen(ctx,
				tunnel,
				ngrok.WithAuthtoken(authToken),
			)
			if err != nil {
				log.Printf("Failed to start ngrok tunnel: %v", err)
				return
			}
			defer func() {
				if err := tun.Close(); err != nil {
					log.Printf("Failed to close ngrok tunnel: %v", err)
				}
			}()

			ngrokURL := tun.URL()
			log.Printf("Ngrok tunnel established: %s", ngrokURL)
			log.Printf("  REST API (ngrok): %s/api", ngrokURL)
			log.Printf("  WebSocket (ngrok): %s/ws?session=<session_id>", ngrokURL)
			log.Printf("  MCP endpoint (ngrok): %s/mcp", ngrokURL)

			if err := http.Serve(tun, mainRouter); err != nil && err != http.ErrServerClosed {
				log.Printf("Ngrok server error: %v", err)
			}
			log.Println("Ngrok tunnel closed")
		}()
	}

	sig := <-stop
	log.Printf("Received signal: %v. Shutting down...", sig)
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	wg.Wait()
	log.Println("Server stopped")
}

// sessionCleanupRoutine periodically removes sessions that have not been
// accessed within the retention window.
func sessionCleanupRoutine(manager *session.Manager) {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		removed := manager.CleanupExpiredSessions(24 * time.Hour)
		if removed > 0 {
			log.Printf("Cleaned up %d expired sessions", removed)
		}
	}
}

// filesystemSyncRoutine periodically syncs in-memory sessions with filesystem
// state. It removes sessions from memory when their files are deleted.
func filesystemSyncRoutine(manager *session.Manager, persistence session.SessionPersistence) {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		if persistence == nil {
			continue
		}

		pruned := 0
		for _, sess := range manager.List() {
			if !persistence.Exists(sess.ID) {
				if err := manager.DeleteFromMemory(sess.ID); err == nil {
					pruned++
					log.Printf("Pruned session %s from memory (file deleted)", sess.ID)
				}
			}
		}

		if pruned > 0 {
			log.Printf("Filesystem sync: pruned %d orphaned sessions from memory", pruned)
		}
	}
}

// runStdioMCPWithInternalServer runs an MCP stdio server. It tries to reuse
// an external API at the given port; if unavailable, it starts a minimal
// internal HTTP API bound to a random loopback port and targets that.
func runStdioMCPWithInternalServer(simService service.SimulationService, port int) {
	var baseURL string

	externalURL := fmt.Sprintf("http://localhost:%d", port)
	log.Printf("Checking for external API server at %s...", externalURL)

	testClient := &http.Client{Timeout: 2 * time.Second}
	resp, err := testClient.Get(externalURL + "/api/health")
	if err == nil && resp.StatusCode < 500 {
		resp.Body.Close()
		log.Printf("External API server found at %s, using it for MCP", externalURL)
		baseURL = externalURL
	} else {
		log.Printf("No external API server found, starting internal HTTP server")

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			log.Fatalf("Failed to get available port: %v", err)
		}

		internalPort := listener.Addr().(*net.TCPAddr).Port
		internalAddr := fmt.Sprintf("127.0.0.1:%d", internalPort)

		log.Printf("Starting internal HTTP server on %s for MCP stdio", internalAddr)

		hub := websocket.NewHub()
		go hub.Run()

		apiServer := api.NewServer(simService, hub)

		httpServer := &http.Server{
			Handler: apiServer,
		}

		go func() {
			if err := httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
				log.Printf("Internal HTTP server error: %v", err)
			}
		}()

		// Wait a moment for the server to be ready
		time.Sleep(100 * time.Millisecond)

		baseURL = fmt.Sprintf("http://%s", internalAddr)
	}

	mcpClient := mcp.NewClient(baseURL)

	if baseURL == externalURL {
		log.Println("MCP stdio server ready (using external HTTP server)")
	} else {
		log.Println("MCP stdio server ready (using internal HTTP server)")
	}

	if err := mcpserver.ServeStdio(mcpClient.GetMCPServer()); err != nil {
		log.Fatalf("MCP stdio server error: %v", err)
	}
}
