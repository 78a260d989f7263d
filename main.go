// aistudio is a command-line studio for AI image generation: it builds
// generation requests against a remote image service, fetches batches of
// variations with bounded concurrency, and keeps a durable collection of
// saved images with their generation metadata.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"aistudio/core"
	"aistudio/logging"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		// Use fmt here since logger isn't initialized yet
		fmt.Printf("Warning: could not load .env file: %v\n", err)
	}

	devMode := os.Getenv("AISTUDIO_DEV_MODE") == "true"
	logFile := core.GetEnvOrDefault("AISTUDIO_LOG_FILE", "studio.log")

	logger, err := logging.NewLogger(devMode, logFile)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		return core.ExitCodeError
	}
	defer func() {
		_ = logger.Sync()
	}()

	config, err := core.LoadConfig()
	if err != nil {
		printConfigError(err)
		logger.Error("Configuration invalid", zap.Error(err))
		return core.ExitCodeError
	}

	logger.Debug("Configuration loaded",
		zap.String("base_url", config.BaseURL),
		zap.String("models_url", config.ModelsURL),
		zap.String("default_model", config.DefaultModel),
		zap.Int("batch_size", config.BatchSize),
		zap.Duration("fetch_timeout", config.FetchTimeout),
		zap.Int("max_concurrent", config.MaxConcurrentFetches),
		zap.String("data_dir", config.DataDir),
		zap.String("downloads_dir", config.DownloadsDir),
		zap.Bool("dev_mode", devMode),
	)

	if len(args) == 0 {
		printUsage()
		return core.ExitCodeUsage
	}

	// Ctrl+C cancels the in-flight command
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := &app{
		config: config,
		logger: logger,
	}

	code := app.dispatch(ctx, args[0], args[1:])
	if ctx.Err() != nil && code != core.ExitCodeSuccess {
		logger.Info("Interrupted")
		return core.ExitCodeSIGINT
	}
	return code
}

// app bundles the shared pieces every command needs.
type app struct {
	config *core.Config
	logger *logging.Logger
}

func (a *app) dispatch(ctx context.Context, command string, args []string) int {
	switch command {
	case "generate":
		return a.cmdGenerate(ctx, args)
	case "models":
		return a.cmdModels(ctx, args)
	case "styles":
		return a.cmdStyles(args)
	case "save":
		return a.cmdSave(ctx, args)
	case "list":
		return a.cmdList(ctx, args)
	case "tag":
		return a.cmdTag(ctx, args, false)
	case "untag":
		return a.cmdTag(ctx, args, true)
	case "edit-prompt":
		return a.cmdEditPrompt(ctx, args)
	case "delete":
		return a.cmdDelete(ctx, args)
	case "export":
		return a.cmdExport(ctx, args)
	case "import":
		return a.cmdImport(ctx, args)
	case "help", "-h", "--help":
		printUsage()
		return core.ExitCodeSuccess
	default:
		color.Red("Unknown command: %s", command)
		printUsage()
		return core.ExitCodeUsage
	}
}

// printConfigError renders a configuration error with its remediation
// hint when one is available.
func printConfigError(err error) {
	if cfgErr, ok := err.(*core.ConfigError); ok {
		color.Red("Configuration error: %s", cfgErr.Message)
		if cfgErr.Action != "" {
			color.Yellow("  %s", cfgErr.Action)
		}
		return
	}
	color.Red("Configuration error: %v", err)
}

func printUsage() {
	fmt.Println("Usage: aistudio <command> [flags]")
	fmt.Println()
	fmt.Println("Generation:")
	fmt.Println("  generate     Generate a batch of image variations for a prompt")
	fmt.Println("  models       List available generation models")
	fmt.Println("  styles       List style presets")
	fmt.Println()
	fmt.Println("Collection:")
	fmt.Println("  save         Download an image and record it in the collection")
	fmt.Println("  list         List saved images, with optional filters")
	fmt.Println("  tag          Add tags to a saved image")
	fmt.Println("  untag        Remove tags from a saved image")
	fmt.Println("  edit-prompt  Rewrite the stored prompt of a saved image")
	fmt.Println("  delete       Delete saved images by ID")
	fmt.Println("  export       Export the collection as JSON")
	fmt.Println("  import       Import a previously exported collection")
	fmt.Println()
	fmt.Println("Run 'aistudio <command> -h' for command flags.")
}
