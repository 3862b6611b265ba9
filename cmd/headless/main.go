package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ConserveLee/battle-idle/internal/config"
	"github.com/ConserveLee/battle-idle/internal/engine/battle"
	"github.com/ConserveLee/battle-idle/internal/engine/input"
	"github.com/ConserveLee/battle-idle/internal/engine/locate"
	"github.com/ConserveLee/battle-idle/internal/engine/screen"
	"github.com/ConserveLee/battle-idle/internal/logger"
)

var (
	configPath string
	displayID  int
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "battle-idle",
	Short: "Run the automated battle loop without a GUI",
	Long:  `Runs the screen-driven battle loop headlessly. Logs go to stdout; stop with Ctrl+C.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		console := logger.NewConsole(verbose)

		cfg, err := config.Load(configPath)
		if err != nil {
			console.Info("Using default configuration: %v", err)
		}

		logCallback := func(msg string) { console.Info(msg) }
		statusCallback := func(msg string) { console.Info(msg) }
		debugCallback := func(format string, args ...interface{}) { console.Debug(format, args...) }

		cache := screen.NewTemplateCache(cfg.TemplatesDir)
		cache.SetDebugFunc(debugCallback)

		matcher := screen.NewScreenMatcher()
		matcher.SetDebugFunc(debugCallback)
		matcher.SetDisplayID(displayID)

		finder := locate.NewLocator(cache, matcher, cfg, logCallback, debugCallback)

		clicker, err := input.NewClicker(input.RobotPointer{}, debugCallback)
		if err != nil {
			return fmt.Errorf("clicker init: %w", err)
		}

		bot := battle.NewOrchestrator(finder, clicker, cfg, logCallback, statusCallback, debugCallback)

		if err := bot.Start(); err != nil {
			if errors.Is(err, battle.ErrOriginNotFound) {
				return fmt.Errorf("game window not found on display %d, is the game visible?", displayID)
			}
			return err
		}

		// Graceful shutdown
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c

		console.Info("Shutting down...")
		bot.Stop()
		return nil
	},
}

func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "config.yaml", "path to the YAML configuration file")
	rootCmd.Flags().IntVarP(&displayID, "display", "d", 0, "display index to capture")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
