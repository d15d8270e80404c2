package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/hengadev/obfx"
	"github.com/joho/godotenv"
)

func main() {
	// Values already in the environment win over .env entries.
	_ = godotenv.Load()
	setupLogging()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	switch command {
	case "run":
		runCommand(os.Args[2:])
	case "watch":
		watchCommand(os.Args[2:])
	case "keygen":
		keygenCommand(os.Args[2:])
	case "init":
		initCommand(os.Args[2:])
	case "formats":
		formatsCommand()
	case "version":
		versionCommand()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Usage: %s <command> [options]\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "\nCommands:\n")
	fmt.Fprintf(os.Stderr, "  run      Obfuscate a tabular file\n")
	fmt.Fprintf(os.Stderr, "  watch    Watch a directory and obfuscate files as they arrive\n")
	fmt.Fprintf(os.Stderr, "  keygen   Generate or derive an obfuscation key\n")
	fmt.Fprintf(os.Stderr, "  init     Create a redaction profile file\n")
	fmt.Fprintf(os.Stderr, "  formats  List supported formats\n")
	fmt.Fprintf(os.Stderr, "  version  Show version information\n")
	fmt.Fprintf(os.Stderr, "\nRun '%s <command> -h' for help on a specific command.\n", os.Args[0])
}

// setupLogging installs a text slog handler at the level named by LOG_LEVEL.
func setupLogging() {
	level := slog.LevelInfo
	switch strings.ToLower(os.Getenv(obfx.EnvLogLevel)) {
	case "debug":
		level = slog.LevelDebug
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func initCommand(args []string) {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	force := fs.Bool("force", false, "Overwrite an existing profile file")

	fs.Parse(args)

	profilePath := "obfx.yaml"
	if !*force {
		if _, err := os.Stat(profilePath); err == nil {
			fmt.Fprintf(os.Stderr, "Profile %s already exists. Use -force to overwrite.\n", profilePath)
			os.Exit(1)
		}
	}

	if err := SaveProfile(DefaultProfile(), profilePath); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create profile: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Profile created at %s\n", profilePath)
}

func formatsCommand() {
	statuses := obfx.SupportedFormats()

	fmt.Println("Supported formats:")
	for _, tag := range obfx.FormatTags() {
		fmt.Printf("  %-8s %s\n", tag, statuses[tag])
	}
}

func versionCommand() {
	fmt.Println(obfx.VersionInfo())
}
