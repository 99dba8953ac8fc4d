package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/davzula/blinkwatch/internal/store"
)

// Options holds shared configuration for the monitor and replay commands
type Options struct {
	Device    string
	InputPath string
	UserName  string
}

var (
	// Archive is the optional Postgres history shared by subcommands.
	// Nil when no connection string is configured.
	Archive *store.Archive
	// dbURL is the connection string
	dbURL string

	keyPath   string
	projectID string
	verbose   bool

	logger zerolog.Logger
)

// Version is the application version.
const Version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:     "blinkwatch",
	Short:   "Webcam Eye-Blink Health Monitor",
	Version: Version, // This enables the --version flag
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Local .env is optional; flags and real env always win
		_ = godotenv.Load()

		level := zerolog.WarnLevel
		if verbose {
			level = zerolog.DebugLevel
		}
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
			Level(level).With().Timestamp().Logger()

		if keyPath == "" {
			keyPath = envOr("BLINKWATCH_FIREBASE_KEY", "firebase-key.json")
		}
		if projectID == "" {
			projectID = os.Getenv("BLINKWATCH_PROJECT_ID")
		}

		// If no flag was provided, try to build the connection string from the environment
		if dbURL == "" {
			if host := os.Getenv("POSTGRES_HOST"); host != "" {
				user := os.Getenv("POSTGRES_USER")
				pass := os.Getenv("POSTGRES_PASSWORD")
				name := os.Getenv("POSTGRES_DB")
				port := os.Getenv("POSTGRES_PORT")
				if port == "" {
					port = "5432"
				}
				dbURL = fmt.Sprintf("postgres://%s:%s@%s:%s/%s", user, pass, host, port, name)
			}
		}

		// The archive stays optional: without a connection string every
		// session simply runs without local history.
		if dbURL != "" {
			var err error
			Archive, err = store.OpenArchive(cmd.Context(), dbURL)
			if err != nil {
				return fmt.Errorf("failed to connect to archive database: %w", err)
			}
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if Archive != nil {
			// Use Background here because the main context might be cancelled already (due to Ctrl+C)
			// and we still need to cleanly close the connection.
			Archive.Close(context.Background())
		}
	},
}

func Execute() {
	// Create a context that listens for Ctrl+C (SIGINT) or Kill (SIGTERM)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbURL, "db", "", "PostgreSQL connection string for the optional session archive")
	rootCmd.PersistentFlags().StringVar(&keyPath, "firebase-key", "", "Path to the Firebase service account key (default: firebase-key.json)")
	rootCmd.PersistentFlags().StringVar(&projectID, "project", "", "Google Cloud project ID (default: read from the key file)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

// openCloud connects to Firestore, or returns nil for offline mode when
// no usable key is present. Classification and counting keep working
// either way; only persistence is affected.
func openCloud(ctx context.Context) *store.Cloud {
	cloud, err := store.OpenCloud(ctx, projectID, keyPath)
	if err != nil {
		logger.Warn().Err(err).Msg("firebase unavailable - running in offline mode, cloud data will not be saved")
		return nil
	}
	fmt.Fprintln(os.Stderr, "✅ Firestore client initialized")
	return cloud
}

// resolveUserName prefers the flag, then the environment, then a prompt.
// An empty answer falls back to Anonymous, same as the original dialog.
func resolveUserName(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if env := os.Getenv("BLINKWATCH_USER"); env != "" {
		return env
	}

	fmt.Fprint(os.Stderr, "Please enter your name [Anonymous]: ")
	reader := bufio.NewReader(os.Stdin)
	name, _ := reader.ReadString('\n')
	name = strings.TrimSpace(name)
	if name == "" {
		return "Anonymous"
	}
	return name
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
