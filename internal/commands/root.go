// internal/commands/root.go
package askdocs

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/k0kubun/pp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/askdocs/askdocs/internal/appconfig"
	"github.com/askdocs/askdocs/internal/logging"
)

var (
	cfgFile       string
	currentConfig *appconfig.Config
	appVersion    = "dev"
	appCommit     = "none"
	appDate       = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "askdocs",
	Short: "askdocs answers questions over a local document folder",
	Long: `askdocs indexes a folder of documents into a single-file vector store and
answers questions over it with a locally hosted language model.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := ensureConfigLoaded(); err != nil {
			return err
		}

		for _, name := range []string{"debug", "jsonMode"} {
			if !cmd.Flags().Changed(name) {
				val := viper.GetBool(name)
				_ = cmd.Flags().Set(name, strconv.FormatBool(val))
			}
		}
		if !cmd.Flags().Changed("topK") {
			_ = cmd.Flags().Set("topK", strconv.Itoa(viper.GetInt("topK")))
		}
		for _, name := range []string{"logFile", "docsPath", "storePath"} {
			if !cmd.Flags().Changed(name) {
				_ = cmd.Flags().Set(name, viper.GetString(name))
			}
		}

		var cfg appconfig.Config
		if err := viper.Unmarshal(&cfg); err != nil {
			return fmt.Errorf("unmarshal config: %w", err)
		}
		cfg.ConfigPath = cfgFile
		cfg.ApplyDefaults()
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		currentConfig = &cfg

		if err := logging.Init(currentConfig.LogFilePath()); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		if currentConfig.Debug {
			pp.Println(currentConfig)
		}

		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := executeRoot(); err != nil {
		os.Exit(1)
	}
}

// executeRoot runs the root command and closes the log file before the exit
// status is decided; os.Exit skips deferred calls, so Close cannot be deferred
// across it.
func executeRoot() error {
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", appVersion, appCommit, appDate)

	err := rootCmd.Execute()
	if cerr := logging.Close(); err == nil {
		err = cerr
	}
	return err
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", appconfig.DefaultConfigPath, "config file (e.g., config/config.json)")

	rootCmd.PersistentFlags().Bool("debug", false, "enable debug output")
	rootCmd.PersistentFlags().Bool("jsonMode", false, "emit machine-readable JSON output")
	rootCmd.PersistentFlags().Int("topK", 0, "number of chunks to retrieve per query (0 = config default)")
	rootCmd.PersistentFlags().String("logFile", "", "path to the log file")
	rootCmd.PersistentFlags().String("docsPath", "", "documents directory to index")
	rootCmd.PersistentFlags().String("storePath", "", "vector store file path")

	// Overlap 0 is a valid explicit setting, so ApplyDefaults cannot treat the
	// zero value as unset; the default for an omitted key is registered here.
	viper.SetDefault("chunkOverlap", 50)

	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("jsonMode", rootCmd.PersistentFlags().Lookup("jsonMode"))
	_ = viper.BindPFlag("topK", rootCmd.PersistentFlags().Lookup("topK"))
	_ = viper.BindPFlag("logFile", rootCmd.PersistentFlags().Lookup("logFile"))
	_ = viper.BindPFlag("docsPath", rootCmd.PersistentFlags().Lookup("docsPath"))
	_ = viper.BindPFlag("storePath", rootCmd.PersistentFlags().Lookup("storePath"))
}

// initConfig reads in the config file and a .env file if present.
func initConfig() {
	_ = godotenv.Load()
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}
}

// ensureConfigLoaded reads the config, tolerating a missing file so flags
// and defaults alone can drive simple commands.
func ensureConfigLoaded() error {
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to load config: %w", err)
	}
	return nil
}

// GetConfig returns the loaded application configuration for other packages.
func GetConfig() *appconfig.Config {
	return currentConfig
}

// SetVersionInfo allows the main package to inject build-time variables.
func SetVersionInfo(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date
}
