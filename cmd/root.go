package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/circa10a/appointment-reminder/internal/reminder"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var (
	cfgFile      string
	envFile      string
	project      = "appointment-reminder"
	envVarPrefix = "APPOINTMENT_REMINDER"

	// Set at build time with -ldflags
	version = "dev"
	commit  = "none"
	date    = "unknown"

	// rootCmd with no subcommand initializes the database, adds the sample
	// appointment for tomorrow and runs one reminder sweep.
	rootCmd = &cobra.Command{
		Use:          project,
		Short:        "Send SMS reminders 24 hours before appointments",
		Version:      version,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newService()
			if err != nil {
				return err
			}

			err = svc.Init()
			if err != nil {
				return err
			}

			_, err = svc.SeedSample()
			if err != nil {
				return err
			}

			summary, err := svc.Sweep()
			if err != nil {
				return err
			}

			reminder.PrintSummary(cmd.OutOrStdout(), summary)
			return nil
		},
	}
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version information",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("%s %s (commit: %s, built: %s)\n", project, version, commit, date)
	},
}

// define config opts to be used by cobra + viper for configuration
type flagDef struct {
	Name      string
	Shorthand string
	Type      string // "bool", "string", "stringArray", "int", "duration"
	Default   interface{}
	Usage     string
	ViperKey  string
	// Env overrides the prefixed environment variable name.
	Env string
}

// registerFlagTypes registers flags on the provided flag set according
// to the provided definitions.
func registerFlagTypes(flags *pflag.FlagSet, defs []flagDef) {
	for _, d := range defs {
		switch d.Type {
		case "bool":
			flags.BoolP(d.Name, d.Shorthand, d.Default.(bool), d.Usage)
		case "duration":
			flags.DurationP(d.Name, d.Shorthand, d.Default.(time.Duration), d.Usage)
		case "int":
			flags.IntP(d.Name, d.Shorthand, d.Default.(int), d.Usage)
		case "string":
			flags.StringP(d.Name, d.Shorthand, d.Default.(string), d.Usage)
		case "stringArray":
			flags.StringArrayP(d.Name, d.Shorthand, d.Default.([]string), d.Usage)
		}
	}
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

// initConfig loads the env file and reads in the config file if set, or looks in default locations.
func initConfig() {
	loadEnvFile(envFile)

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, _ := os.UserHomeDir()
		if home != "" {
			viper.AddConfigPath(home)
		}
		viper.AddConfigPath(".")
		viper.SetConfigName(project)
		viper.SetConfigType("yaml")
	}

	// Silently ignore missing config file; flags and env vars still work.
	_ = viper.ReadInConfig()
}

// loadEnvFile copies variables from path into the process environment without
// overriding ones that are already set. A missing file is not an error.
func loadEnvFile(path string) {
	if path == "" {
		return
	}

	err := godotenv.Load(path)
	if err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "failed to load env file %s: %v\n", path, err)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", fmt.Sprintf("Config file (default: ./%s.yaml or ~/%s.yaml)", project, project))
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Env file loaded before configuration is read")

	registerFlagTypes(rootCmd.PersistentFlags(), configFlags)
	bindConfig(rootCmd.PersistentFlags())

	rootCmd.AddCommand(versionCmd)
}
