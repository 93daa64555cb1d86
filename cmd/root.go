package cmd

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	gnbarcode "github.com/gnames/gnbarcode/pkg"
	"github.com/gnames/gnbarcode/pkg/config"
	"github.com/gnames/gnsys"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

//go:embed gnbarcode.yaml
var configText string

var (
	opts []config.Option
)

type cfgData struct {
	DataDir       string
	WorkDir       string
	ReportDir     string
	NHMFile       string
	NaturalisFile string
	SpecimenFile  string
	TaxonomyFile  string
	JobsNum       int
	MinGroupSize  int
	Orders        []string
	PgHost        string
	PgUser        string
	PgPass        string
	PgDB          string
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "gnbarcode",
	Short: "Generates validation reports for DNA-barcode recovery runs",
	Long: `gnbarcode loads DNA-barcode validation outputs of the NHM and
Naturalis pipelines, links them with specimen metadata and taxonomy
exports, classifies every validation attempt, and renders summary
tables with success rates per institution, parameter combination,
taxonomic order, and specimen age.`,
	Run: func(cmd *cobra.Command, args []string) {
		version, err := cmd.Flags().GetBool("version")
		if err != nil {
			slog.Error("Cannot get flag", "error", err)
			os.Exit(1)
		}
		if version {
			fmt.Printf("\nversion: %s\nbuild: %s\n\n", gnbarcode.Version, gnbarcode.Build)
			os.Exit(0)
		}

		if len(args) == 0 {
			_ = cmd.Help()
			os.Exit(0)
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initLog, initConfig)

	rootCmd.Flags().BoolP("version", "V", false, "Returns version and build date")
}

// initLog routes slog through a tinted handler on stderr.
func initLog() {
	handler := tint.NewHandler(os.Stderr, &tint.Options{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	var err error
	var homeDir, cfgDir string
	configFile := "gnbarcode"

	// Find home directory.
	homeDir, err = os.UserHomeDir()
	if err != nil {
		slog.Error("Cannot find home dir", "error", err)
		os.Exit(1)
	}
	cfgDir = filepath.Join(homeDir, ".config")

	// Search config in home directory with name "gnbarcode" (without extension).
	viper.AddConfigPath(cfgDir)
	viper.SetConfigName(configFile)

	configPath := filepath.Join(cfgDir, fmt.Sprintf("%s.yaml", configFile))
	touchConfigFile(configPath)

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err != nil {
		slog.Error("Config file gnbarcode.yaml not found", "error", err)
		os.Exit(1)
	}
	getOpts()
}

// getOpts imports data from the configuration file. Some of the settings can
// be overriden by command line flags.
func getOpts() []config.Option {
	cfg := cfgData{}
	err := viper.Unmarshal(&cfg)
	if err != nil {
		slog.Error("Cannot unmarshal config file", "error", err)
	}

	if cfg.DataDir != "" {
		opts = append(opts, config.OptDataDir(cfg.DataDir))
	}
	if cfg.WorkDir != "" {
		opts = append(opts, config.OptWorkDir(cfg.WorkDir))
	}
	if cfg.ReportDir != "" {
		opts = append(opts, config.OptReportDir(cfg.ReportDir))
	}
	if cfg.NHMFile != "" {
		opts = append(opts, config.OptNHMFile(cfg.NHMFile))
	}
	if cfg.NaturalisFile != "" {
		opts = append(opts, config.OptNaturalisFile(cfg.NaturalisFile))
	}
	if cfg.SpecimenFile != "" {
		opts = append(opts, config.OptSpecimenFile(cfg.SpecimenFile))
	}
	if cfg.TaxonomyFile != "" {
		opts = append(opts, config.OptTaxonomyFile(cfg.TaxonomyFile))
	}
	if cfg.JobsNum != 0 {
		opts = append(opts, config.OptJobsNum(cfg.JobsNum))
	}
	if cfg.MinGroupSize != 0 {
		opts = append(opts, config.OptMinGroupSize(cfg.MinGroupSize))
	}
	if len(cfg.Orders) > 0 {
		opts = append(opts, config.OptOrders(cfg.Orders))
	}
	if cfg.PgHost != "" {
		opts = append(opts, config.OptPgHost(cfg.PgHost))
	}
	if cfg.PgUser != "" {
		opts = append(opts, config.OptPgUser(cfg.PgUser))
	}
	if cfg.PgPass != "" {
		opts = append(opts, config.OptPgPass(cfg.PgPass))
	}
	if cfg.PgDB != "" {
		opts = append(opts, config.OptPgDB(cfg.PgDB))
	}
	return opts
}

// touchConfigFile checks if config file exists, and if not, it gets created.
func touchConfigFile(configPath string) {
	fileExists, _ := gnsys.FileExists(configPath)
	if fileExists {
		return
	}

	slog.Info("Creating config file", "path", configPath)
	createConfig(configPath)
}

// createConfig creates config file.
func createConfig(path string) {
	err := gnsys.MakeDir(filepath.Dir(path))
	if err != nil {
		slog.Error("Cannot create config dir", "error", err)
		os.Exit(1)
	}

	err = os.WriteFile(path, []byte(configText), 0644)
	if err != nil {
		slog.Error("Cannot write to config file", "error", err)
		os.Exit(1)
	}
}
