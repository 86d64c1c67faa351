package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"inscricoes/internal/config"
	"inscricoes/internal/database"
	"inscricoes/internal/logging"
	"inscricoes/internal/shapefile"
	"inscricoes/internal/source"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "unknown"
)

// viperKey is the flag annotation naming the config key a flag overrides.
const viperKey = "viper_key"

// app carries what every command needs once configuration is loaded.
type app struct {
	v      *viper.Viper
	cfg    *config.Config
	log    zerolog.Logger
	closer io.Closer
	out    io.Writer

	configFile string
}

func newApp(out io.Writer) *app {
	log, closer := logging.New(logging.DefaultConfig())
	return &app{v: viper.New(), log: log, closer: closer, out: out}
}

// loader builds the input loader from the current configuration.
func (a *app) loader() *source.Loader {
	db := a.cfg.Database
	return &source.Loader{
		Charset: a.cfg.Charset,
		Shapefile: shapefile.Options{
			Fields:  a.cfg.Shapefile.Fields,
			Charset: a.cfg.Shapefile.Charset,
		},
		Database: database.DBConfig{
			Host:           db.Host,
			Port:           db.Port,
			Service:        db.Service,
			Username:       db.Username,
			Password:       db.Password,
			WalletLocation: db.WalletLocation,
			Timeout:        db.Timeout,
		},
		Logger: &a.log,
	}
}

// setup loads configuration for the command being run and replaces the
// bootstrap logger with the configured one.
func (a *app) setup(cmd *cobra.Command) error {
	var bindErr error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if keys := f.Annotations[viperKey]; len(keys) > 0 && bindErr == nil {
			bindErr = a.v.BindPFlag(keys[0], f)
		}
	})
	if bindErr != nil {
		return bindErr
	}

	config.LoadEnvFiles()
	cfg, err := config.Load(a.v, a.configFile)
	if err != nil {
		return err
	}
	a.cfg = cfg

	level := logging.ResolveLevel(cfg.LogLevel, cfg.Verbose, cfg.Quiet, cfg.EnvLogLevel)
	a.closer.Close()
	a.log, a.closer = logging.New(&logging.Config{
		Level:   level,
		Format:  cfg.LogFormat,
		Output:  cfg.LogOutput,
		NoColor: os.Getenv("NO_COLOR") != "",
	})
	if cfg.ConfigFile != "" {
		a.log.Debug().Str("file", cfg.ConfigFile).Msg("Using config file")
	}
	return nil
}

// bindFlag marks flag name of fs as an override for config key.
func bindFlag(fs *pflag.FlagSet, name, key string) {
	if err := fs.SetAnnotation(name, viperKey, []string{key}); err != nil {
		panic(fmt.Sprintf("bind flag %s: %v", name, err))
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "inscricoes",
		Short: "Clean and reconcile property registration identifiers",
		Long: `inscricoes cleans municipal property registration identifiers
("Inscrição imobiliária") in semicolon-delimited registry extracts.

  correct   strip leading zeros from the last identifier segment
  compare   list records of the corrected extract missing from the complete one
  run       correct, then compare the corrected output`,
		Version:       fmt.Sprintf("%s (%s)", version, commit),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}
	root.SetOut(a.out)

	pf := root.PersistentFlags()
	pf.StringVar(&a.configFile, "config", "", "config file (default is ./.inscricoes.yaml or $HOME/.inscricoes.yaml)")
	pf.BoolP("verbose", "v", false, "debug logging")
	pf.BoolP("quiet", "q", false, "only log warnings and errors")
	pf.String("log-level", "", "log level (trace, debug, info, warn, error)")
	pf.String("log-format", "", "log format (auto, console, json)")
	pf.String("log-output", "", "log destination (stderr, stdout, discard, or a file path)")
	pf.String("column", "", `identifier column (default "Inscrição imobiliária")`)
	pf.String("charset", "", `input charset label, or "auto" (default "auto")`)
	bindFlag(pf, "verbose", "verbose")
	bindFlag(pf, "quiet", "quiet")
	bindFlag(pf, "log-level", "log.level")
	bindFlag(pf, "log-format", "log.format")
	bindFlag(pf, "log-output", "log.output")
	bindFlag(pf, "column", "column")
	bindFlag(pf, "charset", "charset")

	root.AddCommand(newCompareCmd(a), newCorrectCmd(a), newRunCmd(a))
	return root
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a := newApp(os.Stdout)
	err := newRootCmd(a).ExecuteContext(ctx)
	if err != nil {
		a.log.Error().Err(err).Msg("Run failed")
	}
	a.closer.Close()
	if err != nil {
		os.Exit(1)
	}
}
