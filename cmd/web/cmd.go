package main

import (
	"fmt"
	"slices"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"wfquiz/internal/catalog"
	"wfquiz/internal/config"
)

func newCmd(cfg *config.Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("WFQUIZ")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:     "wfquiz",
		Short:   "A timed quiz on naming Windows Forms components from their picture.",
		Args:    cobra.NoArgs,
		Version: releaseVersion,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cfg.Verbose {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			}
			return cfg.Validate()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), cfg)
		},
	}

	pfs := cmd.PersistentFlags()
	fs := cmd.Flags()
	normalize := func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	}
	pfs.SetNormalizeFunc(normalize)
	fs.SetNormalizeFunc(normalize)

	pfs.StringVar(&cfg.CatalogFile, "catalog", cfg.CatalogFile, "path to a yaml roster of components and difficulties (env: WFQUIZ_CATALOG)")
	pfs.StringVar(&cfg.ImageDir, "image-dir", cfg.ImageDir, "directory holding one <name>.png per component (env: WFQUIZ_IMAGE_DIR)")
	pfs.StringVar(&cfg.Prefix, "prefix", cfg.Prefix, "path to prepend to all URLs, for use behind reverse proxy (env: WFQUIZ_PREFIX)")
	pfs.BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "display additional output (env: WFQUIZ_VERBOSE)")

	fs.StringVarP(&cfg.Bind, "bind", "b", cfg.Bind, "address to bind to (env: WFQUIZ_BIND)")
	fs.IntVarP(&cfg.Port, "port", "p", cfg.Port, "port to listen on (env: WFQUIZ_PORT)")
	fs.StringVar(&cfg.BaseURL, "base-url", cfg.BaseURL, "public URL encoded in the share QR code (env: WFQUIZ_BASE_URL)")
	fs.IntVar(&cfg.Rounds, "rounds", cfg.Rounds, "rounds per game (env: WFQUIZ_ROUNDS)")
	fs.IntVar(&cfg.Choices, "choices", cfg.Choices, "answer buttons on choice difficulties (env: WFQUIZ_CHOICES)")
	fs.DurationVar(&cfg.Cooldown, "cooldown", cfg.Cooldown, "time answer buttons stay disabled after a wrong pick (env: WFQUIZ_COOLDOWN)")
	fs.DurationVar(&cfg.SessionTimeout, "session-timeout", cfg.SessionTimeout, "time before idle sessions are dropped, 0 to keep them (env: WFQUIZ_SESSION_TIMEOUT)")
	fs.StringSliceVar(&cfg.CORSOrigins, "cors-origin", cfg.CORSOrigins, "origins allowed to call the JSON API cross-site (env: WFQUIZ_CORS_ORIGIN)")
	fs.BoolVarP(&cfg.Version, "version", "V", cfg.Version, "display version and exit (env: WFQUIZ_VERSION)")

	for _, set := range []*pflag.FlagSet{pfs, fs} {
		set.VisitAll(func(f *pflag.Flag) {
			_ = v.BindPFlag(f.Name, f)
			_ = v.BindEnv(f.Name)
			if !f.Changed && v.IsSet(f.Name) {
				_ = set.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
			}
		})
	}

	cmd.AddCommand(newCheckCmd(cfg))

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("wfquiz v{{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}

func newCheckCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Load every component image and list the ones that fail",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, _, failed, err := loadCatalog(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			slices.Sort(failed)
			for _, name := range failed {
				fmt.Fprintf(out, "invalid\t%s\n", name)
			}
			valid := len(cat.Valid())
			fmt.Fprintf(out, "%d of %d components valid\n", valid, cat.Len())
			if valid == 0 {
				return catalog.ErrNoValidItems
			}
			return nil
		},
	}
}
