package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"

	"gfx.cafe/util/go/gotel"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"gfx.cafe/gfx/pgdial/lib/auth/credentials"
	"gfx.cafe/gfx/pgdial/lib/dial"
	"gfx.cafe/gfx/pgdial/lib/fed/middlewares/tracing"
	packets "gfx.cafe/gfx/pgdial/lib/fed/packets/v3.0"
)

var (
	flagHost     string
	flagPort     int
	flagUser     string
	flagPassword string
	flagDatabase string
	flagSSLMode  string
	flagAppName  string
	flagVerbose  bool
)

var rootCmd = &cobra.Command{
	Use:   "pgdial",
	Short: "connect to a PostgreSQL server and report the session",
	Long: "pgdial runs the PostgreSQL startup sequence against a server, " +
		"prints the session parameters and backend key it negotiated, and " +
		"terminates cleanly.",
	RunE: run,

	SilenceUsage: true,
}

func init() {
	registerFlags(rootCmd.Flags(), loadConfig())
}

func registerFlags(flags *pflag.FlagSet, conf Config) {
	flags.StringVar(&flagHost, "host", conf.PGHost, "server host or unix socket directory")
	flags.IntVarP(&flagPort, "port", "p", conf.PGPort, "server port")
	flags.StringVarP(&flagUser, "user", "U", conf.PGUser, "user to connect as")
	flags.StringVar(&flagPassword, "password", conf.PGPassword, "password")
	flags.StringVarP(&flagDatabase, "dbname", "d", conf.PGDatabase, "database to connect to")
	flags.StringVar(&flagSSLMode, "sslmode", conf.PGSSLMode, "disable, prefer or require")
	flags.StringVar(&flagAppName, "application-name", conf.PGAppName, "application_name to report")
	flags.BoolVarP(&flagVerbose, "verbose", "v", false, "debug logging")
}

func run(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	options := dial.Options{
		Network:  "tcp",
		Address:  net.JoinHostPort(flagHost, strconv.Itoa(flagPort)),
		Username: flagUser,
		Database: flagDatabase,
		SSLMode:  dial.SSLMode(flagSSLMode),
		Logger:   logger,
	}
	if strings.HasPrefix(flagHost, "/") {
		options.Network = "unix"
		options.Address = fmt.Sprintf("%s/.s.PGSQL.%d", flagHost, flagPort)
	}
	if flagPassword != "" {
		options.Credentials = credentials.Cleartext{
			Username: flagUser,
			Password: flagPassword,
		}
	}
	if flagVerbose {
		options.Middleware = append(options.Middleware, tracing.NewPacketTrace())
	}
	if flagAppName != "" {
		options.Parameters = append(options.Parameters, packets.StartupParameter{
			Key:   "application_name",
			Value: flagAppName,
		})
	}

	client, connection, err := dial.Dial(ctx, options)
	if err != nil {
		return err
	}

	done := make(chan error, 1)
	go func() {
		done <- connection.Run(ctx)
	}()

	key := connection.BackendKey()
	fmt.Printf("connected, backend pid %d\n", key.ProcessID)

	parameters := connection.Parameters()
	names := make([]string, 0, len(parameters))
	for name := range parameters {
		names = append(names, name.String())
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %s = %s\n", name, connection.Parameter(name))
	}

	client.Close()
	return <-done
}

func newLogger() (*zap.Logger, error) {
	if flagVerbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func main() {
	fn, _ := gotel.InitTracing(context.Background(), gotel.WithServiceName("pgdial"))
	defer fn(context.Background())

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
