package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/healthkeeper/internal/flagx"
)

// parseFlags populates Config from command-line flags.
//
//	-a string   gRPC bind address (e.g. ":50051")
//	-s string   token signing secret
//	-t int      token validity, minutes
//	-l string   log level
func parseFlags(config *Config) error {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-s", "-t", "-l"})

	fs := flag.NewFlagSet("gateway", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "address and port to run server")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	validity := fs.Int("t", int(config.TokenValidityDuration.Minutes()), "token validity (in minutes)")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		return err
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "t" {
			config.TokenValidityDuration = time.Duration(*validity) * time.Minute
		}
	})
	return nil
}
