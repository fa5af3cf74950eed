// btcwire CLI - Bitcoin wire format inspector
//
// The CLI decodes transactions, block headers and framed P2P messages,
// inspects addresses, keys and payment URIs, computes segwit signature
// hashes, and can probe a peer with a ping.
//
// Example usage:
//
//	# Decode a raw transaction
//	btcwire decodetx 0100000001...
//
//	# Decode a framed message using a custom network config
//	btcwire decodemsg --config node.yaml f9beb4d970696e67...
//
//	# Parse a BIP 21 payment request
//	btcwire uri "bitcoin:bc1q...?amount=0.001"
//
//	# Ping a regtest node
//	btcwire probe --network regtest 127.0.0.1:18444
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/suffix-labs/btcwire/pkg/chaincfg"
	"github.com/suffix-labs/btcwire/pkg/config"
	"github.com/suffix-labs/btcwire/pkg/wire"
)

const version = "v0.1.0"

func main() {
	if len(os.Args) < 2 {
		printUsage(os.Stderr)
		os.Exit(1)
	}

	if err := run(os.Args[1], os.Args[2:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(command string, args []string, out io.Writer) error {
	switch command {
	case "decodetx":
		return cmdDecodeTx(args, out)
	case "decodeheader":
		return cmdDecodeHeader(args, out)
	case "decodemsg":
		return cmdDecodeMsg(args, out)
	case "ping":
		return cmdPing(args, out)
	case "address":
		return cmdAddress(args, out)
	case "script":
		return cmdScript(args, out)
	case "wif":
		return cmdWIF(args, out)
	case "uri":
		return cmdURI(args, out)
	case "sighash":
		return cmdSigHash(args, out)
	case "probe":
		return cmdProbe(args, out)
	case "version":
		fmt.Fprintf(out, "btcwire %s (%s encode buffers)\n", version, wire.AllocProfile)
		return nil
	case "help", "--help", "-h":
		printUsage(out)
		return nil
	default:
		printUsage(os.Stderr)
		return fmt.Errorf("unknown command %q", command)
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `btcwire - Bitcoin wire format inspector

Usage:
  btcwire <command> [options] [args]

Commands:
  decodetx <hex>              Decode a raw transaction
  decodeheader <hex>          Decode an 80-byte block header
  decodemsg <hex>             Decode a framed P2P message
  ping                        Encode a framed ping message
  address <address>           Decode an address and show its output script
  script <hex>                Show the address paying to an output script
  wif <wif>                   Show the keys and addresses of a WIF private key
  uri <uri>                   Parse a BIP 21 payment request
  sighash                     Compute a BIP 143 signature hash
  probe <host:port>           Ping a peer and wait for its pong
  version                     Show version information
  help                        Show this help message

Common options:
  --network <name>            Network (mainnet, testnet3, regtest, signet)
  --config <path>             YAML config file
  -v, --verbose               Log decoding details to stderr

Run 'btcwire <command> --help' for command options.`)
}

// globalOptions are the flags every command accepts.
type globalOptions struct {
	network    string
	configPath string
	verbose    bool
}

func newFlagSet(name string, opts *globalOptions) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.StringVar(&opts.network, "network", "mainnet", "network name")
	fs.StringVar(&opts.configPath, "config", "", "YAML config file")
	fs.BoolVarP(&opts.verbose, "verbose", "v", false, "verbose logging")
	return fs
}

// load resolves the configuration. A --network flag overrides the file.
func (o *globalOptions) load(fs *pflag.FlagSet) (*config.Config, *chaincfg.Params, error) {
	cfg := config.Default()
	if o.configPath != "" {
		var err error
		if cfg, err = config.LoadFile(o.configPath); err != nil {
			return nil, nil, err
		}
	}
	if fs.Changed("network") {
		cfg.Network = o.network
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	params, err := cfg.Params()
	if err != nil {
		return nil, nil, err
	}
	return cfg, params, nil
}

func (o *globalOptions) logger() *zap.Logger {
	if !o.verbose {
		return zap.NewNop()
	}
	log, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return log
}

// parseArgs parses flags and requires exactly n positional arguments.
func parseArgs(fs *pflag.FlagSet, args []string, n int, usage string) ([]string, error) {
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != n {
		return nil, fmt.Errorf("usage: btcwire %s", usage)
	}
	return fs.Args(), nil
}
