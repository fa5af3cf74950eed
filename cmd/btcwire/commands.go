package main

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/davecgh/go-spew/spew"
	"go.uber.org/zap"

	"github.com/suffix-labs/btcwire/pkg/address"
	"github.com/suffix-labs/btcwire/pkg/bip21"
	"github.com/suffix-labs/btcwire/pkg/keys"
	"github.com/suffix-labs/btcwire/pkg/peer"
	"github.com/suffix-labs/btcwire/pkg/txscript"
	"github.com/suffix-labs/btcwire/pkg/wire"
)

var dumpConfig = spew.ConfigState{
	Indent:                  "  ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

func decodeHex(s string) ([]byte, error) {
	b, err := hex.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("invalid hex: %w", err)
	}
	return b, nil
}

func cmdDecodeTx(args []string, out io.Writer) error {
	var opts globalOptions
	fs := newFlagSet("decodetx", &opts)
	dump := fs.Bool("dump", false, "dump the decoded structure")
	pos, err := parseArgs(fs, args, 1, "decodetx [options] <hex>")
	if err != nil {
		return err
	}
	cfg, _, err := opts.load(fs)
	if err != nil {
		return err
	}
	log := opts.logger()
	defer log.Sync() //nolint:errcheck

	b, err := decodeHex(pos[0])
	if err != nil {
		return err
	}
	tx, err := wire.DecodeTx(b, cfg.Limits.WireLimits())
	if err != nil {
		return err
	}
	log.Debug("decoded transaction",
		zap.Int("bytes", len(b)),
		zap.Int("inputs", len(tx.TxIn)),
		zap.Int("outputs", len(tx.TxOut)),
	)

	fmt.Fprintf(out, "txid:     %s\n", tx.TxHash())
	fmt.Fprintf(out, "wtxid:    %s\n", tx.WitnessHash())
	fmt.Fprintf(out, "version:  %d\n", tx.Version)
	fmt.Fprintf(out, "locktime: %d\n", tx.LockTime)
	fmt.Fprintf(out, "size:     %d\n", tx.SerializeSize())
	fmt.Fprintf(out, "weight:   %d\n", tx.Weight())
	fmt.Fprintf(out, "segwit:   %t\n", tx.HasWitness())
	for i, in := range tx.TxIn {
		fmt.Fprintf(out, "input %d:  %s seq=%d witness=%d\n",
			i, in.PreviousOutPoint, in.Sequence, len(in.Witness))
	}
	for i, txOut := range tx.TxOut {
		fmt.Fprintf(out, "output %d: %d sat %x\n", i, txOut.Value, txOut.PkScript)
	}

	if *dump {
		dumpConfig.Fdump(out, tx)
	}
	return nil
}

func cmdDecodeHeader(args []string, out io.Writer) error {
	var opts globalOptions
	fs := newFlagSet("decodeheader", &opts)
	pos, err := parseArgs(fs, args, 1, "decodeheader [options] <hex>")
	if err != nil {
		return err
	}

	b, err := decodeHex(pos[0])
	if err != nil {
		return err
	}
	h, err := wire.DecodeBlockHeader(b)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "hash:       %s\n", h.BlockHash())
	fmt.Fprintf(out, "version:    %d\n", h.Version)
	fmt.Fprintf(out, "prev:       %s\n", h.PrevBlock)
	fmt.Fprintf(out, "merkleroot: %s\n", h.MerkleRoot)
	fmt.Fprintf(out, "time:       %s\n", h.Time().UTC().Format(time.RFC3339))
	fmt.Fprintf(out, "bits:       %08x\n", h.Bits)
	fmt.Fprintf(out, "nonce:      %d\n", h.Nonce)
	return nil
}

func cmdDecodeMsg(args []string, out io.Writer) error {
	var opts globalOptions
	fs := newFlagSet("decodemsg", &opts)
	pos, err := parseArgs(fs, args, 1, "decodemsg [options] <hex>")
	if err != nil {
		return err
	}
	cfg, _, err := opts.load(fs)
	if err != nil {
		return err
	}
	mc, err := cfg.MessageConfig()
	if err != nil {
		return err
	}

	b, err := decodeHex(pos[0])
	if err != nil {
		return err
	}
	msg, err := wire.DecodeMessage(b, mc)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "network: %s\n", mc.Net)
	fmt.Fprintf(out, "command: %s\n", msg.Command())
	dumpConfig.Fdump(out, msg)
	return nil
}

func cmdPing(args []string, out io.Writer) error {
	var opts globalOptions
	fs := newFlagSet("ping", &opts)
	nonce := fs.Uint64("nonce", 0, "ping nonce")
	if _, err := parseArgs(fs, args, 0, "ping [options]"); err != nil {
		return err
	}
	cfg, _, err := opts.load(fs)
	if err != nil {
		return err
	}
	mc, err := cfg.MessageConfig()
	if err != nil {
		return err
	}

	b, err := wire.EncodeMessage(wire.NewMsgPing(*nonce), mc)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, hex.EncodeToString(b))
	return nil
}

func cmdAddress(args []string, out io.Writer) error {
	var opts globalOptions
	fs := newFlagSet("address", &opts)
	pos, err := parseArgs(fs, args, 1, "address [options] <address>")
	if err != nil {
		return err
	}
	_, params, err := opts.load(fs)
	if err != nil {
		return err
	}

	addr, err := address.DecodeAddress(pos[0], params)
	if err != nil {
		return err
	}
	pkScript, err := addr.PkScript()
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "address:  %s\n", addr)
	fmt.Fprintf(out, "type:     %s\n", txscript.GetScriptClass(pkScript))
	fmt.Fprintf(out, "program:  %x\n", addr.ScriptAddress())
	fmt.Fprintf(out, "pkscript: %x\n", pkScript)
	return nil
}

func cmdScript(args []string, out io.Writer) error {
	var opts globalOptions
	fs := newFlagSet("script", &opts)
	pos, err := parseArgs(fs, args, 1, "script [options] <hex>")
	if err != nil {
		return err
	}
	_, params, err := opts.load(fs)
	if err != nil {
		return err
	}

	pkScript, err := decodeHex(pos[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "type:    %s\n", txscript.GetScriptClass(pkScript))

	addr, err := address.FromPkScript(pkScript, params)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "address: %s\n", addr)
	return nil
}

func cmdWIF(args []string, out io.Writer) error {
	var opts globalOptions
	fs := newFlagSet("wif", &opts)
	pos, err := parseArgs(fs, args, 1, "wif [options] <wif>")
	if err != nil {
		return err
	}
	_, params, err := opts.load(fs)
	if err != nil {
		return err
	}

	w, err := keys.DecodeWIFForNet(pos[0], params)
	if err != nil {
		return err
	}
	pubKey := w.PubKeyBytes()
	pkHash := txscript.Hash160(pubKey)

	p2pkh, err := address.NewAddressPubKeyHash(pkHash, params)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "pubkey: %x\n", pubKey)
	fmt.Fprintf(out, "p2pkh:  %s\n", p2pkh)

	// Segwit v0 only commits to compressed keys.
	if w.CompressPubKey {
		p2wpkh, err := address.NewAddressWitnessPubKeyHash(pkHash, params)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "p2wpkh: %s\n", p2wpkh)
	}
	return nil
}

func cmdURI(args []string, out io.Writer) error {
	var opts globalOptions
	fs := newFlagSet("uri", &opts)
	pos, err := parseArgs(fs, args, 1, "uri [options] <uri>")
	if err != nil {
		return err
	}
	_, params, err := opts.load(fs)
	if err != nil {
		return err
	}

	req, err := bip21.Parse(pos[0], params)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "address: %s\n", req.Address)
	if req.Amount != nil {
		fmt.Fprintf(out, "amount:  %s BTC (%d sat)\n", bip21.FormatAmount(*req.Amount), *req.Amount)
	} else {
		fmt.Fprintln(out, "amount:  (payer specified)")
	}
	if req.Label != nil {
		fmt.Fprintf(out, "label:   %s\n", *req.Label)
	}
	if req.Message != nil {
		fmt.Fprintf(out, "message: %s\n", *req.Message)
	}
	for k, v := range req.Params {
		fmt.Fprintf(out, "param:   %s=%s\n", k, v)
	}
	fmt.Fprintf(out, "encoded: %s\n", req)
	return nil
}

// parseSigHashType parses names like "all" or "single|anyonecanpay".
func parseSigHashType(s string) (txscript.SigHashType, error) {
	base, acp, hasACP := strings.Cut(strings.ToLower(s), "|")

	var t txscript.SigHashType
	switch base {
	case "all":
		t = txscript.SigHashAll
	case "none":
		t = txscript.SigHashNone
	case "single":
		t = txscript.SigHashSingle
	default:
		return 0, fmt.Errorf("unknown sighash type %q", s)
	}
	if hasACP {
		if acp != "anyonecanpay" {
			return 0, fmt.Errorf("unknown sighash modifier %q", acp)
		}
		t |= txscript.SigHashAnyOneCanPay
	}
	return t, nil
}

func cmdSigHash(args []string, out io.Writer) error {
	var opts globalOptions
	fs := newFlagSet("sighash", &opts)
	txHex := fs.String("tx", "", "unsigned transaction hex")
	idx := fs.Int("input", 0, "input index")
	amount := fs.Int64("amount", 0, "value of the spent output in satoshis")
	scriptHex := fs.String("script-code", "", "script code hex")
	typeName := fs.String("type", "all", "sighash type, e.g. all or single|anyonecanpay")
	if _, err := parseArgs(fs, args, 0, "sighash --tx <hex> --input <n> --amount <sat> --script-code <hex>"); err != nil {
		return err
	}
	cfg, _, err := opts.load(fs)
	if err != nil {
		return err
	}

	hashType, err := parseSigHashType(*typeName)
	if err != nil {
		return err
	}
	b, err := decodeHex(*txHex)
	if err != nil {
		return err
	}
	tx, err := wire.DecodeTx(b, cfg.Limits.WireLimits())
	if err != nil {
		return err
	}
	scriptCode, err := decodeHex(*scriptHex)
	if err != nil {
		return err
	}

	hash, err := txscript.CalcWitnessSigHash(scriptCode, nil, hashType, tx, *idx, *amount)
	if err != nil {
		return err
	}
	// Signers consume the digest in internal byte order.
	fmt.Fprintln(out, hex.EncodeToString(hash[:]))
	return nil
}

var errPong = errors.New("pong received")

func cmdProbe(args []string, out io.Writer) error {
	var opts globalOptions
	fs := newFlagSet("probe", &opts)
	timeout := fs.Duration("timeout", 10*time.Second, "overall timeout")
	pos, err := parseArgs(fs, args, 1, "probe [options] <host:port>")
	if err != nil {
		return err
	}
	cfg, _, err := opts.load(fs)
	if err != nil {
		return err
	}
	mc, err := cfg.MessageConfig()
	if err != nil {
		return err
	}
	log := opts.logger()
	defer log.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	var d net.Dialer
	nc, err := d.DialContext(ctx, "tcp", pos[0])
	if err != nil {
		return err
	}
	defer nc.Close()
	// Reads only observe cancellation once the socket is closed.
	stopClose := context.AfterFunc(ctx, func() { nc.Close() })
	defer stopClose()

	conn, err := peer.NewConn(nc, mc, log.With(zap.String("peer", pos[0])))
	if err != nil {
		return err
	}

	nonce := rand.Uint64()
	start := time.Now()
	if err := conn.WriteMessage(wire.NewMsgPing(nonce)); err != nil {
		return err
	}

	err = conn.Serve(ctx, func(_ context.Context, msg wire.Message) error {
		if pong, ok := msg.(*wire.MsgPong); ok && pong.Nonce == nonce {
			return errPong
		}
		log.Debug("ignoring message", zap.String("command", msg.Command()))
		return nil
	})
	if !errors.Is(err, errPong) {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return err
	}

	stats := conn.Stats()
	fmt.Fprintf(out, "pong from %s in %s (sent %d bytes, read %d bytes)\n",
		pos[0], time.Since(start).Round(time.Millisecond), stats.BytesWritten, stats.BytesRead)
	return nil
}
