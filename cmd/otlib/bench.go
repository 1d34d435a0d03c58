package main

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"net"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-logr/logr"
	"github.com/markkurossi/tabulate"
	"github.com/optable/otlib/pkg/channel"
	"github.com/optable/otlib/pkg/ot"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
)

func init() {
	benchCmd.Flags().BoolP("all", "a", false, "benchmark every protocol instead of --protocol")
	benchCmd.Flags().IntP("instances", "m", 1000, "number of OT instances")
	benchCmd.Flags().Int("n", 2, "number of secrets per instance (np only)")
	benchCmd.Flags().IntP("max-len", "l", 16, "secret length in bytes")
	for _, name := range []string{"all", "instances", "n", "max-len"} {
		viper.BindPFlag("bench."+name, benchCmd.Flags().Lookup(name))
	}
}

// benchResult is one protocol run seen from the sender.
type benchResult struct {
	protocol       ot.Protocol
	instances, n   int
	elapsed        time.Duration
	sent, received int64
}

// benchmark runs both parties of one batch in process over TCP loopback
// and checks every received secret.
func benchmark(ctx context.Context, logger logr.Logger, protocol ot.Protocol, m, n, maxLen int) (benchResult, error) {
	res := benchResult{protocol: protocol, instances: m, n: n}
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return res, err
	}
	port := l.Addr().(*net.TCPAddr).Port

	var sch, rch *channel.Channel
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		rch, err = channel.Accept(gctx, l)
		return err
	})
	g.Go(func() (err error) {
		sch, err = channel.Connect(gctx, "127.0.0.1", port)
		return err
	})
	if err := g.Wait(); err != nil {
		for _, ch := range []*channel.Channel{sch, rch} {
			if ch != nil {
				ch.Close()
			}
		}
		return res, err
	}
	defer sch.Close()
	defer rch.Close()

	opts := sessionOptions(logger)
	ss, err := ot.NewSession(sch, opts...)
	if err != nil {
		return res, err
	}
	rs, err := ot.NewSession(rch, opts...)
	if err != nil {
		return res, err
	}
	sender, err := ot.NewSender(protocol, ss)
	if err != nil {
		return res, err
	}
	receiver, err := ot.NewReceiver(protocol, rs)
	if err != nil {
		return res, err
	}

	secrets, choices, err := sample(rand.Reader, m, n, maxLen)
	if err != nil {
		return res, err
	}

	var results [][]byte
	start := time.Now()
	g, gctx = errgroup.WithContext(ctx)
	g.Go(func() error {
		return sender.Send(gctx, secrets, maxLen)
	})
	g.Go(func() (err error) {
		results, err = receiver.Receive(gctx, choices, n, maxLen)
		return err
	})
	if err := g.Wait(); err != nil {
		return res, err
	}
	res.elapsed = time.Since(start)
	res.sent, res.received = sch.Stats()

	for j, c := range choices {
		if string(results[j]) != string(secrets[j][c]) {
			return res, fmt.Errorf("%s: instance %d received the wrong secret", protocol, j)
		}
	}
	return res, nil
}

// sample returns m instances of n random secrets and random choices.
func sample(r io.Reader, m, n, maxLen int) ([][][]byte, []int, error) {
	secrets := make([][][]byte, m)
	for j := range secrets {
		secrets[j] = make([][]byte, n)
		for i := range secrets[j] {
			secrets[j][i] = make([]byte, maxLen)
			if _, err := io.ReadFull(r, secrets[j][i]); err != nil {
				return nil, nil, err
			}
		}
	}

	b := make([]byte, m)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, nil, err
	}
	choices := make([]int, m)
	for j := range choices {
		choices[j] = int(b[j]) % n
	}
	return secrets, choices, nil
}

func printResults(w io.Writer, results []benchResult) {
	tab := tabulate.New(tabulate.UnicodeLight)
	tab.Header("Protocol").SetAlign(tabulate.ML)
	tab.Header("OTs").SetAlign(tabulate.MR)
	tab.Header("N").SetAlign(tabulate.MR)
	tab.Header("Time").SetAlign(tabulate.MR)
	tab.Header("OT/s").SetAlign(tabulate.MR)
	tab.Header("Sent").SetAlign(tabulate.MR)
	tab.Header("Rcvd").SetAlign(tabulate.MR)

	for _, r := range results {
		row := tab.Row()
		row.Column(r.protocol.String())
		row.Column(humanize.Comma(int64(r.instances)))
		row.Column(fmt.Sprintf("%d", r.n))
		row.Column(r.elapsed.Round(time.Microsecond).String())
		row.Column(humanize.Comma(int64(float64(r.instances) / r.elapsed.Seconds())))
		row.Column(humanize.Bytes(uint64(r.sent)))
		row.Column(humanize.Bytes(uint64(r.received)))
	}
	tab.Print(w)
}

// benchCmd represents the bench command
var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Run sender and receiver in process over loopback and time them",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		protocols := []ot.Protocol{ot.ProtocolNaorPinkas, ot.ProtocolIKNP, ot.ProtocolPVW}
		if !viper.GetBool("bench.all") {
			p, err := configuredProtocol()
			if err != nil {
				return err
			}
			protocols = []ot.Protocol{p}
		}

		ctx, stop, logger := commandContext()
		defer stop()

		m := viper.GetInt("bench.instances")
		maxLen := viper.GetInt("bench.max-len")
		var results []benchResult
		for _, p := range protocols {
			n := 2
			if p == ot.ProtocolNaorPinkas {
				n = viper.GetInt("bench.n")
			}
			logger.Info("benchmarking", "protocol", p.String(), "instances", m)
			res, err := benchmark(ctx, logger, p, m, n, maxLen)
			if err != nil {
				return err
			}
			results = append(results, res)
		}
		printResults(os.Stdout, results)
		return nil
	},
}
