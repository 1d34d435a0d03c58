package main

import (
	"errors"
	"os"

	"github.com/optable/otlib/pkg/channel"
	"github.com/optable/otlib/pkg/ot"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	receiveCmd.Flags().StringP("in", "i", "", "one choice per line")
	receiveCmd.Flags().StringP("choices", "c", "", "comma separated choices, used when --in is not set")
	receiveCmd.Flags().Int("n", 2, "number of secrets per instance")
	receiveCmd.Flags().IntP("max-len", "l", 0, "maximum secret length in bytes, as used by the sender")
	receiveCmd.Flags().StringP("out", "o", "", "file the received secrets are written to (default is stdout)")
	receiveCmd.Flags().Bool("hex", false, "write each secret hex encoded at its full --max-len width instead of as trimmed text")
	for _, name := range []string{"in", "choices", "n", "max-len", "out", "hex"} {
		viper.BindPFlag("receive."+name, receiveCmd.Flags().Lookup(name))
	}
}

// readChoiceInput returns the choices from --in, or from --choices when
// no file is given.
func readChoiceInput() ([]int, error) {
	path := viper.GetString("receive.in")
	if path == "" {
		return parseChoices(viper.GetString("receive.choices"))
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return readChoices(f)
}

// receiveCmd represents the receive command
var receiveCmd = &cobra.Command{
	Use:   "receive",
	Short: "Wait for the sender and receive one batch of chosen secrets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		protocol, err := configuredProtocol()
		if err != nil {
			return err
		}
		maxLen := viper.GetInt("receive.max-len")
		if maxLen <= 0 {
			return errors.New("--max-len must be set to the sender's maximum secret length")
		}
		choices, err := readChoiceInput()
		if err != nil {
			return err
		}

		ctx, stop, logger := commandContext()
		defer stop()
		logger.Info("operating", "protocol", protocol.String(), "instances", len(choices), "max-len", maxLen)

		ch, err := channel.ListenAccept(ctx, viper.GetString("host"), viper.GetInt("port"))
		if err != nil {
			return err
		}
		defer ch.Close()

		session, err := ot.NewSession(ch, sessionOptions(logger)...)
		if err != nil {
			return err
		}
		receiver, err := ot.NewReceiver(protocol, session)
		if err != nil {
			return err
		}
		results, err := receiver.Receive(ctx, choices, viper.GetInt("receive.n"), maxLen)
		if err != nil {
			return err
		}

		out := os.Stdout
		if path := viper.GetString("receive.out"); path != "" {
			if out, err = os.Create(path); err != nil {
				return err
			}
			defer out.Close()
		}
		return writeResults(out, results, viper.GetBool("receive.hex"))
	},
}
