package main

import (
	"github.com/optable/otlib/pkg/channel"
	"github.com/optable/otlib/pkg/ot"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	sendCmd.Flags().StringP("in", "i", "sender-secrets.txt", "one OT instance per line, secrets separated by commas")
	sendCmd.Flags().IntP("max-len", "l", 0, "maximum secret length in bytes (default is the longest secret)")
	viper.BindPFlag("send.in", sendCmd.Flags().Lookup("in"))
	viper.BindPFlag("send.max-len", sendCmd.Flags().Lookup("max-len"))
}

// sendCmd represents the send command
var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Dial the receiver and send one batch of secrets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		protocol, err := configuredProtocol()
		if err != nil {
			return err
		}

		ctx, stop, logger := commandContext()
		defer stop()

		secrets, err := readSecretsFile(viper.GetString("send.in"))
		if err != nil {
			return err
		}
		maxLen := viper.GetInt("send.max-len")
		if maxLen == 0 {
			maxLen = longest(secrets)
		}
		logger.Info("operating", "protocol", protocol.String(), "instances", len(secrets), "max-len", maxLen)

		ch, err := channel.Connect(ctx, viper.GetString("host"), viper.GetInt("port"))
		if err != nil {
			return err
		}
		defer ch.Close()

		session, err := ot.NewSession(ch, sessionOptions(logger)...)
		if err != nil {
			return err
		}
		sender, err := ot.NewSender(protocol, session)
		if err != nil {
			return err
		}
		return sender.Send(ctx, secrets, maxLen)
	},
}
