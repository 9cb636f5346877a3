package server

import (
	"github.com/bombsimon/logrusr"
	"github.com/go-logr/logr"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	ctrl "sigs.k8s.io/controller-runtime"

	"gradient-sdk/conf"
	"gradient-sdk/utils"
)

var (
	CommonOptions *Option
	Config        *conf.Configuration
)

// Logger: logger shared by every sub command, valid after the root command ran its pre-run hook
func Logger() logr.Logger {
	return ctrl.Log
}

func NewServerCommand() *cobra.Command {
	opts := NewOption()
	config := conf.NewConfiguration()
	cmd := &cobra.Command{
		Use:           "gradient [COMMAND]",
		Short:         "Gradient experiments command line client",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// config
			if err := config.Load(opts.ConfigPath); err != nil {
				return err
			}
			if err := opts.Apply(config); err != nil {
				return err
			}

			// logger
			if err := utils.InitLogger(config.Logging); err != nil {
				return err
			}
			ctrl.SetLogger(logrusr.NewLogger(logrus.StandardLogger()))
			logrus.Debugf("configurations: hosts=%+v, rest=%+v, logs=%+v", config.Hosts, config.Rest, config.Logs)

			// assign
			CommonOptions = opts
			Config = config
			return nil
		},
		Run: nil,
	}
	opts.Bind(cmd.PersistentFlags())
	return cmd
}
