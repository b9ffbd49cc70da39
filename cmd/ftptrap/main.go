/*
* Honeytrap
* Copyright (C) 2016-2018 DutchSec (https://dutchsec.com/)
*
* This program is free software; you can redistribute it and/or modify it under
* the terms of the GNU Affero General Public License version 3 as published by the
* Free Software Foundation.
*
* This program is distributed in the hope that it will be useful, but WITHOUT
* ANY WARRANTY; without even the implied warranty of MERCHANTABILITY or FITNESS
* FOR A PARTICULAR PURPOSE.  See the GNU Affero General Public License for more
* details.
*
* You should have received a copy of the GNU Affero General Public License
* version 3 along with this program in the file "LICENSE".  If not, see
* <http://www.gnu.org/licenses/agpl-3.0.txt>.
*
* See https://honeytrap.io/ for more details. All requests should be sent to
* licensing@honeytrap.io
*
* The interactive user interfaces in modified source and object code versions
* of this program must display Appropriate Legal Notices, as required under
* Section 5 of the GNU Affero General Public License version 3.
*
* In accordance with Section 7(b) of the GNU Affero General Public License version 3,
* these Appropriate Legal Notices must retain the display of the "Powered by
* Honeytrap" logo and retain the original copyright notice. If the display of the
* logo is not reasonably feasible for technical reasons, the Appropriate Legal Notices
* must display the words "Powered by Honeytrap" and retain the original copyright notice.
 */
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/honeytrap/ftptrap/cmd"
	"github.com/honeytrap/ftptrap/config"
	"github.com/honeytrap/ftptrap/listener"
	"github.com/honeytrap/ftptrap/server"
	logging "github.com/op/go-logging"
	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"
)

var log = logging.MustGetLogger("ftptrap/cmd/ftptrap")

var globalFlags = []cli.Flag{
	cli.StringFlag{
		Name:  "config, c",
		Usage: "Load configuration from `FILE`",
	},
	cli.StringFlag{
		Name:  "data-dir",
		Usage: "Store the event archive and token in `DIR`",
	},
	cli.BoolFlag{Name: "no-console", Usage: "Do not read operator commands from stdin"},
}

// loadConfig layers the config file, the environment and the flags on top
// of the defaults, in that order.
func loadConfig(c *cli.Context) (config.Config, error) {
	conf := config.Default

	if p := c.GlobalString("config"); p != "" {
		f, err := os.Open(p)
		if err != nil {
			return conf, errors.Wrap(err, "could not open config file")
		}

		defer f.Close()

		conf, err = conf.Load(f)
		if err != nil {
			return conf, err
		}
	}

	conf, err := conf.WithEnv(os.LookupEnv)
	if err != nil {
		return conf, err
	}

	if v := c.GlobalString("data-dir"); v != "" {
		conf.DataDir = v
	}

	return conf, nil
}

func serve(c *cli.Context) error {
	conf, err := loadConfig(c)
	if err != nil {
		return cli.NewExitError(color.RedString("Error loading configuration: %s", err.Error()), 1)
	}

	closer, err := config.SetupLogging(conf.Logging)
	if err != nil {
		return cli.NewExitError(color.RedString("Error setting up logging: %s", err.Error()), 1)
	}

	defer closer.Close()

	options := []server.OptionFn{
		server.WithConfig(conf),
	}

	if c.GlobalBool("no-console") {
		options = append(options, server.WithoutConsole())
	}

	srv, err := server.New(options...)
	if err != nil {
		return cli.NewExitError(color.RedString(err.Error()), 1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := make(chan os.Signal, 1)
	signal.Notify(s, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(s)

	go func() {
		select {
		case sig := <-s:
			log.Infof("Received %s, stopping", sig)
			srv.Shutdown()
		case <-ctx.Done():
		}
	}()

	if err := srv.Run(ctx); err != nil {
		if _, ok := err.(*listener.StartError); ok {
			// already reported on the terminal
			return cli.NewExitError("", 1)
		}

		return cli.NewExitError(color.RedString(err.Error()), 1)
	}

	return nil
}

func main() {
	app := cli.NewApp()
	app.Name = "ftptrap"
	app.Author = ""
	app.Usage = "ftptrap"
	app.Version = cmd.Version
	app.Flags = globalFlags
	app.Description = `ftptrap: a decoy FTP server recording logins and uploads.`
	app.CustomAppHelpTemplate = cmd.HelpTemplate
	app.Commands = []cli.Command{
		{
			Name:   "version",
			Usage:  "Print the version",
			Action: cmd.VersionAction,
		},
	}

	app.Action = serve

	app.RunAndExitOnError()
}
