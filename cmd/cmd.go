package cmd

import (
	"fmt"

	"github.com/fatih/color"
	cli "gopkg.in/urfave/cli.v1"
)

// Version defines the version number for the cli.
var Version = "0.1"

// HelpTemplate is the help text shared by the ftptrap commands.
var HelpTemplate = `NAME:
{{.Name}} - {{.Usage}}

DESCRIPTION:
{{.Description}}

USAGE:
{{.Name}} {{if .Flags}}[flags] {{end}}command{{if .Flags}}{{end}} [arguments...]

COMMANDS:
{{range .Commands}}{{join .Names ", "}}{{ "\t" }}{{.Usage}}
{{end}}{{if .Flags}}
FLAGS:
{{range .Flags}}{{.}}
{{end}}{{end}}
VERSION:
` + Version +
	`{{ "\n"}}`

// VersionAction defines the action called when seeking the Version detail.
func VersionAction(c *cli.Context) {
	fmt.Println(color.YellowString("ftptrap %s: FTP honeypot.", Version))
}
