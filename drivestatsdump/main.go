package main

import (
	"bufio"
	"os"
	"runtime"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"machinerun.io/drivestats"
	"machinerun.io/drivestats/dump"
	"machinerun.io/drivestats/family"
)

var version = "dev"

func defaultPath() string {
	if runtime.GOOS == "windows" {
		return `C:\drive_stats.bin`
	}

	return "/var/log/drive_stats.bin"
}

func newApp() *cli.App {
	return &cli.App{
		Name:      "drive-stats-dump",
		Version:   version,
		Usage:     "Print the records of a drive stats log",
		ArgsUsage: "[file...]",
		Action:    dumpAction,
		Flags: []cli.Flag{
			&cli.UintFlag{
				Name:    "mask",
				Aliases: []string{"m"},
				Value:   uint(drivestats.DefaultMask),
				Base:    10,
				Usage: "output mask: 1=session headers 2=FRU headers 4=data headers 8=formatted data " +
					"16=raw data 32=write amplification 64=FCOP 256=debug",
			},
			&cli.BoolFlag{
				Name:    "raw",
				Aliases: []string{"r"},
				Usage:   "all headers and raw data (mask 23)",
			},
			&cli.BoolFlag{
				Name:  "lenient",
				Usage: "warn about unknown headers and keep going",
			},
			&cli.BoolFlag{
				Name:  "warn-param-len",
				Usage: "warn about log page parameters with unsupported lengths",
			},
			&cli.StringFlag{
				Name:  "tla-file",
				Usage: "yaml file with drive family TLA tables to use instead of the built in ones",
			},
		},
	}
}

func main() {
	err := newApp().Run(os.Args)
	if err != nil {
		log.Fatal(err)
	}
}

func dumpAction(c *cli.Context) error {
	mask := drivestats.Mask(c.Uint("mask"))
	if c.Bool("raw") {
		mask = drivestats.RawMask
	}

	log.SetLevel(log.WarnLevel)

	if mask.Has(drivestats.MaskDebug) {
		log.SetLevel(log.DebugLevel)
	}

	opts := dump.Options{
		Mask:         mask,
		Lenient:      c.Bool("lenient"),
		WarnParamLen: c.Bool("warn-param-len"),
		Logger:       log.StandardLogger(),
	}

	if path := c.String("tla-file"); path != "" {
		tables, err := loadTables(path)
		if err != nil {
			return err
		}

		opts.Families = family.NewClassifier(tables)
	}

	paths := c.Args().Slice()
	if len(paths) == 0 {
		paths = []string{defaultPath()}
	}

	out := bufio.NewWriter(c.App.Writer)

	err := dump.Files(c.Context, paths, out, opts)

	if ferr := out.Flush(); ferr != nil && err == nil {
		err = ferr
	}

	if err != nil {
		log.Debugf("dump failed: %s", err)
		return cli.Exit("", 1)
	}

	return nil
}

func loadTables(path string) (family.Tables, error) {
	fp, err := os.Open(path)
	if err != nil {
		return family.Tables{}, err
	}
	defer fp.Close()

	return family.Load(fp)
}
