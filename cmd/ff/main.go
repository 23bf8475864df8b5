package main

import (
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/ericpauley/go-quantize/quantize"
	"github.com/jmp/farbfeld"
	"github.com/jmp/farbfeld/catalog"
	"github.com/jmp/farbfeld/ffio"
	"github.com/urfave/cli/v2"
)

const defaultDB = "ff.db"

func init() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:    "version",
		Aliases: []string{"V"},
		Usage:   "print the version",
	}
}

func decodeInput(file string) (image.Image, error) {
	f, err := ffio.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, _, err := image.Decode(f)
	return m, err
}

func encodeOutput(file string, m image.Image) error {
	f, err := ffio.Create(file)
	if err != nil {
		return err
	}

	switch ext := strings.ToLower(filepath.Ext(ffio.Base(file))); ext {
	case ".ff":
		err = farbfeld.Encode(f, m)
	case ".png":
		err = png.Encode(f, m)
	case ".gif":
		err = gif.Encode(f, m, &gif.Options{
			NumColors: 256,
			Quantizer: quantize.MedianCutQuantizer{},
		})
	case ".jpg", ".jpeg":
		err = jpeg.Encode(f, m, nil)
	default:
		err = fmt.Errorf("unsupported output format \"%s\"", ext)
	}

	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return err
}

func main() {
	app := cli.NewApp()

	app.Name = "ff"
	app.Usage = "farbfeld image utility"
	app.Version = "1.0.0"

	cwd, err := os.Getwd()
	if err != nil {
		log.Fatal(err)
	}

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "db",
			EnvVars: []string{"FF_DB"},
			Value:   filepath.Join(cwd, defaultDB),
			Usage:   "path to catalog database",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "increase verbosity",
		},
	}

	app.Commands = []*cli.Command{
		{
			Name:      "info",
			Usage:     "Print farbfeld image dimensions",
			ArgsUsage: "FILE...",
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, "info", 1)
				}

				for _, file := range c.Args().Slice() {
					f, err := ffio.Open(file)
					if err != nil {
						return cli.Exit(err, 1)
					}

					config, err := farbfeld.DecodeConfig(f)
					f.Close()
					if err != nil {
						return cli.Exit(fmt.Errorf("%s: %w", file, err), 1)
					}

					fmt.Printf("%s: %dx%d\n", file, config.Width, config.Height)
				}

				return nil
			},
		},
		{
			Name:        "convert",
			Usage:       "Convert between farbfeld and png/gif/jpeg",
			Description: "The direction is inferred from the file extensions. Farbfeld files may carry an additional .zst or .gz suffix for transparent compression.",
			ArgsUsage:   "INPUT OUTPUT",
			Action: func(c *cli.Context) error {
				if c.NArg() != 2 {
					cli.ShowCommandHelpAndExit(c, "convert", 1)
				}

				m, err := decodeInput(c.Args().Get(0))
				if err != nil {
					return cli.Exit(err, 1)
				}

				if err := encodeOutput(c.Args().Get(1), m); err != nil {
					return cli.Exit(err, 1)
				}

				return nil
			},
		},
		{
			Name:      "scan",
			Usage:     "Scan filesystem and build the image catalog",
			ArgsUsage: "DIRECTORY",
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, "scan", 1)
				}

				logger := log.New(io.Discard, "", 0)
				if c.Bool("verbose") {
					logger.SetOutput(os.Stderr)
				}

				db, err := catalog.Open(c.String("db"))
				if err != nil {
					return cli.Exit(err, 1)
				}
				defer db.Close()

				if err := catalog.NewScanner(db, logger).Scan(c.Context, c.Args().First()); err != nil {
					return cli.Exit(err, 1)
				}

				return nil
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
