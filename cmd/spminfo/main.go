package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mdouchement/nanoscope"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/image/tiff"
	"gopkg.in/yaml.v3"
)

type config struct {
	Input   string
	Channel string
	Tiff    string
	YAML    bool
	Flip    bool
	Derive  bool
	Verbose bool
}

func main() {
	cfg := parseFlags()

	if cfg.Input == "" {
		flag.Usage()
		os.Exit(1)
	}

	if err := run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "spminfo: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags() *config {
	cfg := &config{}

	flag.StringVar(&cfg.Channel, "channel", "", "Channel to export (default: first channel)")
	flag.StringVar(&cfg.Tiff, "tiff", "", "Export the channel as a 16-bit grayscale TIFF")
	flag.BoolVar(&cfg.YAML, "yaml", false, "Dump the header as YAML")
	flag.BoolVar(&cfg.Flip, "flip", false, "Flip images vertically")
	flag.BoolVar(&cfg.Derive, "derive", false, "Derive image hard scales from the Z scale hard value")
	flag.BoolVar(&cfg.Verbose, "v", false, "Verbose output")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] <file.spm>\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Print the header and channels of a Nanoscope SPM file\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	if flag.NArg() > 0 {
		cfg.Input = flag.Arg(0)
	}
	return cfg
}

func run(cfg *config) error {
	level := zerolog.InfoLevel
	if cfg.Verbose {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(level).
		With().Timestamp().Logger()

	f, err := nanoscope.OpenWithOptions(cfg.Input, nanoscope.Options{
		Logger:          &logger,
		FlipVertical:    cfg.Flip,
		DeriveHardScale: cfg.Derive,
	})
	if err != nil {
		return err
	}
	logger.Info().Str("file", f.Name).Strs("channels", f.Channels()).Msg("decoded")

	if cfg.YAML {
		return dumpYAML(f)
	}

	channel := cfg.Channel
	if channel == "" {
		channels := f.Channels()
		if len(channels) == 0 {
			return errors.New("no image in file")
		}
		channel = channels[0]
	}
	m, err := f.Image(channel)
	if err != nil {
		return err
	}

	if cfg.Tiff != "" {
		return export(m, cfg.Tiff, logger)
	}

	printHeader(f)
	fmt.Println()
	for _, c := range f.Channels() {
		m, _ := f.Image(c)
		px, py := m.PixelSize()
		lo, hi := m.Range()
		fmt.Printf("%-12s %s\n", c, m)
		fmt.Printf("%-12s pixel %s x %s, range [%g, %g] %s\n", "", px, py, lo, hi, m.Unit)
	}
	return nil
}

func printHeader(f *nanoscope.File) {
	for _, s := range f.Sections() {
		fmt.Printf("[%s]\n", s.Name)
		for _, p := range s.Parameters {
			v, err := f.Table().ValueOf(p, s.Index)
			if err != nil {
				fmt.Printf("  %-32s %s (%v)\n", p.Key(), p.Raw(), err)
				continue
			}
			fmt.Printf("  %-32s %s\n", p.Key(), v)
		}
	}
}

// dumpYAML writes the header sections in file order. Repeated labels of a
// section are kept as separate entries.
func dumpYAML(f *nanoscope.File) error {
	root := &yaml.Node{Kind: yaml.MappingNode}
	for _, s := range f.Sections() {
		section := &yaml.Node{Kind: yaml.MappingNode}
		for _, p := range s.Parameters {
			v, err := f.Table().ValueOf(p, s.Index)
			if err != nil {
				v = p.Raw()
			}

			value := &yaml.Node{}
			if err := value.Encode(v.Interface()); err != nil {
				return errors.Wrap(err, p.Key())
			}
			section.Content = append(section.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Value: p.Key()},
				value,
			)
		}

		name := s.Name
		if s.Number > 0 {
			name = fmt.Sprintf("%s %d", s.Name, s.Number)
		}
		root.Content = append(root.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: name},
			section,
		)
	}

	enc := yaml.NewEncoder(os.Stdout)
	enc.SetIndent(2)
	if err := enc.Encode(root); err != nil {
		return err
	}
	return enc.Close()
}

func export(m *nanoscope.Image, path string, logger zerolog.Logger) error {
	if !strings.HasSuffix(strings.ToLower(path), ".tif") && !strings.HasSuffix(strings.ToLower(path), ".tiff") {
		logger.Warn().Str("path", path).Msg("output has no TIFF extension")
	}

	w, err := os.Create(path)
	if err != nil {
		return err
	}
	defer w.Close()

	if err := tiff.Encode(w, m.Gray16(), &tiff.Options{Compression: tiff.Deflate}); err != nil {
		return errors.Wrap(err, "encode tiff")
	}
	lo, hi := m.Range()
	logger.Info().Str("channel", m.Channel).Str("path", path).
		Float64("min", lo).Float64("max", hi).Str("unit", m.Unit).
		Msg("exported")
	return w.Close()
}
