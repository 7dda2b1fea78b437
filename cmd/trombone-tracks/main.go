package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/trombonestudio/automation"
	"github.com/trombonestudio/automation/midicc"
	"github.com/trombonestudio/automation/studio"
	"github.com/trombonestudio/automation/version"
	"gitlab.com/gomidi/midi/v2"
)

var (
	output   = flag.String("o", "", "write the library to `file` (format from extension: .json, .yml, .yaml)")
	format   = flag.String("format", "", "output format when writing to stdout: json or yaml")
	compact  = flag.Bool("compact", false, "collapse runs of identical frames in every track")
	reverse  = flag.Bool("reverse", false, "reverse the frames of every track")
	lenient  = flag.Bool("lenient", false, "accept frames without the ti, td and ta keys, defaulting them to 0")
	stats    = flag.Bool("stats", false, "print per-parameter statistics of every track")
	dump     = flag.String("dump", "", "print the MIDI CC messages playing back `track` would send")
	channel  = flag.Uint("channel", 0, "MIDI channel (0-15) used by -dump")
	tractLen = flag.Float64("n", 44, "tract length of the engine used by -dump")
	showVer  = flag.Bool("version", false, "print version and exit")
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("trombone-tracks: ")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] [file]\n\nReads an automation library (JSON or YAML) from file or stdin.\n\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()
	if *showVer {
		fmt.Println(version.String())
		return
	}
	in := io.ReadCloser(os.Stdin)
	if a := flag.Args(); len(a) > 0 {
		f, err := os.Open(a[0])
		if err != nil {
			log.Fatal(err)
		}
		in = f
	}
	broker := studio.NewBroker()
	engine := automation.NewMemoryEngine(nil)
	model := studio.NewModel(broker, engine, nil, "")
	if err := model.ReadLibrary(in, automation.DecodeOptions{FillOptional: *lenient}); err != nil {
		log.Fatal(err)
	}
	for _, name := range model.Tracks().Names() {
		if err := model.Tracks().Select(name); err != nil {
			log.Fatal(err)
		}
		if *compact {
			model.Frames().Compact().Do()
		}
		if *reverse {
			model.Frames().Reverse().Do()
		}
	}
	if *stats {
		printStats(os.Stdout, model.Library())
	}
	if *dump != "" {
		if err := dumpTrack(os.Stdout, model.Library(), *dump); err != nil {
			log.Fatal(err)
		}
	}
	if err := write(model); err != nil {
		log.Fatal(err)
	}
}

func write(model *studio.Model) error {
	if *output != "" {
		f, err := os.Create(*output)
		if err != nil {
			return err
		}
		return model.WriteLibrary(f)
	}
	if *stats || *dump != "" {
		return nil
	}
	var b []byte
	var err error
	switch strings.ToLower(*format) {
	case "", "json":
		b, err = automation.Encode(model.Library())
	case "yaml", "yml":
		b, err = automation.EncodeYAML(model.Library())
	default:
		return fmt.Errorf("unknown format %q", *format)
	}
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(b)
	return err
}

func printStats(w io.Writer, lib automation.Library) {
	for _, name := range lib.Names() {
		t, _ := lib.Track(name)
		fmt.Fprintf(w, "%s: %d frames", name, t.Len())
		if t.Adjustment != nil {
			fmt.Fprintf(w, ", adjustment i=%.3f d=%.3f", t.Adjustment.I, t.Adjustment.D)
		}
		fmt.Fprintln(w)
		for _, d := range automation.Descriptors {
			s, ok := t.Stats(d.Key)
			if !ok {
				break
			}
			fmt.Fprintf(w, "  %-22s min %8.3f  max %8.3f  mean %8.3f\n", d.Name, s.Min, s.Max, s.Mean)
		}
	}
}

func dumpTrack(w io.Writer, lib automation.Library, name string) error {
	t, ok := lib.Track(name)
	if !ok {
		return fmt.Errorf("%w: %q", automation.ErrNoTrack, name)
	}
	defaults := map[automation.Param]float64{}
	for k, v := range automation.DefaultEngineValues {
		defaults[k] = v
	}
	defaults[automation.ParamTractLength] = *tractLen
	frame := 0
	send := func(msg midi.Message) error {
		_, err := fmt.Fprintf(w, "%6d  %s\n", frame, msg)
		return err
	}
	engine, err := midicc.New(automation.NewMemoryEngine(defaults), uint8(*channel), send, midicc.DefaultMappings(*tractLen))
	if err != nil {
		return err
	}
	player := studio.NewPlayer(engine)
	for frame = range t.Frames {
		player.Apply(t, frame)
	}
	return engine.Err()
}
