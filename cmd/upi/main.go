package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/lixenwraith/upi-engine/audio"
	"github.com/lixenwraith/upi-engine/config"
	"github.com/lixenwraith/upi-engine/preset"
	"github.com/lixenwraith/upi-engine/progressive"
	"github.com/lixenwraith/upi-engine/status"
	"github.com/lixenwraith/upi-engine/upi"
)

type options struct {
	debug      bool
	configPath string
	advance    int
	wavPath    string
	passes     int
	play       bool
	tui        bool
	presetName string
	listAll    bool
	saveAs     string
	bpm        int
	metrics    bool
	expr       string
}

func parseFlags(args []string) (options, error) {
	var o options
	fs := flag.NewFlagSet("upi", flag.ContinueOnError)
	fs.BoolVar(&o.debug, "debug", false, "Write logs to logs/upi.log")
	fs.StringVar(&o.configPath, "config", "", "YAML config file")
	fs.IntVar(&o.advance, "advance", 1, "Evaluate the expression N times")
	fs.StringVar(&o.wavPath, "wav", "", "Render the final result to a WAV file")
	fs.IntVar(&o.passes, "passes", 1, "Repetitions for -wav and -play")
	fs.BoolVar(&o.play, "play", false, "Play the final result through the speaker")
	fs.BoolVar(&o.tui, "tui", false, "Interactive terminal interface")
	fs.StringVar(&o.presetName, "preset", "", "Use the expression of a named preset")
	fs.BoolVar(&o.listAll, "presets", false, "List presets and exit")
	fs.StringVar(&o.saveAs, "save", "", "Save the expression as a user preset")
	fs.IntVar(&o.bpm, "bpm", 0, "Tempo override")
	fs.BoolVar(&o.metrics, "metrics", false, "Print counters on exit")
	if err := fs.Parse(args); err != nil {
		return o, err
	}
	o.expr = strings.Join(fs.Args(), " ")
	if o.advance < 1 {
		o.advance = 1
	}
	return o, nil
}

// app bundles the collaborators every mode shares
type app struct {
	cfg     *config.Config
	reg     *status.Registry
	parser  *upi.Parser
	presets *preset.Store
}

func newApp(o options) (*app, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	if o.bpm > 0 {
		cfg.Audio.BPM = o.bpm
	}

	reg := status.NewRegistry()
	engine := progressive.New(cfg.Engine.CacheCapacity,
		progressive.WithSeed(cfg.Engine.Seed),
		progressive.WithMetrics(reg),
	)
	parser := upi.NewParser(engine,
		upi.WithSeed(cfg.Engine.Seed),
		upi.WithMaxSteps(cfg.Engine.MaxSteps),
		upi.WithMetrics(reg),
	)

	store := preset.NewStore(cfg.PresetFile, parser)
	if _, err := store.Load(); err != nil {
		log.Printf("presets: %v", err)
	}

	return &app{cfg: cfg, reg: reg, parser: parser, presets: store}, nil
}

func main() {
	o, err := parseFlags(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		os.Exit(2)
	}

	if logFile := setupLogging(o.debug); logFile != nil {
		defer logFile.Close()
	}

	if err := run(o, os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "upi: %v\n", err)
		os.Exit(1)
	}
}

func run(o options, in io.Reader, out io.Writer) error {
	a, err := newApp(o)
	if err != nil {
		return err
	}

	if o.listAll {
		a.listPresets(out)
		return nil
	}

	expr := o.expr
	if o.presetName != "" {
		p, ok := a.presets.Get(o.presetName)
		if !ok {
			return fmt.Errorf("preset %q: %w", o.presetName, preset.ErrNotFound)
		}
		expr = p.Expression
	}

	if o.saveAs != "" {
		if err := a.savePreset(o.saveAs, expr); err != nil {
			return err
		}
		fmt.Fprintf(out, "saved %s\n", o.saveAs)
	}

	if o.tui {
		return runTUI(a, expr)
	}

	if expr == "" {
		return a.evalLines(in, out)
	}

	var res upi.Result
	for i := 0; i < o.advance; i++ {
		res = a.parser.Parse(expr)
		fmt.Fprintln(out, upi.Describe(res))
	}
	if !res.OK() {
		return res.Err
	}

	if err := a.output(o, res, out); err != nil {
		return err
	}
	if o.metrics {
		a.printMetrics(out)
	}
	return nil
}

// evalLines parses one expression per input line; repeating a line advances it
func (a *app) evalLines(in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fmt.Fprintln(out, upi.Describe(a.parser.Parse(line)))
	}
	return scanner.Err()
}

func (a *app) output(o options, res upi.Result, out io.Writer) error {
	if o.wavPath == "" && !o.play {
		return nil
	}
	bars := audio.BarsFromResult(res)
	settings := audio.SettingsFrom(a.cfg.Audio)

	if o.wavPath != "" {
		if err := audio.RenderWAVFile(o.wavPath, bars, settings, o.passes, a.reg); err != nil {
			return err
		}
		fmt.Fprintf(out, "wrote %s\n", o.wavPath)
	}

	if o.play {
		if !a.cfg.Audio.Enabled {
			fmt.Fprintln(out, "audio disabled")
			return nil
		}
		player := audio.NewPlayer(settings, a.cfg.Audio.MasterVolume, a.reg)
		if err := player.Init(); err != nil {
			return fmt.Errorf("audio init: %w", err)
		}
		defer player.Close()
		player.Play(bars)
		time.Sleep(audio.NewClickTrack(bars, settings).Duration() * time.Duration(o.passes))
	}
	return nil
}

func (a *app) savePreset(name, expr string) error {
	if expr == "" {
		return errors.New("no expression to save")
	}
	if err := a.presets.Put(preset.Preset{Name: name, Category: "User", Expression: expr}); err != nil {
		return err
	}
	return a.presets.Save()
}

func (a *app) listPresets(out io.Writer) {
	category := ""
	for _, p := range a.presets.List() {
		if p.Category != category {
			category = p.Category
			fmt.Fprintf(out, "%s:\n", category)
		}
		fmt.Fprintf(out, "  %-24s %-28s %s\n", p.Name, p.Expression, p.Description)
	}
}

func (a *app) printMetrics(out io.Writer) {
	counters := a.reg.Counters()
	keys := make([]string, 0, len(counters))
	for k := range counters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(out, "%s=%d\n", k, counters[k])
	}
}
