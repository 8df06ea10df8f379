// Command fsprobe estimates the true sampling rate of a physiological
// recording from the position of a known rhythm in its spectrum.
//
// Usage:
//
//	fsprobe --bpm 71 [flags] [file]
//
// Without a file argument the lexicographically first file matching --pattern
// is analysed.
//
// Examples:
//
//	fsprobe --bpm 71
//	fsprobe --hz 1.183 --band-low 0.02 --band-high 0.08 data/session1.csv
//	fsprobe --bpm 71 --assumed-fps 60 --plot psd.png -v
package main

import (
	"fmt"
	"os"

	"github.com/alexflint/go-arg"

	"github.com/RyanBlaney/fsprobe/algorithms/filters"
	"github.com/RyanBlaney/fsprobe/algorithms/spectral"
	"github.com/RyanBlaney/fsprobe/algorithms/windowing"
	"github.com/RyanBlaney/fsprobe/dataset"
	"github.com/RyanBlaney/fsprobe/estimator"
	"github.com/RyanBlaney/fsprobe/estimator/config"
	"github.com/RyanBlaney/fsprobe/logging"
	"github.com/RyanBlaney/fsprobe/report"
)

type cliArgs struct {
	Input  string `arg:"positional" help:"signal file; defaults to the first match of --pattern"`
	Config string `arg:"-c,--config" help:"JSON configuration file"`

	BPM         float64  `arg:"--bpm" help:"target rhythm in beats per minute"`
	Hz          float64  `arg:"--hz" help:"target rhythm in Hz; overrides --bpm"`
	BandLow     *float64 `arg:"--band-low" help:"lower search bound in cycles/sample [0.01]"`
	BandHigh    *float64 `arg:"--band-high" help:"upper search bound in cycles/sample [0.1]"`
	Segment     *int     `arg:"-n,--segment" help:"segment length in samples, clamped to the signal length [1024]"`
	Overlap     *float64 `arg:"--overlap" help:"segment overlap as a fraction of the segment length [0.5]"`
	Method      string   `arg:"--method" help:"psd method: welch or pwelch"`
	Window      string   `arg:"--window" help:"window: hann, hamming, blackman, bartlett, rectangular"`
	Detrend     string   `arg:"--detrend" help:"per-segment detrend: constant, linear or none"`
	FFT         string   `arg:"--fft" help:"fft backend: godsp or gonum"`
	AssumedRate float64  `arg:"--assumed-fps" help:"rate the recording was believed to have; reports the correction factor"`

	Pattern    string `arg:"-p,--pattern" help:"glob used to discover input files [data/*.csv]"`
	Column     *int   `arg:"--column" help:"0-based signal column [1]"`
	ColumnName string `arg:"--column-name" help:"signal column by header name"`
	Delimiter  string `arg:"-d,--delimiter" help:"field delimiter [,]"`
	NoHeader   bool   `arg:"--no-header" help:"input has no header row"`

	Plot      string `arg:"--plot" help:"write a PSD plot to this file (png, svg, pdf)"`
	JSON      bool   `arg:"--json" help:"print the result as JSON"`
	Verbose   bool   `arg:"-v,--verbose" help:"print diagnostics and debug logs"`
	LogLevel  string `arg:"--log-level" help:"debug, info, warn or error [warn]"`
	ListFiles bool   `arg:"--list" help:"list discovered input files and exit"`
}

func (cliArgs) Description() string {
	return "fsprobe estimates the true sampling rate of a recording from a known physiological rhythm."
}

func main() {
	var args cliArgs
	arg.MustParse(&args)

	if err := run(&args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run(args *cliArgs) error {
	if err := configureLogging(args); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	logger := logging.WithFields(logging.Fields{"component": "fsprobe"})

	cfg, err := buildConfig(args)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	if args.ListFiles {
		files, err := dataset.Discover(cfg.Input.Pattern)
		if err != nil {
			return fmt.Errorf("discover: %w", err)
		}
		for _, f := range files {
			fmt.Println(f)
		}
		return nil
	}

	if err := cfg.Estimator.ValidateTarget(); err != nil {
		return fmt.Errorf("config: %w (set --bpm or --hz)", err)
	}
	if err := cfg.Estimator.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	source := args.Input
	if source == "" {
		source, err = dataset.First(cfg.Input.Pattern)
		if err != nil {
			return fmt.Errorf("discover: %w", err)
		}
	}
	logger.Info("Selected input", logging.Fields{"file": source})

	signal, err := dataset.LoadSignal(source, cfg.Input)
	if err != nil {
		return fmt.Errorf("load: %w", err)
	}

	est, err := estimator.NewEstimator(cfg.Estimator)
	if err != nil {
		return fmt.Errorf("estimate: %w", err)
	}
	result, err := est.EstimateSignal(signal)
	if err != nil {
		return fmt.Errorf("estimate: %w", err)
	}

	if args.JSON {
		err = report.JSON(os.Stdout, result)
	} else {
		err = report.NewConsole(os.Stdout, args.Verbose).Report(result, source)
	}
	if err != nil {
		return fmt.Errorf("report: %w", err)
	}

	if args.Plot != "" {
		if err := report.PlotPSD(result, args.Plot); err != nil {
			return fmt.Errorf("report: %w", err)
		}
		logger.Info("Wrote PSD plot", logging.Fields{"file": args.Plot})
	}
	return nil
}

func configureLogging(args *cliArgs) error {
	level := logging.WarnLevel
	if args.LogLevel != "" {
		parsed, ok := logging.ParseLevel(args.LogLevel)
		if !ok {
			return fmt.Errorf("unknown log level %q", args.LogLevel)
		}
		level = parsed
	}
	if args.Verbose {
		level = logging.DebugLevel
	}
	logging.SetLevel(level)
	return nil
}

// buildConfig layers defaults, the config file and command line flags
func buildConfig(args *cliArgs) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if args.Config != "" {
		loaded, err := config.Load(args.Config)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	est := cfg.Estimator
	if args.BPM != 0 {
		est.TargetBPM = args.BPM
		// a file-level target_hz would otherwise shadow the flag
		if args.Hz == 0 {
			est.TargetHz = 0
		}
	}
	if args.Hz != 0 {
		est.TargetHz = args.Hz
	}
	if args.BandLow != nil {
		est.Band[0] = *args.BandLow
	}
	if args.BandHigh != nil {
		est.Band[1] = *args.BandHigh
	}
	if args.Segment != nil {
		est.SegmentLength = *args.Segment
	}
	if args.Overlap != nil {
		est.OverlapFraction = *args.Overlap
	}
	if args.Method != "" {
		est.Method = spectral.Method(args.Method)
	}
	if args.Window != "" {
		est.Window = windowing.Type(args.Window)
	}
	if args.Detrend != "" {
		est.Detrend = filters.DetrendMode(args.Detrend)
	}
	if args.FFT != "" {
		est.FFTBackend = spectral.Backend(args.FFT)
	}
	if args.AssumedRate != 0 {
		est.AssumedRate = args.AssumedRate
	}
	if err := est.Normalize(); err != nil {
		return nil, err
	}

	in := cfg.Input
	if args.Pattern != "" {
		in.Pattern = args.Pattern
	}
	if args.Column != nil {
		in.Column = *args.Column
	}
	if args.ColumnName != "" {
		in.ColumnName = args.ColumnName
	}
	if args.Delimiter != "" {
		in.Delimiter = args.Delimiter
	}
	if args.NoHeader {
		in.HasHeader = false
	}

	return cfg, nil
}
