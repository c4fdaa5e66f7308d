package config

import (
	"strings"
	"time"
)

type ColorMode string

const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

type LimitSettings struct {
	MaxSteps     int64    `json:"max_steps"      toml:"max_steps"      yaml:"max_steps"`
	MaxCallDepth int      `json:"max_call_depth" toml:"max_call_depth" yaml:"max_call_depth"`
	Timeout      Duration `json:"timeout"        toml:"timeout"        yaml:"timeout"`
}

type OutputSettings struct {
	Color ColorMode `json:"color" toml:"color" yaml:"color"`
}

type REPLSettings struct {
	HistoryFile string `json:"history_file" toml:"history_file" yaml:"history_file"`
	HistorySize int    `json:"history_size" toml:"history_size" yaml:"history_size"`
	Prompt      string `json:"prompt"       toml:"prompt"       yaml:"prompt"`
}

const (
	MaxCallDepthDefault = 1000
	MaxCallDepthMax     = 100000
	HistorySizeDefault  = 500
	HistorySizeMax      = 100000
	PromptDefault       = "yl> "
)

func DefaultSettings() Settings {
	return Settings{
		Limits: LimitSettings{MaxCallDepth: MaxCallDepthDefault},
		Output: OutputSettings{Color: ColorAuto},
		REPL: REPLSettings{
			HistorySize: HistorySizeDefault,
			Prompt:      PromptDefault,
		},
	}
}

// NormaliseSettings fills zero values with defaults and clamps the rest.
// Negative step limits and timeouts mean unlimited and become zero.
func NormaliseSettings(in Settings) Settings {
	out := DefaultSettings()
	out.Limits.MaxSteps = max(in.Limits.MaxSteps, 0)
	out.Limits.MaxCallDepth = clamp(in.Limits.MaxCallDepth, 1, MaxCallDepthMax, MaxCallDepthDefault)
	out.Limits.Timeout = Duration(max(time.Duration(in.Limits.Timeout), 0))
	out.Output.Color = normaliseColor(in.Output.Color, out.Output.Color)
	out.REPL.HistoryFile = strings.TrimSpace(in.REPL.HistoryFile)
	out.REPL.HistorySize = clamp(in.REPL.HistorySize, 1, HistorySizeMax, HistorySizeDefault)
	if in.REPL.Prompt != "" {
		out.REPL.Prompt = in.REPL.Prompt
	}
	return out
}

// ParseColorMode accepts auto, always or never in any case.
func ParseColorMode(s string) (ColorMode, bool) {
	switch ColorMode(strings.ToLower(strings.TrimSpace(s))) {
	case ColorAuto:
		return ColorAuto, true
	case ColorAlways:
		return ColorAlways, true
	case ColorNever:
		return ColorNever, true
	default:
		return "", false
	}
}

func normaliseColor(in ColorMode, def ColorMode) ColorMode {
	if m, ok := ParseColorMode(string(in)); ok {
		return m
	}
	return def
}

func clamp[T ~int | ~int64](value, lo, hi, fallback T) T {
	if value == 0 {
		return fallback
	}
	if value < lo {
		return lo
	}
	if value > hi {
		return hi
	}
	return value
}
