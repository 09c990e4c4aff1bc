package logger

import "log/slog"

type Backend string

const (
	BackendStd Backend = "std" // text handler, dev default
	BackendZap Backend = "zap" // sampled JSON via slog-zap, stage/prod default
)

type Env string

const (
	EnvDev   Env = "dev"
	EnvStage Env = "stage"
	EnvProd  Env = "prod"
)

type Config struct {
	// Metadata attached to every record.
	Service    string
	Version    string
	InstanceID string

	// Output control.
	Level   slog.Level
	Env     Env
	Backend Backend // empty: zap for stage/prod, std for dev
	Debug   bool

	// Zap sampling knobs.
	SampleInitial    int
	SampleThereafter int
	SampleTick       int

	AddSource bool
}
