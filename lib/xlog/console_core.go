package xlog

import (
	"go.uber.org/zap/zapcore"
)

type coreConfig struct {
	lvlEnabler zapcore.LevelEnabler
	encoder    LogEncoderType
	writer     LogOutWriterType
	lvlEnc     zapcore.LevelEncoder
	tsEnc      zapcore.TimeEncoder
}

func newConsoleCore(cfg coreConfig) zapcore.Core {
	config := zapcore.EncoderConfig{
		MessageKey:    "msg",
		LevelKey:      "lvl",
		EncodeLevel:   cfg.lvlEnc,
		TimeKey:       "ts",
		EncodeTime:    cfg.tsEnc,
		CallerKey:     "callAt",
		EncodeCaller:  zapcore.ShortCallerEncoder,
		FunctionKey:   coreKeyIgnored,
		NameKey:       "component",
		EncodeName:    zapcore.FullNameEncoder,
		StacktraceKey: coreKeyIgnored,
	}
	return zapcore.NewCore(
		getEncoderByType(cfg.encoder)(config),
		getOutWriterByType(cfg.writer),
		cfg.lvlEnabler,
	)
}
