package cli

import (
	"fmt"

	"github.com/lukelzlz/rst/pkg/codec"
	"github.com/lukelzlz/rst/pkg/config"
)

// codecFlags send 与 recv 共用的压缩参数
type codecFlags struct {
	// enable 为 --gzip（send）或 --decompress（recv）
	enable       bool
	codec        string
	level        int
	levelChanged bool
}

// resolveTransform 按命令行参数与配置确定压缩变换
//
// --codec 优先于 --gzip/--decompress，二者都未指定时使用配置中的 transfer.compress。
func resolveTransform(f codecFlags, cfg config.TransferConfig) (*codec.Transform, error) {
	cfgAlgo, err := codec.ParseAlgorithm(cfg.Codec)
	if err != nil {
		return nil, err
	}

	algo := codec.None
	switch {
	case f.codec != "":
		algo, err = codec.ParseAlgorithm(f.codec)
		if err != nil {
			return nil, err
		}
		if f.enable && algo != codec.Gzip {
			return nil, fmt.Errorf("conflicting flags: gzip requested but --codec is %s", algo)
		}
	case f.enable:
		algo = codec.Gzip
	case cfg.Compress:
		algo = cfgAlgo
	}

	level := codec.DefaultLevel
	switch {
	case f.levelChanged:
		level = f.level
	case algo == cfgAlgo:
		level = cfg.Level
	}

	if algo == codec.None {
		return codec.Passthrough(), nil
	}
	return codec.NewTransform(algo, level)
}
