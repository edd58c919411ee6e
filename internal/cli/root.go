package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/lukelzlz/rst/pkg/codec"
	"github.com/lukelzlz/rst/pkg/config"
	"github.com/lukelzlz/rst/pkg/digest"
	"github.com/lukelzlz/rst/pkg/logging"
	"github.com/lukelzlz/rst/pkg/progress"
	"github.com/lukelzlz/rst/pkg/transfer"
)

// globalFlags 全局 flags
type globalFlags struct {
	cfgFile  string
	envFile  string
	verbose  int
	quiet    bool
	noColor  bool
	logFile  string
	digest   string
	progress string
}

// app 一次命令调用的运行状态
type app struct {
	flags globalFlags

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	cfg       *config.Config
	logger    *slog.Logger
	logCloser io.Closer
}

// Execute 执行根命令
func Execute() {
	os.Exit(Run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// Run 执行命令并返回退出码
func Run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	a := &app{stdin: stdin, stdout: stdout, stderr: stderr}
	defer a.close()

	cmd := newRootCmd(a)
	cmd.SetArgs(args)
	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(stderr, color.RedString("error:"), err)
		return 1
	}
	return 0
}

// newRootCmd 创建根命令
func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "rst",
		Short: "通过原始 TCP 连接传输单个文件",
		Long: `rst (Raw Socket Transfer) 通过一条不加任何协议封装的 TCP 连接传输单个文件。

特性：
  - 线上只有文件字节（可选 gzip / zstd 压缩流），可与 nc 等工具互通
  - 发送端显示进度条，接收端显示已接收字节数
  - 传输完成后从磁盘重新计算摘要，供两端人工比对
  - 可选将接收到的文件上传到 S3 兼容存储`,
		SilenceErrors:     true,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}
	root.CompletionOptions.DisableDefaultCmd = true

	f := &a.flags
	pf := root.PersistentFlags()
	// -h 留给 send 的 --host
	pf.Bool("help", false, "显示帮助")
	pf.StringVarP(&f.cfgFile, "config", "c", "", "配置文件路径 (默认 .rst.yaml 或 ~/.rst.yaml)")
	pf.StringVar(&f.envFile, "env-file", "", "环境变量文件路径 (默认 .rst.env)")
	pf.CountVarP(&f.verbose, "verbose", "v", "输出更详细的日志（可重复，-vv 为 debug）")
	pf.BoolVarP(&f.quiet, "quiet", "q", false, "不显示进度")
	pf.BoolVar(&f.noColor, "no-color", false, "禁用彩色输出")
	pf.StringVar(&f.logFile, "log-file", "", "同时写入日志文件")
	pf.StringVar(&f.digest, "digest", "", "摘要算法 (sha256/blake2b)")
	pf.StringVar(&f.progress, "progress", "", "进度样式 (classic/rich/none)")

	root.AddCommand(
		newSendCmd(a),
		newRecvCmd(a),
		newDigestCmd(a),
		newConfigCmd(a),
		newVersionCmd(a),
	)
	return root
}

// setup 加载配置、应用全局 flags 并初始化日志
func (a *app) setup(cmd *cobra.Command, args []string) error {
	if !color.NoColor && (a.flags.noColor || !isTerminal(a.stderr)) {
		color.NoColor = true
	}

	cfg, err := config.LoadConfig(a.flags.cfgFile, a.flags.envFile)
	if err != nil {
		return err
	}

	// 命令行参数覆盖配置
	if a.flags.logFile != "" {
		cfg.Log.File = a.flags.logFile
	}
	if a.flags.digest != "" {
		cfg.Transfer.Digest = a.flags.digest
	}
	if a.flags.progress != "" {
		cfg.Progress.Style = a.flags.progress
	}
	if a.flags.quiet {
		cfg.Progress.Style = string(progress.StyleNone)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	a.cfg = cfg

	logger, closer, err := logging.New(logging.Options{
		Level:     cfg.Log.Level,
		Verbosity: a.flags.verbose,
		File:      cfg.Log.File,
		Writer:    a.stderr,
	})
	if err != nil {
		return err
	}
	a.logger = logger
	a.logCloser = closer

	logger.Debug("config loaded", "path", config.Path(a.flags.cfgFile))
	return nil
}

func (a *app) close() {
	if a.logCloser != nil {
		a.logCloser.Close()
	}
}

// progressOptions 进度输出到 stderr，结果输出到 stdout
func (a *app) progressOptions() progress.Options {
	style, _ := progress.ParseStyle(a.cfg.Progress.Style)
	return progress.Options{
		Style:  style,
		Width:  a.cfg.Progress.Width,
		Writer: a.stderr,
	}
}

func (a *app) digestAlgorithm() digest.Algorithm {
	algo, _ := digest.ParseAlgorithm(a.cfg.Transfer.Digest)
	return algo
}

func (a *app) newEngine(tr *codec.Transform) *transfer.Engine {
	return transfer.NewEngine(transfer.Options{
		Transform: tr,
		Digest:    a.digestAlgorithm(),
		Progress:  a.progressOptions(),
		Out:       a.stdout,
		Logger:    a.logger,
	})
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
