package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/lukelzlz/rst/pkg/netio"
	"github.com/lukelzlz/rst/pkg/transfer"
)

// sendFlags send 命令参数
type sendFlags struct {
	file       string
	host       string
	port       int
	codec      codecFlags
	forceClose bool
	timeout    time.Duration
}

func newSendCmd(a *app) *cobra.Command {
	f := &sendFlags{}

	cmd := &cobra.Command{
		Use:   "send",
		Short: "发送文件",
		Long: `连接到接收端并发送文件。

接收端需要先运行 rst recv。两端的压缩选项必须一致：
发送端使用 --gzip 时，接收端需要使用 --decompress。`,
		Example: `  rst send -f backup.tar -h 192.168.1.20
  rst send -f backup.tar -h files.example.com -p 9000 --gzip`,
		Args: cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			f.codec.levelChanged = cmd.Flags().Changed("level")
			if !cmd.Flags().Changed("port") {
				f.port = a.cfg.Transfer.Port
			}
			if !cmd.Flags().Changed("timeout") {
				f.timeout = a.cfg.Transfer.DialTimeout
			}
			return validateSendFlags(f)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runSend(cmd, f)
		},
	}

	cmd.Flags().StringVarP(&f.file, "file", "f", "", "要发送的文件 (必需)")
	cmd.Flags().StringVarP(&f.host, "host", "h", "", "接收端主机 (必需)")
	cmd.Flags().IntVarP(&f.port, "port", "p", netio.DefaultPort, "接收端端口")
	cmd.Flags().BoolVar(&f.codec.enable, "gzip", false, "使用 gzip 压缩传输")
	cmd.Flags().StringVar(&f.codec.codec, "codec", "", "压缩算法 (gzip/zstd/none)")
	cmd.Flags().IntVar(&f.codec.level, "level", 0, "压缩级别 (0 为默认)")
	cmd.Flags().BoolVar(&f.forceClose, "force-close", false, "发送完成后立即关闭连接，不等待对端关闭")
	cmd.Flags().DurationVar(&f.timeout, "timeout", 10*time.Second, "连接超时")

	cmd.MarkFlagRequired("file")
	cmd.MarkFlagRequired("host")

	return cmd
}

// validateSendFlags 校验 send 参数
func validateSendFlags(f *sendFlags) error {
	if err := netio.ValidateHost(f.host); err != nil {
		return err
	}
	if err := netio.ValidatePort(f.port, false); err != nil {
		return fmt.Errorf("%w on port '%d': %w", netio.ErrConnect, f.port, err)
	}

	info, err := os.Stat(f.file)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", transfer.ErrFileNotFound, f.file)
		}
		return fmt.Errorf("failed to stat file: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory, only single files can be sent", f.file)
	}
	return nil
}

func (a *app) runSend(cmd *cobra.Command, f *sendFlags) error {
	tr, err := resolveTransform(f.codec, a.cfg.Transfer)
	if err != nil {
		return err
	}

	conn, err := netio.Dial(cmd.Context(), f.host, f.port, f.timeout)
	if err != nil {
		return err
	}
	defer conn.Close()
	a.logger.Info("connected", "remote", conn.RemoteAddr().String(), "codec", tr.Algorithm())

	if _, err := a.newEngine(tr).Send(f.file, conn); err != nil {
		return err
	}

	if !f.forceClose {
		// 已半关闭，等待接收端读完并关闭连接
		netio.Drain(conn, a.cfg.Transfer.DrainTimeout)
	}
	return nil
}
