package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lukelzlz/rst/pkg/netio"
	"github.com/lukelzlz/rst/pkg/storage"
	"github.com/lukelzlz/rst/pkg/transfer"
)

// errOverwriteRefused 用户拒绝覆盖已有文件
var errOverwriteRefused = errors.New("destination exists, not overwritten")

// recvFlags recv 命令参数
type recvFlags struct {
	file   string
	port   int
	codec  codecFlags
	force  bool
	mirror bool
}

func newRecvCmd(a *app) *cobra.Command {
	f := &recvFlags{}

	cmd := &cobra.Command{
		Use:     "recv",
		Aliases: []string{"receive"},
		Short:   "接收文件",
		Long: `监听端口，接受一个连接并把收到的字节写入文件。

连接关闭写端后接收结束。目标文件已存在时会先询问是否覆盖，
使用 --force 跳过询问。端口为 0 时由系统分配。`,
		Example: `  rst recv -f backup.tar
  rst recv -f backup.tar -p 9000 --decompress --mirror`,
		Args: cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("port") {
				f.port = a.cfg.Transfer.Port
			}
			if cmd.Flags().Changed("mirror") {
				a.cfg.Mirror.Enabled = f.mirror
			}
			return netio.ValidatePort(f.port, true)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runRecv(cmd.Context(), f)
		},
	}

	cmd.Flags().StringVarP(&f.file, "file", "f", "", "目标文件 (必需)")
	cmd.Flags().IntVarP(&f.port, "port", "p", netio.DefaultPort, "监听端口")
	cmd.Flags().BoolVar(&f.codec.enable, "decompress", false, "解压 gzip 流")
	cmd.Flags().StringVar(&f.codec.codec, "codec", "", "压缩算法 (gzip/zstd/none)")
	cmd.Flags().BoolVarP(&f.force, "force", "y", false, "覆盖已存在的文件，不询问")
	cmd.Flags().BoolVar(&f.mirror, "mirror", false, "接收完成后上传到配置的对象存储")

	cmd.MarkFlagRequired("file")

	return cmd
}

func (a *app) runRecv(ctx context.Context, f *recvFlags) error {
	tr, err := resolveTransform(f.codec, a.cfg.Transfer)
	if err != nil {
		return err
	}

	if err := a.checkDestination(f); err != nil {
		return err
	}

	var adapter storage.Adapter
	if a.cfg.Mirror.Enabled {
		if adapter, err = a.newMirrorAdapter(ctx); err != nil {
			return err
		}
	}

	// 先监听再创建文件，监听失败不会改动目标文件
	ln, err := netio.Listen(f.port)
	if err != nil {
		return err
	}
	port := ln.Addr().(*net.TCPAddr).Port
	fmt.Fprintf(a.stderr, "等待连接，端口 %d ...\n", port)
	a.logger.Info("listening", "port", port, "codec", tr.Algorithm())

	conn, err := netio.AcceptOne(ln, a.logger)
	ln.Close()
	if err != nil {
		return err
	}
	defer conn.Close()

	res, err := a.newEngine(tr).Receive(f.file, conn)
	if err != nil {
		return err
	}
	conn.Close()

	if adapter != nil {
		key, err := storage.Mirror(ctx, adapter, f.file, a.mirrorOptions(res))
		if err != nil {
			return fmt.Errorf("file received but mirror upload failed: %w", err)
		}
		fmt.Fprintf(a.stdout, "已上传到 %s/%s\n", a.cfg.Mirror.Bucket, key)
	}
	return nil
}

// checkDestination 目标已存在时询问是否覆盖
func (a *app) checkDestination(f *recvFlags) error {
	info, err := os.Stat(f.file)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: %w", transfer.ErrCreateFailed, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s is a directory", transfer.ErrCreateFailed, f.file)
	}
	if f.force {
		return nil
	}

	ok, err := confirm(a.stdin, a.stderr, fmt.Sprintf("%s 已存在，是否覆盖? [y/N]: ", f.file))
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", errOverwriteRefused, f.file)
	}
	return nil
}

// confirm 读取一行回答，只有 y/yes 视为同意，EOF 视为拒绝
func confirm(in io.Reader, out io.Writer, prompt string) (bool, error) {
	fmt.Fprint(out, prompt)

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("failed to read answer: %w", err)
	}

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

func (a *app) newMirrorAdapter(ctx context.Context) (storage.Adapter, error) {
	if err := a.cfg.ValidateMirror(); err != nil {
		return nil, fmt.Errorf("invalid mirror config: %w", err)
	}
	m := a.cfg.Mirror
	adapter, err := storage.NewAdapter(ctx, storage.Options{
		Provider:  m.Provider,
		Endpoint:  m.Endpoint,
		Region:    m.Region,
		Bucket:    m.Bucket,
		AccessKey: a.cfg.GetAccessKey(),
		SecretKey: a.cfg.GetSecretKey(),
		PathStyle: m.PathStyle,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create storage adapter: %w", err)
	}
	return adapter, nil
}

func (a *app) mirrorOptions(res *transfer.Result) storage.MirrorOptions {
	class, _ := storage.ParseStorageClass(a.cfg.Mirror.StorageClass)
	opts := storage.MirrorOptions{
		Prefix:       a.cfg.Mirror.Prefix,
		StorageClass: class,
	}
	if res.DigestErr == nil {
		opts.Digest = res.Digest
		opts.DigestAlgorithm = a.digestAlgorithm().String()
	}
	return opts
}
