package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lukelzlz/rst/pkg/digest"
)

func newDigestCmd(a *app) *cobra.Command {
	var algo string

	cmd := &cobra.Command{
		Use:   "digest FILE...",
		Short: "计算文件摘要",
		Long:  `使用与传输完成后相同的方式计算文件摘要，便于在任意一端单独核对。`,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			alg := a.digestAlgorithm()
			if algo != "" {
				var err error
				if alg, err = digest.ParseAlgorithm(algo); err != nil {
					return err
				}
			}

			for _, path := range args {
				sum, err := digest.File(path, alg)
				if err != nil {
					return err
				}
				fmt.Fprintf(a.stdout, "%s  %s\n", sum, path)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&algo, "algo", "", "摘要算法 (sha256/blake2b)，默认使用 --digest 或配置")
	return cmd
}
