package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/lukelzlz/rst/pkg/config"
)

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "查看或生成配置",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "显示生效的配置（密钥已隐藏）",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := yaml.Marshal(a.cfg.Masked())
			if err != nil {
				return fmt.Errorf("failed to encode config: %w", err)
			}
			if path := config.Path(a.flags.cfgFile); path != "" {
				fmt.Fprintf(a.stdout, "# %s\n", path)
			}
			_, err = a.stdout.Write(out)
			return err
		},
	}

	initCmd := &cobra.Command{
		Use:   "init [PATH]",
		Short: "生成默认配置文件 (默认 .rst.yaml)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ".rst.yaml"
			if len(args) == 1 {
				path = args[0]
			}
			if err := config.SaveConfig(config.Default(), path); err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "已生成配置文件: %s\n", path)
			return nil
		},
	}

	cmd.AddCommand(show, initCmd)
	return cmd
}
