/*
 * @module cmd/datacheck/config
 * @description 规则配置相关子命令：warn_only 降级、配置形状检查和规则过滤
 * @architecture 命令行工具 - cobra 子命令结构
 * @documentReference ai_docs/import_validation_req.md
 * @stateFlow 参数解析 -> 配置加载 -> 处理 -> 输出
 * @rules apply-warn-only 带 --check-blockers 时剩余阻断映射为退出码1
 * @dependencies service/validation
 * @refs service/validation/warn_only.go, service/validation/config_filter.go
 */

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"datacheck-service/service/validation"
)

func newApplyWarnOnlyCmd() *cobra.Command {
	var (
		outputPath    string
		warnOnlyPath  string
		dataset       string
		checkBlockers bool
	)

	cmd := &cobra.Command{
		Use:   "apply-warn-only",
		Short: "对已有校验输出应用 warn_only 降级",
		RunE: func(cmd *cobra.Command, args []string) error {
			if outputPath == "" || warnOnlyPath == "" || dataset == "" {
				return fmt.Errorf("--output、--warn-only 和 --dataset 不能为空")
			}
			warnOnly, err := validation.LoadWarnOnlyConfig(warnOnlyPath)
			if err != nil {
				return err
			}
			converted, err := validation.ApplyWarnOnly(outputPath, warnOnly, dataset)
			if err != nil {
				return err
			}
			fmt.Printf("降级 %d 条结果\n", converted)

			if checkBlockers && validation.HasBlockers(outputPath) {
				fmt.Println("仍存在阻断结果")
				os.Exit(validation.ExitFailed)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&outputPath, "output", "", "校验输出文件路径")
	cmd.Flags().StringVar(&warnOnlyPath, "warn-only", "", "warn_only 配置文件路径")
	cmd.Flags().StringVar(&dataset, "dataset", "", "数据集名称")
	cmd.Flags().BoolVar(&checkBlockers, "check-blockers", false, "降级后仍有阻断时以退出码1退出")
	return cmd
}

func newValidateConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate-config <config.json>",
		Short: "检查规则配置文件的结构问题",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			problems, err := validation.ValidateConfigFile(args[0])
			if err != nil {
				return err
			}
			if len(problems) == 0 {
				fmt.Println("配置检查通过")
				return nil
			}
			for _, p := range problems {
				fmt.Println(p)
			}
			os.Exit(validation.ExitFailed)
			return nil
		},
	}
	return cmd
}

func newFilterConfigCmd() *cobra.Command {
	var (
		include    []string
		exclude    []string
		outputPath string
	)

	cmd := &cobra.Command{
		Use:   "filter-config <config.json>",
		Short: "按规则ID过滤规则配置",
		Long:  "保留或剔除指定规则ID后输出新配置。--include 与 --exclude 至多提供一个。",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := validation.LoadRuleConfig(args[0])
			if err != nil {
				return err
			}
			filtered, err := validation.FilterConfig(config, include, exclude)
			if err != nil {
				return err
			}
			encoded, err := json.MarshalIndent(filtered, "", "  ")
			if err != nil {
				return err
			}
			if outputPath == "" {
				fmt.Println(string(encoded))
				return nil
			}
			return os.WriteFile(outputPath, append(encoded, '\n'), 0644)
		},
	}

	cmd.Flags().StringSliceVar(&include, "include", nil, "仅保留这些规则ID")
	cmd.Flags().StringSliceVar(&exclude, "exclude", nil, "剔除这些规则ID")
	cmd.Flags().StringVar(&outputPath, "out", "", "输出文件路径，缺省打印到stdout")
	return cmd
}
