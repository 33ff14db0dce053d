/*
 * @module cmd/datacheck/run
 * @description run 子命令：执行一次完整校验并按结论退出
 * @architecture 命令行工具 - cobra 子命令结构
 * @documentReference ai_docs/import_validation_req.md
 * @stateFlow 组装编排器 -> 流水线执行 -> 打印结论 -> 按退出码退出
 * @rules 配置缺失和 DATA_REPO 未就绪是用法错误（退出码2）；规则失败是正常结论（退出码1）
 * @dependencies service/pipeline
 * @refs service/validation/orchestrator.go
 */

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"datacheck-service/service/importtool"
	"datacheck-service/service/pipeline"
	"datacheck-service/service/validation"
)

func newRunCmd() *cobra.Command {
	var (
		dataset      string
		configPath   string
		outputDir    string
		warnOnlyPath string
		differOutput string
		includeRules []string
		excludeRules []string
		localOnly    bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "对产物目录执行一次完整校验",
		Long: "按规则配置对导入产物目录执行校验，结果写入 validation_output.json。\n" +
			"退出码 0 表示全部通过，1 表示存在阻断或输出不完整，2 表示用法错误。",
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath == "" || outputDir == "" {
				return fmt.Errorf("--config 和 --output-dir 不能为空")
			}

			orchestrator, err := pipeline.BuildDefaultOrchestrator(!localOnly)
			if err != nil {
				return err
			}
			svc := pipeline.NewService(orchestrator, nil, nil)

			artifacts := importtool.ResolveArtifacts(outputDir)
			sourceCSV := ""
			if report, loadErr := importtool.LoadLintReport(artifacts.LintReport); loadErr == nil && report != nil {
				sourceCSV = importtool.FindSourceCSV(report)
			}

			req := pipeline.Request{
				Dataset:          dataset,
				ConfigPath:       configPath,
				OutputPath:       artifacts.ValidationOutput,
				StatsSummaryPath: artifacts.StatsSummary,
				LintReportPath:   artifacts.LintReport,
				SourceCSVPath:    sourceCSV,
				WarnOnlyPath:     warnOnlyPath,
				IncludeRules:     includeRules,
				ExcludeRules:     excludeRules,
			}
			if cmd.Flags().Changed("differ-output") {
				req.DifferOutput = &differOutput
			}

			result, err := svc.Execute(cmd.Context(), req)
			if err != nil {
				return err
			}

			printRunSummary(result)
			if result.ExitStatus != validation.ExitOK {
				os.Exit(result.ExitStatus)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dataset, "dataset", "", "数据集名称（warn_only 匹配用）")
	cmd.Flags().StringVar(&configPath, "config", "", "规则配置文件路径")
	cmd.Flags().StringVar(&outputDir, "output-dir", "", "校验产物目录")
	cmd.Flags().StringVar(&warnOnlyPath, "warn-only", "", "warn_only 配置文件路径（可选）")
	cmd.Flags().StringVar(&differOutput, "differ-output", "", "差分输出路径（可选，空串表示显式无差分）")
	cmd.Flags().StringSliceVar(&includeRules, "include", nil, "仅执行这些规则ID")
	cmd.Flags().StringSliceVar(&excludeRules, "exclude", nil, "跳过这些规则ID")
	cmd.Flags().BoolVar(&localOnly, "local-only", false, "仅执行本地规则，不要求 DATA_REPO")
	return cmd
}

func printRunSummary(result *pipeline.Result) {
	for i := range result.Outcome.Results {
		r := &result.Outcome.Results[i]
		fmt.Printf("%-12s %s: %s\n", r.Status, r.ValidationName, r.Message)
	}
	if result.ConvertedCount > 0 {
		fmt.Printf("warn_only 降级 %d 条结果\n", result.ConvertedCount)
	}
	if result.Outcome.PartialOutput {
		fmt.Println("输出不完整：部分规则没有产生结果")
	}
	if result.ExitStatus == validation.ExitOK {
		fmt.Println("校验通过")
	} else {
		fmt.Println("校验未通过")
	}
}
