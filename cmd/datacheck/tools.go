/*
 * @module cmd/datacheck/tools
 * @description 质量顾问子命令：CSV质量检查、数据行数统计、计数器比对和输入文件预检
 * @architecture 命令行工具 - cobra 子命令结构
 * @documentReference ai_docs/import_validation_req.md
 * @stateFlow 参数解析 -> 检查执行 -> 结果打印
 * @rules 顾问类检查只提示不阻断，发现问题时仍以退出码0结束
 * @dependencies service/csvcheck, service/importtool
 * @refs service/csvcheck/quality.go
 */

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"datacheck-service/service/csvcheck"
	"datacheck-service/service/importtool"
	"datacheck-service/service/validation"
)

func newCSVQualityCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "csv-quality <data.csv>",
		Short: "检查CSV的重复列、空列、重复行和非数值Value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			issues, err := csvcheck.ValidateCSVQuality(args[0])
			if err != nil {
				return err
			}
			if len(issues) == 0 {
				fmt.Println("未发现质量问题")
				return nil
			}
			for _, issue := range issues {
				fmt.Printf("[%s] %s: %s\n", issue.Severity, issue.Type, issue.Message)
			}
			return nil
		},
	}
	return cmd
}

func newRowCountCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "row-count <data.csv>",
		Short: "统计CSV数据行数（不含表头和空行）",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			count, err := csvcheck.CountDataRows(args[0])
			if err != nil {
				return err
			}
			fmt.Println(count)
			return nil
		},
	}
	return cmd
}

func newCountersMatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "counters-match <summary_report.csv> <report.json>",
		Short: "比对摘要观测数总和与报告节点成功数",
		Long:  "将统计摘要的 NumObservations 列求和，与同一次运行产出的报告中 LEVEL_INFO.NumNodeSuccesses 比较。",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := importtool.LoadLintReport(args[1])
			if err != nil {
				return err
			}
			result := csvcheck.CheckCountersMatch(args[0], report)
			fmt.Println(result.Message)
			if !result.Matched {
				os.Exit(validation.ExitFailed)
			}
			return nil
		},
	}
	return cmd
}

func newPreflightCmd() *cobra.Command {
	var (
		tmcfPath string
		csvPath  string
		mcfPath  string
	)

	cmd := &cobra.Command{
		Use:   "preflight",
		Short: "预检导入输入文件是否齐备",
		RunE: func(cmd *cobra.Command, args []string) error {
			problems := csvcheck.Preflight(csvcheck.PreflightInputs{
				TMCFPath: tmcfPath,
				CSVPath:  csvPath,
				MCFPath:  mcfPath,
			})
			if len(problems) == 0 {
				fmt.Println("输入文件预检通过")
				return nil
			}
			for _, p := range problems {
				fmt.Println(p)
			}
			os.Exit(validation.ExitFailed)
			return nil
		},
	}

	cmd.Flags().StringVar(&tmcfPath, "tmcf", "", "TMCF模板文件路径")
	cmd.Flags().StringVar(&csvPath, "csv", "", "数据CSV文件路径")
	cmd.Flags().StringVar(&mcfPath, "mcf", "", "MCF文件路径（可选）")
	return cmd
}
