/*
 * @module service/csvcheck/preflight
 * @description 导入前置检查：确认 TMCF/CSV/MCF 三件套存在且扩展名正确，
 *              在昂贵的外部工具调用之前把明显的环境问题拦下来
 * @architecture 分层架构 - 业务服务层
 * @documentReference ai_docs/import_validation_req.md
 * @stateFlow 路径逐一检查 -> 汇总缺失/错配清单
 * @rules
 *   - MCF 文件为可选输入，路径为空串时跳过检查
 *   - 扩展名比较不区分大小写
 * @dependencies 标准库
 * @refs quality.go, service/importtool/runner.go
 */

package csvcheck

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// PreflightInputs 外部工具调用前需要就位的输入文件
type PreflightInputs struct {
	TMCFPath string
	CSVPath  string
	MCFPath  string // 可选
}

// Preflight 检查导入输入文件是否齐备，返回全部问题（而非首个问题）
func Preflight(inputs PreflightInputs) []string {
	var problems []string
	problems = append(problems, checkInputFile("TMCF", inputs.TMCFPath, ".tmcf", true)...)
	problems = append(problems, checkInputFile("CSV", inputs.CSVPath, ".csv", true)...)
	problems = append(problems, checkInputFile("MCF", inputs.MCFPath, ".mcf", false)...)
	return problems
}

func checkInputFile(label, path, wantExt string, required bool) []string {
	if path == "" {
		if required {
			return []string{fmt.Sprintf("%s 文件路径未提供", label)}
		}
		return nil
	}

	var problems []string
	if ext := strings.ToLower(filepath.Ext(path)); ext != wantExt {
		problems = append(problems, fmt.Sprintf("%s 文件 %s 扩展名应为 %s，实际为 %q", label, path, wantExt, ext))
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			problems = append(problems, fmt.Sprintf("%s 文件不存在: %s", label, path))
		} else {
			problems = append(problems, fmt.Sprintf("%s 文件无法访问: %s (%v)", label, path, err))
		}
		return problems
	}
	if info.IsDir() {
		problems = append(problems, fmt.Sprintf("%s 路径指向目录而非文件: %s", label, path))
	}
	return problems
}
