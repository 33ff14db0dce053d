/**
 * @module csv_reader
 * @description CSV 读取工具模块，提供容忍字符集差异的 CSV 行读取功能
 * @architecture 工具函数模式
 * @stateFlow 文件读取 -> 编码探测 -> 解码 -> 按表头映射为记录
 * @rules 非 UTF-8 输入按 GBK 回退解码；表头为第一行，数据行号从 2 起算
 * @dependencies
 *   - encoding/csv: CSV 解析
 *   - golang.org/x/text: GBK 解码
 * @refs
 *   - service/validation/min_value.go
 *   - service/extractor/rule_samples.go
 *   - service/csvcheck/*
 */

package utils

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"unicode/utf8"

	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"
)

// ReadCSVTable 读取 CSV 文件，返回表头和按表头映射的数据行。
// 输入不是合法 UTF-8 时按 GBK 回退解码
func ReadCSVTable(path string) ([]string, []map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("读取CSV文件失败: %w", err)
	}
	if !utf8.Valid(data) {
		decoded, _, derr := transform.Bytes(simplifiedchinese.GBK.NewDecoder(), data)
		if derr == nil {
			data = decoded
		}
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("解析CSV内容失败: %w", err)
	}
	if len(records) == 0 {
		return nil, nil, nil
	}

	header := records[0]
	rows := make([]map[string]string, 0, len(records)-1)
	for _, record := range records[1:] {
		row := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(record) {
				row[col] = record[i]
			} else {
				row[col] = ""
			}
		}
		rows = append(rows, row)
	}
	return header, rows, nil
}
