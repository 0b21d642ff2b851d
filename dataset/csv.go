package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"matekit/core"
)

// LoadCSV 从 CSV 文件加载数据集：一行一个用户，embedding 列按 t_*/e_* 前缀发现。
// 文件不可读、表头非法、无数据行均为数据集级错误（致命，不做部分计算）。
func LoadCSV(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, core.NewDomainError(core.ModuleDataset, core.ErrorCodeInvalidInput,
			fmt.Sprintf("dataset: open %s: %v", path, err))
	}
	defer f.Close()
	return ReadCSV(f)
}

// ReadCSV 从 io.Reader 加载数据集（便于测试与非文件来源）。
func ReadCSV(r io.Reader) (*Dataset, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // 行宽不一致时按缺省处理，不直接中断

	header, err := cr.Read()
	if err != nil {
		return nil, core.NewDomainError(core.ModuleDataset, core.ErrorCodeInvalidInput,
			fmt.Sprintf("dataset: read header: %v", err))
	}

	schema, err := ResolveSchema(header)
	if err != nil {
		return nil, err
	}

	var users []*core.User
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, core.NewDomainError(core.ModuleDataset, core.ErrorCodeInvalidInput,
				fmt.Sprintf("dataset: read row %d: %v", len(users)+2, err))
		}
		u := parseRow(header, rec, schema)
		if u.ID == "" {
			continue
		}
		users = append(users, u)
	}

	if len(users) == 0 {
		return nil, core.NewDomainError(core.ModuleDataset, core.ErrorCodeInvalidInput,
			"dataset: no user rows")
	}
	return New(schema, users), nil
}
