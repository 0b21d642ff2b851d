package dataset

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"matekit/core"
)

// OpenPostgres 打开 Postgres 连接（lib/pq driver）。
func OpenPostgres(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, core.NewDomainError(core.ModuleDataset, core.ErrorCodeUnavailable,
			fmt.Sprintf("dataset: open postgres: %v", err))
	}
	return db, nil
}

// LoadPostgres 从 Postgres 表加载数据集，行/列形状与 CSV 一致。
// 列集通过查询结果动态发现，embedding 列同样按 t_*/e_* 前缀识别。
func LoadPostgres(ctx context.Context, db *sql.DB, table string) (*Dataset, error) {
	rows, err := db.QueryContext(ctx, "SELECT * FROM "+table)
	if err != nil {
		return nil, core.NewDomainError(core.ModuleDataset, core.ErrorCodeInvalidInput,
			fmt.Sprintf("dataset: query %s: %v", table, err))
	}
	defer rows.Close()

	header, err := rows.Columns()
	if err != nil {
		return nil, core.NewDomainError(core.ModuleDataset, core.ErrorCodeInvalidInput,
			fmt.Sprintf("dataset: columns of %s: %v", table, err))
	}

	schema, err := ResolveSchema(header)
	if err != nil {
		return nil, err
	}

	var users []*core.User
	for rows.Next() {
		// 全部按可空字符串扫描，复用与 CSV 相同的行解析
		raw := make([]sql.NullString, len(header))
		ptrs := make([]any, len(header))
		for i := range raw {
			ptrs[i] = &raw[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, core.NewDomainError(core.ModuleDataset, core.ErrorCodeInvalidInput,
				fmt.Sprintf("dataset: scan row %d: %v", len(users)+1, err))
		}
		rec := make([]string, len(raw))
		for i, v := range raw {
			if v.Valid {
				rec[i] = v.String
			}
		}
		u := parseRow(header, rec, schema)
		if u.ID == "" {
			continue
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, core.NewDomainError(core.ModuleDataset, core.ErrorCodeInvalidInput,
			fmt.Sprintf("dataset: iterate %s: %v", table, err))
	}

	if len(users) == 0 {
		return nil, core.NewDomainError(core.ModuleDataset, core.ErrorCodeInvalidInput,
			"dataset: no user rows in "+table)
	}
	return New(schema, users), nil
}
