package model

import "catalog_admin_v1_202610/pkg/database"

// Models 需要 AutoMigrate 的全部表
func Models() []interface{} {
	return []interface{}{
		&Tag{},
		&Product{},
		&ProductTag{},
		&ImportLog{},
	}
}

// InitOptions 数据库初始化参数，product_tags 使用自定义中间表带时间戳
func InitOptions() database.InitOptions {
	return database.InitOptions{
		Models: Models(),
		JoinTables: []database.JoinTable{
			{Model: &Product{}, Field: "Tags", JoinModel: &ProductTag{}},
		},
	}
}
