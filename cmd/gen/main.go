package main

import (
	"farmlink/internal/infra/persistence/model"

	"gorm.io/gen"
)

func main() {
	models := []any{
		model.SessionRecordModel{},
	}

	gen := gen.NewGenerator(gen.Config{
		OutPath: "./internal/infra/persistence/postgres/query",
	})

	gen.ApplyBasic(models...)

	gen.Execute()
}
