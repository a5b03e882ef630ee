package models

import (
	"sort"
	"time"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog/log"
	"gorm.io/gen"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

/*
Model generation usage:

Set GENERATE_MODELS=true and start the server. The models are migrated, a drift
report is logged listing columns that exist in the database but have no field in
the Go model, and typed query code is written to ./generated.

Example report line:
	table=projects unmapped_columns=["legacy_rank"]
*/

func GenerateModels(db *gorm.DB, outPath string) error {
	if err := db.Exec("SELECT 1").Error; err != nil {
		return eris.Wrap(err, "connecting to database")
	}

	db = db.Session(&gorm.Session{
		Logger:                 logger.Default.LogMode(logger.Info),
		SkipDefaultTransaction: true,
		PrepareStmt:            false,
	})

	if outPath == "" {
		outPath = "./generated"
	}
	g := gen.NewGenerator(gen.Config{
		OutPath:           outPath,
		Mode:              gen.WithDefaultQuery | gen.WithQueryInterface,
		FieldNullable:     true,
		FieldCoverable:    true,
		FieldWithIndexTag: true,
		FieldWithTypeTag:  true,
	})
	g.UseDB(db)
	g.ApplyBasic(All()...)

	log.Info().Msg("Migrating models")
	start := time.Now()
	if err := Migrate(db); err != nil {
		return err
	}
	log.Info().Dur("took", time.Since(start)).Msg("Database migration completed")

	drift, err := ColumnDrift(db)
	if err != nil {
		return err
	}
	for table, cols := range drift {
		log.Warn().Str("table", table).Strs("unmapped_columns", cols).Msg("Columns not accounted for in model")
	}
	log.Info().Int("tables", len(drift)).Msg("Column drift report complete")

	g.Execute()
	log.Info().Str("outPath", outPath).Msg("Model generation complete")
	return nil
}

// ColumnDrift returns, per table, the columns present in the database that no model field maps to.
// Tables that do not exist yet are skipped.
func ColumnDrift(db *gorm.DB) (map[string][]string, error) {
	drift := map[string][]string{}
	for _, model := range All() {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(model); err != nil {
			return nil, eris.Wrapf(err, "parsing model %T", model)
		}
		table := stmt.Schema.Table
		if !db.Migrator().HasTable(table) {
			continue
		}

		columnTypes, err := db.Migrator().ColumnTypes(model)
		if err != nil {
			return nil, eris.Wrapf(err, "reading columns of %s", table)
		}

		mapped := make(map[string]bool, len(stmt.Schema.DBNames))
		for _, name := range stmt.Schema.DBNames {
			mapped[name] = true
		}

		var unmapped []string
		for _, ct := range columnTypes {
			if !mapped[ct.Name()] {
				unmapped = append(unmapped, ct.Name())
			}
		}
		if len(unmapped) > 0 {
			sort.Strings(unmapped)
			drift[table] = unmapped
		}
	}
	return drift, nil
}
