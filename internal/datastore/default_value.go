package datastore

import (
	"context"

	"surveycopy/internal/models"

	"github.com/uptrace/bun"
)

func CreateTableDefaultValue(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.DefaultValue)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().
		Model((*models.DefaultValue)(nil)).
		Index("index_defaultvalues_qid").
		Column("qid").IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateTable().Model((*models.DefaultValueL10n)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().
		Model((*models.DefaultValueL10n)(nil)).
		Index("index_defaultvalue_l10ns_dvid_language").
		Column("dvid", "language").
		Unique().IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	return nil
}

func GetDefaultValues(ctx context.Context, db bun.IDB, questionID int64) ([]*models.DefaultValue, error) {
	var values []*models.DefaultValue
	err := db.NewSelect().Model(&values).Where("qid = ?", questionID).Order("dvid ASC").Scan(ctx)
	if err != nil {
		return nil, err
	}
	return values, nil
}

func GetDefaultValueL10ns(ctx context.Context, db bun.IDB, defaultValueID int64) ([]*models.DefaultValueL10n, error) {
	var l10ns []*models.DefaultValueL10n
	err := db.NewSelect().Model(&l10ns).Where("dvid = ?", defaultValueID).Order("id ASC").Scan(ctx)
	if err != nil {
		return nil, err
	}
	return l10ns, nil
}

func InsertDefaultValue(ctx context.Context, db bun.IDB, value *models.DefaultValue) error {
	_, err := db.NewInsert().Model(value).Returning("*").Exec(ctx)
	return err
}

func InsertDefaultValueL10n(ctx context.Context, db bun.IDB, l10n *models.DefaultValueL10n) error {
	_, err := db.NewInsert().Model(l10n).Returning("*").Exec(ctx)
	return err
}
