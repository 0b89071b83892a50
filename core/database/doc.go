// Package database opens the run history database and inspects its schema.
//
// Connect wraps GORM and supports MySQL for shared deployments and SQLite for
// single-host installs and tests. GetTableColumns reads the live column list
// so that the history store can verify its tables before serving.
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    return err
//	}
//	columns, err := database.GetTableColumns(db, "sync_runs")
package database
