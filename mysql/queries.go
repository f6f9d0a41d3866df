package mysql

import "fmt"

// diagnosticsQuery observes the transaction bound to the connection it runs
// on: the open transaction count, its state and its identifier. It never
// starts or alters a transaction.
const diagnosticsQuery = "SELECT COUNT(*), MIN(trx_state), MIN(trx_id) " +
	"FROM information_schema.innodb_trx WHERE trx_mysql_thread_id = CONNECTION_ID()"

type queries struct {
	insertAudit    string
	insertBusiness string
	countSurvivors string
}

func newQueries(auditTable, businessTable string) queries {
	return queries{
		insertAudit: fmt.Sprintf(
			"INSERT INTO %s (correlation_id, tx_depth, tx_state, tx_id) VALUES (?, ?, ?, ?)",
			auditTable,
		),
		insertBusiness: fmt.Sprintf(
			"INSERT INTO %s (message, correlation_id, tx_details) VALUES (?, ?, ?)",
			businessTable,
		),
		countSurvivors: fmt.Sprintf(
			"SELECT COUNT(*) FROM %s WHERE message = ?",
			businessTable,
		),
	}
}
