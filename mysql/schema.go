package mysql

import "fmt"

const auditSchemaTemplate = `CREATE TABLE IF NOT EXISTS %s (
	id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
	correlation_id CHAR(36) NOT NULL,
	tx_depth INT NOT NULL,
	tx_state VARCHAR(32) NOT NULL,
	tx_id VARCHAR(64) NOT NULL DEFAULT '',
	created_at TIMESTAMP(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
	PRIMARY KEY (id),
	INDEX idx_correlation (correlation_id)
);`

const businessSchemaTemplate = `CREATE TABLE IF NOT EXISTS %s (
	id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
	message VARCHAR(255) NOT NULL,
	correlation_id CHAR(36) NOT NULL,
	tx_details VARCHAR(255) NOT NULL,
	created_at TIMESTAMP(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
	PRIMARY KEY (id),
	INDEX idx_correlation (correlation_id),
	INDEX idx_message (message)
);`

// AuditSchema returns the DDL for the always-committed diagnostics table.
func AuditSchema(table string) (string, error) {
	name, err := sanitizeTableName(table)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf(auditSchemaTemplate, name), nil
}

// BusinessSchema returns the DDL for the business table whose rows are the
// writes under test.
func BusinessSchema(table string) (string, error) {
	name, err := sanitizeTableName(table)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf(businessSchemaTemplate, name), nil
}
