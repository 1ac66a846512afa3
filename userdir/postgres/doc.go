// Package postgres implements the userdir Directory on PostgreSQL via the
// pgx stdlib driver, with goose-managed schema migrations and a transactional
// unit of work shared by account creation and password changes.
package postgres
