// Package store persists todos in a single DynamoDB table.
//
// The table is keyed by "id" and carries one global secondary index,
// StatusDateIndex by default, keyed on (status, created_at). Listing by
// status queries the index newest first; listing without a status scans
// the table and orders only the page that was read.
//
// # Operations
//
//   - [Store.Get] - point lookup by id
//   - [Store.Put] - unconditional upsert
//   - [Store.UpdateFields] - partial update of the fields that are set
//   - [Store.Delete] - hard delete
//   - [Store.List] - paginated listing with an opaque page token
//   - [Store.Ping] - connectivity probe
//   - [Store.Init] - startup schema validation
//
// # Errors
//
// [ErrNotFound] and [ErrInvalidPageToken] are returned as sentinels. Every
// other DynamoDB failure is wrapped in an [*Error] whose [ErrorKind] is one
// of [TableMissing], [InvalidRequest], [ConditionFailed] or [Other]; raw SDK
// errors never escape the package.
package store
